package admin

import (
	"errors"
	"strings"

	"github.com/realty-promo/internal/authz"
	"github.com/realty-promo/internal/http/response"

	"github.com/gin-gonic/gin"
)

type authzRolePayload struct {
	Role string `json:"role" binding:"required"`
}

type authzPolicyPayload struct {
	Role   string `json:"role" binding:"required"`
	Object string `json:"object" binding:"required"`
	Action string `json:"action" binding:"required"`
}

type authzUserRolesPayload struct {
	Roles []string `json:"roles"`
}

type authzRoleView struct {
	Role      string `json:"role"`
	Immutable bool   `json:"immutable"`
}

// respondAuthzError 授权管理错误映射
func respondAuthzError(c *gin.Context, msg string, err error) {
	switch {
	case errors.Is(err, authz.ErrImmutableRole), errors.Is(err, authz.ErrReservedRole):
		respondError(c, response.CodeConflict, err.Error(), nil)
	case errors.Is(err, authz.ErrUnavailable):
		respondError(c, response.CodeInternal, msg, err)
	default:
		respondError(c, response.CodeBadRequest, err.Error(), nil)
	}
}

// ListAuthzRoles 获取角色列表
func (h *Handler) ListAuthzRoles(c *gin.Context) {
	roles, err := h.AuthzService.ListRoles()
	if err != nil {
		respondAuthzError(c, "role fetch failed", err)
		return
	}
	items := make([]authzRoleView, 0, len(roles))
	for _, role := range roles {
		items = append(items, authzRoleView{Role: role, Immutable: authz.IsImmutableRole(role)})
	}
	response.Success(c, items)
}

// CreateAuthzRole 创建自定义角色
func (h *Handler) CreateAuthzRole(c *gin.Context) {
	var req authzRolePayload
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", nil)
		return
	}
	role, err := h.AuthzService.EnsureRole(req.Role)
	if err != nil {
		respondAuthzError(c, "role create failed", err)
		return
	}
	requestLog(c).Infow("authz_role_created", "role", role)
	response.Success(c, authzRoleView{Role: role, Immutable: authz.IsImmutableRole(role)})
}

// DeleteAuthzRole 删除自定义角色
func (h *Handler) DeleteAuthzRole(c *gin.Context) {
	role := strings.TrimSpace(c.Param("role"))
	if err := h.AuthzService.DeleteRole(role); err != nil {
		respondAuthzError(c, "role delete failed", err)
		return
	}
	requestLog(c).Infow("authz_role_deleted", "role", role)
	response.Success(c, nil)
}

// GetAuthzRolePolicies 获取角色策略
func (h *Handler) GetAuthzRolePolicies(c *gin.Context) {
	policies, err := h.AuthzService.GetRolePolicies(c.Param("role"))
	if err != nil {
		respondAuthzError(c, "policy fetch failed", err)
		return
	}
	response.Success(c, policies)
}

// GrantAuthzPolicy 为角色授予策略
func (h *Handler) GrantAuthzPolicy(c *gin.Context) {
	var req authzPolicyPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", nil)
		return
	}
	if err := h.AuthzService.GrantRolePolicy(req.Role, req.Object, req.Action); err != nil {
		respondAuthzError(c, "policy grant failed", err)
		return
	}
	requestLog(c).Infow("authz_policy_granted", "role", req.Role, "object", req.Object, "action", req.Action)
	response.Success(c, nil)
}

// RevokeAuthzPolicy 撤销角色策略
func (h *Handler) RevokeAuthzPolicy(c *gin.Context) {
	var req authzPolicyPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", nil)
		return
	}
	if err := h.AuthzService.RevokeRolePolicy(req.Role, req.Object, req.Action); err != nil {
		respondAuthzError(c, "policy revoke failed", err)
		return
	}
	requestLog(c).Infow("authz_policy_revoked", "role", req.Role, "object", req.Object, "action", req.Action)
	response.Success(c, nil)
}

// GetAuthzUserRoles 查询用户附加角色
func (h *Handler) GetAuthzUserRoles(c *gin.Context) {
	roles, err := h.AuthzService.GetUserRoles(c.Param("id"))
	if err != nil {
		respondAuthzError(c, "user role fetch failed", err)
		return
	}
	response.Success(c, gin.H{"user_id": c.Param("id"), "roles": roles})
}

// SetAuthzUserRoles 覆盖设置用户附加角色
func (h *Handler) SetAuthzUserRoles(c *gin.Context) {
	userID := strings.TrimSpace(c.Param("id"))
	var req authzUserRolesPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", nil)
		return
	}
	user, err := h.UserRepo.GetByID(c.Request.Context(), userID)
	if err != nil {
		respondError(c, response.CodeInternal, "user fetch failed", err)
		return
	}
	if user == nil {
		respondError(c, response.CodeNotFound, "user not found", nil)
		return
	}
	if err := h.AuthzService.SetUserRoles(user.ID, req.Roles); err != nil {
		respondAuthzError(c, "user role update failed", err)
		return
	}
	roles, err := h.AuthzService.GetUserRoles(user.ID)
	if err != nil {
		respondAuthzError(c, "user role fetch failed", err)
		return
	}
	requestLog(c).Infow("authz_user_roles_updated", "target_user_id", user.ID, "roles", roles)
	response.Success(c, gin.H{"user_id": user.ID, "roles": roles})
}
