package authz

import (
	"fmt"

	"github.com/realty-promo/internal/logger"
)

// RoleSeed 预置角色定义
type RoleSeed struct {
	Role      string
	Inherits  []string
	Policies  []Policy
	Immutable bool
}

// BuiltinRoleSeeds 系统预置角色矩阵（角色名与令牌中的 role 声明一致）
func BuiltinRoleSeeds() []RoleSeed {
	return []RoleSeed{
		{
			Role: "owner",
			Policies: []Policy{
				{Object: "/me/promotions", Action: "GET"},
				{Object: "/me/transactions", Action: "GET"},
				{Object: "/me/notifications", Action: "GET"},
				{Object: "/me/notifications/unread-count", Action: "GET"},
				{Object: "/me/notifications/:id/read", Action: "POST"},
			},
			Immutable: true,
		},
		{
			Role:     "readonly_auditor",
			Inherits: []string{"owner"},
			Policies: []Policy{
				{Object: "/admin/*", Action: "GET"},
			},
			Immutable: true,
		},
		{
			Role:     "admin",
			Inherits: []string{"readonly_auditor"},
			Policies: []Policy{
				{Object: "/admin/transactions", Action: "*"},
				{Object: "/admin/transactions/:id/mark-paid", Action: "POST"},
				{Object: "/admin/promotions", Action: "*"},
				{Object: "/admin/promotions/:id/deactivate", Action: "POST"},
				{Object: "/admin/promotions/:id/auto-renew", Action: "PUT"},
				{Object: "/admin/jobs/scan-expiring", Action: "POST"},
				{Object: "/admin/jobs/auto-renew", Action: "POST"},
				{Object: "/admin/authz/*", Action: "*"},
			},
			Immutable: true,
		},
	}
}

// BootstrapBuiltinRoles 初始化预置角色与默认策略
func (s *Service) BootstrapBuiltinRoles() error {
	if s == nil || s.enforcer == nil {
		return ErrUnavailable
	}

	added := 0
	for _, seed := range BuiltinRoleSeeds() {
		role, err := NormalizeRole(seed.Role)
		if err != nil {
			return err
		}
		links := [][]string{{role, roleAnchor}}
		for _, parent := range seed.Inherits {
			parentRole, err := NormalizeRole(parent)
			if err != nil {
				return err
			}
			links = append(links, []string{role, parentRole})
		}
		for _, link := range links {
			ok, err := s.enforcer.AddNamedGroupingPolicy("g", link[0], link[1])
			if err != nil {
				return fmt.Errorf("seed role %s link failed: %w", role, err)
			}
			if ok {
				added++
			}
		}

		for _, policy := range seed.Policies {
			action := NormalizeAction(policy.Action)
			if action == "" {
				return fmt.Errorf("builtin policy for %s has empty action", role)
			}
			ok, err := s.enforcer.AddPolicy(role, NormalizeObject(policy.Object), action)
			if err != nil {
				return fmt.Errorf("seed role %s policy failed: %w", role, err)
			}
			if ok {
				added++
			}
		}
	}

	if added > 0 {
		logger.Infow("authz_builtin_roles_seeded", "rules_added", added)
	}
	return nil
}

// IsImmutableRole 判断是否为不可删改的预置角色
func IsImmutableRole(role string) bool {
	normalized, err := NormalizeRole(role)
	if err != nil {
		return false
	}
	for _, seed := range BuiltinRoleSeeds() {
		if !seed.Immutable {
			continue
		}
		if seedRole, err := NormalizeRole(seed.Role); err == nil && seedRole == normalized {
			return true
		}
	}
	return false
}
