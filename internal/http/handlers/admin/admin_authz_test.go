package admin

import (
	"net/http"
	"testing"

	"github.com/realty-promo/internal/authz"

	"github.com/gin-gonic/gin"
)

func setupAuthzEngine(t *testing.T) (*adminHandlerFixture, *gin.Engine) {
	t.Helper()
	f := setupAdminHandlerTest(t)
	svc, err := authz.NewService(f.db)
	if err != nil {
		t.Fatalf("new authz service failed: %v", err)
	}
	if err := svc.BootstrapBuiltinRoles(); err != nil {
		t.Fatalf("bootstrap roles failed: %v", err)
	}
	f.handler.AuthzService = svc

	r := f.engine("admin-1", "admin")
	r.GET("/admin/authz/roles", f.handler.ListAuthzRoles)
	r.POST("/admin/authz/roles", f.handler.CreateAuthzRole)
	r.DELETE("/admin/authz/roles/:role", f.handler.DeleteAuthzRole)
	r.GET("/admin/authz/roles/:role/policies", f.handler.GetAuthzRolePolicies)
	r.POST("/admin/authz/policies", f.handler.GrantAuthzPolicy)
	r.DELETE("/admin/authz/policies", f.handler.RevokeAuthzPolicy)
	r.GET("/admin/authz/users/:id/roles", f.handler.GetAuthzUserRoles)
	r.PUT("/admin/authz/users/:id/roles", f.handler.SetAuthzUserRoles)
	return f, r
}

func TestAuthzRoleHandlers(t *testing.T) {
	_, r := setupAuthzEngine(t)

	rec, body := doJSON(t, r, http.MethodPost, "/admin/authz/roles", map[string]string{"role": "Marketing"})
	if rec.Code != http.StatusOK {
		t.Fatalf("create role status %d body=%v", rec.Code, body)
	}
	data := body["data"].(map[string]interface{})
	if data["role"] != "role:marketing" || data["immutable"] != false {
		t.Fatalf("unexpected created role: %+v", data)
	}

	rec, body = doJSON(t, r, http.MethodGet, "/admin/authz/roles", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list roles status %d", rec.Code)
	}
	immutable := map[string]bool{}
	for _, item := range body["data"].([]interface{}) {
		row := item.(map[string]interface{})
		immutable[row["role"].(string)] = row["immutable"].(bool)
	}
	if !immutable["role:admin"] || immutable["role:marketing"] {
		t.Fatalf("unexpected role flags: %+v", immutable)
	}

	rec, _ = doJSON(t, r, http.MethodDelete, "/admin/authz/roles/admin", nil)
	if rec.Code != http.StatusConflict {
		t.Fatalf("delete builtin role want 409 got %d", rec.Code)
	}
	rec, _ = doJSON(t, r, http.MethodDelete, "/admin/authz/roles/marketing", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete custom role want 200 got %d", rec.Code)
	}

	rec, _ = doJSON(t, r, http.MethodPost, "/admin/authz/roles", map[string]string{})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing role want 400 got %d", rec.Code)
	}
}

func TestAuthzPolicyHandlers(t *testing.T) {
	_, r := setupAuthzEngine(t)

	policy := map[string]string{"role": "ops", "object": "/api/v1/admin/jobs/auto-renew", "action": "post"}
	rec, body := doJSON(t, r, http.MethodPost, "/admin/authz/policies", policy)
	if rec.Code != http.StatusOK {
		t.Fatalf("grant status %d body=%v", rec.Code, body)
	}

	rec, body = doJSON(t, r, http.MethodGet, "/admin/authz/roles/ops/policies", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("policies status %d", rec.Code)
	}
	items := body["data"].([]interface{})
	if len(items) != 1 {
		t.Fatalf("policies want 1 got %d", len(items))
	}
	row := items[0].(map[string]interface{})
	if row["object"] != "/admin/jobs/auto-renew" || row["action"] != "POST" {
		t.Fatalf("unexpected policy: %+v", row)
	}

	rec, _ = doJSON(t, r, http.MethodDelete, "/admin/authz/policies", policy)
	if rec.Code != http.StatusOK {
		t.Fatalf("revoke status %d", rec.Code)
	}
	rec, _ = doJSON(t, r, http.MethodDelete, "/admin/authz/policies", map[string]string{
		"role": "owner", "object": "/me/promotions", "action": "GET",
	})
	if rec.Code != http.StatusConflict {
		t.Fatalf("revoke builtin policy want 409 got %d", rec.Code)
	}
}

func TestAuthzUserRoleHandlers(t *testing.T) {
	f, r := setupAuthzEngine(t)

	rec, body := doJSON(t, r, http.MethodPut, "/admin/authz/users/"+f.owner.ID+"/roles", map[string][]string{"roles": {"readonly_auditor"}})
	if rec.Code != http.StatusOK {
		t.Fatalf("set roles status %d body=%v", rec.Code, body)
	}
	roles := body["data"].(map[string]interface{})["roles"].([]interface{})
	if len(roles) != 1 || roles[0] != "role:readonly_auditor" {
		t.Fatalf("unexpected roles: %+v", roles)
	}

	allow, err := f.handler.AuthzService.EnforceActor(f.owner.ID, "owner", "/api/v1/admin/transactions", "GET")
	if err != nil || !allow {
		t.Fatalf("extra role should grant admin read, allow=%v err=%v", allow, err)
	}

	rec, body = doJSON(t, r, http.MethodGet, "/admin/authz/users/"+f.owner.ID+"/roles", nil)
	if rec.Code != http.StatusOK || len(body["data"].(map[string]interface{})["roles"].([]interface{})) != 1 {
		t.Fatalf("get roles unexpected: %d %+v", rec.Code, body)
	}

	rec, _ = doJSON(t, r, http.MethodPut, "/admin/authz/users/missing/roles", map[string][]string{"roles": {"ops"}})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown user want 404 got %d", rec.Code)
	}
}
