package authz

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupAuthzServiceTest(t *testing.T) *Service {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	svc, err := NewService(db)
	if err != nil {
		t.Fatalf("new authz service failed: %v", err)
	}
	return svc
}

func TestEnforceServiceWithRolePolicy(t *testing.T) {
	svc := setupAuthzServiceTest(t)
	if err := svc.GrantRolePolicy("ops", "/internal/users/:id/recalculate", "POST"); err != nil {
		t.Fatalf("grant role policy failed: %v", err)
	}
	if err := svc.SetServiceRoles("Back-Office", []string{"ops"}); err != nil {
		t.Fatalf("set service roles failed: %v", err)
	}

	allow, err := svc.EnforceService("back-office", "/api/v1/internal/users/42/recalculate", "post")
	if err != nil {
		t.Fatalf("enforce allow failed: %v", err)
	}
	if !allow {
		t.Fatalf("expected allow=true")
	}

	allow, err = svc.EnforceService("back-office", "/api/v1/internal/users/42/loyalty", "GET")
	if err != nil {
		t.Fatalf("enforce deny failed: %v", err)
	}
	if allow {
		t.Fatalf("expected allow=false")
	}

	if _, err := svc.EnforceService(" ", "/internal/coupons", "GET"); err == nil {
		t.Fatalf("blank service name should fail")
	}
}

func TestSetServiceRolesOverride(t *testing.T) {
	svc := setupAuthzServiceTest(t)
	if err := svc.BootstrapBuiltinRoles(); err != nil {
		t.Fatalf("bootstrap builtin roles failed: %v", err)
	}

	if err := svc.SetServiceRoles("crm", []string{RoleLoyaltyOperator}); err != nil {
		t.Fatalf("set first role failed: %v", err)
	}
	if err := svc.SetServiceRoles("crm", []string{RoleEventPublisher}); err != nil {
		t.Fatalf("set second role failed: %v", err)
	}
	roles, err := svc.GetServiceRoles("crm")
	if err != nil {
		t.Fatalf("get roles failed: %v", err)
	}
	if len(roles) != 1 || roles[0] != "role:event_publisher" {
		t.Fatalf("roles want [role:event_publisher], got=%v", roles)
	}

	allow, err := svc.EnforceService("crm", "/internal/coupons", "POST")
	if err != nil {
		t.Fatalf("enforce old role failed: %v", err)
	}
	if allow {
		t.Fatalf("expected old role permission removed")
	}
	allow, err = svc.EnforceService("crm", "/internal/events/order-completed", "POST")
	if err != nil {
		t.Fatalf("enforce new role failed: %v", err)
	}
	if !allow {
		t.Fatalf("expected new role permission granted")
	}

	if err := svc.SetServiceRoles("crm", []string{"missing"}); err == nil {
		t.Fatalf("unknown role should be rejected")
	}
	roles, err = svc.GetServiceRoles("crm")
	if err != nil || len(roles) != 1 {
		t.Fatalf("rejected update must keep roles, got=%v err=%v", roles, err)
	}
}

func TestNormalizeObject(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{in: "/api/v1/internal/users/:id/loyalty", want: "/internal/users/:id/loyalty"},
		{in: "/internal/coupons", want: "/internal/coupons"},
		{in: "internal/coupons", want: "/internal/coupons"},
		{in: "/api/v1", want: "/"},
		{in: "", want: "/"},
	}
	for _, item := range cases {
		got := NormalizeObject(item.in)
		if got != item.want {
			t.Fatalf("normalize object failed, in=%q want=%q got=%q", item.in, item.want, got)
		}
	}
}

func TestBootstrapBuiltinRoles(t *testing.T) {
	svc := setupAuthzServiceTest(t)
	if err := svc.BootstrapBuiltinRoles(); err != nil {
		t.Fatalf("bootstrap builtin roles failed: %v", err)
	}
	if err := svc.BootstrapBuiltinRoles(); err != nil {
		t.Fatalf("second bootstrap should be a no-op: %v", err)
	}

	roles, err := svc.ListRoles()
	if err != nil {
		t.Fatalf("list roles failed: %v", err)
	}
	wantRoles := map[string]bool{
		"role:readonly_auditor": true,
		"role:event_publisher":  true,
		"role:loyalty_operator": true,
	}
	for _, role := range roles {
		delete(wantRoles, role)
	}
	if len(wantRoles) != 0 {
		t.Fatalf("builtin roles missing: %v", wantRoles)
	}

	policies, err := svc.GetRolePolicies(RoleEventPublisher)
	if err != nil || len(policies) != 1 || policies[0].Object != "/internal/events/*" {
		t.Fatalf("event publisher policies unexpected: %v err=%v", policies, err)
	}

	if err := svc.ApplyServiceGrants(map[string][]string{
		"console":      {RoleLoyaltyOperator},
		"order-system": {RoleEventPublisher},
	}); err != nil {
		t.Fatalf("apply grants failed: %v", err)
	}

	checks := []struct {
		service string
		path    string
		method  string
		want    bool
	}{
		{"console", "/api/v1/internal/settings/loyalty", "GET", true},
		{"console", "/api/v1/internal/settings/loyalty", "PUT", true},
		{"console", "/api/v1/internal/events/user-registered", "POST", false},
		{"order-system", "/api/v1/internal/events/user-registered", "POST", true},
		{"order-system", "/api/v1/internal/coupons", "GET", false},
		{"stranger", "/api/v1/internal/coupons", "GET", false},
	}
	for _, item := range checks {
		allow, err := svc.EnforceService(item.service, item.path, item.method)
		if err != nil {
			t.Fatalf("enforce %s %s %s failed: %v", item.service, item.method, item.path, err)
		}
		if allow != item.want {
			t.Fatalf("enforce %s %s %s want %v got %v", item.service, item.method, item.path, item.want, allow)
		}
	}
}

func TestNilServiceUnavailable(t *testing.T) {
	var svc *Service
	if _, err := svc.EnforceService("order-system", "/internal/coupons", "GET"); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("nil service enforce want ErrUnavailable got %v", err)
	}
	if err := svc.BootstrapBuiltinRoles(); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("nil service bootstrap want ErrUnavailable got %v", err)
	}
	if _, err := NormalizeRole(" role: "); err == nil {
		t.Fatalf("bare role prefix should be rejected")
	}
}
