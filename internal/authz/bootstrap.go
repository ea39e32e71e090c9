package authz

import "fmt"

// 预置角色名
const (
	RoleReadonlyAuditor = "readonly_auditor"
	RoleEventPublisher  = "event_publisher"
	RoleLoyaltyOperator = "loyalty_operator"
)

// RoleSeed 预置角色定义
type RoleSeed struct {
	Role     string
	Inherits []string
	Policies []Policy
}

// BuiltinRoleSeeds 内部接口预置角色矩阵
func BuiltinRoleSeeds() []RoleSeed {
	return []RoleSeed{
		{
			Role: RoleReadonlyAuditor,
			Policies: []Policy{
				{Object: "/internal/*", Action: "GET"},
			},
		},
		{
			// 上游订单/账号系统只推送事件
			Role: RoleEventPublisher,
			Policies: []Policy{
				{Object: "/internal/events/*", Action: "POST"},
			},
		},
		{
			Role:     RoleLoyaltyOperator,
			Inherits: []string{RoleReadonlyAuditor},
			Policies: []Policy{
				{Object: "/internal/users/:id/affiliate-code", Action: "POST"},
				{Object: "/internal/users/:id/recalculate", Action: "POST"},
				{Object: "/internal/settings/loyalty", Action: "PUT"},
				{Object: "/internal/coupons", Action: "POST"},
			},
		},
	}
}

// BootstrapBuiltinRoles 初始化预置角色与默认策略（重复执行无副作用）
func (s *Service) BootstrapBuiltinRoles() error {
	if err := s.ready(); err != nil {
		return err
	}

	for _, seed := range BuiltinRoleSeeds() {
		role, err := s.EnsureRole(seed.Role)
		if err != nil {
			return err
		}
		for _, parent := range seed.Inherits {
			parentRole, err := s.EnsureRole(parent)
			if err != nil {
				return err
			}
			if _, err := s.enforcer.AddNamedGroupingPolicy("g", role, parentRole); err != nil {
				return fmt.Errorf("link role inheritance failed: %w", err)
			}
		}
		for _, policy := range seed.Policies {
			if err := s.GrantRolePolicy(role, policy.Object, policy.Action); err != nil {
				return fmt.Errorf("add builtin policy failed: %w", err)
			}
		}
	}
	return nil
}
