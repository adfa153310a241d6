package authz

import "fmt"

// 预置角色名（与令牌中的 role 声明一致）
const (
	RoleAdmin            = "admin"
	RoleReadonlyAuditor  = "readonly_auditor"
	RoleInventoryManager = "inventory_manager"
	RoleOrderOperator    = "order_operator"
	RolePromoManager     = "promo_manager"
)

// RoleSeed 预置角色定义
type RoleSeed struct {
	Role     string
	Inherits []string
	Policies []Policy
}

// BuiltinRoleSeeds 后台预置角色矩阵
func BuiltinRoleSeeds() []RoleSeed {
	return []RoleSeed{
		{
			Role: RoleReadonlyAuditor,
			Policies: []Policy{
				{Object: "/admin/*", Action: "GET"},
			},
		},
		{
			Role:     RoleInventoryManager,
			Inherits: []string{RoleReadonlyAuditor},
			Policies: []Policy{
				{Object: "/admin/inventory/:product_id/adjust", Action: "POST"},
				{Object: "/admin/inventory/:product_id/threshold", Action: "PUT"},
			},
		},
		{
			Role:     RoleOrderOperator,
			Inherits: []string{RoleReadonlyAuditor},
			Policies: []Policy{
				{Object: "/admin/orders/:id/status", Action: "PATCH"},
				{Object: "/admin/orders/:id/payment-status", Action: "PATCH"},
			},
		},
		{
			Role:     RolePromoManager,
			Inherits: []string{RoleReadonlyAuditor},
			Policies: []Policy{
				{Object: "/admin/promo-codes", Action: "*"},
				{Object: "/admin/promo-codes/:id", Action: "*"},
			},
		},
		{
			Role: RoleAdmin,
			Inherits: []string{
				RoleInventoryManager,
				RoleOrderOperator,
				RolePromoManager,
			},
			Policies: []Policy{
				{Object: "/admin/*", Action: "*"},
			},
		},
	}
}

// BootstrapBuiltinRoles 初始化预置角色与默认策略（可重复执行）
func (s *Service) BootstrapBuiltinRoles() error {
	if s == nil || s.enforcer == nil {
		return fmt.Errorf("authz service unavailable")
	}

	for _, seed := range BuiltinRoleSeeds() {
		role, err := s.EnsureRole(seed.Role)
		if err != nil {
			return err
		}

		for _, parent := range seed.Inherits {
			parentRole, err := NormalizeRole(parent)
			if err != nil {
				return err
			}
			if _, err := s.enforcer.AddNamedGroupingPolicy("g", role, parentRole); err != nil {
				return fmt.Errorf("link role inheritance failed: %w", err)
			}
		}

		for _, policy := range seed.Policies {
			action := NormalizeAction(policy.Action)
			if action == "" {
				return fmt.Errorf("builtin policy action is required")
			}
			if _, err := s.enforcer.AddPolicy(role, NormalizeObject(policy.Object), action); err != nil {
				return fmt.Errorf("add builtin policy failed: %w", err)
			}
		}
	}
	return nil
}
