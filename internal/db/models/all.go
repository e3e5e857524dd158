package models

// All returns every model in migration order.
func All() []any {
	return []any{
		&Role{},
		&Permission{},
		&RolePermission{},
		&MenuSection{},
		&RoleMenuAccess{},
		&User{},
		&ActivityLog{},
	}
}
