package user

const (
	RoleSuperAdmin     = "super_admin"
	RoleProductManager = "product_manager"
)

const (
	PermViewProducts   = "view_products"
	PermCreateProducts = "create_products"
	PermEditProducts   = "edit_products"
	PermDeleteProducts = "delete_products"
)

// RolePermissions is the seeded role catalogue.
var RolePermissions = map[string][]string{
	RoleSuperAdmin:     {PermViewProducts, PermCreateProducts, PermEditProducts, PermDeleteProducts},
	RoleProductManager: {PermViewProducts, PermCreateProducts, PermEditProducts},
}

// CatalogManagers may read and write products and categories.
var CatalogManagers = []string{RoleProductManager, RoleSuperAdmin}

func IsKnownRole(role string) bool {
	_, ok := RolePermissions[role]
	return ok
}
