package auth

// Permission names checked by the back office. A permission that is not
// granted and a permission that does not exist are indistinguishable.
const (
	// PermProcessSales allows ringing up sales at the register.
	PermProcessSales = "process_sales"
	// PermVoidSales allows voiding completed sales.
	PermVoidSales = "void_sales"
	// PermApplyDiscounts allows manual discounts on a sale.
	PermApplyDiscounts = "apply_discounts"

	// PermViewInventory allows browsing stock levels.
	PermViewInventory = "view_inventory"
	// PermManageInventory allows stock adjustments and product edits.
	PermManageInventory = "manage_inventory"
	// PermManageSuppliers allows maintaining the supplier list.
	PermManageSuppliers = "manage_suppliers"
	// PermViewExpiry allows viewing the expiry tracking screen.
	PermViewExpiry = "view_expiry"

	// PermManageExpenses allows recording expenses.
	PermManageExpenses = "manage_expenses"
	// PermViewReports allows opening sales and finance reports.
	PermViewReports = "view_reports"

	// PermViewDashboard allows the dashboard widgets.
	PermViewDashboard = "view_dashboard"
	// PermViewRoles allows read access to roles and their grants.
	PermViewRoles = "view_roles"
	// PermManageRoles allows creating, editing and deleting roles and toggling grants.
	PermManageRoles = "manage_roles"
	// PermManageUsers allows managing user accounts.
	PermManageUsers = "manage_users"
	// PermManagePermissions allows defining new permissions.
	PermManagePermissions = "manage_permissions"
	// PermManageMenu allows editing menu sections and their assignment to roles.
	PermManageMenu = "manage_menu"
	// PermViewActivity allows reading the audit trail.
	PermViewActivity = "view_activity"
)

// Permission categories.
const (
	CategorySales          = "Sales"
	CategoryInventory      = "Inventory"
	CategoryFinance        = "Finance"
	CategoryAdministration = "Administration"
)

// Definition describes a permission shipped with the application.
type Definition struct {
	Name        string
	Category    string
	Description string
}

// Catalog returns the permissions seeded into a fresh database.
func Catalog() []Definition {
	return []Definition{
		{PermProcessSales, CategorySales, "Ring up sales at the register"},
		{PermVoidSales, CategorySales, "Void completed sales"},
		{PermApplyDiscounts, CategorySales, "Apply manual discounts"},
		{PermViewInventory, CategoryInventory, "View stock levels"},
		{PermManageInventory, CategoryInventory, "Adjust stock and edit products"},
		{PermManageSuppliers, CategoryInventory, "Maintain suppliers"},
		{PermViewExpiry, CategoryInventory, "View expiry tracking"},
		{PermManageExpenses, CategoryFinance, "Record expenses"},
		{PermViewReports, CategoryFinance, "Open sales and finance reports"},
		{PermViewDashboard, CategoryAdministration, "View dashboard widgets"},
		{PermViewRoles, CategoryAdministration, "View roles and grants"},
		{PermManageRoles, CategoryAdministration, "Manage roles and grants"},
		{PermManageUsers, CategoryAdministration, "Manage user accounts"},
		{PermManagePermissions, CategoryAdministration, "Define permissions"},
		{PermManageMenu, CategoryAdministration, "Manage menu sections and assignments"},
		{PermViewActivity, CategoryAdministration, "Read the activity log"},
	}
}
