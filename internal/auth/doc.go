// Package auth resolves who the caller is and what they may do.
//
// # Permission resolution
//
// A user holds exactly one role and the role's grants are its permission set.
// Service.Resolve loads the user, the role and the granted names from the
// store on every request and returns a Context. The set is flat:
//
//	a, err := authService.Resolve(ctx, userID)
//	a.Permissions.Has(auth.PermProcessSales) // membership only
//	a.Can(auth.PermProcessSales)             // membership or super admin
//
// # Admin bypass
//
// Roles flagged IsSuperAdmin pass every Can check and see every active menu
// section. The administrative screens additionally admit holders of
// manage_roles or manage_users, see Context.CanAdminister.
//
// # Middleware
//
// The web layer stores the resolved Context in fiber locals. RequirePermission,
// RequireAnyPermission and RequireAdmin redirect to the dashboard on failure,
// RequirePermissionJSON answers 403 with {success:false}.
package auth
