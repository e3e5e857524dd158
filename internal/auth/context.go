package auth

import "github.com/gofiber/fiber/v2"

// LocalsKey is the fiber.Ctx locals key holding the request's *Context.
const LocalsKey = "auth"

// Context is the authenticated caller of one request.
// It is resolved from the store for every request and never cached across requests.
type Context struct {
	UserID      uint64
	Username    string
	RoleID      uint
	RoleName    string
	SuperAdmin  bool
	Permissions PermissionSet
}

// Can reports whether the caller may perform the action guarded by perm.
// Super admins pass every check.
func (a *Context) Can(perm string) bool {
	if a == nil {
		return false
	}

	return a.SuperAdmin || a.Permissions.Has(perm)
}

// CanAdminister reports whether the caller passes the administrative screens:
// a super-admin role or a holder of manage_roles or manage_users.
func (a *Context) CanAdminister() bool {
	return a.Can(PermManageRoles) || a.Can(PermManageUsers)
}

// Authenticated reports whether the context belongs to a signed-in user.
func (a *Context) Authenticated() bool {
	return a != nil && a.UserID != 0
}

// FromCtx returns the request's auth context or nil for anonymous requests.
func FromCtx(c *fiber.Ctx) *Context {
	a, _ := c.Locals(LocalsKey).(*Context)
	return a
}

// Store puts the auth context into the request locals.
func Store(c *fiber.Ctx, a *Context) {
	c.Locals(LocalsKey, a)
}
