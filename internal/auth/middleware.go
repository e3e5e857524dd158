package auth

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

const (
	// DeniedRedirect is where authorization failures are sent, without a message.
	DeniedRedirect = "/dashboard"
	// LoginRedirect is where anonymous requests are sent.
	LoginRedirect = "/login"
)

type check func(a *Context) bool

// RequirePermission redirects to the dashboard unless the caller holds perm.
func RequirePermission(perm string) fiber.Handler {
	return guard(perm, func(a *Context) bool { return a.Can(perm) }, denyRedirect)
}

// RequireAnyPermission redirects to the dashboard unless the caller holds one of perms.
func RequireAnyPermission(perms ...string) fiber.Handler {
	return guard("any", func(a *Context) bool {
		for _, perm := range perms {
			if a.Can(perm) {
				return true
			}
		}

		return false
	}, denyRedirect)
}

// RequireAdmin guards the administrative screens with the admin bypass rule.
func RequireAdmin() fiber.Handler {
	return guard("admin", (*Context).CanAdminister, denyRedirect)
}

// RequirePermissionJSON answers 403 {success:false} unless the caller holds perm.
// Used by endpoints called from page scripts.
func RequirePermissionJSON(perm string) fiber.Handler {
	return guard(perm, func(a *Context) bool { return a.Can(perm) }, denyJSON)
}

func guard(name string, allowed check, deny fiber.Handler) fiber.Handler {
	return func(c *fiber.Ctx) error {
		a := FromCtx(c)
		if !a.Authenticated() {
			return c.Redirect(LoginRedirect)
		}

		if !allowed(a) {
			log.Warn().Uint64("user_id", a.UserID).Uint("role_id", a.RoleID).
				Str("permission", name).Str("path", c.Path()).
				Msg("user lacks required permission")

			return deny(c)
		}

		return c.Next()
	}
}

func denyRedirect(c *fiber.Ctx) error {
	return c.Redirect(DeniedRedirect)
}

func denyJSON(c *fiber.Ctx) error {
	return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
		"success": false,
		"message": "Access denied",
	})
}
