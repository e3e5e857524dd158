package auth_test

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/possuite/backoffice/internal/auth"
)

func newGuardedApp(a *auth.Context, guard fiber.Handler) *fiber.App {
	app := fiber.New()

	app.Use(func(c *fiber.Ctx) error {
		if a != nil {
			auth.Store(c, a)
		}

		return c.Next()
	})

	app.Get("/guarded", guard, func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	return app
}

func TestMiddleware(t *testing.T) {
	cashier := &auth.Context{UserID: 5, RoleID: 2, Permissions: auth.NewPermissionSet(auth.PermProcessSales)}
	root := &auth.Context{UserID: 1, RoleID: 1, SuperAdmin: true}
	userAdmin := &auth.Context{UserID: 6, RoleID: 3, Permissions: auth.NewPermissionSet(auth.PermManageUsers)}

	tests := []struct {
		name     string
		ctx      *auth.Context
		guard    fiber.Handler
		status   int
		location string
		body     string
	}{
		{
			name:     "anonymous goes to login",
			guard:    auth.RequirePermission(auth.PermProcessSales),
			status:   fiber.StatusFound,
			location: auth.LoginRedirect,
		},
		{
			name:   "granted passes",
			ctx:    cashier,
			guard:  auth.RequirePermission(auth.PermProcessSales),
			status: fiber.StatusOK,
			body:   "ok",
		},
		{
			name:     "missing permission redirects silently",
			ctx:      cashier,
			guard:    auth.RequirePermission(auth.PermManageRoles),
			status:   fiber.StatusFound,
			location: auth.DeniedRedirect,
		},
		{
			name:   "any of several",
			ctx:    cashier,
			guard:  auth.RequireAnyPermission(auth.PermViewReports, auth.PermProcessSales),
			status: fiber.StatusOK,
			body:   "ok",
		},
		{
			name:   "super admin passes",
			ctx:    root,
			guard:  auth.RequirePermission(auth.PermManageMenu),
			status: fiber.StatusOK,
			body:   "ok",
		},
		{
			name:   "manage_users passes admin screens",
			ctx:    userAdmin,
			guard:  auth.RequireAdmin(),
			status: fiber.StatusOK,
			body:   "ok",
		},
		{
			name:     "cashier fails admin screens",
			ctx:      cashier,
			guard:    auth.RequireAdmin(),
			status:   fiber.StatusFound,
			location: auth.DeniedRedirect,
		},
		{
			name:   "json denial",
			ctx:    cashier,
			guard:  auth.RequirePermissionJSON(auth.PermManageRoles),
			status: fiber.StatusForbidden,
			body:   `{"message":"Access denied","success":false}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newGuardedApp(tt.ctx, tt.guard)

			resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/guarded", nil))
			require.NoError(t, err)

			defer func() { _ = resp.Body.Close() }()

			assert.Equal(t, tt.status, resp.StatusCode)
			assert.Equal(t, tt.location, resp.Header.Get("Location"))

			if tt.body != "" {
				body, _ := io.ReadAll(resp.Body)
				assert.Equal(t, tt.body, string(body))
			}
		})
	}
}
