package auth

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	rbacauth "github.com/possuite/backoffice/internal/auth"
	"github.com/possuite/backoffice/internal/web/session"
)

const (
	loginPath     = rbacauth.LoginRedirect
	dashboardPath = rbacauth.DeniedRedirect
)

// publicPrefixes are served without a session.
var publicPrefixes = []string{"/static", "/metrics", "/logout"} //nolint:gochecknoglobals

// Resolver turns a session's user id into the request's auth context.
type Resolver interface {
	Resolve(ctx context.Context, userID uint64) (*rbacauth.Context, error)
}

// New returns the middleware that authenticates every non-public request.
func New(resolver Resolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		path := strings.ToLower(c.Path())

		for _, prefix := range publicPrefixes {
			if strings.HasPrefix(path, prefix) {
				return c.Next()
			}
		}

		isLoginPage := strings.HasPrefix(path, loginPath)

		data, err := session.FromRequest(c)
		if err != nil {
			if isLoginPage {
				return c.Next()
			}

			return c.Redirect(loginPath)
		}

		a, err := resolver.Resolve(c.UserContext(), data.UserID)
		if err != nil {
			log.Warn().Err(err).Uint64("user_id", data.UserID).Msg("session user could not be resolved")

			_ = session.Delete(c.Cookies(session.CookieName))
			c.ClearCookie(session.CookieName)

			if isLoginPage {
				return c.Next()
			}

			return c.Redirect(loginPath)
		}

		if isLoginPage {
			return c.Redirect(dashboardPath)
		}

		rbacauth.Store(c, a)

		return c.Next()
	}
}
