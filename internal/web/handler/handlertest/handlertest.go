// Package handlertest holds the fiber fixtures shared by the handler tests.
package handlertest

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/possuite/backoffice/internal/auth"
	"github.com/possuite/backoffice/internal/config"
	"github.com/possuite/backoffice/internal/web/handler"
)

// NoOpViews is a minimal Fiber Views engine.
// It writes the template name followed by the "Error" value of the data, if any,
// so tests can assert which page was rendered and with what message.
type NoOpViews struct{}

// Load implements fiber.Views.
func (NoOpViews) Load() error { return nil }

// Render implements fiber.Views.
func (NoOpViews) Render(w io.Writer, name string, data interface{}, _ ...string) error {
	_, _ = io.WriteString(w, name)

	if m, ok := data.(fiber.Map); ok {
		if v, exists := m["Error"]; exists && v != nil {
			_, _ = fmt.Fprintf(w, "|%v", v)
		}
	}

	return nil
}

// Config returns a configuration good enough for handler tests.
func Config() *config.Config {
	return &config.Config{
		DevMode: true,
		Webserver: config.Webserver{
			URL:     "http://localhost",
			Port:    3000,
			Session: config.Session{ExpiryTime: time.Minute},
		},
	}
}

// NewApp returns a fiber app where every request is made by actor.
// A nil actor leaves requests anonymous.
func NewApp(actor *auth.Context) *fiber.App {
	app := fiber.New(fiber.Config{Views: NoOpViews{}})

	if actor != nil {
		app.Use(func(c *fiber.Ctx) error {
			auth.Store(c, actor)
			return c.Next()
		})
	}

	return app
}

// Init registers h on a new app for actor and returns the app.
func Init(t *testing.T, h handler.Service, db *gorm.DB, actor *auth.Context) *fiber.App {
	t.Helper()

	app := NewApp(actor)
	require.NoError(t, h.Init(app, handler.NewDeps(Config(), db)))

	return app
}

// Get performs a GET request.
func Get(t *testing.T, app *fiber.App, target string) *http.Response {
	t.Helper()

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, target, nil), -1)
	require.NoError(t, err)

	return resp
}

// PostForm performs a url-encoded POST request.
func PostForm(t *testing.T, app *fiber.App, target string, form url.Values) *http.Response {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	return resp
}

// Body reads and closes the response body.
func Body(t *testing.T, resp *http.Response) string {
	t.Helper()

	defer func() {
		_ = resp.Body.Close()
	}()

	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return string(b)
}

// Actor returns a signed-in context with the given permissions.
func Actor(userID uint64, roleID uint, perms ...string) *auth.Context {
	return &auth.Context{
		UserID:      userID,
		Username:    "tester",
		RoleID:      roleID,
		RoleName:    "Tester",
		Permissions: auth.NewPermissionSet(perms...),
	}
}
