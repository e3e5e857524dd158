// Package profile shows the caller's own account, role and permissions and changes the password.
package profile

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/possuite/backoffice/internal/auth"
	"github.com/possuite/backoffice/internal/db/controller/activity"
	"github.com/possuite/backoffice/internal/rbac"
	"github.com/possuite/backoffice/internal/web/handler"
)

const (
	// Path is the profile page.
	Path = handler.RootPath + "profile"

	// TemplateName is the template of the profile page.
	TemplateName = "profile"

	minPasswordLength = 8
)

var (
	// ErrPasswordTooShort is returned when the new password is shorter than eight characters.
	ErrPasswordTooShort = errors.New("the new password must have at least 8 characters")
	// ErrPasswordMismatch is returned when the confirmation differs from the new password.
	ErrPasswordMismatch = errors.New("the new passwords do not match")
)

// Service provides the profile page.
type Service struct {
	db   *gorm.DB
	rbac *rbac.Service
}

// Handler is the exported instance.
var Handler = Service{} //nolint:gochecknoglobals

// Init registers routes.
func (s *Service) Init(app *fiber.App, deps *handler.Deps) error {
	if err := deps.Check(app); err != nil {
		return err
	}

	s.db = deps.DB
	s.rbac = deps.RBAC

	app.Get(Path, s.Get)
	app.Post(Path+"/password", s.ChangePassword)

	return nil
}

// Get renders the profile page.
func (s *Service) Get(c *fiber.Ctx) error {
	return s.render(c, fiber.StatusOK, "")
}

// ChangePassword replaces the caller's password after checking the current one.
func (s *Service) ChangePassword(c *fiber.Ctx) error {
	a := auth.FromCtx(c)
	if !a.Authenticated() {
		return c.Redirect(auth.LoginRedirect)
	}

	current := c.FormValue("current_password")
	next := c.FormValue("new_password")

	switch {
	case len(next) < minPasswordLength:
		return s.render(c, fiber.StatusBadRequest, ErrPasswordTooShort.Error())
	case next != c.FormValue("confirm_password"):
		return s.render(c, fiber.StatusBadRequest, ErrPasswordMismatch.Error())
	}

	err := s.db.WithContext(c.UserContext()).Transaction(func(tx *gorm.DB) error {
		if err := auth.NewLocalProvider(tx).ChangePassword(a.UserID, current, next); err != nil {
			return err
		}

		return activity.Record(tx, a.UserID, "Changed own password", nil)
	})

	switch {
	case errors.Is(err, auth.ErrInvalidOldPassword):
		return s.render(c, fiber.StatusBadRequest, "The current password is not correct")
	case err != nil:
		log.Error().Err(err).Uint64("user_id", a.UserID).Msg("failed to change password")
		return s.render(c, fiber.StatusInternalServerError, handler.GenericErrorMsg)
	}

	log.Info().Uint64("user_id", a.UserID).Msg("password changed")

	return c.Redirect(Path + "?notice=password_changed")
}

func (s *Service) render(c *fiber.Ctx, status int, msg string) error {
	a := auth.FromCtx(c)
	if !a.Authenticated() {
		return c.Redirect(auth.LoginRedirect)
	}

	nav := handler.Navigation(c, s.rbac, "Profile", "profile", "profile").
		AddBreadcrumb("Profile", Path, true)

	data := fiber.Map{"Permissions": a.Permissions.Names()}
	if msg != "" {
		data["Error"] = msg
	}

	return c.Status(status).Render(TemplateName, handler.Page(c, nav, data), handler.BaseLayout)
}
