// Package dashboard provides the landing page: the caller's role, sections and recent activity.
package dashboard

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/possuite/backoffice/internal/auth"
	"github.com/possuite/backoffice/internal/db/controller/activity"
	"github.com/possuite/backoffice/internal/db/models"
	"github.com/possuite/backoffice/internal/rbac"
	"github.com/possuite/backoffice/internal/web/handler"
)

const (
	// Path is the path to the dashboard page.
	Path = handler.HomePath

	// TemplateName is the name of the dashboard template.
	TemplateName = "dashboard/dashboard"

	// ActivityLimit is the number of audit entries on the dashboard.
	ActivityLimit = 15
)

// Service is the dashboard handler service.
type Service struct {
	db   *gorm.DB
	rbac *rbac.Service
}

// Handler is the dashboard handler.
var Handler = Service{} //nolint:gochecknoglobals

// Init initializes the dashboard handler.
func (s *Service) Init(app *fiber.App, deps *handler.Deps) error {
	if err := deps.Check(app); err != nil {
		return err
	}

	s.db = deps.DB
	s.rbac = deps.RBAC

	// every signed-in user may open the dashboard; it is where denied requests land
	app.Get(Path, s.Get)

	return nil
}

// Get renders the dashboard.
func (s *Service) Get(c *fiber.Ctx) error {
	a := auth.FromCtx(c)
	if !a.Authenticated() {
		return c.Redirect(auth.LoginRedirect)
	}

	nav := handler.Navigation(c, s.rbac, "Dashboard", "dashboard", "dashboard")

	var (
		entries []models.ActivityLog
		err     error
	)

	// other users' actions are only shown with view_activity
	if a.Can(auth.PermViewActivity) {
		entries, err = activity.List(s.db, ActivityLimit)
	} else {
		entries, err = activity.ListForUser(s.db, a.UserID, ActivityLimit)
	}

	data := fiber.Map{
		"Permissions": a.Permissions.Names(),
		"Activity":    entries,
	}

	if err != nil {
		log.Error().Err(err).Uint64("user_id", a.UserID).Msg("failed to load activity")
		data["Error"] = handler.GenericErrorMsg
	}

	return c.Render(TemplateName, handler.Page(c, nav, data), handler.BaseLayout)
}
