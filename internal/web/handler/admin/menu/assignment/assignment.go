// Package assignment provides the per-role menu section assignment screen.
package assignment

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/possuite/backoffice/internal/auth"
	"github.com/possuite/backoffice/internal/db/controller/menusection"
	"github.com/possuite/backoffice/internal/db/models"
	"github.com/possuite/backoffice/internal/rbac"
	"github.com/possuite/backoffice/internal/web/handler"
	"github.com/possuite/backoffice/internal/web/navigation"
)

const (
	// Path is the menu assignment screen.
	Path = handler.RootPath + "admin/menu/assignment"

	// TemplateName is the template of the assignment screen.
	TemplateName = "admin/menu/assignment"
)

// Row is a menu section with the selected role's access to it.
type Row struct {
	models.MenuSection
	rbac.MenuAccess
}

// Service provides the assignment screen.
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

	guard := auth.RequireAnyPermission(rbac.MenuPerms...)

	app.Get(Path, guard, s.Get)
	app.Post(Path, guard, s.Post)

	return nil
}

// Get shows the assignable roles and, for the selected role_id, its section checkboxes.
func (s *Service) Get(c *fiber.Ctx) error {
	roleID, _ := handler.QueryID(c, "role_id")
	return s.render(c, fiber.StatusOK, roleID, nil, "")
}

// Post replaces the menu access of the posted role_id.
func (s *Service) Post(c *fiber.Ctx) error {
	roleID, ok := handler.FormID(c, "role_id")
	if !ok {
		return s.render(c, fiber.StatusBadRequest, 0, nil, "Select a role")
	}

	access := handler.FormMenuAccess(c)

	if err := s.rbac.AssignMenu(c.UserContext(), auth.FromCtx(c), roleID, access); err != nil {
		status := fiber.StatusInternalServerError

		switch {
		case errors.Is(err, rbac.ErrForbidden):
			return c.Redirect(handler.HomePath)
		case errors.Is(err, rbac.ErrRoleNotFound):
			status = fiber.StatusNotFound
		case errors.Is(err, rbac.ErrSuperAdminRole):
			status = fiber.StatusConflict
		default:
			if _, isValidation := rbac.IsValidation(err); isValidation {
				status = fiber.StatusBadRequest
			}
		}

		return s.render(c, status, roleID, access, handler.ErrorMessage(err))
	}

	log.Info().Uint("role_id", roleID).Int("sections", len(access)).Msg("menu access saved")

	return c.Redirect(Path + "?role_id=" + strconv.FormatUint(uint64(roleID), 10) + "&notice=menu_saved")
}

// render shows the screen. A nil posted map loads the stored access of roleID.
func (s *Service) render(c *fiber.Ctx, status int, roleID uint, posted map[uint]rbac.MenuAccess, msg string) error {
	nav := handler.Navigation(c, s.rbac, "Menu Assignment", navigation.SectionAdministration, "menu").
		AddBreadcrumb("Administration", "#", false).
		AddBreadcrumb("Menu Assignment", Path, true)

	ctx := c.UserContext()
	data := fiber.Map{"RoleID": roleID}

	fail := func(err error) error {
		data["Error"] = handler.ErrorMessage(err)
		return c.Status(fiber.StatusInternalServerError).Render(TemplateName, handler.Page(c, nav, data), handler.BaseLayout)
	}

	roles, err := s.rbac.AssignableRoles(ctx)
	if err != nil {
		return fail(err)
	}

	data["Roles"] = roles

	if msg != "" {
		data["Error"] = msg
	}

	selected := selectedRole(roles, roleID)
	if selected != nil {
		access := posted
		if access == nil {
			if access, err = s.rbac.MenuAccess(ctx, roleID); err != nil {
				return fail(err)
			}
		}

		sections, err := menusection.List(s.db.WithContext(ctx), false)
		if err != nil {
			return fail(err)
		}

		rows := make([]Row, 0, len(sections))
		for _, section := range sections {
			rows = append(rows, Row{MenuSection: section, MenuAccess: access[section.ID]})
		}

		data["Role"] = selected
		data["Rows"] = rows
	}

	return c.Status(status).Render(TemplateName, handler.Page(c, nav, data), handler.BaseLayout)
}

func selectedRole(roles []models.Role, id uint) *models.Role {
	for i := range roles {
		if roles[i].ID == id {
			return &roles[i]
		}
	}

	return nil
}
