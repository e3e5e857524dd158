// Package permission provides the permission catalogue screen: list by category, create, edit and delete.
package permission

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/possuite/backoffice/internal/auth"
	"github.com/possuite/backoffice/internal/db/controller/activity"
	"github.com/possuite/backoffice/internal/db/controller/permission"
	"github.com/possuite/backoffice/internal/db/models"
	"github.com/possuite/backoffice/internal/rbac"
	"github.com/possuite/backoffice/internal/web/handler"
	"github.com/possuite/backoffice/internal/web/navigation"
)

const (
	// Path is the base path of the permission screen.
	Path = handler.RootPath + "admin/permission"

	// TemplateList is the template of the permission screen.
	TemplateList = "admin/permission/list"
)

// ManagePerms open the permission screen.
var ManagePerms = []string{auth.PermManagePermissions, auth.PermManageRoles} //nolint:gochecknoglobals

// Form is a submitted permission.
type Form struct {
	Name        string `form:"name"        validate:"required,max=100"`
	Description string `form:"description" validate:"max=255"`
	Category    string `form:"category"    validate:"max=100"`
}

type permissionDetails struct {
	PermissionID uint   `json:"permission_id"`
	Name         string `json:"name"`
	Category     string `json:"category"`
}

// Service provides the permission screen.
type Service struct {
	db        *gorm.DB
	rbac      *rbac.Service
	validator *validator.Validate
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
	s.validator = validator.New()

	manage := auth.RequireAnyPermission(ManagePerms...)

	app.Get(Path, manage, s.List)
	app.Post(Path, manage, s.Create)
	app.Post(Path+"/:id<int>", manage, s.Update)
	app.Post(Path+"/:id<int>/delete", manage, s.Delete)

	return nil
}

// List shows every permission grouped by category.
func (s *Service) List(c *fiber.Ctx) error {
	return s.render(c, fiber.StatusOK, Form{}, "")
}

// Create adds a permission to the catalogue.
func (s *Service) Create(c *fiber.Ctx) error {
	var in Form
	if err := c.BodyParser(&in); err != nil {
		return s.render(c, fiber.StatusBadRequest, in, "Invalid form data")
	}

	if err := s.validator.Struct(in); err != nil {
		return s.render(c, fiber.StatusBadRequest, in, "Name is required; name, description and category must be short")
	}

	actor := auth.FromCtx(c)

	err := s.db.WithContext(c.UserContext()).Transaction(func(tx *gorm.DB) error {
		perm, err := permission.Create(tx, in.Name, in.Description, in.Category)
		if err != nil {
			return err
		}

		return activity.Record(tx, actor.UserID, "Created permission "+perm.Name, permissionDetails{
			PermissionID: perm.ID,
			Name:         perm.Name,
			Category:     perm.Category,
		})
	})
	if err != nil {
		return s.render(c, statusOf(err), in, message(err))
	}

	log.Info().Str("permission", in.Name).Uint64("user_id", actor.UserID).Msg("permission created")

	return c.Redirect(Path + "?notice=permission_created")
}

// Update changes the description and category of a permission.
func (s *Service) Update(c *fiber.Ctx) error {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return c.Redirect(Path)
	}

	var in Form
	if err := c.BodyParser(&in); err != nil {
		return s.render(c, fiber.StatusBadRequest, Form{}, "Invalid form data")
	}

	actor := auth.FromCtx(c)

	err := s.db.WithContext(c.UserContext()).Transaction(func(tx *gorm.DB) error {
		perm, err := permission.Update(tx, id, in.Description, in.Category)
		if err != nil {
			return err
		}

		return activity.Record(tx, actor.UserID, "Updated permission "+perm.Name, permissionDetails{
			PermissionID: perm.ID,
			Name:         perm.Name,
			Category:     perm.Category,
		})
	})
	if err != nil {
		return s.render(c, statusOf(err), Form{}, message(err))
	}

	return c.Redirect(Path)
}

// Delete removes a permission together with every grant of it.
func (s *Service) Delete(c *fiber.Ctx) error {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return c.Redirect(Path)
	}

	actor := auth.FromCtx(c)

	err := s.db.WithContext(c.UserContext()).Transaction(func(tx *gorm.DB) error {
		perm, err := permission.Get(tx, id)
		if err != nil {
			return err
		}

		if err = permission.Delete(tx, id); err != nil {
			return err
		}

		return activity.Record(tx, actor.UserID, "Deleted permission "+perm.Name, permissionDetails{
			PermissionID: perm.ID,
			Name:         perm.Name,
			Category:     perm.Category,
		})
	})
	if err != nil {
		return s.render(c, statusOf(err), Form{}, message(err))
	}

	log.Info().Uint("permission_id", id).Uint64("user_id", actor.UserID).Msg("permission deleted")

	return c.Redirect(Path)
}

func (s *Service) render(c *fiber.Ctx, status int, values Form, msg string) error {
	nav := handler.Navigation(c, s.rbac, "Permissions", navigation.SectionAdministration, "permission").
		AddBreadcrumb("Administration", "#", false).
		AddBreadcrumb("Permissions", Path, true)

	data := fiber.Map{"Values": values}

	var (
		perms      []models.Permission
		categories []string
		err        error
	)

	db := s.db.WithContext(c.UserContext())

	if perms, err = permission.List(db); err == nil {
		categories, err = permission.Categories(db)
	}

	if err != nil {
		log.Error().Err(err).Msg("failed to load permissions")

		msg = handler.GenericErrorMsg
		status = fiber.StatusInternalServerError
	}

	data["Groups"] = permission.Grouped(perms)
	data["Categories"] = categories
	data["Total"] = len(perms)

	if msg != "" {
		data["Error"] = msg
	}

	return c.Status(status).Render(TemplateList, handler.Page(c, nav, data), handler.BaseLayout)
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, permission.ErrPermissionNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, permission.ErrPermissionNameEmpty),
		errors.Is(err, permission.ErrPermissionNameInvalid),
		errors.Is(err, permission.ErrPermissionAlreadyExists):
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}

// message returns the controller's own texts and hides everything else.
func message(err error) string {
	if statusOf(err) != fiber.StatusInternalServerError {
		return err.Error()
	}

	return handler.ErrorMessage(err)
}
