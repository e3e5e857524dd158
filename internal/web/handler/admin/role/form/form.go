// Package form provides the create and edit forms of roles.
package form

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/possuite/backoffice/internal/auth"
	"github.com/possuite/backoffice/internal/db/controller/menusection"
	"github.com/possuite/backoffice/internal/db/controller/permission"
	"github.com/possuite/backoffice/internal/db/models"
	"github.com/possuite/backoffice/internal/rbac"
	"github.com/possuite/backoffice/internal/web/handler"
	"github.com/possuite/backoffice/internal/web/handler/admin/role"
	"github.com/possuite/backoffice/internal/web/navigation"
)

const (
	// TemplateForm is the template for creating and updating a role.
	TemplateForm = "admin/role/form"

	// PermissionField is the form field carrying the selected permission ids.
	PermissionField = "permission_ids"
)

// Values are the submitted form values, echoed back when the form is rejected.
type Values struct {
	Name        string
	Description string
	Permissions []uint
	MenuAccess  map[uint]rbac.MenuAccess
}

// MenuRow is a menu section with its checkbox state on the create form.
type MenuRow struct {
	models.MenuSection
	rbac.MenuAccess
}

// Service provides the role forms.
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

	manage := auth.RequirePermission(auth.PermManageRoles)

	app.Get(role.Path+"/new", manage, s.New)
	app.Post(role.Path, manage, s.Create)
	app.Get(role.Path+"/:id<int>/edit", manage, s.Edit)
	app.Post(role.Path+"/:id<int>", manage, s.Update)

	return nil
}

func (s *Service) nav(c *fiber.Ctx, title, url string) *navigation.Context {
	return handler.Navigation(c, s.rbac, title, navigation.SectionAdministration, "role").
		AddBreadcrumb("Administration", "#", false).
		AddBreadcrumb("Roles", role.Path, false).
		AddBreadcrumb(title, url, true)
}

// New shows the creation form.
func (s *Service) New(c *fiber.Ctx) error {
	return s.render(c, fiber.StatusOK, nil, Values{}, "")
}

// Create validates and stores a new role with its grants and menu access.
func (s *Service) Create(c *fiber.Ctx) error {
	values := read(c)
	values.MenuAccess = handler.FormMenuAccess(c)

	created, err := s.rbac.CreateRole(c.UserContext(), auth.FromCtx(c), rbac.CreateRoleInput{
		RoleInput: rbac.RoleInput{
			Name:          values.Name,
			Description:   values.Description,
			PermissionIDs: values.Permissions,
		},
		MenuAccess: values.MenuAccess,
	})
	if err != nil {
		return s.reject(c, nil, values, err)
	}

	log.Info().Uint("role_id", created.ID).Str("name", created.Name).Msg("role created")

	return c.Redirect(role.Path + "/" + strconv.FormatUint(uint64(created.ID), 10) + "?notice=role_created")
}

// Edit shows the edit form for a role.
func (s *Service) Edit(c *fiber.Ctx) error {
	r, ok, err := s.load(c)
	if !ok {
		return c.Redirect(role.Path)
	}

	if err != nil {
		return s.render(c, fiber.StatusInternalServerError, nil, Values{}, handler.ErrorMessage(err))
	}

	ids, err := s.rbac.RolePermissionIDs(c.UserContext(), r.ID)
	if err != nil {
		return s.render(c, fiber.StatusInternalServerError, r, Values{}, handler.ErrorMessage(err))
	}

	return s.render(c, fiber.StatusOK, r, Values{
		Name:        r.Name,
		Description: r.Description,
		Permissions: ids,
	}, "")
}

// Update replaces the name, description and grants of a role. Menu access is left untouched.
func (s *Service) Update(c *fiber.Ctx) error {
	r, ok, err := s.load(c)
	if !ok {
		return c.Redirect(role.Path)
	}

	if err != nil {
		return s.render(c, fiber.StatusInternalServerError, nil, Values{}, handler.ErrorMessage(err))
	}

	values := read(c)

	err = s.rbac.EditRole(c.UserContext(), auth.FromCtx(c), r.ID, rbac.RoleInput{
		Name:          values.Name,
		Description:   values.Description,
		PermissionIDs: values.Permissions,
	})
	if err != nil {
		return s.reject(c, r, values, err)
	}

	log.Info().Uint("role_id", r.ID).Str("name", values.Name).Msg("role updated")

	return c.Redirect(role.Path + "/" + strconv.FormatUint(uint64(r.ID), 10) + "?notice=role_updated")
}

// load returns ok=false when the id does not name an existing role.
func (s *Service) load(c *fiber.Ctx) (*models.Role, bool, error) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return nil, false, nil
	}

	r, err := s.rbac.GetRole(c.UserContext(), id)
	if errors.Is(err, rbac.ErrRoleNotFound) {
		return nil, false, nil
	}

	return r, true, err
}

func (s *Service) reject(c *fiber.Ctx, r *models.Role, values Values, err error) error {
	switch {
	case errors.Is(err, rbac.ErrForbidden):
		return c.Redirect(handler.HomePath)
	case errors.Is(err, rbac.ErrRoleNotFound):
		return c.Redirect(role.Path)
	}

	status := fiber.StatusInternalServerError
	if _, ok := rbac.IsValidation(err); ok {
		status = fiber.StatusBadRequest
	}

	return s.render(c, status, r, values, handler.ErrorMessage(err))
}

// render shows the form. A nil role renders the creation form.
func (s *Service) render(c *fiber.Ctx, status int, r *models.Role, values Values, msg string) error {
	title, url := "New Role", role.Path+"/new"
	if r != nil {
		title, url = "Edit Role", role.Path+"/"+strconv.FormatUint(uint64(r.ID), 10)+"/edit"
	}

	nav := s.nav(c, title, url)
	data := fiber.Map{
		"Role":     r,
		"IsCreate": r == nil,
		"Values":   values,
	}

	if msg != "" {
		data["Error"] = msg
	}

	db := s.db.WithContext(c.UserContext())

	perms, err := permission.List(db)
	if err != nil {
		log.Error().Err(err).Msg("failed to load permissions")

		data["Error"] = handler.GenericErrorMsg
		status = fiber.StatusInternalServerError
	}

	data["Groups"] = role.GroupGrants(perms, values.Permissions)

	if r == nil {
		sections, err := menusection.List(db, true)
		if err != nil {
			log.Error().Err(err).Msg("failed to load menu sections")

			data["Error"] = handler.GenericErrorMsg
			status = fiber.StatusInternalServerError
		}

		rows := make([]MenuRow, 0, len(sections))
		for _, section := range sections {
			rows = append(rows, MenuRow{MenuSection: section, MenuAccess: values.MenuAccess[section.ID]})
		}

		data["MenuRows"] = rows
	}

	return c.Status(status).Render(TemplateForm, handler.Page(c, nav, data), handler.BaseLayout)
}

func read(c *fiber.Ctx) Values {
	return Values{
		Name:        strings.TrimSpace(c.FormValue("name")),
		Description: strings.TrimSpace(c.FormValue("description")),
		Permissions: handler.FormIDs(c, PermissionField),
	}
}
