// Package permissions provides the per-role permission matrix and its toggle endpoint.
//
// The page posts single changes to the endpoint and expects {success, granted, message}.
// A request may carry granted=0|1 with the target state, which makes repeated
// submissions harmless; without it the grant is flipped.
package permissions

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/possuite/backoffice/internal/auth"
	"github.com/possuite/backoffice/internal/db/controller/permission"
	"github.com/possuite/backoffice/internal/rbac"
	"github.com/possuite/backoffice/internal/web/handler"
	"github.com/possuite/backoffice/internal/web/handler/admin/role"
	"github.com/possuite/backoffice/internal/web/navigation"
)

const (
	// TemplateName is the template of the permission matrix.
	TemplateName = "admin/role/permissions"

	// ActionTogglePermission changes a single grant.
	ActionTogglePermission = "toggle_permission"
	// ActionToggleCategory changes every grant of a category.
	ActionToggleCategory = "toggle_category"
)

// Response is the JSON answer of the toggle endpoint.
type Response struct {
	Success bool   `json:"success"`
	Granted bool   `json:"granted"`
	Message string `json:"message"`
}

// Service provides the permission matrix.
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

	path := role.Path + "/:id<int>/permissions"

	app.Get(path, auth.RequirePermission(auth.PermManageRoles), s.Get)
	app.Post(path, auth.RequirePermissionJSON(auth.PermManageRoles), s.Post)

	return nil
}

// Get renders the matrix of every permission by category for a role.
func (s *Service) Get(c *fiber.Ctx) error {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return c.Redirect(role.Path)
	}

	ctx := c.UserContext()

	r, err := s.rbac.GetRole(ctx, id)
	if errors.Is(err, rbac.ErrRoleNotFound) {
		return c.Redirect(role.Path)
	}

	viewURL := role.Path + "/" + strconv.FormatUint(uint64(id), 10)
	nav := handler.Navigation(c, s.rbac, "Role Permissions", navigation.SectionAdministration, "role").
		AddBreadcrumb("Administration", "#", false).
		AddBreadcrumb("Roles", role.Path, false)

	fail := func(err error) error {
		return c.Status(fiber.StatusInternalServerError).Render(TemplateName, handler.Page(c, nav, fiber.Map{
			"Error": handler.ErrorMessage(err),
		}), handler.BaseLayout)
	}

	if err != nil {
		return fail(err)
	}

	nav.AddBreadcrumb(r.Name, viewURL, false).
		AddBreadcrumb("Permissions", viewURL+"/permissions", true)

	perms, err := permission.List(s.db.WithContext(ctx))
	if err != nil {
		return fail(err)
	}

	granted, err := s.rbac.RolePermissionIDs(ctx, r.ID)
	if err != nil {
		return fail(err)
	}

	return c.Render(TemplateName, handler.Page(c, nav, fiber.Map{
		"Role":   r,
		"Groups": role.GroupGrants(perms, granted),
		"Total":  len(perms),
		"Count":  len(granted),
	}), handler.BaseLayout)
}

// Post applies one toggle_permission or toggle_category action.
func (s *Service) Post(c *fiber.Ctx) error {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return reply(c, fiber.StatusBadRequest, Response{Message: "Invalid role"})
	}

	target, err := targetState(c.FormValue("granted"))
	if err != nil {
		return reply(c, fiber.StatusBadRequest, Response{Message: "Invalid target state"})
	}

	switch action := c.FormValue("action"); action {
	case ActionTogglePermission:
		return s.togglePermission(c, id, target)
	case ActionToggleCategory:
		return s.toggleCategory(c, id, target)
	default:
		return reply(c, fiber.StatusBadRequest, Response{Message: "Unknown action"})
	}
}

func (s *Service) togglePermission(c *fiber.Ctx, roleID uint, target *bool) error {
	permID, ok := handler.FormID(c, "permission_id")
	if !ok {
		return reply(c, fiber.StatusBadRequest, Response{Message: "Invalid permission"})
	}

	var (
		change rbac.GrantChange
		err    error
		actor  = auth.FromCtx(c)
	)

	if target != nil {
		change, err = s.rbac.SetGrant(c.UserContext(), actor, roleID, permID, *target)
	} else {
		change, err = s.rbac.TogglePermission(c.UserContext(), actor, roleID, permID)
	}

	if err != nil {
		return failure(c, err)
	}

	log.Info().Uint("role_id", roleID).Uint("permission_id", permID).
		Bool("granted", change.Granted).Bool("changed", change.Changed()).
		Msg("permission toggled")

	msg := fmt.Sprintf("Permission %s revoked", change.Permission)
	if change.Granted {
		msg = fmt.Sprintf("Permission %s granted", change.Permission)
	}

	return reply(c, fiber.StatusOK, Response{Success: true, Granted: change.Granted, Message: msg})
}

func (s *Service) toggleCategory(c *fiber.Ctx, roleID uint, target *bool) error {
	category := c.FormValue("category")
	if category == "" {
		return reply(c, fiber.StatusBadRequest, Response{Message: "Invalid category"})
	}

	var (
		change rbac.CategoryChange
		err    error
		actor  = auth.FromCtx(c)
	)

	if target != nil {
		change, err = s.rbac.SetCategory(c.UserContext(), actor, roleID, category, *target)
	} else {
		change, err = s.rbac.ToggleCategory(c.UserContext(), actor, roleID, category)
	}

	if err != nil {
		return failure(c, err)
	}

	log.Info().Uint("role_id", roleID).Str("category", category).
		Bool("granted", change.Granted).Int("count", change.Affected).
		Msg("category toggled")

	msg := fmt.Sprintf("All %d %s permissions revoked", change.Affected, category)
	if change.Granted {
		msg = fmt.Sprintf("All %d %s permissions granted", change.Affected, category)
	}

	return reply(c, fiber.StatusOK, Response{Success: true, Granted: change.Granted, Message: msg})
}

// targetState parses the optional granted field. An empty value means flip.
func targetState(v string) (*bool, error) {
	if v == "" {
		return nil, nil //nolint:nilnil
	}

	b, err := strconv.ParseBool(v)
	if err != nil {
		return nil, err
	}

	return &b, nil
}

func failure(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError

	switch {
	case errors.Is(err, rbac.ErrForbidden):
		status = fiber.StatusForbidden
	case errors.Is(err, rbac.ErrRoleNotFound), errors.Is(err, rbac.ErrPermissionNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, rbac.ErrEmptyCategory):
		status = fiber.StatusBadRequest
	}

	return reply(c, status, Response{Message: handler.ErrorMessage(err)})
}

func reply(c *fiber.Ctx, status int, resp Response) error {
	return c.Status(status).JSON(resp)
}
