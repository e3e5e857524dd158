// Package role provides the role list, the role detail page and role deletion.
package role

import (
	"context"
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/possuite/backoffice/internal/auth"
	"github.com/possuite/backoffice/internal/db/controller/activity"
	"github.com/possuite/backoffice/internal/db/controller/menusection"
	"github.com/possuite/backoffice/internal/db/controller/permission"
	"github.com/possuite/backoffice/internal/db/models"
	"github.com/possuite/backoffice/internal/rbac"
	"github.com/possuite/backoffice/internal/web/handler"
	"github.com/possuite/backoffice/internal/web/navigation"
)

const (
	// Path is the base path for role management.
	Path = handler.RootPath + "admin/role"

	// TemplateList is the template for listing roles.
	TemplateList = "admin/role/list"
	// TemplateView is the template of the role detail page.
	TemplateView = "admin/role/view"

	// ActivityLimit is the number of audit entries on the detail page.
	ActivityLimit = 20
)

// ViewPerms open the role list and detail pages.
var ViewPerms = []string{auth.PermViewRoles, auth.PermManageRoles, auth.PermManageUsers} //nolint:gochecknoglobals

// GrantedGroup is a permission category with the grant state of each permission.
type GrantedGroup struct {
	Category    string
	Permissions []GrantedPermission
	Granted     int
}

// GrantedPermission is a permission with its grant state for one role.
type GrantedPermission struct {
	models.Permission
	Granted bool
}

// SectionAccess is a menu section with the role's access to it.
type SectionAccess struct {
	models.MenuSection
	rbac.MenuAccess
}

// Service provides the role screens.
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

	app.Get(Path,
		auth.RequireAnyPermission(ViewPerms...),
		s.List,
	)
	app.Get(Path+"/:id<int>",
		auth.RequireAnyPermission(ViewPerms...),
		s.View,
	)
	app.Post(Path+"/:id<int>/delete",
		auth.RequirePermission(auth.PermManageRoles),
		s.Delete,
	)

	return nil
}

func (s *Service) nav(c *fiber.Ctx, title string) *navigation.Context {
	return handler.Navigation(c, s.rbac, title, navigation.SectionAdministration, "role").
		AddBreadcrumb("Administration", "#", false).
		AddBreadcrumb("Roles", Path, title == "Roles")
}

// List shows every role with its user and permission counts.
func (s *Service) List(c *fiber.Ctx) error {
	return s.renderList(c, fiber.StatusOK, "")
}

func (s *Service) renderList(c *fiber.Ctx, status int, msg string) error {
	nav := s.nav(c, "Roles")

	roles, err := s.rbac.ListRoles(c.UserContext())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).Render(TemplateList, handler.Page(c, nav, fiber.Map{
			"Error": handler.ErrorMessage(err),
		}), handler.BaseLayout)
	}

	data := fiber.Map{"Roles": roles}
	if msg != "" {
		data["Error"] = msg
	}

	return c.Status(status).Render(TemplateList, handler.Page(c, nav, data), handler.BaseLayout)
}

// View shows a role with its grants, menu access, users and history.
func (s *Service) View(c *fiber.Ctx) error {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return c.Redirect(Path)
	}

	ctx := c.UserContext()

	role, err := s.rbac.GetRole(ctx, id)
	if errors.Is(err, rbac.ErrRoleNotFound) {
		return c.Redirect(Path)
	}

	nav := s.nav(c, "Role")

	fail := func(err error) error {
		return c.Status(fiber.StatusInternalServerError).Render(TemplateView, handler.Page(c, nav, fiber.Map{
			"Error": handler.ErrorMessage(err),
		}), handler.BaseLayout)
	}

	if err != nil {
		return fail(err)
	}

	nav.AddBreadcrumb(role.Name, Path+"/"+strconv.FormatUint(uint64(role.ID), 10), true)

	groups, err := s.grantedGroups(ctx, role.ID)
	if err != nil {
		return fail(err)
	}

	sections, err := s.sectionAccess(ctx, role)
	if err != nil {
		return fail(err)
	}

	users, err := s.rbac.RoleUsers(ctx, role.ID)
	if err != nil {
		return fail(err)
	}

	history, err := activity.ListForRole(s.db.WithContext(ctx), role.ID, ActivityLimit)
	if err != nil {
		return fail(err)
	}

	return c.Render(TemplateView, handler.Page(c, nav, fiber.Map{
		"Role":      role,
		"Groups":    groups,
		"Sections":  sections,
		"Users":     users,
		"Activity":  history,
		"Deletable": len(users) == 0 && !role.IsSuperAdmin,
	}), handler.BaseLayout)
}

// Delete removes a role. Roles held by users and super-admin roles are refused.
func (s *Service) Delete(c *fiber.Ctx) error {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return c.Redirect(Path)
	}

	if err := s.rbac.DeleteRole(c.UserContext(), auth.FromCtx(c), id); err != nil {
		if errors.Is(err, rbac.ErrForbidden) {
			return c.Redirect(handler.HomePath)
		}

		log.Warn().Err(err).Uint("role_id", id).Msg("role delete refused")

		status := fiber.StatusInternalServerError

		switch {
		case errors.Is(err, rbac.ErrRoleInUse), errors.Is(err, rbac.ErrSuperAdminRole):
			status = fiber.StatusConflict
		case errors.Is(err, rbac.ErrRoleNotFound):
			status = fiber.StatusNotFound
		}

		return s.renderList(c, status, handler.ErrorMessage(err))
	}

	log.Info().Uint("role_id", id).Uint64("user_id", auth.FromCtx(c).UserID).Msg("role deleted")

	return c.Redirect(Path + "?notice=role_deleted")
}

// grantedGroups lists every permission by category with the grant state for roleID.
func (s *Service) grantedGroups(ctx context.Context, roleID uint) ([]GrantedGroup, error) {
	perms, err := permission.List(s.db.WithContext(ctx))
	if err != nil {
		return nil, err
	}

	ids, err := s.rbac.RolePermissionIDs(ctx, roleID)
	if err != nil {
		return nil, err
	}

	return GroupGrants(perms, ids), nil
}

// GroupGrants buckets perms by category and marks the ones in granted.
func GroupGrants(perms []models.Permission, granted []uint) []GrantedGroup {
	has := make(map[uint]bool, len(granted))
	for _, id := range granted {
		has[id] = true
	}

	groups := permission.Grouped(perms)
	out := make([]GrantedGroup, 0, len(groups))

	for _, g := range groups {
		gg := GrantedGroup{Category: g.Category, Permissions: make([]GrantedPermission, 0, len(g.Permissions))}

		for _, p := range g.Permissions {
			gp := GrantedPermission{Permission: p, Granted: has[p.ID]}
			if gp.Granted {
				gg.Granted++
			}

			gg.Permissions = append(gg.Permissions, gp)
		}

		out = append(out, gg)
	}

	return out
}

func (s *Service) sectionAccess(ctx context.Context, role *models.Role) ([]SectionAccess, error) {
	sections, err := menusection.List(s.db.WithContext(ctx), true)
	if err != nil {
		return nil, err
	}

	access := map[uint]rbac.MenuAccess{}

	if !role.IsSuperAdmin {
		if access, err = s.rbac.MenuAccess(ctx, role.ID); err != nil {
			return nil, err
		}
	}

	out := make([]SectionAccess, 0, len(sections))

	for _, section := range sections {
		a := access[section.ID]
		if role.IsSuperAdmin {
			a.Visible = true
		}

		out = append(out, SectionAccess{MenuSection: section, MenuAccess: a})
	}

	return out, nil
}
