package handler

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/possuite/backoffice/internal/auth"
	"github.com/possuite/backoffice/internal/rbac"
	"github.com/possuite/backoffice/internal/web/navigation"
)

// Form field prefixes of the per-section menu checkboxes, followed by the section id.
const (
	MenuVisibleField  = "menu_visible_"
	MenuPriorityField = "menu_priority_"
)

// notices are the confirmation texts shown after a redirect with ?notice=<key>.
var notices = map[string]string{ //nolint:gochecknoglobals
	"role_created":       "Role created successfully",
	"role_updated":       "Role updated successfully",
	"role_deleted":       "Role deleted successfully",
	"menu_saved":         "Menu access saved",
	"permission_created": "Permission created successfully",
	"section_created":    "Menu section created successfully",
	"section_updated":    "Menu section updated",
	"password_changed":   "Password changed",
}

// Navigation returns the page's navigation context with the caller's sidebar.
func Navigation(c *fiber.Ctx, menu *rbac.Service, title, section, page string) *navigation.Context {
	nav := navigation.NewContext(title, section, page).
		AddBreadcrumb("Home", HomePath, false)

	a := auth.FromCtx(c)
	if !a.Authenticated() || menu == nil {
		return nav
	}

	sections, err := menu.VisibleSections(c.UserContext(), a.RoleID)
	if err != nil {
		log.Error().Err(err).Uint("role_id", a.RoleID).Msg("failed to load sidebar")
		return nav
	}

	return nav.WithSidebar(sections)
}

// Page adds the values every page template reads to data.
func Page(c *fiber.Ctx, nav *navigation.Context, data fiber.Map) fiber.Map {
	if data == nil {
		data = fiber.Map{}
	}

	data["Navigation"] = nav
	data["Auth"] = auth.FromCtx(c)

	if notice, ok := notices[c.Query("notice")]; ok {
		data["Notice"] = notice
	}

	return data
}

// ErrorMessage maps err to the text shown to the user.
// Errors without a safe text are logged and replaced by GenericErrorMsg.
func ErrorMessage(err error) string {
	if v, ok := rbac.IsValidation(err); ok {
		return v.Error()
	}

	switch {
	case errors.Is(err, rbac.ErrForbidden):
		return "Access denied"
	case errors.Is(err, rbac.ErrRoleNotFound):
		return "Role not found"
	case errors.Is(err, rbac.ErrPermissionNotFound):
		return "Permission not found"
	case errors.Is(err, rbac.ErrEmptyCategory):
		return "No permissions found in this category"
	case errors.Is(err, rbac.ErrRoleInUse):
		return "The role is assigned to users and cannot be deleted"
	case errors.Is(err, rbac.ErrSuperAdminRole):
		return "This is not allowed for a super-admin role"
	}

	log.Error().Err(err).Msg("request failed")

	return GenericErrorMsg
}

// ParamID parses a positive numeric route parameter.
func ParamID(c *fiber.Ctx, key string) (uint, bool) {
	return parseID(c.Params(key))
}

// QueryID parses a positive numeric query parameter.
func QueryID(c *fiber.Ctx, key string) (uint, bool) {
	return parseID(c.Query(key))
}

// FormID parses a positive numeric form value.
func FormID(c *fiber.Ctx, key string) (uint, bool) {
	return parseID(c.FormValue(key))
}

// FormIDs returns every value posted under key as ids.
// Values that are not numbers become 0, which never resolves to a row.
func FormIDs(c *fiber.Ctx, key string) []uint {
	values := c.Request().PostArgs().PeekMulti(key)
	ids := make([]uint, 0, len(values))

	for _, v := range values {
		id, _ := parseID(string(v))
		ids = append(ids, id)
	}

	return ids
}

// FormMenuAccess collects the menu_visible_<id> and menu_priority_<id> checkboxes.
// A section appears in the result when either box was ticked.
func FormMenuAccess(c *fiber.Ctx) map[uint]rbac.MenuAccess {
	out := make(map[uint]rbac.MenuAccess)

	c.Request().PostArgs().VisitAll(func(key, _ []byte) {
		k := string(key)

		switch {
		case strings.HasPrefix(k, MenuVisibleField):
			if id, ok := parseID(strings.TrimPrefix(k, MenuVisibleField)); ok {
				a := out[id]
				a.Visible = true
				out[id] = a
			}
		case strings.HasPrefix(k, MenuPriorityField):
			if id, ok := parseID(strings.TrimPrefix(k, MenuPriorityField)); ok {
				a := out[id]
				a.Priority = true
				out[id] = a
			}
		}
	})

	return out
}

func parseID(s string) (uint, bool) {
	id, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}

	return uint(id), true
}
