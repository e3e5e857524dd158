package navigation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/possuite/backoffice/internal/db/models"
	"github.com/possuite/backoffice/internal/rbac"
)

func TestNewContext(t *testing.T) {
	ctx := NewContext("Roles", "administration", "roles")

	assert.Equal(t, "Roles", ctx.PageTitle)
	assert.Equal(t, "administration", ctx.ActiveSection)
	assert.Equal(t, "roles", ctx.ActivePage)
	assert.NotNil(t, ctx.Breadcrumbs)
	assert.Empty(t, ctx.Breadcrumbs)
	assert.Empty(t, ctx.Sidebar)
}

func TestContext_AddBreadcrumb_Chaining(t *testing.T) {
	ctx := NewContext("Edit Role", "administration", "roles").
		AddBreadcrumb("Home", "/", false).
		AddBreadcrumb("Roles", "/admin/role", false).
		AddBreadcrumb("Edit", "/admin/role/2/edit", true)

	assert.Len(t, ctx.Breadcrumbs, 3)
	assert.Equal(t, "Home", ctx.Breadcrumbs[0].Title)
	assert.Equal(t, "/admin/role", ctx.Breadcrumbs[1].URL)
	assert.False(t, ctx.Breadcrumbs[1].Active)
	assert.True(t, ctx.Breadcrumbs[2].Active)
}

func TestContext_IsActive(t *testing.T) {
	ctx := NewContext("Menu", "administration", "menu-assignment")

	assert.True(t, ctx.IsActive("administration", "menu-assignment"))
	assert.False(t, ctx.IsActive("dashboard", "menu-assignment"))
	assert.False(t, ctx.IsActive("administration", "roles"))
	assert.True(t, ctx.IsSectionActive("administration"))
	assert.False(t, ctx.IsSectionActive("dashboard"))
}

func section(key string, priority bool) rbac.VisibleSection {
	return rbac.VisibleSection{
		MenuSection: models.MenuSection{SectionKey: key, SectionName: key, SectionIcon: "fa-" + key},
		Priority:    priority,
	}
}

func TestNewSidebar(t *testing.T) {
	items := NewSidebar([]rbac.VisibleSection{
		section("dashboard", false),
		section("inventory", false),
		section("point_of_sale", true),
		section(SectionAdministration, false),
		section("reports", true),
	})

	keys := make([]string, 0, len(items))
	for _, item := range items {
		keys = append(keys, item.Key)
	}

	assert.Equal(t, []string{"point_of_sale", "reports", "dashboard", "inventory", "administration"}, keys)
	assert.True(t, items[0].Priority)
	assert.Equal(t, "/point_of_sale", items[0].URL)
	assert.Equal(t, "/dashboard", items[2].URL)
	assert.Equal(t, "/admin/role", items[4].URL)
	assert.Equal(t, "fa-inventory", items[3].Icon)

	assert.Empty(t, NewSidebar(nil))
}

func TestWithSidebar(t *testing.T) {
	ctx := NewContext("Dashboard", "dashboard", "dashboard").
		WithSidebar([]rbac.VisibleSection{section("dashboard", false)})

	assert.Len(t, ctx.Sidebar, 1)
	assert.Equal(t, "dashboard", ctx.Sidebar[0].Title)
}
