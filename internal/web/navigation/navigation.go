// Package navigation builds the per-page navigation state: breadcrumbs and the role's sidebar.
package navigation

import (
	"sort"

	"github.com/possuite/backoffice/internal/rbac"
)

// SectionAdministration is the key of the menu section holding the RBAC screens.
const SectionAdministration = "administration"

// sectionRoutes maps menu section keys to their landing page.
// Sections without an entry link to "/<key>".
var sectionRoutes = map[string]string{ //nolint:gochecknoglobals
	"dashboard":           "/dashboard",
	SectionAdministration: "/admin/role",
}

// BreadcrumbItem represents a single breadcrumb link.
type BreadcrumbItem struct {
	Title  string
	URL    string
	Active bool
}

// SidebarItem is one menu section in the sidebar.
type SidebarItem struct {
	Key      string
	Title    string
	Icon     string
	URL      string
	Priority bool
}

// Context represents the navigation context for a page.
type Context struct {
	ActiveSection string
	ActivePage    string
	Breadcrumbs   []BreadcrumbItem
	PageTitle     string
	Sidebar       []SidebarItem
}

// NewContext creates a new navigation context.
func NewContext(pageTitle, activeSection, activePage string) *Context {
	return &Context{
		PageTitle:     pageTitle,
		ActiveSection: activeSection,
		ActivePage:    activePage,
		Breadcrumbs:   make([]BreadcrumbItem, 0),
	}
}

// AddBreadcrumb adds a breadcrumb item to the context.
func (c *Context) AddBreadcrumb(title, url string, active bool) *Context {
	c.Breadcrumbs = append(c.Breadcrumbs, BreadcrumbItem{
		Title:  title,
		URL:    url,
		Active: active,
	})

	return c
}

// WithSidebar sets the sidebar built from the sections the role sees.
func (c *Context) WithSidebar(sections []rbac.VisibleSection) *Context {
	c.Sidebar = NewSidebar(sections)
	return c
}

// IsActive checks if the given section and page match the current context.
func (c *Context) IsActive(section, page string) bool {
	return c.ActiveSection == section && c.ActivePage == page
}

// IsSectionActive checks if the given section is active.
func (c *Context) IsSectionActive(section string) bool {
	return c.ActiveSection == section
}

// NewSidebar orders priority sections first and keeps the sort order within each group.
func NewSidebar(sections []rbac.VisibleSection) []SidebarItem {
	items := make([]SidebarItem, 0, len(sections))

	for i := range sections {
		s := &sections[i]
		items = append(items, SidebarItem{
			Key:      s.SectionKey,
			Title:    s.SectionName,
			Icon:     s.SectionIcon,
			URL:      SectionURL(s.SectionKey),
			Priority: s.Priority,
		})
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Priority && !items[j].Priority
	})

	return items
}

// SectionURL returns the landing page of a menu section.
func SectionURL(key string) string {
	if url, ok := sectionRoutes[key]; ok {
		return url
	}

	return "/" + key
}
