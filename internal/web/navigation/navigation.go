// Package navigation builds the sidebar and breadcrumbs of a page.
package navigation

import "github.com/castboard/castboard/internal/auth"

// Sections of the sidebar.
const (
	SectionDashboard = "dashboard"
	SectionCasts     = "casts"
	SectionShifts    = "shifts"
	SectionStores    = "stores"
	SectionSettings  = "settings"
	SectionUsers     = "users"
)

// Item is a sidebar entry.
type Item struct {
	Section    string
	Title      string
	URL        string
	Permission string
}

// menu is the full sidebar in display order.
var menu = []Item{
	{SectionDashboard, "ダッシュボード", "/dashboard", auth.PermDashboardView},
	{SectionCasts, "キャスト", "/casts", auth.PermCastManage},
	{SectionShifts, "シフト", "/shifts", auth.PermShiftManage},
	{SectionStores, "店舗", "/stores", ""},
	{SectionSettings, "BASE連携", "/settings/base", auth.PermBaseSettings},
	{SectionUsers, "ユーザー", "/users", auth.PermUserManage},
}

// Menu returns the sidebar entries p may open.
func Menu(p *auth.Principal) []Item {
	items := make([]Item, 0, len(menu))

	for _, it := range menu {
		if (auth.Requirement{Permission: it.Permission}).Allows(p) {
			items = append(items, it)
		}
	}

	return items
}

// BreadcrumbItem represents a single breadcrumb link.
type BreadcrumbItem struct {
	Title  string
	URL    string
	Active bool
}

// Context represents the navigation context for a page.
type Context struct {
	PageTitle     string
	ActiveSection string
	StoreName     string
	Menu          []Item
	Breadcrumbs   []BreadcrumbItem
}

// NewContext creates the context of a page in section.
func NewContext(pageTitle, activeSection string) *Context {
	return &Context{
		PageTitle:     pageTitle,
		ActiveSection: activeSection,
		Breadcrumbs:   []BreadcrumbItem{{Title: "ホーム", URL: "/dashboard"}},
	}
}

// For fills the menu for p.
func (c *Context) For(p *auth.Principal) *Context {
	c.Menu = Menu(p)

	return c
}

// InStore sets the store shown in the header.
func (c *Context) InStore(name string) *Context {
	c.StoreName = name

	return c
}

// AddBreadcrumb adds a breadcrumb. The last one added is the active page.
func (c *Context) AddBreadcrumb(title, url string) *Context {
	for i := range c.Breadcrumbs {
		c.Breadcrumbs[i].Active = false
	}

	c.Breadcrumbs = append(c.Breadcrumbs, BreadcrumbItem{Title: title, URL: url, Active: true})

	return c
}

// IsSectionActive checks if the given section is active.
func (c *Context) IsSectionActive(section string) bool {
	return c.ActiveSection == section
}
