package nav

import (
	"net/url"
	"strings"
)

// Icon is an optional reference to a named glyph. The zero value means "no icon".
type Icon struct {
	name string
}

// IconNamed returns an icon reference for the given glyph name.
func IconNamed(name string) Icon {
	return Icon{name: strings.TrimSpace(name)}
}

// Present reports whether the item carries an icon.
func (i Icon) Present() bool { return i.name != "" }

// Name returns the glyph name, empty when absent.
func (i Icon) Name() string { return i.name }

// Item represents a top-level navigation destination.
type Item struct {
	Path     string // e.g. "/create"
	LabelKey string // i18n key, e.g. "nav.create"
	Icon     Icon
}

// RenderedItem is a view model for templates.
type RenderedItem struct {
	Href     string
	LabelKey string
	Icon     Icon
	Active   bool
}

// Main is the primary navigation definition.
var Main = []Item{
	{Path: "/", LabelKey: "nav.home"},
	{Path: "/create", LabelKey: "nav.create", Icon: IconNamed("palette")},
	{Path: "/templates", LabelKey: "nav.templates", Icon: IconNamed("book")},
	{Path: "/history", LabelKey: "nav.history", Icon: IconNamed("history")},
	{Path: "/faq", LabelKey: "nav.faq", Icon: IconNamed("help-circle")},
}

// Account and CreateNow are the header shortcuts rendered next to the main items.
var (
	Account   = Item{Path: "/account", LabelKey: "nav.account", Icon: IconNamed("user")}
	CreateNow = Item{Path: "/create", LabelKey: "nav.create_now"}
)

// Build renders navigation items with active state given the current path.
// Only an exact path match is highlighted, so unknown paths highlight nothing.
func Build(currentPath string) []RenderedItem {
	if currentPath == "" {
		currentPath = "/"
	}
	items := make([]RenderedItem, 0, len(Main))
	for _, it := range Main {
		items = append(items, RenderedItem{
			Href:     it.Path,
			LabelKey: it.LabelKey,
			Icon:     it.Icon,
			Active:   it.Path == currentPath,
		})
	}
	return items
}

// Shell is the header state for one rendering: the current path and whether
// the mobile menu is expanded.
type Shell struct {
	Path     string
	MenuOpen bool
}

// NewShell returns the shell after navigating to path: collapsed, with path active.
func NewShell(path string) *Shell {
	s := &Shell{}
	s.Activate(path)
	return s
}

// Toggle flips the mobile menu and returns the new state.
func (s *Shell) Toggle() bool {
	s.MenuOpen = !s.MenuOpen
	return s.MenuOpen
}

// Activate records navigation to path and collapses the menu.
func (s *Shell) Activate(path string) {
	if path == "" {
		path = "/"
	}
	s.Path = path
	s.MenuOpen = false
}

// Items returns the main navigation for the shell's path.
func (s *Shell) Items() []RenderedItem {
	return Build(s.Path)
}

// ToggleURL is the fragment endpoint that renders the header with the menu flipped.
func (s *Shell) ToggleURL() string {
	q := url.Values{}
	q.Set("path", s.Path)
	if s.MenuOpen {
		q.Set("menu", "0")
	} else {
		q.Set("menu", "1")
	}
	return "/ui/nav?" + q.Encode()
}

// ParseShell rebuilds shell state from the fragment query (?path=&menu=).
// Paths that are not site-relative fall back to "/".
func ParseShell(q url.Values) *Shell {
	p := q.Get("path")
	if !strings.HasPrefix(p, "/") || strings.HasPrefix(p, "//") {
		p = "/"
	}
	s := NewShell(p)
	switch strings.ToLower(q.Get("menu")) {
	case "1", "true", "open":
		s.MenuOpen = true
	}
	return s
}
