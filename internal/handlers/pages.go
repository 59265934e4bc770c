package handlers

import (
	"finitefield.org/colorcraft-web/internal/nav"
)

// PageData is the view model for every page rendered with the shared layout.
type PageData struct {
	Title string
	Lang  string
	Path  string
	Dark  bool
	CSRF  string

	Header HeaderData

	// Page carries the page specific view model.
	Page any
}

// HeaderData drives the navigation header fragment.
type HeaderData struct {
	Lang      string
	Shell     *nav.Shell
	Items     []nav.RenderedItem
	Account   nav.RenderedItem
	CreateNow nav.RenderedItem
	Toggle    ThemeToggleData
}

// ThemeToggleData drives the theme toggle fragment.
type ThemeToggleData struct {
	Lang string
	Dark bool
	CSRF string
}

// BuildHeader renders the header for shell.
func BuildHeader(lang string, shell *nav.Shell, dark bool, csrf string) HeaderData {
	return HeaderData{
		Lang:      lang,
		Shell:     shell,
		Items:     shell.Items(),
		Account:   render(nav.Account, shell.Path),
		CreateNow: render(nav.CreateNow, shell.Path),
		Toggle:    ThemeToggleData{Lang: lang, Dark: dark, CSRF: csrf},
	}
}

func render(it nav.Item, path string) nav.RenderedItem {
	return nav.RenderedItem{Href: it.Path, LabelKey: it.LabelKey, Icon: it.Icon, Active: it.Path == path}
}

// Link is a labelled destination.
type Link struct {
	Href     string
	LabelKey string
}
