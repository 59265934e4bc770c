package main

import (
	"net/http"

	"go.uber.org/zap"

	"finitefield.org/colorcraft-web/internal/handlers"
	mw "finitefield.org/colorcraft-web/internal/middleware"
	"finitefield.org/colorcraft-web/internal/nav"
	"finitefield.org/colorcraft-web/internal/observability"
	"finitefield.org/colorcraft-web/internal/theme"
)

// navFragment renders the header with the menu state carried in the query,
// e.g. /ui/nav?path=/create&menu=1.
func (a *app) navFragment(w http.ResponseWriter, r *http.Request) {
	shell := nav.ParseShell(r.URL.Query())
	dark := theme.FromContext(r.Context()).IsDark()
	w.Header().Set("Cache-Control", "no-store")
	a.render.fragment(w, r, http.StatusOK, "frag_header", handlers.BuildHeader(mw.Lang(r), shell, dark, mw.CSRFToken(r)))
}

// toggleTheme is the only handler holding the writable theme controller.
func (a *app) toggleTheme(w http.ResponseWriter, r *http.Request) {
	c, ok := theme.ControllerFromContext(r.Context())
	if !ok {
		mw.WriteError(w, r, http.StatusInternalServerError, "theme unavailable")
		return
	}
	dark := c.Toggle()
	observability.FromContext(r.Context()).Debug("theme toggled", zap.Bool("dark", dark))

	if !mw.IsHTMX(r.Context()) {
		http.Redirect(w, r, backTarget(r), http.StatusSeeOther)
		return
	}
	mw.Trigger(w, map[string]any{"theme:changed": map[string]any{"dark": dark}})
	a.render.fragment(w, r, http.StatusOK, "frag_theme_toggle", handlers.ThemeToggleData{Lang: mw.Lang(r), Dark: dark, CSRF: mw.CSRFToken(r)})
}
