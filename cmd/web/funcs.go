package main

import (
	"html/template"
	"strings"
	"time"

	"finitefield.org/colorcraft-web/internal/format"
	"finitefield.org/colorcraft-web/internal/i18n"
)

// lucide-style outline glyphs used by the navigation and result actions.
var iconPaths = map[string]string{
	"palette":      `<circle cx="13.5" cy="6.5" r=".5"/><circle cx="17.5" cy="10.5" r=".5"/><circle cx="8.5" cy="7.5" r=".5"/><circle cx="6.5" cy="12.5" r=".5"/><path d="M12 2C6.5 2 2 6.5 2 12s4.5 10 10 10c.9 0 1.6-.7 1.6-1.7 0-.4-.2-.8-.4-1.1-.3-.3-.4-.7-.4-1.1a1.6 1.6 0 0 1 1.6-1.7h2c3.1 0 5.6-2.5 5.6-5.6C22 6 17.5 2 12 2z"/>`,
	"book":         `<path d="M4 19.5v-15A2.5 2.5 0 0 1 6.5 2H20v20H6.5a2.5 2.5 0 0 1 0-5H20"/>`,
	"history":      `<path d="M3 12a9 9 0 1 0 9-9 9.75 9.75 0 0 0-6.74 2.74L3 8"/><path d="M3 3v5h5"/><path d="M12 7v5l4 2"/>`,
	"help-circle":  `<circle cx="12" cy="12" r="10"/><path d="M9.09 9a3 3 0 0 1 5.83 1c0 2-3 3-3 3"/><path d="M12 17h.01"/>`,
	"user":         `<path d="M19 21v-2a4 4 0 0 0-4-4H9a4 4 0 0 0-4 4v2"/><circle cx="12" cy="7" r="4"/>`,
	"user-plus":    `<path d="M16 21v-2a4 4 0 0 0-4-4H6a4 4 0 0 0-4 4v2"/><circle cx="9" cy="7" r="4"/><path d="M19 8v6"/><path d="M22 11h-6"/>`,
	"menu":         `<path d="M4 6h16"/><path d="M4 12h16"/><path d="M4 18h16"/>`,
	"x":            `<path d="M18 6 6 18"/><path d="m6 6 12 12"/>`,
	"sun":          `<circle cx="12" cy="12" r="4"/><path d="M12 2v2"/><path d="M12 20v2"/><path d="m4.93 4.93 1.41 1.41"/><path d="m17.66 17.66 1.41 1.41"/><path d="M2 12h2"/><path d="M20 12h2"/><path d="m6.34 17.66-1.41 1.41"/><path d="m19.07 4.93-1.41 1.41"/>`,
	"moon":         `<path d="M12 3a6 6 0 0 0 9 9 9 9 0 1 1-9-9Z"/>`,
	"sparkles":     `<path d="m12 3-1.9 5.8a2 2 0 0 1-1.3 1.3L3 12l5.8 1.9a2 2 0 0 1 1.3 1.3L12 21l1.9-5.8a2 2 0 0 1 1.3-1.3L21 12l-5.8-1.9a2 2 0 0 1-1.3-1.3Z"/>`,
	"download":     `<path d="M21 15v4a2 2 0 0 1-2 2H5a2 2 0 0 1-2-2v-4"/><path d="m7 10 5 5 5-5"/><path d="M12 15V3"/>`,
	"refresh":      `<path d="M3 12a9 9 0 0 1 9-9 9.75 9.75 0 0 1 6.74 2.74L21 8"/><path d="M21 3v5h-5"/><path d="M21 12a9 9 0 0 1-9 9 9.75 9.75 0 0 1-6.74-2.74L3 16"/><path d="M8 16H3v5"/>`,
	"share":        `<circle cx="18" cy="5" r="3"/><circle cx="6" cy="12" r="3"/><circle cx="18" cy="19" r="3"/><path d="m8.59 13.51 6.83 3.98"/><path d="m15.41 6.51-6.82 3.98"/>`,
	"heart":        `<path d="M19 14c1.49-1.46 3-3.21 3-5.5A5.5 5.5 0 0 0 16.5 3c-1.76 0-3 .5-4.5 2-1.5-1.5-2.74-2-4.5-2A5.5 5.5 0 0 0 2 8.5c0 2.3 1.5 4.05 3 5.5l7 7Z"/>`,
	"arrow-left":   `<path d="m12 19-7-7 7-7"/><path d="M19 12H5"/>`,
	"arrow-right":  `<path d="M5 12h14"/><path d="m12 5 7 7-7 7"/>`,
	"loader":       `<path d="M21 12a9 9 0 1 1-6.22-8.56"/>`,
}

func iconSVG(name, class string) template.HTML {
	paths, ok := iconPaths[name]
	if !ok {
		return ""
	}
	if class == "" {
		class = "icon"
	}
	// paths are static literals above; class comes from templates only.
	return template.HTML(`<svg class="` + template.HTMLEscapeString(class) + `" xmlns="http://www.w3.org/2000/svg" viewBox="0 0 24 24" fill="none" stroke="currentColor" stroke-width="2" stroke-linecap="round" stroke-linejoin="round" aria-hidden="true">` + paths + `</svg>`) //nolint:gosec
}

// imageSrc admits data:image and http(s) URIs into src attributes, which
// html/template would otherwise neutralize.
func imageSrc(uri string) template.URL {
	u := strings.TrimSpace(uri)
	switch {
	case strings.HasPrefix(u, "data:image/"), strings.HasPrefix(u, "https://"), strings.HasPrefix(u, "http://"):
		return template.URL(u) //nolint:gosec
	}
	return template.URL("about:blank")
}

func templateFuncs(bundle *i18n.Bundle) template.FuncMap {
	return template.FuncMap{
		"now": time.Now,
		"t": func(lang, key string) string {
			if bundle == nil {
				return key
			}
			return bundle.T(lang, key)
		},
		"icon": func(name string, class ...string) template.HTML {
			c := ""
			if len(class) > 0 {
				c = class[0]
			}
			return iconSVG(name, c)
		},
		"title":     func(lang, v string) string { return format.Title(v, lang) },
		"timestamp": func(lang string, t time.Time) string { return format.Timestamp(t, lang) },
		"date":      func(lang string, t time.Time) string { return format.Date(t, lang) },
		"truncate":  format.Truncate,
		"imgsrc":    imageSrc,
	}
}
