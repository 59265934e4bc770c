package main

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"finitefield.org/colorcraft-web/internal/config"
	"finitefield.org/colorcraft-web/internal/content"
	"finitefield.org/colorcraft-web/internal/generate"
	"finitefield.org/colorcraft-web/internal/handlers"
	"finitefield.org/colorcraft-web/internal/history"
	"finitefield.org/colorcraft-web/internal/i18n"
	mw "finitefield.org/colorcraft-web/internal/middleware"
	"finitefield.org/colorcraft-web/internal/nav"
	"finitefield.org/colorcraft-web/internal/navstate"
	"finitefield.org/colorcraft-web/internal/observability"
	"finitefield.org/colorcraft-web/internal/result"
	"finitefield.org/colorcraft-web/internal/theme"
)

// app wires the stores and collaborators shared by every handler.
type app struct {
	cfg       config.Config
	logger    *zap.Logger
	bundle    *i18n.Bundle
	render    *renderer
	navstate  *navstate.Store
	views     *result.Registry
	history   *history.Store
	generator *generate.Client
	content   *content.Loader
	limiter   *keyedLimiter
	scheduler result.Scheduler
	now       func() time.Time
}

func newApp(cfg config.Config, logger *zap.Logger) (*app, error) {
	if logger == nil {
		logger = observability.NoopLogger()
	}
	langs := []string{"en", "ja"}
	bundle, err := i18n.Load(cfg.Paths.Locales, cfg.UI.FallbackLocale, langs)
	if err != nil {
		return nil, err
	}
	for _, l := range langs {
		if missing := bundle.Missing(l); len(missing) > 0 {
			logger.Warn("untranslated messages use the fallback language", zap.String("lang", l), zap.Strings("keys", missing))
		}
	}
	rd, err := newRenderer(cfg.Paths.Templates, cfg.DevMode, templateFuncs(bundle))
	if err != nil {
		return nil, err
	}
	contentTTL := 5 * time.Minute
	if cfg.DevMode {
		contentTTL = 0
	}
	return &app{
		cfg:       cfg,
		logger:    logger,
		bundle:    bundle,
		render:    rd,
		navstate:  navstate.NewStore(cfg.UI.ViewTTL),
		views:     result.NewRegistry(cfg.UI.ViewTTL),
		history:   history.NewStore(cfg.UI.HistoryLimit),
		generator: generate.NewClient(cfg.Generator.URL, cfg.Generator.Token, cfg.Generator.Timeout),
		content:   content.NewLoader(cfg.Paths.Content, cfg.UI.FallbackLocale, contentTTL),
		limiter:   newKeyedLimiter(cfg.UI.CreatePerMinute, time.Minute),
		scheduler: result.TimerScheduler,
		now:       time.Now,
	}, nil
}

// leaveResult unmounts the session's result view before a page that replaces
// it renders. Only routed pages use it; 404s and asset fetches keep the view.
func (a *app) leaveResult(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		a.views.Release(mw.GetSession(r).ID)
		next.ServeHTTP(w, r)
	})
}

// pageData builds the layout model for a full page render.
func (a *app) pageData(r *http.Request, titleKey string, page any) handlers.PageData {
	lang := mw.Lang(r)
	path := r.URL.Path

	// a full page load is a navigation, so the menu always starts collapsed
	shell := nav.NewShell(path)
	dark := theme.FromContext(r.Context()).IsDark()
	csrf := mw.CSRFToken(r)
	return handlers.PageData{
		Title:  a.bundle.T(lang, titleKey),
		Lang:   lang,
		Path:   path,
		Dark:   dark,
		CSRF:   csrf,
		Header: handlers.BuildHeader(lang, shell, dark, csrf),
		Page:   page,
	}
}

func (a *app) viewOptions(r *http.Request) result.Options {
	return result.Options{
		Scheduler:     a.scheduler,
		DownloadDelay: a.cfg.UI.DownloadDelay,
		Now:           a.now,
		Logger:        observability.FromContext(r.Context()).Named("result"),
	}
}

// pageURL is the address shared or copied from the result page.
func (a *app) pageURL(r *http.Request) string {
	if cur := strings.TrimSpace(r.Header.Get("HX-Current-URL")); cur != "" {
		if u, err := url.Parse(cur); err == nil && u.Host == r.Host && u.Path == "/result" {
			return u.String()
		}
	}
	if base := strings.TrimRight(a.cfg.Server.PublicBaseURL, "/"); base != "" {
		return base + "/result"
	}
	scheme := "http"
	if r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https") {
		scheme = "https"
	}
	return scheme + "://" + r.Host + "/result"
}

// backTarget returns a same-origin Referer path, or "/".
func backTarget(r *http.Request) string {
	ref := strings.TrimSpace(r.Referer())
	if ref == "" {
		return "/"
	}
	u, err := url.Parse(ref)
	if err != nil || (u.Host != "" && u.Host != r.Host) {
		return "/"
	}
	p := u.EscapedPath()
	if !strings.HasPrefix(p, "/") || strings.HasPrefix(p, "//") {
		return "/"
	}
	if u.RawQuery != "" {
		p += "?" + u.RawQuery
	}
	return p
}
