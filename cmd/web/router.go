package main

import (
	"io"
	"net/http"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	mw "finitefield.org/colorcraft-web/internal/middleware"
	"finitefield.org/colorcraft-web/internal/observability"
	"finitefield.org/colorcraft-web/internal/theme"
)

func newRouter(a *app) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	// If deployed behind a trusted reverse proxy/load balancer, RealIP will use
	// X-Forwarded-For to determine the client IP.
	r.Use(chimw.RealIP)
	r.Use(observability.InjectLoggerMiddleware(a.logger))
	r.Use(observability.RequestLoggerMiddleware)
	r.Use(observability.RecoveryMiddleware)
	r.Use(chimw.Compress(5))
	timeout := a.cfg.Server.WriteTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	r.Use(chimw.Timeout(timeout))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, "ok")
	})
	r.Handle("/assets/*", mw.AssetsWithCache("/assets", filepath.Join(a.cfg.Paths.Public, "assets"), a.cfg.DevMode))
	r.Get("/favicon.ico", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/assets/favicon.svg", http.StatusMovedPermanently)
	})

	fallbackTheme, _ := theme.Parse(a.cfg.UI.DefaultTheme)
	r.Group(func(r chi.Router) {
		r.Use(mw.HTMX)
		r.Use(mw.Session)
		r.Use(mw.Locale(a.bundle))
		r.Use(theme.Middleware(fallbackTheme))
		r.Use(mw.CSRF)

		r.Group(func(r chi.Router) {
			r.Use(a.leaveResult)
			r.Get("/", a.homePage)
			r.Get("/welcome", a.welcomePage)
			r.Get("/create", a.createPage)
			r.Get("/templates", a.templatesPage)
			r.Get("/history", a.historyPage)
			r.Get("/faq", a.faqPage)
			r.Get("/account", a.placeholderPage("account"))
			r.Get("/signup", a.placeholderPage("signup"))
			r.Get("/login", a.placeholderPage("login"))
		})
		r.Post("/create", a.createSubmit)
		r.Post("/templates/{templateID}", a.useTemplate)
		r.Post("/history/{entryID}/open", a.openHistory)

		r.Get("/result", a.resultPage)
		r.Route("/result/{viewID}", func(r chi.Router) {
			r.Get("/actions", a.resultActions)
			r.Get("/image", a.resultImage)
			r.Post("/download", a.resultDownload)
			r.Post("/regenerate", a.resultRegenerate)
			r.Post("/like", a.resultLike)
			r.Post("/share", a.resultShare)
			r.Post("/share/failed", a.resultShareFailed)
		})

		r.Post("/theme/toggle", a.toggleTheme)
		r.Get("/ui/nav", a.navFragment)

		r.NotFound(a.notFoundPage)
	})
	return r
}

func (a *app) newServer(handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              a.cfg.Server.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       a.cfg.Server.ReadTimeout,
		WriteTimeout:      a.cfg.Server.WriteTimeout,
		IdleTimeout:       a.cfg.Server.IdleTimeout,
	}
}
