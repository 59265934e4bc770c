package main

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"finitefield.org/colorcraft-web/internal/content"
	"finitefield.org/colorcraft-web/internal/handlers"
	"finitefield.org/colorcraft-web/internal/history"
	mw "finitefield.org/colorcraft-web/internal/middleware"
	"finitefield.org/colorcraft-web/internal/observability"
)

// HomeData is the landing page model.
type HomeData struct {
	Primary   handlers.Link
	Secondary handlers.Link
}

func (a *app) homePage(w http.ResponseWriter, r *http.Request) {
	page := HomeData{
		Primary:   handlers.Link{Href: "/create", LabelKey: "home.cta.create"},
		Secondary: handlers.Link{Href: "/welcome", LabelKey: "home.cta.welcome"},
	}
	a.render.page(w, r, http.StatusOK, "home", a.pageData(r, "home.title", page))
}

func (a *app) welcomePage(w http.ResponseWriter, r *http.Request) {
	a.render.page(w, r, http.StatusOK, "welcome", a.pageData(r, "welcome.title", handlers.BuildOnboardingData()))
}

// PlaceholderData backs pages whose flows live outside this service.
type PlaceholderData struct {
	Name    string
	BodyKey string
	Back    handlers.Link
}

func (a *app) placeholderPage(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page := PlaceholderData{
			Name:    name,
			BodyKey: "placeholder." + name + ".body",
			Back:    handlers.Link{Href: "/create", LabelKey: "placeholder.back"},
		}
		a.render.page(w, r, http.StatusOK, "placeholder", a.pageData(r, "placeholder."+name+".title", page))
	}
}

func (a *app) notFoundPage(w http.ResponseWriter, r *http.Request) {
	page := PlaceholderData{
		Name:    "notfound",
		BodyKey: "notfound.body",
		Back:    handlers.Link{Href: "/", LabelKey: "notfound.back"},
	}
	a.render.page(w, r, http.StatusNotFound, "placeholder", a.pageData(r, "notfound.title", page))
}

// TemplatesData lists the ready-made prompts.
type TemplatesData struct {
	Ideas []handlers.TemplateIdea
}

func (a *app) templatesPage(w http.ResponseWriter, r *http.Request) {
	a.render.page(w, r, http.StatusOK, "templates", a.pageData(r, "templates.title", TemplatesData{Ideas: handlers.TemplateIdeas}))
}

// useTemplate pre-fills the create form with a template's inputs.
func (a *app) useTemplate(w http.ResponseWriter, r *http.Request) {
	idea, ok := handlers.FindTemplate(chi.URLParam(r, "templateID"))
	if !ok {
		mw.WriteError(w, r, http.StatusNotFound, "template not found")
		return
	}
	a.navstate.PutSeed(mw.GetSession(r).ID, idea.Seed)
	mw.Redirect(w, r, "/create")
}

// HistoryData lists the session's recent generations.
type HistoryData struct {
	Entries []history.Entry
}

func (a *app) historyPage(w http.ResponseWriter, r *http.Request) {
	entries := a.history.List(mw.GetSession(r).ID)
	a.render.page(w, r, http.StatusOK, "history", a.pageData(r, "history.title", HistoryData{Entries: entries}))
}

// openHistory re-opens a past generation in the result view.
func (a *app) openHistory(w http.ResponseWriter, r *http.Request) {
	sess := mw.GetSession(r)
	entry, err := a.history.Get(sess.ID, chi.URLParam(r, "entryID"))
	if err != nil {
		mw.WriteError(w, r, http.StatusNotFound, "history entry not found")
		return
	}
	a.navstate.PutResult(sess.ID, entry.Result)
	mw.Redirect(w, r, "/result")
}

func (a *app) faqPage(w http.ResponseWriter, r *http.Request) {
	page, err := a.content.Page("faq", mw.Lang(r))
	if err != nil {
		if !errors.Is(err, content.ErrNotFound) {
			observability.FromContext(r.Context()).Error("load faq", zap.Error(err))
		}
		a.notFoundPage(w, r)
		return
	}
	data := a.pageData(r, "faq.title", page)
	if page.Title != "" {
		data.Title = page.Title
	}
	a.render.page(w, r, http.StatusOK, "faq", data)
}
