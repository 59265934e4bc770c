package main

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"finitefield.org/colorcraft-web/internal/generate"
	mw "finitefield.org/colorcraft-web/internal/middleware"
	"finitefield.org/colorcraft-web/internal/navstate"
	"finitefield.org/colorcraft-web/internal/observability"
)

// createPage renders the create form, pre-filled when a regenerate or template
// seed is pending for the session.
func (a *app) createPage(w http.ResponseWriter, r *http.Request) {
	form := defaultCreateForm()
	prefilled := false
	if seed, err := a.navstate.TakeSeed(mw.GetSession(r).ID); err == nil {
		form = formFromSeed(seed)
		prefilled = true
	}
	view := buildCreateView(form, nil, nil, a.generator.Mock())
	view.Prefilled = prefilled
	a.render.page(w, r, http.StatusOK, "create", a.pageData(r, "create.title", view))
}

// createSubmit generates a page and hands the result to the result view.
func (a *app) createSubmit(w http.ResponseWriter, r *http.Request) {
	logger := observability.FromContext(r.Context())
	sess := mw.GetSession(r)
	if err := r.ParseForm(); err != nil {
		mw.WriteError(w, r, http.StatusBadRequest, "invalid form submission")
		return
	}
	form := parseCreateForm(r.PostForm)

	if !a.limiter.Allow(sess.ID) {
		logger.Warn("create rate limited")
		a.renderCreate(w, r, http.StatusTooManyRequests, form, nil, &CreateAlert{Tone: "warning", MessageKey: "create.error.rate_limited"})
		return
	}

	res, err := a.generator.Generate(r.Context(), form)
	if err != nil {
		var verr *generate.ValidationError
		if errors.As(err, &verr) {
			a.renderCreate(w, r, http.StatusUnprocessableEntity, form, verr.Fields, nil)
			return
		}
		logger.Error("generation failed", zap.Error(err))
		a.renderCreate(w, r, http.StatusBadGateway, form, nil, &CreateAlert{Tone: "danger", MessageKey: "create.error.generator"})
		return
	}

	payload := navstate.GenerationResult{
		Prompt:         form.Prompt,
		Style:          form.Style,
		Complexity:     form.Complexity,
		Theme:          form.Theme,
		GeneratedImage: res.Image,
	}
	a.history.Add(sess.ID, payload)
	a.navstate.PutResult(sess.ID, payload)
	logger.Info("page generated", zap.String("style", form.Style), zap.String("complexity", form.Complexity), zap.Bool("mock", a.generator.Mock()))
	mw.Redirect(w, r, "/result")
}

func (a *app) renderCreate(w http.ResponseWriter, r *http.Request, status int, form generate.Request, errs map[string]string, alert *CreateAlert) {
	view := buildCreateView(form, errs, alert, a.generator.Mock())
	a.render.page(w, r, status, "create", a.pageData(r, "create.title", view))
}
