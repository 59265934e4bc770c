package main

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	mw "finitefield.org/colorcraft-web/internal/middleware"
	"finitefield.org/colorcraft-web/internal/navstate"
	"finitefield.org/colorcraft-web/internal/observability"
	"finitefield.org/colorcraft-web/internal/platform"
	"finitefield.org/colorcraft-web/internal/result"
)

// resultPage mounts the result view for the pending generation payload. With
// no payload the session's live view is shown again (reload), otherwise the
// empty state.
func (a *app) resultPage(w http.ResponseWriter, r *http.Request) {
	sess := mw.GetSession(r)
	lang := mw.Lang(r)

	var snap result.Snapshot
	payload, err := a.navstate.TakeResult(sess.ID)
	switch {
	case err == nil && payload.HasImage():
		m := a.views.Mount(sess.ID, payload, a.viewOptions(r))
		snap = m.View.Snapshot()
	case err == nil:
		a.views.Release(sess.ID)
		snap = result.NewView("", &payload, nil, a.viewOptions(r)).Snapshot()
	default:
		if m, ok := a.views.Current(sess.ID); ok {
			snap = m.View.Snapshot()
		} else {
			snap = result.NewView("", nil, nil, a.viewOptions(r)).Snapshot()
		}
	}

	w.Header().Set("Cache-Control", "no-store")
	a.render.page(w, r, http.StatusOK, "result", a.pageData(r, "result.title", buildResultView(lang, snap)))
}

// mountedView resolves {viewID} for the session, writing a 404 when unknown.
func (a *app) mountedView(w http.ResponseWriter, r *http.Request) (result.Mounted, bool) {
	m, err := a.views.Get(mw.GetSession(r).ID, chi.URLParam(r, "viewID"))
	if err != nil {
		mw.Refresh(w, r)
		mw.WriteError(w, r, http.StatusNotFound, "result view not found")
		return result.Mounted{}, false
	}
	return m, true
}

// renderActions flushes queued platform instructions and re-renders the action bar.
func (a *app) renderActions(w http.ResponseWriter, r *http.Request, m result.Mounted) {
	w.Header().Set("Cache-Control", "no-store")
	mw.Trigger(w, platform.AddEvents(nil, m.Browser.Drain()))
	a.render.fragment(w, r, http.StatusOK, "frag_result_actions", buildResultActions(mw.Lang(r), m.View.Snapshot()))
}

// actionError maps view errors to responses. The busy case notifies through
// the platform event; stale views make htmx reload into the current state.
func (a *app) actionError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, result.ErrDownloadInFlight):
		mw.Trigger(w, platform.AddEvents(nil, []platform.Instruction{
			{Op: platform.OpNotify, Text: a.bundle.T(mw.Lang(r), "result.error.download_busy")},
		}))
		mw.WriteError(w, r, http.StatusConflict, "download already in progress")
	case errors.Is(err, result.ErrEmpty):
		mw.Refresh(w, r)
		mw.WriteError(w, r, http.StatusConflict, "no result to act on")
	case errors.Is(err, result.ErrUnmounted):
		mw.Refresh(w, r)
		mw.WriteError(w, r, http.StatusGone, "result view closed")
	default:
		observability.FromContext(r.Context()).Error("result action failed", zap.Error(err))
		mw.WriteError(w, r, http.StatusInternalServerError, "action failed")
	}
}

func (a *app) resultActions(w http.ResponseWriter, r *http.Request) {
	m, ok := a.mountedView(w, r)
	if !ok {
		return
	}
	a.renderActions(w, r, m)
}

func (a *app) resultDownload(w http.ResponseWriter, r *http.Request) {
	m, ok := a.mountedView(w, r)
	if !ok {
		return
	}
	if err := m.View.Download(); err != nil {
		a.actionError(w, r, err)
		return
	}
	a.renderActions(w, r, m)
}

func (a *app) resultLike(w http.ResponseWriter, r *http.Request) {
	m, ok := a.mountedView(w, r)
	if !ok {
		return
	}
	if _, err := m.View.ToggleLike(); err != nil {
		a.actionError(w, r, err)
		return
	}
	a.renderActions(w, r, m)
}

func (a *app) resultRegenerate(w http.ResponseWriter, r *http.Request) {
	m, ok := a.mountedView(w, r)
	if !ok {
		return
	}
	sessionID := mw.GetSession(r).ID
	err := m.View.Regenerate(result.NavigatorFunc(func(path string, seed navstate.FormSeed) {
		a.navstate.PutSeed(sessionID, seed)
		mw.Redirect(w, r, path)
	}))
	if err != nil {
		a.actionError(w, r, err)
	}
}

// resultShare expects the client to advertise navigator.share in the "share"
// form value.
func (a *app) resultShare(w http.ResponseWriter, r *http.Request) {
	m, ok := a.mountedView(w, r)
	if !ok {
		return
	}
	canShare, _ := strconv.ParseBool(strings.TrimSpace(r.PostFormValue("share")))
	m.Browser.SetCanShare(canShare)
	if err := m.View.Share(r.Context(), a.pageURL(r)); err != nil {
		a.actionError(w, r, err)
		return
	}
	a.renderActions(w, r, m)
}

// resultShareFailed receives share sheet rejections reported by the client.
func (a *app) resultShareFailed(w http.ResponseWriter, r *http.Request) {
	m, ok := a.mountedView(w, r)
	if !ok {
		return
	}
	m.View.ShareFailed(truncateField(r.PostFormValue("name")), truncateField(r.PostFormValue("message")))
	w.WriteHeader(http.StatusNoContent)
}

func (a *app) resultImage(w http.ResponseWriter, r *http.Request) {
	m, ok := a.mountedView(w, r)
	if !ok {
		return
	}
	uri := m.View.Payload().GeneratedImage
	img, err := result.DecodeImage(uri)
	if errors.Is(err, result.ErrNotInline) {
		if strings.HasPrefix(uri, "https://") || strings.HasPrefix(uri, "http://") {
			http.Redirect(w, r, uri, http.StatusFound)
			return
		}
	}
	if err != nil {
		observability.FromContext(r.Context()).Warn("decode result image", zap.Error(err))
		mw.WriteError(w, r, http.StatusUnprocessableEntity, "image unavailable")
		return
	}
	w.Header().Set("Content-Type", img.ContentType)
	w.Header().Set("Content-Disposition", result.ContentDisposition())
	w.Header().Set("Content-Length", strconv.Itoa(len(img.Data)))
	w.Header().Set("Cache-Control", "private, no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(img.Data)
}

func truncateField(v string) string {
	v = strings.TrimSpace(v)
	if len(v) > 200 {
		return v[:200]
	}
	return v
}
