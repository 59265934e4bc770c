package main

import (
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCreatePageDefaults(t *testing.T) {
	e := newTestEnv(t, nil)
	rec := e.get("/create")
	require.Equal(t, http.StatusOK, rec.Code)

	doc := parseDoc(t, rec)
	style, _ := doc.Find(`input[name="style"][checked]`).Attr("value")
	require.Equal(t, "cartoon", style)
	complexity, _ := doc.Find(`input[name="complexity"][checked]`).Attr("value")
	require.Equal(t, "simple", complexity)
	require.Equal(t, 4, doc.Find(`input[name="style"]`).Length())
	require.Equal(t, 3, doc.Find(`input[name="complexity"]`).Length())
	csrf, _ := doc.Find(`#create-form input[name="_csrf"]`).Attr("value")
	require.Equal(t, e.cookies["csrf_token"].Value, csrf)
	require.True(t, doc.Find("#site-header .desktop-nav a.active").Is(`[href="/create"]`))
}

func TestCreateValidationErrors(t *testing.T) {
	e := newTestEnv(t, nil)
	rec := e.post("/create", url.Values{"prompt": {"ab"}, "style": {"watercolor"}, "complexity": {"simple"}})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	doc := parseDoc(t, rec)
	require.Equal(t, 2, doc.Find(".field.invalid").Length())
	require.Contains(t, doc.Find(".field-error").First().Text(), "at least 3 characters")
	require.Equal(t, "ab", doc.Find("textarea#prompt").Text(), "input is kept")
	require.Equal(t, 0, parseDoc(t, e.get("/history")).Find(".history-card").Length())
}

func TestCreateRateLimited(t *testing.T) {
	e := newTestEnv(t, map[string]string{"COLORCRAFT_WEB_CREATE_PER_MIN": "1"})
	form := url.Values{"prompt": {"A lighthouse on a cliff"}, "style": {"realistic"}, "complexity": {"medium"}}

	require.Equal(t, http.StatusSeeOther, e.post("/create", form).Code)
	rec := e.post("/create", form)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.Contains(t, parseDoc(t, rec).Find(".alert").Text(), "wait a moment")
	require.NotEmpty(t, e.logs.FilterMessage("create rate limited").All())
}

func TestCreateHTMXRedirects(t *testing.T) {
	e := newTestEnv(t, nil)
	rec := e.post("/create", url.Values{"prompt": {"A castle with flags"}, "style": {"geometric"}, "complexity": {"complex"}}, htmx)
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, "/result", rec.Header().Get("HX-Redirect"))
}

func TestHistoryListsAndReopens(t *testing.T) {
	e := newTestEnv(t, nil)
	doc := parseDoc(t, e.get("/history"))
	require.Equal(t, 0, doc.Find(".history-card").Length())
	require.Equal(t, 1, doc.Find(`main a[href="/create"]`).Length())

	e.generate("A hot air balloon over hills")
	doc = parseDoc(t, e.get("/history"))
	cards := doc.Find(".history-card")
	require.Equal(t, 1, cards.Length())
	require.Contains(t, cards.Find(".prompt").Text(), "hot air balloon")

	action, _ := cards.Find("form").Attr("action")
	require.True(t, strings.HasPrefix(action, "/history/"))
	rec := e.post(action, nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/result", rec.Header().Get("Location"))

	doc = parseDoc(t, e.get("/result"))
	require.Equal(t, "A hot air balloon over hills", strings.TrimSpace(doc.Find(".result-prompt").Text()))

	require.Equal(t, http.StatusNotFound, e.post("/history/nope/open", nil).Code)
}

func TestTemplatePrefillsCreate(t *testing.T) {
	e := newTestEnv(t, nil)
	doc := parseDoc(t, e.get("/templates"))
	require.Equal(t, 5, doc.Find(".template-card").Length())

	rec := e.post("/templates/space-rocket", nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/create", rec.Header().Get("Location"))

	doc = parseDoc(t, e.get("/create"))
	require.Contains(t, doc.Find("textarea#prompt").Text(), "rocket")
	complexity, _ := doc.Find(`input[name="complexity"][checked]`).Attr("value")
	require.Equal(t, "medium", complexity)

	require.Equal(t, http.StatusNotFound, e.post("/templates/unknown", nil).Code)
}
