package main

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"finitefield.org/colorcraft-web/internal/platform"
	"finitefield.org/colorcraft-web/internal/result"
)

const testPrompt = `A cat & a "dog" having <tea>`

// generate runs the create flow and opens the result page.
func (e *testEnv) generate(prompt string) (string, *goquery.Document) {
	e.t.Helper()
	rec := e.post("/create", url.Values{
		"prompt":     {prompt},
		"style":      {"cartoon"},
		"complexity": {"simple"},
		"theme":      {"animals"},
	})
	require.Equal(e.t, http.StatusSeeOther, rec.Code, rec.Body.String())
	require.Equal(e.t, "/result", rec.Header().Get("Location"))

	rec = e.get("/result")
	require.Equal(e.t, http.StatusOK, rec.Code)
	doc := parseDoc(e.t, rec)
	id, ok := doc.Find("#result-actions").Attr("data-view-id")
	require.True(e.t, ok, "populated result renders the action bar")
	require.NotEmpty(e.t, id)
	return id, doc
}

func platformInstructions(t *testing.T, rec interface{ Header() http.Header }) []platform.Instruction {
	t.Helper()
	raw := rec.Header().Get("HX-Trigger")
	if raw == "" {
		return nil
	}
	var events map[string]json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(raw), &events))
	var out []platform.Instruction
	if body, ok := events[platform.EventName]; ok {
		require.NoError(t, json.Unmarshal(body, &out))
	}
	return out
}

func TestResultEmptyStateLinksOnlyToCreate(t *testing.T) {
	e := newTestEnv(t, nil)
	rec := e.get("/result")
	require.Equal(t, http.StatusOK, rec.Code)

	doc := parseDoc(t, rec)
	links := doc.Find("main a")
	require.Equal(t, 1, links.Length())
	href, _ := links.Attr("href")
	require.Equal(t, "/create", href)
	require.Contains(t, doc.Find("main h1").Text(), "No Result Found")
	require.Equal(t, 0, doc.Find("#result-actions").Length())
}

func TestResultPopulatedRendersPayload(t *testing.T) {
	e := newTestEnv(t, nil)
	_, doc := e.generate(testPrompt)

	require.Equal(t, testPrompt, strings.TrimSpace(doc.Find(".result-prompt").Text()))
	src, _ := doc.Find("#result-image").Attr("src")
	require.True(t, strings.HasPrefix(src, "data:image/png"), "image src %q", src)

	details := doc.Find(".details").Text()
	require.Contains(t, details, "Cartoon")
	require.Contains(t, details, "Simple")
	require.Equal(t, "Animals", doc.Find(".details dd").Eq(2).Text(), "theme is capitalized like style and complexity")
	require.Equal(t, 3, doc.Find(".shortcuts a").Length())
	require.Equal(t, 4, doc.Find(".tips li").Length())
	require.Equal(t, 1, doc.Find(`[data-action="back"]`).Length())
}

func TestResultReloadReusesMountedView(t *testing.T) {
	e := newTestEnv(t, nil)
	id, _ := e.generate(testPrompt)

	doc := parseDoc(t, e.get("/result"))
	again, _ := doc.Find("#result-actions").Attr("data-view-id")
	require.Equal(t, id, again)
}

func TestResultDownloadLifecycle(t *testing.T) {
	e := newTestEnv(t, nil)
	id, _ := e.generate(testPrompt)
	base := "/result/" + id

	rec := e.post(base+"/download", nil, htmx)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Empty(t, platformInstructions(t, rec), "save waits for the delay")
	doc := parseDoc(t, rec)
	_, disabled := doc.Find("#download-btn").Attr("disabled")
	require.True(t, disabled)
	trigger, _ := doc.Find("#result-actions").Attr("hx-trigger")
	require.Equal(t, "every 500ms", trigger)

	rec = e.post(base+"/download", nil, htmx)
	require.Equal(t, http.StatusConflict, rec.Code)
	busy := platformInstructions(t, rec)
	require.Len(t, busy, 1, "a rejected download is reported to the user")
	require.Equal(t, platform.OpNotify, busy[0].Op)
	require.Equal(t, "A download is already in progress.", busy[0].Text)

	require.Equal(t, 0, e.sched.Advance(time.Second))
	require.Equal(t, 1, e.sched.Advance(time.Second))

	rec = e.get(base+"/actions", htmx)
	require.Equal(t, http.StatusOK, rec.Code)
	_, disabled = parseDoc(t, rec).Find("#download-btn").Attr("disabled")
	require.False(t, disabled, "control is enabled again")
	_, polling := parseDoc(t, rec).Find("#result-actions").Attr("hx-trigger")
	require.False(t, polling)

	ins := platformInstructions(t, rec)
	require.Len(t, ins, 1)
	require.Equal(t, platform.OpSave, ins[0].Op)
	require.Equal(t, result.ImagePath(id), ins[0].URI)
	require.Equal(t, result.DownloadFilename, ins[0].Filename)

	rec = e.get(base+"/actions", htmx)
	require.Empty(t, platformInstructions(t, rec), "instructions are delivered once")
}

func TestResultImageIsAttachment(t *testing.T) {
	e := newTestEnv(t, nil)
	id, _ := e.generate(testPrompt)

	rec := e.get(result.ImagePath(id))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	require.Equal(t, `attachment; filename="coloring-page.png"`, rec.Header().Get("Content-Disposition"))
	require.True(t, strings.HasPrefix(rec.Body.String(), "\x89PNG"))
}

func TestNavigatingAwayUnmountsView(t *testing.T) {
	e := newTestEnv(t, nil)
	id, _ := e.generate(testPrompt)
	base := "/result/" + id

	require.Equal(t, http.StatusOK, e.post(base+"/download", nil, htmx).Code)
	require.Equal(t, 1, e.sched.Pending())

	require.Equal(t, http.StatusOK, e.get("/faq").Code)
	require.Equal(t, 0, e.sched.Pending(), "teardown cancels the pending download")
	require.Equal(t, 0, e.sched.Advance(time.Minute))

	rec := e.post(base+"/like", nil, htmx)
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "true", rec.Header().Get("HX-Refresh"), "stale pages reload into the empty state")
	rec = e.get(base+"/actions", htmx)
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "true", rec.Header().Get("HX-Refresh"))
	require.Empty(t, e.get(base+"/image").Header().Get("HX-Refresh"))

	require.Equal(t, 0, parseDoc(t, e.get("/result")).Find("#result-actions").Length())
	require.Empty(t, e.logs.FilterMessage("download delivered").All())
}

func TestStrayRequestsKeepViewMounted(t *testing.T) {
	e := newTestEnv(t, nil)
	id, doc := e.generate(testPrompt)
	icon, _ := doc.Find(`link[rel="icon"]`).Attr("href")
	require.Equal(t, "/assets/favicon.svg", icon)

	rec := e.get("/favicon.ico")
	require.Equal(t, http.StatusMovedPermanently, rec.Code)
	require.Equal(t, "/assets/favicon.svg", rec.Header().Get("Location"))
	rec = e.get("/assets/favicon.svg")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "<svg")

	require.Equal(t, http.StatusNotFound, e.get("/apple-touch-icon.png").Code)
	require.Equal(t, http.StatusOK, e.get("/ui/nav?path=/result&menu=1").Code)

	rec = e.post("/result/"+id+"/download", nil, htmx)
	require.Equal(t, http.StatusOK, rec.Code, "view survives requests that do not replace the page")
	require.Equal(t, 1, e.sched.Pending())
}

func TestResultViewIsSessionBound(t *testing.T) {
	owner := newTestEnv(t, nil)
	id, _ := owner.generate(testPrompt)

	other := &testEnv{t: t, app: owner.app, handler: owner.handler, sched: owner.sched, logs: owner.logs, cookies: map[string]*http.Cookie{}}
	require.Equal(t, http.StatusOK, other.get("/welcome").Code)
	require.Equal(t, http.StatusNotFound, other.post("/result/"+id+"/like", nil, htmx).Code)
}

func TestResultLikeToggles(t *testing.T) {
	e := newTestEnv(t, nil)
	id, _ := e.generate(testPrompt)

	rec := e.post("/result/"+id+"/like", nil, htmx)
	require.Equal(t, http.StatusOK, rec.Code)
	pressed, _ := parseDoc(t, rec).Find("#like-btn").Attr("aria-pressed")
	require.Equal(t, "true", pressed)

	rec = e.post("/result/"+id+"/like", nil, htmx)
	pressed, _ = parseDoc(t, rec).Find("#like-btn").Attr("aria-pressed")
	require.Equal(t, "false", pressed)
}

func TestRegeneratePrefillsCreate(t *testing.T) {
	e := newTestEnv(t, nil)
	id, _ := e.generate(testPrompt)

	rec := e.post("/result/"+id+"/regenerate", nil, htmx)
	require.Equal(t, "/create", rec.Header().Get("HX-Redirect"))

	doc := parseDoc(t, e.get("/create"))
	require.Equal(t, testPrompt, doc.Find("textarea#prompt").Text())
	theme, _ := doc.Find("input#theme").Attr("value")
	require.Equal(t, "animals", theme)
	style, _ := doc.Find(`input[name="style"][checked]`).Attr("value")
	require.Equal(t, "cartoon", style)
	require.Equal(t, 1, doc.Find("#prefill-notice").Length())

	doc = parseDoc(t, e.get("/create"))
	require.Empty(t, doc.Find("textarea#prompt").Text(), "the seed is consumed once")
}

func TestShareWithoutCapabilityCopiesLink(t *testing.T) {
	e := newTestEnv(t, nil)
	id, _ := e.generate(testPrompt)

	rec := e.post("/result/"+id+"/share", url.Values{"share": {"false"}}, htmx)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Empty(t, rec.Header().Get("HX-Redirect"), "share never navigates")

	ins := platformInstructions(t, rec)
	require.Len(t, ins, 2)
	require.Equal(t, platform.OpClipboard, ins[0].Op)
	require.Equal(t, "http://example.com/result", ins[0].Text)
	require.Equal(t, platform.OpNotify, ins[1].Op)
	require.Equal(t, result.CopiedMessage, ins[1].Text)
}

func TestShareWithCapabilityOpensSheet(t *testing.T) {
	e := newTestEnv(t, map[string]string{"COLORCRAFT_WEB_PUBLIC_BASE_URL": "https://colorcraft.example/"})
	id, _ := e.generate(testPrompt)

	rec := e.post("/result/"+id+"/share", url.Values{"share": {"true"}}, htmx)
	require.Equal(t, http.StatusOK, rec.Code)

	ins := platformInstructions(t, rec)
	require.Len(t, ins, 1)
	require.Equal(t, platform.OpShare, ins[0].Op)
	require.NotNil(t, ins[0].Share)
	require.Equal(t, result.ShareTitle, ins[0].Share.Title)
	require.Equal(t, "https://colorcraft.example/result", ins[0].Share.URL)
	require.Contains(t, ins[0].Share.Text, `"`+testPrompt+`"`)
}

func TestShareFailureIsLoggedNotSurfaced(t *testing.T) {
	e := newTestEnv(t, nil)
	id, _ := e.generate(testPrompt)

	rec := e.post("/result/"+id+"/share/failed", url.Values{"name": {"AbortError"}, "message": {"Share canceled"}}, htmx)
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Empty(t, rec.Body.String())
	cancelled := e.logs.FilterMessage("share cancelled").All()
	require.Len(t, cancelled, 1)
	require.Equal(t, zapcore.InfoLevel, cancelled[0].Level)

	rec = e.post("/result/"+id+"/share/failed", url.Values{"name": {"NotAllowedError"}, "message": {"denied"}}, htmx)
	require.Equal(t, http.StatusNoContent, rec.Code)
	failed := e.logs.FilterMessage("share failed").All()
	require.Len(t, failed, 1)
	require.Equal(t, zapcore.WarnLevel, failed[0].Level)
}

func TestUnknownViewIs404(t *testing.T) {
	e := newTestEnv(t, nil)
	require.Equal(t, http.StatusNotFound, e.post("/result/01HZZZZZZZZZZZZZZZZZZZZZZZ/download", nil, htmx).Code)
}
