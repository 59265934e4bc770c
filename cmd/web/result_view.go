package main

import (
	"time"

	"finitefield.org/colorcraft-web/internal/format"
	"finitefield.org/colorcraft-web/internal/handlers"
	"finitefield.org/colorcraft-web/internal/result"
)

// pollInterval is how often a downloading action bar refreshes itself.
const pollInterval = "500ms"

// ResultView is the result page model.
type ResultView struct {
	Populated bool
	Prompt    string
	Image     string
	Details   []ResultDetail
	Actions   ResultActions
	Shortcuts []handlers.Link
	TipKeys   []string
	EmptyLink handlers.Link
}

// ResultDetail is one row of the generation details panel.
type ResultDetail struct {
	LabelKey string
	Value    string
}

// ResultActions drives the frag_result_actions fragment.
type ResultActions struct {
	Lang        string
	ViewID      string
	Liked       bool
	Downloading bool
	Poll        string
}

func buildResultActions(lang string, s result.Snapshot) ResultActions {
	a := ResultActions{
		Lang:        lang,
		ViewID:      s.ID,
		Liked:       s.Liked,
		Downloading: s.Downloading,
	}
	if s.Downloading {
		a.Poll = pollInterval
	}
	return a
}

// buildResultView maps a snapshot to the page. The generated timestamp is
// computed at render time.
func buildResultView(lang string, s result.Snapshot) ResultView {
	if !s.Populated() {
		return ResultView{EmptyLink: handlers.Link{Href: result.CreatePath, LabelKey: "result.empty.cta"}}
	}
	details := []ResultDetail{
		{LabelKey: "result.detail.style", Value: format.Title(s.Style, lang)},
		{LabelKey: "result.detail.complexity", Value: format.Title(s.Complexity, lang)},
	}
	if s.Theme != "" {
		details = append(details, ResultDetail{LabelKey: "result.detail.theme", Value: format.Title(s.Theme, lang)})
	}
	renderedAt := s.RenderedAt
	if renderedAt.IsZero() {
		renderedAt = time.Now()
	}
	details = append(details, ResultDetail{LabelKey: "result.detail.generated", Value: format.Timestamp(renderedAt, lang)})

	return ResultView{
		Populated: true,
		Prompt:    s.Prompt,
		Image:     s.Image,
		Details:   details,
		Actions:   buildResultActions(lang, s),
		Shortcuts: handlers.ResultShortcuts,
		TipKeys:   handlers.ResultTipKeys,
	}
}
