package main

import (
	"net/url"

	"finitefield.org/colorcraft-web/internal/generate"
	"finitefield.org/colorcraft-web/internal/navstate"
)

// CreateView drives the create form.
type CreateView struct {
	Form         generate.Request
	Styles       []CreateOption
	Complexities []CreateOption
	Errors       map[string]string
	Alert        *CreateAlert
	Prefilled    bool
	Mock         bool
}

// CreateOption renders one radio choice.
type CreateOption struct {
	Value    string
	LabelKey string
	Selected bool
}

// CreateAlert is shown above the form.
type CreateAlert struct {
	Tone       string
	MessageKey string
}

func defaultCreateForm() generate.Request {
	return generate.Request{Style: "cartoon", Complexity: "simple"}
}

func formFromSeed(seed navstate.FormSeed) generate.Request {
	def := defaultCreateForm()
	form := generate.Request{Prompt: seed.Prompt, Style: seed.Style, Complexity: seed.Complexity, Theme: seed.Theme}
	if form.Style == "" {
		form.Style = def.Style
	}
	if form.Complexity == "" {
		form.Complexity = def.Complexity
	}
	return form
}

func parseCreateForm(values url.Values) generate.Request {
	return generate.Request{
		Prompt:     values.Get("prompt"),
		Style:      values.Get("style"),
		Complexity: values.Get("complexity"),
		Theme:      values.Get("theme"),
	}.Normalize()
}

func buildCreateView(form generate.Request, errs map[string]string, alert *CreateAlert, mock bool) CreateView {
	return CreateView{
		Form:         form,
		Styles:       createOptions(generate.Styles, form.Style),
		Complexities: createOptions(generate.Complexities, form.Complexity),
		Errors:       errs,
		Alert:        alert,
		Mock:         mock,
	}
}

func createOptions(opts []generate.Option, selected string) []CreateOption {
	out := make([]CreateOption, 0, len(opts))
	for _, o := range opts {
		out = append(out, CreateOption{Value: o.Value, LabelKey: o.LabelKey, Selected: o.Value == selected})
	}
	return out
}
