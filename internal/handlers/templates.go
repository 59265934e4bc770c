package handlers

import "finitefield.org/colorcraft-web/internal/navstate"

// TemplateIdea is a ready-made prompt offered on the templates page.
type TemplateIdea struct {
	ID       string
	TitleKey string
	Seed     navstate.FormSeed
}

// TemplateIdeas is the static catalogue.
var TemplateIdeas = []TemplateIdea{
	{ID: "ocean-friends", TitleKey: "templates.ocean", Seed: navstate.FormSeed{Prompt: "Friendly sea turtles and fish swimming around a coral reef", Style: "cartoon", Complexity: "simple", Theme: "ocean"}},
	{ID: "forest-mandala", TitleKey: "templates.mandala", Seed: navstate.FormSeed{Prompt: "A mandala made of leaves, acorns and mushrooms", Style: "mandala", Complexity: "complex", Theme: "nature"}},
	{ID: "space-rocket", TitleKey: "templates.space", Seed: navstate.FormSeed{Prompt: "A rocket flying past planets and stars", Style: "cartoon", Complexity: "medium", Theme: "space"}},
	{ID: "city-shapes", TitleKey: "templates.city", Seed: navstate.FormSeed{Prompt: "A city skyline built from simple geometric shapes", Style: "geometric", Complexity: "medium"}},
	{ID: "farm-animals", TitleKey: "templates.farm", Seed: navstate.FormSeed{Prompt: "A barn with a cow, a pig and chickens", Style: "realistic", Complexity: "simple", Theme: "animals"}},
}

// FindTemplate looks up an idea by id.
func FindTemplate(id string) (TemplateIdea, bool) {
	for _, t := range TemplateIdeas {
		if t.ID == id {
			return t, true
		}
	}
	return TemplateIdea{}, false
}

// ResultShortcuts are the quick actions in the result sidebar.
var ResultShortcuts = []Link{
	{Href: "/create", LabelKey: "result.shortcut.create"},
	{Href: "/templates", LabelKey: "result.shortcut.templates"},
	{Href: "/history", LabelKey: "result.shortcut.history"},
}

// ResultTipKeys are the static coloring tips.
var ResultTipKeys = []string{
	"result.tips.tools",
	"result.tips.paper",
	"result.tips.light",
	"result.tips.fun",
}
