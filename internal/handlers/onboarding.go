package handlers

// OnboardingChoice is one of the two ways to get started.
type OnboardingChoice struct {
	Href      string
	Icon      string
	TitleKey  string
	BodyKey   string
	PerkKeys  []string
	Highlight bool
}

// OnboardingData is the view model of the welcome page.
type OnboardingData struct {
	Choices  []OnboardingChoice
	Benefits []Benefit
	Login    Link
}

// Benefit is a badge and caption in the "why" strip.
type Benefit struct {
	Badge   string
	TextKey string
}

// BuildOnboardingData returns the static welcome page content.
func BuildOnboardingData() OnboardingData {
	return OnboardingData{
		Choices: []OnboardingChoice{
			{
				Href:      "/signup",
				Icon:      "user-plus",
				TitleKey:  "welcome.signup.title",
				BodyKey:   "welcome.signup.body",
				PerkKeys:  []string{"welcome.signup.perk1", "welcome.signup.perk2", "welcome.signup.perk3"},
				Highlight: true,
			},
			{
				Href:     "/create",
				Icon:     "user",
				TitleKey: "welcome.guest.title",
				BodyKey:  "welcome.guest.body",
				PerkKeys: []string{"welcome.guest.perk1", "welcome.guest.perk2", "welcome.guest.perk3"},
			},
		},
		Benefits: []Benefit{
			{Badge: "AI", TextKey: "welcome.benefit.ai"},
			{Badge: "∞", TextKey: "welcome.benefit.unlimited"},
			{Badge: "⚡", TextKey: "welcome.benefit.fast"},
		},
		Login: Link{Href: "/login", LabelKey: "welcome.login.link"},
	}
}
