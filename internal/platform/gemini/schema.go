package gemini

// Response schemas mirror the JSON shapes the prompt templates ask the model
// for. They are unmarshalled from the raw candidate text and then validated
// before being handed back as generation result types.

type campaignResponseSchema struct {
	Name                      string            `json:"name"`
	Objective                 string            `json:"objective"`
	SuggestedDailyBudgetCents int64             `json:"suggested_daily_budget_cents"`
	Ads                       []adVariantSchema `json:"ads"`
	TargetingNotes            string            `json:"targeting_notes"`
}

type adVariantSchema struct {
	Headline     string `json:"headline"`
	Description  string `json:"description"`
	CallToAction string `json:"call_to_action"`
}

type keywordResponseSchema struct {
	Keywords []keywordSchema `json:"keywords"`
}

type keywordSchema struct {
	Text      string `json:"text"`
	MatchType string `json:"match_type"`
}

type recommendationResponseSchema struct {
	Recommendations []recommendationSchema `json:"recommendations"`
}

type recommendationSchema struct {
	Title     string `json:"title"`
	Rationale string `json:"rationale"`
	Impact    string `json:"impact"`
}
