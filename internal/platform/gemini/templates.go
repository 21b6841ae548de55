package gemini

// Prompt templates are compiled in rather than loaded from disk so the
// binary stays self-contained. Each template instructs the model to answer
// with a single JSON object matching the corresponding response schema in
// schema.go; no prose, no markdown fences.

const campaignPromptTemplate = `You are an expert digital advertising strategist.

Draft a {{.Platform}} advertising campaign for the following product and audience.

Product: {{.Product}}
Audience: {{.Audience}}
Objective: {{.Objective}}
{{- if gt .BudgetCents 0}}
Total budget in cents: {{.BudgetCents}}
{{- end}}

Respond with ONLY a JSON object, no markdown fences and no commentary, in this exact shape:

{
  "name": "campaign name",
  "objective": "one sentence restating the campaign objective",
  "suggested_daily_budget_cents": 5000,
  "ads": [
    {
      "headline": "short attention-grabbing headline",
      "description": "one or two sentences of ad copy",
      "call_to_action": "imperative phrase, e.g. Learn More"
    }
  ],
  "targeting_notes": "short paragraph of targeting advice"
}

Produce exactly 3 entries in "ads".`

const keywordPromptTemplate = `You are an expert search advertising specialist.

Suggest up to {{.MaxKeywords}} search keywords for {{.Platform}} ads about the following topic.

Topic: {{.Topic}}

Respond with ONLY a JSON object, no markdown fences and no commentary, in this exact shape:

{
  "keywords": [
    {"text": "keyword phrase", "match_type": "broad"}
  ]
}

Allowed match_type values: broad, phrase, exact.`

const recommendationPromptTemplate = `You are an expert digital advertising analyst.

Given the campaign performance summary below, suggest concrete optimizations.

Campaign: {{.CampaignName}}
Performance: {{.PerformanceSummary}}

Respond with ONLY a JSON object, no markdown fences and no commentary, in this exact shape:

{
  "recommendations": [
    {
      "title": "short imperative title",
      "rationale": "one or two sentences explaining why",
      "impact": "high, medium or low"
    }
  ]
}

Produce between 2 and 5 recommendations.`
