package generation

import (
	"context"

	"github.com/adlift/adlift-api/internal/domain"
)

// CampaignRequest describes the product and audience an AI-drafted campaign
// should target.
type CampaignRequest struct {
	Product     string                  `json:"product"      validate:"required,min=3"`
	Audience    string                  `json:"audience"     validate:"required,min=3"`
	Platform    domain.CampaignPlatform `json:"platform"     validate:"required,oneof=linkedin google"`
	Objective   string                  `json:"objective"    validate:"required"`
	BudgetCents int64                   `json:"budget_cents" validate:"omitempty,gt=0"`
}

// AdVariant is one generated ad creative.
type AdVariant struct {
	Headline     string `json:"headline"`
	Description  string `json:"description"`
	CallToAction string `json:"call_to_action"`
}

// CampaignPlan is the generated campaign draft.
type CampaignPlan struct {
	Name                      string      `json:"name"`
	Objective                 string      `json:"objective"`
	SuggestedDailyBudgetCents int64       `json:"suggested_daily_budget_cents"`
	Ads                       []AdVariant `json:"ads"`
	TargetingNotes            string      `json:"targeting_notes"`
}

// KeywordRequest asks for search keywords around a topic.
type KeywordRequest struct {
	Topic       string                  `json:"topic"        validate:"required,min=2"`
	Platform    domain.CampaignPlatform `json:"platform"     validate:"required,oneof=linkedin google"`
	MaxKeywords int                     `json:"max_keywords" validate:"omitempty,gt=0,lte=100"`
}

// Keyword is one generated keyword suggestion.
type Keyword struct {
	Text      string `json:"text"`
	MatchType string `json:"match_type"`
}

// KeywordSet is the generated keyword list.
type KeywordSet struct {
	Keywords []Keyword `json:"keywords"`
}

// RecommendationRequest asks for optimization recommendations given a short
// summary of current campaign performance.
type RecommendationRequest struct {
	CampaignName       string `json:"campaign_name"       validate:"required"`
	PerformanceSummary string `json:"performance_summary" validate:"required,min=10"`
}

// Recommendation is one generated optimization suggestion.
type Recommendation struct {
	Title     string `json:"title"`
	Rationale string `json:"rationale"`
	Impact    string `json:"impact"`
}

// RecommendationList is the generated recommendation set.
type RecommendationList struct {
	Recommendations []Recommendation `json:"recommendations"`
}

// Generator defines the interface for AI content generation.
// This interface serves as a boundary between the application core and
// the external LLM service, following the hexagonal architecture pattern.
//
// Implementations classify their failures: transport and upstream capacity
// problems are wrapped with asyncop.ErrTransient so the operation tracker
// retries them; malformed requests and blocked content are permanent.
type Generator interface {
	// GenerateCampaign drafts a full campaign for the given product and
	// audience.
	GenerateCampaign(ctx context.Context, req CampaignRequest) (*CampaignPlan, error)

	// GenerateKeywords suggests search keywords for a topic.
	GenerateKeywords(ctx context.Context, req KeywordRequest) (*KeywordSet, error)

	// GenerateRecommendations suggests optimizations based on a
	// performance summary.
	GenerateRecommendations(ctx context.Context, req RecommendationRequest) (*RecommendationList, error)
}
