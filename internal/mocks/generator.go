// Package mocks provides shared mock implementations of the application's
// service and storage interfaces for testing.
package mocks

import (
	"context"

	"github.com/adlift/adlift-api/internal/generation"
)

// Generator is a mock implementation of generation.Generator for testing.
type Generator struct {
	GenerateCampaignFunc        func(ctx context.Context, req generation.CampaignRequest) (*generation.CampaignPlan, error)
	GenerateKeywordsFunc        func(ctx context.Context, req generation.KeywordRequest) (*generation.KeywordSet, error)
	GenerateRecommendationsFunc func(ctx context.Context, req generation.RecommendationRequest) (*generation.RecommendationList, error)
}

// GenerateCampaign implements the generation.Generator interface for testing.
func (m *Generator) GenerateCampaign(
	ctx context.Context,
	req generation.CampaignRequest,
) (*generation.CampaignPlan, error) {
	if m.GenerateCampaignFunc != nil {
		return m.GenerateCampaignFunc(ctx, req)
	}
	return &generation.CampaignPlan{Name: "mock campaign"}, nil
}

// GenerateKeywords implements the generation.Generator interface for testing.
func (m *Generator) GenerateKeywords(
	ctx context.Context,
	req generation.KeywordRequest,
) (*generation.KeywordSet, error) {
	if m.GenerateKeywordsFunc != nil {
		return m.GenerateKeywordsFunc(ctx, req)
	}
	return &generation.KeywordSet{Keywords: []generation.Keyword{{Text: "mock keyword"}}}, nil
}

// GenerateRecommendations implements the generation.Generator interface for testing.
func (m *Generator) GenerateRecommendations(
	ctx context.Context,
	req generation.RecommendationRequest,
) (*generation.RecommendationList, error) {
	if m.GenerateRecommendationsFunc != nil {
		return m.GenerateRecommendationsFunc(ctx, req)
	}
	return &generation.RecommendationList{
		Recommendations: []generation.Recommendation{{Title: "mock recommendation"}},
	}, nil
}
