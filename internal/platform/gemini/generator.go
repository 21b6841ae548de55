package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"text/template"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sony/gobreaker"
	"google.golang.org/genai"

	"github.com/adlift/adlift-api/internal/asyncop"
	"github.com/adlift/adlift-api/internal/config"
	"github.com/adlift/adlift-api/internal/generation"
)

// defaultMaxKeywords is used when a keyword request does not set a limit.
const defaultMaxKeywords = 20

// GeminiGenerator implements the generation.Generator interface using
// Google's Gemini API to draft campaigns, keywords and recommendations.
//
// It makes exactly one model call per invocation. Transport and upstream
// capacity failures are wrapped with asyncop.ErrTransient so the caller's
// operation tracker decides whether and when to retry; malformed requests,
// unparseable responses and safety blocks are permanent.
type GeminiGenerator struct {
	// logger is used for structured logging
	logger *slog.Logger

	// config contains LLM-specific configuration
	config config.LLMConfig

	// client is the Gemini API client for making requests
	client *genai.Client

	// model is the name of the Gemini model to use
	model string

	// breaker fails calls fast while the upstream is known to be down
	breaker *gobreaker.CircuitBreaker

	// validate checks request structs before any prompt is built
	validate *validator.Validate

	campaignPrompt       *template.Template
	keywordPrompt        *template.Template
	recommendationPrompt *template.Template
}

// Statically verify interface conformance.
var _ generation.Generator = (*GeminiGenerator)(nil)

// NewGeminiGenerator creates a new instance of GeminiGenerator with the
// provided dependencies.
//
// Parameters:
//   - ctx: Context for the operation, which can be used for cancellation
//   - logger: A structured logger for operation logging
//   - cfg: LLM configuration containing API key, model name, and other settings
//
// Returns:
//   - A properly initialized GeminiGenerator or an error if initialization fails
func NewGeminiGenerator(ctx context.Context, logger *slog.Logger, cfg config.LLMConfig) (*GeminiGenerator, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	// Validate configuration
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key cannot be empty", generation.ErrInvalidConfig)
	}

	if cfg.ModelName == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", generation.ErrInvalidConfig)
	}

	// Initialize the Gemini client
	clientConfig := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v",
			generation.ErrInvalidConfig, err)
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "gemini",
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed",
				"breaker", name,
				"from", from.String(),
				"to", to.String())
		},
		// Only upstream failures should trip the breaker. Permanent errors
		// (bad responses, safety blocks) mean the upstream is reachable.
		IsSuccessful: func(err error) bool {
			return err == nil || !asyncop.IsTransient(err)
		},
	})

	return &GeminiGenerator{
		logger:               logger,
		config:               cfg,
		client:               client,
		model:                cfg.ModelName,
		breaker:              breaker,
		validate:             validator.New(),
		campaignPrompt:       template.Must(template.New("campaign").Parse(campaignPromptTemplate)),
		keywordPrompt:        template.Must(template.New("keywords").Parse(keywordPromptTemplate)),
		recommendationPrompt: template.Must(template.New("recommendations").Parse(recommendationPromptTemplate)),
	}, nil
}

// createPrompt executes the given template with the request data and returns
// the resulting prompt string.
func (g *GeminiGenerator) createPrompt(ctx context.Context, tmpl *template.Template, data any) (string, error) {
	var promptBuffer bytes.Buffer
	if err := tmpl.Execute(&promptBuffer, data); err != nil {
		return "", fmt.Errorf("failed to execute prompt template %q: %w", tmpl.Name(), err)
	}

	prompt := promptBuffer.String()
	g.logger.DebugContext(ctx, "Prompt generated from template",
		"template_name", tmpl.Name(),
		"prompt_length", len(prompt))

	return prompt, nil
}

// callModel makes a single call to the Gemini API through the circuit
// breaker and returns the raw text of the first candidate.
//
// Error classification:
//   - API/transport errors and an open breaker are wrapped with
//     asyncop.ErrTransient
//   - empty responses and safety blocks are permanent
func (g *GeminiGenerator) callModel(ctx context.Context, prompt string) (string, error) {
	result, err := g.breaker.Execute(func() (any, error) {
		resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
		if err != nil {
			return nil, fmt.Errorf("%w: gemini API call failed: %v", asyncop.ErrTransient, err)
		}

		return extractResponseText(resp)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			g.logger.WarnContext(ctx, "Gemini call rejected by circuit breaker",
				"breaker_state", g.breaker.State().String())
			return "", fmt.Errorf("%w: gemini circuit open: %v", asyncop.ErrTransient, err)
		}
		return "", err
	}

	return result.(string), nil
}

// extractResponseText pulls the concatenated text of the first candidate out
// of a GenerateContent response. Empty responses and safety blocks surface as
// permanent errors so the operation tracker does not burn retry attempts on
// them.
func extractResponseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil {
		return "", fmt.Errorf("%w: nil response", generation.ErrInvalidResponse)
	}

	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("%w: no content generated", generation.ErrInvalidResponse)
	}

	candidate := resp.Candidates[0]
	if candidate.FinishReason == genai.FinishReasonSafety {
		return "", fmt.Errorf("%w: content blocked by safety filters", generation.ErrContentBlocked)
	}

	if candidate.Content == nil {
		return "", fmt.Errorf("%w: empty content in response", generation.ErrInvalidResponse)
	}

	text := ""
	for _, part := range candidate.Content.Parts {
		if part != nil {
			text += part.Text
		}
	}

	if text == "" {
		return "", fmt.Errorf("%w: no text parts in response", generation.ErrInvalidResponse)
	}

	return text, nil
}

// GenerateCampaign drafts a full campaign for the given product and audience.
func (g *GeminiGenerator) GenerateCampaign(
	ctx context.Context,
	req generation.CampaignRequest,
) (*generation.CampaignPlan, error) {
	if err := g.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", generation.ErrInvalidRequest, err)
	}

	prompt, err := g.createPrompt(ctx, g.campaignPrompt, req)
	if err != nil {
		return nil, err
	}

	text, err := g.callModel(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var parsed campaignResponseSchema
	if err := json.Unmarshal([]byte(text), &parsed); err != nil {
		return nil, fmt.Errorf("%w: failed to parse JSON response: %v", generation.ErrInvalidResponse, err)
	}

	if parsed.Name == "" {
		return nil, fmt.Errorf("%w: campaign name missing", generation.ErrInvalidResponse)
	}
	if len(parsed.Ads) == 0 {
		return nil, fmt.Errorf("%w: no ad variants in response", generation.ErrInvalidResponse)
	}

	ads := make([]generation.AdVariant, 0, len(parsed.Ads))
	for i, ad := range parsed.Ads {
		if ad.Headline == "" || ad.Description == "" {
			return nil, fmt.Errorf("%w: ad variant %d incomplete", generation.ErrInvalidResponse, i)
		}
		ads = append(ads, generation.AdVariant{
			Headline:     ad.Headline,
			Description:  ad.Description,
			CallToAction: ad.CallToAction,
		})
	}

	g.logger.InfoContext(ctx, "Campaign plan generated",
		"ad_count", len(ads),
		"platform", string(req.Platform))

	return &generation.CampaignPlan{
		Name:                      parsed.Name,
		Objective:                 parsed.Objective,
		SuggestedDailyBudgetCents: parsed.SuggestedDailyBudgetCents,
		Ads:                       ads,
		TargetingNotes:            parsed.TargetingNotes,
	}, nil
}

// GenerateKeywords suggests search keywords for a topic.
func (g *GeminiGenerator) GenerateKeywords(
	ctx context.Context,
	req generation.KeywordRequest,
) (*generation.KeywordSet, error) {
	if err := g.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", generation.ErrInvalidRequest, err)
	}

	if req.MaxKeywords <= 0 {
		req.MaxKeywords = defaultMaxKeywords
	}

	prompt, err := g.createPrompt(ctx, g.keywordPrompt, req)
	if err != nil {
		return nil, err
	}

	text, err := g.callModel(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var parsed keywordResponseSchema
	if err := json.Unmarshal([]byte(text), &parsed); err != nil {
		return nil, fmt.Errorf("%w: failed to parse JSON response: %v", generation.ErrInvalidResponse, err)
	}

	if len(parsed.Keywords) == 0 {
		return nil, fmt.Errorf("%w: no keywords in response", generation.ErrInvalidResponse)
	}

	keywords := make([]generation.Keyword, 0, len(parsed.Keywords))
	for i, kw := range parsed.Keywords {
		if kw.Text == "" {
			return nil, fmt.Errorf("%w: keyword %d has empty text", generation.ErrInvalidResponse, i)
		}
		if len(keywords) >= req.MaxKeywords {
			break
		}
		keywords = append(keywords, generation.Keyword{
			Text:      kw.Text,
			MatchType: kw.MatchType,
		})
	}

	g.logger.InfoContext(ctx, "Keywords generated",
		"keyword_count", len(keywords),
		"topic_length", len(req.Topic))

	return &generation.KeywordSet{Keywords: keywords}, nil
}

// GenerateRecommendations suggests optimizations based on a performance
// summary.
func (g *GeminiGenerator) GenerateRecommendations(
	ctx context.Context,
	req generation.RecommendationRequest,
) (*generation.RecommendationList, error) {
	if err := g.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", generation.ErrInvalidRequest, err)
	}

	prompt, err := g.createPrompt(ctx, g.recommendationPrompt, req)
	if err != nil {
		return nil, err
	}

	text, err := g.callModel(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var parsed recommendationResponseSchema
	if err := json.Unmarshal([]byte(text), &parsed); err != nil {
		return nil, fmt.Errorf("%w: failed to parse JSON response: %v", generation.ErrInvalidResponse, err)
	}

	if len(parsed.Recommendations) == 0 {
		return nil, fmt.Errorf("%w: no recommendations in response", generation.ErrInvalidResponse)
	}

	recs := make([]generation.Recommendation, 0, len(parsed.Recommendations))
	for i, rec := range parsed.Recommendations {
		if rec.Title == "" {
			return nil, fmt.Errorf("%w: recommendation %d has empty title", generation.ErrInvalidResponse, i)
		}
		recs = append(recs, generation.Recommendation{
			Title:     rec.Title,
			Rationale: rec.Rationale,
			Impact:    rec.Impact,
		})
	}

	g.logger.InfoContext(ctx, "Recommendations generated",
		"recommendation_count", len(recs))

	return &generation.RecommendationList{Recommendations: recs}, nil
}
