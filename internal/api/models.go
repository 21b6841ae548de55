package api

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/adlift/adlift-api/internal/domain"
	"github.com/adlift/adlift-api/internal/generation"
)

// RegisterRequest defines the payload for the user registration endpoint.
type RegisterRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=12,max=72"`
}

// LoginRequest defines the payload for the user login endpoint.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=1"`
}

// AuthResponse defines the successful response for authentication endpoints.
type AuthResponse struct {
	UserID uuid.UUID `json:"user_id"`
	Token  string    `json:"token"`
}

// CreateCampaignRequest defines the payload for campaign creation.
type CreateCampaignRequest struct {
	Name             string `json:"name"               validate:"required,max=255"`
	Platform         string `json:"platform"           validate:"required,oneof=linkedin google"`
	Objective        string `json:"objective"          validate:"required"`
	DailyBudgetCents int64  `json:"daily_budget_cents" validate:"required,gt=0"`
}

// UpdateCampaignRequest defines the payload for a partial campaign update.
// Omitted fields are left unchanged.
type UpdateCampaignRequest struct {
	Name             *string `json:"name,omitempty"               validate:"omitempty,min=1,max=255"`
	Objective        *string `json:"objective,omitempty"          validate:"omitempty,min=1"`
	DailyBudgetCents *int64  `json:"daily_budget_cents,omitempty" validate:"omitempty,gt=0"`
	Status           *string `json:"status,omitempty"             validate:"omitempty,oneof=draft active paused archived"`
}

// GenerateCampaignRequest wraps a campaign generation request with an
// optional campaign to attach the result to.
type GenerateCampaignRequest struct {
	generation.CampaignRequest
	CampaignID *uuid.UUID `json:"campaign_id,omitempty"`
}

// GenerateKeywordsRequest wraps a keyword generation request.
type GenerateKeywordsRequest struct {
	generation.KeywordRequest
	CampaignID *uuid.UUID `json:"campaign_id,omitempty"`
}

// GenerateRecommendationsRequest wraps a recommendation generation request.
type GenerateRecommendationsRequest struct {
	generation.RecommendationRequest
	CampaignID *uuid.UUID `json:"campaign_id,omitempty"`
}

// JobResponse is the client-facing view of a generation job. Result is only
// present once the job succeeds; ErrorMessage only when it fails, times out,
// or is cancelled.
type JobResponse struct {
	ID           uuid.UUID        `json:"id"`
	CampaignID   *uuid.UUID       `json:"campaign_id,omitempty"`
	Type         domain.JobType   `json:"type"`
	Status       domain.JobStatus `json:"status"`
	Progress     int              `json:"progress"`
	Result       json.RawMessage  `json:"result,omitempty"`
	ErrorMessage string           `json:"error_message,omitempty"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

// NewJobResponse builds the client view of a job.
func NewJobResponse(job *domain.GenerationJob) JobResponse {
	return JobResponse{
		ID:           job.ID,
		CampaignID:   job.CampaignID,
		Type:         job.Type,
		Status:       job.Status,
		Progress:     job.Progress,
		Result:       job.Result,
		ErrorMessage: job.ErrorMessage,
		CreatedAt:    job.CreatedAt,
		UpdatedAt:    job.UpdatedAt,
	}
}
