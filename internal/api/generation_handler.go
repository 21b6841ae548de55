package api

import (
	"net/http"

	"github.com/adlift/adlift-api/internal/api/shared"
	"github.com/adlift/adlift-api/internal/service"
)

// GenerationHandler handles AI generation API requests. Generation runs
// asynchronously: submission returns 202 Accepted with a job that the client
// polls for progress and the final result.
type GenerationHandler struct {
	generationService service.GenerationService
}

// NewGenerationHandler creates a new GenerationHandler with the given
// dependencies.
func NewGenerationHandler(generationService service.GenerationService) *GenerationHandler {
	return &GenerationHandler{generationService: generationService}
}

// GenerateCampaign handles POST /api/generate/campaign.
func (h *GenerationHandler) GenerateCampaign(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req GenerateCampaignRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	job, err := h.generationService.GenerateCampaign(r.Context(), userID, req.CampaignID, req.CampaignRequest)
	if err != nil {
		RespondWithServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusAccepted, NewJobResponse(job))
}

// GenerateKeywords handles POST /api/generate/keywords.
func (h *GenerationHandler) GenerateKeywords(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req GenerateKeywordsRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	job, err := h.generationService.GenerateKeywords(r.Context(), userID, req.CampaignID, req.KeywordRequest)
	if err != nil {
		RespondWithServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusAccepted, NewJobResponse(job))
}

// GenerateRecommendations handles POST /api/generate/recommendations.
func (h *GenerationHandler) GenerateRecommendations(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req GenerateRecommendationsRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	job, err := h.generationService.GenerateRecommendations(r.Context(), userID, req.CampaignID, req.RecommendationRequest)
	if err != nil {
		RespondWithServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusAccepted, NewJobResponse(job))
}

// GetJob handles GET /api/jobs/{id}.
func (h *GenerationHandler) GetJob(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	jobID, ok := getPathUUID(w, r, "id")
	if !ok {
		return
	}

	job, err := h.generationService.GetJob(r.Context(), userID, jobID)
	if err != nil {
		RespondWithServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, NewJobResponse(job))
}

// ListJobs handles GET /api/jobs.
func (h *GenerationHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	jobs, err := h.generationService.ListJobs(r.Context(), userID)
	if err != nil {
		RespondWithServiceError(w, r, err)
		return
	}

	responses := make([]JobResponse, 0, len(jobs))
	for _, job := range jobs {
		responses = append(responses, NewJobResponse(job))
	}
	shared.RespondWithJSON(w, r, http.StatusOK, responses)
}

// CancelJob handles POST /api/jobs/{id}/cancel. Cancelling a finished job is
// a no-op; the response reflects the job's current state either way.
func (h *GenerationHandler) CancelJob(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	jobID, ok := getPathUUID(w, r, "id")
	if !ok {
		return
	}

	job, err := h.generationService.CancelJob(r.Context(), userID, jobID)
	if err != nil {
		RespondWithServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusAccepted, NewJobResponse(job))
}
