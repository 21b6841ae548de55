package api

import (
	"net/http"

	"github.com/adlift/adlift-api/internal/api/shared"
	"github.com/adlift/adlift-api/internal/domain"
	"github.com/adlift/adlift-api/internal/service"
)

// CampaignHandler handles campaign management API requests.
type CampaignHandler struct {
	campaignService service.CampaignService
}

// NewCampaignHandler creates a new CampaignHandler with the given dependencies.
func NewCampaignHandler(campaignService service.CampaignService) *CampaignHandler {
	return &CampaignHandler{campaignService: campaignService}
}

// CreateCampaign handles POST /api/campaigns.
func (h *CampaignHandler) CreateCampaign(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req CreateCampaignRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	campaign, err := h.campaignService.CreateCampaign(r.Context(), userID, service.CampaignParams{
		Name:             req.Name,
		Platform:         domain.CampaignPlatform(req.Platform),
		Objective:        req.Objective,
		DailyBudgetCents: req.DailyBudgetCents,
	})
	if err != nil {
		RespondWithServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, campaign)
}

// GetCampaign handles GET /api/campaigns/{id}.
func (h *CampaignHandler) GetCampaign(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	campaignID, ok := getPathUUID(w, r, "id")
	if !ok {
		return
	}

	campaign, err := h.campaignService.GetCampaign(r.Context(), userID, campaignID)
	if err != nil {
		RespondWithServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, campaign)
}

// ListCampaigns handles GET /api/campaigns.
func (h *CampaignHandler) ListCampaigns(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	campaigns, err := h.campaignService.ListCampaigns(r.Context(), userID)
	if err != nil {
		RespondWithServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, campaigns)
}

// UpdateCampaign handles PUT /api/campaigns/{id}.
func (h *CampaignHandler) UpdateCampaign(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	campaignID, ok := getPathUUID(w, r, "id")
	if !ok {
		return
	}

	var req UpdateCampaignRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	update := service.CampaignUpdate{
		Name:             req.Name,
		Objective:        req.Objective,
		DailyBudgetCents: req.DailyBudgetCents,
	}
	if req.Status != nil {
		status := domain.CampaignStatus(*req.Status)
		update.Status = &status
	}

	campaign, err := h.campaignService.UpdateCampaign(r.Context(), userID, campaignID, update)
	if err != nil {
		RespondWithServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, campaign)
}

// DeleteCampaign handles DELETE /api/campaigns/{id}.
func (h *CampaignHandler) DeleteCampaign(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	campaignID, ok := getPathUUID(w, r, "id")
	if !ok {
		return
	}

	if err := h.campaignService.DeleteCampaign(r.Context(), userID, campaignID); err != nil {
		RespondWithServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
