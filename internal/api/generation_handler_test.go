package api

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adlift/adlift-api/internal/domain"
	"github.com/adlift/adlift-api/internal/generation"
	"github.com/adlift/adlift-api/internal/mocks"
)

func seedTestJob(t *testing.T, jobStore *mocks.JobStore, userID uuid.UUID, status domain.JobStatus) *domain.GenerationJob {
	t.Helper()

	payload, err := json.Marshal(generation.KeywordRequest{
		Topic:    "team collaboration software",
		Platform: domain.PlatformLinkedIn,
	})
	require.NoError(t, err)
	job, err := domain.NewGenerationJob(userID, domain.JobTypeKeywords, payload)
	require.NoError(t, err)
	job.Status = status
	require.NoError(t, jobStore.Create(context.Background(), job))
	return job
}

func TestGenerateKeywords(t *testing.T) {
	t.Parallel()

	t.Run("accepts job and returns 202", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		env.expectTx()
		userID := uuid.New()

		rec := env.doJSON(t, http.MethodPost, "/api/generate/keywords", &userID, map[string]any{
			"topic":        "team collaboration software",
			"platform":     "linkedin",
			"max_keywords": 10,
		})
		require.Equal(t, http.StatusAccepted, rec.Code)

		job := decodeBody[JobResponse](t, rec)
		assert.Equal(t, domain.JobStatusPending, job.Status)
		assert.Equal(t, domain.JobTypeKeywords, job.Type)
		assert.Zero(t, job.Progress)

		emitted := env.emitter.Emitted()
		require.Len(t, emitted, 1)
		assert.Equal(t, job.ID, emitted[0].JobID)
	})

	t.Run("rejects invalid request with 400", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		userID := uuid.New()

		rec := env.doJSON(t, http.MethodPost, "/api/generate/keywords", &userID, map[string]any{
			"topic":    "x",
			"platform": "linkedin",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Empty(t, env.emitter.Emitted())
	})

	t.Run("rejects malformed body with 400", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		userID := uuid.New()

		rec := env.doJSON(t, http.MethodPost, "/api/generate/keywords", &userID, "not an object")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestGenerateCampaignLinked(t *testing.T) {
	t.Parallel()

	t.Run("links job to owned campaign", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		env.expectTx()
		userID := uuid.New()
		campaign := seedTestCampaign(t, env.campaignStore, userID)

		rec := env.doJSON(t, http.MethodPost, "/api/generate/campaign", &userID, map[string]any{
			"product":     "project management platform",
			"audience":    "engineering managers",
			"platform":    "linkedin",
			"objective":   "signups",
			"campaign_id": campaign.ID,
		})
		require.Equal(t, http.StatusAccepted, rec.Code)

		job := decodeBody[JobResponse](t, rec)
		require.NotNil(t, job.CampaignID)
		assert.Equal(t, campaign.ID, *job.CampaignID)
	})

	t.Run("rejects another user's campaign with 403", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		campaign := seedTestCampaign(t, env.campaignStore, uuid.New())
		otherUser := uuid.New()

		rec := env.doJSON(t, http.MethodPost, "/api/generate/campaign", &otherUser, map[string]any{
			"product":     "project management platform",
			"audience":    "engineering managers",
			"platform":    "linkedin",
			"objective":   "signups",
			"campaign_id": campaign.ID,
		})
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestGetJob(t *testing.T) {
	t.Parallel()

	t.Run("returns job state for polling", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		userID := uuid.New()
		job := seedTestJob(t, env.jobStore, userID, domain.JobStatusRunning)
		job.Progress = 40
		require.NoError(t, env.jobStore.Update(context.Background(), job))

		rec := env.doJSON(t, http.MethodGet, "/api/jobs/"+job.ID.String(), &userID, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		got := decodeBody[JobResponse](t, rec)
		assert.Equal(t, domain.JobStatusRunning, got.Status)
		assert.Equal(t, 40, got.Progress)
		assert.Empty(t, got.Result)
	})

	t.Run("other users' jobs are 403", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		job := seedTestJob(t, env.jobStore, uuid.New(), domain.JobStatusRunning)
		otherUser := uuid.New()

		rec := env.doJSON(t, http.MethodGet, "/api/jobs/"+job.ID.String(), &otherUser, nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("unknown job is 404", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		userID := uuid.New()

		rec := env.doJSON(t, http.MethodGet, "/api/jobs/"+uuid.NewString(), &userID, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestCancelJob(t *testing.T) {
	t.Parallel()

	t.Run("cancels pending job", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		userID := uuid.New()
		job := seedTestJob(t, env.jobStore, userID, domain.JobStatusPending)

		rec := env.doJSON(t, http.MethodPost, "/api/jobs/"+job.ID.String()+"/cancel", &userID, nil)
		require.Equal(t, http.StatusAccepted, rec.Code)

		got := decodeBody[JobResponse](t, rec)
		assert.Equal(t, domain.JobStatusCancelled, got.Status)
	})

	t.Run("cancelling a finished job is a no-op", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		userID := uuid.New()
		job := seedTestJob(t, env.jobStore, userID, domain.JobStatusSucceeded)

		rec := env.doJSON(t, http.MethodPost, "/api/jobs/"+job.ID.String()+"/cancel", &userID, nil)
		require.Equal(t, http.StatusAccepted, rec.Code)

		got := decodeBody[JobResponse](t, rec)
		assert.Equal(t, domain.JobStatusSucceeded, got.Status)
	})
}

func TestListJobs(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	userID := uuid.New()
	seedTestJob(t, env.jobStore, userID, domain.JobStatusPending)
	seedTestJob(t, env.jobStore, userID, domain.JobStatusSucceeded)
	seedTestJob(t, env.jobStore, uuid.New(), domain.JobStatusPending)

	rec := env.doJSON(t, http.MethodGet, "/api/jobs", &userID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	jobs := decodeBody[[]JobResponse](t, rec)
	assert.Len(t, jobs, 2)
}
