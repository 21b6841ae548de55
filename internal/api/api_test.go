package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/adlift/adlift-api/internal/api/shared"
	"github.com/adlift/adlift-api/internal/config"
	"github.com/adlift/adlift-api/internal/mocks"
	"github.com/adlift/adlift-api/internal/service"
	"github.com/adlift/adlift-api/internal/service/auth"
	"github.com/adlift/adlift-api/internal/task"
)

// testEnv bundles real services over in-memory stores so handler tests
// exercise the full request path without a database.
type testEnv struct {
	router        *chi.Mux
	userStore     *mocks.UserStore
	campaignStore *mocks.CampaignStore
	jobStore      *mocks.JobStore
	emitter       *mocks.EventEmitter
	registry      *task.TrackerRegistry
	jwtService    auth.JWTService
	mock          sqlmock.Sqlmock
}

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		JWTSecret:            "0123456789abcdef0123456789abcdef",
		TokenLifetimeMinutes: 60,
		BcryptCost:           bcrypt.MinCost,
	}
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	jwtService, err := auth.NewJWTService(testAuthConfig())
	require.NoError(t, err)

	env := &testEnv{
		userStore:     mocks.NewUserStore(),
		campaignStore: mocks.NewCampaignStore(),
		jobStore:      mocks.NewJobStore(),
		emitter:       mocks.NewEventEmitter(),
		registry:      task.NewTrackerRegistry(),
		jwtService:    jwtService,
		mock:          mock,
	}

	verifier := auth.NewBcryptVerifier(bcrypt.MinCost)
	userService := service.NewUserService(env.userStore, db, verifier, verifier, logger)
	campaignService := service.NewCampaignService(env.campaignStore, db, logger)
	generationService, err := service.NewGenerationService(
		env.jobStore, env.campaignStore, db, env.emitter, env.registry, logger)
	require.NoError(t, err)

	authHandler := NewAuthHandler(userService, jwtService)
	campaignHandler := NewCampaignHandler(campaignService)
	generationHandler := NewGenerationHandler(generationService)

	r := chi.NewRouter()
	r.Post("/api/auth/register", authHandler.Register)
	r.Post("/api/auth/login", authHandler.Login)
	r.Post("/api/campaigns", campaignHandler.CreateCampaign)
	r.Get("/api/campaigns", campaignHandler.ListCampaigns)
	r.Get("/api/campaigns/{id}", campaignHandler.GetCampaign)
	r.Put("/api/campaigns/{id}", campaignHandler.UpdateCampaign)
	r.Delete("/api/campaigns/{id}", campaignHandler.DeleteCampaign)
	r.Post("/api/generate/campaign", generationHandler.GenerateCampaign)
	r.Post("/api/generate/keywords", generationHandler.GenerateKeywords)
	r.Post("/api/generate/recommendations", generationHandler.GenerateRecommendations)
	r.Get("/api/jobs", generationHandler.ListJobs)
	r.Get("/api/jobs/{id}", generationHandler.GetJob)
	r.Post("/api/jobs/{id}/cancel", generationHandler.CancelJob)
	env.router = r

	return env
}

// expectTx queues expectations for one committed transaction.
func (env *testEnv) expectTx() {
	env.mock.ExpectBegin()
	env.mock.ExpectCommit()
}

// doJSON performs a request with a JSON body. A non-nil userID simulates an
// authenticated request by seeding the context the auth middleware would.
func (env *testEnv) doJSON(t *testing.T, method, path string, userID *uuid.UUID, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	if userID != nil {
		ctx := context.WithValue(req.Context(), shared.UserIDContextKey, *userID)
		req = req.WithContext(ctx)
	}

	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}
