package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/carbonlens/internal/domain/auth"
	"github.com/yanqian/carbonlens/internal/domain/footprint"
	"github.com/yanqian/carbonlens/internal/domain/leaderboard"
	"github.com/yanqian/carbonlens/internal/domain/recommend"
	"github.com/yanqian/carbonlens/internal/infra/config"
	"github.com/yanqian/carbonlens/internal/infra/runrepo"
	"github.com/yanqian/carbonlens/internal/infra/userrepo"
	apperrors "github.com/yanqian/carbonlens/pkg/errors"
)

const urbanCommuter = `{"electricityKwh":350,"naturalGasTherms":60,"carKm":600,"busKm":100,"dietDailyKg":3.5,"goodsEmissionsKg":250}`

func TestRouter_ComputeRecordsAnonymousRun(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodPost, "/api/v1/footprint/compute", urbanCommuter, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp footprint.AnalyzeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, 60, resp.Score)
	require.Equal(t, 1095.0, resp.Totals.Total)
	require.Equal(t, 605.0, resp.Totals.Energy)
	require.Len(t, resp.Trend, 6)
	require.NotEmpty(t, resp.RunID)
	require.Empty(t, resp.Notices)

	board := env.leaderboard(t, "/api/v1/leaderboard")
	require.Len(t, board.Entries, 1)
	require.Equal(t, resp.RunID, board.Entries[0].RunID)
	require.Equal(t, "Gold", board.Entries[0].Tier)
	require.Equal(t, 750, board.Entries[0].XP)
	require.Contains(t, board.Entries[0].DisplayName, "Anonymous #")
}

func TestRouter_ComputeRejectsInvalidInput(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodPost, "/api/v1/footprint/compute", `{"carKm":-5}`, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeErrorBody(t, rec.Body.Bytes())
	require.Equal(t, apperrors.CodeInvalidInput, body["error"]["code"])
	require.Contains(t, body["error"]["message"], "carKm must be non-negative")

	rec = env.do(http.MethodPost, "/api/v1/footprint/compute", `{"carKm":"far"}`, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "invalid_request", decodeErrorBody(t, rec.Body.Bytes())["error"]["code"])

	board := env.leaderboard(t, "/api/v1/leaderboard")
	require.Empty(t, board.Entries)
}

func TestRouter_AuthenticatedComputeAndStanding(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodPost, "/api/v1/auth/register", `{"email":"leaf@example.com","password":"green2026","nickname":"Leaf"}`, "")
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = env.do(http.MethodPost, "/api/v1/auth/register", `{"email":"leaf@example.com","password":"green2026","nickname":"Leaf"}`, "")
	require.Equal(t, http.StatusConflict, rec.Code)

	rec = env.do(http.MethodPost, "/api/v1/auth/login", `{"email":"leaf@example.com","password":"nope12345"}`, "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(http.MethodPost, "/api/v1/auth/login", `{"email":"leaf@example.com","password":"green2026"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var login auth.LoginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &login))

	rec = env.do(http.MethodGet, "/api/v1/auth/me", "", login.Token)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = env.do(http.MethodGet, "/api/v1/auth/me", "", "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(http.MethodPost, "/api/v1/footprint/compute", `{"profile":"eco-warrior"}`, login.Token)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(http.MethodPost, "/api/v1/footprint/compute", urbanCommuter, "not-a-token")
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(http.MethodGet, "/api/v1/leaderboard/users/1", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var standing leaderboard.Standing
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &standing))
	require.True(t, standing.Found)
	require.Equal(t, 1, standing.Rank)
	require.Equal(t, "Leaf", standing.Entry.DisplayName)
	require.Equal(t, "Diamond", standing.Entry.Tier)

	rec = env.do(http.MethodGet, "/api/v1/leaderboard/users/abc", "", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_LeaderboardLimits(t *testing.T) {
	env := newTestEnv(t)
	for i := 0; i < 3; i++ {
		require.Equal(t, http.StatusOK, env.do(http.MethodPost, "/api/v1/footprint/compute", urbanCommuter, "").Code)
	}

	require.Len(t, env.leaderboard(t, "/api/v1/leaderboard?limit=2").Entries, 2)
	require.Len(t, env.leaderboard(t, "/api/v1/leaderboard/monthly").Entries, 3)

	rec := env.do(http.MethodGet, "/api/v1/leaderboard?limit=-1", "", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	rec = env.do(http.MethodGet, "/api/v1/leaderboard?limit=ten", "", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_LeaderboardUnavailable(t *testing.T) {
	env := newTestEnvWith(t, failingBoard{}, nil)
	rec := env.do(http.MethodGet, "/api/v1/leaderboard", "", "")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	body := decodeErrorBody(t, rec.Body.Bytes())
	require.Equal(t, apperrors.CodeLeaderboard, body["error"]["code"])
	require.NotContains(t, body["error"]["message"], "connection refused")
}

func TestRouter_SimulateAndProfiles(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodPost, "/api/v1/footprint/simulate", `{"profile":"urban-commuter","preset":"green_warrior"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var sim footprint.Simulation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sim))
	require.Equal(t, 81, sim.EstimatedScore)

	rec = env.do(http.MethodGet, "/api/v1/footprint/profiles", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var profiles struct {
		Profiles []footprint.ProfileView `json:"profiles"`
		Presets  []string                `json:"presets"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &profiles))
	require.Len(t, profiles.Profiles, 4)
	require.Len(t, profiles.Presets, 3)
}

func TestRouter_RecommendationsFallBackWithoutModel(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodPost, "/api/v1/recommendations", `{"totals":{"total":1095,"energy":605,"travel":135,"food":105,"goods":250},"score":60}`, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var tips recommend.TipsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tips))
	require.Equal(t, recommend.SourceFallback, tips.Source)
	require.Len(t, tips.Tips, 3)

	rec = env.do(http.MethodPost, "/api/v1/recommendations/chat", `{"question":"what now?","totals":{"travel":10}}`, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var chat recommend.ChatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &chat))
	require.Contains(t, chat.Reply, "**travel**")

	rec = env.do(http.MethodPost, "/api/v1/recommendations/chat", `{"question":""}`, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_HealthAndCORS(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(http.MethodGet, "/healthz", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	rec = env.do(http.MethodOptions, "/api/v1/footprint/compute", "", "")
	require.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRouter_RetriesTransientFailures(t *testing.T) {
	flaky := &flakyRecommender{failures: 1}
	env := newTestEnvWith(t, nil, flaky)
	env.cfg.HTTP.Retry = config.RetryConfig{Enabled: true, MaxAttempts: 3, Routes: []string{"/api/v1/recommendations"}}
	env.server = NewRouter(env.cfg, env.handler)

	rec := env.do(http.MethodPost, "/api/v1/recommendations", `{}`, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 2, flaky.calls)

	// Chat is not on the list, so its failure is returned as is.
	flaky.failures, flaky.calls = 10, 0
	rec = env.do(http.MethodPost, "/api/v1/recommendations/chat", `{"question":"why?"}`, "")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.Equal(t, 1, flaky.chatCalls)
}

func TestRouter_RetriesLeaderboardReads(t *testing.T) {
	board := &countingBoard{}
	env := newTestEnvWith(t, board, nil)
	env.cfg.HTTP.Retry = config.RetryConfig{Enabled: true, MaxAttempts: 3}
	env.server = NewRouter(env.cfg, env.handler)

	rec := env.do(http.MethodGet, "/api/v1/leaderboard", "", "")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.Equal(t, 3, board.calls)
	require.Equal(t, apperrors.CodeLeaderboard, decodeErrorBody(t, rec.Body.Bytes())["error"]["code"])
}

func TestRouter_ComputeAttribution(t *testing.T) {
	env := newTestEnv(t)
	require.Equal(t, http.StatusCreated, env.do(http.MethodPost, "/api/v1/auth/register", `{"email":"moss@example.com","password":"green2026","nickname":"Moss Rider"}`, "").Code)
	rec := env.do(http.MethodPost, "/api/v1/auth/login", `{"email":"moss@example.com","password":"green2026"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var login auth.LoginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &login))

	require.Equal(t, http.StatusOK, env.do(http.MethodPost, "/api/v1/footprint/compute", `{"profile":"eco-warrior"}`, login.Token).Code)
	require.Equal(t, http.StatusOK, env.do(http.MethodPost, "/api/v1/footprint/compute", `{"profile":"student-hostel","displayName":"Team Moss"}`, login.Token).Code)

	names := map[string]bool{}
	for _, e := range env.leaderboard(t, "/api/v1/leaderboard").Entries {
		names[e.DisplayName] = true
	}
	require.Equal(t, map[string]bool{"Moss Rider": true, "Team Moss": true}, names)

	rec = env.do(http.MethodPost, "/api/v1/footprint/compute", urbanCommuter, login.RefreshToken)
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Equal(t, apperrors.CodeInvalidToken, decodeErrorBody(t, rec.Body.Bytes())["error"]["code"])
}

func TestRouter_RateLimit(t *testing.T) {
	env := newTestEnv(t)
	env.cfg.HTTP.RateLimit = config.RateLimitConfig{Enabled: true, RequestsPerMinute: 1, Burst: 1}
	env.server = NewRouter(env.cfg, env.handler)

	require.Equal(t, http.StatusOK, env.do(http.MethodGet, "/healthz", "", "").Code)
	rec := env.do(http.MethodGet, "/healthz", "", "")
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
}

type testEnv struct {
	cfg     *config.Config
	handler *Handler
	server  *http.Server
}

func newTestEnv(t *testing.T) *testEnv {
	return newTestEnvWith(t, nil, nil)
}

func newTestEnvWith(t *testing.T, board leaderboard.Service, coach recommend.Service) *testEnv {
	t.Helper()
	logger := newTestLogger()
	runs := runrepo.NewMemoryRepository()
	fpSvc := footprint.NewService(footprint.Config{CollaboratorTimeout: time.Second}, runs, nil, logger)
	if board == nil {
		board = leaderboard.NewService(leaderboard.Config{}, runs, logger)
	}
	if coach == nil {
		coach = recommend.NewService(recommend.Config{}, nil, nil, nil, logger)
	}
	authSvc := auth.NewService(auth.Config{Secret: "test-secret", TokenTTL: time.Hour, RefreshTokenTTL: time.Hour}, userrepo.NewMemoryRepository(), logger)

	handler := NewHandler(fpSvc, board, coach, authSvc, logger)
	cfg := &config.Config{
		HTTP: config.HTTPConfig{
			Address:      ":0",
			ReadTimeout:  time.Second,
			WriteTimeout: time.Second,
		},
	}
	return &testEnv{cfg: cfg, handler: handler, server: NewRouter(cfg, handler)}
}

func (e *testEnv) do(method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.server.Handler.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) leaderboard(t *testing.T, path string) leaderboard.Board {
	t.Helper()
	rec := e.do(http.MethodGet, path, "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var board leaderboard.Board
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &board))
	return board
}

func newTestLogger() *slog.Logger {
	handler := slog.NewTextHandler(io.Discard, nil)
	return slog.New(handler)
}

func decodeErrorBody(t *testing.T, raw []byte) map[string]map[string]string {
	t.Helper()
	var body map[string]map[string]string
	require.NoError(t, json.Unmarshal(raw, &body))
	return body
}

type failingBoard struct{}

func (failingBoard) Top(context.Context, int) (leaderboard.Board, error) {
	return leaderboard.Board{}, apperrors.Wrap(apperrors.CodeLeaderboard, "leaderboard unavailable", errors.New("dial tcp: connection refused"))
}

func (failingBoard) Monthly(context.Context) (leaderboard.Board, error) {
	return leaderboard.Board{}, apperrors.Wrap(apperrors.CodeLeaderboard, "leaderboard unavailable", nil)
}

func (failingBoard) UserRank(context.Context, int64) (leaderboard.Standing, error) {
	return leaderboard.Standing{}, apperrors.Wrap(apperrors.CodeLeaderboard, "leaderboard unavailable", nil)
}

type countingBoard struct {
	failingBoard
	calls int
}

func (b *countingBoard) Top(ctx context.Context, limit int) (leaderboard.Board, error) {
	b.calls++
	return b.failingBoard.Top(ctx, limit)
}

type flakyRecommender struct {
	failures  int
	calls     int
	chatCalls int
}

func (f *flakyRecommender) Generate(context.Context, recommend.TipsRequest) (recommend.TipsResponse, error) {
	f.calls++
	if f.calls <= f.failures {
		return recommend.TipsResponse{}, apperrors.Wrap(apperrors.CodeCollaboratorFailed, "temporarily unavailable", nil)
	}
	return recommend.TipsResponse{Source: recommend.SourceFallback}, nil
}

func (f *flakyRecommender) Chat(context.Context, recommend.ChatRequest) (recommend.ChatResponse, error) {
	f.chatCalls++
	if f.chatCalls <= f.failures {
		return recommend.ChatResponse{}, apperrors.Wrap(apperrors.CodeCollaboratorFailed, "temporarily unavailable", nil)
	}
	return recommend.ChatResponse{}, nil
}
