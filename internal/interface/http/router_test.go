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

	"github.com/yanqian/healthcalc/internal/domain/healthcalc"
	"github.com/yanqian/healthcalc/internal/domain/healthtips"
	"github.com/yanqian/healthcalc/internal/domain/history"
	"github.com/yanqian/healthcalc/internal/domain/session"
	"github.com/yanqian/healthcalc/internal/infra/config"
	"github.com/yanqian/healthcalc/internal/infra/events"
	"github.com/yanqian/healthcalc/internal/infra/historyrepo"
	"github.com/yanqian/healthcalc/internal/infra/llm/chatgpt"
	"github.com/yanqian/healthcalc/internal/infra/tipstore"
)

func TestRouter_ListCalculators(t *testing.T) {
	server := newRouterUnderTest(t, routerOptions{})

	rec := performRequest(server, http.MethodGet, "/api/v1/calculators", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Calculators []healthcalc.CatalogEntry `json:"calculators"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Calculators, 7)
	require.Equal(t, "bmi", string(body.Calculators[0].Type))
}

func TestRouter_CalculateSuccess(t *testing.T) {
	server := newRouterUnderTest(t, routerOptions{})

	rec := performRequest(server, http.MethodPost, "/api/v1/calculators/bmi", `{"height":180,"weight":80,"unit":"metric"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Name    string              `json:"name"`
		Result  map[string]any      `json:"result"`
		Tips    healthtips.Response `json:"tips"`
		Summary struct {
			CalculatorResult string `json:"calculatorResult"`
		} `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "BMI", body.Name)
	require.Equal(t, 24.7, body.Result["bmi"])
	require.Equal(t, "Normal weight", body.Result["category"])
	require.Equal(t, []string{"Drink water", "Walk daily"}, body.Tips.HealthTips)
	require.Equal(t, healthtips.SourceLLM, body.Tips.Source)
}

func TestRouter_CalculateTipFailureStillSucceeds(t *testing.T) {
	server := newRouterUnderTest(t, routerOptions{chatErr: errors.New("backend down")})

	rec := performRequest(server, http.MethodPost, "/api/v1/calculators/heart-rate", `{"age":40}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Result map[string]any      `json:"result"`
		Tips   healthtips.Response `json:"tips"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, float64(90), body.Result["lower"])
	require.Equal(t, []string{healthtips.FallbackTip}, body.Tips.HealthTips)
	require.Equal(t, healthtips.CanonicalDisclaimer, body.Tips.Disclaimer)
}

func TestRouter_CalculateValidationError(t *testing.T) {
	server := newRouterUnderTest(t, routerOptions{})

	rec := performRequest(server, http.MethodPost, "/api/v1/calculators/bmi", `{"height":-5,"weight":80}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	errBody := decodeErrorBody(t, rec.Body.Bytes())
	require.Equal(t, "invalid_request", errBody["error"]["code"])
	require.Equal(t, "height", errBody["error"]["field"])
	require.Contains(t, errBody["error"]["message"], "height")
}

func TestRouter_CalculateMalformedJSON(t *testing.T) {
	server := newRouterUnderTest(t, routerOptions{})

	rec := performRequest(server, http.MethodPost, "/api/v1/calculators/bmi", `{"height":"tall"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "invalid_request", decodeErrorBody(t, rec.Body.Bytes())["error"]["code"])
}

func TestRouter_UnknownCalculator(t *testing.T) {
	server := newRouterUnderTest(t, routerOptions{})

	rec := performRequest(server, http.MethodPost, "/api/v1/calculators/bmr", `{}`)
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "not_found", decodeErrorBody(t, rec.Body.Bytes())["error"]["code"])
}

func TestRouter_TipsPassthrough(t *testing.T) {
	server := newRouterUnderTest(t, routerOptions{})

	rec := performRequest(server, http.MethodPost, "/api/v1/tips", `{"calculatorType":"WHR","calculatorResult":"Ratio: 0.80, Risk: Low"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp healthtips.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.HealthTips, 2)

	rec = performRequest(server, http.MethodPost, "/api/v1/tips", `{"calculatorResult":"x"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_SessionFlow(t *testing.T) {
	server := newRouterUnderTest(t, routerOptions{})

	rec := performRequest(server, http.MethodPost, "/api/v1/sessions", "")
	require.Equal(t, http.StatusCreated, rec.Code)
	var created session.State
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.NotEmpty(t, created.ID)
	require.Equal(t, session.PhaseIdle, created.Phase)

	rec = performRequest(server, http.MethodPost, "/api/v1/sessions/"+created.ID+"/calculations/water-intake", `{"weight":70,"activityLevel":"moderate"}`)
	require.Equal(t, http.StatusAccepted, rec.Code)
	var submitted map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &submitted))
	require.Equal(t, "result_ready", submitted["phase"])
	require.Equal(t, "water-intake", submitted["activeCalculator"])

	require.Eventually(t, func() bool {
		rec := performRequest(server, http.MethodGet, "/api/v1/sessions/"+created.ID, "")
		var st map[string]any
		if json.Unmarshal(rec.Body.Bytes(), &st) != nil {
			return false
		}
		return st["phase"] == "tips_ready"
	}, time.Second, 10*time.Millisecond)

	rec = performRequest(server, http.MethodGet, "/api/v1/sessions/"+created.ID+"/history?limit=5", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var hist struct {
		Calculations []history.Record `json:"calculations"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &hist))
	require.Len(t, hist.Calculations, 1)
	require.Equal(t, "water-intake", hist.Calculations[0].Calculator)
}

func TestRouter_SessionErrors(t *testing.T) {
	server := newRouterUnderTest(t, routerOptions{})

	rec := performRequest(server, http.MethodGet, "/api/v1/sessions/missing", "")
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = performRequest(server, http.MethodPost, "/api/v1/sessions", "")
	var created session.State
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	rec = performRequest(server, http.MethodGet, "/api/v1/sessions/"+created.ID+"/history?limit=abc", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = performRequest(server, http.MethodPost, "/api/v1/sessions/"+created.ID+"/calculations/body-fat", `{"gender":"female","height":165,"neck":33,"waist":76}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "hip", decodeErrorBody(t, rec.Body.Bytes())["error"]["field"])
}

func TestRouter_Health(t *testing.T) {
	server := newRouterUnderTest(t, routerOptions{
		probes: []ReadinessProbe{
			{Name: "valkey", Check: func(context.Context) error { return nil }},
			{Name: "postgres", Check: func(context.Context) error { return errors.New("connection refused") }},
		},
	})

	rec := performRequest(server, http.MethodGet, "/health/live", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = performRequest(server, http.MethodGet, "/health/ready", "")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "unavailable", body["status"])
	require.Equal(t, "closed", body["llm"])
	checks := body["checks"].(map[string]any)
	require.Equal(t, "ok", checks["valkey"])
	require.Equal(t, "connection refused", checks["postgres"])
}

func TestRouter_Metrics(t *testing.T) {
	server := newRouterUnderTest(t, routerOptions{})
	performRequest(server, http.MethodPost, "/api/v1/calculators/heart-rate", `{"age":30}`)

	rec := performRequest(server, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "healthcalc_calculations_total")
}

func TestRouter_CORSPreflight(t *testing.T) {
	server := newRouterUnderTest(t, routerOptions{origins: []string{"https://app.example"}})

	preflight := func(origin string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodOptions, "/api/v1/calculators/bmi", nil)
		req.Header.Set("Origin", origin)
		rec := httptest.NewRecorder()
		server.Handler.ServeHTTP(rec, req)
		return rec
	}

	rec := preflight("https://app.example")
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, "https://app.example", rec.Header().Get("Access-Control-Allow-Origin"))

	rec = preflight("https://evil.example")
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouter_RateLimit(t *testing.T) {
	server := newRouterUnderTest(t, routerOptions{rateLimit: config.RateLimitConfig{Enabled: true, RequestsPerMinute: 1, Burst: 1}})

	rec := performRequest(server, http.MethodGet, "/api/v1/calculators", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = performRequest(server, http.MethodGet, "/api/v1/calculators", "")
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.Equal(t, "rate_limit_exceeded", decodeErrorBody(t, rec.Body.Bytes())["error"]["code"])

	rec = performRequest(server, http.MethodGet, "/health/live", "")
	require.Equal(t, http.StatusOK, rec.Code)
}

type routerOptions struct {
	chatErr   error
	probes    []ReadinessProbe
	rateLimit config.RateLimitConfig
	origins   []string
}

func performRequest(server *http.Server, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, req)
	return rec
}

func newRouterUnderTest(t *testing.T, opts routerOptions) *http.Server {
	t.Helper()
	logger := newTestLogger()

	tips := healthtips.NewService(
		healthtips.Config{Model: "gpt-4o-mini", MaxTips: 5},
		tipstore.NewMemoryStore(),
		&stubChat{err: opts.chatErr},
		stubCounter{},
		logger,
	)
	hist := history.NewService(history.Config{ListLimit: 10}, historyrepo.NewMemoryRepository(10), events.NewLogPublisher(logger), logger)
	calc := healthcalc.NewService(tips, hist, logger)
	sessions := session.NewService(session.Config{TTL: time.Minute}, calc, hist, logger)
	t.Cleanup(sessions.Close)

	readiness := Readiness{Probes: opts.probes, LLMState: func() string { return "closed" }}
	handler := NewHandler(calc, sessions, readiness, logger)
	cfg := &config.Config{
		HTTP: config.HTTPConfig{
			Address:        ":0",
			ReadTimeout:    time.Second,
			WriteTimeout:   time.Second,
			RateLimit:      opts.rateLimit,
			AllowedOrigins: opts.origins,
		},
	}
	return NewRouter(cfg, handler)
}

func newTestLogger() *slog.Logger {
	handler := slog.NewTextHandler(io.Discard, nil)
	return slog.New(handler)
}

type stubChat struct {
	err error
}

func (s *stubChat) CreateChatCompletion(_ context.Context, _ chatgpt.ChatCompletionRequest) (chatgpt.ChatCompletionResponse, error) {
	if s.err != nil {
		return chatgpt.ChatCompletionResponse{}, s.err
	}
	return chatgpt.ChatCompletionResponse{
		Choices: []chatgpt.Choice{{Message: chatgpt.Message{Role: "assistant", Content: `{"healthTips":["Drink water","Walk daily"],"disclaimer":"Not medical advice."}`}}},
		Usage:   &chatgpt.Usage{PromptTokens: 40, CompletionTokens: 12, TotalTokens: 52},
	}, nil
}

type stubCounter struct{}

func (stubCounter) CountTokens(_, text string) int { return len(text) / 4 }

func decodeErrorBody(t *testing.T, raw []byte) map[string]map[string]string {
	t.Helper()
	var body map[string]map[string]string
	require.NoError(t, json.Unmarshal(raw, &body))
	return body
}
