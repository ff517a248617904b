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
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/airquality-advisor/internal/domain/airquality"
	"github.com/yanqian/airquality-advisor/internal/infra/config"
	apperrors "github.com/yanqian/airquality-advisor/pkg/errors"
)

func TestRouter_AssessSuccess(t *testing.T) {
	report := airquality.Report{
		ID:              "9c1b8f7e-0000-4000-8000-000000000001",
		State:           airquality.StateReady,
		Location:        "Karachi",
		Category:        "Unhealthy for Sensitive Groups (101-150)",
		Advice:          "Limit outdoor exercise.",
		AdviceAvailable: true,
	}
	svc := &stubAdvisor{
		assessFn: func(ctx context.Context, req airquality.AssessRequest) (airquality.Report, error) {
			require.Equal(t, "Karachi", req.Location)
			require.Equal(t, "Asthma", req.Condition)
			return report, nil
		},
	}

	recorder := performRequest(http.MethodPost, "/api/v1/assessments", `{"location":"Karachi","condition":"Asthma"}`, newRouterUnderTest(t, svc))
	require.Equal(t, http.StatusOK, recorder.Code)

	var got airquality.Report
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &got))
	require.Equal(t, report.Category, got.Category)
	require.Equal(t, report.Advice, got.Advice)
	require.Equal(t, airquality.StateReady, got.State)
}

func TestRouter_AssessInvalidJSON(t *testing.T) {
	recorder := performRequest(http.MethodPost, "/api/v1/assessments", `{"location":12}`, newRouterUnderTest(t, &stubAdvisor{}))
	require.Equal(t, http.StatusBadRequest, recorder.Code)

	errBody := decodeErrorBody(t, recorder.Body.Bytes())
	require.Equal(t, "invalid_request", errBody["error"]["code"])
	require.NotEmpty(t, errBody["error"]["message"])
}

func TestRouter_AssessFailuresMapToStatus(t *testing.T) {
	cases := []struct {
		name    string
		err     error
		status  int
		code    string
		message string
	}{
		{
			name:    "location",
			err:     apperrors.Wrap("location_not_found", "Unable to fetch location coordinates.", errors.New("no geocoding results")),
			status:  http.StatusNotFound,
			code:    "location_not_found",
			message: "Unable to fetch location coordinates.",
		},
		{
			name:    "air quality",
			err:     apperrors.Wrap("air_quality_unavailable", "Unable to fetch air quality data.", errors.New("status=500")),
			status:  http.StatusBadGateway,
			code:    "air_quality_unavailable",
			message: "Unable to fetch air quality data.",
		},
		{
			name:    "condition",
			err:     apperrors.Wrap("invalid_input", `unsupported health condition "Flu"`, nil),
			status:  http.StatusBadRequest,
			code:    "invalid_request",
			message: `unsupported health condition "Flu"`,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &stubAdvisor{
				assessFn: func(ctx context.Context, req airquality.AssessRequest) (airquality.Report, error) {
					return airquality.Report{}, tc.err
				},
			}
			recorder := performRequest(http.MethodPost, "/api/v1/assessments", `{"location":"Nowhere"}`, newRouterUnderTest(t, svc))
			require.Equal(t, tc.status, recorder.Code)

			errBody := decodeErrorBody(t, recorder.Body.Bytes())
			require.Equal(t, tc.code, errBody["error"]["code"])
			require.Equal(t, tc.message, errBody["error"]["message"])
		})
	}
}

func TestRouter_ChatReturnsFallbackReply(t *testing.T) {
	svc := &stubAdvisor{
		chatFn: func(ctx context.Context, req airquality.ChatRequest) (airquality.ChatReply, error) {
			return airquality.ChatReply{Question: req.Question, Answer: airquality.ChatFallback}, nil
		},
	}

	recorder := performRequest(http.MethodPost, "/api/v1/chat", `{"question":"Is PM2.5 dangerous?"}`, newRouterUnderTest(t, svc))
	require.Equal(t, http.StatusOK, recorder.Code)

	var got airquality.ChatReply
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &got))
	require.Equal(t, airquality.ChatFallback, got.Answer)
	require.False(t, got.Available)
}

func TestRouter_ChatStream(t *testing.T) {
	chunks := []airquality.ChatChunk{
		{Delta: "Wear ", Available: true},
		{Delta: "a mask.", Available: true},
		{Completed: true, Available: true},
	}
	svc := &stubAdvisor{
		streamFn: func(ctx context.Context, req airquality.ChatRequest) (<-chan airquality.ChatChunk, error) {
			out := make(chan airquality.ChatChunk, len(chunks))
			for _, chunk := range chunks {
				out <- chunk
			}
			close(out)
			return out, nil
		},
	}

	recorder := performRequest(http.MethodPost, "/api/v1/chat/stream", `{"question":"mask?"}`, newRouterUnderTest(t, svc))
	require.Equal(t, http.StatusOK, recorder.Code)
	require.Equal(t, "text/event-stream", recorder.Header().Get("Content-Type"))

	frames := strings.Split(strings.TrimSpace(recorder.Body.String()), "\n\n")
	require.Len(t, frames, len(chunks))
	for i, frame := range frames {
		require.True(t, strings.HasPrefix(frame, "data: "))
		var got airquality.ChatChunk
		require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(frame, "data: ")), &got))
		require.Equal(t, chunks[i], got)
	}
}

func TestRouter_ListingEndpoints(t *testing.T) {
	svc := &stubAdvisor{
		recentFn: func(ctx context.Context, limit int) ([]airquality.AssessmentRecord, error) {
			require.Equal(t, 5, limit)
			return []airquality.AssessmentRecord{{Location: "Lahore", AQI: 4}}, nil
		},
	}
	server := newRouterUnderTest(t, svc)

	recorder := performRequest(http.MethodGet, "/api/v1/assessments/recent?limit=5", "", server)
	require.Equal(t, http.StatusOK, recorder.Code)
	require.Contains(t, recorder.Body.String(), `"location":"Lahore"`)

	recorder = performRequest(http.MethodGet, "/api/v1/locations/trending", "", server)
	require.Equal(t, http.StatusOK, recorder.Code)
	require.JSONEq(t, `{"locations":[]}`, recorder.Body.String())

	recorder = performRequest(http.MethodGet, "/api/v1/conditions", "", server)
	require.Equal(t, http.StatusOK, recorder.Code)
	require.Contains(t, recorder.Body.String(), "Asthma")
}

func TestRouter_ReportNotFound(t *testing.T) {
	svc := &stubAdvisor{
		reportFn: func(ctx context.Context, id string) (airquality.Report, error) {
			return airquality.Report{}, apperrors.Wrap("report_not_found", "report not found", airquality.ErrObjectNotFound)
		},
	}
	recorder := performRequest(http.MethodGet, "/api/v1/assessments/0b7c3a53-53b8-4f38-a1b4-3b4f0c6d2a10", "", newRouterUnderTest(t, svc))
	require.Equal(t, http.StatusNotFound, recorder.Code)
	require.Equal(t, "report_not_found", decodeErrorBody(t, recorder.Body.Bytes())["error"]["code"])
}

func TestRouter_RateLimited(t *testing.T) {
	handler := NewHandler(&stubAdvisor{}, newTestLogger())
	cfg := &config.Config{
		HTTP: config.HTTPConfig{
			Address:   ":0",
			RateLimit: config.RateLimitConfig{Enabled: true, RequestsPerMinute: 1, Burst: 1},
		},
	}
	server := NewRouter(cfg, handler)

	require.Equal(t, http.StatusOK, performRequest(http.MethodPost, "/api/v1/assessments", `{"location":""}`, server).Code)
	recorder := performRequest(http.MethodPost, "/api/v1/chat", `{"question":"ok?"}`, server)
	require.Equal(t, http.StatusTooManyRequests, recorder.Code)
	require.Equal(t, "rate_limit_exceeded", decodeErrorBody(t, recorder.Body.Bytes())["error"]["code"])
	require.NotEmpty(t, recorder.Header().Get("Retry-After"))

	// read-only routes never reach a provider and are not throttled
	require.Equal(t, http.StatusOK, performRequest(http.MethodGet, "/api/v1/conditions", "", server).Code)
}

func performRequest(method, path, body string, server *http.Server) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	return performRawRequest(req, server)
}

func performRawRequest(req *http.Request, server *http.Server) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, req)
	return rec
}

func newRouterUnderTest(t *testing.T, svc airquality.Service) *http.Server {
	t.Helper()
	handler := NewHandler(svc, newTestLogger())
	cfg := &config.Config{
		HTTP: config.HTTPConfig{
			Address:      ":0",
			ReadTimeout:  time.Second,
			WriteTimeout: time.Second,
		},
	}
	return NewRouter(cfg, handler)
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type stubAdvisor struct {
	assessFn func(ctx context.Context, req airquality.AssessRequest) (airquality.Report, error)
	chatFn   func(ctx context.Context, req airquality.ChatRequest) (airquality.ChatReply, error)
	streamFn func(ctx context.Context, req airquality.ChatRequest) (<-chan airquality.ChatChunk, error)
	recentFn func(ctx context.Context, limit int) ([]airquality.AssessmentRecord, error)
	reportFn func(ctx context.Context, id string) (airquality.Report, error)
}

func (s *stubAdvisor) Assess(ctx context.Context, req airquality.AssessRequest) (airquality.Report, error) {
	if s.assessFn != nil {
		return s.assessFn(ctx, req)
	}
	return airquality.Report{State: airquality.StateIdle}, nil
}

func (s *stubAdvisor) Chat(ctx context.Context, req airquality.ChatRequest) (airquality.ChatReply, error) {
	if s.chatFn != nil {
		return s.chatFn(ctx, req)
	}
	return airquality.ChatReply{}, nil
}

func (s *stubAdvisor) StreamChat(ctx context.Context, req airquality.ChatRequest) (<-chan airquality.ChatChunk, error) {
	if s.streamFn != nil {
		return s.streamFn(ctx, req)
	}
	out := make(chan airquality.ChatChunk)
	close(out)
	return out, nil
}

func (s *stubAdvisor) Conditions() []airquality.HealthCondition {
	return airquality.Conditions()
}

func (s *stubAdvisor) Recent(ctx context.Context, limit int) ([]airquality.AssessmentRecord, error) {
	if s.recentFn != nil {
		return s.recentFn(ctx, limit)
	}
	return nil, nil
}

func (s *stubAdvisor) Trending(ctx context.Context, limit int) ([]airquality.TrendingLocation, error) {
	return nil, nil
}

func (s *stubAdvisor) Report(ctx context.Context, id string) (airquality.Report, error) {
	if s.reportFn != nil {
		return s.reportFn(ctx, id)
	}
	return airquality.Report{}, nil
}

func decodeErrorBody(t *testing.T, raw []byte) map[string]map[string]string {
	t.Helper()
	var body map[string]map[string]string
	require.NoError(t, json.Unmarshal(raw, &body))
	return body
}
