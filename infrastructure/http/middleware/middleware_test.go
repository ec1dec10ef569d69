package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/fixora/resourcesvc/application/port/outbound"
	"github.com/fixora/resourcesvc/infrastructure/service/jwt"
	"github.com/fixora/resourcesvc/infrastructure/service/logger"
	"github.com/fixora/resourcesvc/infrastructure/service/metrics"
	"github.com/fixora/resourcesvc/infrastructure/service/ratelimit"
)

type MockTokenService struct {
	mock.Mock
}

func (m *MockTokenService) GenerateAccessToken(claims outbound.TokenClaims) (string, error) {
	args := m.Called(claims)
	return args.String(0), args.Error(1)
}

func (m *MockTokenService) ValidateAccessToken(token string) (*outbound.TokenClaims, error) {
	args := m.Called(token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*outbound.TokenClaims), args.Error(1)
}

func actorEcho() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(ActorID(r.Context())))
	})
}

func responseCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body["code"].(string)
}

func TestRequireAuth(t *testing.T) {
	tokens := new(MockTokenService)
	tokens.On("ValidateAccessToken", "good").Return(&outbound.TokenClaims{UserID: "u1"}, nil)
	tokens.On("ValidateAccessToken", "old").Return(nil, jwt.ErrTokenExpired)
	tokens.On("ValidateAccessToken", "bad").Return(nil, errors.New("signature invalid"))

	m := metrics.NewMetrics(prometheus.NewRegistry())
	handler := NewAuthMiddleware(tokens, logger.NewNopLogger(), m).RequireAuth(actorEcho())

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantBody   string
	}{
		{"valid token", "Bearer good", http.StatusOK, "u1"},
		{"lowercase scheme", "bearer good", http.StatusOK, "u1"},
		{"missing header", "", http.StatusUnauthorized, ""},
		{"wrong scheme", "Basic Zm9vOmJhcg==", http.StatusUnauthorized, ""},
		{"empty token", "Bearer  ", http.StatusUnauthorized, ""},
		{"expired", "Bearer old", http.StatusUnauthorized, ""},
		{"invalid", "Bearer bad", http.StatusUnauthorized, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/v1/resources", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, tt.wantBody, rec.Body.String())
			} else {
				assert.Equal(t, "UNAUTHORIZED", responseCode(t, rec))
			}
		})
	}

	assert.Equal(t, 5.0, testutil.ToFloat64(m.InvalidTokens))
}

func TestActorID(t *testing.T) {
	assert.Equal(t, "", ActorID(context.Background()))
	ctx := WithUserClaims(context.Background(), &outbound.TokenClaims{UserID: "u9"})
	assert.Equal(t, "u9", ActorID(ctx))
	assert.Equal(t, "u9", GetUserClaims(ctx).UserID)
}

func TestCorrelationIDMiddleware(t *testing.T) {
	var seen string
	handler := CorrelationIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = logger.CorrelationID(r.Context())
	}))

	t.Run("propagates incoming id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(CorrelationIDHeader, "abc-123")
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		assert.Equal(t, "abc-123", rec.Header().Get(CorrelationIDHeader))
		assert.Equal(t, "abc-123", seen)
	})

	t.Run("generates when missing", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		id := rec.Header().Get(CorrelationIDHeader)
		assert.Len(t, id, 36)
		assert.Equal(t, id, seen)
	})
}

func TestCORSMiddleware(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusTeapot) })
	handler := CORSMiddleware([]string{"https://app.example"}, true)(next)

	t.Run("allowed origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Origin", "https://app.example")
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusTeapot, rec.Code)
		assert.Equal(t, "https://app.example", rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
	})

	t.Run("unknown origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Origin", "https://evil.example")
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("preflight", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/v1/resources", nil)
		req.Header.Set("Origin", "https://app.example")
		req.Header.Set("Access-Control-Request-Method", "POST")
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "DELETE")
	})

	t.Run("wildcard", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Origin", "https://any.example")
		rec := httptest.NewRecorder()

		CORSMiddleware([]string{"*"}, false)(next).ServeHTTP(rec, req)

		assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestRateLimitMiddleware(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	svc := ratelimit.NewRedisRateLimitService(client, logger.NewNopLogger())
	m := metrics.NewMetrics(prometheus.NewRegistry())
	mw := NewRateLimitMiddleware(svc, RateLimitConfig{
		Requests:      2,
		Window:        time.Minute,
		BlockDuration: 5 * time.Minute,
	}, logger.NewNopLogger(), m)
	handler := mw.RateLimit(actorEcho())

	call := func(actor string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/v1/resources", nil)
		req.RemoteAddr = "10.0.0.1:5555"
		if actor != "" {
			req = req.WithContext(WithUserClaims(req.Context(), &outbound.TokenClaims{UserID: actor}))
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	first := call("u1")
	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "1", first.Header().Get("X-RateLimit-Remaining"))
	assert.Equal(t, http.StatusOK, call("u1").Code)

	limited := call("u1")
	assert.Equal(t, http.StatusTooManyRequests, limited.Code)
	assert.Equal(t, "300", limited.Header().Get("Retry-After"))
	assert.Equal(t, "RATE_LIMITED", responseCode(t, limited))
	assert.True(t, mr.Exists("blocked:api:user:u1"))

	// other actors and anonymous clients have their own budget
	assert.Equal(t, http.StatusOK, call("u2").Code)
	assert.Equal(t, http.StatusOK, call("").Code)
	assert.True(t, mr.Exists("api:ip:10.0.0.1"))

	// still blocked after the window resets
	mr.FastForward(2 * time.Minute)
	assert.Equal(t, http.StatusTooManyRequests, call("u1").Code)

	mr.FastForward(5 * time.Minute)
	assert.Equal(t, http.StatusOK, call("u1").Code)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.RateLimitHits.WithLabelValues("exceeded")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RateLimitHits.WithLabelValues("blocked")))
}

func TestRateLimitMiddleware_FailsOpen(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	mr.Close()

	mw := NewRateLimitMiddleware(ratelimit.NewRedisRateLimitService(client, logger.NewNopLogger()),
		RateLimitConfig{Requests: 1, Window: time.Minute, BlockDuration: time.Minute}, logger.NewNopLogger(), nil)
	rec := httptest.NewRecorder()

	mw.RateLimit(actorEcho()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGetClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.1:1234"
	assert.Equal(t, "192.0.2.1", getClientIP(req))

	req.Header.Set("X-Real-IP", "198.51.100.2")
	assert.Equal(t, "198.51.100.2", getClientIP(req))

	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	assert.Equal(t, "203.0.113.7", getClientIP(req))
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewStructuredLogger(logger.LoggerConfig{Level: "info", Format: "json", Output: &buf})
	m := metrics.NewMetrics(prometheus.NewRegistry())

	router := mux.NewRouter()
	router.Use(RequestLogger(log, m, true))
	router.HandleFunc("/v1/resources/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}).Methods(http.MethodGet)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/resources/abc", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/v1/resources/{id}", "404")))

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "HTTP request rejected", entry["msg"])
	assert.Equal(t, "/v1/resources/{id}", entry["route"])
	assert.EqualValues(t, 404, entry["status"])
}

func TestRequestLogger_SlowRequestIsPerformanceEvent(t *testing.T) {
	prev := SlowRequestThreshold
	SlowRequestThreshold = 0
	t.Cleanup(func() { SlowRequestThreshold = prev })

	var buf bytes.Buffer
	log := logger.NewStructuredLogger(logger.LoggerConfig{Level: "info", Format: "json", Output: &buf})

	router := mux.NewRouter()
	router.Use(RequestLogger(log, nil, true))
	router.HandleFunc("/v1/resources", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}).Methods(http.MethodGet)

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/v1/resources", nil))

	dec := json.NewDecoder(&buf)
	var perf, request map[string]interface{}
	require.NoError(t, dec.Decode(&perf))
	require.NoError(t, dec.Decode(&request))

	assert.Equal(t, "performance", perf["event_type"])
	assert.Equal(t, "GET /v1/resources", perf["operation"])
	assert.EqualValues(t, 200, perf["status"])
	assert.Equal(t, "HTTP request", request["msg"])
}

func TestRecovery(t *testing.T) {
	handler := Recovery(logger.NewNopLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "INTERNAL_ERROR", responseCode(t, rec))
}
