package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	httpMocks "kvcache/internal/http/mocks"
	"kvcache/internal/logger"
	"kvcache/internal/mocks"
	"kvcache/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestLoggingMiddleware_Success(t *testing.T) {
	mockLogger := &mocks.MockLogger{}

	testHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Verify log event exists in context
		logEvent := logger.GetLogEvent(r.Context())
		assert.NotNil(t, logEvent)
		assert.Equal(t, models.ProcessTypeRequest, logEvent.ProcessType)
		assert.Equal(t, "192.168.1.1", logEvent.ClientIP)

		w.WriteHeader(http.StatusOK)
		w.Write([]byte("success"))
	})

	mockLogger.On("LogInfo", mock.Anything, "http_request_start", "HTTP request received", mock.Anything).Return()
	mockLogger.On("LogInfo", mock.Anything, "http_request_complete", "HTTP request processed", mock.MatchedBy(func(metadata map[string]interface{}) bool {
		return metadata["method"] == "GET" &&
			metadata["path"] == "/test" &&
			metadata["status_code"] == 200 &&
			metadata["client_ip"] == "192.168.1.1"
	})).Return()

	middleware := loggingMiddleware(mockLogger)
	handler := middleware(testHandler)

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.RemoteAddr = "192.168.1.1:12345"
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "success", w.Body.String())

	mockLogger.AssertExpectations(t)
}

func TestLoggingMiddleware_ForwardedForHeader(t *testing.T) {
	mockLogger := &mocks.MockLogger{}

	testHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logEvent := logger.GetLogEvent(r.Context())
		assert.Equal(t, "10.0.0.5", logEvent.ClientIP) // From X-Forwarded-For
		w.WriteHeader(http.StatusOK)
	})

	mockLogger.On("LogInfo", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return()

	middleware := loggingMiddleware(mockLogger)
	handler := middleware(testHandler)

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.RemoteAddr = "192.168.1.1:12345"
	req.Header.Set("X-Forwarded-For", "10.0.0.5, 172.16.0.1")
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRateLimitingMiddleware_Allowed(t *testing.T) {
	mockLogger := &mocks.MockLogger{}
	mockRateLimiter := &httpMocks.MockRateLimiter{}

	mockRateLimiter.On("Allow", mock.AnythingOfType("string")).Return(true)

	testHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	middleware := rateLimitingMiddleware(mockRateLimiter, mockLogger)
	handler := middleware(testHandler)

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	mockRateLimiter.AssertExpectations(t)
}

func TestRateLimitingMiddleware_Denied(t *testing.T) {
	mockLogger := &mocks.MockLogger{}
	mockRateLimiter := &httpMocks.MockRateLimiter{}

	mockRateLimiter.On("Allow", mock.AnythingOfType("string")).Return(false)
	mockLogger.On("LogError", mock.Anything, "rate_limited", "", "Rate limit exceeded",
		models.ErrRateLimitExceeded, models.LogSeverityMedium, mock.Anything).Return()

	called := false
	testHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	middleware := rateLimitingMiddleware(mockRateLimiter, mockLogger)
	handler := middleware(testHandler)

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "1", w.Header().Get("X-RateLimit-Retry-After"))
	assert.False(t, called, "handler must not run when rate limited")

	var response map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "rate limit exceeded", response["error"])

	mockLogger.AssertExpectations(t)
}

func TestRecoveryMiddleware_Panic(t *testing.T) {
	mockLogger := &mocks.MockLogger{}

	mockLogger.On("LogError", mock.Anything, "panic_recovery", "", "Panic recovered in HTTP handler",
		mock.Anything, models.LogSeverityHigh, mock.Anything).Return()

	testHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})

	middleware := recoveryMiddleware(mockLogger)
	handler := middleware(testHandler)

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "internal server error")

	mockLogger.AssertExpectations(t)
}

func TestCorsMiddleware_Preflight(t *testing.T) {
	called := false
	testHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	middleware := corsMiddleware()
	handler := middleware(testHandler)

	req := httptest.NewRequest(http.MethodOptions, "/api/entries/x", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.False(t, called, "preflight must short-circuit")
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		headers    map[string]string
		expected   string
	}{
		{"remote addr", "192.168.1.1:12345", nil, "192.168.1.1"},
		{"remote addr without port", "192.168.1.1", nil, "192.168.1.1"},
		{"x-forwarded-for", "10.0.0.1:80", map[string]string{"X-Forwarded-For": "203.0.113.7"}, "203.0.113.7"},
		{"x-forwarded-for list", "10.0.0.1:80", map[string]string{"X-Forwarded-For": "203.0.113.7, 172.16.0.1"}, "203.0.113.7"},
		{"x-real-ip", "10.0.0.1:80", map[string]string{"X-Real-IP": "203.0.113.9"}, "203.0.113.9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}

			assert.Equal(t, tt.expected, getClientIP(req))
		})
	}
}
