package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"sprintcoach/internal/service"
	"sprintcoach/internal/util"
	"sprintcoach/pkg/rbac"
	"sprintcoach/pkg/trace"
)

const testSecret = "test-secret"

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	if err := InitValidators(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	os.Exit(m.Run())
}

// newTestRouter wires handlers without services; every request in these tests is
// rejected before a service would be reached.
func newTestRouter(ready map[string]Pinger) *gin.Engine {
	h := NewHandler(Services{}, zap.NewNop())
	return NewRouter(h, RouterConfig{JWTSecret: testSecret, Ready: ready}, zap.NewNop())
}

func token(t *testing.T, role string) string {
	t.Helper()
	tok, err := util.GenerateJWT(uuid.New(), role, testSecret, time.Hour)
	require.NoError(t, err)
	return tok
}

func do(r http.Handler, method, path, tok, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type errorBody struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var b errorBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &b))
	return b
}

func TestUnauthenticatedRequestsAreRejected(t *testing.T) {
	r := newTestRouter(nil)

	for _, path := range []string{"/v1/dashboard", "/v1/leads", "/v1/admin/outbox/failed"} {
		w := do(r, http.MethodGet, path, "", "")
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}

	w := do(r, http.MethodGet, "/v1/me", "not-a-jwt", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "invalid token", decode(t, w).Error)
}

func TestTokenSignedWithOtherSecretIsRejected(t *testing.T) {
	r := newTestRouter(nil)
	tok, err := util.GenerateJWT(uuid.New(), rbac.RoleUser, "other-secret", time.Hour)
	require.NoError(t, err)

	w := do(r, http.MethodGet, "/v1/me", tok, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminRoutesRequireAdminRole(t *testing.T) {
	r := newTestRouter(nil)
	tok := token(t, rbac.RoleUser)

	w := do(r, http.MethodGet, "/v1/admin/outbox/failed", tok, "")
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = do(r, http.MethodPost, "/v1/admin/outbox/7/requeue", tok, "")
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = do(r, http.MethodPost, "/v1/admin/outbox/requeue-failed", tok, "")
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestLeadWithoutNameReportsNameField(t *testing.T) {
	r := newTestRouter(nil)
	tok := token(t, rbac.RoleUser)

	w := do(r, http.MethodPost, "/v1/leads", tok, `{"email":"lead@example.com"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)

	body := decode(t, w)
	assert.Equal(t, "validation failed", body.Error)
	assert.Equal(t, "name is required", body.Fields["name"])
	assert.Len(t, body.Fields, 1)
}

func TestRegisterWithoutEmailReportsEmailField(t *testing.T) {
	r := newTestRouter(nil)

	w := do(r, http.MethodPost, "/register", "", `{"password":"longenough"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)

	body := decode(t, w)
	assert.Equal(t, "email is required", body.Fields["email"])
}

func TestValidationMessagesForCustomTags(t *testing.T) {
	r := newTestRouter(nil)
	tok := token(t, rbac.RoleUser)

	w := do(r, http.MethodPut, "/v1/leads/3/status", tok, `{"status":"Maybe"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "status must be one of: New, Contacted, Booked, Won, Lost", decode(t, w).Fields["status"])

	w = do(r, http.MethodPut, "/v1/profile", tok, `{"tz":"Mars/Olympus"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "tz must be a valid IANA time zone", decode(t, w).Fields["tz"])

	w = do(r, http.MethodPost, "/v1/stories/draft", tok,
		`{"archetype":"epic","sensory_detail":"a","conflict":"b","turning_point":"c","lesson":"d"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode(t, w).Fields["archetype"], "contrast, tiny_win, failure, vow")
}

func TestSocialRepsCountBounds(t *testing.T) {
	r := newTestRouter(nil)
	tok := token(t, rbac.RoleUser)

	w := do(r, http.MethodPost, "/v1/social-reps", tok, `{"count":0}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode(t, w).Fields, "count")

	w = do(r, http.MethodPut, "/v1/social-reps", tok, `{"count":-1}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode(t, w).Fields, "count")
}

func TestMalformedBodyAndBadIDs(t *testing.T) {
	r := newTestRouter(nil)
	tok := token(t, rbac.RoleUser)

	w := do(r, http.MethodPost, "/v1/habits", tok, `{"name":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodPost, "/v1/habits", tok, `{"name":"Read","target":"ten","unit":"pages"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode(t, w).Fields, "target")

	w = do(r, http.MethodDelete, "/v1/leads/abc", tok, "")
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid id", decode(t, w).Error)

	w = do(r, http.MethodPut, "/v1/sleep/2024-13-01", tok, `{"hours":7}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHealthAndReadiness(t *testing.T) {
	healthy := newTestRouter(map[string]Pinger{
		"db": PingFunc(func(context.Context) error { return nil }),
	})
	assert.Equal(t, http.StatusOK, do(healthy, http.MethodGet, "/healthz", "", "").Code)
	assert.Equal(t, http.StatusOK, do(healthy, http.MethodGet, "/readyz", "", "").Code)

	down := newTestRouter(map[string]Pinger{
		"redis": PingFunc(func(context.Context) error { return errors.New("connection refused") }),
	})
	w := do(down, http.MethodGet, "/readyz", "", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "redis_not_ready")
}

func TestTraceHeaderIsEchoed(t *testing.T) {
	r := newTestRouter(nil)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(trace.HeaderName, "abc123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc123", w.Header().Get(trace.HeaderName))

	w = do(r, http.MethodGet, "/healthz", "", "")
	assert.Len(t, w.Header().Get(trace.HeaderName), 32)
}

func TestCORSPreflight(t *testing.T) {
	h := NewHandler(Services{}, zap.NewNop())
	r := NewRouter(h, RouterConfig{JWTSecret: testSecret, AllowedOrigins: []string{"https://app.example.com"}}, zap.NewNop())

	req := httptest.NewRequest(http.MethodOptions, "/v1/leads", nil)
	req.Header.Set("Origin", "https://app.example.com")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/v1/leads", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRespondErrorStatusMapping(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{service.ErrNotFound, http.StatusNotFound},
		{fmt.Errorf("get lead: %w", service.ErrNotFound), http.StatusNotFound},
		{service.ErrEmailTaken, http.StatusConflict},
		{service.ErrConflict, http.StatusConflict},
		{service.ErrInvalidCredentials, http.StatusUnauthorized},
		{service.ErrTooManyAttempts, http.StatusTooManyRequests},
		{service.ErrForbidden, http.StatusForbidden},
		{service.Invalid("weeks must be positive"), http.StatusBadRequest},
		{&rbac.PermissionDeniedError{Role: "user", Permission: rbac.PermissionPromptsGlobal}, http.StatusForbidden},
		{errors.New("connection reset"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

		respondError(c, zap.NewNop(), tc.err)
		assert.Equal(t, tc.code, w.Code, tc.err.Error())
	}
}

func TestInternalErrorsAreNotLeaked(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	respondError(c, zap.NewNop(), errors.New("pq: password authentication failed"))
	assert.Equal(t, "internal server error", decode(t, w).Error)
}
