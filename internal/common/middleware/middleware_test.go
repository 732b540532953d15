package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"piano-quest/internal/common/errors"
	"piano-quest/internal/features/auth/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeVerifier struct{}

func (fakeVerifier) Verify(_ context.Context, token, providerID string) (*models.User, time.Time, error) {
	if token != "good" || providerID != "pid" {
		return nil, time.Time{}, errors.NewUnauthorizedError("invalid or expired token")
	}
	return &models.User{ID: "u1", Username: "mozart"}, time.Unix(1700000000, 0), nil
}

func newRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(RequestID(), ErrorHandler(), Recovery())
	r.GET("/x", handlers...)
	return r
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestErrorHandler_StatusMapping(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{errors.NewValidationError("name", "empty"), http.StatusBadRequest},
		{errors.NewNotFoundError("avatar", "a1"), http.StatusNotFound},
		{errors.NewUnauthorizedError("no"), http.StatusUnauthorized},
		{errors.New(errors.ErrCodeLocked, "locked"), http.StatusForbidden},
		{errors.New(errors.ErrCodeNotEnoughXP, "short"), http.StatusConflict},
		{errors.New(errors.ErrCodeOutfitNotUnlocked, "nope"), http.StatusConflict},
		{errors.New(errors.ErrCodeTooLarge, "big"), http.StatusRequestEntityTooLarge},
		{errors.New(errors.ErrCodeTooManyRequests, "slow down"), http.StatusTooManyRequests},
		{assert.AnError, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			r := newRouter(func(c *gin.Context) { Fail(c, tt.err) })
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))

			assert.Equal(t, tt.status, w.Code)
			resp := decodeError(t, w)
			assert.False(t, resp.Success)
			assert.NotEmpty(t, resp.Error.Message)
			assert.NotEmpty(t, resp.RequestID)
		})
	}
}

func TestErrorHandler_MessageAtErrorMessage(t *testing.T) {
	r := newRouter(func(c *gin.Context) { Fail(c, errors.New(errors.ErrCodeLocked, "This sublevel is still locked")) })
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))

	var body map[string]map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "This sublevel is still locked", body["error"]["message"])
	assert.Equal(t, "LOCKED", body["error"]["code"])
}

func TestRecovery(t *testing.T) {
	r := newRouter(func(c *gin.Context) { panic("boom") })
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	resp := decodeError(t, w)
	assert.Equal(t, errors.ErrCodeInternal, resp.Error.Code)
	assert.Empty(t, resp.Error.Details)
	assert.NotContains(t, w.Body.String(), "boom")
}

func TestRequestID(t *testing.T) {
	r := newRouter(func(c *gin.Context) { c.String(http.StatusOK, GetRequestID(c)) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(HeaderRequestID, "req-123")
	r.ServeHTTP(w, req)
	assert.Equal(t, "req-123", w.Body.String())
	assert.Equal(t, "req-123", w.Header().Get(HeaderRequestID))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.NotEmpty(t, w.Header().Get(HeaderRequestID))
}

func TestRequireAuth(t *testing.T) {
	r := newRouter(RequireAuth(fakeVerifier{}), func(c *gin.Context) {
		user, expiresAt, ok := CurrentUser(c)
		require.True(t, ok)
		assert.Equal(t, int64(1700000000), expiresAt.Unix())
		c.String(http.StatusOK, user.ID+":"+GetUserID(c))
	})

	tests := map[string]struct {
		auth, pid string
		status    int
	}{
		"valid":            {"Bearer good", "pid", http.StatusOK},
		"lowercase scheme": {"bearer good", "pid", http.StatusOK},
		"no header":        {"", "pid", http.StatusUnauthorized},
		"no provider id":   {"Bearer good", "", http.StatusUnauthorized},
		"bad token":        {"Bearer bad", "pid", http.StatusUnauthorized},
		"basic auth":       {"Basic Z29vZA==", "pid", http.StatusUnauthorized},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/x", nil)
			if tt.auth != "" {
				req.Header.Set("Authorization", tt.auth)
			}
			if tt.pid != "" {
				req.Header.Set(HeaderProviderID, tt.pid)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			if tt.status == http.StatusOK {
				assert.Equal(t, "u1:u1", w.Body.String())
			}
		})
	}
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	r := gin.New()
	r.Use(m.Handler())
	r.GET("/levels/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	for i := 0; i < 3; i++ {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/levels/l1", nil))
	}

	assert.Equal(t, float64(3), testutil.ToFloat64(m.requests.WithLabelValues("GET", "/levels/:id", "204")))
	count, err := testutil.GatherAndCount(reg, "piano_quest_http_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
