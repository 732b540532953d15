package devserver

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"piano-quest/internal/common/config"
	"piano-quest/internal/devserver/seed"
	authmodels "piano-quest/internal/features/auth/models"
)

func newRouter(t *testing.T) *gin.Engine {
	t.Helper()
	cfg := &config.Config{}
	cfg.Server.Origin = "*"
	cfg.Server.JWTSecret = "test-secret"
	cfg.Server.TokenTTL = time.Hour
	cfg.Server.RecognitionRPS = 10
	cfg.Server.RecognitionBurst = 10
	cfg.Server.MaxUploadBytes = 1024

	content, err := seed.Default()
	require.NoError(t, err)
	return NewRouter(cfg, content)
}

func serve(r *gin.Engine, method, path, body string, header map[string]string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	w := serve(newRouter(t), http.MethodGet, "/health", "", nil)

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, float64(3), body["levels"])
}

func TestProtectedRoutesRequireSession(t *testing.T) {
	r := newRouter(t)
	for _, path := range []string{"/levels", "/avatars", "/sublevels/progress", "/outfits", "/auth/verify", "/users/me"} {
		w := serve(r, http.MethodGet, APIPrefix+path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)

		var body struct {
			Success bool `json:"success"`
			Error   struct {
				Code    string `json:"code"`
				Message string `json:"message"`
			} `json:"error"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.False(t, body.Success)
		assert.Equal(t, "UNAUTHORIZED", body.Error.Code)
	}
}

func TestDevLoginAndVerify(t *testing.T) {
	r := newRouter(t)

	w := serve(r, http.MethodPost, APIPrefix+"/auth/dev", `{"username":"mozart"}`, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var login authmodels.AuthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &login))

	w = serve(r, http.MethodGet, APIPrefix+"/auth/verify", "", map[string]string{
		"Authorization": "Bearer " + login.Token,
		"X-Provider-Id": login.ProviderID,
	})
	require.Equal(t, http.StatusOK, w.Code)
	var verify authmodels.VerifyResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &verify))
	assert.True(t, verify.Valid)
	assert.Equal(t, login.User.ID, verify.User.ID)

	w = serve(r, http.MethodGet, APIPrefix+"/auth/verify", "", map[string]string{
		"Authorization": "Bearer " + login.Token,
		"X-Provider-Id": "someone-else",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestMalformedBody(t *testing.T) {
	w := serve(newRouter(t), http.MethodPost, APIPrefix+"/auth/dev", `{"username":`, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	r := newRouter(t)
	serve(r, http.MethodGet, "/health", "", nil)

	w := serve(r, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `piano_quest_http_requests_total{method="GET",route="/health",status="200"} 1`)
}

func TestRequestIDEchoed(t *testing.T) {
	w := serve(newRouter(t), http.MethodGet, "/health", "", map[string]string{"X-Request-ID": "abc-123"})
	assert.Equal(t, "abc-123", w.Header().Get("X-Request-ID"))
}

func TestCORSPreflight(t *testing.T) {
	w := serve(newRouter(t), http.MethodOptions, APIPrefix+"/levels", "", map[string]string{
		"Origin":                         "http://localhost:3000",
		"Access-Control-Request-Method":  "GET",
		"Access-Control-Request-Headers": "Authorization, X-Provider-Id",
	})
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
