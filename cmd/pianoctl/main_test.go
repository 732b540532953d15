package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"piano-quest/internal/common/config"
	"piano-quest/internal/devserver"
	"piano-quest/internal/devserver/seed"
)

func startBackend(t *testing.T) string {
	t.Helper()
	cfg := &config.Config{}
	cfg.Server.Origin = "*"
	cfg.Server.JWTSecret = "test-secret"
	cfg.Server.TokenTTL = time.Hour
	content, err := seed.Default()
	require.NoError(t, err)

	srv := httptest.NewServer(devserver.NewRouter(cfg, content))
	t.Cleanup(srv.Close)
	return srv.URL + devserver.APIPrefix
}

func TestRun_NoArgs(t *testing.T) {
	var stdout, stderr bytes.Buffer
	assert.Equal(t, 2, run(nil, &stdout, &stderr))
	assert.Contains(t, stderr.String(), "usage: pianoctl")
}

func TestDispatch_Unknown(t *testing.T) {
	_, err := dispatch(context.Background(), nil, "dance", nil)
	assert.ErrorIs(t, err, errUsage)
}

func TestRun_DevLogin(t *testing.T) {
	t.Setenv("API_BASE_URL", startBackend(t))
	t.Setenv("PREFS_BACKEND", "memory")

	var stdout, stderr bytes.Buffer
	require.Equal(t, 0, run([]string{"dev-login", "mozart"}, &stdout, &stderr), stderr.String())

	var user map[string]interface{}
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &user))
	assert.Equal(t, "mozart", user["username"])
}

func TestRun_ErrorMessage(t *testing.T) {
	t.Setenv("API_BASE_URL", startBackend(t))
	t.Setenv("PREFS_BACKEND", "memory")

	var stdout, stderr bytes.Buffer
	assert.Equal(t, 1, run([]string{"levels", "list"}, &stdout, &stderr))
	assert.Contains(t, stderr.String(), "error: Not signed in")
	assert.Empty(t, stdout.String())
}
