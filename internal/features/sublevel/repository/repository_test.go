package repository

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "piano-quest/internal/common/errors"
	"piano-quest/internal/features/sublevel/models"
	"piano-quest/internal/platform/api"
	"piano-quest/internal/prefs"
)

func newClient(t *testing.T, handler http.HandlerFunc) *api.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	store := prefs.NewMemoryStore()
	require.NoError(t, store.SaveSession(context.Background(), prefs.Session{Token: "tok", ProviderID: "pid"}))
	client, err := api.New(api.Config{BaseURL: srv.URL, Credentials: store})
	require.NoError(t, err)
	return client
}

func TestSubmitProgress_ForwardsBodyVerbatim(t *testing.T) {
	var (
		path string
		body map[string]interface{}
	)
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &body)
		_ = json.NewEncoder(w).Encode(models.SublevelProgress{SublevelID: "s 1", Completed: true, Stars: 2})
	})

	p, err := NewSublevelRepository(client).SubmitProgress(context.Background(), "s 1",
		models.SubmitProgressRequest{Completed: true, Stars: 2, Score: 0})
	require.NoError(t, err)
	assert.True(t, p.Completed)

	assert.Equal(t, "/sublevels/s 1/progress", path)
	assert.Equal(t, map[string]interface{}{"completed": true, "stars": float64(2), "score": float64(0)}, body)
}

func TestSubmitProgress_RejectsOutOfRange(t *testing.T) {
	hits := 0
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) { hits++ })
	repo := NewSublevelRepository(client)

	_, err := repo.SubmitProgress(context.Background(), "s1", models.SubmitProgressRequest{Stars: 4})
	assert.Error(t, err)
	_, err = repo.SubmitProgress(context.Background(), "s1", models.SubmitProgressRequest{Score: -5})
	assert.Error(t, err)
	_, err = repo.SubmitProgress(context.Background(), "", models.SubmitProgressRequest{})
	assert.Error(t, err)
	assert.Zero(t, hits)
}

func TestGet_HTTPError(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"success":false,"error":{"code":"NOT_FOUND","message":"sublevel not found"}}`))
	})

	_, err := NewSublevelRepository(client).Get(context.Background(), "nope")
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, appErr.Status())
	assert.Equal(t, "sublevel not found", appErr.Message)
}
