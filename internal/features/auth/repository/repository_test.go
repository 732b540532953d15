package repository

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "piano-quest/internal/common/errors"
	"piano-quest/internal/features/auth/models"
	"piano-quest/internal/platform/api"
	"piano-quest/internal/prefs"
)

// stubDoer answers every call with the same response or error and records requests.
type stubDoer struct {
	resp     any
	err      error
	requests []api.Request
}

func (d *stubDoer) Do(_ context.Context, req api.Request, out any) error {
	d.requests = append(d.requests, req)
	if d.err != nil {
		return d.err
	}
	if out == nil || d.resp == nil {
		return nil
	}
	b, err := json.Marshal(d.resp)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, out)
}

var mia = models.User{ID: "u1", Username: "mia", Provider: "google"}

func TestLogin_PersistsAllThree(t *testing.T) {
	doer := &stubDoer{resp: models.AuthResponse{Token: "tok", ProviderID: "pid", User: mia}}
	store := prefs.NewMemoryStore()
	repo := NewAuthRepository(doer, store)

	user, err := repo.Login(context.Background(), "google", "id-token")
	require.NoError(t, err)
	assert.Equal(t, mia, *user)

	session, err := store.Session(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tok", session.Token)
	assert.Equal(t, "pid", session.ProviderID)
	assert.Equal(t, mia, session.User)

	require.Len(t, doer.requests, 1)
	assert.Equal(t, "/auth/social", doer.requests[0].Path)
	assert.Equal(t, models.SocialLoginRequest{Provider: "google", Credential: "id-token"}, doer.requests[0].Body)
	assert.False(t, doer.requests[0].Auth)
}

func TestLogin_SwitchingUserDropsThumbnail(t *testing.T) {
	ctx := context.Background()
	store := prefs.NewMemoryStore()

	_, err := NewAuthRepository(&stubDoer{resp: models.AuthResponse{Token: "tok-a", ProviderID: "pid-a", User: mia}}, store).
		Login(ctx, "google", "cred-a")
	require.NoError(t, err)
	require.NoError(t, store.SetAvatarThumbnail(ctx, "https://cdn.test/mia.png"))

	leo := models.User{ID: "u2", Username: "leo", Provider: "google"}
	_, err = NewAuthRepository(&stubDoer{resp: models.AuthResponse{Token: "tok-b", ProviderID: "pid-b", User: leo}}, store).
		Login(ctx, "google", "cred-b")
	require.NoError(t, err)

	thumb, err := store.AvatarThumbnail(ctx)
	require.NoError(t, err)
	assert.Empty(t, thumb)
}

func TestLogin_FailuresPersistNothing(t *testing.T) {
	tests := map[string]*stubDoer{
		"http error":      {err: apperrors.NewHTTPError(http.StatusUnauthorized, "bad credential")},
		"transport error": {err: apperrors.NewTransportError(assert.AnError)},
		"no token":        {resp: models.AuthResponse{ProviderID: "pid", User: mia}},
		"no provider id":  {resp: models.AuthResponse{Token: "tok", User: mia}},
	}
	for name, doer := range tests {
		t.Run(name, func(t *testing.T) {
			store := prefs.NewMemoryStore()
			_, err := NewAuthRepository(doer, store).Login(context.Background(), "apple", "cred")
			require.Error(t, err)

			_, err = store.Credentials(context.Background())
			assert.ErrorIs(t, err, apperrors.ErrMissingCredentials)
		})
	}
}

func TestLogin_ValidatesBeforeCalling(t *testing.T) {
	doer := &stubDoer{}
	repo := NewAuthRepository(doer, prefs.NewMemoryStore())

	_, err := repo.Login(context.Background(), "myspace", "cred")
	assert.Error(t, err)
	_, err = repo.Login(context.Background(), "google", "")
	assert.Error(t, err)
	_, err = repo.DevLogin(context.Background(), "x")
	assert.Error(t, err)

	assert.Empty(t, doer.requests)
}

func TestVerifyToken(t *testing.T) {
	ctx := context.Background()
	seeded := func(t *testing.T) prefs.Store {
		store := prefs.NewMemoryStore()
		require.NoError(t, store.SaveSession(ctx, prefs.Session{Token: "tok", ProviderID: "pid", User: mia}))
		return store
	}

	t.Run("valid refreshes user", func(t *testing.T) {
		store := seeded(t)
		renamed := mia
		renamed.DisplayName = "Mia M."
		doer := &stubDoer{resp: models.VerifyResponse{Valid: true, User: renamed, ExpiresAt: time.Now().Add(time.Hour)}}

		ok, err := NewAuthRepository(doer, store).VerifyToken(ctx)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.True(t, doer.requests[0].Auth)

		session, err := store.Session(ctx)
		require.NoError(t, err)
		assert.Equal(t, "Mia M.", session.User.DisplayName)
	})

	t.Run("401 clears session", func(t *testing.T) {
		store := seeded(t)
		doer := &stubDoer{err: apperrors.NewHTTPError(http.StatusUnauthorized, "")}

		ok, err := NewAuthRepository(doer, store).VerifyToken(ctx)
		require.NoError(t, err)
		assert.False(t, ok)

		_, err = store.Credentials(ctx)
		assert.ErrorIs(t, err, apperrors.ErrMissingCredentials)
	})

	t.Run("invalid clears session", func(t *testing.T) {
		store := seeded(t)
		doer := &stubDoer{resp: models.VerifyResponse{Valid: false}}

		ok, err := NewAuthRepository(doer, store).VerifyToken(ctx)
		require.NoError(t, err)
		assert.False(t, ok)

		_, err = store.Credentials(ctx)
		assert.ErrorIs(t, err, apperrors.ErrMissingCredentials)
	})

	t.Run("server error keeps session", func(t *testing.T) {
		store := seeded(t)
		doer := &stubDoer{err: apperrors.NewHTTPError(http.StatusInternalServerError, "")}

		ok, err := NewAuthRepository(doer, store).VerifyToken(ctx)
		assert.Error(t, err)
		assert.False(t, ok)

		_, err = store.Credentials(ctx)
		assert.NoError(t, err)
	})

	t.Run("missing credentials", func(t *testing.T) {
		doer := &stubDoer{err: apperrors.NewMissingCredentialsError()}

		ok, err := NewAuthRepository(doer, prefs.NewMemoryStore()).VerifyToken(ctx)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}
