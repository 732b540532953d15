package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "piano-quest/internal/common/errors"
	"piano-quest/internal/features/auth/models"
	"piano-quest/internal/platform/telegram"
)

const botToken = "123456:test-bot-token"

func newService() *AuthService {
	return NewAuthService("test-secret", time.Hour, telegram.NewVerifier(botToken, time.Hour))
}

func TestDevLogin_ReusesAccount(t *testing.T) {
	s := newService()
	ctx := context.Background()

	first, err := s.DevLogin(ctx, models.DevLoginRequest{Username: "mozart"})
	require.NoError(t, err)
	second, err := s.DevLogin(ctx, models.DevLoginRequest{Username: "Mozart"})
	require.NoError(t, err)

	assert.Equal(t, first.User.ID, second.User.ID)
	assert.Equal(t, first.ProviderID, second.ProviderID)
	assert.NotEmpty(t, first.Token)
	assert.Equal(t, "dev", first.User.Provider)
}

func TestDevLogin_InvalidUsername(t *testing.T) {
	_, err := newService().DevLogin(context.Background(), models.DevLoginRequest{Username: "a"})

	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.True(t, appErr.IsValidation())
}

func TestVerify(t *testing.T) {
	s := newService()
	ctx := context.Background()
	resp, err := s.DevLogin(ctx, models.DevLoginRequest{Username: "mozart"})
	require.NoError(t, err)

	user, expiresAt, err := s.Verify(ctx, resp.Token, resp.ProviderID)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, user.ID)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, time.Minute)

	_, _, err = s.Verify(ctx, resp.Token, "other-provider-id")
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	_, _, err = s.Verify(ctx, resp.Token+"x", resp.ProviderID)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestVerify_Expired(t *testing.T) {
	s := newService()
	ctx := context.Background()
	resp, err := s.DevLogin(ctx, models.DevLoginRequest{Username: "mozart"})
	require.NoError(t, err)

	s.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, _, err = s.Verify(ctx, resp.Token, resp.ProviderID)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestVerify_OtherSecret(t *testing.T) {
	resp, err := newService().DevLogin(context.Background(), models.DevLoginRequest{Username: "mozart"})
	require.NoError(t, err)

	other := NewAuthService("another-secret", time.Hour, nil)
	_, _, err = other.Verify(context.Background(), resp.Token, resp.ProviderID)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestSocialLogin_Telegram(t *testing.T) {
	s := newService()
	raw := telegram.SignInitData(botToken, `{"id":7,"first_name":"Clara","username":"clara"}`, time.Now())

	resp, err := s.SocialLogin(context.Background(), models.SocialLoginRequest{Provider: "telegram", Credential: raw})
	require.NoError(t, err)
	assert.Equal(t, "clara", resp.User.Username)
	assert.Equal(t, "Clara", resp.User.DisplayName)
	assert.Equal(t, "telegram", resp.User.Provider)
}

func TestSocialLogin_TelegramBadSignature(t *testing.T) {
	raw := telegram.SignInitData("999:wrong", `{"id":7,"first_name":"Clara"}`, time.Now())

	_, err := newService().SocialLogin(context.Background(), models.SocialLoginRequest{Provider: "telegram", Credential: raw})
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestSocialLogin_Google(t *testing.T) {
	s := newService()
	ctx := context.Background()

	a, err := s.SocialLogin(ctx, models.SocialLoginRequest{Provider: "google", Credential: "id-token-1"})
	require.NoError(t, err)
	b, err := s.SocialLogin(ctx, models.SocialLoginRequest{Provider: "google", Credential: "id-token-1"})
	require.NoError(t, err)
	c, err := s.SocialLogin(ctx, models.SocialLoginRequest{Provider: "apple", Credential: "id-token-1"})
	require.NoError(t, err)

	assert.Equal(t, a.User.ID, b.User.ID)
	assert.NotEqual(t, a.User.ID, c.User.ID)
}

func TestSocialLogin_UnknownProvider(t *testing.T) {
	_, err := newService().SocialLogin(context.Background(), models.SocialLoginRequest{Provider: "myspace", Credential: "x"})

	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.True(t, appErr.IsValidation())
}
