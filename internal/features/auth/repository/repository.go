package repository

import (
	"context"
	"errors"
	"net/http"

	apperrors "piano-quest/internal/common/errors"
	"piano-quest/internal/common/logger"
	"piano-quest/internal/common/validation"
	"piano-quest/internal/features/auth/models"
	"piano-quest/internal/platform/api"
	"piano-quest/internal/prefs"
)

// AuthRepository establishes and checks the backend session.
type AuthRepository struct {
	client api.Doer
	store  prefs.Store
}

func NewAuthRepository(client api.Doer, store prefs.Store) *AuthRepository {
	return &AuthRepository{client: client, store: store}
}

// Login exchanges a social provider credential for a session. The session is
// persisted only when the backend call succeeds.
func (r *AuthRepository) Login(ctx context.Context, provider, credential string) (*models.User, error) {
	if err := validation.ValidateProvider(provider); err != nil {
		return nil, apperrors.NewValidationError("provider", err.Error())
	}
	if err := validation.ValidateCredential(credential); err != nil {
		return nil, apperrors.NewValidationError("credential", err.Error())
	}
	return r.login(ctx, "/auth/social", models.SocialLoginRequest{Provider: provider, Credential: credential})
}

// DevLogin signs in with a developer account.
func (r *AuthRepository) DevLogin(ctx context.Context, username string) (*models.User, error) {
	if err := validation.ValidateUsername(username); err != nil {
		return nil, apperrors.NewValidationError("username", err.Error())
	}
	return r.login(ctx, "/auth/dev", models.DevLoginRequest{Username: username})
}

func (r *AuthRepository) login(ctx context.Context, path string, body any) (*models.User, error) {
	var resp models.AuthResponse
	err := r.client.Do(ctx, api.Request{Method: http.MethodPost, Path: path, Body: body}, &resp)
	if err != nil {
		logger.Error().Err(err).Str("path", path).Msg("Login failed")
		return nil, err
	}
	if resp.Token == "" || resp.ProviderID == "" {
		logger.Error().Str("path", path).Msg("Login response without credentials")
		return nil, apperrors.New(apperrors.ErrCodeEmptyBody, "Server did not return a session")
	}

	if err := r.store.SaveSession(ctx, prefs.Session{
		Token:      resp.Token,
		ProviderID: resp.ProviderID,
		User:       resp.User,
	}); err != nil {
		logger.Error().Err(err).Msg("Failed to persist session")
		return nil, err
	}

	logger.Info().Str("user_id", resp.User.ID).Str("provider", resp.User.Provider).Msg("Signed in")
	return &resp.User, nil
}

// VerifyToken checks the stored token with the backend, as done on app start.
// It returns false without error when nothing is stored or the backend rejects the
// token; a rejected session is cleared.
func (r *AuthRepository) VerifyToken(ctx context.Context) (bool, error) {
	var resp models.VerifyResponse
	err := r.client.Do(ctx, api.Request{Method: http.MethodGet, Path: "/auth/verify", Auth: true}, &resp)
	if err != nil {
		if errors.Is(err, apperrors.ErrMissingCredentials) {
			logger.Info().Msg("No stored session")
			return false, nil
		}
		if appErr, ok := apperrors.AsAppError(err); ok && appErr.Status() == http.StatusUnauthorized {
			logger.Warn().Str("reason", appErr.Message).Msg("Stored session rejected, clearing")
			if clearErr := r.store.ClearSession(ctx); clearErr != nil {
				return false, clearErr
			}
			return false, nil
		}
		logger.Error().Err(err).Msg("Token verification failed")
		return false, err
	}
	if !resp.Valid {
		if err := r.store.ClearSession(ctx); err != nil {
			return false, err
		}
		return false, nil
	}

	if err := r.store.UpdateUser(ctx, resp.User); err != nil {
		logger.Warn().Err(err).Msg("Failed to refresh cached user")
	}
	logger.Info().Str("user_id", resp.User.ID).Msg("Stored session is valid")
	return true, nil
}

// CurrentUser returns the cached user without a network call.
func (r *AuthRepository) CurrentUser(ctx context.Context) (*models.User, error) {
	session, err := r.store.Session(ctx)
	if err != nil {
		return nil, err
	}
	return &session.User, nil
}

// FetchMe loads the signed-in user from the backend and refreshes the cache.
func (r *AuthRepository) FetchMe(ctx context.Context) (*models.User, error) {
	var user models.User
	if err := r.client.Do(ctx, api.Request{Method: http.MethodGet, Path: "/users/me", Auth: true}, &user); err != nil {
		logger.Error().Err(err).Msg("Failed to fetch current user")
		return nil, err
	}
	if err := r.store.UpdateUser(ctx, user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Logout forgets the local session.
func (r *AuthRepository) Logout(ctx context.Context) error {
	if err := r.store.ClearSession(ctx); err != nil {
		logger.Error().Err(err).Msg("Failed to clear session")
		return err
	}
	logger.Info().Msg("Signed out")
	return nil
}
