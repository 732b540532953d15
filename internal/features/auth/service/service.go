package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	apperrors "piano-quest/internal/common/errors"
	"piano-quest/internal/common/logger"
	"piano-quest/internal/common/validation"
	"piano-quest/internal/features/auth/models"
	"piano-quest/internal/platform/telegram"
)

const issuer = "piano-quest-dev"

// Claims is the payload of a session token. ProviderID must match the
// X-Provider-Id header sent with the token.
type Claims struct {
	ProviderID string `json:"pid"`
	jwt.RegisteredClaims
}

type identity struct {
	userID     string
	providerID string
}

// AuthService issues and checks session tokens for the dev backend. Accounts live in memory.
type AuthService struct {
	mu         sync.RWMutex
	users      map[string]*models.User
	identities map[string]identity // provider:subject

	secret   []byte
	ttl      time.Duration
	telegram *telegram.Verifier
	now      func() time.Time
}

func NewAuthService(secret string, ttl time.Duration, tg *telegram.Verifier) *AuthService {
	return &AuthService{
		users:      make(map[string]*models.User),
		identities: make(map[string]identity),
		secret:     []byte(secret),
		ttl:        ttl,
		telegram:   tg,
		now:        time.Now,
	}
}

// SocialLogin signs in with a provider credential, creating the account on first use.
// Google and Apple credentials are treated as opaque subject tokens; Telegram
// credentials must be signed init data.
func (s *AuthService) SocialLogin(ctx context.Context, req models.SocialLoginRequest) (*models.AuthResponse, error) {
	if err := validation.ValidateProvider(req.Provider); err != nil {
		return nil, apperrors.NewValidationError("provider", err.Error())
	}
	if err := validation.ValidateCredential(req.Credential); err != nil {
		return nil, apperrors.NewValidationError("credential", err.Error())
	}

	switch req.Provider {
	case validation.ProviderTelegram:
		id, err := s.telegram.Verify(req.Credential)
		if err != nil {
			if errors.Is(err, telegram.ErrNotConfigured) {
				return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "Telegram login is not configured")
			}
			return nil, apperrors.NewUnauthorizedError(err.Error())
		}
		username := id.Username
		if username == "" {
			username = "tg_" + strconv.FormatInt(id.ID, 10)
		}
		return s.signIn(req.Provider, strconv.FormatInt(id.ID, 10), username, id.DisplayName())
	case validation.ProviderDev:
		return s.DevLogin(ctx, models.DevLoginRequest{Username: req.Credential})
	default:
		sum := sha256.Sum256([]byte(req.Credential))
		subject := hex.EncodeToString(sum[:])
		username := req.Provider + "_" + subject[:8]
		return s.signIn(req.Provider, subject, username, username)
	}
}

// DevLogin signs in by username alone.
func (s *AuthService) DevLogin(_ context.Context, req models.DevLoginRequest) (*models.AuthResponse, error) {
	username := strings.TrimSpace(req.Username)
	if err := validation.ValidateUsername(username); err != nil {
		return nil, apperrors.NewValidationError("username", err.Error())
	}
	return s.signIn(validation.ProviderDev, strings.ToLower(username), username, username)
}

func (s *AuthService) signIn(provider, subject, username, displayName string) (*models.AuthResponse, error) {
	s.mu.Lock()
	key := provider + ":" + subject
	ident, ok := s.identities[key]
	if !ok {
		user := &models.User{
			ID:          uuid.NewString(),
			Username:    username,
			DisplayName: displayName,
			Provider:    provider,
			CreatedAt:   s.now().UTC(),
		}
		s.users[user.ID] = user
		ident = identity{userID: user.ID, providerID: uuid.NewString()}
		s.identities[key] = ident
		logger.Info().Str("user_id", user.ID).Str("provider", provider).Msg("Account created")
	}
	user := *s.users[ident.userID]
	s.mu.Unlock()

	token, _, err := s.issue(user.ID, ident.providerID)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "Failed to issue session token")
	}
	return &models.AuthResponse{Token: token, ProviderID: ident.providerID, User: user}, nil
}

func (s *AuthService) issue(userID, providerID string) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(s.ttl)
	claims := Claims{
		ProviderID: providerID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   userID,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	return signed, expiresAt, err
}

// Verify checks a token and the provider id sent with it.
func (s *AuthService) Verify(_ context.Context, token, providerID string) (*models.User, time.Time, error) {
	if token == "" || providerID == "" {
		return nil, time.Time{}, apperrors.NewUnauthorizedError("missing token or provider id")
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, time.Time{}, apperrors.NewUnauthorizedError("invalid or expired token")
	}
	if claims.ProviderID != providerID {
		return nil, time.Time{}, apperrors.NewUnauthorizedError("provider id does not match token")
	}

	user, err := s.User(context.Background(), claims.Subject)
	if err != nil {
		return nil, time.Time{}, apperrors.NewUnauthorizedError("unknown account")
	}
	var expiresAt time.Time
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}
	return user, expiresAt, nil
}

func (s *AuthService) User(_ context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("user", id)
	}
	u := *user
	return &u, nil
}
