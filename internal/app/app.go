// Package app composes the client: preferences store, backend client and repositories.
package app

import (
	"context"
	"fmt"

	"piano-quest/internal/common/config"
	"piano-quest/internal/common/logger"
	authrepo "piano-quest/internal/features/auth/repository"
	avatarrepo "piano-quest/internal/features/avatar/repository"
	levelrepo "piano-quest/internal/features/level/repository"
	recognitionrepo "piano-quest/internal/features/recognition/repository"
	sublevelrepo "piano-quest/internal/features/sublevel/repository"
	"piano-quest/internal/platform/api"
	"piano-quest/internal/platform/redis"
	"piano-quest/internal/prefs"
)

type App struct {
	Store  prefs.Store
	Client *api.Client

	Auth        *authrepo.AuthRepository
	Avatars     *avatarrepo.AvatarRepository
	Levels      *levelrepo.LevelRepository
	Sublevels   *sublevelrepo.SublevelRepository
	Recognition *recognitionrepo.RecognitionRepository
}

// New opens the configured preferences store and builds the client on top of it.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	store, err := OpenStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a, err := NewWithStore(cfg, store)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	return a, nil
}

// NewWithStore builds the client over an already opened store.
func NewWithStore(cfg *config.Config, store prefs.Store) (*App, error) {
	client, err := api.New(api.Config{
		BaseURL:     cfg.API.BaseURL,
		Timeout:     cfg.API.Timeout,
		Credentials: store,
	})
	if err != nil {
		return nil, fmt.Errorf("create api client: %w", err)
	}

	return &App{
		Store:       store,
		Client:      client,
		Auth:        authrepo.NewAuthRepository(client, store),
		Avatars:     avatarrepo.NewAvatarRepository(client, store),
		Levels:      levelrepo.NewLevelRepository(client),
		Sublevels:   sublevelrepo.NewSublevelRepository(client),
		Recognition: recognitionrepo.NewRecognitionRepository(client),
	}, nil
}

// OpenStore selects the preferences backend named by PREFS_BACKEND.
func OpenStore(ctx context.Context, cfg *config.Config) (prefs.Store, error) {
	switch cfg.Prefs.Backend {
	case config.PrefsBackendMemory:
		return prefs.NewMemoryStore(), nil
	case config.PrefsBackendRedis:
		client, err := redis.OpenFromConfig(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("open redis preferences: %w", err)
		}
		return prefs.NewRedisStore(client, cfg.Prefs.RedisKey), nil
	case config.PrefsBackendFile, "":
		path, err := cfg.PrefsPath()
		if err != nil {
			return nil, err
		}
		return prefs.OpenFileStore(path)
	}
	return nil, fmt.Errorf("unknown preferences backend %q", cfg.Prefs.Backend)
}

// Start verifies the stored session, as done when the app launches. It reports
// whether the user is signed in.
func (a *App) Start(ctx context.Context) (bool, error) {
	ok, err := a.Auth.VerifyToken(ctx)
	if err != nil {
		logger.Warn().Err(err).Msg("Could not verify stored session")
		return false, err
	}
	return ok, nil
}

func (a *App) Close() error {
	return a.Store.Close()
}
