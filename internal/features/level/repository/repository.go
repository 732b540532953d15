package repository

import (
	"context"
	"net/http"

	apperrors "piano-quest/internal/common/errors"
	"piano-quest/internal/common/logger"
	"piano-quest/internal/common/validation"
	"piano-quest/internal/features/level/models"
	"piano-quest/internal/platform/api"
)

// LevelRepository wraps the level endpoints of the backend.
type LevelRepository struct {
	client api.Doer
}

func NewLevelRepository(client api.Doer) *LevelRepository {
	return &LevelRepository{client: client}
}

// List returns every level with the user's unlock flag.
func (r *LevelRepository) List(ctx context.Context) ([]models.Level, error) {
	return r.list(ctx, "/levels")
}

// Unlocked returns only the levels the user can play.
func (r *LevelRepository) Unlocked(ctx context.Context) ([]models.Level, error) {
	return r.list(ctx, "/levels/unlocked")
}

func (r *LevelRepository) Get(ctx context.Context, id string) (*models.Level, error) {
	if err := validation.ValidateID(id, "level id"); err != nil {
		return nil, apperrors.NewValidationError("id", err.Error())
	}
	var level models.Level
	path := api.PathEscape("/levels", id)
	if err := r.client.Do(ctx, api.Request{Method: http.MethodGet, Path: path, Auth: true}, &level); err != nil {
		logger.Error().Err(err).Str("level_id", id).Msg("Failed to get level")
		return nil, err
	}
	return &level, nil
}

// Progress returns the per-level progress of the user.
func (r *LevelRepository) Progress(ctx context.Context) ([]models.LevelProgress, error) {
	var progress []models.LevelProgress
	if err := r.client.Do(ctx, api.Request{Method: http.MethodGet, Path: "/levels/progress", Auth: true}, &progress); err != nil {
		logger.Error().Err(err).Msg("Failed to get level progress")
		return nil, err
	}
	return progress, nil
}

func (r *LevelRepository) list(ctx context.Context, path string) ([]models.Level, error) {
	var levels []models.Level
	if err := r.client.Do(ctx, api.Request{Method: http.MethodGet, Path: path, Auth: true}, &levels); err != nil {
		logger.Error().Err(err).Str("path", path).Msg("Failed to list levels")
		return nil, err
	}
	logger.Debug().Int("count", len(levels)).Str("path", path).Msg("Levels loaded")
	return levels, nil
}
