package repository

import (
	"context"
	"net/http"

	apperrors "piano-quest/internal/common/errors"
	"piano-quest/internal/common/logger"
	"piano-quest/internal/common/validation"
	"piano-quest/internal/features/sublevel/models"
	"piano-quest/internal/platform/api"
)

// SublevelRepository wraps the sublevel endpoints of the backend.
type SublevelRepository struct {
	client api.Doer
}

func NewSublevelRepository(client api.Doer) *SublevelRepository {
	return &SublevelRepository{client: client}
}

// ListByLevel returns the sublevels of a level with the user's progress fields.
func (r *SublevelRepository) ListByLevel(ctx context.Context, levelID string) ([]models.Sublevel, error) {
	if err := validation.ValidateID(levelID, "level id"); err != nil {
		return nil, apperrors.NewValidationError("level_id", err.Error())
	}
	var sublevels []models.Sublevel
	path := api.PathEscape("/levels", levelID, "sublevels")
	if err := r.client.Do(ctx, api.Request{Method: http.MethodGet, Path: path, Auth: true}, &sublevels); err != nil {
		logger.Error().Err(err).Str("level_id", levelID).Msg("Failed to list sublevels")
		return nil, err
	}
	return sublevels, nil
}

func (r *SublevelRepository) Get(ctx context.Context, id string) (*models.Sublevel, error) {
	if err := validation.ValidateID(id, "sublevel id"); err != nil {
		return nil, apperrors.NewValidationError("id", err.Error())
	}
	var sublevel models.Sublevel
	if err := r.client.Do(ctx, api.Request{Method: http.MethodGet, Path: api.PathEscape("/sublevels", id), Auth: true}, &sublevel); err != nil {
		logger.Error().Err(err).Str("sublevel_id", id).Msg("Failed to get sublevel")
		return nil, err
	}
	return &sublevel, nil
}

// Progress returns every stored sublevel result of the user.
func (r *SublevelRepository) Progress(ctx context.Context) ([]models.SublevelProgress, error) {
	var progress []models.SublevelProgress
	if err := r.client.Do(ctx, api.Request{Method: http.MethodGet, Path: "/sublevels/progress", Auth: true}, &progress); err != nil {
		logger.Error().Err(err).Msg("Failed to get sublevel progress")
		return nil, err
	}
	return progress, nil
}

// SubmitProgress sends the result of a run. The request is forwarded unchanged.
func (r *SublevelRepository) SubmitProgress(ctx context.Context, id string, req models.SubmitProgressRequest) (*models.SublevelProgress, error) {
	if err := validation.ValidateID(id, "sublevel id"); err != nil {
		return nil, apperrors.NewValidationError("id", err.Error())
	}
	if err := validation.ValidateStars(req.Stars); err != nil {
		return nil, apperrors.NewValidationError("stars", err.Error())
	}
	if err := validation.ValidateScore(req.Score); err != nil {
		return nil, apperrors.NewValidationError("score", err.Error())
	}

	var progress models.SublevelProgress
	path := api.PathEscape("/sublevels", id, "progress")
	if err := r.client.Do(ctx, api.Request{Method: http.MethodPost, Path: path, Body: req, Auth: true}, &progress); err != nil {
		logger.Error().Err(err).Str("sublevel_id", id).Msg("Failed to submit progress")
		return nil, err
	}

	logger.Info().
		Str("sublevel_id", id).
		Bool("completed", req.Completed).
		Int("stars", req.Stars).
		Int("score", req.Score).
		Msg("Progress submitted")
	return &progress, nil
}
