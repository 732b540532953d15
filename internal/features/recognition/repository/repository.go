package repository

import (
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"

	apperrors "piano-quest/internal/common/errors"
	"piano-quest/internal/common/logger"
	"piano-quest/internal/features/recognition/models"
	"piano-quest/internal/platform/api"
)

// RecognitionRepository uploads recordings to the music recognition endpoint.
type RecognitionRepository struct {
	client api.Doer
}

func NewRecognitionRepository(client api.Doer) *RecognitionRepository {
	return &RecognitionRepository{client: client}
}

// Recognize uploads audio and returns the backend's best guess.
func (r *RecognitionRepository) Recognize(ctx context.Context, filename string, audio io.Reader) (*models.Match, error) {
	if audio == nil {
		return nil, apperrors.NewValidationError("audio", "cannot be empty")
	}
	if filename == "" {
		filename = "recording"
	}

	var match models.Match
	err := r.client.Do(ctx, api.Request{
		Method: http.MethodPost,
		Path:   "/recognition",
		File:   &api.File{FieldName: models.AudioField, FileName: filename, Content: audio},
		Auth:   true,
	}, &match)
	if err != nil {
		logger.Error().Err(err).Str("file", filename).Msg("Music recognition failed")
		return nil, err
	}

	logger.Info().
		Str("title", match.Title).
		Str("artist", match.Artist).
		Float64("confidence", match.Confidence).
		Msg("Music recognized")
	return &match, nil
}

// RecognizeFile uploads the recording stored at path.
func (r *RecognitionRepository) RecognizeFile(ctx context.Context, path string) (*models.Match, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeValidation, "Could not open recording")
	}
	defer f.Close()
	return r.Recognize(ctx, filepath.Base(path), f)
}
