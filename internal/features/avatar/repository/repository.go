package repository

import (
	"context"
	"net/http"

	apperrors "piano-quest/internal/common/errors"
	"piano-quest/internal/common/logger"
	"piano-quest/internal/common/validation"
	"piano-quest/internal/features/avatar/models"
	"piano-quest/internal/platform/api"
	"piano-quest/internal/prefs"
)

// AvatarRepository wraps the avatar endpoints of the backend.
type AvatarRepository struct {
	client api.Doer
	store  prefs.Store
}

func NewAvatarRepository(client api.Doer, store prefs.Store) *AvatarRepository {
	return &AvatarRepository{client: client, store: store}
}

func avatarPath(id string, rest ...string) string {
	return api.PathEscape("/avatars", append([]string{id}, rest...)...)
}

func (r *AvatarRepository) Create(ctx context.Context, req models.CreateAvatarRequest) (*models.Avatar, error) {
	if err := validation.ValidateAvatarName(req.Name); err != nil {
		return nil, apperrors.NewValidationError("name", err.Error())
	}
	var avatar models.Avatar
	if err := r.client.Do(ctx, api.Request{Method: http.MethodPost, Path: "/avatars", Body: req, Auth: true}, &avatar); err != nil {
		logger.Error().Err(err).Msg("Failed to create avatar")
		return nil, err
	}
	logger.Info().Str("avatar_id", avatar.ID).Msg("Avatar created")
	return &avatar, nil
}

func (r *AvatarRepository) List(ctx context.Context) ([]models.Avatar, error) {
	var avatars []models.Avatar
	if err := r.client.Do(ctx, api.Request{Method: http.MethodGet, Path: "/avatars", Auth: true}, &avatars); err != nil {
		logger.Error().Err(err).Msg("Failed to list avatars")
		return nil, err
	}
	return avatars, nil
}

func (r *AvatarRepository) Get(ctx context.Context, id string) (*models.Avatar, error) {
	if err := validation.ValidateID(id, "avatar id"); err != nil {
		return nil, apperrors.NewValidationError("id", err.Error())
	}
	return r.fetch(ctx, http.MethodGet, avatarPath(id), nil, "get avatar")
}

// Active returns the avatar currently in use.
func (r *AvatarRepository) Active(ctx context.Context) (*models.Avatar, error) {
	return r.fetch(ctx, http.MethodGet, "/avatars/active", nil, "get active avatar")
}

func (r *AvatarRepository) Update(ctx context.Context, id string, req models.UpdateAvatarRequest) (*models.Avatar, error) {
	if err := validation.ValidateID(id, "avatar id"); err != nil {
		return nil, apperrors.NewValidationError("id", err.Error())
	}
	if req.Name != nil {
		if err := validation.ValidateAvatarName(*req.Name); err != nil {
			return nil, apperrors.NewValidationError("name", err.Error())
		}
	}
	return r.fetch(ctx, http.MethodPut, avatarPath(id), req, "update avatar")
}

func (r *AvatarRepository) Delete(ctx context.Context, id string) error {
	if err := validation.ValidateID(id, "avatar id"); err != nil {
		return apperrors.NewValidationError("id", err.Error())
	}
	if err := r.client.Do(ctx, api.Request{Method: http.MethodDelete, Path: avatarPath(id), Auth: true}, nil); err != nil {
		logger.Error().Err(err).Str("avatar_id", id).Msg("Failed to delete avatar")
		return err
	}
	logger.Info().Str("avatar_id", id).Msg("Avatar deleted")
	return nil
}

// SetActive makes id the active avatar and caches its thumbnail locally.
func (r *AvatarRepository) SetActive(ctx context.Context, id string) (*models.Avatar, error) {
	if err := validation.ValidateID(id, "avatar id"); err != nil {
		return nil, apperrors.NewValidationError("id", err.Error())
	}
	avatar, err := r.fetch(ctx, http.MethodPost, avatarPath(id, "activate"), nil, "activate avatar")
	if err != nil {
		return nil, err
	}
	if err := r.store.SetAvatarThumbnail(ctx, avatar.ThumbnailURL); err != nil {
		logger.Error().Err(err).Msg("Failed to cache avatar thumbnail")
		return nil, err
	}
	return avatar, nil
}

func (r *AvatarRepository) UnlockOutfit(ctx context.Context, id, outfitID string) (*models.Avatar, error) {
	if err := validateOutfitTarget(id, outfitID); err != nil {
		return nil, err
	}
	return r.fetch(ctx, http.MethodPost, avatarPath(id, "outfits", outfitID, "unlock"), nil, "unlock outfit")
}

func (r *AvatarRepository) EquipOutfit(ctx context.Context, id, outfitID string) (*models.Avatar, error) {
	if err := validateOutfitTarget(id, outfitID); err != nil {
		return nil, err
	}
	return r.fetch(ctx, http.MethodPost, avatarPath(id, "outfits", outfitID, "equip"), nil, "equip outfit")
}

// AdjustEnergy adds delta (possibly negative) to the avatar's energy.
func (r *AvatarRepository) AdjustEnergy(ctx context.Context, id string, delta int) (*models.Avatar, error) {
	return r.adjust(ctx, id, "energy", delta)
}

// AdjustExperience adds delta (possibly negative) to the avatar's experience.
func (r *AvatarRepository) AdjustExperience(ctx context.Context, id string, delta int) (*models.Avatar, error) {
	return r.adjust(ctx, id, "experience", delta)
}

// Outfits returns the outfit catalog.
func (r *AvatarRepository) Outfits(ctx context.Context) ([]models.Outfit, error) {
	var outfits []models.Outfit
	if err := r.client.Do(ctx, api.Request{Method: http.MethodGet, Path: "/outfits", Auth: true}, &outfits); err != nil {
		logger.Error().Err(err).Msg("Failed to list outfits")
		return nil, err
	}
	return outfits, nil
}

func (r *AvatarRepository) adjust(ctx context.Context, id, stat string, delta int) (*models.Avatar, error) {
	if err := validation.ValidateID(id, "avatar id"); err != nil {
		return nil, apperrors.NewValidationError("id", err.Error())
	}
	if err := validation.ValidateStatAmount(delta); err != nil {
		return nil, apperrors.NewValidationError("amount", err.Error())
	}
	return r.fetch(ctx, http.MethodPost, avatarPath(id, stat), models.StatAdjustment{Amount: delta}, "adjust "+stat)
}

func (r *AvatarRepository) fetch(ctx context.Context, method, path string, body any, op string) (*models.Avatar, error) {
	var avatar models.Avatar
	if err := r.client.Do(ctx, api.Request{Method: method, Path: path, Body: body, Auth: true}, &avatar); err != nil {
		logger.Error().Err(err).Str("path", path).Msgf("Failed to %s", op)
		return nil, err
	}
	logger.Debug().Str("avatar_id", avatar.ID).Msgf("%s succeeded", op)
	return &avatar, nil
}

func validateOutfitTarget(id, outfitID string) error {
	if err := validation.ValidateID(id, "avatar id"); err != nil {
		return apperrors.NewValidationError("id", err.Error())
	}
	if err := validation.ValidateID(outfitID, "outfit id"); err != nil {
		return apperrors.NewValidationError("outfit_id", err.Error())
	}
	return nil
}
