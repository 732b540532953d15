package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	apperrors "piano-quest/internal/common/errors"
	"piano-quest/internal/common/logger"
	"piano-quest/internal/common/validation"
	"piano-quest/internal/features/avatar/models"
)

const (
	StartingEnergy = validation.MaxEnergy
	thumbnailURL   = "https://cdn.piano-quest.dev/avatars/%s/%s.png"
)

// AvatarService keeps the avatars of every user in memory.
type AvatarService struct {
	mu      sync.Mutex
	avatars map[string][]*models.Avatar // user id -> avatars, oldest first
	catalog map[string]models.Outfit
	order   []string
	now     func() time.Time
}

func NewAvatarService(outfits []models.Outfit) *AvatarService {
	s := &AvatarService{
		avatars: make(map[string][]*models.Avatar),
		catalog: make(map[string]models.Outfit, len(outfits)),
		now:     time.Now,
	}
	for _, o := range outfits {
		s.catalog[o.ID] = o
		s.order = append(s.order, o.ID)
	}
	return s
}

// Outfits returns the catalog in seed order.
func (s *AvatarService) Outfits(_ context.Context) []models.Outfit {
	out := make([]models.Outfit, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.catalog[id])
	}
	return out
}

// Create adds an avatar. The first avatar of a user becomes active. Free outfits
// start unlocked.
func (s *AvatarService) Create(_ context.Context, userID string, req models.CreateAvatarRequest) (*models.Avatar, error) {
	if err := validation.ValidateAvatarName(req.Name); err != nil {
		return nil, apperrors.NewValidationError("name", err.Error())
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	a := &models.Avatar{
		ID:            uuid.NewString(),
		UserID:        userID,
		Name:          req.Name,
		Active:        len(s.avatars[userID]) == 0,
		Energy:        StartingEnergy,
		Customization: req.Customization,
		Outfits:       models.OutfitSet{Unlocked: []string{}, Equipped: map[string]string{}},
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	for _, id := range s.order {
		if s.catalog[id].Cost == 0 {
			a.Outfits.Unlocked = append(a.Outfits.Unlocked, id)
		}
	}
	s.refreshThumbnail(a)
	s.avatars[userID] = append(s.avatars[userID], a)

	logger.Info().Str("user_id", userID).Str("avatar_id", a.ID).Msg("Avatar created")
	return clone(a), nil
}

func (s *AvatarService) List(_ context.Context, userID string) []models.Avatar {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Avatar, 0, len(s.avatars[userID]))
	for _, a := range s.avatars[userID] {
		out = append(out, *clone(a))
	}
	return out
}

func (s *AvatarService) Get(_ context.Context, userID, id string) (*models.Avatar, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, err := s.find(userID, id)
	if err != nil {
		return nil, err
	}
	return clone(a), nil
}

func (s *AvatarService) Active(_ context.Context, userID string) (*models.Avatar, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, a := range s.avatars[userID] {
		if a.Active {
			return clone(a), nil
		}
	}
	return nil, apperrors.New(apperrors.ErrCodeNotFound, "No active avatar")
}

func (s *AvatarService) Update(_ context.Context, userID, id string, req models.UpdateAvatarRequest) (*models.Avatar, error) {
	if req.Name != nil {
		if err := validation.ValidateAvatarName(*req.Name); err != nil {
			return nil, apperrors.NewValidationError("name", err.Error())
		}
	}
	return s.mutate(userID, id, func(a *models.Avatar) error {
		if req.Name != nil {
			a.Name = *req.Name
		}
		if req.Customization != nil {
			a.Customization = *req.Customization
			s.refreshThumbnail(a)
		}
		return nil
	})
}

// Delete removes an avatar. When it was active the oldest remaining avatar takes over.
func (s *AvatarService) Delete(_ context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.avatars[userID]
	for i, a := range list {
		if a.ID != id {
			continue
		}
		list = append(list[:i], list[i+1:]...)
		if a.Active && len(list) > 0 {
			list[0].Active = true
			list[0].UpdatedAt = s.now().UTC()
		}
		s.avatars[userID] = list
		logger.Info().Str("user_id", userID).Str("avatar_id", id).Msg("Avatar deleted")
		return nil
	}
	return apperrors.NewNotFoundError("avatar", id)
}

// SetActive makes id the only active avatar of the user.
func (s *AvatarService) SetActive(_ context.Context, userID, id string) (*models.Avatar, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	target, err := s.find(userID, id)
	if err != nil {
		return nil, err
	}
	for _, a := range s.avatars[userID] {
		a.Active = a == target
	}
	target.UpdatedAt = s.now().UTC()
	return clone(target), nil
}

// UnlockOutfit spends experience on an outfit. Unlocking an owned outfit is a no-op.
func (s *AvatarService) UnlockOutfit(_ context.Context, userID, id, outfitID string) (*models.Avatar, error) {
	outfit, ok := s.catalog[outfitID]
	if !ok {
		return nil, apperrors.NewNotFoundError("outfit", outfitID)
	}
	return s.mutate(userID, id, func(a *models.Avatar) error {
		if a.Outfits.IsUnlocked(outfitID) {
			return nil
		}
		if a.Experience < outfit.Cost {
			return apperrors.New(apperrors.ErrCodeNotEnoughXP,
				fmt.Sprintf("%s needs %d experience, you have %d", outfit.Name, outfit.Cost, a.Experience)).
				WithDetail("required", outfit.Cost)
		}
		a.Experience -= outfit.Cost
		a.Outfits.Unlocked = append(a.Outfits.Unlocked, outfitID)
		return nil
	})
}

// EquipOutfit wears an unlocked outfit, replacing whatever is in the same slot.
func (s *AvatarService) EquipOutfit(_ context.Context, userID, id, outfitID string) (*models.Avatar, error) {
	outfit, ok := s.catalog[outfitID]
	if !ok {
		return nil, apperrors.NewNotFoundError("outfit", outfitID)
	}
	return s.mutate(userID, id, func(a *models.Avatar) error {
		if !a.Outfits.IsUnlocked(outfitID) {
			return apperrors.New(apperrors.ErrCodeOutfitNotUnlocked, fmt.Sprintf("%s is not unlocked yet", outfit.Name))
		}
		a.Outfits.Equipped[outfit.Slot] = outfitID
		s.refreshThumbnail(a)
		return nil
	})
}

// AdjustEnergy adds delta to energy, clamped to [0, MaxEnergy].
func (s *AvatarService) AdjustEnergy(_ context.Context, userID, id string, delta int) (*models.Avatar, error) {
	if err := validation.ValidateStatAmount(delta); err != nil {
		return nil, apperrors.NewValidationError("amount", err.Error())
	}
	return s.mutate(userID, id, func(a *models.Avatar) error {
		a.Energy = clamp(a.Energy+delta, 0, validation.MaxEnergy)
		return nil
	})
}

// AdjustExperience adds delta to experience, never going below zero.
func (s *AvatarService) AdjustExperience(_ context.Context, userID, id string, delta int) (*models.Avatar, error) {
	if err := validation.ValidateStatAmount(delta); err != nil {
		return nil, apperrors.NewValidationError("amount", err.Error())
	}
	return s.mutate(userID, id, func(a *models.Avatar) error {
		a.Experience += delta
		if a.Experience < 0 {
			a.Experience = 0
		}
		return nil
	})
}

func (s *AvatarService) mutate(userID, id string, fn func(*models.Avatar) error) (*models.Avatar, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, err := s.find(userID, id)
	if err != nil {
		return nil, err
	}
	if err := fn(a); err != nil {
		return nil, err
	}
	a.UpdatedAt = s.now().UTC()
	return clone(a), nil
}

func (s *AvatarService) find(userID, id string) (*models.Avatar, error) {
	for _, a := range s.avatars[userID] {
		if a.ID == id {
			return a, nil
		}
	}
	return nil, apperrors.NewNotFoundError("avatar", id)
}

// refreshThumbnail derives a cache-busting thumbnail URL from the look of the avatar.
func (s *AvatarService) refreshThumbnail(a *models.Avatar) {
	slots := make([]string, 0, len(a.Outfits.Equipped))
	for slot := range a.Outfits.Equipped {
		slots = append(slots, slot)
	}
	sort.Strings(slots)
	look := a.Customization.SkinTone + a.Customization.HairStyle + a.Customization.HairColor + a.Customization.EyeColor
	for _, slot := range slots {
		look += a.Outfits.Equipped[slot]
	}
	a.ThumbnailURL = fmt.Sprintf(thumbnailURL, a.ID, uuid.NewSHA1(uuid.NameSpaceURL, []byte(look)).String()[:8])
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clone(a *models.Avatar) *models.Avatar {
	c := *a
	c.Outfits.Unlocked = append([]string(nil), a.Outfits.Unlocked...)
	if c.Outfits.Unlocked == nil {
		c.Outfits.Unlocked = []string{}
	}
	c.Outfits.Equipped = make(map[string]string, len(a.Outfits.Equipped))
	for k, v := range a.Outfits.Equipped {
		c.Outfits.Equipped[k] = v
	}
	return &c
}
