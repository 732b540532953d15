package models

import "time"

// Customization is the look of an avatar.
type Customization struct {
	SkinTone  string `json:"skin_tone"`
	HairStyle string `json:"hair_style"`
	HairColor string `json:"hair_color"`
	EyeColor  string `json:"eye_color"`
}

// OutfitSet lists the outfits an avatar owns and wears. Equipped maps slot to outfit id.
type OutfitSet struct {
	Unlocked []string          `json:"unlocked"`
	Equipped map[string]string `json:"equipped"`
}

// IsUnlocked reports whether outfitID is owned.
func (o OutfitSet) IsUnlocked(outfitID string) bool {
	for _, id := range o.Unlocked {
		if id == outfitID {
			return true
		}
	}
	return false
}

// Avatar is the in-game character of a user.
type Avatar struct {
	ID            string        `json:"id"`
	UserID        string        `json:"user_id"`
	Name          string        `json:"name"`
	Active        bool          `json:"active"`
	Energy        int           `json:"energy"`
	Experience    int           `json:"experience"`
	ThumbnailURL  string        `json:"thumbnail_url"`
	Customization Customization `json:"customization"`
	Outfits       OutfitSet     `json:"outfits"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// Outfit is an entry of the outfit catalog.
type Outfit struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
	Slot string `json:"slot" yaml:"slot"`
	// Experience spent to unlock
	Cost int `json:"cost" yaml:"cost"`
}

type CreateAvatarRequest struct {
	Name          string        `json:"name"`
	Customization Customization `json:"customization"`
}

// UpdateAvatarRequest changes name and/or customization. Nil fields are left as they are.
type UpdateAvatarRequest struct {
	Name          *string        `json:"name,omitempty"`
	Customization *Customization `json:"customization,omitempty"`
}

// StatAdjustment is a signed delta applied to energy or experience.
type StatAdjustment struct {
	Amount int `json:"amount"`
}
