package models

import "time"

// User is the backend account of a player.
type User struct {
	ID          string    `json:"id"`
	Username    string    `json:"username"`
	DisplayName string    `json:"display_name"`
	Provider    string    `json:"provider"`
	AvatarURL   string    `json:"avatar_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// SocialLoginRequest exchanges a provider credential for a session.
type SocialLoginRequest struct {
	Provider   string `json:"provider"`
	Credential string `json:"credential"`
}

// DevLoginRequest creates or reuses a developer account by name.
type DevLoginRequest struct {
	Username string `json:"username"`
}

// AuthResponse is returned by both login endpoints.
type AuthResponse struct {
	Token      string `json:"token"`
	ProviderID string `json:"provider_id"`
	User       User   `json:"user"`
}

// VerifyResponse is returned by the token verification endpoint.
type VerifyResponse struct {
	Valid     bool      `json:"valid"`
	User      User      `json:"user"`
	ExpiresAt time.Time `json:"expires_at"`
}
