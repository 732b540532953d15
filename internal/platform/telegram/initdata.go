// Package telegram checks Telegram Mini App init data used as a login credential.
package telegram

import (
	"errors"
	"fmt"
	"time"

	initdata "github.com/telegram-mini-apps/init-data-golang"
)

var (
	ErrNotConfigured = errors.New("telegram login is not configured")
	ErrNoUser        = errors.New("init data carries no user")
)

// Identity is the Telegram account behind a validated init data string.
type Identity struct {
	ID        int64
	Username  string
	FirstName string
	LastName  string
}

// DisplayName joins first and last name, falling back to the username.
func (i Identity) DisplayName() string {
	name := i.FirstName
	if i.LastName != "" {
		if name != "" {
			name += " "
		}
		name += i.LastName
	}
	if name == "" {
		return i.Username
	}
	return name
}

// Verifier validates init data signed with the bot token.
type Verifier struct {
	botToken string
	// zero disables the auth_date expiry check
	ttl time.Duration
}

func NewVerifier(botToken string, ttl time.Duration) *Verifier {
	return &Verifier{botToken: botToken, ttl: ttl}
}

// Verify validates the signature of raw and returns the user it describes.
func (v *Verifier) Verify(raw string) (*Identity, error) {
	if v == nil || v.botToken == "" {
		return nil, ErrNotConfigured
	}
	if err := initdata.Validate(raw, v.botToken, v.ttl); err != nil {
		return nil, fmt.Errorf("invalid init data: %w", err)
	}
	data, err := initdata.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse init data: %w", err)
	}
	if data.User.ID == 0 {
		return nil, ErrNoUser
	}
	return &Identity{
		ID:        data.User.ID,
		Username:  data.User.Username,
		FirstName: data.User.FirstName,
		LastName:  data.User.LastName,
	}, nil
}
