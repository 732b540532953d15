// Package prefs persists the local session of the player: auth token, provider id,
// cached user and the thumbnail of the active avatar.
package prefs

import (
	"context"
	"encoding/json"

	apperrors "piano-quest/internal/common/errors"
	"piano-quest/internal/features/auth/models"
)

// Keys under which values are stored.
const (
	KeyAuthToken       = "auth_token"
	KeyProviderID      = "provider_id"
	KeyUser            = "user"
	KeyAvatarThumbnail = "avatar_thumbnail"
)

// Credentials authenticate backend requests.
type Credentials struct {
	Token      string
	ProviderID string
}

// Valid reports whether both parts are present.
func (c Credentials) Valid() bool {
	return c.Token != "" && c.ProviderID != ""
}

// Session is what a successful login establishes.
type Session struct {
	Token      string
	ProviderID string
	User       models.User
}

// Store is the local key-value store of the client.
type Store interface {
	// Credentials returns ErrMissingCredentials when no session is stored.
	Credentials(ctx context.Context) (Credentials, error)
	// Session returns ErrMissingCredentials when no session is stored.
	Session(ctx context.Context) (*Session, error)
	// SaveSession stores token, provider id and user together and drops the
	// avatar thumbnail cached for the previous session.
	SaveSession(ctx context.Context, s Session) error
	// UpdateUser replaces the cached user of the current session.
	UpdateUser(ctx context.Context, u models.User) error
	ClearSession(ctx context.Context) error
	AvatarThumbnail(ctx context.Context) (string, error)
	SetAvatarThumbnail(ctx context.Context, url string) error
	Close() error
}

// document is the serialized form shared by the file and memory stores.
type document struct {
	AuthToken       string       `json:"auth_token,omitempty"`
	ProviderID      string       `json:"provider_id,omitempty"`
	User            *models.User `json:"user,omitempty"`
	AvatarThumbnail string       `json:"avatar_thumbnail,omitempty"`
}

func (d *document) credentials() (Credentials, error) {
	creds := Credentials{Token: d.AuthToken, ProviderID: d.ProviderID}
	if !creds.Valid() {
		return Credentials{}, apperrors.NewMissingCredentialsError()
	}
	return creds, nil
}

func (d *document) session() (*Session, error) {
	creds, err := d.credentials()
	if err != nil {
		return nil, err
	}
	s := &Session{Token: creds.Token, ProviderID: creds.ProviderID}
	if d.User != nil {
		s.User = *d.User
	}
	return s, nil
}

func (d *document) clear() {
	d.AuthToken = ""
	d.ProviderID = ""
	d.User = nil
	d.AvatarThumbnail = ""
}

func (d *document) clone() document {
	c := *d
	if d.User != nil {
		u := *d.User
		c.User = &u
	}
	return c
}

func validateSession(s Session) error {
	if s.Token == "" {
		return apperrors.NewValidationError(KeyAuthToken, "cannot be empty")
	}
	if s.ProviderID == "" {
		return apperrors.NewValidationError(KeyProviderID, "cannot be empty")
	}
	return nil
}

func marshalUser(u models.User) (string, error) {
	b, err := json.Marshal(u)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
