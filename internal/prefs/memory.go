package prefs

import (
	"context"
	"sync"

	apperrors "piano-quest/internal/common/errors"
	"piano-quest/internal/features/auth/models"
)

// MemoryStore keeps preferences for the lifetime of the process.
type MemoryStore struct {
	mu  sync.RWMutex
	doc document
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Credentials(ctx context.Context) (Credentials, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc.credentials()
}

func (s *MemoryStore) Session(ctx context.Context) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc.session()
}

func (s *MemoryStore) SaveSession(ctx context.Context, session Session) error {
	if err := validateSession(session); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u := session.User
	s.doc.AuthToken = session.Token
	s.doc.ProviderID = session.ProviderID
	s.doc.User = &u
	s.doc.AvatarThumbnail = ""
	return nil
}

func (s *MemoryStore) UpdateUser(ctx context.Context, u models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.doc.credentials(); err != nil {
		return err
	}
	s.doc.User = &u
	return nil
}

func (s *MemoryStore) ClearSession(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc.clear()
	return nil
}

func (s *MemoryStore) AvatarThumbnail(ctx context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc.AvatarThumbnail, nil
}

func (s *MemoryStore) SetAvatarThumbnail(ctx context.Context, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.doc.credentials(); err != nil {
		return apperrors.NewMissingCredentialsError()
	}
	s.doc.AvatarThumbnail = url
	return nil
}

func (s *MemoryStore) Close() error { return nil }
