package prefs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	apperrors "piano-quest/internal/common/errors"
	"piano-quest/internal/common/logger"
	"piano-quest/internal/features/auth/models"
)

// FileStore persists preferences as a JSON document on disk.
// Every mutation rewrites the whole document through a temp file and a rename,
// so a crash leaves either the old or the new document.
type FileStore struct {
	mu   sync.Mutex
	path string
	doc  document
}

// OpenFileStore loads path if it exists. A missing file is an empty store.
func OpenFileStore(path string) (*FileStore, error) {
	s := &FileStore{path: path}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *FileStore) load() error {
	b, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return apperrors.NewStorageError("read preferences", err)
	}
	if len(b) == 0 {
		return nil
	}
	if err := json.Unmarshal(b, &s.doc); err != nil {
		return apperrors.NewStorageError("parse preferences", err)
	}
	return nil
}

// save writes next to disk and only then makes it the in-memory state.
func (s *FileStore) save(next document) error {
	b, err := json.MarshalIndent(next, "", "  ")
	if err != nil {
		return apperrors.NewStorageError("encode preferences", err)
	}
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return apperrors.NewStorageError("create preferences dir", err)
	}
	tmp, err := os.CreateTemp(dir, ".prefs-*.json")
	if err != nil {
		return apperrors.NewStorageError("create temp file", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return apperrors.NewStorageError("write preferences", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return apperrors.NewStorageError("sync preferences", err)
	}
	if err := tmp.Close(); err != nil {
		return apperrors.NewStorageError("close preferences", err)
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return apperrors.NewStorageError("chmod preferences", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return apperrors.NewStorageError("replace preferences", err)
	}
	s.doc = next
	logger.Debug().Str("path", s.path).Msg("Preferences saved")
	return nil
}

func (s *FileStore) Credentials(ctx context.Context) (Credentials, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.credentials()
}

func (s *FileStore) Session(ctx context.Context) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.session()
}

func (s *FileStore) SaveSession(ctx context.Context, session Session) error {
	if err := validateSession(session); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.doc.clone()
	u := session.User
	next.AuthToken = session.Token
	next.ProviderID = session.ProviderID
	next.User = &u
	next.AvatarThumbnail = ""
	return s.save(next)
}

func (s *FileStore) UpdateUser(ctx context.Context, u models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.doc.credentials(); err != nil {
		return err
	}
	next := s.doc.clone()
	next.User = &u
	return s.save(next)
}

func (s *FileStore) ClearSession(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.doc.clone()
	next.clear()
	return s.save(next)
}

func (s *FileStore) AvatarThumbnail(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.AvatarThumbnail, nil
}

func (s *FileStore) SetAvatarThumbnail(ctx context.Context, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.doc.credentials(); err != nil {
		return err
	}
	next := s.doc.clone()
	next.AvatarThumbnail = url
	return s.save(next)
}

func (s *FileStore) Close() error { return nil }

func (s *FileStore) String() string {
	return fmt.Sprintf("file:%s", s.path)
}
