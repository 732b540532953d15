package prefs

import (
	"context"
	"encoding/json"
	"io"

	"github.com/redis/go-redis/v9"

	apperrors "piano-quest/internal/common/errors"
	"piano-quest/internal/features/auth/models"
)

// RedisStore keeps the preferences of one profile in a single redis hash.
// Useful for kiosk setups where several devices share one profile.
type RedisStore struct {
	client redis.Cmdable
	key    string
}

func NewRedisStore(client redis.Cmdable, key string) *RedisStore {
	return &RedisStore{client: client, key: key}
}

func (s *RedisStore) load(ctx context.Context) (*document, error) {
	vals, err := s.client.HGetAll(ctx, s.key).Result()
	if err != nil {
		return nil, apperrors.NewStorageError("read preferences", err)
	}
	doc := &document{
		AuthToken:       vals[KeyAuthToken],
		ProviderID:      vals[KeyProviderID],
		AvatarThumbnail: vals[KeyAvatarThumbnail],
	}
	if raw := vals[KeyUser]; raw != "" {
		var u models.User
		if err := json.Unmarshal([]byte(raw), &u); err != nil {
			return nil, apperrors.NewStorageError("parse cached user", err)
		}
		doc.User = &u
	}
	return doc, nil
}

func (s *RedisStore) Credentials(ctx context.Context) (Credentials, error) {
	doc, err := s.load(ctx)
	if err != nil {
		return Credentials{}, err
	}
	return doc.credentials()
}

func (s *RedisStore) Session(ctx context.Context) (*Session, error) {
	doc, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return doc.session()
}

func (s *RedisStore) SaveSession(ctx context.Context, session Session) error {
	if err := validateSession(session); err != nil {
		return err
	}
	user, err := marshalUser(session.User)
	if err != nil {
		return apperrors.NewStorageError("encode user", err)
	}
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, s.key,
			KeyAuthToken, session.Token,
			KeyProviderID, session.ProviderID,
			KeyUser, user,
		)
		pipe.HDel(ctx, s.key, KeyAvatarThumbnail)
		return nil
	})
	if err != nil {
		return apperrors.NewStorageError("save session", err)
	}
	return nil
}

func (s *RedisStore) UpdateUser(ctx context.Context, u models.User) error {
	if _, err := s.Credentials(ctx); err != nil {
		return err
	}
	user, err := marshalUser(u)
	if err != nil {
		return apperrors.NewStorageError("encode user", err)
	}
	if err := s.client.HSet(ctx, s.key, KeyUser, user).Err(); err != nil {
		return apperrors.NewStorageError("update user", err)
	}
	return nil
}

func (s *RedisStore) ClearSession(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return apperrors.NewStorageError("clear session", err)
	}
	return nil
}

func (s *RedisStore) AvatarThumbnail(ctx context.Context) (string, error) {
	v, err := s.client.HGet(ctx, s.key, KeyAvatarThumbnail).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", apperrors.NewStorageError("read avatar thumbnail", err)
	}
	return v, nil
}

func (s *RedisStore) SetAvatarThumbnail(ctx context.Context, url string) error {
	if _, err := s.Credentials(ctx); err != nil {
		return err
	}
	if err := s.client.HSet(ctx, s.key, KeyAvatarThumbnail, url).Err(); err != nil {
		return apperrors.NewStorageError("save avatar thumbnail", err)
	}
	return nil
}

func (s *RedisStore) Close() error {
	if c, ok := s.client.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
