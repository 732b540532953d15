package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	apperrors "piano-quest/internal/common/errors"
	"piano-quest/internal/common/logger"
	"piano-quest/internal/features/recognition/models"
)

const (
	ExactConfidence = 0.98
	GuessConfidence = 0.25

	// Limiters tracked before idle ones are dropped.
	maxLimiters = 10000
)

// RecognitionService matches uploaded recordings against a fingerprint catalog.
// A recording whose sha256 matches a track is an exact hit; anything else gets a
// deterministic low-confidence guess.
type RecognitionService struct {
	tracks   []models.Track
	byPrint  map[string]models.Track
	maxBytes int64

	rps   rate.Limit
	burst int

	mu          sync.Mutex
	limiters    map[string]*rate.Limiter
	maxLimiters int
	now         func() time.Time
}

func NewRecognitionService(tracks []models.Track, rps float64, burst int, maxBytes int64) *RecognitionService {
	s := &RecognitionService{
		tracks:   tracks,
		byPrint:  make(map[string]models.Track, len(tracks)),
		maxBytes: maxBytes,
		rps:      rate.Limit(rps),
		burst:    burst,
		limiters:    make(map[string]*rate.Limiter),
		maxLimiters: maxLimiters,
		now:         time.Now,
	}
	for _, t := range tracks {
		s.byPrint[strings.ToLower(t.Fingerprint)] = t
	}
	return s
}

// allow spends one token of the user's limiter.
func (s *RecognitionService) allow(userID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	l, ok := s.limiters[userID]
	if !ok {
		if len(s.limiters) >= s.maxLimiters {
			s.pruneLocked(now)
		}
		l = rate.NewLimiter(s.rps, s.burst)
		s.limiters[userID] = l
	}
	return l.AllowN(now, 1)
}

// pruneLocked drops limiters whose bucket has refilled, since a fresh limiter
// behaves the same. If every user is still throttled the map starts over.
func (s *RecognitionService) pruneLocked(now time.Time) {
	for id, l := range s.limiters {
		if l.TokensAt(now) >= float64(s.burst) {
			delete(s.limiters, id)
		}
	}
	if len(s.limiters) >= s.maxLimiters {
		s.limiters = make(map[string]*rate.Limiter)
	}
}

// Recognize reads the recording from r and returns the best match.
// Malformed uploads are rejected before they count against the user's rate limit.
func (s *RecognitionService) Recognize(_ context.Context, userID string, r io.Reader) (*models.Match, error) {
	h := sha256.New()
	n, err := io.Copy(h, io.LimitReader(r, s.maxBytes+1))
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeBadRequest, "Failed to read recording")
	}
	if n == 0 {
		return nil, apperrors.New(apperrors.ErrCodeBadRequest, "Recording is empty")
	}
	if n > s.maxBytes {
		return nil, apperrors.New(apperrors.ErrCodeTooLarge, fmt.Sprintf("Recording exceeds %d bytes", s.maxBytes))
	}
	if !s.allow(userID) {
		return nil, apperrors.New(apperrors.ErrCodeTooManyRequests, "Too many recognition requests, try again in a moment")
	}
	if len(s.tracks) == 0 {
		return nil, apperrors.New(apperrors.ErrCodeNotFound, "No tracks to match against")
	}

	sum := h.Sum(nil)
	if t, ok := s.byPrint[hex.EncodeToString(sum)]; ok {
		logger.Info().Str("user_id", userID).Str("title", t.Title).Msg("Recording matched")
		return toMatch(t, ExactConfidence), nil
	}

	t := s.tracks[int(sum[0])%len(s.tracks)]
	logger.Debug().Str("user_id", userID).Str("title", t.Title).Msg("Recording guessed")
	return toMatch(t, GuessConfidence), nil
}

func toMatch(t models.Track, confidence float64) *models.Match {
	return &models.Match{Title: t.Title, Artist: t.Artist, Album: t.Album, Confidence: confidence}
}
