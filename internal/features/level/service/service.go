package service

import (
	"context"
	"sync"

	apperrors "piano-quest/internal/common/errors"
	"piano-quest/internal/common/logger"
	"piano-quest/internal/common/validation"
	"piano-quest/internal/devserver/seed"
	"piano-quest/internal/features/level/models"
	sublevelmodels "piano-quest/internal/features/sublevel/models"
)

type record struct {
	completed bool
	stars     int
	bestScore int
}

type location struct {
	level    int
	sublevel int
}

// ProgressService tracks level and sublevel progress per user. Unlock state is
// derived from completion: the first sublevel of the first level is open,
// completing a sublevel opens the next one, and completing every sublevel of a
// level opens the next level.
type ProgressService struct {
	course []seed.Level
	index  map[string]location
	levels map[string]int

	mu       sync.RWMutex
	progress map[string]map[string]*record // user id -> sublevel id
}

func NewProgressService(course []seed.Level) *ProgressService {
	s := &ProgressService{
		course:   course,
		index:    make(map[string]location),
		levels:   make(map[string]int, len(course)),
		progress: make(map[string]map[string]*record),
	}
	for i, l := range course {
		s.levels[l.ID] = i
		for j, sl := range l.Sublevels {
			s.index[sl.ID] = location{level: i, sublevel: j}
		}
	}
	return s
}

func (s *ProgressService) Levels(_ context.Context, userID string) []models.Level {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Level, 0, len(s.course))
	for i := range s.course {
		out = append(out, s.level(userID, i))
	}
	return out
}

func (s *ProgressService) UnlockedLevels(ctx context.Context, userID string) []models.Level {
	out := []models.Level{}
	for _, l := range s.Levels(ctx, userID) {
		if l.Unlocked {
			out = append(out, l)
		}
	}
	return out
}

func (s *ProgressService) Level(_ context.Context, userID, id string) (*models.Level, error) {
	i, ok := s.levels[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("level", id)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	l := s.level(userID, i)
	return &l, nil
}

func (s *ProgressService) LevelProgress(_ context.Context, userID string) []models.LevelProgress {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.LevelProgress, 0, len(s.course))
	for i := range s.course {
		out = append(out, models.Summarize(s.level(userID, i), s.sublevels(userID, i)))
	}
	return out
}

func (s *ProgressService) Sublevels(_ context.Context, userID, levelID string) ([]sublevelmodels.Sublevel, error) {
	i, ok := s.levels[levelID]
	if !ok {
		return nil, apperrors.NewNotFoundError("level", levelID)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.sublevels(userID, i), nil
}

func (s *ProgressService) Sublevel(_ context.Context, userID, id string) (*sublevelmodels.Sublevel, error) {
	loc, ok := s.index[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("sublevel", id)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	sl := s.sublevel(userID, loc)
	return &sl, nil
}

// SublevelProgress lists the stored progress of every sublevel the user has played.
func (s *ProgressService) SublevelProgress(_ context.Context, userID string) []sublevelmodels.SublevelProgress {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []sublevelmodels.SublevelProgress{}
	for _, l := range s.course {
		for _, sl := range l.Sublevels {
			rec, ok := s.progress[userID][sl.ID]
			if !ok {
				continue
			}
			out = append(out, sublevelmodels.SublevelProgress{
				SublevelID: sl.ID,
				LevelID:    l.ID,
				Completed:  rec.completed,
				Stars:      rec.stars,
				BestScore:  rec.bestScore,
			})
		}
	}
	return out
}

// Submit records one run. Completion is sticky and stars and best score keep
// their maximum. Locked sublevels reject submissions.
func (s *ProgressService) Submit(_ context.Context, userID, id string, req sublevelmodels.SubmitProgressRequest) (*sublevelmodels.SublevelProgress, error) {
	if err := validation.ValidateStars(req.Stars); err != nil {
		return nil, apperrors.NewValidationError("stars", err.Error())
	}
	if err := validation.ValidateScore(req.Score); err != nil {
		return nil, apperrors.NewValidationError("score", err.Error())
	}
	loc, ok := s.index[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("sublevel", id)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.sublevelUnlocked(userID, loc) {
		return nil, apperrors.New(apperrors.ErrCodeLocked, "This sublevel is still locked").
			WithDetail("sublevel_id", id)
	}

	next, hasNext := s.nextSublevel(loc)
	nextWasUnlocked := hasNext && s.sublevelUnlocked(userID, next)
	nextLevelWasUnlocked := loc.level+1 < len(s.course) && s.levelUnlocked(userID, loc.level+1)

	user := s.progress[userID]
	if user == nil {
		user = make(map[string]*record)
		s.progress[userID] = user
	}
	rec := user[id]
	if rec == nil {
		rec = &record{}
		user[id] = rec
	}
	rec.completed = rec.completed || req.Completed
	rec.stars = max(rec.stars, req.Stars)
	rec.bestScore = max(rec.bestScore, req.Score)

	levelID := s.course[loc.level].ID
	resp := &sublevelmodels.SublevelProgress{
		SublevelID: id,
		LevelID:    levelID,
		Completed:  rec.completed,
		Stars:      rec.stars,
		BestScore:  rec.bestScore,
	}
	if hasNext && !nextWasUnlocked && s.sublevelUnlocked(userID, next) {
		resp.UnlockedSublevelID = s.course[next.level].Sublevels[next.sublevel].ID
	}
	if loc.level+1 < len(s.course) && !nextLevelWasUnlocked && s.levelUnlocked(userID, loc.level+1) {
		resp.UnlockedLevelID = s.course[loc.level+1].ID
	}

	logger.Info().
		Str("user_id", userID).
		Str("sublevel_id", id).
		Bool("completed", rec.completed).
		Int("stars", rec.stars).
		Str("unlocked_sublevel", resp.UnlockedSublevelID).
		Str("unlocked_level", resp.UnlockedLevelID).
		Msg("Progress recorded")
	return resp, nil
}

// nextSublevel is the following sublevel within the same level. The first sublevel
// of the next level opens with the level itself.
func (s *ProgressService) nextSublevel(loc location) (location, bool) {
	if loc.sublevel+1 < len(s.course[loc.level].Sublevels) {
		return location{level: loc.level, sublevel: loc.sublevel + 1}, true
	}
	if loc.level+1 < len(s.course) && len(s.course[loc.level+1].Sublevels) > 0 {
		return location{level: loc.level + 1}, true
	}
	return location{}, false
}

func (s *ProgressService) completed(userID, sublevelID string) bool {
	rec, ok := s.progress[userID][sublevelID]
	return ok && rec.completed
}

// levelCompleted matches LevelProgress.Completed: a level without sublevels never completes.
func (s *ProgressService) levelCompleted(userID string, i int) bool {
	if len(s.course[i].Sublevels) == 0 {
		return false
	}
	for _, sl := range s.course[i].Sublevels {
		if !s.completed(userID, sl.ID) {
			return false
		}
	}
	return true
}

func (s *ProgressService) levelUnlocked(userID string, i int) bool {
	return i == 0 || s.levelCompleted(userID, i-1)
}

func (s *ProgressService) sublevelUnlocked(userID string, loc location) bool {
	subs := s.course[loc.level].Sublevels
	if s.completed(userID, subs[loc.sublevel].ID) {
		return true
	}
	if !s.levelUnlocked(userID, loc.level) {
		return false
	}
	return loc.sublevel == 0 || s.completed(userID, subs[loc.sublevel-1].ID)
}

func (s *ProgressService) level(userID string, i int) models.Level {
	l := s.course[i]
	return models.Level{
		ID:            l.ID,
		Number:        i + 1,
		Title:         l.Title,
		Description:   l.Description,
		Unlocked:      s.levelUnlocked(userID, i),
		SublevelCount: len(l.Sublevels),
	}
}

func (s *ProgressService) sublevels(userID string, i int) []sublevelmodels.Sublevel {
	out := make([]sublevelmodels.Sublevel, 0, len(s.course[i].Sublevels))
	for j := range s.course[i].Sublevels {
		out = append(out, s.sublevel(userID, location{level: i, sublevel: j}))
	}
	return out
}

func (s *ProgressService) sublevel(userID string, loc location) sublevelmodels.Sublevel {
	def := s.course[loc.level].Sublevels[loc.sublevel]
	sl := sublevelmodels.Sublevel{
		ID:          def.ID,
		LevelID:     s.course[loc.level].ID,
		Number:      loc.sublevel + 1,
		Title:       def.Title,
		Song:        def.Song,
		TargetScore: def.TargetScore,
		Unlocked:    s.sublevelUnlocked(userID, loc),
	}
	if rec, ok := s.progress[userID][def.ID]; ok {
		sl.Completed = rec.completed
		sl.Stars = rec.stars
		sl.BestScore = rec.bestScore
	}
	return sl
}
