package models

import (
	"piano-quest/internal/common/validation"
	sublevelmodels "piano-quest/internal/features/sublevel/models"
)

// Level groups a sequence of sublevels.
type Level struct {
	ID            string `json:"id"`
	Number        int    `json:"number"`
	Title         string `json:"title"`
	Description   string `json:"description"`
	Unlocked      bool   `json:"unlocked"`
	SublevelCount int    `json:"sublevel_count"`
}

// LevelProgress summarizes a user's progress on a level.
type LevelProgress struct {
	LevelID            string `json:"level_id"`
	CompletedSublevels int    `json:"completed_sublevels"`
	TotalSublevels     int    `json:"total_sublevels"`
	Stars              int    `json:"stars"`
	MaxStars           int    `json:"max_stars"`
}

// Completed reports whether every sublevel is done. A level without sublevels is never completed.
func (p LevelProgress) Completed() bool {
	return p.TotalSublevels > 0 && p.CompletedSublevels >= p.TotalSublevels
}

// Percent is the share of completed sublevels, 0-100.
func (p LevelProgress) Percent() int {
	if p.TotalSublevels == 0 {
		return 0
	}
	return p.CompletedSublevels * 100 / p.TotalSublevels
}

// Summarize builds the progress of level from the server-supplied sublevel flags.
// Sublevels of other levels are ignored.
func Summarize(level Level, sublevels []sublevelmodels.Sublevel) LevelProgress {
	p := LevelProgress{LevelID: level.ID}
	for _, s := range sublevels {
		if s.LevelID != level.ID {
			continue
		}
		p.TotalSublevels++
		p.MaxStars += validation.MaxStars
		if s.Completed {
			p.CompletedSublevels++
		}
		p.Stars += s.Stars
	}
	if p.TotalSublevels == 0 && level.SublevelCount > 0 {
		p.TotalSublevels = level.SublevelCount
		p.MaxStars = validation.MaxStars * level.SublevelCount
	}
	return p
}
