package models

import (
	"testing"

	"github.com/stretchr/testify/assert"

	sublevelmodels "piano-quest/internal/features/sublevel/models"
)

func TestSummarize(t *testing.T) {
	level := Level{ID: "l1", SublevelCount: 3}
	subs := []sublevelmodels.Sublevel{
		{ID: "s1", LevelID: "l1", Completed: true, Stars: 3},
		{ID: "s2", LevelID: "l1", Completed: true, Stars: 1},
		{ID: "s3", LevelID: "l1", Unlocked: true},
		{ID: "x1", LevelID: "l2", Completed: true, Stars: 3},
	}

	p := Summarize(level, subs)

	assert.Equal(t, LevelProgress{
		LevelID:            "l1",
		CompletedSublevels: 2,
		TotalSublevels:     3,
		Stars:              4,
		MaxStars:           9,
	}, p)
	assert.Equal(t, 66, p.Percent())
	assert.False(t, p.Completed())
}

func TestSummarize_NoSublevelsLoaded(t *testing.T) {
	p := Summarize(Level{ID: "l2", SublevelCount: 4}, nil)

	assert.Equal(t, 4, p.TotalSublevels)
	assert.Equal(t, 12, p.MaxStars)
	assert.Equal(t, 0, p.Percent())
}

func TestLevelProgress_Completed(t *testing.T) {
	assert.True(t, LevelProgress{CompletedSublevels: 2, TotalSublevels: 2}.Completed())
	assert.False(t, LevelProgress{}.Completed())
	assert.Equal(t, 100, LevelProgress{CompletedSublevels: 2, TotalSublevels: 2}.Percent())
}
