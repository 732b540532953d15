package models

// State is the unlock state of a sublevel as shown to the player.
type State string

const (
	StateLocked    State = "locked"
	StateAvailable State = "available"
	StateCompleted State = "completed"
)

// Sublevel is one song stage of a level. Unlocked, Completed, Stars and BestScore
// are supplied by the server for the signed-in user.
type Sublevel struct {
	ID          string `json:"id"`
	LevelID     string `json:"level_id"`
	Number      int    `json:"number"`
	Title       string `json:"title"`
	Song        string `json:"song"`
	TargetScore int    `json:"target_score"`
	Unlocked    bool   `json:"unlocked"`
	Completed   bool   `json:"completed"`
	Stars       int    `json:"stars"`
	BestScore   int    `json:"best_score"`
}

// State derives the display state from the server flags. Completed wins over a
// stale unlocked=false.
func (s Sublevel) State() State {
	switch {
	case s.Completed:
		return StateCompleted
	case s.Unlocked:
		return StateAvailable
	default:
		return StateLocked
	}
}

// SubmitProgressRequest is the result of one run, forwarded as is.
type SubmitProgressRequest struct {
	Completed bool `json:"completed"`
	Stars     int  `json:"stars"`
	Score     int  `json:"score"`
}

// SublevelProgress is the stored progress of a user on a sublevel.
type SublevelProgress struct {
	SublevelID string `json:"sublevel_id"`
	LevelID    string `json:"level_id"`
	Completed  bool   `json:"completed"`
	Stars      int    `json:"stars"`
	BestScore  int    `json:"best_score"`
	// Set when this submission unlocked something new
	UnlockedSublevelID string `json:"unlocked_sublevel_id,omitempty"`
	UnlockedLevelID    string `json:"unlocked_level_id,omitempty"`
}
