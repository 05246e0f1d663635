package mastery

import "time"

// Interaction types. The set is open: unknown types yield a zero rate change.
const (
	TypeQuiz        = "quiz"
	TypeDoubt       = "doubt"
	TypeContentView = "content_view"
	TypeAssignment  = "assignment"
)

// Difficulty levels. Unknown levels apply no scaling.
const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

const (
	// DefaultRate is the rate a new learner (or new subject) starts at.
	DefaultRate = 50.0

	// MinRate and MaxRate bound every rate; enforced by clamping, never by
	// rejecting input.
	MinRate = 1.0
	MaxRate = 100.0

	// HistorySize bounds a profile's interaction history; oldest entries are
	// evicted first.
	HistorySize = 50

	// expectedTimeMinutes is the reference duration for the time-spent multiplier.
	expectedTimeMinutes = 30.0
)

// Interaction describes one learning event for a learner. Callers fill in the
// descriptive fields; Timestamp and RateChange are assigned by the Engine when
// the interaction is recorded and are immutable thereafter.
type Interaction struct {
	Type       string    `json:"type"`
	Subject    string    `json:"subject,omitempty"`
	Topic      string    `json:"topic,omitempty"`
	Score      *float64  `json:"score,omitempty"`     // percentage in [0,100]
	Difficulty string    `json:"difficulty,omitempty"`
	TimeSpent  *float64  `json:"timeSpent,omitempty"` // minutes
	Timestamp  time.Time `json:"timestamp"`
	RateChange float64   `json:"rateChange"`
}

// Profile is a learner's mastery state: an overall rate, lazily-created
// per-subject rates and a bounded interaction history.
type Profile struct {
	LearnerID    string             `json:"userId"`
	OverallRate  float64            `json:"overallRate"`
	SubjectRates map[string]float64 `json:"subjects"`
	History      []Interaction      `json:"interactions"`
	LastUpdated  time.Time          `json:"lastUpdated"`
}

// DefaultProfile synthesizes the profile a learner has before any interaction
// is recorded.
func DefaultProfile(learnerID string, now time.Time) Profile {
	return Profile{
		LearnerID:    learnerID,
		OverallRate:  DefaultRate,
		SubjectRates: make(map[string]float64),
		History:      make([]Interaction, 0),
		LastUpdated:  now,
	}
}
