package mastery

import "github.com/intellilearn/backend/core"

// ComputeDelta maps one interaction to a signed rate delta, rounded to 2
// decimal places. It is pure and never fails: absent or malformed optional
// fields degrade to neutral multipliers.
//
// Base deltas by type:
//   - quiz:         (score - 70) / 10  -> -7 .. +3
//   - doubt:        -1
//   - content_view: +0.5
//   - assignment:   (score - 60) / 15  -> -4 .. +2.67
//   - anything else: 0
//
// A missing score on quiz/assignment counts as 0, yielding the maximum
// negative delta.
func ComputeDelta(in Interaction) float64 {
	var base float64

	switch in.Type {
	case TypeQuiz:
		base = (in.score() - 70) / 10
	case TypeDoubt:
		base = -1
	case TypeContentView:
		base = 0.5
	case TypeAssignment:
		base = (in.score() - 60) / 15
	default:
		base = 0
	}

	if in.Difficulty != "" {
		base *= difficultyMultiplier(in.Difficulty)
	}

	if in.TimeSpent != nil {
		timeRatio := *in.TimeSpent / expectedTimeMinutes
		if timeRatio > 2.0 {
			timeRatio = 2.0
		}
		base *= 0.5 + timeRatio*0.5 // 0.5x to 1.5x
	}

	return core.Round2(base)
}

func (in Interaction) score() float64 {
	if in.Score == nil {
		return 0
	}
	return *in.Score
}

func difficultyMultiplier(difficulty string) float64 {
	switch difficulty {
	case DifficultyEasy:
		return 0.8
	case DifficultyHard:
		return 1.3
	default: // medium or unknown
		return 1.0
	}
}
