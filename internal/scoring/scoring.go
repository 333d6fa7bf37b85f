// Package scoring holds the pure rules the views share: match timing, point
// classification, totals and leaderboard deficits. Point values themselves are
// decided by the prediction API.
package scoring

import (
	"fmt"
	"time"

	"github.com/sawdustofmind/matchday-predictor/internal/models"
)

// Started reports whether kickoff has been reached at now.
func Started(now, kickoff time.Time) bool {
	return !now.Before(kickoff)
}

type Status string

const (
	StatusUpcoming Status = "Upcoming"
	StatusLive     Status = "Live"
	StatusFinished Status = "Finished"
)

func MatchStatus(now, kickoff time.Time, finished bool) Status {
	switch {
	case finished:
		return StatusFinished
	case Started(now, kickoff):
		return StatusLive
	default:
		return StatusUpcoming
	}
}

type Grade string

const (
	GradePending Grade = "pending"
	GradeExact   Grade = "exact"
	GradePartial Grade = "partial"
	GradeMiss    Grade = "miss"
)

// Classify maps an awarded point value to a display grade. Every value,
// including nil, zero and negatives, has a grade.
func Classify(points *int) Grade {
	if points == nil {
		return GradePending
	}
	switch p := *points; {
	case p >= 2:
		return GradeExact
	case p == 1:
		return GradePartial
	default:
		return GradeMiss
	}
}

// Total sums the awarded points; unresolved predictions count as zero.
func Total(predictions []models.Prediction) int {
	total := 0
	for _, p := range predictions {
		if p.Points != nil {
			total += *p.Points
		}
	}
	return total
}

// Deficit returns how far the entry at index trails the leader at index 0, and
// whether it should be shown at all. The leader and tied entries show nothing.
func Deficit(entries []models.LeaderboardEntry, index int) (int, bool) {
	if index <= 0 || index >= len(entries) {
		return 0, false
	}
	diff := entries[0].Points - entries[index].Points
	if diff <= 0 {
		return 0, false
	}
	return diff, true
}

// Medal labels the podium positions and falls back to "#n".
func Medal(position int) string {
	switch position {
	case 1:
		return "🥇"
	case 2:
		return "🥈"
	case 3:
		return "🥉"
	default:
		return fmt.Sprintf("#%d", position)
	}
}

// IndexByMatch keys the caller's predictions by match id. If the API ever
// returns more than one for a match the last one wins.
func IndexByMatch(predictions []models.Prediction) map[int]models.Prediction {
	out := make(map[int]models.Prediction, len(predictions))
	for _, p := range predictions {
		out[p.MatchID] = p
	}
	return out
}
