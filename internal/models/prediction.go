package models

import "fmt"

// Prediction is one of the caller's own predictions as returned by GET /my-predictions.
// The remote API flattens the referenced match into the same object.
type Prediction struct {
	ID             int  `json:"id"`
	MatchID        int  `json:"match_id"`
	PredictionHome int  `json:"prediction_home"`
	PredictionAway int  `json:"prediction_away"`
	Points         *int `json:"points"`

	HomeTeam       string    `json:"home_team"`
	AwayTeam       string    `json:"away_team"`
	StartTime      Timestamp `json:"start_time"`
	IsFinished     bool      `json:"is_finished"`
	FinalHomeScore *int      `json:"final_home_score"`
	FinalAwayScore *int      `json:"final_away_score"`
}

func (p Prediction) Score() string {
	return fmt.Sprintf("%d:%d", p.PredictionHome, p.PredictionAway)
}

func (p Prediction) Fixture() string {
	return fmt.Sprintf("%s vs %s", p.HomeTeam, p.AwayTeam)
}

func (p Prediction) FinalScore() string {
	if !p.IsFinished || p.FinalHomeScore == nil || p.FinalAwayScore == nil {
		return ""
	}
	return fmt.Sprintf("%d:%d", *p.FinalHomeScore, *p.FinalAwayScore)
}

// MatchPrediction is another user's prediction for a started match.
type MatchPrediction struct {
	Username   string `json:"username"`
	Prediction string `json:"prediction"`
	Points     *int   `json:"points"`
}

// ScorePair is the body of a create or update request.
type ScorePair struct {
	MatchID   int `json:"match_id,omitempty"`
	HomeScore int `json:"home_score"`
	AwayScore int `json:"away_score"`
}
