package models

import "fmt"

type Match struct {
	ID        int       `json:"id"`
	HomeTeam  string    `json:"home_team"`
	AwayTeam  string    `json:"away_team"`
	StartTime Timestamp `json:"start_time"`
	Stage     string    `json:"stage,omitempty"`
	GroupName *string   `json:"group_name,omitempty"`

	IsFinished bool `json:"is_finished"`
	HomeScore  *int `json:"home_score"`
	AwayScore  *int `json:"away_score"`
}

// Fixture renders "Home vs Away".
func (m Match) Fixture() string {
	return fmt.Sprintf("%s vs %s", m.HomeTeam, m.AwayTeam)
}

// FinalScore returns "h:a" once both final scores are known, otherwise "".
func (m Match) FinalScore() string {
	if !m.IsFinished || m.HomeScore == nil || m.AwayScore == nil {
		return ""
	}
	return fmt.Sprintf("%d:%d", *m.HomeScore, *m.AwayScore)
}
