package models

type LeaderboardEntry struct {
	UserID   int    `json:"user_id"`
	Username string `json:"username"`
	Position int    `json:"position"`
	Points   int    `json:"points"`
}
