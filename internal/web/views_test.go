package web

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sawdustofmind/matchday-predictor/internal/models"
	"github.com/sawdustofmind/matchday-predictor/internal/predict"
	"github.com/sawdustofmind/matchday-predictor/internal/scoring"
)

func intPtr(n int) *int { return &n }

func ts(s string) models.Timestamp {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return models.Timestamp{Time: t}
}

func TestBuildCatalog(t *testing.T) {
	board := &predict.Board{
		Matches: []models.Match{
			{ID: 1, HomeTeam: "Polska", AwayTeam: "Niemcy", StartTime: ts("2025-01-01T00:00:00Z")},
			{ID: 2, HomeTeam: "Francja", AwayTeam: "Hiszpania", StartTime: ts("2099-01-01T00:00:00Z")},
		},
		Mine: map[int]models.Prediction{
			2: {ID: 7, MatchID: 2, PredictionHome: 1, PredictionAway: 0},
		},
	}

	v := buildCatalog(testNow, board)
	require.Len(t, v.Rows, 2)
	assert.True(t, v.Rows[0].Started)
	assert.Empty(t, v.Rows[0].Mine)
	assert.False(t, v.Rows[1].Started)
	assert.Equal(t, "1:0", v.Rows[1].Mine)
	assert.Equal(t, "01.01.2099 00:00 UTC", v.Rows[1].Kickoff)

	// kickoff exactly now counts as started
	later := buildCatalog(time.Date(2099, 1, 1, 0, 0, 0, 0, time.UTC), board)
	assert.True(t, later.Rows[1].Started)
}

func TestBuildLeaderboard(t *testing.T) {
	entries := []models.LeaderboardEntry{
		{UserID: 1, Username: "A", Position: 1, Points: 10},
		{UserID: 2, Username: "B", Position: 2, Points: 7},
		{UserID: 3, Username: "C", Position: 3, Points: 7},
		{UserID: 4, Username: "D", Position: 4, Points: 0},
	}

	v := buildLeaderboard(entries, "C")
	require.Len(t, v.Rows, 4)

	assert.False(t, v.Rows[0].ShowDeficit)
	assert.True(t, v.Rows[1].ShowDeficit)
	assert.Equal(t, 3, v.Rows[1].Deficit)
	assert.Equal(t, 10, v.Rows[3].Deficit)

	assert.Equal(t, "🥇", v.Rows[0].Medal)
	assert.Equal(t, "#4", v.Rows[3].Medal)
	assert.True(t, v.Rows[2].Current)
	assert.False(t, v.Rows[1].Current)

	assert.Empty(t, buildLeaderboard(nil, "").Rows)
}

func TestBuildHistory(t *testing.T) {
	preds := []models.Prediction{
		{ID: 1, MatchID: 1, PredictionHome: 1, PredictionAway: 0, StartTime: ts("2026-06-01T18:00:00Z"), IsFinished: true, FinalHomeScore: intPtr(2), FinalAwayScore: intPtr(0), Points: intPtr(1)},
		{ID: 2, MatchID: 2, PredictionHome: 2, PredictionAway: 2, StartTime: ts("2026-06-20T18:00:00Z")},
	}

	v := buildHistory(testNow, preds)
	assert.Equal(t, 1, v.Total)
	require.Len(t, v.Rows, 2)
	assert.Equal(t, scoring.GradePartial, v.Rows[0].Grade)
	assert.Equal(t, scoring.StatusFinished, v.Rows[0].Status)
	assert.Equal(t, "2:0", v.Rows[0].FinalScore)
	assert.Equal(t, scoring.GradePending, v.Rows[1].Grade)
	assert.Equal(t, scoring.StatusUpcoming, v.Rows[1].Status)
	assert.Empty(t, v.Rows[1].FinalScore)
}

func TestValidateRegistration(t *testing.T) {
	tests := []struct {
		name                     string
		email, password, confirm string
		want                     string
	}{
		{"ok", "a@b.c", "secret1", "secret1", ""},
		{"missing", "", "secret1", "secret1", "Fill in all fields"},
		{"mismatch", "a@b.c", "secret1", "secret2", "Passwords do not match"},
		{"short", "a@b.c", "abc", "abc", "Password must be at least 6 characters"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, validateRegistration(tt.email, tt.password, tt.confirm))
		})
	}
}

func TestAccessTableCoversEveryRoute(t *testing.T) {
	srv, err := NewServer(nil, nil, nil)
	require.NoError(t, err)

	routes := srv.routes()
	require.Len(t, srv.access, len(routes), "route names are unique")
	for _, rt := range routes {
		assert.Equal(t, rt.access, srv.access[rt.name], rt.name)
	}
	assert.Equal(t, accessGuest, srv.access["login.submit"])
	assert.Equal(t, accessMember, srv.access["leaderboard"])
	assert.Equal(t, accessPublic, srv.access["health"])
}
