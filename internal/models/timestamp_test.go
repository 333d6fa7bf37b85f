package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimestamp(t *testing.T) {
	want := time.Date(2026, time.June, 15, 18, 0, 0, 0, time.UTC)
	cases := map[string]string{
		"rfc3339":    "2026-06-15T18:00:00Z",
		"offset":     "2026-06-15T20:00:00+02:00",
		"naive":      "2026-06-15T18:00:00",
		"naive frac": "2026-06-15T18:00:00.000000",
		"space":      "2026-06-15 18:00:00",
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			got, err := ParseTimestamp(in)
			require.NoError(t, err)
			assert.True(t, want.Equal(got), "got %s", got)
		})
	}

	_, err := ParseTimestamp("next tuesday")
	assert.Error(t, err)
}

func TestMatchDecode(t *testing.T) {
	body := `{"id":3,"home_team":"Polska","away_team":"Niemcy","start_time":"2026-06-15T18:00:00",
		"stage":"group","group_name":"A","is_finished":true,"home_score":2,"away_score":1}`

	var m Match
	require.NoError(t, json.Unmarshal([]byte(body), &m))
	assert.Equal(t, "Polska vs Niemcy", m.Fixture())
	assert.Equal(t, "2:1", m.FinalScore())
	assert.Equal(t, 18, m.StartTime.Hour())
}

func TestFinalScoreHiddenUntilFinished(t *testing.T) {
	home, away := 1, 1
	m := Match{HomeScore: &home, AwayScore: &away}
	assert.Empty(t, m.FinalScore())

	p := Prediction{IsFinished: true}
	assert.Empty(t, p.FinalScore())
}
