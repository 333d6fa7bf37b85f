package web

import (
	"strconv"
	"time"

	"github.com/sawdustofmind/matchday-predictor/internal/models"
	"github.com/sawdustofmind/matchday-predictor/internal/predict"
	"github.com/sawdustofmind/matchday-predictor/internal/scoring"
)

const kickoffLayout = "02.01.2006 15:04 MST"

type errorView struct {
	Message string
}

type authForm struct {
	Email string
	Error string
}

type catalogRow struct {
	ID      int
	Fixture string
	Kickoff string
	Started bool
	Mine    string // "h:a" when the caller has predicted
}

type catalogView struct {
	Rows []catalogRow
}

// buildCatalog derives started from now on every call; nothing is cached.
func buildCatalog(now time.Time, board *predict.Board) catalogView {
	rows := make([]catalogRow, 0, len(board.Matches))
	for _, m := range board.Matches {
		row := catalogRow{
			ID:      m.ID,
			Fixture: m.Fixture(),
			Kickoff: m.StartTime.UTC().Format(kickoffLayout),
			Started: scoring.Started(now, m.StartTime.Time),
		}
		if p, ok := board.Prediction(m.ID); ok {
			row.Mine = p.Score()
		}
		rows = append(rows, row)
	}
	return catalogView{Rows: rows}
}

type editorView struct {
	MatchID int
	Fixture string
	Kickoff string
	Home    string
	Away    string
	Editing bool
	Error   string
	Min     int
	Max     int
}

func buildEditor(board *predict.Board, m models.Match) editorView {
	v := editorView{
		MatchID: m.ID,
		Fixture: m.Fixture(),
		Kickoff: m.StartTime.UTC().Format(kickoffLayout),
		Min:     predict.MinScore,
		Max:     predict.MaxScore,
	}
	if p, ok := board.Prediction(m.ID); ok {
		v.Editing = true
		v.Home = strconv.Itoa(p.PredictionHome)
		v.Away = strconv.Itoa(p.PredictionAway)
	}
	return v
}

type othersRow struct {
	Username   string
	Prediction string
	Points     *int
	Grade      scoring.Grade
}

type othersView struct {
	MatchID int
	Rows    []othersRow
}

func buildOthers(matchID int, preds []models.MatchPrediction) othersView {
	rows := make([]othersRow, 0, len(preds))
	for _, p := range preds {
		rows = append(rows, othersRow{
			Username:   p.Username,
			Prediction: p.Prediction,
			Points:     p.Points,
			Grade:      scoring.Classify(p.Points),
		})
	}
	return othersView{MatchID: matchID, Rows: rows}
}

type historyRow struct {
	ID         int
	Fixture    string
	Kickoff    string
	Prediction string
	FinalScore string
	Status     scoring.Status
	Finished   bool
	Points     int
	Grade      scoring.Grade
}

type historyView struct {
	Total int
	Rows  []historyRow
}

func buildHistory(now time.Time, preds []models.Prediction) historyView {
	rows := make([]historyRow, 0, len(preds))
	for _, p := range preds {
		row := historyRow{
			ID:         p.ID,
			Fixture:    p.Fixture(),
			Kickoff:    p.StartTime.UTC().Format(kickoffLayout),
			Prediction: p.Score(),
			FinalScore: p.FinalScore(),
			Status:     scoring.MatchStatus(now, p.StartTime.Time, p.IsFinished),
			Finished:   p.IsFinished,
			Grade:      scoring.GradePending,
		}
		if p.IsFinished {
			row.Grade = scoring.Classify(p.Points)
			if p.Points != nil {
				row.Points = *p.Points
			}
		}
		rows = append(rows, row)
	}
	return historyView{Total: scoring.Total(preds), Rows: rows}
}

type leaderboardRow struct {
	Medal       string
	Username    string
	Points      int
	Current     bool
	Deficit     int
	ShowDeficit bool
}

type leaderboardView struct {
	Rows []leaderboardRow
}

// buildLeaderboard keeps the order the API ranked the entries in.
func buildLeaderboard(entries []models.LeaderboardEntry, currentUser string) leaderboardView {
	rows := make([]leaderboardRow, 0, len(entries))
	for i, e := range entries {
		deficit, show := scoring.Deficit(entries, i)
		rows = append(rows, leaderboardRow{
			Medal:       scoring.Medal(e.Position),
			Username:    e.Username,
			Points:      e.Points,
			Current:     currentUser != "" && e.Username == currentUser,
			Deficit:     deficit,
			ShowDeficit: show,
		})
	}
	return leaderboardView{Rows: rows}
}
