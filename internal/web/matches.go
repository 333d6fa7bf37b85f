package web

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/sawdustofmind/matchday-predictor/internal/api"
	"github.com/sawdustofmind/matchday-predictor/internal/log"
	"github.com/sawdustofmind/matchday-predictor/internal/predict"
	"github.com/sawdustofmind/matchday-predictor/internal/scoring"
	"github.com/sawdustofmind/matchday-predictor/internal/session"
)

func matchID(r *http.Request) int {
	// the route pattern only admits digits
	id, _ := strconv.Atoi(mux.Vars(r)["id"])
	return id
}

func (s *Server) matchesPage(w http.ResponseWriter, r *http.Request) {
	board, err := s.editor.Load(r.Context(), token(r))
	if err != nil {
		s.failPage(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, "matches", buildCatalog(s.now(), board))
}

func (s *Server) predictionPage(w http.ResponseWriter, r *http.Request) {
	id := matchID(r)
	board, err := s.editor.Load(r.Context(), token(r))
	if err != nil {
		s.failPage(w, r, err)
		return
	}

	m, ok := board.Match(id)
	if !ok {
		s.failRedirect(w, r, api.NewError(http.StatusNotFound, "Match not found"), "/matches")
		return
	}
	if scoring.Started(s.now(), m.StartTime.Time) {
		s.failRedirect(w, r, api.ErrConflict, "/matches")
		return
	}

	s.render(w, r, http.StatusOK, "prediction", buildEditor(board, m))
}

func (s *Server) predictionHandler(w http.ResponseWriter, r *http.Request) {
	id := matchID(r)
	rawHome, rawAway := r.PostFormValue("home"), r.PostFormValue("away")

	home, away, err := predict.ParseScores(rawHome, rawAway)
	if err != nil {
		// rejected before any API call, so the fixture is not known here
		s.render(w, r, http.StatusUnprocessableEntity, "prediction", editorView{
			MatchID: id,
			Home:    rawHome,
			Away:    rawAway,
			Error:   fieldMessage(err),
			Min:     predict.MinScore,
			Max:     predict.MaxScore,
		})
		return
	}

	board, err := s.editor.Load(r.Context(), token(r))
	if err != nil {
		s.failRedirect(w, r, err, "/matches")
		return
	}

	created, err := s.editor.Save(r.Context(), token(r), board, id, home, away)
	if err != nil {
		if errors.Is(err, api.ErrValidation) && !torndown(r) {
			m, _ := board.Match(id)
			v := buildEditor(board, m)
			v.Home, v.Away = rawHome, rawAway
			v.Error = api.Message(err)
			s.render(w, r, http.StatusUnprocessableEntity, "prediction", v)
			return
		}
		// conflicts land back on the catalog, which reloads from the API
		s.failRedirect(w, r, err, "/matches")
		return
	}
	if torndown(r) {
		return
	}

	log.Info("Prediction submitted", zap.Int("match_id", id), zap.Bool("created", created))
	msg := "Prediction updated"
	if created {
		msg = "Prediction saved"
	}
	s.flash(w, r, session.NoticeSuccess, msg)
	s.redirect(w, r, "/matches")
}

func fieldMessage(err error) string {
	var fe *predict.FieldError
	if errors.As(err, &fe) {
		return "Enter a valid score: " + fe.Field + " " + fe.Message
	}
	return api.Message(err)
}

func (s *Server) matchPredictionsPage(w http.ResponseWriter, r *http.Request) {
	id := matchID(r)
	preds, err := s.remote.MatchPredictions(r.Context(), token(r), id)
	if err != nil {
		if errors.Is(err, api.ErrNotFound) || errors.Is(err, api.ErrForbidden) {
			if torndown(r) {
				return
			}
			s.flash(w, r, session.NoticeError, "Predictions not available yet")
			s.redirect(w, r, "/matches")
			return
		}
		s.failRedirect(w, r, err, "/matches")
		return
	}
	s.render(w, r, http.StatusOK, "match_predictions", buildOthers(id, preds))
}

func (s *Server) historyPage(w http.ResponseWriter, r *http.Request) {
	preds, err := s.remote.MyPredictions(r.Context(), token(r))
	if err != nil {
		s.failPage(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, "my_predictions", buildHistory(s.now(), preds))
}

func (s *Server) leaderboardPage(w http.ResponseWriter, r *http.Request) {
	entries, err := s.remote.Leaderboard(r.Context(), token(r))
	if err != nil {
		s.failPage(w, r, err)
		return
	}
	user, _ := session.FromContext(r.Context()).User(s.now())
	s.render(w, r, http.StatusOK, "leaderboard", buildLeaderboard(entries, user))
}
