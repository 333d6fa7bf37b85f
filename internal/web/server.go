// Package web serves the prediction game's pages. Every data operation is
// forwarded to the remote prediction API with the session's bearer token.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/sawdustofmind/matchday-predictor/internal/api"
	"github.com/sawdustofmind/matchday-predictor/internal/log"
	"github.com/sawdustofmind/matchday-predictor/internal/models"
	"github.com/sawdustofmind/matchday-predictor/internal/predict"
	"github.com/sawdustofmind/matchday-predictor/internal/session"
)

// Remote is the prediction API as the pages use it.
type Remote interface {
	predict.Remote
	Register(ctx context.Context, creds models.Credentials) (*models.Account, error)
	Login(ctx context.Context, creds models.Credentials) (string, error)
	MatchPredictions(ctx context.Context, token string, matchID int) ([]models.MatchPrediction, error)
	Leaderboard(ctx context.Context, token string) ([]models.LeaderboardEntry, error)
}

type HealthResponse struct {
	Status string `json:"status"`
}

type Server struct {
	remote   Remote
	sessions *session.Manager
	editor   *predict.Editor
	pages    map[string]*template.Template
	access   map[string]access
	now      func() time.Time
}

func NewServer(remote Remote, sessions *session.Manager, now func() time.Time) (*Server, error) {
	if now == nil {
		now = time.Now
	}
	pages, err := parseTemplates()
	if err != nil {
		return nil, fmt.Errorf("parsing templates: %w", err)
	}
	s := &Server{
		remote:   remote,
		sessions: sessions,
		editor:   predict.NewEditor(remote, now),
		pages:    pages,
		now:      now,
	}
	s.access = accessTable(s.routes())
	return s, nil
}

// Router registers every route from the route table behind the access guard.
func (s *Server) Router() http.Handler {
	r := mux.NewRouter()
	for _, rt := range s.routes() {
		r.HandleFunc(rt.path, rt.handler).Methods(rt.methods...).Name(rt.name)
	}
	r.Use(logRequests, s.guard)
	return r
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(HealthResponse{Status: "ok"}); err != nil {
		log.Error("Failed to write health response", zap.Error(err))
	}
}

// torndown reports whether the browser went away while data was in flight.
// Late results must then be dropped instead of rendered or stored.
func torndown(r *http.Request) bool {
	if err := r.Context().Err(); err != nil {
		log.Debug("Discarding result for a view that is gone",
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		return true
	}
	return false
}

func (s *Server) redirect(w http.ResponseWriter, r *http.Request, to string) {
	http.Redirect(w, r, to, http.StatusSeeOther)
}

func (s *Server) flash(w http.ResponseWriter, r *http.Request, kind session.NoticeKind, text string) {
	s.sessions.Flash(r.Context(), w, session.FromContext(r.Context()), kind, text)
}

// failRedirect surfaces err as a notice on the page at to. An authentication
// failure ends the session and sends the browser to the login page instead.
func (s *Server) failRedirect(w http.ResponseWriter, r *http.Request, err error, to string) {
	if torndown(r) {
		return
	}
	if errors.Is(err, api.ErrAuthentication) {
		s.expire(w, r)
		return
	}
	log.Warn("Request to prediction API failed", zap.String("path", r.URL.Path), zap.Error(err))
	s.flash(w, r, session.NoticeError, api.Message(err))
	s.redirect(w, r, to)
}

// failPage renders an error state in place of a page whose data could not be loaded.
func (s *Server) failPage(w http.ResponseWriter, r *http.Request, err error) {
	if torndown(r) {
		return
	}
	if errors.Is(err, api.ErrAuthentication) {
		s.expire(w, r)
		return
	}
	log.Warn("Failed to load page data", zap.String("path", r.URL.Path), zap.Error(err))
	s.render(w, r, http.StatusBadGateway, "error", errorView{Message: api.Message(err)})
}

func (s *Server) expire(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())
	s.sessions.Destroy(r.Context(), w, sess)
	s.sessions.Flash(r.Context(), w, sess, session.NoticeError, api.Message(api.ErrAuthentication))
	s.redirect(w, r, "/login")
}

func token(r *http.Request) string {
	return session.FromContext(r.Context()).Token
}
