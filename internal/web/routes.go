package web

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/sawdustofmind/matchday-predictor/internal/log"
	"github.com/sawdustofmind/matchday-predictor/internal/session"
)

type access int

const (
	// anyone, logged in or not
	accessPublic access = iota
	// only visitors without a session: login and register
	accessGuest
	// only logged in members
	accessMember
)

type route struct {
	name    string
	path    string
	methods []string
	access  access
	handler http.HandlerFunc
}

func (s *Server) routes() []route {
	return []route{
		{"health", "/healthz", []string{http.MethodGet}, accessPublic, s.healthHandler},
		{"logout", "/logout", []string{http.MethodPost}, accessPublic, s.logoutHandler},

		{"login", "/login", []string{http.MethodGet}, accessGuest, s.loginPage},
		{"login.submit", "/login", []string{http.MethodPost}, accessGuest, s.loginHandler},
		{"register", "/register", []string{http.MethodGet}, accessGuest, s.registerPage},
		{"register.submit", "/register", []string{http.MethodPost}, accessGuest, s.registerHandler},

		{"home", "/", []string{http.MethodGet}, accessMember, s.homeHandler},
		{"matches", "/matches", []string{http.MethodGet}, accessMember, s.matchesPage},
		{"prediction", "/matches/{id:[0-9]+}/prediction", []string{http.MethodGet}, accessMember, s.predictionPage},
		{"prediction.submit", "/matches/{id:[0-9]+}/prediction", []string{http.MethodPost}, accessMember, s.predictionHandler},
		{"match.predictions", "/matches/{id:[0-9]+}/predictions", []string{http.MethodGet}, accessMember, s.matchPredictionsPage},
		{"my.predictions", "/my-predictions", []string{http.MethodGet}, accessMember, s.historyPage},
		{"leaderboard", "/leaderboard", []string{http.MethodGet}, accessMember, s.leaderboardPage},
	}
}

func accessTable(routes []route) map[string]access {
	levels := make(map[string]access, len(routes))
	for _, rt := range routes {
		levels[rt.name] = rt.access
	}
	return levels
}

// guard resolves the session once per navigation, enforces the route's access
// level and hands the session to the handler through the request context.
func (s *Server) guard(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		level := accessMember
		if cur := mux.CurrentRoute(r); cur != nil {
			if lvl, ok := s.access[cur.GetName()]; ok {
				level = lvl
			}
		}

		sess := s.sessions.Load(r)
		user, loggedIn := sess.User(s.now())

		switch {
		case level == accessMember && !loggedIn:
			if sess.Token != "" {
				// stale or unreadable token: forget it
				s.sessions.Destroy(r.Context(), w, sess)
			}
			log.Debug("Anonymous visitor sent to login", zap.String("path", r.URL.Path))
			s.redirect(w, r, "/login")
			return
		case level == accessGuest && loggedIn:
			log.Debug("Member sent to matches", zap.String("path", r.URL.Path), zap.String("user", user))
			s.redirect(w, r, "/matches")
			return
		}

		next.ServeHTTP(w, r.WithContext(session.WithSession(r.Context(), sess)))
	})
}
