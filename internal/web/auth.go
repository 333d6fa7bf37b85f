package web

import (
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/sawdustofmind/matchday-predictor/internal/api"
	"github.com/sawdustofmind/matchday-predictor/internal/log"
	"github.com/sawdustofmind/matchday-predictor/internal/models"
	"github.com/sawdustofmind/matchday-predictor/internal/session"
)

const minPasswordLength = 6

func (s *Server) homeHandler(w http.ResponseWriter, r *http.Request) {
	s.redirect(w, r, "/matches")
}

func (s *Server) loginPage(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "login", authForm{})
}

func (s *Server) loginHandler(w http.ResponseWriter, r *http.Request) {
	creds := models.Credentials{
		Email:    strings.TrimSpace(r.PostFormValue("email")),
		Password: r.PostFormValue("password"),
	}
	if creds.Email == "" || creds.Password == "" {
		s.render(w, r, http.StatusUnprocessableEntity, "login", authForm{Email: creds.Email, Error: "Enter email and password"})
		return
	}

	tok, err := s.remote.Login(r.Context(), creds)
	if err != nil {
		if torndown(r) {
			return
		}
		status := http.StatusBadGateway
		if errors.Is(err, api.ErrAuthentication) || errors.Is(err, api.ErrValidation) {
			status = http.StatusUnauthorized
		}
		log.Info("Login rejected", zap.String("email", creds.Email), zap.Error(err))
		s.render(w, r, status, "login", authForm{Email: creds.Email, Error: api.Message(err)})
		return
	}

	s.startSession(w, r, tok, "")
}

func (s *Server) registerPage(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "register", authForm{})
}

// validateRegistration applies the form rules checked before the API is called.
func validateRegistration(email, password, confirm string) string {
	switch {
	case email == "" || password == "" || confirm == "":
		return "Fill in all fields"
	case password != confirm:
		return "Passwords do not match"
	case len(password) < minPasswordLength:
		return "Password must be at least 6 characters"
	}
	return ""
}

func (s *Server) registerHandler(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.PostFormValue("email"))
	password := r.PostFormValue("password")
	if msg := validateRegistration(email, password, r.PostFormValue("confirm")); msg != "" {
		s.render(w, r, http.StatusUnprocessableEntity, "register", authForm{Email: email, Error: msg})
		return
	}

	creds := models.Credentials{Email: email, Password: password}
	if _, err := s.remote.Register(r.Context(), creds); err != nil {
		if torndown(r) {
			return
		}
		status := http.StatusBadGateway
		if errors.Is(err, api.ErrValidation) || errors.Is(err, api.ErrConflict) {
			status = http.StatusUnprocessableEntity
		}
		log.Info("Registration rejected", zap.String("email", email), zap.Error(err))
		s.render(w, r, status, "register", authForm{Email: email, Error: api.Message(err)})
		return
	}
	log.Info("Account registered", zap.String("email", email))

	// log straight in with the same credentials
	tok, err := s.remote.Login(r.Context(), creds)
	if err != nil {
		if torndown(r) {
			return
		}
		log.Warn("Login after registration failed", zap.String("email", email), zap.Error(err))
		s.flash(w, r, session.NoticeSuccess, "Account created, please log in")
		s.redirect(w, r, "/login")
		return
	}

	s.startSession(w, r, tok, "Account created")
}

func (s *Server) startSession(w http.ResponseWriter, r *http.Request, tok, notice string) {
	if torndown(r) {
		return
	}
	prev := session.FromContext(r.Context())
	sess, err := s.sessions.Create(r.Context(), w, prev, tok)
	if err != nil {
		log.Error("Failed to start session", zap.Error(err))
		s.render(w, r, http.StatusInternalServerError, "login", authForm{Error: "Could not start a session, try again"})
		return
	}
	if notice != "" {
		s.sessions.Flash(r.Context(), w, sess, session.NoticeSuccess, notice)
	}
	s.redirect(w, r, "/matches")
}

func (s *Server) logoutHandler(w http.ResponseWriter, r *http.Request) {
	s.sessions.Destroy(r.Context(), w, session.FromContext(r.Context()))
	s.redirect(w, r, "/login")
}
