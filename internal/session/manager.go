package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sawdustofmind/matchday-predictor/internal/log"
)

type Options struct {
	CookieName   string
	TTL          time.Duration
	CookieSecure bool
}

// Manager maps the browser cookie to a stored Session and owns its lifecycle.
type Manager struct {
	store Store
	opts  Options
}

func NewManager(store Store, opts Options) *Manager {
	if opts.CookieName == "" {
		opts.CookieName = "predictor_session"
	}
	if opts.TTL <= 0 {
		opts.TTL = 24 * time.Hour
	}
	return &Manager{store: store, opts: opts}
}

// Load resolves the request's session. Storage problems degrade to an
// anonymous session rather than failing the page.
func (m *Manager) Load(r *http.Request) *Session {
	cookie, err := r.Cookie(m.opts.CookieName)
	if err != nil || cookie.Value == "" {
		return &Session{}
	}

	sess, err := m.store.Get(r.Context(), cookie.Value)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			log.Warn("Failed to load session", zap.Error(err))
		}
		return &Session{}
	}
	return sess
}

// Create starts a fresh authenticated session, replacing any previous one.
func (m *Manager) Create(ctx context.Context, w http.ResponseWriter, prev *Session, token string) (*Session, error) {
	if prev != nil && prev.ID != "" {
		if err := m.store.Delete(ctx, prev.ID); err != nil {
			log.Warn("Failed to drop previous session", zap.Error(err))
		}
	}

	sess := &Session{ID: uuid.NewString(), Token: token}
	if err := m.store.Save(ctx, sess, m.opts.TTL); err != nil {
		return nil, fmt.Errorf("creating session: %w", err)
	}
	m.setCookie(w, sess.ID, int(m.opts.TTL.Seconds()))
	return sess, nil
}

// Destroy forgets the token. The record is removed and the cookie cleared.
func (m *Manager) Destroy(ctx context.Context, w http.ResponseWriter, sess *Session) {
	if sess.ID != "" {
		if err := m.store.Delete(ctx, sess.ID); err != nil {
			log.Warn("Failed to delete session", zap.Error(err))
		}
	}
	sess.ID = ""
	sess.Token = ""
	m.setCookie(w, "", -1)
}

// Flash queues a notice for the next page, creating an anonymous session to
// carry it when needed.
func (m *Manager) Flash(ctx context.Context, w http.ResponseWriter, sess *Session, kind NoticeKind, text string) {
	sess.Notice = &Notice{Kind: kind, Text: text}
	if sess.ID == "" {
		sess.ID = uuid.NewString()
		m.setCookie(w, sess.ID, int(m.opts.TTL.Seconds()))
	}
	if err := m.store.Save(ctx, sess, m.opts.TTL); err != nil {
		log.Warn("Failed to store notice", zap.Error(err))
	}
}

// TakeNotice pops the pending notice, if any.
func (m *Manager) TakeNotice(ctx context.Context, sess *Session) *Notice {
	n := sess.Notice
	if n == nil {
		return nil
	}
	sess.Notice = nil
	if err := m.store.Save(ctx, sess, m.opts.TTL); err != nil {
		log.Warn("Failed to clear notice", zap.Error(err))
	}
	return n
}

func (m *Manager) setCookie(w http.ResponseWriter, value string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.opts.CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   m.opts.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}
