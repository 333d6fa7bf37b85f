// Package session holds the browser's login state: the opaque bearer token
// issued by the prediction API plus one pending notice for the next page.
package session

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type NoticeKind string

const (
	NoticeSuccess NoticeKind = "success"
	NoticeError   NoticeKind = "error"
)

// Notice is a one-shot message shown on the next rendered page.
type Notice struct {
	Kind NoticeKind `json:"kind"`
	Text string     `json:"text"`
}

type Session struct {
	ID     string  `json:"-"`
	Token  string  `json:"token,omitempty"`
	Notice *Notice `json:"notice,omitempty"`
}

// User returns the display name carried by the token. A missing, undecodable
// or expired token yields an anonymous session.
func (s *Session) User(now time.Time) (string, bool) {
	if s == nil || s.Token == "" {
		return "", false
	}
	return DisplayName(s.Token, now)
}

// DisplayName decodes the token's subject claim without verifying the
// signature; verification belongs to the prediction API.
func DisplayName(token string, now time.Time) (string, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return "", false
	}
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return "", false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil {
		return "", false
	}
	if exp != nil && !now.Before(exp.Time) {
		return "", false
	}
	return sub, true
}

type ctxKey int

const sessionKey ctxKey = iota

func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionKey, s)
}

// FromContext returns the session resolved for the current request, or an
// empty anonymous one.
func FromContext(ctx context.Context) *Session {
	if s, ok := ctx.Value(sessionKey).(*Session); ok && s != nil {
		return s
	}
	return &Session{}
}
