package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"pgfinder/internal/domain/user"
)

var (
	ErrTokenRequired   = errors.New("auth: token is required")
	ErrKindInvalid     = errors.New("auth: session kind must be student or owner")
	ErrTTLInvalid      = errors.New("auth: ttl must be positive")
	ErrSessionNotFound = errors.New("auth: session not found")
)

type Token string

type Kind string

const (
	KindStudent Kind = "student"
	KindOwner   Kind = "owner"
)

// Marker is the denormalized identity carried by a session. UserID is zero for owner sessions.
type Marker struct {
	UserID user.ID
	Name   string
	Email  string
	Role   user.Role
}

func MarkerFor(u *user.User) Marker {
	return Marker{UserID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}

type Session struct {
	Token     Token
	Kind      Kind
	Marker    Marker
	CreatedAt time.Time
	ExpiresAt time.Time
}

type CreateSessionParams struct {
	Token  Token
	Kind   Kind
	Marker Marker
	TTL    time.Duration
	Now    time.Time
}

func NewSession(params CreateSessionParams) (*Session, error) {
	token := strings.TrimSpace(string(params.Token))
	if token == "" {
		return nil, ErrTokenRequired
	}
	if params.Kind != KindStudent && params.Kind != KindOwner {
		return nil, ErrKindInvalid
	}
	if params.TTL <= 0 {
		return nil, ErrTTLInvalid
	}
	now := params.Now
	if now.IsZero() {
		now = time.Now()
	}
	now = now.UTC()
	return &Session{
		Token:     Token(token),
		Kind:      params.Kind,
		Marker:    params.Marker,
		CreatedAt: now,
		ExpiresAt: now.Add(params.TTL),
	}, nil
}

func (s *Session) Expired(at time.Time) bool {
	if at.IsZero() {
		at = time.Now()
	}
	return !s.ExpiresAt.After(at.UTC())
}

type SessionStore interface {
	Save(ctx context.Context, session *Session) error
	Get(ctx context.Context, token Token) (*Session, error)
	Delete(ctx context.Context, token Token) error
}
