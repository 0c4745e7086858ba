package kv

import (
	"context"
	"errors"
	"time"

	domainauth "pgfinder/internal/domain/auth"
)

// SessionStore keeps one session_<token> key per session.
type SessionStore struct {
	Store Store
	Now   func() time.Time
}

func (s SessionStore) Save(ctx context.Context, session *domainauth.Session) error {
	if session == nil || session.Token == "" {
		return domainauth.ErrTokenRequired
	}
	raw, err := Encode(SchemaSession, sessionToRecord(session))
	if err != nil {
		return err
	}
	op := Put(SessionKey(string(session.Token)), raw)
	if ttl := session.ExpiresAt.Sub(s.now()); ttl > 0 {
		op.TTL = ttl
	}
	return s.Store.Apply(ctx, []Op{op})
}

func (s SessionStore) Get(ctx context.Context, token domainauth.Token) (*domainauth.Session, error) {
	key := SessionKey(string(token))
	raw, err := s.Store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, domainauth.ErrSessionNotFound
		}
		return nil, err
	}
	var rec sessionRecord
	if err := Decode(key, SchemaSession, raw, &rec); err != nil {
		return nil, err
	}
	return rec.toDomain(), nil
}

func (s SessionStore) Delete(ctx context.Context, token domainauth.Token) error {
	return s.Store.Apply(ctx, []Op{Delete(SessionKey(string(token)))})
}

func (s SessionStore) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

var _ domainauth.SessionStore = SessionStore{}
