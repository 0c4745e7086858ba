package auth

import (
	"context"
	"errors"

	domainauth "pgfinder/internal/domain/auth"
)

var (
	ErrUnauthenticated = errors.New("auth: session required")
	ErrForbidden       = errors.New("auth: session kind not allowed")
)

type sessionCtxKey struct{}

func ContextWithSession(ctx context.Context, session *domainauth.Session) context.Context {
	return context.WithValue(ctx, sessionCtxKey{}, session)
}

func SessionFromContext(ctx context.Context) (*domainauth.Session, bool) {
	session, ok := ctx.Value(sessionCtxKey{}).(*domainauth.Session)
	return session, ok && session != nil
}

// Restricted is implemented by messages that need a particular session kind.
type Restricted interface {
	RequiredKind() domainauth.Kind
}

// KindAuthorizer enforces Restricted messages against the session in context.
type KindAuthorizer struct{}

func (KindAuthorizer) Authorize(ctx context.Context, message any) error {
	restricted, ok := message.(Restricted)
	if !ok {
		return nil
	}
	session, ok := SessionFromContext(ctx)
	if !ok {
		return ErrUnauthenticated
	}
	if session.Kind != restricted.RequiredKind() {
		return ErrForbidden
	}
	return nil
}
