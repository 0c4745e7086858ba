package ginserver

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	gin "github.com/gin-gonic/gin"

	authsvc "pgfinder/internal/app/services/auth"
	domainauth "pgfinder/internal/domain/auth"
)

const (
	sessionContextKey = "pgfinder.session"
	tokenContextKey   = "pgfinder.token"
)

// AuthMiddleware resolves a bearer token into a session and places it in
// both the gin context and the request context, where the bus authorizer
// finds it. Requests without a valid token continue anonymously.
type AuthMiddleware struct {
	Service *authsvc.Service
	Logger  *slog.Logger
}

func (m AuthMiddleware) Handle(c *gin.Context) {
	token := extractBearerToken(c.GetHeader("Authorization"))
	if token == "" || m.Service == nil {
		c.Next()
		return
	}
	c.Set(tokenContextKey, token)
	session, err := m.Service.Resolve(c.Request.Context(), token)
	if err != nil {
		if !errors.Is(err, domainauth.ErrSessionNotFound) && m.Logger != nil {
			m.Logger.Warn("session lookup failed", "error", err)
		}
		c.Next()
		return
	}
	c.Set(sessionContextKey, session)
	c.Request = c.Request.WithContext(authsvc.ContextWithSession(c.Request.Context(), session))
	c.Next()
}

func currentSession(c *gin.Context) (*domainauth.Session, bool) {
	val, exists := c.Get(sessionContextKey)
	if !exists {
		return nil, false
	}
	s, ok := val.(*domainauth.Session)
	return s, ok && s != nil
}

// requireSession aborts with 401/403 unless a session of the given kind is
// present. An empty kind accepts any session.
func requireSession(c *gin.Context, kind domainauth.Kind) (*domainauth.Session, bool) {
	s, ok := currentSession(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "auth required"})
		return nil, false
	}
	if kind != "" && s.Kind != kind {
		c.JSON(http.StatusForbidden, gin.H{"error": "insufficient permissions"})
		return nil, false
	}
	return s, true
}

func bearerTokenFromContext(c *gin.Context) string {
	if v, ok := c.Get(tokenContextKey); ok {
		if token, ok := v.(string); ok {
			return token
		}
	}
	return extractBearerToken(c.GetHeader("Authorization"))
}

func extractBearerToken(header string) string {
	if header == "" {
		return ""
	}
	if !strings.HasPrefix(strings.ToLower(header), "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}
