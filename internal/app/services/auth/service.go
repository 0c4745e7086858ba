package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"pgfinder/internal/app/uow"
	domainauth "pgfinder/internal/domain/auth"
	domainuser "pgfinder/internal/domain/user"
)

var (
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	ErrPasswordRequired   = errors.New("auth: password is required")
	ErrOwnerNotConfigured = errors.New("auth: owner credentials not configured")
)

type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

type TokenGenerator interface {
	NewToken() (string, error)
}

// OwnerCredentials identify the single listing owner account.
type OwnerCredentials struct {
	Email        string
	Name         string
	PasswordHash string
}

type Service struct {
	UoW        uow.UoWFactory
	Sessions   domainauth.SessionStore
	Passwords  PasswordHasher
	Tokens     TokenGenerator
	Owner      OwnerCredentials
	SessionTTL time.Duration
	Now        func() time.Time
	Logger     *slog.Logger
}

type SignUpParams struct {
	Name            string
	Email           string
	Password        string
	ConfirmPassword string
	Phone           string
	Role            string
}

type LoginParams struct {
	Email    string
	Password string
}

type AuthResult struct {
	User    *domainuser.User
	Session *domainauth.Session
}

type ProfileParams struct {
	Name  string
	Email string
	Phone string
	Role  string
}

// SignUp creates a student account and opens a session for it. The store is
// untouched when the email is already registered.
func (s *Service) SignUp(ctx context.Context, params SignUpParams) (*AuthResult, error) {
	if err := s.ensureDependencies(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(params.Name) == "" {
		return nil, domainuser.ErrNameRequired
	}
	email := strings.TrimSpace(params.Email)
	if email == "" {
		return nil, domainuser.ErrEmailRequired
	}
	if params.Password == "" {
		return nil, ErrPasswordRequired
	}
	if strings.TrimSpace(params.Phone) == "" {
		return nil, domainuser.ErrPhoneRequired
	}
	if params.Password != params.ConfirmPassword {
		return nil, domainuser.ErrPasswordMismatch
	}
	role, err := domainuser.ParseRole(params.Role)
	if err != nil {
		return nil, err
	}
	hash, err := s.Passwords.Hash(params.Password)
	if err != nil {
		return nil, err
	}

	var created *domainuser.User
	err = s.write(ctx, func(unit uow.UnitOfWork) error {
		if _, err := unit.Users().ByEmail(ctx, email); err == nil {
			return domainuser.ErrEmailAlreadyUsed
		} else if !errors.Is(err, domainuser.ErrNotFound) {
			return err
		}
		now := s.now()
		id, err := unit.Users().NextID(ctx, now)
		if err != nil {
			return err
		}
		created, err = domainuser.NewUser(domainuser.CreateParams{
			ID:           id,
			Name:         params.Name,
			Email:        email,
			PasswordHash: hash,
			Phone:        params.Phone,
			Role:         role,
			CreatedAt:    now,
		})
		if err != nil {
			return err
		}
		return unit.Users().Save(ctx, created)
	})
	if err != nil {
		return nil, err
	}
	session, err := s.issueSession(ctx, domainauth.KindStudent, domainauth.MarkerFor(created))
	if err != nil {
		return nil, err
	}
	s.log().Info("user registered", "user_id", created.ID, "role", created.Role)
	return &AuthResult{User: created, Session: session}, nil
}

// LogIn matches the trimmed email and the password exactly; case matters.
func (s *Service) LogIn(ctx context.Context, params LoginParams) (*AuthResult, error) {
	if err := s.ensureDependencies(); err != nil {
		return nil, err
	}
	email := strings.TrimSpace(params.Email)
	if email == "" || params.Password == "" {
		return nil, ErrInvalidCredentials
	}
	unit, err := s.UoW.Begin(ctx, uow.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, err
	}
	user, err := unit.Users().ByEmail(ctx, email)
	_ = unit.Rollback(ctx)
	if err != nil {
		if errors.Is(err, domainuser.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := s.Passwords.Compare(user.PasswordHash, params.Password); err != nil {
		return nil, ErrInvalidCredentials
	}
	session, err := s.issueSession(ctx, domainauth.KindStudent, domainauth.MarkerFor(user))
	if err != nil {
		return nil, err
	}
	s.log().Info("user authenticated", "user_id", user.ID)
	return &AuthResult{User: user, Session: session}, nil
}

// OwnerLogIn checks the configured owner credentials and opens an owner session.
func (s *Service) OwnerLogIn(ctx context.Context, params LoginParams) (*domainauth.Session, error) {
	if err := s.ensureDependencies(); err != nil {
		return nil, err
	}
	if s.Owner.Email == "" || s.Owner.PasswordHash == "" {
		return nil, ErrOwnerNotConfigured
	}
	if strings.TrimSpace(params.Email) != s.Owner.Email {
		return nil, ErrInvalidCredentials
	}
	if err := s.Passwords.Compare(s.Owner.PasswordHash, params.Password); err != nil {
		return nil, ErrInvalidCredentials
	}
	session, err := s.issueSession(ctx, domainauth.KindOwner, domainauth.Marker{Name: s.Owner.Name, Email: s.Owner.Email})
	if err != nil {
		return nil, err
	}
	s.log().Info("owner authenticated")
	return session, nil
}

// LogOut deletes the session only; the account record stays.
func (s *Service) LogOut(ctx context.Context, token string) error {
	if err := s.ensureDependencies(); err != nil {
		return err
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return nil
	}
	if err := s.Sessions.Delete(ctx, domainauth.Token(token)); err != nil {
		return err
	}
	s.log().Info("session terminated")
	return nil
}

// Resolve returns the live session behind token. Expired sessions are removed.
func (s *Service) Resolve(ctx context.Context, token string) (*domainauth.Session, error) {
	if err := s.ensureDependencies(); err != nil {
		return nil, err
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, domainauth.ErrTokenRequired
	}
	session, err := s.Sessions.Get(ctx, domainauth.Token(token))
	if err != nil {
		return nil, err
	}
	if session.Expired(s.now()) {
		_ = s.Sessions.Delete(ctx, session.Token)
		return nil, domainauth.ErrSessionNotFound
	}
	return session, nil
}

// Profile loads the account behind a student session.
func (s *Service) Profile(ctx context.Context, session *domainauth.Session) (*domainuser.User, error) {
	if err := s.ensureDependencies(); err != nil {
		return nil, err
	}
	if session == nil || session.Kind != domainauth.KindStudent {
		return nil, domainauth.ErrSessionNotFound
	}
	unit, err := s.UoW.Begin(ctx, uow.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, err
	}
	defer func() { _ = unit.Rollback(ctx) }()
	return unit.Users().ByID(ctx, session.Marker.UserID)
}

// UpdateProfile overwrites the caller's name, email, phone and role and
// refreshes the marker carried by the session.
func (s *Service) UpdateProfile(ctx context.Context, session *domainauth.Session, params ProfileParams) (*domainuser.User, error) {
	if err := s.ensureDependencies(); err != nil {
		return nil, err
	}
	if session == nil || session.Kind != domainauth.KindStudent {
		return nil, domainauth.ErrSessionNotFound
	}
	role, err := domainuser.ParseRole(params.Role)
	if err != nil {
		return nil, err
	}
	var updated *domainuser.User
	err = s.write(ctx, func(unit uow.UnitOfWork) error {
		current, err := unit.Users().ByID(ctx, session.Marker.UserID)
		if err != nil {
			return err
		}
		email := strings.TrimSpace(params.Email)
		if email != "" && email != current.Email {
			other, err := unit.Users().ByEmail(ctx, email)
			switch {
			case err == nil && other.ID != current.ID:
				return domainuser.ErrEmailAlreadyUsed
			case err != nil && !errors.Is(err, domainuser.ErrNotFound):
				return err
			}
		}
		if err := current.UpdateProfile(domainuser.Profile{
			Name:  params.Name,
			Email: email,
			Phone: params.Phone,
			Role:  role,
		}, s.now()); err != nil {
			return err
		}
		updated = current
		return unit.Users().Save(ctx, current)
	})
	if err != nil {
		return nil, err
	}
	refreshed := *session
	refreshed.Marker = domainauth.MarkerFor(updated)
	if err := s.Sessions.Save(ctx, &refreshed); err != nil {
		return nil, fmt.Errorf("auth: refresh session: %w", err)
	}
	*session = refreshed
	s.log().Info("profile updated", "user_id", updated.ID)
	return updated, nil
}

func (s *Service) write(ctx context.Context, fn func(unit uow.UnitOfWork) error) error {
	unit, err := s.UoW.Begin(ctx, uow.TxOptions{})
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = unit.Rollback(ctx)
		}
	}()
	if err := fn(unit); err != nil {
		return err
	}
	if err := unit.Commit(ctx); err != nil {
		return err
	}
	committed = true
	return nil
}

func (s *Service) issueSession(ctx context.Context, kind domainauth.Kind, marker domainauth.Marker) (*domainauth.Session, error) {
	token, err := s.Tokens.NewToken()
	if err != nil {
		return nil, err
	}
	session, err := domainauth.NewSession(domainauth.CreateSessionParams{
		Token:  domainauth.Token(token),
		Kind:   kind,
		Marker: marker,
		TTL:    s.sessionTTL(),
		Now:    s.now(),
	})
	if err != nil {
		return nil, err
	}
	if err := s.Sessions.Save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *Service) sessionTTL() time.Duration {
	if s.SessionTTL > 0 {
		return s.SessionTTL
	}
	return 24 * time.Hour
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Service) log() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.New(slog.DiscardHandler)
}

func (s *Service) ensureDependencies() error {
	switch {
	case s.UoW == nil:
		return errors.New("auth: unit of work factory required")
	case s.Sessions == nil:
		return errors.New("auth: session store required")
	case s.Passwords == nil:
		return errors.New("auth: password hasher required")
	case s.Tokens == nil:
		return errors.New("auth: token generator required")
	default:
		return nil
	}
}
