package user

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"
)

var (
	ErrIDRequired          = errors.New("user: id is required")
	ErrEmailRequired       = errors.New("user: email is required")
	ErrPasswordRequired    = errors.New("user: password is required")
	ErrPasswordHashMissing = errors.New("user: password hash is required")
	ErrPasswordMismatch    = errors.New("user: passwords do not match")
	ErrNameRequired        = errors.New("user: name is required")
	ErrPhoneRequired       = errors.New("user: phone is required")
	ErrInvalidRole         = errors.New("user: role must be student or professional")
	ErrEmailAlreadyUsed    = errors.New("user: email already used")
	ErrNotFound            = errors.New("user: not found")
)

type ID int64

func (id ID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

func ParseID(raw string) (ID, error) {
	value, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || value <= 0 {
		return 0, ErrIDRequired
	}
	return ID(value), nil
}

type Role string

const (
	RoleStudent      Role = "student"
	RoleProfessional Role = "professional"
)

func ParseRole(raw string) (Role, error) {
	switch r := Role(strings.ToLower(strings.TrimSpace(raw))); r {
	case "":
		return RoleStudent, nil
	case RoleStudent, RoleProfessional:
		return r, nil
	}
	return "", ErrInvalidRole
}

type User struct {
	ID           ID
	Name         string
	Email        string
	PasswordHash string
	Phone        string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Repository is the account store. Emails are matched exactly as entered.
type Repository interface {
	ByID(ctx context.Context, id ID) (*User, error)
	ByEmail(ctx context.Context, email string) (*User, error)
	Save(ctx context.Context, user *User) error
	NextID(ctx context.Context, now time.Time) (ID, error)
}

type CreateParams struct {
	ID           ID
	Name         string
	Email        string
	PasswordHash string
	Phone        string
	Role         Role
	CreatedAt    time.Time
}

func NewUser(params CreateParams) (*User, error) {
	if params.ID <= 0 {
		return nil, ErrIDRequired
	}
	name := strings.TrimSpace(params.Name)
	if name == "" {
		return nil, ErrNameRequired
	}
	email := strings.TrimSpace(params.Email)
	if email == "" {
		return nil, ErrEmailRequired
	}
	if strings.TrimSpace(params.PasswordHash) == "" {
		return nil, ErrPasswordHashMissing
	}
	phone := strings.TrimSpace(params.Phone)
	if phone == "" {
		return nil, ErrPhoneRequired
	}
	role, err := ParseRole(string(params.Role))
	if err != nil {
		return nil, err
	}

	now := params.CreatedAt
	if now.IsZero() {
		now = time.Now()
	}
	now = now.UTC()

	return &User{
		ID:           params.ID,
		Name:         name,
		Email:        email,
		PasswordHash: params.PasswordHash,
		Phone:        phone,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

type Profile struct {
	Name  string
	Email string
	Phone string
	Role  Role
}

// UpdateProfile overwrites the editable fields. Name and email are required,
// phone may be cleared.
func (u *User) UpdateProfile(p Profile, now time.Time) error {
	name := strings.TrimSpace(p.Name)
	if name == "" {
		return ErrNameRequired
	}
	email := strings.TrimSpace(p.Email)
	if email == "" {
		return ErrEmailRequired
	}
	role, err := ParseRole(string(p.Role))
	if err != nil {
		return err
	}
	u.Name = name
	u.Email = email
	u.Phone = strings.TrimSpace(p.Phone)
	u.Role = role
	u.touch(now)
	return nil
}

func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	out := *u
	return &out
}

func (u *User) touch(now time.Time) {
	if now.IsZero() {
		now = time.Now()
	}
	u.UpdatedAt = now.UTC()
}

func NextID(existing []*User, now time.Time) ID {
	id := ID(now.UnixMilli())
	for _, u := range existing {
		if u != nil && u.ID >= id {
			id = u.ID + 1
		}
	}
	return id
}
