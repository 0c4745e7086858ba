package dto

import (
	"time"

	domainauth "pgfinder/internal/domain/auth"
	domainuser "pgfinder/internal/domain/user"
)

type UserProfile struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SessionMarker is the minimal identity a client keeps around.
type SessionMarker struct {
	Kind  string `json:"kind"`
	ID    int64  `json:"id,omitempty"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role,omitempty"`
}

type AuthResponse struct {
	Token     string        `json:"token"`
	ExpiresAt time.Time     `json:"expires_at"`
	Session   SessionMarker `json:"session"`
	User      *UserProfile  `json:"user,omitempty"`
}

func MapUserProfile(user *domainuser.User) UserProfile {
	if user == nil {
		return UserProfile{}
	}
	return UserProfile{
		ID:        int64(user.ID),
		Name:      user.Name,
		Email:     user.Email,
		Phone:     user.Phone,
		Role:      string(user.Role),
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}

func MapSessionMarker(session *domainauth.Session) SessionMarker {
	if session == nil {
		return SessionMarker{}
	}
	return SessionMarker{
		Kind:  string(session.Kind),
		ID:    int64(session.Marker.UserID),
		Name:  session.Marker.Name,
		Email: session.Marker.Email,
		Role:  string(session.Marker.Role),
	}
}

func NewAuthResponse(session *domainauth.Session, user *domainuser.User) AuthResponse {
	resp := AuthResponse{
		Token:     string(session.Token),
		ExpiresAt: session.ExpiresAt,
		Session:   MapSessionMarker(session),
	}
	if user != nil {
		profile := MapUserProfile(user)
		resp.User = &profile
	}
	return resp
}
