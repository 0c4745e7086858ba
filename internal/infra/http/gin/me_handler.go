package ginserver

import (
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"pgfinder/internal/app/dto"
	meapp "pgfinder/internal/app/handlers/me"
	"pgfinder/internal/app/queries"
	authsvc "pgfinder/internal/app/services/auth"
	domainauth "pgfinder/internal/domain/auth"
)

type MeHTTP interface {
	Profile(c *gin.Context)
	UpdateProfile(c *gin.Context)
	ListBookings(c *gin.Context)
}

type MeHandler struct {
	Queries queries.Bus
	Auth    *authsvc.Service
	Logger  *slog.Logger
}

type updateProfileRequest struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required"`
	Phone string `json:"phone"`
	Role  string `json:"role"`
}

func (h MeHandler) Profile(c *gin.Context) {
	session, ok := requireSession(c, domainauth.KindStudent)
	if !ok {
		return
	}
	if h.Auth == nil {
		unavailable(c, "auth service")
		return
	}
	user, err := h.Auth.Profile(c.Request.Context(), session)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.MapUserProfile(user))
}

func (h MeHandler) UpdateProfile(c *gin.Context) {
	session, ok := requireSession(c, domainauth.KindStudent)
	if !ok {
		return
	}
	if h.Auth == nil {
		unavailable(c, "auth service")
		return
	}
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	user, err := h.Auth.UpdateProfile(c.Request.Context(), session, authsvc.ProfileParams{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
		Role:  req.Role,
	})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.MapUserProfile(user))
}

// ListBookings returns the bookings submitted with the caller's email.
func (h MeHandler) ListBookings(c *gin.Context) {
	session, ok := requireSession(c, domainauth.KindStudent)
	if !ok {
		return
	}
	if h.Queries == nil {
		unavailable(c, "queries")
		return
	}
	query := meapp.ListMyBookingsQuery{Email: session.Marker.Email}
	result, err := queries.Ask[meapp.ListMyBookingsQuery, dto.BookingCollection](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ MeHTTP = MeHandler{}
