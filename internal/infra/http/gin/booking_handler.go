package ginserver

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	gin "github.com/gin-gonic/gin"

	"pgfinder/internal/app/commands"
	"pgfinder/internal/app/dto"
	bookingapp "pgfinder/internal/app/handlers/booking"
	"pgfinder/internal/app/queries"
	domainauth "pgfinder/internal/domain/auth"
	domainbooking "pgfinder/internal/domain/booking"
)

type BookingHTTP interface {
	Request(c *gin.Context)
	Get(c *gin.Context)
}

type BookingHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
	Logger   *slog.Logger
}

type requestBookingRequest struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Message    string `json:"message"`
	MoveInDate string `json:"move_in_date"`
}

// Request submits a booking for the listing in the path. The Idempotency-Key
// header makes retries return the first result. Name and email default to the
// session's.
func (h BookingHandler) Request(c *gin.Context) {
	session, ok := requireSession(c, domainauth.KindStudent)
	if !ok {
		return
	}
	if h.Commands == nil {
		unavailable(c, "booking commands")
		return
	}
	id, ok := listingIDParam(c)
	if !ok {
		return
	}
	var req requestBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		req.Name = session.Marker.Name
	}
	if strings.TrimSpace(req.Email) == "" {
		req.Email = session.Marker.Email
	}
	cmd := bookingapp.RequestBookingCommand{
		ListingID:       id,
		Name:            req.Name,
		Email:           req.Email,
		Phone:           req.Phone,
		Message:         req.Message,
		MoveInDate:      req.MoveInDate,
		IdempotencyKeyV: strings.TrimSpace(c.GetHeader("Idempotency-Key")),
		Requester:       requesterKey(session),
	}
	result, err := commands.Dispatch[bookingapp.RequestBookingCommand, *dto.Booking](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

// Get serves the confirmation view of one booking.
func (h BookingHandler) Get(c *gin.Context) {
	if h.Queries == nil {
		unavailable(c, "booking queries")
		return
	}
	id, err := domainbooking.ParseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	result, err := queries.Ask[bookingapp.GetBookingQuery, dto.Booking](c.Request.Context(), h.Queries, bookingapp.GetBookingQuery{BookingID: id})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ BookingHTTP = BookingHandler{}

func requesterKey(s *domainauth.Session) string {
	if s.Marker.UserID != 0 {
		return "user-" + strconv.FormatInt(int64(s.Marker.UserID), 10)
	}
	return string(s.Kind) + "-" + s.Marker.Email
}
