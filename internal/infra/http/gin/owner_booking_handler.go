package ginserver

import (
	"log/slog"
	"net/http"
	"strings"

	gin "github.com/gin-gonic/gin"

	"pgfinder/internal/app/commands"
	"pgfinder/internal/app/dto"
	bookingapp "pgfinder/internal/app/handlers/booking"
	"pgfinder/internal/app/queries"
	domainauth "pgfinder/internal/domain/auth"
	domainbooking "pgfinder/internal/domain/booking"
	domainlistings "pgfinder/internal/domain/listings"
)

type OwnerBookingHTTP interface {
	List(c *gin.Context)
	Approve(c *gin.Context)
	Reject(c *gin.Context)
}

type OwnerBookingHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
	Logger   *slog.Logger
}

// List returns the owner dashboard, optionally narrowed by status and listing.
func (h OwnerBookingHandler) List(c *gin.Context) {
	if _, ok := requireSession(c, domainauth.KindOwner); !ok {
		return
	}
	if h.Queries == nil {
		unavailable(c, "booking queries")
		return
	}
	query := bookingapp.ListOwnerBookingsQuery{Status: strings.TrimSpace(c.Query("status"))}
	if raw := strings.TrimSpace(c.Query("listing_id")); raw != "" {
		id, err := domainlistings.ParseID(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		query.ListingID = id
	}
	result, err := queries.Ask[bookingapp.ListOwnerBookingsQuery, dto.OwnerBookingBoard](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h OwnerBookingHandler) Approve(c *gin.Context) {
	h.decide(c, domainbooking.StatusApproved)
}

func (h OwnerBookingHandler) Reject(c *gin.Context) {
	h.decide(c, domainbooking.StatusRejected)
}

func (h OwnerBookingHandler) decide(c *gin.Context, status domainbooking.Status) {
	if _, ok := requireSession(c, domainauth.KindOwner); !ok {
		return
	}
	if h.Commands == nil {
		unavailable(c, "booking commands")
		return
	}
	id, err := domainbooking.ParseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := bookingapp.DecideBookingCommand{BookingID: id, Status: status}
	result, err := commands.Dispatch[bookingapp.DecideBookingCommand, *dto.BookingDecision](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ OwnerBookingHTTP = OwnerBookingHandler{}
