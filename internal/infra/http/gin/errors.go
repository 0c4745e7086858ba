package ginserver

import (
	"errors"
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"pgfinder/internal/app/commands"
	listingapp "pgfinder/internal/app/handlers/listings"
	"pgfinder/internal/app/middleware"
	"pgfinder/internal/app/queries"
	authsvc "pgfinder/internal/app/services/auth"
	domainauth "pgfinder/internal/domain/auth"
	domainbooking "pgfinder/internal/domain/booking"
	domainlistings "pgfinder/internal/domain/listings"
	domainreviews "pgfinder/internal/domain/reviews"
	domainuser "pgfinder/internal/domain/user"
	"pgfinder/internal/infra/storage/kv"
)

var validationErrors = []error{
	middleware.ErrInvalidInput,
	domainlistings.ErrNameRequired,
	domainlistings.ErrCityRequired,
	domainlistings.ErrNegativePrice,
	domainlistings.ErrNegativeRooms,
	domainlistings.ErrInvalidGender,
	domainlistings.ErrInvalidStatus,
	domainlistings.ErrImageRequired,
	domainlistings.ErrInvalidListing,
	domainbooking.ErrInvalidStatus,
	domainbooking.ErrNameRequired,
	domainbooking.ErrEmailRequired,
	domainbooking.ErrPhoneRequired,
	domainbooking.ErrMoveInRequired,
	domainbooking.ErrInvalidBookingID,
	domainreviews.ErrInvalidRating,
	domainreviews.ErrNameRequired,
	domainreviews.ErrCommentRequired,
	domainuser.ErrNameRequired,
	domainuser.ErrEmailRequired,
	domainuser.ErrPasswordRequired,
	domainuser.ErrPasswordMismatch,
	domainuser.ErrPhoneRequired,
	domainuser.ErrInvalidRole,
	authsvc.ErrPasswordRequired,
	domainauth.ErrTokenRequired,
}

var conflictErrors = []error{
	domainuser.ErrEmailAlreadyUsed,
	domainbooking.ErrInvalidTransition,
	domainbooking.ErrNoRoomsAvailable,
	middleware.ErrIdempotencyKeyReused,
}

var notFoundErrors = []error{
	domainlistings.ErrNotFound,
	domainbooking.ErrNotFound,
	domainuser.ErrNotFound,
}

var unauthorizedErrors = []error{
	authsvc.ErrInvalidCredentials,
	authsvc.ErrUnauthenticated,
	domainauth.ErrSessionNotFound,
}

var unavailableErrors = []error{
	authsvc.ErrOwnerNotConfigured,
	listingapp.ErrImageStoreUnavailable,
	commands.ErrNilBus,
	queries.ErrNilBus,
}

func statusFor(err error) int {
	switch {
	case isAny(err, validationErrors):
		return http.StatusBadRequest
	case isAny(err, conflictErrors):
		return http.StatusConflict
	case isAny(err, notFoundErrors):
		return http.StatusNotFound
	case isAny(err, unauthorizedErrors):
		return http.StatusUnauthorized
	case errors.Is(err, authsvc.ErrForbidden):
		return http.StatusForbidden
	case isAny(err, unavailableErrors):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func isAny(err error, targets []error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// respondError writes {"error": ...}. Server-side failures are logged and
// their details are not echoed to the client.
func respondError(c *gin.Context, logger *slog.Logger, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		if logger != nil {
			fields := []any{"status", status, "error", err, "path", c.FullPath(), "request_id", c.GetString("request_id")}
			var corrupt *kv.CorruptError
			if errors.As(err, &corrupt) {
				fields = append(fields, "key", corrupt.Key)
			}
			logger.Error("request failed", fields...)
		}
		if status == http.StatusInternalServerError {
			c.JSON(status, gin.H{"error": "internal error"})
			return
		}
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func unavailable(c *gin.Context, what string) {
	c.JSON(http.StatusServiceUnavailable, gin.H{"error": what + " unavailable"})
}
