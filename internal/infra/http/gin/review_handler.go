package ginserver

import (
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"pgfinder/internal/app/commands"
	"pgfinder/internal/app/dto"
	reviewsapp "pgfinder/internal/app/handlers/reviews"
	"pgfinder/internal/app/queries"
)

type ReviewsHTTP interface {
	List(c *gin.Context)
	Add(c *gin.Context)
}

type ReviewsHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
	Logger   *slog.Logger
}

type addReviewRequest struct {
	Name    string `json:"name"`
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

func (h ReviewsHandler) List(c *gin.Context) {
	if h.Queries == nil {
		unavailable(c, "review queries")
		return
	}
	id, ok := listingIDParam(c)
	if !ok {
		return
	}
	result, err := queries.Ask[reviewsapp.ListReviewsQuery, dto.ReviewCollection](c.Request.Context(), h.Queries, reviewsapp.ListReviewsQuery{ListingID: id})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Add stores a review and returns it with the listing's recomputed rating.
func (h ReviewsHandler) Add(c *gin.Context) {
	if h.Commands == nil {
		unavailable(c, "review commands")
		return
	}
	id, ok := listingIDParam(c)
	if !ok {
		return
	}
	var req addReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := reviewsapp.AddReviewCommand{
		ListingID: id,
		Name:      req.Name,
		Rating:    req.Rating,
		Comment:   req.Comment,
	}
	result, err := commands.Dispatch[reviewsapp.AddReviewCommand, *dto.ReviewReceipt](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

var _ ReviewsHTTP = ReviewsHandler{}
