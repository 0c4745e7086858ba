package ginserver

import (
	"log/slog"
	"net/http"
	"strings"

	gin "github.com/gin-gonic/gin"

	"pgfinder/internal/app/dto"
	listingapp "pgfinder/internal/app/handlers/listings"
	"pgfinder/internal/app/queries"
	domainlistings "pgfinder/internal/domain/listings"
)

type ListingHTTP interface {
	Catalog(c *gin.Context)
	Get(c *gin.Context)
}

// ListingHandler wires listing queries to HTTP.
type ListingHandler struct {
	Queries queries.Bus
	Logger  *slog.Logger
}

// Catalog responds with the filtered and sorted collection of listings.
func (h ListingHandler) Catalog(c *gin.Context) {
	if h.Queries == nil {
		unavailable(c, "listing queries")
		return
	}
	query := listingapp.SearchCatalogQuery{
		Query:     c.Query("q"),
		MinPrice:  c.Query("min_price"),
		MaxPrice:  c.Query("max_price"),
		City:      c.Query("city"),
		Gender:    c.Query("gender"),
		Amenities: splitCSV(c.QueryArray("amenities")...),
		Sort:      c.DefaultQuery("sort", string(domainlistings.SortByPriceAsc)),
	}
	result, err := queries.Ask[listingapp.SearchCatalogQuery, dto.ListingCatalog](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h ListingHandler) Get(c *gin.Context) {
	if h.Queries == nil {
		unavailable(c, "listing queries")
		return
	}
	id, ok := listingIDParam(c)
	if !ok {
		return
	}
	result, err := queries.Ask[listingapp.GetListingQuery, dto.Listing](c.Request.Context(), h.Queries, listingapp.GetListingQuery{ListingID: id})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ ListingHTTP = ListingHandler{}

func listingIDParam(c *gin.Context) (domainlistings.ListingID, bool) {
	id, err := domainlistings.ParseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return 0, false
	}
	return id, true
}

// splitCSV accepts both repeated parameters and comma separated values.
func splitCSV(values ...string) []string {
	var out []string
	for _, raw := range values {
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
