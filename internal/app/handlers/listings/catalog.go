package listings

import (
	"context"

	"pgfinder/internal/app/dto"
	handlersupport "pgfinder/internal/app/handlers/support"
	"pgfinder/internal/app/queries"
	"pgfinder/internal/app/uow"
	domainlistings "pgfinder/internal/domain/listings"
)

const (
	searchCatalogKey = "listings.catalog"
	getListingKey    = "listings.get"
)

// SearchCatalogQuery describes request filters.
type SearchCatalogQuery struct {
	Query     string
	MinPrice  string
	MaxPrice  string
	City      string
	Gender    string
	Amenities []string
	Sort      string
}

func (q SearchCatalogQuery) Key() string { return searchCatalogKey }

// SearchCatalogHandler runs the filter engine over the stored collection.
type SearchCatalogHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *SearchCatalogHandler) Handle(ctx context.Context, q SearchCatalogQuery) (dto.ListingCatalog, error) {
	unit, execCtx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.ListingCatalog{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	all, err := unit.Listings().List(execCtx)
	if err != nil {
		return dto.ListingCatalog{}, err
	}
	params := domainlistings.SearchParams{
		Query: q.Query,
		Filters: domainlistings.Filters{
			MinPrice:  q.MinPrice,
			MaxPrice:  q.MaxPrice,
			City:      q.City,
			Gender:    domainlistings.Gender(q.Gender),
			Amenities: append([]string(nil), q.Amenities...),
		},
		Sort: domainlistings.ParseSort(q.Sort),
	}
	return dto.MapCatalog(domainlistings.Apply(all, params), params.Sort), nil
}

type GetListingQuery struct {
	ListingID domainlistings.ListingID
}

func (q GetListingQuery) Key() string { return getListingKey }

type GetListingHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *GetListingHandler) Handle(ctx context.Context, q GetListingQuery) (dto.Listing, error) {
	unit, execCtx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.Listing{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	listing, err := unit.Listings().ByID(execCtx, q.ListingID)
	if err != nil {
		return dto.Listing{}, err
	}
	return dto.MapListing(listing), nil
}

var (
	_ queries.Handler[SearchCatalogQuery, dto.ListingCatalog] = (*SearchCatalogHandler)(nil)
	_ queries.Handler[GetListingQuery, dto.Listing]           = (*GetListingHandler)(nil)
)
