// Package wiring registers every command and query handler and wraps the
// buses in the middleware pipeline.
package wiring

import (
	"log/slog"
	"time"

	"pgfinder/internal/app/commands"
	bookingapp "pgfinder/internal/app/handlers/booking"
	listingapp "pgfinder/internal/app/handlers/listings"
	meapp "pgfinder/internal/app/handlers/me"
	reviewsapp "pgfinder/internal/app/handlers/reviews"
	"pgfinder/internal/app/middleware"
	"pgfinder/internal/app/outbox"
	"pgfinder/internal/app/policies"
	"pgfinder/internal/app/queries"
	authsvc "pgfinder/internal/app/services/auth"
	"pgfinder/internal/app/uow"
)

type Deps struct {
	UoW         uow.UoWFactory
	Relay       outbox.Outbox
	Idempotency middleware.IdempotencyStore
	Images      policies.ImageStore
	Observer    middleware.Observer
	Encoder     outbox.EventEncoder
	Logger      *slog.Logger
	Now         func() time.Time
}

type Buses struct {
	Commands commands.Bus
	Queries  queries.Bus
}

// Build wires the handlers. Command pipeline, outermost first: metrics,
// validation, authorization, idempotency, outbox flush, transaction.
func Build(d Deps) Buses {
	logger := d.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	encoder := d.Encoder
	if encoder == nil {
		encoder = outbox.JSONEventEncoder{}
	}

	commandBus := commands.NewInMemoryBus()
	commands.RegisterHandler(commandBus, listingapp.CreateListingCommand{}.Key(), &listingapp.CreateListingHandler{Logger: logger, Encoder: encoder, Now: d.Now})
	commands.RegisterHandler(commandBus, listingapp.UpdateListingCommand{}.Key(), &listingapp.UpdateListingHandler{Logger: logger, Encoder: encoder, Now: d.Now})
	commands.RegisterHandler(commandBus, listingapp.DeleteListingCommand{}.Key(), &listingapp.DeleteListingHandler{Logger: logger, Encoder: encoder, Now: d.Now})
	commands.RegisterHandler(commandBus, listingapp.SetOccupancyCommand{}.Key(), &listingapp.SetOccupancyHandler{Logger: logger, Encoder: encoder, Now: d.Now})
	commands.RegisterHandler(commandBus, listingapp.UploadListingImageCommand{}.Key(), &listingapp.UploadListingImageHandler{Logger: logger, Images: d.Images, Encoder: encoder, Now: d.Now})
	commands.RegisterHandler(commandBus, bookingapp.RequestBookingCommand{}.Key(), &bookingapp.RequestBookingHandler{Logger: logger, Encoder: encoder, Now: d.Now})
	commands.RegisterHandler(commandBus, bookingapp.DecideBookingCommand{}.Key(), &bookingapp.DecideBookingHandler{Logger: logger, Encoder: encoder, Now: d.Now})
	commands.RegisterHandler(commandBus, reviewsapp.AddReviewCommand{}.Key(), &reviewsapp.AddReviewHandler{Logger: logger, Encoder: encoder, Now: d.Now})

	queryBus := queries.NewInMemoryBus()
	queries.RegisterHandler(queryBus, listingapp.SearchCatalogQuery{}.Key(), &listingapp.SearchCatalogHandler{UoWFactory: d.UoW})
	queries.RegisterHandler(queryBus, listingapp.GetListingQuery{}.Key(), &listingapp.GetListingHandler{UoWFactory: d.UoW})
	queries.RegisterHandler(queryBus, bookingapp.ListOwnerBookingsQuery{}.Key(), &bookingapp.ListOwnerBookingsHandler{UoWFactory: d.UoW, Logger: logger})
	queries.RegisterHandler(queryBus, bookingapp.GetBookingQuery{}.Key(), &bookingapp.GetBookingHandler{UoWFactory: d.UoW})
	queries.RegisterHandler(queryBus, meapp.ListMyBookingsQuery{}.Key(), &meapp.ListMyBookingsHandler{UoWFactory: d.UoW, Logger: logger})
	queries.RegisterHandler(queryBus, reviewsapp.ListReviewsQuery{}.Key(), &reviewsapp.ListReviewsHandler{UoWFactory: d.UoW})

	validator := middleware.NewStructValidator()
	authorizer := authsvc.KindAuthorizer{}

	var cmdMW []middleware.CommandMiddleware
	var queryMW []middleware.QueryMiddleware
	if d.Observer != nil {
		cmdMW = append(cmdMW, middleware.Metrics(d.Observer))
		queryMW = append(queryMW, middleware.QueryMetrics(d.Observer))
	}
	cmdMW = append(cmdMW,
		middleware.Validation(validator),
		middleware.Authorization(authorizer),
	)
	if d.Idempotency != nil {
		cmdMW = append(cmdMW, middleware.Idempotency(d.Idempotency, nil))
	}
	if d.Relay != nil {
		cmdMW = append(cmdMW, middleware.OutboxFlush(d.Relay))
	}
	cmdMW = append(cmdMW, middleware.Transaction(d.UoW, nil))
	queryMW = append(queryMW,
		middleware.QueryValidation(validator),
		middleware.QueryAuthorization(authorizer),
	)

	return Buses{
		Commands: middleware.ChainCommands(commandBus, cmdMW...),
		Queries:  middleware.ChainQueries(queryBus, queryMW...),
	}
}
