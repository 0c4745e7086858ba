package uow

import (
	"context"

	"pgfinder/internal/app/outbox"
	domainbooking "pgfinder/internal/domain/booking"
	domainlistings "pgfinder/internal/domain/listings"
	domainreviews "pgfinder/internal/domain/reviews"
	domainuser "pgfinder/internal/domain/user"
)

// UnitOfWork stages repository writes and applies them together on Commit.
type UnitOfWork interface {
	Listings() domainlistings.Repository
	Bookings() domainbooking.Ledger
	Reviews() domainreviews.Repository
	Users() domainuser.Repository
	// Outbox collects event records that are released only after a successful commit.
	Outbox() outbox.Outbox

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// UoWFactory starts unit of work instances.
type UoWFactory interface {
	Begin(ctx context.Context, opts TxOptions) (UnitOfWork, error)
}

// TxOptions configure transaction boundaries.
type TxOptions struct {
	ReadOnly bool
}
