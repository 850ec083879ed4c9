package auction

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/greencycle/waste-pickup-exchange/internal/domain/bid"
	"github.com/greencycle/waste-pickup-exchange/internal/domain/pickup"
	"github.com/greencycle/waste-pickup-exchange/internal/domain/requester"
	"github.com/greencycle/waste-pickup-exchange/internal/domain/values"
	"github.com/greencycle/waste-pickup-exchange/internal/domain/vendor"
)

// PickupRepository is the persistence boundary for pickup requests.
// UpdateStatusIf and AssignIf are guarded conditional writes: they
// report false (not an error) when the row's current status no longer
// matches, which callers treat as "already resolved elsewhere".
type PickupRepository interface {
	Create(ctx context.Context, req *pickup.Request) error
	GetByID(ctx context.Context, id uuid.UUID) (*pickup.Request, error)
	FindOpenByRequesterAndCategory(ctx context.Context, requesterID uuid.UUID, category string) (*pickup.Request, error)
	UpdateStatusIf(ctx context.Context, id uuid.UUID, from, to pickup.Status) (bool, error)
	AssignIf(ctx context.Context, id, vendorID uuid.UUID, amount values.Money) (bool, error)
	ListOverdue(ctx context.Context, now time.Time) ([]*pickup.Request, error)
	ListByRequester(ctx context.Context, requesterID uuid.UUID) ([]*pickup.Request, error)
	ListBidding(ctx context.Context) ([]*pickup.Request, error)
	CountBidding(ctx context.Context) (int64, error)
}

// BidRepository is the persistence boundary for the bid ledger.
// Upsert is guarded on the owning request still being in bidding and
// returns ErrRequestNotBidding when the guard misses, so a bid racing
// winner selection can never land in a resolved auction.
type BidRepository interface {
	Upsert(ctx context.Context, b *bid.Bid) error
	GetByRequestAndVendor(ctx context.Context, requestID, vendorID uuid.UUID) (*bid.Bid, error)
	ListByRequest(ctx context.Context, requestID uuid.UUID) ([]*bid.Bid, error)
	ListActiveByRequest(ctx context.Context, requestID uuid.UUID) ([]*bid.Bid, error)
	ListByVendor(ctx context.Context, vendorID uuid.UUID) ([]*bid.Bid, error)
	MarkWon(ctx context.Context, bidID uuid.UUID) error
	MarkLostExcept(ctx context.Context, requestID, winnerBidID uuid.UUID) error
}

// Directory reads the identity records owned by the surrounding
// application: requester profiles, factories, and vendor capabilities.
type Directory interface {
	GetProfile(ctx context.Context, id uuid.UUID) (*requester.Profile, error)
	GetFactory(ctx context.Context, id uuid.UUID) (*requester.Factory, error)
	GetVendor(ctx context.Context, id uuid.UUID) (*vendor.Vendor, error)
	ListVendorsByCategory(ctx context.Context, category string) ([]*vendor.Vendor, error)
}

// Notifier delivers auction events to interested parties. Delivery is
// best-effort; the auction never blocks on it.
type Notifier interface {
	NotifyBiddingOpened(ctx context.Context, req *pickup.Request, vendors []*vendor.Vendor)
	NotifyBidWon(ctx context.Context, b *bid.Bid)
	NotifyBidLost(ctx context.Context, b *bid.Bid)
}

// Resolver resolves an elapsed auction. Implemented by Service; the
// scheduler and sweeper only see this slice of it.
type Resolver interface {
	ResolveAuction(ctx context.Context, requestID uuid.UUID) error
}
