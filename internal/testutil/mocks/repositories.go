package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/greencycle/waste-pickup-exchange/internal/domain/bid"
	"github.com/greencycle/waste-pickup-exchange/internal/domain/pickup"
	"github.com/greencycle/waste-pickup-exchange/internal/domain/requester"
	"github.com/greencycle/waste-pickup-exchange/internal/domain/values"
	"github.com/greencycle/waste-pickup-exchange/internal/domain/vendor"
)

// PickupRepository mock
type PickupRepository struct {
	mock.Mock
}

func (m *PickupRepository) Create(ctx context.Context, req *pickup.Request) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

func (m *PickupRepository) GetByID(ctx context.Context, id uuid.UUID) (*pickup.Request, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pickup.Request), args.Error(1)
}

func (m *PickupRepository) FindOpenByRequesterAndCategory(ctx context.Context, requesterID uuid.UUID, category string) (*pickup.Request, error) {
	args := m.Called(ctx, requesterID, category)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pickup.Request), args.Error(1)
}

func (m *PickupRepository) UpdateStatusIf(ctx context.Context, id uuid.UUID, from, to pickup.Status) (bool, error) {
	args := m.Called(ctx, id, from, to)
	return args.Bool(0), args.Error(1)
}

func (m *PickupRepository) AssignIf(ctx context.Context, id, vendorID uuid.UUID, amount values.Money) (bool, error) {
	args := m.Called(ctx, id, vendorID, amount)
	return args.Bool(0), args.Error(1)
}

func (m *PickupRepository) ListOverdue(ctx context.Context, now time.Time) ([]*pickup.Request, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*pickup.Request), args.Error(1)
}

func (m *PickupRepository) ListByRequester(ctx context.Context, requesterID uuid.UUID) ([]*pickup.Request, error) {
	args := m.Called(ctx, requesterID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*pickup.Request), args.Error(1)
}

func (m *PickupRepository) ListBidding(ctx context.Context) ([]*pickup.Request, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*pickup.Request), args.Error(1)
}

func (m *PickupRepository) CountBidding(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// BidRepository mock
type BidRepository struct {
	mock.Mock
}

func (m *BidRepository) Upsert(ctx context.Context, b *bid.Bid) error {
	args := m.Called(ctx, b)
	return args.Error(0)
}

func (m *BidRepository) GetByRequestAndVendor(ctx context.Context, requestID, vendorID uuid.UUID) (*bid.Bid, error) {
	args := m.Called(ctx, requestID, vendorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*bid.Bid), args.Error(1)
}

func (m *BidRepository) ListByRequest(ctx context.Context, requestID uuid.UUID) ([]*bid.Bid, error) {
	args := m.Called(ctx, requestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*bid.Bid), args.Error(1)
}

func (m *BidRepository) ListActiveByRequest(ctx context.Context, requestID uuid.UUID) ([]*bid.Bid, error) {
	args := m.Called(ctx, requestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*bid.Bid), args.Error(1)
}

func (m *BidRepository) ListByVendor(ctx context.Context, vendorID uuid.UUID) ([]*bid.Bid, error) {
	args := m.Called(ctx, vendorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*bid.Bid), args.Error(1)
}

func (m *BidRepository) MarkWon(ctx context.Context, bidID uuid.UUID) error {
	args := m.Called(ctx, bidID)
	return args.Error(0)
}

func (m *BidRepository) MarkLostExcept(ctx context.Context, requestID, winnerBidID uuid.UUID) error {
	args := m.Called(ctx, requestID, winnerBidID)
	return args.Error(0)
}

// Directory mock
type Directory struct {
	mock.Mock
}

func (m *Directory) GetProfile(ctx context.Context, id uuid.UUID) (*requester.Profile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*requester.Profile), args.Error(1)
}

func (m *Directory) GetFactory(ctx context.Context, id uuid.UUID) (*requester.Factory, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*requester.Factory), args.Error(1)
}

func (m *Directory) GetVendor(ctx context.Context, id uuid.UUID) (*vendor.Vendor, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*vendor.Vendor), args.Error(1)
}

func (m *Directory) ListVendorsByCategory(ctx context.Context, category string) ([]*vendor.Vendor, error) {
	args := m.Called(ctx, category)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*vendor.Vendor), args.Error(1)
}

// Notifier mock
type Notifier struct {
	mock.Mock
}

func (m *Notifier) NotifyBiddingOpened(ctx context.Context, req *pickup.Request, vendors []*vendor.Vendor) {
	m.Called(ctx, req, vendors)
}

func (m *Notifier) NotifyBidWon(ctx context.Context, b *bid.Bid) {
	m.Called(ctx, b)
}

func (m *Notifier) NotifyBidLost(ctx context.Context, b *bid.Bid) {
	m.Called(ctx, b)
}

// Resolver mock
type Resolver struct {
	mock.Mock
}

func (m *Resolver) ResolveAuction(ctx context.Context, requestID uuid.UUID) error {
	args := m.Called(ctx, requestID)
	return args.Error(0)
}
