package fixtures

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/greencycle/waste-pickup-exchange/internal/domain/bid"
	"github.com/greencycle/waste-pickup-exchange/internal/domain/pickup"
	"github.com/greencycle/waste-pickup-exchange/internal/domain/values"
	"github.com/greencycle/waste-pickup-exchange/internal/domain/vendor"
)

// RequestBuilder builds test pickup Request entities
type RequestBuilder struct {
	id            uuid.UUID
	requesterID   uuid.UUID
	requesterName string
	address       string
	category      string
	quantity      float64
	status        pickup.Status
	windowEndsAt  time.Time
	vendorID      *uuid.UUID
	winningAmount *values.Money
}

// NewRequestBuilder creates a RequestBuilder with defaults: a bidding
// Plastic request whose window closes five minutes from now.
func NewRequestBuilder() *RequestBuilder {
	return &RequestBuilder{
		id:            uuid.New(),
		requesterID:   uuid.New(),
		requesterName: "Riverside Apartments",
		address:       "42 Canal Street",
		category:      "Plastic",
		quantity:      12.5,
		status:        pickup.StatusBidding,
		windowEndsAt:  time.Now().Add(5 * time.Minute),
	}
}

func (b *RequestBuilder) WithID(id uuid.UUID) *RequestBuilder {
	b.id = id
	return b
}

func (b *RequestBuilder) WithRequesterID(id uuid.UUID) *RequestBuilder {
	b.requesterID = id
	return b
}

func (b *RequestBuilder) WithCategory(category string) *RequestBuilder {
	b.category = category
	return b
}

func (b *RequestBuilder) WithQuantity(quantity float64) *RequestBuilder {
	b.quantity = quantity
	return b
}

func (b *RequestBuilder) WithStatus(status pickup.Status) *RequestBuilder {
	b.status = status
	return b
}

func (b *RequestBuilder) WithWindowEndsAt(at time.Time) *RequestBuilder {
	b.windowEndsAt = at
	return b
}

func (b *RequestBuilder) WithAssignedVendor(vendorID uuid.UUID, amount values.Money) *RequestBuilder {
	b.vendorID = &vendorID
	b.winningAmount = &amount
	return b
}

func (b *RequestBuilder) Build(t *testing.T) *pickup.Request {
	t.Helper()
	now := time.Now()
	return &pickup.Request{
		ID:               b.id,
		RequesterID:      b.requesterID,
		RequesterName:    b.requesterName,
		Address:          b.address,
		WasteCategory:    b.category,
		Quantity:         b.quantity,
		Status:           b.status,
		AssignedVendorID: b.vendorID,
		WinningAmount:    b.winningAmount,
		WindowEndsAt:     b.windowEndsAt,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

// BidBuilder builds test Bid entities
type BidBuilder struct {
	id          uuid.UUID
	requestID   uuid.UUID
	vendorID    uuid.UUID
	vendorName  string
	amountCents int64
	status      bid.Status
	placedAt    time.Time
}

// NewBidBuilder creates a BidBuilder with defaults: an active 95.00 USD
// bid placed now.
func NewBidBuilder(requestID uuid.UUID) *BidBuilder {
	return &BidBuilder{
		id:          uuid.New(),
		requestID:   requestID,
		vendorID:    uuid.New(),
		vendorName:  "GreenHaul Ltd",
		amountCents: 9500,
		status:      bid.StatusActive,
		placedAt:    time.Now(),
	}
}

func (b *BidBuilder) WithVendorID(id uuid.UUID) *BidBuilder {
	b.vendorID = id
	return b
}

func (b *BidBuilder) WithVendorName(name string) *BidBuilder {
	b.vendorName = name
	return b
}

func (b *BidBuilder) WithAmountCents(cents int64) *BidBuilder {
	b.amountCents = cents
	return b
}

func (b *BidBuilder) WithStatus(status bid.Status) *BidBuilder {
	b.status = status
	return b
}

func (b *BidBuilder) WithPlacedAt(at time.Time) *BidBuilder {
	b.placedAt = at
	return b
}

func (b *BidBuilder) Build(t *testing.T) *bid.Bid {
	t.Helper()
	amount, err := values.NewMoneyFromCents(b.amountCents, values.USD)
	require.NoError(t, err)
	now := time.Now()
	return &bid.Bid{
		ID:            b.id,
		RequestID:     b.requestID,
		VendorID:      b.vendorID,
		VendorName:    b.vendorName,
		VendorContact: "dispatch@example.com",
		Amount:        amount,
		Status:        b.status,
		PlacedAt:      b.placedAt,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// VendorBuilder builds test Vendor entities
type VendorBuilder struct {
	id         uuid.UUID
	name       string
	categories []string
}

// NewVendorBuilder creates a VendorBuilder with defaults: a vendor
// collecting Plastic and Metal.
func NewVendorBuilder() *VendorBuilder {
	return &VendorBuilder{
		id:         uuid.New(),
		name:       "GreenHaul Ltd",
		categories: []string{"Plastic", "Metal"},
	}
}

func (b *VendorBuilder) WithID(id uuid.UUID) *VendorBuilder {
	b.id = id
	return b
}

func (b *VendorBuilder) WithName(name string) *VendorBuilder {
	b.name = name
	return b
}

func (b *VendorBuilder) WithCategories(categories ...string) *VendorBuilder {
	b.categories = categories
	return b
}

func (b *VendorBuilder) Build(t *testing.T) *vendor.Vendor {
	t.Helper()
	return &vendor.Vendor{
		ID:         b.id,
		Name:       b.name,
		Contact:    "dispatch@example.com",
		Categories: b.categories,
	}
}
