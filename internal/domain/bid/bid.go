package bid

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/greencycle/waste-pickup-exchange/internal/domain/values"
)

// Bid is a vendor's offer on an open pickup request. A vendor holds at
// most one bid per request; re-bidding updates the row in place.
type Bid struct {
	ID        uuid.UUID `json:"id"`
	RequestID uuid.UUID `json:"request_id"`
	VendorID  uuid.UUID `json:"vendor_id"`

	// Vendor identity denormalized at submission time so the ledger
	// stays readable after the directory changes.
	VendorName    string `json:"vendor_name"`
	VendorContact string `json:"vendor_contact"`

	Amount values.Money `json:"amount"`
	Status Status       `json:"status"`

	PlacedAt  time.Time `json:"placed_at"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Status int

const (
	StatusActive Status = iota
	StatusWon
	StatusLost
)

func (s Status) String() string {
	switch s {
	case StatusActive:
		return "active"
	case StatusWon:
		return "won"
	case StatusLost:
		return "lost"
	default:
		return "unknown"
	}
}

// ParseStatus converts a stored status string back to a Status.
func ParseStatus(s string) Status {
	switch s {
	case "active":
		return StatusActive
	case "won":
		return StatusWon
	case "lost":
		return StatusLost
	default:
		return StatusActive
	}
}

// MarshalJSON renders the status as its string form.
func (s Status) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

func (s *Status) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = ParseStatus(raw)
	return nil
}

// NewBid creates an active bid. Amount must be strictly positive.
func NewBid(requestID, vendorID uuid.UUID, vendorName, vendorContact string, amount values.Money) (*Bid, error) {
	if requestID == uuid.Nil {
		return nil, fmt.Errorf("request ID cannot be nil")
	}
	if vendorID == uuid.Nil {
		return nil, fmt.Errorf("vendor ID cannot be nil")
	}
	if !amount.IsPositive() {
		return nil, fmt.Errorf("bid amount must be positive")
	}

	now := clock.Now()
	return &Bid{
		ID:            uuid.New(),
		RequestID:     requestID,
		VendorID:      vendorID,
		VendorName:    vendorName,
		VendorContact: vendorContact,
		Amount:        amount,
		Status:        StatusActive,
		PlacedAt:      now,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// Rebid replaces the amount of an existing bid and reactivates it.
// Selection tie-breaks on PlacedAt, so the timestamp moves with the amount.
func (b *Bid) Rebid(amount values.Money) error {
	if !amount.IsPositive() {
		return fmt.Errorf("bid amount must be positive")
	}
	if b.Status != StatusActive {
		return fmt.Errorf("cannot rebid in status %s", b.Status)
	}
	now := clock.Now()
	b.Amount = amount
	b.PlacedAt = now
	b.UpdatedAt = now
	return nil
}

// Accept marks the bid as the auction winner. Terminal.
func (b *Bid) Accept() {
	b.Status = StatusWon
	b.UpdatedAt = clock.Now()
}

// Reject marks the bid as lost. Terminal.
func (b *Bid) Reject() {
	b.Status = StatusLost
	b.UpdatedAt = clock.Now()
}
