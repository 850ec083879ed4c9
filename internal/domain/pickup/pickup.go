package pickup

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/greencycle/waste-pickup-exchange/internal/domain/values"
)

// Request is a waste pickup request running a time-boxed reverse auction.
// It is created on a bin alert or a manual request, opens a bidding window
// immediately, and is resolved exactly once when the window elapses.
type Request struct {
	ID            uuid.UUID `json:"id"`
	RequesterID   uuid.UUID `json:"requester_id"`
	RequesterName string    `json:"requester_name"`
	Address       string    `json:"address"`
	WasteCategory string    `json:"waste_category"`
	Quantity      float64   `json:"quantity_kg"`
	Status        Status    `json:"status"`

	// Auction outcome
	AssignedVendorID *uuid.UUID    `json:"assigned_vendor_id,omitempty"`
	WinningAmount    *values.Money `json:"winning_amount,omitempty"`

	// Window timestamps
	WindowEndsAt time.Time `json:"window_ends_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Status int

const (
	StatusPending Status = iota
	StatusBidding
	StatusAssigned
	StatusCompleted
	StatusCancelled
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusBidding:
		return "bidding"
	case StatusAssigned:
		return "assigned"
	case StatusCompleted:
		return "completed"
	case StatusCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// ParseStatus converts a stored status string back to a Status.
func ParseStatus(s string) Status {
	switch s {
	case "pending":
		return StatusPending
	case "bidding":
		return StatusBidding
	case "assigned":
		return StatusAssigned
	case "completed":
		return StatusCompleted
	case "cancelled":
		return StatusCancelled
	default:
		return StatusPending
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

// IsTerminal reports whether no further transition may fire on the request.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// IsOpen reports whether the request still counts against the one-active-
// request-per-(requester, category) constraint.
func (s Status) IsOpen() bool {
	return s == StatusPending || s == StatusBidding || s == StatusAssigned
}

// NewRequest creates a pending request whose bidding window closes
// window after creation.
func NewRequest(requesterID uuid.UUID, requesterName, address, category string, quantity float64, window time.Duration) (*Request, error) {
	if requesterID == uuid.Nil {
		return nil, fmt.Errorf("requester ID cannot be nil")
	}
	if category == "" {
		return nil, fmt.Errorf("waste category cannot be empty")
	}
	if quantity <= 0 {
		return nil, fmt.Errorf("quantity must be positive")
	}
	if window <= 0 {
		return nil, fmt.Errorf("bidding window must be positive")
	}

	now := clock.Now()
	return &Request{
		ID:            uuid.New(),
		RequesterID:   requesterID,
		RequesterName: requesterName,
		Address:       address,
		WasteCategory: category,
		Quantity:      quantity,
		Status:        StatusPending,
		WindowEndsAt:  now.Add(window),
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// OpenBidding transitions the request from pending to bidding.
func (r *Request) OpenBidding() error {
	if r.Status != StatusPending {
		return fmt.Errorf("cannot open bidding from status %s", r.Status)
	}
	r.Status = StatusBidding
	r.UpdatedAt = clock.Now()
	return nil
}

// Assign records the auction winner. Only valid while bidding.
func (r *Request) Assign(vendorID uuid.UUID, amount values.Money) error {
	if r.Status != StatusBidding {
		return fmt.Errorf("cannot assign from status %s", r.Status)
	}
	if vendorID == uuid.Nil {
		return fmt.Errorf("vendor ID cannot be nil")
	}
	r.Status = StatusAssigned
	r.AssignedVendorID = &vendorID
	r.WinningAmount = &amount
	r.UpdatedAt = clock.Now()
	return nil
}

// Cancel terminates a request that never found a winner.
func (r *Request) Cancel() error {
	if r.Status.IsTerminal() {
		return fmt.Errorf("cannot cancel from status %s", r.Status)
	}
	r.Status = StatusCancelled
	r.UpdatedAt = clock.Now()
	return nil
}

// Complete marks physical pickup as confirmed. Driven by the external
// fulfillment workflow.
func (r *Request) Complete() error {
	if r.Status != StatusAssigned {
		return fmt.Errorf("cannot complete from status %s", r.Status)
	}
	r.Status = StatusCompleted
	r.UpdatedAt = clock.Now()
	return nil
}

// WindowElapsed reports whether the bidding window has closed at now.
func (r *Request) WindowElapsed(now time.Time) bool {
	return !now.Before(r.WindowEndsAt)
}
