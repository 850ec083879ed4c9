package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	domainerrors "github.com/greencycle/waste-pickup-exchange/internal/domain/errors"
	"github.com/greencycle/waste-pickup-exchange/internal/domain/pickup"
	"github.com/greencycle/waste-pickup-exchange/internal/domain/values"
	"github.com/greencycle/waste-pickup-exchange/internal/service/auction"
)

// pickupRepository implements auction.PickupRepository using PostgreSQL.
// All state transitions go through status-guarded UPDATEs; the guard is
// the only concurrency-control primitive in the system.
type pickupRepository struct {
	db *pgxpool.Pool
}

// NewPickupRepository creates a new pickup request repository.
func NewPickupRepository(db *pgxpool.Pool) auction.PickupRepository {
	return &pickupRepository{db: db}
}

const pickupColumns = `
	id, requester_id, requester_name, address, waste_category,
	quantity_kg, status, assigned_vendor_id, winning_amount_cents,
	currency, window_ends_at, created_at, updated_at`

// Create stores a new request. The partial unique index on
// (requester_id, waste_category) over open statuses backs the
// one-open-request invariant; a violation means a concurrent create won
// the race and surfaces as ErrDuplicateRequest.
func (r *pickupRepository) Create(ctx context.Context, req *pickup.Request) error {
	query := `
		INSERT INTO pickup_requests (
			id, requester_id, requester_name, address, waste_category,
			quantity_kg, status, window_ends_at, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.db.Exec(ctx, query,
		req.ID, req.RequesterID, req.RequesterName, req.Address, req.WasteCategory,
		req.Quantity, req.Status.String(), req.WindowEndsAt, req.CreatedAt, req.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrDuplicateRequest
		}
		return domainerrors.ErrStoreUnavailable.WithCause(fmt.Errorf("creating pickup request: %w", err))
	}
	return nil
}

// GetByID retrieves a request by id.
func (r *pickupRepository) GetByID(ctx context.Context, id uuid.UUID) (*pickup.Request, error) {
	query := `SELECT` + pickupColumns + ` FROM pickup_requests WHERE id = $1`

	req, err := scanPickup(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainerrors.ErrRequestNotFound
		}
		return nil, domainerrors.ErrStoreUnavailable.WithCause(fmt.Errorf("getting pickup request: %w", err))
	}
	return req, nil
}

// FindOpenByRequesterAndCategory returns a non-terminal request for the
// (requester, category) pair, or nil when none exists. Backs the
// duplicate-request check at creation.
func (r *pickupRepository) FindOpenByRequesterAndCategory(ctx context.Context, requesterID uuid.UUID, category string) (*pickup.Request, error) {
	query := `
		SELECT` + pickupColumns + `
		FROM pickup_requests
		WHERE requester_id = $1
		AND waste_category = $2
		AND status IN ('pending', 'bidding', 'assigned')
		LIMIT 1
	`

	req, err := scanPickup(r.db.QueryRow(ctx, query, requesterID, category))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, domainerrors.ErrStoreUnavailable.WithCause(fmt.Errorf("finding open pickup request: %w", err))
	}
	return req, nil
}

// UpdateStatusIf applies a guarded status transition. Returns false
// without error when the guard misses, meaning another writer resolved
// the request first.
func (r *pickupRepository) UpdateStatusIf(ctx context.Context, id uuid.UUID, from, to pickup.Status) (bool, error) {
	query := `
		UPDATE pickup_requests
		SET status = $3, updated_at = NOW()
		WHERE id = $1 AND status = $2
	`

	tag, err := r.db.Exec(ctx, query, id, from.String(), to.String())
	if err != nil {
		return false, domainerrors.ErrStoreUnavailable.WithCause(fmt.Errorf("updating pickup status: %w", err))
	}
	return tag.RowsAffected() == 1, nil
}

// AssignIf applies the guarded bidding→assigned transition, recording
// the winning vendor and amount in the same write.
func (r *pickupRepository) AssignIf(ctx context.Context, id, vendorID uuid.UUID, amount values.Money) (bool, error) {
	query := `
		UPDATE pickup_requests
		SET status = 'assigned',
		    assigned_vendor_id = $2,
		    winning_amount_cents = $3,
		    currency = $4,
		    updated_at = NOW()
		WHERE id = $1 AND status = 'bidding'
	`

	tag, err := r.db.Exec(ctx, query, id, vendorID, amount.ToCents(), amount.Currency())
	if err != nil {
		return false, domainerrors.ErrStoreUnavailable.WithCause(fmt.Errorf("assigning pickup request: %w", err))
	}
	return tag.RowsAffected() == 1, nil
}

// ListOverdue returns requests still pending or bidding past their
// window end. Input to the recovery sweep.
func (r *pickupRepository) ListOverdue(ctx context.Context, now time.Time) ([]*pickup.Request, error) {
	query := `
		SELECT` + pickupColumns + `
		FROM pickup_requests
		WHERE status IN ('pending', 'bidding')
		AND window_ends_at <= $1
		ORDER BY window_ends_at ASC
		LIMIT 500
	`

	rows, err := r.db.Query(ctx, query, now)
	if err != nil {
		return nil, domainerrors.ErrStoreUnavailable.WithCause(fmt.Errorf("listing overdue requests: %w", err))
	}
	defer rows.Close()

	return collectPickups(rows)
}

// ListByRequester returns a requester's requests, newest first.
func (r *pickupRepository) ListByRequester(ctx context.Context, requesterID uuid.UUID) ([]*pickup.Request, error) {
	query := `
		SELECT` + pickupColumns + `
		FROM pickup_requests
		WHERE requester_id = $1
		ORDER BY created_at DESC
		LIMIT 100
	`

	rows, err := r.db.Query(ctx, query, requesterID)
	if err != nil {
		return nil, domainerrors.ErrStoreUnavailable.WithCause(fmt.Errorf("listing requests by requester: %w", err))
	}
	defer rows.Close()

	return collectPickups(rows)
}

// ListBidding returns all requests currently accepting bids.
func (r *pickupRepository) ListBidding(ctx context.Context) ([]*pickup.Request, error) {
	query := `
		SELECT` + pickupColumns + `
		FROM pickup_requests
		WHERE status = 'bidding'
		ORDER BY window_ends_at ASC
		LIMIT 500
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, domainerrors.ErrStoreUnavailable.WithCause(fmt.Errorf("listing bidding requests: %w", err))
	}
	defer rows.Close()

	return collectPickups(rows)
}

// CountBidding reports how many requests are currently accepting bids.
// Feeds the open-auctions gauge.
func (r *pickupRepository) CountBidding(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM pickup_requests WHERE status = 'bidding'`).Scan(&n)
	if err != nil {
		return 0, domainerrors.ErrStoreUnavailable.WithCause(fmt.Errorf("counting bidding requests: %w", err))
	}
	return n, nil
}

func collectPickups(rows pgx.Rows) ([]*pickup.Request, error) {
	var requests []*pickup.Request
	for rows.Next() {
		req, err := scanPickup(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning pickup request: %w", err)
		}
		requests = append(requests, req)
	}
	if err := rows.Err(); err != nil {
		return nil, domainerrors.ErrStoreUnavailable.WithCause(fmt.Errorf("iterating pickup rows: %w", err))
	}
	return requests, nil
}

func scanPickup(row pgx.Row) (*pickup.Request, error) {
	var (
		req         pickup.Request
		statusStr   string
		vendorID    *uuid.UUID
		amountCents *int64
		currency    *string
	)

	err := row.Scan(
		&req.ID, &req.RequesterID, &req.RequesterName, &req.Address, &req.WasteCategory,
		&req.Quantity, &statusStr, &vendorID, &amountCents,
		&currency, &req.WindowEndsAt, &req.CreatedAt, &req.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	req.Status = pickup.ParseStatus(statusStr)
	req.AssignedVendorID = vendorID
	if amountCents != nil && currency != nil {
		money, err := values.NewMoneyFromCents(*amountCents, *currency)
		if err != nil {
			return nil, fmt.Errorf("scanning winning amount: %w", err)
		}
		req.WinningAmount = &money
	}
	return &req, nil
}
