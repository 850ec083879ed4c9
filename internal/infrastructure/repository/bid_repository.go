package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/greencycle/waste-pickup-exchange/internal/domain/bid"
	domainerrors "github.com/greencycle/waste-pickup-exchange/internal/domain/errors"
	"github.com/greencycle/waste-pickup-exchange/internal/domain/values"
	"github.com/greencycle/waste-pickup-exchange/internal/service/auction"
)

// bidRepository implements auction.BidRepository using PostgreSQL. The
// (request_id, vendor_id) unique constraint is what makes re-bidding an
// update-in-place rather than a second row.
type bidRepository struct {
	db *pgxpool.Pool
}

// NewBidRepository creates a new bid ledger repository.
func NewBidRepository(db *pgxpool.Pool) auction.BidRepository {
	return &bidRepository{db: db}
}

const bidColumns = `
	id, request_id, vendor_id, vendor_name, vendor_contact,
	amount_cents, currency, status, placed_at, created_at, updated_at`

// Upsert inserts a bid, or on (request_id, vendor_id) conflict updates
// the amount, refreshes placed_at, and resets the status to active. The
// write only lands while the owning request is still in bidding: a bid
// racing winner selection hits the guard instead of slipping into a
// resolved auction, and the caller gets ErrRequestNotBidding. The
// stored bid's identity is written back into b.
func (r *bidRepository) Upsert(ctx context.Context, b *bid.Bid) error {
	query := `
		INSERT INTO bids (
			id, request_id, vendor_id, vendor_name, vendor_contact,
			amount_cents, currency, status, placed_at, created_at, updated_at
		)
		SELECT $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11
		WHERE EXISTS (
			SELECT 1 FROM pickup_requests WHERE id = $2 AND status = 'bidding'
		)
		ON CONFLICT (request_id, vendor_id) DO UPDATE SET
			amount_cents   = EXCLUDED.amount_cents,
			currency       = EXCLUDED.currency,
			vendor_name    = EXCLUDED.vendor_name,
			vendor_contact = EXCLUDED.vendor_contact,
			status         = 'active',
			placed_at      = EXCLUDED.placed_at,
			updated_at     = EXCLUDED.updated_at
		RETURNING id, created_at
	`

	err := r.db.QueryRow(ctx, query,
		b.ID, b.RequestID, b.VendorID, b.VendorName, b.VendorContact,
		b.Amount.ToCents(), b.Amount.Currency(), b.Status.String(),
		b.PlacedAt, b.CreatedAt, b.UpdatedAt,
	).Scan(&b.ID, &b.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domainerrors.ErrRequestNotBidding
		}
		return domainerrors.ErrStoreUnavailable.WithCause(fmt.Errorf("upserting bid: %w", err))
	}
	return nil
}

// GetByRequestAndVendor retrieves a vendor's bid on a request.
func (r *bidRepository) GetByRequestAndVendor(ctx context.Context, requestID, vendorID uuid.UUID) (*bid.Bid, error) {
	query := `SELECT` + bidColumns + ` FROM bids WHERE request_id = $1 AND vendor_id = $2`

	b, err := scanBid(r.db.QueryRow(ctx, query, requestID, vendorID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainerrors.ErrBidNotFound
		}
		return nil, domainerrors.ErrStoreUnavailable.WithCause(fmt.Errorf("getting bid: %w", err))
	}
	return b, nil
}

// ListByRequest returns every bid on a request ordered amount DESC,
// placed_at ASC. This ordering is the single source of truth consumed
// by winner selection.
func (r *bidRepository) ListByRequest(ctx context.Context, requestID uuid.UUID) ([]*bid.Bid, error) {
	query := `
		SELECT` + bidColumns + `
		FROM bids
		WHERE request_id = $1
		ORDER BY amount_cents DESC, placed_at ASC
	`
	return r.queryBids(ctx, query, requestID)
}

// ListActiveByRequest returns only active bids, in selection order.
func (r *bidRepository) ListActiveByRequest(ctx context.Context, requestID uuid.UUID) ([]*bid.Bid, error) {
	query := `
		SELECT` + bidColumns + `
		FROM bids
		WHERE request_id = $1 AND status = 'active'
		ORDER BY amount_cents DESC, placed_at ASC
	`
	return r.queryBids(ctx, query, requestID)
}

// ListByVendor returns a vendor's bids across requests, newest first.
func (r *bidRepository) ListByVendor(ctx context.Context, vendorID uuid.UUID) ([]*bid.Bid, error) {
	query := `
		SELECT` + bidColumns + `
		FROM bids
		WHERE vendor_id = $1
		ORDER BY placed_at DESC
		LIMIT 100
	`
	return r.queryBids(ctx, query, vendorID)
}

// MarkWon sets a bid's status to won.
func (r *bidRepository) MarkWon(ctx context.Context, bidID uuid.UUID) error {
	return r.setStatus(ctx, bidID, bid.StatusWon)
}

// MarkLostExcept sets every other active bid on the request to lost.
func (r *bidRepository) MarkLostExcept(ctx context.Context, requestID, winnerBidID uuid.UUID) error {
	query := `
		UPDATE bids
		SET status = 'lost', updated_at = NOW()
		WHERE request_id = $1 AND id <> $2 AND status = 'active'
	`

	if _, err := r.db.Exec(ctx, query, requestID, winnerBidID); err != nil {
		return domainerrors.ErrStoreUnavailable.WithCause(fmt.Errorf("marking losing bids: %w", err))
	}
	return nil
}

func (r *bidRepository) setStatus(ctx context.Context, bidID uuid.UUID, status bid.Status) error {
	query := `UPDATE bids SET status = $2, updated_at = NOW() WHERE id = $1`

	tag, err := r.db.Exec(ctx, query, bidID, status.String())
	if err != nil {
		return domainerrors.ErrStoreUnavailable.WithCause(fmt.Errorf("updating bid status: %w", err))
	}
	if tag.RowsAffected() == 0 {
		return domainerrors.ErrBidNotFound
	}
	return nil
}

func (r *bidRepository) queryBids(ctx context.Context, query string, args ...any) ([]*bid.Bid, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, domainerrors.ErrStoreUnavailable.WithCause(fmt.Errorf("querying bids: %w", err))
	}
	defer rows.Close()

	var bids []*bid.Bid
	for rows.Next() {
		b, err := scanBid(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning bid: %w", err)
		}
		bids = append(bids, b)
	}
	if err := rows.Err(); err != nil {
		return nil, domainerrors.ErrStoreUnavailable.WithCause(fmt.Errorf("iterating bid rows: %w", err))
	}
	return bids, nil
}

func scanBid(row pgx.Row) (*bid.Bid, error) {
	var (
		b           bid.Bid
		amountCents int64
		currency    string
		statusStr   string
	)

	err := row.Scan(
		&b.ID, &b.RequestID, &b.VendorID, &b.VendorName, &b.VendorContact,
		&amountCents, &currency, &statusStr, &b.PlacedAt, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	amount, err := values.NewMoneyFromCents(amountCents, currency)
	if err != nil {
		return nil, fmt.Errorf("scanning bid amount: %w", err)
	}
	b.Amount = amount
	b.Status = bid.ParseStatus(statusStr)
	return &b, nil
}
