package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	domainerrors "github.com/greencycle/waste-pickup-exchange/internal/domain/errors"
	"github.com/greencycle/waste-pickup-exchange/internal/domain/requester"
	"github.com/greencycle/waste-pickup-exchange/internal/domain/vendor"
	"github.com/greencycle/waste-pickup-exchange/internal/service/auction"
)

// directoryRepository reads the identity tables owned by the
// surrounding application: requester profiles, factories, and the
// vendor capability directory. Read-only from the auction core.
type directoryRepository struct {
	db *pgxpool.Pool
}

// NewDirectoryRepository creates a directory reader.
func NewDirectoryRepository(db *pgxpool.Pool) auction.Directory {
	return &directoryRepository{db: db}
}

// GetProfile returns a requester profile.
func (r *directoryRepository) GetProfile(ctx context.Context, id uuid.UUID) (*requester.Profile, error) {
	query := `SELECT id, name, address, phone FROM profiles WHERE id = $1`

	var p requester.Profile
	err := r.db.QueryRow(ctx, query, id).Scan(&p.ID, &p.Name, &p.Address, &p.Phone)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainerrors.ErrProfileNotFound
		}
		return nil, domainerrors.ErrStoreUnavailable.WithCause(fmt.Errorf("getting profile: %w", err))
	}
	return &p, nil
}

// GetFactory returns a factory record.
func (r *directoryRepository) GetFactory(ctx context.Context, id uuid.UUID) (*requester.Factory, error) {
	query := `SELECT id, name, location, waste_category FROM factories WHERE id = $1`

	var f requester.Factory
	err := r.db.QueryRow(ctx, query, id).Scan(&f.ID, &f.Name, &f.Location, &f.WasteCategory)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainerrors.ErrFactoryNotFound
		}
		return nil, domainerrors.ErrStoreUnavailable.WithCause(fmt.Errorf("getting factory: %w", err))
	}
	return &f, nil
}

// GetVendor returns a vendor capability record.
func (r *directoryRepository) GetVendor(ctx context.Context, id uuid.UUID) (*vendor.Vendor, error) {
	query := `SELECT id, name, contact, categories FROM vendors WHERE id = $1`

	var v vendor.Vendor
	err := r.db.QueryRow(ctx, query, id).Scan(&v.ID, &v.Name, &v.Contact, &v.Categories)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainerrors.ErrVendorNotFound
		}
		return nil, domainerrors.ErrStoreUnavailable.WithCause(fmt.Errorf("getting vendor: %w", err))
	}
	return &v, nil
}

// ListVendorsByCategory returns every vendor declaring the normalized
// category in its capability set.
func (r *directoryRepository) ListVendorsByCategory(ctx context.Context, category string) ([]*vendor.Vendor, error) {
	query := `
		SELECT id, name, contact, categories
		FROM vendors
		WHERE $1 = ANY(categories)
		ORDER BY name ASC
	`

	rows, err := r.db.Query(ctx, query, category)
	if err != nil {
		return nil, domainerrors.ErrStoreUnavailable.WithCause(fmt.Errorf("listing vendors by category: %w", err))
	}
	defer rows.Close()

	var vendors []*vendor.Vendor
	for rows.Next() {
		var v vendor.Vendor
		if err := rows.Scan(&v.ID, &v.Name, &v.Contact, &v.Categories); err != nil {
			return nil, fmt.Errorf("scanning vendor: %w", err)
		}
		vendors = append(vendors, &v)
	}
	if err := rows.Err(); err != nil {
		return nil, domainerrors.ErrStoreUnavailable.WithCause(fmt.Errorf("iterating vendor rows: %w", err))
	}
	return vendors, nil
}
