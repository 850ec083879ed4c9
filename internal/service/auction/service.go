package auction

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/greencycle/waste-pickup-exchange/internal/domain/bid"
	domainerrors "github.com/greencycle/waste-pickup-exchange/internal/domain/errors"
	"github.com/greencycle/waste-pickup-exchange/internal/domain/pickup"
	"github.com/greencycle/waste-pickup-exchange/internal/domain/values"
	"github.com/greencycle/waste-pickup-exchange/internal/domain/vendor"
	"github.com/greencycle/waste-pickup-exchange/internal/infrastructure/config"
	"github.com/greencycle/waste-pickup-exchange/internal/metrics"
)

// Service runs the reverse auction: request lifecycle, bid ledger
// operations, and winner selection.
type Service struct {
	pickupRepo PickupRepository
	bidRepo    BidRepository
	directory  Directory
	notifier   Notifier
	scheduler  *Scheduler
	metrics    *metrics.Registry
	logger     *slog.Logger

	window   time.Duration
	currency string
}

// NewService wires the auction service. The scheduler is bound back to
// the service so timer fires resolve through the same code path as the
// recovery sweep.
func NewService(
	pickupRepo PickupRepository,
	bidRepo BidRepository,
	directory Directory,
	notifier Notifier,
	scheduler *Scheduler,
	registry *metrics.Registry,
	cfg config.AuctionConfig,
	logger *slog.Logger,
) *Service {
	s := &Service{
		pickupRepo: pickupRepo,
		bidRepo:    bidRepo,
		directory:  directory,
		notifier:   notifier,
		scheduler:  scheduler,
		metrics:    registry,
		logger:     logger,
		window:     cfg.BiddingWindow,
		currency:   cfg.Currency,
	}
	if scheduler != nil {
		scheduler.Bind(s)
	}
	return s
}

// CreateRequest opens an auction for a manual pickup request. The
// requester identity is resolved from the profile directory and
// denormalized onto the request.
func (s *Service) CreateRequest(ctx context.Context, requesterID uuid.UUID, category string, quantity float64) (*pickup.Request, error) {
	profile, err := s.directory.GetProfile(ctx, requesterID)
	if err != nil {
		return nil, err
	}
	return s.createAndOpen(ctx, requesterID, profile.Name, profile.Address, category, quantity)
}

// CreateFromBinAlert opens an auction from a factory bin-sensor alert.
// The factory's declared waste category drives eligibility.
func (s *Service) CreateFromBinAlert(ctx context.Context, factoryID uuid.UUID, quantity float64) (*pickup.Request, error) {
	factory, err := s.directory.GetFactory(ctx, factoryID)
	if err != nil {
		return nil, err
	}
	return s.createAndOpen(ctx, factoryID, factory.Name, factory.Location, factory.WasteCategory, quantity)
}

func (s *Service) createAndOpen(ctx context.Context, requesterID uuid.UUID, name, address, category string, quantity float64) (*pickup.Request, error) {
	existing, err := s.pickupRepo.FindOpenByRequesterAndCategory(ctx, requesterID, category)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domainerrors.ErrDuplicateRequest.WithDetails(map[string]any{
			"existing_request_id": existing.ID.String(),
		})
	}

	req, err := pickup.NewRequest(requesterID, name, address, category, quantity, s.window)
	if err != nil {
		return nil, domainerrors.NewValidationError("INVALID_REQUEST", err.Error()).WithCause(err)
	}

	if err := s.pickupRepo.Create(ctx, req); err != nil {
		return nil, err
	}

	if err := s.openBidding(ctx, req); err != nil {
		return nil, err
	}

	return req, nil
}

// openBidding moves a freshly created request into bidding, notifies
// eligible vendors, and schedules the expiration timer.
func (s *Service) openBidding(ctx context.Context, req *pickup.Request) error {
	applied, err := s.pickupRepo.UpdateStatusIf(ctx, req.ID, pickup.StatusPending, pickup.StatusBidding)
	if err != nil {
		return err
	}
	if !applied {
		// Someone else (a sweep seeing an overdue pending row) got
		// there first; nothing to open.
		return nil
	}
	req.Status = pickup.StatusBidding

	eligible, err := s.directory.ListVendorsByCategory(ctx, vendor.NormalizeCategory(req.WasteCategory))
	if err != nil {
		s.logger.WarnContext(ctx, "vendor notification lookup failed",
			"request_id", req.ID, "error", err)
	} else if s.notifier != nil {
		go s.notifier.NotifyBiddingOpened(context.WithoutCancel(ctx), req, eligible)
	}

	if s.scheduler != nil {
		s.scheduler.Schedule(req.ID, time.Until(req.WindowEndsAt))
	}
	if s.metrics != nil {
		s.metrics.AuctionOpened(ctx)
	}

	s.logger.InfoContext(ctx, "bidding opened",
		"request_id", req.ID,
		"category", req.WasteCategory,
		"window_ends_at", req.WindowEndsAt)

	return nil
}

// SubmitBid records a vendor's offer on an open request. Re-bidding by
// the same vendor updates the existing bid in place.
func (s *Service) SubmitBid(ctx context.Context, requestID, vendorID uuid.UUID, amountCents int64) (*bid.Bid, error) {
	start := time.Now()

	b, category, err := s.submitBid(ctx, requestID, vendorID, amountCents)

	if s.metrics != nil {
		s.metrics.RecordBidSubmission(ctx, float64(time.Since(start).Milliseconds()), category, err == nil)
	}
	return b, err
}

func (s *Service) submitBid(ctx context.Context, requestID, vendorID uuid.UUID, amountCents int64) (*bid.Bid, string, error) {
	if amountCents <= 0 {
		return nil, "", domainerrors.ErrInvalidAmount
	}
	amount, err := values.NewMoneyFromCents(amountCents, s.currency)
	if err != nil {
		return nil, "", domainerrors.ErrInvalidAmount.WithCause(err)
	}

	req, err := s.pickupRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, "", err
	}
	if req.Status != pickup.StatusBidding {
		return nil, req.WasteCategory, domainerrors.ErrRequestNotBidding
	}

	v, err := s.directory.GetVendor(ctx, vendorID)
	if err != nil {
		return nil, req.WasteCategory, err
	}
	if !v.Collects(req.WasteCategory) {
		return nil, req.WasteCategory, domainerrors.ErrVendorNotEligible.WithDetails(map[string]any{
			"category":   req.WasteCategory,
			"normalized": vendor.NormalizeCategory(req.WasteCategory),
		})
	}

	newBid, err := bid.NewBid(requestID, vendorID, v.Name, v.Contact, amount)
	if err != nil {
		return nil, req.WasteCategory, domainerrors.NewValidationError("INVALID_BID", err.Error()).WithCause(err)
	}

	// The upsert itself is guarded on the request still being in
	// bidding; if resolution landed between the status read above and
	// this write, the ledger rejects the bid with RequestNotBidding
	// instead of accepting it into a resolved auction.
	if err := s.bidRepo.Upsert(ctx, newBid); err != nil {
		return nil, req.WasteCategory, err
	}

	s.logger.InfoContext(ctx, "bid recorded",
		"request_id", requestID,
		"vendor_id", vendorID,
		"amount", newBid.Amount.String())

	return newBid, req.WasteCategory, nil
}

// GetRequest returns a single request.
func (s *Service) GetRequest(ctx context.Context, requestID uuid.UUID) (*pickup.Request, error) {
	return s.pickupRepo.GetByID(ctx, requestID)
}

// ListBids returns all bids for a request in selection order (amount
// descending, earliest first on ties).
func (s *Service) ListBids(ctx context.Context, requestID uuid.UUID) ([]*bid.Bid, error) {
	return s.bidRepo.ListByRequest(ctx, requestID)
}

// ListRequestsByRequester returns a requester's requests.
func (s *Service) ListRequestsByRequester(ctx context.Context, requesterID uuid.UUID) ([]*pickup.Request, error) {
	return s.pickupRepo.ListByRequester(ctx, requesterID)
}

// ListBidsByVendor returns a vendor's bids across requests.
func (s *Service) ListBidsByVendor(ctx context.Context, vendorID uuid.UUID) ([]*bid.Bid, error) {
	return s.bidRepo.ListByVendor(ctx, vendorID)
}

// ListOpenRequestsForVendor returns the bidding requests whose category
// the vendor collects.
func (s *Service) ListOpenRequestsForVendor(ctx context.Context, vendorID uuid.UUID) ([]*pickup.Request, error) {
	v, err := s.directory.GetVendor(ctx, vendorID)
	if err != nil {
		return nil, err
	}

	open, err := s.pickupRepo.ListBidding(ctx)
	if err != nil {
		return nil, err
	}

	matched := make([]*pickup.Request, 0, len(open))
	for _, req := range open {
		if v.Collects(req.WasteCategory) {
			matched = append(matched, req)
		}
	}
	return matched, nil
}

// MarkCompleted records confirmation of physical pickup from the
// external fulfillment workflow.
func (s *Service) MarkCompleted(ctx context.Context, requestID uuid.UUID) error {
	applied, err := s.pickupRepo.UpdateStatusIf(ctx, requestID, pickup.StatusAssigned, pickup.StatusCompleted)
	if err != nil {
		return err
	}
	if !applied {
		return domainerrors.NewBusinessError("REQUEST_NOT_ASSIGNED", "pickup request is not awaiting completion")
	}
	s.logger.InfoContext(ctx, "pickup completed", "request_id", requestID)
	return nil
}
