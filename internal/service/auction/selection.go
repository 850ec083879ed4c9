package auction

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/greencycle/waste-pickup-exchange/internal/domain/bid"
	domainerrors "github.com/greencycle/waste-pickup-exchange/internal/domain/errors"
	"github.com/greencycle/waste-pickup-exchange/internal/domain/pickup"
)

// ResolveAuction closes an elapsed auction: highest active bid wins,
// ties go to the earliest submission, zero bids cancel the request.
//
// It recomputes everything from current store state, never from
// captured values, so a duplicate timer fire, a sweep pass racing the
// timer, or a re-invocation after a mid-sequence crash all converge to
// the same final state. The guarded status transition is the arbiter:
// whichever resolver's write lands first wins and the other observes
// the guard miss as "already resolved".
func (s *Service) ResolveAuction(ctx context.Context, requestID uuid.UUID) error {
	req, err := s.pickupRepo.GetByID(ctx, requestID)
	if err != nil {
		return err
	}

	switch req.Status {
	case pickup.StatusBidding:
		// Fall through to selection.
	case pickup.StatusPending:
		// The request never made it into bidding (crash between create
		// and open). Once overdue it can only be cancelled.
		if !req.WindowElapsed(time.Now()) {
			return nil
		}
		if _, err := s.pickupRepo.UpdateStatusIf(ctx, requestID, pickup.StatusPending, pickup.StatusCancelled); err != nil {
			return err
		}
		return nil
	case pickup.StatusAssigned:
		// A previous resolution assigned the winner but may have died
		// before finalizing the ledger; converge the bid statuses.
		return s.finalizeAssigned(ctx, req)
	default:
		// Terminal; nothing to do.
		return nil
	}

	bids, err := s.bidRepo.ListActiveByRequest(ctx, requestID)
	if err != nil {
		return err
	}

	if len(bids) == 0 {
		applied, err := s.pickupRepo.UpdateStatusIf(ctx, requestID, pickup.StatusBidding, pickup.StatusCancelled)
		if err != nil {
			return err
		}
		if applied {
			if s.scheduler != nil {
				s.scheduler.Cancel(requestID)
			}
			s.recordResolution(ctx, req, nil)
			s.logger.InfoContext(ctx, "auction cancelled, no bids",
				"request_id", requestID, "category", req.WasteCategory)
		}
		return nil
	}

	// The repository already orders by amount DESC, placed_at ASC; the
	// re-sort keeps selection correct even for a ledger implementation
	// that does not.
	sortBids(bids)
	winner := bids[0]

	applied, err := s.pickupRepo.AssignIf(ctx, requestID, winner.VendorID, winner.Amount)
	if err != nil {
		return err
	}
	if !applied {
		// Lost the race to another resolver; not an error.
		return nil
	}
	if s.scheduler != nil {
		s.scheduler.Cancel(requestID)
	}

	if err := s.settleLedger(ctx, requestID, winner); err != nil {
		// The request is already assigned; a re-invocation (sweep or
		// retry) converges the remaining bid statuses.
		return err
	}

	s.recordResolution(ctx, req, winner)
	s.notifyOutcome(ctx, requestID, winner)

	s.logger.InfoContext(ctx, "auction resolved",
		"request_id", requestID,
		"category", req.WasteCategory,
		"winning_vendor_id", winner.VendorID,
		"winning_amount", winner.Amount.String())

	return nil
}

// finalizeAssigned re-applies the ledger writes for a request whose
// assignment landed but whose bid statuses may not have.
func (s *Service) finalizeAssigned(ctx context.Context, req *pickup.Request) error {
	if req.AssignedVendorID == nil {
		return nil
	}
	winner, err := s.bidRepo.GetByRequestAndVendor(ctx, req.ID, *req.AssignedVendorID)
	if err != nil {
		return err
	}
	if winner.Status == bid.StatusWon {
		// Winner already marked; only stray active losers could remain.
		return s.bidRepo.MarkLostExcept(ctx, req.ID, winner.ID)
	}
	return s.settleLedger(ctx, req.ID, winner)
}

func (s *Service) settleLedger(ctx context.Context, requestID uuid.UUID, winner *bid.Bid) error {
	if err := s.bidRepo.MarkWon(ctx, winner.ID); err != nil {
		return domainerrors.Wrap(err, "marking winning bid")
	}
	winner.Status = bid.StatusWon
	if err := s.bidRepo.MarkLostExcept(ctx, requestID, winner.ID); err != nil {
		return domainerrors.Wrap(err, "marking losing bids")
	}
	return nil
}

func (s *Service) recordResolution(ctx context.Context, req *pickup.Request, winner *bid.Bid) {
	if s.metrics == nil {
		return
	}
	duration := time.Since(req.CreatedAt).Seconds()
	if winner != nil {
		s.metrics.RecordResolution(ctx, duration, req.WasteCategory, true, winner.Amount.ToFloat64())
	} else {
		s.metrics.RecordResolution(ctx, duration, req.WasteCategory, false, 0)
	}
}

func (s *Service) notifyOutcome(ctx context.Context, requestID uuid.UUID, winner *bid.Bid) {
	if s.notifier == nil {
		return
	}
	bids, err := s.bidRepo.ListByRequest(ctx, requestID)
	if err != nil {
		s.logger.WarnContext(ctx, "outcome notification lookup failed",
			"request_id", requestID, "error", err)
		return
	}
	notifyCtx := context.WithoutCancel(ctx)
	go s.notifier.NotifyBidWon(notifyCtx, winner)
	for _, b := range bids {
		if b.ID != winner.ID {
			go s.notifier.NotifyBidLost(notifyCtx, b)
		}
	}
}

// sortBids orders by amount descending, then placed_at ascending so the
// first bidder wins ties. Stable to preserve ledger order beyond the
// tie-break key.
func sortBids(bids []*bid.Bid) {
	sort.SliceStable(bids, func(i, j int) bool {
		cmp := bids[i].Amount.Compare(bids[j].Amount)
		if cmp != 0 {
			return cmp > 0
		}
		return bids[i].PlacedAt.Before(bids[j].PlacedAt)
	})
}
