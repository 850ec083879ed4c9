package auction

import (
	"context"
	"log/slog"

	"github.com/greencycle/waste-pickup-exchange/internal/domain/bid"
	"github.com/greencycle/waste-pickup-exchange/internal/domain/pickup"
	"github.com/greencycle/waste-pickup-exchange/internal/domain/vendor"
)

// LogNotifier is the in-process Notifier: it records events to the
// structured log. Real delivery (push, email) belongs to the
// surrounding application.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier creates a logging notifier.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) NotifyBiddingOpened(ctx context.Context, req *pickup.Request, vendors []*vendor.Vendor) {
	n.logger.InfoContext(ctx, "notifying eligible vendors",
		"request_id", req.ID,
		"category", req.WasteCategory,
		"vendor_count", len(vendors))
}

func (n *LogNotifier) NotifyBidWon(ctx context.Context, b *bid.Bid) {
	n.logger.InfoContext(ctx, "bid won",
		"bid_id", b.ID,
		"request_id", b.RequestID,
		"vendor_id", b.VendorID,
		"amount", b.Amount.String())
}

func (n *LogNotifier) NotifyBidLost(ctx context.Context, b *bid.Bid) {
	n.logger.InfoContext(ctx, "bid lost",
		"bid_id", b.ID,
		"request_id", b.RequestID,
		"vendor_id", b.VendorID)
}
