package metrics

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Registry holds the auction domain metrics.
type Registry struct {
	meter metric.Meter

	BidSubmissionDuration metric.Float64Histogram
	BidAcceptedCounter    metric.Int64Counter
	BidRejectedCounter    metric.Int64Counter

	AuctionOpenedCounter    metric.Int64Counter
	AuctionResolvedCounter  metric.Int64Counter
	AuctionCancelledCounter metric.Int64Counter
	AuctionDuration         metric.Float64Histogram
	WinningAmount           metric.Float64Histogram

	OpenAuctions          metric.Int64ObservableGauge
	SweepRecoveredCounter metric.Int64Counter

	mu          sync.RWMutex
	observeOpen func(context.Context) (int64, error)
}

// NewRegistry creates the metrics registry on the given meter name.
func NewRegistry(meterName string) (*Registry, error) {
	r := &Registry{meter: otel.Meter(meterName)}

	var err error
	r.BidSubmissionDuration, err = r.meter.Float64Histogram(
		"wpe.bid.submission_duration",
		metric.WithDescription("Bid submission handling duration in milliseconds"),
		metric.WithUnit("ms"),
		metric.WithExplicitBucketBoundaries(0.5, 1, 5, 10, 50, 100, 500, 1000),
	)
	if err != nil {
		return nil, err
	}

	r.BidAcceptedCounter, err = r.meter.Int64Counter(
		"wpe.bid.accepted_total",
		metric.WithDescription("Total bids accepted into the ledger"),
	)
	if err != nil {
		return nil, err
	}

	r.BidRejectedCounter, err = r.meter.Int64Counter(
		"wpe.bid.rejected_total",
		metric.WithDescription("Total bids rejected at validation"),
	)
	if err != nil {
		return nil, err
	}

	r.AuctionOpenedCounter, err = r.meter.Int64Counter(
		"wpe.auction.opened_total",
		metric.WithDescription("Total auctions opened for bidding"),
	)
	if err != nil {
		return nil, err
	}

	r.AuctionResolvedCounter, err = r.meter.Int64Counter(
		"wpe.auction.resolved_total",
		metric.WithDescription("Total auctions resolved with a winner"),
	)
	if err != nil {
		return nil, err
	}

	r.AuctionCancelledCounter, err = r.meter.Int64Counter(
		"wpe.auction.cancelled_total",
		metric.WithDescription("Total auctions cancelled with zero bids"),
	)
	if err != nil {
		return nil, err
	}

	r.AuctionDuration, err = r.meter.Float64Histogram(
		"wpe.auction.duration",
		metric.WithDescription("Time from request creation to resolution in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(60, 120, 180, 240, 300, 360, 600, 1800),
	)
	if err != nil {
		return nil, err
	}

	r.WinningAmount, err = r.meter.Float64Histogram(
		"wpe.auction.winning_amount",
		metric.WithDescription("Winning bid amounts in currency units"),
		metric.WithExplicitBucketBoundaries(1, 10, 50, 100, 500, 1000, 5000),
	)
	if err != nil {
		return nil, err
	}

	r.SweepRecoveredCounter, err = r.meter.Int64Counter(
		"wpe.sweep.recovered_total",
		metric.WithDescription("Overdue requests resolved by the recovery sweep"),
	)
	if err != nil {
		return nil, err
	}

	r.OpenAuctions, err = r.meter.Int64ObservableGauge(
		"wpe.auction.open_total",
		metric.WithDescription("Requests currently in the bidding state"),
		metric.WithInt64Callback(func(ctx context.Context, o metric.Int64Observer) error {
			r.mu.RLock()
			observe := r.observeOpen
			r.mu.RUnlock()
			if observe == nil {
				return nil
			}
			n, err := observe(ctx)
			if err != nil {
				return err
			}
			o.Observe(n)
			return nil
		}),
	)
	if err != nil {
		return nil, err
	}

	return r, nil
}

// RegisterOpenAuctionsObserver wires the open-auctions gauge to a
// store-backed count. The gauge stays silent until an observer is
// registered; a process-local counter would drift the moment a sweep in
// another process resolved an auction, or on restart.
func (r *Registry) RegisterOpenAuctionsObserver(fn func(context.Context) (int64, error)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.observeOpen = fn
}

// AuctionOpened counts a request entering bidding.
func (r *Registry) AuctionOpened(ctx context.Context) {
	r.AuctionOpenedCounter.Add(ctx, 1)
}

// RecordBidSubmission records the outcome and latency of one submission.
func (r *Registry) RecordBidSubmission(ctx context.Context, durationMS float64, category string, accepted bool) {
	attrs := metric.WithAttributes(
		attribute.String("category", category),
		attribute.Bool("accepted", accepted),
	)
	r.BidSubmissionDuration.Record(ctx, durationMS, attrs)
	if accepted {
		r.BidAcceptedCounter.Add(ctx, 1, attrs)
	} else {
		r.BidRejectedCounter.Add(ctx, 1, attrs)
	}
}

// RecordResolution records an auction outcome.
func (r *Registry) RecordResolution(ctx context.Context, durationSec float64, category string, won bool, amount float64) {
	attrs := metric.WithAttributes(attribute.String("category", category))
	r.AuctionDuration.Record(ctx, durationSec, attrs)
	if won {
		r.AuctionResolvedCounter.Add(ctx, 1, attrs)
		r.WinningAmount.Record(ctx, amount, attrs)
	} else {
		r.AuctionCancelledCounter.Add(ctx, 1, attrs)
	}
}
