package job

import (
	"context"
	"log"
	"time"

	"tothemoon/internal/domain"
	"tothemoon/internal/stream"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const globalRefreshInterval = 5 * time.Minute

// ListingPoller keeps the top listing page warm in the cache and pushes each
// refresh to the live feed.
type ListingPoller struct {
	tracer       trace.Tracer
	market       ListingRefresher
	publisher    SnapshotPublisher
	query        domain.PageQuery
	pollInterval time.Duration
	now          func() time.Time
}

type ListingRefresher interface {
	RefreshListing(ctx context.Context, q domain.PageQuery) ([]domain.CoinSummary, error)
	Global(ctx context.Context) (*domain.GlobalStats, error)
}

type SnapshotPublisher interface {
	Broadcast(snap stream.Snapshot)
}

func NewListingPoller(
	tracer trace.Tracer,
	market ListingRefresher,
	publisher SnapshotPublisher,
	pageSize int,
	pollIntervalSecs int,
) *ListingPoller {
	if !domain.ValidPageSize(pageSize) {
		pageSize = domain.DefaultPageSize
	}
	return &ListingPoller{
		tracer:       tracer,
		market:       market,
		publisher:    publisher,
		query:        domain.PageQuery{Page: 1, PageSize: pageSize},
		pollInterval: time.Duration(pollIntervalSecs) * time.Second,
		now:          time.Now,
	}
}

// Start launches background polling goroutines. Blocks until ctx is cancelled.
func (p *ListingPoller) Start(ctx context.Context) {
	log.Println("Listing poller starting...")

	go pollLoop(ctx, "top-listing", p.pollInterval, p.refreshTop)
	go pollLoop(ctx, "global-stats", globalRefreshInterval, p.refreshGlobal)

	<-ctx.Done()
	log.Println("Listing poller stopped")
}

func (p *ListingPoller) refreshTop(ctx context.Context) error {
	ctx, span := p.tracer.Start(ctx, "listing-poller.refresh-top")
	defer span.End()
	span.SetAttributes(attribute.String("order", p.query.Order()))

	rows, err := p.market.RefreshListing(ctx, p.query)
	if err != nil {
		span.RecordError(err)
		return err
	}
	if p.publisher != nil {
		p.publisher.Broadcast(stream.NewSnapshot(p.query, rows, p.now()))
	}
	log.Printf("Refreshed top listing (%d coins)", len(rows))
	return nil
}

func (p *ListingPoller) refreshGlobal(ctx context.Context) error {
	_, err := p.market.Global(ctx)
	return err
}

func pollLoop(ctx context.Context, name string, interval time.Duration, fn func(context.Context) error) {
	// Run immediately on start
	if err := fn(ctx); err != nil {
		log.Printf("poller %s initial run error: %v", name, err)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := fn(ctx); err != nil {
				log.Printf("poller %s error: %v", name, err)
			}
		}
	}
}
