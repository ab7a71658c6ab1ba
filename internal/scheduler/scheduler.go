// Package scheduler runs the periodic series-extension job and drains the
// notification outbox.
package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/parishplan/parishplan/internal/models"
)

const outboxDrainLimit = 200

// RootSource lists the series roots that may need extension.
type RootSource interface {
	ListRecurringRoots(ctx context.Context) ([]*models.Event, error)
}

// Extender appends occurrences so each series reaches the target date.
type Extender interface {
	Extend(ctx context.Context, rootID uuid.UUID, targetDate time.Time) ([]uuid.UUID, error)
}

// Outbox exposes pending notification entries.
type Outbox interface {
	DueOutbox(ctx context.Context, limit int) ([]*models.OutboxEntry, error)
	MarkOutboxProcessed(ctx context.Context, ids []uuid.UUID) error
}

type Scheduler struct {
	cron          *cron.Cron
	roots         RootSource
	extender      Extender
	outbox        Outbox
	horizonMonths int
	notifyCh      chan struct{}
}

func New(roots RootSource, extender Extender, outbox Outbox, horizonMonths int) *Scheduler {
	if horizonMonths < 1 {
		horizonMonths = 6
	}
	return &Scheduler{
		cron:          cron.New(),
		roots:         roots,
		extender:      extender,
		outbox:        outbox,
		horizonMonths: horizonMonths,
		notifyCh:      make(chan struct{}, 1),
	}
}

// Notify triggers an immediate run. Non-blocking if a run is already pending.
func (s *Scheduler) Notify() {
	select {
	case s.notifyCh <- struct{}{}:
	default:
		// Channel already has a pending notification, skip
	}
}

// Start registers the cron schedule and blocks until the context is
// cancelled. cronSpec uses the standard 5-field format.
func (s *Scheduler) Start(ctx context.Context, cronSpec string) error {
	if _, err := s.cron.AddFunc(cronSpec, func() { s.run(ctx) }); err != nil {
		return err
	}
	s.cron.Start()
	log.Printf("Scheduler started (spec %q)", cronSpec)

	// Run once at startup so a fresh deployment gets its tails extended
	// without waiting for the first scheduled fire.
	s.run(ctx)

	for {
		select {
		case <-ctx.Done():
			<-s.cron.Stop().Done()
			log.Println("Scheduler stopped")
			return nil
		case <-s.notifyCh:
			log.Println("Scheduler triggered by notification")
			s.run(ctx)
		}
	}
}

func (s *Scheduler) run(ctx context.Context) {
	s.extendSeries(ctx)
	s.drainOutbox(ctx)
}

// extendSeries walks every recurring root and extends its tail out to the
// rolling horizon. Extension is idempotent, so an overlapping run only
// costs a read.
func (s *Scheduler) extendSeries(ctx context.Context) {
	roots, err := s.roots.ListRecurringRoots(ctx)
	if err != nil {
		log.Printf("Failed to list recurring roots: %v", err)
		return
	}

	target := time.Now().AddDate(0, s.horizonMonths, 0)
	var created int
	for _, root := range roots {
		ids, err := s.extender.Extend(ctx, root.ID, target)
		if err != nil {
			log.Printf("Failed to extend series %s: %v", root.ID, err)
			continue
		}
		created += len(ids)
	}
	if created > 0 {
		log.Printf("Extended %d series, %d new occurrences", len(roots), created)
	}
}

// drainOutbox collects pending entries by batch key and marks them
// processed. Delivery itself lives outside this subsystem; this is the
// hook where a mailer would consume each batch.
func (s *Scheduler) drainOutbox(ctx context.Context) {
	entries, err := s.outbox.DueOutbox(ctx, outboxDrainLimit)
	if err != nil {
		log.Printf("Failed to read outbox: %v", err)
		return
	}
	if len(entries) == 0 {
		return
	}

	batches := make(map[string]int)
	ids := make([]uuid.UUID, len(entries))
	for i, e := range entries {
		batches[e.BatchKey]++
		ids[i] = e.ID
	}
	for key, n := range batches {
		log.Printf("Outbox batch %s ready with %d entries", key, n)
	}

	if err := s.outbox.MarkOutboxProcessed(ctx, ids); err != nil {
		log.Printf("Failed to mark outbox entries processed: %v", err)
	}
}
