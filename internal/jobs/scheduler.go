package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"brandwatch/internal/db"
	"brandwatch/internal/models"
	"brandwatch/internal/tracking"
)

// BrandLister lists every tracked brand.
type BrandLister interface {
	ListBrands(ctx context.Context, page db.Page) ([]models.Brand, error)
}

// Refresher re-checks AI citations for a set of brands.
type Refresher interface {
	RefreshCitations(ctx context.Context, brands []models.Brand) (*tracking.RefreshSummary, error)
}

// Scheduler submits citation refreshes to the queue on a cron schedule.
type Scheduler struct {
	cron      *cron.Cron
	queue     *Queue
	brands    BrandLister
	refresher Refresher
}

// NewScheduler creates a scheduler. An empty spec creates one that only
// runs on Trigger.
func NewScheduler(spec string, queue *Queue, brands BrandLister, refresher Refresher) (*Scheduler, error) {
	s := &Scheduler{
		cron:      cron.New(),
		queue:     queue,
		brands:    brands,
		refresher: refresher,
	}
	if spec == "" {
		return s, nil
	}

	if _, err := s.cron.AddFunc(spec, func() { s.Trigger() }); err != nil {
		return nil, fmt.Errorf("invalid refresh schedule %q: %w", spec, err)
	}
	return s, nil
}

// Start begins running scheduled refreshes.
func (s *Scheduler) Start() {
	if len(s.cron.Entries()) > 0 {
		slog.Info("citation refresh scheduled", "next", s.cron.Entries()[0].Next)
	}
	s.cron.Start()
}

// Stop stops the schedule and waits for a running trigger to return.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

// Trigger queues a refresh of every brand now.
func (s *Scheduler) Trigger() *Handle {
	return s.queue.Submit(Job{
		ID:     "refresh-" + time.Now().Format("20060102T150405"),
		Source: "refresh",
		Work:   s.refresh,
	})
}

// TriggerBrand queues a refresh of a single brand now.
func (s *Scheduler) TriggerBrand(brand models.Brand) *Handle {
	return s.queue.Submit(Job{
		ID:     "refresh-" + brand.ID.String() + "-" + time.Now().Format("20060102T150405"),
		Source: "refresh",
		Work: func(ctx context.Context) error {
			return s.refreshBrands(ctx, []models.Brand{brand})
		},
	})
}

func (s *Scheduler) refresh(ctx context.Context) error {
	brands, err := s.brands.ListBrands(ctx, db.Page{})
	if err != nil {
		return fmt.Errorf("list brands: %w", err)
	}
	if len(brands) == 0 {
		slog.Info("citation refresh skipped, no brands")
		return nil
	}
	return s.refreshBrands(ctx, brands)
}

func (s *Scheduler) refreshBrands(ctx context.Context, brands []models.Brand) error {
	summary, err := s.refresher.RefreshCitations(ctx, brands)
	if err != nil {
		return err
	}
	slog.Info("citation refresh complete",
		"brands", summary.BrandsChecked,
		"checks", summary.TotalChecks,
		"mentions", summary.TotalMentions,
	)
	return nil
}
