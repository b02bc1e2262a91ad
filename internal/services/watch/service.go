// Package watch runs the detect-and-notify cycle: fetch the snapshot, diff
// it against the notified set, dispatch messages for qualifying roles and
// commit each identity only after its notification went out.
package watch

import (
	"context"
	"log"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"internwatch/internal/diff"
	"internwatch/internal/feed"
	"internwatch/internal/model"
	"internwatch/internal/notify"
	"internwatch/internal/store"
)

type Service struct {
	source   Source
	store    *store.Store
	notifier Notifier
	workers  int

	mu      sync.Mutex
	running bool
}

func NewService(source Source, st *store.Store, notifier Notifier, workers int) *Service {
	if workers <= 0 {
		workers = 1
	}
	return &Service{source: source, store: st, notifier: notifier, workers: workers}
}

// Run executes one cycle. Cycles never overlap: a trigger that fires while
// one is still executing is skipped with a warning, not queued.
func (s *Service) Run(ctx context.Context) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		log.Println("[watch] cycle already running; skipping trigger")
		return
	}
	s.running = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	s.cycle(ctx)
}

func (s *Service) cycle(ctx context.Context) {
	cycleID := uuid.NewString()[:8]

	raw, err := s.source.Fetch(ctx)
	if err != nil {
		log.Printf("[watch] cycle %s: fetch failed, retrying next interval: %v", cycleID, err)
		return
	}

	snapshot, err := feed.ParseSnapshot(raw)
	if err != nil {
		log.Printf("[watch] cycle %s: %v", cycleID, err)
		return
	}

	changes := diff.Compute(snapshot, s.store)
	if len(changes.New) == 0 && len(changes.Deactivated) == 0 {
		log.Printf("[watch] cycle %s: no updates (roles=%d notified=%d)",
			cycleID, len(snapshot.Roles), s.store.Size())
		return
	}

	stats := s.dispatchNew(ctx, cycleID, changes.New)
	if !stats.storeFailed {
		s.dispatchDeactivated(ctx, cycleID, changes.Deactivated, stats)
	}

	log.Printf("[watch] cycle %s summary: roles=%d proposed=%d notified=%d deactivated=%d failed=%d skipped=%d",
		cycleID, len(snapshot.Roles), len(changes.New), stats.notified.Load(),
		stats.deactivated.Load(), stats.failed.Load(), stats.skipped.Load())
}

type cycleStats struct {
	notified    atomic.Int64
	deactivated atomic.Int64
	failed      atomic.Int64
	skipped     atomic.Int64
	storeFailed bool
}

// dispatchNew sends notifications for qualifying roles through a bounded
// worker pool, in snapshot order. Commits go strictly after send success;
// a store failure cancels the remaining work so uncommitted keys are
// re-proposed next cycle instead of diverging from what was dispatched.
func (s *Service) dispatchNew(ctx context.Context, cycleID string, tasks []diff.Change) *cycleStats {
	stats := &cycleStats{}
	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(s.workers)

	for _, change := range tasks {
		change := change
		group.Go(func() error {
			body, err := notify.FormatNewRole(change.Role)
			if err != nil {
				log.Printf("[watch] cycle %s: key=%s skipping role: %v", cycleID, change.Key, err)
				stats.skipped.Add(1)
				return nil
			}

			if err := s.notifier.Send(gctx, change.Key, body); err != nil {
				log.Printf("[watch] cycle %s: key=%s dispatch failed (%s), key stays uncommitted: %v",
					cycleID, change.Key, notify.KindOf(err), err)
				stats.failed.Add(1)
				return nil
			}

			if err := s.store.Commit(gctx, model.NotifiedRole{
				Key:     change.Key,
				Company: change.Role.Company,
				Title:   change.Role.Title,
				URL:     change.Role.URL,
				Active:  true,
			}); err != nil {
				log.Printf("[watch] cycle %s: key=%s %v; aborting remaining commits", cycleID, change.Key, err)
				return err
			}

			stats.notified.Add(1)
			log.Printf("[watch] cycle %s: notified %s at %s (key=%s)",
				cycleID, change.Role.Title, change.Role.Company, change.Key)
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		stats.storeFailed = true
	}
	return stats
}

func (s *Service) dispatchDeactivated(ctx context.Context, cycleID string, tasks []diff.Change, stats *cycleStats) {
	for _, change := range tasks {
		body := notify.FormatDeactivation(change.Role)
		if err := s.notifier.Send(ctx, change.Key, body); err != nil {
			log.Printf("[watch] cycle %s: key=%s deactivation dispatch failed (%s): %v",
				cycleID, change.Key, notify.KindOf(err), err)
			stats.failed.Add(1)
			continue
		}
		if err := s.store.MarkInactive(ctx, change.Key); err != nil {
			log.Printf("[watch] cycle %s: key=%s %v; aborting remaining commits", cycleID, change.Key, err)
			stats.storeFailed = true
			return
		}
		stats.deactivated.Add(1)
		log.Printf("[watch] cycle %s: deactivated %s at %s (key=%s)",
			cycleID, change.Role.Title, change.Role.Company, change.Key)
	}
}
