package dashboard

import (
	"context"
	"log"
	"sync"
	"time"

	"greencare-backend/internal/events"

	"gorm.io/gorm"
)

// Refresher keeps a cached Stats value current by recomputing whenever
// any watched collection changes. One instance per server.
type Refresher struct {
	db  *gorm.DB
	hub *events.Hub

	mu    sync.RWMutex
	stats Stats
	ok    bool

	subs []*events.Subscription
	stop chan struct{}
	done sync.WaitGroup
}

func NewRefresher(db *gorm.DB, hub *events.Hub) *Refresher {
	return &Refresher{db: db, hub: hub}
}

// Start computes the initial stats and subscribes to every watched
// collection. Change events are coalesced: a burst of writes triggers
// one recompute after the events drain.
func (r *Refresher) Start(ctx context.Context) error {
	if err := r.refresh(ctx); err != nil {
		return err
	}

	r.stop = make(chan struct{})
	kick := make(chan struct{}, 1)

	for _, name := range events.AllCollections() {
		sub := r.hub.Subscribe(name)
		r.subs = append(r.subs, sub)

		r.done.Add(1)
		go func(sub *events.Subscription) {
			defer r.done.Done()
			for {
				select {
				case _, open := <-sub.C:
					if !open {
						return
					}
					select {
					case kick <- struct{}{}:
					default:
					}
				case <-r.stop:
					return
				}
			}
		}(sub)
	}

	r.done.Add(1)
	go func() {
		defer r.done.Done()
		for {
			select {
			case <-kick:
				if err := r.refresh(context.Background()); err != nil {
					log.Printf("dashboard refresh failed: %v", err)
				}
			case <-r.stop:
				return
			}
		}
	}()

	return nil
}

func (r *Refresher) Stop() {
	if r.stop == nil {
		return
	}
	close(r.stop)
	for _, sub := range r.subs {
		r.hub.Unsubscribe(sub)
	}
	r.done.Wait()
	r.subs = nil
	r.stop = nil
}

func (r *Refresher) refresh(ctx context.Context) error {
	snap, err := LoadSnapshot(ctx, r.db)
	if err != nil {
		return err
	}
	stats := ComputeStats(snap, time.Now())

	r.mu.Lock()
	r.stats = stats
	r.ok = true
	r.mu.Unlock()
	return nil
}

// Stats returns the cached figures. ok is false only before the first
// successful refresh.
func (r *Refresher) Stats() (Stats, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.stats, r.ok
}
