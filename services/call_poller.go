package services

import (
	"context"
	"sync"
	"time"

	"github.com/Yo-Self/menu-mestre-facil-sub001/models"
	"github.com/Yo-Self/menu-mestre-facil-sub001/store"
	"github.com/Yo-Self/menu-mestre-facil-sub001/utils"
)

const DefaultRefreshInterval = 10 * time.Second

type PollerOptions struct {
	RestaurantID    string
	AutoRefresh     bool
	RefreshInterval time.Duration
}

func DefaultPollerOptions(restaurantID string) PollerOptions {
	return PollerOptions{
		RestaurantID:    restaurantID,
		AutoRefresh:     true,
		RefreshInterval: DefaultRefreshInterval,
	}
}

// CallSnapshot is a read-only copy of the poller state.
type CallSnapshot struct {
	RestaurantID string              `json:"restaurant_id"`
	Calls        []models.WaiterCall `json:"calls"`
	PendingCount int                 `json:"pending_count"`
	Loading      bool                `json:"loading"`
	Error        string              `json:"error,omitempty"`
	FetchedAt    *time.Time          `json:"fetched_at,omitempty"`
}

// CallPoller keeps the pending waiter calls of one restaurant up to date.
//
// Fetches are serialized: a timer tick that finds a fetch in flight is dropped,
// a manual FetchCalls waits for it. A response is applied only when it belongs to
// the current activation and was issued after the last applied response.
type CallPoller struct {
	store store.CallStore
	opts  PollerOptions

	mu         sync.RWMutex
	calls      []models.WaiterCall
	loading    bool
	lastErr    string
	fetchedAt  *time.Time
	active     bool
	generation uint64
	issued     uint64
	applied    uint64
	listeners  []func(CallSnapshot)
	cancel     context.CancelFunc
	done       chan struct{}

	fetchMu sync.Mutex
}

func NewCallPoller(s store.CallStore, opts PollerOptions) *CallPoller {
	if opts.RefreshInterval <= 0 {
		opts.RefreshInterval = DefaultRefreshInterval
	}
	return &CallPoller{store: s, opts: opts, calls: []models.WaiterCall{}}
}

func (p *CallPoller) RestaurantID() string {
	return p.opts.RestaurantID
}

// OnSnapshot registers a listener called after every successful fetch, in order.
// Listeners run on the fetching goroutine and must not call FetchCalls or Stop.
func (p *CallPoller) OnSnapshot(fn func(CallSnapshot)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.listeners = append(p.listeners, fn)
}

// Start mengaktifkan poller: fetch pertama berjalan sinkron, lalu ticker jika AutoRefresh.
// Tanpa RestaurantID poller tetap idle.
func (p *CallPoller) Start(ctx context.Context) {
	if p.opts.RestaurantID == "" {
		return
	}

	p.mu.Lock()
	if p.active {
		p.mu.Unlock()
		return
	}
	p.active = true
	p.generation++
	p.calls = []models.WaiterCall{}
	p.lastErr = ""
	p.fetchedAt = nil
	p.loading = true
	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	p.cancel = cancel
	p.done = done
	p.mu.Unlock()

	_ = p.fetch(runCtx, true)

	if !p.opts.AutoRefresh {
		close(done)
		return
	}
	go p.loop(runCtx, done)
}

func (p *CallPoller) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(p.opts.RefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = p.fetch(ctx, false)
		}
	}
}

// Stop cancels the timer and discards any response still in flight.
func (p *CallPoller) Stop() {
	p.mu.Lock()
	if !p.active {
		p.mu.Unlock()
		return
	}
	p.active = false
	p.generation++
	p.calls = []models.WaiterCall{}
	p.loading = false
	p.lastErr = ""
	p.fetchedAt = nil
	cancel, done := p.cancel, p.done
	p.cancel, p.done = nil, nil
	p.mu.Unlock()

	cancel()
	<-done
	utils.InfoLogger.Printf("[poller] stopped for restaurant %s", p.opts.RestaurantID)
}

func (p *CallPoller) Active() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.active
}

// FetchCalls -> refresh manual, menunggu fetch yang sedang berjalan
func (p *CallPoller) FetchCalls(ctx context.Context) error {
	if p.opts.RestaurantID == "" {
		return nil
	}
	return p.fetch(ctx, true)
}

func (p *CallPoller) fetch(ctx context.Context, wait bool) error {
	if wait {
		p.fetchMu.Lock()
	} else if !p.fetchMu.TryLock() {
		utils.InfoLogger.Debugf("[poller] tick dropped for restaurant %s: fetch in flight", p.opts.RestaurantID)
		return nil
	}
	defer p.fetchMu.Unlock()

	p.mu.Lock()
	if !p.active {
		p.mu.Unlock()
		return ErrPollerStopped
	}
	gen := p.generation
	p.issued++
	seq := p.issued
	p.loading = true
	p.mu.Unlock()

	calls, err := p.store.ListPendingCalls(ctx, p.opts.RestaurantID)

	p.mu.Lock()
	if !p.active || gen != p.generation || seq <= p.applied {
		p.mu.Unlock()
		utils.InfoLogger.Debugf("[poller] discarded stale response for restaurant %s", p.opts.RestaurantID)
		return nil
	}
	p.applied = seq
	p.loading = false

	if err != nil {
		// data lama tetap dipakai, tick berikutnya akan mencoba lagi
		p.lastErr = err.Error()
		p.mu.Unlock()
		utils.ErrorLogger.Printf("[poller] fetch pending calls for restaurant %s failed: %v", p.opts.RestaurantID, err)
		return err
	}

	p.calls = p.ownCalls(calls)
	p.lastErr = ""
	now := time.Now()
	p.fetchedAt = &now
	snap := p.snapshotLocked()
	listeners := append([]func(CallSnapshot){}, p.listeners...)
	p.mu.Unlock()

	for _, fn := range listeners {
		fn(snap)
	}
	return nil
}

// ownCalls drops rows that do not belong to this restaurant.
func (p *CallPoller) ownCalls(calls []models.WaiterCall) []models.WaiterCall {
	own := make([]models.WaiterCall, 0, len(calls))
	for _, c := range calls {
		if c.RestaurantID != p.opts.RestaurantID {
			utils.ErrorLogger.Printf("[poller] dropped call %s of restaurant %s from restaurant %s feed",
				c.ID, c.RestaurantID, p.opts.RestaurantID)
			continue
		}
		own = append(own, c)
	}
	return own
}

func (p *CallPoller) Snapshot() CallSnapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.snapshotLocked()
}

func (p *CallPoller) snapshotLocked() CallSnapshot {
	calls := make([]models.WaiterCall, len(p.calls))
	copy(calls, p.calls)
	return CallSnapshot{
		RestaurantID: p.opts.RestaurantID,
		Calls:        calls,
		PendingCount: len(calls),
		Loading:      p.loading,
		Error:        p.lastErr,
		FetchedAt:    p.fetchedAt,
	}
}
