package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Yo-Self/menu-mestre-facil-sub001/store"
	"github.com/Yo-Self/menu-mestre-facil-sub001/utils"
)

type watchEntry struct {
	poller    *CallPoller
	notifier  *CallNotifier
	refs      int
	startOnce sync.Once
}

// CallMonitor owns one poller + notifier per restaurant currently watched by a dashboard.
type CallMonitor struct {
	Store           store.CallStore
	RefreshInterval time.Duration
	// NewAlertPlayer dan Notices boleh nil (tanpa suara / tanpa toast)
	NewAlertPlayer func(restaurantID string) AlertPlayer
	Notices        NoticePublisher
	// OnSnapshot menerima setiap snapshot baru, mis. untuk broadcast websocket
	OnSnapshot func(CallSnapshot)

	ctx     context.Context
	cancel  context.CancelFunc
	mu      sync.Mutex
	watched map[string]*watchEntry
}

func NewCallMonitor(s store.CallStore, interval time.Duration) *CallMonitor {
	ctx, cancel := context.WithCancel(context.Background())
	return &CallMonitor{
		Store:           s,
		RefreshInterval: interval,
		ctx:             ctx,
		cancel:          cancel,
		watched:         make(map[string]*watchEntry),
	}
}

// Watch activates polling for restaurantID (or joins the running poller).
// The returned release func must be called once the watcher goes away.
func (m *CallMonitor) Watch(restaurantID string) (*CallPoller, func()) {
	m.mu.Lock()
	entry, ok := m.watched[restaurantID]
	if !ok {
		entry = m.newEntry(restaurantID)
		m.watched[restaurantID] = entry
	}
	entry.refs++
	m.mu.Unlock()

	entry.startOnce.Do(func() {
		entry.poller.Start(m.ctx)
		utils.InfoLogger.Printf("[monitor] watching restaurant %s", restaurantID)
	})

	var once sync.Once
	return entry.poller, func() {
		once.Do(func() { m.release(restaurantID, entry) })
	}
}

func (m *CallMonitor) newEntry(restaurantID string) *watchEntry {
	opts := DefaultPollerOptions(restaurantID)
	if m.RefreshInterval > 0 {
		opts.RefreshInterval = m.RefreshInterval
	}
	poller := NewCallPoller(m.Store, opts)

	var player AlertPlayer
	if m.NewAlertPlayer != nil {
		player = m.NewAlertPlayer(restaurantID)
	}
	notifier := NewCallNotifier(player, m.Notices)

	poller.OnSnapshot(func(snap CallSnapshot) { notifier.Observe(snap) })
	if m.OnSnapshot != nil {
		poller.OnSnapshot(m.OnSnapshot)
	}
	return &watchEntry{poller: poller, notifier: notifier}
}

func (m *CallMonitor) release(restaurantID string, entry *watchEntry) {
	m.mu.Lock()
	entry.refs--
	last := entry.refs == 0
	if last && m.watched[restaurantID] == entry {
		delete(m.watched, restaurantID)
	}
	m.mu.Unlock()

	if last {
		entry.poller.Stop()
		utils.InfoLogger.Printf("[monitor] released restaurant %s", restaurantID)
	}
}

func (m *CallMonitor) active(restaurantID string) *CallPoller {
	m.mu.Lock()
	defer m.mu.Unlock()
	if entry, ok := m.watched[restaurantID]; ok {
		return entry.poller
	}
	return nil
}

// Refresh memaksa fetch ulang jika restoran sedang dipantau; jika tidak, tidak ada yang perlu di-refresh.
func (m *CallMonitor) Refresh(ctx context.Context, restaurantID string) error {
	poller := m.active(restaurantID)
	if poller == nil {
		return nil
	}
	err := poller.FetchCalls(ctx)
	if errors.Is(err, ErrPollerStopped) {
		return nil
	}
	return err
}

// Pending returns the watched snapshot, or fetches once with a throwaway poller.
// The error is only set when no data could be produced at all.
func (m *CallMonitor) Pending(ctx context.Context, restaurantID string) (CallSnapshot, error) {
	if poller := m.active(restaurantID); poller != nil {
		return poller.Snapshot(), nil
	}

	opts := DefaultPollerOptions(restaurantID)
	opts.AutoRefresh = false
	poller := NewCallPoller(m.Store, opts)
	poller.Start(ctx)
	snap := poller.Snapshot()
	poller.Stop()

	if snap.Error != "" {
		return snap, errors.New(snap.Error)
	}
	return snap, nil
}

func (m *CallMonitor) Shutdown() {
	m.cancel()

	m.mu.Lock()
	entries := make([]*watchEntry, 0, len(m.watched))
	for id, entry := range m.watched {
		entries = append(entries, entry)
		delete(m.watched, id)
	}
	m.mu.Unlock()

	for _, entry := range entries {
		entry.poller.Stop()
	}
}
