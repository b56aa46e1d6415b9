package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/Yo-Self/menu-mestre-facil-sub001/models"
	"github.com/Yo-Self/menu-mestre-facil-sub001/queue"
	"github.com/Yo-Self/menu-mestre-facil-sub001/store"
)

// fakeCallStore is an in-memory CallStore with knobs for failures and slow reads.
type fakeCallStore struct {
	mu          sync.Mutex
	calls       []models.WaiterCall
	foreign     []models.WaiterCall // dikembalikan apa adanya untuk uji isolasi
	listErr     error
	block       chan struct{}
	listCount   int
	inFlight    int
	maxInFlight int
}

func (f *fakeCallStore) add(restaurantID string, table int, createdAt time.Time) models.WaiterCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	call := models.WaiterCall{
		ID:           fmt.Sprintf("call-%d", len(f.calls)+1),
		RestaurantID: restaurantID,
		TableNumber:  table,
		Status:       models.CallStatusPending,
		CreatedAt:    createdAt,
	}
	f.calls = append(f.calls, call)
	return call
}

func (f *fakeCallStore) setErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listErr = err
}

func (f *fakeCallStore) setBlock(ch chan struct{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.block = ch
}

func (f *fakeCallStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listCount
}

func (f *fakeCallStore) ListPendingCalls(ctx context.Context, restaurantID string) ([]models.WaiterCall, error) {
	f.mu.Lock()
	f.listCount++
	f.inFlight++
	if f.inFlight > f.maxInFlight {
		f.maxInFlight = f.inFlight
	}
	block := f.block
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		f.inFlight--
		f.mu.Unlock()
	}()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil, &store.StoreError{Op: "list pending calls", Err: ctx.Err()}
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, &store.StoreError{Op: "list pending calls", Err: f.listErr}
	}
	var out []models.WaiterCall
	for _, c := range f.calls {
		if c.RestaurantID == restaurantID && c.Status == models.CallStatusPending {
			out = append(out, c)
		}
	}
	out = append(out, f.foreign...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeCallStore) CreateCall(ctx context.Context, restaurantID string, tableNumber int, notes *string) (*models.WaiterCall, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeCallStore) GetCall(ctx context.Context, callID string) (*models.WaiterCall, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeCallStore) UpdateCall(ctx context.Context, callID string, update store.CallUpdate) (*models.WaiterCall, error) {
	return nil, errors.New("not implemented")
}

type recordingPlayer struct {
	mu    sync.Mutex
	plays int
	err   error
	panic bool
}

func (r *recordingPlayer) Play(ctx context.Context) error {
	r.mu.Lock()
	r.plays++
	r.mu.Unlock()
	if r.panic {
		panic("speaker exploded")
	}
	return r.err
}

func (r *recordingPlayer) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.plays
}

type recordingNotices struct {
	mu      sync.Mutex
	notices []CallNotice
}

func (r *recordingNotices) PublishNotice(_ context.Context, n CallNotice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, n)
}

func (r *recordingNotices) all() []CallNotice {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]CallNotice{}, r.notices...)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []queue.WaiterCallEvent
}

func (r *recordingPublisher) PublishWaiterCallEvent(_ context.Context, ev queue.WaiterCallEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

func (r *recordingPublisher) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, ev := range r.events {
		out = append(out, ev.Type)
	}
	return out
}

// setupServiceDB -> SQLite in-memory per test
func setupServiceDB(t *testing.T) *gorm.DB {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Restaurant{}, &models.Menu{}, &models.MenuCategory{}, &models.Dish{}, &models.WaiterCall{}))
	return db
}
