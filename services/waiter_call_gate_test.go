package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Yo-Self/menu-mestre-facil-sub001/models"
	"github.com/Yo-Self/menu-mestre-facil-sub001/store"
	"github.com/Yo-Self/menu-mestre-facil-sub001/utils"
)

type fakeFlagStore struct {
	mu           sync.Mutex
	menus        map[string]bool
	owners       map[string]string
	restaurants  map[string]bool
	err          error
	lookups      int
	preferActive []bool
}

func (f *fakeFlagStore) GetMenuFlag(_ context.Context, restaurantID, menuID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lookups++
	if f.err != nil {
		return false, f.err
	}
	v, ok := f.menus[menuID]
	if !ok {
		return false, store.ErrNotFound
	}
	if owner, scoped := f.owners[menuID]; restaurantID != "" && scoped && owner != restaurantID {
		return false, store.ErrNotFound
	}
	return v, nil
}

func (f *fakeFlagStore) GetRestaurantMenuFlag(_ context.Context, restaurantID string, preferActive bool) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lookups++
	f.preferActive = append(f.preferActive, preferActive)
	if f.err != nil {
		return false, f.err
	}
	v, ok := f.restaurants[restaurantID]
	if !ok {
		return false, store.ErrNotFound
	}
	return v, nil
}

func (f *fakeFlagStore) set(menuID string, enabled bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.menus[menuID] = enabled
}

func (f *fakeFlagStore) own(restaurantID, menuID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.owners[menuID] = restaurantID
}

func (f *fakeFlagStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lookups
}

func newFakeFlags() *fakeFlagStore {
	return &fakeFlagStore{menus: map[string]bool{}, owners: map[string]string{}, restaurants: map[string]bool{}}
}

func TestWaiterCallGate_EmptyQuery(t *testing.T) {
	flags := newFakeFlags()
	gate := NewWaiterCallGate(flags, nil)

	res := gate.Check(context.Background(), GateQuery{})
	assert.Nil(t, res.Enabled)
	assert.False(t, res.Open())
	assert.Equal(t, 0, flags.count())
}

func TestWaiterCallGate_MenuTakesPrecedence(t *testing.T) {
	flags := newFakeFlags()
	flags.menus["M"] = false
	flags.restaurants["R"] = true
	gate := NewWaiterCallGate(flags, nil)

	res := gate.Check(context.Background(), GateQuery{MenuID: "M", RestaurantID: "R"})
	require.NotNil(t, res.Enabled)
	assert.False(t, *res.Enabled)
	assert.Empty(t, flags.preferActive)
}

func TestWaiterCallGate_RestaurantPrefersActiveMenu(t *testing.T) {
	flags := newFakeFlags()
	flags.restaurants["R"] = true
	gate := NewWaiterCallGate(flags, nil)

	res := gate.Check(context.Background(), GateQuery{RestaurantID: "R"})
	assert.True(t, res.Open())
	assert.Equal(t, []bool{true}, flags.preferActive)
}

func TestWaiterCallGate_FailureClosesAndIsNotCached(t *testing.T) {
	utils.InitLogger()
	flags := newFakeFlags()
	flags.err = errors.New("connection refused")
	c := store.NewMemoryGateCache(time.Minute)
	defer c.Close()
	gate := NewWaiterCallGate(flags, c)
	ctx := context.Background()

	res := gate.Check(ctx, GateQuery{MenuID: "M"})
	require.NotNil(t, res.Enabled)
	assert.False(t, *res.Enabled)
	assert.Contains(t, res.Error, "connection refused")

	flags.mu.Lock()
	flags.err = nil
	flags.mu.Unlock()
	flags.set("M", true)

	res = gate.Check(ctx, GateQuery{MenuID: "M"})
	assert.True(t, res.Open())
	assert.Empty(t, res.Error)
	assert.Equal(t, 2, flags.count())
}

func TestWaiterCallGate_UnknownMenuFailsClosed(t *testing.T) {
	utils.InitLogger()
	gate := NewWaiterCallGate(newFakeFlags(), nil)

	res := gate.Check(context.Background(), GateQuery{MenuID: "ghost"})
	assert.False(t, res.Open())
	assert.NotEmpty(t, res.Error)
}

func TestWaiterCallGate_MenuOfOtherRestaurantFailsClosed(t *testing.T) {
	utils.InitLogger()
	flags := newFakeFlags()
	flags.restaurants["A"] = false
	flags.set("B-menu", true)
	flags.own("B", "B-menu")
	c := store.NewMemoryGateCache(time.Minute)
	defer c.Close()
	gate := NewWaiterCallGate(flags, c)
	ctx := context.Background()

	// menu B terbuka untuk B, tapi tidak boleh membuka gate A
	assert.True(t, gate.Check(ctx, GateQuery{MenuID: "B-menu", RestaurantID: "B"}).Open())
	res := gate.Check(ctx, GateQuery{MenuID: "B-menu", RestaurantID: "A"})
	assert.False(t, res.Open())
	assert.NotEmpty(t, res.Error)

	// hasil B yang ter-cache tidak bocor ke key A
	assert.False(t, gate.Check(ctx, GateQuery{MenuID: "B-menu", RestaurantID: "A"}).Open())
	assert.Equal(t, 3, flags.count())
}

func TestWaiterCallGate_InvalidateScopedMenuKey(t *testing.T) {
	flags := newFakeFlags()
	flags.set("M", true)
	flags.own("R", "M")
	c := store.NewMemoryGateCache(time.Minute)
	defer c.Close()
	gate := NewWaiterCallGate(flags, c)
	ctx := context.Background()
	q := GateQuery{MenuID: "M", RestaurantID: "R"}

	assert.True(t, gate.Check(ctx, q).Open())
	flags.set("M", false)
	assert.True(t, gate.Check(ctx, q).Open())

	gate.Invalidate(ctx, "M", "R")
	assert.False(t, gate.Check(ctx, q).Open())
	assert.Equal(t, 2, flags.count())
}

func TestWaiterCallGate_CacheRefetchInvalidate(t *testing.T) {
	flags := newFakeFlags()
	flags.set("M", true)
	c := store.NewMemoryGateCache(time.Minute)
	defer c.Close()
	gate := NewWaiterCallGate(flags, c)
	ctx := context.Background()

	assert.True(t, gate.Check(ctx, GateQuery{MenuID: "M"}).Open())
	assert.True(t, gate.Check(ctx, GateQuery{MenuID: "M"}).Open())
	assert.Equal(t, 1, flags.count())

	flags.set("M", false)
	// masih dari cache
	assert.True(t, gate.Check(ctx, GateQuery{MenuID: "M"}).Open())

	assert.False(t, gate.Refetch(ctx, GateQuery{MenuID: "M"}).Open())
	assert.Equal(t, 2, flags.count())

	flags.set("M", true)
	gate.Invalidate(ctx, "M", "")
	assert.True(t, gate.Check(ctx, GateQuery{MenuID: "M"}).Open())
	assert.Equal(t, 3, flags.count())
}

func TestWaiterCallGate_WithGormStore(t *testing.T) {
	db := setupServiceDB(t)
	ctx := context.Background()
	require.NoError(t, db.Create(&models.Restaurant{ID: "R", Name: "Resto"}).Error)
	require.NoError(t, db.Create(&models.Menu{ID: "lunch", RestaurantID: "R", Name: "Lunch", IsActive: false, WaiterCallEnabled: false, CreatedAt: baseTime}).Error)
	require.NoError(t, db.Create(&models.Menu{ID: "dinner", RestaurantID: "R", Name: "Dinner", IsActive: true, WaiterCallEnabled: true, CreatedAt: baseTime.Add(-time.Hour)}).Error)

	gate := NewWaiterCallGate(store.NewGormStore(db), nil)

	assert.False(t, gate.Check(ctx, GateQuery{MenuID: "lunch"}).Open())
	assert.True(t, gate.Check(ctx, GateQuery{MenuID: "dinner"}).Open())
	assert.True(t, gate.Check(ctx, GateQuery{RestaurantID: "R"}).Open())

	require.NoError(t, db.Create(&models.Restaurant{ID: "R2", Name: "Resto 2"}).Error)
	assert.True(t, gate.Check(ctx, GateQuery{MenuID: "dinner", RestaurantID: "R"}).Open())
	assert.False(t, gate.Check(ctx, GateQuery{MenuID: "dinner", RestaurantID: "R2"}).Open())
}
