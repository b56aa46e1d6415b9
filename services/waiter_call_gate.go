package services

import (
	"context"

	"github.com/Yo-Self/menu-mestre-facil-sub001/store"
	"github.com/Yo-Self/menu-mestre-facil-sub001/utils"
)

type GateQuery struct {
	MenuID       string
	RestaurantID string
}

func (q GateQuery) cacheKey() string {
	if q.MenuID != "" {
		return menuKey(q.RestaurantID, q.MenuID)
	}
	if q.RestaurantID != "" {
		return "restaurant:" + q.RestaurantID
	}
	return ""
}

// menuKey menyertakan restaurant ID karena hasil lookup menu bergantung pada restorannya
func menuKey(restaurantID, menuID string) string {
	if restaurantID == "" {
		return "menu:" + menuID
	}
	return "menu:" + restaurantID + ":" + menuID
}

// GateResult: Enabled nil berarti tidak diketahui / tidak berlaku.
type GateResult struct {
	Enabled *bool  `json:"enabled"`
	Error   string `json:"error,omitempty"`
}

func (r GateResult) Open() bool {
	return r.Enabled != nil && *r.Enabled
}

// WaiterCallGate answers whether new waiter calls may be created for a menu or restaurant.
// A menu ID takes precedence over the restaurant ID; when both are set the menu must
// belong to that restaurant. Lookup failures fail closed.
type WaiterCallGate struct {
	Flags store.MenuFlagStore
	Cache store.GateCache
}

func NewWaiterCallGate(flags store.MenuFlagStore, cache store.GateCache) *WaiterCallGate {
	return &WaiterCallGate{Flags: flags, Cache: cache}
}

func (g *WaiterCallGate) Check(ctx context.Context, q GateQuery) GateResult {
	return g.resolve(ctx, q, true)
}

// Refetch bypasses the cache, e.g. after the manager toggled the setting.
func (g *WaiterCallGate) Refetch(ctx context.Context, q GateQuery) GateResult {
	return g.resolve(ctx, q, false)
}

func (g *WaiterCallGate) Invalidate(ctx context.Context, menuID, restaurantID string) {
	if g.Cache == nil {
		return
	}
	var keys []string
	if menuID != "" {
		keys = append(keys, menuKey("", menuID))
		if restaurantID != "" {
			keys = append(keys, menuKey(restaurantID, menuID))
		}
	}
	if restaurantID != "" {
		keys = append(keys, GateQuery{RestaurantID: restaurantID}.cacheKey())
	}
	g.Cache.Delete(ctx, keys...)
}

func (g *WaiterCallGate) resolve(ctx context.Context, q GateQuery, useCache bool) GateResult {
	key := q.cacheKey()
	if key == "" {
		return GateResult{}
	}

	if useCache && g.Cache != nil {
		if enabled, ok := g.Cache.Get(ctx, key); ok {
			return GateResult{Enabled: &enabled}
		}
	}

	var (
		enabled bool
		err     error
	)
	if q.MenuID != "" {
		enabled, err = g.Flags.GetMenuFlag(ctx, q.RestaurantID, q.MenuID)
	} else {
		enabled, err = g.Flags.GetRestaurantMenuFlag(ctx, q.RestaurantID, true)
	}
	if err != nil {
		utils.ErrorLogger.Printf("Waiter call gate lookup %s failed: %v", key, err)
		closed := false
		return GateResult{Enabled: &closed, Error: err.Error()}
	}

	if g.Cache != nil {
		g.Cache.Set(ctx, key, enabled)
	}
	return GateResult{Enabled: &enabled}
}
