// Package engine ties place resolution, the forecast cache, and the
// provider client together into the refresh orchestration the inquiry
// page's forecast panels run on.
package engine

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/Mananajo65/Andaaz-Decorations/internal/errorutil"
	"github.com/Mananajo65/Andaaz-Decorations/internal/logger"
	"github.com/Mananajo65/Andaaz-Decorations/schedule"
	"github.com/Mananajo65/Andaaz-Decorations/store"
	"github.com/Mananajo65/Andaaz-Decorations/weather"
)

const (
	// DefaultCooldown is the minimum interval between two refresh attempts
	// for the same location key, regardless of staleness.
	DefaultCooldown = 10 * time.Minute

	// DefaultStaleAfter is the snapshot age at which the panel shows a
	// stale indicator and refresh attempts bypass the quiet path.
	DefaultStaleAfter = 30 * time.Minute

	// DefaultDebounce is the quiet period a background refresh trigger
	// waits before fetching. Each key holds at most one pending trigger;
	// another arriving inside the window replaces it instead of queueing.
	DefaultDebounce = 300 * time.Millisecond

	backgroundFetchTimeout = 30 * time.Second
)

// errCoolingDown marks a refresh that was skipped, not one that failed.
var errCoolingDown = errors.New("refresh skipped: key is cooling down")

// Fetcher is the network boundary the orchestrator refreshes through.
type Fetcher interface {
	Fetch(ctx context.Context, place weather.Place) (*weather.ForecastSnapshot, error)
}

// flight is one in-progress fetch for a key. Requests arriving while it is
// outstanding await it instead of issuing a second concurrent fetch.
type flight struct {
	done     chan struct{}
	snapshot *weather.ForecastSnapshot
	err      error
}

// pendingRefresh is the single debounce slot for a key. A trigger arriving
// before the timer fires overwrites place and force and rearms the timer;
// only the last trigger inside the quiet period reaches the network.
type pendingRefresh struct {
	timer *time.Timer
	place weather.Place
	force bool
}

// panelState remembers what a panel is currently anchored to, so a fetch
// that completes after the panel moved to another key can be discarded
// instead of rendered.
type panelState struct {
	key    string
	place  weather.Place
	events []schedule.Event
}

// Orchestrator drives the cache-first render cycle: render whatever the
// cache holds immediately, refresh quietly in the background, and never
// surface a fetch failure as a hard error when prior data exists.
type Orchestrator struct {
	Store    store.Store
	Fetcher  Fetcher
	Resolver *weather.PlaceResolver

	Cooldown   time.Duration
	StaleAfter time.Duration
	Debounce   time.Duration

	// Now is injectable for tests; nil means time.Now.
	Now func() time.Time

	// OnUpdate, when set, receives the re-rendered view for each panel
	// still anchored to a key after its background refresh lands.
	OnUpdate func(panelID string, view weather.PanelView)

	mu      sync.Mutex
	flights map[string]*flight
	panels  map[string]panelState
	pending map[string]*pendingRefresh
}

// New builds an orchestrator with the default cooldown and staleness
// thresholds.
func New(st store.Store, fetcher Fetcher, resolver *weather.PlaceResolver) *Orchestrator {
	return &Orchestrator{
		Store:      st,
		Fetcher:    fetcher,
		Resolver:   resolver,
		Cooldown:   DefaultCooldown,
		StaleAfter: DefaultStaleAfter,
		Debounce:   DefaultDebounce,
		flights:    make(map[string]*flight),
		panels:     make(map[string]panelState),
		pending:    make(map[string]*pendingRefresh),
	}
}

// Panel resolves the place for one forecast panel and renders it
// cache-first. A cached snapshot renders immediately whatever its age,
// with a background refresh attempted alongside; only a cache miss fetches
// synchronously, and even then a failure degrades to the explicit
// unavailable view rather than an error.
func (o *Orchestrator) Panel(ctx context.Context, panelID string, venue weather.VenueLookup, device weather.DeviceLocator, events []schedule.Event) weather.PanelView {
	place := o.Resolver.Resolve(ctx, venue, device)
	key := place.CacheKey()

	o.mu.Lock()
	o.panels[panelID] = panelState{key: key, place: place, events: slices.Clone(events)}
	o.mu.Unlock()

	unit := o.unit()
	entry, err := o.Store.Get(key)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		logger.Warn("Cache read for %s failed: %v", key, err)
	}

	if entry != nil {
		stale := store.IsStale(entry, o.staleAfter(), o.now())
		o.backgroundRefresh(place, false)
		return weather.Render(place, &entry.Snapshot, events, unit, stale)
	}

	// Nothing cached for this key, so the cooldown has nothing to protect;
	// fetch synchronously and force past it.
	snapshot, err := o.refresh(ctx, place, true)
	if err != nil {
		logger.Warn("Initial fetch for %s failed: %v", key, err)
		return weather.Render(place, nil, events, unit, false)
	}
	return weather.Render(place, snapshot, events, unit, false)
}

// RenderCached re-renders a tracked panel from whatever the cache holds,
// without resolving or fetching. This is the instant path behind a unit
// toggle: the cached snapshot converts to the new unit immediately while
// the forced refresh runs behind it.
func (o *Orchestrator) RenderCached(panelID string) (weather.PanelView, bool) {
	o.mu.Lock()
	state, ok := o.panels[panelID]
	o.mu.Unlock()
	if !ok {
		return weather.PanelView{}, false
	}

	unit := o.unit()
	entry, err := o.Store.Get(state.key)
	if err != nil || entry == nil {
		return weather.Render(state.place, nil, state.events, unit, false), true
	}
	stale := store.IsStale(entry, o.staleAfter(), o.now())
	return weather.Render(state.place, &entry.Snapshot, state.events, unit, stale), true
}

// SetUnit persists the display unit and forces a refresh of every tracked
// place, bypassing the cooldown. Callers re-render from cache immediately;
// the forced fetches land afterwards through OnUpdate.
func (o *Orchestrator) SetUnit(u weather.Unit) weather.Unit {
	if err := o.Store.SetUnit(u); err != nil {
		logger.Warn("Persisting unit preference failed: %v", err)
	}
	for _, place := range o.trackedPlaces() {
		o.backgroundRefresh(place, true)
	}
	return u
}

// ToggleUnit flips the persisted unit preference.
func (o *Orchestrator) ToggleUnit() weather.Unit {
	return o.SetUnit(o.unit().Toggle())
}

// ForceRefresh triggers an immediate background refresh for the key a
// panel is anchored to, bypassing the cooldown. It reports whether the
// panel was known.
func (o *Orchestrator) ForceRefresh(panelID string) bool {
	o.mu.Lock()
	state, ok := o.panels[panelID]
	o.mu.Unlock()
	if !ok {
		return false
	}
	o.backgroundRefresh(state.place, true)
	return true
}

// RefreshStale sweeps every cached key and refreshes the stale ones,
// regardless of cooldown. Fresh entries are left alone. It returns the
// number of refreshes triggered.
func (o *Orchestrator) RefreshStale(ctx context.Context) int {
	keys, err := o.Store.Keys()
	if err != nil {
		logger.Warn("Stale sweep could not list cache keys: %v", err)
		return 0
	}

	triggered := 0
	now := o.now()
	for _, key := range keys {
		if ctx.Err() != nil {
			logger.Warn("Stale sweep stopped early after %d refresh(es): %v", triggered, ctx.Err())
			break
		}
		entry, err := o.Store.Get(key)
		if err != nil || !store.IsStale(entry, o.staleAfter(), now) {
			continue
		}
		o.backgroundRefresh(o.placeForKey(key), true)
		triggered++
	}
	if triggered > 0 {
		logger.Info("Stale sweep triggered %d refresh(es) across %d cached key(s)", triggered, len(keys))
	}
	return triggered
}

// refresh performs one fetch for a place's key, writing the cache on
// success. Concurrent callers for the same key coalesce onto the single
// in-flight fetch. Without force, a key inside its cooldown window is
// skipped with errCoolingDown.
func (o *Orchestrator) refresh(ctx context.Context, place weather.Place, force bool) (*weather.ForecastSnapshot, error) {
	key := place.CacheKey()

	if !force {
		if last, err := o.Store.LastRefresh(key); err == nil {
			if store.IsCoolingDown(last, o.cooldown(), o.now()) {
				return nil, errCoolingDown
			}
		}
	}

	o.mu.Lock()
	if fl, ok := o.flights[key]; ok {
		o.mu.Unlock()
		select {
		case <-fl.done:
			return fl.snapshot, fl.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	fl := &flight{done: make(chan struct{})}
	o.flights[key] = fl
	o.mu.Unlock()

	snapshot, err := o.Fetcher.Fetch(ctx, place)
	if err == nil {
		// A failed fetch must leave the prior entry untouched, so the
		// cache write happens only here.
		if putErr := o.Store.Put(key, *snapshot); putErr != nil {
			logger.Warn("Cache write for %s failed: %v", key, putErr)
		}
	}

	fl.snapshot, fl.err = snapshot, err
	o.mu.Lock()
	delete(o.flights, key)
	o.mu.Unlock()
	close(fl.done)

	return snapshot, err
}

// backgroundRefresh arms the debounce slot for the place's key. Triggers
// landing inside the quiet period collapse onto the slot: the newest place
// wins, and force sticks once any trigger asked for it. The fetch starts
// only when the window closes without another trigger.
func (o *Orchestrator) backgroundRefresh(place weather.Place, force bool) {
	key := place.CacheKey()

	o.mu.Lock()
	if p, ok := o.pending[key]; ok {
		p.place = place
		p.force = p.force || force
		p.timer.Reset(o.debounce())
		o.mu.Unlock()
		return
	}
	p := &pendingRefresh{place: place, force: force}
	p.timer = time.AfterFunc(o.debounce(), func() {
		o.mu.Lock()
		// A Reset racing this fire re-arms the same slot; only the
		// still-registered slot may proceed to the network.
		if o.pending[key] != p {
			o.mu.Unlock()
			return
		}
		delete(o.pending, key)
		place, force := p.place, p.force
		o.mu.Unlock()
		o.refreshAndNotify(place, force)
	})
	o.pending[key] = p
	o.mu.Unlock()
}

// refreshAndNotify runs one background fetch and pushes the result to
// still-anchored panels. The fetch outlives the triggering request, so it
// carries its own bounded context.
func (o *Orchestrator) refreshAndNotify(place weather.Place, force bool) {
	ctx, cancel := context.WithTimeout(context.Background(), backgroundFetchTimeout)
	defer cancel()

	snapshot, err := o.refresh(ctx, place, force)
	if err != nil {
		if !errors.Is(err, errCoolingDown) {
			errorutil.LogWarning(logger.Get().Logger, "background refresh", err,
				errorutil.PlaceContext(place.Lat, place.Lon, string(place.Source))...)
		}
		return
	}
	o.notify(place.CacheKey(), snapshot)
}

// notify re-renders the fresh snapshot for every panel whose anchor key
// still matches the key the fetch started with. Panels that moved to a
// different place in the meantime get nothing; their result arrives too
// late to be correct, and discarding it is the ordering guarantee.
func (o *Orchestrator) notify(key string, snapshot *weather.ForecastSnapshot) {
	if o.OnUpdate == nil || snapshot == nil {
		return
	}
	unit := o.unit()

	type target struct {
		id    string
		state panelState
	}
	var targets []target
	o.mu.Lock()
	for id, state := range o.panels {
		if state.key == key {
			targets = append(targets, target{id: id, state: state})
		}
	}
	o.mu.Unlock()

	for _, t := range targets {
		view := weather.Render(t.state.place, snapshot, t.state.events, unit, false)
		o.OnUpdate(t.id, view)
	}
}

// trackedPlaces returns one Place per distinct key currently anchored by
// any panel.
func (o *Orchestrator) trackedPlaces() []weather.Place {
	o.mu.Lock()
	defer o.mu.Unlock()
	seen := make(map[string]bool, len(o.panels))
	places := make([]weather.Place, 0, len(o.panels))
	for _, state := range o.panels {
		if !seen[state.key] {
			seen[state.key] = true
			places = append(places, state.place)
		}
	}
	return places
}

// placeForKey recovers a fetchable Place for a cached key, preferring the
// tracked panel state so display names survive; untracked keys fall back
// to parsing the coordinates out of the key itself.
func (o *Orchestrator) placeForKey(key string) weather.Place {
	o.mu.Lock()
	for _, state := range o.panels {
		if state.key == key {
			o.mu.Unlock()
			return state.place
		}
	}
	o.mu.Unlock()

	var lat, lon float64
	if _, err := fmt.Sscanf(key, "%f,%f", &lat, &lon); err != nil {
		logger.Warn("Unparseable cache key %q in stale sweep", key)
	}
	return weather.Place{
		Lat:          lat,
		Lon:          lon,
		TimezoneHint: "auto",
		DisplayName:  "Saved location",
		Source:       weather.SourceOverride,
	}
}

func (o *Orchestrator) unit() weather.Unit {
	u, err := o.Store.Unit()
	if err != nil {
		return weather.Celsius
	}
	return u
}

func (o *Orchestrator) cooldown() time.Duration {
	if o.Cooldown > 0 {
		return o.Cooldown
	}
	return DefaultCooldown
}

func (o *Orchestrator) debounce() time.Duration {
	if o.Debounce > 0 {
		return o.Debounce
	}
	return DefaultDebounce
}

func (o *Orchestrator) staleAfter() time.Duration {
	if o.StaleAfter > 0 {
		return o.StaleAfter
	}
	return DefaultStaleAfter
}

func (o *Orchestrator) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now()
}
