package weather

import (
	"context"
	"time"

	"github.com/Mananajo65/Andaaz-Decorations/internal/logger"
)

const deviceLocateTimeout = 8 * time.Second

// VenueLookup resolves the current request's venue address to a Place. A
// nil Place with a nil error means the address was incomplete or had no
// confident match; the resolver moves on either way.
type VenueLookup func(ctx context.Context) (*Place, error)

// DeviceLocator reports the requesting device's approximate coordinates.
// Implementations may block on a slow upstream (browser geolocation relay,
// IP lookup); the resolver bounds them with a timeout and never retries.
type DeviceLocator interface {
	Locate(ctx context.Context) (lat, lon float64, err error)
}

// LocateFunc adapts a plain function to the DeviceLocator interface.
type LocateFunc func(ctx context.Context) (lat, lon float64, err error)

func (f LocateFunc) Locate(ctx context.Context) (float64, float64, error) { return f(ctx) }

// PlaceResolver picks the location a forecast panel is anchored to, in
// strict priority order: venue address, then device location, then the
// configured fallback. Every step degrades silently to the next; Resolve
// always returns a usable Place.
type PlaceResolver struct {
	Fallback Place

	// LocateTimeout bounds the single device-location attempt. Zero means
	// the default.
	LocateTimeout time.Duration
}

// Resolve runs the strategy chain and returns the first Place produced.
// venue and device may be nil when the request carries no address or no
// device location.
func (r *PlaceResolver) Resolve(ctx context.Context, venue VenueLookup, device DeviceLocator) Place {
	if place := r.fromVenue(ctx, venue); place != nil {
		return *place
	}
	if place := r.fromDevice(ctx, device); place != nil {
		return *place
	}
	fallback := r.Fallback
	fallback.Source = SourceFallback
	logger.Debug("Place resolution fell back to %s", fallback.DisplayName)
	return fallback
}

func (r *PlaceResolver) fromVenue(ctx context.Context, venue VenueLookup) *Place {
	if venue == nil {
		return nil
	}
	place, err := venue(ctx)
	if err != nil {
		logger.Warn("Venue geocoding failed: %v", err)
		return nil
	}
	return place
}

// fromDevice makes exactly one bounded attempt; denial, timeout, and
// transport errors all mean "move on", not "retry".
func (r *PlaceResolver) fromDevice(ctx context.Context, device DeviceLocator) *Place {
	if device == nil {
		return nil
	}
	timeout := r.LocateTimeout
	if timeout <= 0 {
		timeout = deviceLocateTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	lat, lon, err := device.Locate(ctx)
	if err != nil {
		logger.Debug("Device location unavailable: %v", err)
		return nil
	}
	return &Place{
		Lat:          lat,
		Lon:          lon,
		TimezoneHint: "auto",
		DisplayName:  "Local area",
		Source:       SourceDevice,
	}
}
