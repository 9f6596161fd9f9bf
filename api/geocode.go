package api

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"

	"github.com/Mananajo65/Andaaz-Decorations/internal/errorutil"
	"github.com/Mananajo65/Andaaz-Decorations/internal/logger"
	"github.com/Mananajo65/Andaaz-Decorations/weather"
)

const (
	// Nominatim search endpoint (OpenStreetMap)
	nominatimBaseURL = "https://nominatim.openstreetmap.org"
	searchEndpoint   = "/search"
)

// postalCodePattern is the US-style postal format the venue form accepts.
// Formats it cannot generalize yet simply skip geocoding instead of failing.
var postalCodePattern = regexp.MustCompile(`^\d{5}(-\d{4})?$`)

var addressValidate = validator.New()

// Address is the venue address block from the inquiry form.
type Address struct {
	Street     string `json:"street" validate:"required"`
	City       string `json:"city" validate:"required"`
	Region     string `json:"region" validate:"required"`
	PostalCode string `json:"postalCode" validate:"required"`
}

// Complete reports whether every field is present and the postal code
// matches the supported format. An incomplete address is not an error; it
// just means the venue cannot anchor the forecast.
func (a Address) Complete() bool {
	if err := addressValidate.Struct(a); err != nil {
		return false
	}
	return postalCodePattern.MatchString(strings.TrimSpace(a.PostalCode))
}

// FreeText renders the address as the single-line query the geocoding
// provider expects.
func (a Address) FreeText() string {
	return fmt.Sprintf("%s, %s, %s %s",
		strings.TrimSpace(a.Street), strings.TrimSpace(a.City),
		strings.TrimSpace(a.Region), strings.TrimSpace(a.PostalCode))
}

// normalizedQuery is the cache key for repeated identical lookups.
func (a Address) normalizedQuery() string {
	return strings.ToLower(strings.Join(strings.Fields(a.FreeText()), " "))
}

// GeocodeClient validates venue addresses and resolves them to coordinates
// via Nominatim. Lookups are rate-limited to one per second per the
// provider's terms, and the last successful results are cached in memory so
// debounced re-validation of an unchanged address costs no network call.
type GeocodeClient struct {
	client  *resty.Client
	limiter *rate.Limiter

	// MinScore is the candidate-scoring confidence threshold: how many of
	// the three match signals (region, city, postal) a candidate needs
	// before it wins outright. Below it, AcceptFirst decides whether the
	// provider's first-ranked result is trusted anyway.
	MinScore    int
	AcceptFirst bool

	mu    sync.Mutex
	cache map[string]weather.Place
}

// NewGeocodeClient creates a Nominatim client with the default confidence
// policy: two of three signals, falling back to the first-ranked result.
func NewGeocodeClient() *GeocodeClient {
	client := resty.New().
		SetBaseURL(nominatimBaseURL).
		SetHeader("User-Agent", userAgent).
		SetHeader("Accept", "application/json").
		SetTimeout(defaultTimeout)

	return &GeocodeClient{
		client:      client,
		limiter:     rate.NewLimiter(rate.Every(time.Second), 1),
		MinScore:    2,
		AcceptFirst: true,
		cache:       make(map[string]weather.Place),
	}
}

// SetBaseURL points the client at a different geocoding endpoint. The
// request rate limit is endpoint-independent and stays in force.
func (g *GeocodeClient) SetBaseURL(url string) {
	g.client.SetBaseURL(url)
}

// nominatimCandidate is one ranked result from the search endpoint.
type nominatimCandidate struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
	Address     struct {
		City     string `json:"city"`
		Town     string `json:"town"`
		Village  string `json:"village"`
		State    string `json:"state"`
		Postcode string `json:"postcode"`
	} `json:"address"`
}

func (c nominatimCandidate) locality() string {
	switch {
	case c.Address.City != "":
		return c.Address.City
	case c.Address.Town != "":
		return c.Address.Town
	default:
		return c.Address.Village
	}
}

// Geocode resolves a venue address to a Place, or nil when the address is
// incomplete, the provider has no confident match, or the lookup fails.
// It never returns partial coordinates: a nil Place is the only failure
// shape, so the caller's resolver chain can fall through cleanly.
func (g *GeocodeClient) Geocode(ctx context.Context, addr Address) (*weather.Place, error) {
	if !addr.Complete() {
		return nil, nil
	}

	query := addr.normalizedQuery()
	g.mu.Lock()
	if place, ok := g.cache[query]; ok {
		g.mu.Unlock()
		logger.Debug("Geocode cache hit for %q", query)
		return &place, nil
	}
	g.mu.Unlock()

	if err := g.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	complete := logger.LogOperationStart("geocode_lookup", map[string]any{
		"city":   addr.City,
		"region": addr.Region,
	})

	var candidates []nominatimCandidate
	resp, err := g.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"q":              addr.FreeText(),
			"format":         "json",
			"addressdetails": "1",
			"limit":          "5",
		}).
		SetResult(&candidates).
		// Proxies and caches in front of the provider sometimes mislabel
		// the content type; the body is JSON regardless, so decode it as
		// such instead of silently treating the response as empty.
		ForceContentType("application/json").
		Get(searchEndpoint)
	if err != nil {
		errorutil.LogWarning(logger.Get().Logger, "geocode lookup", err,
			errorutil.URLContext(g.client.BaseURL+searchEndpoint)...)
		complete(err)
		return nil, nil // network failure degrades to "no venue anchor"
	}
	if !resp.IsSuccess() {
		complete(fmt.Errorf("geocoding returned HTTP %d", resp.StatusCode()))
		return nil, nil
	}
	if len(candidates) == 0 {
		complete(fmt.Errorf("no geocoding candidates for %q", query))
		return nil, nil
	}

	best := g.pickCandidate(addr, candidates)
	if best == nil {
		complete(fmt.Errorf("no confident geocoding match for %q", query))
		return nil, nil
	}

	var lat, lon float64
	if _, err := fmt.Sscanf(best.Lat, "%f", &lat); err != nil {
		complete(err)
		return nil, nil
	}
	if _, err := fmt.Sscanf(best.Lon, "%f", &lon); err != nil {
		complete(err)
		return nil, nil
	}
	if valErr := errorutil.ValidateCoordinate("latitude", lat, true); valErr != nil {
		complete(valErr)
		return nil, nil
	}
	if valErr := errorutil.ValidateCoordinate("longitude", lon, false); valErr != nil {
		complete(valErr)
		return nil, nil
	}

	place := weather.Place{
		Lat:          lat,
		Lon:          lon,
		TimezoneHint: "auto",
		DisplayName:  fmt.Sprintf("%s, %s", addr.City, addr.Region),
		Source:       weather.SourceVenue,
	}

	g.mu.Lock()
	g.cache[query] = place
	g.mu.Unlock()

	complete(nil)
	return &place, nil
}

// pickCandidate scores each candidate by region match, direction-agnostic
// city substring match, and postal exact match, and returns the highest
// scorer at or above MinScore. Ties keep the provider's ranking.
func (g *GeocodeClient) pickCandidate(addr Address, candidates []nominatimCandidate) *nominatimCandidate {
	bestIdx := -1
	bestScore := -1
	for i, c := range candidates {
		score := scoreCandidate(addr, c)
		if score > bestScore {
			bestIdx = i
			bestScore = score
		}
	}
	if bestScore >= g.MinScore {
		return &candidates[bestIdx]
	}
	if g.AcceptFirst {
		logger.Debug("Geocode falling back to first-ranked candidate (score %d < %d)", bestScore, g.MinScore)
		return &candidates[0]
	}
	return nil
}

func scoreCandidate(addr Address, c nominatimCandidate) int {
	score := 0
	if matchesRegion(addr.Region, c.Address.State, c.DisplayName) {
		score++
	}
	if matchesCity(addr.City, c.locality()) {
		score++
	}
	if zip5(c.Address.Postcode) == zip5(addr.PostalCode) && zip5(addr.PostalCode) != "" {
		score++
	}
	return score
}

// matchesCity is case-insensitive and direction-agnostic: "Springfield"
// matches "Springfield Township" and vice versa.
func matchesCity(want, got string) bool {
	w := strings.ToLower(strings.TrimSpace(want))
	g := strings.ToLower(strings.TrimSpace(got))
	if w == "" || g == "" {
		return false
	}
	return strings.Contains(w, g) || strings.Contains(g, w)
}

func matchesRegion(want, state, displayName string) bool {
	w := strings.ToLower(strings.TrimSpace(want))
	if w == "" {
		return false
	}
	if strings.EqualFold(strings.TrimSpace(state), strings.TrimSpace(want)) {
		return true
	}
	// Abbreviations ("NJ") won't equal the expanded state name, so fall
	// back to scanning the display name's comma-separated parts.
	for _, part := range strings.Split(strings.ToLower(displayName), ",") {
		if strings.TrimSpace(part) == w {
			return true
		}
	}
	return false
}

// zip5 trims a ZIP+4 postal code down to its five-digit prefix.
func zip5(postal string) string {
	p := strings.TrimSpace(postal)
	if i := strings.IndexByte(p, '-'); i >= 0 {
		p = p[:i]
	}
	return p
}
