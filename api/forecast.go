package api

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker"
	"github.com/tidwall/gjson"

	"github.com/Mananajo65/Andaaz-Decorations/internal/errorutil"
	"github.com/Mananajo65/Andaaz-Decorations/internal/logger"
	"github.com/Mananajo65/Andaaz-Decorations/weather"
)

const (
	// Open-Meteo forecast API base URL
	openMeteoBaseURL = "https://api.open-meteo.com/v1"
	forecastEndpoint = "/forecast"

	// Default timeout for API requests
	defaultTimeout = 10 * time.Second

	// User-Agent for API requests
	userAgent = "AndaazDecorations/1.0"

	// Default forecast horizon requested from the provider. Sixteen days
	// is the provider's maximum and covers any bookable schedule date it
	// can see.
	defaultForecastDays = 16
)

// ForecastClient fetches and normalizes Open-Meteo forecasts. It is a pure
// network boundary: no caching, no retry policy beyond transport-level
// retries — cooldown and fallbacks live in the refresh orchestrator.
type ForecastClient struct {
	client  *resty.Client
	circuit *gobreaker.CircuitBreaker
	days    int
}

// NewForecastClient creates an Open-Meteo client with transport retries and
// a circuit breaker around repeated provider failures.
func NewForecastClient() *ForecastClient {
	client := resty.New().
		SetBaseURL(openMeteoBaseURL).
		SetHeader("User-Agent", userAgent).
		SetHeader("Accept", "application/json").
		SetTimeout(defaultTimeout).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(3 * time.Second)

	client.OnBeforeRequest(func(c *resty.Client, req *resty.Request) error {
		headers := make(map[string]string)
		for key, values := range req.Header {
			if len(values) > 0 {
				headers[key] = values[0]
			}
		}
		logger.LogAPIRequest(req.Method, req.URL, headers)
		return nil
	})

	client.OnAfterResponse(func(c *resty.Client, resp *resty.Response) error {
		logger.LogAPIResponse(resp.Request.Method, resp.Request.URL, resp.StatusCode(), resp.Time().String(), len(resp.Body()))
		return nil
	})

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "open-meteo",
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     2 * time.Minute,
	})

	return &ForecastClient{client: client, circuit: cb, days: defaultForecastDays}
}

// SetTimeout configures the HTTP client timeout.
func (f *ForecastClient) SetTimeout(timeout time.Duration) {
	f.client.SetTimeout(timeout)
}

// SetBaseURL points the client at a different endpoint (tests).
func (f *ForecastClient) SetBaseURL(url string) {
	f.client.SetBaseURL(url)
}

// SetForecastDays adjusts the requested forecast horizon. Values outside
// the provider's 1-16 day range keep the current setting.
func (f *ForecastClient) SetForecastDays(days int) {
	if days < 1 || days > defaultForecastDays {
		return
	}
	f.days = days
}

// FetchError represents a failed or malformed forecast fetch.
type FetchError struct {
	StatusCode int
	Message    string
	Underlying error
}

func (e *FetchError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("forecast fetch failed (HTTP %d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("forecast fetch failed: %s", e.Message)
}

func (e *FetchError) Unwrap() error { return e.Underlying }

// Fetch retrieves a normalized forecast snapshot for the place: current
// conditions, a 16-day hourly series, and a 16-day daily series, all in
// internal units (Celsius, km/h).
func (f *ForecastClient) Fetch(ctx context.Context, place weather.Place) (*weather.ForecastSnapshot, error) {
	complete := logger.LogOperationStart("forecast_fetch", map[string]any{
		"latitude":  place.Lat,
		"longitude": place.Lon,
		"source":    string(place.Source),
	})

	tz := place.TimezoneHint
	if tz == "" {
		tz = "auto"
	}

	queryParams := map[string]string{
		"latitude":  fmt.Sprintf("%.4f", place.Lat),
		"longitude": fmt.Sprintf("%.4f", place.Lon),
		"timezone":  tz,
		"current":   "temperature_2m,relative_humidity_2m,apparent_temperature,weather_code,wind_speed_10m,is_day",
		"hourly":    "temperature_2m,weather_code,apparent_temperature,precipitation_probability,wind_speed_10m",
		"daily":     "temperature_2m_max,temperature_2m_min,weather_code,sunrise,sunset,precipitation_sum",
		// Request wind in m/s so normalization to km/h is a single
		// deterministic conversion regardless of provider defaults.
		"wind_speed_unit": "ms",
		"forecast_days":   fmt.Sprintf("%d", f.days),
	}

	result, err := f.circuit.Execute(func() (interface{}, error) {
		resp, err := f.client.R().
			SetContext(ctx).
			SetQueryParams(queryParams).
			Get(forecastEndpoint)
		if err != nil {
			netErr := errorutil.NewNetworkError("forecast request", openMeteoBaseURL+forecastEndpoint, err)
			errorutil.LogNetworkError(logger.Get().Logger, netErr)
			return nil, &FetchError{Message: "HTTP request failed", Underlying: netErr}
		}
		if !resp.IsSuccess() {
			status := resp.StatusCode()
			reason := providerErrorReason(resp.Body())
			fetchErr := &FetchError{StatusCode: status, Message: reason}
			if errorutil.IsRetryableStatus(status) {
				fetchErr.Underlying = errorutil.NewRetryableHTTPError(
					resp.Request.Method, resp.Request.URL, status, errors.New(reason))
			}
			errorutil.LogWarning(logger.Get().Logger, "forecast fetch", fetchErr,
				errorutil.APIContext("open-meteo", forecastEndpoint)...)
			return nil, fetchErr
		}
		return resp.Body(), nil
	})
	if err != nil {
		var fetchErr *FetchError
		if fe, ok := err.(*FetchError); ok {
			fetchErr = fe
		} else {
			fetchErr = &FetchError{Message: "provider unavailable", Underlying: err}
		}
		complete(fetchErr)
		return nil, fetchErr
	}

	snapshot, err := normalizeForecast(result.([]byte), time.Now())
	if err != nil {
		complete(err)
		return nil, err
	}

	complete(nil)
	logger.Debug("Forecast fetched: current=%.1f°C, hourly=%d, daily=%d",
		snapshot.Current.TemperatureC, len(snapshot.Hourly), len(snapshot.Daily))
	return snapshot, nil
}

// providerErrorReason extracts Open-Meteo's error reason from a failed
// response body, if it carries one.
func providerErrorReason(body []byte) string {
	if reason := gjson.GetBytes(body, "reason"); reason.Exists() {
		return reason.String()
	}
	return "provider returned an error status"
}

// normalizeForecast converts the raw provider payload into the canonical
// snapshot shape. Individual missing fields become zero values (rendered as
// unavailable downstream); only a payload with no usable series at all is a
// malformed-payload failure.
func normalizeForecast(body []byte, fetchedAt time.Time) (*weather.ForecastSnapshot, error) {
	doc := gjson.ParseBytes(body)
	if !doc.Get("current").Exists() && !doc.Get("hourly").Exists() && !doc.Get("daily").Exists() {
		return nil, &FetchError{Message: "malformed payload: no forecast blocks present"}
	}

	loc := payloadLocation(doc)

	snapshot := &weather.ForecastSnapshot{
		FetchedAt: fetchedAt,
		Current: weather.CurrentConditions{
			Time:          parseLocalTime(doc.Get("current.time").String(), loc),
			TemperatureC:  doc.Get("current.temperature_2m").Float(),
			FeelsLikeC:    doc.Get("current.apparent_temperature").Float(),
			ConditionCode: int(doc.Get("current.weather_code").Int()),
			HumidityPct:   doc.Get("current.relative_humidity_2m").Float(),
			WindSpeedKmh:  weather.MsToKmh(doc.Get("current.wind_speed_10m").Float()),
			IsDay:         doc.Get("current.is_day").Int() == 1,
		},
	}

	times := doc.Get("hourly.time").Array()
	temps := doc.Get("hourly.temperature_2m").Array()
	codes := doc.Get("hourly.weather_code").Array()
	feels := doc.Get("hourly.apparent_temperature").Array()
	precip := doc.Get("hourly.precipitation_probability").Array()
	winds := doc.Get("hourly.wind_speed_10m").Array()

	for i, t := range times {
		entry := weather.HourlyEntry{Time: parseLocalTime(t.String(), loc)}
		if i < len(temps) {
			entry.TemperatureC = temps[i].Float()
		}
		if i < len(codes) {
			entry.ConditionCode = int(codes[i].Int())
		}
		if i < len(feels) {
			entry.FeelsLikeC = feels[i].Float()
		}
		if i < len(precip) {
			entry.PrecipProbPct = precip[i].Float()
		}
		if i < len(winds) {
			entry.WindSpeedKmh = weather.MsToKmh(winds[i].Float())
		}
		snapshot.Hourly = append(snapshot.Hourly, entry)
	}

	dates := doc.Get("daily.time").Array()
	maxs := doc.Get("daily.temperature_2m_max").Array()
	mins := doc.Get("daily.temperature_2m_min").Array()
	dayCodes := doc.Get("daily.weather_code").Array()
	sunrises := doc.Get("daily.sunrise").Array()
	sunsets := doc.Get("daily.sunset").Array()
	precipSums := doc.Get("daily.precipitation_sum").Array()

	for i, d := range dates {
		entry := weather.DailyEntry{Date: d.String()}
		if i < len(maxs) {
			entry.TempMaxC = maxs[i].Float()
		}
		if i < len(mins) {
			entry.TempMinC = mins[i].Float()
		}
		if i < len(dayCodes) {
			entry.ConditionCode = int(dayCodes[i].Int())
		}
		if i < len(sunrises) {
			entry.Sunrise = parseLocalTime(sunrises[i].String(), loc)
		}
		if i < len(sunsets) {
			entry.Sunset = parseLocalTime(sunsets[i].String(), loc)
		}
		if i < len(precipSums) {
			entry.PrecipSumMm = precipSums[i].Float()
		}
		snapshot.Daily = append(snapshot.Daily, entry)
	}

	if err := validateSnapshot(snapshot); err != nil {
		return nil, err
	}
	return snapshot, nil
}

// payloadLocation resolves the timezone the provider localized its
// timestamps to. Falls back to a fixed offset, then UTC.
func payloadLocation(doc gjson.Result) *time.Location {
	if name := doc.Get("timezone").String(); name != "" && name != "auto" {
		if loc, err := time.LoadLocation(name); err == nil {
			return loc
		}
	}
	if off := doc.Get("utc_offset_seconds"); off.Exists() {
		return time.FixedZone("local", int(off.Int()))
	}
	return time.UTC
}

// parseLocalTime parses the provider's local ISO timestamps
// ("2006-01-02T15:04") in the payload's timezone.
func parseLocalTime(s string, loc *time.Location) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.ParseInLocation("2006-01-02T15:04", s, loc)
	if err != nil {
		return time.Time{}
	}
	return t
}

// validateSnapshot rejects payloads whose numeric fields are garbage
// rather than merely absent.
func validateSnapshot(s *weather.ForecastSnapshot) error {
	if math.IsNaN(s.Current.TemperatureC) || math.IsInf(s.Current.TemperatureC, 0) {
		return &FetchError{Message: "malformed payload: non-finite current temperature"}
	}
	if len(s.Hourly) == 0 && len(s.Daily) == 0 {
		return &FetchError{Message: "malformed payload: empty hourly and daily series"}
	}
	return nil
}
