package location

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

var (
	ErrMissingAPIKey   = errors.New("weather API key is not configured")
	ErrInvalidZipCode  = errors.New("valid zip code is required")
	ErrZipCodeNotFound = errors.New("zip code not found")
	ErrUnauthorized    = errors.New("weather API rejected the configured key")
)

// UpstreamError wraps any other failure of the geocoding service: network
// errors, malformed payloads, unexpected status codes.
type UpstreamError struct {
	Reason string
	Err    error
}

func (e *UpstreamError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("geocoding upstream failure: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("geocoding upstream failure: %s", e.Reason)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// Location is the resolved geocode for a zip code. It is consumed
// immediately by the user service and never persisted on its own.
type Location struct {
	Latitude  float64
	Longitude float64
	Timezone  string
}

// Config holds the settings for the OpenWeatherMap client. The credential
// is injected here rather than read from the environment so the resolver
// stays testable.
type Config struct {
	APIKey             string
	BaseURL            string
	DefaultCountryCode string
	Timeout            time.Duration
}

const (
	defaultBaseURL     = "https://api.openweathermap.org/data/2.5/weather"
	defaultCountryCode = "us"
	defaultTimeout     = 10 * time.Second
)

// Resolver resolves zip codes to coordinates and a timezone offset using
// the OpenWeatherMap current weather endpoint. One attempt per call, no
// caching, no retries.
type Resolver struct {
	cfg    Config
	client *http.Client
}

func NewResolver(cfg Config) *Resolver {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.DefaultCountryCode == "" {
		cfg.DefaultCountryCode = defaultCountryCode
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	return &Resolver{
		cfg: cfg,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// owmResponse is the subset of the OpenWeatherMap payload we consume.
// Coord fields are pointers so a missing coordinate is distinguishable
// from a zero one.
type owmResponse struct {
	Coord *struct {
		Lat *float64 `json:"lat"`
		Lon *float64 `json:"lon"`
	} `json:"coord"`
	Timezone int `json:"timezone"` // offset from UTC in seconds
}

// Resolve fetches latitude, longitude and timezone for the given zip code.
// A zip code without a country suffix gets the default country appended.
func (r *Resolver) Resolve(ctx context.Context, zipCode string) (*Location, error) {
	if r.cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}

	zip := strings.TrimSpace(zipCode)
	if zip == "" {
		return nil, ErrInvalidZipCode
	}
	if !strings.Contains(zip, ",") {
		zip = zip + "," + r.cfg.DefaultCountryCode
	}

	query := url.Values{}
	query.Set("zip", zip)
	query.Set("appid", r.cfg.APIKey)
	requestURL := r.cfg.BaseURL + "?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, &UpstreamError{Reason: "failed to build request", Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, &UpstreamError{Reason: "request failed", Err: err}
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		// fall through to decoding
	case http.StatusNotFound:
		return nil, ErrZipCodeNotFound
	case http.StatusUnauthorized:
		return nil, ErrUnauthorized
	default:
		return nil, &UpstreamError{Reason: fmt.Sprintf("unexpected status %d", resp.StatusCode)}
	}

	var payload owmResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, &UpstreamError{Reason: "malformed response body", Err: err}
	}

	if payload.Coord == nil || payload.Coord.Lat == nil || payload.Coord.Lon == nil {
		return nil, &UpstreamError{Reason: "response is missing coordinates"}
	}

	return &Location{
		Latitude:  *payload.Coord.Lat,
		Longitude: *payload.Coord.Lon,
		Timezone:  FormatUTCOffset(payload.Timezone),
	}, nil
}

// FormatUTCOffset converts a signed offset in seconds to a UTC±HH:MM
// display string, e.g. -18000 -> "UTC-05:00", 19800 -> "UTC+05:30".
func FormatUTCOffset(offsetSeconds int) string {
	hours := offsetSeconds / 3600
	minutes := abs(offsetSeconds%3600) / 60

	sign := "+"
	if hours < 0 {
		sign = "-"
	}

	return fmt.Sprintf("UTC%s%02d:%02d", sign, abs(hours), minutes)
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
