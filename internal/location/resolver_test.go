package location_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redmonkez12/user-location-api/internal/location"
)

func TestFormatUTCOffset(t *testing.T) {
	tests := []struct {
		name          string
		offsetSeconds int
		want          string
	}{
		{"utc", 0, "UTC+00:00"},
		{"new york", -18000, "UTC-05:00"},
		{"india", 19800, "UTC+05:30"},
		{"negative half hour", -23400, "UTC-06:30"},
		{"tokyo", 32400, "UTC+09:00"},
		{"nepal", 20700, "UTC+05:45"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, location.FormatUTCOffset(tt.offsetSeconds))
		})
	}
}

func newTestResolver(t *testing.T, handler http.HandlerFunc) *location.Resolver {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return location.NewResolver(location.Config{
		APIKey:  "test-key",
		BaseURL: server.URL,
		Timeout: 2 * time.Second,
	})
}

func TestResolver_Resolve_Success(t *testing.T) {
	var gotQuery map[string]string

	resolver := newTestResolver(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = map[string]string{
			"zip":   r.URL.Query().Get("zip"),
			"appid": r.URL.Query().Get("appid"),
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"coord":{"lat":40.75,"lon":-73.99},"timezone":-18000}`))
	})

	loc, err := resolver.Resolve(context.Background(), "10001")
	require.NoError(t, err)

	assert.Equal(t, 40.75, loc.Latitude)
	assert.Equal(t, -73.99, loc.Longitude)
	assert.Equal(t, "UTC-05:00", loc.Timezone)

	// default country code is appended when none is supplied
	assert.Equal(t, "10001,us", gotQuery["zip"])
	assert.Equal(t, "test-key", gotQuery["appid"])
}

func TestResolver_Resolve_KeepsExplicitCountryCode(t *testing.T) {
	var gotZip string

	resolver := newTestResolver(t, func(w http.ResponseWriter, r *http.Request) {
		gotZip = r.URL.Query().Get("zip")
		w.Write([]byte(`{"coord":{"lat":48.85,"lon":2.35},"timezone":3600}`))
	})

	loc, err := resolver.Resolve(context.Background(), "75001,fr")
	require.NoError(t, err)

	assert.Equal(t, "75001,fr", gotZip)
	assert.Equal(t, "UTC+01:00", loc.Timezone)
}

func TestResolver_Resolve_MissingAPIKey(t *testing.T) {
	resolver := location.NewResolver(location.Config{})

	_, err := resolver.Resolve(context.Background(), "10001")
	assert.ErrorIs(t, err, location.ErrMissingAPIKey)
}

func TestResolver_Resolve_EmptyZip(t *testing.T) {
	resolver := location.NewResolver(location.Config{APIKey: "test-key"})

	for _, zip := range []string{"", "   "} {
		_, err := resolver.Resolve(context.Background(), zip)
		assert.ErrorIs(t, err, location.ErrInvalidZipCode)
	}
}

func TestResolver_Resolve_UpstreamStatuses(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		wantErr error
	}{
		{"zip not found", http.StatusNotFound, location.ErrZipCodeNotFound},
		{"bad credential", http.StatusUnauthorized, location.ErrUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resolver := newTestResolver(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			})

			_, err := resolver.Resolve(context.Background(), "00000")
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestResolver_Resolve_UnexpectedStatus(t *testing.T) {
	resolver := newTestResolver(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := resolver.Resolve(context.Background(), "10001")

	var upstreamErr *location.UpstreamError
	require.ErrorAs(t, err, &upstreamErr)
	assert.Contains(t, upstreamErr.Error(), "502")
}

func TestResolver_Resolve_MalformedBody(t *testing.T) {
	resolver := newTestResolver(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"coord":`))
	})

	_, err := resolver.Resolve(context.Background(), "10001")

	var upstreamErr *location.UpstreamError
	assert.ErrorAs(t, err, &upstreamErr)
}

func TestResolver_Resolve_MissingCoordinates(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"no coord object", `{"timezone":0}`},
		{"missing lat", `{"coord":{"lon":-73.99},"timezone":0}`},
		{"missing lon", `{"coord":{"lat":40.75},"timezone":0}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resolver := newTestResolver(t, func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			})

			_, err := resolver.Resolve(context.Background(), "10001")

			var upstreamErr *location.UpstreamError
			require.ErrorAs(t, err, &upstreamErr)
			assert.Contains(t, upstreamErr.Error(), "coordinates")
		})
	}
}

func TestResolver_Resolve_NetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // resolver now dials a dead address

	resolver := location.NewResolver(location.Config{
		APIKey:  "test-key",
		BaseURL: server.URL,
		Timeout: time.Second,
	})

	_, err := resolver.Resolve(context.Background(), "10001")

	var upstreamErr *location.UpstreamError
	assert.ErrorAs(t, err, &upstreamErr)
}
