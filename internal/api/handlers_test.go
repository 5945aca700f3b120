package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neexbeast/trip-planner/internal/api"
	"github.com/neexbeast/trip-planner/internal/destination"
)

// ---- mock implementations ----

type mockWeather struct {
	rawFn func(ctx context.Context, city string) (*destination.Response, error)
}

func (m *mockWeather) Raw(ctx context.Context, city string) (*destination.Response, error) {
	return m.rawFn(ctx, city)
}

type mockPhotos struct {
	rawFn func(ctx context.Context, dest string, intent destination.Intent) (*destination.Response, error)
}

func (m *mockPhotos) Raw(ctx context.Context, dest string, intent destination.Intent) (*destination.Response, error) {
	return m.rawFn(ctx, dest, intent)
}

type mockResolver struct {
	resolveFn func(ctx context.Context, dest string) (destination.DestinationSummary, error)
}

func (m *mockResolver) Resolve(ctx context.Context, dest string) (destination.DestinationSummary, error) {
	return m.resolveFn(ctx, dest)
}

type mockSearcher struct {
	searchFn func(ctx context.Context, q destination.DestinationQuery) (*destination.SearchResultBundle, error)
}

func (m *mockSearcher) Search(ctx context.Context, q destination.DestinationQuery) (*destination.SearchResultBundle, error) {
	return m.searchFn(ctx, q)
}

// ---- helpers ----

type deps struct {
	weather  *mockWeather
	photos   *mockPhotos
	resolver *mockResolver
	searcher *mockSearcher
	creds    []api.Credential
	metrics  http.Handler
}

func unexpected(t *testing.T, what string) {
	t.Helper()
	t.Fatalf("%s should not be called", what)
}

// defaults fills every unset dependency with a mock that fails the test if used.
func (d *deps) defaults(t *testing.T) {
	if d.weather == nil {
		d.weather = &mockWeather{rawFn: func(context.Context, string) (*destination.Response, error) {
			unexpected(t, "weather")
			return nil, nil
		}}
	}
	if d.photos == nil {
		d.photos = &mockPhotos{rawFn: func(context.Context, string, destination.Intent) (*destination.Response, error) {
			unexpected(t, "photos")
			return nil, nil
		}}
	}
	if d.resolver == nil {
		d.resolver = &mockResolver{resolveFn: func(context.Context, string) (destination.DestinationSummary, error) {
			unexpected(t, "resolver")
			return destination.DestinationSummary{}, nil
		}}
	}
	if d.searcher == nil {
		d.searcher = &mockSearcher{searchFn: func(context.Context, destination.DestinationQuery) (*destination.SearchResultBundle, error) {
			unexpected(t, "searcher")
			return nil, nil
		}}
	}
}

func buildRouter(t *testing.T, d deps) http.Handler {
	t.Helper()
	d.defaults(t)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	handlers := api.NewHandlers(d.weather, d.photos, d.resolver, d.searcher, log)
	return api.NewRouter(handlers, api.RouterConfig{
		AllowedOrigins:     []string{"*"},
		RateLimitPerMinute: 1000,
		Credentials:        d.creds,
		Metrics:            d.metrics,
	}, log)
}

func get(router http.Handler, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Message string `json:"message"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	return body.Message
}

func sampleBundle(dest string) *destination.SearchResultBundle {
	alt := "the Colosseum at dusk"
	return &destination.SearchResultBundle{
		Destination: dest,
		Weather:     &destination.WeatherRecord{TemperatureC: 24, ConditionText: "clear sky"},
		Photos: []destination.PhotoRecord{
			{ImageURL: "https://i/1", AltText: &alt, DisplayLabel: "Colosseum"},
		},
		Summary: destination.DestinationSummary{Title: dest, Extract: "Ancient city.", ResolvedVia: destination.ResolvedDirect},
	}
}

// ---- missing destination ----

func TestMissingDestination(t *testing.T) {
	router := buildRouter(t, deps{})

	for _, path := range []string{"/weather", "/photos?type=attractions", "/destination-info?destination=%20%20", "/api/v1/search"} {
		t.Run(path, func(t *testing.T) {
			w := get(router, path)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, "Please enter a destination to search for.", decodeMessage(t, w))
		})
	}
}

// ---- GET /weather ----

func TestWeather_ForwardsRawBody(t *testing.T) {
	var gotCity string
	d := deps{weather: &mockWeather{rawFn: func(_ context.Context, city string) (*destination.Response, error) {
		gotCity = city
		return &destination.Response{Status: http.StatusOK, Body: []byte(`{"main":{"temp":21.5},"name":"Paris"}`)}, nil
	}}}

	w := get(buildRouter(t, d), "/weather?destination=%20Paris%20")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Paris", gotCity)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"main":{"temp":21.5},"name":"Paris"}`, w.Body.String())
}

func TestWeather_ForwardsProviderNotFound(t *testing.T) {
	d := deps{weather: &mockWeather{rawFn: func(context.Context, string) (*destination.Response, error) {
		return &destination.Response{Status: http.StatusNotFound, Body: []byte(`{"cod":"404","message":"city not found"}`)}, nil
	}}}

	w := get(buildRouter(t, d), "/weather?destination=Atlantis")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"cod":"404","message":"city not found"}`, w.Body.String())
}

func TestWeather_ProviderUnauthorizedIs502(t *testing.T) {
	d := deps{weather: &mockWeather{rawFn: func(context.Context, string) (*destination.Response, error) {
		return &destination.Response{Status: http.StatusUnauthorized, Body: []byte(`{"cod":401}`)}, nil
	}}}

	w := get(buildRouter(t, d), "/weather?destination=Paris")

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, decodeMessage(t, w), "openweathermap")
}

func TestWeather_TransportFailure(t *testing.T) {
	d := deps{weather: &mockWeather{rawFn: func(context.Context, string) (*destination.Response, error) {
		return nil, fmt.Errorf("dial: %w", destination.ErrTransport)
	}}}

	w := get(buildRouter(t, d), "/weather?destination=Paris")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Failed to fetch weather data.", decodeMessage(t, w))
}

func TestWeather_MisconfiguredIsVerbatim(t *testing.T) {
	d := deps{weather: &mockWeather{rawFn: func(context.Context, string) (*destination.Response, error) {
		return nil, destination.CheckCredential(destination.ProviderWeather, "")
	}}}

	w := get(buildRouter(t, d), "/weather?destination=Paris")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, destination.CheckCredential(destination.ProviderWeather, "").Error(), decodeMessage(t, w))
}

// ---- GET /photos ----

func TestPhotos_PassesIntent(t *testing.T) {
	var gotIntent destination.Intent
	d := deps{photos: &mockPhotos{rawFn: func(_ context.Context, _ string, intent destination.Intent) (*destination.Response, error) {
		gotIntent = intent
		return &destination.Response{Status: http.StatusOK, Body: []byte(`{"results":[]}`)}, nil
	}}}
	router := buildRouter(t, d)

	w := get(router, "/photos?destination=Kerala&type=attractions")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, destination.IntentAttractions, gotIntent)

	w = get(router, "/photos?destination=Kerala")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, destination.IntentGeneral, gotIntent)
}

func TestPhotos_TransportFailure(t *testing.T) {
	d := deps{photos: &mockPhotos{rawFn: func(context.Context, string, destination.Intent) (*destination.Response, error) {
		return nil, destination.ErrTransport
	}}}

	w := get(buildRouter(t, d), "/photos?destination=Paris")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Failed to fetch photos data.", decodeMessage(t, w))
}

// ---- GET /destination-info ----

func TestDestinationInfo_ForwardsRawSummary(t *testing.T) {
	raw := `{"title":"Paris","extract":"Paris is the capital of France.","thumbnail":{"source":"x"}}`
	d := deps{resolver: &mockResolver{resolveFn: func(context.Context, string) (destination.DestinationSummary, error) {
		return destination.DestinationSummary{
			Title: "Paris", Extract: "Paris is the capital of France.",
			ResolvedVia: destination.ResolvedDirect, Raw: []byte(raw),
		}, nil
	}}}

	w := get(buildRouter(t, d), "/destination-info?destination=Paris")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "DIRECT", w.Header().Get("X-Resolved-Via"))
	assert.JSONEq(t, raw, w.Body.String())
}

func TestDestinationInfo_Sentinel(t *testing.T) {
	d := deps{resolver: &mockResolver{resolveFn: func(context.Context, string) (destination.DestinationSummary, error) {
		return destination.NotFoundSummary(), nil
	}}}

	w := get(buildRouter(t, d), "/destination-info?destination=xyzxyz-nonexistent")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "NOT_FOUND", w.Header().Get("X-Resolved-Via"))
	var body map[string]string
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, "Not found.", body["title"])
	assert.Equal(t, "No specific history found.", body["extract"])
}

func TestDestinationInfo_TransportFailure(t *testing.T) {
	d := deps{resolver: &mockResolver{resolveFn: func(context.Context, string) (destination.DestinationSummary, error) {
		return destination.DestinationSummary{}, fmt.Errorf("wiki: %w", destination.ErrTransport)
	}}}

	w := get(buildRouter(t, d), "/destination-info?destination=Paris")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Failed to fetch destination information.", decodeMessage(t, w))
}

// ---- GET /api/v1/search ----

func TestSearch_Success(t *testing.T) {
	var gotQuery destination.DestinationQuery
	d := deps{searcher: &mockSearcher{searchFn: func(_ context.Context, q destination.DestinationQuery) (*destination.SearchResultBundle, error) {
		gotQuery = q
		return sampleBundle(q.RawText), nil
	}}}

	w := get(buildRouter(t, d), "/api/v1/search?destination=Rome&type=attractions")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Rome", gotQuery.RawText)
	assert.Equal(t, destination.IntentAttractions, gotQuery.Intent)
	assert.Equal(t, "DIRECT", w.Header().Get("X-Resolved-Via"))

	var got destination.SearchResultBundle
	require.NoError(t, json.NewDecoder(w.Body).Decode(&got))
	assert.Equal(t, "Rome", got.Destination)
	assert.Equal(t, 24.0, got.Weather.TemperatureC)
	require.Len(t, got.Photos, 1)
	assert.Equal(t, "Colosseum", got.Photos[0].DisplayLabel)
	assert.Equal(t, destination.ResolvedDirect, got.Summary.ResolvedVia)
}

func TestSearch_ErrorMapping(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{
			name:    "transport",
			err:     fmt.Errorf("searching Paris: %w", destination.ErrTransport),
			status:  http.StatusInternalServerError,
			message: "Failed to fetch destination data.",
		},
		{
			name:    "weather not found",
			err:     fmt.Errorf("searching Atlantis: %w", destination.ErrNotFound),
			status:  http.StatusNotFound,
			message: "City not found. Please check the spelling and try again.",
		},
		{
			name:    "unauthorized",
			err:     fmt.Errorf("unsplash: %w (status 401)", destination.ErrUnauthorized),
			status:  http.StatusBadGateway,
			message: "unsplash: provider rejected credential (status 401)",
		},
		{
			name:    "misconfigured",
			err:     destination.CheckCredential(destination.ProviderPhotos, "YOUR_UNSPLASH_API_KEY_HERE"),
			status:  http.StatusInternalServerError,
			message: "unsplash: credential not configured: key is a placeholder",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := deps{searcher: &mockSearcher{searchFn: func(context.Context, destination.DestinationQuery) (*destination.SearchResultBundle, error) {
				return nil, tt.err
			}}}

			w := get(buildRouter(t, d), "/api/v1/search?destination=Paris")

			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.message, decodeMessage(t, w))
		})
	}
}

// ---- GET /api/v1/health ----

func TestHealth_OK(t *testing.T) {
	router := buildRouter(t, deps{creds: []api.Credential{
		{Provider: destination.ProviderWeather, Key: "owm-key"},
		{Provider: destination.ProviderPhotos, Key: "unsplash-key"},
	}})

	w := get(router, "/api/v1/health")

	assert.Equal(t, http.StatusOK, w.Code)
	var body map[string]string
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "ok", body["openweathermap"])
	assert.Equal(t, "ok", body["unsplash"])
	assert.Equal(t, "ok", body["wikipedia"])
}

func TestHealth_MissingCredential(t *testing.T) {
	router := buildRouter(t, deps{creds: []api.Credential{
		{Provider: destination.ProviderWeather, Key: "owm-key"},
		{Provider: destination.ProviderPhotos, Key: "NOT_CONFIGURED"},
	}})

	w := get(router, "/api/v1/health")

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	body := w.Body.String()
	assert.NotContains(t, body, "owm-key")

	var parsed map[string]string
	require.NoError(t, json.Unmarshal([]byte(body), &parsed))
	assert.Equal(t, "degraded", parsed["status"])
	assert.Equal(t, "not_configured", parsed["unsplash"])
}

// ---- router ----

func TestRouter_CORSPreflight(t *testing.T) {
	router := buildRouter(t, deps{})
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/search?destination=Paris", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouter_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "trip_planner_test_total", Help: "test"})
	reg.MustRegister(counter)
	counter.Inc()

	router := buildRouter(t, deps{metrics: promhttp.HandlerFor(reg, promhttp.HandlerOpts{})})
	w := get(router, "/metrics")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "trip_planner_test_total 1")
}

func TestRouter_NoMetricsHandler(t *testing.T) {
	w := get(buildRouter(t, deps{}), "/metrics")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouter_RecoversFromPanic(t *testing.T) {
	d := deps{weather: &mockWeather{rawFn: func(context.Context, string) (*destination.Response, error) {
		panic("boom")
	}}}

	w := get(buildRouter(t, d), "/weather?destination=Paris")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestRequestLogger_OmitsQueryString(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&buf, nil))
	d := deps{weather: &mockWeather{rawFn: func(context.Context, string) (*destination.Response, error) {
		return &destination.Response{Status: http.StatusOK, Body: []byte(`{}`)}, nil
	}}}
	d.defaults(t)
	handlers := api.NewHandlers(d.weather, d.photos, d.resolver, d.searcher, log)
	router := api.NewRouter(handlers, api.RouterConfig{AllowedOrigins: []string{"*"}}, log)

	w := get(router, "/weather?destination=Secret%20Place")
	require.Equal(t, http.StatusOK, w.Code)

	out := buf.String()
	assert.Contains(t, out, `"path":"/weather"`)
	assert.Contains(t, out, `"status":200`)
	assert.False(t, strings.Contains(out, "Secret"), "query string must not be logged")
}
