package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/neexbeast/trip-planner/internal/destination"
)

const (
	msgMissingDestination = "Please enter a destination to search for."
	msgCityNotFound       = "City not found. Please check the spelling and try again."
	msgWeatherFailed      = "Failed to fetch weather data."
	msgPhotosFailed       = "Failed to fetch photos data."
	msgInfoFailed         = "Failed to fetch destination information."
	msgSearchFailed       = "Failed to fetch destination data."

	headerResolvedVia = "X-Resolved-Via"
)

// Handlers holds the dependencies for all HTTP handlers.
type Handlers struct {
	weather  WeatherSource
	photos   PhotoSource
	resolver SummaryResolver
	searcher Searcher
	log      *slog.Logger
}

// NewHandlers constructs Handlers with all required dependencies.
func NewHandlers(weather WeatherSource, photos PhotoSource, resolver SummaryResolver, searcher Searcher, log *slog.Logger) *Handlers {
	return &Handlers{
		weather:  weather,
		photos:   photos,
		resolver: resolver,
		searcher: searcher,
		log:      log,
	}
}

type messageBody struct {
	Message string `json:"message"`
}

// writeJSON encodes v as JSON and writes it with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeRaw forwards a provider body unchanged.
func writeRaw(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, messageBody{Message: msg})
}

// writeError maps an error kind onto a status and message. Credential
// problems are reported verbatim; everything else gets the generic message.
func (h *Handlers) writeError(w http.ResponseWriter, r *http.Request, err error, generic string) {
	kind := destination.ErrorKind(err)
	h.log.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "kind", kind, "err", err)

	switch {
	case errors.Is(err, destination.ErrMisconfigured):
		writeMessage(w, http.StatusInternalServerError, err.Error())
	case errors.Is(err, destination.ErrUnauthorized):
		writeMessage(w, http.StatusBadGateway, err.Error())
	case errors.Is(err, destination.ErrNotFound):
		writeMessage(w, http.StatusNotFound, msgCityNotFound)
	default:
		writeMessage(w, http.StatusInternalServerError, generic)
	}
}

// destinationParam returns the trimmed destination query parameter, writing
// a 400 and returning false when it is missing.
func destinationParam(w http.ResponseWriter, r *http.Request, intent destination.Intent) (destination.DestinationQuery, bool) {
	q, err := destination.NewDestinationQuery(r.URL.Query().Get("destination"), intent)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, msgMissingDestination)
		return destination.DestinationQuery{}, false
	}
	return q, true
}

// Weather handles GET /weather. The provider body and status are forwarded
// as-is except for a rejected credential, which becomes a 502.
func (h *Handlers) Weather(w http.ResponseWriter, r *http.Request) {
	q, ok := destinationParam(w, r, destination.IntentGeneral)
	if !ok {
		return
	}

	resp, err := h.weather.Raw(r.Context(), q.RawText)
	if err != nil {
		h.writeError(w, r, err, msgWeatherFailed)
		return
	}
	h.forward(w, r, destination.ProviderWeather, resp, msgWeatherFailed)
}

// Photos handles GET /photos?type=attractions.
func (h *Handlers) Photos(w http.ResponseWriter, r *http.Request) {
	q, ok := destinationParam(w, r, destination.ParseIntent(r.URL.Query().Get("type")))
	if !ok {
		return
	}

	resp, err := h.photos.Raw(r.Context(), q.RawText, q.Intent)
	if err != nil {
		h.writeError(w, r, err, msgPhotosFailed)
		return
	}
	h.forward(w, r, destination.ProviderPhotos, resp, msgPhotosFailed)
}

func (h *Handlers) forward(w http.ResponseWriter, r *http.Request, provider string, resp *destination.Response, generic string) {
	if resp.Status == http.StatusUnauthorized {
		h.writeError(w, r, fmt.Errorf("%s: %w (status 401)", provider, destination.ErrUnauthorized), generic)
		return
	}
	writeRaw(w, resp.Status, resp.Body)
}

// DestinationInfo handles GET /destination-info. It returns the raw summary
// body of the resolved page, or the not-found sentinel. The path taken is
// reported in the X-Resolved-Via header.
func (h *Handlers) DestinationInfo(w http.ResponseWriter, r *http.Request) {
	q, ok := destinationParam(w, r, destination.IntentGeneral)
	if !ok {
		return
	}

	summary, err := h.resolver.Resolve(r.Context(), q.RawText)
	if err != nil {
		h.log.ErrorContext(r.Context(), "destination info failed",
			"destination", q.RawText, "kind", destination.ErrorKind(err), "err", err)
		writeMessage(w, http.StatusInternalServerError, msgInfoFailed)
		return
	}

	w.Header().Set(headerResolvedVia, string(summary.ResolvedVia))
	if len(summary.Raw) > 0 {
		writeRaw(w, http.StatusOK, summary.Raw)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// Search handles GET /api/v1/search and returns the aggregated bundle.
func (h *Handlers) Search(w http.ResponseWriter, r *http.Request) {
	q, ok := destinationParam(w, r, destination.ParseIntent(r.URL.Query().Get("type")))
	if !ok {
		return
	}

	bundle, err := h.searcher.Search(r.Context(), q)
	if err != nil {
		h.writeError(w, r, err, msgSearchFailed)
		return
	}

	w.Header().Set(headerResolvedVia, string(bundle.Summary.ResolvedVia))
	writeJSON(w, http.StatusOK, bundle)
}

// Credential names a provider key for the health check. The key itself is
// never written to the response or logs.
type Credential struct {
	Provider string
	Key      string
}

// HealthHandlerFunc returns an http.HandlerFunc that reports whether every
// provider credential is configured: 200 if all are, 503 otherwise.
func HealthHandlerFunc(creds []Credential, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := http.StatusOK
		body := map[string]string{
			destination.ProviderEncyclopedia: "ok",
		}

		for _, c := range creds {
			if err := destination.CheckCredential(c.Provider, c.Key); err != nil {
				log.WarnContext(r.Context(), "health check: credential missing", "provider", c.Provider)
				body[c.Provider] = "not_configured"
				status = http.StatusServiceUnavailable
				continue
			}
			body[c.Provider] = "ok"
		}

		body["status"] = "ok"
		if status != http.StatusOK {
			body["status"] = "degraded"
		}
		writeJSON(w, status, body)
	}
}
