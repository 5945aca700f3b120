package destination

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/jonboulle/clockwork"
)

const (
	defaultHTTPTimeout = 10 * time.Second
	maxBodyBytes       = 4 << 20
)

// Response is a provider reply: HTTP status plus a JSON body.
type Response struct {
	Status int
	Body   json.RawMessage
}

// Transport fetches a URL and returns its JSON body. Network errors and
// non-JSON bodies are reported as ErrTransport; non-2xx statuses are not
// errors at this level.
type Transport interface {
	FetchJSON(ctx context.Context, rawURL string) (*Response, error)
}

// HTTPTransport is a Transport backed by net/http.
type HTTPTransport struct {
	client *http.Client
}

// NewHTTPTransport returns an HTTPTransport with the given timeout (10s if zero).
func NewHTTPTransport(timeout time.Duration) *HTTPTransport {
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}
	return &HTTPTransport{client: &http.Client{Timeout: timeout}}
}

// FetchJSON performs a GET request and validates that the body is JSON.
// Error messages use the path only so query-string credentials stay out of logs.
func (t *HTTPTransport) FetchJSON(ctx context.Context, rawURL string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	target := req.URL.Host + req.URL.Path

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: GET %s: %v", ErrTransport, target, redact(err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: reading response from %s: %v", ErrTransport, target, err)
	}

	if !json.Valid(body) {
		return nil, fmt.Errorf("%w: non-JSON body from %s (status %d)", ErrTransport, target, resp.StatusCode)
	}

	return &Response{Status: resp.StatusCode, Body: body}, nil
}

// redact strips the URL from *url.Error values, which embed the full query.
func redact(err error) error {
	type unwrapper interface{ Unwrap() error }
	if u, ok := err.(unwrapper); ok {
		if inner := u.Unwrap(); inner != nil {
			return inner
		}
	}
	return err
}

// Observer receives provider and resolution outcomes for metrics.
type Observer interface {
	ObserveFetch(provider, outcome string, elapsed time.Duration)
	ObserveResolution(via ResolvedVia)
}

// NopObserver discards all observations.
type NopObserver struct{}

func (NopObserver) ObserveFetch(string, string, time.Duration) {}
func (NopObserver) ObserveResolution(ResolvedVia)              {}

// instrumentedTransport reports outcome and latency of every fetch.
type instrumentedTransport struct {
	inner    Transport
	provider string
	observer Observer
	clock    clockwork.Clock
}

// Instrument wraps t so every fetch is reported to obs under provider.
func Instrument(t Transport, provider string, obs Observer, clock clockwork.Clock) Transport {
	if obs == nil {
		obs = NopObserver{}
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &instrumentedTransport{inner: t, provider: provider, observer: obs, clock: clock}
}

func (t *instrumentedTransport) FetchJSON(ctx context.Context, rawURL string) (*Response, error) {
	start := t.clock.Now()
	resp, err := t.inner.FetchJSON(ctx, rawURL)
	t.observer.ObserveFetch(t.provider, outcome(resp, err), t.clock.Since(start))
	return resp, err
}

func outcome(resp *Response, err error) string {
	switch {
	case err != nil:
		return "transport_error"
	case resp.Status == http.StatusUnauthorized:
		return "unauthorized"
	case resp.Status == http.StatusNotFound:
		return "not_found"
	case resp.Status >= 300:
		return "error"
	default:
		return "ok"
	}
}
