package destination

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"
)

// MaxPhotos is the number of photos kept in a search bundle.
const MaxPhotos = 6

// weatherFetcher is the interface satisfied by WeatherClient.
type weatherFetcher interface {
	Fetch(ctx context.Context, city string) (*WeatherRecord, error)
}

// photoFetcher is the interface satisfied by PhotoClient.
type photoFetcher interface {
	Fetch(ctx context.Context, destination string, intent Intent) ([]PhotoRecord, error)
}

// summaryResolver is the interface satisfied by Resolver.
type summaryResolver interface {
	Resolve(ctx context.Context, destination string) (DestinationSummary, error)
}

// Aggregator runs the weather, photo and encyclopedia lookups for a search.
type Aggregator struct {
	weather  weatherFetcher
	photos   photoFetcher
	resolver summaryResolver
	log      *slog.Logger
}

// NewAggregator constructs an Aggregator from its three sources.
func NewAggregator(w weatherFetcher, p photoFetcher, r summaryResolver, log *slog.Logger) *Aggregator {
	return &Aggregator{weather: w, photos: p, resolver: r, log: log}
}

// Search fetches all three sources in parallel. A weather or photo failure
// fails the whole search and cancels the remaining fetches. A summary
// failure is logged and replaced with NotFoundSummary.
func (a *Aggregator) Search(ctx context.Context, q DestinationQuery) (*SearchResultBundle, error) {
	g, gCtx := errgroup.WithContext(ctx)

	var weather *WeatherRecord
	var photos []PhotoRecord
	summary := NotFoundSummary()

	g.Go(func() (err error) {
		defer recoverInto(&err, "weather fetch")
		w, fetchErr := a.weather.Fetch(gCtx, q.RawText)
		if fetchErr != nil {
			return fetchErr
		}
		weather = w
		return nil
	})

	g.Go(func() (err error) {
		defer recoverInto(&err, "photo fetch")
		p, fetchErr := a.photos.Fetch(gCtx, q.RawText, q.Intent)
		if fetchErr != nil {
			return fetchErr
		}
		photos = labelPhotos(p, q.RawText)
		return nil
	})

	g.Go(func() (err error) {
		defer recoverInto(&err, "destination info fetch")
		s, fetchErr := a.resolver.Resolve(gCtx, q.RawText)
		if fetchErr != nil {
			a.log.Warn("destination info unavailable, using sentinel",
				"destination", q.RawText,
				"kind", ErrorKind(fetchErr),
				"err", fetchErr)
			return nil
		}
		summary = s
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("searching %s: %w", q.RawText, err)
	}

	return &SearchResultBundle{
		Destination: q.RawText,
		Weather:     weather,
		Photos:      photos,
		Summary:     summary,
	}, nil
}

// labelPhotos keeps at most MaxPhotos and attaches a display label to each.
func labelPhotos(photos []PhotoRecord, fallback string) []PhotoRecord {
	if len(photos) > MaxPhotos {
		photos = photos[:MaxPhotos]
	}
	out := make([]PhotoRecord, len(photos))
	for i, p := range photos {
		p.DisplayLabel = Label(p, fallback)
		out[i] = p
	}
	return out
}

func recoverInto(err *error, what string) {
	if r := recover(); r != nil {
		slog.Error(what+" panicked", "recover", r)
		*err = fmt.Errorf("%s panicked: %v", what, r)
	}
}

// ErrorKind names the error kind of err for logs.
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, ErrMisconfigured):
		return "misconfigured"
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrTransport):
		return "transport"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "unknown"
	}
}
