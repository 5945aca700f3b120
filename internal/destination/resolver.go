package destination

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// encyclopedia is the interface satisfied by EncyclopediaClient.
type encyclopedia interface {
	Summary(ctx context.Context, title string) (DestinationSummary, error)
	Search(ctx context.Context, query string) ([]string, error)
}

// Resolver finds an encyclopedia summary for a destination, falling back
// to full-text search when the name is not a page title.
type Resolver struct {
	wiki     encyclopedia
	observer Observer
	log      *slog.Logger
}

// NewResolver constructs a Resolver. A nil observer disables metrics.
func NewResolver(wiki encyclopedia, obs Observer, log *slog.Logger) *Resolver {
	if obs == nil {
		obs = NopObserver{}
	}
	return &Resolver{wiki: wiki, observer: obs, log: log}
}

// Resolve returns the summary for destination. Not-found outcomes become
// the NotFoundSummary sentinel; transport failures are returned as errors.
func (r *Resolver) Resolve(ctx context.Context, destination string) (DestinationSummary, error) {
	summary, err := r.resolve(ctx, destination)
	if err != nil {
		return DestinationSummary{}, err
	}
	r.observer.ObserveResolution(summary.ResolvedVia)
	return summary, nil
}

func (r *Resolver) resolve(ctx context.Context, destination string) (DestinationSummary, error) {
	summary, err := r.wiki.Summary(ctx, destination)
	if err == nil {
		summary.ResolvedVia = ResolvedDirect
		return summary, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return DestinationSummary{}, fmt.Errorf("resolving %s: %w", destination, err)
	}

	r.log.Debug("direct summary missed, trying search", "destination", destination)

	titles, err := r.wiki.Search(ctx, destination)
	if err != nil {
		return DestinationSummary{}, fmt.Errorf("resolving %s via search: %w", destination, err)
	}
	if len(titles) == 0 {
		r.log.Debug("search returned no hits", "destination", destination)
		return NotFoundSummary(), nil
	}

	summary, err = r.wiki.Summary(ctx, titles[0])
	if errors.Is(err, ErrNotFound) {
		return NotFoundSummary(), nil
	}
	if err != nil {
		return DestinationSummary{}, fmt.Errorf("resolving %s via %q: %w", destination, titles[0], err)
	}

	summary.ResolvedVia = ResolvedSearchFallback
	return summary, nil
}
