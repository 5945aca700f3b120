package api

import (
	"context"

	"github.com/neexbeast/trip-planner/internal/destination"
)

// WeatherSource returns raw current-weather bodies for the pass-through endpoint.
type WeatherSource interface {
	Raw(ctx context.Context, city string) (*destination.Response, error)
}

// PhotoSource returns raw photo search bodies for the pass-through endpoint.
type PhotoSource interface {
	Raw(ctx context.Context, dest string, intent destination.Intent) (*destination.Response, error)
}

// SummaryResolver resolves a destination to an encyclopedia summary.
type SummaryResolver interface {
	Resolve(ctx context.Context, dest string) (destination.DestinationSummary, error)
}

// Searcher runs the aggregated search.
type Searcher interface {
	Search(ctx context.Context, q destination.DestinationQuery) (*destination.SearchResultBundle, error)
}
