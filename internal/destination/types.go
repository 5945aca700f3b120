package destination

import (
	"encoding/json"
	"errors"
	"strings"
)

// Intent biases photo search toward landmarks or general atmosphere.
type Intent int

const (
	IntentGeneral Intent = iota
	IntentAttractions
)

// ParseIntent maps the "type" query parameter to an Intent.
// Anything other than "attractions" is treated as general.
func ParseIntent(s string) Intent {
	if strings.EqualFold(strings.TrimSpace(s), "attractions") {
		return IntentAttractions
	}
	return IntentGeneral
}

func (i Intent) String() string {
	if i == IntentAttractions {
		return "attractions"
	}
	return "general"
}

// MarshalJSON encodes the intent as its lowercase name.
func (i Intent) MarshalJSON() ([]byte, error) {
	return json.Marshal(i.String())
}

// ErrEmptyDestination is returned when a query has no destination text.
var ErrEmptyDestination = errors.New("please enter a destination to search for")

// DestinationQuery is a single user search.
type DestinationQuery struct {
	RawText string `json:"destination"`
	Intent  Intent `json:"intent"`
}

// NewDestinationQuery trims the raw input and rejects blank destinations.
func NewDestinationQuery(raw string, intent Intent) (DestinationQuery, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return DestinationQuery{}, ErrEmptyDestination
	}
	return DestinationQuery{RawText: text, Intent: intent}, nil
}

// WeatherRecord holds current conditions, temperature always in Celsius.
type WeatherRecord struct {
	TemperatureC  float64 `json:"temperature_c"`
	ConditionText string  `json:"condition"`
	IconCode      string  `json:"icon_code"`
	IconURL       string  `json:"icon_url,omitempty"`
	HumidityPct   int     `json:"humidity_pct"`
	WindSpeedMs   float64 `json:"wind_speed_ms"`
	VisibilityKm  float64 `json:"visibility_km"`
}

// Tag is a single photo tag as reported by the photo provider.
type Tag struct {
	Type  string `json:"type"`
	Title string `json:"title"`
}

// PhotoRecord is one photo ready for display.
type PhotoRecord struct {
	ImageURL     string  `json:"image_url"`
	AltText      *string `json:"alt_text"`
	Tags         []Tag   `json:"tags"`
	LinkURL      string  `json:"link_url"`
	DisplayLabel string  `json:"display_label"`
}

// ResolvedVia records which stage of lookup produced a summary.
type ResolvedVia string

const (
	ResolvedDirect         ResolvedVia = "DIRECT"
	ResolvedSearchFallback ResolvedVia = "SEARCH_FALLBACK"
	ResolvedNotFound       ResolvedVia = "NOT_FOUND"
)

// DestinationSummary is the encyclopedia extract for a destination.
type DestinationSummary struct {
	Title       string      `json:"title"`
	Extract     string      `json:"extract"`
	ResolvedVia ResolvedVia `json:"resolved_via"`

	// Raw is the provider body of the final summary lookup, nil for the sentinel.
	Raw json.RawMessage `json:"-"`
}

// NotFoundSummary returns the sentinel used when nothing could be resolved.
func NotFoundSummary() DestinationSummary {
	return DestinationSummary{
		Title:       "Not found.",
		Extract:     "No specific history found.",
		ResolvedVia: ResolvedNotFound,
	}
}

// SearchResultBundle is the aggregated result handed to the presentation layer.
type SearchResultBundle struct {
	Destination string             `json:"destination"`
	Weather     *WeatherRecord     `json:"weather"`
	Photos      []PhotoRecord      `json:"photos"`
	Summary     DestinationSummary `json:"summary"`
}
