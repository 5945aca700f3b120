package destination

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// Provider names, used in errors and metrics labels.
const (
	ProviderWeather      = "openweathermap"
	ProviderPhotos       = "unsplash"
	ProviderEncyclopedia = "wikipedia"
)

// checkStatus maps provider status codes onto error kinds.
func checkStatus(provider string, resp *Response) error {
	switch {
	case resp.Status == http.StatusUnauthorized:
		return fmt.Errorf("%s: %w (status 401)", provider, ErrUnauthorized)
	case resp.Status == http.StatusNotFound:
		return fmt.Errorf("%s: %w", provider, ErrNotFound)
	case resp.Status < 200 || resp.Status >= 300:
		return fmt.Errorf("%s: %w: service error, status %d", provider, ErrTransport, resp.Status)
	}
	return nil
}

func decode(provider string, resp *Response, dst any) error {
	if err := json.Unmarshal(resp.Body, dst); err != nil {
		return fmt.Errorf("%s: %w: decoding response: %v", provider, ErrTransport, err)
	}
	return nil
}

// ---- OpenWeatherMap ----

// Weather unit systems accepted by OpenWeatherMap.
const (
	UnitsMetric   = "metric"
	UnitsStandard = "standard"
)

const (
	owmDefaultURL = "https://api.openweathermap.org/data/2.5/weather"
	owmIconURL    = "https://openweathermap.org/img/wn/%s@2x.png"
	kelvinOffset  = 273.15
)

// WeatherClient fetches current weather from OpenWeatherMap.
type WeatherClient struct {
	transport Transport
	apiKey    string
	baseURL   string
	units     string
}

// NewWeatherClient constructs a WeatherClient against the production API.
func NewWeatherClient(t Transport, apiKey, units string) *WeatherClient {
	return NewWeatherClientWithURL(t, owmDefaultURL, apiKey, units)
}

// NewWeatherClientWithURL constructs a WeatherClient pointing at a custom base URL.
func NewWeatherClientWithURL(t Transport, baseURL, apiKey, units string) *WeatherClient {
	if units != UnitsStandard {
		units = UnitsMetric
	}
	return &WeatherClient{transport: t, apiKey: apiKey, baseURL: baseURL, units: units}
}

type owmResponse struct {
	Main struct {
		Temp     float64 `json:"temp"`
		Humidity int     `json:"humidity"`
	} `json:"main"`
	Weather []struct {
		Description string `json:"description"`
		Icon        string `json:"icon"`
	} `json:"weather"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
	Visibility float64 `json:"visibility"`
}

// Raw returns the provider body for city without interpreting its status.
func (c *WeatherClient) Raw(ctx context.Context, city string) (*Response, error) {
	if err := CheckCredential(ProviderWeather, c.apiKey); err != nil {
		return nil, err
	}

	params := url.Values{
		"q":     {city},
		"appid": {c.apiKey},
		"units": {c.units},
	}

	resp, err := c.transport.FetchJSON(ctx, c.baseURL+"?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("%s fetch for %s: %w", ProviderWeather, city, err)
	}
	return resp, nil
}

// Fetch retrieves and normalizes current weather for city.
func (c *WeatherClient) Fetch(ctx context.Context, city string) (*WeatherRecord, error) {
	resp, err := c.Raw(ctx, city)
	if err != nil {
		return nil, err
	}
	if err := checkStatus(ProviderWeather, resp); err != nil {
		return nil, fmt.Errorf("weather for %s: %w", city, err)
	}

	var raw owmResponse
	if err := decode(ProviderWeather, resp, &raw); err != nil {
		return nil, err
	}

	record := &WeatherRecord{
		TemperatureC: toCelsius(raw.Main.Temp, c.units),
		HumidityPct:  raw.Main.Humidity,
		WindSpeedMs:  raw.Wind.Speed,
		VisibilityKm: raw.Visibility / 1000,
	}
	if len(raw.Weather) > 0 {
		record.ConditionText = raw.Weather[0].Description
		record.IconCode = raw.Weather[0].Icon
		if record.IconCode != "" {
			record.IconURL = fmt.Sprintf(owmIconURL, record.IconCode)
		}
	}

	return record, nil
}

// toCelsius converts a provider temperature to Celsius based on the
// unit system that was requested. This is the only conversion point.
func toCelsius(temp float64, units string) float64 {
	if units == UnitsStandard {
		return temp - kelvinOffset
	}
	return temp
}

// ---- Unsplash ----

const (
	unsplashDefaultURL = "https://api.unsplash.com/search/photos"
	defaultPerPage     = 30
)

// PhotoClient searches photos on Unsplash.
type PhotoClient struct {
	transport Transport
	accessKey string
	baseURL   string
	perPage   int
}

// NewPhotoClient constructs a PhotoClient against the production API.
func NewPhotoClient(t Transport, accessKey string) *PhotoClient {
	return NewPhotoClientWithURL(t, unsplashDefaultURL, accessKey)
}

// NewPhotoClientWithURL constructs a PhotoClient pointing at a custom base URL.
func NewPhotoClientWithURL(t Transport, baseURL, accessKey string) *PhotoClient {
	return &PhotoClient{transport: t, accessKey: accessKey, baseURL: baseURL, perPage: defaultPerPage}
}

type unsplashResponse struct {
	Results []struct {
		URLs struct {
			Regular string `json:"regular"`
		} `json:"urls"`
		AltDescription *string `json:"alt_description"`
		Tags           []Tag   `json:"tags"`
		Links          struct {
			HTML string `json:"html"`
		} `json:"links"`
	} `json:"results"`
}

// Raw returns the provider search body for destination and intent.
func (c *PhotoClient) Raw(ctx context.Context, destination string, intent Intent) (*Response, error) {
	if err := CheckCredential(ProviderPhotos, c.accessKey); err != nil {
		return nil, err
	}

	params := url.Values{
		"query":       {BuildPhotoQuery(destination, intent, IsSubregion(destination))},
		"client_id":   {c.accessKey},
		"per_page":    {strconv.Itoa(c.perPage)},
		"orientation": {"landscape"},
		"order_by":    {"relevant"},
	}

	resp, err := c.transport.FetchJSON(ctx, c.baseURL+"?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("%s fetch for %s: %w", ProviderPhotos, destination, err)
	}
	return resp, nil
}

// Fetch returns the photos for destination in provider relevance order.
// DisplayLabel is left empty; the aggregator fills it in.
func (c *PhotoClient) Fetch(ctx context.Context, destination string, intent Intent) ([]PhotoRecord, error) {
	resp, err := c.Raw(ctx, destination, intent)
	if err != nil {
		return nil, err
	}
	if err := checkStatus(ProviderPhotos, resp); err != nil {
		return nil, fmt.Errorf("photos for %s: %w", destination, err)
	}

	var raw unsplashResponse
	if err := decode(ProviderPhotos, resp, &raw); err != nil {
		return nil, err
	}

	photos := make([]PhotoRecord, 0, len(raw.Results))
	for _, r := range raw.Results {
		if r.URLs.Regular == "" {
			continue
		}
		photos = append(photos, PhotoRecord{
			ImageURL: r.URLs.Regular,
			AltText:  r.AltDescription,
			Tags:     r.Tags,
			LinkURL:  r.Links.HTML,
		})
	}

	return photos, nil
}

// ---- Wikipedia ----

const (
	wikiSummaryDefaultURL = "https://en.wikipedia.org/api/rest_v1/page/summary"
	wikiSearchDefaultURL  = "https://en.wikipedia.org/w/api.php"
	wikiInternalError     = "Internal error"
)

// EncyclopediaClient talks to the Wikipedia summary and search endpoints.
// It needs no credential.
type EncyclopediaClient struct {
	transport  Transport
	summaryURL string
	searchURL  string
}

// NewEncyclopediaClient constructs an EncyclopediaClient against production Wikipedia.
func NewEncyclopediaClient(t Transport) *EncyclopediaClient {
	return NewEncyclopediaClientWithURLs(t, wikiSummaryDefaultURL, wikiSearchDefaultURL)
}

// NewEncyclopediaClientWithURLs constructs an EncyclopediaClient pointing at custom URLs.
func NewEncyclopediaClientWithURLs(t Transport, summaryURL, searchURL string) *EncyclopediaClient {
	return &EncyclopediaClient{transport: t, summaryURL: summaryURL, searchURL: searchURL}
}

type wikiSummary struct {
	Title   string `json:"title"`
	Extract string `json:"extract"`
	Type    string `json:"type"`
}

type wikiSearchResponse struct {
	Query struct {
		Search []struct {
			Title string `json:"title"`
		} `json:"search"`
	} `json:"query"`
}

// Summary looks up the page summary for title. A 404 or an
// "Internal error" payload is reported as ErrNotFound.
func (c *EncyclopediaClient) Summary(ctx context.Context, title string) (DestinationSummary, error) {
	endpoint := c.summaryURL + "/" + url.PathEscape(title)

	resp, err := c.transport.FetchJSON(ctx, endpoint)
	if err != nil {
		return DestinationSummary{}, fmt.Errorf("%s summary for %s: %w", ProviderEncyclopedia, title, err)
	}

	var raw wikiSummary
	if resp.Status == http.StatusNotFound {
		return DestinationSummary{}, fmt.Errorf("%s summary for %s: %w", ProviderEncyclopedia, title, ErrNotFound)
	}
	if err := decode(ProviderEncyclopedia, resp, &raw); err != nil {
		return DestinationSummary{}, err
	}
	if raw.Type == wikiInternalError {
		return DestinationSummary{}, fmt.Errorf("%s summary for %s: %w (internal error payload)", ProviderEncyclopedia, title, ErrNotFound)
	}
	if err := checkStatus(ProviderEncyclopedia, resp); err != nil {
		return DestinationSummary{}, fmt.Errorf("summary for %s: %w", title, err)
	}

	return DestinationSummary{Title: raw.Title, Extract: raw.Extract, Raw: resp.Body}, nil
}

// Search runs a full-text search and returns hit titles in relevance order.
func (c *EncyclopediaClient) Search(ctx context.Context, query string) ([]string, error) {
	params := url.Values{
		"action":   {"query"},
		"list":     {"search"},
		"srsearch": {query},
		"format":   {"json"},
		"prop":     {"info"},
		"inprop":   {"url"},
	}

	resp, err := c.transport.FetchJSON(ctx, c.searchURL+"?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("%s search for %s: %w", ProviderEncyclopedia, query, err)
	}
	if err := checkStatus(ProviderEncyclopedia, resp); err != nil {
		return nil, fmt.Errorf("search for %s: %w", query, err)
	}

	var raw wikiSearchResponse
	if err := decode(ProviderEncyclopedia, resp, &raw); err != nil {
		return nil, err
	}

	titles := make([]string, 0, len(raw.Query.Search))
	for _, hit := range raw.Query.Search {
		if hit.Title != "" {
			titles = append(titles, hit.Title)
		}
	}
	return titles, nil
}
