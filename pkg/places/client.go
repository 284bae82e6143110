// Package places is a minimal Google Places Nearby Search client used to
// gather candidate businesses around a point.
package places

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/market-intel/internal/model"
)

const defaultBaseURL = "https://maps.googleapis.com/maps/api/place"

// maxPages bounds page-token pagination. The API returns at most 20 results
// per page and 60 per query.
const maxPages = 3

// pageTokenDelay is how long a next_page_token takes to become valid
// server-side.
const pageTokenDelay = 2 * time.Second

// Client performs Places API operations.
type Client interface {
	NearbySearch(ctx context.Context, query string, lat, lng float64, radiusMeters int) ([]model.Business, error)
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(u string) Option {
	return func(c *httpClient) {
		c.baseURL = u
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithPageTokenDelay overrides the wait between paginated requests.
func WithPageTokenDelay(d time.Duration) Option {
	return func(c *httpClient) {
		c.tokenDelay = d
	}
}

// WithLanguage sets the language parameter sent to the API.
func WithLanguage(lang string) Option {
	return func(c *httpClient) {
		c.language = lang
	}
}

type httpClient struct {
	apiKey     string
	baseURL    string
	language   string
	tokenDelay time.Duration
	http       *http.Client
}

// NewClient creates a Places API client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		language:   "tr",
		tokenDelay: pageTokenDelay,
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

type nearbyResponse struct {
	Status        string        `json:"status"`
	ErrorMessage  string        `json:"error_message"`
	NextPageToken string        `json:"next_page_token"`
	Results       []placeResult `json:"results"`
}

type placeResult struct {
	PlaceID          string   `json:"place_id"`
	Name             string   `json:"name"`
	Rating           float64  `json:"rating"`
	UserRatingsTotal int      `json:"user_ratings_total"`
	BusinessStatus   string   `json:"business_status"`
	Website          string   `json:"website"`
	Vicinity         string   `json:"vicinity"`
	Geometry         geometry `json:"geometry"`
}

type geometry struct {
	Location latLng `json:"location"`
}

type latLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// NearbySearch runs a keyword search around (lat,lng) and follows page
// tokens up to the API's 60-result limit. Businesses not marked OPERATIONAL
// are skipped.
func (c *httpClient) NearbySearch(ctx context.Context, query string, lat, lng float64, radiusMeters int) ([]model.Business, error) {
	var out []model.Business
	seen := make(map[string]bool)

	pageToken := ""
	for page := 0; page < maxPages; page++ {
		if pageToken != "" {
			// A fresh token is rejected until the server has prepared the page.
			t := time.NewTimer(c.tokenDelay)
			select {
			case <-ctx.Done():
				t.Stop()
				return nil, eris.Wrap(ctx.Err(), "places: wait for page token")
			case <-t.C:
			}
		}

		resp, err := c.nearbyPage(ctx, query, lat, lng, radiusMeters, pageToken)
		if err != nil {
			return nil, err
		}

		for _, p := range resp.Results {
			if p.BusinessStatus != "" && p.BusinessStatus != "OPERATIONAL" {
				continue
			}
			if p.PlaceID == "" || seen[p.PlaceID] {
				continue
			}
			seen[p.PlaceID] = true
			out = append(out, model.Business{
				ID:          p.PlaceID,
				Name:        p.Name,
				Latitude:    p.Geometry.Location.Lat,
				Longitude:   p.Geometry.Location.Lng,
				Rating:      p.Rating,
				ReviewCount: p.UserRatingsTotal,
				Website:     p.Website,
				District:    p.Vicinity,
			})
		}

		if resp.NextPageToken == "" {
			break
		}
		pageToken = resp.NextPageToken
	}

	return out, nil
}

func (c *httpClient) nearbyPage(ctx context.Context, query string, lat, lng float64, radiusMeters int, pageToken string) (*nearbyResponse, error) {
	params := url.Values{}
	params.Set("key", c.apiKey)
	if pageToken != "" {
		params.Set("pagetoken", pageToken)
	} else {
		params.Set("location", fmt.Sprintf("%f,%f", lat, lng))
		params.Set("radius", fmt.Sprintf("%d", radiusMeters))
		params.Set("keyword", query)
		params.Set("language", c.language)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/nearbysearch/json?"+params.Encode(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "places: create request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "places: send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "places: read response")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("places: unexpected status %d: %s", resp.StatusCode, string(respBody))
	}

	var result nearbyResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, eris.Wrap(err, "places: unmarshal response")
	}

	switch result.Status {
	case "OK", "ZERO_RESULTS":
		return &result, nil
	default:
		return nil, eris.Errorf("places: api status %s: %s", result.Status, result.ErrorMessage)
	}
}
