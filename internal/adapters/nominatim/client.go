// Package nominatim implements ports.Geocoder against a Nominatim instance.
package nominatim

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/routelab/routeboard/internal/core/domain"
	"github.com/routelab/routeboard/internal/core/ports"
	"github.com/routelab/routeboard/internal/pkg/metrics"
)

const (
	defaultUserAgent = "routeboard/1.0"
	resultLimit      = 5
)

// Client queries the Nominatim search API. Requests are rate-limited to one
// per second to honor the public instance usage policy.
type Client struct {
	base      string
	userAgent string
	country   string
	http      *http.Client
	limiter   *rate.Limiter
}

// NewClient creates a geocoder scoped to the given ISO country code. An empty
// countryCode disables scoping.
func NewClient(baseURL, countryCode string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		base:      strings.TrimRight(baseURL, "/"),
		userAgent: defaultUserAgent,
		country:   countryCode,
		http:      &http.Client{Timeout: timeout},
		limiter:   rate.NewLimiter(rate.Every(time.Second), 1),
	}
}

// nominatimPlace is the wire shape of one search hit. Coordinates arrive as
// strings.
type nominatimPlace struct {
	PlaceID     int64  `json:"place_id"`
	DisplayName string `json:"display_name"`
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	Type        string `json:"type"`
}

// Search resolves a free-text query into up to five candidate places.
func (c *Client) Search(ctx context.Context, query string) ([]domain.GeocodeResult, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("limit", strconv.Itoa(resultLimit))
	if c.country != "" {
		params.Set("countrycodes", c.country)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/search?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("geocode: build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		metrics.GeocodeRequests.WithLabelValues("network_error").Inc()
		return nil, &domain.NetworkError{Op: "GET /search", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.GeocodeRequests.WithLabelValues("error").Inc()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		if resp.StatusCode >= 500 {
			return nil, &domain.RemoteServerError{Status: resp.StatusCode, Body: string(body)}
		}
		return nil, &domain.RemoteClientError{Status: resp.StatusCode, Body: string(body)}
	}

	var places []nominatimPlace
	if err := json.NewDecoder(resp.Body).Decode(&places); err != nil {
		metrics.GeocodeRequests.WithLabelValues("malformed").Inc()
		return nil, &domain.MalformedResponse{Op: "GET /search", Detail: err.Error()}
	}

	results := make([]domain.GeocodeResult, 0, len(places))
	for _, p := range places {
		lat, latErr := strconv.ParseFloat(p.Lat, 64)
		lon, lonErr := strconv.ParseFloat(p.Lon, 64)
		if latErr != nil || lonErr != nil {
			continue
		}
		results = append(results, domain.GeocodeResult{
			PlaceID:     p.PlaceID,
			DisplayName: p.DisplayName,
			Lat:         lat,
			Long:        lon,
			Type:        p.Type,
		})
	}
	metrics.GeocodeRequests.WithLabelValues("ok").Inc()
	return results, nil
}

var _ ports.Geocoder = (*Client)(nil)
