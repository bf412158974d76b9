// Package routing implements ports.RoutingService against the remote
// routing/blockage web service.
package routing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/paulmach/orb/geojson"

	"github.com/routelab/routeboard/internal/core/domain"
	"github.com/routelab/routeboard/internal/core/ports"
	"github.com/routelab/routeboard/internal/pkg/metrics"
)

// Client talks to the routing service. It maps transport failures onto the
// domain error taxonomy and performs no retries of its own.
type Client struct {
	base string
	http *http.Client
}

// NewClient creates a routing client. timeout bounds every individual call.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		base: strings.TrimRight(baseURL, "/"),
		http: &http.Client{Timeout: timeout},
	}
}

// do executes one request and returns the response body. Status mapping:
// transport failure -> NetworkError, 4xx -> RemoteClientError,
// 5xx -> RemoteServerError.
func (c *Client) do(ctx context.Context, method, path string, body any) ([]byte, error) {
	op := method + " " + path
	began := time.Now()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("%s: encode body: %w", op, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, reader)
	if err != nil {
		return nil, fmt.Errorf("%s: build request: %w", op, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		metrics.RemoteCalls.WithLabelValues(op, "network_error").Inc()
		return nil, &domain.NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 32<<20))
	if err != nil {
		metrics.RemoteCalls.WithLabelValues(op, "network_error").Inc()
		return nil, &domain.NetworkError{Op: op, Err: err}
	}

	metrics.RemoteCallDuration.WithLabelValues(op).Observe(time.Since(began).Seconds())

	switch {
	case resp.StatusCode >= 500:
		metrics.RemoteCalls.WithLabelValues(op, "server_error").Inc()
		return nil, &domain.RemoteServerError{Status: resp.StatusCode, Body: trimBody(data)}
	case resp.StatusCode >= 400:
		metrics.RemoteCalls.WithLabelValues(op, "client_error").Inc()
		return nil, &domain.RemoteClientError{Status: resp.StatusCode, Body: trimBody(data)}
	}

	metrics.RemoteCalls.WithLabelValues(op, "ok").Inc()
	return data, nil
}

func trimBody(data []byte) string {
	const max = 256
	s := strings.TrimSpace(string(data))
	if len(s) > max {
		s = s[:max] + "..."
	}
	return s
}

// Ready reports whether the service answered "ready" (case-insensitive).
// Any other 2xx payload and any transport failure count as not-ready; a
// definitive 4xx/5xx is returned as a hard error.
func (c *Client) Ready(ctx context.Context) (bool, error) {
	data, err := c.do(ctx, http.MethodGet, "/ready", nil)
	if err != nil {
		if domain.IsAmbiguousOutcome(err) {
			return false, nil
		}
		return false, err
	}
	answer := strings.Trim(strings.TrimSpace(string(data)), `"`)
	return strings.EqualFold(answer, "ready"), nil
}

// AllRoadTypes returns every road-type name the service knows.
func (c *Client) AllRoadTypes(ctx context.Context) ([]string, error) {
	return c.getStrings(ctx, "/road-types/all")
}

// ValidRoadTypes returns the subset currently used by the router.
func (c *Client) ValidRoadTypes(ctx context.Context) ([]string, error) {
	return c.getStrings(ctx, "/road-types/valid")
}

func (c *Client) getStrings(ctx context.Context, path string) ([]string, error) {
	data, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	var out []string
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, &domain.MalformedResponse{Op: "GET " + path, Detail: err.Error()}
	}
	return out, nil
}

// SetValidRoadTypes replaces the active road-type subset.
func (c *Client) SetValidRoadTypes(ctx context.Context, types []string) ([]string, error) {
	data, err := c.do(ctx, http.MethodPost, "/road-types/valid", types)
	if err != nil {
		return nil, err
	}
	var out []string
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, &domain.MalformedResponse{Op: "POST /road-types/valid", Detail: err.Error()}
	}
	return out, nil
}

// RoadTypeGeometry fetches the geometry for one road type in whichever of
// the three shapes the service produces.
func (c *Client) RoadTypeGeometry(ctx context.Context, name string) (domain.NormalizedGeometry, error) {
	data, err := c.do(ctx, http.MethodGet, "/road-types/"+url.PathEscape(name), nil)
	if err != nil {
		return domain.NormalizedGeometry{}, err
	}
	return domain.NormalizeGeometry(data), nil
}

// Route computes a path between two points.
func (c *Client) Route(ctx context.Context, req domain.RouteRequest) (*geojson.FeatureCollection, error) {
	data, err := c.do(ctx, http.MethodPost, "/route", req)
	if err != nil {
		return nil, err
	}
	norm := domain.NormalizeGeometry(data)
	switch norm.Kind {
	case domain.GeometryCollectionKind:
		return norm.Collection, nil
	case domain.GeometryEmpty:
		return geojson.NewFeatureCollection(), nil
	}
	return nil, &domain.MalformedResponse{Op: "POST /route", Detail: norm.Detail}
}

// Blockages returns the full blockage set. A missing or malformed body is
// an empty collection, never an error.
func (c *Client) Blockages(ctx context.Context) (*geojson.FeatureCollection, error) {
	data, err := c.do(ctx, http.MethodGet, "/blockages", nil)
	if err != nil {
		return nil, err
	}
	norm := domain.NormalizeGeometry(data)
	if norm.Kind != domain.GeometryCollectionKind {
		return geojson.NewFeatureCollection(), nil
	}
	return norm.Collection, nil
}

// AddBlockage registers a new blockage.
func (c *Client) AddBlockage(ctx context.Context, b domain.Blockage) error {
	_, err := c.do(ctx, http.MethodPost, "/blockages", b)
	return err
}

// DeleteBlockage removes a blockage by name.
func (c *Client) DeleteBlockage(ctx context.Context, name string) error {
	_, err := c.do(ctx, http.MethodDelete, "/blockages/"+url.PathEscape(name), nil)
	return err
}

var _ ports.RoutingService = (*Client)(nil)
