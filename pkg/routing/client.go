package routing

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/foodexpress/foodexpress-backend/pkg/enums"
	pkgerrors "github.com/foodexpress/foodexpress-backend/pkg/errors"
)

const (
	defaultBaseURL            = "https://router.project-osrm.org"
	responseBodyReadLim int64 = 1024
)

// Client wraps an OSRM-compatible routing service used for courier travel
// estimates.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURL overrides the configured routing base URL.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		trimmed := strings.TrimSpace(baseURL)
		if trimmed != "" {
			c.baseURL = trimmed
		}
	}
}

// NewClient builds the routing client.
func NewClient(opts ...Option) *Client {
	client := &Client{
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}

	if client.httpClient == nil {
		client.httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	if client.baseURL == "" {
		client.baseURL = defaultBaseURL
	}

	return client
}

// Point is a WGS84 coordinate pair.
type Point struct {
	Latitude  float64
	Longitude float64
}

// Route holds the travel estimate between two points.
type Route struct {
	DistanceMeters float64
	Duration       time.Duration
}

// Profile maps a courier vehicle onto the OSRM routing profile name.
func Profile(vehicle enums.VehicleType) string {
	switch vehicle {
	case enums.VehicleTypeBike:
		return "bike"
	default:
		return "car"
	}
}

// Route fetches the fastest route between from and to for the given profile.
func (c *Client) Route(ctx context.Context, profile string, from, to Point) (*Route, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "routing client not configured")
	}
	if strings.TrimSpace(profile) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "routing profile is required")
	}

	// OSRM expects lon,lat ordering.
	url := fmt.Sprintf("%s/route/v1/%s/%f,%f;%f,%f?overview=false",
		strings.TrimRight(c.baseURL, "/"), profile,
		from.Longitude, from.Latitude, to.Longitude, to.Latitude)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build route request")
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute route request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLim))
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))), "route request failed")
	}

	var apiResp struct {
		Code   string `json:"code"`
		Routes []struct {
			Distance float64 `json:"distance"`
			Duration float64 `json:"duration"`
		} `json:"routes"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode route response")
	}

	if apiResp.Code != "Ok" || len(apiResp.Routes) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, fmt.Sprintf("no route found (code %s)", apiResp.Code))
	}

	best := apiResp.Routes[0]
	return &Route{
		DistanceMeters: best.Distance,
		Duration:       time.Duration(best.Duration * float64(time.Second)),
	}, nil
}
