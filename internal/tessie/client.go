// Package tessie provides a client for vehicle telemetry from the Tessie API.
package tessie

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/leaselad/leaselad/internal/model"
)

const (
	// DefaultBaseURL is the public Tessie API endpoint.
	DefaultBaseURL = "https://api.tessie.com"

	requestTimeout = 15 * time.Second
	maxBodySize    = 1 << 20 // 1 MB
	userAgent      = "github.com/leaselad/leaselad/1.0"

	// SourceName tags vehicles fetched by this client.
	SourceName = "tessie"
)

var (
	// ErrUnauthorized indicates the API token was rejected.
	ErrUnauthorized = errors.New("tessie: unauthorized (check API token)")
	// ErrRateLimited indicates the API rate limit was hit.
	ErrRateLimited = errors.New("tessie: rate limited")
	// ErrNoVehicles indicates the account has no vehicles.
	ErrNoVehicles = errors.New("tessie: no vehicles found on this account")
	// ErrVehicleState indicates the vehicle list loaded but its state did not.
	ErrVehicleState = errors.New("tessie: failed to fetch vehicle state")
)

// Client fetches vehicle telemetry for one account.
type Client struct {
	token   string
	vin     string
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at a different API host.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.baseURL = strings.TrimRight(u, "/")
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithRateLimit caps outgoing requests per second.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(c *Client) { c.limiter = rate.NewLimiter(rate.Limit(perSecond), burst) }
}

// NewClient creates a client for the given token. vin selects a vehicle;
// empty means the first vehicle on the account.
// Returns nil if the token is empty.
func NewClient(token, vin string, opts ...Option) *Client {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil
	}
	c := &Client{
		token:   token,
		vin:     strings.TrimSpace(vin),
		baseURL: DefaultBaseURL,
		http:    &http.Client{},
		limiter: rate.NewLimiter(rate.Limit(2), 2),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchVehicle resolves the configured vehicle and returns its normalized state.
// If the configured VIN is not on the account, the first vehicle is used and
// the returned Vehicle carries a Notice.
func (c *Client) FetchVehicle(ctx context.Context) (*model.Vehicle, error) {
	vehicles, err := c.FetchVehicles(ctx)
	if err != nil {
		return nil, err
	}
	if len(vehicles) == 0 {
		return nil, ErrNoVehicles
	}

	target, notice := pickVehicle(vehicles, c.vin)
	if notice != "" {
		log.Warn().Str("vin", c.vin).Str("fallback", target.VIN).Msg("configured VIN not on account")
	}

	state, err := c.FetchState(ctx, target.VIN)
	if err != nil {
		if errors.Is(err, ErrUnauthorized) || errors.Is(err, ErrRateLimited) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrVehicleState, err)
	}

	v := normalize(target, state)
	v.Notice = notice
	return v, nil
}

// FetchVehicles returns the vehicles on the account.
func (c *Client) FetchVehicles(ctx context.Context) ([]VehicleSummary, error) {
	body, err := c.get(ctx, "/vehicles")
	if err != nil {
		return nil, err
	}

	vehicles, err := parseVehicleList(body)
	if err != nil {
		return nil, fmt.Errorf("tessie: parsing vehicles: %w", err)
	}
	return vehicles, nil
}

// FetchState returns the raw state for one vehicle.
func (c *Client) FetchState(ctx context.Context, vin string) (*StateResponse, error) {
	body, err := c.get(ctx, "/"+url.PathEscape(vin)+"/state")
	if err != nil {
		return nil, err
	}

	var st StateResponse
	if err := json.Unmarshal(body, &st); err != nil {
		return nil, fmt.Errorf("tessie: parsing state: %w", err)
	}
	return &st, nil
}

// get performs an authenticated GET request and returns the response body.
func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("tessie: waiting for rate limiter: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("tessie: creating request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tessie: request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	log.Debug().
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("tessie request")

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, ErrUnauthorized
	case http.StatusTooManyRequests:
		return nil, ErrRateLimited
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("tessie: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("tessie: reading response: %w", err)
	}
	return body, nil
}

// pickVehicle returns the vehicle matching vin, or the first one with a notice.
func pickVehicle(vehicles []VehicleSummary, vin string) (VehicleSummary, string) {
	if vin == "" {
		return vehicles[0], ""
	}
	for _, v := range vehicles {
		if strings.EqualFold(v.VIN, vin) {
			return v, ""
		}
	}
	return vehicles[0], fmt.Sprintf("VIN %s not found. Defaulting to first vehicle found.", vin)
}

// normalize flattens the nested state sections into a Vehicle.
func normalize(summary VehicleSummary, st *StateResponse) *model.Vehicle {
	v := &model.Vehicle{
		Name:          summary.DisplayName,
		VIN:           summary.VIN,
		State:         st.State,
		ChargingState: "Disconnected",
		Source:        SourceName,
		FetchedAt:     time.Now(),
	}
	if v.Name == "" {
		v.Name = st.DisplayName
	}
	if v.Name == "" {
		v.Name = "My Tesla"
	}

	if vs := st.VehicleState; vs != nil {
		if vs.Odometer != nil {
			v.Odometer = *vs.Odometer
		}
		v.Locked = vs.Locked
		v.SentryMode = vs.SentryMode
	}
	if st.VehicleState == nil || st.VehicleState.Odometer == nil {
		v.OdometerMissing = true
		log.Warn().Str("vin", v.VIN).Msg("vehicle state has no odometer; using 0")
	}
	if cs := st.ChargeState; cs != nil {
		v.BatteryLevel = cs.BatteryLevel
		v.IdealRange = cs.IdealBatteryRange
		if cs.ChargingState != "" {
			v.ChargingState = cs.ChargingState
		}
	}
	if cl := st.ClimateState; cl != nil {
		v.OutsideTemp = cl.OutsideTemp
		v.InsideTemp = cl.InsideTemp
	}
	if ds := st.DriveState; ds != nil {
		v.Latitude = ds.Latitude
		v.Longitude = ds.Longitude
	}
	return v
}
