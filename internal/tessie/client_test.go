package tessie

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const stateJSON = `{
	"state": "online",
	"display_name": "State Name",
	"vehicle_state": {"odometer": 5034.2, "locked": true, "sentry_mode": false},
	"charge_state": {"battery_level": 78, "charging_state": "Charging", "ideal_battery_range": 215.5},
	"climate_state": {"outside_temp": 18, "inside_temp": 22},
	"drive_state": {"latitude": 40.7128, "longitude": -74.006}
}`

func newTestServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient("tok", "", WithBaseURL(srv.URL), WithRateLimit(1000, 10))
}

func TestNewClientEmptyToken(t *testing.T) {
	assert.Nil(t, NewClient("  ", "VIN"))
}

func TestFetchVehicle(t *testing.T) {
	var paths []string
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		switch r.URL.Path {
		case "/vehicles":
			_, _ = w.Write([]byte(`{"results":[{"vin":"5YJ3E1EA7KF301234","display_name":"Red"}]}`))
		case "/5YJ3E1EA7KF301234/state":
			_, _ = w.Write([]byte(stateJSON))
		default:
			http.NotFound(w, r)
		}
	})

	v, err := c.FetchVehicle(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"/vehicles", "/5YJ3E1EA7KF301234/state"}, paths)
	assert.Equal(t, "Red", v.Name)
	assert.Equal(t, 5034.2, v.Odometer)
	assert.Equal(t, "online", v.State)
	assert.True(t, v.IsCharging())
	require.NotNil(t, v.BatteryLevel)
	assert.Equal(t, 78.0, *v.BatteryLevel)
	require.NotNil(t, v.Locked)
	assert.True(t, *v.Locked)
	assert.True(t, v.HasLocation())
	assert.Equal(t, SourceName, v.Source)
	assert.False(t, v.OdometerMissing)
	assert.Empty(t, v.Notice)
}

func TestFetchVehicleMissingOdometer(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/vehicles":
			_, _ = w.Write([]byte(`[{"vin":"AAA1111"}]`))
		case "/AAA1111/state":
			_, _ = w.Write([]byte(`{"state":"asleep","vehicle_state":{"locked":true}}`))
		default:
			http.NotFound(w, r)
		}
	})

	v, err := c.FetchVehicle(context.Background())
	require.NoError(t, err)
	assert.True(t, v.OdometerMissing)
	assert.Zero(t, v.Odometer)
}

func TestFetchVehicleBareArrayAndVINFallback(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/vehicles":
			_, _ = w.Write([]byte(`[{"vin":"AAA1111"},{"vin":"BBB2222","display_name":"Second"}]`))
		case "/AAA1111/state":
			_, _ = w.Write([]byte(`{"display_name":"From State","vehicle_state":{"odometer":12}}`))
		default:
			http.NotFound(w, r)
		}
	})
	c.vin = "ZZZ9999"

	v, err := c.FetchVehicle(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "AAA1111", v.VIN)
	assert.Equal(t, "From State", v.Name)
	assert.Equal(t, 12.0, v.Odometer)
	assert.Equal(t, "Disconnected", v.ChargingState)
	assert.Nil(t, v.BatteryLevel)
	assert.Contains(t, v.Notice, "VIN ZZZ9999 not found")
}

func TestFetchVehicleSelectsConfiguredVIN(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/vehicles":
			_, _ = w.Write([]byte(`[{"vin":"AAA1111"},{"vin":"BBB2222","display_name":"Second"}]`))
		case "/BBB2222/state":
			_, _ = w.Write([]byte(`{"vehicle_state":{"odometer":99}}`))
		default:
			http.NotFound(w, r)
		}
	})
	c.vin = "bbb2222"

	v, err := c.FetchVehicle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Second", v.Name)
	assert.Equal(t, 99.0, v.Odometer)
	assert.Empty(t, v.Notice)
}

func TestFetchVehicleErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		want    error
	}{
		{
			name: "unauthorized",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
			},
			want: ErrUnauthorized,
		},
		{
			name: "rate limited",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusTooManyRequests)
			},
			want: ErrRateLimited,
		},
		{
			name: "no vehicles",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`{"results":[]}`))
			},
			want: ErrNoVehicles,
		},
		{
			name: "state failure",
			handler: func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path == "/vehicles" {
					_, _ = w.Write([]byte(`[{"vin":"AAA1111"}]`))
					return
				}
				w.WriteHeader(http.StatusInternalServerError)
			},
			want: ErrVehicleState,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestServer(t, tt.handler)
			_, err := c.FetchVehicle(context.Background())
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestParseVehicleListRejectsGarbage(t *testing.T) {
	_, err := parseVehicleList([]byte(`{"vehicles": 1}`))
	assert.Error(t, err)
}
