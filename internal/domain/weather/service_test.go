// internal/domain/weather/service_test.go
package weather

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/shop-backend/internal/config"
)

// fakeClock is a manually advanced time source
type fakeClock struct {
	current time.Time
}

func (c *fakeClock) Now() time.Time { return c.current }

func (c *fakeClock) Advance(d time.Duration) { c.current = c.current.Add(d) }

// fakeFetcher records fetch calls and serves a canned forecast or an error
type fakeFetcher struct {
	forecast []ForecastDay
	err      error
	calls    int
	lastLat  float64
	lastLng  float64
}

func (f *fakeFetcher) FetchForecast(ctx context.Context, latitude, longitude float64) ([]ForecastDay, error) {
	f.calls++
	f.lastLat = latitude
	f.lastLng = longitude
	if f.err != nil {
		return nil, f.err
	}
	return f.forecast, nil
}

// fakeStore holds location overrides in a map
type fakeStore struct {
	overrides map[uint]*UserLocation
}

func (s *fakeStore) GetOverride(ctx context.Context, userID uint) (*UserLocation, error) {
	return s.overrides[userID], nil
}

func (s *fakeStore) SaveOverride(ctx context.Context, userID uint, latitude, longitude float64, address string) error {
	s.overrides[userID] = &UserLocation{
		UserID:    userID,
		Latitude:  latitude,
		Longitude: longitude,
		Address:   address,
	}
	return nil
}

func (s *fakeStore) ClearOverride(ctx context.Context, userID uint) error {
	delete(s.overrides, userID)
	return nil
}

func weatherConfig() *config.Config {
	return &config.Config{
		Weather: config.WeatherConfig{
			CacheTTL:          30 * time.Minute,
			CoordTolerance:    0.01,
			FallbackLatitude:  43.6532,
			FallbackLongitude: -79.3832,
		},
	}
}

func sampleForecast() []ForecastDay {
	return []ForecastDay{
		{Date: "2026-09-01", HighCelsius: 24, LowCelsius: 16, Condition: "sunny"},
		{Date: "2026-09-02", HighCelsius: 21, LowCelsius: 14, Condition: "cloudy"},
	}
}

func newWeatherEnv(cfg *config.Config) (*Service, *fakeClock, *fakeFetcher, *fakeStore) {
	clock := &fakeClock{current: time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)}
	fetcher := &fakeFetcher{forecast: sampleForecast()}
	store := &fakeStore{overrides: map[uint]*UserLocation{}}
	svc := NewServiceWith(cfg, store, fetcher, clock.Now)
	return svc, clock, fetcher, store
}

func TestGetWeather_CachesWithinTTL(t *testing.T) {
	svc, clock, fetcher, _ := newWeatherEnv(weatherConfig())
	ctx := context.Background()

	first, err := svc.GetWeather(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, fetcher.calls)
	assert.Len(t, first.Forecast, 2)

	// Just inside the TTL the slot is still served
	clock.Advance(30*time.Minute - time.Second)
	second, err := svc.GetWeather(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, fetcher.calls)
	assert.Equal(t, first.LastUpdated, second.LastUpdated)

	// Crossing the TTL forces a refetch
	clock.Advance(2 * time.Second)
	third, err := svc.GetWeather(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, fetcher.calls)
	assert.True(t, third.LastUpdated.After(first.LastUpdated))
}

func TestGetWeather_CoordinateTolerance(t *testing.T) {
	cfg := weatherConfig()
	cfg.Weather.CompanyLatitude = 43.65
	cfg.Weather.CompanyLongitude = -79.38
	svc, _, fetcher, store := newWeatherEnv(cfg)
	ctx := context.Background()

	userID := uint(1)
	require.NoError(t, store.SaveOverride(ctx, userID, 43.651, -79.381, "next door"))

	// Guest request fills the slot at the company location
	_, err := svc.GetWeather(ctx, nil)
	require.NoError(t, err)
	require.Equal(t, 1, fetcher.calls)

	// The user's override is within tolerance of the cached entry, so no refetch
	report, err := svc.GetWeather(ctx, &userID)
	require.NoError(t, err)
	assert.Equal(t, 1, fetcher.calls)
	assert.Equal(t, SourceUser, report.Location.Source)

	// A distant override misses the slot
	require.NoError(t, store.SaveOverride(ctx, userID, 49.28, -123.12, "far away"))
	report, err = svc.GetWeather(ctx, &userID)
	require.NoError(t, err)
	assert.Equal(t, 2, fetcher.calls)
	assert.Equal(t, 49.28, fetcher.lastLat)
}

func TestGetEffectiveLocation_Priority(t *testing.T) {
	cfg := weatherConfig()
	svc, _, _, store := newWeatherEnv(cfg)
	ctx := context.Background()

	// No user and no company location falls back to the defaults
	loc := svc.GetEffectiveLocation(ctx, nil)
	assert.Equal(t, SourceFallback, loc.Source)
	assert.Equal(t, 43.6532, loc.Latitude)

	// A configured company location outranks the fallback
	cfg.Weather.CompanyLatitude = 40.71
	cfg.Weather.CompanyLongitude = -74.0
	cfg.Weather.CompanyAddress = "1 Main St"
	loc = svc.GetEffectiveLocation(ctx, nil)
	assert.Equal(t, SourceCompany, loc.Source)
	assert.Equal(t, "1 Main St", loc.Address)

	// A user override outranks the company location
	userID := uint(7)
	require.NoError(t, store.SaveOverride(ctx, userID, 51.5, -0.12, "London office"))
	loc = svc.GetEffectiveLocation(ctx, &userID)
	assert.Equal(t, SourceUser, loc.Source)
	assert.Equal(t, 51.5, loc.Latitude)

	// A user without an override still gets the company location
	other := uint(8)
	loc = svc.GetEffectiveLocation(ctx, &other)
	assert.Equal(t, SourceCompany, loc.Source)
}

func TestGetWeather_FetchFailureServesNoStaleData(t *testing.T) {
	svc, clock, fetcher, _ := newWeatherEnv(weatherConfig())
	ctx := context.Background()

	_, err := svc.GetWeather(ctx, nil)
	require.NoError(t, err)

	// The entry expires and the upstream goes down; the stale slot is not served
	clock.Advance(31 * time.Minute)
	fetcher.err = fmt.Errorf("upstream timeout")

	_, err = svc.GetWeather(ctx, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrWeatherUnavailable)
}

func TestUpdateLocation_ValidatesAndInvalidates(t *testing.T) {
	svc, _, fetcher, store := newWeatherEnv(weatherConfig())
	ctx := context.Background()
	userID := uint(3)

	assert.Error(t, svc.UpdateLocation(ctx, userID, 91, 0, ""))
	assert.Error(t, svc.UpdateLocation(ctx, userID, -91, 0, ""))
	assert.Error(t, svc.UpdateLocation(ctx, userID, 0, 181, ""))
	assert.Error(t, svc.UpdateLocation(ctx, userID, 0, -181, ""))
	assert.Empty(t, store.overrides, "rejected coordinates are not saved")

	// Fill the slot, then a valid update drops it
	_, err := svc.GetWeather(ctx, nil)
	require.NoError(t, err)
	require.Equal(t, 1, fetcher.calls)

	require.NoError(t, svc.UpdateLocation(ctx, userID, 45.5, -73.57, "Montreal"))
	require.NotNil(t, store.overrides[userID])

	_, err = svc.GetWeather(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, fetcher.calls, "cache was invalidated by the update")
}

func TestUseCompanyLocation_ClearsOverrideAndInvalidates(t *testing.T) {
	cfg := weatherConfig()
	cfg.Weather.CompanyLatitude = 40.71
	cfg.Weather.CompanyLongitude = -74.0
	svc, _, fetcher, store := newWeatherEnv(cfg)
	ctx := context.Background()
	userID := uint(5)

	require.NoError(t, svc.UpdateLocation(ctx, userID, 51.5, -0.12, "London office"))

	_, err := svc.GetWeather(ctx, &userID)
	require.NoError(t, err)
	require.Equal(t, 1, fetcher.calls)

	require.NoError(t, svc.UseCompanyLocation(ctx, userID))
	assert.Nil(t, store.overrides[userID])

	report, err := svc.GetWeather(ctx, &userID)
	require.NoError(t, err)
	assert.Equal(t, 2, fetcher.calls)
	assert.Equal(t, SourceCompany, report.Location.Source)
}
