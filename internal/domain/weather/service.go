// internal/domain/weather/service.go
package weather

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/your-org/shop-backend/internal/config"
	"gorm.io/gorm"
)

// ErrWeatherUnavailable is returned when the forecast cannot be fetched; no
// stale cache entry is served in its place
var ErrWeatherUnavailable = errors.New("weather unavailable")

// LocationStore persists per-user location overrides
type LocationStore interface {
	GetOverride(ctx context.Context, userID uint) (*UserLocation, error)
	SaveOverride(ctx context.Context, userID uint, latitude, longitude float64, address string) error
	ClearOverride(ctx context.Context, userID uint) error
}

// Service resolves an effective location and serves forecasts through a
// single-slot cache. The slot is shared process-wide state, so access to it
// is guarded; it is replaced wholesale on refresh and dropped on invalidation.
type Service struct {
	config    *config.Config
	locations LocationStore
	fetcher   Fetcher
	now       func() time.Time

	mu   sync.Mutex
	slot *cacheEntry
}

// NewService creates a weather service backed by the database and the remote
// forecast function
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return NewServiceWith(cfg, &gormLocationStore{db: db}, NewClient(cfg), time.Now)
}

// NewServiceWith creates a weather service with explicit collaborators,
// letting tests substitute the store, the fetcher, and the clock
func NewServiceWith(cfg *config.Config, locations LocationStore, fetcher Fetcher, now func() time.Time) *Service {
	return &Service{
		config:    cfg,
		locations: locations,
		fetcher:   fetcher,
		now:       now,
	}
}

// GetEffectiveLocation resolves the location to forecast for, by priority:
// the user's saved override, then the configured company location, then the
// hardcoded fallback coordinates
func (s *Service) GetEffectiveLocation(ctx context.Context, userID *uint) Location {
	if userID != nil {
		if override, err := s.locations.GetOverride(ctx, *userID); err == nil && override != nil {
			return Location{
				Latitude:  override.Latitude,
				Longitude: override.Longitude,
				Address:   override.Address,
				Source:    SourceUser,
			}
		}
	}

	if s.config.HasCompanyLocation() {
		return Location{
			Latitude:  s.config.Weather.CompanyLatitude,
			Longitude: s.config.Weather.CompanyLongitude,
			Address:   s.config.Weather.CompanyAddress,
			Source:    SourceCompany,
		}
	}

	return Location{
		Latitude:  s.config.Weather.FallbackLatitude,
		Longitude: s.config.Weather.FallbackLongitude,
		Source:    SourceFallback,
	}
}

// GetWeather returns the forecast for the effective location, serving from
// the cache slot while the entry is fresh and its location still matches
func (s *Service) GetWeather(ctx context.Context, userID *uint) (*Report, error) {
	location := s.GetEffectiveLocation(ctx, userID)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.slot != nil && s.slotValid(location) {
		return &Report{
			Forecast:    s.slot.forecast,
			Location:    location,
			LastUpdated: s.slot.fetchedAt,
		}, nil
	}

	forecast, err := s.fetcher.FetchForecast(ctx, location.Latitude, location.Longitude)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWeatherUnavailable, err)
	}

	fetchedAt := s.now().UTC()
	s.slot = &cacheEntry{
		forecast:  forecast,
		location:  location,
		fetchedAt: fetchedAt,
	}

	return &Report{
		Forecast:    forecast,
		Location:    location,
		LastUpdated: fetchedAt,
	}, nil
}

// UpdateLocation saves a user location override and invalidates the cache
func (s *Service) UpdateLocation(ctx context.Context, userID uint, latitude, longitude float64, address string) error {
	if latitude < -90 || latitude > 90 {
		return fmt.Errorf("latitude must be between -90 and 90")
	}
	if longitude < -180 || longitude > 180 {
		return fmt.Errorf("longitude must be between -180 and 180")
	}

	if err := s.locations.SaveOverride(ctx, userID, latitude, longitude, address); err != nil {
		return err
	}

	s.Invalidate()
	return nil
}

// UseCompanyLocation clears the user override, falling back to the company
// location, and invalidates the cache
func (s *Service) UseCompanyLocation(ctx context.Context, userID uint) error {
	if err := s.locations.ClearOverride(ctx, userID); err != nil {
		return err
	}

	s.Invalidate()
	return nil
}

// Invalidate drops the cache slot, forcing the next read to refetch
func (s *Service) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.slot = nil
}

// slotValid reports whether the cache slot is fresh and close enough to the
// requested location; the caller must hold the lock
func (s *Service) slotValid(location Location) bool {
	if s.now().Sub(s.slot.fetchedAt) >= s.config.Weather.CacheTTL {
		return false
	}

	tolerance := s.config.Weather.CoordTolerance
	return math.Abs(s.slot.location.Latitude-location.Latitude) <= tolerance &&
		math.Abs(s.slot.location.Longitude-location.Longitude) <= tolerance
}

// gormLocationStore persists location overrides in the user_locations table
type gormLocationStore struct {
	db *gorm.DB
}

func (s *gormLocationStore) GetOverride(ctx context.Context, userID uint) (*UserLocation, error) {
	var location UserLocation
	result := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&location)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to retrieve location override: %w", result.Error)
	}
	return &location, nil
}

func (s *gormLocationStore) SaveOverride(ctx context.Context, userID uint, latitude, longitude float64, address string) error {
	var existing UserLocation
	result := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&existing)

	if result.Error == gorm.ErrRecordNotFound {
		location := UserLocation{
			UserID:    userID,
			Latitude:  latitude,
			Longitude: longitude,
			Address:   address,
		}
		if err := s.db.WithContext(ctx).Create(&location).Error; err != nil {
			return fmt.Errorf("failed to save location override: %w", err)
		}
		return nil
	} else if result.Error != nil {
		return fmt.Errorf("failed to look up location override: %w", result.Error)
	}

	err := s.db.WithContext(ctx).Model(&existing).Updates(map[string]interface{}{
		"latitude":  latitude,
		"longitude": longitude,
		"address":   address,
	}).Error
	if err != nil {
		return fmt.Errorf("failed to update location override: %w", err)
	}
	return nil
}

func (s *gormLocationStore) ClearOverride(ctx context.Context, userID uint) error {
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&UserLocation{}).Error
	if err != nil {
		return fmt.Errorf("failed to clear location override: %w", err)
	}
	return nil
}
