// internal/domain/weather/entity.go
package weather

import (
	"time"
)

// LocationSource tags where an effective location came from
type LocationSource string

const (
	SourceUser     LocationSource = "user"
	SourceCompany  LocationSource = "company"
	SourceFallback LocationSource = "fallback"
)

// Location is a resolved geographic location
type Location struct {
	Latitude  float64        `json:"latitude"`
	Longitude float64        `json:"longitude"`
	Address   string         `json:"address,omitempty"`
	Source    LocationSource `json:"source"`
}

// UserLocation persists a per-user location override
type UserLocation struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	Latitude  float64   `gorm:"not null" json:"latitude"`
	Longitude float64   `gorm:"not null" json:"longitude"`
	Address   string    `gorm:"size:255" json:"address"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName overrides the table name
func (UserLocation) TableName() string {
	return "user_locations"
}

// ForecastDay is one day of forecast data
type ForecastDay struct {
	Date         string  `json:"date"`
	HighCelsius  float64 `json:"high_celsius"`
	LowCelsius   float64 `json:"low_celsius"`
	Condition    string  `json:"condition"`
	PrecipChance float64 `json:"precip_chance"`
	WindSpeedKph float64 `json:"wind_speed_kph"`
}

// Report is a forecast tagged with the location it was fetched for
type Report struct {
	Forecast    []ForecastDay `json:"forecast"`
	Location    Location      `json:"location"`
	LastUpdated time.Time     `json:"last_updated"`
}

// cacheEntry is the single cache slot; it is replaced wholesale on refresh
// and dropped entirely on invalidation
type cacheEntry struct {
	forecast  []ForecastDay
	location  Location
	fetchedAt time.Time
}
