// internal/interfaces/http/handlers/weather.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/shop-backend/internal/config"
	"github.com/your-org/shop-backend/internal/domain/weather"
	"github.com/your-org/shop-backend/internal/interfaces/http/middleware"
	"gorm.io/gorm"
)

// WeatherHandler handles weather dashboard endpoints
type WeatherHandler struct {
	weatherService *weather.Service
	config         *config.Config
}

// NewWeatherHandler creates a new weather handler
func NewWeatherHandler(db *gorm.DB, cfg *config.Config) *WeatherHandler {
	return &WeatherHandler{
		weatherService: weather.NewService(db, cfg),
		config:         cfg,
	}
}

// GetWeather handles GET /weather
func (h *WeatherHandler) GetWeather(c *gin.Context) {
	userID := userIDPtr(c)

	report, err := h.weatherService.GetWeather(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, weather.ErrWeatherUnavailable) {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"error": "Weather data is currently unavailable",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve weather",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Weather retrieved successfully",
		"data":    report,
	})
}

// UpdateLocation handles PUT /weather/location - saves a per-user location
// override for the forecast
func (h *WeatherHandler) UpdateLocation(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "Authentication required",
		})
		return
	}

	var req struct {
		Latitude  float64 `json:"latitude" binding:"required"`
		Longitude float64 `json:"longitude" binding:"required"`
		Address   string  `json:"address"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	err := h.weatherService.UpdateLocation(c.Request.Context(), userID, req.Latitude, req.Longitude, req.Address)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Location updated successfully",
	})
}

// ClearLocation handles DELETE /weather/location - reverts to the company or
// fallback location
func (h *WeatherHandler) ClearLocation(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "Authentication required",
		})
		return
	}

	if err := h.weatherService.UseCompanyLocation(c.Request.Context(), userID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to clear location",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Location cleared successfully",
	})
}
