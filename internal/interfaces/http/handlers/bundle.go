// internal/interfaces/http/handlers/bundle.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/shop-backend/internal/config"
	"github.com/your-org/shop-backend/internal/domain/bundle"
	"gorm.io/gorm"
)

// BundleHandler handles bundle endpoints
type BundleHandler struct {
	bundleService *bundle.Service
	config        *config.Config
}

// NewBundleHandler creates a new bundle handler
func NewBundleHandler(db *gorm.DB, cfg *config.Config) *BundleHandler {
	return &BundleHandler{
		bundleService: bundle.NewService(db, cfg),
		config:        cfg,
	}
}

// GetBundles handles GET /bundles
func (h *BundleHandler) GetBundles(c *gin.Context) {
	bundles, err := h.bundleService.GetBundles()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve bundles",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Bundles retrieved successfully",
		"data":    bundles,
	})
}

// GetBundle handles GET /bundles/:id
func (h *BundleHandler) GetBundle(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	b, err := h.bundleService.GetBundle(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Bundle not found",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Bundle retrieved successfully",
		"data":    b,
	})
}

// GetBundlePrice handles GET /bundles/:id/price - returns the derived bundle
// pricing against buying the items individually
func (h *BundleHandler) GetBundlePrice(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	calculation, err := h.bundleService.CalculateBundlePrice(id)
	if err != nil {
		if errors.Is(err, bundle.ErrBundleUnavailable) {
			c.JSON(http.StatusConflict, gin.H{
				"error": "Bundle contains unavailable products",
			})
			return
		}
		if errors.Is(err, bundle.ErrBundleMispriced) {
			c.JSON(http.StatusConflict, gin.H{
				"error": "Bundle is not priced below its individual total",
			})
			return
		}
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Bundle not found",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Bundle price calculated successfully",
		"data":    calculation,
	})
}

// AdminCreateBundle handles POST /admin/bundles
func (h *BundleHandler) AdminCreateBundle(c *gin.Context) {
	var req bundle.BundleCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	b, err := h.bundleService.CreateBundle(&req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Bundle created successfully",
		"data":    b,
	})
}

// AdminUpdateBundle handles PUT /admin/bundles/:id
func (h *BundleHandler) AdminUpdateBundle(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	var req bundle.BundleUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	b, err := h.bundleService.UpdateBundle(id, &req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Bundle updated successfully",
		"data":    b,
	})
}

// AdminDeleteBundle handles DELETE /admin/bundles/:id
func (h *BundleHandler) AdminDeleteBundle(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	if err := h.bundleService.DeleteBundle(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Bundle deleted successfully",
	})
}
