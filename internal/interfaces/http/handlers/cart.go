// internal/interfaces/http/handlers/cart.go
package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/your-org/shop-backend/internal/config"
	"github.com/your-org/shop-backend/internal/domain/bundle"
	"github.com/your-org/shop-backend/internal/domain/cart"
	"github.com/your-org/shop-backend/internal/domain/pricing"
	"github.com/your-org/shop-backend/internal/domain/product"
	"github.com/your-org/shop-backend/internal/domain/user"
	"github.com/your-org/shop-backend/internal/interfaces/http/middleware"
	"github.com/your-org/shop-backend/internal/pkg/pdf"
	"gorm.io/gorm"
)

// CartHandler handles cart endpoints
type CartHandler struct {
	cartService *cart.Service
	pdfService  *pdf.Service
	config      *config.Config
}

// NewCartHandler creates a new cart handler
func NewCartHandler(db *gorm.DB, redisClient *redis.Client, cfg *config.Config) *CartHandler {
	productService := product.NewService(db, cfg)
	pricingService := pricing.NewService(cfg)
	bundleService := bundle.NewService(db, cfg)
	userService := user.NewService(db, cfg)

	return &CartHandler{
		cartService: cart.NewService(db, redisClient, cfg,
			productService, pricingService, bundleService, userService),
		pdfService: pdf.NewService(cfg),
		config:     cfg,
	}
}

// GetCart handles GET /cart
func (h *CartHandler) GetCart(c *gin.Context) {
	userID := userIDPtr(c)
	sessionID := h.getOrCreateSessionID(c)

	cartResponse, err := h.cartService.GetCart(c.Request.Context(), userID, sessionID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve cart",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart retrieved successfully",
		"data":    cartResponse,
	})
}

// AddToCart handles POST /cart/items
func (h *CartHandler) AddToCart(c *gin.Context) {
	userID := userIDPtr(c)
	sessionID := h.getOrCreateSessionID(c)

	var req cart.AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	cartResponse, err := h.cartService.AddToCart(c.Request.Context(), userID, sessionID, &req)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, bundle.ErrBundleUnavailable) || errors.Is(err, bundle.ErrBundleMispriced) {
			status = http.StatusConflict
		}
		c.JSON(status, gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Item added to cart successfully",
		"data":    cartResponse,
	})
}

// UpdateCartItem handles PUT /cart/items/:id
func (h *CartHandler) UpdateCartItem(c *gin.Context) {
	userID := userIDPtr(c)
	sessionID := h.getOrCreateSessionID(c)
	itemID := c.Param("id")

	var req cart.UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}
	if req.Quantity == nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Quantity is required",
		})
		return
	}

	cartResponse, err := h.cartService.UpdateQuantity(c.Request.Context(), userID, sessionID, itemID, *req.Quantity)
	if err != nil {
		if errors.Is(err, cart.ErrItemNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Cart item not found",
			})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart item updated successfully",
		"data":    cartResponse,
	})
}

// RemoveFromCart handles DELETE /cart/items/:id
func (h *CartHandler) RemoveFromCart(c *gin.Context) {
	userID := userIDPtr(c)
	sessionID := h.getOrCreateSessionID(c)
	itemID := c.Param("id")

	cartResponse, err := h.cartService.RemoveFromCart(c.Request.Context(), userID, sessionID, itemID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Item removed from cart successfully",
		"data":    cartResponse,
	})
}

// ClearCart handles DELETE /cart
func (h *CartHandler) ClearCart(c *gin.Context) {
	userID := userIDPtr(c)
	sessionID := h.getOrCreateSessionID(c)

	if err := h.cartService.ClearCart(c.Request.Context(), userID, sessionID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to clear cart",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart cleared successfully",
	})
}

// GetCartCount handles GET /cart/count
func (h *CartHandler) GetCartCount(c *gin.Context) {
	userID := userIDPtr(c)
	sessionID := h.getOrCreateSessionID(c)

	count, err := h.cartService.GetCartItemCount(c.Request.Context(), userID, sessionID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve cart count",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"count": count,
		},
	})
}

// MergeGuestCart handles POST /cart/merge - migrates the guest session cart
// into the authenticated user's cart
func (h *CartHandler) MergeGuestCart(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "Authentication required to merge cart",
		})
		return
	}

	sessionID, err := c.Cookie(h.config.Cart.SessionCookieName)
	if err != nil || sessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "No guest session to merge",
		})
		return
	}

	if err := h.cartService.MergeGuestCartToUser(c.Request.Context(), userID, sessionID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to merge cart",
		})
		return
	}

	cartResponse, err := h.cartService.GetCart(c.Request.Context(), &userID, "")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve cart",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Guest cart merged successfully",
		"data":    cartResponse,
	})
}

// ValidateCart handles POST /cart/validate - validates cart items before checkout
func (h *CartHandler) ValidateCart(c *gin.Context) {
	userID := userIDPtr(c)
	sessionID := h.getOrCreateSessionID(c)

	cartResponse, err := h.cartService.GetCart(c.Request.Context(), userID, sessionID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Cart not found",
		})
		return
	}

	validationErrors := []string{}

	for _, item := range cartResponse.Items {
		if item.BundleID != nil {
			if item.Bundle == nil || !item.Bundle.IsActive {
				validationErrors = append(validationErrors,
					fmt.Sprintf("Bundle %d is no longer available", *item.BundleID))
			}
			continue
		}

		if item.Product == nil {
			validationErrors = append(validationErrors, fmt.Sprintf("Product %d not found", *item.ProductID))
			continue
		}

		if !item.Product.IsActive {
			validationErrors = append(validationErrors,
				fmt.Sprintf("Product '%s' is no longer available", item.Product.Name))
			continue
		}

		available := item.Product.AvailableQuantity(item.ProductVariant)
		if item.Product.TrackQuantity && available < item.Quantity {
			validationErrors = append(validationErrors,
				fmt.Sprintf("Product '%s' has insufficient stock. Available: %d, Requested: %d",
					item.Product.Name, available, item.Quantity))
		}

		// Lines carry discounted prices, so compare against the base price
		currentPrice := item.Product.EffectivePrice(item.ProductVariant)
		if item.OriginalPrice != currentPrice {
			validationErrors = append(validationErrors,
				fmt.Sprintf("Price for product '%s' has changed. Current: $%.2f, Cart: $%.2f",
					item.Product.Name, float64(currentPrice)/100, float64(item.OriginalPrice)/100))
		}
	}

	if len(validationErrors) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":             "Cart validation failed",
			"validation_errors": validationErrors,
			"data":              cartResponse,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart validation successful",
		"data":    cartResponse,
	})
}

// DownloadQuote handles GET /cart/quote.pdf - renders the cart as a PDF quote
func (h *CartHandler) DownloadQuote(c *gin.Context) {
	userID := userIDPtr(c)
	sessionID := h.getOrCreateSessionID(c)

	cartResponse, err := h.cartService.GetCart(c.Request.Context(), userID, sessionID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve cart",
		})
		return
	}

	if len(cartResponse.Items) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Cart is empty",
		})
		return
	}

	quote, err := h.pdfService.GenerateCartQuote(cartResponse)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to generate quote",
		})
		return
	}

	c.Header("Content-Disposition", "attachment; filename=cart-quote.pdf")
	c.Data(http.StatusOK, "application/pdf", quote.Bytes())
}

// getOrCreateSessionID gets session ID from cookie or creates a new one
func (h *CartHandler) getOrCreateSessionID(c *gin.Context) string {
	sessionID, err := c.Cookie(h.config.Cart.SessionCookieName)
	if err != nil || sessionID == "" {
		sessionID = uuid.New().String()
		c.SetCookie(h.config.Cart.SessionCookieName, sessionID,
			h.config.Cart.SessionCookieAge, "/", "", false, true)
	}

	return sessionID
}

// userIDPtr returns the authenticated user ID, or nil for guests
func userIDPtr(c *gin.Context) *uint {
	if userID, exists := middleware.GetUserIDFromContext(c); exists {
		return &userID
	}
	return nil
}
