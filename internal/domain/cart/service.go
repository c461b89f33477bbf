// internal/domain/cart/service.go
package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/your-org/shop-backend/internal/config"
	"github.com/your-org/shop-backend/internal/domain/bundle"
	"github.com/your-org/shop-backend/internal/domain/pricing"
	"github.com/your-org/shop-backend/internal/domain/product"
	"gorm.io/gorm"
)

// ErrItemNotFound is returned when a quantity update names a line that is not
// in the cart. Removal of an unknown line is a no-op instead.
var ErrItemNotFound = errors.New("cart item not found")

// Catalog provides the product data the cart needs
type Catalog interface {
	GetProduct(id uint) (*product.Product, error)
	GetActiveProduct(id uint) (*product.Product, error)
	GetActiveVariant(productID, variantID uint) (*product.ProductVariant, error)
}

// Pricer computes per-unit prices from the pricing rule catalog
type Pricer interface {
	CalculateDynamicPrice(basePrice int64, req pricing.PriceRequest) pricing.PriceQuote
}

// BundleCatalog provides bundle lookups and derived bundle pricing
type BundleCatalog interface {
	GetBundle(id uint) (*bundle.Bundle, error)
	CalculateBundlePrice(bundleID uint) (*bundle.BundleCalculation, error)
}

// TierSource resolves the pricing tier of an authenticated user
type TierSource interface {
	GetPricingTier(userID uint) (pricing.CustomerTier, error)
}

// Service handles cart business logic. All operations go through a Repository
// selected per call, so the guest/authenticated split lives in the factory,
// not in the operations.
type Service struct {
	config  *config.Config
	repos   RepositoryFactory
	catalog Catalog
	pricer  Pricer
	bundles BundleCatalog
	tiers   TierSource
}

// NewService creates a cart service backed by the database and Redis
func NewService(db *gorm.DB, redisClient *redis.Client, cfg *config.Config,
	catalog Catalog, pricer Pricer, bundles BundleCatalog, tiers TierSource) *Service {
	return NewServiceWithFactory(cfg, NewRepositoryFactory(db, redisClient, cfg),
		catalog, pricer, bundles, tiers)
}

// NewServiceWithFactory creates a cart service with an explicit repository
// factory, letting tests substitute in-memory stores
func NewServiceWithFactory(cfg *config.Config, repos RepositoryFactory,
	catalog Catalog, pricer Pricer, bundles BundleCatalog, tiers TierSource) *Service {
	return &Service{
		config:  cfg,
		repos:   repos,
		catalog: catalog,
		pricer:  pricer,
		bundles: bundles,
		tiers:   tiers,
	}
}

// CartItemResponse represents a cart line with its referenced details loaded
type CartItemResponse struct {
	LineItem
	Product        *product.Product        `json:"product,omitempty"`
	ProductVariant *product.ProductVariant `json:"product_variant,omitempty"`
	Bundle         *bundle.Bundle          `json:"bundle,omitempty"`
}

// CartResponse represents a shopping cart with items and totals
type CartResponse struct {
	SessionID string             `json:"session_id,omitempty"`
	UserID    *uint              `json:"user_id,omitempty"`
	Items     []CartItemResponse `json:"items"`
	Totals    CartTotals         `json:"totals"`
	UpdatedAt time.Time          `json:"updated_at"`
}

// AddToCartRequest represents an add to cart request; exactly one of
// ProductID and BundleID must be set
type AddToCartRequest struct {
	ProductID        *uint    `json:"product_id"`
	ProductVariantID *uint    `json:"product_variant_id"`
	BundleID         *uint    `json:"bundle_id"`
	Quantity         int      `json:"quantity" binding:"required,min=1"`
	Discounts        []string `json:"discounts"`
}

// Validate checks the structural constraints of the request
func (r *AddToCartRequest) Validate() error {
	if r.ProductID == nil && r.BundleID == nil {
		return fmt.Errorf("either product_id or bundle_id is required")
	}
	if r.ProductID != nil && r.BundleID != nil {
		return fmt.Errorf("product_id and bundle_id are mutually exclusive")
	}
	if r.ProductVariantID != nil && r.ProductID == nil {
		return fmt.Errorf("product_variant_id requires product_id")
	}
	if r.Quantity < 1 {
		return fmt.Errorf("quantity must be at least 1")
	}
	return nil
}

// UpdateCartItemRequest represents a quantity update; zero removes the line
type UpdateCartItemRequest struct {
	Quantity *int `json:"quantity" binding:"required,min=0"`
}

// GetCart retrieves the authoritative cart state for the active backing mode
func (s *Service) GetCart(ctx context.Context, userID *uint, sessionID string) (*CartResponse, error) {
	repo, err := s.repos(userID, sessionID)
	if err != nil {
		return nil, err
	}

	items, err := repo.List(ctx)
	if err != nil {
		return nil, err
	}

	return s.buildResponse(userID, sessionID, items), nil
}

// AddToCart adds a product, variant, or bundle to the cart. A line referring
// to the same (product, variant, bundle) triple as an existing line is merged
// into it, and the merged line is re-priced for its new total quantity.
func (s *Service) AddToCart(ctx context.Context, userID *uint, sessionID string, req *AddToCartRequest) (*CartResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	repo, err := s.repos(userID, sessionID)
	if err != nil {
		return nil, err
	}

	items, err := repo.List(ctx)
	if err != nil {
		return nil, err
	}

	var existing *LineItem
	for i := range items {
		if items[i].SameReference(req.ProductID, req.ProductVariantID, req.BundleID) {
			existing = &items[i]
			break
		}
	}

	newQuantity := req.Quantity
	discounts := req.Discounts
	if existing != nil {
		newQuantity += existing.Quantity
		discounts = mergeNames(existing.AppliedDiscounts, req.Discounts)
	}

	var line LineItem
	if req.BundleID != nil {
		line, err = s.buildBundleLine(*req.BundleID, newQuantity)
	} else {
		line, err = s.buildProductLine(ctx, userID, req, newQuantity, discounts)
	}
	if err != nil {
		return nil, err
	}

	if existing != nil {
		line.ID = existing.ID
		line.AddedAt = existing.AddedAt
	} else {
		line.ID = uuid.New().String()
		line.AddedAt = time.Now().UTC()
	}
	line.UpdatedAt = time.Now().UTC()

	if err := repo.Save(ctx, line); err != nil {
		return nil, err
	}

	return s.GetCart(ctx, userID, sessionID)
}

// UpdateQuantity changes the quantity of a cart line. A quantity of zero or
// less removes the line. Product lines are re-priced for the new quantity so
// bulk tier boundaries always take effect.
func (s *Service) UpdateQuantity(ctx context.Context, userID *uint, sessionID string, itemID string, quantity int) (*CartResponse, error) {
	if quantity <= 0 {
		return s.RemoveFromCart(ctx, userID, sessionID, itemID)
	}

	repo, err := s.repos(userID, sessionID)
	if err != nil {
		return nil, err
	}

	items, err := repo.List(ctx)
	if err != nil {
		return nil, err
	}

	var existing *LineItem
	for i := range items {
		if items[i].ID == itemID {
			existing = &items[i]
			break
		}
	}
	if existing == nil {
		return nil, ErrItemNotFound
	}

	line := *existing
	line.Quantity = quantity

	if line.ProductID != nil {
		req := &AddToCartRequest{
			ProductID:        line.ProductID,
			ProductVariantID: line.ProductVariantID,
			Quantity:         quantity,
			Discounts:        line.AppliedDiscounts,
		}
		repriced, err := s.buildProductLine(ctx, userID, req, quantity, line.AppliedDiscounts)
		if err != nil {
			return nil, err
		}
		repriced.ID = line.ID
		repriced.AddedAt = line.AddedAt
		line = repriced
	}
	line.UpdatedAt = time.Now().UTC()

	if err := repo.Save(ctx, line); err != nil {
		return nil, err
	}

	return s.GetCart(ctx, userID, sessionID)
}

// RemoveFromCart deletes a cart line; removing an unknown ID is a no-op
func (s *Service) RemoveFromCart(ctx context.Context, userID *uint, sessionID string, itemID string) (*CartResponse, error) {
	repo, err := s.repos(userID, sessionID)
	if err != nil {
		return nil, err
	}

	if err := repo.Delete(ctx, itemID); err != nil {
		return nil, err
	}

	return s.GetCart(ctx, userID, sessionID)
}

// ClearCart removes every line in the active backing mode
func (s *Service) ClearCart(ctx context.Context, userID *uint, sessionID string) error {
	repo, err := s.repos(userID, sessionID)
	if err != nil {
		return err
	}
	return repo.Clear(ctx)
}

// GetCartItemCount returns the total quantity across all cart lines
func (s *Service) GetCartItemCount(ctx context.Context, userID *uint, sessionID string) (int, error) {
	cartResponse, err := s.GetCart(ctx, userID, sessionID)
	if err != nil {
		return 0, err
	}
	return cartResponse.Totals.TotalQuantity, nil
}

// MergeGuestCartToUser migrates the guest cart into the user's server-side
// cart when the user logs in, then clears the guest cart. Lines matching an
// existing server line on the (product, variant, bundle) triple have their
// quantities summed and are re-priced for the combined quantity.
func (s *Service) MergeGuestCartToUser(ctx context.Context, userID uint, sessionID string) error {
	guestRepo, err := s.repos(nil, sessionID)
	if err != nil {
		return err
	}

	guestItems, err := guestRepo.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to read guest cart: %w", err)
	}
	if len(guestItems) == 0 {
		return nil // No guest cart to merge
	}

	serverRepo, err := s.repos(&userID, sessionID)
	if err != nil {
		return err
	}

	serverItems, err := serverRepo.List(ctx)
	if err != nil {
		return err
	}

	for _, guestItem := range guestItems {
		var match *LineItem
		for i := range serverItems {
			if serverItems[i].SameReference(guestItem.ProductID, guestItem.ProductVariantID, guestItem.BundleID) {
				match = &serverItems[i]
				break
			}
		}

		line := guestItem
		if match != nil {
			line = *match
			line.Quantity += guestItem.Quantity
			line.AppliedDiscounts = mergeNames(match.AppliedDiscounts, guestItem.AppliedDiscounts)

			if line.ProductID != nil {
				req := &AddToCartRequest{
					ProductID:        line.ProductID,
					ProductVariantID: line.ProductVariantID,
					Quantity:         line.Quantity,
					Discounts:        line.AppliedDiscounts,
				}
				repriced, err := s.buildProductLine(ctx, &userID, req, line.Quantity, line.AppliedDiscounts)
				if err != nil {
					return fmt.Errorf("failed to merge cart line: %w", err)
				}
				repriced.ID = line.ID
				repriced.AddedAt = line.AddedAt
				line = repriced
			}
		}
		line.UpdatedAt = time.Now().UTC()

		if err := serverRepo.Save(ctx, line); err != nil {
			return fmt.Errorf("failed to merge cart line: %w", err)
		}
	}

	return guestRepo.Clear(ctx)
}

// buildProductLine resolves a product reference, checks stock, and prices the
// line for the given total quantity
func (s *Service) buildProductLine(ctx context.Context, userID *uint, req *AddToCartRequest, totalQuantity int, discounts []string) (LineItem, error) {
	prod, err := s.catalog.GetActiveProduct(*req.ProductID)
	if err != nil {
		return LineItem{}, err
	}

	var variant *product.ProductVariant
	if req.ProductVariantID != nil {
		variant, err = s.catalog.GetActiveVariant(*req.ProductID, *req.ProductVariantID)
		if err != nil {
			return LineItem{}, err
		}
	}

	available := prod.AvailableQuantity(variant)
	if prod.TrackQuantity && available < totalQuantity {
		return LineItem{}, fmt.Errorf("insufficient inventory. Available: %d", available)
	}

	tier := pricing.TierRegular
	if userID != nil && s.tiers != nil {
		if t, err := s.tiers.GetPricingTier(*userID); err == nil {
			tier = t
		}
	}

	basePrice := prod.EffectivePrice(variant)
	quote := s.pricer.CalculateDynamicPrice(basePrice, pricing.PriceRequest{
		Quantity:         totalQuantity,
		CustomerTier:     tier,
		AppliedDiscounts: discounts,
	})

	name := prod.Name
	if variant != nil {
		name = fmt.Sprintf("%s (%s)", prod.Name, variant.Name)
	}

	return LineItem{
		ProductID:        req.ProductID,
		ProductVariantID: req.ProductVariantID,
		Name:             name,
		Quantity:         totalQuantity,
		Price:            quote.FinalPrice,
		OriginalPrice:    quote.OriginalPrice,
		AppliedDiscounts: quote.AppliedDiscounts,
	}, nil
}

// buildBundleLine resolves a bundle reference and prices the line at the
// bundle price; an unavailable bundle cannot be added
func (s *Service) buildBundleLine(bundleID uint, totalQuantity int) (LineItem, error) {
	calc, err := s.bundles.CalculateBundlePrice(bundleID)
	if err != nil {
		return LineItem{}, err
	}

	b, err := s.bundles.GetBundle(bundleID)
	if err != nil {
		return LineItem{}, err
	}

	id := bundleID
	return LineItem{
		BundleID:         &id,
		Name:             b.Name,
		Quantity:         totalQuantity,
		Price:            calc.BundlePrice,
		OriginalPrice:    calc.IndividualTotal,
		AppliedDiscounts: []string{},
	}, nil
}

// buildResponse loads referenced details and computes totals
func (s *Service) buildResponse(userID *uint, sessionID string, items []LineItem) *CartResponse {
	responses := make([]CartItemResponse, len(items))
	updatedAt := time.Time{}

	for i, item := range items {
		responses[i] = CartItemResponse{LineItem: item}

		if item.ProductID != nil {
			if prod, err := s.catalog.GetProduct(*item.ProductID); err == nil {
				responses[i].Product = prod
				if item.ProductVariantID != nil {
					for vi := range prod.Variants {
						if prod.Variants[vi].ID == *item.ProductVariantID {
							responses[i].ProductVariant = &prod.Variants[vi]
							break
						}
					}
				}
			}
		}

		if item.BundleID != nil {
			if b, err := s.bundles.GetBundle(*item.BundleID); err == nil {
				responses[i].Bundle = b
			}
		}

		if item.UpdatedAt.After(updatedAt) {
			updatedAt = item.UpdatedAt
		}
	}

	return &CartResponse{
		SessionID: sessionID,
		UserID:    userID,
		Items:     responses,
		Totals:    calculateTotals(items),
		UpdatedAt: updatedAt,
	}
}

// calculateTotals derives the cart totals from its lines
func calculateTotals(items []LineItem) CartTotals {
	var totals CartTotals

	totals.ItemCount = len(items)
	for _, item := range items {
		totals.TotalQuantity += item.Quantity
		totals.SubTotal += item.Price * int64(item.Quantity)
		totals.Savings += (item.OriginalPrice - item.Price) * int64(item.Quantity)
	}
	totals.TotalAmount = totals.SubTotal

	return totals
}

// mergeNames unions two name lists preserving first-seen order
func mergeNames(a, b []string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	merged := make([]string, 0, len(a)+len(b))
	for _, name := range a {
		if !seen[name] {
			seen[name] = true
			merged = append(merged, name)
		}
	}
	for _, name := range b {
		if !seen[name] {
			seen[name] = true
			merged = append(merged, name)
		}
	}
	return merged
}
