// internal/domain/cart/service_test.go
package cart

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/shop-backend/internal/config"
	"github.com/your-org/shop-backend/internal/domain/bundle"
	"github.com/your-org/shop-backend/internal/domain/pricing"
	"github.com/your-org/shop-backend/internal/domain/product"
)

// memoryRepo is an in-memory Repository used in place of gorm and Redis
type memoryRepo struct {
	items []LineItem
}

func (r *memoryRepo) List(ctx context.Context) ([]LineItem, error) {
	out := make([]LineItem, len(r.items))
	copy(out, r.items)
	return out, nil
}

func (r *memoryRepo) Save(ctx context.Context, item LineItem) error {
	for i := range r.items {
		if r.items[i].ID == item.ID {
			r.items[i] = item
			return nil
		}
	}
	r.items = append(r.items, item)
	return nil
}

func (r *memoryRepo) Delete(ctx context.Context, itemID string) error {
	for i := range r.items {
		if r.items[i].ID == itemID {
			r.items = append(r.items[:i], r.items[i+1:]...)
			return nil
		}
	}
	return nil
}

func (r *memoryRepo) Clear(ctx context.Context) error {
	r.items = nil
	return nil
}

// fakeCatalog serves products and variants from maps
type fakeCatalog struct {
	products map[uint]*product.Product
	variants map[uint]*product.ProductVariant
}

func (c *fakeCatalog) GetProduct(id uint) (*product.Product, error) {
	if p, ok := c.products[id]; ok {
		return p, nil
	}
	return nil, fmt.Errorf("product not found")
}

func (c *fakeCatalog) GetActiveProduct(id uint) (*product.Product, error) {
	p, ok := c.products[id]
	if !ok || !p.IsActive {
		return nil, fmt.Errorf("product not found")
	}
	return p, nil
}

func (c *fakeCatalog) GetActiveVariant(productID, variantID uint) (*product.ProductVariant, error) {
	v, ok := c.variants[variantID]
	if !ok || v.ProductID != productID || !v.IsActive {
		return nil, fmt.Errorf("product variant not found")
	}
	return v, nil
}

// fakeBundles serves bundle lookups and calculations from maps
type fakeBundles struct {
	bundles map[uint]*bundle.Bundle
	calcs   map[uint]*bundle.BundleCalculation
	errs    map[uint]error
}

func (b *fakeBundles) GetBundle(id uint) (*bundle.Bundle, error) {
	if bd, ok := b.bundles[id]; ok {
		return bd, nil
	}
	return nil, fmt.Errorf("bundle not found")
}

func (b *fakeBundles) CalculateBundlePrice(bundleID uint) (*bundle.BundleCalculation, error) {
	if err, ok := b.errs[bundleID]; ok {
		return nil, err
	}
	if calc, ok := b.calcs[bundleID]; ok {
		return calc, nil
	}
	return nil, fmt.Errorf("bundle not found")
}

// fakeTiers resolves pricing tiers from a map; unknown users are regular
type fakeTiers struct {
	tiers map[uint]pricing.CustomerTier
}

func (t *fakeTiers) GetPricingTier(userID uint) (pricing.CustomerTier, error) {
	if tier, ok := t.tiers[userID]; ok {
		return tier, nil
	}
	return pricing.TierRegular, nil
}

// testEnv bundles a cart service with its fakes
type testEnv struct {
	service *Service
	guest   *memoryRepo
	server  *memoryRepo
	catalog *fakeCatalog
	bundles *fakeBundles
	tiers   *fakeTiers
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	cfg := &config.Config{
		Pricing: config.PricingConfig{WholesaleRatePercent: 85},
	}

	env := &testEnv{
		guest:  &memoryRepo{},
		server: &memoryRepo{},
		catalog: &fakeCatalog{
			products: map[uint]*product.Product{
				1: {ID: 1, Name: "Cordless Drill", Price: 1000, IsActive: true, TrackQuantity: true, Quantity: 100},
				2: {ID: 2, Name: "Claw Hammer", Price: 2500, IsActive: true, TrackQuantity: true, Quantity: 3},
				3: {ID: 3, Name: "Retired Sander", Price: 500, IsActive: false},
			},
			variants: map[uint]*product.ProductVariant{
				7: {ID: 7, ProductID: 1, Name: "5Ah Battery", Price: 1200, IsActive: true, Quantity: 50},
			},
		},
		bundles: &fakeBundles{
			bundles: map[uint]*bundle.Bundle{
				9: {ID: 9, Name: "Starter Kit", IsActive: true},
			},
			calcs: map[uint]*bundle.BundleCalculation{
				9: {BundleID: 9, IndividualTotal: 4500, BundlePrice: 4000, Savings: 500},
			},
			errs: map[uint]error{},
		},
		tiers: &fakeTiers{tiers: map[uint]pricing.CustomerTier{}},
	}

	factory := func(userID *uint, sessionID string) (Repository, error) {
		if userID != nil {
			return env.server, nil
		}
		if sessionID == "" {
			return nil, fmt.Errorf("session ID required for guest cart")
		}
		return env.guest, nil
	}

	env.service = NewServiceWithFactory(cfg, factory,
		env.catalog, pricing.NewService(cfg), env.bundles, env.tiers)
	return env
}

func uintPtr(v uint) *uint { return &v }

func TestAddToCart_GuestCreatesLine(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	resp, err := env.service.AddToCart(ctx, nil, "sess-1", &AddToCartRequest{
		ProductID: uintPtr(1),
		Quantity:  2,
	})
	require.NoError(t, err)

	require.Len(t, resp.Items, 1)
	assert.Equal(t, "Cordless Drill", resp.Items[0].Name)
	assert.Equal(t, 2, resp.Items[0].Quantity)
	assert.Equal(t, int64(1000), resp.Items[0].Price)
	assert.NotEmpty(t, resp.Items[0].ID)
	assert.Equal(t, 2, resp.Totals.TotalQuantity)
	assert.Equal(t, int64(2000), resp.Totals.SubTotal)
}

func TestAddToCart_SameReferenceMerges(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	first, err := env.service.AddToCart(ctx, nil, "sess-1", &AddToCartRequest{
		ProductID: uintPtr(1),
		Quantity:  6,
	})
	require.NoError(t, err)
	require.Len(t, first.Items, 1)
	assert.Equal(t, int64(1000), first.Items[0].Price)

	second, err := env.service.AddToCart(ctx, nil, "sess-1", &AddToCartRequest{
		ProductID: uintPtr(1),
		Quantity:  6,
	})
	require.NoError(t, err)

	// Still one line, quantities summed, and the merged quantity crosses the
	// bulk threshold so the line is re-priced
	require.Len(t, second.Items, 1)
	assert.Equal(t, first.Items[0].ID, second.Items[0].ID)
	assert.Equal(t, 12, second.Items[0].Quantity)
	assert.Equal(t, int64(950), second.Items[0].Price)
	assert.Contains(t, second.Items[0].AppliedDiscounts, "bulk-10")
}

func TestAddToCart_DifferentVariantsStaySeparate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.service.AddToCart(ctx, nil, "sess-1", &AddToCartRequest{
		ProductID: uintPtr(1),
		Quantity:  1,
	})
	require.NoError(t, err)

	resp, err := env.service.AddToCart(ctx, nil, "sess-1", &AddToCartRequest{
		ProductID:        uintPtr(1),
		ProductVariantID: uintPtr(7),
		Quantity:         1,
	})
	require.NoError(t, err)

	require.Len(t, resp.Items, 2)
	assert.Equal(t, "Cordless Drill (5Ah Battery)", resp.Items[1].Name)
	assert.Equal(t, int64(1200), resp.Items[1].Price)
}

func TestAddToCart_Validation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.service.AddToCart(ctx, nil, "sess-1", &AddToCartRequest{Quantity: 1})
	assert.Error(t, err, "neither product nor bundle")

	_, err = env.service.AddToCart(ctx, nil, "sess-1", &AddToCartRequest{
		ProductID: uintPtr(1), BundleID: uintPtr(9), Quantity: 1,
	})
	assert.Error(t, err, "product and bundle are mutually exclusive")

	_, err = env.service.AddToCart(ctx, nil, "sess-1", &AddToCartRequest{
		ProductVariantID: uintPtr(7), BundleID: uintPtr(9), Quantity: 1,
	})
	assert.Error(t, err, "variant requires product")

	_, err = env.service.AddToCart(ctx, nil, "sess-1", &AddToCartRequest{
		ProductID: uintPtr(1), Quantity: 0,
	})
	assert.Error(t, err, "quantity must be positive")
}

func TestAddToCart_InsufficientStock(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.service.AddToCart(ctx, nil, "sess-1", &AddToCartRequest{
		ProductID: uintPtr(2),
		Quantity:  5,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insufficient inventory")
}

func TestAddToCart_InactiveProduct(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.service.AddToCart(ctx, nil, "sess-1", &AddToCartRequest{
		ProductID: uintPtr(3),
		Quantity:  1,
	})
	assert.Error(t, err)
}

func TestAddToCart_BundleLine(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	resp, err := env.service.AddToCart(ctx, nil, "sess-1", &AddToCartRequest{
		BundleID: uintPtr(9),
		Quantity: 1,
	})
	require.NoError(t, err)

	require.Len(t, resp.Items, 1)
	assert.Equal(t, "Starter Kit", resp.Items[0].Name)
	assert.Equal(t, int64(4000), resp.Items[0].Price)
	assert.Equal(t, int64(4500), resp.Items[0].OriginalPrice)
	assert.Equal(t, int64(500), resp.Totals.Savings)
}

func TestAddToCart_UnavailableBundle(t *testing.T) {
	env := newTestEnv(t)
	env.bundles.errs[9] = fmt.Errorf("%w: bundle 9", bundle.ErrBundleUnavailable)
	ctx := context.Background()

	_, err := env.service.AddToCart(ctx, nil, "sess-1", &AddToCartRequest{
		BundleID: uintPtr(9),
		Quantity: 1,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, bundle.ErrBundleUnavailable)
}

func TestAddToCart_WholesaleUser(t *testing.T) {
	env := newTestEnv(t)
	env.tiers.tiers[42] = pricing.TierWholesale
	ctx := context.Background()

	resp, err := env.service.AddToCart(ctx, uintPtr(42), "", &AddToCartRequest{
		ProductID: uintPtr(1),
		Quantity:  1,
	})
	require.NoError(t, err)

	require.Len(t, resp.Items, 1)
	assert.Equal(t, int64(850), resp.Items[0].Price)
	assert.Equal(t, int64(1000), resp.Items[0].OriginalPrice)
}

func TestUpdateQuantity_RepricesAcrossTierBoundary(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	resp, err := env.service.AddToCart(ctx, nil, "sess-1", &AddToCartRequest{
		ProductID: uintPtr(1),
		Quantity:  5,
	})
	require.NoError(t, err)
	itemID := resp.Items[0].ID
	require.Equal(t, int64(1000), resp.Items[0].Price)

	// Crossing up picks up the bulk tier
	resp, err = env.service.UpdateQuantity(ctx, nil, "sess-1", itemID, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(950), resp.Items[0].Price)
	assert.Contains(t, resp.Items[0].AppliedDiscounts, "bulk-10")

	// Crossing back down drops it again
	resp, err = env.service.UpdateQuantity(ctx, nil, "sess-1", itemID, 9)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), resp.Items[0].Price)
	assert.NotContains(t, resp.Items[0].AppliedDiscounts, "bulk-10")
}

func TestUpdateQuantity_ZeroRemovesLine(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	resp, err := env.service.AddToCart(ctx, nil, "sess-1", &AddToCartRequest{
		ProductID: uintPtr(1),
		Quantity:  2,
	})
	require.NoError(t, err)

	resp, err = env.service.UpdateQuantity(ctx, nil, "sess-1", resp.Items[0].ID, 0)
	require.NoError(t, err)
	assert.Empty(t, resp.Items)
}

func TestUpdateQuantity_UnknownItem(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.service.UpdateQuantity(ctx, nil, "sess-1", "no-such-line", 3)
	assert.ErrorIs(t, err, ErrItemNotFound)
}

func TestRemoveFromCart_IsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	resp, err := env.service.AddToCart(ctx, nil, "sess-1", &AddToCartRequest{
		ProductID: uintPtr(1),
		Quantity:  1,
	})
	require.NoError(t, err)
	itemID := resp.Items[0].ID

	resp, err = env.service.RemoveFromCart(ctx, nil, "sess-1", itemID)
	require.NoError(t, err)
	assert.Empty(t, resp.Items)

	// Removing again is a no-op, not an error
	resp, err = env.service.RemoveFromCart(ctx, nil, "sess-1", itemID)
	require.NoError(t, err)
	assert.Empty(t, resp.Items)
}

func TestClearCart(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.service.AddToCart(ctx, nil, "sess-1", &AddToCartRequest{
		ProductID: uintPtr(1), Quantity: 1,
	})
	require.NoError(t, err)
	_, err = env.service.AddToCart(ctx, nil, "sess-1", &AddToCartRequest{
		BundleID: uintPtr(9), Quantity: 1,
	})
	require.NoError(t, err)

	require.NoError(t, env.service.ClearCart(ctx, nil, "sess-1"))

	resp, err := env.service.GetCart(ctx, nil, "sess-1")
	require.NoError(t, err)
	assert.Empty(t, resp.Items)
	assert.Equal(t, 0, resp.Totals.ItemCount)
}

func TestGetCartItemCount(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	count, err := env.service.GetCartItemCount(ctx, nil, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	_, err = env.service.AddToCart(ctx, nil, "sess-1", &AddToCartRequest{
		ProductID: uintPtr(1), Quantity: 3,
	})
	require.NoError(t, err)

	count, err = env.service.GetCartItemCount(ctx, nil, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestMergeGuestCartToUser(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	// Guest adds a drill and a bundle
	_, err := env.service.AddToCart(ctx, nil, "sess-1", &AddToCartRequest{
		ProductID: uintPtr(1), Quantity: 6,
	})
	require.NoError(t, err)
	_, err = env.service.AddToCart(ctx, nil, "sess-1", &AddToCartRequest{
		BundleID: uintPtr(9), Quantity: 1,
	})
	require.NoError(t, err)

	// The user already has a server-side drill line
	_, err = env.service.AddToCart(ctx, uintPtr(42), "", &AddToCartRequest{
		ProductID: uintPtr(1), Quantity: 6,
	})
	require.NoError(t, err)

	require.NoError(t, env.service.MergeGuestCartToUser(ctx, 42, "sess-1"))

	// Matching lines were summed and re-priced across the bulk boundary; the
	// bundle line moved over as-is
	resp, err := env.service.GetCart(ctx, uintPtr(42), "")
	require.NoError(t, err)
	require.Len(t, resp.Items, 2)

	var drill, kit *CartItemResponse
	for i := range resp.Items {
		if resp.Items[i].ProductID != nil {
			drill = &resp.Items[i]
		} else {
			kit = &resp.Items[i]
		}
	}
	require.NotNil(t, drill)
	require.NotNil(t, kit)

	assert.Equal(t, 12, drill.Quantity)
	assert.Equal(t, int64(950), drill.Price)
	assert.Contains(t, drill.AppliedDiscounts, "bulk-10")
	assert.Equal(t, int64(4000), kit.Price)

	// The guest cart is gone
	guestResp, err := env.service.GetCart(ctx, nil, "sess-1")
	require.NoError(t, err)
	assert.Empty(t, guestResp.Items)
}

func TestMergeGuestCartToUser_EmptyGuestCartIsNoop(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.service.AddToCart(ctx, uintPtr(42), "", &AddToCartRequest{
		ProductID: uintPtr(1), Quantity: 2,
	})
	require.NoError(t, err)

	require.NoError(t, env.service.MergeGuestCartToUser(ctx, 42, "sess-1"))

	resp, err := env.service.GetCart(ctx, uintPtr(42), "")
	require.NoError(t, err)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, 2, resp.Items[0].Quantity)
}

// failingRepo simulates an unreachable backing store
type failingRepo struct {
	err error
}

func (r *failingRepo) List(ctx context.Context) ([]LineItem, error) { return nil, r.err }
func (r *failingRepo) Save(ctx context.Context, item LineItem) error {
	return r.err
}
func (r *failingRepo) Delete(ctx context.Context, itemID string) error { return r.err }
func (r *failingRepo) Clear(ctx context.Context) error                 { return r.err }

// brokenGuestService returns a service whose guest store always fails while
// the server store keeps working
func brokenGuestService(env *testEnv, storeErr error) *Service {
	cfg := &config.Config{
		Pricing: config.PricingConfig{WholesaleRatePercent: 85},
	}
	broken := &failingRepo{err: storeErr}
	factory := func(userID *uint, sessionID string) (Repository, error) {
		if userID != nil {
			return env.server, nil
		}
		return broken, nil
	}
	return NewServiceWithFactory(cfg, factory,
		env.catalog, pricing.NewService(cfg), env.bundles, env.tiers)
}

func TestMergeGuestCartToUser_GuestStoreFailureSurfaces(t *testing.T) {
	env := newTestEnv(t)
	svc := brokenGuestService(env, fmt.Errorf("connection refused"))
	ctx := context.Background()

	// A failed guest-store read is an error, not a silent empty merge
	err := svc.MergeGuestCartToUser(ctx, 42, "sess-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestGetCartItemCount_StorageFailureSurfaces(t *testing.T) {
	env := newTestEnv(t)
	svc := brokenGuestService(env, fmt.Errorf("connection refused"))
	ctx := context.Background()

	_, err := svc.GetCartItemCount(ctx, nil, "sess-1")
	require.Error(t, err)
}

func TestMergeNames_PreservesOrder(t *testing.T) {
	merged := mergeNames([]string{"a", "b"}, []string{"b", "c"})
	assert.Equal(t, []string{"a", "b", "c"}, merged)

	assert.Empty(t, mergeNames(nil, nil))
}
