// internal/domain/pricing/service_test.go
package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/shop-backend/internal/config"
)

func testConfig() *config.Config {
	return &config.Config{
		Pricing: config.PricingConfig{
			WholesaleRatePercent: 85,
		},
	}
}

func TestCalculateDynamicPrice_RegularNoDiscounts(t *testing.T) {
	svc := NewService(testConfig())

	quote := svc.CalculateDynamicPrice(1000, PriceRequest{Quantity: 1, CustomerTier: TierRegular})

	assert.Equal(t, int64(1000), quote.FinalPrice)
	assert.Equal(t, int64(1000), quote.OriginalPrice)
	assert.Empty(t, quote.AppliedDiscounts)
}

func TestCalculateDynamicPrice_WholesaleRate(t *testing.T) {
	svc := NewService(testConfig())

	quote := svc.CalculateDynamicPrice(1000, PriceRequest{Quantity: 1, CustomerTier: TierWholesale})

	assert.Equal(t, int64(850), quote.FinalPrice)
	assert.Empty(t, quote.AppliedDiscounts, "tier rate is not reported as a discount")
}

func TestCalculateDynamicPrice_NamedDiscountsInOrder(t *testing.T) {
	svc := NewService(testConfig())

	quote := svc.CalculateDynamicPrice(1000, PriceRequest{
		Quantity:         1,
		CustomerTier:     TierRegular,
		AppliedDiscounts: []string{"spring-promo", "first-order"},
	})

	// 1000 -> 900 (10% off) -> 400 (500 cents off)
	assert.Equal(t, int64(400), quote.FinalPrice)
	assert.Equal(t, []string{"spring-promo", "first-order"}, quote.AppliedDiscounts)
}

func TestCalculateDynamicPrice_UnknownDiscountSkipped(t *testing.T) {
	svc := NewService(testConfig())

	quote := svc.CalculateDynamicPrice(1000, PriceRequest{
		Quantity:         1,
		CustomerTier:     TierRegular,
		AppliedDiscounts: []string{"mystery-deal", "spring-promo"},
	})

	assert.Equal(t, int64(900), quote.FinalPrice)
	assert.Equal(t, []string{"spring-promo"}, quote.AppliedDiscounts)
}

func TestCalculateDynamicPrice_BulkTiers(t *testing.T) {
	svc := NewService(testConfig())

	tests := []struct {
		name     string
		quantity int
		want     int64
		applied  []string
	}{
		{"below threshold", 9, 1000, []string{}},
		{"first tier", 10, 950, []string{"bulk-10"}},
		{"second tier", 50, 900, []string{"bulk-50"}},
		{"above second tier", 120, 900, []string{"bulk-50"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			quote := svc.CalculateDynamicPrice(1000, PriceRequest{
				Quantity:     tt.quantity,
				CustomerTier: TierRegular,
			})
			assert.Equal(t, tt.want, quote.FinalPrice)
			assert.Equal(t, tt.applied, quote.AppliedDiscounts)
		})
	}
}

func TestCalculateDynamicPrice_StacksTierDiscountAndBulk(t *testing.T) {
	svc := NewService(testConfig())

	quote := svc.CalculateDynamicPrice(1000, PriceRequest{
		Quantity:         50,
		CustomerTier:     TierWholesale,
		AppliedDiscounts: []string{"spring-promo"},
	})

	// 1000 -> 850 (wholesale) -> 765 (10% off) -> 688 (10% bulk, 76.5 rounds to 77)
	assert.Equal(t, int64(688), quote.FinalPrice)
	assert.Equal(t, []string{"spring-promo", "bulk-50"}, quote.AppliedDiscounts)
}

func TestCalculateDynamicPrice_NeverNegative(t *testing.T) {
	svc := NewService(testConfig())

	quote := svc.CalculateDynamicPrice(300, PriceRequest{
		Quantity:         1,
		CustomerTier:     TierRegular,
		AppliedDiscounts: []string{"first-order"},
	})
	assert.Equal(t, int64(0), quote.FinalPrice)

	quote = svc.CalculateDynamicPrice(-100, PriceRequest{Quantity: 1, CustomerTier: TierRegular})
	assert.Equal(t, int64(0), quote.FinalPrice)
}

func TestCalculateDynamicPrice_StoredNamesRequoteSafely(t *testing.T) {
	svc := NewService(testConfig())

	// A line quoted at qty 50 stores both its catalog discounts and the bulk
	// tier name. Feeding that stored list back for a smaller quantity must not
	// apply the old bulk tier, since tier names are not in the catalog.
	first := svc.CalculateDynamicPrice(1000, PriceRequest{
		Quantity:         50,
		CustomerTier:     TierRegular,
		AppliedDiscounts: []string{"spring-promo"},
	})
	require.Equal(t, []string{"spring-promo", "bulk-50"}, first.AppliedDiscounts)

	requote := svc.CalculateDynamicPrice(1000, PriceRequest{
		Quantity:         5,
		CustomerTier:     TierRegular,
		AppliedDiscounts: first.AppliedDiscounts,
	})
	assert.Equal(t, int64(900), requote.FinalPrice)
	assert.Equal(t, []string{"spring-promo"}, requote.AppliedDiscounts)
}

func TestBulkTierFor(t *testing.T) {
	svc := NewService(testConfig())

	assert.Nil(t, svc.BulkTierFor(1))
	assert.Nil(t, svc.BulkTierFor(9))

	tier := svc.BulkTierFor(10)
	require.NotNil(t, tier)
	assert.Equal(t, "bulk-10", tier.Name)

	tier = svc.BulkTierFor(500)
	require.NotNil(t, tier)
	assert.Equal(t, "bulk-50", tier.Name)
}

func TestNewServiceWithRules_CustomCatalog(t *testing.T) {
	svc := NewServiceWithRules(testConfig(),
		[]DiscountRule{{Name: "flash", Effect: EffectFixed, Value: 250}},
		[]BulkPricingTier{{MinQuantity: 3, Name: "three-pack", Effect: EffectPercent, Value: 15}},
	)

	quote := svc.CalculateDynamicPrice(2000, PriceRequest{
		Quantity:         3,
		CustomerTier:     TierRegular,
		AppliedDiscounts: []string{"flash", "spring-promo"},
	})

	// 2000 -> 1750 (flash) -> 1487 (15% off, 262.5 rounds to 263); spring-promo
	// is not in this catalog
	assert.Equal(t, int64(1487), quote.FinalPrice)
	assert.Equal(t, []string{"flash", "three-pack"}, quote.AppliedDiscounts)
}
