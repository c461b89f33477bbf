// internal/domain/bundle/service_test.go
package bundle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/shop-backend/internal/domain/product"
)

func pricedItemFor(productID uint, price int64, quantity int) pricedItem {
	return pricedItem{
		item: BundleItem{ProductID: productID, Quantity: quantity},
		prod: &product.Product{ID: productID, Price: price, IsActive: true},
	}
}

func TestCalculate_DiscountBundle(t *testing.T) {
	b := &Bundle{ID: 1, Discount: 500}
	items := []pricedItem{
		pricedItemFor(1, 1000, 2),
		pricedItemFor(2, 2500, 1),
	}

	calc, err := calculate(b, items)
	require.NoError(t, err)

	assert.Equal(t, int64(4500), calc.IndividualTotal)
	assert.Equal(t, int64(4000), calc.BundlePrice)
	assert.Equal(t, int64(500), calc.Savings)
	assert.InDelta(t, 11.11, calc.SavingsPercentage, 0.001)
}

func TestCalculate_FixedPriceBundle(t *testing.T) {
	fixed := int64(3000)
	b := &Bundle{ID: 2, FixedPrice: &fixed, Discount: 9999} // FixedPrice wins over Discount
	items := []pricedItem{
		pricedItemFor(1, 1000, 2),
		pricedItemFor(2, 2000, 1),
	}

	calc, err := calculate(b, items)
	require.NoError(t, err)

	assert.Equal(t, int64(4000), calc.IndividualTotal)
	assert.Equal(t, int64(3000), calc.BundlePrice)
	assert.Equal(t, int64(1000), calc.Savings)
	assert.InDelta(t, 25.0, calc.SavingsPercentage, 0.001)
}

func TestCalculate_VariantPriceOverride(t *testing.T) {
	b := &Bundle{ID: 3, Discount: 100}
	item := pricedItemFor(1, 1000, 1)
	item.variant = &product.ProductVariant{ID: 7, ProductID: 1, Price: 1500, IsActive: true}
	items := []pricedItem{item}

	calc, err := calculate(b, items)
	require.NoError(t, err)

	assert.Equal(t, int64(1500), calc.IndividualTotal)
	assert.Equal(t, int64(1400), calc.BundlePrice)
}

func TestCalculate_MispricedBundle(t *testing.T) {
	fixed := int64(5000)
	b := &Bundle{ID: 4, FixedPrice: &fixed}
	items := []pricedItem{
		pricedItemFor(1, 1000, 2),
	}

	_, err := calculate(b, items)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBundleMispriced)
}

func TestCalculate_EqualPriceIsNotMispriced(t *testing.T) {
	fixed := int64(2000)
	b := &Bundle{ID: 5, FixedPrice: &fixed}
	items := []pricedItem{
		pricedItemFor(1, 1000, 2),
	}

	calc, err := calculate(b, items)
	require.NoError(t, err)
	assert.Equal(t, int64(0), calc.Savings)
	assert.Equal(t, 0.0, calc.SavingsPercentage)
}

func TestCalculate_OversizedDiscountClampsToZero(t *testing.T) {
	b := &Bundle{ID: 6, Discount: 10000}
	items := []pricedItem{
		pricedItemFor(1, 1000, 1),
	}

	calc, err := calculate(b, items)
	require.NoError(t, err)
	assert.Equal(t, int64(0), calc.BundlePrice)
	assert.Equal(t, int64(1000), calc.Savings)
}

func TestCalculate_EmptyBundle(t *testing.T) {
	b := &Bundle{ID: 7}

	calc, err := calculate(b, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(0), calc.IndividualTotal)
	assert.Equal(t, int64(0), calc.BundlePrice)
	assert.Equal(t, 0.0, calc.SavingsPercentage)
}
