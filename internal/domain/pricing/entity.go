// internal/domain/pricing/entity.go
package pricing

// CustomerTier selects the base rate table used before discounts are applied
type CustomerTier string

const (
	TierRegular   CustomerTier = "regular"
	TierWholesale CustomerTier = "wholesale"
)

// DiscountEffect describes how a discount modifies a price
type DiscountEffect string

const (
	EffectPercent DiscountEffect = "percent" // Value is percent points off
	EffectFixed   DiscountEffect = "fixed"   // Value is cents off
)

// DiscountRule represents a named discount from the catalog
type DiscountRule struct {
	Name   string         `json:"name"`
	Effect DiscountEffect `json:"effect"`
	Value  int64          `json:"value"`
}

// BulkPricingTier represents a quantity threshold at which an automatic discount applies
type BulkPricingTier struct {
	MinQuantity int            `json:"min_quantity"`
	Name        string         `json:"name"`
	Effect      DiscountEffect `json:"effect"`
	Value       int64          `json:"value"`
}

// PriceRequest carries the inputs for a dynamic price calculation
type PriceRequest struct {
	Quantity         int          `json:"quantity"`
	CustomerTier     CustomerTier `json:"customer_tier"`
	AppliedDiscounts []string     `json:"applied_discounts"`
}

// PriceQuote is the result of a dynamic price calculation
type PriceQuote struct {
	FinalPrice       int64    `json:"final_price"`    // Per-unit price in cents, never negative
	OriginalPrice    int64    `json:"original_price"` // Base price before tier rates and discounts
	AppliedDiscounts []string `json:"applied_discounts"`
}
