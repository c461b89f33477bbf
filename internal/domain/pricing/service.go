// internal/domain/pricing/service.go
package pricing

import (
	"sort"

	"github.com/shopspring/decimal"
	"github.com/your-org/shop-backend/internal/config"
)

// Service evaluates pricing rules
type Service struct {
	config  *config.Config
	catalog map[string]DiscountRule
	tiers   []BulkPricingTier // Sorted by MinQuantity descending
}

// NewService creates a pricing service with the default rule catalog
func NewService(cfg *config.Config) *Service {
	return NewServiceWithRules(cfg, defaultDiscountRules(), defaultBulkTiers())
}

// NewServiceWithRules creates a pricing service with an explicit catalog and tier table
func NewServiceWithRules(cfg *config.Config, rules []DiscountRule, tiers []BulkPricingTier) *Service {
	catalog := make(map[string]DiscountRule, len(rules))
	for _, rule := range rules {
		catalog[rule.Name] = rule
	}

	sorted := make([]BulkPricingTier, len(tiers))
	copy(sorted, tiers)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].MinQuantity > sorted[j].MinQuantity
	})

	return &Service{
		config:  cfg,
		catalog: catalog,
		tiers:   sorted,
	}
}

// CalculateDynamicPrice computes the per-unit price for a base price and request.
// Named discounts are applied in list order; names missing from the catalog are
// skipped without being reported. The bulk tier for the quantity, if any, is
// applied last and its name appended to the applied list. The result is never
// negative.
func (s *Service) CalculateDynamicPrice(basePrice int64, req PriceRequest) PriceQuote {
	quote := PriceQuote{
		OriginalPrice:    basePrice,
		AppliedDiscounts: []string{},
	}

	price := basePrice
	if price < 0 {
		price = 0
	}

	// Customer tier selects the base rate before any discounts
	if req.CustomerTier == TierWholesale {
		price = applyPercentRate(price, int64(s.config.Pricing.WholesaleRatePercent))
	}

	// Apply named discounts in list order
	for _, name := range req.AppliedDiscounts {
		rule, ok := s.catalog[name]
		if !ok {
			continue
		}
		price = applyDiscount(price, rule.Effect, rule.Value)
		quote.AppliedDiscounts = append(quote.AppliedDiscounts, rule.Name)
	}

	// Apply the bulk tier for the quantity, if one qualifies
	if tier := s.BulkTierFor(req.Quantity); tier != nil {
		price = applyDiscount(price, tier.Effect, tier.Value)
		quote.AppliedDiscounts = append(quote.AppliedDiscounts, tier.Name)
	}

	if price < 0 {
		price = 0
	}
	quote.FinalPrice = price

	return quote
}

// BulkTierFor returns the highest qualifying tier for a quantity, or nil when
// the quantity is below every threshold
func (s *Service) BulkTierFor(quantity int) *BulkPricingTier {
	for i := range s.tiers {
		if quantity >= s.tiers[i].MinQuantity {
			tier := s.tiers[i]
			return &tier
		}
	}
	return nil
}

// applyDiscount applies a single discount effect to a price in cents
func applyDiscount(price int64, effect DiscountEffect, value int64) int64 {
	switch effect {
	case EffectPercent:
		price = price - percentOf(price, value)
	case EffectFixed:
		price = price - value
	}
	if price < 0 {
		price = 0
	}
	return price
}

// applyPercentRate returns price scaled to the given percent rate
func applyPercentRate(price int64, ratePercent int64) int64 {
	return percentOf(price, ratePercent)
}

// percentOf computes value% of price in cents, rounded half-up
func percentOf(price int64, value int64) int64 {
	return decimal.NewFromInt(price).
		Mul(decimal.NewFromInt(value)).
		Div(decimal.NewFromInt(100)).
		Round(0).
		IntPart()
}

// defaultDiscountRules returns the built-in discount catalog
func defaultDiscountRules() []DiscountRule {
	return []DiscountRule{
		{Name: "spring-promo", Effect: EffectPercent, Value: 10},
		{Name: "loyalty-member", Effect: EffectPercent, Value: 5},
		{Name: "first-order", Effect: EffectFixed, Value: 500},
		{Name: "clearance", Effect: EffectPercent, Value: 25},
	}
}

// defaultBulkTiers returns the built-in bulk pricing tiers
func defaultBulkTiers() []BulkPricingTier {
	return []BulkPricingTier{
		{MinQuantity: 10, Name: "bulk-10", Effect: EffectPercent, Value: 5},
		{MinQuantity: 50, Name: "bulk-50", Effect: EffectPercent, Value: 10},
	}
}
