// internal/domain/cart/repository_test.go
package cart

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUpdateColumns_ReplacesDisplayName(t *testing.T) {
	row := fromLineItem(1, LineItem{
		ID:               "line-1",
		Name:             "Cordless Drill (5Ah Battery)",
		Quantity:         2,
		Price:            950,
		OriginalPrice:    1000,
		AppliedDiscounts: []string{"bulk-10"},
	})

	cols := updateColumns(row)

	// Replacing a stored line rewrites its display name too, so a renamed
	// product does not leave a stale name on a merged line
	assert.Equal(t, "Cordless Drill (5Ah Battery)", cols["name"])
	assert.Equal(t, 2, cols["quantity"])
	assert.Equal(t, int64(950), cols["price"])
	assert.Equal(t, int64(1000), cols["original_price"])
	assert.Equal(t, "bulk-10", cols["applied_discounts"])
}
