package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loyalty-backend/internal/allocation"
	"loyalty-backend/internal/models"
)

func TestNewOrderNumber(t *testing.T) {
	n := newOrderNumber()
	assert.True(t, strings.HasPrefix(n, "ORD-"))
	assert.Len(t, n, 12)
	assert.Equal(t, strings.ToUpper(n), n)

	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		num := newOrderNumber()
		assert.False(t, seen[num], "order number collided: %s", num)
		seen[num] = true
	}
}

func TestLotsForAllocation(t *testing.T) {
	prices := []models.ProductPrice{
		{ID: 7, ProductID: 1, Value: 100, Batch: 1, PurchaseCap: 0},
		{ID: 9, ProductID: 1, Value: 150, Batch: 2, PurchaseCap: 5},
	}

	lots := lotsForAllocation(prices)
	require.Len(t, lots, 2)

	assert.Equal(t, int64(7), lots[0].ID)
	assert.Equal(t, 1, lots[0].Batch)
	assert.Equal(t, int64(100), lots[0].Value)
	assert.Equal(t, 0, lots[0].PurchaseCap)

	assert.Equal(t, int64(9), lots[1].ID)
	assert.Equal(t, 5, lots[1].PurchaseCap)
}

func TestLotsForAllocation_Empty(t *testing.T) {
	assert.Empty(t, lotsForAllocation(nil))
}

func TestMergeItems(t *testing.T) {
	merged := mergeItems([]models.CheckoutItemRequest{
		{ProductID: 10, Quantity: 3},
		{ProductID: 20, Quantity: 1},
		{ProductID: 10, Quantity: 3},
	})

	require.Len(t, merged, 2)
	assert.Equal(t, int64(10), merged[0].ProductID)
	assert.Equal(t, 6, merged[0].Quantity)
	assert.Equal(t, int64(20), merged[1].ProductID)
	assert.Equal(t, 1, merged[1].Quantity)
}

// A cart that splits one product across two lines must not get more
// units than a single line for the combined quantity would: the lines
// are merged before allocation, so lot caps apply to the total.
func TestMergedDuplicateLinesCannotExceedLotCaps(t *testing.T) {
	lots := []allocation.Lot{
		{ID: 1, Batch: 1, Value: 100, PurchaseCap: 0},
		{ID: 2, Batch: 2, Value: 150, PurchaseCap: 2},
	}
	items := mergeItems([]models.CheckoutItemRequest{
		{ProductID: 10, Quantity: 3},
		{ProductID: 10, Quantity: 3},
	})
	require.Len(t, items, 1)

	// Capacity is 1 (lifetime intro unit) + 2 = 3; the merged 6 is
	// infeasible. Allocated per line, each 3 would have fit.
	result, err := allocation.Distribute(items[0].Quantity, lots, allocation.History{})
	require.NoError(t, err)
	assert.False(t, result.CanAdd)
	assert.Empty(t, result.Distribution)

	perLine, err := allocation.Distribute(3, lots, allocation.History{})
	require.NoError(t, err)
	assert.True(t, perLine.CanAdd)
}

func TestUnitsByProduct(t *testing.T) {
	units, order := unitsByProduct([]models.OrderItem{
		{ProductID: 10, PriceID: 1, Quantity: 1},
		{ProductID: 10, PriceID: 2, Quantity: 2},
		{ProductID: 20, PriceID: 5, Quantity: 4},
	})

	assert.Equal(t, []int64{10, 20}, order)
	assert.Equal(t, 3, units[10])
	assert.Equal(t, 4, units[20])
}
