package allocation_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loyalty-backend/internal/allocation"
)

// Standard two-lot setup used across tests: a cap-0 intro lot and a
// capped regular lot.
func twoLots() []allocation.Lot {
	return []allocation.Lot{
		{ID: 1, Batch: 1, Value: 100, PurchaseCap: 0},
		{ID: 2, Batch: 2, Value: 150, PurchaseCap: 2},
	}
}

func TestDistribute_InvalidQuantity(t *testing.T) {
	for _, qty := range []int{0, -1, -100} {
		_, err := allocation.Distribute(qty, twoLots(), allocation.History{})
		assert.ErrorIs(t, err, allocation.ErrInvalidQuantity, "qty=%d", qty)
	}
}

func TestDistribute_FirstUnitFromIntroLot(t *testing.T) {
	res, err := allocation.Distribute(1, twoLots(), allocation.History{})
	require.NoError(t, err)

	assert.True(t, res.CanAdd)
	assert.Equal(t, []allocation.Allocation{
		{PriceID: 1, Batch: 1, Value: 100, Quantity: 1},
	}, res.Distribution)
	assert.Equal(t, int64(100), res.TotalPoints)
}

func TestDistribute_IntroLotExhaustedByAnyPriorPurchase(t *testing.T) {
	// Agency already bought one unit (whichever lot it came from), so
	// the cap-0 lot is gone forever and the request falls to lot 2.
	hist := allocation.History{TotalUnits: 1, UnitsByLot: map[int64]int{1: 1}}

	res, err := allocation.Distribute(1, twoLots(), hist)
	require.NoError(t, err)

	assert.True(t, res.CanAdd)
	assert.Equal(t, []allocation.Allocation{
		{PriceID: 2, Batch: 2, Value: 150, Quantity: 1},
	}, res.Distribution)
	assert.Equal(t, int64(150), res.TotalPoints)
}

func TestDistribute_AllLotsExhausted(t *testing.T) {
	hist := allocation.History{TotalUnits: 3, UnitsByLot: map[int64]int{1: 1, 2: 2}}

	res, err := allocation.Distribute(1, twoLots(), hist)
	require.NoError(t, err)

	assert.False(t, res.CanAdd)
	assert.Empty(t, res.Distribution, "infeasible result must not carry a partial fill")
	assert.Zero(t, res.TotalPoints)
}

func TestDistribute_SpansLots(t *testing.T) {
	res, err := allocation.Distribute(3, twoLots(), allocation.History{})
	require.NoError(t, err)

	assert.True(t, res.CanAdd)
	assert.Equal(t, []allocation.Allocation{
		{PriceID: 1, Batch: 1, Value: 100, Quantity: 1},
		{PriceID: 2, Batch: 2, Value: 150, Quantity: 2},
	}, res.Distribution)
	assert.Equal(t, int64(400), res.TotalPoints)
}

func TestDistribute_AllOrNothing(t *testing.T) {
	// Capacity is 3 (1 intro + 2 capped); asking for 4 must not return
	// a distribution of 3.
	res, err := allocation.Distribute(4, twoLots(), allocation.History{})
	require.NoError(t, err)

	assert.False(t, res.CanAdd)
	assert.Empty(t, res.Distribution)
}

func TestDistribute_NoLots(t *testing.T) {
	res, err := allocation.Distribute(1, nil, allocation.History{})
	require.NoError(t, err)
	assert.False(t, res.CanAdd)
}

func TestDistribute_IntroUnitReservedWithinSamePass(t *testing.T) {
	// Two cap-0 lots: the first one consumed in this pass counts as the
	// lifetime unit, so the second cap-0 lot contributes nothing.
	lots := []allocation.Lot{
		{ID: 1, Batch: 1, Value: 100, PurchaseCap: 0},
		{ID: 2, Batch: 2, Value: 120, PurchaseCap: 0},
		{ID: 3, Batch: 3, Value: 150, PurchaseCap: 5},
	}

	res, err := allocation.Distribute(3, lots, allocation.History{})
	require.NoError(t, err)

	require.True(t, res.CanAdd)
	assert.Equal(t, []allocation.Allocation{
		{PriceID: 1, Batch: 1, Value: 100, Quantity: 1},
		{PriceID: 3, Batch: 3, Value: 150, Quantity: 2},
	}, res.Distribution)
	assert.Equal(t, int64(400), res.TotalPoints)
}

func TestDistribute_PerLotCapRespected(t *testing.T) {
	lots := []allocation.Lot{
		{ID: 10, Batch: 1, Value: 80, PurchaseCap: 3},
		{ID: 11, Batch: 2, Value: 90, PurchaseCap: 3},
	}
	hist := allocation.History{TotalUnits: 2, UnitsByLot: map[int64]int{10: 2}}

	res, err := allocation.Distribute(4, lots, hist)
	require.NoError(t, err)

	require.True(t, res.CanAdd)
	assert.Equal(t, []allocation.Allocation{
		{PriceID: 10, Batch: 1, Value: 80, Quantity: 1},
		{PriceID: 11, Batch: 2, Value: 90, Quantity: 3},
	}, res.Distribution)
	assert.Equal(t, int64(80+3*90), res.TotalPoints)
}

func TestDistribute_MissingHistoryEntryMeansZeroConsumed(t *testing.T) {
	lots := []allocation.Lot{{ID: 7, Batch: 1, Value: 50, PurchaseCap: 2}}
	hist := allocation.History{TotalUnits: 5, UnitsByLot: map[int64]int{99: 5}}

	res, err := allocation.Distribute(2, lots, hist)
	require.NoError(t, err)

	assert.True(t, res.CanAdd)
	assert.Equal(t, 2, res.Distribution[0].Quantity)
}

func TestDistribute_UnsortedInputSortedByBatch(t *testing.T) {
	lots := []allocation.Lot{
		{ID: 2, Batch: 3, Value: 200, PurchaseCap: 5},
		{ID: 1, Batch: 1, Value: 100, PurchaseCap: 1},
		{ID: 3, Batch: 2, Value: 150, PurchaseCap: 1},
	}

	res, err := allocation.Distribute(3, lots, allocation.History{TotalUnits: 1})
	require.NoError(t, err)

	require.True(t, res.CanAdd)
	assert.Equal(t, []int64{1, 3, 2}, []int64{
		res.Distribution[0].PriceID,
		res.Distribution[1].PriceID,
		res.Distribution[2].PriceID,
	})
}

func TestDistribute_EqualBatchKeepsInputOrder(t *testing.T) {
	// Tie-break for equal batch numbers is the original slice order.
	lots := []allocation.Lot{
		{ID: 5, Batch: 1, Value: 100, PurchaseCap: 1},
		{ID: 6, Batch: 1, Value: 110, PurchaseCap: 1},
	}

	res, err := allocation.Distribute(2, lots, allocation.History{TotalUnits: 1})
	require.NoError(t, err)

	require.True(t, res.CanAdd)
	assert.Equal(t, int64(5), res.Distribution[0].PriceID)
	assert.Equal(t, int64(6), res.Distribution[1].PriceID)
}

func TestDistribute_Deterministic(t *testing.T) {
	lots := []allocation.Lot{
		{ID: 1, Batch: 2, Value: 150, PurchaseCap: 4},
		{ID: 2, Batch: 1, Value: 100, PurchaseCap: 0},
		{ID: 3, Batch: 2, Value: 160, PurchaseCap: 2},
	}
	hist := allocation.History{TotalUnits: 2, UnitsByLot: map[int64]int{1: 1, 3: 1}}

	first, err := allocation.Distribute(4, lots, hist)
	require.NoError(t, err)
	for i := 0; i < 50; i++ {
		again, err := allocation.Distribute(4, lots, hist)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestDistribute_TotalPointsMatchesDistribution(t *testing.T) {
	lots := []allocation.Lot{
		{ID: 1, Batch: 1, Value: 100, PurchaseCap: 0},
		{ID: 2, Batch: 2, Value: 150, PurchaseCap: 2},
		{ID: 3, Batch: 3, Value: 175, PurchaseCap: 4},
	}

	for qty := 1; qty <= 7; qty++ {
		res, err := allocation.Distribute(qty, lots, allocation.History{})
		require.NoError(t, err)

		var sum int64
		var units int
		for _, a := range res.Distribution {
			sum += a.Value * int64(a.Quantity)
			units += a.Quantity
		}

		require.True(t, res.CanAdd, "capacity is 7, qty=%d must fit", qty)
		assert.Equal(t, qty, units, "qty=%d", qty)
		assert.Equal(t, sum, res.TotalPoints, "qty=%d", qty)
	}
}

func TestResult_UnitPoints(t *testing.T) {
	res, err := allocation.Distribute(3, twoLots(), allocation.History{})
	require.NoError(t, err)

	assert.InDelta(t, 400.0/3.0, res.UnitPoints(3), 1e-9)
	assert.Zero(t, allocation.Result{}.UnitPoints(3))
	assert.Zero(t, res.UnitPoints(0))
}
