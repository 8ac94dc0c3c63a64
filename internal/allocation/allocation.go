// Package allocation distributes a requested purchase quantity across a
// product's price lots. It is pure computation: callers read lots and
// purchase history, the engine decides which lots supply which units.
//
// The same engine backs both the cart preview and the authoritative
// checkout re-validation, so the distribution policy cannot drift
// between the two call sites.
package allocation

import (
	"errors"
	"sort"
)

// ErrInvalidQuantity is returned when the requested quantity is not a
// positive integer. Infeasibility is NOT an error: it is reported via
// Result.CanAdd so callers can distinguish "bad input" from "sold out".
var ErrInvalidQuantity = errors.New("allocation: quantity must be a positive integer")

// Lot is one price tier of a product.
//
// PurchaseCap semantics:
//   - 0 is a sentinel: the agency may buy exactly one unit of the
//     product, lifetime, across every lot. Once the agency owns any
//     unit at all, every cap-0 lot is exhausted for it.
//   - N > 0: the agency may buy up to N units from this specific lot,
//     lifetime.
type Lot struct {
	ID          int64
	Batch       int
	Value       int64 // points per unit
	PurchaseCap int
}

// History is the agency's confirmed purchase history for one product.
// TotalUnits counts every unit ever bought from any lot; UnitsByLot
// tracks per-lot consumption. A nil UnitsByLot means no prior purchases.
type History struct {
	TotalUnits int
	UnitsByLot map[int64]int
}

// Allocation is one slice of the distribution: Quantity units supplied
// by the lot identified by PriceID at Value points each.
type Allocation struct {
	PriceID  int64 `json:"price_id"`
	Batch    int   `json:"batch"`
	Value    int64 `json:"value"`
	Quantity int   `json:"quantity"`
}

// Result is the outcome of a distribution request.
//
// When CanAdd is false the request is infeasible as a whole: the
// remaining lot capacity cannot supply the full quantity. Distribution
// and TotalPoints are zeroed so a partial fill can never leak to a
// caller.
type Result struct {
	CanAdd       bool         `json:"can_add"`
	Distribution []Allocation `json:"distribution,omitempty"`
	TotalPoints  int64        `json:"total_points"`
}

// UnitPoints returns the average unit price for display. The engine
// sums exact per-lot values; averaging happens only here, at the edge.
func (r Result) UnitPoints(quantity int) float64 {
	if quantity <= 0 || !r.CanAdd {
		return 0
	}
	return float64(r.TotalPoints) / float64(quantity)
}

// Distribute allocates quantity units across lots in ascending Batch
// order, honoring the agency's purchase history. The result is
// deterministic: lots with equal Batch keep their input order.
func Distribute(quantity int, lots []Lot, hist History) (Result, error) {
	if quantity <= 0 {
		return Result{}, ErrInvalidQuantity
	}

	ordered := make([]Lot, len(lots))
	copy(ordered, lots)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Batch < ordered[j].Batch
	})

	var (
		remaining    = quantity
		totalUnits   = hist.TotalUnits
		distribution []Allocation
		totalPoints  int64
	)

	for _, lot := range ordered {
		if remaining == 0 {
			break
		}

		var take int
		if lot.PurchaseCap == 0 {
			// One unit lifetime, counting units reserved earlier in
			// this same pass.
			if totalUnits == 0 {
				take = 1
			}
		} else {
			available := lot.PurchaseCap - hist.UnitsByLot[lot.ID]
			if available > 0 {
				take = min(remaining, available)
			}
		}

		if take == 0 {
			continue
		}

		distribution = append(distribution, Allocation{
			PriceID:  lot.ID,
			Batch:    lot.Batch,
			Value:    lot.Value,
			Quantity: take,
		})
		totalPoints += lot.Value * int64(take)
		remaining -= take
		totalUnits += take
	}

	if remaining > 0 {
		return Result{CanAdd: false}, nil
	}

	return Result{
		CanAdd:       true,
		Distribution: distribution,
		TotalPoints:  totalPoints,
	}, nil
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
