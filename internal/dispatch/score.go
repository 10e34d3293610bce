package dispatch

import (
	"time"

	"github.com/foodexpress/foodexpress-backend/internal/change"
	"github.com/foodexpress/foodexpress-backend/pkg/db/models"
	"github.com/foodexpress/foodexpress-backend/pkg/enums"
	"github.com/foodexpress/foodexpress-backend/pkg/types"
)

const (
	// Orders above this weight need a car.
	bikeWeightCapGrams = 6000
	// Range split between bike and car trips.
	bikeRangeCapMeters = 5000.0
)

// candidateScore captures the soft criteria for one courier against one order.
type candidateScore struct {
	courier        models.Courier
	distanceMeters float64
	travelTime     time.Duration
	meetsWeight    bool
	meetsDistance  bool
	meetsChange    bool
	optimalChange  types.ChangeBreakdown
}

func (s candidateScore) criteriaMet() int {
	count := 0
	for _, met := range []bool{s.meetsWeight, s.meetsDistance, s.meetsChange} {
		if met {
			count++
		}
	}
	return count
}

// meetsWeight: cars carry anything, bikes are capped.
func meetsWeight(vehicle enums.VehicleType, totalWeightGrams int) bool {
	return vehicle == enums.VehicleTypeCar || totalWeightGrams <= bikeWeightCapGrams
}

// meetsDistance enforces the complementary range split: bikes take short
// hops, cars take long ones. A car is never preferred for a bike-length trip.
func meetsDistance(vehicle enums.VehicleType, distanceMeters float64) bool {
	switch vehicle {
	case enums.VehicleTypeBike:
		return distanceMeters <= bikeRangeCapMeters
	case enums.VehicleTypeCar:
		return distanceMeters > bikeRangeCapMeters
	default:
		return false
	}
}

// scoreChange evaluates the cash-change criterion for one courier. Non-cash
// orders pass unconditionally. For cash orders the customer's declared tender
// is summed, the required change derived, and the courier's wallet asked for
// an exact greedy breakdown.
func scoreChange(order *models.Order, wallet types.Wallet) (bool, types.ChangeBreakdown) {
	if order.PaymentMethod != enums.PaymentMethodCash {
		return true, nil
	}

	tendered, err := order.Tender.TotalCents()
	if err != nil {
		// Malformed tender should have been rejected upstream; score it out.
		return false, nil
	}

	required := change.Required(order.TotalCents, tendered)
	if required > 0 && len(wallet) == 0 {
		return false, nil
	}
	return change.Compute(required, wallet)
}

// pickBest returns the first candidate in the highest non-empty criteria
// bucket (3 beats 2 beats 1 beats 0). Candidates arrive in courier
// created_at order, so ties resolve to the longest-registered courier.
func pickBest(scores []candidateScore) (candidateScore, bool) {
	best := -1
	var picked candidateScore
	for _, score := range scores {
		if met := score.criteriaMet(); met > best {
			best = met
			picked = score
		}
	}
	return picked, best >= 0
}
