package preptime

import (
	"math"
	"time"

	"github.com/foodexpress/foodexpress-backend/pkg/db/models"
	"github.com/foodexpress/foodexpress-backend/pkg/enums"
)

// Estimate returns when an order is expected to be ready for pickup.
//
// Kitchens prepare items in parallel, so the estimate is driven by the single
// slowest item rather than the sum, scaled by the restaurant's congestion
// coefficient and rounded to whole minutes.
func Estimate(items []models.OrderItem, capacity enums.KitchenCapacity, now time.Time) time.Time {
	maxPrep := 0
	for _, item := range items {
		if item.PrepTimeMinutes > maxPrep {
			maxPrep = item.PrepTimeMinutes
		}
	}

	scaled := math.Round(float64(maxPrep) * capacity.Coefficient())
	return now.Add(time.Duration(scaled) * time.Minute)
}

// TotalWeightGrams sums item weight across the order, counting quantity.
func TotalWeightGrams(items []models.OrderItem) int {
	total := 0
	for _, item := range items {
		total += item.WeightGrams * item.Quantity
	}
	return total
}
