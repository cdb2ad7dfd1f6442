package domain

import "strings"

// Turnover class labels, bucketed on the annualized turnover rate.
const (
	TurnoverFast     = "fast"
	TurnoverMedium   = "medium"
	TurnoverSlow     = "slow"
	TurnoverVerySlow = "very_slow"
)

// ABC classes group products by revenue contribution, XYZ by demand regularity.
const (
	ABCClassA = "A"
	ABCClassB = "B"
	ABCClassC = "C"

	XYZClassX = "X"
	XYZClassY = "Y"
	XYZClassZ = "Z"
)

// Urgency levels for purchase recommendations, ordered from least to most urgent.
const (
	UrgencyLow      = "low"
	UrgencyMedium   = "medium"
	UrgencyHigh     = "high"
	UrgencyCritical = "critical"
)

// Transfer priorities.
const (
	TransferPriorityMedium   = "medium"
	TransferPriorityHigh     = "high"
	TransferPriorityCritical = "critical"
)

// Listing priority classes.
const (
	ListingPriorityHigh   = "high"
	ListingPriorityMedium = "medium"
	ListingPriorityLow    = "low"
)

// Health buckets for the aggregate inventory health score.
const (
	HealthExcellent = "excellent"
	HealthGood      = "good"
	HealthFair      = "fair"
	HealthPoor      = "poor"
)

var urgencyRanks = map[string]int{
	UrgencyLow:      0,
	UrgencyMedium:   1,
	UrgencyHigh:     2,
	UrgencyCritical: 3,
}

// UrgencyRank returns a sortable rank for an urgency level, higher is more
// urgent. Unknown labels rank lowest.
func UrgencyRank(level string) int {
	return urgencyRanks[strings.ToLower(level)]
}

// ValidABCClass reports whether label is one of A, B, C.
func ValidABCClass(label string) bool {
	switch label {
	case ABCClassA, ABCClassB, ABCClassC:
		return true
	}
	return false
}

// ValidXYZClass reports whether label is one of X, Y, Z.
func ValidXYZClass(label string) bool {
	switch label {
	case XYZClassX, XYZClassY, XYZClassZ:
		return true
	}
	return false
}
