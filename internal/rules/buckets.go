package rules

import "tally/internal/core"

// Bucket classifies a category for the 50/30/20 heuristic.
type Bucket string

const (
	Needs   Bucket = "needs"
	Wants   Bucket = "wants"
	Savings Bucket = "savings"
)

// bucketOf is the fixed category-to-bucket table. Exhaustive over the
// category enumeration; debt service counts as a need.
var bucketOf = map[core.Category]Bucket{
	core.CategoryFood:           Needs,
	core.CategoryHousing:        Needs,
	core.CategoryUtilities:      Needs,
	core.CategoryTransportation: Needs,
	core.CategoryHealthcare:     Needs,
	core.CategoryDebt:           Needs,
	core.CategoryDining:         Wants,
	core.CategoryEntertainment:  Wants,
	core.CategoryShopping:       Wants,
	core.CategoryEducation:      Wants,
	core.CategoryTravel:         Wants,
	core.CategoryOther:          Wants,
	core.CategorySavings:        Savings,
}

// BucketOf returns the 50/30/20 bucket for a category.
func BucketOf(c core.Category) Bucket {
	if b, ok := bucketOf[c]; ok {
		return b
	}
	return Wants
}

// idealShare is the 50/30/20 split of estimated income.
var idealShare = map[Bucket]float64{
	Needs:   0.5,
	Wants:   0.3,
	Savings: 0.2,
}
