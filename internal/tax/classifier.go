// Package tax assigns transactions to the fixed tax buckets used by the
// yearly deduction summary. Classification is a total function: every
// (category, subcategory) combination maps to exactly one bucket.
package tax

import "strings"

// Bucket is one of the five fixed tax classification labels. Display
// strings keep the bilingual form used by existing exports.
type Bucket string

const (
	WorkRelated Bucket = "Werbungskosten (Work-related)"
	Health      Bucket = "Gesundheitskosten (Health)"
	Insurance   Bucket = "Versicherungen (Insurance)"
	Donations   Bucket = "Spenden (Donations)"
	Other       Bucket = "Sonstige (Other)"
)

// Buckets lists every bucket in its fixed summary order.
var Buckets = []Bucket{WorkRelated, Health, Insurance, Donations, Other}

// Classify assigns a transaction to a bucket. Rules are evaluated in
// priority order and the first match wins:
//
//  1. category business/education/subscriptions -> Work-related
//  2. category health                           -> Health
//  3. subcategory containing "insurance"        -> Insurance (case-insensitive)
//  4. category gifts_donations                  -> Donations
//  5. everything else                           -> Other
func Classify(category, subcategory string) Bucket {
	switch category {
	case "business", "education", "subscriptions":
		return WorkRelated
	case "health":
		return Health
	}
	if strings.Contains(strings.ToLower(subcategory), "insurance") {
		return Insurance
	}
	if category == "gifts_donations" {
		return Donations
	}
	return Other
}
