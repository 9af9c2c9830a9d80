package product

import "strings"

// Markets lists every market code a product may be listed in.
var Markets = []string{"AZ", "CA", "CO", "IL", "MA", "MI", "MO", "NJ", "NV", "NY", "OR", "WA"}

// Categories lists the product categories offered by the editor.
var Categories = []string{"Flower", "Pre-Roll", "Vape", "Edible", "Concentrate", "Tincture", "Topical", "Beverage"}

// Subspecies lists the taxonomy options.
var Subspecies = []string{"Indica", "Sativa", "Hybrid", "CBD"}

// Feelings lists the mood tags a product can carry.
var Feelings = []string{"Relaxed", "Happy", "Euphoric", "Uplifted", "Creative", "Focused", "Energetic", "Sleepy", "Hungry", "Talkative"}

// Statuses lists the catalog statuses.
var Statuses = []string{StatusActive, "inactive", "pending"}

var marketSet = func() map[string]struct{} {
	out := make(map[string]struct{}, len(Markets))
	for _, m := range Markets {
		out[m] = struct{}{}
	}
	return out
}()

// IsKnownMarket reports whether code is a known market code.
func IsKnownMarket(code string) bool {
	_, ok := marketSet[strings.ToUpper(strings.TrimSpace(code))]
	return ok
}

// CanonicalMarket upper-cases and trims a market code.
func CanonicalMarket(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// KnownMarkets drops unknown codes and returns the canonical remainder.
func KnownMarkets(codes []string) []string {
	out := make([]string, 0, len(codes))
	for _, c := range codes {
		c = CanonicalMarket(c)
		if IsKnownMarket(c) {
			out = append(out, c)
		}
	}
	return out
}

// CanonicalCategory matches name against Categories case-insensitively and
// returns the catalog spelling, or the trimmed input when unknown.
func CanonicalCategory(name string) string {
	name = strings.TrimSpace(name)
	for _, c := range Categories {
		if strings.EqualFold(c, name) {
			return c
		}
	}
	return name
}
