package engage

import "strings"

// giftValue pairs a gift name with its diamond value. Kept as an ordered
// slice so lookup order is deterministic when a name matches several
// entries.
type giftValue struct {
	name     string
	diamonds int
}

// giftValues is the fixed per-unit diamond table for common gifts.
var giftValues = []giftValue{
	{"Rose", 1},
	{"TikTok", 1},
	{"Finger Heart", 5},
	{"Mic", 5},
	{"Panda", 5},
	{"Ice Cream", 1},
	{"Love You", 5},
	{"Doughnut", 30},
	{"Confetti", 100},
	{"Cap", 99},
	{"Paper Crane", 99},
	{"Crown", 199},
	{"Gem", 15},
	{"Lion", 29999},
	{"Universe", 34999},
}

// EstimateDiamonds looks up the per-unit diamond value for a gift name by
// case-insensitive substring match, so localized variants like
// "Hoa hồng (Rose)" still resolve. Unknown names default to 1.
func EstimateDiamonds(name string) int {
	lower := strings.ToLower(name)
	for _, g := range giftValues {
		if strings.Contains(lower, strings.ToLower(g.name)) {
			return g.diamonds
		}
	}
	return 1
}
