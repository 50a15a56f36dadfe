package eventqueue

import (
	"slices"
	"strconv"
	"strings"
	"time"
)

// Criteria selects queue items. Zero values disable the matching predicate.
type Criteria struct {
	Status     string
	Category   string
	Search     string
	Date       *time.Time
	DistanceKM *float64
	Origin     *Point
	City       string
	// StrictDistance drops items whose distance cannot be determined
	// instead of letting them through.
	StrictDistance bool
}

// Apply returns the items matching every predicate in c, newest event first.
// Items with equal event times keep their input order.
func Apply(items []Item, c Criteria) []Item {
	search := strings.ToLower(strings.TrimSpace(c.Search))
	city := strings.ToLower(strings.TrimSpace(c.City))

	out := make([]Item, 0, len(items))
	for _, it := range items {
		if !matchStatus(it, c.Status) ||
			!matchCategory(it, c.Category) ||
			!matchSearch(it, search) ||
			!matchDate(it, c.Date) ||
			!matchDistance(it, c) ||
			!matchCity(it, city) {
			continue
		}
		out = append(out, it)
	}

	slices.SortStableFunc(out, func(a, b Item) int {
		return b.EventTime.Compare(a.EventTime)
	})
	return out
}

func matchStatus(it Item, status string) bool {
	status = strings.TrimSpace(status)
	if status == "" || strings.EqualFold(status, FilterAll) {
		return true
	}
	return it.Status == NormalizeStatus(status)
}

// matchCategory accepts either the normalized category or the stored
// category name, so "flood" finds an incident filed under "Flood Watch".
func matchCategory(it Item, filter string) bool {
	if MatchCategory(it.Category, filter) {
		return true
	}
	return it.CategoryName != "" && MatchCategory(it.CategoryName, filter)
}

func matchSearch(it Item, needle string) bool {
	if needle == "" {
		return true
	}
	haystack := strings.ToLower(it.Title + " " + it.Description + " " + it.UserName)
	return strings.Contains(haystack, needle)
}

func matchDate(it Item, day *time.Time) bool {
	if day == nil {
		return true
	}
	y1, m1, d1 := it.EventTime.Date()
	y2, m2, d2 := day.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// Distance returns the item's distance from origin in kilometres, falling back
// to a trailing "X KM" token in the address.
func Distance(it Item, origin *Point) (float64, bool) {
	if origin != nil {
		if p, ok := it.Coordinates(); ok {
			return Haversine(*origin, p), true
		}
	}
	return ParseDistanceToken(it.Address)
}

func matchDistance(it Item, c Criteria) bool {
	if c.DistanceKM == nil {
		return true
	}
	km, ok := Distance(it, c.Origin)
	if !ok {
		return !c.StrictDistance
	}
	return km <= *c.DistanceKM
}

func matchCity(it Item, city string) bool {
	if city == "" {
		return true
	}
	source := it.City
	if source == "" {
		source = it.Address
	}
	return strings.Contains(strings.ToLower(source), city)
}

func uitoa(v uint) string {
	return strconv.FormatUint(uint64(v), 10)
}
