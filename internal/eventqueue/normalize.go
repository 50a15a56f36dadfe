package eventqueue

import (
	"strings"

	"adminhub/internal/models"
)

// Normalized category vocabulary.
const (
	CategoryIncident = models.PostTypeIncident
	CategoryRescue   = models.PostTypeRescue
	CategoryGeneral  = models.PostTypeGeneral
)

// FilterAll disables a status or category filter.
const FilterAll = "all"

var categorySignals = []string{CategoryIncident, CategoryRescue, CategoryGeneral}

// NormalizeCategory maps free-form category and post-type values onto the
// queue vocabulary. The category name wins over the post type; a category
// with no known signal is kept lowered as-is.
func NormalizeCategory(category, postType string) string {
	category = strings.ToLower(strings.TrimSpace(category))
	postType = strings.ToLower(strings.TrimSpace(postType))

	for _, value := range []string{category, postType} {
		for _, signal := range categorySignals {
			if strings.Contains(value, signal) {
				return signal
			}
		}
	}
	if category != "" {
		return category
	}
	return CategoryGeneral
}

// MatchCategory compares an item category against a filter value using a
// case-insensitive substring match, so "resc" matches "rescue".
func MatchCategory(itemCategory, filter string) bool {
	filter = strings.ToLower(strings.TrimSpace(filter))
	if filter == "" || filter == FilterAll {
		return true
	}
	return strings.Contains(strings.ToLower(itemCategory), filter)
}

// NormalizeStatus maps case variants of a moderation status onto the
// canonical values. Unknown values are returned trimmed.
func NormalizeStatus(s string) string {
	trimmed := strings.TrimSpace(s)
	switch strings.ToLower(trimmed) {
	case "pending", "":
		return string(models.EventStatusPending)
	case "approved":
		return string(models.EventStatusApproved)
	case "rejected":
		return string(models.EventStatusRejected)
	}
	return trimmed
}
