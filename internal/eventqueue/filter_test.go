package eventqueue

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func ids(items []Item) []uint {
	out := make([]uint, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}

func TestApply_StatusAndCategory(t *testing.T) {
	items := []Item{
		{ID: 1, Status: "Approved", Category: "rescue"},
		{ID: 2, Status: "Approved", Category: "incident"},
		{ID: 3, Status: "Pending", Category: "rescue"},
		{ID: 4, Status: "Rejected", Category: "general"},
	}

	got := Apply(items, Criteria{Status: "Approved", Category: "rescue"})
	require.Len(t, got, 1)
	assert.Equal(t, uint(1), got[0].ID)

	assert.Len(t, Apply(items, Criteria{Status: "all", Category: "all"}), 4)
}

func TestApply_CategoryMatchesName(t *testing.T) {
	items := []Item{
		{ID: 1, Category: "incident", CategoryName: "Flood Watch", PostType: "incident"},
		{ID: 2, Category: "incident", PostType: "incident"},
		{ID: 3, Category: "rescue", CategoryName: "Boat Rescue"},
	}

	assert.Equal(t, []uint{1}, ids(Apply(items, Criteria{Category: "flood"})))
	assert.Equal(t, []uint{1, 2}, ids(Apply(items, Criteria{Category: "INCIDENT"})))
	assert.Equal(t, []uint{3}, ids(Apply(items, Criteria{Category: "boat rescue"})))
	assert.Empty(t, Apply(items, Criteria{Category: "wildfire"}))
}

func TestApply_Distance(t *testing.T) {
	items := []Item{
		{ID: 1, Latitude: ptr(1.0), Longitude: ptr(1.0)},
		{ID: 2, Latitude: ptr(0.01), Longitude: ptr(0.01)},
		{ID: 3},
		{ID: 4, Address: "Harbour Road 2 KM"},
		{ID: 5, Address: "Ring Road 9 KM"},
	}
	c := Criteria{DistanceKM: ptr(5.0), Origin: &Point{0, 0}}

	assert.ElementsMatch(t, []uint{2, 3, 4}, ids(Apply(items, c)))

	c.StrictDistance = true
	assert.ElementsMatch(t, []uint{2, 4}, ids(Apply(items, c)))
}

func TestApply_SearchDateCity(t *testing.T) {
	day := time.Date(2026, 5, 4, 0, 0, 0, 0, time.UTC)
	items := []Item{
		{ID: 1, Title: "Tree down", UserName: "Ana", City: "Springfield", EventTime: day.Add(9 * time.Hour)},
		{ID: 2, Description: "fallen TREE on road", City: "Shelbyville", EventTime: day.Add(30 * time.Hour)},
		{ID: 3, Title: "Fire", UserName: "tree_lover", Address: "12 Elm St, Springfield", EventTime: day.Add(2 * time.Hour)},
	}

	assert.Equal(t, []uint{2, 1, 3}, ids(Apply(items, Criteria{Search: "tree"})))
	assert.Equal(t, []uint{1, 3}, ids(Apply(items, Criteria{Date: &day})))
	assert.Equal(t, []uint{1, 3}, ids(Apply(items, Criteria{City: "spring"})))
	assert.Equal(t, []uint{1}, ids(Apply(items, Criteria{City: "spring", Search: "ana"})))
}

func TestApply_SortIsStableDescending(t *testing.T) {
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	items := []Item{
		{ID: 1, EventTime: t0},
		{ID: 2, EventTime: t0.Add(time.Hour)},
		{ID: 3, EventTime: t0},
		{ID: 4, EventTime: t0.Add(time.Hour)},
	}
	assert.Equal(t, []uint{2, 4, 1, 3}, ids(Apply(items, Criteria{})))
}

func TestApply_DoesNotMutateInput(t *testing.T) {
	t0 := time.Now()
	items := []Item{{ID: 1, EventTime: t0}, {ID: 2, EventTime: t0.Add(time.Minute)}}
	_ = Apply(items, Criteria{})
	assert.Equal(t, []uint{1, 2}, ids(items))
}
