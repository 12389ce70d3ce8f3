package services

import (
	"cmp"
	"slices"

	"github.com/anonto42/cinefeed/backend/internal/models"
)

// MergeActivities flattens the per-source streams and orders them newest
// first. Equal timestamps fall back to activity id, then kind, so the result
// does not depend on the order the streams arrive in. At most limit records
// are returned.
func MergeActivities(streams [][]models.Activity, limit int) []models.Activity {
	if limit <= 0 {
		return []models.Activity{}
	}
	total := 0
	for _, s := range streams {
		total += len(s)
	}
	merged := make([]models.Activity, 0, total)
	for _, s := range streams {
		merged = append(merged, s...)
	}

	slices.SortStableFunc(merged, compareActivities)

	if len(merged) > limit {
		merged = merged[:limit]
	}
	return merged
}

func compareActivities(a, b models.Activity) int {
	if c := b.At().Compare(a.At()); c != 0 {
		return c
	}
	if c := cmp.Compare(a.ActivityID(), b.ActivityID()); c != 0 {
		return c
	}
	return cmp.Compare(a.Kind(), b.Kind())
}
