package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/anonto42/cinefeed/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func review(id string, minutesAgo int) models.Activity {
	return models.ReviewActivity{ID: id, ActorID: 1, OccurredAt: base.Add(-time.Duration(minutesAgo) * time.Minute)}
}

func list(id string, minutesAgo int) models.Activity {
	return models.ListActivity{ID: id, ActorID: 2, OccurredAt: base.Add(-time.Duration(minutesAgo) * time.Minute)}
}

func watched(id string, minutesAgo int) models.Activity {
	return models.WatchedActivity{ID: id, ActorID: 3, OccurredAt: base.Add(-time.Duration(minutesAgo) * time.Minute)}
}

func ids(acts []models.Activity) []string {
	out := make([]string, len(acts))
	for i, a := range acts {
		out[i] = string(a.Kind()) + ":" + a.ActivityID()
	}
	return out
}

func TestMergeActivities_NewestFirst(t *testing.T) {
	got := MergeActivities([][]models.Activity{
		{review("r1", 1), review("r2", 30)},
		{list("l1", 5)},
		{watched("w1", 0), watched("w2", 60)},
	}, 20)

	assert.Equal(t, []string{"watched:w1", "review:r1", "list:l1", "review:r2", "watched:w2"}, ids(got))
}

func TestMergeActivities_TieBreakIsIndependentOfStreamOrder(t *testing.T) {
	a := []models.Activity{review("b", 10), review("a", 10)}
	b := []models.Activity{list("c", 10), list("a", 10)}
	c := []models.Activity{watched("a", 10)}

	first := MergeActivities([][]models.Activity{a, b, c}, 20)
	second := MergeActivities([][]models.Activity{c, b, a}, 20)
	third := MergeActivities([][]models.Activity{b, c, a}, 20)

	assert.Equal(t, ids(first), ids(second))
	assert.Equal(t, ids(first), ids(third))
	assert.Equal(t, []string{"list:a", "review:a", "watched:a", "review:b", "list:c"}, ids(first))
}

func TestMergeActivities_Limit(t *testing.T) {
	var streams [][]models.Activity
	for s := 0; s < 3; s++ {
		var stream []models.Activity
		for i := 0; i < 10; i++ {
			stream = append(stream, review(fmt.Sprintf("s%d-%02d", s, i), s+i*3))
		}
		streams = append(streams, stream)
	}

	got := MergeActivities(streams, 20)
	require.Len(t, got, 20)
	for i := 1; i < len(got); i++ {
		assert.False(t, got[i].At().After(got[i-1].At()), "item %d is newer than item %d", i, i-1)
	}
}

func TestMergeActivities_Empty(t *testing.T) {
	assert.Empty(t, MergeActivities(nil, 20))
	assert.Empty(t, MergeActivities([][]models.Activity{nil, {}}, 20))
	assert.Empty(t, MergeActivities([][]models.Activity{{review("r", 1)}}, 0))
}
