package models

import "time"

// ActivityKind tags the variant of an activity record
type ActivityKind string

const (
	ActivityReview  ActivityKind = "review"
	ActivityList    ActivityKind = "list"
	ActivityWatched ActivityKind = "watched"
)

// Activity is one entry of the following feed. Implementations are
// ReviewActivity, ListActivity and WatchedActivity; the merger only reads
// the methods below.
type Activity interface {
	Kind() ActivityKind
	ActivityID() string
	Actor() uint
	At() time.Time
}

// ReviewActivity is emitted for a published, approved review
type ReviewActivity struct {
	ID         string    `json:"id"`
	ActorID    uint      `json:"actor_id"`
	Movie      MovieRef  `json:"movie"`
	Excerpt    string    `json:"excerpt"`
	Rating     float64   `json:"rating"`
	OccurredAt time.Time `json:"occurred_at"`
}

func (a ReviewActivity) Kind() ActivityKind { return ActivityReview }
func (a ReviewActivity) ActivityID() string { return a.ID }
func (a ReviewActivity) Actor() uint        { return a.ActorID }
func (a ReviewActivity) At() time.Time      { return a.OccurredAt }

// ListActivity is emitted for a public list
type ListActivity struct {
	ID         string    `json:"id"`
	ActorID    uint      `json:"actor_id"`
	ListID     string    `json:"list_id"`
	Title      string    `json:"title"`
	MovieCount int       `json:"movie_count"`
	OccurredAt time.Time `json:"occurred_at"`
}

func (a ListActivity) Kind() ActivityKind { return ActivityList }
func (a ListActivity) ActivityID() string { return a.ID }
func (a ListActivity) Actor() uint        { return a.ActorID }
func (a ListActivity) At() time.Time      { return a.OccurredAt }

// WatchedActivity is emitted for a watched-movie marker
type WatchedActivity struct {
	ID         string    `json:"id"`
	ActorID    uint      `json:"actor_id"`
	Movie      MovieRef  `json:"movie"`
	Rating     *float64  `json:"rating,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

func (a WatchedActivity) Kind() ActivityKind { return ActivityWatched }
func (a WatchedActivity) ActivityID() string { return a.ID }
func (a WatchedActivity) Actor() uint        { return a.ActorID }
func (a WatchedActivity) At() time.Time      { return a.OccurredAt }

// FeedItem is the rendered form of an activity, tagged with its variant
type FeedItem struct {
	Type     ActivityKind `json:"type"`
	Actor    UserCompact  `json:"actor"`
	Activity Activity     `json:"activity"`
}
