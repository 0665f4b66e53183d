package models

import "time"

type ThreadAggregates struct {
	CommentCount     int
	ParticipantCount int
	FirstPostID      *int64
	LastPostID       *int64
	LastPostNumber   *int
	LastPostedAt     *time.Time
	LastPostedUser   *string
}

// ComputeAggregates derives the thread summary fields from a post collection
// that is already ordered by number. Only visible comments count towards the
// comment and participant totals and the last post; the first post is simply
// the earliest one.
func ComputeAggregates(posts []*Post) ThreadAggregates {
	var agg ThreadAggregates
	if len(posts) == 0 {
		return agg
	}

	firstID := posts[0].ID
	agg.FirstPostID = &firstID

	participants := make(map[string]struct{})
	var last *Post
	for _, p := range posts {
		if !p.IsVisibleComment() {
			continue
		}
		agg.CommentCount++
		participants[p.Author] = struct{}{}
		last = p
	}
	agg.ParticipantCount = len(participants)

	if last != nil {
		id, number, created, author := last.ID, last.Number, last.Created, last.Author
		agg.LastPostID = &id
		agg.LastPostNumber = &number
		agg.LastPostedAt = &created
		agg.LastPostedUser = &author
	}
	return agg
}

func (t *Thread) ApplyAggregates(agg ThreadAggregates) {
	t.CommentCount = agg.CommentCount
	t.ParticipantCount = agg.ParticipantCount
	t.FirstPostID = agg.FirstPostID
	t.LastPostID = agg.LastPostID
	t.LastPostNumber = agg.LastPostNumber
	t.LastPostedAt = agg.LastPostedAt
	t.LastPostedUser = agg.LastPostedUser
}
