// Package renumber assigns per-thread post numbers during a thread merge.
//
// A merge happens in two steps. ReserveHeadroom first moves the destination's
// posts above every number the final numbering can use, so old and new numbers
// never meet on the (thread_id, number) unique key while rows are rewritten.
// CompactRenumber then produces the final dense 1..K sequence ordered by
// creation time.
package renumber

import (
	"errors"
	"fmt"
	"sort"

	"threadmerge/internal/models"
)

// HeadroomSlack is added on top of the incoming post count when reserving room.
const HeadroomSlack = 100

var (
	ErrDuplicateNumber = errors.New("duplicate post number")
	ErrSparseNumbering = errors.New("post numbers are not contiguous")
)

// ReserveHeadroom renumbers the thread's posts, in their current order, to
// start right after max(number) + HeadroomSlack + incoming. It returns the new
// PostNumberIndex.
func ReserveHeadroom(thread *models.Thread, incoming int) (int, error) {
	if len(thread.Posts) == 0 {
		return 0, models.ErrEmptyDestination
	}
	if incoming < 0 {
		return 0, fmt.Errorf("negative incoming post count %d", incoming)
	}

	highest := thread.Posts[0].Number
	for _, p := range thread.Posts[1:] {
		if p.Number > highest {
			highest = p.Number
		}
	}

	number := highest + HeadroomSlack + incoming
	for _, p := range thread.Posts {
		number++
		p.Number = number
	}
	thread.PostNumberIndex = number
	return number, nil
}

// CompactRenumber orders posts by creation time and numbers them 1..K under the
// thread. Posts created at the same instant keep their relative input order.
// The thread's post collection and index are replaced with the result.
func CompactRenumber(thread *models.Thread, posts []*models.Post) []*models.Post {
	sorted := make([]*models.Post, len(posts))
	copy(sorted, posts)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Created.Before(sorted[j].Created)
	})

	for i, p := range sorted {
		p.Number = i + 1
		p.Thread = thread.ID
	}

	thread.Posts = sorted
	thread.PostNumberIndex = len(sorted)
	return sorted
}

// Validate reports whether posts are numbered 1..len(posts) without repeats,
// in any slice order.
func Validate(posts []*models.Post) error {
	seen := make(map[int]int64, len(posts))
	for _, p := range posts {
		if other, dup := seen[p.Number]; dup {
			return fmt.Errorf("%w: %d used by posts %d and %d", ErrDuplicateNumber, p.Number, other, p.ID)
		}
		seen[p.Number] = p.ID
	}
	for n := 1; n <= len(posts); n++ {
		if _, ok := seen[n]; !ok {
			return fmt.Errorf("%w: %d is missing", ErrSparseNumbering, n)
		}
	}
	return nil
}
