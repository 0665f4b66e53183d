package models

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the request shape and normalises the source list: duplicates
// are dropped keeping the first occurrence, and the destination may not be
// merged into itself.
func (r *MergeRequest) Validate() error {
	if err := validate.Struct(r); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidMergeRequest, err)
	}

	seen := make(map[int64]struct{}, len(r.SourceIDs))
	ids := make([]int64, 0, len(r.SourceIDs))
	for _, id := range r.SourceIDs {
		if id == r.DestinationID {
			return fmt.Errorf("%w: thread %d cannot be merged into itself", ErrInvalidMergeRequest, id)
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	r.SourceIDs = ids
	return nil
}
