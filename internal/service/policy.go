package service

import "threadmerge/internal/models"

type MergePolicy interface {
	CanMerge(actor *models.User, thread *models.Thread) bool
}

// ModeratorPolicy lets moderators merge any thread. With AllowAuthors set the
// author of the destination thread may merge into it as well.
type ModeratorPolicy struct {
	AllowAuthors bool
}

func (p ModeratorPolicy) CanMerge(actor *models.User, thread *models.Thread) bool {
	if actor == nil || thread == nil {
		return false
	}
	if actor.IsModerator {
		return true
	}
	return p.AllowAuthors && actor.Nickname != "" && actor.Nickname == thread.Author
}
