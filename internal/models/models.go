package models

import (
	"time"
)

const PostKindComment = "comment"

type User struct {
	Nickname    string `json:"nickname"`
	Fullname    string `json:"fullname"`
	About       string `json:"about"`
	Email       string `json:"email"`
	IsModerator bool   `json:"isModerator"`
}

type Thread struct {
	ID              int64     `json:"id"`
	Title           string    `json:"title"`
	Author          string    `json:"author"`
	Forum           string    `json:"forum"`
	Slug            *string   `json:"slug,omitempty"`
	Created         time.Time `json:"created"`
	PostNumberIndex int       `json:"postNumberIndex"`

	CommentCount     int        `json:"commentCount"`
	ParticipantCount int        `json:"participantCount"`
	FirstPostID      *int64     `json:"firstPostId,omitempty"`
	LastPostID       *int64     `json:"lastPostId,omitempty"`
	LastPostNumber   *int       `json:"lastPostNumber,omitempty"`
	LastPostedAt     *time.Time `json:"lastPostedAt,omitempty"`
	LastPostedUser   *string    `json:"lastPostedUser,omitempty"`

	Posts []*Post `json:"posts,omitempty"`
}

type Post struct {
	ID       int64      `json:"id"`
	Thread   int64      `json:"thread"`
	Number   int        `json:"number"`
	Author   string     `json:"author"`
	Message  string     `json:"message"`
	Kind     string     `json:"kind"`
	IsEdited bool       `json:"isEdited"`
	Created  time.Time  `json:"created"`
	HiddenAt *time.Time `json:"hiddenAt,omitempty"`
}

func (p *Post) IsVisibleComment() bool {
	return p.Kind == PostKindComment && p.HiddenAt == nil
}

type NewThread struct {
	Title   string  `json:"title" binding:"required"`
	Author  string  `json:"author" binding:"required"`
	Forum   string  `json:"forum"`
	Slug    *string `json:"slug,omitempty"`
	Message string  `json:"message" binding:"required"`
}

type NewPost struct {
	Author  string `json:"author" binding:"required"`
	Message string `json:"message" binding:"required"`
}

// MergeRequest folds the source threads into the destination. Without Commit
// the result is only computed and returned.
type MergeRequest struct {
	DestinationID int64   `validate:"gt=0"`
	SourceIDs     []int64 `validate:"required,min=1,dive,gt=0"`
	Actor         *User   `validate:"required"`
	Commit        bool
}

type Status struct {
	User   int `json:"user"`
	Thread int `json:"thread"`
	Post   int `json:"post"`
	Merges int `json:"merges"`
}

// MergeEvent is the persisted audit record of a committed merge.
type MergeEvent struct {
	ID            string    `json:"id"`
	Actor         string    `json:"actor"`
	DestinationID int64     `json:"destinationId"`
	Payload       string    `json:"payload"`
	Created       time.Time `json:"created"`
}
