package model

import (
	"fmt"
	"time"
)

// Status controls who can see and act on an entry.
type Status string

const (
	StatusPublic  Status = "public"
	StatusPrivate Status = "private"
)

func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPublic, StatusPrivate:
		return Status(s), nil
	}
	return "", fmt.Errorf("invalid status %q", s)
}

func (s Status) IsValid() bool {
	return s == StatusPublic || s == StatusPrivate
}

// Diary is a stored entry.
type Diary struct {
	ID        int64
	UserID    int64
	Message   string
	Status    Status
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Comment on a diary entry.
type Comment struct {
	ID        int64
	DiaryID   int64
	UserID    int64
	Comment   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// DiaryView is an entry with its owner name and the aggregates computed
// relative to one viewer at read time. The aggregates are never stored.
type DiaryView struct {
	Diary
	OwnerName     string
	LikesCount    int64
	CommentsCount int64
	IsLiked       bool
}

// CommentView is a comment with its author's display name.
type CommentView struct {
	Comment
	AuthorName string
}
