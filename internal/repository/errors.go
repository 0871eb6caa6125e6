package repository

import (
	"errors"

	"gorm.io/gorm"
)

var (
	// ErrPostNotFound is returned when a post does not exist or was soft-deleted.
	ErrPostNotFound = errors.New("post not found")
	// ErrCommentNotFound is returned when a comment does not exist.
	ErrCommentNotFound = errors.New("comment not found")
	// ErrAlreadyReported is returned when the reporter already reported the target within the cooldown.
	ErrAlreadyReported = errors.New("target already reported by this reporter")

	errAlreadyViewed = errors.New("already viewed")
)

func notFound(err, sentinel error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return err
}
