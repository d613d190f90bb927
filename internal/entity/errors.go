package entity

import "errors"

var (
	// ErrNotFound means the record does not exist at all.
	ErrNotFound = errors.New("not found")
	// ErrForbidden means the record exists but belongs to another owner.
	ErrForbidden = errors.New("forbidden")
	// ErrNotEditable means the post has reached a terminal status.
	ErrNotEditable = errors.New("post is no longer editable")
)
