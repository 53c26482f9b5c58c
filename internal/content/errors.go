package content

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound        = errors.New("content: not found")
	ErrUnknownCategory = errors.New("content: unknown category")
	ErrDuplicateSlug   = errors.New("content: duplicate slug")
	ErrSourceRequired  = errors.New("content: file source is required")
)

// NotFoundError reports a slug lookup miss in the error-returning APIs.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s %q not found", e.Resource, e.Key)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// DuplicateSlugError is recorded for an entry whose slug was already taken by
// an earlier entry of the same category.
type DuplicateSlugError struct {
	Slug         string
	Path         string
	ExistingPath string
}

func (e *DuplicateSlugError) Error() string {
	return fmt.Sprintf("%s: %q from %s already loaded from %s", ErrDuplicateSlug, e.Slug, e.Path, e.ExistingPath)
}

func (e *DuplicateSlugError) Unwrap() error { return ErrDuplicateSlug }

func unknownCategory(category string) error {
	return fmt.Errorf("%w: %q", ErrUnknownCategory, category)
}
