package markdown

import (
	"errors"
	"fmt"
)

var (
	// ErrParse matches every *ParseError through errors.Is.
	ErrParse = errors.New("markdown: parse failed")

	ErrFrontmatterUnterminated = errors.New("markdown: frontmatter block is not terminated")
	ErrFrontmatterInvalid      = errors.New("markdown: frontmatter block is invalid")
	ErrFieldType               = errors.New("markdown: frontmatter field has an unsupported type")
	ErrTitleRequired           = errors.New("markdown: title is required")
	ErrDateRequired            = errors.New("markdown: date is required")
	ErrDateInvalid             = errors.New("markdown: date is not a recognised ISO-8601 value")
	ErrRender                  = errors.New("markdown: render failed")
)

// ParseError reports why a content file could not be turned into a document.
// Path is empty when the caller parsed raw text without a source file.
type ParseError struct {
	Slug  string
	Path  string
	Cause error
}

func (e *ParseError) Error() string {
	if e == nil {
		return ErrParse.Error()
	}
	target := e.Slug
	if e.Path != "" {
		target = fmt.Sprintf("%s (%s)", e.Slug, e.Path)
	}
	return fmt.Sprintf("markdown: parse %s: %v", target, e.Cause)
}

func (e *ParseError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// Is lets errors.Is(err, ErrParse) succeed for any ParseError.
func (e *ParseError) Is(target error) bool {
	return target == ErrParse
}

func fieldTypeError(field string, value any) error {
	return fmt.Errorf("%w: %s has type %T", ErrFieldType, field, value)
}
