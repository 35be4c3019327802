// Package errcat categorizes user-facing failures so the CLI can map
// them to distinct messages and exit codes.
package errcat

import (
	"errors"
	"fmt"
)

type Category string

const (
	CategoryInvalidInput  Category = "invalid_input"
	CategoryPreview       Category = "preview"
	CategoryAuth          Category = "auth"
	CategoryRateLimit     Category = "rate_limit"
	CategoryRemote        Category = "remote"
	CategoryEmptyArtifact Category = "empty_artifact"
	CategorySave          Category = "save"
)

// CategorizedError pairs an error with the failure category it belongs to.
type CategorizedError struct {
	Category Category
	Err      error
}

func (e CategorizedError) Error() string {
	if e.Err == nil {
		return string(e.Category)
	}
	return e.Err.Error()
}

func (e CategorizedError) Unwrap() error {
	return e.Err
}

// Wrap attaches a category to err. A nil err stays nil.
func Wrap(category Category, err error) error {
	if err == nil {
		return nil
	}
	return CategorizedError{Category: category, Err: err}
}

// New builds a categorized error from a message.
func New(category Category, msg string) error {
	return CategorizedError{Category: category, Err: errors.New(msg)}
}

// Newf builds a categorized error from a format string.
func Newf(category Category, format string, args ...any) error {
	return CategorizedError{Category: category, Err: fmt.Errorf(format, args...)}
}

// CategoryOf returns the category of err, or CategoryRemote when the
// error carries none.
func CategoryOf(err error) Category {
	var ce CategorizedError
	if errors.As(err, &ce) {
		return ce.Category
	}
	return CategoryRemote
}

// Is reports whether err carries the given category.
func Is(err error, category Category) bool {
	var ce CategorizedError
	return errors.As(err, &ce) && ce.Category == category
}

// ExitCode maps an error to the process exit code for that failure class.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	switch CategoryOf(err) {
	case CategoryInvalidInput:
		return 2
	case CategoryAuth:
		return 3
	case CategoryRateLimit:
		return 4
	case CategoryPreview, CategoryRemote:
		return 5
	case CategoryEmptyArtifact:
		return 6
	case CategorySave:
		return 7
	default:
		return 1
	}
}
