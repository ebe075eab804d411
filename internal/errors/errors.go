// Package errors provides centralized error handling for wavecraft with
// component and category metadata for structured logging and grouping.
package errors

import (
	stderrors "errors"
	"fmt"
	"maps"
	"time"
)

// Category represents the type of error for better categorization.
type Category string

const (
	CategoryValidation    Category = "validation"
	CategoryConfiguration Category = "configuration"
	CategoryMetering      Category = "metering"
	CategoryScene         Category = "scene-automation"
	CategoryMIDI          Category = "midi"
	CategoryTimeline      Category = "timeline"
	CategoryState         Category = "state"
	CategoryGeneric       Category = "generic"
)

// Error wraps an error with component, category and contextual metadata.
type Error struct {
	Err       error          // original error
	Component string         // component where the error occurred
	Category  Category       // error category for grouping
	Context   map[string]any // additional context data
	Timestamp time.Time      // when the error occurred
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Err.Error()
}

// Unwrap implements the error unwrapping interface.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches two wrapped errors by category, otherwise defers to the
// wrapped error chain.
func (e *Error) Is(target error) bool {
	var we *Error
	if stderrors.As(target, &we) {
		return e.Category == we.Category
	}
	return stderrors.Is(e.Err, target)
}

// GetContext returns a copy of the context map, never nil.
func (e *Error) GetContext() map[string]any {
	out := make(map[string]any, len(e.Context))
	maps.Copy(out, e.Context)
	return out
}

// Builder assembles an Error fluently.
type Builder struct {
	err       error
	component string
	category  Category
	context   map[string]any
}

// New starts building an enhanced error from an existing error. A nil err
// yields a generic placeholder so the builder is always safe to chain.
func New(err error) *Builder {
	if err == nil {
		err = stderrors.New("unknown error")
	}
	return &Builder{err: err, category: CategoryGeneric}
}

// Newf starts building an enhanced error from a format string.
func Newf(format string, args ...any) *Builder {
	return New(fmt.Errorf(format, args...))
}

// Component records the component the error originated in.
func (b *Builder) Component(component string) *Builder {
	b.component = component
	return b
}

// Category records the error category.
func (b *Builder) Category(category Category) *Builder {
	b.category = category
	return b
}

// Context attaches a key/value pair of contextual data.
func (b *Builder) Context(key string, value any) *Builder {
	if b.context == nil {
		b.context = make(map[string]any)
	}
	b.context[key] = value
	return b
}

// Build finalizes the error.
func (b *Builder) Build() error {
	return &Error{
		Err:       b.err,
		Component: b.component,
		Category:  b.category,
		Context:   b.context,
		Timestamp: time.Now(),
	}
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool {
	return stderrors.As(err, target)
}

// Join wraps the standard library errors.Join.
func Join(errs ...error) error {
	return stderrors.Join(errs...)
}
