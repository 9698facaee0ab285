package section

import (
	"errors"
	"fmt"
)

var (
	// ErrFormat marks a record that is missing a required field or holds
	// one of the wrong shape. The section is unusable.
	ErrFormat = errors.New("malformed section record")

	// ErrUnsupported marks an operation the section's format does not
	// allow, such as editing a single cell of a legacy section.
	ErrUnsupported = errors.New("unsupported section operation")

	// ErrInvariant marks an internal inconsistency: a word array of the
	// wrong length or a state outside the format's domain.
	ErrInvariant = errors.New("section invariant violated")
)

func formatError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrFormat, fmt.Sprintf(format, args...))
}

func wrapFormat(what string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrFormat, what, err)
}

func invariantError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvariant, fmt.Sprintf(format, args...))
}
