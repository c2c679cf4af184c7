// Package errs wraps cockroachdb/errors with the small surface the rest
// of the codebase uses: sentinel creation, context wrapping, and marking
// an error with a sentinel so errors.Is matches both chains.
package errs

import (
	"fmt"
	"strings"

	cr "github.com/cockroachdb/errors"
)

// New creates a sentinel with a captured stack.
func New(msg string) error {
	return cr.New(msg)
}

// Wrap adds context while preserving the cause chain. Nil-safe so call
// sites can wrap unconditionally.
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return cr.Wrap(err, msg)
}

// Mark attaches sentinel as a secondary identity: errors.Is(result,
// sentinel) holds without losing the original cause. A nil err collapses
// to the sentinel itself.
func Mark(err, sentinel error) error {
	if err == nil {
		return sentinel
	}
	return cr.Mark(err, sentinel)
}

// ExtractStackLines renders the error with its stack and returns at most
// maxLines lines, for structured log fields.
func ExtractStackLines(err error, maxLines int) []string {
	if err == nil {
		return nil
	}
	lines := strings.Split(fmt.Sprintf("%+v", err), "\n")
	if maxLines > 0 && len(lines) > maxLines {
		lines = lines[:maxLines]
	}
	return lines
}
