package services

import (
	"errors"
	"fmt"
	"strings"
)

// Classification markers for pipeline errors. Wrap tags errors with one of
// these so callers can branch on failure class instead of message text.
var (
	ErrValidation    = errors.New("invalid input")
	ErrConfiguration = errors.New("bad configuration")
	ErrNotFound      = errors.New("missing resource")
	ErrTimeout       = errors.New("timed out")
	ErrTransient     = errors.New("transient failure")
)

// Wrap builds an error message that includes component context while tagging
// it with the provided marker for later classification. The marker should be
// one of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	if marker == nil {
		marker = ErrTransient
	}
	text := detail(component, operation, message)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, text, err)
	}
	return fmt.Errorf("%w: %s", marker, text)
}

// IsFatal reports whether an error stems from configuration or input
// rather than runtime conditions. Such failures abort instead of being
// retried; everything else is handled inside the running loops.
func IsFatal(err error) bool {
	return errors.Is(err, ErrConfiguration) || errors.Is(err, ErrValidation)
}

func detail(component, operation, message string) string {
	var parts []string
	for _, part := range []string{component, operation, message} {
		if part = strings.TrimSpace(part); part != "" {
			parts = append(parts, part)
		}
	}
	if len(parts) == 0 {
		return "pipeline failure"
	}
	return strings.Join(parts, ": ")
}
