package services

import (
	"errors"
	"fmt"
	"strings"
)

// Error markers form the closed set of failure kinds surfaced by the core.
// Classify with errors.Is; never compare message strings.
var (
	ErrValidation     = errors.New("validation error")
	ErrFormatMismatch = errors.New("format mismatch")
	ErrConversion     = errors.New("conversion error")
	ErrEncoding       = errors.New("encoding error")
	ErrAllocation     = errors.New("allocation error")
	ErrConfiguration  = errors.New("configuration error")
	ErrExternalTool   = errors.New("external tool error")
)

// Wrap builds an error message that includes component context while tagging
// it with the provided marker for later classification. The marker should be
// one of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrConversion
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Kind returns a short label for the marker carried by err, suitable for
// structured logs and the run journal. Conversion outranks the tool and
// encoding markers it usually wraps. Unclassified errors report "unknown".
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrFormatMismatch):
		return "format_mismatch"
	case errors.Is(err, ErrAllocation):
		return "allocation"
	case errors.Is(err, ErrConversion):
		return "conversion"
	case errors.Is(err, ErrEncoding):
		return "encoding"
	case errors.Is(err, ErrConfiguration):
		return "configuration"
	case errors.Is(err, ErrExternalTool):
		return "external_tool"
	default:
		return "unknown"
	}
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "core failure"
	}
	return strings.Join(parts, ": ")
}
