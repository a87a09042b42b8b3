package textcodec

import (
	"fmt"

	"dcpkit/internal/services"
)

// SizeError reports a destination buffer that cannot hold the decoded or
// encoded output. Required is the exact number of bytes needed.
type SizeError struct {
	Op       string
	Required int
	Have     int
}

func (e *SizeError) Error() string {
	return fmt.Sprintf("%s: destination holds %d bytes, need %d", e.Op, e.Have, e.Required)
}

// Unwrap classifies size failures as encoding errors.
func (e *SizeError) Unwrap() error {
	return services.ErrEncoding
}
