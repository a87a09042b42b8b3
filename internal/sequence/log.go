package sequence

import (
	"log/slog"

	"dcpkit/internal/logging"
)

// LogWarnings emits one warning per failed advisory check.
func (r Report) LogWarnings(logger *slog.Logger, kind Kind) {
	if logger == nil {
		return
	}
	if r.Gap {
		logging.WarnWithContext(logger, "input sequence is not continuous", "sequence_gap",
			logging.String("kind", kind.Name),
			logging.Int("index", r.GapIndex),
			logging.String("previous", r.GapBefore),
			logging.String("file", r.GapAt),
			logging.String(logging.FieldErrorHint, "check for missing or misnamed frames"),
			logging.String(logging.FieldImpact, "output will skip or reorder frames"),
		)
	}
	if !r.Uniform {
		logging.WarnWithContext(logger, "input file names differ in length", "sequence_name_length",
			logging.String("kind", kind.Name),
			logging.Int("count", r.Count),
			logging.String(logging.FieldErrorHint, "zero-pad frame numbers to a fixed width"),
			logging.String(logging.FieldImpact, "lexical order may not match frame order"),
		)
	}
}
