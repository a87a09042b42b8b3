package preflight

import (
	"fmt"
	"strings"

	"dcpkit/internal/config"
	"dcpkit/internal/deps"
	"dcpkit/internal/encoder"
	"dcpkit/internal/services"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunConversion checks the encoder binary and the output directory for an
// image conversion run.
func RunConversion(cfg *config.Config, outputDir string) []Result {
	if cfg == nil {
		return nil
	}
	var results []Result
	for _, status := range deps.CheckBinaries(encoder.Requirements(cfg)) {
		result := Result{Name: status.Name, Passed: status.Available, Detail: status.Detail}
		if status.Available {
			result.Detail = status.Path
		}
		results = append(results, result)
	}
	results = append(results, CheckDirectoryAccess("Output directory", outputDir))
	return results
}

// Failed converts failed results into a single error, or nil.
func Failed(results []Result) error {
	var failed []string
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, fmt.Sprintf("%s: %s", r.Name, r.Detail))
		}
	}
	if len(failed) == 0 {
		return nil
	}
	return services.Wrap(services.ErrExternalTool, "preflight", "check", strings.Join(failed, "; "), nil)
}
