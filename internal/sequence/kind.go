package sequence

import (
	"path/filepath"
	"strings"
)

// Kind describes one class of input files: which extensions belong to it and
// which extension derived output paths receive.
type Kind struct {
	Name            string
	Extensions      []string
	OutputExtension string
}

// Presets for the input kinds the pipeline understands. Callers may build
// their own Kind (for example from configuration) instead.
var (
	Image = Kind{
		Name:            "image",
		Extensions:      []string{".tif", ".tiff", ".dpx", ".bmp"},
		OutputExtension: ".j2c",
	}
	Codestream = Kind{
		Name:            "codestream",
		Extensions:      []string{".j2c", ".j2k"},
		OutputExtension: ".mxf",
	}
	Audio = Kind{
		Name:            "audio",
		Extensions:      []string{".wav"},
		OutputExtension: ".pcm",
	}
)

// WithExtensions returns a copy of k matching the given extensions. Entries
// are lower-cased and given a leading dot; an empty list keeps k's set.
func (k Kind) WithExtensions(exts []string) Kind {
	normalized := make([]string, 0, len(exts))
	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		normalized = append(normalized, ext)
	}
	if len(normalized) == 0 {
		return k
	}
	k.Extensions = normalized
	return k
}

// Matches reports whether path carries one of the kind's extensions.
func (k Kind) Matches(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == "" {
		return false
	}
	for _, candidate := range k.Extensions {
		if ext == strings.ToLower(candidate) {
			return true
		}
	}
	return false
}

// OutputPath derives the output file for input inside outputDir.
func (k Kind) OutputPath(input, outputDir string) string {
	base := filepath.Base(input)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(outputDir, stem+k.OutputExtension)
}

// KindByName resolves one of the presets by name.
func KindByName(name string) (Kind, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case Image.Name, "j2k", "tiff":
		return Image, true
	case Codestream.Name, "j2c", "mxf":
		return Codestream, true
	case Audio.Name, "wav":
		return Audio, true
	default:
		return Kind{}, false
	}
}
