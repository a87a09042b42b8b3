package sequence

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"

	"dcpkit/internal/services"
)

// Entry pairs one input file with the output path it converts to.
type Entry struct {
	Input  string
	Output string
}

// FileList is the ordered set of inputs a run processes. Entries are
// addressed by 1-based frame index through Frame.
type FileList struct {
	Kind    Kind
	Entries []Entry
}

// Len reports the number of entries.
func (l *FileList) Len() int {
	if l == nil {
		return 0
	}
	return len(l.Entries)
}

// Frame returns the entry for the 1-based frame index.
func (l *FileList) Frame(index int) (Entry, bool) {
	if l == nil || index < 1 || index > len(l.Entries) {
		return Entry{}, false
	}
	return l.Entries[index-1], true
}

// Inputs returns the input paths in order.
func (l *FileList) Inputs() []string {
	if l == nil {
		return nil
	}
	paths := make([]string, len(l.Entries))
	for i, entry := range l.Entries {
		paths[i] = entry.Input
	}
	return paths
}

// Append adds an entry, rejecting empty paths.
func (l *FileList) Append(input, output string) error {
	if strings.TrimSpace(input) == "" || strings.TrimSpace(output) == "" {
		return services.Wrap(services.ErrValidation, "sequence", "append", "input and output paths must be non-empty", nil)
	}
	l.Entries = append(l.Entries, Entry{Input: input, Output: output})
	return nil
}

// BuildFileList expands input into an ordered FileList. A single input file
// maps to output verbatim; a directory maps every matching file to
// output/<stem><kind.OutputExtension>.
func BuildFileList(input, output string, kind Kind) (*FileList, error) {
	input = strings.TrimSpace(input)
	output = strings.TrimSpace(output)
	if input == "" || output == "" {
		return nil, services.Wrap(services.ErrValidation, "sequence", "build file list", "input and output paths are required", nil)
	}

	info, err := os.Stat(input)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "sequence", "build file list", fmt.Sprintf("stat input %s", input), err)
	}
	outInfo, outErr := os.Stat(output)
	if outErr != nil && !errors.Is(outErr, fs.ErrNotExist) {
		return nil, services.Wrap(services.ErrValidation, "sequence", "build file list", fmt.Sprintf("stat output %s", output), outErr)
	}
	outputExists := outErr == nil

	list := &FileList{Kind: kind}
	if !info.IsDir() {
		if outputExists && outInfo.IsDir() {
			return nil, services.Wrap(services.ErrValidation, "sequence", "build file list",
				fmt.Sprintf("input %s is a file but output %s is a directory", input, output), nil)
		}
		if !kind.Matches(input) {
			return nil, services.Wrap(services.ErrValidation, "sequence", "build file list",
				fmt.Sprintf("%s is not a %s file (%s)", input, kind.Name, strings.Join(kind.Extensions, ", ")), nil)
		}
		if err := list.Append(input, output); err != nil {
			return nil, err
		}
		return list, nil
	}

	if outputExists && !outInfo.IsDir() {
		return nil, services.Wrap(services.ErrValidation, "sequence", "build file list",
			fmt.Sprintf("input %s is a directory but output %s is a file", input, output), nil)
	}
	paths, err := List(input, kind)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, services.Wrap(services.ErrValidation, "sequence", "build file list",
			fmt.Sprintf("no %s files found in %s", kind.Name, input), nil)
	}
	list.Entries = make([]Entry, 0, len(paths))
	for _, path := range paths {
		if err := list.Append(path, kind.OutputPath(path, output)); err != nil {
			return nil, err
		}
	}
	return list, nil
}

// List returns the files in dir matching kind, sorted lexically. The listing
// is not recursive.
func List(dir string, kind Kind) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "sequence", "list", fmt.Sprintf("read directory %s", dir), err)
	}
	paths := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		if kind.Matches(entry.Name()) {
			paths = append(paths, filepath.Join(dir, entry.Name()))
		}
	}
	SortPaths(paths)
	return paths, nil
}

// SortPaths orders paths lexically by NFC-normalized base name.
func SortPaths(paths []string) {
	type keyed struct {
		key  string
		path string
	}
	items := make([]keyed, len(paths))
	for i, path := range paths {
		items[i] = keyed{key: norm.NFC.String(filepath.Base(path)), path: path}
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].key < items[j].key
	})
	for i, item := range items {
		paths[i] = item.path
	}
}
