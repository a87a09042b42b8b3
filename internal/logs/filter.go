package logs

import (
	"encoding/json"
	"strings"

	"dcpkit/internal/logging"
)

var levelRank = map[string]int{"debug": 0, "info": 1, "warn": 2, "error": 3}

// Filter selects JSON log records. Zero fields match everything.
type Filter struct {
	RunID     string
	Component string
	// MinLevel is one of debug, info, warn, error.
	MinLevel string
}

// Empty reports whether the filter matches every line.
func (f Filter) Empty() bool {
	return f.RunID == "" && f.Component == "" && f.MinLevel == ""
}

// Match reports whether line passes the filter.
func (f Filter) Match(line string) bool {
	if f.Empty() {
		return true
	}
	var record map[string]any
	if err := json.Unmarshal([]byte(line), &record); err != nil {
		return false
	}
	if f.RunID != "" && field(record, logging.FieldRunID) != f.RunID {
		return false
	}
	if f.Component != "" && field(record, logging.FieldComponent) != f.Component {
		return false
	}
	if f.MinLevel != "" {
		want, ok := levelRank[strings.ToLower(f.MinLevel)]
		got, known := levelRank[strings.ToLower(field(record, "level"))]
		if ok && (!known || got < want) {
			return false
		}
	}
	return true
}

func field(record map[string]any, key string) string {
	value, ok := record[key].(string)
	if !ok {
		return ""
	}
	return value
}
