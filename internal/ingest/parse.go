// Package ingest converts raw source rows into the typed records of the
// pipeline. Row-level parse failures null the offending field and are
// counted; table-level failures abort the load.
package ingest

import (
	"strconv"
	"strings"
)

// normalizeCol lowercases and strips spaces/underscores for cross-source
// column matching. "OCCUR_DATE" → "occurdate", "Boro Name" → "boroname".
func normalizeCol(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, "_", "")
	s = strings.ReplaceAll(s, " ", "")
	return s
}

// mapColumnsNormalized builds a normalized column name → index map.
func mapColumnsNormalized(header []string) map[string]int {
	m := make(map[string]int, len(header))
	for i, col := range header {
		m[normalizeCol(col)] = i
	}
	return m
}

// getCol gets a column value by any of the given normalized aliases.
func getCol(record []string, colIdx map[string]int, aliases ...string) string {
	for _, name := range aliases {
		if idx, ok := colIdx[normalizeCol(name)]; ok && idx < len(record) {
			return record[idx]
		}
	}
	return ""
}

// parseFloatPtr parses a string as a float64, returning nil when the field
// is empty or malformed.
func parseFloatPtr(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

// parseInt64Or parses a string as an int64, stripping thousands separators,
// returning def if parsing fails.
func parseInt64Or(s string, def int64) int64 {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" {
		return def
	}
	// Population columns exported from spreadsheets often carry a decimal.
	if i := strings.IndexByte(s, '.'); i >= 0 {
		s = s[:i]
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return def
	}
	return v
}
