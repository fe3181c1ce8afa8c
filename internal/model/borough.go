// Package model defines the typed records and tables flowing through the
// incident pipeline.
package model

import (
	"regexp"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/text/unicode/norm"
)

// Borough identifies one of the five NYC boroughs. Values are the
// canonical uppercase names used as join keys throughout the pipeline.
type Borough string

const (
	Bronx        Borough = "BRONX"
	Brooklyn     Borough = "BROOKLYN"
	Manhattan    Borough = "MANHATTAN"
	Queens       Borough = "QUEENS"
	StatenIsland Borough = "STATEN ISLAND"
)

// ReferenceBorough is held out as the intercept category in the occurrence
// model so coefficient signs stay interpretable across runs.
const ReferenceBorough = Bronx

var multiSpace = regexp.MustCompile(`\s{2,}`)

// AllBoroughs returns the boroughs in canonical order. The order is fixed:
// aggregate tables, one-hot encodings, and test fixtures all depend on it.
func AllBoroughs() []Borough {
	return []Borough{Bronx, Brooklyn, Manhattan, Queens, StatenIsland}
}

// BoroughKey canonicalizes a borough name for joining: NFKC normalization,
// uppercase, inner whitespace collapsed, trimmed. All three source tables
// (incidents, polygons, population) route through this before matching.
func BoroughKey(name string) string {
	n := norm.NFKC.String(name)
	n = strings.ToUpper(strings.TrimSpace(n))
	n = multiSpace.ReplaceAllString(n, " ")
	return n
}

// ParseBorough maps a raw borough label to its canonical value.
func ParseBorough(name string) (Borough, error) {
	switch key := BoroughKey(name); key {
	case string(Bronx), "THE BRONX":
		return Bronx, nil
	case string(Brooklyn):
		return Brooklyn, nil
	case string(Manhattan):
		return Manhattan, nil
	case string(Queens):
		return Queens, nil
	case string(StatenIsland):
		return StatenIsland, nil
	default:
		return "", eris.Errorf("model: unknown borough %q", name)
	}
}

// Key returns the canonical join key for the borough.
func (b Borough) Key() string {
	return string(b)
}

func (b Borough) String() string {
	return string(b)
}
