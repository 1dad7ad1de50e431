package dataset

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/pivolan/go_utils"
)

var (
	ErrColumnNotFound = errors.New("column not found")
	ErrEmptyFile      = errors.New("file has no rows")
)

type Kind int

const (
	Numeric Kind = iota
	Categorical
)

func (k Kind) String() string {
	switch k {
	case Numeric:
		return "numeric"
	case Categorical:
		return "categorical"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

type Field struct {
	Name string
	Kind Kind
}

// Schema lists the columns a file must provide. Columns not listed are kept with an inferred kind.
type Schema []Field

// NewSchema declares one categorical column followed by numeric columns.
func NewSchema(categorical string, numeric ...string) Schema {
	s := Schema{{Name: categorical, Kind: Categorical}}
	for _, name := range numeric {
		s = append(s, Field{Name: name, Kind: Numeric})
	}
	return s
}

func (s Schema) lookup(name string) (Field, bool) {
	for _, f := range s {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// SchemaError reports a declared column that is absent or holds the wrong kind of data.
type SchemaError struct {
	Column  string
	Want    Kind
	Missing bool
	Row     int    // 1-based data row of the offending value, 0 when not row specific
	Value   string // offending token
}

func (e *SchemaError) Error() string {
	if e.Missing {
		return fmt.Sprintf("schema: column %q not found", e.Column)
	}
	if e.Row > 0 {
		return fmt.Sprintf("schema: column %q wants %s data, row %d has %q", e.Column, e.Want, e.Row, e.Value)
	}
	return fmt.Sprintf("schema: column %q is not %s", e.Column, e.Want)
}

func (e *SchemaError) Unwrap() error {
	if e.Missing {
		return ErrColumnNotFound
	}
	return nil
}

var missingTokens = []string{"", "NA", "N/A", "n/a", "NaN", "nan", "-nan", "-NaN", "null", "NULL", "None", "#N/A", "<NA>"}

// IsMissing reports whether a raw cell counts as a missing value.
func IsMissing(raw string) bool {
	return go_utils.InArray(strings.TrimSpace(raw), missingTokens)
}

// parseNumeric converts a cell; ok is false for tokens that are neither numbers nor missing.
func parseNumeric(raw string) (v float64, ok bool) {
	if IsMissing(raw) {
		return math.NaN(), true
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return math.NaN(), false
	}
	return v, true
}

// inferKind treats a column as numeric when every present value parses and at least one is present.
func inferKind(values []string) Kind {
	present := 0
	for _, value := range values {
		if IsMissing(value) {
			continue
		}
		if _, ok := parseNumeric(value); !ok {
			return Categorical
		}
		present++
	}
	if present == 0 {
		return Categorical
	}
	return Numeric
}
