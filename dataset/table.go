package dataset

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Table is an in-memory observation table. Numeric cells use NaN for missing,
// categorical cells use the empty string.
type Table struct {
	columns []string
	kinds   map[string]Kind
	numeric map[string][]float64
	labels  map[string][]string
	rows    int
}

// New returns an empty table with a fixed number of rows.
func New(rows int) *Table {
	return &Table{
		kinds:   map[string]Kind{},
		numeric: map[string][]float64{},
		labels:  map[string][]string{},
		rows:    rows,
	}
}

func (t *Table) Len() int { return t.rows }

func (t *Table) Columns() []string {
	out := make([]string, len(t.columns))
	copy(out, t.columns)
	return out
}

func (t *Table) Kind(name string) (Kind, bool) {
	k, ok := t.kinds[name]
	return k, ok
}

func (t *Table) AddNumeric(name string, values []float64) error {
	if err := t.checkAdd(name, len(values)); err != nil {
		return err
	}
	t.columns = append(t.columns, name)
	t.kinds[name] = Numeric
	t.numeric[name] = values
	return nil
}

func (t *Table) AddLabels(name string, values []string) error {
	if err := t.checkAdd(name, len(values)); err != nil {
		return err
	}
	cleaned := make([]string, len(values))
	for i, v := range values {
		if !IsMissing(v) {
			cleaned[i] = strings.TrimSpace(v)
		}
	}
	t.columns = append(t.columns, name)
	t.kinds[name] = Categorical
	t.labels[name] = cleaned
	return nil
}

func (t *Table) checkAdd(name string, n int) error {
	if _, exists := t.kinds[name]; exists {
		return fmt.Errorf("column %q already exists", name)
	}
	if n != t.rows {
		return fmt.Errorf("column %q has %d values, table has %d rows", name, n, t.rows)
	}
	return nil
}

// Numeric returns the values of a numeric column. The slice is shared with the table.
func (t *Table) Numeric(name string) ([]float64, error) {
	kind, ok := t.kinds[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrColumnNotFound, name)
	}
	if kind != Numeric {
		return nil, &SchemaError{Column: name, Want: Numeric}
	}
	return t.numeric[name], nil
}

// Labels returns a column as group labels. Numeric columns are formatted so they can group too.
func (t *Table) Labels(name string) ([]string, error) {
	kind, ok := t.kinds[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrColumnNotFound, name)
	}
	if kind == Categorical {
		return t.labels[name], nil
	}
	values := t.numeric[name]
	out := make([]string, len(values))
	for i, v := range values {
		if !math.IsNaN(v) {
			out[i] = fmt.Sprintf("%g", v)
		}
	}
	return out, nil
}

// Groups returns the distinct non-missing labels of a column in group order:
// by value for numeric columns, lexicographic otherwise.
func (t *Table) Groups(name string) ([]string, error) {
	labels, err := t.Labels(name)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	order := make([]string, 0)
	var values []float64
	for i, label := range labels {
		if label == "" || seen[label] {
			continue
		}
		seen[label] = true
		order = append(order, label)
		if t.kinds[name] == Numeric {
			values = append(values, t.numeric[name][i])
		}
	}
	if values == nil {
		sort.Strings(order)
		return order, nil
	}
	sort.Sort(byValue{labels: order, values: values})
	return order, nil
}

type byValue struct {
	labels []string
	values []float64
}

func (b byValue) Len() int           { return len(b.labels) }
func (b byValue) Less(i, j int) bool { return b.values[i] < b.values[j] }
func (b byValue) Swap(i, j int) {
	b.labels[i], b.labels[j] = b.labels[j], b.labels[i]
	b.values[i], b.values[j] = b.values[j], b.values[i]
}

// Validate checks that every declared column exists with the declared kind.
func (t *Table) Validate(schema Schema) error {
	for _, f := range schema {
		kind, ok := t.kinds[f.Name]
		if !ok {
			return &SchemaError{Column: f.Name, Want: f.Kind, Missing: true}
		}
		// a numeric column is acceptable as a grouping variable
		if f.Kind == Numeric && kind != Numeric {
			return &SchemaError{Column: f.Name, Want: f.Kind}
		}
	}
	return nil
}

// FromRecords builds a table from header names and string rows, parsing declared columns
// per the schema and inferring the kind of the rest.
func FromRecords(headers []string, rows [][]string, schema Schema) (*Table, error) {
	t := New(len(rows))
	for _, f := range schema {
		found := false
		for _, h := range headers {
			if h == f.Name {
				found = true
				break
			}
		}
		if !found {
			return nil, &SchemaError{Column: f.Name, Want: f.Kind, Missing: true}
		}
	}
	for c, name := range headers {
		raw := make([]string, len(rows))
		for r, row := range rows {
			if c < len(row) {
				raw[r] = row[c]
			}
		}
		kind := inferKind(raw)
		if f, declared := schema.lookup(name); declared {
			kind = f.Kind
		}
		if kind == Categorical {
			if err := t.AddLabels(name, raw); err != nil {
				return nil, err
			}
			continue
		}
		values := make([]float64, len(raw))
		for r, cell := range raw {
			v, ok := parseNumeric(cell)
			if !ok {
				return nil, &SchemaError{Column: name, Want: Numeric, Row: r + 1, Value: cell}
			}
			values[r] = v
		}
		if err := t.AddNumeric(name, values); err != nil {
			return nil, err
		}
	}
	return t, nil
}
