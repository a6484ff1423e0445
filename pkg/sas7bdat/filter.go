package sas7bdat

import (
	"fmt"
	"slices"
	"strings"
)

// Filter selects the columns a Reader decodes. At most one of Include and
// Exclude may be set; names match exactly and case sensitively. An empty
// filter retains every column.
type Filter struct {
	Include []string
	Exclude []string
}

// Validate checks the filter independently of any schema.
func (f Filter) Validate() error {
	if len(f.Include) > 0 && len(f.Exclude) > 0 {
		return fmt.Errorf("%w: include and exclude are mutually exclusive", ErrInvalidFilter)
	}
	for _, n := range slices.Concat(f.Include, f.Exclude) {
		if n == "" {
			return fmt.Errorf("%w: empty column name", ErrInvalidFilter)
		}
	}
	return nil
}

// Apply returns the retained columns in file order. Every listed name must
// exist in the schema.
func (f Filter) Apply(cols []Column) ([]Column, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	if len(f.Include) == 0 && len(f.Exclude) == 0 {
		return cols, nil
	}

	present := make(map[string]struct{}, len(cols))
	for _, c := range cols {
		present[c.Name] = struct{}{}
	}
	var missing []string
	for _, n := range slices.Concat(f.Include, f.Exclude) {
		if _, ok := present[n]; !ok {
			missing = append(missing, n)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: unknown columns %s", ErrInvalidFilter, strings.Join(missing, ", "))
	}

	include := len(f.Include) > 0
	names := f.Exclude
	if include {
		names = f.Include
	}
	listed := make(map[string]struct{}, len(names))
	for _, n := range names {
		listed[n] = struct{}{}
	}
	out := make([]Column, 0, len(cols))
	for _, c := range cols {
		if _, ok := listed[c.Name]; ok == include {
			out = append(out, c)
		}
	}
	return out, nil
}
