// Package labels keeps variable and value labels for a table's columns.
//
// Labels live beside a table, not inside it. Renaming or recoding columns
// never updates them; Orphaned reports labels whose column is gone.
package labels

import (
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/goccy/go-json"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/paveg/tidyframe/internal/errors"
	"github.com/paveg/tidyframe/internal/series"
	"github.com/paveg/tidyframe/internal/table"
)

// Labels maps columns to human-readable variable labels and raw values to
// value labels. Raw values are keyed by their printed form, so the integer
// 1 and the string "1" share a label.
type Labels struct {
	Original  []string                     `json:"original" yaml:"original" toml:"original"`
	Variables map[string]string            `json:"variables" yaml:"variables" toml:"variables"`
	Values    map[string]map[string]string `json:"values" yaml:"values" toml:"values"`
}

// New builds labels for the given columns. Blank variable labels are
// dropped and every column without a label is labelled with its own name.
// Value maps are kept only for columns with at least one labelled value.
func New(columns []string, variables map[string]string, values map[string]map[string]string) *Labels {
	l := &Labels{
		Original:  slices.Clone(columns),
		Variables: make(map[string]string, len(columns)),
		Values:    make(map[string]map[string]string),
	}
	for name, label := range variables {
		if strings.TrimSpace(label) != "" {
			l.Variables[name] = label
		}
	}
	for _, col := range columns {
		if _, ok := l.Variables[col]; !ok {
			l.Variables[col] = col
		}
	}
	for col, m := range values {
		if len(m) > 0 {
			l.Values[col] = maps.Clone(m)
		}
	}
	return l
}

// Variable returns the variable label of a column, or the column name when
// it has none.
func (l *Labels) Variable(col string) string {
	if label, ok := l.Variables[col]; ok {
		return label
	}
	return col
}

// Value returns the label of a raw value in a column.
func (l *Labels) Value(col string, raw any) (string, bool) {
	if raw == nil {
		return "", false
	}
	label, ok := l.Values[col][series.FormatValue(raw)]
	return label, ok
}

// HasValueLabels reports whether a column has value labels.
func (l *Labels) HasValueLabels(col string) bool {
	_, ok := l.Values[col]
	return ok
}

// RenameToLabels renames the table's columns to their variable labels.
// Columns without a label keep their name. Two columns ending up with the
// same name is a ColumnNameCollisionError.
func (l *Labels) RenameToLabels(t *table.Table) (*table.Table, error) {
	mapping := make(map[string]string)
	for _, name := range t.ColumnNames() {
		if label := l.Variable(name); label != name {
			mapping[name] = label
		}
	}
	return t.Rename(mapping)
}

// Recode replaces raw values with their value labels in the named columns,
// or in every labelled column of the table when no names are given. Recoded
// columns hold strings; values without a label keep their printed form and
// missing values stay missing.
func (l *Labels) Recode(t *table.Table, cols ...string) (*table.Table, error) {
	if len(cols) == 0 {
		for _, name := range t.ColumnNames() {
			if l.HasValueLabels(name) {
				cols = append(cols, name)
			}
		}
	}
	out := t
	for _, name := range cols {
		col, err := t.Pull(name)
		if err != nil {
			return nil, fmt.Errorf("recode: %w", err)
		}
		if !l.HasValueLabels(name) {
			return nil, errors.NewValidationError("recode", name, "column has no value labels")
		}
		values := col.Values()
		for i, v := range values {
			if v == nil {
				continue
			}
			if label, ok := l.Value(name, v); ok {
				values[i] = label
			} else {
				values[i] = series.FormatValue(v)
			}
		}
		recoded, err := series.Build(name, series.KindString, values)
		if err != nil {
			return nil, err
		}
		if out, err = replaceColumn(out, recoded); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func replaceColumn(t *table.Table, col *series.Series) (*table.Table, error) {
	cols := t.Columns()
	for i, c := range cols {
		if c.Name() == col.Name() {
			cols[i] = col
		}
	}
	return table.New(cols...)
}

// Orphaned lists, in sorted order, the labelled columns the table no longer
// has.
func (l *Labels) Orphaned(t *table.Table) []string {
	seen := make(map[string]bool)
	var out []string
	add := func(name string) {
		if !seen[name] && !t.HasColumn(name) {
			seen[name] = true
			out = append(out, name)
		}
	}
	for name := range l.Variables {
		add(name)
	}
	for name := range l.Values {
		add(name)
	}
	slices.Sort(out)
	return out
}

// Load reads labels from a JSON, YAML or TOML sidecar file.
func Load(path string) (*Labels, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading labels file %s: %w", path, err)
	}

	var l Labels
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		err = json.Unmarshal(data, &l)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &l)
	case ".toml":
		err = toml.Unmarshal(data, &l)
	default:
		return nil, errors.NewUnsupportedFormatError(path, ext, "labels are stored as json, yaml or toml")
	}
	if err != nil {
		return nil, fmt.Errorf("parsing labels file %s: %w", path, err)
	}
	return New(l.Original, l.Variables, l.Values), nil
}

// Save writes labels to a JSON, YAML or TOML sidecar file chosen by
// extension.
func (l *Labels) Save(path string) error {
	var (
		data []byte
		err  error
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		data, err = json.MarshalIndent(l, "", "  ")
	case ".yaml", ".yml":
		data, err = yaml.Marshal(l)
	case ".toml":
		data, err = toml.Marshal(l)
	default:
		return errors.NewUnsupportedFormatError(path, ext, "labels are stored as json, yaml or toml")
	}
	if err != nil {
		return fmt.Errorf("encoding labels: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing labels file %s: %w", path, err)
	}
	return nil
}
