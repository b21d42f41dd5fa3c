package tidyframe

import "github.com/paveg/tidyframe/internal/labels"

// Labels holds variable and value labels for coded survey data.
type Labels = labels.Labels

// NewLabels creates labels for columns. variables maps a column to its
// descriptive label; values maps a column to its code labels.
func NewLabels(columns []string, variables map[string]string, values map[string]map[string]string) *Labels {
	return labels.New(columns, variables, values)
}

// LoadLabels reads a json, yaml or toml labels sidecar.
func LoadLabels(path string) (*Labels, error) { return labels.Load(path) }
