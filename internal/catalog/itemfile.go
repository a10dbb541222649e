// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import (
	"fmt"
	"os"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/m2m-fetch/pkg/types"
)

// ItemFile is the on-disk form of a resolved query. Saving one lets the
// download stage run later without querying the catalog again.
type ItemFile struct {
	Filter  types.FilterSpec         `yaml:"filter"`
	Items   []types.DownloadableItem `yaml:"items"`
	Summary ItemSummary              `yaml:"summary"`
}

// ItemSummary records step counts and when the query ran.
type ItemSummary struct {
	Scenes    int       `yaml:"scenes"`
	Selected  int       `yaml:"selected"`
	Items     int       `yaml:"items"`
	Preparing int       `yaml:"preparing,omitempty"`
	Failed    int       `yaml:"failed,omitempty"`
	Timestamp time.Time `yaml:"timestamp"`
}

// WriteItemFile saves f and the items resolved for it to a YAML file.
func WriteItemFile(path string, f types.FilterSpec, res Resolution) error {
	file := ItemFile{
		Filter: f,
		Items:  res.Items,
		Summary: ItemSummary{
			Scenes:    len(res.Scenes),
			Selected:  len(res.Selected),
			Items:     len(res.Items),
			Preparing: res.Preparing,
			Failed:    res.Failed,
			Timestamp: time.Now().UTC(),
		},
	}

	data, err := yaml.Marshal(&file)
	if err != nil {
		return fmt.Errorf("marshaling item file: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadItemFile loads an item file previously written by WriteItemFile.
func ReadItemFile(path string) (*ItemFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading item file: %w", err)
	}

	var file ItemFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing item file: %w", err)
	}
	return &file, nil
}

// ReadFilterFile loads a filter spec from YAML. The file is not validated;
// Resolve does that.
func ReadFilterFile(path string) (types.FilterSpec, error) {
	var f types.FilterSpec
	data, err := os.ReadFile(path)
	if err != nil {
		return f, fmt.Errorf("reading filter file: %w", err)
	}
	if err := yaml.Unmarshal(data, &f); err != nil {
		return f, fmt.Errorf("parsing filter file: %w", err)
	}
	return f, nil
}
