package datagen

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Schema describes the shape of a synthetic dataset: categorical columns,
// continuous columns, and label columns. Column names are the map keys.
type Schema struct {
	Cats   map[string]CatSpec   `json:"cats" yaml:"cats" toml:"cats"`
	Conts  map[string]ContSpec  `json:"conts" yaml:"conts" toml:"conts"`
	Labels map[string]LabelSpec `json:"labels" yaml:"labels" toml:"labels"`
}

// CatSpec describes a categorical column. Values are ids in [0, Cardinality).
// When MultiMin > 0 the column is multi-hot: each row holds between MultiMin
// and MultiMax ids joined by '|'.
type CatSpec struct {
	Cardinality  int `json:"cardinality" yaml:"cardinality" toml:"cardinality"`
	MinEntrySize int `json:"min_entry_size" yaml:"min_entry_size" toml:"min_entry_size"`
	MaxEntrySize int `json:"max_entry_size" yaml:"max_entry_size" toml:"max_entry_size"`
	MultiMin     int `json:"multi_min" yaml:"multi_min" toml:"multi_min"`
	MultiMax     int `json:"multi_max" yaml:"multi_max" toml:"multi_max"`
}

// ContSpec describes a continuous column sampled uniformly from [Min, Max).
type ContSpec struct {
	Min float64 `json:"min" yaml:"min" toml:"min"`
	Max float64 `json:"max" yaml:"max" toml:"max"`
}

// LabelSpec describes a label column with integer values in [0, Cardinality).
type LabelSpec struct {
	Cardinality int `json:"cardinality" yaml:"cardinality" toml:"cardinality"`
}

// Validate checks the schema for specs the generator cannot satisfy.
func (s Schema) Validate() error {
	for name, c := range s.Cats {
		if c.Cardinality <= 0 {
			return fmt.Errorf("cat column %s: cardinality must be positive", name)
		}
		if c.MultiMin > 0 && c.MultiMax < c.MultiMin {
			return fmt.Errorf("cat column %s: multi_max < multi_min", name)
		}
	}
	for name, l := range s.Labels {
		if l.Cardinality <= 0 {
			return fmt.Errorf("label column %s: cardinality must be positive", name)
		}
	}
	for name, c := range s.Conts {
		if c.Max < c.Min {
			return fmt.Errorf("cont column %s: max < min", name)
		}
	}
	if len(s.Cats)+len(s.Conts)+len(s.Labels) == 0 {
		return fmt.Errorf("schema has no columns")
	}
	return nil
}

// LoadSchema reads a schema file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func LoadSchema(path string) (Schema, error) {
	var s Schema
	if path == "" {
		return s, fmt.Errorf("empty schema path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return s, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &s); err != nil {
			return s, err
		}
	case ".json":
		if err := json.Unmarshal(b, &s); err != nil {
			return s, err
		}
	case ".toml":
		if err := toml.Unmarshal(b, &s); err != nil {
			return s, err
		}
	default:
		return s, fmt.Errorf("unsupported schema extension: %s", ext)
	}
	return s, s.Validate()
}
