package notebook

import (
	"encoding/json"
	"os"
)

// Cell is one notebook cell. Only the type tag and source lines matter here;
// outputs and metadata are ignored.
type Cell struct {
	CellType string   `json:"cell_type"`
	Source   []string `json:"source"`
}

// Document is a parsed notebook: an ordered sequence of cells.
type Document struct {
	Cells []Cell `json:"cells"`
}

// Parse decodes a raw .ipynb body into a Document.
func Parse(b []byte) (Document, error) {
	var doc Document
	if err := json.Unmarshal(b, &doc); err != nil {
		return Document{}, parseError{err: err}
	}
	return doc, nil
}

// Load reads and parses a notebook file.
func Load(path string) (Document, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Document{}, err
	}
	return Parse(b)
}
