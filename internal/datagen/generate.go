package datagen

import (
	"fmt"
	"math/rand"
	"sort"
	"strconv"
	"strings"

	"nbharness/internal/tabular"
)

// Generator produces synthetic rows from a Schema using a seeded uniform
// source, so repeated runs with the same seed yield identical datasets.
type Generator struct {
	rng *rand.Rand
}

// New returns a Generator seeded with seed.
func New(seed int64) *Generator {
	return &Generator{rng: rand.New(rand.NewSource(seed))}
}

// Generate produces rows synthetic rows for schema. Column order is
// deterministic: categorical, continuous, then label columns, each sorted
// by name.
func (g *Generator) Generate(rows int, schema Schema) (*tabular.Table, error) {
	if rows <= 0 {
		return nil, fmt.Errorf("row count must be positive, got %d", rows)
	}
	if err := schema.Validate(); err != nil {
		return nil, err
	}

	catNames := sortedKeys(schema.Cats)
	contNames := sortedKeys(schema.Conts)
	labelNames := sortedKeys(schema.Labels)

	t := &tabular.Table{}
	t.Columns = append(t.Columns, catNames...)
	t.Columns = append(t.Columns, contNames...)
	t.Columns = append(t.Columns, labelNames...)

	t.Rows = make([][]string, 0, rows)
	for i := 0; i < rows; i++ {
		row := make([]string, 0, len(t.Columns))
		for _, name := range catNames {
			row = append(row, g.catValue(schema.Cats[name]))
		}
		for _, name := range contNames {
			row = append(row, g.contValue(schema.Conts[name]))
		}
		for _, name := range labelNames {
			row = append(row, strconv.Itoa(g.rng.Intn(schema.Labels[name].Cardinality)))
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

// WriteDataset generates rows and writes them to path as CSV.
func (g *Generator) WriteDataset(path string, rows int, schema Schema) error {
	t, err := g.Generate(rows, schema)
	if err != nil {
		return err
	}
	return tabular.WriteFile(path, t)
}

func (g *Generator) catValue(spec CatSpec) string {
	if spec.MultiMin <= 0 {
		return strconv.Itoa(g.rng.Intn(spec.Cardinality))
	}
	n := spec.MultiMin
	if spec.MultiMax > spec.MultiMin {
		n += g.rng.Intn(spec.MultiMax - spec.MultiMin + 1)
	}
	ids := make([]string, n)
	for i := range ids {
		ids[i] = strconv.Itoa(g.rng.Intn(spec.Cardinality))
	}
	return strings.Join(ids, "|")
}

func (g *Generator) contValue(spec ContSpec) string {
	v := spec.Min + g.rng.Float64()*(spec.Max-spec.Min)
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
