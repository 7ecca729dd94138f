package datagen

import (
	"strconv"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func movieSchema() Schema {
	return Schema{
		Cats: map[string]CatSpec{
			"genres":  {Cardinality: 50, MinEntrySize: 1, MaxEntrySize: 5, MultiMin: 2, MultiMax: 4},
			"movieId": {Cardinality: 500, MinEntrySize: 1, MaxEntrySize: 5},
		},
	}
}

func TestGenerateShape(t *testing.T) {
	g := New(1)
	tb, err := g.Generate(100, movieSchema())
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	wantCols := []string{"genres", "movieId"}
	if diff := cmp.Diff(wantCols, tb.Columns); diff != "" {
		t.Fatalf("columns mismatch (-want +got):\n%s", diff)
	}
	if tb.NumRows() != 100 {
		t.Fatalf("rows = %d, want 100", tb.NumRows())
	}
}

func TestGenerateCardinalityBounds(t *testing.T) {
	g := New(42)
	tb, err := g.Generate(500, movieSchema())
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	movieIdx := tb.ColumnIndex("movieId")
	genreIdx := tb.ColumnIndex("genres")
	for _, row := range tb.Rows {
		id, err := strconv.Atoi(row[movieIdx])
		if err != nil {
			t.Fatalf("non-integer movieId %q: %v", row[movieIdx], err)
		}
		if id < 0 || id >= 500 {
			t.Fatalf("movieId %d out of [0,500)", id)
		}
		parts := strings.Split(row[genreIdx], "|")
		if len(parts) < 2 || len(parts) > 4 {
			t.Fatalf("genres entry count %d outside [2,4]: %q", len(parts), row[genreIdx])
		}
		for _, p := range parts {
			gid, err := strconv.Atoi(p)
			if err != nil {
				t.Fatalf("non-integer genre %q: %v", p, err)
			}
			if gid < 0 || gid >= 50 {
				t.Fatalf("genre %d out of [0,50)", gid)
			}
		}
	}
}

func TestGenerateDeterministic(t *testing.T) {
	a, err := New(7).Generate(50, movieSchema())
	if err != nil {
		t.Fatalf("generate a: %v", err)
	}
	b, err := New(7).Generate(50, movieSchema())
	if err != nil {
		t.Fatalf("generate b: %v", err)
	}
	if diff := cmp.Diff(a, b); diff != "" {
		t.Fatalf("same seed produced different data (-a +b):\n%s", diff)
	}
}

func TestGenerateContsAndLabels(t *testing.T) {
	s := Schema{
		Conts:  map[string]ContSpec{"score": {Min: 1, Max: 5}},
		Labels: map[string]LabelSpec{"rating": {Cardinality: 5}},
	}
	tb, err := New(3).Generate(200, s)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	scoreIdx := tb.ColumnIndex("score")
	ratingIdx := tb.ColumnIndex("rating")
	for _, row := range tb.Rows {
		v, err := strconv.ParseFloat(row[scoreIdx], 64)
		if err != nil {
			t.Fatalf("non-float score %q: %v", row[scoreIdx], err)
		}
		if v < 1 || v >= 5 {
			t.Fatalf("score %v out of [1,5)", v)
		}
		r, err := strconv.Atoi(row[ratingIdx])
		if err != nil {
			t.Fatalf("non-integer rating %q: %v", row[ratingIdx], err)
		}
		if r < 0 || r >= 5 {
			t.Fatalf("rating %d out of [0,5)", r)
		}
	}
}

func TestGenerateErrors(t *testing.T) {
	if _, err := New(1).Generate(0, movieSchema()); err == nil {
		t.Fatalf("expected error for zero rows")
	}
	if _, err := New(1).Generate(10, Schema{}); err == nil {
		t.Fatalf("expected error for empty schema")
	}
	bad := Schema{Cats: map[string]CatSpec{"x": {Cardinality: 0}}}
	if _, err := New(1).Generate(10, bad); err == nil {
		t.Fatalf("expected error for zero cardinality")
	}
}
