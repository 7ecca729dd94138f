package datagen

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTempFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

func TestLoadSchemaJSON(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "movie.json", `{
		"conts": {},
		"cats": {
			"genres": {"cardinality": 50, "min_entry_size": 1, "max_entry_size": 5, "multi_min": 2, "multi_max": 4},
			"movieId": {"cardinality": 500, "min_entry_size": 1, "max_entry_size": 5}
		}
	}`)
	s, err := LoadSchema(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if s.Cats["genres"].Cardinality != 50 || s.Cats["genres"].MultiMax != 4 {
		t.Fatalf("unexpected genres spec: %+v", s.Cats["genres"])
	}
	if s.Cats["movieId"].Cardinality != 500 {
		t.Fatalf("unexpected movieId spec: %+v", s.Cats["movieId"])
	}
}

func TestLoadSchemaYAML(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "ratings.yaml", "cats:\n  userId:\n    cardinality: 500\nlabels:\n  rating:\n    cardinality: 5\n")
	s, err := LoadSchema(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if s.Cats["userId"].Cardinality != 500 || s.Labels["rating"].Cardinality != 5 {
		t.Fatalf("unexpected schema: %+v", s)
	}
}

func TestLoadSchemaTOML(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "s.toml", "[cats.movieId]\ncardinality = 500\n")
	s, err := LoadSchema(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if s.Cats["movieId"].Cardinality != 500 {
		t.Fatalf("unexpected schema: %+v", s)
	}
}

func TestLoadSchemaErrors(t *testing.T) {
	if _, err := LoadSchema(""); err == nil {
		t.Fatalf("expected error on empty path")
	}
	d := t.TempDir()
	p := writeTempFile(t, d, "s.txt", "whatever")
	if _, err := LoadSchema(p); err == nil {
		t.Fatalf("expected error on unsupported extension")
	}
	p = writeTempFile(t, d, "bad.json", "{not json")
	if _, err := LoadSchema(p); err == nil {
		t.Fatalf("expected error on malformed json")
	}
	p = writeTempFile(t, d, "empty.json", "{}")
	if _, err := LoadSchema(p); err == nil {
		t.Fatalf("expected validation error on empty schema")
	}
}
