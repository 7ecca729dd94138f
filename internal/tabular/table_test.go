package tabular

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func sampleTable() *Table {
	return &Table{
		Columns: []string{"movieId", "genres"},
		Rows: [][]string{
			{"1", "2|7"},
			{"2", "4"},
			{"1", "9"},
			{"3", "2"},
		},
	}
}

func TestColumnIndex(t *testing.T) {
	tb := sampleTable()
	if got := tb.ColumnIndex("genres"); got != 1 {
		t.Fatalf("ColumnIndex(genres) = %d, want 1", got)
	}
	if got := tb.ColumnIndex("missing"); got != -1 {
		t.Fatalf("ColumnIndex(missing) = %d, want -1", got)
	}
}

func TestDropDuplicatesKeepsFirst(t *testing.T) {
	out, err := DropDuplicates(sampleTable(), "movieId")
	if err != nil {
		t.Fatalf("DropDuplicates: %v", err)
	}
	want := [][]string{
		{"1", "2|7"},
		{"2", "4"},
		{"3", "2"},
	}
	if diff := cmp.Diff(want, out.Rows); diff != "" {
		t.Fatalf("rows mismatch (-want +got):\n%s", diff)
	}
}

func TestDropDuplicatesMissingColumn(t *testing.T) {
	if _, err := DropDuplicates(sampleTable(), "nope"); err == nil {
		t.Fatalf("expected error for missing column")
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	d := t.TempDir()
	p := filepath.Join(d, "dataset_0.csv")
	in := sampleTable()
	if err := WriteFile(p, in); err != nil {
		t.Fatalf("write: %v", err)
	}
	out, err := ReadFile(p)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if diff := cmp.Diff(in, out); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestRename(t *testing.T) {
	d := t.TempDir()
	src := filepath.Join(d, "dataset_0.csv")
	dst := filepath.Join(d, "train.csv")
	if err := os.WriteFile(src, []byte("a\n1\n"), 0o644); err != nil {
		t.Fatalf("seed file: %v", err)
	}
	if err := Rename(src, dst); err != nil {
		t.Fatalf("rename: %v", err)
	}
	if _, err := os.Stat(dst); err != nil {
		t.Fatalf("stat renamed: %v", err)
	}
	if _, err := os.Stat(src); !os.IsNotExist(err) {
		t.Fatalf("source still present: %v", err)
	}
}
