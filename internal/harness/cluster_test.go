package harness

import (
	"context"
	"testing"

	"github.com/rs/zerolog"

	"nbharness/internal/config"
)

func TestClusterTransform(t *testing.T) {
	tr := ClusterTransform("tcp://127.0.0.1:8786")
	cases := map[string]string{
		"cluster = None":          "cluster = 'tcp://127.0.0.1:8786'",
		"write_count = 25":        "write_count = 4",
		`freq = "1s"`:             `freq = "1h"`,
		"part_mem_fraction=0.1":   "part_size=1_000_000",
		"out_files_per_proc=8":    "out_files_per_proc=1",
		"unrelated = 'untouched'": "unrelated = 'untouched'",
	}
	for in, want := range cases {
		if got := tr(in); got != want {
			t.Fatalf("transform(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestRunClusterExample(t *testing.T) {
	nbDir := t.TempDir()
	scratch := t.TempDir()
	writeNotebook(t, nbDir, []string{clusterDir, clusterNotebook},
		`test \"$BASE_DIR\" = \"`+scratch+`\" || exit 1`)
	h := New(config.Config{Interpreter: "sh", NotebooksDir: nbDir}, zerolog.Nop())
	if err := h.RunClusterExample(context.Background(), scratch, "tcp://127.0.0.1:8786"); err != nil {
		t.Fatalf("scenario failed: %v", err)
	}
}

func TestRunClusterExampleMissingNotebook(t *testing.T) {
	h := New(config.Config{Interpreter: "sh", NotebooksDir: t.TempDir()}, zerolog.Nop())
	if err := h.RunClusterExample(context.Background(), t.TempDir(), "tcp://127.0.0.1:8786"); err != nil {
		t.Fatalf("absent notebook should be skipped, got %v", err)
	}
}
