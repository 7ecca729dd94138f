package notebook

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

func TestRunScriptSuccess(t *testing.T) {
	d := t.TempDir()
	err := RunScript(context.Background(), d, "echo hello", RunConfig{Interpreter: "sh"})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if _, err := os.Stat(filepath.Join(d, "notebook.py")); err != nil {
		t.Fatalf("script file not written: %v", err)
	}
}

func TestRunScriptEmptyScriptSucceeds(t *testing.T) {
	d := t.TempDir()
	if err := RunScript(context.Background(), d, "", RunConfig{Interpreter: "sh"}); err != nil {
		t.Fatalf("empty script should run trivially: %v", err)
	}
}

func TestRunScriptNonZeroExit(t *testing.T) {
	d := t.TempDir()
	err := RunScript(context.Background(), d, "echo boom >&2\nexit 3", RunConfig{Interpreter: "sh"})
	if err == nil || !IsScriptFailure(err) {
		t.Fatalf("expected script failure, got %v", err)
	}
	if out := ScriptOutput(err); !strings.Contains(out, "boom") {
		t.Fatalf("captured output %q missing stderr line", out)
	}
}

func TestRunScriptEnvOverride(t *testing.T) {
	d := t.TempDir()
	script := "test \"$INPUT_DATA_DIR\" = /data/in || exit 1"
	cfg := RunConfig{Interpreter: "sh", Env: map[string]string{"INPUT_DATA_DIR": "/data/in"}}
	if err := RunScript(context.Background(), d, script, cfg); err != nil {
		t.Fatalf("env override not visible to child: %v", err)
	}
	if os.Getenv("INPUT_DATA_DIR") == "/data/in" {
		t.Fatalf("harness process environment was mutated")
	}
}

func TestRunScriptMissingInterpreter(t *testing.T) {
	d := t.TempDir()
	err := RunScript(context.Background(), d, "print(1)", RunConfig{Interpreter: "definitely-not-an-interpreter"})
	if err == nil {
		t.Fatalf("expected start error")
	}
	if IsScriptFailure(err) {
		t.Fatalf("launch failure should not classify as script failure: %v", err)
	}
}

func TestRunNotebookParseFailure(t *testing.T) {
	d := t.TempDir()
	p := filepath.Join(d, "bad.ipynb")
	if err := os.WriteFile(p, []byte("{oops"), 0o644); err != nil {
		t.Fatalf("seed: %v", err)
	}
	err := RunNotebook(context.Background(), d, p, nil, RunConfig{Interpreter: "sh"})
	if err == nil || !IsParseError(err) {
		t.Fatalf("expected parse error, got %v", err)
	}
}

func TestRunNotebookEndToEnd(t *testing.T) {
	if _, err := exec.LookPath("python3"); err != nil {
		t.Skip("python3 not installed")
	}
	d := t.TempDir()
	nb := `{"cells":[{"cell_type":"markdown","source":["# demo\n"]},{"cell_type":"code","source":["print(1)"]}]}`
	p := filepath.Join(d, "demo.ipynb")
	if err := os.WriteFile(p, []byte(nb), 0o644); err != nil {
		t.Fatalf("seed: %v", err)
	}
	doc, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := ExtractScript(doc, nil); got != "print(1)" {
		t.Fatalf("extracted script = %q, want %q", got, "print(1)")
	}
	if err := RunNotebook(context.Background(), d, p, nil, RunConfig{}); err != nil {
		t.Fatalf("run notebook: %v", err)
	}
}
