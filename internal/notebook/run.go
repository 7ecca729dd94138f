package notebook

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// scriptName is the fixed filename extracted scripts are written under.
const scriptName = "notebook.py"

// outputTailLimit bounds how much captured output a script error carries.
const outputTailLimit = 4096

// RunConfig controls how an extracted script is executed. Env is an explicit
// override map merged over the inherited environment at launch; the harness
// never mutates its own process environment.
type RunConfig struct {
	Interpreter string            // defaults to "python3"
	Env         map[string]string // additional env vars for the child
	Logger      zerolog.Logger    // defaults to a no-op logger
}

func (c RunConfig) interpreter() string {
	if c.Interpreter == "" {
		return "python3"
	}
	return c.Interpreter
}

// RunScript writes script to the fixed filename inside dir and runs it with
// the configured interpreter. A non-zero exit surfaces a script error
// carrying the tail of the combined output.
func RunScript(ctx context.Context, dir, script string, cfg RunConfig) error {
	path := filepath.Join(dir, scriptName)
	if err := os.WriteFile(path, []byte(script), 0o644); err != nil {
		return fmt.Errorf("write script: %w", err)
	}

	cmd := exec.CommandContext(ctx, cfg.interpreter(), path)
	cmd.Dir = dir
	cmd.Env = os.Environ()
	for k, v := range cfg.Env {
		cmd.Env = append(cmd.Env, fmt.Sprintf("%s=%s", k, v))
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("stderr pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", cfg.interpreter(), err)
	}

	var out capturedOutput
	var g errgroup.Group
	g.Go(func() error { return out.stream(cfg.Logger, "stdout", stdout) })
	g.Go(func() error { return out.stream(cfg.Logger, "stderr", stderr) })
	streamErr := g.Wait()

	if err := cmd.Wait(); err != nil {
		return scriptError{path: path, err: err, output: out.tail()}
	}
	return streamErr
}

// RunNotebook loads the notebook at path, extracts its script, and runs it
// inside dir.
func RunNotebook(ctx context.Context, dir, path string, transform Transform, cfg RunConfig) error {
	doc, err := Load(path)
	if err != nil {
		return err
	}
	script := ExtractScript(doc, transform)
	cfg.Logger.Debug().Str("notebook", path).Int("bytes", len(script)).Msg("extracted script")
	return RunScript(ctx, dir, script, cfg)
}

// capturedOutput accumulates subprocess output from both pipes while
// forwarding lines to the logger.
type capturedOutput struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (c *capturedOutput) stream(log zerolog.Logger, name string, r io.Reader) error {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 64*1024), 1024*1024)
	for s.Scan() {
		line := s.Text()
		log.Debug().Str("pipe", name).Msg(line)
		c.mu.Lock()
		c.buf.WriteString(line)
		c.buf.WriteByte('\n')
		c.mu.Unlock()
	}
	return s.Err()
}

func (c *capturedOutput) tail() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := c.buf.String()
	if len(out) > outputTailLimit {
		out = out[len(out)-outputTailLimit:]
	}
	return out
}
