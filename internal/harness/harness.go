// Package harness wires data generation, notebook extraction, and the
// inference-server runner into end-to-end example scenarios.
package harness

import (
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"nbharness/internal/config"
	"nbharness/internal/inference"
	"nbharness/internal/notebook"
)

// Harness runs example-notebook scenarios inside a scratch directory.
type Harness struct {
	cfg config.Config
	log zerolog.Logger
}

// New returns a Harness with defaults applied to cfg.
func New(cfg config.Config, log zerolog.Logger) *Harness {
	return &Harness{cfg: config.ApplyDefaults(cfg), log: log}
}

// runConfig builds the notebook run configuration for one scenario run.
// env is the explicit environment channel for the notebook subprocess.
func (h *Harness) runConfig(env map[string]string) notebook.RunConfig {
	return notebook.RunConfig{
		Interpreter: h.cfg.Interpreter,
		Env:         env,
		Logger:      h.log,
	}
}

// serverConfig builds the inference-server launch configuration.
func (h *Harness) serverConfig(modelRepository string) inference.ServerConfig {
	return inference.ServerConfig{
		Binary:          h.cfg.ServerBin,
		ModelRepository: modelRepository,
		Host:            h.cfg.Host,
		Port:            h.cfg.Port,
		Devices:         h.cfg.Devices,
		ReadyAttempts:   h.cfg.ReadyAttempts,
		ReadyInterval:   h.cfg.ReadyInterval(),
		Logger:          h.log,
	}
}

// notebookPath resolves name inside the configured notebooks directory and
// reports whether it exists. Scenarios skip absent notebooks, mirroring how
// optional example dependencies are handled.
func (h *Harness) notebookPath(parts ...string) (string, bool) {
	p := filepath.Join(append([]string{h.cfg.NotebooksDir}, parts...)...)
	_, err := os.Stat(p)
	return p, err == nil
}

// newRunID tags one scenario execution in logs.
func newRunID() string { return uuid.NewString() }
