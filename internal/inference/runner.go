package inference

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
)

// stderrTailLimit bounds how much server stderr an early-exit error carries.
const stderrTailLimit = 4096

// ServerConfig describes how to launch and probe an inference server.
// Devices is explicit configuration for GPU visibility: it is rendered into
// the child environment at launch, never into the harness's own environment.
type ServerConfig struct {
	Binary          string
	ModelRepository string
	Host            string // defaults to 127.0.0.1
	Port            int    // defaults to 8000
	BaseURL         string // overrides Host/Port when set
	Devices         []int  // defaults to [0]
	ExtraArgs       []string

	ReadyAttempts int           // defaults to 60
	ReadyInterval time.Duration // defaults to 1s
	QueryTimeout  time.Duration // per readiness query, defaults to 1s
	StopGrace     time.Duration // SIGINT-to-kill escalation, defaults to 2s

	Logger zerolog.Logger
}

func (c ServerConfig) withDefaults() ServerConfig {
	if c.Host == "" {
		c.Host = "127.0.0.1"
	}
	if c.Port == 0 {
		c.Port = 8000
	}
	if c.BaseURL == "" {
		c.BaseURL = fmt.Sprintf("http://%s:%d", c.Host, c.Port)
	}
	if c.ReadyAttempts <= 0 {
		c.ReadyAttempts = 60
	}
	if c.ReadyInterval <= 0 {
		c.ReadyInterval = time.Second
	}
	if c.QueryTimeout <= 0 {
		c.QueryTimeout = time.Second
	}
	if c.StopGrace <= 0 {
		c.StopGrace = 2 * time.Second
	}
	return c
}

func (c ServerConfig) args() []string {
	var args []string
	if c.ModelRepository != "" {
		args = append(args, "--model-repository", c.ModelRepository)
	}
	if c.BaseURL == "" {
		args = append(args, "--host", c.Host, "--port", strconv.Itoa(c.Port))
	}
	return append(args, c.ExtraArgs...)
}

func (c ServerConfig) deviceEnv() string {
	devs := c.Devices
	if len(devs) == 0 {
		devs = []int{0}
	}
	parts := make([]string, len(devs))
	for i, d := range devs {
		parts[i] = strconv.Itoa(d)
	}
	return "CUDA_VISIBLE_DEVICES=" + strings.Join(parts, ",")
}

// WithServer launches the configured server, waits until it reports ready
// within the attempt budget, and runs fn with a connected client. The
// subprocess receives an interrupt on every exit path, including a panic in
// fn, and is reaped before WithServer returns.
func WithServer(ctx context.Context, cfg ServerConfig, fn func(*Client) error) error {
	cfg = cfg.withDefaults()
	if strings.TrimSpace(cfg.Binary) == "" {
		return fmt.Errorf("server binary is empty")
	}

	cmd := exec.Command(cfg.Binary, cfg.args()...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	cmd.Env = append(os.Environ(), cfg.deviceEnv())
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start server: %w", err)
	}
	proc := newServerProc(cmd)
	cfg.Logger.Info().Str("binary", cfg.Binary).Int("pid", cmd.Process.Pid).
		Str("url", cfg.BaseURL).Msg("server starting")
	defer proc.stop(cfg.StopGrace, cfg.Logger)

	client := NewClient(cfg.BaseURL)
	for attempt := 1; attempt <= cfg.ReadyAttempts; attempt++ {
		if werr, exited := proc.exited(); exited {
			return exitedEarlyError{err: werr, stderrTail: tail(stderr.String())}
		}

		qctx, cancel := context.WithTimeout(ctx, cfg.QueryTimeout)
		ready, qerr := client.Ready(qctx)
		cancel()
		if qerr != nil {
			// Transient by assumption: the server may not be listening yet.
			cfg.Logger.Debug().Int("attempt", attempt).Err(qerr).Msg("readiness query failed")
			ready = false
		}
		if ready {
			cfg.Logger.Info().Int("attempt", attempt).Msg("server ready")
			return fn(client)
		}

		select {
		case werr := <-proc.waitCh:
			proc.record(werr)
			return exitedEarlyError{err: werr, stderrTail: tail(stderr.String())}
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(cfg.ReadyInterval):
		}
	}
	return readyTimeoutError{url: cfg.BaseURL, attempts: cfg.ReadyAttempts}
}

// WaitReady polls an already-running server until it reports ready, with the
// same swallow-and-retry semantics as WithServer.
func WaitReady(ctx context.Context, client *Client, attempts int, interval time.Duration) error {
	if attempts <= 0 {
		attempts = 60
	}
	if interval <= 0 {
		interval = time.Second
	}
	queryTimeout := interval
	if queryTimeout < time.Second {
		queryTimeout = time.Second
	}
	for attempt := 1; attempt <= attempts; attempt++ {
		qctx, cancel := context.WithTimeout(ctx, queryTimeout)
		ready, err := client.Ready(qctx)
		cancel()
		if err == nil && ready {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval):
		}
	}
	return readyTimeoutError{url: client.BaseURL(), attempts: attempts}
}

// serverProc owns one server subprocess. cmd.Wait is called exactly once, by
// the watcher goroutine; its result is cached so exit can be observed from
// both the poll loop and stop.
type serverProc struct {
	cmd     *exec.Cmd
	waitCh  chan error
	waitErr error
	done    bool
}

func newServerProc(cmd *exec.Cmd) *serverProc {
	p := &serverProc{cmd: cmd, waitCh: make(chan error, 1)}
	go func() { p.waitCh <- cmd.Wait() }()
	return p
}

func (p *serverProc) record(err error) {
	p.waitErr = err
	p.done = true
}

// exited reports whether the process has terminated, without blocking.
func (p *serverProc) exited() (error, bool) {
	if p.done {
		return p.waitErr, true
	}
	select {
	case err := <-p.waitCh:
		p.record(err)
		return err, true
	default:
		return nil, false
	}
}

// stop interrupts the process and waits for it to exit, escalating to a hard
// kill after grace. Safe to call after the process has already exited.
func (p *serverProc) stop(grace time.Duration, log zerolog.Logger) {
	if p.done {
		return
	}
	_ = p.cmd.Process.Signal(syscall.SIGINT)
	select {
	case err := <-p.waitCh:
		p.record(err)
	case <-time.After(grace):
		log.Warn().Int("pid", p.cmd.Process.Pid).Msg("server ignored interrupt, killing")
		_ = p.cmd.Process.Kill()
		p.record(<-p.waitCh)
	}
}

func tail(s string) string {
	if len(s) > stderrTailLimit {
		return s[len(s)-stderrTailLimit:]
	}
	return s
}
