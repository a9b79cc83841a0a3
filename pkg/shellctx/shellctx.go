// Package shellctx collects the ambient facts about the local environment
// that are embedded in the prompt: working directory, directory listing,
// git status and OS identification.
package shellctx

import (
	"context"
	"os"
	"os/exec"
	"runtime"
	"time"

	"go.uber.org/zap"
)

// Placeholders used when a probe cannot produce a value.
const (
	UnknownDirectory = "Unknown directory"
	UnknownSystem    = "Unknown system"
)

// systemInfoLimit bounds the Windows systeminfo output, which is long.
const systemInfoLimit = 500

// DefaultProbeTimeout bounds each probe command.
const DefaultProbeTimeout = 5 * time.Second

// Bundle holds the gathered context. Every field is best-effort.
type Bundle struct {
	Cwd    string `json:"cwd" yaml:"cwd"`
	Files  string `json:"files" yaml:"files"`
	Git    string `json:"git" yaml:"git"`
	System string `json:"system" yaml:"system"`
}

// Runner runs a probe command and returns its standard output.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (string, error)
}

// ExecRunner runs probes as local subprocesses.
type ExecRunner struct{}

// Run executes the command and waits for it, returning stdout. Output is
// returned even when the command exits non-zero.
func (ExecRunner) Run(ctx context.Context, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	out, err := cmd.Output()
	return string(out), err
}

// Gatherer collects a Bundle.
type Gatherer struct {
	runner  Runner
	getwd   func() (string, error)
	goos    string
	timeout time.Duration
	logger  *zap.Logger
}

// Option configures a Gatherer.
type Option func(*Gatherer)

// WithRunner replaces the subprocess runner.
func WithRunner(r Runner) Option {
	return func(g *Gatherer) {
		g.runner = r
	}
}

// WithGetwd replaces the working directory lookup.
func WithGetwd(fn func() (string, error)) Option {
	return func(g *Gatherer) {
		g.getwd = fn
	}
}

// WithGOOS overrides the host OS family used to pick the system probe.
func WithGOOS(goos string) Option {
	return func(g *Gatherer) {
		g.goos = goos
	}
}

// WithProbeTimeout sets the per-probe timeout.
func WithProbeTimeout(d time.Duration) Option {
	return func(g *Gatherer) {
		g.timeout = d
	}
}

// WithLogger sets the logger for probe failures (debug level).
func WithLogger(logger *zap.Logger) Option {
	return func(g *Gatherer) {
		g.logger = logger
	}
}

// NewGatherer creates a Gatherer for the current host.
func NewGatherer(opts ...Option) *Gatherer {
	g := &Gatherer{
		runner:  ExecRunner{},
		getwd:   os.Getwd,
		goos:    runtime.GOOS,
		timeout: DefaultProbeTimeout,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Gather runs every probe. It never fails: a failing probe only blanks its
// own field (or sets its placeholder).
func (g *Gatherer) Gather(ctx context.Context) Bundle {
	return Bundle{
		Cwd:    g.cwd(),
		Files:  g.files(ctx),
		Git:    g.gitStatus(ctx),
		System: g.systemInfo(ctx),
	}
}

func (g *Gatherer) cwd() string {
	dir, err := g.getwd()
	if err != nil {
		g.logger.Debug("cwd probe failed", zap.Error(err))
		return UnknownDirectory
	}
	return dir
}

func (g *Gatherer) files(ctx context.Context) string {
	out, err := g.probe(ctx, "ls", "-la")
	if err != nil {
		// ls exits non-zero when some entries are unreadable but still
		// lists the rest.
		g.logger.Debug("files probe failed", zap.Error(err))
	}
	return out
}

func (g *Gatherer) gitStatus(ctx context.Context) string {
	out, err := g.probe(ctx, "git", "status", "--short")
	if err != nil {
		// Outside a repository git exits 128 and prints nothing on stdout.
		g.logger.Debug("git probe failed", zap.Error(err))
		return ""
	}
	return out
}

func (g *Gatherer) systemInfo(ctx context.Context) string {
	if g.goos == "windows" {
		out, err := g.probe(ctx, "systeminfo")
		if err != nil {
			g.logger.Debug("system probe failed", zap.Error(err))
			return UnknownSystem
		}
		return truncate(out, systemInfoLimit)
	}

	out, err := g.probe(ctx, "uname", "-a")
	if err != nil {
		g.logger.Debug("system probe failed", zap.Error(err))
		return UnknownSystem
	}
	return out
}

func (g *Gatherer) probe(ctx context.Context, name string, args ...string) (string, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}
	return g.runner.Run(ctx, name, args...)
}

// truncate keeps the first n runes of s.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
