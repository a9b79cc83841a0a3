// Package runner drives one askcmd invocation: select an adapter, gather
// context, query, confirm and execute.
package runner

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/zen-systems/askcmd/pkg/adapter"
	"github.com/zen-systems/askcmd/pkg/config"
	"github.com/zen-systems/askcmd/pkg/executor"
	"github.com/zen-systems/askcmd/pkg/prompt"
	"github.com/zen-systems/askcmd/pkg/router"
	"github.com/zen-systems/askcmd/pkg/safety"
	"github.com/zen-systems/askcmd/pkg/shellctx"
)

// ErrEmptyCommand is returned when the adapter answers with nothing to run.
var ErrEmptyCommand = errors.New("no command generated")

// Outcome is the terminal state of a successful invocation.
type Outcome int

const (
	// OutcomeNone is returned alongside an error.
	OutcomeNone Outcome = iota
	// OutcomeExecuted means the command ran and exited 0.
	OutcomeExecuted
	// OutcomeDeclined means the user said no; nothing ran.
	OutcomeDeclined
	// OutcomeCommandFailed means the command ran and exited non-zero.
	OutcomeCommandFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeExecuted:
		return "executed"
	case OutcomeDeclined:
		return "declined"
	case OutcomeCommandFailed:
		return "command_failed"
	default:
		return "none"
	}
}

// ExitCode maps the result of Run to a process exit status.
func ExitCode(o Outcome, err error) int {
	if err != nil || o == OutcomeCommandFailed {
		return 1
	}
	return 0
}

// Request is one user invocation. Nil pointers and empty strings fall back to
// configuration.
type Request struct {
	Prompt      string
	Adapter     config.AdapterName
	Model       string
	Temperature *float64
	MaxTokens   *int
	Yes         bool
	Verbose     bool
}

// Factory constructs an adapter with per-invocation overrides applied.
type Factory func(name config.AdapterName, ov adapter.Overrides) (adapter.Adapter, error)

// Gatherer collects the shell context.
type Gatherer interface {
	Gather(ctx context.Context) shellctx.Bundle
}

// Executor runs the generated command.
type Executor interface {
	Run(ctx context.Context, command string) (*executor.Result, error)
}

// Confirmer asks the user whether to run the command.
type Confirmer interface {
	Confirm(question string) (bool, error)
}

// Reporter renders progress and results for the user.
type Reporter interface {
	Status(msg string)
	Fallback(name config.AdapterName)
	Context(b shellctx.Bundle)
	Prompt(prompt string)
	AdapterInUse(name, model string)
	Suggestion(command string)
	Warnings(findings []safety.Finding)
	Executing(command string)
	Success()
	Failure(res *executor.Result)
	Aborted()
}

// Options wires the collaborators of a Runner.
type Options struct {
	Config    *config.Config
	Factory   Factory
	Gatherer  Gatherer
	Executor  Executor
	Confirmer Confirmer
	Reporter  Reporter
	Logger    *zap.Logger
}

// Runner executes invocations.
type Runner struct {
	opts   Options
	logger *zap.Logger
}

// New validates opts and returns a Runner.
func New(opts Options) (*Runner, error) {
	switch {
	case opts.Config == nil:
		return nil, fmt.Errorf("config is required")
	case opts.Factory == nil:
		return nil, fmt.Errorf("adapter factory is required")
	case opts.Gatherer == nil:
		return nil, fmt.Errorf("context gatherer is required")
	case opts.Executor == nil:
		return nil, fmt.Errorf("executor is required")
	case opts.Confirmer == nil:
		return nil, fmt.Errorf("confirmer is required")
	case opts.Reporter == nil:
		return nil, fmt.Errorf("reporter is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{opts: opts, logger: logger}, nil
}

// Run executes req. A non-nil error means the invocation failed before the
// command could run (or while starting it). A command that runs and exits
// non-zero is reported as OutcomeCommandFailed with a nil error.
func (r *Runner) Run(ctx context.Context, req Request) (Outcome, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return OutcomeNone, fmt.Errorf("prompt is required")
	}
	if err := validateOverrides(req); err != nil {
		return OutcomeNone, err
	}

	requested := r.opts.Config.DefaultAdapter
	if req.Adapter != "" {
		name, err := config.ParseAdapterName(string(req.Adapter))
		if err != nil {
			return OutcomeNone, err
		}
		requested = name
	}

	sel, err := r.selector(req, requested).Select(ctx, requested)
	if err != nil {
		return OutcomeNone, err
	}
	if sel.FallbackUsed {
		r.opts.Reporter.Fallback(sel.Name)
	}

	rep := r.opts.Reporter
	if req.Verbose {
		rep.Status("Gathering system context...")
	}
	bundle := r.opts.Gatherer.Gather(ctx)
	if req.Verbose {
		rep.Context(bundle)
		rep.Status("Constructing optimized prompt...")
	}
	full := prompt.Build(req.Prompt, bundle)
	if req.Verbose {
		rep.Prompt(full)
		rep.AdapterInUse(sel.Adapter.Name(), sel.Adapter.Model())
	}

	r.logger.Debug("querying adapter",
		zap.String("adapter", sel.Adapter.Name()),
		zap.String("model", sel.Adapter.Model()),
		zap.Bool("fallback", sel.FallbackUsed))

	command, err := sel.Adapter.Query(ctx, full)
	if err != nil {
		return OutcomeNone, err
	}

	rep.Suggestion(command)
	if strings.TrimSpace(command) == "" {
		return OutcomeNone, ErrEmptyCommand
	}

	if !req.Yes {
		if findings := safety.Check(command); len(findings) > 0 {
			rep.Warnings(findings)
		}
		ok, err := r.opts.Confirmer.Confirm(fmt.Sprintf("Execute: %s?", command))
		if err != nil {
			return OutcomeNone, fmt.Errorf("confirmation failed: %w", err)
		}
		if !ok {
			rep.Aborted()
			return OutcomeDeclined, nil
		}
	}

	rep.Executing(command)
	res, err := r.opts.Executor.Run(ctx, command)
	if err != nil {
		return OutcomeNone, fmt.Errorf("executing command: %w", err)
	}

	r.logger.Debug("command finished",
		zap.Int("exit_code", res.ExitCode),
		zap.Duration("duration", res.Duration))

	if !res.Success() {
		rep.Failure(res)
		return OutcomeCommandFailed, nil
	}
	rep.Success()
	return OutcomeExecuted, nil
}

// selector binds the request overrides to the adapter factory. A model
// override belongs to the requested adapter only; a fallback keeps its
// configured model.
func (r *Runner) selector(req Request, requested config.AdapterName) *router.Selector {
	construct := func(_ context.Context, name config.AdapterName) (adapter.Adapter, error) {
		ov := adapter.Overrides{
			Temperature: req.Temperature,
			MaxTokens:   req.MaxTokens,
		}
		if name == requested {
			ov.Model = req.Model
		}
		return r.opts.Factory(name, ov)
	}
	return router.NewSelector(r.opts.Config, construct, router.WithLogger(r.logger))
}

func validateOverrides(req Request) error {
	if req.Temperature != nil && (*req.Temperature < 0 || *req.Temperature > 2) {
		return fmt.Errorf("temperature must be between 0 and 2, got %g", *req.Temperature)
	}
	if req.MaxTokens != nil && *req.MaxTokens <= 0 {
		return fmt.Errorf("max tokens must be positive, got %d", *req.MaxTokens)
	}
	return nil
}
