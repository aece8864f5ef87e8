// Package hooks runs lifecycle commands around generation. Hooks
// execute strictly sequentially in declaration order, because later
// hooks may depend on side effects of earlier ones. Each hook is a
// subprocess with a merged environment, captured output, and an
// enforced timeout that terminates the process.
package hooks

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/arthur-debert/stencil/pkg/errors"
	"github.com/arthur-debert/stencil/pkg/logging"
	"github.com/arthur-debert/stencil/pkg/types"
)

// DefaultTimeout bounds a hook that declares no timeout of its own
const DefaultTimeout = 5 * time.Minute

// Context is the per-call execution context for a phase
type Context struct {
	// Dir is the default working directory, usually the destination
	Dir string

	// Env is injected between the process environment and each hook's
	// own env block
	Env map[string]string
}

// Result reports one executed hook
type Result struct {
	Phase    types.HookPhase `json:"phase"`
	Command  string          `json:"command"`
	Success  bool            `json:"success"`
	ExitCode int             `json:"exitCode"`
	Stdout   string          `json:"stdout,omitempty"`
	Stderr   string          `json:"stderr,omitempty"`
	Duration time.Duration   `json:"duration"`
	TimedOut bool            `json:"timedOut,omitempty"`
	Err      error           `json:"-"`
}

// Summary aggregates the results of a phase
type Summary struct {
	Total     int           `json:"total"`
	Succeeded int           `json:"succeeded"`
	Failed    int           `json:"failed"`
	Duration  time.Duration `json:"duration"`
}

// Runner spawns one command and reports its captured output and exit
// code. The production runner shells out; tests substitute their own.
type Runner func(ctx context.Context, command, dir string, env []string) (stdout, stderr string, exitCode int, err error)

// Executor runs hook phases
type Executor struct {
	defaultTimeout time.Duration
	baseEnv        []string
	logger         zerolog.Logger
	run            Runner
}

// NewExecutor creates an executor. A non-positive timeout falls back
// to DefaultTimeout; a nil baseEnv falls back to the process
// environment.
func NewExecutor(defaultTimeout time.Duration, baseEnv []string) *Executor {
	if defaultTimeout <= 0 {
		defaultTimeout = DefaultTimeout
	}
	if baseEnv == nil {
		baseEnv = processEnv()
	}
	return &Executor{
		defaultTimeout: defaultTimeout,
		baseEnv:        baseEnv,
		logger:         logging.GetLogger("hooks"),
		run:            runShell,
	}
}

// SetRunner replaces the subprocess runner, letting tests avoid
// spawning real processes.
func (e *Executor) SetRunner(r Runner) {
	e.run = r
}

// ExecutePhase filters specs to the requested phase and runs them
// sequentially in declaration order. A failure with ContinueOnError is
// recorded and the loop continues; a failure without it stops the
// phase, and the already collected results are returned alongside the
// error so callers keep what did run.
func (e *Executor) ExecutePhase(ctx context.Context, specs []types.HookSpec, phase types.HookPhase, hctx Context) ([]Result, error) {
	var results []Result

	for _, spec := range specs {
		if spec.Phase != phase {
			continue
		}

		res := e.execute(ctx, spec, hctx)
		results = append(results, res)

		if !res.Success && !spec.ContinueOnError {
			return results, errors.Wrapf(res.Err, errors.ErrExecutionFailure,
				"hook %q failed in phase %s", spec.Command, phase)
		}
	}

	return results, nil
}

// execute runs one hook
func (e *Executor) execute(ctx context.Context, spec types.HookSpec, hctx Context) Result {
	res := Result{Phase: spec.Phase, Command: spec.Command}

	timeout := e.defaultTimeout
	if spec.Timeout > 0 {
		timeout = time.Duration(spec.Timeout) * time.Second
	}

	dir := hctx.Dir
	if spec.Cwd != "" {
		dir = spec.Cwd
	}

	env := mergeEnv(e.baseEnv, hctx.Env, spec.Env)

	e.logger.Info().
		Str("phase", string(spec.Phase)).
		Str("command", spec.Command).
		Str("dir", dir).
		Dur("timeout", timeout).
		Msg("executing hook")

	tctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	stdout, stderr, exitCode, err := e.run(tctx, spec.Command, dir, env)
	res.Duration = time.Since(start)
	res.Stdout = stdout
	res.Stderr = stderr
	res.ExitCode = exitCode

	if tctx.Err() == context.DeadlineExceeded {
		res.TimedOut = true
		res.Err = errors.Newf(errors.ErrExecutionFailure,
			"hook %q timed out after %s", spec.Command, timeout)
		e.logger.Warn().
			Str("command", spec.Command).
			Dur("timeout", timeout).
			Msg("hook timed out")
		return res
	}

	if err != nil {
		res.Err = errors.Wrapf(err, errors.ErrExecutionFailure, "hook %q failed", spec.Command)
		e.logger.Warn().
			Err(err).
			Str("command", spec.Command).
			Int("exitCode", exitCode).
			Str("stderr", stderr).
			Msg("hook failed")
		return res
	}

	res.Success = true
	e.logger.Debug().
		Str("command", spec.Command).
		Dur("duration", res.Duration).
		Msg("hook succeeded")
	return res
}

// Summarize reports total, succeeded and failed counts plus the summed
// duration of a result set.
func Summarize(results []Result) Summary {
	s := Summary{Total: len(results)}
	for _, r := range results {
		if r.Success {
			s.Succeeded++
		} else {
			s.Failed++
		}
		s.Duration += r.Duration
	}
	return s
}

// mergeEnv layers environments: process env, then context env, then
// hook env. Later entries win because the OS exec layer keeps the last
// value for a duplicated key.
func mergeEnv(base []string, layers ...map[string]string) []string {
	env := append([]string(nil), base...)
	for _, layer := range layers {
		for k, v := range layer {
			env = append(env, k+"="+v)
		}
	}
	return env
}
