package agent

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"github.com/codechat-dev/codechat/command"
	"github.com/codechat-dev/codechat/config"
)

// CandidateState tracks a command candidate through the confirmation
// state machine. Rejected, Skipped, and Completed are terminal.
type CandidateState int

const (
	StateProposed CandidateState = iota
	StateAwaitingConfirmation
	StateRunning
	StateCompleted
	StateRejected
	StateSkipped
)

func (s CandidateState) String() string {
	switch s {
	case StateProposed:
		return "proposed"
	case StateAwaitingConfirmation:
		return "awaiting-confirmation"
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	case StateRejected:
		return "rejected"
	case StateSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// ExecutionResult captures one confirmed execution. It is transient; the
// durable record is the command-result turn built from Render().
type ExecutionResult struct {
	Command   string
	ExitCode  int
	Stdout    string
	Stderr    string
	Duration  time.Duration
	Confirmed bool
	TimedOut  bool
	SpawnErr  error
}

// Render formats the result as the text of a command-result turn, visible
// to the model on the next round.
func (r *ExecutionResult) Render() string {
	var status string
	switch {
	case r.TimedOut:
		status = fmt.Sprintf("timed out after %s", r.Duration.Round(time.Millisecond))
	case r.SpawnErr != nil:
		status = fmt.Sprintf("failed to start: %v", r.SpawnErr)
	default:
		status = fmt.Sprintf("exit code %d in %s", r.ExitCode, r.Duration.Round(time.Millisecond))
	}
	out := fmt.Sprintf("$ %s\n(%s)\n", r.Command, status)
	if r.Stdout != "" {
		out += "stdout:\n" + r.Stdout + "\n"
	}
	if r.Stderr != "" {
		out += "stderr:\n" + r.Stderr + "\n"
	}
	return out
}

// Controller resolves classified candidates: it refuses blocked commands,
// asks the terminal for confirmation on everything else, and runs
// confirmed commands with capped output and a wall-clock timeout.
type Controller struct {
	timeout         time.Duration
	outputCap       int
	autoApproveSafe bool
	shell           string
	io              TerminalIO
}

// NewController builds a controller from the exec section of the config.
func NewController(cfg *config.Config, io TerminalIO) *Controller {
	return &Controller{
		timeout:         cfg.ExecTimeout(),
		outputCap:       cfg.Exec.OutputCapBytes,
		autoApproveSafe: cfg.Exec.AutoApproveSafe,
		shell:           cfg.Exec.Shell,
		io:              io,
	}
}

// Process drives one candidate from Proposed to a terminal state. It
// returns the terminal state and, for Completed, the execution result.
// A blocked or declined candidate never reaches the execution primitive.
func (c *Controller) Process(ctx context.Context, cand command.Candidate) (CandidateState, *ExecutionResult) {
	if cand.Label == command.LabelBlocked {
		c.io.Print(fmt.Sprintf("BLOCKED: %s\nReason: %s\nThis command will not be run.", displayCommand(cand.Raw), cand.Rationale))
		slog.Warn("blocked command refused", "command", cand.Raw, "rationale", cand.Rationale)
		return StateRejected, nil
	}

	confirmed, state := c.confirm(ctx, cand)
	if state == StateSkipped {
		c.io.Print("Command not executed.")
		return StateSkipped, nil
	}

	result := c.run(ctx, cand.Raw)
	result.Confirmed = confirmed
	return StateCompleted, result
}

// confirm implements the AwaitingConfirmation state. Safe commands may be
// auto-approved if configured; everything else defaults to "no". A
// cancelled or interrupted prompt resolves to Skipped.
func (c *Controller) confirm(ctx context.Context, cand command.Candidate) (bool, CandidateState) {
	if cand.Label == command.LabelSafe && c.autoApproveSafe {
		c.io.Print(fmt.Sprintf("Running (%s, auto-approved): %s", cand.Label, displayCommand(cand.Raw)))
		return false, StateRunning
	}

	prompt := fmt.Sprintf("Run this command? [%s] %s\n  %s", cand.Label, cand.Rationale, displayCommand(cand.Raw))
	ok, err := c.io.Confirm(ctx, prompt, false)
	if err != nil || !ok {
		return false, StateSkipped
	}
	return true, StateRunning
}

// displayCommand collapses a command to a single line for prompts and
// refusal messages. Only the display is cleaned; the executed text is
// always the verbatim candidate.
func displayCommand(raw string) string {
	return strings.Join(strings.Fields(raw), " ")
}

// cappedBuffer keeps at most cap bytes and remembers whether it dropped
// anything, so runaway output cannot grow memory without bound.
type cappedBuffer struct {
	buf       bytes.Buffer
	cap       int
	truncated bool
}

func (b *cappedBuffer) Write(p []byte) (int, error) {
	room := b.cap - b.buf.Len()
	if room <= 0 {
		b.truncated = true
		return len(p), nil
	}
	if len(p) > room {
		b.buf.Write(p[:room])
		b.truncated = true
		return len(p), nil
	}
	return b.buf.Write(p)
}

func (b *cappedBuffer) String() string {
	if b.truncated {
		return b.buf.String() + "\n[... output truncated ...]"
	}
	return b.buf.String()
}

// run spawns the command through the configured shell, captures capped
// stdout/stderr, and enforces the wall-clock timeout. Partial output is
// kept even when the process is killed.
func (c *Controller) run(ctx context.Context, raw string) *ExecutionResult {
	execCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	stdout := &cappedBuffer{cap: c.outputCap}
	stderr := &cappedBuffer{cap: c.outputCap}

	cmd := exec.CommandContext(execCtx, c.shell, "-c", raw)
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	// Without a wait delay, a killed shell whose children still hold the
	// output pipes would block Run until every descendant exits.
	cmd.WaitDelay = time.Second

	start := time.Now()
	err := cmd.Run()
	duration := time.Since(start)

	result := &ExecutionResult{
		Command:  raw,
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: duration,
	}

	switch {
	case execCtx.Err() == context.DeadlineExceeded:
		result.TimedOut = true
		result.ExitCode = -1
	case err == nil:
		result.ExitCode = 0
	default:
		if exitErr, ok := err.(*exec.ExitError); ok {
			result.ExitCode = exitErr.ExitCode()
		} else {
			result.SpawnErr = err
			result.ExitCode = -1
		}
	}

	slog.Info("command executed",
		"command", raw,
		"exit_code", result.ExitCode,
		"duration", duration,
		"timed_out", result.TimedOut)
	return result
}
