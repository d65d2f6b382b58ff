package agent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/codechat-dev/codechat/command"
	"github.com/codechat-dev/codechat/config"
	"github.com/codechat-dev/codechat/conversation"
	"github.com/codechat-dev/codechat/errors"
	"github.com/codechat-dev/codechat/fscontext"
	"github.com/codechat-dev/codechat/llm"
)

// ErrInterrupted is returned by TerminalIO implementations when the user
// cancels an in-flight prompt. A confirmation that resolves to
// ErrInterrupted skips the candidate without running anything.
var ErrInterrupted = errors.New("interrupted")

// TerminalIO is the injectable terminal capability. The session suspends
// on its methods; each must honor context cancellation.
type TerminalIO interface {
	ReadLine(ctx context.Context) (string, error)
	Print(text string)
	Confirm(ctx context.Context, prompt string, def bool) (bool, error)
}

// Agent owns one session: its conversation, its context block, and the
// command execution pathway. A single request/response/execution cycle
// runs at a time; nothing here is shared across sessions.
type Agent struct {
	Config     *config.Config
	Conv       *conversation.Conversation
	Client     llm.Client
	IO         TerminalIO
	Classifier *command.Classifier
	Controller *Controller

	assembler *fscontext.Assembler
}

// New creates an agent around an existing conversation.
func New(cfg *config.Config, conv *conversation.Conversation, client llm.Client, io TerminalIO) *Agent {
	return &Agent{
		Config:     cfg,
		Conv:       conv,
		Client:     client,
		IO:         io,
		Classifier: command.NewClassifier(cfg.Safety),
		Controller: NewController(cfg, io),
		assembler: fscontext.New(
			cfg.Context.BudgetBytes,
			cfg.Context.PerFileCapBytes,
			cfg.Context.SkipGlobs,
			cfg.Context.ReadConcurrency,
		),
	}
}

// LoadContext assembles the given paths into a context block and appends
// it to the conversation as a user turn. A missing path is an error; an
// unreadable entry only produces an omission note.
func (a *Agent) LoadContext(paths []string) error {
	block, err := a.assembler.Assemble(paths)
	if err != nil {
		return err
	}

	rendered := block.Render()
	a.IO.Print(fmt.Sprintf("Context: %d file(s) included, %d omitted, %d unreadable, %d bytes",
		block.Included(), block.Omitted, len(block.Unreadable), len(rendered)))

	if rendered == "" {
		return nil
	}
	turn := conversation.NewTurn(conversation.RoleUser, "Project context:\n\n"+rendered)
	if a.Conv.Append(turn) {
		a.IO.Print("Warning: context exceeds the conversation window and may be cut short.")
	}
	slog.Debug("context loaded", "files", block.Included(), "omitted", block.Omitted, "bytes", len(rendered))
	return nil
}

// Run drives the interactive loop until EOF, /quit, or cancellation.
func (a *Agent) Run(ctx context.Context, initialPrompt string) error {
	if initialPrompt != "" {
		a.processTurn(ctx, initialPrompt)
	}

	for {
		a.IO.Print("You: ")
		input, err := a.IO.ReadLine(ctx)
		if err != nil {
			if errors.Is(err, ErrInterrupted) || ctx.Err() != nil {
				return nil
			}
			// EOF ends the session.
			return nil
		}

		input = strings.TrimSpace(input)
		switch {
		case input == "":
			continue
		case input == "/quit" || input == "/exit":
			return nil
		case input == "/reset":
			a.Conv.Reset(a.Config.SystemPrompt)
			a.IO.Print("Conversation cleared.")
			continue
		case input == "/retry":
			// Retry the model call for the turn that last failed; the user
			// turn is already in the conversation.
			a.converse(ctx)
			continue
		}

		a.processTurn(ctx, input)

		if err := a.Conv.Save(); err != nil {
			slog.Warn("failed to save session", "error", err)
		}
	}
}

// processTurn appends the user's input and runs one model round. No error
// in normal operation terminates the session.
func (a *Agent) processTurn(ctx context.Context, input string) {
	if a.Conv.Append(conversation.NewTurn(conversation.RoleUser, input)) {
		a.IO.Print("Warning: input exceeds the conversation window and may be cut short.")
	}
	a.converse(ctx)
}

// converse sends the current snapshot to the model backend, then extracts,
// classifies, and resolves any command candidates in the response.
func (a *Agent) converse(ctx context.Context) {
	response, err := a.Client.Chat(ctx, a.Conv.Snapshot())
	if err != nil {
		if ctx.Err() != nil {
			// In-flight call abandoned; response discarded, no turn appended.
			return
		}
		slog.Error("model call failed", "error", err)
		a.IO.Print(fmt.Sprintf("Model error: %v\nType /retry to send the turn again.", err))
		return
	}

	turn := conversation.NewTurn(conversation.RoleAssistant, response)
	a.Conv.Append(turn)
	a.IO.Print("Assistant: " + response)

	candidates := a.Classifier.ClassifyCandidates(turn.ID, response)
	for _, cand := range candidates {
		if ctx.Err() != nil {
			return
		}
		state, result := a.Controller.Process(ctx, cand)
		slog.Debug("candidate resolved", "command", cand.Raw, "label", cand.Label, "state", state)

		if state == StateCompleted && result != nil {
			resultTurn := conversation.NewTurn(conversation.RoleCommandResult, result.Render())
			if a.Conv.Append(resultTurn) {
				a.IO.Print("Warning: command output exceeds the conversation window and may be cut short.")
			}
		}
	}
}
