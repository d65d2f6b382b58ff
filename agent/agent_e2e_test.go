package agent_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/codechat-dev/codechat/agent"
	"github.com/codechat-dev/codechat/agent/terminal"
	"github.com/codechat-dev/codechat/config"
	"github.com/codechat-dev/codechat/conversation"
	"github.com/codechat-dev/codechat/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newSessionAgent wires a full agent over a scripted model and a terminal
// fed from a string, the same shape as the production wiring in
// cmd/codechat.
func newSessionAgent(t *testing.T, responses []string, input string) (*agent.Agent, *llm.ScriptedClient, *bytes.Buffer) {
	t.Helper()
	t.Chdir(t.TempDir())

	cfg := config.Default()
	cfg.SystemPrompt = "test system prompt"

	client := &llm.ScriptedClient{Responses: responses}
	out := &bytes.Buffer{}
	term := terminal.New(strings.NewReader(input), out)
	conv := conversation.New("e2e", cfg.SystemPrompt, cfg.TokenWindow)
	return agent.New(cfg, conv, client, term), client, out
}

func TestSessionBlockedCommandIsRefusedWithoutPrompt(t *testing.T) {
	a, _, out := newSessionAgent(t,
		[]string{"Sure, just run:\n```bash\nrm -rf /\n```"},
		"/quit\n")

	require.NoError(t, a.Run(context.Background(), "how do I free disk space?"))

	text := out.String()
	assert.Contains(t, text, "BLOCKED")
	assert.NotContains(t, text, "Run this command?", "a blocked command must never reach confirmation")

	// The session survives the refusal: the assistant turn is recorded and
	// the loop kept going to the next prompt.
	turns := a.Conv.Snapshot()
	require.Len(t, turns, 3)
	assert.Equal(t, conversation.RoleAssistant, turns[2].Role)
}

func TestSessionConfirmedCommandFeedsResultBack(t *testing.T) {
	a, client, out := newSessionAgent(t,
		[]string{
			"Let me check:\n```bash\necho session-probe\n```",
			"The output looks fine.",
		},
		"y\nand now?\n/quit\n")

	require.NoError(t, a.Run(context.Background(), "what is in this directory?"))

	assert.Contains(t, out.String(), "Run this command?")

	turns := a.Conv.Snapshot()
	// system, user, assistant, command-result, user, assistant
	require.Len(t, turns, 6)
	assert.Equal(t, conversation.RoleCommandResult, turns[3].Role)
	assert.Contains(t, turns[3].Text, "$ echo session-probe")
	assert.Contains(t, turns[3].Text, "exit code 0")
	assert.Contains(t, turns[3].Text, "session-probe")

	// The second model call sees the command result.
	require.Len(t, client.Calls, 2)
	var sawResult bool
	for _, turn := range client.Calls[1] {
		if turn.Role == conversation.RoleCommandResult {
			sawResult = true
		}
	}
	assert.True(t, sawResult)
}

func TestSessionDeclinedCommandLeavesNoResultTurn(t *testing.T) {
	a, _, out := newSessionAgent(t,
		[]string{"Try:\n```bash\nmkdir scratch\n```"},
		"n\n/quit\n")

	require.NoError(t, a.Run(context.Background(), "set up a scratch dir"))

	assert.Contains(t, out.String(), "Command not executed.")
	for _, turn := range a.Conv.Snapshot() {
		assert.NotEqual(t, conversation.RoleCommandResult, turn.Role)
	}
}

func TestSessionResetClearsConversation(t *testing.T) {
	a, _, out := newSessionAgent(t,
		[]string{"Plain answer, no commands."},
		"/reset\n/quit\n")

	require.NoError(t, a.Run(context.Background(), "hello"))

	assert.Contains(t, out.String(), "Conversation cleared.")
	turns := a.Conv.Snapshot()
	require.Len(t, turns, 1)
	assert.Equal(t, conversation.RoleSystem, turns[0].Role)
	assert.Equal(t, "test system prompt", turns[0].Text)
}

func TestSessionModelErrorKeepsLoopAlive(t *testing.T) {
	// An exhausted scripted client fails the model call; the loop must
	// surface the error and keep reading input.
	a, _, out := newSessionAgent(t, nil, "/quit\n")

	require.NoError(t, a.Run(context.Background(), "anything"))

	assert.Contains(t, out.String(), "Model error:")
	assert.Contains(t, out.String(), "/retry")
	// The failed round leaves the user turn in place so /retry can resend it.
	turns := a.Conv.Snapshot()
	require.Len(t, turns, 2)
	assert.Equal(t, conversation.RoleUser, turns[1].Role)
}

func TestSessionEndsOnEOF(t *testing.T) {
	a, _, _ := newSessionAgent(t, nil, "")
	require.NoError(t, a.Run(context.Background(), ""))
}

func TestLoadContextAppendsProjectFiles(t *testing.T) {
	a, _, out := newSessionAgent(t, nil, "")

	dir := t.TempDir()
	require.NoError(t, writeTestFile(dir, "notes.md", "remember the context"))

	require.NoError(t, a.LoadContext([]string{dir}))

	assert.Contains(t, out.String(), "1 file(s) included")
	turns := a.Conv.Snapshot()
	require.Len(t, turns, 2)
	assert.Equal(t, conversation.RoleUser, turns[1].Role)
	assert.Contains(t, turns[1].Text, "Project context:")
	assert.Contains(t, turns[1].Text, "remember the context")
}

func writeTestFile(dir, name, content string) error {
	return os.WriteFile(filepath.Join(dir, name), []byte(content), 0644)
}

func TestLoadContextMissingPath(t *testing.T) {
	a, _, _ := newSessionAgent(t, nil, "")
	assert.Error(t, a.LoadContext([]string{"/no/such/path"}))
}
