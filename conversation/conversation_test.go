package conversation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEstimateTokens(t *testing.T) {
	assert.Equal(t, 0, EstimateTokens(""))
	// ASCII text: runes/2 is the larger bound.
	text := strings.Repeat("a", 30)
	assert.Equal(t, 15, EstimateTokens(text))
	// Multibyte text: bytes/3 dominates.
	cjk := strings.Repeat("你好", 10) // 60 bytes, 20 runes
	assert.Equal(t, 20, EstimateTokens(cjk))
}

func TestAppendKeepsSystemTurnPinned(t *testing.T) {
	c := New("test", "system prompt", 100)

	for i := 0; i < 50; i++ {
		c.Append(NewTurn(RoleUser, strings.Repeat("x", 60)))
	}

	require.NotEmpty(t, c.Turns)
	assert.Equal(t, RoleSystem, c.Turns[0].Role)
	assert.Equal(t, "system prompt", c.Turns[0].Text)
}

func TestAppendEvictsOldestFirst(t *testing.T) {
	c := New("test", "sys", 60)

	first := NewTurn(RoleUser, strings.Repeat("a", 90))
	second := NewTurn(RoleAssistant, strings.Repeat("b", 90))
	third := NewTurn(RoleUser, strings.Repeat("c", 90))

	c.Append(first)
	c.Append(second)
	c.Append(third)

	// Only the pinned system turn and the newest turn survive.
	require.Len(t, c.Turns, 2)
	assert.Equal(t, RoleSystem, c.Turns[0].Role)
	assert.Equal(t, third.ID, c.Turns[1].ID)
}

func TestAppendNeverEvictsNewestTurn(t *testing.T) {
	c := New("test", "sys", 10)

	huge := NewTurn(RoleUser, strings.Repeat("z", 1000))
	overBudget := c.Append(huge)

	assert.True(t, overBudget, "a turn larger than the window must be flagged")
	require.Len(t, c.Turns, 2)
	assert.Equal(t, huge.ID, c.Turns[1].ID)
}

func TestTotalStaysWithinWindow(t *testing.T) {
	window := 200
	c := New("test", "sys", window)

	for i := 0; i < 30; i++ {
		c.Append(NewTurn(RoleUser, strings.Repeat("w", 50)))
		// The budget may only be exceeded when the newest turn alone
		// exceeds it, which these small turns never do.
		assert.LessOrEqual(t, c.TotalTokens(), window)
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	c := New("test", "sys", 1000)
	c.Append(NewTurn(RoleUser, "hello"))

	snap := c.Snapshot()
	require.Len(t, snap, 2)
	snap[0].Text = "mutated"
	assert.Equal(t, "sys", c.Turns[0].Text)
}

func TestReset(t *testing.T) {
	c := New("test", "old sys", 1000)
	c.Append(NewTurn(RoleUser, "hello"))
	c.Append(NewTurn(RoleAssistant, "hi"))

	c.Reset("new sys")

	require.Len(t, c.Turns, 1)
	assert.Equal(t, RoleSystem, c.Turns[0].Role)
	assert.Equal(t, "new sys", c.Turns[0].Text)
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	t.Chdir(t.TempDir())

	c := New("roundtrip", "sys", 1000)
	c.Append(NewTurn(RoleUser, "question"))
	c.Append(NewTurn(RoleCommandResult, "$ ls\n(exit code 0 in 1ms)\n"))
	require.NoError(t, c.Save())

	loaded, err := Load("roundtrip", 1000)
	require.NoError(t, err)
	require.Len(t, loaded.Turns, 3)
	assert.Equal(t, c.Turns[1].ID, loaded.Turns[1].ID)
	assert.Equal(t, RoleCommandResult, loaded.Turns[2].Role)
}

func TestLoadMissingSession(t *testing.T) {
	t.Chdir(t.TempDir())

	_, err := Load("no-such-session", 1000)
	assert.Error(t, err)
}
