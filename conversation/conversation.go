package conversation

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/codechat-dev/codechat/errors"
)

// Conversation is an append-only turn log with a rolling token budget.
// Index 0 holds the system turn and is pinned; when the budget is exceeded,
// turns are evicted from index 1 onward until the log fits again or only
// the system turn and the newest turn remain. The newest turn is never
// evicted, even if it alone exceeds the budget.
//
// A Conversation is owned by exactly one session and is not safe for
// concurrent use.
type Conversation struct {
	Name  string `json:"name"`
	Turns []Turn `json:"turns"`

	tokenWindow int
	path        string
}

// New creates a conversation seeded with a system turn.
func New(name, systemPrompt string, tokenWindow int) *Conversation {
	return &Conversation{
		Name:        name,
		Turns:       []Turn{NewTurn(RoleSystem, systemPrompt)},
		tokenWindow: tokenWindow,
		path:        conversationPath(name),
	}
}

// Load restores a previously saved conversation from disk.
func Load(name string, tokenWindow int) (*Conversation, error) {
	path := conversationPath(name)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "could not read session file %s", path)
	}

	var c Conversation
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, errors.Wrapf(err, "could not parse session file %s", path)
	}
	if len(c.Turns) == 0 || c.Turns[0].Role != RoleSystem {
		return nil, errors.New("session file %s has no system turn", path)
	}
	c.tokenWindow = tokenWindow
	c.path = path
	c.evict()
	return &c, nil
}

// Save writes the current conversation state to disk.
func (c *Conversation) Save() error {
	if err := os.MkdirAll(filepath.Dir(c.path), 0755); err != nil {
		return errors.Wrapf(err, "could not create session directory")
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.Wrapf(err, "failed to serialize session")
	}
	return os.WriteFile(c.path, data, 0644)
}

// Append adds a turn at the end and evicts from the front if the total
// estimate now exceeds the window. It returns true if the newest turn by
// itself still exceeds the window after eviction; the caller is expected
// to surface that rather than have the store drop it silently.
func (c *Conversation) Append(t Turn) (overBudget bool) {
	c.Turns = append(c.Turns, t)
	c.evict()
	return t.TokenEstimate > c.tokenWindow
}

// Snapshot returns the ordered turns currently eligible to be sent to the
// model backend. The returned slice is a copy; mutating it does not affect
// the store.
func (c *Conversation) Snapshot() []Turn {
	out := make([]Turn, len(c.Turns))
	copy(out, c.Turns)
	return out
}

// Reset clears all turns and installs a fresh system turn.
func (c *Conversation) Reset(systemPrompt string) {
	c.Turns = []Turn{NewTurn(RoleSystem, systemPrompt)}
}

// TotalTokens returns the summed token estimate of all turns.
func (c *Conversation) TotalTokens() int {
	total := 0
	for _, t := range c.Turns {
		total += t.TokenEstimate
	}
	return total
}

// evict drops turns from index 1 until the log fits the window or only the
// pinned system turn and the newest turn are left.
func (c *Conversation) evict() {
	for c.TotalTokens() > c.tokenWindow && len(c.Turns) > 2 {
		c.Turns = append(c.Turns[:1], c.Turns[2:]...)
	}
}

func conversationPath(name string) string {
	return filepath.Join(".codechat", "sessions", fmt.Sprintf("%s.json", name))
}
