package conversation

import (
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Role identifies who produced a turn.
type Role string

const (
	RoleSystem        Role = "system"
	RoleUser          Role = "user"
	RoleAssistant     Role = "assistant"
	RoleCommandResult Role = "command-result"
)

// Turn is one entry in a conversation. Turns are immutable once appended;
// the store only ever drops whole turns, never edits them.
type Turn struct {
	ID            string    `json:"id"`
	Role          Role      `json:"role"`
	Text          string    `json:"text"`
	Timestamp     time.Time `json:"timestamp"`
	TokenEstimate int       `json:"token_estimate"`
}

// NewTurn builds a turn for the given role and text, stamping it with a
// fresh ID and the current time.
func NewTurn(role Role, text string) Turn {
	return Turn{
		ID:            uuid.NewString(),
		Role:          role,
		Text:          text,
		Timestamp:     time.Now(),
		TokenEstimate: EstimateTokens(text),
	}
}

// EstimateTokens returns a conservative token count estimate for text.
//
// This is not a tokenizer; it only feeds the eviction threshold, so it
// deliberately over-estimates. Most BPE tokenizers land around 3-4 chars
// per token for English-ish text, so bytes/3 is a decent bound; runes/2
// guards against undercounting short mostly-ASCII tokens.
func EstimateTokens(text string) int {
	if text == "" {
		return 0
	}
	byBytes := len(text) / 3
	byRunes := utf8.RuneCountInString(text) / 2
	if byBytes < byRunes {
		return byRunes
	}
	return byBytes
}
