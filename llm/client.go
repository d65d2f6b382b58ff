package llm

import (
	"context"

	"github.com/codechat-dev/codechat/conversation"
	"github.com/codechat-dev/codechat/errors"
)

// Client is the interface for the model backend: it receives a conversation
// snapshot and returns the assistant's text. Implementations wrap transport
// failures with errors.ErrTransport so the session loop can surface them
// without appending a turn.
type Client interface {
	Chat(ctx context.Context, turns []conversation.Turn) (string, error)
}

// splitSystem separates the system prompt from the chat turns. Provider
// APIs take the system prompt out of band; command-result turns are
// presented to the model as user messages since no provider has a native
// role for them.
func splitSystem(turns []conversation.Turn) (system string, rest []conversation.Turn) {
	for _, t := range turns {
		if t.Role == conversation.RoleSystem {
			system = t.Text
			continue
		}
		rest = append(rest, t)
	}
	return system, rest
}

// ScriptedClient replays a fixed sequence of responses. Used in tests and
// as the fallback when no provider is configured.
type ScriptedClient struct {
	Responses []string
	Calls     [][]conversation.Turn

	next int
}

func (s *ScriptedClient) Chat(ctx context.Context, turns []conversation.Turn) (string, error) {
	s.Calls = append(s.Calls, turns)
	if s.next >= len(s.Responses) {
		return "", errors.Mark(errors.New("scripted client has no response left"), errors.ErrTransport)
	}
	resp := s.Responses[s.next]
	s.next++
	return resp, nil
}
