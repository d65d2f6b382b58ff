package llm

import (
	"testing"

	"github.com/codechat-dev/codechat/conversation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertTurnsToOpenAIMessages(t *testing.T) {
	turns := []conversation.Turn{
		conversation.NewTurn(conversation.RoleSystem, "be helpful"),
		conversation.NewTurn(conversation.RoleUser, "question"),
		conversation.NewTurn(conversation.RoleAssistant, "answer"),
		conversation.NewTurn(conversation.RoleCommandResult, "result"),
	}

	msgs := convertTurnsToOpenAIMessages(turns)
	require.Len(t, msgs, 4)
	assert.NotNil(t, msgs[0].OfSystem)
	assert.NotNil(t, msgs[1].OfUser)
	assert.NotNil(t, msgs[2].OfAssistant)
	// Command results have no native chat role and go through as user.
	assert.NotNil(t, msgs[3].OfUser)
}
