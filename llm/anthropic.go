package llm

import (
	"context"
	"os"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/codechat-dev/codechat/conversation"
	"github.com/codechat-dev/codechat/errors"
)

// AnthropicClient is a client for the Anthropic API.
type AnthropicClient struct {
	client *anthropic.Client
	model  string
}

// NewAnthropicClient creates a new AnthropicClient.
// It requires the ANTHROPIC_API_KEY environment variable to be set.
func NewAnthropicClient(ctx context.Context, modelName string) (*AnthropicClient, error) {
	apiKey := os.Getenv("ANTHROPIC_API_KEY")
	if apiKey == "" {
		return nil, errors.New("ANTHROPIC_API_KEY environment variable not set")
	}

	client := anthropic.NewClient(
		option.WithAPIKey(apiKey),
	)

	return &AnthropicClient{
		client: &client,
		model:  modelName,
	}, nil
}

// Chat sends the conversation snapshot to the Anthropic API and returns
// the assistant's text.
func (a *AnthropicClient) Chat(ctx context.Context, turns []conversation.Turn) (string, error) {
	system, rest := splitSystem(turns)

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(a.model),
		MaxTokens: 4096,
		Messages:  convertTurnsToAnthropicMessages(rest),
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}

	resp, err := a.client.Messages.New(ctx, params)
	if err != nil {
		return "", errors.Mark(errors.Wrapf(err, "failed to send message to Anthropic"), errors.ErrTransport)
	}

	var text string
	for _, content := range resp.Content {
		if block, ok := content.AsAny().(anthropic.TextBlock); ok {
			text += block.Text
		}
	}
	return text, nil
}

// convertTurnsToAnthropicMessages converts conversation turns to
// Anthropic's message format. Command results become user messages since
// the API has no role for them.
func convertTurnsToAnthropicMessages(turns []conversation.Turn) []anthropic.MessageParam {
	var msgs []anthropic.MessageParam
	for _, t := range turns {
		switch t.Role {
		case conversation.RoleAssistant:
			msgs = append(msgs, anthropic.MessageParam{
				Role: anthropic.MessageParamRoleAssistant,
				Content: []anthropic.ContentBlockParamUnion{{
					OfText: &anthropic.TextBlockParam{Text: t.Text},
				}},
			})
		case conversation.RoleUser, conversation.RoleCommandResult:
			msgs = append(msgs, anthropic.NewUserMessage(
				anthropic.NewTextBlock(t.Text),
			))
		}
	}
	return msgs
}
