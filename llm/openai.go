package llm

import (
	"context"
	"os"

	"github.com/codechat-dev/codechat/conversation"
	"github.com/codechat-dev/codechat/errors"
	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
)

// OpenAIClient is a client for the OpenAI Chat Completion API. With
// OPENAI_BASE_URL set it also serves any compatible endpoint, including
// the xAI API.
type OpenAIClient struct {
	client *openai.Client
	model  string
}

// NewOpenAIClient creates a new OpenAIClient. It requires the
// OPENAI_API_KEY environment variable to be set and honors
// OPENAI_BASE_URL for custom API endpoints.
func NewOpenAIClient(ctx context.Context, modelName string) (*OpenAIClient, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil, errors.New("OPENAI_API_KEY environment variable not set")
	}

	options := []option.RequestOption{
		option.WithAPIKey(apiKey),
	}
	if baseURL := os.Getenv("OPENAI_BASE_URL"); baseURL != "" {
		options = append(options, option.WithBaseURL(baseURL))
	}

	// The v2 SDK uses functional options for configuration.
	c := openai.NewClient(options...)
	return &OpenAIClient{client: &c, model: modelName}, nil
}

// Chat sends the conversation snapshot to the chat completion endpoint.
func (o *OpenAIClient) Chat(ctx context.Context, turns []conversation.Turn) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(o.model),
		Messages: convertTurnsToOpenAIMessages(turns),
	}

	resp, err := o.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", errors.Mark(errors.Wrapf(err, "failed to send message to OpenAI"), errors.ErrTransport)
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}

// convertTurnsToOpenAIMessages converts conversation turns to OpenAI chat
// messages. The system turn maps to a system message; command results
// become user messages.
func convertTurnsToOpenAIMessages(turns []conversation.Turn) []openai.ChatCompletionMessageParamUnion {
	var msgs []openai.ChatCompletionMessageParamUnion
	for _, t := range turns {
		switch t.Role {
		case conversation.RoleSystem:
			msgs = append(msgs, openai.SystemMessage(t.Text))
		case conversation.RoleAssistant:
			msgs = append(msgs, openai.AssistantMessage(t.Text))
		case conversation.RoleUser, conversation.RoleCommandResult:
			fallthrough
		default:
			msgs = append(msgs, openai.UserMessage(t.Text))
		}
	}
	return msgs
}
