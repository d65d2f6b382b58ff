package llm

import (
	"context"
	"os"

	"github.com/codechat-dev/codechat/conversation"
	"github.com/codechat-dev/codechat/errors"
	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiClient is a client for the Google Gemini API.
type GeminiClient struct {
	model *genai.GenerativeModel
}

// NewGeminiClient creates a new GeminiClient.
// It requires the GEMINI_API_KEY environment variable to be set.
func NewGeminiClient(ctx context.Context, modelName string) (*GeminiClient, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return nil, errors.New("GEMINI_API_KEY environment variable not set")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create genai client")
	}

	return &GeminiClient{model: client.GenerativeModel(modelName)}, nil
}

// Chat sends the conversation snapshot to the Gemini API.
func (g *GeminiClient) Chat(ctx context.Context, turns []conversation.Turn) (string, error) {
	system, rest := splitSystem(turns)
	if system != "" {
		g.model.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(system)},
		}
	}

	history := convertTurnsToGeminiContent(rest)
	if len(history) == 0 {
		return "", errors.New("conversation has no turns to send")
	}

	// The last message is the new prompt; everything before it is history.
	last := history[len(history)-1]
	chatSession := g.model.StartChat()
	chatSession.History = history[:len(history)-1]

	resp, err := chatSession.SendMessage(ctx, last.Parts...)
	if err != nil {
		return "", errors.Mark(errors.Wrapf(err, "failed to send message to Gemini"), errors.ErrTransport)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errors.Mark(errors.New("received an empty response from Gemini"), errors.ErrTransport)
	}

	var text string
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			text += string(t)
		}
	}
	return text, nil
}

// convertTurnsToGeminiContent converts conversation turns to Gemini's
// content format. Gemini only knows "user" and "model" roles, so command
// results ride along as user content.
func convertTurnsToGeminiContent(turns []conversation.Turn) []*genai.Content {
	var contents []*genai.Content
	for _, t := range turns {
		role := "user"
		if t.Role == conversation.RoleAssistant {
			role = "model"
		}
		contents = append(contents, &genai.Content{
			Role:  role,
			Parts: []genai.Part{genai.Text(t.Text)},
		})
	}
	return contents
}
