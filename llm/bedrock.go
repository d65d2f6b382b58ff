package llm

import (
	"context"
	"encoding/json"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/codechat-dev/codechat/conversation"
	"github.com/codechat-dev/codechat/errors"
)

// BedrockClient is a client for Anthropic models hosted on AWS Bedrock.
type BedrockClient struct {
	client  *bedrockruntime.Client
	modelID string
	region  string
}

// NewBedrockClient creates a new BedrockClient.
// It requires AWS credentials to be configured in the environment.
func NewBedrockClient(ctx context.Context, modelID string) (*BedrockClient, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load AWS config")
	}

	client := bedrockruntime.NewFromConfig(cfg)

	region := cfg.Region
	if region == "" {
		region = os.Getenv("AWS_DEFAULT_REGION")
	}
	if region == "" {
		region = os.Getenv("AWS_REGION")
	}
	if region == "" {
		region = "us-east-1"
	}

	return &BedrockClient{
		client:  client,
		modelID: modelID,
		region:  region,
	}, nil
}

// Chat sends the conversation snapshot to the model via AWS Bedrock.
func (b *BedrockClient) Chat(ctx context.Context, turns []conversation.Turn) (string, error) {
	system, rest := splitSystem(turns)

	requestBody, err := createBedrockRequest(rest, system)
	if err != nil {
		return "", errors.Wrapf(err, "failed to create Bedrock request")
	}

	resp, err := b.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(b.modelID),
		ContentType: aws.String("application/json"),
		Body:        requestBody,
	})
	if err != nil {
		return "", errors.Mark(errors.Wrapf(err, "failed to invoke Bedrock model"), errors.ErrTransport)
	}

	return parseBedrockResponse(resp.Body)
}

// createBedrockRequest builds the Anthropic-on-Bedrock JSON request body.
func createBedrockRequest(turns []conversation.Turn, system string) ([]byte, error) {
	messages := convertTurnsToBedrockMessages(turns)

	request := map[string]interface{}{
		"anthropic_version": "bedrock-2023-05-31",
		"max_tokens":        4096,
		"messages":          messages,
	}
	if system != "" {
		request["system"] = system
	}

	return json.Marshal(request)
}

// convertTurnsToBedrockMessages converts conversation turns to the raw
// Anthropic message format Bedrock expects. Command results become user
// messages.
func convertTurnsToBedrockMessages(turns []conversation.Turn) []map[string]interface{} {
	var messages []map[string]interface{}
	for _, t := range turns {
		role := "user"
		if t.Role == conversation.RoleAssistant {
			role = "assistant"
		}
		messages = append(messages, map[string]interface{}{
			"role": role,
			"content": []map[string]interface{}{
				{"type": "text", "text": t.Text},
			},
		})
	}
	return messages
}

// parseBedrockResponse extracts the assistant text from a Bedrock
// InvokeModel response body.
func parseBedrockResponse(body []byte) (string, error) {
	var response struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	}
	if err := json.Unmarshal(body, &response); err != nil {
		return "", errors.Wrapf(err, "failed to parse Bedrock response")
	}

	var text string
	for _, c := range response.Content {
		if c.Type == "text" {
			text += c.Text
		}
	}
	return text, nil
}
