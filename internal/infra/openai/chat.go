package openai

import (
	"context"

	goopenai "github.com/sashabaranov/go-openai"

	"jarvis/internal/domain"
)

// ChatClient completes conversations against an OpenAI-compatible chat
// endpoint. The base URL is configurable so alternative providers with the
// same wire format work unchanged.
type ChatClient struct {
	client *goopenai.Client
	model  string
}

func NewChatClient(apiKey, baseURL, model string) *ChatClient {
	cfg := goopenai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if model == "" {
		model = goopenai.GPT4oMini
	}
	return &ChatClient{client: goopenai.NewClientWithConfig(cfg), model: model}
}

func (c *ChatClient) Complete(ctx context.Context, messages []domain.Message) (string, error) {
	converted := make([]goopenai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		converted = append(converted, goopenai.ChatCompletionMessage{
			Role:    string(m.Role),
			Content: m.Text,
		})
	}

	resp, err := c.client.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model:    c.model,
		Messages: converted,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}
