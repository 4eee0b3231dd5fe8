package aiplan

import (
	"context"
	"errors"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
)

// Completer sends one system+user exchange and returns the raw reply text.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

type OpenAICompleter struct {
	client openai.Client
	model  openai.ChatModel
}

func NewOpenAICompleter(apiKey, model, baseURL string) *OpenAICompleter {
	opts := []option.RequestOption{option.WithAPIKey(apiKey), option.WithMaxRetries(1)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	c := &OpenAICompleter{client: openai.NewClient(opts...), model: openai.ChatModel(model)}
	if model == "" {
		c.model = openai.ChatModelGPT4oMini
	}
	return c
}

func (c *OpenAICompleter) Complete(ctx context.Context, system, user string) (string, error) {
	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
		// Both prompts ask for JSON, which json_object mode requires.
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
