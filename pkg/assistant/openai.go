// Package assistant provides reply generators for the reserved assistant
// participant. The OpenAI client satisfies convo.Replier; the scripted
// replier is the offline fallback.
package assistant

import (
	"context"
	"errors"

	openaiapi "github.com/sashabaranov/go-openai"
)

const systemPrompt = "You are a friendly campus assistant chatting with a student. " +
	"Keep answers short and conversational."

// OpenAI generates replies through the chat completion API.
type OpenAI struct {
	api   *openaiapi.Client
	model string
}

func NewOpenAI(token, model string) *OpenAI {
	return &OpenAI{
		api:   openaiapi.NewClient(token),
		model: model,
	}
}

func (c *OpenAI) Reply(ctx context.Context, prompt string) (string, error) {
	req := openaiapi.ChatCompletionRequest{
		Model: c.model,
		Messages: []openaiapi.ChatCompletionMessage{
			{Role: openaiapi.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openaiapi.ChatMessageRoleUser, Content: prompt},
		},
	}
	resp, err := c.api.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openai returned empty response")
	}
	return resp.Choices[0].Message.Content, nil
}
