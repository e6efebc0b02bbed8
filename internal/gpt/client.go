// internal/gpt/client.go
package gpt

import (
	"context"
	"encoding/json"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"fitness-coach/internal/models"
	"fitness-coach/internal/plan"
)

type Client struct {
	client *openai.Client
	model  string
}

func NewClient(apiKey string) *Client {
	return &Client{
		client: openai.NewClient(apiKey),
		model:  "gpt-4o-mini",
	}
}

func (c *Client) WithModel(model string) *Client {
	c.model = model
	return c
}

// planEnvelope is the structured-output contract: the model replies with a
// JSON object holding a single planText string.
type planEnvelope struct {
	PlanText string `json:"planText"`
}

// GeneratePlan renders the computed schedule as a prose fitness plan.
// learningContext, when non-empty, is injected as an extra system message
// with reference plans from similar past sessions.
func (c *Client) GeneratePlan(ctx context.Context, profile models.Profile, computed models.WeeklyPlan, learningContext string) (string, error) {
	messages := []openai.ChatCompletionMessage{
		{
			Role:    openai.ChatMessageRoleSystem,
			Content: plan.SystemPrompt(),
		},
	}
	if learningContext != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: learningContext,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: plan.RenderUserPrompt(profile, computed),
	})

	req := openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		MaxTokens:   2500,
		Temperature: 0.7,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", err
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from GPT API")
	}

	raw := resp.Choices[0].Message.Content

	// The model is asked for {"planText": ...}; fall back to the raw text
	// when it replies with plain prose anyway.
	var envelope planEnvelope
	if err := json.Unmarshal([]byte(raw), &envelope); err != nil || envelope.PlanText == "" {
		return raw, nil
	}

	return envelope.PlanText, nil
}
