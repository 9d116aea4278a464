package vision

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// ChatCompleter is the subset of the OpenAI client used here.
type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// OpenAIAnalyzer asks a vision-capable chat model to describe the meal.
type OpenAIAnalyzer struct {
	client ChatCompleter
	model  string
}

func NewOpenAIAnalyzer(client ChatCompleter, model string) *OpenAIAnalyzer {
	if model == "" {
		model = openai.GPT4o
	}
	return &OpenAIAnalyzer{client: client, model: model}
}

func (a *OpenAIAnalyzer) Analyze(ctx context.Context, image []byte, mimeType string) (*Analysis, error) {
	uri := fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(image))

	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     a.model,
		MaxTokens: 800,
		Messages: []openai.ChatCompletionMessage{{
			Role: openai.ChatMessageRoleUser,
			MultiContent: []openai.ChatMessagePart{
				{Type: openai.ChatMessagePartTypeText, Text: Prompt},
				{Type: openai.ChatMessagePartTypeImageURL, ImageURL: &openai.ChatMessageImageURL{
					URL:    uri,
					Detail: openai.ImageURLDetailAuto,
				}},
			},
		}},
	})
	if err != nil {
		return nil, fmt.Errorf("vision completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("vision completion returned no choices")
	}
	return ParseAnalysis(resp.Choices[0].Message.Content), nil
}
