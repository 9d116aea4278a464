package chat

import (
	"context"
	"errors"
	"fmt"
	"io"

	openai "github.com/sashabaranov/go-openai"
)

// Completer produces assistant replies for a conversation.
type Completer interface {
	Complete(ctx context.Context, msgs []openai.ChatCompletionMessage) (string, error)
	Stream(ctx context.Context, msgs []openai.ChatCompletionMessage) (DeltaStream, error)
}

// DeltaStream yields reply fragments until io.EOF.
type DeltaStream interface {
	Recv() (string, error)
	Close()
}

// OpenAIClient is the subset of the go-openai client used here.
type OpenAIClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
	CreateChatCompletionStream(ctx context.Context, req openai.ChatCompletionRequest) (*openai.ChatCompletionStream, error)
}

type OpenAICompleter struct {
	client OpenAIClient
	model  string
}

func NewOpenAICompleter(client OpenAIClient, model string) *OpenAICompleter {
	if model == "" {
		model = openai.GPT4o
	}
	return &OpenAICompleter{client: client, model: model}
}

func (o *OpenAICompleter) Complete(ctx context.Context, msgs []openai.ChatCompletionMessage) (string, error) {
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{Model: o.model, Messages: msgs})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("chat completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

func (o *OpenAICompleter) Stream(ctx context.Context, msgs []openai.ChatCompletionMessage) (DeltaStream, error) {
	stream, err := o.client.CreateChatCompletionStream(ctx, openai.ChatCompletionRequest{
		Model:    o.model,
		Messages: msgs,
		Stream:   true,
	})
	if err != nil {
		return nil, fmt.Errorf("chat completion stream: %w", err)
	}
	return &openAIStream{stream: stream}, nil
}

type openAIStream struct {
	stream *openai.ChatCompletionStream
}

// Recv skips chunks that carry no content, such as the role-only first delta.
func (s *openAIStream) Recv() (string, error) {
	for {
		resp, err := s.stream.Recv()
		if errors.Is(err, io.EOF) {
			return "", io.EOF
		}
		if err != nil {
			return "", fmt.Errorf("chat stream: %w", err)
		}
		if len(resp.Choices) > 0 && resp.Choices[0].Delta.Content != "" {
			return resp.Choices[0].Delta.Content, nil
		}
	}
}

func (s *openAIStream) Close() {
	s.stream.Close()
}
