package chat

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"

	"github.com/bptrack/bptrack/internal/platform/envelope"
)

var ErrNotConfigured = errors.New("chat model is not configured")

type Service struct {
	completer Completer
	logger    zerolog.Logger
}

// NewService builds the assistant. A nil completer fails every request
// with ErrNotConfigured.
func NewService(completer Completer, logger zerolog.Logger) *Service {
	return &Service{completer: completer, logger: logger}
}

// conversation validates the client's messages and prepends the system prompt.
func (s *Service) conversation(msgs []Message) ([]openai.ChatCompletionMessage, error) {
	if len(msgs) == 0 {
		return nil, envelope.Invalidf("messages required")
	}
	if len(msgs) > MaxMessages {
		return nil, envelope.Invalidf("at most %d messages are allowed", MaxMessages)
	}
	out := make([]openai.ChatCompletionMessage, 0, len(msgs)+1)
	out = append(out, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: SystemPrompt})
	for i, m := range msgs {
		if m.Role != RoleUser && m.Role != RoleAssistant {
			return nil, envelope.Invalidf("messages[%d].role must be user or assistant", i)
		}
		content := strings.TrimSpace(m.Content)
		if content == "" {
			return nil, envelope.Invalidf("messages[%d].content must not be empty", i)
		}
		if len(content) > MaxContentLength {
			return nil, envelope.Invalidf("messages[%d].content exceeds %d characters", i, MaxContentLength)
		}
		out = append(out, openai.ChatCompletionMessage{Role: m.Role, Content: content})
	}
	if msgs[len(msgs)-1].Role != RoleUser {
		return nil, envelope.Invalidf("the last message must come from the user")
	}
	return out, nil
}

func (s *Service) Reply(ctx context.Context, msgs []Message) (*Message, error) {
	conv, err := s.conversation(msgs)
	if err != nil {
		return nil, err
	}
	if s.completer == nil {
		return nil, ErrNotConfigured
	}
	content, err := s.completer.Complete(ctx, conv)
	if err != nil {
		return nil, err
	}
	return &Message{Role: RoleAssistant, Content: content}, nil
}

// Stream opens a streamed reply. The caller must Close the stream.
func (s *Service) Stream(ctx context.Context, msgs []Message) (DeltaStream, error) {
	conv, err := s.conversation(msgs)
	if err != nil {
		return nil, err
	}
	if s.completer == nil {
		return nil, ErrNotConfigured
	}
	return s.completer.Stream(ctx, conv)
}
