package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCompleter(t *testing.T, handler http.HandlerFunc) *OpenAICompleter {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	cfg := openai.DefaultConfig("test-key")
	cfg.BaseURL = srv.URL + "/v1"
	return NewOpenAICompleter(openai.NewClientWithConfig(cfg), "")
}

func TestOpenAICompleter_Complete(t *testing.T) {
	var got openai.ChatCompletionRequest
	c := newTestCompleter(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/chat/completions", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"c1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"Walk daily."},"finish_reason":"stop"}]}`)
	})

	reply, err := c.Complete(context.Background(), []openai.ChatCompletionMessage{{Role: "user", Content: "tips"}})
	require.NoError(t, err)
	assert.Equal(t, "Walk daily.", reply)
	assert.Equal(t, openai.GPT4o, got.Model)
	assert.False(t, got.Stream)
}

func TestOpenAICompleter_Stream(t *testing.T) {
	c := newTestCompleter(t, func(w http.ResponseWriter, r *http.Request) {
		var req openai.ChatCompletionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.True(t, req.Stream)
		w.Header().Set("Content-Type", "text/event-stream")
		for _, delta := range []string{`{"role":"assistant"}`, `{"content":"Less "}`, `{"content":"salt."}`} {
			fmt.Fprintf(w, "data: {\"id\":\"s1\",\"object\":\"chat.completion.chunk\",\"choices\":[{\"index\":0,\"delta\":%s}]}\n\n", delta)
		}
		fmt.Fprint(w, "data: [DONE]\n\n")
	})

	stream, err := c.Stream(context.Background(), []openai.ChatCompletionMessage{{Role: "user", Content: "tips"}})
	require.NoError(t, err)
	defer stream.Close()

	var parts []string
	for {
		delta, err := stream.Recv()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		parts = append(parts, delta)
	}
	assert.Equal(t, []string{"Less ", "salt."}, parts)
}

func TestOpenAICompleter_UpstreamError(t *testing.T) {
	c := newTestCompleter(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, `{"error":{"message":"slow down","type":"rate_limit"}}`)
	})
	_, err := c.Complete(context.Background(), []openai.ChatCompletionMessage{{Role: "user", Content: "x"}})
	assert.Error(t, err)
}
