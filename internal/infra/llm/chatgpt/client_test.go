package chatgpt

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestClient_CreateChatCompletion(t *testing.T) {
	var got ChatCompletionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/chat/completions", r.URL.Path)
		require.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"hi"}}],"usage":{"prompt_tokens":12,"completion_tokens":3,"total_tokens":15}}`))
	}))
	defer srv.Close()

	client, err := NewClient("secret", srv.URL+"/v1/", time.Second)
	require.NoError(t, err)

	resp, err := client.CreateChatCompletion(context.Background(), ChatCompletionRequest{
		Model:       "llama-3.1-8b-instant",
		Messages:    []Message{{Role: "user", Content: "hello"}},
		Temperature: 0.25,
		MaxTokens:   350,
	})
	require.NoError(t, err)
	require.Equal(t, "hi", resp.Choices[0].Message.Content)
	require.Equal(t, Usage{PromptTokens: 12, CompletionTokens: 3, TotalTokens: 15}, resp.Usage)
	require.Equal(t, 350, got.MaxTokens)
	require.Equal(t, "llama-3.1-8b-instant", got.Model)
}

func TestClient_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client, err := NewClient("secret", srv.URL, time.Second)
	require.NoError(t, err)

	_, err = client.CreateChatCompletion(context.Background(), ChatCompletionRequest{Model: "m"})
	require.ErrorContains(t, err, "status=429")
}

func TestNewClient_RequiresKey(t *testing.T) {
	_, err := NewClient("  ", "", 0)
	require.Error(t, err)
}
