// Package llm synthesizes answers with a chat-capable language model.
package llm

import (
	"context"
	"fmt"
	"net/http"

	"github.com/hyperjump/villagerag/internal/provider"
)

// ChatConfig configures ChatClient.
type ChatConfig struct {
	Model       string
	Temperature float64
	MaxTokens   int // 0 leaves the provider default
}

// ChatClient sends a prompt as a single user message to /chat/completions.
type ChatClient struct {
	client *provider.Client
	cfg    ChatConfig
}

// chatCompletionRequest is the OpenAI /chat/completions request format.
type chatCompletionRequest struct {
	Model       string              `json:"model"`
	Messages    []chatCompletionMsg `json:"messages"`
	MaxTokens   int                 `json:"max_tokens,omitempty"`
	Temperature float64             `json:"temperature"`
}

// chatCompletionMsg is the OpenAI chat message format.
type chatCompletionMsg struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatCompletionResponse is the OpenAI /chat/completions response format.
type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

// NewChatClient creates a chat client that sends requests through client.
func NewChatClient(client *provider.Client, cfg ChatConfig) (*ChatClient, error) {
	if cfg.Model == "" {
		return nil, fmt.Errorf("llm model is required")
	}
	return &ChatClient{client: client, cfg: cfg}, nil
}

// Complete returns the model's reply to prompt verbatim.
// Failures are *provider.Error values carrying the provider's message.
func (c *ChatClient) Complete(ctx context.Context, prompt string) (string, error) {
	req := chatCompletionRequest{
		Model:       c.cfg.Model,
		Messages:    []chatCompletionMsg{{Role: "user", Content: prompt}},
		MaxTokens:   c.cfg.MaxTokens,
		Temperature: c.cfg.Temperature,
	}
	var resp chatCompletionResponse
	if err := c.client.DoJSON(ctx, http.MethodPost, "/chat/completions", req, &resp); err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", &provider.Error{Provider: c.client.Name(), Op: "POST /chat/completions", Message: "no choices in response"}
	}
	return resp.Choices[0].Message.Content, nil
}

// Model returns the configured model name.
func (c *ChatClient) Model() string {
	return c.cfg.Model
}
