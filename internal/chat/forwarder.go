// Copyright (C) 2025 Dyne.org foundation
// designed, written and maintained by Denis Roio <jaromil@dyne.org>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

// Package chat forwards single user messages to an LLM chat-completion
// API. It never parses tool calls out of the model's response: tools are
// only described in the prompt, and callers invoke them separately through
// the dispatch table.
package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"

	"toolbridge/internal/config"
	apperrors "toolbridge/internal/errors"
	"toolbridge/internal/tools"
)

// Client interface abstracts the chat-completion client for testing.
// This enables dependency injection for unit tests without making real
// API calls.
type Client interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Verify that openai.Client implements Client at compile time.
var _ Client = (*openai.Client)(nil)

// Forwarder sends one message per call and returns the single text
// response. No streaming, no conversation state.
type Forwarder struct {
	client    Client
	model     string
	maxTokens int
}

// NewForwarder creates a forwarder with a real API client. Construction
// fails when no API key is configured; there is no lazily-initialized
// fallback.
func NewForwarder(cfg *config.Config) (*Forwarder, error) {
	if cfg.APIKey == "" {
		return nil, apperrors.New(apperrors.CodeAPI,
			"API key is required (set api_key in the config file or OPENAI_API_KEY/ANTHROPIC_API_KEY)")
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.APIURL != "" {
		clientConfig.BaseURL = cfg.APIURL
	}
	return NewForwarderWithClient(cfg, openai.NewClientWithConfig(clientConfig)), nil
}

// NewForwarderWithClient creates a forwarder with a provided client (for
// testing).
func NewForwarderWithClient(cfg *config.Config, client Client) *Forwarder {
	return &Forwarder{
		client:    client,
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
	}
}

// Forward sends the message as-is and returns the response text.
func (f *Forwarder) Forward(ctx context.Context, message string) (string, error) {
	return f.send(ctx, message)
}

// ForwardWithTools appends a textual description of the given tools to the
// message before sending it. The model can only talk about the tools; the
// caller must invoke them via the dispatch table.
func (f *Forwarder) ForwardWithTools(ctx context.Context, message string, descs []tools.Descriptor) (string, error) {
	return f.send(ctx, PromptWithTools(message, descs))
}

// PromptWithTools renders the annotated prompt sent by ForwardWithTools.
func PromptWithTools(message string, descs []tools.Descriptor) string {
	var b strings.Builder
	b.WriteString(message)
	b.WriteString("\n\nAvailable tools:\n")
	for _, desc := range descs {
		fmt.Fprintf(&b, "- %s: %s\n", desc.Name, desc.Description)
	}
	b.WriteString("\nMention any tool you need. Tools are invoked separately through the tools/call operation.")
	return b.String()
}

func (f *Forwarder) send(ctx context.Context, message string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:     f.model,
		MaxTokens: f.maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: message,
			},
		},
	}

	resp, err := f.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", apperrors.Wrap(apperrors.CodeAPI, "chat completion failed", err)
	}
	if len(resp.Choices) == 0 {
		return "", apperrors.New(apperrors.CodeAPI, "chat completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
