// Copyright 2025 Code Weaver Project
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package llm wraps the hosted chat-completion provider behind a small
// interface and normalizes its errors into the closed taxonomy consumed by
// the generation orchestrator.
package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

const (
	// DefaultRequestTimeout bounds a single completion call.
	DefaultRequestTimeout = 90 * time.Second
	// DefaultMaxTokens is generous because a complete website is large.
	DefaultMaxTokens = 8192
	// DefaultTemperature keeps output structured enough to parse.
	DefaultTemperature = 0.4
)

// Completer is the invoker interface the orchestrator depends on. The
// production implementation is Client; tests substitute stubs.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// CompletionRequest describes one model invocation.
type CompletionRequest struct {
	Model        string
	SystemPrompt string
	UserPrompt   string
	MaxTokens    int
	Temperature  float32
}

// Client wraps the go-openai client for a configured endpoint. The same
// client serves every model identifier in the rotation list; OpenAI-compatible
// gateways route by model name.
type Client struct {
	client  *openai.Client
	logger  *zap.Logger
	timeout time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout overrides the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// NewClient creates a chat-completion client. An empty endpoint uses the
// provider default.
func NewClient(apiKey, endpoint string, logger *zap.Logger, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	cfg := openai.DefaultConfig(apiKey)
	if endpoint != "" {
		cfg.BaseURL = endpoint
	}

	c := &Client{
		client:  openai.NewClientWithConfig(cfg),
		logger:  logger,
		timeout: DefaultRequestTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}

	c.logger.Info("Chat completion client initialized",
		zap.String("endpoint", cfg.BaseURL),
		zap.Duration("request_timeout", c.timeout),
	)

	return c, nil
}

// Complete issues a single chat completion for the given model and returns
// the raw assistant text. All provider errors come back classified; no retry
// happens here, the rotation policy owns the attempt budget.
func (c *Client) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	if req.Model == "" {
		return "", NewFailure(FailureOther, "model identifier is required", nil)
	}
	if req.MaxTokens == 0 {
		req.MaxTokens = DefaultMaxTokens
	}
	if req.Temperature == 0 {
		req.Temperature = DefaultTemperature
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	c.logger.Debug("Sending completion request",
		zap.String("model", req.Model),
		zap.Int("max_tokens", req.MaxTokens),
		zap.Int("system_prompt_len", len(req.SystemPrompt)),
		zap.Int("user_prompt_len", len(req.UserPrompt)),
	)

	start := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       req.Model,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: req.SystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: req.UserPrompt},
		},
	})
	if err != nil {
		failure := classifyProviderError(err)
		c.logger.Warn("Completion request failed",
			zap.String("model", req.Model),
			zap.String("failure_kind", string(failure.Kind)),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err),
		)
		return "", failure
	}

	if len(resp.Choices) == 0 {
		return "", NewFailure(FailureGateway, "no choices returned from provider", nil)
	}

	content := resp.Choices[0].Message.Content
	c.logger.Debug("Completion request succeeded",
		zap.String("model", req.Model),
		zap.String("finish_reason", string(resp.Choices[0].FinishReason)),
		zap.Int("response_len", len(content)),
		zap.Int("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens),
		zap.Duration("elapsed", time.Since(start)),
	)

	return content, nil
}
