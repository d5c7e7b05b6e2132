// Package llm provides the model client used by the agents to narrate reports.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"agenticerp/internal/config"
	"agenticerp/internal/logging"

	"google.golang.org/genai"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.5-flash"

// ErrEmptyResponse is returned when the model produced no text.
var ErrEmptyResponse = errors.New("empty model response")

type generateFunc func(ctx context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)

// GeminiClient implements types.LLMClient over the Gemini API.
type GeminiClient struct {
	model       string
	temperature float32
	timeout     time.Duration
	generate    generateFunc
}

// NewClient builds the configured client. It returns nil when no API key is
// set; callers then skip narration.
func NewClient(cfg *config.Config) (*GeminiClient, error) {
	if cfg == nil || cfg.LLM.APIKey == "" {
		return nil, nil
	}
	if p := strings.ToLower(cfg.LLM.Provider); p != "" && p != "gemini" {
		return nil, fmt.Errorf("unsupported llm provider %q", cfg.LLM.Provider)
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  cfg.LLM.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	model := strings.TrimSpace(cfg.LLM.Model)
	if model == "" {
		model = DefaultModel
	}

	logging.Boot("LLM narration enabled (model=%s)", model)
	return &GeminiClient{
		model:       model,
		temperature: cfg.LLM.Temperature,
		timeout:     cfg.GetLLMTimeout(),
		generate:    client.Models.GenerateContent,
	}, nil
}

// Model returns the model name.
func (c *GeminiClient) Model() string { return c.model }

// Complete sends a single user prompt.
func (c *GeminiClient) Complete(ctx context.Context, prompt string) (string, error) {
	return c.CompleteWithSystem(ctx, "", prompt)
}

// CompleteWithSystem sends a user prompt with a system instruction.
func (c *GeminiClient) CompleteWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	gc := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(c.temperature),
	}
	if systemPrompt != "" {
		gc.SystemInstruction = genai.NewContentFromText(systemPrompt, genai.RoleUser)
	}

	contents := []*genai.Content{
		genai.NewContentFromText(userPrompt, genai.RoleUser),
	}

	timer := logging.StartTimer(logging.CategoryAgents, "gemini.GenerateContent")
	resp, err := c.generate(ctx, c.model, contents, gc)
	timer.Stop()
	if err != nil {
		return "", fmt.Errorf("gemini generate failed: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}
