// Package gemini implements the optional LLM collaborator: query
// interpretation, plain-language translation, classification justification,
// and description embedding.  Every caller treats a failure here as a
// degradation, never an error surfaced to the user.
package gemini

import (
	"context"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/clearfreight/tariffscope/internal/config"
	"github.com/clearfreight/tariffscope/internal/infrastructure/monitoring/logging"
	"github.com/clearfreight/tariffscope/pkg/errors"
)

const (
	defaultModel          = "gemini-1.5-flash"
	defaultEmbeddingModel = "text-embedding-004"
	defaultTimeout        = 10 * time.Second
)

// Client wraps the Gemini SDK client.
type Client struct {
	genai  *genai.Client
	cfg    config.GeminiConfig
	logger logging.Logger
}

// NewClient constructs a Gemini client from configuration.
func NewClient(ctx context.Context, cfg config.GeminiConfig, logger logging.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New(errors.ErrCodeValidation, "gemini api key not configured")
	}

	genaiClient, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeModelUnavailable, "failed to create gemini client")
	}

	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.EmbeddingModel == "" {
		cfg.EmbeddingModel = defaultEmbeddingModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	logger.Info("Gemini client initialized",
		logging.String("model", cfg.Model),
		logging.String("embedding_model", cfg.EmbeddingModel),
	)
	return &Client{genai: genaiClient, cfg: cfg, logger: logger}, nil
}

// Close releases the underlying connection.
func (c *Client) Close() error {
	return c.genai.Close()
}

// generate runs one prompt against the configured model and returns the
// concatenated text parts of the first candidate.
func (c *Client) generate(ctx context.Context, jsonOutput bool, prompt string) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	model := c.genai.GenerativeModel(c.cfg.Model)
	if jsonOutput {
		model.ResponseMIMEType = "application/json"
	}

	resp, err := model.GenerateContent(callCtx, genai.Text(prompt))
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeInferenceFailed, "generation failed")
	}
	return extractText(resp)
}

// extractText pulls the text parts out of a generation response.
func extractText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errors.New(errors.ErrCodeModelResponseInvalid, "empty generation response")
	}

	var out string
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			out += string(text)
		}
	}
	if out == "" {
		return "", errors.New(errors.ErrCodeModelResponseInvalid, "generation response carried no text")
	}
	return out, nil
}
