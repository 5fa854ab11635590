package gemini

import (
	"context"

	"github.com/google/generative-ai-go/genai"

	"github.com/clearfreight/tariffscope/pkg/errors"
)

// Embedder turns catalog descriptions and queries into vectors for the
// similarity collection.
type Embedder struct {
	client *Client
}

// NewEmbedder constructs an embedder.
func NewEmbedder(client *Client) *Embedder {
	return &Embedder{client: client}
}

// Embed returns the embedding vector for the text.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	callCtx, cancel := context.WithTimeout(ctx, e.client.cfg.Timeout)
	defer cancel()

	model := e.client.genai.EmbeddingModel(e.client.cfg.EmbeddingModel)
	resp, err := model.EmbedContent(callCtx, genai.Text(text))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeEmbeddingFailed, "embedding request failed")
	}
	if resp == nil || resp.Embedding == nil || len(resp.Embedding.Values) == 0 {
		return nil, errors.New(errors.ErrCodeEmbeddingFailed, "embedding response was empty")
	}
	return resp.Embedding.Values, nil
}
