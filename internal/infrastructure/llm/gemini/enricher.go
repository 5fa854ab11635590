package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/clearfreight/tariffscope/internal/application/classification"
	"github.com/clearfreight/tariffscope/internal/infrastructure/monitoring/logging"
	"github.com/clearfreight/tariffscope/pkg/errors"
)

const interpretPrompt = `You are assisting with US HTS tariff classification.
Extract structured hints from this product description. Respond with ONLY a
JSON object, no other text, using exactly these keys:
{"cleanDescription": "<normalized restatement>", "material": "<primary material or empty string>", "productType": "<product category or empty string>"}

Product description: %q`

const translatePrompt = `Rewrite this US tariff schedule legal description as
one short plain-English sentence a small-business importer would understand.
Respond with only the sentence, no preamble.

HTS code: %s
Legal description: %q`

const justifyPrompt = `In two sentences, explain why HTS code %s is the right
classification for this product. Mention the deciding characteristics only.

Full tariff description: %q
Product as described by the importer: %q`

// Metrics counts model calls by operation and result.
type Metrics interface {
	LLMRequestObserved(operation, result string)
}

type nopMetrics struct{}

func (nopMetrics) LLMRequestObserved(string, string) {}

// generator is the model-call seam behind the enricher.
type generator interface {
	generate(ctx context.Context, jsonOutput bool, prompt string) (string, error)
}

// Enricher implements classification.Enricher over the Gemini client.
type Enricher struct {
	client  generator
	logger  logging.Logger
	metrics Metrics
}

var _ classification.Enricher = (*Enricher)(nil)

// NewEnricher constructs an enricher.  A nil metrics falls back to a nop
// recorder.
func NewEnricher(client *Client, logger logging.Logger, metrics Metrics) *Enricher {
	if metrics == nil {
		metrics = nopMetrics{}
	}
	return &Enricher{client: client, logger: logger.Named("enricher"), metrics: metrics}
}

// observe records one finished model call.
func (e *Enricher) observe(operation string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	e.metrics.LLMRequestObserved(operation, result)
}

// Interpret extracts structured hints from a free-text description.  The
// model's output must decode as the strict interpretation schema; anything
// else is an error and the caller keeps its deterministic detection.
func (e *Enricher) Interpret(ctx context.Context, description string) (*classification.InterpretedQuery, error) {
	raw, err := e.client.generate(ctx, true, fmt.Sprintf(interpretPrompt, description))
	if err != nil {
		e.observe("interpret", err)
		return nil, err
	}
	q, err := parseInterpretation(raw)
	e.observe("interpret", err)
	if err != nil {
		return nil, err
	}
	return q, nil
}

// Translate renders an entry's legal description in plain language.
func (e *Enricher) Translate(ctx context.Context, code, description string) (string, error) {
	text, err := e.client.generate(ctx, false, fmt.Sprintf(translatePrompt, code, description))
	e.observe("translate", err)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// Justify writes a short prose justification for a finished classification.
func (e *Enricher) Justify(ctx context.Context, code, fullDescription, query string) (string, error) {
	text, err := e.client.generate(ctx, false, fmt.Sprintf(justifyPrompt, code, fullDescription, query))
	e.observe("justify", err)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// parseInterpretation decodes a model response against the strict
// interpretation schema.  Markdown fences are tolerated; unknown fields and
// trailing content are not.
func parseInterpretation(raw string) (*classification.InterpretedQuery, error) {
	cleaned := stripFences(raw)

	dec := json.NewDecoder(bytes.NewReader([]byte(cleaned)))
	dec.DisallowUnknownFields()

	var q classification.InterpretedQuery
	if err := dec.Decode(&q); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeModelResponseInvalid, "interpretation did not match schema")
	}
	if dec.More() {
		return nil, errors.New(errors.ErrCodeModelResponseInvalid, "interpretation carried trailing content")
	}

	q.CleanDescription = strings.TrimSpace(q.CleanDescription)
	q.Material = strings.ToLower(strings.TrimSpace(q.Material))
	q.ProductType = strings.ToLower(strings.TrimSpace(q.ProductType))
	return &q, nil
}

// stripFences removes a surrounding markdown code fence if present.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
