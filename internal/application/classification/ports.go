// Package classification orchestrates the classification pipeline: attribute
// detection, two-path candidate retrieval, multi-factor scoring, catch-all
// validation, hierarchy assembly, conditional-sibling detection, and response
// envelope construction.  All collaborators enter through the ports defined
// here so the pipeline stays deterministic and testable without external
// services.
package classification

import (
	"context"
	"time"
)

// SemanticHit is one similarity-search result.
type SemanticHit struct {
	// Code is the matched entry's code, raw or display form.
	Code string

	// Similarity is the cosine similarity in [0,1].
	Similarity float64
}

// SemanticSearcher is the optional similarity-search collaborator.  Any
// error or timeout degrades silently to the keyword path; implementations
// never gate a correct classification.
type SemanticSearcher interface {
	SimilaritySearch(ctx context.Context, text string, limit int) ([]SemanticHit, error)
}

// InterpretedQuery is the strict schema for LLM query interpretation.
// Fields are hints only; empty fields leave the deterministic detection
// untouched.
type InterpretedQuery struct {
	// CleanDescription is the model's normalized restatement of the query.
	CleanDescription string `json:"cleanDescription"`

	// Material is the model's material guess, validated against the lexicon
	// before use.
	Material string `json:"material"`

	// ProductType is the model's product-type guess, validated against the
	// lexicon before use.
	ProductType string `json:"productType"`
}

// Enricher is the optional LLM collaborator.  None of its methods may be
// required for a correct primary classification or duty result; every
// failure falls back to a deterministic value.
type Enricher interface {
	// Interpret extracts structured hints from a free-text description.
	Interpret(ctx context.Context, description string) (*InterpretedQuery, error)

	// Translate renders an entry's legal description in plain language.
	Translate(ctx context.Context, code, description string) (string, error)

	// Justify writes a short prose justification for a finished
	// classification.
	Justify(ctx context.Context, code, fullDescription, query string) (string, error)
}

// Outcome labels recorded per classification request.
const (
	outcomeClassified    = "classified"
	outcomeClarification = "needs_clarification"
	outcomeNoCandidates  = "no_candidates"
	outcomeError         = "error"
)

// Metrics receives pipeline observations.  Implementations must be safe for
// concurrent use; the nop default keeps the service free of nil checks.
type Metrics interface {
	// ClassificationObserved records one finished request with its outcome
	// label, elapsed time, and primary confidence (0 when there is none).
	ClassificationObserved(outcome string, elapsed time.Duration, confidence float64)

	// CandidatesRetrieved records the candidate set size per retrieval path.
	CandidatesRetrieved(path string, count int)

	// SemanticSearchDegraded counts a semantic search that fell back to
	// keyword retrieval.
	SemanticSearchDegraded()
}

type nopMetrics struct{}

func (nopMetrics) ClassificationObserved(string, time.Duration, float64) {}
func (nopMetrics) CandidatesRetrieved(string, int)                       {}
func (nopMetrics) SemanticSearchDegraded()                               {}
