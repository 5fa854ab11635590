package classification

import (
	"context"
	"fmt"
	"strings"
	"time"

	appduty "github.com/clearfreight/tariffscope/internal/application/duty"
	"github.com/clearfreight/tariffscope/internal/config"
	"github.com/clearfreight/tariffscope/internal/domain/catalog"
	"github.com/clearfreight/tariffscope/internal/domain/classify"
	"github.com/clearfreight/tariffscope/internal/infrastructure/monitoring/logging"
	"github.com/clearfreight/tariffscope/pkg/errors"
)

// ─────────────────────────────────────────────────────────────────────────────
// Request and response envelope
// ─────────────────────────────────────────────────────────────────────────────

// Input is one classification request.
type Input struct {
	Description     string            `json:"description"`
	Material        string            `json:"material,omitempty"`
	CountryOfOrigin string            `json:"countryOfOrigin,omitempty"`
	UnitValue       float64           `json:"unitValue,omitempty"`

	// Answers maps a previously returned question to the code the user
	// selected; a valid answered code pins the classification.
	Answers map[string]string `json:"answers,omitempty"`
}

// Match is the primary classification in the response envelope.
type Match struct {
	Code            string  `json:"code"`
	DisplayCode     string  `json:"displayCode"`
	Confidence      float64 `json:"confidence"`
	Description     string  `json:"description"`
	FullDescription string  `json:"fullDescription"`

	// IsOther marks a catch-all entry; ExcludedSiblings documents the
	// carve-outs ruled out while validating it.
	IsOther          bool     `json:"isOther"`
	ExcludedSiblings []string `json:"excludedSiblings,omitempty"`

	// PlainLanguage and Justification are optional LLM enrichment.
	PlainLanguage string `json:"plainLanguage,omitempty"`
	Justification string `json:"justification,omitempty"`

	DutyBreakdown *appduty.Breakdown `json:"dutyBreakdown,omitempty"`
}

// Alternative is one lower-ranked candidate surfaced in the envelope.
type Alternative struct {
	Code          string  `json:"code"`
	DisplayCode   string  `json:"displayCode"`
	Description   string  `json:"description"`
	Confidence    float64 `json:"confidence"`
	PlainLanguage string  `json:"plainLanguage,omitempty"`
}

// Clarification is the question attached to a below-threshold result.
type Clarification struct {
	Question string              `json:"question"`
	Options  []ConditionalOption `json:"options"`
}

// Trace records the deterministic steps behind one result for debugging and
// audit; it travels with the response instead of living in ambient state.
type Trace struct {
	Tokens        []string `json:"tokens"`
	Material      string   `json:"material,omitempty"`
	ProductType   string   `json:"productType,omitempty"`
	RetrievalPath string   `json:"retrievalPath,omitempty"`
	Candidates    int      `json:"candidates"`
	Steps         []string `json:"steps"`
	ElapsedMS     int64    `json:"elapsedMs"`
}

func (t *Trace) step(format string, args ...any) {
	t.Steps = append(t.Steps, fmt.Sprintf(format, args...))
}

// Result is the full response envelope.  Success is false only on the
// no-candidates path; low confidence is reported through NeedsClarification,
// never as a failure.
type Result struct {
	Success                   bool               `json:"success"`
	Primary                   *Match             `json:"primary,omitempty"`
	Alternatives              []*Alternative     `json:"alternatives"`
	NeedsClarification        *Clarification     `json:"needsClarification,omitempty"`
	ConditionalClassification *ConditionalResult `json:"conditionalClassification,omitempty"`
	Trace                     *Trace             `json:"trace,omitempty"`
}

// Service is the classification contract consumed by the interface layer.
type Service interface {
	Classify(ctx context.Context, input *Input) (*Result, error)
}

// ─────────────────────────────────────────────────────────────────────────────
// Service implementation
// ─────────────────────────────────────────────────────────────────────────────

// Deps wires the pipeline's collaborators.  Semantic, Enricher, and Metrics
// are optional; the pipeline is fully functional without them.
type Deps struct {
	Catalog  catalog.Repository
	Semantic SemanticSearcher
	Enricher Enricher
	Duty     appduty.Service
	Lexicon  classify.Lexicon
	Metrics  Metrics
	Config   config.ClassificationConfig
	Logger   logging.Logger
}

type serviceImpl struct {
	catalog   catalog.Repository
	searcher  *searcher
	scorer    *scorer
	assembler *assembler
	detector  *conditionalDetector
	duty      appduty.Service
	enricher  Enricher
	lexicon   classify.Lexicon
	metrics   Metrics
	cfg       config.ClassificationConfig
	logger    logging.Logger
}

// NewService assembles the classification pipeline.
func NewService(d Deps) Service {
	lex := d.Lexicon
	if lex == nil {
		lex = classify.NewDefaultLexicon()
	}
	metrics := d.Metrics
	if metrics == nil {
		metrics = nopMetrics{}
	}
	logger := d.Logger.Named("classification")
	validator := newCatchAllValidator(d.Catalog, logger)
	return &serviceImpl{
		catalog:   d.Catalog,
		searcher:  newSearcher(d.Catalog, d.Semantic, d.Config, logger, metrics),
		scorer:    newScorer(d.Catalog, validator, lex, d.Config.Weights, logger),
		assembler: newAssembler(d.Catalog),
		detector:  newConditionalDetector(d.Catalog, d.Duty, logger),
		duty:      d.Duty,
		enricher:  d.Enricher,
		lexicon:   lex,
		metrics:   metrics,
		cfg:       d.Config,
		logger:    logger,
	}
}

// Classify runs the full pipeline for one request.
func (s *serviceImpl) Classify(ctx context.Context, input *Input) (*Result, error) {
	start := time.Now()
	outcome, confidence := outcomeError, 0.0
	defer func() {
		s.metrics.ClassificationObserved(outcome, time.Since(start), confidence)
	}()

	if input == nil {
		return nil, errors.NewValidationError("input", "request body is required")
	}
	trace := &Trace{}

	if pinned := s.resolveAnswer(ctx, input, trace); pinned != nil {
		result, err := s.buildPinnedResult(ctx, pinned, input, trace, start)
		if err == nil {
			outcome, confidence = outcomeClassified, result.Primary.Confidence
		}
		return result, err
	}

	description := strings.TrimSpace(input.Description)
	if description == "" {
		return nil, errors.New(errors.ErrCodeEmptyDescription, "description is required")
	}

	attrs := s.analyze(ctx, description, input.Material, trace)

	cands, err := s.searcher.search(ctx, description, attrs)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeKeywordSearchFailed, "candidate retrieval")
	}
	if len(cands) == 0 {
		trace.step("no candidates retrieved")
		outcome = outcomeNoCandidates
		return s.noCandidates(trace, start), nil
	}
	trace.step("retrieved %d candidates via %s path", len(cands), cands[0].Source)
	trace.RetrievalPath = string(cands[0].Source)
	s.metrics.CandidatesRetrieved(trace.RetrievalPath, len(cands))

	s.scorer.scoreAll(ctx, cands, attrs)
	cands = s.applyFloor(cands)
	if len(cands) == 0 {
		trace.step("all candidates fell below the confidence floor")
		outcome = outcomeNoCandidates
		return s.noCandidates(trace, start), nil
	}
	trace.Candidates = len(cands)
	best := cands[0]
	trace.step("best candidate %s scored %.1f", best.Entry.DisplayCode(), best.Total)

	result, err := s.buildResult(ctx, best, cands, input, trace)
	if err != nil {
		return nil, err
	}
	outcome, confidence = outcomeClassified, best.Total
	if result.NeedsClarification != nil {
		outcome = outcomeClarification
	}
	s.finishTrace(result, trace, start)
	return result, nil
}

// analyze runs deterministic attribute detection, then lets the optional
// interpreter fill only the blanks.  Interpretation output is validated
// against the lexicon; it can never override what the tokenizer found.
func (s *serviceImpl) analyze(ctx context.Context, description, material string, trace *Trace) classify.Attributes {
	attrs := classify.Analyze(description, material, s.lexicon)
	trace.Tokens = attrs.Tokens
	trace.Material = attrs.Material
	trace.ProductType = attrs.ProductType

	if s.enricher == nil || !s.cfg.EnableLLMEnrichment {
		return attrs
	}
	if attrs.Material != "" && attrs.ProductType != "" {
		return attrs
	}

	callCtx, cancel := context.WithTimeout(ctx, s.cfg.SearchTimeout)
	defer cancel()
	hints, err := s.enricher.Interpret(callCtx, description)
	if err != nil {
		s.logger.Debug("query interpretation unavailable", logging.Err(err))
		return attrs
	}

	if attrs.Material == "" && hints.Material != "" {
		if chapters, ok := s.lexicon.MaterialChapters(strings.ToLower(hints.Material)); ok {
			attrs.Material = strings.ToLower(hints.Material)
			attrs.MaterialChapters = chapters
			trace.Material = attrs.Material
			trace.step("material %q supplied by interpreter", attrs.Material)
		}
	}
	if attrs.ProductType == "" && hints.ProductType != "" {
		want := strings.ToLower(hints.ProductType)
		for _, rule := range s.lexicon.ProductTypeRules() {
			if rule.Term == want {
				attrs.ProductType = rule.Term
				attrs.ExpectedHeadings = rule.Headings
				trace.ProductType = rule.Term
				trace.step("product type %q supplied by interpreter", rule.Term)
				break
			}
		}
	}
	return attrs
}

// applyFloor drops candidates below the display floor.
func (s *serviceImpl) applyFloor(cands []*classify.Candidate) []*classify.Candidate {
	out := cands[:0]
	for _, c := range cands {
		if c.Total >= s.cfg.ConfidenceFloor {
			out = append(out, c)
		}
	}
	return out
}

func (s *serviceImpl) noCandidates(trace *Trace, start time.Time) *Result {
	result := &Result{Success: false, Alternatives: []*Alternative{}}
	s.finishTrace(result, trace, start)
	return result
}

// buildResult assembles the success envelope around the best candidate.
func (s *serviceImpl) buildResult(ctx context.Context, best *classify.Candidate, cands []*classify.Candidate, input *Input, trace *Trace) (*Result, error) {
	match, err := s.buildMatch(ctx, best, input)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Success:      true,
		Primary:      match,
		Alternatives: []*Alternative{},
	}

	for _, c := range cands[1:] {
		if len(result.Alternatives) >= s.cfg.MaxAlternatives {
			break
		}
		result.Alternatives = append(result.Alternatives, &Alternative{
			Code:        catalog.Normalize(c.Entry.Code),
			DisplayCode: c.Entry.DisplayCode(),
			Description: c.Entry.Description,
			Confidence:  c.Total,
		})
	}

	if best.Total < s.cfg.ConfidenceThreshold {
		result.NeedsClarification = s.buildClarification(cands)
		trace.step("confidence %.1f below threshold %.1f, clarification attached",
			best.Total, s.cfg.ConfidenceThreshold)
	}

	primaryTotal := 0.0
	if match.DutyBreakdown != nil {
		primaryTotal = match.DutyBreakdown.TotalRate
	}
	conditional, err := s.detector.detect(ctx, best.Entry, primaryTotal, input.CountryOfOrigin, s.cfg.MaxAlternatives)
	if err != nil {
		s.logger.Warn("conditional-sibling detection failed", logging.Err(err))
	} else {
		result.ConditionalClassification = conditional
	}

	s.enrichResult(ctx, result, cands, input.Description)
	return result, nil
}

// buildMatch assembles the hierarchy and duty breakdown for one candidate.
func (s *serviceImpl) buildMatch(ctx context.Context, c *classify.Candidate, input *Input) (*Match, error) {
	h, err := s.assembler.assemble(ctx, c.Entry.Code)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeCatalogUnavailable, "assembling hierarchy")
	}

	match := &Match{
		Code:             catalog.Normalize(c.Entry.Code),
		DisplayCode:      c.Entry.DisplayCode(),
		Confidence:       c.Total,
		Description:      h.ShortDescription,
		FullDescription:  h.FullDescription,
		IsOther:          c.IsOther,
		ExcludedSiblings: c.ExcludedSiblings,
	}

	baseRate, err := s.rateFor(ctx, c.Entry)
	if err != nil {
		return nil, err
	}
	breakdown, err := s.duty.Calculate(ctx, &appduty.Input{
		Code:            c.Entry.Code,
		BaseRate:        baseRate,
		CountryOfOrigin: input.CountryOfOrigin,
		UnitValue:       input.UnitValue,
	})
	if err != nil {
		return nil, err
	}
	match.DutyBreakdown = breakdown
	return match, nil
}

// rateFor returns the entry's published rate, walking up to the tariff line
// when a statistical suffix carries none of its own.
func (s *serviceImpl) rateFor(ctx context.Context, entry *catalog.CodeEntry) (string, error) {
	if entry.BaseRate != "" || entry.Level != catalog.LevelStatistical {
		return entry.BaseRate, nil
	}
	parent, err := s.catalog.GetByCode(ctx, catalog.ParentCode(entry.Code))
	if err != nil {
		if errors.IsNotFound(err) {
			return "", nil
		}
		return "", errors.Wrap(err, errors.ErrCodeCatalogUnavailable, "resolving tariff-line rate")
	}
	return parent.BaseRate, nil
}

// buildClarification turns the top candidates into a which-of-these
// question.
func (s *serviceImpl) buildClarification(cands []*classify.Candidate) *Clarification {
	limit := 3
	if len(cands) < limit {
		limit = len(cands)
	}
	c := &Clarification{Question: "Which of these best describes the product?"}
	for _, cand := range cands[:limit] {
		c.Options = append(c.Options, ConditionalOption{
			Label:       cand.Entry.Description,
			Code:        catalog.Normalize(cand.Entry.Code),
			DisplayCode: cand.Entry.DisplayCode(),
			Description: cand.Entry.Description,
		})
	}
	return c
}

// enrichResult attaches plain-language translations and a justification.
// Everything here is optional decoration with deterministic fallbacks.
func (s *serviceImpl) enrichResult(ctx context.Context, result *Result, cands []*classify.Candidate, query string) {
	if s.enricher == nil || !s.cfg.EnableLLMEnrichment {
		return
	}
	translations := translateCandidates(ctx, s.enricher, cands, s.cfg.MaxEnrichment, s.logger)
	if text, ok := translations[result.Primary.Code]; ok {
		result.Primary.PlainLanguage = text
	}
	for _, alt := range result.Alternatives {
		if text, ok := translations[alt.Code]; ok {
			alt.PlainLanguage = text
		}
	}
	result.Primary.Justification = justifyPrimary(
		ctx, s.enricher, result.Primary.Code, result.Primary.FullDescription, query, s.logger)
}

// resolveAnswer returns the catalog entry pinned by a question answer, if
// the request carries one that resolves to a real code.
func (s *serviceImpl) resolveAnswer(ctx context.Context, input *Input, trace *Trace) *catalog.CodeEntry {
	for question, answer := range input.Answers {
		if catalog.Validate(answer) != nil {
			s.logger.Debug("ignoring non-code answer",
				logging.String("question", question), logging.String("answer", answer))
			continue
		}
		entry, err := s.catalog.GetByCode(ctx, answer)
		if err != nil {
			s.logger.Debug("answered code not in catalog", logging.String("code", answer))
			continue
		}
		trace.step("classification pinned by answer to %q", question)
		return entry
	}
	return nil
}

// buildPinnedResult short-circuits the pipeline when an answer already
// selected the code.
func (s *serviceImpl) buildPinnedResult(ctx context.Context, entry *catalog.CodeEntry, input *Input, trace *Trace, start time.Time) (*Result, error) {
	pinned := &classify.Candidate{
		Entry:  entry,
		Source: classify.SourceKeyword,
		Total:  100,
	}
	match, err := s.buildMatch(ctx, pinned, input)
	if err != nil {
		return nil, err
	}
	result := &Result{Success: true, Primary: match, Alternatives: []*Alternative{}}
	s.finishTrace(result, trace, start)
	return result, nil
}

func (s *serviceImpl) finishTrace(result *Result, trace *Trace, start time.Time) {
	trace.ElapsedMS = time.Since(start).Milliseconds()
	result.Trace = trace
}
