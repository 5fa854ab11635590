package classification

import (
	"context"
	"fmt"

	"github.com/clearfreight/tariffscope/internal/application/duty"
	"github.com/clearfreight/tariffscope/internal/domain/catalog"
	"github.com/clearfreight/tariffscope/internal/domain/classify"
	"github.com/clearfreight/tariffscope/internal/infrastructure/monitoring/logging"
)

// maxDecisionQuestions bounds the questions emitted per result; siblings
// beyond the cap still appear in the flat alternatives list.
const maxDecisionQuestions = 3

// ConditionalOption is one answer branch of a decision question, resolved to
// a concrete code.
type ConditionalOption struct {
	Label       string `json:"label"`
	Code        string `json:"code"`
	DisplayCode string `json:"displayCode"`
	Description string `json:"description"`
}

// DecisionQuestion is a value/size gate turned into a question whose answer
// branches resolve to distinct codes.
type DecisionQuestion struct {
	Question string              `json:"question"`
	Options  []ConditionalOption `json:"options"`
}

// SiblingAlternative is one nearby tariff line surfaced alongside the
// primary result.
type SiblingAlternative struct {
	Code        string `json:"code"`
	DisplayCode string `json:"displayCode"`
	Description string `json:"description"`

	// DutyDelta is the sibling's total duty rate minus the primary's, in
	// percentage points.  Nil when the sibling's duty could not be computed.
	DutyDelta *float64 `json:"dutyDelta,omitempty"`
}

// ConditionalResult is the informational conditional-classification block.
type ConditionalResult struct {
	Questions    []DecisionQuestion   `json:"questions,omitempty"`
	Alternatives []SiblingAlternative `json:"alternatives,omitempty"`
}

// conditionalDetector finds value/size-gated sibling codes and turns them
// into decision questions.
type conditionalDetector struct {
	catalog catalog.Repository
	duty    duty.Service
	logger  logging.Logger
}

func newConditionalDetector(repo catalog.Repository, dutySvc duty.Service, logger logging.Logger) *conditionalDetector {
	return &conditionalDetector{catalog: repo, duty: dutySvc, logger: logger.Named("conditional")}
}

// detect gathers the tariff lines under the primary's 6-digit ancestor,
// extracts their numeric gates, and emits questions plus a flat alternatives
// list with duty deltas.  A question is discarded unless its branches
// resolve to distinct codes.
func (d *conditionalDetector) detect(ctx context.Context, primary *catalog.CodeEntry, primaryTotal float64, country string, maxAlternatives int) (*ConditionalResult, error) {
	code := catalog.Normalize(primary.Code)
	if len(code) < 8 {
		return nil, nil
	}

	entries, err := d.catalog.GetByPrefix(ctx, code[:6])
	if err != nil {
		return nil, err
	}
	var lines []*catalog.CodeEntry
	for _, e := range entries {
		if len(catalog.Normalize(e.Code)) >= 8 {
			lines = append(lines, e)
		}
	}
	if len(lines) < 2 {
		return nil, nil
	}

	result := &ConditionalResult{
		Questions: d.buildQuestions(lines),
	}
	d.buildAlternatives(ctx, result, lines, code, primaryTotal, country, maxAlternatives)
	if len(result.Questions) == 0 && len(result.Alternatives) == 0 {
		return nil, nil
	}
	return result, nil
}

// buildQuestions groups the lines' extracted thresholds by dimension and
// amount, pairing each "not over" branch with its "over" branch.
func (d *conditionalDetector) buildQuestions(lines []*catalog.CodeEntry) []DecisionQuestion {
	type branches struct {
		th      classify.Threshold
		notOver *catalog.CodeEntry
		over    *catalog.CodeEntry
	}
	gates := make(map[string]*branches)
	var order []string

	for _, line := range lines {
		for _, th := range classify.ExtractThresholds(line.Description) {
			key := fmt.Sprintf("%s|%g", th.Kind, th.Amount)
			b, ok := gates[key]
			if !ok {
				b = &branches{th: th}
				gates[key] = b
				order = append(order, key)
			}
			if th.Over {
				if b.over == nil {
					b.over = line
				}
			} else if b.notOver == nil {
				b.notOver = line
			}
		}
	}

	var questions []DecisionQuestion
	for _, key := range order {
		if len(questions) >= maxDecisionQuestions {
			break
		}
		b := gates[key]
		if b.notOver == nil || b.over == nil {
			continue
		}
		// Branches selecting the same code make a useless question.
		if catalog.SharePrefix(b.notOver.Code, b.over.Code, 8) {
			continue
		}
		questions = append(questions, buildQuestion(b.th, b.notOver, b.over))
	}
	return questions
}

func buildQuestion(th classify.Threshold, notOver, over *catalog.CodeEntry) DecisionQuestion {
	var question, lowLabel, highLabel string
	switch th.Kind {
	case classify.ThresholdSize:
		question = fmt.Sprintf("Is the maximum dimension %g cm or less?", th.Amount)
		lowLabel = fmt.Sprintf("%g cm or less", th.Amount)
		highLabel = fmt.Sprintf("more than %g cm", th.Amount)
	default:
		question = fmt.Sprintf("Is the value $%g or less?", th.Amount)
		lowLabel = fmt.Sprintf("$%g or less", th.Amount)
		highLabel = fmt.Sprintf("more than $%g", th.Amount)
	}
	return DecisionQuestion{
		Question: question,
		Options: []ConditionalOption{
			{
				Label:       lowLabel,
				Code:        catalog.Normalize(notOver.Code),
				DisplayCode: notOver.DisplayCode(),
				Description: notOver.Description,
			},
			{
				Label:       highLabel,
				Code:        catalog.Normalize(over.Code),
				DisplayCode: over.DisplayCode(),
				Description: over.Description,
			},
		},
	}
}

// buildAlternatives surfaces up to maxAlternatives sibling tariff lines with
// their duty delta against the primary.  Delta failures are logged and left
// nil; the alternative itself still appears.
func (d *conditionalDetector) buildAlternatives(ctx context.Context, result *ConditionalResult, lines []*catalog.CodeEntry, primaryCode string, primaryTotal float64, country string, maxAlternatives int) {
	for _, line := range lines {
		if len(result.Alternatives) >= maxAlternatives {
			return
		}
		if catalog.SharePrefix(line.Code, primaryCode, 8) {
			continue
		}
		alt := SiblingAlternative{
			Code:        catalog.Normalize(line.Code),
			DisplayCode: line.DisplayCode(),
			Description: line.Description,
		}
		if d.duty != nil {
			b, err := d.duty.Calculate(ctx, &duty.Input{
				Code:            line.Code,
				BaseRate:        line.BaseRate,
				CountryOfOrigin: country,
			})
			if err != nil {
				d.logger.Debug("duty delta unavailable for sibling",
					logging.String("code", line.Code), logging.Err(err))
			} else {
				delta := b.TotalRate - primaryTotal
				alt.DutyDelta = &delta
			}
		}
		result.Alternatives = append(result.Alternatives, alt)
	}
}
