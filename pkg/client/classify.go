package client

import (
	"context"
	"net/url"
)

// ClassifyClient calls the classification endpoint.
type ClassifyClient struct {
	client *Client
}

// ClassifyRequest is one classification request.
type ClassifyRequest struct {
	Description     string  `json:"description"`
	Material        string  `json:"material,omitempty"`
	CountryOfOrigin string  `json:"countryOfOrigin,omitempty"`
	UnitValue       float64 `json:"unitValue,omitempty"`

	// Answers maps a previously returned question to the selected code.
	Answers map[string]string `json:"answers,omitempty"`
}

// Match is the primary classification in a result.
type Match struct {
	Code            string  `json:"code"`
	DisplayCode     string  `json:"displayCode"`
	Confidence      float64 `json:"confidence"`
	Description     string  `json:"description"`
	FullDescription string  `json:"fullDescription"`

	IsOther          bool     `json:"isOther"`
	ExcludedSiblings []string `json:"excludedSiblings,omitempty"`

	PlainLanguage string `json:"plainLanguage,omitempty"`
	Justification string `json:"justification,omitempty"`

	DutyBreakdown *DutyBreakdown `json:"dutyBreakdown,omitempty"`
}

// Alternative is one lower-ranked candidate.
type Alternative struct {
	Code          string  `json:"code"`
	DisplayCode   string  `json:"displayCode"`
	Description   string  `json:"description"`
	Confidence    float64 `json:"confidence"`
	PlainLanguage string  `json:"plainLanguage,omitempty"`
}

// ClarificationOption is one answer branch of a question, resolved to a
// concrete code.
type ClarificationOption struct {
	Label       string `json:"label"`
	Code        string `json:"code"`
	DisplayCode string `json:"displayCode"`
	Description string `json:"description"`
}

// Clarification is the question attached to a below-threshold result.
type Clarification struct {
	Question string                `json:"question"`
	Options  []ClarificationOption `json:"options"`
}

// DecisionQuestion is a value/size gate turned into a question.
type DecisionQuestion struct {
	Question string                `json:"question"`
	Options  []ClarificationOption `json:"options"`
}

// SiblingAlternative is one nearby tariff line surfaced alongside the
// primary result, with its duty delta in percentage points when known.
type SiblingAlternative struct {
	Code        string   `json:"code"`
	DisplayCode string   `json:"displayCode"`
	Description string   `json:"description"`
	DutyDelta   *float64 `json:"dutyDelta,omitempty"`
}

// ConditionalResult is the informational conditional-classification block.
type ConditionalResult struct {
	Questions    []DecisionQuestion   `json:"questions,omitempty"`
	Alternatives []SiblingAlternative `json:"alternatives,omitempty"`
}

// Trace records the steps behind one result.  Present only when requested.
type Trace struct {
	Tokens        []string `json:"tokens"`
	Material      string   `json:"material,omitempty"`
	ProductType   string   `json:"productType,omitempty"`
	RetrievalPath string   `json:"retrievalPath,omitempty"`
	Candidates    int      `json:"candidates"`
	Steps         []string `json:"steps"`
	ElapsedMS     int64    `json:"elapsedMs"`
}

// ClassificationResult is the response envelope.  Success is false only when
// no candidate was found; a low-confidence result is still a success and
// carries NeedsClarification.
type ClassificationResult struct {
	Success                   bool               `json:"success"`
	Primary                   *Match             `json:"primary,omitempty"`
	Alternatives              []*Alternative     `json:"alternatives"`
	NeedsClarification        *Clarification     `json:"needsClarification,omitempty"`
	ConditionalClassification *ConditionalResult `json:"conditionalClassification,omitempty"`
	Trace                     *Trace             `json:"trace,omitempty"`
}

// Classify submits a product description for classification.
func (cc *ClassifyClient) Classify(ctx context.Context, req *ClassifyRequest) (*ClassificationResult, error) {
	var result ClassificationResult
	if err := cc.client.post(ctx, "/api/v1/classify", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ClassifyWithTrace is Classify with the per-request trace included in the
// result.
func (cc *ClassifyClient) ClassifyWithTrace(ctx context.Context, req *ClassifyRequest) (*ClassificationResult, error) {
	var result ClassificationResult
	path := "/api/v1/classify?" + url.Values{"trace": {"true"}}.Encode()
	if err := cc.client.post(ctx, path, req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
