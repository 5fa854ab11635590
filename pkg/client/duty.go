package client

import "context"

// DutyClient calls the duty calculation endpoint.
type DutyClient struct {
	client *Client
}

// DutyRequest is one calculation request.  BaseRate is optional; when empty
// the server resolves it from the catalog.
type DutyRequest struct {
	Code            string  `json:"code"`
	BaseRate        string  `json:"baseRate,omitempty"`
	CountryOfOrigin string  `json:"countryOfOrigin,omitempty"`
	UnitValue       float64 `json:"unitValue,omitempty"`
}

// DutyLineItem is one component of the stacked total.
type DutyLineItem struct {
	Program        string  `json:"program"`
	Name           string  `json:"name"`
	Rate           float64 `json:"rate"`
	LegalReference string  `json:"legalReference,omitempty"`
	Description    string  `json:"description,omitempty"`
}

// DutyBreakdown is the itemized result of one calculation.
type DutyBreakdown struct {
	Code        string `json:"code"`
	DisplayCode string `json:"displayCode"`
	CountryCode string `json:"countryCode,omitempty"`

	BaseRate          float64 `json:"baseRate"`
	BaseRateRaw       string  `json:"baseRateRaw"`
	SpecificComponent string  `json:"specificComponent,omitempty"`
	RateUnparseable   bool    `json:"rateUnparseable,omitempty"`

	AdditionalDuties []DutyLineItem `json:"additionalDuties"`

	// TotalRate is base plus the sum of additional duties, in percent.
	TotalRate float64 `json:"totalRate"`

	EstimatedDutyPerUnit float64 `json:"estimatedDutyPerUnit,omitempty"`

	ADCVDAdvisory string   `json:"adcvdAdvisory,omitempty"`
	Advisories    []string `json:"advisories,omitempty"`

	DataVersion string `json:"dataVersion"`
	Disclaimer  string `json:"disclaimer"`
}

// Calculate computes the stacked duty for a code and origin.
func (dc *DutyClient) Calculate(ctx context.Context, req *DutyRequest) (*DutyBreakdown, error) {
	var breakdown DutyBreakdown
	if err := dc.client.post(ctx, "/api/v1/duty", req, &breakdown); err != nil {
		return nil, err
	}
	return &breakdown, nil
}
