package client

import (
	"context"
	"net/url"
)

// CatalogClient calls the catalog lookup endpoints.
type CatalogClient struct {
	client *Client
}

// CatalogEntry is one code in the tariff schedule hierarchy.
type CatalogEntry struct {
	Code            string   `json:"code"`
	Level           string   `json:"level"`
	Description     string   `json:"description"`
	ParentCode      string   `json:"parentCode,omitempty"`
	ParentGroupings []string `json:"parentGroupings,omitempty"`
	BaseRate        string   `json:"baseRate,omitempty"`
	UnitOfQuantity  []string `json:"unitOfQuantity,omitempty"`
	Keywords        []string `json:"keywords,omitempty"`
}

// CodeDetail is the full lookup body: the entry, its ancestry, and its
// immediate children.
type CodeDetail struct {
	Code            string          `json:"code"`
	DisplayCode     string          `json:"displayCode"`
	Level           string          `json:"level"`
	Description     string          `json:"description"`
	FullDescription string          `json:"fullDescription"`
	BaseRate        string          `json:"baseRate,omitempty"`
	UnitOfQuantity  []string        `json:"unitOfQuantity,omitempty"`
	Ancestors       []*CatalogEntry `json:"ancestors,omitempty"`
	Children        []*CatalogEntry `json:"children,omitempty"`
}

// GetCode looks up one HTS code.  Dots in the code are accepted.
func (cc *CatalogClient) GetCode(ctx context.Context, code string) (*CodeDetail, error) {
	var detail CodeDetail
	if err := cc.client.get(ctx, "/api/v1/codes/"+url.PathEscape(code), &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}

// GetChildren lists the immediate children of a code.  The list is empty,
// never nil, for a leaf code.
func (cc *CatalogClient) GetChildren(ctx context.Context, code string) ([]*CatalogEntry, error) {
	var resp struct {
		Children []*CatalogEntry `json:"children"`
	}
	if err := cc.client.get(ctx, "/api/v1/codes/"+url.PathEscape(code)+"/children", &resp); err != nil {
		return nil, err
	}
	if resp.Children == nil {
		resp.Children = []*CatalogEntry{}
	}
	return resp.Children, nil
}
