package client

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogGetCode_Success(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/codes/6109.10.00", r.URL.Path)
		_ = json.NewEncoder(w).Encode(&CodeDetail{
			Code:            "61091000",
			DisplayCode:     "6109.10.00",
			Level:           "tariff_line",
			Description:     "Of cotton",
			FullDescription: "T-shirts, singlets, tank tops > Of cotton",
			BaseRate:        "16.5%",
			Ancestors: []*CatalogEntry{
				{Code: "61"}, {Code: "6109"}, {Code: "610910"},
			},
		})
	})

	detail, err := c.Catalog().GetCode(context.Background(), "6109.10.00")
	require.NoError(t, err)

	assert.Equal(t, "61091000", detail.Code)
	assert.Equal(t, "16.5%", detail.BaseRate)
	assert.Len(t, detail.Ancestors, 3)
}

func TestCatalogGetChildren_EmptyNeverNil(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/codes/6109100012/children", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string][]*CatalogEntry{"children": {}})
	})

	children, err := c.Catalog().GetChildren(context.Background(), "6109100012")
	require.NoError(t, err)
	assert.NotNil(t, children)
	assert.Empty(t, children)
}

func TestCatalogGetCode_NotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"code":    "CAT_001",
			"message": "HTS code 0101999999 not found",
		})
	})

	_, err := c.Catalog().GetCode(context.Background(), "0101999999")
	require.Error(t, err)

	apiErr, ok := err.(*APIError)
	require.True(t, ok)
	assert.True(t, apiErr.IsNotFound())
}
