package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/clearfreight/tariffscope/internal/application/classification"
	"github.com/clearfreight/tariffscope/internal/application/duty"
	"github.com/clearfreight/tariffscope/internal/domain/catalog"
	"github.com/clearfreight/tariffscope/pkg/errors"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeClassifier struct {
	result *classification.Result
	err    error
	last   *classification.Input
}

func (f *fakeClassifier) Classify(_ context.Context, input *classification.Input) (*classification.Result, error) {
	f.last = input
	return f.result, f.err
}

type fakeDuty struct {
	breakdown *duty.Breakdown
	err       error
	last      *duty.Input
}

func (f *fakeDuty) Calculate(_ context.Context, input *duty.Input) (*duty.Breakdown, error) {
	f.last = input
	return f.breakdown, f.err
}

// mapCatalog is a minimal in-memory catalog for handler tests.
type mapCatalog struct {
	entries  map[string]*catalog.CodeEntry
	children map[string][]*catalog.CodeEntry
}

func (m *mapCatalog) GetByCode(_ context.Context, code string) (*catalog.CodeEntry, error) {
	entry, ok := m.entries[catalog.Normalize(code)]
	if !ok {
		return nil, errors.Newf(errors.ErrCodeHTSCodeNotFound, "HTS code %s not found", code)
	}
	return entry, nil
}

func (m *mapCatalog) GetChildren(_ context.Context, parentCode string) ([]*catalog.CodeEntry, error) {
	return m.children[catalog.Normalize(parentCode)], nil
}

func (m *mapCatalog) GetByPrefix(context.Context, string) ([]*catalog.CodeEntry, error) {
	return nil, nil
}

func (m *mapCatalog) SearchByKeyword(context.Context, []string, catalog.SearchFilter) ([]*catalog.CodeEntry, error) {
	return nil, nil
}

func (m *mapCatalog) GetAncestors(_ context.Context, code string) ([]*catalog.CodeEntry, error) {
	var out []*catalog.CodeEntry
	for _, ancestor := range catalog.AncestorCodes(catalog.Normalize(code)) {
		if entry, ok := m.entries[ancestor]; ok {
			out = append(out, entry)
		}
	}
	return out, nil
}

func performJSON(t *testing.T, r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	r.ServeHTTP(recorder, req)
	return recorder
}

func decodeBody[T any](t *testing.T, recorder *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &out))
	return out
}
