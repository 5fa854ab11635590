package redis

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clearfreight/tariffscope/internal/domain/catalog"
	"github.com/clearfreight/tariffscope/internal/infrastructure/monitoring/logging"
	"github.com/clearfreight/tariffscope/pkg/errors"
)

type stubCatalog struct {
	entries map[string]*catalog.CodeEntry
	calls   int
}

func (s *stubCatalog) GetByCode(_ context.Context, code string) (*catalog.CodeEntry, error) {
	s.calls++
	entry, ok := s.entries[catalog.Normalize(code)]
	if !ok {
		return nil, errors.Newf(errors.ErrCodeHTSCodeNotFound, "HTS code %s not found", code)
	}
	return entry, nil
}

func (s *stubCatalog) GetChildren(context.Context, string) ([]*catalog.CodeEntry, error) {
	s.calls++
	return nil, nil
}

func (s *stubCatalog) GetByPrefix(context.Context, string) ([]*catalog.CodeEntry, error) {
	s.calls++
	return nil, nil
}

func (s *stubCatalog) SearchByKeyword(context.Context, []string, catalog.SearchFilter) ([]*catalog.CodeEntry, error) {
	s.calls++
	return nil, nil
}

func (s *stubCatalog) GetAncestors(context.Context, string) ([]*catalog.CodeEntry, error) {
	s.calls++
	return nil, nil
}

// hitMissRecorder captures cache outcome observations.
type hitMissRecorder struct {
	hits   map[string]int
	misses map[string]int
}

func newHitMissRecorder() *hitMissRecorder {
	return &hitMissRecorder{hits: make(map[string]int), misses: make(map[string]int)}
}

func (r *hitMissRecorder) CacheHit(kind string)  { r.hits[kind]++ }
func (r *hitMissRecorder) CacheMiss(kind string) { r.misses[kind]++ }

func newCachedCatalog(t *testing.T, inner catalog.Repository) (*CachedCatalog, redismock.ClientMock) {
	t.Helper()
	db, mock := redismock.NewClientMock()
	client := &Client{rdb: db, logger: logging.NewNopLogger()}
	cache := NewCache(client, "test", time.Minute, logging.NewNopLogger())
	return NewCachedCatalog(inner, cache, logging.NewNopLogger(), nil), mock
}

func TestCachedCatalogHitSkipsStore(t *testing.T) {
	inner := &stubCatalog{}
	cached, mock := newCachedCatalog(t, inner)

	entry := &catalog.CodeEntry{Code: "61091000", Level: catalog.LevelTariffLine, Description: "Of cotton"}
	payload, _ := json.Marshal(entry)
	mock.ExpectGet("test:code:61091000").SetVal(string(payload))

	got, err := cached.GetByCode(context.Background(), "6109.10.00")
	require.NoError(t, err)
	assert.Equal(t, "61091000", got.Code)
	assert.Zero(t, inner.calls)
}

func TestCachedCatalogMissFillsCache(t *testing.T) {
	entry := &catalog.CodeEntry{Code: "61091000", Level: catalog.LevelTariffLine, Description: "Of cotton"}
	inner := &stubCatalog{entries: map[string]*catalog.CodeEntry{"61091000": entry}}
	cached, mock := newCachedCatalog(t, inner)

	payload, _ := json.Marshal(entry)
	mock.ExpectGet("test:code:61091000").RedisNil()
	mock.ExpectSet("test:code:61091000", payload, time.Minute).SetVal("OK")

	got, err := cached.GetByCode(context.Background(), "61091000")
	require.NoError(t, err)
	assert.Equal(t, "61091000", got.Code)
	assert.Equal(t, 1, inner.calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCachedCatalogCacheFailureDegradesToStore(t *testing.T) {
	entry := &catalog.CodeEntry{Code: "61091000"}
	inner := &stubCatalog{entries: map[string]*catalog.CodeEntry{"61091000": entry}}
	cached, mock := newCachedCatalog(t, inner)

	mock.ExpectGet("test:code:61091000").SetErr(assert.AnError)
	payload, _ := json.Marshal(entry)
	mock.ExpectSet("test:code:61091000", payload, time.Minute).SetVal("OK")

	got, err := cached.GetByCode(context.Background(), "61091000")
	require.NoError(t, err)
	assert.Equal(t, "61091000", got.Code)
}

func TestCachedCatalogSearchBypassesCache(t *testing.T) {
	inner := &stubCatalog{}
	cached, _ := newCachedCatalog(t, inner)

	_, err := cached.SearchByKeyword(context.Background(), []string{"cotton"}, catalog.SearchFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, inner.calls)
}

func TestCachedCatalogCountsHitsAndMisses(t *testing.T) {
	entry := &catalog.CodeEntry{Code: "61091000", Level: catalog.LevelTariffLine, Description: "Of cotton"}
	inner := &stubCatalog{entries: map[string]*catalog.CodeEntry{"61091000": entry}}
	rec := newHitMissRecorder()

	db, mock := redismock.NewClientMock()
	client := &Client{rdb: db, logger: logging.NewNopLogger()}
	cache := NewCache(client, "test", time.Minute, logging.NewNopLogger())
	cached := NewCachedCatalog(inner, cache, logging.NewNopLogger(), rec)

	payload, _ := json.Marshal(entry)
	mock.ExpectGet("test:code:61091000").RedisNil()
	mock.ExpectSet("test:code:61091000", payload, time.Minute).SetVal("OK")
	mock.ExpectGet("test:code:61091000").SetVal(string(payload))

	_, err := cached.GetByCode(context.Background(), "61091000")
	require.NoError(t, err)
	_, err = cached.GetByCode(context.Background(), "61091000")
	require.NoError(t, err)

	assert.Equal(t, 1, rec.misses["entry"])
	assert.Equal(t, 1, rec.hits["entry"])
}

func TestCachedCatalogNotFoundNotCached(t *testing.T) {
	inner := &stubCatalog{}
	cached, mock := newCachedCatalog(t, inner)

	mock.ExpectGet("test:code:99999999").RedisNil()

	_, err := cached.GetByCode(context.Background(), "99999999")
	assert.True(t, errors.IsNotFound(err))
	assert.Equal(t, 1, inner.calls)
}
