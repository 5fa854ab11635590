package classification

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/clearfreight/tariffscope/internal/domain/catalog"
	"github.com/clearfreight/tariffscope/internal/domain/classify"
	"github.com/clearfreight/tariffscope/internal/infrastructure/monitoring/logging"
)

// translateCandidates fans out plain-language translation over the top
// candidates.  The fan-out is capped both in candidate count and in
// concurrency; the cap is a backpressure bound on external-call cost.
// Individual failures are logged and leave that entry untranslated.
func translateCandidates(ctx context.Context, enricher Enricher, cands []*classify.Candidate, limit int, logger logging.Logger) map[string]string {
	if enricher == nil || limit <= 0 || len(cands) == 0 {
		return nil
	}
	if len(cands) > limit {
		cands = cands[:limit]
	}

	var (
		mu  sync.Mutex
		out = make(map[string]string, len(cands))
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for _, c := range cands {
		entry := c.Entry
		g.Go(func() error {
			text, err := enricher.Translate(gctx, entry.Code, entry.Description)
			if err != nil {
				logger.Debug("plain-language translation failed",
					logging.String("code", entry.Code), logging.Err(err))
				return nil
			}
			mu.Lock()
			out[catalog.Normalize(entry.Code)] = text
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return out
}

// justifyPrimary asks the enricher for a prose justification.  Failures
// yield an empty string; the justification is decoration, never a gate.
func justifyPrimary(ctx context.Context, enricher Enricher, code, fullDescription, query string, logger logging.Logger) string {
	if enricher == nil {
		return ""
	}
	text, err := enricher.Justify(ctx, code, fullDescription, query)
	if err != nil {
		logger.Debug("justification failed", logging.String("code", code), logging.Err(err))
		return ""
	}
	return text
}
