package extraction

import (
	"context"

	"golang.org/x/sync/errgroup"

	"fjacquet/fatura-csv/internal/logging"
	"fjacquet/fatura-csv/internal/models"
)

// ExtractAll extracts several documents concurrently, at most workers at a time, and
// returns the results in input order. Documents share no state, so the only coordination
// is the result slice. Cancellation is checked between documents.
func (e *Engine) ExtractAll(ctx context.Context, docs []models.Document, workers int) ([]Result, error) {
	if workers < 1 {
		workers = 1
	}
	results := make([]Result, len(docs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range docs {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = e.Extract(docs[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	e.GetLogger().Debug("Extracted documents",
		logging.F(logging.FieldCount, len(docs)),
		logging.F("workers", workers))
	return results, nil
}

// Flatten concatenates the transactions of several results in order.
func Flatten(results []Result) []models.Transaction {
	var n int
	for _, r := range results {
		n += len(r.Transactions)
	}
	out := make([]models.Transaction, 0, n)
	for _, r := range results {
		out = append(out, r.Transactions...)
	}
	return out
}
