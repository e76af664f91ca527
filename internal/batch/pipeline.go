package batch

import (
	"context"
	"fmt"

	"fjacquet/fatura-csv/internal/dedup"
	"fjacquet/fatura-csv/internal/extraction"
	"fjacquet/fatura-csv/internal/logging"
	"fjacquet/fatura-csv/internal/models"
	"fjacquet/fatura-csv/internal/textsource"
)

// Outcome is the result of running the pipeline over a set of files.
type Outcome struct {
	Results      []extraction.Result
	Transactions []models.Transaction
	// Failed lists the files whose text could not be loaded.
	Failed     []string
	Duplicates int
}

// Pipeline loads statements, extracts them in parallel and deduplicates the merged
// sequence.
type Pipeline struct {
	source  *textsource.Source
	engine  *extraction.Engine
	dedup   *dedup.Deduplicator
	workers int
	logger  logging.Logger
}

// NewPipeline creates a Pipeline. A nil deduplicator disables deduplication.
func NewPipeline(source *textsource.Source, engine *extraction.Engine, d *dedup.Deduplicator, workers int, logger logging.Logger) *Pipeline {
	return &Pipeline{source: source, engine: engine, dedup: d, workers: workers, logger: logger}
}

// Run processes paths in order. A file that cannot be loaded is reported in
// Outcome.Failed and does not stop the others.
func (p *Pipeline) Run(ctx context.Context, paths []string) (Outcome, error) {
	var out Outcome
	docs := make([]models.Document, 0, len(paths))
	for _, path := range paths {
		doc, err := p.source.Load(path)
		if err != nil {
			p.logger.WithError(err).Warn("Skipping unreadable statement",
				logging.F(logging.FieldFile, path))
			out.Failed = append(out.Failed, path)
			continue
		}
		docs = append(docs, doc)
	}

	results, err := p.engine.ExtractAll(ctx, docs, p.workers)
	if err != nil {
		return Outcome{}, fmt.Errorf("extraction interrupted: %w", err)
	}
	out.Results = results
	out.Transactions = extraction.Flatten(results)

	if p.dedup != nil {
		before := len(out.Transactions)
		out.Transactions = p.dedup.Deduplicate(out.Transactions)
		out.Duplicates = before - len(out.Transactions)
	}

	p.logger.Info("Batch extraction completed",
		logging.F(logging.FieldFamily, p.engine.Family().Name),
		logging.F("documents", len(docs)),
		logging.F("failed", len(out.Failed)),
		logging.F(logging.FieldCount, len(out.Transactions)),
		logging.F("duplicates", out.Duplicates))
	return out, nil
}
