// Package container provides dependency injection for the fatura-csv application.
// It centralizes the creation and wiring of all application dependencies,
// making them explicit and testable.
package container

import (
	"fmt"
	"time"

	"fjacquet/fatura-csv/internal/batch"
	"fjacquet/fatura-csv/internal/config"
	"fjacquet/fatura-csv/internal/dateutils"
	"fjacquet/fatura-csv/internal/dedup"
	"fjacquet/fatura-csv/internal/extraction"
	"fjacquet/fatura-csv/internal/family"
	"fjacquet/fatura-csv/internal/installment"
	"fjacquet/fatura-csv/internal/logging"
	"fjacquet/fatura-csv/internal/report"
	"fjacquet/fatura-csv/internal/textsource"
)

// Option customizes the container, mostly for tests.
type Option func(*options)

type options struct {
	logger    logging.Logger
	extractor textsource.Extractor
	now       func() time.Time
}

// WithLogger replaces the logger built from the log section.
func WithLogger(logger logging.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithExtractor replaces the pdftotext/library extractor chain.
func WithExtractor(e textsource.Extractor) Option {
	return func(o *options) { o.extractor = e }
}

// WithClock fixes "now" for year resolution and deduplication.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// Container holds all application dependencies and provides methods to access them.
// Container is immutable after creation.
type Container struct {
	logger   logging.Logger
	config   *config.Config
	families *family.Registry
	resolver *dateutils.Resolver
	source   *textsource.Source
	dedup    *dedup.Deduplicator
	reports  *report.Generator
}

// NewContainer creates and wires all application dependencies.
//
// Parameters:
//   - cfg: Application configuration
//   - opts: optional overrides
//
// Returns:
//   - *Container: Fully wired container with all dependencies
//   - error: Any error encountered during dependency creation
func NewContainer(cfg *config.Config, opts ...Option) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}

	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	logger := o.logger
	if logger == nil {
		logger = config.ConfigureLoggingFromConfig(cfg)
	}

	families := family.NewRegistry()
	if cfg.Extraction.RulesFile != "" {
		if err := families.LoadOverrides(cfg.Extraction.RulesFile); err != nil {
			return nil, fmt.Errorf("failed to load family rules: %w", err)
		}
		logger.Info("Loaded family rule overrides",
			logging.F(logging.FieldFile, cfg.Extraction.RulesFile))
	}
	if _, err := families.Get(cfg.Extraction.Family); err != nil {
		return nil, err
	}

	extractor := o.extractor
	if extractor == nil {
		extractor = textsource.NewChainExtractor(
			textsource.NewPdftotextExtractor(cfg.Extraction.Pdftotext),
			textsource.NewLibraryExtractor(),
		)
	}

	dedupOpts := dedup.Options{
		MinYear:                   cfg.Dedup.MinYear,
		LateMonth:                 time.Month(cfg.Dedup.LateMonth),
		PreferLaterForEarlyMonths: cfg.Dedup.PreferLaterForEarlyMonths,
	}

	c := &Container{
		logger:   logger,
		config:   cfg,
		families: families,
		resolver: dateutils.NewResolverWithClock(logger, o.now),
		source:   textsource.NewSource(extractor, logger),
		dedup:    dedup.NewDeduplicatorWithClock(dedupOpts, logger, o.now),
		reports:  report.NewGenerator(cfg.Delimiter(), logger),
	}

	logger.Debug("Container initialized successfully",
		logging.F("families", families.Names()),
		logging.F(logging.FieldFamily, cfg.Extraction.Family),
		logging.F("dedup_enabled", cfg.Dedup.Enabled))
	return c, nil
}

// ExtractionOptions maps the configuration to engine options. A non-zero year overrides
// extraction.year.
func (c *Container) ExtractionOptions(year int) extraction.Options {
	if year == 0 {
		year = c.config.Extraction.Year
	}
	return extraction.Options{
		ExplicitYear:      year,
		MinYear:           c.config.Extraction.MinYear,
		YearHintRatio:     c.config.Extraction.YearHintRatio,
		BillingOffsetDays: c.config.Extraction.BillingOffsetDays,
		Thresholds: installment.Thresholds{
			Distance:      c.config.Installments.DistanceThreshold,
			HeavyDistance: c.config.Installments.HeavyDistanceThreshold,
			MaterialTotal: c.config.MaterialTotal(),
		},
	}
}

// GetEngine builds an engine for familyName, or the configured family when empty.
func (c *Container) GetEngine(familyName string, year int) (*extraction.Engine, error) {
	if familyName == "" {
		familyName = c.config.Extraction.Family
	}
	f, err := c.families.Get(familyName)
	if err != nil {
		return nil, err
	}
	return extraction.NewEngine(f, c.ExtractionOptions(year), c.resolver, c.logger)
}

// GetPipeline wires source, engine and, when enabled, the deduplicator.
func (c *Container) GetPipeline(familyName string, year int, dedupEnabled bool) (*batch.Pipeline, error) {
	engine, err := c.GetEngine(familyName, year)
	if err != nil {
		return nil, err
	}
	var d *dedup.Deduplicator
	if dedupEnabled {
		d = c.dedup
	}
	return batch.NewPipeline(c.source, engine, d, c.config.Extraction.Workers, c.logger), nil
}

// GetLogger returns the container's logger instance.
func (c *Container) GetLogger() logging.Logger {
	return c.logger
}

// GetConfig returns the container's configuration instance.
func (c *Container) GetConfig() *config.Config {
	return c.config
}

// GetFamilies returns the family registry, overrides applied.
func (c *Container) GetFamilies() *family.Registry {
	return c.families
}

// GetSource returns the statement text source.
func (c *Container) GetSource() *textsource.Source {
	return c.source
}

// GetDeduplicator returns the configured deduplicator.
func (c *Container) GetDeduplicator() *dedup.Deduplicator {
	return c.dedup
}

// GetReportGenerator returns the report sink.
func (c *Container) GetReportGenerator() *report.Generator {
	return c.reports
}

// Close performs cleanup of container resources.
func (c *Container) Close() error {
	c.logger.Debug("Container closed")
	return nil
}
