// Package collector coordinates one collection run: crawl every configured
// target, pull the optional API source, validate, and persist the table.
package collector

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/transportlab/transport-data-collector/internal/apiclient"
	"github.com/transportlab/transport-data-collector/internal/config"
	"github.com/transportlab/transport-data-collector/internal/crawler"
	"github.com/transportlab/transport-data-collector/internal/storage"
	"github.com/transportlab/transport-data-collector/internal/validator"
)

// Summary reports what one run attempted and produced. A run always
// completes and reports counts; single-site failures never abort it.
type Summary struct {
	RunID             string
	Targets           int
	PagesAttempted    int
	RecordsExtracted  int
	RecordsValidated  int
	DuplicatesRemoved int
	InvalidRemoved    int
	OutputPath        string
	Elapsed           time.Duration
}

// Collector owns the per-run pipeline wiring.
type Collector struct {
	cfg       config.Config
	logger    *zap.Logger
	validator *validator.Validator
	sink      *storage.CSVSink
	api       *apiclient.Client
}

// New wires a Collector from the loaded configuration.
func New(cfg config.Config, logger *zap.Logger) *Collector {
	c := &Collector{
		cfg:       cfg,
		logger:    logger,
		validator: validator.New(cfg.Scraper.MinContentLength, logger),
		sink:      storage.NewCSVSink(cfg.Output.Dir, cfg.Output.FilenamePrefix, logger),
	}
	if cfg.API.Enabled {
		c.api = apiclient.New(cfg.APIClientConfig(), logger)
	}
	return c
}

// Run executes one collection pass. Partial results from failed targets are
// kept; only configuration-level problems return an error.
func (c *Collector) Run(ctx context.Context) (Summary, error) {
	start := time.Now()
	runID := uuid.NewString()
	log := c.logger.With(zap.String("run_id", runID))

	crawlCfg := c.cfg.CrawlerConfig()
	if err := crawlCfg.Validate(); err != nil {
		return Summary{}, fmt.Errorf("crawler config: %w", err)
	}

	fetcher := crawler.NewFetcher(crawlCfg, log)
	detector := crawler.NewBlockDetector(crawlCfg.BlockIndicators)
	extractor := crawler.NewExtractor(crawlCfg.DateFormats)
	engine := crawler.NewEngine(crawlCfg, fetcher, detector, extractor, log)

	targets := c.cfg.Targets()
	log.Info("starting collection run", zap.Int("targets", len(targets)))

	var all []crawler.ExtractedRecord
	for _, target := range targets {
		if ctx.Err() != nil {
			break
		}
		records, err := engine.Run(ctx, target)
		if err != nil {
			log.Error("target crawl failed",
				zap.String("target", target.Name),
				zap.String("category", target.Category),
				zap.Error(err),
			)
			continue
		}
		all = append(all, records...)
	}

	if c.api != nil {
		all = append(all, c.fetchAPIRecords(ctx, log)...)
	}

	valid, stats := c.validator.Clean(all)

	summary := Summary{
		RunID:             runID,
		Targets:           len(targets),
		PagesAttempted:    engine.PagesAttempted(),
		RecordsExtracted:  len(all),
		RecordsValidated:  stats.Valid,
		DuplicatesRemoved: stats.DuplicatesRemoved,
		InvalidRemoved:    stats.InvalidRemoved,
		Elapsed:           time.Since(start),
	}

	if len(valid) > 0 {
		path, err := c.sink.Write(valid)
		if err != nil {
			return summary, fmt.Errorf("persist records: %w", err)
		}
		summary.OutputPath = path
	} else {
		log.Warn("no records collected this run")
	}

	log.Info("collection run finished",
		zap.Int("pages_attempted", summary.PagesAttempted),
		zap.Int("records_extracted", summary.RecordsExtracted),
		zap.Int("records_validated", summary.RecordsValidated),
		zap.Int("duplicates_removed", summary.DuplicatesRemoved),
		zap.Int("invalid_removed", summary.InvalidRemoved),
		zap.Duration("elapsed", summary.Elapsed),
	)
	return summary, nil
}

func (c *Collector) fetchAPIRecords(ctx context.Context, log *zap.Logger) []crawler.ExtractedRecord {
	apiRecords, err := c.api.FetchRecords(ctx, c.cfg.API.RecordsPath)
	if err != nil {
		log.Error("api source failed", zap.Error(err))
		return nil
	}

	scrapeDate := time.Now().Format("2006-01-02")
	records := make([]crawler.ExtractedRecord, 0, len(apiRecords))
	for _, r := range apiRecords {
		category := r.Category
		if category == "" {
			category = "api"
		}
		records = append(records, crawler.ExtractedRecord{
			Title:      r.Title,
			Content:    r.Content,
			Date:       r.Date,
			SourceURL:  r.URL,
			ScrapeDate: scrapeDate,
			Category:   category,
			Priority:   r.Priority,
		})
	}
	log.Info("api records fetched", zap.Int("records", len(records)))
	return records
}
