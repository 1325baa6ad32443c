// Package storage persists the validated record table as a flat CSV file.
package storage

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/transportlab/transport-data-collector/internal/validator"
)

// csvHeader is the record table column order.
var csvHeader = []string{"title", "content", "date", "source_url", "scrape_date", "category", "priority"}

// CSVSink writes one timestamped CSV file per collection run.
type CSVSink struct {
	dir    string
	prefix string
	logger *zap.Logger
	now    func() time.Time
}

// NewCSVSink returns a sink rooted at dir. Files are named
// <prefix>_<timestamp>.csv.
func NewCSVSink(dir, prefix string, logger *zap.Logger) *CSVSink {
	if prefix == "" {
		prefix = "transport_data"
	}
	return &CSVSink{dir: dir, prefix: prefix, logger: logger, now: time.Now}
}

// Write persists the records and returns the file path.
func (s *CSVSink) Write(records []validator.ValidatedRecord) (string, error) {
	if err := os.MkdirAll(s.dir, 0o750); err != nil {
		return "", fmt.Errorf("create output dir %s: %w", s.dir, err)
	}

	name := fmt.Sprintf("%s_%s.csv", s.prefix, s.now().Format("20060102_150405"))
	path := filepath.Join(s.dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	if err := WriteTable(f, records); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}

	s.logger.Info("records saved",
		zap.String("path", path),
		zap.Int("records", len(records)),
	)
	return path, nil
}

// WriteTable writes the header and one row per record to w.
func WriteTable(w io.Writer, records []validator.ValidatedRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, record := range records {
		row := []string{
			record.Title,
			record.Content,
			record.Date,
			record.SourceURL,
			record.ScrapeDate,
			record.Category,
			strconv.Itoa(record.Priority),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
