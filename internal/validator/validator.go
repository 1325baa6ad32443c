// Package validator cleans the raw record stream coming out of the crawl
// engine: deduplication, required-field checks, and date normalization.
package validator

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"unicode/utf8"

	"github.com/araddon/dateparse"
	"go.uber.org/zap"

	"github.com/transportlab/transport-data-collector/internal/crawler"
)

const (
	minYear = 2000
	maxYear = 2100
)

// ValidatedRecord is the terminal artifact handed to the persistence
// collaborator. Its Date is always YYYY-MM-DD with a year in [2000, 2100],
// and its DedupKey canonically identifies the (title, content) pair.
type ValidatedRecord struct {
	crawler.ExtractedRecord
	DedupKey string
}

// Stats aggregates what one cleaning pass removed.
type Stats struct {
	Input             int
	Valid             int
	DuplicatesRemoved int
	InvalidRemoved    int
}

// Validator enforces the record invariants. Invalid data is dropped and
// counted, never surfaced as an error.
type Validator struct {
	minContentLength int
	logger           *zap.Logger
}

// New builds a Validator with the configured minimum content length.
func New(minContentLength int, logger *zap.Logger) *Validator {
	if minContentLength <= 0 {
		minContentLength = 20
	}
	return &Validator{minContentLength: minContentLength, logger: logger}
}

// DedupKey derives the canonical key identifying duplicate records.
func DedupKey(title, content string) string {
	h := sha256.New()
	h.Write([]byte(title))
	h.Write([]byte{0x1f})
	h.Write([]byte(content))
	return hex.EncodeToString(h.Sum(nil))
}

// Clean deduplicates on (title, content) keeping the first occurrence, then
// drops records with missing fields, unparseable or out-of-range dates, or
// undersized content. Running Clean over its own output is a no-op.
func (v *Validator) Clean(records []crawler.ExtractedRecord) ([]ValidatedRecord, Stats) {
	stats := Stats{Input: len(records)}
	seen := make(map[string]struct{}, len(records))
	out := make([]ValidatedRecord, 0, len(records))

	for _, record := range records {
		key := DedupKey(record.Title, record.Content)
		if _, dup := seen[key]; dup {
			stats.DuplicatesRemoved++
			continue
		}
		seen[key] = struct{}{}

		cleaned, ok := v.validate(record)
		if !ok {
			stats.InvalidRemoved++
			continue
		}
		out = append(out, ValidatedRecord{
			ExtractedRecord: cleaned,
			DedupKey:        DedupKey(cleaned.Title, cleaned.Content),
		})
	}

	stats.Valid = len(out)
	TotalValidatedRecords.Add(float64(stats.Valid))
	v.logger.Info("validation finished",
		zap.Int("input", stats.Input),
		zap.Int("valid", stats.Valid),
		zap.Int("duplicates_removed", stats.DuplicatesRemoved),
		zap.Int("invalid_removed", stats.InvalidRemoved),
	)
	return out, stats
}

// validate applies the per-record rules and returns the normalized record.
func (v *Validator) validate(record crawler.ExtractedRecord) (crawler.ExtractedRecord, bool) {
	record.Title = strings.TrimSpace(record.Title)
	if record.Title == "" {
		return record, false
	}

	record.Content = strings.TrimSpace(record.Content)
	if utf8.RuneCountInString(record.Content) < v.minContentLength {
		return record, false
	}

	record.Date = strings.TrimSpace(record.Date)
	if record.Date == "" {
		return record, false
	}
	parsed, err := dateparse.ParseAny(record.Date)
	if err != nil {
		v.logger.Debug("unparseable date", zap.String("date", record.Date), zap.String("title", record.Title))
		return record, false
	}
	if parsed.Year() < minYear || parsed.Year() > maxYear {
		return record, false
	}
	record.Date = parsed.Format("2006-01-02")

	return record, true
}
