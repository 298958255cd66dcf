package service

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jjenkins/pincode/internal/logging"
	"github.com/jjenkins/pincode/internal/model"
)

// Looker performs a single pincode lookup
type Looker interface {
	Lookup(ctx context.Context, code model.PostalCode) model.QueryResult
}

// ImportStats tracks batch import statistics
type ImportStats struct {
	Total     int
	Succeeded int
	Empty     int
	Failed    int
	Invalid   int
	Records   int
}

// Importer looks up a list of pincodes one after another and stores each
// outcome in the history
type Importer struct {
	looker   Looker
	recorder Recorder
	delay    time.Duration
	logger   *logging.Logger
}

// NewImporter creates a new Importer. recorder may be nil to only print results.
func NewImporter(looker Looker, recorder Recorder, delay time.Duration, logger *logging.Logger) *Importer {
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Importer{
		looker:   looker,
		recorder: recorder,
		delay:    delay,
		logger:   logger,
	}
}

// ReadCodes reads one pincode per line, skipping blank lines and # comments
func ReadCodes(r io.Reader) ([]string, error) {
	var codes []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		codes = append(codes, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read pincodes: %w", err)
	}
	return codes, nil
}

// Import looks up every code in order, pausing between requests.
// It stops early when ctx is cancelled and returns the stats so far.
func (i *Importer) Import(ctx context.Context, codes []string) (*ImportStats, error) {
	stats := &ImportStats{Total: len(codes)}
	looked := 0

	for idx, raw := range codes {
		select {
		case <-ctx.Done():
			return stats, ctx.Err()
		default:
		}

		progress := fmt.Sprintf("[%d/%d]", idx+1, stats.Total)

		code, err := Validate(raw)
		if err != nil {
			i.logger.Warn("skipping invalid pincode", "progress", progress, "input", raw)
			stats.Invalid++
			continue
		}

		if looked > 0 && i.delay > 0 {
			select {
			case <-ctx.Done():
				return stats, ctx.Err()
			case <-time.After(i.delay):
			}
		}
		looked++

		start := time.Now()
		result := i.looker.Lookup(ctx, code)
		elapsed := time.Since(start)

		if ctx.Err() != nil {
			return stats, ctx.Err()
		}

		switch result.Outcome {
		case model.OutcomeSuccess:
			stats.Succeeded++
			stats.Records += len(result.Records)
			i.logger.Info("lookup completed", "progress", progress, "pincode", code.String(), "records", len(result.Records))
		case model.OutcomeEmpty:
			stats.Empty++
			i.logger.Info("no postal data", "progress", progress, "pincode", code.String(), "message", result.Message)
		default:
			stats.Failed++
			i.logger.Warn("lookup failed", "progress", progress, "pincode", code.String(), "error", fmt.Sprint(result.Err))
		}

		if i.recorder != nil {
			if err := i.recorder.Record(ctx, NewLookupRecord(code, result, elapsed)); err != nil {
				return stats, fmt.Errorf("failed to record %s: %w", code, err)
			}
		}
	}

	return stats, nil
}

// PrintSummary writes the import statistics
func (i *Importer) PrintSummary(w io.Writer, stats *ImportStats) {
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "=== Import Summary ===")
	fmt.Fprintf(w, "Total pincodes:  %d\n", stats.Total)
	fmt.Fprintf(w, "Found:           %d (%d post offices)\n", stats.Succeeded, stats.Records)
	fmt.Fprintf(w, "No data:         %d\n", stats.Empty)
	fmt.Fprintf(w, "Failed:          %d\n", stats.Failed)
	fmt.Fprintf(w, "Invalid:         %d\n", stats.Invalid)

	if looked := stats.Total - stats.Invalid; looked > 0 {
		successRate := float64(stats.Succeeded) / float64(looked) * 100
		fmt.Fprintf(w, "Success rate:    %.1f%%\n", successRate)
	}
}
