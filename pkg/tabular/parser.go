// Package tabular turns delimited text with a header line into header-keyed rows.
package tabular

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/synaptica-ai/trialscope/pkg/common/logger"
	"github.com/synaptica-ai/trialscope/pkg/sources"
)

// RawRow maps a header name to the raw field text of one line.
type RawRow map[string]string

// Value returns the first non-empty value among keys, or "" when none is present.
func (r RawRow) Value(keys ...string) string {
	for _, k := range keys {
		if v := r[k]; v != "" {
			return v
		}
	}
	return ""
}

// A field beyond either bound most likely began with an unterminated quote and
// absorbed the rows after it.
const (
	maxFieldLines = 50
	maxFieldBytes = 256 * 1024
)

type Options struct {
	Comma rune
}

// Parse reads every row of r. Rows the tokenizer rejects are skipped; a short row
// leaves its trailing columns absent and a long row drops its extra fields.
// Only a failure of the underlying reader is returned as an error.
func Parse(r io.Reader) ([]RawRow, error) {
	return ParseWithOptions(r, Options{})
}

func ParseWithOptions(r io.Reader, opts Options) ([]RawRow, error) {
	bufReader := bufio.NewReaderSize(r, 256*1024)
	if bom, err := bufReader.Peek(3); err == nil && bom[0] == 0xEF && bom[1] == 0xBB && bom[2] == 0xBF {
		bufReader.Discard(3)
	}

	reader := csv.NewReader(bufReader)
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1
	if opts.Comma != 0 {
		reader.Comma = opts.Comma
	}

	var header []string
	for header == nil {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return []RawRow{}, nil
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				logger.Log.WithError(err).Warn("skipping malformed header line")
				continue
			}
			return nil, err
		}
		if isBlank(record) {
			continue
		}
		header = make([]string, len(record))
		for i, h := range record {
			header[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		}
	}

	rows := make([]RawRow, 0)
	skipped := 0
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				skipped++
				logger.Log.WithError(err).WithField("line", parseErr.StartLine).Warn("skipping malformed row")
				continue
			}
			return nil, err
		}
		if isBlank(record) {
			continue
		}
		if i, ok := oversizedField(record); ok {
			line, _ := reader.FieldPos(i)
			column := ""
			if i < len(header) {
				column = header[i]
			}
			logger.Log.WithFields(map[string]interface{}{
				"line":   line,
				"column": column,
				"bytes":  len(record[i]),
				"lines":  strings.Count(record[i], "\n") + 1,
			}).Warn("oversized field, an unterminated quote may have swallowed later rows")
		}

		row := make(RawRow, len(header))
		for i, name := range header {
			if i >= len(record) {
				break
			}
			if name == "" {
				continue
			}
			row[name] = record[i]
		}
		rows = append(rows, row)
	}

	if skipped > 0 {
		logger.Log.WithFields(map[string]interface{}{
			"rows":    len(rows),
			"skipped": skipped,
		}).Warn("tabular input contained malformed rows")
	}
	return rows, nil
}

// ParseSource opens src and parses its content. Any failure to obtain or read the
// stream is reported as a retrieval failure with zero rows.
func ParseSource(ctx context.Context, src sources.Source) ([]RawRow, error) {
	body, err := src.Open(ctx)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	rows, err := Parse(body)
	if err != nil {
		return nil, &sources.RetrievalError{Source: src.Name(), Err: fmt.Errorf("reading stream: %w", err)}
	}

	logger.Log.WithFields(map[string]interface{}{
		"source": src.Name(),
		"rows":   len(rows),
	}).Info("Loaded tabular rows")
	return rows, nil
}

// oversizedField reports the first field of record that spans too many lines
// or bytes.
func oversizedField(record []string) (int, bool) {
	for i, field := range record {
		if len(field) > maxFieldBytes || strings.Count(field, "\n") >= maxFieldLines {
			return i, true
		}
	}
	return -1, false
}

func isBlank(record []string) bool {
	return len(record) == 0 || (len(record) == 1 && strings.TrimSpace(record[0]) == "")
}
