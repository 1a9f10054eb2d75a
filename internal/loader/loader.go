// Package loader reads a voltage-vs-time measurement from a CSV file.
package loader

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/relvacode/iso8601"

	"github.com/askiada/go-stepresponse/pkg/analysis"
	"github.com/askiada/go-stepresponse/pkg/analysis/model"
)

// Options selects the columns and rows to read.
type Options struct {
	TimeColumn  string
	ValueColumn string
	// SkipRows are 0-based line indices dropped before the header is looked for.
	SkipRows []int
	// Comma is the field delimiter, ',' when zero.
	Comma rune
}

// timeLayouts are tried, in order, when a timestamp is neither plain seconds nor ISO 8601.
var timeLayouts = []string{
	"2006/01/02 15:04:05",
	"2006-01-02 15:04:05",
	"2006/1/2 15:04:05",
	"01/02/2006 15:04:05",
	"15:04:05",
}

// Load reads the file at path.
func Load(path string, opts Options) ([]model.Sample, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to open %s", path)
	}
	defer file.Close()

	samples, err := Read(file, opts)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to load %s", path)
	}

	return samples, nil
}

// Read parses CSV from rdr. Times are returned in seconds relative to the first data row.
func Read(rdr io.Reader, opts Options) ([]model.Sample, error) {
	csvReader := csv.NewReader(rdr)
	csvReader.FieldsPerRecord = -1
	csvReader.LazyQuotes = true
	if opts.Comma != 0 {
		csvReader.Comma = opts.Comma
	}

	records, err := csvReader.ReadAll()
	if err != nil {
		return nil, malformed("unable to parse csv: %v", err)
	}

	skip := make(map[int]struct{}, len(opts.SkipRows))
	for _, row := range opts.SkipRows {
		skip[row] = struct{}{}
	}

	kept := make([][]string, 0, len(records))
	for i, record := range records {
		if _, ok := skip[i]; ok {
			continue
		}
		kept = append(kept, record)
	}

	if len(kept) == 0 {
		return nil, malformed("no header row")
	}

	header, rows := kept[0], kept[1:]
	timeIdx, err := columnIndex(header, opts.TimeColumn)
	if err != nil {
		return nil, err
	}
	valueIdx, err := columnIndex(header, opts.ValueColumn)
	if err != nil {
		return nil, err
	}

	if len(rows) == 0 {
		return nil, malformed("no data rows after the header")
	}

	var parse timeParser
	samples := make([]model.Sample, 0, len(rows))
	for i, row := range rows {
		if timeIdx >= len(row) || valueIdx >= len(row) {
			return nil, malformed("data row %d has %d fields", i+1, len(row))
		}

		if parse == nil {
			parse, err = detectTimeParser(row[timeIdx])
			if err != nil {
				return nil, malformed("data row %d: %v", i+1, err)
			}
		}

		ts, err := parse(row[timeIdx])
		if err != nil {
			return nil, malformed("data row %d: column %q: %v", i+1, opts.TimeColumn, err)
		}

		value, err := strconv.ParseFloat(strings.TrimSpace(row[valueIdx]), 64)
		if err != nil {
			return nil, malformed("data row %d: column %q: %q is not a number", i+1, opts.ValueColumn, row[valueIdx])
		}

		samples = append(samples, model.Sample{Time: ts, Value: value})
	}

	origin := samples[0].Time
	for i := range samples {
		samples[i].Time -= origin
	}

	return samples, nil
}

func columnIndex(header []string, name string) (int, error) {
	for i, col := range header {
		if strings.TrimSpace(col) == name {
			return i, nil
		}
	}

	return 0, malformed("column %q not found in header %v", name, header)
}

// timeParser converts a timestamp cell to seconds relative to the cell it was detected on.
type timeParser func(cell string) (float64, error)

// detectTimeParser picks the parser matching the first timestamp of the column.
func detectTimeParser(cell string) (timeParser, error) {
	cell = strings.TrimSpace(cell)

	if _, err := strconv.ParseFloat(cell, 64); err == nil {
		return func(c string) (float64, error) {
			return strconv.ParseFloat(strings.TrimSpace(c), 64)
		}, nil
	}

	if ref, err := iso8601.ParseString(cell); err == nil {
		return func(c string) (float64, error) {
			t, err := iso8601.ParseString(strings.TrimSpace(c))
			if err != nil {
				return 0, err
			}

			return t.Sub(ref).Seconds(), nil
		}, nil
	}

	for _, layout := range timeLayouts {
		ref, err := time.Parse(layout, cell)
		if err != nil {
			continue
		}

		return func(c string) (float64, error) {
			t, err := time.Parse(layout, strings.TrimSpace(c))
			if err != nil {
				return 0, err
			}

			return t.Sub(ref).Seconds(), nil
		}, nil
	}

	return nil, fmt.Errorf("unrecognised timestamp %q", cell)
}

func malformed(format string, args ...interface{}) error {
	return analysis.NewError(analysis.KindMalformedInput, format, args...)
}
