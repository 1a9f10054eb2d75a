// Package report turns analysis results into records for display.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/askiada/go-stepresponse/pkg/analysis"
	"github.com/askiada/go-stepresponse/pkg/analysis/model"
)

// Format selects how records are written.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatText Format = "text"
)

// Record is the outcome of one file.
type Record struct {
	File           string                `yaml:"file"`
	RunID          string                `yaml:"run_id"`
	Samples        int                   `yaml:"samples"`
	Origin         *model.Origin         `yaml:"origin,omitempty"`
	Classification *model.Classification `yaml:"classification,omitempty"`
	Chart          string                `yaml:"chart,omitempty"`
	Warnings       []string              `yaml:"warnings,omitempty"`
	ErrorKind      analysis.Kind         `yaml:"error_kind,omitempty"`
	Error          string                `yaml:"error,omitempty"`
}

// Failed reports whether the analysis of the file aborted.
func (r Record) Failed() bool {
	return r.Error != ""
}

// FromResult builds the record of a successful run.
func FromResult(runID, file string, res *model.Result) Record {
	origin := res.Origin
	classification := res.Classification

	return Record{
		File:           file,
		RunID:          runID,
		Samples:        len(res.Aligned),
		Origin:         &origin,
		Classification: &classification,
		Warnings:       res.Warnings,
	}
}

// FromError builds the record of an aborted run.
func FromError(runID, file string, err error) Record {
	return Record{
		File:      file,
		RunID:     runID,
		ErrorKind: analysis.KindOf(err),
		Error:     err.Error(),
	}
}

// Write writes records to wrt in the given format.
func Write(wrt io.Writer, format Format, records []Record) error {
	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(wrt)
		enc.SetIndent(2)
		err := enc.Encode(records)
		if err != nil {
			return errors.Wrap(err, "unable to encode yaml report")
		}

		return errors.Wrap(enc.Close(), "unable to flush yaml report")
	case FormatText:
		for _, rec := range records {
			_, err := io.WriteString(wrt, Text(rec))
			if err != nil {
				return errors.Wrap(err, "unable to write text report")
			}
		}

		return nil
	default:
		return errors.Errorf("unknown report format %q", format)
	}
}

// Text renders a record for a terminal.
func Text(rec Record) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "== %s\n", rec.File)
	if rec.Failed() {
		fmt.Fprintf(&sb, "[ERROR] %s\n", rec.Error)

		return sb.String()
	}

	for _, w := range rec.Warnings {
		fmt.Fprintf(&sb, "[WARN] %s\n", w)
	}
	if rec.Origin != nil {
		fmt.Fprintf(&sb, "[INFO] Origin determined at index %d, time %.4f s (baseline %.4f)\n",
			rec.Origin.Index, rec.Origin.Time, rec.Origin.Baseline)
	}
	if rec.Classification != nil {
		c := rec.Classification
		std := "n/a"
		if c.SettleSamples >= 2 {
			std = fmt.Sprintf("%.4f", c.SettleStd)
		}
		fmt.Fprintf(&sb, "[INFO] peak variation %.4f, std after settle %s (%d samples), reason %s\n",
			c.PeakVariation, std, c.SettleSamples, c.Reason)
		if c.IsStepResponse {
			sb.WriteString("[RESULT] STEP RESPONSE DETECTED\n")
		} else {
			sb.WriteString("[RESULT] NO STEP RESPONSE DETECTED\n")
		}
	}
	if rec.Chart != "" {
		fmt.Fprintf(&sb, "[INFO] Graph saved: %s\n", rec.Chart)
	}

	return sb.String()
}
