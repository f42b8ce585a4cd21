// Package outwriter renders run reports, history charts and status output.
package outwriter

import (
	"fmt"
	"io"

	"github.com/huangsam/benchtrack/internal/contract"
	"github.com/huangsam/benchtrack/schema"
)

// WriteRunReport writes the report in the configured output mode.
func WriteRunReport(w io.Writer, report schema.RunReport, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		if err := writeJSON(w, report); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeCSVReport(w, report, createFormatter(cfg.Precision)); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.TableOut:
		if err := writeReportTable(w, report, cfg); err != nil {
			return fmt.Errorf("error writing table output: %w", err)
		}
	default:
		if _, err := io.WriteString(w, RenderReport(report, cfg.Precision, cfg.UseColors)); err != nil {
			return fmt.Errorf("error writing text output: %w", err)
		}
	}
	return nil
}

// PrintRunReport writes the report to cfg.OutputFile, or stdout when it is empty.
func PrintRunReport(report schema.RunReport, cfg *contract.Config) error {
	if cfg.OutputFile != "" && cfg.UseColors {
		cfg = cfg.Clone()
		cfg.UseColors = false
	}
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return WriteRunReport(w, report, cfg)
	}, fmt.Sprintf("Wrote %s report", outputName(cfg.Output)))
}

func outputName(mode schema.OutputMode) string {
	if mode == "" {
		return string(schema.TextOut)
	}
	return string(mode)
}
