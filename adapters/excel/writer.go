package excel

import (
	"fmt"
	"io"
	"log"
	"strconv"
	"time"

	"rngbench/domain/run"

	"github.com/xuri/excelize/v2"
)

// ComparisonWriter renders a comparison matrix as an xlsx workbook with a
// summary grid, a long-format cell sheet and the run manifest
type ComparisonWriter struct {
	config ExportConfig
}

// NewComparisonWriter creates a writer with the given layout
func NewComparisonWriter(config ExportConfig) *ComparisonWriter {
	return &ComparisonWriter{config: config}
}

// Write streams the workbook to w
func (cw *ComparisonWriter) Write(w io.Writer, c *run.Comparison) error {
	f, err := cw.build(c)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// SaveAs writes the workbook to path
func (cw *ComparisonWriter) SaveAs(path string, c *run.Comparison) error {
	f, err := cw.build(c)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook %s: %w", path, err)
	}
	log.Printf("[ComparisonWriter] wrote %s (%d cells)", path, len(c.Cells))
	return nil
}

func (cw *ComparisonWriter) build(c *run.Comparison) (*excelize.File, error) {
	if c == nil || c.Manifest == nil {
		return nil, fmt.Errorf("comparison must carry a manifest")
	}
	startTime := time.Now()

	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", cw.config.SummarySheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to name summary sheet: %w", err)
	}
	for _, name := range []string{cw.config.CellsSheet, cw.config.ManifestSheet} {
		if _, err := f.NewSheet(name); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to create sheet %s: %w", name, err)
		}
	}

	steps := []func(*excelize.File, *run.Comparison) error{
		cw.writeSummary,
		cw.writeCells,
		cw.writeManifest,
	}
	for _, step := range steps {
		if err := step(f, c); err != nil {
			f.Close()
			return nil, err
		}
	}
	f.SetActiveSheet(0)

	log.Printf("[ComparisonWriter] workbook built in %.2fms", float64(time.Since(startTime).Nanoseconds())/1e6)
	return f, nil
}

// writeSummary lays out generators as rows and tests as columns. Each cell
// holds the score; the last column counts passes.
func (cw *ComparisonWriter) writeSummary(f *excelize.File, c *run.Comparison) error {
	sheet := cw.config.SummarySheet
	m := c.Manifest

	header := make([]interface{}, 0, len(m.Tests)+2)
	header = append(header, "generator")
	for _, t := range m.Tests {
		header = append(header, t)
	}
	header = append(header, "passed")
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write summary header: %w", err)
	}

	var passStyle, failStyle, headerStyle int
	if cw.config.HighlightOutcomes {
		var err error
		if passStyle, err = fillStyle(f, "#C6EFCE"); err != nil {
			return err
		}
		if failStyle, err = fillStyle(f, "#FFC7CE"); err != nil {
			return err
		}
		if headerStyle, err = f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err != nil {
			return fmt.Errorf("failed to create header style: %w", err)
		}
		last, _ := excelize.CoordinatesToCellName(len(header), 1)
		if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
			return fmt.Errorf("failed to style header: %w", err)
		}
	}

	passes := c.PassCount()
	for i, gen := range m.Generators {
		row := make([]interface{}, 0, len(header))
		row = append(row, gen)
		for _, cell := range c.Row(i) {
			row = append(row, cell.Score)
		}
		row = append(row, passes[i])

		start, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sheet, start, &row); err != nil {
			return fmt.Errorf("failed to write summary row %s: %w", gen, err)
		}

		if !cw.config.HighlightOutcomes {
			continue
		}
		for j, cell := range c.Row(i) {
			name, _ := excelize.CoordinatesToCellName(j+2, i+2)
			style := failStyle
			if cell.Passed {
				style = passStyle
			}
			if err := f.SetCellStyle(sheet, name, name, style); err != nil {
				return fmt.Errorf("failed to style %s: %w", name, err)
			}
		}
	}

	return f.SetColWidth(sheet, "A", "A", 20)
}

func (cw *ComparisonWriter) writeCells(f *excelize.File, c *run.Comparison) error {
	sheet := cw.config.CellsSheet

	header := make([]interface{}, len(cellHeaders))
	for i, h := range cellHeaders {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write cells header: %w", err)
	}

	for i, cell := range c.Cells {
		var pValue interface{} = ""
		if cell.PValue != nil {
			pValue = *cell.PValue
		}
		row := []interface{}{
			cell.Generator,
			cell.TestName,
			cell.Passed,
			cell.Score,
			string(cell.Status),
			pValue,
			cell.ExecutionTime,
			cell.Error,
		}
		start, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sheet, start, &row); err != nil {
			return fmt.Errorf("failed to write cell row %d: %w", i, err)
		}
	}
	return nil
}

func (cw *ComparisonWriter) writeManifest(f *excelize.File, c *run.Comparison) error {
	sheet := cw.config.ManifestSheet
	m := c.Manifest

	rows := [][]interface{}{
		{"id", m.ID.String()},
		{"samples", strconv.Itoa(m.Samples)},
		{"seed", m.Seed},
		{"code_version", m.CodeVersion},
		{"fingerprint", m.Fingerprint.String()},
		{"created_at", m.CreatedAt.Time().UTC().Format(time.RFC3339Nano)},
	}
	for i, row := range rows {
		start, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(sheet, start, &row); err != nil {
			return fmt.Errorf("failed to write manifest row %s: %w", row[0], err)
		}
	}
	return f.SetColWidth(sheet, "A", "B", 24)
}

func fillStyle(f *excelize.File, color string) (int, error) {
	id, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1},
	})
	if err != nil {
		return 0, fmt.Errorf("failed to create fill style: %w", err)
	}
	return id, nil
}
