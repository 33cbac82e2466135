package excel

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"rngbench/domain/core"
	"rngbench/domain/run"
	"rngbench/domain/verdict"

	"github.com/xuri/excelize/v2"
)

// DataReader reads exported comparison cells back from xlsx or CSV files
type DataReader struct {
	filePath string
	fileType string // "xlsx" or "csv"
	config   ExportConfig
}

// NewDataReader creates a reader; the file type follows the extension
func NewDataReader(filePath string, config ExportConfig) *DataReader {
	ext := strings.ToLower(filepath.Ext(filePath))
	fileType := "xlsx"
	if ext == ".csv" {
		fileType = "csv"
	}
	return &DataReader{filePath: filePath, fileType: fileType, config: config}
}

// ReadData reads the cells sheet (or the whole CSV) into structured rows
func (r *DataReader) ReadData() (*ExcelData, error) {
	log.Printf("[DataReader] Starting to read %s file: %s", r.fileType, r.filePath)

	// Check if file exists
	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%s file not found: %s", strings.ToUpper(r.fileType), r.filePath)
	}

	switch r.fileType {
	case "csv":
		file, err := os.Open(r.filePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open CSV file: %w", err)
		}
		defer file.Close()
		return readCSV(file)
	case "xlsx":
		f, err := excelize.OpenFile(r.filePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open Excel file: %w", err)
		}
		defer f.Close()
		return r.readSheet(f, r.config.CellsSheet)
	default:
		return nil, fmt.Errorf("unsupported file type: %s", r.fileType)
	}
}

// ReadComparison rebuilds a comparison from a workbook written by
// ComparisonWriter
func ReadComparison(rd io.Reader, config ExportConfig) (*run.Comparison, error) {
	f, err := excelize.OpenReader(rd)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	r := &DataReader{fileType: "xlsx", config: config}
	data, err := r.readSheet(f, config.CellsSheet)
	if err != nil {
		return nil, err
	}
	manifest, err := r.readManifest(f)
	if err != nil {
		return nil, err
	}

	cells, err := data.Cells()
	if err != nil {
		return nil, err
	}
	for _, cell := range cells {
		manifest.Generators = appendUnique(manifest.Generators, cell.Generator)
		manifest.Tests = appendUnique(manifest.Tests, cell.TestName)
	}
	if len(cells) != len(manifest.Generators)*len(manifest.Tests) {
		return nil, fmt.Errorf("cells sheet holds %d rows for a %dx%d matrix",
			len(cells), len(manifest.Generators), len(manifest.Tests))
	}

	return &run.Comparison{Manifest: manifest, Cells: cells}, nil
}

// Cells parses every data row as a matrix cell, in sheet order
func (d *ExcelData) Cells() ([]run.Cell, error) {
	cells := make([]run.Cell, 0, len(d.Rows))
	for i, row := range d.Rows {
		cell, err := parseCell(row)
		if err != nil {
			return nil, fmt.Errorf("cells row %d: %w", i+2, err)
		}
		cells = append(cells, cell)
	}
	return cells, nil
}

// readSheet reads a sheet into structured format
func (r *DataReader) readSheet(f *excelize.File, sheet string) (*ExcelData, error) {
	readStart := time.Now()
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", sheet, err)
	}
	log.Printf("[DataReader] %s read in %.2fms (%d rows)", sheet, float64(time.Since(readStart).Nanoseconds())/1e6, len(rows))

	if len(rows) < 1 {
		return nil, fmt.Errorf("sheet %s must have at least a header row", sheet)
	}
	return processRows(rows), nil
}

func (r *DataReader) readManifest(f *excelize.File) (*run.Manifest, error) {
	rows, err := f.GetRows(r.config.ManifestSheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", r.config.ManifestSheet, err)
	}
	values := make(map[string]string, len(rows))
	for _, row := range rows {
		if len(row) >= 2 {
			values[row[0]] = row[1]
		}
	}

	m := &run.Manifest{
		ID:          core.BenchmarkID(values["id"]),
		Seed:        values["seed"],
		CodeVersion: values["code_version"],
		Fingerprint: core.Hash(values["fingerprint"]),
	}
	if s := values["samples"]; s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return nil, fmt.Errorf("manifest samples %q: %w", s, err)
		}
		m.Samples = n
	}
	if ts := values["created_at"]; ts != "" {
		t, err := time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			return nil, fmt.Errorf("manifest created_at %q: %w", ts, err)
		}
		m.CreatedAt = core.NewTimestamp(t)
	}
	return m, nil
}

func readCSV(rd io.Reader) (*ExcelData, error) {
	rows, err := csv.NewReader(rd).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV file: %w", err)
	}
	if len(rows) < 1 {
		return nil, fmt.Errorf("CSV file must have at least a header row")
	}
	return processRows(rows), nil
}

// processRows converts raw string rows into ExcelData format
func processRows(rows [][]string) *ExcelData {
	// Extract headers from first row
	headers := make([]string, len(rows[0]))
	for i, header := range rows[0] {
		headers[i] = strings.TrimSpace(header)
	}

	// Extract data rows
	dataRows := make([]RawRowData, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rowData := make(RawRowData)
		for j, cell := range row {
			if j < len(headers) {
				rowData[headers[j]] = strings.TrimSpace(cell)
			}
		}
		dataRows = append(dataRows, rowData)
	}

	return &ExcelData{Headers: headers, Rows: dataRows}
}

func parseCell(row RawRowData) (run.Cell, error) {
	cell := run.Cell{
		Generator: row["generator"],
		TestName:  row["test_name"],
		Status:    verdict.Status(row["status"]),
		Error:     row["error"],
	}
	if cell.Generator == "" || cell.TestName == "" {
		return cell, fmt.Errorf("generator and test_name are required")
	}

	var err error
	if cell.Passed, err = strconv.ParseBool(strings.ToLower(row["passed"])); err != nil {
		return cell, fmt.Errorf("passed: %w", err)
	}
	if cell.Score, err = parseFloat(row["score"]); err != nil {
		return cell, fmt.Errorf("score: %w", err)
	}
	if cell.ExecutionTime, err = parseFloat(row["execution_time"]); err != nil {
		return cell, fmt.Errorf("execution_time: %w", err)
	}
	if s := row["p_value"]; s != "" {
		p, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return cell, fmt.Errorf("p_value: %w", err)
		}
		cell.PValue = &p
	}
	return cell, nil
}

func parseFloat(s string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}

func appendUnique(list []string, v string) []string {
	for _, x := range list {
		if x == v {
			return list
		}
	}
	return append(list, v)
}
