package excel

// RawRowData represents a row of raw sheet data as string key-value pairs
type RawRowData map[string]string

// ExcelData represents one sheet read as a header row plus data rows
type ExcelData struct {
	Headers []string     // Column headers
	Rows    []RawRowData // Data rows
}

// cellHeaders is the column layout of the long-format cells sheet
var cellHeaders = []string{"generator", "test_name", "passed", "score", "status", "p_value", "execution_time", "error"}
