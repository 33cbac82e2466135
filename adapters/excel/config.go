package excel

// ExportConfig controls the workbook layout of a comparison export
type ExportConfig struct {
	SummarySheet      string `json:"summary_sheet"`
	CellsSheet        string `json:"cells_sheet"`
	ManifestSheet     string `json:"manifest_sheet"`
	HighlightOutcomes bool   `json:"highlight_outcomes"`
}

// DefaultExportConfig returns the layout the reader expects
func DefaultExportConfig() ExportConfig {
	return ExportConfig{
		SummarySheet:      "Summary",
		CellsSheet:        "Cells",
		ManifestSheet:     "Manifest",
		HighlightOutcomes: true,
	}
}
