package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"rngbench/adapters/excel"
	"rngbench/adapters/report"

	"github.com/spf13/cobra"
)

func newReportCmd() *cobra.Command {
	var htmlPath string

	cmd := &cobra.Command{
		Use:   "report [file]",
		Short: "Render a previously exported comparison",
		Long: `Read a comparison workbook written by "compare --xlsx" (or a CSV with the
same cells columns) and print it as a markdown matrix.

Example: rngbench report matrix.xlsx --html matrix.html`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if htmlPath != "" {
				if err := writeExportHTML(args[0], htmlPath); err != nil {
					return err
				}
				fmt.Fprintf(os.Stderr, "HTML report written to %s\n", htmlPath)
				return nil
			}
			return renderExport(os.Stdout, args[0])
		},
	}

	cmd.Flags().StringVar(&htmlPath, "html", "", "Write an HTML report to this file instead of printing")
	return cmd
}

// renderExport prints an exported comparison. Workbooks carry a manifest and
// render as the full matrix; CSV files only hold cells and print as a table.
func renderExport(w io.Writer, path string) error {
	cfg := excel.DefaultExportConfig()

	if strings.EqualFold(filepath.Ext(path), ".csv") {
		data, err := excel.NewDataReader(path, cfg).ReadData()
		if err != nil {
			return err
		}
		cells, err := data.Cells()
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "GENERATOR\tTEST\tSTATUS\tPASSED\tSCORE")
		for _, c := range cells {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%v\t%.4f\n", c.Generator, c.TestName, c.Status, c.Passed, c.Score)
		}
		return tw.Flush()
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	comparison, err := excel.ReadComparison(f, cfg)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, report.ComparisonMarkdown(comparison))
	return err
}

func writeExportHTML(path, out string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	comparison, err := excel.ReadComparison(f, excel.DefaultExportConfig())
	if err != nil {
		return err
	}
	if err := os.WriteFile(out, report.ComparisonHTML(comparison), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", out, err)
	}
	return nil
}
