// Package report renders comparison matrices and benchmark timings as
// markdown tables and standalone HTML pages.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"rngbench/domain/run"
	"rngbench/domain/verdict"
)

// ComparisonMarkdown renders the matrix with one row per generator. Each cell
// shows the outcome and p-value (or score for tests without one).
func ComparisonMarkdown(c *run.Comparison) string {
	var b strings.Builder
	m := c.Manifest

	fmt.Fprintf(&b, "# Comparison %s\n\n", m.ID)
	fmt.Fprintf(&b, "- Samples: %d bits\n", m.Samples)
	fmt.Fprintf(&b, "- Seed: %s\n", m.Seed)
	fmt.Fprintf(&b, "- Code version: %s\n", m.CodeVersion)
	fmt.Fprintf(&b, "- Created: %s\n\n", m.CreatedAt.Time().UTC().Format(time.RFC3339))

	b.WriteString("| Generator |")
	for _, t := range m.Tests {
		fmt.Fprintf(&b, " %s |", t)
	}
	b.WriteString(" Passed |\n|---|")
	for range m.Tests {
		b.WriteString("---|")
	}
	b.WriteString("---|\n")

	passes := c.PassCount()
	for i, gen := range m.Generators {
		fmt.Fprintf(&b, "| %s |", gen)
		for _, cell := range c.Row(i) {
			fmt.Fprintf(&b, " %s |", formatCell(cell))
		}
		fmt.Fprintf(&b, " %d/%d |\n", passes[i], len(m.Tests))
	}

	var notes []string
	for _, cell := range c.Cells {
		if cell.Error != "" {
			notes = append(notes, fmt.Sprintf("- **%s / %s**: %s", cell.Generator, cell.TestName, escape(cell.Error)))
		}
	}
	if len(notes) > 0 {
		b.WriteString("\n## Notes\n\n")
		b.WriteString(strings.Join(notes, "\n"))
		b.WriteString("\n")
	}
	return b.String()
}

func formatCell(cell run.Cell) string {
	switch cell.Status {
	case verdict.StatusError:
		return "ERROR"
	case verdict.StatusInsufficient:
		return "n/a"
	}
	label := "FAIL"
	if cell.Passed {
		label = "PASS"
	}
	if cell.PValue != nil {
		return fmt.Sprintf("%s (p=%.4f)", label, *cell.PValue)
	}
	return fmt.Sprintf("%s (score=%.4f)", label, cell.Score)
}

// BenchmarkMarkdown renders a throughput table, fastest generator first
// among the successful ones
func BenchmarkMarkdown(r *run.BenchmarkReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Benchmark %s\n\n", r.ID)
	fmt.Fprintf(&b, "%d bits per generator.\n\n", r.Samples)
	b.WriteString("| Generator | Time (s) | Mean bit | Bits/s |\n|---|---|---|---|\n")
	for _, e := range r.Entries {
		if !e.OK() {
			fmt.Fprintf(&b, "| %s | failed: %s | | |\n", e.Generator, escape(e.Error))
			continue
		}
		fmt.Fprintf(&b, "| %s | %.6f | %.4f | %.0f |\n", e.Generator, e.Elapsed, e.MeanBit, e.BitsPerSecond)
	}
	if best, ok := r.Fastest(); ok {
		fmt.Fprintf(&b, "\nFastest: **%s**\n", best.Generator)
	}
	return b.String()
}

// escape keeps free text from breaking table cells
func escape(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	return strings.ReplaceAll(s, "\n", " ")
}

// ToHTML renders markdown as a complete HTML page
func ToHTML(md string, title string) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	doc := p.Parse([]byte(md))

	renderer := html.NewRenderer(html.RendererOptions{
		Flags: html.HrefTargetBlank | html.CompletePage,
		Title: title,
	})
	return markdown.Render(doc, renderer)
}

// ComparisonHTML is ComparisonMarkdown rendered as a page
func ComparisonHTML(c *run.Comparison) []byte {
	return ToHTML(ComparisonMarkdown(c), "Comparison "+c.Manifest.ID.String())
}
