package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rngbench/adapters/excel"
	"rngbench/domain/core"
	"rngbench/domain/run"
	"rngbench/domain/verdict"
)

func TestParseGeneratorParams(t *testing.T) {
	p, err := parseGeneratorParams(map[string]string{"a": "1103515245", "m": " 2147483648 "})
	require.NoError(t, err)
	assert.Equal(t, map[string]uint64{"a": 1103515245, "m": 2147483648}, p)

	p, err = parseGeneratorParams(nil)
	require.NoError(t, err)
	assert.Nil(t, p)

	_, err = parseGeneratorParams(map[string]string{"a": "-1"})
	assert.Error(t, err)
}

func TestResolveSeed(t *testing.T) {
	s, err := resolveSeed("", "42,54")
	require.NoError(t, err)
	assert.Equal(t, "(42,54)", s.String())

	s, err = resolveSeed("7", "42")
	require.NoError(t, err)
	assert.Equal(t, "7", s.String())

	s, err = resolveSeed(" ", "")
	require.NoError(t, err)
	assert.True(t, s.IsAbsent())

	_, err = resolveSeed("seven", "")
	assert.Error(t, err)
}

func TestCommandsAreRegistered(t *testing.T) {
	for _, cmd := range []interface{ Name() string }{
		newGenerateCmd(), newTestCmd(), newBatteryCmd(), newBenchCmd(), newCompareCmd(), newListCmd(), newReportCmd(),
	} {
		assert.NotEmpty(t, cmd.Name())
	}
	assert.Equal(t, "generate", newGenerateCmd().Name())
	assert.NotNil(t, newCompareCmd().Flags().Lookup("xlsx"))
}

func TestRenderExportWorkbook(t *testing.T) {
	m := run.NewManifest(core.NewBenchmarkID(), []string{"lcg"}, []string{"nist_monobit"}, 1024, "42", run.CodeVersion)
	c := run.NewComparison(m)
	p := 0.25
	c.Set(0, 0, run.Cell{Generator: "lcg", TestName: "nist_monobit", Passed: true, Score: 0.25, Status: verdict.StatusPassed, PValue: &p})

	dir := t.TempDir()
	path := filepath.Join(dir, "matrix.xlsx")
	require.NoError(t, excel.NewComparisonWriter(excel.DefaultExportConfig()).SaveAs(path, c))

	var out bytes.Buffer
	require.NoError(t, renderExport(&out, path))
	assert.Contains(t, out.String(), "| lcg |")
	assert.Contains(t, out.String(), "nist_monobit")

	htmlPath := filepath.Join(dir, "matrix.html")
	require.NoError(t, writeExportHTML(path, htmlPath))
	html, err := os.ReadFile(htmlPath)
	require.NoError(t, err)
	assert.Contains(t, string(html), "<table>")
}

func TestRenderExportCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cells.csv")
	content := "generator,test_name,passed,score,status\npcg32,nist_runs,false,0.004,failed\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	var out bytes.Buffer
	require.NoError(t, renderExport(&out, path))
	assert.Contains(t, out.String(), "pcg32")
	assert.Contains(t, out.String(), "0.0040")

	assert.Error(t, renderExport(&out, filepath.Join(t.TempDir(), "missing.xlsx")))
}
