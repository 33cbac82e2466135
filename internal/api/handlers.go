package api

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"rngbench/adapters/excel"
	"rngbench/adapters/report"
	"rngbench/app"
	"rngbench/domain/core"
	"rngbench/domain/run"
	apperrors "rngbench/internal/errors"
	"rngbench/ports"
)

const (
	defaultListLimit = 50
	xlsxContentType  = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

func (s *Server) handleGenerators(c *gin.Context) {
	generators := s.generators.Generators()
	c.JSON(http.StatusOK, gin.H{
		"generators": generators,
		"count":      len(generators),
	})
}

func (s *Server) handleTests(c *gin.Context) {
	tests := s.battery.Tests()
	c.JSON(http.StatusOK, gin.H{
		"tests": tests,
		"count": len(tests),
	})
}

// handleGenerate returns a raw bit stream without running any test
func (s *Server) handleGenerate(c *gin.Context) {
	var body generateBody
	if err := c.ShouldBindJSON(&body); err != nil {
		s.respondError(c, apperrors.InvalidInput(err.Error()))
		return
	}
	seed, err := body.Seed.resolve(s.runner.DefaultSeed)
	if err != nil {
		s.respondError(c, err)
		return
	}
	if body.NBits == 0 {
		body.NBits = s.runner.DefaultSamples
	}

	gen, err := s.generators.Generate(c.Request.Context(), ports.GenerationRequest{
		Generator:    body.Generator,
		Seed:         seed,
		NBits:        body.NBits,
		Params:       body.Params,
		BitsPerValue: body.BitsPerValue,
		LSBFirst:     body.LSBFirst,
	})
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"generator":      gen.Generator,
		"seed":           seed.String(),
		"bits":           gen.Bits,
		"bits_per_value": gen.BitsPerValue,
		"steps":          gen.Steps,
		"mean":           gen.Bits.Mean(),
		"time":           gen.Elapsed.Seconds(),
	})
}

func (s *Server) handleRunTest(c *gin.Context) {
	var body runTestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		s.respondError(c, apperrors.InvalidInput(err.Error()))
		return
	}
	seed, err := body.Seed.resolve(s.runner.DefaultSeed)
	if err != nil {
		s.respondError(c, err)
		return
	}
	if body.SamplesCount == 0 {
		body.SamplesCount = s.runner.DefaultSamples
	}

	result, err := s.tests.RunTest(c.Request.Context(), app.RunTestRequest{
		Generator:    body.Generator,
		TestName:     body.TestName,
		SamplesCount: body.SamplesCount,
		Seed:         seed,
		Parameters:   body.Parameters,
		TestParams:   body.TestParams,
		BitsPerValue: body.BitsPerValue,
		KeepBits:     body.KeepBits,
	})
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) handleListResults(c *gin.Context) {
	limit := defaultListLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			s.respondError(c, apperrors.InvalidInput(fmt.Sprintf("limit must be a non-negative integer, got %q", raw)))
			return
		}
		limit = n
	}

	results, err := s.tests.ListResults(c.Request.Context(), run.ResultFilter{
		Generator: c.Query("generator"),
		TestName:  c.Query("test"),
		Limit:     limit,
	})
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"results": results,
		"count":   len(results),
	})
}

func (s *Server) handleGetResult(c *gin.Context) {
	id, err := core.ParseResultID(c.Param("id"))
	if err != nil {
		s.respondError(c, apperrors.InvalidInput(err.Error()))
		return
	}
	result, err := s.tests.GetResult(c.Request.Context(), id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// handleBenchmark times each generator. ?format=markdown answers with the
// rendered table instead of JSON.
func (s *Server) handleBenchmark(c *gin.Context) {
	var body benchmarkBody
	if err := c.ShouldBindJSON(&body); err != nil {
		s.respondError(c, apperrors.InvalidInput(err.Error()))
		return
	}
	seed, err := body.Seed.resolve("")
	if err != nil {
		s.respondError(c, err)
		return
	}
	if body.Samples == 0 {
		body.Samples = s.runner.DefaultSamples
	}

	rep, err := s.bench.Benchmark(c.Request.Context(), app.BenchmarkRequest{
		Generators: body.Generators,
		Samples:    body.Samples,
		Seed:       seed,
	})
	if err != nil {
		s.respondError(c, err)
		return
	}

	if c.Query("format") == "markdown" {
		c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(report.BenchmarkMarkdown(rep)))
		return
	}
	c.JSON(http.StatusOK, rep)
}

func (s *Server) handleCompare(c *gin.Context) {
	var body compareBody
	if err := c.ShouldBindJSON(&body); err != nil {
		s.respondError(c, apperrors.InvalidInput(err.Error()))
		return
	}
	seed, err := body.Seed.resolve("")
	if err != nil {
		s.respondError(c, err)
		return
	}
	if body.Samples == 0 {
		body.Samples = s.runner.DefaultSamples
	}

	req := app.CompareRequest{
		Generators: body.Generators,
		Tests:      body.Tests,
		Samples:    body.Samples,
		Seed:       seed,
		TestParams: body.TestParams,
	}
	if body.Async {
		s.startCompare(c, req)
		return
	}

	comparison, err := s.bench.Compare(c.Request.Context(), req)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, comparison)
}

// startCompare runs the comparison in the background and answers 202 with
// the ID to follow on /api/compare/events
func (s *Server) startCompare(c *gin.Context, req app.CompareRequest) {
	req.ID = core.NewBenchmarkID()
	runID := req.ID.String()
	req.OnCell = func(cell run.Cell, done, total int) {
		s.hub.Broadcast(ProgressEvent{RunID: runID, EventType: EventCell, Cell: &cell, Done: done, Total: total})
	}

	go func() {
		comparison, err := s.bench.Compare(context.Background(), req)
		if err != nil {
			s.logger.Warn("[API] comparison %s failed: %v", runID, err)
			s.hub.Broadcast(ProgressEvent{RunID: runID, EventType: EventFailed, Error: err.Error()})
			return
		}
		n := len(comparison.Cells)
		s.hub.Broadcast(ProgressEvent{RunID: runID, EventType: EventCompleted, Done: n, Total: n})
	}()

	c.JSON(http.StatusAccepted, gin.H{
		"id":     runID,
		"status": "accepted",
		"events": "/api/compare/events?id=" + runID,
	})
}

func (s *Server) handleGetComparison(c *gin.Context) {
	comparison, ok := s.loadComparison(c, c.Param("id"))
	if !ok {
		return
	}
	c.JSON(http.StatusOK, comparison)
}

// handleCompareReport renders a stored comparison as an HTML page
func (s *Server) handleCompareReport(c *gin.Context) {
	comparison, ok := s.loadComparison(c, c.Query("id"))
	if !ok {
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", report.ComparisonHTML(comparison))
}

func (s *Server) handleExportComparison(c *gin.Context) {
	comparison, ok := s.loadComparison(c, c.Param("id"))
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := excel.NewComparisonWriter(s.export).Write(&buf, comparison); err != nil {
		s.respondError(c, apperrors.InternalError(err.Error()))
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="comparison-%s.xlsx"`, comparison.Manifest.ID))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

func (s *Server) loadComparison(c *gin.Context, rawID string) (*run.Comparison, bool) {
	id, err := core.ParseBenchmarkID(rawID)
	if err != nil {
		s.respondError(c, apperrors.InvalidInput(err.Error()))
		return nil, false
	}
	comparison, err := s.bench.GetComparison(c.Request.Context(), id)
	if err != nil {
		s.respondError(c, err)
		return nil, false
	}
	return comparison, true
}
