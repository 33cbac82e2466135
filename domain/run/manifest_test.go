package run

import (
	"testing"

	"rngbench/domain/core"
	"rngbench/domain/sample"
	"rngbench/domain/verdict"
)

func TestFingerprint_Deterministic(t *testing.T) {
	seed := sample.SeedOf(42, 54)
	params := map[string]uint64{"m": 1 << 31, "a": 1103515245, "c": 12345}

	fp1 := NewFingerprint("lcg", seed, 1000, params, "1.0.0")
	fp2 := NewFingerprint("lcg", seed, 1000, params, "1.0.0")

	if fp1.Fingerprint != fp2.Fingerprint {
		t.Errorf("Fingerprints not identical: %s vs %s", fp1.Fingerprint, fp2.Fingerprint)
	}
	if fp1.Seed != "(42,54)" {
		t.Errorf("Seed not rendered: %s", fp1.Seed)
	}
	if fp1.Params != "a=1103515245,c=12345,m=2147483648" {
		t.Errorf("Params not canonical: %s", fp1.Params)
	}
}

func TestFingerprint_Unique(t *testing.T) {
	base := NewFingerprint("lcg", sample.SeedOf(1), 1000, nil, "1.0.0")

	testCases := []struct {
		name string
		fp   Fingerprint
	}{
		{"different generator", NewFingerprint("pcg32", sample.SeedOf(1), 1000, nil, "1.0.0")},
		{"different seed", NewFingerprint("lcg", sample.SeedOf(2), 1000, nil, "1.0.0")},
		{"absent seed", NewFingerprint("lcg", sample.NoSeed(), 1000, nil, "1.0.0")},
		{"different samples", NewFingerprint("lcg", sample.SeedOf(1), 1001, nil, "1.0.0")},
		{"different params", NewFingerprint("lcg", sample.SeedOf(1), 1000, map[string]uint64{"a": 5}, "1.0.0")},
		{"different code", NewFingerprint("lcg", sample.SeedOf(1), 1000, nil, "1.0.1")},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if tc.fp.Fingerprint == base.Fingerprint {
				t.Errorf("Fingerprint should be different for %s", tc.name)
			}
		})
	}
}

func TestManifest_Complete(t *testing.T) {
	id := core.NewBenchmarkID()
	generators := []string{"lcg", "splitmix64"}
	tests := []string{"nist_monobit", "nist_runs", "frequency_test"}

	m := NewManifest(id, generators, tests, 4096, "12345", CodeVersion)

	if m.ID != id {
		t.Errorf("ID not set correctly")
	}
	if len(m.Generators) != 2 || len(m.Tests) != 3 {
		t.Errorf("dimensions not set correctly: %d x %d", len(m.Generators), len(m.Tests))
	}
	if m.Fingerprint == "" {
		t.Errorf("Fingerprint not computed")
	}
	if err := m.Validate(); err != nil {
		t.Errorf("Manifest validation failed: %v", err)
	}

	// the manifest keeps its own copy
	generators[0] = "changed"
	if m.Generators[0] != "lcg" {
		t.Errorf("manifest aliases the caller's slice")
	}
}

func TestManifest_Validate(t *testing.T) {
	valid := func() *Manifest {
		return NewManifest(core.NewBenchmarkID(), []string{"lcg"}, []string{"nist_monobit"}, 100, "1", CodeVersion)
	}

	cases := map[string]func(m *Manifest){
		"empty id":        func(m *Manifest) { m.ID = "" },
		"no generators":   func(m *Manifest) { m.Generators = nil },
		"no tests":        func(m *Manifest) { m.Tests = nil },
		"zero samples":    func(m *Manifest) { m.Samples = 0 },
		"no code version": func(m *Manifest) { m.CodeVersion = "" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			m := valid()
			mutate(m)
			err := m.Validate()
			if err == nil || !core.IsConfigurationError(err) {
				t.Errorf("expected configuration error, got %v", err)
			}
		})
	}
}

func TestComparison_Matrix(t *testing.T) {
	m := NewManifest(core.NewBenchmarkID(), []string{"a", "b"}, []string{"t1", "t2"}, 100, "1", CodeVersion)
	c := NewComparison(m)

	if len(c.Cells) != 4 {
		t.Fatalf("expected 4 cells, got %d", len(c.Cells))
	}

	p := 0.5
	c.Set(1, 0, Cell{Generator: "b", TestName: "t1", Passed: true, Score: 0.5, Status: verdict.StatusPassed, PValue: &p})
	c.Set(0, 1, Cell{Generator: "a", TestName: "t2", Passed: true})

	cell, ok := c.Cell("b", "t1")
	if !ok || !cell.Passed || *cell.PValue != 0.5 {
		t.Errorf("unexpected cell %+v", cell)
	}
	if _, ok := c.Cell("c", "t1"); ok {
		t.Errorf("unknown generator should not be found")
	}

	counts := c.PassCount()
	if counts[0] != 1 || counts[1] != 1 {
		t.Errorf("unexpected pass counts %v", counts)
	}
	if row := c.Row(0); row[0].TestName != "t1" || row[1].TestName != "t2" {
		t.Errorf("row out of order: %+v", row)
	}
}

func TestCellFromResult(t *testing.T) {
	var stats verdict.Statistics
	stats.Set("p_value", 0.25)
	r := &TestResult{Generator: "lcg", TestName: "nist_runs"}
	r.ApplyOutcome(verdict.FromPValue(0.25, stats))

	cell := CellFromResult(r)
	if !cell.Passed || cell.Status != verdict.StatusPassed {
		t.Errorf("outcome not copied: %+v", cell)
	}
	if cell.PValue == nil || *cell.PValue != 0.25 {
		t.Errorf("p-value not copied: %v", cell.PValue)
	}

	empty := CellFromResult(&TestResult{Generator: "lcg", TestName: "frequency_test"})
	if empty.PValue != nil {
		t.Errorf("expected no p-value")
	}
}

func TestResultFilter(t *testing.T) {
	r := &TestResult{Generator: "lcg", TestName: "nist_runs"}
	if !(ResultFilter{}).Matches(r) {
		t.Errorf("empty filter should match")
	}
	if !(ResultFilter{Generator: "lcg", TestName: "nist_runs"}).Matches(r) {
		t.Errorf("exact filter should match")
	}
	if (ResultFilter{TestName: "nist_dft"}).Matches(r) {
		t.Errorf("other test should not match")
	}
}

func TestBenchmarkReport_Fastest(t *testing.T) {
	b := &BenchmarkReport{Entries: []BenchmarkEntry{
		{Generator: "slow", BitsPerSecond: 10},
		{Generator: "broken", BitsPerSecond: 1e9, Error: "boom"},
		{Generator: "fast", BitsPerSecond: 100},
	}}
	best, ok := b.Fastest()
	if !ok || best.Generator != "fast" {
		t.Errorf("expected fast, got %+v", best)
	}

	if _, ok := (&BenchmarkReport{}).Fastest(); ok {
		t.Errorf("empty report has no fastest entry")
	}
}
