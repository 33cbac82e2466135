package core

import (
	"errors"
	"testing"
)

func TestErrorTaxonomy(t *testing.T) {
	cfg := NewConfigurationError("r", "must exceed s")
	if !IsConfigurationError(cfg) {
		t.Errorf("expected configuration error, got %v", cfg)
	}
	if IsExternalSourceError(cfg) {
		t.Error("configuration error must not classify as external source error")
	}

	if !IsConfigurationError(ErrUnknownTest) || !IsConfigurationError(ErrUnknownGenerator) {
		t.Error("unknown test/generator should be configuration errors")
	}

	ext := NewExternalSourceError("chacha20", errors.New("exit status 2"))
	if !IsExternalSourceError(ext) {
		t.Errorf("expected external source error, got %v", ext)
	}
	if !IsExternalSourceError(ErrExternalTimeout) || !IsExternalSourceError(ErrMalformedOutput) {
		t.Error("timeout and malformed output should be external source errors")
	}

	data := NewInsufficientDataError("matrix_rank", 10, 1024)
	if !IsInsufficientDataError(data) {
		t.Errorf("expected insufficient data error, got %v", data)
	}

	exec := NewExecutionError("spectral", "index out of range")
	if !IsExecutionError(exec) || IsConfigurationError(exec) {
		t.Errorf("unexpected classification for %v", exec)
	}

	if !IsNotFoundError(ErrResultNotFound) {
		t.Error("result not found should be a not found error")
	}
}

func TestComputeStreamFingerprint(t *testing.T) {
	a := ComputeStreamFingerprint([]uint8{1, 0, 1, 1})
	b := ComputeStreamFingerprint([]uint8{1, 0, 1, 1})
	if a != b {
		t.Fatalf("fingerprint not deterministic: %s vs %s", a, b)
	}

	// Trailing zeros change the length and therefore the fingerprint
	c := ComputeStreamFingerprint([]uint8{1, 0, 1, 1, 0})
	if a == c {
		t.Error("streams of different length must not share a fingerprint")
	}

	if ComputeStreamFingerprint(nil).String() == "" {
		t.Error("empty stream should still produce a fingerprint")
	}
}
