package core

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ID represents a domain identifier
type ID string

// NewID creates a new unique identifier using UUID v7 for time-ordered generation
func NewID() ID {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return ID(id.String())
}

// String returns the string representation
func (id ID) String() string {
	return string(id)
}

// IsEmpty checks if the ID is empty
func (id ID) IsEmpty() bool {
	return id == ""
}

// Domain-specific ID types
type (
	ResultID    ID
	BenchmarkID ID
)

func (id ResultID) String() string    { return ID(id).String() }
func (id BenchmarkID) String() string { return ID(id).String() }

// NewResultID creates a fresh identifier for a stored test result
func NewResultID() ResultID { return ResultID(NewID()) }

// NewBenchmarkID creates a fresh identifier for a benchmark or comparison run
func NewBenchmarkID() BenchmarkID { return BenchmarkID(NewID()) }

// ParseResultID parses a string into ResultID
func ParseResultID(s string) (ResultID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("result ID cannot be empty")
	}
	if _, err := uuid.Parse(s); err != nil {
		return "", fmt.Errorf("result ID %q is not a UUID: %w", s, err)
	}
	return ResultID(s), nil
}

// ParseBenchmarkID parses a string into BenchmarkID
func ParseBenchmarkID(s string) (BenchmarkID, error) {
	id, err := ParseResultID(s)
	if err != nil {
		return "", fmt.Errorf("benchmark ID %q is not a UUID", s)
	}
	return BenchmarkID(id), nil
}
