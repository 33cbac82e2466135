package verdict

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
)

// SignificanceLevel is the p-value threshold every battery test uses
const SignificanceLevel = 0.01

// Status summarizes an outcome for reports
type Status string

const (
	StatusPassed       Status = "passed"
	StatusFailed       Status = "failed"
	StatusInsufficient Status = "insufficient_data"
	StatusError        Status = "error"
)

// Stat is one named diagnostic value
type Stat struct {
	Name  string
	Value interface{}
}

// Statistics is an ordered mapping of diagnostic values. Insertion order is kept
// when marshaling so reports read the same way the test computed them.
type Statistics []Stat

// Set appends a value, or replaces it in place when the name already exists
func (s *Statistics) Set(name string, value interface{}) {
	for i := range *s {
		if (*s)[i].Name == name {
			(*s)[i].Value = value
			return
		}
	}
	*s = append(*s, Stat{Name: name, Value: value})
}

// Get looks up a value by name
func (s Statistics) Get(name string) (interface{}, bool) {
	for _, st := range s {
		if st.Name == name {
			return st.Value, true
		}
	}
	return nil, false
}

// Float looks up a numeric value by name
func (s Statistics) Float(name string) (float64, bool) {
	v, ok := s.Get(name)
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}

// Names returns the keys in insertion order
func (s Statistics) Names() []string {
	names := make([]string, len(s))
	for i, st := range s {
		names[i] = st.Name
	}
	return names
}

// Map flattens the statistics, losing order
func (s Statistics) Map() map[string]interface{} {
	m := make(map[string]interface{}, len(s))
	for _, st := range s {
		m[st.Name] = st.Value
	}
	return m
}

// MarshalJSON writes a JSON object preserving insertion order
func (s Statistics) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, st := range s {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(st.Name)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(sanitize(st.Value))
		if err != nil {
			return nil, fmt.Errorf("statistic %s: %w", st.Name, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a JSON object, keeping key order
func (s *Statistics) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("statistics must be a JSON object")
	}
	out := Statistics{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := tok.(string)
		if !ok {
			return fmt.Errorf("statistics key must be a string")
		}
		var value interface{}
		if err := dec.Decode(&value); err != nil {
			return err
		}
		out = append(out, Stat{Name: name, Value: value})
	}
	*s = out
	return nil
}

// sanitize replaces non-finite floats, which encoding/json rejects
func sanitize(v interface{}) interface{} {
	f, ok := v.(float64)
	if !ok {
		return v
	}
	switch {
	case math.IsNaN(f):
		return nil
	case math.IsInf(f, 1):
		return math.MaxFloat64
	case math.IsInf(f, -1):
		return -math.MaxFloat64
	}
	return f
}

// Outcome is the result of a single battery test
type Outcome struct {
	Passed     bool       `json:"passed"`
	Score      float64    `json:"score"`
	Status     Status     `json:"status"`
	Statistics Statistics `json:"statistics"`
	Error      string     `json:"error,omitempty"`
}

// NewOutcome builds an outcome with the score clamped into [0,1]
func NewOutcome(passed bool, score float64, stats Statistics) Outcome {
	status := StatusFailed
	if passed {
		status = StatusPassed
	}
	if stats == nil {
		stats = Statistics{}
	}
	return Outcome{
		Passed:     passed,
		Score:      ClampScore(score),
		Status:     status,
		Statistics: stats,
	}
}

// FromPValue builds the usual outcome: pass iff p >= 0.01, score = min(1, p)
func FromPValue(pValue float64, stats Statistics) Outcome {
	return NewOutcome(pValue >= SignificanceLevel, pValue, stats)
}

// Rejected is a failed outcome carrying a diagnostic, e.g. a failed pre-test
func Rejected(message string, stats Statistics) Outcome {
	o := NewOutcome(false, 0, stats)
	o.Statistics.Set("error", message)
	o.Error = message
	return o
}

// Insufficient builds the non-throwing failure returned for undersized input
func Insufficient(message string, stats Statistics) Outcome {
	o := Rejected(message, stats)
	o.Status = StatusInsufficient
	return o
}

// Failed builds an error record for a failure during generation or scoring
func Failed(err error) Outcome {
	return Outcome{
		Passed:     false,
		Score:      0,
		Status:     StatusError,
		Statistics: Statistics{},
		Error:      err.Error(),
	}
}

// PValue returns the "p_value" statistic when the test reported one
func (o Outcome) PValue() (float64, bool) {
	return o.Statistics.Float("p_value")
}

// ClampScore forces a score into [0,1]; NaN becomes 0
func ClampScore(score float64) float64 {
	if math.IsNaN(score) || score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}
