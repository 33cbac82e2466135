package run

import (
	"crypto/sha256"
	"fmt"
	"sort"
	"strings"

	"rngbench/domain/core"
	"rngbench/domain/sample"
	"rngbench/domain/verdict"
)

// CodeVersion is stamped into fingerprints and manifests
const CodeVersion = "0.3.0"

// TestResult is the stored record of one test executed against one generator
type TestResult struct {
	ID             core.ResultID          `json:"id"`
	Generator      string                 `json:"generator"`
	TestName       string                 `json:"test_name"`
	SamplesCount   int                    `json:"samples_count"`
	Seed           string                 `json:"seed"`
	Parameters     map[string]interface{} `json:"parameters,omitempty"`
	Passed         bool                   `json:"passed"`
	Score          float64                `json:"score"`
	Status         verdict.Status         `json:"status"`
	Statistics     verdict.Statistics     `json:"statistics"`
	Error          string                 `json:"error,omitempty"`
	ExecutionTime  float64                `json:"execution_time"`
	GenerationTime float64                `json:"generation_time"`
	Bits           sample.BitStream       `json:"bits,omitempty"`
	Stream         core.StreamFingerprint `json:"stream_fingerprint,omitempty"`
	Fingerprint    Fingerprint            `json:"fingerprint"`
	CreatedAt      core.Timestamp         `json:"created_at"`
}

// ApplyOutcome copies a battery outcome onto the result
func (r *TestResult) ApplyOutcome(o verdict.Outcome) {
	r.Passed = o.Passed
	r.Score = o.Score
	r.Status = o.Status
	r.Statistics = o.Statistics
	r.Error = o.Error
}

// PValue returns the reported p-value, if any
func (r *TestResult) PValue() (float64, bool) {
	return r.Statistics.Float("p_value")
}

// ResultFilter narrows a result listing; zero values match everything
type ResultFilter struct {
	Generator string
	TestName  string
	Limit     int
}

// Matches reports whether r satisfies the generator and test constraints
func (f ResultFilter) Matches(r *TestResult) bool {
	if f.Generator != "" && r.Generator != f.Generator {
		return false
	}
	if f.TestName != "" && r.TestName != f.TestName {
		return false
	}
	return true
}

// Fingerprint identifies a generation request so repeated runs can be matched
type Fingerprint struct {
	Generator    string    `json:"generator"`
	Seed         string    `json:"seed"`
	SamplesCount int       `json:"samples_count"`
	Params       string    `json:"params,omitempty"`
	CodeVersion  string    `json:"code_version"`
	Fingerprint  core.Hash `json:"fingerprint"`
}

// NewFingerprint hashes the generation inputs. Params are canonicalized by key.
func NewFingerprint(generator string, seed sample.Seed, samples int, params map[string]uint64, codeVersion string) Fingerprint {
	canonical := canonicalParams(params)
	return Fingerprint{
		Generator:    generator,
		Seed:         seed.String(),
		SamplesCount: samples,
		Params:       canonical,
		CodeVersion:  codeVersion,
		Fingerprint:  computeFingerprint(generator, seed.String(), samples, canonical, codeVersion),
	}
}

func canonicalParams(params map[string]uint64) string {
	if len(params) == 0 {
		return ""
	}
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%d", k, params[k])
	}
	return strings.Join(parts, ",")
}

func computeFingerprint(generator, seed string, samples int, params, codeVersion string) core.Hash {
	data := fmt.Sprintf("generator:%s|seed:%s|samples:%d|params:%s|code:%s",
		generator, seed, samples, params, codeVersion)

	hash := sha256.Sum256([]byte(data))
	return core.Hash(fmt.Sprintf("%x", hash))
}

// BenchmarkEntry is one generator's line in a benchmark report
type BenchmarkEntry struct {
	Generator     string  `json:"generator"`
	Bits          int     `json:"bits"`
	Elapsed       float64 `json:"elapsed"`
	MeanBit       float64 `json:"mean_bit"`
	BitsPerSecond float64 `json:"bits_per_second"`
	Error         string  `json:"error,omitempty"`
}

// OK reports whether the generator produced its stream
func (e BenchmarkEntry) OK() bool { return e.Error == "" }

// BenchmarkReport times every requested generator over the same bit count
type BenchmarkReport struct {
	ID        core.BenchmarkID `json:"id"`
	Samples   int              `json:"samples"`
	Entries   []BenchmarkEntry `json:"entries"`
	CreatedAt core.Timestamp   `json:"created_at"`
}

// Fastest returns the successful entry with the highest throughput
func (b *BenchmarkReport) Fastest() (BenchmarkEntry, bool) {
	var best BenchmarkEntry
	found := false
	for _, e := range b.Entries {
		if e.OK() && (!found || e.BitsPerSecond > best.BitsPerSecond) {
			best, found = e, true
		}
	}
	return best, found
}
