package api

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"rngbench/domain/sample"
	apperrors "rngbench/internal/errors"
)

// seedParam accepts a seed as a JSON number, a string such as "(42,54)" or
// an array of integers
type seedParam string

func (p *seedParam) UnmarshalJSON(data []byte) error {
	v := gjson.ParseBytes(data)
	switch {
	case v.Type == gjson.Null:
		*p = ""
	case v.Type == gjson.Number:
		*p = seedParam(v.Raw)
	case v.Type == gjson.String:
		*p = seedParam(v.Str)
	case v.IsArray():
		parts := make([]string, 0, len(v.Array()))
		for _, item := range v.Array() {
			if item.Type != gjson.Number {
				return fmt.Errorf("seed components must be integers, got %s", item.Raw)
			}
			parts = append(parts, item.Raw)
		}
		*p = seedParam(strings.Join(parts, ","))
	default:
		return fmt.Errorf("seed must be an integer, a tuple or a string, got %s", v.Raw)
	}
	return nil
}

// resolve parses the seed, falling back to def when none was sent
func (p seedParam) resolve(def string) (sample.Seed, error) {
	raw := string(p)
	if raw == "" {
		raw = def
	}
	seed, err := sample.ParseSeed(raw)
	if err != nil {
		return sample.Seed{}, apperrors.InvalidInput(err.Error())
	}
	return seed, nil
}

type generateBody struct {
	Generator    string            `json:"generator" binding:"required"`
	NBits        int               `json:"n_bits"`
	Seed         seedParam         `json:"seed"`
	Params       map[string]uint64 `json:"params"`
	BitsPerValue int               `json:"bits_per_value"`
	LSBFirst     bool              `json:"lsb_first"`
}

type runTestBody struct {
	Generator    string                 `json:"generator" binding:"required"`
	TestName     string                 `json:"test_name" binding:"required"`
	SamplesCount int                    `json:"samples_count"`
	Seed         seedParam              `json:"seed"`
	Parameters   map[string]uint64      `json:"parameters"`
	TestParams   map[string]interface{} `json:"test_params"`
	BitsPerValue int                    `json:"bits_per_value"`
	KeepBits     bool                   `json:"keep_bits"`
}

type benchmarkBody struct {
	Generators []string  `json:"generators"`
	Samples    int       `json:"samples"`
	Seed       seedParam `json:"seed"`
}

type compareBody struct {
	Generators []string               `json:"generators"`
	Tests      []string               `json:"tests"`
	Samples    int                    `json:"samples"`
	Seed       seedParam              `json:"seed"`
	TestParams map[string]interface{} `json:"test_params"`
	Async      bool                   `json:"async"`
}
