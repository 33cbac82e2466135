package battery

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"rngbench/domain/core"
)

// Params overrides per-test defaults: block_size, m, template, L, Q.
// Values may arrive as numbers or strings from JSON and flags.
type Params map[string]interface{}

// Int returns key as an int, or def when unset or unparseable
func (p Params) Int(key string, def int) int {
	v, ok := p[key]
	if !ok {
		return def
	}
	switch x := v.(type) {
	case int:
		return x
	case int64:
		return int(x)
	case float64:
		return int(x)
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return int(i)
		}
	case string:
		if i, err := strconv.Atoi(x); err == nil {
			return i
		}
	}
	return def
}

// String returns key as a string, or def when unset
func (p Params) String(key, def string) string {
	v, ok := p[key]
	if !ok {
		return def
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// ParseParams turns "k=v" pairs into Params, numbers where they parse
func ParseParams(pairs []string) (Params, error) {
	out := Params{}
	for _, kv := range pairs {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			return nil, core.NewConfigurationError("param", fmt.Sprintf("%q is not key=value", kv))
		}
		// templates are bit strings, keep leading zeros
		if k != "template" {
			if i, err := strconv.Atoi(v); err == nil {
				out[k] = i
				continue
			}
		}
		out[k] = v
	}
	return out, nil
}
