// Package binding implements the binding property lookup collaborator
// (§6): an optional key→integer source of bring-up defaults, standing in
// for device-tree-property lookup.
package binding

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Lookup resolves a bring-up property name to an integer, if present.
type Lookup interface {
	Int(key string) (int64, bool)
}

// Map is a Lookup backed by a plain map, e.g. parsed from CLI flags.
type Map map[string]int64

// Int implements Lookup.
func (m Map) Int(key string) (int64, bool) {
	v, ok := m[key]
	return v, ok
}

// envLookup reads SIMTEMP_<KEY>-style environment variables, upper-cased
// with non-alphanumeric characters replaced by underscores.
type envLookup struct{}

// FromEnv returns a Lookup that reads SIMTEMP_<KEY> environment variables,
// e.g. key "sampling-ms" resolves from SIMTEMP_SAMPLING_MS.
func FromEnv() Lookup { return envLookup{} }

func (envLookup) Int(key string) (int64, bool) {
	envKey := envName(key)
	raw, ok := os.LookupEnv(envKey)
	if !ok {
		return 0, false
	}
	v, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func envName(key string) string {
	var b strings.Builder
	b.WriteString("SIMTEMP_")
	for _, r := range key {
		switch {
		case r >= 'a' && r <= 'z':
			b.WriteRune(r - ('a' - 'A'))
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

// Chain tries each Lookup in order, returning the first hit.
type Chain []Lookup

func (c Chain) Int(key string) (int64, bool) {
	for _, l := range c {
		if v, ok := l.Int(key); ok {
			return v, true
		}
	}
	return 0, false
}

// MustMapFromArgs is a small convenience to build a Map from "key=value"
// strings; it is intentionally lenient: malformed entries are reported
// via err rather than panicking.
func MustMapFromArgs(args []string) (Map, error) {
	m := make(Map, len(args))
	for _, a := range args {
		k, v, ok := strings.Cut(a, "=")
		if !ok {
			return nil, fmt.Errorf("binding: malformed entry %q, want key=value", a)
		}
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("binding: %q: %w", a, err)
		}
		m[k] = n
	}
	return m, nil
}
