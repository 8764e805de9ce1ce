package wire

import (
	"os"
	"strconv"
)

// Config controls optional decoder behaviors. Defaults keep the plain
// rescan-per-field lookup.
type Config struct {
	// IndexTags: when true, each region builds a tag -> offset index on its
	// first lookup instead of rescanning from the region start for every
	// field. Lookups return the same entry (the first occurrence of a
	// tag), so results are identical; a full record decode drops from
	// O(n^2) to O(n).
	IndexTags bool

	// MaxDepth bounds how deeply nested structs, lists and maps may be
	// materialized, by typed codecs, the record codec and the value tree
	// alike. Zero means unlimited. Skipping a field never recurses and is
	// not bounded.
	MaxDepth int
}

var config = Config{
	MaxDepth: 100,
}

// SetConfig sets the global wire configuration.
func SetConfig(c Config) { config = c }

// CurrentConfig returns the active wire configuration.
func CurrentConfig() Config { return config }

func init() {
	// Optional env toggles for test harnesses; defaults remain unchanged if unset.
	if v := os.Getenv("TARSLITE_INDEX_TAGS"); v == "1" || v == "true" {
		config.IndexTags = true
	}
	if v := os.Getenv("TARSLITE_MAX_DEPTH"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			config.MaxDepth = n
		}
	}
}
