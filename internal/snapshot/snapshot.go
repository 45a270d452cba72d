// Package snapshot discovers timestamp-named snapshot directories deposited
// by an external backup producer.
package snapshot

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"time"
)

// Default snapshot naming contract: eight digits, a dash, six digits
// (e.g. 20240610-120000) decoding as YYYYMMDD-HHMMSS.
const (
	DefaultPattern = `^[0-9]{8}-[0-9]{6}$`
	DefaultLayout  = "20060102-150405"
)

// Naming describes which directory basenames are snapshots and how their
// timestamps decode. Layout must be fixed-width and zero-padded so that
// lexical order on names equals chronological order on timestamps.
type Naming struct {
	Pattern *regexp.Regexp
	Layout  string
}

// DefaultNaming returns the standard YYYYMMDD-HHMMSS contract.
func DefaultNaming() Naming {
	return Naming{
		Pattern: regexp.MustCompile(DefaultPattern),
		Layout:  DefaultLayout,
	}
}

// Snapshot is one timestamp-named directory. Snapshots are never mutated
// after listing; every run starts from a fresh List.
type Snapshot struct {
	Name      string
	Path      string
	Timestamp time.Time
}

// List enumerates the snapshot directories under dir. Entries whose basename
// does not match the naming pattern are ignored entirely: they are never
// enumerated and never deleted. Entries that match the pattern but do not
// decode to a valid timestamp are returned in skipped and excluded from both
// retention and deletion, so that a corrupt name is never silently removed.
//
// Results are sorted newest first. A missing or non-directory source path is
// a configuration error.
func List(dir string, naming Naming) (snaps []Snapshot, skipped []string, err error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("source directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, nil, fmt.Errorf("source path %s is not a directory", dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("reading source directory %s: %w", dir, err)
	}

	for _, e := range entries {
		name := e.Name()
		if !e.IsDir() || !naming.Pattern.MatchString(name) {
			continue
		}
		ts, perr := time.Parse(naming.Layout, name)
		if perr != nil {
			skipped = append(skipped, name)
			continue
		}
		snaps = append(snaps, Snapshot{
			Name:      name,
			Path:      filepath.Join(dir, name),
			Timestamp: ts,
		})
	}

	SortDescending(snaps)
	return snaps, skipped, nil
}

// SortDescending orders snapshots newest first. Identical timestamps fall
// back to descending name order, so ties are broken by scan order rather
// than an explicit rule.
func SortDescending(snaps []Snapshot) {
	sort.Slice(snaps, func(i, j int) bool {
		if snaps[i].Timestamp.Equal(snaps[j].Timestamp) {
			return snaps[i].Name > snaps[j].Name
		}
		return snaps[i].Timestamp.After(snaps[j].Timestamp)
	})
}
