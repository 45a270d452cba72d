// Package sweep removes unretained snapshot directories from the source
// path, best effort: one entry failing never aborts its siblings.
package sweep

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/calderaops/snapsweep/internal/snapshot"
)

// Result is the outcome of one deletion attempt.
type Result struct {
	Name    string
	Path    string
	Missing bool // already absent before this run touched it
	Err     error
}

// Report aggregates one sweep run.
type Report struct {
	Deleted  int
	Missing  int
	Failed   int
	Results  []Result
	Duration time.Duration
}

// Ok reports whether every deletion attempt succeeded. Already-missing
// targets count as success: a re-run after a completed sweep is clean.
func (r Report) Ok() bool { return r.Failed == 0 }

// Run deletes the doomed snapshots from sourceDir. A target is only removed
// when it is a direct child of sourceDir and its basename still matches the
// snapshot naming pattern; anything else is refused and reported as a
// failure. This bounds the blast radius of a misconfigured source path.
func Run(sourceDir string, naming snapshot.Naming, doomed []snapshot.Snapshot) Report {
	start := time.Now()
	var rep Report

	cleanSource := filepath.Clean(sourceDir)
	for _, s := range doomed {
		res := Result{Name: s.Name, Path: s.Path}

		switch {
		case !naming.Pattern.MatchString(s.Name):
			res.Err = fmt.Errorf("refusing to delete %s: name does not match the snapshot pattern", s.Name)
		case filepath.Dir(filepath.Clean(s.Path)) != cleanSource:
			res.Err = fmt.Errorf("refusing to delete %s: not a direct child of %s", s.Path, cleanSource)
		default:
			res.Missing, res.Err = remove(s.Path)
		}

		switch {
		case res.Err != nil:
			rep.Failed++
		case res.Missing:
			rep.Missing++
		default:
			rep.Deleted++
		}
		rep.Results = append(rep.Results, res)
	}

	rep.Duration = time.Since(start)
	return rep
}

// remove deletes path recursively. It reports missing=true when the path was
// already gone, which keeps repeated sweeps idempotent.
func remove(path string) (missing bool, err error) {
	if _, err := os.Lstat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return true, nil
		}
		return false, err
	}
	if err := os.RemoveAll(path); err != nil {
		return false, err
	}
	return false, nil
}
