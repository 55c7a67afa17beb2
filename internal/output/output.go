// Package output serializes finalized scan summaries to durable formats and
// to the console. Sinks only ever consume a fully resolved, ascending-sorted
// result list; they contain no engine logic.
package output

import (
	"os"
	"path/filepath"
	"time"

	"github.com/mkarlsen/portsweep/internal/errors"
)

const outputDirPerm = 0o755

// Timestamp layout appended to output basenames, e.g. results_20260825_153004.csv.
const fileTimestampLayout = "20060102_150405"

// Basename combines the configured output base with the run's start time.
func Basename(base string, start time.Time) string {
	return base + "_" + start.Format(fileTimestampLayout)
}

// ensureDir creates the parent directory of path when the basename carries
// one. Missing directories are the only anticipated failure before the
// actual write.
func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "" || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, outputDirPerm); err != nil {
		return &errors.OutputError{Code: errors.CodeDirectoryCreate, Path: dir, Cause: err}
	}
	return nil
}
