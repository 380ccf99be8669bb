// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package artifact generates consistent filenames for course data
// artifacts and writes them to disk. Filename helpers do no filesystem
// I/O; directory management belongs to the save functions and their
// callers.
package artifact

import (
	"fmt"
	"time"
)

// now is the clock used for date stamps. Tests override it for
// deterministic names.
var now = time.Now

const dateLayout = "20060102"

// Versioned returns a date-stamped, versioned filename of the form
// prefix_YYYYMMDD_v1.ext, for exploratory artifacts that may be
// regenerated several times a day. Version bumping beyond v1 is the
// caller's concern since it depends on the caller's directory context.
// An empty ext defaults to "csv".
func Versioned(prefix, ext string) string {
	if ext == "" {
		ext = "csv"
	}
	return fmt.Sprintf("%s_%s_v1.%s", prefix, now().Format(dateLayout), ext)
}

// Fixed returns a deterministic filename of the form stem[_YYYYMMDD].ext,
// for canonical artifacts that must not auto-version. An empty ext
// defaults to "csv".
func Fixed(stem, ext string, addDate bool) string {
	if ext == "" {
		ext = "csv"
	}
	if addDate {
		return fmt.Sprintf("%s_%s.%s", stem, now().Format(dateLayout), ext)
	}
	return fmt.Sprintf("%s.%s", stem, ext)
}

// Artifact returns an identity-based filename of the form
// stem[_version].ext, for models and pipeline outputs where versioning
// is intentional (e.g. nb_maccs_AID743139_v2.joblib).
func Artifact(stem, ext, version string) string {
	if version != "" {
		return fmt.Sprintf("%s_%s.%s", stem, version, ext)
	}
	return fmt.Sprintf("%s.%s", stem, ext)
}
