// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package artifact

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/rs/zerolog"
)

const defaultDownloadsDir = "downloads"

// SaveCSV writes CSV text under dir with a versioned filename and
// returns the path written. An empty dir defaults to "downloads"; an
// empty prefix defaults to "data".
func SaveCSV(text, prefix, dir string) (string, error) {
	if prefix == "" {
		prefix = "data"
	}
	return save([]byte(text), Versioned(prefix, "csv"), dir)
}

// SaveText writes plain text under dir with a versioned filename and
// returns the path written. An empty ext defaults to "txt"; an empty
// prefix defaults to "output".
func SaveText(text, prefix, ext, dir string) (string, error) {
	if prefix == "" {
		prefix = "output"
	}
	if ext == "" {
		ext = "txt"
	}
	return save([]byte(text), Versioned(prefix, ext), dir)
}

// SaveJSON writes v as indented JSON under dir with a versioned
// filename and returns the path written.
func SaveJSON(v any, prefix, dir string) (string, error) {
	if prefix == "" {
		prefix = "data"
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding JSON: %w", err)
	}
	return save(append(data, '\n'), Versioned(prefix, "json"), dir)
}

func save(data []byte, name, dir string) (string, error) {
	if dir == "" {
		dir = defaultDownloadsDir
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating directory %s: %w", dir, err)
	}

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	return path, nil
}

// LoadCIDCounts reads a JSON object mapping CIDs to occurrence counts
// and returns it with integer keys. Entries whose key or value cannot
// be interpreted as an integer are skipped with a warning; fractional
// numeric values are truncated. A document that is not a JSON object
// is an error.
func LoadCIDCounts(path string, logger zerolog.Logger) (map[int]int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("%s does not contain a JSON object of counts: %w", path, err)
	}

	counts := make(map[int]int, len(raw))
	for key, value := range raw {
		cid, err := strconv.Atoi(key)
		if err != nil {
			logger.Warn().Str("key", key).Msg("skipping non-integer CID key")
			continue
		}
		count, err := countToInt(value)
		if err != nil {
			logger.Warn().Str("key", key).Interface("value", value).Msg("skipping non-integer count")
			continue
		}
		counts[cid] = count
	}

	logger.Info().Int("cids", len(counts)).Str("path", path).Msg("loaded CID counts")
	return counts, nil
}

// countToInt interprets a decoded JSON value as an integer count.
// Numbers are accepted with fractional parts truncated; numeric
// strings are parsed strictly. Anything else is an error.
func countToInt(v any) (int, error) {
	switch n := v.(type) {
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return int(i), nil
		}
		f, err := n.Float64()
		if err != nil {
			return 0, err
		}
		return int(f), nil
	case string:
		return strconv.Atoi(n)
	default:
		return 0, fmt.Errorf("unsupported count type %T", v)
	}
}
