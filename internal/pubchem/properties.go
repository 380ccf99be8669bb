// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pubchem

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/rebelford/CheminformaticsPackage26/internal/chunks"
)

const (
	// DefaultChunkSize is the number of CIDs per property request.
	DefaultChunkSize = 100

	// DefaultInterChunkDelay is the pause between consecutive chunk
	// requests, applied regardless of the previous chunk's outcome.
	DefaultInterChunkDelay = 250 * time.Millisecond
)

// DefaultProperties is the property set requested when the caller does
// not supply one. Order is preserved in the request and therefore in
// the CSV column order.
var DefaultProperties = []string{
	"HBondDonorCount",
	"HBondAcceptorCount",
	"MolecularWeight",
	"XLogP",
	"ConnectivitySMILES",
	"SMILES",
}

// RetrievalOptions tunes a batch property retrieval.
type RetrievalOptions struct {
	// Properties lists the property fields to request, in order.
	// Empty means DefaultProperties.
	Properties []string

	// ChunkSize is the number of CIDs per request. Zero means
	// DefaultChunkSize; negative is an input error.
	ChunkSize int

	// InterChunkDelay is the pause between chunk requests. Zero means
	// DefaultInterChunkDelay; negative disables the pause.
	InterChunkDelay time.Duration

	// Progress, when set, is called after every chunk (success or
	// failure) with the number of chunks done and the total. It is a
	// pure side channel and never affects control flow or the result.
	Progress func(done, total int)
}

// Retrieval is the outcome of a batch property retrieval: the merged
// CSV text and the indices of chunks that failed after all transport
// retries.
type Retrieval struct {
	// CSV is the merged tabular text: at most one header line followed
	// by one data line per successfully retrieved CID, in input order.
	// Failed chunks contribute no lines at all.
	CSV string

	// FailedChunks lists failed chunk indices in ascending order,
	// without duplicates. A chunk is marked failed exactly once; there
	// is no batch-level retry.
	FailedChunks []int
}

// HasFailures reports whether any chunk failed.
func (r Retrieval) HasFailures() bool {
	return len(r.FailedChunks) > 0
}

// PropertiesForCIDs retrieves compound properties for a CID list using
// chunked API requests, merging the per-chunk CSV responses into one
// table. Chunks are issued strictly in ascending order; the
// single-header merge depends on it. A failed chunk is recorded and
// skipped; the remaining chunks still run. Per-chunk status lines go to
// w (which may be nil).
//
// An empty CID list short-circuits with an empty Retrieval and zero
// transport calls.
func (c *Client) PropertiesForCIDs(ctx context.Context, cids []int, opts RetrievalOptions, w io.Writer) (Retrieval, error) {
	if w == nil {
		w = io.Discard
	}

	if len(cids) == 0 {
		c.Logger.Warn().Msg("no CIDs provided")
		fmt.Fprintln(w, "no CIDs provided")
		return Retrieval{}, nil
	}

	props := opts.Properties
	if len(props) == 0 {
		props = DefaultProperties
	}
	chunkSize := opts.ChunkSize
	if chunkSize == 0 {
		chunkSize = DefaultChunkSize
	}
	delay := opts.InterChunkDelay
	if delay == 0 {
		delay = DefaultInterChunkDelay
	} else if delay < 0 {
		delay = 0
	}

	cidChunks, err := chunks.Split(cids, chunkSize)
	if err != nil {
		return Retrieval{}, err
	}
	total := len(cidChunks)
	propStr := strings.Join(props, ",")

	fmt.Fprintf(w, "CIDs: %d, chunks: %d\n", len(cids), total)

	var result Retrieval
	var lines []string

	for i, chunk := range cidChunks {
		if i > 0 && delay > 0 {
			select {
			case <-ctx.Done():
				result.CSV = strings.Join(lines, "\n")
				return result, ctx.Err()
			case <-time.After(delay):
			}
		}

		reqURL := fmt.Sprintf("%s/compound/cid/%s/property/%s/csv", c.Base, joinCIDs(chunk), propStr)

		text, err := c.Transport.GetText(ctx, reqURL)
		if err != nil {
			if ctx.Err() != nil {
				result.CSV = strings.Join(lines, "\n")
				return result, ctx.Err()
			}
			fmt.Fprintf(w, "failed  chunk %d (%d CIDs): %v\n", i, len(chunk), err)
			result.FailedChunks = append(result.FailedChunks, i)
			reportProgress(opts.Progress, i+1, total)
			continue
		}

		chunkLines := splitLines(text)
		if i == 0 {
			lines = append(lines, chunkLines...)
		} else if len(chunkLines) > 1 {
			// Every chunk repeats the header row; keep only the first.
			lines = append(lines, chunkLines[1:]...)
		}

		fmt.Fprintf(w, "chunk %d/%d done (%d CIDs)\n", i+1, total, len(chunk))
		reportProgress(opts.Progress, i+1, total)
	}

	result.CSV = strings.Join(lines, "\n")

	fmt.Fprintf(w, "\nretrieved %d/%d chunks", total-len(result.FailedChunks), total)
	if result.HasFailures() {
		fmt.Fprintf(w, " (failed: %v)", result.FailedChunks)
	}
	fmt.Fprintln(w)

	return result, nil
}

// joinCIDs renders a CID chunk as the comma-separated path segment the
// endpoint expects.
func joinCIDs(cids []int) string {
	parts := make([]string, len(cids))
	for i, cid := range cids {
		parts[i] = strconv.Itoa(cid)
	}
	return strings.Join(parts, ",")
}

// splitLines breaks response text into lines, dropping a trailing
// newline so merged chunks join cleanly.
func splitLines(text string) []string {
	text = strings.TrimRight(text, "\r\n")
	if text == "" {
		return nil
	}
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, "\r")
	}
	return lines
}

func reportProgress(fn func(done, total int), done, total int) {
	if fn != nil {
		fn(done, total)
	}
}
