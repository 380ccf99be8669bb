// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pubchem

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// propertyTestServer serves deterministic per-chunk CSV. The request
// path is /compound/cid/{ids}/property/{props}/csv; each requested CID
// gets one data row. failIDs marks comma-joined ID segments that
// answer 500 on every attempt.
func propertyTestServer(t *testing.T, calls *int32, failIDs map[string]bool) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(calls, 1)

		parts := strings.Split(r.URL.Path, "/")
		// ["", "compound", "cid", ids, "property", props, "csv"]
		require.Len(t, parts, 7)
		require.Equal(t, "csv", parts[6])
		ids, props := parts[3], parts[5]

		if failIDs[ids] {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		var b strings.Builder
		b.WriteString(`"CID","` + strings.Join(strings.Split(props, ","), `","`) + `"` + "\n")
		for _, id := range strings.Split(ids, ",") {
			b.WriteString(`"` + id + `"`)
			for range strings.Split(props, ",") {
				b.WriteString(`,"v` + id + `"`)
			}
			b.WriteString("\n")
		}
		w.Header().Set("Content-Type", "text/csv")
		fmt.Fprint(w, b.String())
	}))
}

func fastOptions() RetrievalOptions {
	return RetrievalOptions{
		ChunkSize:       2,
		InterChunkDelay: -1, // disable rate limiting in tests
	}
}

func TestPropertiesForCIDs_AllChunksSucceed(t *testing.T) {
	var calls int32
	ts := propertyTestServer(t, &calls, nil)
	defer ts.Close()

	var buf bytes.Buffer
	got, err := newTestClient(ts).PropertiesForCIDs(context.Background(), []int{1, 2, 3, 4, 5}, fastOptions(), &buf)
	require.NoError(t, err)

	// Chunks [1,2] [3,4] [5]: three calls, in order.
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
	assert.Empty(t, got.FailedChunks)
	assert.False(t, got.HasFailures())

	lines := strings.Split(got.CSV, "\n")
	require.Len(t, lines, 6) // 1 header + 5 data rows
	assert.True(t, strings.HasPrefix(lines[0], `"CID"`))
	for i, id := range []string{"1", "2", "3", "4", "5"} {
		assert.True(t, strings.HasPrefix(lines[i+1], `"`+id+`"`), "row %d should be CID %s: %q", i+1, id, lines[i+1])
	}

	// Exactly one header line overall.
	assert.Equal(t, 1, strings.Count(got.CSV, `"CID"`))
	assert.Contains(t, buf.String(), "chunks: 3")
}

func TestPropertiesForCIDs_EmptyInput(t *testing.T) {
	var calls int32
	ts := propertyTestServer(t, &calls, nil)
	defer ts.Close()

	got, err := newTestClient(ts).PropertiesForCIDs(context.Background(), nil, fastOptions(), nil)
	require.NoError(t, err)
	assert.Equal(t, "", got.CSV)
	assert.Empty(t, got.FailedChunks)
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls), "empty input must not contact the transport")
}

func TestPropertiesForCIDs_MiddleChunkFails(t *testing.T) {
	var calls int32
	ts := propertyTestServer(t, &calls, map[string]bool{"3,4": true})
	defer ts.Close()

	got, err := newTestClient(ts).PropertiesForCIDs(context.Background(), []int{1, 2, 3, 4, 5}, fastOptions(), nil)
	require.NoError(t, err)

	assert.Equal(t, []int{1}, got.FailedChunks)

	lines := strings.Split(got.CSV, "\n")
	require.Len(t, lines, 4) // header + rows for 1, 2, 5
	assert.True(t, strings.HasPrefix(lines[1], `"1"`))
	assert.True(t, strings.HasPrefix(lines[2], `"2"`))
	// No gap marker: the failed chunk's rows are silently absent.
	assert.True(t, strings.HasPrefix(lines[3], `"5"`))
}

func TestPropertiesForCIDs_FirstChunkFails(t *testing.T) {
	var calls int32
	ts := propertyTestServer(t, &calls, map[string]bool{"1,2": true})
	defer ts.Close()

	got, err := newTestClient(ts).PropertiesForCIDs(context.Background(), []int{1, 2, 3, 4, 5}, fastOptions(), nil)
	require.NoError(t, err)
	assert.Equal(t, []int{0}, got.FailedChunks)

	// Later chunks still strip their header rows, so the merged text
	// carries no header when chunk 0 failed, never more than one.
	assert.Equal(t, 0, strings.Count(got.CSV, `"CID"`))
	lines := strings.Split(got.CSV, "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], `"3"`))
}

func TestPropertiesForCIDs_AllChunksFail(t *testing.T) {
	var calls int32
	ts := propertyTestServer(t, &calls, map[string]bool{"1,2": true, "3,4": true, "5": true})
	defer ts.Close()

	got, err := newTestClient(ts).PropertiesForCIDs(context.Background(), []int{1, 2, 3, 4, 5}, fastOptions(), nil)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2}, got.FailedChunks)
	assert.Equal(t, "", got.CSV)
	// 3 chunks * 3 transport attempts each.
	assert.Equal(t, int32(9), atomic.LoadInt32(&calls))
}

func TestPropertiesForCIDs_Idempotent(t *testing.T) {
	var calls int32
	ts := propertyTestServer(t, &calls, map[string]bool{"3,4": true})
	defer ts.Close()

	client := newTestClient(ts)
	first, err := client.PropertiesForCIDs(context.Background(), []int{1, 2, 3, 4, 5}, fastOptions(), nil)
	require.NoError(t, err)
	second, err := client.PropertiesForCIDs(context.Background(), []int{1, 2, 3, 4, 5}, fastOptions(), nil)
	require.NoError(t, err)

	assert.Equal(t, first.CSV, second.CSV)
	assert.Equal(t, first.FailedChunks, second.FailedChunks)
}

func TestPropertiesForCIDs_DefaultProperties(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		parts := strings.Split(r.URL.Path, "/")
		require.Len(t, parts, 7)
		assert.Equal(t, strings.Join(DefaultProperties, ","), parts[5])
		fmt.Fprint(w, "\"CID\",\"MolecularWeight\"\n\"1\",\"180.16\"\n")
	}))
	defer ts.Close()

	opts := fastOptions()
	got, err := newTestClient(ts).PropertiesForCIDs(context.Background(), []int{1}, opts, nil)
	require.NoError(t, err)
	assert.Contains(t, got.CSV, "180.16")
}

func TestPropertiesForCIDs_CustomProperties(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		parts := strings.Split(r.URL.Path, "/")
		require.Len(t, parts, 7)
		// Order must be preserved exactly as requested.
		assert.Equal(t, "XLogP,MolecularWeight", parts[5])
		fmt.Fprint(w, "\"CID\",\"XLogP\",\"MolecularWeight\"\n\"1\",\"1.2\",\"180.16\"\n")
	}))
	defer ts.Close()

	opts := fastOptions()
	opts.Properties = []string{"XLogP", "MolecularWeight"}
	_, err := newTestClient(ts).PropertiesForCIDs(context.Background(), []int{1}, opts, nil)
	require.NoError(t, err)
}

func TestPropertiesForCIDs_ProgressCallback(t *testing.T) {
	var calls int32
	ts := propertyTestServer(t, &calls, map[string]bool{"3,4": true})
	defer ts.Close()

	type tick struct{ done, total int }
	var ticks []tick
	opts := fastOptions()
	opts.Progress = func(done, total int) {
		ticks = append(ticks, tick{done, total})
	}

	_, err := newTestClient(ts).PropertiesForCIDs(context.Background(), []int{1, 2, 3, 4, 5}, opts, nil)
	require.NoError(t, err)

	// One event per chunk, failures included.
	assert.Equal(t, []tick{{1, 3}, {2, 3}, {3, 3}}, ticks)
}

func TestPropertiesForCIDs_RejectsNegativeChunkSize(t *testing.T) {
	var calls int32
	ts := propertyTestServer(t, &calls, nil)
	defer ts.Close()

	opts := fastOptions()
	opts.ChunkSize = -1
	_, err := newTestClient(ts).PropertiesForCIDs(context.Background(), []int{1, 2}, opts, nil)
	require.Error(t, err)
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))
}

func TestPropertiesForCIDs_InterChunkDelay(t *testing.T) {
	var times []time.Time
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		times = append(times, time.Now())
		fmt.Fprint(w, "\"CID\"\n\"x\"\n")
	}))
	defer ts.Close()

	opts := RetrievalOptions{ChunkSize: 1, InterChunkDelay: 40 * time.Millisecond}
	_, err := newTestClient(ts).PropertiesForCIDs(context.Background(), []int{1, 2, 3}, opts, nil)
	require.NoError(t, err)

	require.Len(t, times, 3)
	assert.GreaterOrEqual(t, times[1].Sub(times[0]), 40*time.Millisecond)
	assert.GreaterOrEqual(t, times[2].Sub(times[1]), 40*time.Millisecond)
}

func TestPropertiesForCIDs_ContextCancelled(t *testing.T) {
	var calls int32
	ts := propertyTestServer(t, &calls, nil)
	defer ts.Close()

	ctx, cancel := context.WithCancel(context.Background())
	opts := RetrievalOptions{ChunkSize: 1, InterChunkDelay: 200 * time.Millisecond}
	opts.Progress = func(done, total int) {
		if done == 1 {
			cancel()
		}
	}

	got, err := newTestClient(ts).PropertiesForCIDs(ctx, []int{1, 2, 3}, opts, nil)
	assert.ErrorIs(t, err, context.Canceled)
	// The partial result up to the cancellation point is returned.
	assert.Contains(t, got.CSV, `"1"`)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}
