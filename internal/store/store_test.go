// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rebelford/CheminformaticsPackage26/pkg/types"
)

const sampleCSV = `"CID","MolecularWeight","XLogP"
"2244","180.16","1.2"
"3672","206.28","3.5"
`

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(types.StoreConfig{DataDir: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestIngestAndGet(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	var buf bytes.Buffer
	summary, err := s.Ingest(ctx, sampleCSV, &buf)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Stored)
	assert.Equal(t, 0, summary.Skipped)
	assert.Contains(t, buf.String(), "stored: 2")

	c, err := s.Get(ctx, 2244)
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, 2244, c.CID)
	assert.Equal(t, "180.16", c.Properties["MolecularWeight"])
	assert.Equal(t, "1.2", c.Properties["XLogP"])
	assert.False(t, c.RetrievedAt.IsZero())
}

func TestGet_UnknownCID(t *testing.T) {
	s := testStore(t)

	c, err := s.Get(context.Background(), 99999)
	require.NoError(t, err)
	assert.Nil(t, c)
}

func TestIngest_SkipsBadRows(t *testing.T) {
	s := testStore(t)

	csvText := "\"CID\",\"XLogP\"\n\"2244\",\"1.2\"\n\"oops\",\"9.9\"\n"
	var buf bytes.Buffer
	summary, err := s.Ingest(context.Background(), csvText, &buf)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Stored)
	assert.Equal(t, 1, summary.Skipped)
	assert.Equal(t, 2, summary.Total())
	assert.Contains(t, buf.String(), "oops")
}

func TestIngest_EmptyText(t *testing.T) {
	s := testStore(t)

	summary, err := s.Ingest(context.Background(), "", nil)
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Total())
}

func TestIngest_RejectsForeignHeader(t *testing.T) {
	s := testStore(t)

	_, err := s.Ingest(context.Background(), "\"Name\",\"Value\"\n\"a\",\"b\"\n", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CID")
}

func TestIngest_ReplaceOnReingest(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	_, err := s.Ingest(ctx, sampleCSV, nil)
	require.NoError(t, err)

	// Narrower re-retrieval: the old XLogP column must not survive.
	_, err = s.Ingest(ctx, "\"CID\",\"MolecularWeight\"\n\"2244\",\"180.2\"\n", nil)
	require.NoError(t, err)

	c, err := s.Get(ctx, 2244)
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, "180.2", c.Properties["MolecularWeight"])
	_, hasXLogP := c.Properties["XLogP"]
	assert.False(t, hasXLogP)

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestCIDs(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	_, err := s.Ingest(ctx, sampleCSV, nil)
	require.NoError(t, err)

	cids, err := s.CIDs(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, []int{2244, 3672}, cids)

	cids, err = s.CIDs(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []int{2244}, cids)
}

func TestPropertyNames(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	_, err := s.Ingest(ctx, sampleCSV, nil)
	require.NoError(t, err)

	names, err := s.PropertyNames(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"MolecularWeight", "XLogP"}, names)
}

func TestExport(t *testing.T) {
	dataDir := t.TempDir()
	s, err := Open(types.StoreConfig{DataDir: dataDir})
	require.NoError(t, err)
	defer s.Close()
	ctx := context.Background()

	_, err = s.Ingest(ctx, sampleCSV, nil)
	require.NoError(t, err)

	yamlPath, err := s.ExportYAML(ctx)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dataDir, "index", "compounds.yaml"), yamlPath)

	data, err := os.ReadFile(yamlPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "2244")
	assert.Contains(t, string(data), "MolecularWeight")

	jsonPath, err := s.ExportJSON(ctx)
	require.NoError(t, err)
	data, err = os.ReadFile(jsonPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"cid": 2244`)
}

func TestOpen_ReopenKeepsData(t *testing.T) {
	dataDir := t.TempDir()
	ctx := context.Background()

	s, err := Open(types.StoreConfig{DataDir: dataDir})
	require.NoError(t, err)
	_, err = s.Ingest(ctx, sampleCSV, nil)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(types.StoreConfig{DataDir: dataDir})
	require.NoError(t, err)
	defer s.Close()

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}
