// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists retrieved compound properties in a local
// SQLite database so notebooks can work offline. Ingestion is always
// explicit: nothing is written unless the caller asks, which keeps
// the remote retrieval path free of hidden caching.
package store

import (
	"context"
	"database/sql"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.yaml.in/yaml/v3"

	"github.com/rebelford/CheminformaticsPackage26/pkg/types"
)

const (
	indexDir = "index"
	dbFile   = "compounds.db"
)

// Store manages the compound property SQLite database.
type Store struct {
	db         *sql.DB
	dataDir    string
	maxResults int
}

// Open opens or creates the compound database at dataDir/index/compounds.db,
// creating the schema if needed.
func Open(cfg types.StoreConfig) (*Store, error) {
	dbDir := filepath.Join(cfg.DataDir, indexDir)
	if err := os.MkdirAll(dbDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	dbPath := filepath.Join(dbDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}

	s := &Store{
		db:         db,
		dataDir:    cfg.DataDir,
		maxResults: maxResults,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS compounds (
			cid INTEGER PRIMARY KEY,
			retrieved_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS properties (
			cid INTEGER NOT NULL REFERENCES compounds(cid),
			name TEXT NOT NULL,
			value TEXT NOT NULL,
			PRIMARY KEY (cid, name)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_properties_name ON properties(name)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// IngestSummary holds counts from one CSV ingestion run.
type IngestSummary struct {
	Stored  int
	Skipped int
}

// Total returns the number of data rows processed.
func (s IngestSummary) Total() int {
	return s.Stored + s.Skipped
}

// Ingest parses merged property CSV text (one header row naming the
// CID column and the property fields, one row per compound) and
// upserts each compound's properties. Rows with an unparseable CID are
// skipped with a status line on w. Re-ingesting a CID replaces its
// stored properties.
func (s *Store) Ingest(ctx context.Context, csvText string, w io.Writer) (IngestSummary, error) {
	if w == nil {
		w = io.Discard
	}

	var summary IngestSummary

	if strings.TrimSpace(csvText) == "" {
		fmt.Fprintln(w, "nothing to ingest: empty CSV")
		return summary, nil
	}

	reader := csv.NewReader(strings.NewReader(csvText))
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return summary, fmt.Errorf("parsing CSV: %w", err)
	}
	if len(records) < 2 {
		fmt.Fprintln(w, "nothing to ingest: no data rows")
		return summary, nil
	}

	header := records[0]
	if len(header) == 0 || !strings.EqualFold(header[0], "CID") {
		return summary, fmt.Errorf("unexpected CSV header: first column is %q, want CID", firstOrEmpty(header))
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return summary, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	retrievedAt := time.Now().UTC().Format(time.RFC3339)

	for _, row := range records[1:] {
		cid, err := strconv.Atoi(strings.TrimSpace(row[0]))
		if err != nil {
			fmt.Fprintf(w, "skipped row with bad CID %q\n", row[0])
			summary.Skipped++
			continue
		}

		if err := upsertCompound(ctx, tx, cid, header, row, retrievedAt); err != nil {
			return summary, fmt.Errorf("storing CID %d: %w", cid, err)
		}
		summary.Stored++
	}

	if err := tx.Commit(); err != nil {
		return summary, fmt.Errorf("committing: %w", err)
	}

	fmt.Fprintf(w, "stored: %d, skipped: %d\n", summary.Stored, summary.Skipped)
	return summary, nil
}

func upsertCompound(ctx context.Context, tx *sql.Tx, cid int, header, row []string, retrievedAt string) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO compounds (cid, retrieved_at) VALUES (?, ?)
		 ON CONFLICT(cid) DO UPDATE SET retrieved_at=excluded.retrieved_at`,
		cid, retrievedAt,
	)
	if err != nil {
		return fmt.Errorf("upserting compound: %w", err)
	}

	// Replace the property set wholesale so a narrower re-retrieval
	// does not leave stale columns behind.
	if _, err := tx.ExecContext(ctx, `DELETE FROM properties WHERE cid = ?`, cid); err != nil {
		return fmt.Errorf("clearing old properties: %w", err)
	}

	for i := 1; i < len(header) && i < len(row); i++ {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO properties (cid, name, value) VALUES (?, ?, ?)`,
			cid, header[i], row[i],
		)
		if err != nil {
			return fmt.Errorf("inserting property %s: %w", header[i], err)
		}
	}
	return nil
}

// Get returns the stored compound for cid, or nil if it has never been
// ingested.
func (s *Store) Get(ctx context.Context, cid int) (*types.Compound, error) {
	var retrievedAt string
	err := s.db.QueryRowContext(ctx,
		`SELECT retrieved_at FROM compounds WHERE cid = ?`, cid,
	).Scan(&retrievedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying compound: %w", err)
	}

	c := &types.Compound{CID: cid, Properties: map[string]string{}}
	if t, parseErr := time.Parse(time.RFC3339, retrievedAt); parseErr == nil {
		c.RetrievedAt = t
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT name, value FROM properties WHERE cid = ?`, cid)
	if err != nil {
		return nil, fmt.Errorf("querying properties: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var name, value string
		if err := rows.Scan(&name, &value); err != nil {
			return nil, fmt.Errorf("scanning property: %w", err)
		}
		c.Properties[name] = value
	}
	return c, rows.Err()
}

// CIDs lists stored CIDs in ascending order, capped at the configured
// maximum. A limit of 0 means the configured default; negative means
// no cap.
func (s *Store) CIDs(ctx context.Context, limit int) ([]int, error) {
	if limit == 0 {
		limit = s.maxResults
	}

	query := `SELECT cid FROM compounds ORDER BY cid`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing CIDs: %w", err)
	}
	defer rows.Close()

	var cids []int
	for rows.Next() {
		var cid int
		if err := rows.Scan(&cid); err != nil {
			return nil, fmt.Errorf("scanning CID: %w", err)
		}
		cids = append(cids, cid)
	}
	return cids, rows.Err()
}

// Count returns the number of stored compounds.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM compounds`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting compounds: %w", err)
	}
	return n, nil
}

// Dump returns every stored compound, ordered by CID.
func (s *Store) Dump(ctx context.Context) ([]types.Compound, error) {
	cids, err := s.CIDs(ctx, -1)
	if err != nil {
		return nil, err
	}

	compounds := make([]types.Compound, 0, len(cids))
	for _, cid := range cids {
		c, err := s.Get(ctx, cid)
		if err != nil {
			return nil, err
		}
		if c != nil {
			compounds = append(compounds, *c)
		}
	}
	return compounds, nil
}

// ExportYAML writes a full YAML dump to dataDir/index/compounds.yaml
// and returns the path written.
func (s *Store) ExportYAML(ctx context.Context) (string, error) {
	compounds, err := s.Dump(ctx)
	if err != nil {
		return "", err
	}

	data, err := yaml.Marshal(compounds)
	if err != nil {
		return "", fmt.Errorf("marshaling export: %w", err)
	}

	path := filepath.Join(s.dataDir, indexDir, "compounds.yaml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing export: %w", err)
	}
	return path, nil
}

// ExportJSON writes a full JSON dump to dataDir/index/compounds.json
// and returns the path written.
func (s *Store) ExportJSON(ctx context.Context) (string, error) {
	compounds, err := s.Dump(ctx)
	if err != nil {
		return "", err
	}

	data, err := json.MarshalIndent(compounds, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling export: %w", err)
	}

	path := filepath.Join(s.dataDir, indexDir, "compounds.json")
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return "", fmt.Errorf("writing export: %w", err)
	}
	return path, nil
}

// PropertyNames returns the distinct property names stored, sorted.
func (s *Store) PropertyNames(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT name FROM properties`)
	if err != nil {
		return nil, fmt.Errorf("listing property names: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scanning property name: %w", err)
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, rows.Err()
}

func firstOrEmpty(fields []string) string {
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
