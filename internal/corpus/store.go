// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package corpus persists scored documents as reference entries and serves
// nearest-segment queries for the matcher. The store is read-mostly; writes
// are append-only and, under WAL, never block concurrent readers.
package corpus

import (
	"context"
	"database/sql"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"

	"github.com/agesatony/AGs-plagcheck/pkg/types"
)

const (
	indexDir = "index"
	dbFile   = "plagcheck.db"
)

// Store manages the corpus SQLite database.
type Store struct {
	db *sql.DB
}

// NewStore opens or creates the corpus database at dir/index/plagcheck.db,
// creating the schema if needed.
func NewStore(cfg types.CorpusConfig) (*Store, error) {
	dbDir := filepath.Join(cfg.Dir, indexDir)
	if err := os.MkdirAll(dbDir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: creating index directory: %v", types.ErrCorpusUnavailable, err)
	}

	dbPath := filepath.Join(dbDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("%w: opening database: %v", types.ErrCorpusUnavailable, err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: creating schema: %v", types.ErrCorpusUnavailable, err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS entries (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			owner TEXT,
			checksum TEXT NOT NULL UNIQUE,
			created_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS segments (
			entry_id TEXT NOT NULL REFERENCES entries(id),
			position INTEGER NOT NULL,
			text TEXT NOT NULL,
			token_count INTEGER NOT NULL,
			embedding BLOB NOT NULL,
			PRIMARY KEY (entry_id, position)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_segments_entry ON segments(entry_id)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// EntrySummary describes one corpus entry for listings.
type EntrySummary struct {
	ID        string    `json:"id" yaml:"id"`
	Title     string    `json:"title" yaml:"title"`
	Owner     string    `json:"owner,omitempty" yaml:"owner,omitempty"`
	Segments  int       `json:"segments" yaml:"segments"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

// Append inserts a document and its fingerprinted segments as a new corpus
// entry in one transaction. Appending a checksum the corpus already holds is
// a no-op that returns the existing entry ID.
func (s *Store) Append(ctx context.Context, doc *types.Document, title string, segs []types.Segment) (string, error) {
	var existing string
	err := s.db.QueryRowContext(ctx,
		`SELECT id FROM entries WHERE checksum = ?`, doc.Checksum).Scan(&existing)
	if err == nil {
		return existing, nil
	}
	if err != sql.ErrNoRows {
		return "", fmt.Errorf("checking checksum: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	entryID := uuid.NewString()
	createdAt := time.Now().UTC().Format(time.RFC3339Nano)

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO entries (id, title, owner, checksum, created_at) VALUES (?, ?, ?, ?, ?)`,
		entryID, title, doc.Owner, doc.Checksum, createdAt,
	); err != nil {
		// A concurrent writer may have appended the same checksum between
		// the pre-check and this insert; the unique constraint keeps the
		// no-op contract.
		if isUniqueViolation(err) {
			tx.Rollback()
			if qerr := s.db.QueryRowContext(ctx,
				`SELECT id FROM entries WHERE checksum = ?`, doc.Checksum).Scan(&existing); qerr == nil {
				return existing, nil
			}
		}
		return "", fmt.Errorf("inserting entry: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO segments (entry_id, position, text, token_count, embedding) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("preparing segment insert: %w", err)
	}
	defer stmt.Close()

	for _, seg := range segs {
		if _, err := stmt.ExecContext(ctx,
			entryID, seg.Index, seg.Text, seg.TokenCount, encodeVec(seg.Embedding),
		); err != nil {
			return "", fmt.Errorf("inserting segment %d: %w", seg.Index, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("committing entry: %w", err)
	}
	return entryID, nil
}

// Neighbor is one corpus segment returned by a nearest-segment query.
type Neighbor struct {
	EntryID        string
	EntryTitle     string
	EntryCreatedAt time.Time
	Position       int
	Text           string
	TokenCount     int
	Score          float64
}

// NearestSegments returns the k corpus segments closest to vec by cosine
// similarity, best first. Retrieval is an exact linear scan; corpora at this
// scale stay comfortably below the point where an ANN index pays off.
func (s *Store) NearestSegments(ctx context.Context, vec []float32, k int) ([]Neighbor, error) {
	if k <= 0 {
		k = 5
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT e.id, e.title, e.created_at, s.position, s.text, s.token_count, s.embedding
		 FROM segments s JOIN entries e ON s.entry_id = e.id
		 ORDER BY e.created_at, e.id, s.position`)
	if err != nil {
		return nil, fmt.Errorf("%w: querying segments: %v", types.ErrCorpusUnavailable, err)
	}
	defer rows.Close()

	var neighbors []Neighbor
	for rows.Next() {
		var (
			n         Neighbor
			createdAt string
			blob      []byte
		)
		if err := rows.Scan(&n.EntryID, &n.EntryTitle, &createdAt,
			&n.Position, &n.Text, &n.TokenCount, &blob); err != nil {
			return nil, fmt.Errorf("scanning segment row: %w", err)
		}
		if t, parseErr := time.Parse(time.RFC3339Nano, createdAt); parseErr == nil {
			n.EntryCreatedAt = t
		}
		n.Score = cosine(vec, decodeVec(blob))
		neighbors = append(neighbors, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading segment rows: %w", err)
	}

	sort.SliceStable(neighbors, func(i, j int) bool {
		return neighbors[i].Score > neighbors[j].Score
	})
	if len(neighbors) > k {
		neighbors = neighbors[:k]
	}
	return neighbors, nil
}

// Entries lists all corpus entries, newest first.
func (s *Store) Entries(ctx context.Context) ([]EntrySummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT e.id, e.title, e.owner, e.created_at, COUNT(s.position)
		 FROM entries e LEFT JOIN segments s ON s.entry_id = e.id
		 GROUP BY e.id ORDER BY e.created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("querying entries: %w", err)
	}
	defer rows.Close()

	var entries []EntrySummary
	for rows.Next() {
		var (
			e         EntrySummary
			owner     sql.NullString
			createdAt string
		)
		if err := rows.Scan(&e.ID, &e.Title, &owner, &createdAt, &e.Segments); err != nil {
			return nil, fmt.Errorf("scanning entry row: %w", err)
		}
		if owner.Valid {
			e.Owner = owner.String
		}
		if t, parseErr := time.Parse(time.RFC3339Nano, createdAt); parseErr == nil {
			e.CreatedAt = t
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// isUniqueViolation reports whether err is a SQLite unique constraint error.
func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint
}

// encodeVec packs float32s as little-endian bytes.
func encodeVec(vec []float32) []byte {
	buf := make([]byte, 4*len(vec))
	for i, v := range vec {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(v))
	}
	return buf
}

// decodeVec unpacks little-endian float32 bytes.
func decodeVec(buf []byte) []float32 {
	vec := make([]float32, len(buf)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[4*i:]))
	}
	return vec
}

// cosine over already-normalized vectors reduces to a dot product.
func cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	return dot
}
