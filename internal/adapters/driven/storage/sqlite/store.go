package sqlite

import (
	"context"
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/paperchat/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/paperchat/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/paperchat/internal/core/domain"
	"github.com/custodia-labs/paperchat/internal/core/ports/driven"
)

// Keys stored in index_meta.
const (
	metaEmbeddingModel = "embedding_model"
	metaDimensions     = "dimensions"
	metaBuiltAt        = "built_at"
	metaFingerprint    = "fingerprint"
	metaDocuments      = "documents"
)

// Store builds and loads SQLite-backed indexes.
type Store struct{}

// Verify interface compliance.
var _ driven.IndexStore = (*Store)(nil)

// NewStore creates a new index store.
func NewStore() *Store {
	return &Store{}
}

// DefaultPath returns the index file inside dir.
// If dir is empty, defaults to data/index.
func DefaultPath(dir string) string {
	if dir == "" {
		dir = domain.DefaultIndexDir
	}
	return filepath.Join(dir, domain.IndexFileName)
}

// create opens a fresh database file for writing and runs migrations.
func create(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(DELETE)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := migrate(db, migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return db, nil
}

// openReadOnly opens an existing index without modifying it.
// Files that lack the index tables are reported as domain.ErrIndexNotFound.
func openReadOnly(ctx context.Context, path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", "file:"+path+"?mode=ro&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	var tables int
	err = db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name IN ('records', 'index_meta')`,
	).Scan(&tables)
	if err == nil && tables < 2 {
		err = errors.New("index tables missing")
	}
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("%s is not a paperchat index (%v): %w", path, err, domain.ErrIndexNotFound)
	}
	return db, nil
}

// Build replaces the index at path with records.
// The index is written to a temporary file in the same directory and
// renamed into place only after every record has been committed.
func (s *Store) Build(ctx context.Context, path string, records []domain.EmbeddingRecord, info domain.IndexInfo) error {
	if len(records) == 0 {
		return fmt.Errorf("no records to index: %w", domain.ErrEmptyCorpus)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating index directory: %w", err)
	}

	tmp := filepath.Join(dir, "."+filepath.Base(path)+"."+uuid.New().String()+".tmp")
	if err := s.write(ctx, tmp, records, info); err != nil {
		os.Remove(tmp) //nolint:errcheck
		return err
	}

	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp) //nolint:errcheck
		return fmt.Errorf("replacing index: %w", err)
	}
	return nil
}

func (s *Store) write(ctx context.Context, path string, records []domain.EmbeddingRecord, info domain.IndexInfo) error {
	db, err := create(path)
	if err != nil {
		return err
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO records (id, document_id, position, start_offset, end_offset, source, content, metadata, embedding)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	dims := len(records[0].Embedding)
	sources := make(map[string]struct{})
	for _, r := range records {
		if len(r.Embedding) != dims {
			return fmt.Errorf("record %s has %d dimensions, expected %d: %w",
				r.Chunk.ID, len(r.Embedding), dims, domain.ErrEmbeddingMismatch)
		}
		if !domain.FiniteVector(r.Embedding) {
			return fmt.Errorf("record %s has a non-finite embedding value: %w", r.Chunk.ID, domain.ErrInvalidInput)
		}

		metadataJSON, err := json.Marshal(r.Chunk.Metadata)
		if err != nil {
			return fmt.Errorf("marshalling chunk metadata: %w", err)
		}

		c := r.Chunk
		if _, err := stmt.ExecContext(ctx, c.ID, c.DocumentID, c.Position, c.Start, c.End,
			c.Metadata.Source, c.Content, string(metadataJSON), float32SliceToBytes(r.Embedding)); err != nil {
			return fmt.Errorf("saving record: %w", err)
		}
		sources[c.Metadata.Source] = struct{}{}
	}

	builtAt := info.BuiltAt
	if builtAt.IsZero() {
		builtAt = time.Now()
	}
	meta := map[string]string{
		metaEmbeddingModel: info.EmbeddingModel,
		metaDimensions:     strconv.Itoa(dims),
		metaBuiltAt:        builtAt.UTC().Format(time.RFC3339),
		metaFingerprint:    info.Fingerprint,
		metaDocuments:      strconv.Itoa(len(sources)),
	}
	for k, v := range meta {
		if _, err := tx.ExecContext(ctx, `INSERT INTO index_meta (key, value) VALUES (?, ?)`, k, v); err != nil {
			return fmt.Errorf("saving index metadata: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Load reads the index at path into memory. The file is opened read-only.
// Returns domain.ErrIndexNotFound when the file does not exist or holds no index.
func (s *Store) Load(ctx context.Context, path string) (driven.VectorIndex, domain.IndexInfo, error) {
	info := domain.IndexInfo{Path: path}

	st, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, info, fmt.Errorf("%s: %w", path, domain.ErrIndexNotFound)
		}
		return nil, info, fmt.Errorf("checking index: %w", err)
	}
	if st.IsDir() {
		return nil, info, fmt.Errorf("%s is a directory: %w", path, domain.ErrIndexNotFound)
	}

	db, err := openReadOnly(ctx, path)
	if err != nil {
		return nil, info, err
	}
	defer db.Close()

	if err := readMeta(ctx, db, &info); err != nil {
		return nil, info, err
	}

	idx := memory.NewVectorIndex(info.Dimensions)
	rows, err := db.QueryContext(ctx, `
		SELECT id, document_id, position, start_offset, end_offset, content, metadata, embedding
		FROM records ORDER BY seq
	`)
	if err != nil {
		return nil, info, fmt.Errorf("querying records: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, info, err
		}
		if err := idx.Add(ctx, *rec); err != nil {
			return nil, info, fmt.Errorf("loading record %s: %w", rec.Chunk.ID, err)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, info, fmt.Errorf("iterating records: %w", err)
	}

	info.Records = idx.Len()
	if info.Records == 0 {
		return nil, info, fmt.Errorf("%s holds no records: %w", path, domain.ErrIndexNotFound)
	}
	return idx, info, nil
}

func readMeta(ctx context.Context, db *sql.DB, info *domain.IndexInfo) error {
	rows, err := db.QueryContext(ctx, `SELECT key, value FROM index_meta`)
	if err != nil {
		return fmt.Errorf("querying index metadata: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return fmt.Errorf("scanning index metadata: %w", err)
		}
		switch key {
		case metaEmbeddingModel:
			info.EmbeddingModel = value
		case metaDimensions:
			info.Dimensions, _ = strconv.Atoi(value)
		case metaBuiltAt:
			info.BuiltAt, _ = time.Parse(time.RFC3339, value)
		case metaFingerprint:
			info.Fingerprint = value
		case metaDocuments:
			info.Documents, _ = strconv.Atoi(value)
		}
	}
	return rows.Err()
}

// migrate runs all pending migrations.
func migrate(db *sql.DB, fsys fs.FS) error {
	// Ensure schema_migrations table exists
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if name := entry.Name(); strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// "001_index.up.sql" -> 1
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// scanRecord scans an embedding record from *sql.Rows.
func scanRecord(rows *sql.Rows) (*domain.EmbeddingRecord, error) {
	var rec domain.EmbeddingRecord
	var metadataJSON string
	var embeddingBlob []byte

	c := &rec.Chunk
	if err := rows.Scan(&c.ID, &c.DocumentID, &c.Position, &c.Start, &c.End,
		&c.Content, &metadataJSON, &embeddingBlob); err != nil {
		return nil, fmt.Errorf("scanning record: %w", err)
	}

	if metadataJSON != "" {
		if err := json.Unmarshal([]byte(metadataJSON), &c.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshaling chunk metadata: %w", err)
		}
	}
	rec.Embedding = bytesToFloat32Slice(embeddingBlob)

	return &rec, nil
}

// float32SliceToBytes converts a []float32 to a byte slice for storage.
func float32SliceToBytes(floats []float32) []byte {
	if len(floats) == 0 {
		return nil
	}
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}
