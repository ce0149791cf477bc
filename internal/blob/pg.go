package blob

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"jobboard-backend/internal/shared/telemetry"
)

// DefaultChunkSize is the per-row payload size for staged chunks.
const DefaultChunkSize = 256 << 10

// PGStore stores blobs in Postgres as a metadata row plus ordered chunk rows.
// Chunks are written inside a transaction opened per upload: the metadata row
// lands with the commit, so a blob id resolves only to fully written blobs and
// failed uploads leave nothing behind.
type PGStore struct {
	db        *sql.DB
	chunkSize int
	ready     atomic.Bool
}

// NewPGStore wraps an existing connection pool. The store refuses all
// operations until Init has completed.
func NewPGStore(db *sql.DB) *PGStore {
	return &PGStore{db: db, chunkSize: DefaultChunkSize}
}

// Init verifies connectivity and marks the store ready. The caller bounds ctx
// with the configured storage init timeout; a failure here is fatal at process
// start.
func (s *PGStore) Init(ctx context.Context) error {
	if s.db == nil {
		return ErrStorageUnavailable
	}
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("blob store init: %w", err)
	}
	s.ready.Store(true)
	return nil
}

// Ready reports whether the store accepts operations.
func (s *PGStore) Ready() bool {
	return s.ready.Load()
}

func (s *PGStore) check() error {
	if s.db == nil || !s.ready.Load() {
		return ErrStorageUnavailable
	}
	return nil
}

// OpenUpload stages a new blob under a provisional id.
func (s *PGStore) OpenUpload(ctx context.Context, storedName string, meta Metadata) (Upload, error) {
	if err := s.check(); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: begin: %v", ErrUploadFailed, err)
	}

	meta.ID = NewID()
	meta.StoredName = storedName
	if meta.MimeType == "" {
		meta.MimeType = DefaultMimeType
	}
	if meta.UploadedAt.IsZero() {
		meta.UploadedAt = time.Now().UTC()
	}

	return &pgUpload{
		tx:        tx,
		meta:      meta,
		chunkSize: s.chunkSize,
	}, nil
}

type pgUpload struct {
	tx        *sql.Tx
	meta      Metadata
	chunkSize int
	buf       []byte
	seq       int
	length    int64
	closed    bool
}

func (u *pgUpload) Write(ctx context.Context, p []byte) (int, error) {
	if u.closed {
		return 0, ErrUploadClosed
	}
	u.buf = append(u.buf, p...)
	u.length += int64(len(p))
	for len(u.buf) >= u.chunkSize {
		if err := u.flushChunk(ctx, u.buf[:u.chunkSize]); err != nil {
			return 0, err
		}
		u.buf = u.buf[u.chunkSize:]
	}
	return len(p), nil
}

func (u *pgUpload) flushChunk(ctx context.Context, data []byte) error {
	_, err := u.tx.ExecContext(ctx,
		`INSERT INTO blob_chunks (blob_id, seq, data) VALUES ($1, $2, $3)`,
		u.meta.ID, u.seq, data,
	)
	if err != nil {
		return fmt.Errorf("%w: write chunk %d: %v", ErrUploadFailed, u.seq, err)
	}
	u.seq++
	return nil
}

// Finalize flushes the tail chunk, writes the metadata row and commits.
// The id becomes resolvable only if the commit succeeds.
func (u *pgUpload) Finalize(ctx context.Context) (string, error) {
	if u.closed {
		return "", ErrUploadClosed
	}
	u.closed = true

	if len(u.buf) > 0 {
		if err := u.flushChunk(ctx, u.buf); err != nil {
			_ = u.tx.Rollback()
			return "", err
		}
		u.buf = nil
	}

	u.meta.Length = u.length
	_, err := u.tx.ExecContext(ctx,
		`INSERT INTO blob_files (id, stored_name, original_name, mime_type, length, category, uploaded_by, uploaded_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		u.meta.ID,
		u.meta.StoredName,
		u.meta.OriginalName,
		u.meta.MimeType,
		u.meta.Length,
		string(u.meta.Category),
		u.meta.UploadedBy,
		u.meta.UploadedAt,
	)
	if err != nil {
		_ = u.tx.Rollback()
		return "", fmt.Errorf("%w: metadata: %v", ErrUploadFailed, err)
	}

	if err := u.tx.Commit(); err != nil {
		return "", fmt.Errorf("%w: commit: %v", ErrUploadFailed, err)
	}
	return u.meta.ID, nil
}

// Abort discards the staged upload. The rollback drops every staged chunk.
func (u *pgUpload) Abort(ctx context.Context) error {
	if u.closed {
		return nil
	}
	u.closed = true
	u.buf = nil
	if err := u.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return err
	}
	return nil
}

// Stat returns the metadata of a committed blob.
func (s *PGStore) Stat(ctx context.Context, id string) (Metadata, error) {
	if err := s.check(); err != nil {
		return Metadata{}, err
	}

	const query = `
SELECT id, stored_name, original_name, mime_type, length, category, uploaded_by, uploaded_at
FROM blob_files
WHERE id = $1`
	var meta Metadata
	var category string
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&meta.ID,
		&meta.StoredName,
		&meta.OriginalName,
		&meta.MimeType,
		&meta.Length,
		&category,
		&meta.UploadedBy,
		&meta.UploadedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Metadata{}, ErrNotFound
		}
		return Metadata{}, err
	}
	meta.Category = Category(category)
	return meta, nil
}

// OpenDownload returns a reader over the blob's chunks in order. The reader
// is finite and not restartable; callers re-open to read again.
func (s *PGStore) OpenDownload(ctx context.Context, id string) (io.ReadCloser, Metadata, error) {
	meta, err := s.Stat(ctx, id)
	if err != nil {
		return nil, Metadata{}, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT data FROM blob_chunks WHERE blob_id = $1 ORDER BY seq`, id)
	if err != nil {
		return nil, Metadata{}, err
	}
	return &chunkReader{rows: rows}, meta, nil
}

// chunkReader streams chunk rows lazily so a download never holds the whole
// blob in memory.
type chunkReader struct {
	rows *sql.Rows
	cur  []byte
	done bool
}

func (r *chunkReader) Read(p []byte) (int, error) {
	for len(r.cur) == 0 {
		if r.done {
			return 0, io.EOF
		}
		if !r.rows.Next() {
			r.done = true
			if err := r.rows.Err(); err != nil {
				return 0, err
			}
			return 0, io.EOF
		}
		var data []byte
		if err := r.rows.Scan(&data); err != nil {
			return 0, err
		}
		r.cur = data
	}
	n := copy(p, r.cur)
	r.cur = r.cur[n:]
	return n, nil
}

func (r *chunkReader) Close() error {
	r.done = true
	return r.rows.Close()
}

// Delete removes a blob's metadata and chunks. Best-effort at call sites:
// errors are reported but a missing blob is not one.
func (s *PGStore) Delete(ctx context.Context, id string) (bool, error) {
	if err := s.check(); err != nil {
		return false, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM blob_files WHERE id = $1`, id)
	if err != nil {
		_ = tx.Rollback()
		return false, err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM blob_chunks WHERE blob_id = $1`, id); err != nil {
		_ = tx.Rollback()
		return false, err
	}
	if err := tx.Commit(); err != nil {
		return false, err
	}

	removed, _ := res.RowsAffected()
	if removed > 0 {
		telemetry.Info("blob.deleted", map[string]any{"blob_id": id})
	}
	return removed > 0, nil
}

var _ Store = (*PGStore)(nil)
