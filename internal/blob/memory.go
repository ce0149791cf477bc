package blob

import (
	"bytes"
	"context"
	"io"
	"sync"
	"time"
)

// MemoryStore is an in-memory Store used by tests and by dev runs without a
// database.
type MemoryStore struct {
	mu    sync.RWMutex
	blobs map[string]memBlob

	// FailFinalize forces Finalize to fail, for exercising error paths.
	FailFinalize bool
}

type memBlob struct {
	meta Metadata
	data []byte
}

// NewMemoryStore constructs an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: make(map[string]memBlob)}
}

// Len reports the number of committed blobs.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.blobs)
}

// OpenUpload stages a new upload buffered in memory.
func (s *MemoryStore) OpenUpload(ctx context.Context, storedName string, meta Metadata) (Upload, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	meta.ID = NewID()
	meta.StoredName = storedName
	if meta.MimeType == "" {
		meta.MimeType = DefaultMimeType
	}
	if meta.UploadedAt.IsZero() {
		meta.UploadedAt = time.Now().UTC()
	}

	return &memUpload{store: s, meta: meta}, nil
}

type memUpload struct {
	store  *MemoryStore
	meta   Metadata
	buf    bytes.Buffer
	closed bool
}

func (u *memUpload) Write(ctx context.Context, p []byte) (int, error) {
	if u.closed {
		return 0, ErrUploadClosed
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return u.buf.Write(p)
}

func (u *memUpload) Finalize(ctx context.Context) (string, error) {
	if u.closed {
		return "", ErrUploadClosed
	}
	u.closed = true
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if u.store.FailFinalize {
		return "", ErrUploadFailed
	}

	u.meta.Length = int64(u.buf.Len())

	u.store.mu.Lock()
	u.store.blobs[u.meta.ID] = memBlob{meta: u.meta, data: u.buf.Bytes()}
	u.store.mu.Unlock()
	return u.meta.ID, nil
}

func (u *memUpload) Abort(ctx context.Context) error {
	u.closed = true
	u.buf.Reset()
	return nil
}

// Stat returns metadata of a committed blob.
func (s *MemoryStore) Stat(ctx context.Context, id string) (Metadata, error) {
	if err := ctx.Err(); err != nil {
		return Metadata{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.blobs[id]
	if !ok {
		return Metadata{}, ErrNotFound
	}
	return b.meta, nil
}

// OpenDownload returns a fresh reader over the blob bytes.
func (s *MemoryStore) OpenDownload(ctx context.Context, id string) (io.ReadCloser, Metadata, error) {
	meta, err := s.Stat(ctx, id)
	if err != nil {
		return nil, Metadata{}, err
	}
	s.mu.RLock()
	data := s.blobs[id].data
	s.mu.RUnlock()
	return io.NopCloser(bytes.NewReader(data)), meta, nil
}

// Delete removes a blob, reporting whether it existed.
func (s *MemoryStore) Delete(ctx context.Context, id string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.blobs[id]; !ok {
		return false, nil
	}
	delete(s.blobs, id)
	return true, nil
}

var _ Store = (*MemoryStore)(nil)
