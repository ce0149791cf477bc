package files

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"jobboard-backend/internal/blob"
	"jobboard-backend/internal/shared/telemetry"
	"jobboard-backend/internal/shared/util"
)

const copyBufferSize = 32 << 10

// StoredFile is the handle returned for a completed ingest.
type StoredFile struct {
	ID           string
	StoredName   string
	OriginalName string
	MimeType     string
	Size         int64
	Category     blob.Category
}

// Service bridges inbound multipart streams to the blob store, enforcing the
// acceptance policy.
type Service struct {
	Store  blob.Store
	Policy Policy
}

// Ingest validates and streams one file into the blob store. Exactly one blob
// is created per successful call; any mid-stream failure aborts the staged
// upload so nothing durable remains.
func (s *Service) Ingest(ctx context.Context, ownerID, originalName, mimeType string, r io.Reader) (StoredFile, error) {
	sanitized, err := util.SanitizeFileName(originalName)
	if err != nil {
		return StoredFile{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := s.Policy.CheckMime(mimeType); err != nil {
		return StoredFile{}, err
	}

	// Timestamp prefix keeps stored names collision-resistant while staying
	// traceable to the original upload.
	storedName := fmt.Sprintf("%d-%s", time.Now().UnixMilli(), sanitized)
	category := blob.CategoryOf(mimeType)

	up, err := s.Store.OpenUpload(ctx, storedName, blob.Metadata{
		OriginalName: originalName,
		MimeType:     mimeType,
		Category:     category,
		UploadedBy:   ownerID,
	})
	if err != nil {
		return StoredFile{}, err
	}

	size, err := s.pipe(ctx, up, r)
	if err != nil {
		if abortErr := up.Abort(ctx); abortErr != nil {
			telemetry.Error("files.ingest.abort_failed", map[string]any{
				"err":      abortErr.Error(),
				"owner_id": ownerID,
			})
		}
		return StoredFile{}, err
	}

	id, err := up.Finalize(ctx)
	if err != nil {
		return StoredFile{}, err
	}

	telemetry.Info("files.ingest.complete", map[string]any{
		"blob_id":     id,
		"stored_name": storedName,
		"mime_type":   mimeType,
		"size":        size,
		"category":    string(category),
		"owner_id":    ownerID,
	})

	return StoredFile{
		ID:           id,
		StoredName:   storedName,
		OriginalName: originalName,
		MimeType:     mimeType,
		Size:         size,
		Category:     category,
	}, nil
}

// pipe copies the source stream into the upload sink, enforcing the size cap
// as bytes arrive rather than trusting the declared size.
func (s *Service) pipe(ctx context.Context, up blob.Upload, r io.Reader) (int64, error) {
	buf := make([]byte, copyBufferSize)
	var total int64
	for {
		n, readErr := r.Read(buf)
		if n > 0 {
			total += int64(n)
			if s.Policy.MaxUploadBytes > 0 && total > s.Policy.MaxUploadBytes {
				return total, ErrPayloadTooLarge
			}
			if _, err := up.Write(ctx, buf[:n]); err != nil {
				return total, err
			}
		}
		if readErr == io.EOF {
			return total, nil
		}
		if readErr != nil {
			return total, fmt.Errorf("%w: read: %v", blob.ErrUploadFailed, readErr)
		}
	}
}

// Fetch resolves and opens a blob for streaming. The id is validated before
// the store is consulted.
func (s *Service) Fetch(ctx context.Context, id string) (io.ReadCloser, blob.Metadata, error) {
	if err := blob.ValidateID(id); err != nil {
		return nil, blob.Metadata{}, err
	}
	return s.Store.OpenDownload(ctx, id)
}

// Stat returns blob metadata by id.
func (s *Service) Stat(ctx context.Context, id string) (blob.Metadata, error) {
	if err := blob.ValidateID(id); err != nil {
		return blob.Metadata{}, err
	}
	return s.Store.Stat(ctx, id)
}

// DeleteBestEffort removes a blob, logging rather than propagating failures.
// Used for lifecycle cleanup where the enclosing operation already succeeded.
func (s *Service) DeleteBestEffort(ctx context.Context, id string) bool {
	if id == "" {
		return false
	}
	removed, err := s.Store.Delete(ctx, id)
	if err != nil && !errors.Is(err, blob.ErrNotFound) {
		telemetry.Error("files.delete.orphaned", map[string]any{
			"blob_id": id,
			"err":     err.Error(),
		})
		return false
	}
	return removed
}
