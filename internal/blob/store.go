package blob

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultMimeType is used when an upload carries no usable content type.
const DefaultMimeType = "application/octet-stream"

// Category classifies a blob by what profile slot it can fill.
type Category string

const (
	CategoryImage    Category = "image"
	CategoryDocument Category = "document"
)

// CategoryOf derives the category from a MIME type. This is the single
// source of truth shared by ingestion and profile-reference routing.
func CategoryOf(mimeType string) Category {
	if strings.HasPrefix(strings.ToLower(strings.TrimSpace(mimeType)), "image/") {
		return CategoryImage
	}
	return CategoryDocument
}

// Metadata describes a stored blob. ID is assigned by the store and is only
// present once the blob is fully durable.
type Metadata struct {
	ID           string
	StoredName   string
	OriginalName string
	MimeType     string
	Length       int64
	Category     Category
	UploadedBy   string
	UploadedAt   time.Time
}

// Upload is a sink for one in-progress blob write. Exactly one of Finalize
// or Abort must be called; after either, the handle is dead.
type Upload interface {
	// Write appends a chunk of bytes to the staged blob.
	Write(ctx context.Context, p []byte) (int, error)

	// Finalize commits the blob and returns its id. The id exists only
	// after the store acknowledges durability; any error means no blob
	// was created.
	Finalize(ctx context.Context) (string, error)

	// Abort discards everything staged so far.
	Abort(ctx context.Context) error
}

// NewID generates a blob identifier.
func NewID() string {
	return uuid.NewString()
}

// ValidateID checks that a caller-supplied id is well-formed before any
// lookup touches the store.
func ValidateID(id string) error {
	if _, err := uuid.Parse(strings.TrimSpace(id)); err != nil {
		return ErrInvalidID
	}
	return nil
}

// Store is durable write-once storage of binary objects of unbounded size,
// retrievable by generated id.
type Store interface {
	OpenUpload(ctx context.Context, storedName string, meta Metadata) (Upload, error)
	OpenDownload(ctx context.Context, id string) (io.ReadCloser, Metadata, error)
	Stat(ctx context.Context, id string) (Metadata, error)

	// Delete removes a blob and reports whether one was actually removed.
	// Deleting an unknown id is not an error.
	Delete(ctx context.Context, id string) (bool, error)
}
