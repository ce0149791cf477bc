package files

import (
	"bytes"
	"context"
	"crypto/rand"
	"errors"
	"io"
	"testing"

	"jobboard-backend/internal/blob"
)

func newTestService(store blob.Store) *Service {
	return &Service{
		Store:  store,
		Policy: NewPolicy(10<<20, []string{"image/jpeg", "image/png", "image/gif", "application/pdf"}),
	}
}

func TestIngestRoundTrip(t *testing.T) {
	store := blob.NewMemoryStore()
	svc := newTestService(store)

	payload := make([]byte, 64<<10)
	if _, err := rand.Read(payload); err != nil {
		t.Fatal(err)
	}

	stored, err := svc.Ingest(context.Background(), "user-1", "avatar.png", "image/png", bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if stored.ID == "" {
		t.Fatal("expected an id after finalize")
	}
	if stored.Size != int64(len(payload)) {
		t.Fatalf("size = %d, want %d", stored.Size, len(payload))
	}
	if stored.Category != blob.CategoryImage {
		t.Fatalf("category = %q, want image", stored.Category)
	}

	rc, meta, err := svc.Fetch(context.Background(), stored.ID)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	defer rc.Close()
	got, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatal("downloaded bytes differ from uploaded bytes")
	}
	if meta.MimeType != "image/png" {
		t.Fatalf("mime = %q", meta.MimeType)
	}
	if meta.Length != int64(len(payload)) {
		t.Fatalf("length = %d", meta.Length)
	}
}

func TestIngestRejectsMimeBeforeStreaming(t *testing.T) {
	store := blob.NewMemoryStore()
	svc := newTestService(store)

	_, err := svc.Ingest(context.Background(), "user-1", "page.html", "text/html", bytes.NewReader([]byte("<html>")))
	if !errors.Is(err, ErrUnsupportedMediaType) {
		t.Fatalf("err = %v, want ErrUnsupportedMediaType", err)
	}
	if store.Len() != 0 {
		t.Fatalf("store holds %d blobs, want 0", store.Len())
	}
}

func TestIngestAbortsOversizedStream(t *testing.T) {
	store := blob.NewMemoryStore()
	svc := newTestService(store)
	svc.Policy.MaxUploadBytes = 1024

	payload := make([]byte, 4096)
	_, err := svc.Ingest(context.Background(), "user-1", "big.pdf", "application/pdf", bytes.NewReader(payload))
	if !errors.Is(err, ErrPayloadTooLarge) {
		t.Fatalf("err = %v, want ErrPayloadTooLarge", err)
	}
	if store.Len() != 0 {
		t.Fatalf("store holds %d blobs after aborted upload, want 0", store.Len())
	}
}

func TestIngestAbortsOnReadError(t *testing.T) {
	store := blob.NewMemoryStore()
	svc := newTestService(store)

	r := io.MultiReader(bytes.NewReader(make([]byte, 100)), failingReader{})
	_, err := svc.Ingest(context.Background(), "user-1", "doc.pdf", "application/pdf", r)
	if !errors.Is(err, blob.ErrUploadFailed) {
		t.Fatalf("err = %v, want ErrUploadFailed", err)
	}
	if store.Len() != 0 {
		t.Fatalf("store holds %d blobs after failed stream, want 0", store.Len())
	}
}

func TestIngestRejectsTraversalName(t *testing.T) {
	svc := newTestService(blob.NewMemoryStore())
	_, err := svc.Ingest(context.Background(), "user-1", "../../etc/passwd", "application/pdf", bytes.NewReader([]byte("x")))
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
}

func TestFetchValidatesID(t *testing.T) {
	svc := newTestService(blob.NewMemoryStore())
	_, _, err := svc.Fetch(context.Background(), "not-a-uuid")
	if !errors.Is(err, blob.ErrInvalidID) {
		t.Fatalf("err = %v, want ErrInvalidID", err)
	}
}

func TestDeleteBestEffortSwallowsMissing(t *testing.T) {
	svc := newTestService(blob.NewMemoryStore())
	if svc.DeleteBestEffort(context.Background(), blob.NewID()) {
		t.Fatal("expected false for a blob that never existed")
	}
	if svc.DeleteBestEffort(context.Background(), "") {
		t.Fatal("expected false for empty id")
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("stream broken")
}
