package blob

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func newReadyPGStore(t *testing.T) (*PGStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	store := NewPGStore(db)
	if err := store.Init(context.Background()); err != nil {
		t.Fatalf("Init: %v", err)
	}
	return store, mock
}

func TestPGStoreUnavailableBeforeInit(t *testing.T) {
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	store := NewPGStore(db)
	if store.Ready() {
		t.Fatalf("expected store not ready before Init")
	}
	if _, err := store.OpenUpload(context.Background(), "f", Metadata{}); !errors.Is(err, ErrStorageUnavailable) {
		t.Fatalf("expected ErrStorageUnavailable, got %v", err)
	}
	if _, err := store.Stat(context.Background(), NewID()); !errors.Is(err, ErrStorageUnavailable) {
		t.Fatalf("expected ErrStorageUnavailable, got %v", err)
	}
	if _, err := store.Delete(context.Background(), NewID()); !errors.Is(err, ErrStorageUnavailable) {
		t.Fatalf("expected ErrStorageUnavailable, got %v", err)
	}
}

func TestPGStoreUploadCommitsChunksAndMetadata(t *testing.T) {
	store, mock := newReadyPGStore(t)
	store.chunkSize = 4

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO blob_chunks").
		WithArgs(sqlmock.AnyArg(), 0, []byte("abcd")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO blob_chunks").
		WithArgs(sqlmock.AnyArg(), 1, []byte("ef")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO blob_files").
		WithArgs(
			sqlmock.AnyArg(),
			"1700-cv.pdf",
			"cv.pdf",
			"application/pdf",
			int64(6),
			"document",
			"user-1",
			sqlmock.AnyArg(),
		).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	up, err := store.OpenUpload(context.Background(), "1700-cv.pdf", Metadata{
		OriginalName: "cv.pdf",
		MimeType:     "application/pdf",
		Category:     CategoryDocument,
		UploadedBy:   "user-1",
	})
	if err != nil {
		t.Fatalf("OpenUpload: %v", err)
	}
	if _, err := up.Write(context.Background(), []byte("abc")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if _, err := up.Write(context.Background(), []byte("def")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	id, err := up.Finalize(context.Background())
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if id == "" {
		t.Fatalf("expected id after commit")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGStoreFinalizeFailureRollsBack(t *testing.T) {
	store, mock := newReadyPGStore(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO blob_chunks").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO blob_files").
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	up, err := store.OpenUpload(context.Background(), "f.bin", Metadata{})
	if err != nil {
		t.Fatalf("OpenUpload: %v", err)
	}
	if _, err := up.Write(context.Background(), []byte("data")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	id, err := up.Finalize(context.Background())
	if !errors.Is(err, ErrUploadFailed) {
		t.Fatalf("expected ErrUploadFailed, got %v", err)
	}
	if id != "" {
		t.Fatalf("expected no id on failed finalize, got %q", id)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGStoreAbortRollsBack(t *testing.T) {
	store, mock := newReadyPGStore(t)

	mock.ExpectBegin()
	mock.ExpectRollback()

	up, err := store.OpenUpload(context.Background(), "f.bin", Metadata{})
	if err != nil {
		t.Fatalf("OpenUpload: %v", err)
	}
	if err := up.Abort(context.Background()); err != nil {
		t.Fatalf("Abort: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGStoreStatNotFound(t *testing.T) {
	store, mock := newReadyPGStore(t)
	id := NewID()

	mock.ExpectQuery("SELECT id, stored_name, original_name").
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "stored_name", "original_name", "mime_type", "length", "category", "uploaded_by", "uploaded_at",
		}))

	if _, err := store.Stat(context.Background(), id); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGStoreDownloadStreamsChunksInOrder(t *testing.T) {
	store, mock := newReadyPGStore(t)
	id := NewID()
	now := time.Now().UTC()

	mock.ExpectQuery("SELECT id, stored_name, original_name").
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "stored_name", "original_name", "mime_type", "length", "category", "uploaded_by", "uploaded_at",
		}).AddRow(id, "1700-p.png", "p.png", "image/png", int64(6), "image", "user-1", now))
	mock.ExpectQuery("SELECT data FROM blob_chunks").
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"data"}).
			AddRow([]byte("abc")).
			AddRow([]byte("def")))

	rc, meta, err := store.OpenDownload(context.Background(), id)
	if err != nil {
		t.Fatalf("OpenDownload: %v", err)
	}
	defer rc.Close()

	got, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if string(got) != "abcdef" {
		t.Fatalf("expected abcdef, got %q", got)
	}
	if meta.Category != CategoryImage {
		t.Fatalf("expected image category, got %s", meta.Category)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGStoreDeleteReportsRemoval(t *testing.T) {
	store, mock := newReadyPGStore(t)
	id := NewID()

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM blob_files").
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM blob_chunks").
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectCommit()

	removed, err := store.Delete(context.Background(), id)
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if !removed {
		t.Fatalf("expected removal reported")
	}

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM blob_files").
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM blob_chunks").
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	removed, err = store.Delete(context.Background(), id)
	if err != nil {
		t.Fatalf("second Delete: %v", err)
	}
	if removed {
		t.Fatalf("expected second delete to report nothing removed")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}
