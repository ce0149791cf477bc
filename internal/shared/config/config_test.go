package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("MAX_UPLOAD_BYTES", "")
	t.Setenv("ALLOWED_MIME_TYPES", "")
	t.Setenv("STORAGE_INIT_TIMEOUT_MS", "")
	t.Setenv("BLOB_STORE", "")

	cfg := Load()

	if cfg.Port != "8080" {
		t.Fatalf("expected default port 8080, got %s", cfg.Port)
	}
	if cfg.MaxUploadBytes != 10<<20 {
		t.Fatalf("expected default max upload 10MiB, got %d", cfg.MaxUploadBytes)
	}
	if cfg.StorageInitTimeout != 10*time.Second {
		t.Fatalf("expected default init timeout 10s, got %s", cfg.StorageInitTimeout)
	}
	if cfg.BlobStoreType != "pg" {
		t.Fatalf("expected default store pg, got %s", cfg.BlobStoreType)
	}
	if len(cfg.AllowedMimeTypes) != 5 {
		t.Fatalf("expected 5 default mime types, got %v", cfg.AllowedMimeTypes)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("MAX_UPLOAD_BYTES", "2048")
	t.Setenv("ALLOWED_MIME_TYPES", "image/png, application/pdf")
	t.Setenv("STORAGE_INIT_TIMEOUT_MS", "2500")
	t.Setenv("BLOB_STORE", "s3")

	cfg := Load()

	if cfg.MaxUploadBytes != 2048 {
		t.Fatalf("expected max upload 2048, got %d", cfg.MaxUploadBytes)
	}
	if len(cfg.AllowedMimeTypes) != 2 || cfg.AllowedMimeTypes[0] != "image/png" {
		t.Fatalf("unexpected allowed mime types: %v", cfg.AllowedMimeTypes)
	}
	if cfg.StorageInitTimeout != 2500*time.Millisecond {
		t.Fatalf("expected init timeout 2.5s, got %s", cfg.StorageInitTimeout)
	}
	if cfg.BlobStoreType != "s3" {
		t.Fatalf("expected store s3, got %s", cfg.BlobStoreType)
	}
}

func TestLoadInvalidNumbersFallBack(t *testing.T) {
	t.Setenv("MAX_UPLOAD_BYTES", "not-a-number")
	t.Setenv("STORAGE_INIT_TIMEOUT_MS", "-5")

	cfg := Load()

	if cfg.MaxUploadBytes != 10<<20 {
		t.Fatalf("expected fallback max upload, got %d", cfg.MaxUploadBytes)
	}
	if cfg.StorageInitTimeout != 10*time.Second {
		t.Fatalf("expected fallback init timeout, got %s", cfg.StorageInitTimeout)
	}
}
