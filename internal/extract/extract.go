package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"

	"jobboard-backend/internal/blob"
)

const mimePDF = "application/pdf"

// ErrUnsupportedSource means the blob is not a document text can be pulled from.
var ErrUnsupportedSource = errors.New("unsupported source for text extraction")

// FromStore pulls plain text out of a stored document blob. Only PDF resumes
// are supported; images and anything else are rejected up front.
func FromStore(ctx context.Context, store blob.Store, id string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	rc, meta, err := store.OpenDownload(ctx, id)
	if err != nil {
		return "", fmt.Errorf("extract text blob=%s: %w", id, err)
	}
	defer rc.Close()

	if normalizeMimeType(meta.MimeType) != mimePDF {
		return "", fmt.Errorf("extract text blob=%s mime=%s: %w", id, meta.MimeType, ErrUnsupportedSource)
	}

	raw, err := io.ReadAll(rc)
	if err != nil {
		return "", fmt.Errorf("extract text blob=%s: read: %w", id, err)
	}

	text, err := FromPDFBytes(raw)
	if err != nil {
		return "", fmt.Errorf("extract text blob=%s: %w", id, err)
	}
	return text, nil
}

// FromPDFBytes extracts text from an in-memory PDF payload.
// Library used: github.com/ledongthuc/pdf.
func FromPDFBytes(data []byte) (string, error) {
	if len(data) == 0 {
		return "", errors.New("empty pdf data")
	}
	reader := bytes.NewReader(data)
	pdfReader, err := pdf.NewReader(reader, int64(len(data)))
	if err != nil {
		return "", err
	}
	plain, err := pdfReader.GetPlainText()
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", err
	}
	return strings.TrimSpace(buf.String()), nil
}

func normalizeMimeType(mimeType string) string {
	return strings.ToLower(strings.TrimSpace(strings.Split(mimeType, ";")[0]))
}
