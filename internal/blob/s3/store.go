package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"jobboard-backend/internal/blob"
)

const (
	metaOriginalName = "originalname"
	metaStoredName   = "storedname"
	metaCategory     = "category"
	metaUploadedBy   = "uploadedby"
	metaUploadedAt   = "uploadedat"
)

// Store implements blob.Store on Amazon S3. One object per blob, keyed by
// the generated id under an optional prefix; blob metadata travels as S3
// object metadata.
type Store struct {
	client   *s3.Client
	bucket   string
	prefix   string
	kmsKeyID string
}

// New creates a new S3-backed blob store.
func New(ctx context.Context, region, bucket, prefix, kmsKeyID string) (*Store, error) {
	if bucket == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{}
	if region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(region))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return &Store{
		client:   s3.NewFromConfig(cfg),
		bucket:   bucket,
		prefix:   normalizePrefix(prefix),
		kmsKeyID: strings.TrimSpace(kmsKeyID),
	}, nil
}

// OpenUpload stages an upload. Bytes are buffered and shipped as a single
// PutObject on Finalize, so a failed upload leaves no object behind.
func (s *Store) OpenUpload(ctx context.Context, storedName string, meta blob.Metadata) (blob.Upload, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	meta.ID = blob.NewID()
	meta.StoredName = storedName
	if meta.MimeType == "" {
		meta.MimeType = blob.DefaultMimeType
	}
	if meta.UploadedAt.IsZero() {
		meta.UploadedAt = time.Now().UTC()
	}

	return &s3Upload{store: s, meta: meta}, nil
}

type s3Upload struct {
	store  *Store
	meta   blob.Metadata
	buf    bytes.Buffer
	closed bool
}

func (u *s3Upload) Write(ctx context.Context, p []byte) (int, error) {
	if u.closed {
		return 0, blob.ErrUploadClosed
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return u.buf.Write(p)
}

func (u *s3Upload) Finalize(ctx context.Context) (string, error) {
	if u.closed {
		return "", blob.ErrUploadClosed
	}
	u.closed = true

	u.meta.Length = int64(u.buf.Len())
	objectKey := applyPrefix(u.store.prefix, u.meta.ID)

	input := &s3.PutObjectInput{
		Bucket:      aws.String(u.store.bucket),
		Key:         aws.String(objectKey),
		Body:        bytes.NewReader(u.buf.Bytes()),
		ContentType: aws.String(u.meta.MimeType),
		Metadata: map[string]string{
			metaOriginalName: u.meta.OriginalName,
			metaStoredName:   u.meta.StoredName,
			metaCategory:     string(u.meta.Category),
			metaUploadedBy:   u.meta.UploadedBy,
			metaUploadedAt:   u.meta.UploadedAt.Format(time.RFC3339),
		},
	}
	if u.store.kmsKeyID != "" {
		input.ServerSideEncryption = s3types.ServerSideEncryptionAwsKms
		input.SSEKMSKeyId = aws.String(u.store.kmsKeyID)
	} else {
		input.ServerSideEncryption = s3types.ServerSideEncryptionAes256
	}

	if _, err := u.store.client.PutObject(ctx, input); err != nil {
		return "", fmt.Errorf("%w: s3 put object bucket=%s key=%s: %v", blob.ErrUploadFailed, u.store.bucket, objectKey, err)
	}
	return u.meta.ID, nil
}

func (u *s3Upload) Abort(ctx context.Context) error {
	u.closed = true
	u.buf.Reset()
	return nil
}

// Stat resolves a blob's metadata via HeadObject.
func (s *Store) Stat(ctx context.Context, id string) (blob.Metadata, error) {
	if err := ctx.Err(); err != nil {
		return blob.Metadata{}, err
	}

	objectKey := applyPrefix(s.prefix, id)
	out, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectKey),
	})
	if err != nil {
		if isNotFound(err) {
			return blob.Metadata{}, blob.ErrNotFound
		}
		return blob.Metadata{}, fmt.Errorf("s3 head object bucket=%s key=%s: %w", s.bucket, objectKey, err)
	}

	return metadataFromHead(id, out), nil
}

// OpenDownload streams a blob from S3.
func (s *Store) OpenDownload(ctx context.Context, id string) (io.ReadCloser, blob.Metadata, error) {
	meta, err := s.Stat(ctx, id)
	if err != nil {
		return nil, blob.Metadata{}, err
	}

	objectKey := applyPrefix(s.prefix, id)
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectKey),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, blob.Metadata{}, blob.ErrNotFound
		}
		return nil, blob.Metadata{}, fmt.Errorf("s3 get object bucket=%s key=%s: %w", s.bucket, objectKey, err)
	}
	return out.Body, meta, nil
}

// Delete removes a blob object, reporting whether it existed.
func (s *Store) Delete(ctx context.Context, id string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	if _, err := s.Stat(ctx, id); err != nil {
		if errors.Is(err, blob.ErrNotFound) {
			return false, nil
		}
		return false, err
	}

	objectKey := applyPrefix(s.prefix, id)
	if _, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectKey),
	}); err != nil {
		return false, fmt.Errorf("s3 delete object bucket=%s key=%s: %w", s.bucket, objectKey, err)
	}
	return true, nil
}

func metadataFromHead(id string, out *s3.HeadObjectOutput) blob.Metadata {
	meta := blob.Metadata{
		ID:       id,
		MimeType: aws.ToString(out.ContentType),
		Length:   aws.ToInt64(out.ContentLength),
	}
	if meta.MimeType == "" {
		meta.MimeType = blob.DefaultMimeType
	}
	if out.Metadata != nil {
		meta.OriginalName = out.Metadata[metaOriginalName]
		meta.StoredName = out.Metadata[metaStoredName]
		meta.Category = blob.Category(out.Metadata[metaCategory])
		meta.UploadedBy = out.Metadata[metaUploadedBy]
		if raw := out.Metadata[metaUploadedAt]; raw != "" {
			if ts, err := time.Parse(time.RFC3339, raw); err == nil {
				meta.UploadedAt = ts
			}
		}
	}
	if meta.Category == "" {
		meta.Category = blob.CategoryOf(meta.MimeType)
	}
	return meta
}

func isNotFound(err error) bool {
	var notFound *s3types.NotFound
	if errors.As(err, &notFound) {
		return true
	}
	var noSuchKey *s3types.NoSuchKey
	if errors.As(err, &noSuchKey) {
		return true
	}
	var respErr interface{ HTTPStatusCode() int }
	if errors.As(err, &respErr) {
		return respErr.HTTPStatusCode() == 404
	}
	return false
}

func normalizePrefix(prefix string) string {
	return strings.Trim(strings.TrimSpace(prefix), "/")
}

func applyPrefix(prefix, key string) string {
	cleanPrefix := strings.Trim(prefix, "/")
	cleanKey := strings.TrimLeft(key, "/")
	if cleanPrefix == "" {
		return cleanKey
	}
	if cleanKey == "" {
		return cleanPrefix
	}
	return cleanPrefix + "/" + cleanKey
}

var _ blob.Store = (*Store)(nil)
