package media

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"

	"github.com/Oohan21/utopia-drafts/internal/domain/model"
)

const defaultPreviewTTL = time.Hour

// S3Previewer uploads live media to a scratch prefix and hands out presigned GET URLs.
// Revoking a handle removes the object.
type S3Previewer struct {
	client *minio.Client
	bucket string
	ttl    time.Duration

	ensureOnce sync.Once
	ensureErr  error
}

func NewS3Previewer(client *minio.Client, bucket string, ttl time.Duration) *S3Previewer {
	if ttl <= 0 {
		ttl = defaultPreviewTTL
	}
	return &S3Previewer{
		client: client,
		bucket: strings.TrimSpace(bucket),
		ttl:    ttl,
	}
}

func (s *S3Previewer) EnsureBucket(ctx context.Context) error {
	if s.client == nil {
		return fmt.Errorf("s3 client is nil")
	}
	if s.bucket == "" {
		return fmt.Errorf("s3 preview bucket is empty")
	}

	s.ensureOnce.Do(func() {
		exists, err := s.client.BucketExists(ctx, s.bucket)
		if err != nil {
			s.ensureErr = err
			return
		}
		if exists {
			return
		}
		s.ensureErr = s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{})
	})

	if s.ensureErr != nil {
		return fmt.Errorf("ensure s3 bucket %q: %w", s.bucket, s.ensureErr)
	}
	return nil
}

func (s *S3Previewer) Allocate(ctx context.Context, ref model.LiveMedia) (model.PreviewHandle, error) {
	if err := s.EnsureBucket(ctx); err != nil {
		return model.PreviewHandle{}, err
	}
	if ref.Source == nil {
		return model.PreviewHandle{}, ErrValidation
	}

	body, err := ref.Source.Open()
	if err != nil {
		return model.PreviewHandle{}, fmt.Errorf("open media source: %w", err)
	}
	defer body.Close()

	key := previewObjectKey(ref)
	_, err = s.client.PutObject(ctx, s.bucket, key, body, ref.Size, minio.PutObjectOptions{
		ContentType: ref.ContentType,
	})
	if err != nil {
		return model.PreviewHandle{}, fmt.Errorf("put preview object: %w", err)
	}

	presigned, err := s.client.PresignedGetObject(ctx, s.bucket, key, s.ttl, url.Values{})
	if err != nil {
		_ = s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{})
		return model.PreviewHandle{}, fmt.Errorf("presign preview object: %w", err)
	}

	return model.PreviewHandle{ID: key, RefID: ref.ID, URI: presigned.String()}, nil
}

func (s *S3Previewer) Revoke(ctx context.Context, handle model.PreviewHandle) error {
	if s.client == nil || handle.ID == "" {
		return nil
	}
	if err := s.client.RemoveObject(ctx, s.bucket, handle.ID, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("delete preview object: %w", err)
	}
	return nil
}

func previewObjectKey(ref model.LiveMedia) string {
	ext := strings.ToLower(path.Ext(ref.Name))
	if ext == "" {
		ext = ".bin"
	}
	stamp := time.Now().UTC().Format("20060102T150405")
	return fmt.Sprintf("previews/%s/%s_%s%s", ref.ID, stamp, uuid.NewString()[:8], ext)
}
