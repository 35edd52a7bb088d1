package reportstore

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/yanqian/carbonlens/internal/domain/footprint"
)

// R2Store archives reports in Cloudflare R2 (or any S3-compatible bucket).
type R2Store struct {
	client *minio.Client
	bucket string
	logger *slog.Logger

	bucketOnce sync.Once
	bucketErr  error
}

// NewR2Store constructs the archive adapter.
func NewR2Store(endpoint, accessKey, secretKey, bucket, region string, logger *slog.Logger) (*R2Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if strings.TrimSpace(bucket) == "" {
		return nil, fmt.Errorf("archive bucket cannot be empty")
	}
	client, err := minio.New(sanitizeEndpoint(endpoint), &minio.Options{
		Creds:        credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure:       !strings.HasPrefix(strings.ToLower(strings.TrimSpace(endpoint)), "http://"),
		Region:       region,
		BucketLookup: minio.BucketLookupPath,
	})
	if err != nil {
		return nil, fmt.Errorf("init r2 client: %w", err)
	}
	return &R2Store{client: client, bucket: bucket, logger: logger.With("component", "reportstore.r2")}, nil
}

// ensureBucket runs once per process. A failed attempt is not retried.
func (s *R2Store) ensureBucket(ctx context.Context) error {
	s.bucketOnce.Do(func() {
		exists, err := s.client.BucketExists(ctx, s.bucket)
		if err == nil && exists {
			return
		}
		err = s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{})
		if err != nil && minio.ToErrorResponse(err).Code != "BucketAlreadyOwnedByYou" {
			s.bucketErr = err
			return
		}
		s.logger.Info("report bucket ready", "bucket", s.bucket)
	})
	return s.bucketErr
}

// Put uploads a report.
func (s *R2Store) Put(ctx context.Context, key string, data []byte, contentType string) (footprint.StoredReport, error) {
	if err := s.ensureBucket(ctx); err != nil {
		return footprint.StoredReport{}, err
	}
	info, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType:      contentType,
		DisableMultipart: true,
	})
	if err != nil {
		return footprint.StoredReport{}, err
	}
	return footprint.StoredReport{Key: key, Size: info.Size, ETag: info.ETag}, nil
}

var _ footprint.ReportArchive = (*R2Store)(nil)

// sanitizeEndpoint removes schemes and paths to satisfy minio.New expectations.
func sanitizeEndpoint(raw string) string {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(strings.TrimPrefix(raw, "https://"), "http://")
	if host, _, ok := strings.Cut(raw, "/"); ok {
		raw = host
	}
	return raw
}
