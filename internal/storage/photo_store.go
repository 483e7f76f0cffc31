package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/ArbeitTechnology/cid-visitor-backend/internal/config"
)

// ErrUnsupportedPhotoType is returned for uploads that are not JPEG or PNG.
var ErrUnsupportedPhotoType = errors.New("unsupported photo content type")

// PhotoStore keeps visitor photos in an S3-compatible bucket; visit records
// hold only the object key.
type PhotoStore struct {
	client *minio.Client
	cfg    config.StorageConfig
}

func NewPhotoStore(cfg config.StorageConfig) (*PhotoStore, error) {
	endpoint := cfg.Endpoint
	useSSL := cfg.UseSSL

	if strings.HasPrefix(endpoint, "http") {
		u, err := url.Parse(endpoint)
		if err != nil {
			return nil, fmt.Errorf("parse endpoint: %w", err)
		}
		endpoint = u.Host
		useSSL = u.Scheme == "https"
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: useSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("init minio: %w", err)
	}

	return &PhotoStore{
		client: client,
		cfg:    cfg,
	}, nil
}

func (s *PhotoStore) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.cfg.BucketPhotos)
	if err != nil {
		return fmt.Errorf("bucket exists %s: %w", s.cfg.BucketPhotos, err)
	}
	if !exists {
		if err := s.client.MakeBucket(ctx, s.cfg.BucketPhotos, minio.MakeBucketOptions{Region: s.cfg.Region}); err != nil {
			return fmt.Errorf("create bucket %s: %w", s.cfg.BucketPhotos, err)
		}
	}
	return nil
}

// Put stores a photo under key and returns the key back. Only JPEG and PNG
// are accepted.
func (s *PhotoStore) Put(ctx context.Context, key string, contentType string, r io.Reader, size int64) (string, error) {
	switch contentType {
	case "image/jpeg", "image/png":
	default:
		return "", ErrUnsupportedPhotoType
	}

	_, err := s.client.PutObject(ctx, s.cfg.BucketPhotos, key, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("put photo %s: %w", key, err)
	}
	return key, nil
}

// Get streams a stored photo.
func (s *PhotoStore) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	obj, err := s.client.GetObject(ctx, s.cfg.BucketPhotos, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get photo %s: %w", key, err)
	}
	return obj, nil
}
