package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/DJCodeOne/freshwax-sub002/config"
	"github.com/DJCodeOne/freshwax-sub002/logger"
)

// ObjectInfo describes one stored object.
type ObjectInfo struct {
	Key          string
	Size         int64
	LastModified time.Time
	ContentType  string
	ETag         string
}

// Store wraps the MinIO client with the bucket and public-URL conventions the
// pipeline uses. All submission inputs and rendition outputs live in a single
// bucket; media URLs are the configured CDN domain plus the storage key.
type Store struct {
	client    *minio.Client
	bucket    string
	cdnDomain string
}

// NewStore creates a Store and ensures the bucket exists.
func NewStore(cfg *config.Config) (*Store, error) {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure: cfg.MinioUseSSL,
		Region: cfg.MinioRegion,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, cfg.MinioBucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket %s: %w", cfg.MinioBucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.MinioBucket, minio.MakeBucketOptions{Region: cfg.MinioRegion}); err != nil {
			return nil, fmt.Errorf("failed to create bucket %s: %w", cfg.MinioBucket, err)
		}
		logger.Info("Created storage bucket", logger.String("bucket", cfg.MinioBucket))
	}

	return &Store{
		client:    client,
		bucket:    cfg.MinioBucket,
		cdnDomain: strings.TrimRight(cfg.CDNDomain, "/"),
	}, nil
}

// PublicURL builds the public media URL for a storage key.
func (s *Store) PublicURL(key string) string {
	return s.cdnDomain + "/" + strings.TrimLeft(key, "/")
}

// ListPrefix returns every object under the given key prefix, sorted by key.
func (s *Store) ListPrefix(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	objectCh := s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	})

	var objects []ObjectInfo
	for object := range objectCh {
		if object.Err != nil {
			return nil, fmt.Errorf("failed to list objects under %s: %w", prefix, object.Err)
		}
		objects = append(objects, ObjectInfo{
			Key:          object.Key,
			Size:         object.Size,
			LastModified: object.LastModified,
			ContentType:  object.ContentType,
			ETag:         object.ETag,
		})
	}

	sort.Slice(objects, func(i, j int) bool { return objects[i].Key < objects[j].Key })
	return objects, nil
}

// ListFolders returns the distinct first path segments directly under prefix,
// sorted. Used to enumerate pending submission ids.
func (s *Store) ListFolders(ctx context.Context, prefix string) ([]string, error) {
	objects, err := s.ListPrefix(ctx, prefix)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var folders []string
	for _, obj := range objects {
		rest := strings.TrimPrefix(obj.Key, prefix)
		parts := strings.SplitN(rest, "/", 2)
		if len(parts) < 2 || parts[0] == "" {
			continue
		}
		if !seen[parts[0]] {
			seen[parts[0]] = true
			folders = append(folders, parts[0])
		}
	}
	sort.Strings(folders)
	return folders, nil
}

// Download reads an object into memory.
func (s *Store) Download(ctx context.Context, key string) ([]byte, error) {
	object, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get object %s: %w", key, err)
	}
	defer object.Close()

	data, err := io.ReadAll(object)
	if err != nil {
		return nil, fmt.Errorf("failed to read object %s: %w", key, err)
	}
	return data, nil
}

// DownloadToFile streams an object to a local path. Transcoding inputs can be
// large, so they never pass through memory.
func (s *Store) DownloadToFile(ctx context.Context, key, path string) error {
	object, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return fmt.Errorf("failed to get object %s: %w", key, err)
	}
	defer object.Close()

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file %s: %w", path, err)
	}
	defer f.Close()

	if _, err := io.Copy(f, object); err != nil {
		return fmt.Errorf("failed to download %s to %s: %w", key, path, err)
	}
	return nil
}

// UploadFile uploads a local file to the given key.
func (s *Store) UploadFile(ctx context.Context, key, path, contentType string, cacheControl string) error {
	opts := minio.PutObjectOptions{ContentType: contentType}
	if cacheControl != "" {
		opts.CacheControl = cacheControl
	}

	if _, err := s.client.FPutObject(ctx, s.bucket, key, path, opts); err != nil {
		return fmt.Errorf("failed to upload %s to %s: %w", path, key, err)
	}

	logger.Debug("Uploaded object", logger.String("key", key), logger.String("contentType", contentType))
	return nil
}

// DeletePrefix removes every object under the given key prefix. Returns the
// number of objects removed.
func (s *Store) DeletePrefix(ctx context.Context, prefix string) (int, error) {
	objects, err := s.ListPrefix(ctx, prefix)
	if err != nil {
		return 0, err
	}
	if len(objects) == 0 {
		return 0, nil
	}

	objectsCh := make(chan minio.ObjectInfo, len(objects))
	go func() {
		defer close(objectsCh)
		for _, obj := range objects {
			objectsCh <- minio.ObjectInfo{Key: obj.Key}
		}
	}()

	errorsCh := s.client.RemoveObjects(ctx, s.bucket, objectsCh, minio.RemoveObjectsOptions{})
	for err := range errorsCh {
		if err.Err != nil {
			return 0, fmt.Errorf("failed to remove object %s: %w", err.ObjectName, err.Err)
		}
	}

	return len(objects), nil
}
