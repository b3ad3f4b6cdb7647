package service

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"sheet_lms_backend/internal/config"
	"sheet_lms_backend/internal/util"
	"sheet_lms_backend/pkg/logger"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

// ObjectStore 存放课程封面等二进制对象，key 使用 "/" 分隔
type ObjectStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Remove(ctx context.Context, key string) error
	URL(key string) string
}

// localObjects 写入本地目录，由 /uploads 静态路由对外提供
type localObjects struct {
	root      string
	publicURL string
}

func (l *localObjects) path(key string) string {
	return filepath.Join(l.root, filepath.FromSlash(key))
}

func (l *localObjects) Put(ctx context.Context, key string, r io.Reader, _ int64, _ string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	dst := l.path(key)
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return err
	}

	// 先写临时文件再改名，读者不会看到写了一半的图片
	tmp, err := os.CreateTemp(filepath.Dir(dst), ".upload-*")
	if err != nil {
		return err
	}
	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), dst)
}

func (l *localObjects) Remove(_ context.Context, key string) error {
	err := os.Remove(l.path(key))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

func (l *localObjects) URL(key string) string {
	base := strings.TrimRight(l.publicURL, "/")
	if base == "" {
		base = "/uploads"
	}
	return base + "/" + key
}

type minioObjects struct {
	client    *minio.Client
	bucket    string
	publicURL string
}

func newMinioObjects(ctx context.Context, cfg *config.StorageConfig) (*minioObjects, error) {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessID, cfg.MinioSecret, ""),
		Secure: cfg.MinioUseSSL,
	})
	if err != nil {
		return nil, err
	}

	exists, err := client.BucketExists(ctx, cfg.MinioBucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", cfg.MinioBucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.MinioBucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket %s: %w", cfg.MinioBucket, err)
		}
		logger.Log.Info("Created storage bucket", zap.String("bucket", cfg.MinioBucket))
	}
	return &minioObjects{client: client, bucket: cfg.MinioBucket, publicURL: cfg.PublicURL}, nil
}

func (m *minioObjects) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	_, err := m.client.PutObject(ctx, m.bucket, key, r, size, minio.PutObjectOptions{
		ContentType:  contentType,
		CacheControl: "public, max-age=86400",
	})
	return err
}

func (m *minioObjects) Remove(ctx context.Context, key string) error {
	return m.client.RemoveObject(ctx, m.bucket, key, minio.RemoveObjectOptions{})
}

func (m *minioObjects) URL(key string) string {
	base := strings.TrimRight(m.publicURL, "/")
	if base == "" || base == "/uploads" {
		return "/" + m.bucket + "/" + key
	}
	return base + "/" + m.bucket + "/" + key
}

// StorageService 课程封面存储，后端按配置选择 MinIO 或本地目录
type StorageService struct {
	objects ObjectStore
	backend string
}

func NewStorageService(cfg *config.Config) *StorageService {
	if cfg.Storage.Type == util.StorageMinio {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		objects, err := newMinioObjects(ctx, &cfg.Storage)
		if err == nil {
			return &StorageService{objects: objects, backend: util.StorageMinio}
		}
		logger.Log.Warn("MinIO unavailable, falling back to local storage", zap.Error(err))
	}
	return &StorageService{
		objects: &localObjects{root: cfg.Storage.LocalPath, publicURL: cfg.Storage.PublicURL},
		backend: util.StorageLocal,
	}
}

// NewStorageServiceWith 使用现成的对象存储，测试中注入
func NewStorageServiceWith(objects ObjectStore, backend string) *StorageService {
	return &StorageService{objects: objects, backend: backend}
}

func (s *StorageService) Backend() string {
	return s.backend
}

// ThumbnailKey 封面对象名：thumbnails/<课程ID>_<unix秒><扩展名>
func ThumbnailKey(courseID, ext string, at time.Time) string {
	return path.Join("thumbnails", fmt.Sprintf("%s_%d%s", courseID, at.Unix(), strings.ToLower(ext)))
}

// SaveThumbnail 写入封面，返回对象名与公开地址
func (s *StorageService) SaveThumbnail(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error) {
	if err := s.objects.Put(ctx, key, r, size, contentType); err != nil {
		return "", err
	}
	return s.objects.URL(key), nil
}

// Discard 删除对象，失败只记录日志
func (s *StorageService) Discard(ctx context.Context, key string) {
	if err := s.objects.Remove(ctx, key); err != nil {
		logger.Log.Warn("Failed to remove stored object",
			zap.String("backend", s.backend),
			zap.String("key", key),
			zap.Error(err),
		)
	}
}
