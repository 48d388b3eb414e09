package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/feichai0017/document-analyzer/pkg/logger"
	"github.com/feichai0017/document-analyzer/pkg/storage/minio"
	"github.com/feichai0017/document-analyzer/pkg/storage/s3"
)

// StorageType 定义存储类型
type StorageType string

const (
	StorageTypeS3    StorageType = "s3"
	StorageTypeMinio StorageType = "minio"
)

// Storage 暂存上传文件和异步分析结果
type Storage interface {
	// Store 存储对象, 返回对象 key
	Store(ctx context.Context, reader io.Reader, key string) (string, error)
	// Get 获取对象
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	// Delete 删除对象
	Delete(ctx context.Context, key string) error
	// CleanupBefore 删除早于 threshold 的对象
	CleanupBefore(ctx context.Context, threshold time.Time) error
}

// NewStorage 创建存储实例的工厂方法
func NewStorage(ctx context.Context, storageType StorageType, log logger.Logger) (Storage, error) {
	switch storageType {
	case StorageTypeS3:
		return s3.GetClient(ctx, log)
	case StorageTypeMinio:
		return minio.GetClient(ctx, log)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", storageType)
	}
}

// UploadKey is where the bytes of an async upload are staged.
func UploadKey(taskID, filename string) string {
	return fmt.Sprintf("uploads/%s/%s", taskID, filename)
}

// ResultKey is where the processed document of a task is stored.
func ResultKey(taskID string) string {
	return fmt.Sprintf("result:%s", taskID)
}
