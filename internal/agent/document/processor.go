package document

import (
	"context"
	"io"

	"github.com/feichai0017/document-analyzer/internal/models"
)

// Processor 文档文本提取器接口
type Processor interface {
	// CanProcess 检查是否可以处理指定MIME类型的文件
	CanProcess(mimeType string) bool

	// Extract 提取纯文本; 没有可用文本时返回 models.ErrEmptyContent
	Extract(ctx context.Context, reader io.Reader) (*models.ExtractedText, error)

	// ExtractMetadata 提取文档元数据
	ExtractMetadata(ctx context.Context, reader io.Reader) (models.DocumentMetadata, error)

	// Close 清理资源
	Close() error
}

// TextRecognizer recovers text from a document without a usable text layer.
type TextRecognizer interface {
	Recognize(ctx context.Context, content []byte) (string, error)
}
