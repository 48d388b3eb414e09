package document

import (
	"context"
	"errors"
	"mime/multipart"

	"github.com/feichai0017/document-analyzer/internal/models"
	"github.com/feichai0017/document-analyzer/pkg/converters"
	"github.com/feichai0017/document-analyzer/pkg/queue"
)

var (
	ErrAsyncDisabled    = errors.New("async processing is not enabled")
	ErrTaskNotCompleted = errors.New("task is not completed")
)

// Pipeline 会话式分析流程: 上传, 提取, 分析
type Pipeline interface {
	CreateSession() models.SessionView
	GetSession(sessionID string) (models.SessionView, error)
	ResetSession(sessionID string) (models.SessionView, error)
	DeleteSession(sessionID string) error
	GetResult(sessionID string) (*models.AnalysisResult, error)
	AcceptFile(ctx context.Context, sessionID string, header *multipart.FileHeader, source string) (models.SessionView, error)
	Analyze(ctx context.Context, sessionID string) (models.SessionView, error)
	AnalyzeText(ctx context.Context, sessionID string, text string) (models.SessionView, error)
}

// DocumentProcessor 异步分析任务
type DocumentProcessor interface {
	ProcessFile(ctx context.Context, header *multipart.FileHeader) (*models.ProcessingTask, error)
	ProcessBatch(ctx context.Context, files []*multipart.FileHeader) ([]*models.ProcessingTask, error)
	GetProcessingStatus(ctx context.Context, taskID string) (*models.ProcessingTask, error)
	HandleDocument(ctx context.Context, task *queue.Task) error
	GetProcessedDocument(ctx context.Context, taskID string) (*converters.ProcessedDocument, error)
	CancelTask(ctx context.Context, taskID string) error
	CleanupTasks(ctx context.Context) error
}

// Extractor turns an accepted file into plain text.
type Extractor interface {
	Extract(ctx context.Context, file *models.UploadedFile) (*models.ExtractedText, error)
}
