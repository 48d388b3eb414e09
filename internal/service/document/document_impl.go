package document

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/feichai0017/document-analyzer/config"
	"github.com/feichai0017/document-analyzer/internal/agent"
	"github.com/feichai0017/document-analyzer/internal/agent/analysis"
	"github.com/feichai0017/document-analyzer/internal/agent/document"
	"github.com/feichai0017/document-analyzer/internal/agent/document/ocr"
	"github.com/feichai0017/document-analyzer/internal/models"
	"github.com/feichai0017/document-analyzer/internal/session"
	"github.com/feichai0017/document-analyzer/internal/utils/validator"
	"github.com/feichai0017/document-analyzer/pkg/converters"
	"github.com/feichai0017/document-analyzer/pkg/logger"
	"github.com/feichai0017/document-analyzer/pkg/queue"
	"github.com/feichai0017/document-analyzer/pkg/storage"
)

type DocumentService struct {
	sessions  *session.Manager
	extractor Extractor
	analyzer  analysis.Analyzer
	validator *validator.DocumentValidator
	converter *converters.JSONConverter
	queue     queue.Queue
	storage   storage.Storage
	logger    logger.Logger
	ctxLogger logger.ContextLogger
	config    *ServiceConfig
}

type ServiceConfig struct {
	MaxFileSize     int64
	QueuePriority   int
	RetentionPeriod time.Duration
	Analysis        analysis.Options
}

func defaultServiceConfig() *ServiceConfig {
	return &ServiceConfig{
		MaxFileSize:     50 * 1024 * 1024, // 50MB
		QueuePriority:   2,
		RetentionPeriod: 24 * time.Hour,
		Analysis: analysis.Options{
			MaxInputChars:    analysis.DefaultMaxInputChars,
			TruncationMarker: analysis.DefaultTruncationMarker,
		},
	}
}

type Option func(*DocumentService)

// WithAsync enables the queued processing path.
func WithAsync(q queue.Queue, store storage.Storage) Option {
	return func(s *DocumentService) {
		s.queue = q
		s.storage = store
	}
}

func NewService(
	sessions *session.Manager,
	extractor Extractor,
	analyzer analysis.Analyzer,
	log logger.Logger,
	cfg *ServiceConfig,
	opts ...Option,
) *DocumentService {
	if cfg == nil {
		cfg = defaultServiceConfig()
	}

	s := &DocumentService{
		sessions:  sessions,
		extractor: extractor,
		analyzer:  analyzer,
		validator: validator.NewDocumentValidator(log, &validator.ValidatorConfig{
			MaxFileSize: cfg.MaxFileSize,
		}),
		converter: converters.NewJSONConverter(),
		logger:    log,
		ctxLogger: logger.NewContextLogger(log),
		config:    cfg,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetService 根据配置组装完整的服务
func GetService(ctx context.Context, cfg *config.Config, log logger.Logger) (*DocumentService, error) {
	// 初始化分析器
	analyzer, err := analysis.New(cfg.Analyzer, config.GetProviderConfig(), log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize analyzer: %w", err)
	}

	// 扫描件 OCR 兜底
	var recognizer document.TextRecognizer
	if cfg.Extraction.OCRFallback {
		r, err := ocr.NewTextractRecognizer(ctx, config.GetTextractConfig(), log)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize textract: %w", err)
		}
		recognizer = r
	}

	// 初始化处理器工厂
	factory := agent.NewProcessorFactory(log, agent.FactoryOptions{
		PDFWorkers: cfg.Extraction.PDFWorkers,
		OCR:        recognizer,
	})

	sessions, err := session.NewManager(cfg.Sessions.MaxSessions, log)
	if err != nil {
		return nil, err
	}

	svcCfg := &ServiceConfig{
		MaxFileSize:     cfg.Upload.MaxFileSize,
		QueuePriority:   2,
		RetentionPeriod: cfg.Async.Retention,
		Analysis:        analysis.OptionsFromConfig(cfg.Analyzer),
	}

	var opts []Option
	if cfg.Async.Enabled {
		// 初始化存储
		store, err := storage.NewStorage(ctx, storage.StorageType(cfg.Async.Storage), log)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize storage: %w", err)
		}

		// 初始化队列
		q, err := queue.GetQueue()
		if err != nil {
			return nil, fmt.Errorf("failed to initialize queue: %w", err)
		}
		opts = append(opts, WithAsync(q, store))
	}

	log.Info("Document service initialized",
		logger.String("analyzer", analyzer.Name()),
		logger.Bool("ocrFallback", recognizer != nil),
		logger.Bool("async", cfg.Async.Enabled),
	)

	return NewService(sessions, factory, analyzer, log, svcCfg, opts...), nil
}

// AnalyzerName 当前使用的分析服务
func (s *DocumentService) AnalyzerName() string {
	return s.analyzer.Name()
}

func (s *DocumentService) AsyncEnabled() bool {
	return s.queue != nil && s.storage != nil
}

// ProcessFile 校验文件, 暂存后加入分析队列
func (s *DocumentService) ProcessFile(ctx context.Context, header *multipart.FileHeader) (*models.ProcessingTask, error) {
	if !s.AsyncEnabled() {
		return nil, ErrAsyncDisabled
	}

	s.logger.Info("Starting file processing",
		logger.String("filename", header.Filename),
		logger.Int64("size", header.Size),
	)

	// 验证文件
	file, err := s.validator.ValidateFile(header)
	if err != nil {
		s.logger.Warn("File validation failed",
			logger.String("filename", header.Filename),
			logger.Error(err),
		)
		return nil, err
	}

	taskID := uuid.New().String()
	now := time.Now()

	task := &models.ProcessingTask{
		ID:        taskID,
		Status:    models.StatusPending,
		Type:      queue.TaskTypeAnalysisProcess,
		Priority:  s.config.QueuePriority,
		CreatedAt: now,
		UpdatedAt: now,
		Metadata: map[string]string{
			"filename": file.Name,
			"size":     fmt.Sprintf("%d", file.Size),
			"mimeType": file.MimeType,
			"hash":     file.Hash,
		},
	}

	// 暂存文件
	fileKey, err := s.storage.Store(ctx, bytes.NewReader(file.Content), storage.UploadKey(taskID, file.Name))
	if err != nil {
		return nil, fmt.Errorf("failed to store file: %w", err)
	}

	queueTask := &queue.Task{
		ID:       taskID,
		Type:     task.Type,
		Priority: task.Priority,
		Payload: queue.TaskPayload{
			FileKey:  fileKey,
			FileName: file.Name,
			MimeType: file.MimeType,
			Size:     file.Size,
		},
		Metadata:  task.Metadata,
		CreatedAt: task.CreatedAt,
	}

	// 保存初始状态
	if err := s.queue.SaveFinalStatus(ctx, &queue.TaskStatus{
		TaskID:    taskID,
		Status:    string(models.StatusPending),
		StartedAt: now,
	}); err != nil {
		s.logger.Error("Failed to save initial status",
			logger.String("taskId", taskID),
			logger.Error(err),
		)
	}

	// 加入处理队列
	if err := s.queue.Enqueue(ctx, queueTask); err != nil {
		s.logger.Error("Failed to enqueue task",
			logger.String("taskId", taskID),
			logger.Error(err),
		)
		if delErr := s.storage.Delete(ctx, fileKey); delErr != nil {
			s.logger.Warn("Failed to remove staged file", logger.String("key", fileKey), logger.Error(delErr))
		}
		return nil, fmt.Errorf("failed to enqueue task: %w", err)
	}

	s.logger.Info("File processing task created",
		logger.String("taskId", taskID),
		logger.String("filename", file.Name),
	)

	return task, nil
}

// ProcessBatch 批量处理文件, 结果顺序与输入一致
func (s *DocumentService) ProcessBatch(ctx context.Context, files []*multipart.FileHeader) ([]*models.ProcessingTask, error) {
	if !s.AsyncEnabled() {
		return nil, ErrAsyncDisabled
	}

	tasks := make([]*models.ProcessingTask, len(files))

	// 使用 errgroup 来管理并发和错误
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)

	for i, header := range files {
		i, header := i, header
		g.Go(func() error {
			task, err := s.ProcessFile(gctx, header)
			if err != nil {
				return fmt.Errorf("failed to process file %s: %w", header.Filename, err)
			}
			tasks[i] = task
			return nil
		})
	}

	err := g.Wait()

	created := make([]*models.ProcessingTask, 0, len(tasks))
	for _, t := range tasks {
		if t != nil {
			created = append(created, t)
		}
	}
	// 返回已创建的任务和错误
	return created, err
}

// HandleDocument 执行一个排队的分析任务
func (s *DocumentService) HandleDocument(ctx context.Context, task *queue.Task) error {
	if task == nil || task.ID == "" || task.Payload.FileKey == "" {
		return fmt.Errorf("invalid task: missing required data")
	}
	if !s.AsyncEnabled() {
		return ErrAsyncDisabled
	}

	log := s.logger.With(logger.String("taskId", task.ID))
	log.Info("Processing document", logger.String("filename", task.Payload.FileName))

	start := time.Now()
	s.saveStatus(ctx, &queue.TaskStatus{
		TaskID:    task.ID,
		Status:    string(models.StatusRunning),
		Progress:  0.1,
		StartedAt: start,
	})

	doc, err := s.processTask(ctx, task, start)
	if err != nil {
		log.Warn("Document processing failed", logger.Error(err))
		status := &queue.TaskStatus{
			TaskID:     task.ID,
			Status:     string(models.StatusFailed),
			Error:      models.UserMessage(err),
			StartedAt:  start,
			FinishedAt: time.Now(),
		}
		if errors.Is(err, context.Canceled) {
			status.Status = string(models.StatusCancelled)
			status.Error = ""
		}
		// the request context may be gone; the status write must still land
		s.saveStatus(context.WithoutCancel(ctx), status)
		return err
	}

	log.Info("Document processing completed",
		logger.Int("pages", doc.Metadata.PageCount),
		logger.Bool("truncated", doc.Metadata.Truncated),
		logger.Int64("processingMs", doc.Metadata.ProcessingMs),
	)

	// 在处理完成后，将最终状态保存到 Redis
	s.saveStatus(ctx, &queue.TaskStatus{
		TaskID:     task.ID,
		Status:     string(models.StatusCompleted),
		Progress:   1.0,
		StartedAt:  start,
		FinishedAt: time.Now(),
	})
	return nil
}

func (s *DocumentService) processTask(ctx context.Context, task *queue.Task, start time.Time) (*converters.ProcessedDocument, error) {
	// 获取文件
	reader, err := s.storage.Get(ctx, task.Payload.FileKey)
	if err != nil {
		return nil, fmt.Errorf("failed to get file: %w", err)
	}
	defer reader.Close()

	content, err := io.ReadAll(io.LimitReader(reader, s.config.MaxFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if int64(len(content)) > s.config.MaxFileSize {
		return nil, models.ErrFileTooLarge
	}

	file := &models.UploadedFile{
		Name:       task.Payload.FileName,
		Size:       int64(len(content)),
		MimeType:   task.Payload.MimeType,
		Content:    content,
		Hash:       task.Metadata["hash"],
		UploadedAt: task.CreatedAt,
	}

	extracted, err := s.extractor.Extract(ctx, file)
	if err != nil {
		return nil, err
	}

	result, err := s.analyzer.Analyze(ctx, extracted.Text)
	if err != nil {
		return nil, err
	}

	_, truncated := analysis.Truncate(extracted.Text, s.config.Analysis.MaxInputChars, s.config.Analysis.TruncationMarker)

	doc, err := s.converter.Convert(&converters.AnalysisOutput{
		File:      file,
		Extracted: extracted,
		Result:    result,
		Truncated: truncated,
		Duration:  time.Since(start),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to convert document: %w", err)
	}
	doc.TaskID = task.ID

	// 序列化并存储结果
	data, err := s.converter.Marshal(doc)
	if err != nil {
		return nil, err
	}
	if _, err := s.storage.Store(ctx, bytes.NewReader(data), storage.ResultKey(task.ID)); err != nil {
		return nil, fmt.Errorf("failed to store result: %w", err)
	}

	return doc, nil
}

func (s *DocumentService) saveStatus(ctx context.Context, status *queue.TaskStatus) {
	if err := s.queue.SaveFinalStatus(ctx, status); err != nil {
		s.logger.Error("Failed to save task status",
			logger.String("taskId", status.TaskID),
			logger.String("status", status.Status),
			logger.Error(err),
		)
	}
}

// GetProcessingStatus 获取处理状态
func (s *DocumentService) GetProcessingStatus(ctx context.Context, taskID string) (*models.ProcessingTask, error) {
	if !s.AsyncEnabled() {
		return nil, ErrAsyncDisabled
	}

	status, err := s.queue.GetTaskStatus(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to get task status: %w", err)
	}

	// 确保状态正确映射
	var taskStatus models.ProcessingStatus
	switch status.Status {
	case "running", "active":
		taskStatus = models.StatusRunning
	case "completed":
		taskStatus = models.StatusCompleted
	case "failed":
		taskStatus = models.StatusFailed
	case "cancelled":
		taskStatus = models.StatusCancelled
	default:
		taskStatus = models.StatusPending
	}

	return &models.ProcessingTask{
		ID:        status.TaskID,
		Status:    taskStatus,
		Type:      queue.TaskTypeAnalysisProcess,
		Priority:  s.config.QueuePriority,
		Progress:  status.Progress,
		Error:     status.Error,
		Metadata:  make(map[string]string),
		CreatedAt: status.StartedAt,
		UpdatedAt: status.FinishedAt,
	}, nil
}

// GetProcessedDocument 获取处理结果
func (s *DocumentService) GetProcessedDocument(ctx context.Context, taskID string) (*converters.ProcessedDocument, error) {
	// 检查任务状态
	status, err := s.GetProcessingStatus(ctx, taskID)
	if err != nil {
		return nil, err
	}

	if status.Status != models.StatusCompleted {
		return nil, fmt.Errorf("%w: %s", ErrTaskNotCompleted, status.Status)
	}

	reader, err := s.storage.Get(ctx, storage.ResultKey(taskID))
	if err != nil {
		return nil, fmt.Errorf("failed to get result: %w", err)
	}
	defer reader.Close()

	var result converters.ProcessedDocument
	if err := json.NewDecoder(reader).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode result: %w", err)
	}

	return &result, nil
}

// CancelTask 取消任务
func (s *DocumentService) CancelTask(ctx context.Context, taskID string) error {
	if !s.AsyncEnabled() {
		return ErrAsyncDisabled
	}

	if err := s.queue.CancelTask(ctx, taskID); err != nil {
		return fmt.Errorf("failed to cancel task: %w", err)
	}

	s.logger.Info("Task cancelled",
		logger.String("taskId", taskID),
	)

	return nil
}

// CleanupTasks 清理过期的暂存文件和结果
func (s *DocumentService) CleanupTasks(ctx context.Context) error {
	if !s.AsyncEnabled() {
		return ErrAsyncDisabled
	}

	threshold := time.Now().Add(-s.config.RetentionPeriod)

	if err := s.storage.CleanupBefore(ctx, threshold); err != nil {
		return fmt.Errorf("failed to cleanup storage: %w", err)
	}

	s.logger.Info("Completed tasks cleanup",
		logger.Time("threshold", threshold),
	)

	return nil
}

// Close 释放分析器和队列连接
func (s *DocumentService) Close() error {
	var errs []error
	if closer, ok := s.analyzer.(io.Closer); ok {
		errs = append(errs, closer.Close())
	}
	if closer, ok := s.extractor.(io.Closer); ok {
		errs = append(errs, closer.Close())
	}
	if closer, ok := s.queue.(io.Closer); ok {
		errs = append(errs, closer.Close())
	}
	return errors.Join(errs...)
}
