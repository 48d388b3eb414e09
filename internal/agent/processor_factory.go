package agent

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/feichai0017/document-analyzer/internal/agent/document"
	"github.com/feichai0017/document-analyzer/internal/agent/document/pdf"
	"github.com/feichai0017/document-analyzer/internal/agent/document/text"
	"github.com/feichai0017/document-analyzer/internal/models"
	"github.com/feichai0017/document-analyzer/pkg/logger"
)

// FactoryOptions 处理器工厂配置
type FactoryOptions struct {
	PDFWorkers int
	// OCR 为空时不启用扫描件识别
	OCR document.TextRecognizer
}

type ProcessorFactory struct {
	processors map[string]document.Processor
	logger     logger.Logger
}

func NewProcessorFactory(log logger.Logger, opts FactoryOptions) *ProcessorFactory {
	factory := &ProcessorFactory{
		processors: make(map[string]document.Processor),
		logger:     log.Named("extraction"),
	}

	pdfOpts := []pdf.Option{pdf.WithWorkers(opts.PDFWorkers)}
	if opts.OCR != nil {
		pdfOpts = append(pdfOpts, pdf.WithOCRFallback(opts.OCR))
	}

	// 初始化 PDF 处理器
	factory.processors[models.MimeTypePDF] = pdf.NewProcessor(log, pdfOpts...)
	// 初始化纯文本处理器
	factory.processors[models.MimeTypeText] = text.NewProcessor(log)

	return factory
}

// GetProcessor 按 MIME 类型精确匹配处理器
func (f *ProcessorFactory) GetProcessor(mimeType string) (document.Processor, error) {
	processor, ok := f.processors[mimeType]
	if !ok {
		f.logger.Warn("No processor found",
			logger.String("mimeType", mimeType),
		)
		return nil, fmt.Errorf("%w: %s", models.ErrUnsupportedFileType, mimeType)
	}
	return processor, nil
}

// Extract 提取已接受文件的纯文本
func (f *ProcessorFactory) Extract(ctx context.Context, file *models.UploadedFile) (*models.ExtractedText, error) {
	if file == nil {
		return nil, models.ErrNoFile
	}

	processor, err := f.GetProcessor(file.MimeType)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	extracted, err := processor.Extract(ctx, bytes.NewReader(file.Content))
	if err != nil {
		f.logger.Warn("Text extraction failed",
			logger.String("file", file.Name),
			logger.String("mimeType", file.MimeType),
			logger.Error(err),
		)
		return nil, err
	}

	f.logger.Info("Text extracted",
		logger.String("file", file.Name),
		logger.String("source", extracted.Source),
		logger.Int("pages", extracted.PageCount),
		logger.Int("bytes", len(extracted.Text)),
		logger.Duration("duration", time.Since(start)),
	)
	return extracted, nil
}

func (f *ProcessorFactory) Close() error {
	for mimeType, p := range f.processors {
		if err := p.Close(); err != nil {
			return fmt.Errorf("failed to close %s processor: %w", mimeType, err)
		}
	}
	return nil
}
