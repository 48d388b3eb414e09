package pdf

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/ledongthuc/pdf"
	"golang.org/x/sync/errgroup"

	"github.com/feichai0017/document-analyzer/internal/agent/document"
	"github.com/feichai0017/document-analyzer/internal/models"
	"github.com/feichai0017/document-analyzer/pkg/logger"
)

const defaultWorkers = 4

// maxOCRPages 同步 DetectDocumentText 只接受单页 PDF
const maxOCRPages = 1

// PageSeparator joins page texts in page order.
const PageSeparator = "\n"

type Processor struct {
	logger     logger.Logger
	maxWorkers int
	ocr        document.TextRecognizer
}

type Option func(*Processor)

// WithWorkers 设置页面并发提取数
func WithWorkers(n int) Option {
	return func(p *Processor) {
		if n > 0 {
			p.maxWorkers = n
		}
	}
}

// WithOCRFallback is tried when the text layer of a parsed document is empty.
func WithOCRFallback(r document.TextRecognizer) Option {
	return func(p *Processor) {
		p.ocr = r
	}
}

func NewProcessor(logger logger.Logger, opts ...Option) *Processor {
	p := &Processor{
		logger:     logger,
		maxWorkers: defaultWorkers,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Processor) CanProcess(mimeType string) bool {
	return mimeType == models.MimeTypePDF
}

// Extract 提取每一页的文本，按页码顺序用换行拼接
func (p *Processor) Extract(ctx context.Context, file io.Reader) (*models.ExtractedText, error) {
	content, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read pdf: %w", err)
	}

	pdfReader, err := openReader(content)
	if err != nil {
		return nil, models.NewParseError(err)
	}

	pages, err := p.extractPages(ctx, pdfReader)
	if err != nil {
		return nil, err
	}

	text := strings.Join(pages, PageSeparator)
	source := "pdf"

	if strings.TrimSpace(text) == "" && p.ocr != nil {
		if len(pages) > maxOCRPages {
			p.logger.Warn("PDF has no text layer, OCR fallback skipped for multi-page document",
				logger.Int("pages", len(pages)),
			)
		} else {
			p.logger.Info("PDF has no text layer, trying OCR fallback",
				logger.Int("pages", len(pages)),
			)
			recognized, err := p.ocr.Recognize(ctx, content)
			if err != nil {
				p.logger.Warn("OCR fallback failed", logger.Error(err))
			} else {
				text = recognized
				source = "textract"
			}
		}
	}

	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: no text found in %d page(s)", models.ErrEmptyContent, len(pages))
	}

	return &models.ExtractedText{
		Text:      text,
		PageCount: len(pages),
		Source:    source,
	}, nil
}

// extractPages 并行提取页面文本, 结果按页码写入对应位置
func (p *Processor) extractPages(ctx context.Context, r *pdf.Reader) ([]string, error) {
	numPages := r.NumPage()
	pages := make([]string, numPages)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.maxWorkers)

	for i := 1; i <= numPages; i++ {
		pageNum := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			text, err := pageText(r, pageNum)
			if err != nil {
				return models.NewParseError(fmt.Errorf("page %d: %w", pageNum, err))
			}
			pages[pageNum-1] = text
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return pages, nil
}

func pageText(r *pdf.Reader, pageNum int) (text string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("%v", rec)
		}
	}()

	page := r.Page(pageNum)
	if page.V.IsNull() {
		return "", nil
	}
	return page.GetPlainText(nil)
}

// openReader 解析 PDF 结构; 解析器内部的 panic 视为解析失败
func openReader(content []byte) (r *pdf.Reader, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			r = nil
			err = fmt.Errorf("%v", rec)
		}
	}()

	reader := bytes.NewReader(content)
	return pdf.NewReader(reader, reader.Size())
}

func (p *Processor) ExtractMetadata(ctx context.Context, file io.Reader) (models.DocumentMetadata, error) {
	content, err := io.ReadAll(file)
	if err != nil {
		return models.DocumentMetadata{}, err
	}

	pdfReader, err := openReader(content)
	if err != nil {
		return models.DocumentMetadata{}, models.NewParseError(err)
	}

	// 计算文件哈希
	hash := sha256.Sum256(content)
	hashString := hex.EncodeToString(hash[:])

	metadata := models.DocumentMetadata{
		ID:        hashString[:8],
		FileType:  models.PDF,
		FileSize:  int64(len(content)),
		MimeType:  models.MimeTypePDF,
		Pages:     pdfReader.NumPage(),
		CreatedAt: time.Now(),
		Hash:      hashString,
	}

	trailer := pdfReader.Trailer()
	if !trailer.IsNull() {
		info := trailer.Key("Info")
		if !info.IsNull() {
			if title := info.Key("Title"); !title.IsNull() {
				metadata.Title = title.Text()
			}
			if author := info.Key("Author"); !author.IsNull() {
				metadata.Author = author.Text()
			}
		}
	}

	return metadata, nil
}

// Close 实现 document.Processor 接口的 Close 方法
func (p *Processor) Close() error {
	return nil
}
