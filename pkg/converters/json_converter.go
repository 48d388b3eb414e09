package converters

import (
	"encoding/json"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/feichai0017/document-analyzer/internal/models"
)

// DocumentConverter 定义文档转换器接口
type DocumentConverter interface {
	Convert(in *AnalysisOutput) (*ProcessedDocument, error)
}

// AnalysisOutput is everything one async run produced.
type AnalysisOutput struct {
	File      *models.UploadedFile
	Extracted *models.ExtractedText
	Result    *models.AnalysisResult
	Truncated bool
	Duration  time.Duration
}

// ProcessedDocument 定义处理后的文档结构
type ProcessedDocument struct {
	TaskID      string                 `json:"taskId"`
	Status      string                 `json:"status"`
	Analysis    *models.AnalysisResult `json:"analysis"`
	Metadata    DocumentMetadata       `json:"metadata"`
	ProcessedAt time.Time              `json:"processedAt"`
}

// DocumentMetadata 定义文档元数据
type DocumentMetadata struct {
	FileName     string `json:"fileName"`
	FileType     string `json:"fileType"`
	MimeType     string `json:"mimeType"`
	FileSize     int64  `json:"fileSize"`
	Hash         string `json:"hash,omitempty"`
	PageCount    int    `json:"pageCount,omitempty"`
	Characters   int    `json:"characters"`
	Source       string `json:"source"`
	Truncated    bool   `json:"truncated"`
	ProcessingMs int64  `json:"processingMs"`
}

// JSONConverter 实现文档转换器
type JSONConverter struct{}

func NewJSONConverter() *JSONConverter {
	return &JSONConverter{}
}

func (c *JSONConverter) Convert(in *AnalysisOutput) (*ProcessedDocument, error) {
	if in == nil || in.File == nil || in.Extracted == nil {
		return nil, fmt.Errorf("nothing to convert: missing file or extracted text")
	}

	result := in.Result
	if result == nil {
		result = models.NewAnalysisResult()
	}

	return &ProcessedDocument{
		Status:      string(models.StatusCompleted),
		Analysis:    result.Clone().Normalize(),
		ProcessedAt: time.Now(),
		Metadata: DocumentMetadata{
			FileName:     in.File.Name,
			FileType:     string(models.FileTypeOf(in.File.MimeType)),
			MimeType:     in.File.MimeType,
			FileSize:     in.File.Size,
			Hash:         in.File.Hash,
			PageCount:    in.Extracted.PageCount,
			Characters:   utf8.RuneCountInString(in.Extracted.Text),
			Source:       in.Extracted.Source,
			Truncated:    in.Truncated,
			ProcessingMs: in.Duration.Milliseconds(),
		},
	}, nil
}

// Marshal 序列化处理结果
func (c *JSONConverter) Marshal(doc *ProcessedDocument) ([]byte, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}
	return data, nil
}
