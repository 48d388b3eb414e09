// internal/utils/validator/document.go
package validator

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"mime/multipart"
	"strings"
	"sync"
	"time"

	"github.com/feichai0017/document-analyzer/internal/models"
	"github.com/feichai0017/document-analyzer/pkg/logger"
)

// DocumentValidator 文档验证器
type DocumentValidator struct {
	logger logger.Logger
	config *ValidatorConfig
}

// ValidatorConfig 验证器配置
type ValidatorConfig struct {
	MaxFileSize      int64    // 最大文件大小（字节）
	AllowedMimeTypes []string // 允许的声明 MIME 类型，必须完全匹配
}

// Candidate 待验证的文件描述
type Candidate struct {
	Name     string
	Size     int64
	MimeType string
}

// ValidationResult 验证结果
type ValidationResult struct {
	IsValid bool              `json:"isValid"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

// ValidationError 验证错误
type ValidationError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
	err     error
}

const (
	CodeInvalidMimeType = "INVALID_MIME_TYPE"
	CodeFileTooLarge    = "FILE_TOO_LARGE"
	CodeMissingName     = "MISSING_NAME"
)

// NewDocumentValidator 创建新的文档验证器
func NewDocumentValidator(log logger.Logger, config *ValidatorConfig) *DocumentValidator {
	if config == nil {
		config = &ValidatorConfig{
			MaxFileSize:      50 * 1024 * 1024, // 50MB
			AllowedMimeTypes: []string{models.MimeTypePDF, models.MimeTypeText},
		}
	}
	if len(config.AllowedMimeTypes) == 0 {
		config.AllowedMimeTypes = []string{models.MimeTypePDF, models.MimeTypeText}
	}

	return &DocumentValidator{
		logger: log,
		config: config,
	}
}

// Err returns the first validation failure as a pipeline error, or nil.
func (r *ValidationResult) Err() error {
	if r.IsValid || len(r.Errors) == 0 {
		return nil
	}
	first := r.Errors[0]
	if first.err != nil {
		return fmt.Errorf("%w: %s", first.err, first.Message)
	}
	return fmt.Errorf("%s", first.Message)
}

// Check 校验文件描述（不读取内容）
func (v *DocumentValidator) Check(c Candidate) *ValidationResult {
	result := &ValidationResult{IsValid: true}

	if !v.mimeAllowed(c.MimeType) {
		result.IsValid = false
		result.Errors = append(result.Errors, ValidationError{
			Code:    CodeInvalidMimeType,
			Message: fmt.Sprintf("unsupported file type %q", c.MimeType),
			Field:   "mimeType",
			err:     models.ErrUnsupportedFileType,
		})
	}

	if c.Size > v.config.MaxFileSize {
		result.IsValid = false
		result.Errors = append(result.Errors, ValidationError{
			Code:    CodeFileTooLarge,
			Message: fmt.Sprintf("file size exceeds maximum limit of %d bytes", v.config.MaxFileSize),
			Field:   "size",
			err:     models.ErrFileTooLarge,
		})
	}

	if strings.TrimSpace(c.Name) == "" {
		result.IsValid = false
		result.Errors = append(result.Errors, ValidationError{
			Code:    CodeMissingName,
			Message: "file name is required",
			Field:   "name",
			err:     models.ErrMissingFileName,
		})
	}

	return result
}

// Accept 校验并读取文件内容，生成 UploadedFile
func (v *DocumentValidator) Accept(c Candidate, r io.Reader) (*models.UploadedFile, error) {
	c.MimeType = strings.TrimSpace(c.MimeType)

	if err := v.Check(c).Err(); err != nil {
		v.logger.Warn("File rejected",
			logger.String("filename", c.Name),
			logger.String("mimeType", c.MimeType),
			logger.Int64("size", c.Size),
			logger.Error(err),
		)
		return nil, err
	}

	// 限制读取大小，声明的 size 可能不准确
	content, err := io.ReadAll(io.LimitReader(r, v.config.MaxFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if int64(len(content)) > v.config.MaxFileSize {
		return nil, fmt.Errorf("%w: file size exceeds maximum limit of %d bytes", models.ErrFileTooLarge, v.config.MaxFileSize)
	}

	return &models.UploadedFile{
		Name:       c.Name,
		Size:       int64(len(content)),
		MimeType:   c.MimeType,
		Content:    content,
		Hash:       calculateHash(content),
		UploadedAt: time.Now(),
	}, nil
}

// ValidateFile 验证单个 multipart 文件
func (v *DocumentValidator) ValidateFile(header *multipart.FileHeader) (*models.UploadedFile, error) {
	c := CandidateFromHeader(header)
	if err := v.Check(c).Err(); err != nil {
		return nil, err
	}

	f, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	return v.Accept(c, f)
}

// ValidateFiles 批量验证文件，结果与输入顺序一致
func (v *DocumentValidator) ValidateFiles(headers []*multipart.FileHeader) ([]*models.UploadedFile, []error) {
	files := make([]*models.UploadedFile, len(headers))
	errs := make([]error, len(headers))
	var wg sync.WaitGroup

	for i, header := range headers {
		wg.Add(1)
		go func(index int, header *multipart.FileHeader) {
			defer wg.Done()
			files[index], errs[index] = v.ValidateFile(header)
		}(i, header)
	}

	wg.Wait()
	return files, errs
}

// CandidateFromHeader 从 multipart 头部读取声明的类型
func CandidateFromHeader(header *multipart.FileHeader) Candidate {
	return Candidate{
		Name:     header.Filename,
		Size:     header.Size,
		MimeType: strings.TrimSpace(header.Header.Get("Content-Type")),
	}
}

func (v *DocumentValidator) mimeAllowed(mimeType string) bool {
	mimeType = strings.TrimSpace(mimeType)
	for _, allowed := range v.config.AllowedMimeTypes {
		if allowed == mimeType {
			return true
		}
	}
	return false
}

// 计算文件哈希
func calculateHash(content []byte) string {
	hash := sha256.Sum256(content)
	return hex.EncodeToString(hash[:])
}
