package text

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/feichai0017/document-analyzer/internal/models"
	"github.com/feichai0017/document-analyzer/pkg/logger"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

type Processor struct {
	logger logger.Logger
}

func NewProcessor(logger logger.Logger) *Processor {
	return &Processor{
		logger: logger,
	}
}

func (p *Processor) CanProcess(mimeType string) bool {
	return mimeType == models.MimeTypeText
}

// Extract decodes the bytes as UTF-8. Invalid sequences become U+FFFD.
func (p *Processor) Extract(ctx context.Context, reader io.Reader) (*models.ExtractedText, error) {
	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read text file: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	text := decode(content)
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: text file is empty", models.ErrEmptyContent)
	}

	return &models.ExtractedText{
		Text:      text,
		PageCount: 1,
		Source:    "text",
	}, nil
}

func (p *Processor) ExtractMetadata(ctx context.Context, reader io.Reader) (models.DocumentMetadata, error) {
	content, err := io.ReadAll(reader)
	if err != nil {
		return models.DocumentMetadata{}, fmt.Errorf("failed to read text file: %w", err)
	}

	hash := sha256.Sum256(content)
	hashString := hex.EncodeToString(hash[:])
	text := decode(content)

	return models.DocumentMetadata{
		ID:        hashString[:8],
		FileType:  models.Text,
		FileSize:  int64(len(content)),
		MimeType:  models.MimeTypeText,
		Pages:     1,
		CreatedAt: time.Now(),
		Hash:      hashString,
		Extra: map[string]interface{}{
			"characters": utf8.RuneCountInString(text),
			"lines":      strings.Count(text, "\n") + 1,
		},
	}, nil
}

func (p *Processor) Close() error {
	return nil
}

func decode(content []byte) string {
	content = bytes.TrimPrefix(content, utf8BOM)
	return strings.ToValidUTF8(string(content), "\uFFFD")
}
