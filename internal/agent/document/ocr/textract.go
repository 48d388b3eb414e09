// Package ocr recognizes text in documents that carry no text layer.
package ocr

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/textract"
	"github.com/aws/aws-sdk-go-v2/service/textract/types"

	"github.com/feichai0017/document-analyzer/config"
	"github.com/feichai0017/document-analyzer/pkg/logger"
)

const defaultMinConfidence = 50

// DetectAPI is the part of the Textract client used here.
type DetectAPI interface {
	DetectDocumentText(ctx context.Context, params *textract.DetectDocumentTextInput, optFns ...func(*textract.Options)) (*textract.DetectDocumentTextOutput, error)
}

type TextractRecognizer struct {
	client        DetectAPI
	logger        logger.Logger
	minConfidence float32
}

// NewTextractRecognizer builds a Textract client from the AWS settings.
// Static credentials are used when both keys are set, otherwise the default
// AWS credential chain applies.
func NewTextractRecognizer(ctx context.Context, cfg *config.TextractConfig, log logger.Logger) (*TextractRecognizer, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to load AWS config: %w", err)
	}

	client := textract.NewFromConfig(awsCfg, func(o *textract.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})

	return NewRecognizer(client, log), nil
}

func NewRecognizer(client DetectAPI, log logger.Logger) *TextractRecognizer {
	return &TextractRecognizer{
		client:        client,
		logger:        log.Named("textract"),
		minConfidence: defaultMinConfidence,
	}
}

// Recognize returns the LINE blocks Textract detects, joined by newlines. It uses
// synchronous detection, which accepts single-page documents only.
func (r *TextractRecognizer) Recognize(ctx context.Context, content []byte) (string, error) {
	out, err := r.client.DetectDocumentText(ctx, &textract.DetectDocumentTextInput{
		Document: &types.Document{Bytes: content},
	})
	if err != nil {
		return "", fmt.Errorf("failed to detect document text: %w", err)
	}

	lines := r.lines(out.Blocks)
	r.logger.Debug("textract detection finished",
		logger.Int("blocks", len(out.Blocks)),
		logger.Int("lines", len(lines)),
	)
	return strings.Join(lines, "\n"), nil
}

func (r *TextractRecognizer) lines(blocks []types.Block) []string {
	var texts []string
	for _, block := range blocks {
		if block.BlockType != types.BlockTypeLine || block.Text == nil {
			continue
		}
		if block.Confidence != nil && *block.Confidence < r.minConfidence {
			continue
		}
		texts = append(texts, *block.Text)
	}
	return texts
}
