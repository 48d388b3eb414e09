package ocr

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/textract"
	"github.com/aws/aws-sdk-go-v2/service/textract/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feichai0017/document-analyzer/pkg/logger"
)

type stubDetect struct {
	out   *textract.DetectDocumentTextOutput
	err   error
	input *textract.DetectDocumentTextInput
}

func (s *stubDetect) DetectDocumentText(ctx context.Context, params *textract.DetectDocumentTextInput, optFns ...func(*textract.Options)) (*textract.DetectDocumentTextOutput, error) {
	s.input = params
	return s.out, s.err
}

func TestTextractRecognizer_Recognize(t *testing.T) {
	stub := &stubDetect{out: &textract.DetectDocumentTextOutput{
		Blocks: []types.Block{
			{BlockType: types.BlockTypePage},
			{BlockType: types.BlockTypeLine, Text: aws.String("first line"), Confidence: aws.Float32(99)},
			{BlockType: types.BlockTypeWord, Text: aws.String("first"), Confidence: aws.Float32(99)},
			{BlockType: types.BlockTypeLine, Text: aws.String("smudge"), Confidence: aws.Float32(12)},
			{BlockType: types.BlockTypeLine, Text: aws.String("second line"), Confidence: aws.Float32(87)},
		},
	}}
	r := NewRecognizer(stub, logger.NewTestLogger())

	text, err := r.Recognize(context.Background(), []byte("%PDF-1.4"))
	require.NoError(t, err)
	assert.Equal(t, "first line\nsecond line", text)
	assert.Equal(t, []byte("%PDF-1.4"), stub.input.Document.Bytes)
}

func TestTextractRecognizer_Error(t *testing.T) {
	r := NewRecognizer(&stubDetect{err: errors.New("access denied")}, logger.NewTestLogger())

	_, err := r.Recognize(context.Background(), []byte("x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "access denied")
}
