package text

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feichai0017/document-analyzer/internal/models"
	"github.com/feichai0017/document-analyzer/pkg/logger"
)

func TestProcessor_Extract(t *testing.T) {
	p := NewProcessor(logger.NewTestLogger())

	tests := []struct {
		name    string
		content []byte
		want    string
		wantErr error
	}{
		{name: "hello world", content: []byte("Hello world"), want: "Hello world"},
		{name: "keeps surrounding whitespace", content: []byte("  line one\nline two\n"), want: "  line one\nline two\n"},
		{name: "strips bom", content: append([]byte{0xEF, 0xBB, 0xBF}, []byte("bom")...), want: "bom"},
		{name: "invalid utf8 replaced", content: []byte{'a', 0xff, 'b'}, want: "a\uFFFDb"},
		{name: "empty", content: []byte{}, wantErr: models.ErrEmptyContent},
		{name: "whitespace only", content: []byte(" \n\t\r\n  "), wantErr: models.ErrEmptyContent},
		{name: "bom only", content: []byte{0xEF, 0xBB, 0xBF}, wantErr: models.ErrEmptyContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := p.Extract(context.Background(), bytes.NewReader(tt.content))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Text)
			assert.Equal(t, "text", got.Source)
		})
	}
}

func TestProcessor_WhitespaceOnlyProperty(t *testing.T) {
	p := NewProcessor(logger.NewTestLogger())
	pieces := []string{" ", "\n", "\t", "\r\n", " ", " "}

	for n := 1; n <= 20; n++ {
		var b strings.Builder
		for i := 0; i < n; i++ {
			b.WriteString(pieces[(i*7+n)%len(pieces)])
		}
		_, err := p.Extract(context.Background(), strings.NewReader(b.String()))
		assert.ErrorIs(t, err, models.ErrEmptyContent, "input %q", b.String())
	}
}

func TestProcessor_CanceledContext(t *testing.T) {
	p := NewProcessor(logger.NewTestLogger())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Extract(ctx, strings.NewReader("hello"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestProcessor_ExtractMetadata(t *testing.T) {
	p := NewProcessor(logger.NewTestLogger())

	meta, err := p.ExtractMetadata(context.Background(), strings.NewReader("a\nb"))
	require.NoError(t, err)
	assert.Equal(t, models.Text, meta.FileType)
	assert.Equal(t, int64(3), meta.FileSize)
	assert.Equal(t, 2, meta.Extra["lines"])
	assert.True(t, p.CanProcess("text/plain"))
	assert.False(t, p.CanProcess("application/pdf"))
}
