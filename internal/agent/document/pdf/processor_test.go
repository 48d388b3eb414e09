package pdf

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/ledongthuc/pdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feichai0017/document-analyzer/internal/models"
	"github.com/feichai0017/document-analyzer/internal/testutil"
	"github.com/feichai0017/document-analyzer/pkg/logger"
)

// perPageText reads every page directly through the parser, for comparison.
func perPageText(t *testing.T, content []byte) []string {
	t.Helper()
	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	require.NoError(t, err)

	texts := make([]string, r.NumPage())
	for i := 1; i <= r.NumPage(); i++ {
		text, err := r.Page(i).GetPlainText(nil)
		require.NoError(t, err)
		texts[i-1] = text
	}
	return texts
}

func TestProcessor_ExtractJoinsPagesInOrder(t *testing.T) {
	want := []string{"Page one", "Page two", "Page three", "Page four", "Page five", "Page six"}
	content := testutil.BuildPDF(want...)

	// a single worker and many workers must give the same ordered result
	for _, workers := range []int{1, 3, 16} {
		p := NewProcessor(logger.NewTestLogger(), WithWorkers(workers))

		got, err := p.Extract(context.Background(), bytes.NewReader(content))
		require.NoError(t, err)

		pages := perPageText(t, content)
		require.Len(t, pages, len(want))
		for i := range want {
			assert.Equal(t, want[i], strings.TrimSpace(pages[i]))
		}

		assert.Equal(t, strings.Join(pages, "\n"), got.Text)
		assert.Equal(t, len(want), got.PageCount)
		assert.Equal(t, "pdf", got.Source)

		// order check independent of per-page whitespace
		last := -1
		for _, w := range want {
			idx := strings.Index(got.Text, w)
			require.Greater(t, idx, last, "page %q out of order", w)
			last = idx
		}
	}
}

func TestProcessor_ExtractCorruptDocument(t *testing.T) {
	p := NewProcessor(logger.NewTestLogger())

	inputs := map[string][]byte{
		"garbage":   []byte("this is definitely not a pdf document at all, just words"),
		"truncated": testutil.BuildPDF("hello")[:40],
		"empty":     {},
	}

	for name, content := range inputs {
		t.Run(name, func(t *testing.T) {
			_, err := p.Extract(context.Background(), bytes.NewReader(content))
			require.Error(t, err)
			assert.ErrorIs(t, err, models.ErrParse)

			var parseErr *models.ParseError
			require.True(t, errors.As(err, &parseErr))
			assert.NotEmpty(t, parseErr.Reason)
		})
	}
}

func TestProcessor_ExtractEmptyPages(t *testing.T) {
	p := NewProcessor(logger.NewTestLogger())

	_, err := p.Extract(context.Background(), bytes.NewReader(testutil.BuildPDF("", "")))
	assert.ErrorIs(t, err, models.ErrEmptyContent)
}

type fakeRecognizer struct {
	text  string
	err   error
	calls int
}

func (f *fakeRecognizer) Recognize(ctx context.Context, content []byte) (string, error) {
	f.calls++
	return f.text, f.err
}

func TestProcessor_OCRFallback(t *testing.T) {
	scanned := testutil.BuildPDF("")

	t.Run("recognized text is used", func(t *testing.T) {
		ocr := &fakeRecognizer{text: "scanned words"}
		p := NewProcessor(logger.NewTestLogger(), WithOCRFallback(ocr))

		got, err := p.Extract(context.Background(), bytes.NewReader(scanned))
		require.NoError(t, err)
		assert.Equal(t, "scanned words", got.Text)
		assert.Equal(t, "textract", got.Source)
		assert.Equal(t, 1, ocr.calls)
	})

	t.Run("ocr failure still reports empty content", func(t *testing.T) {
		ocr := &fakeRecognizer{err: errors.New("throttled")}
		p := NewProcessor(logger.NewTestLogger(), WithOCRFallback(ocr))

		_, err := p.Extract(context.Background(), bytes.NewReader(scanned))
		assert.ErrorIs(t, err, models.ErrEmptyContent)
	})

	t.Run("multi-page scans are not sent", func(t *testing.T) {
		ocr := &fakeRecognizer{text: "unused"}
		log := logger.NewTestLogger()
		p := NewProcessor(log, WithOCRFallback(ocr))

		_, err := p.Extract(context.Background(), bytes.NewReader(testutil.BuildPDF("", "")))
		assert.ErrorIs(t, err, models.ErrEmptyContent)
		assert.Zero(t, ocr.calls)
		assert.True(t, log.HasMessage("WARN", "PDF has no text layer, OCR fallback skipped for multi-page document"))
	})

	t.Run("not called when text layer exists", func(t *testing.T) {
		ocr := &fakeRecognizer{text: "unused"}
		p := NewProcessor(logger.NewTestLogger(), WithOCRFallback(ocr))

		_, err := p.Extract(context.Background(), bytes.NewReader(testutil.BuildPDF("real text")))
		require.NoError(t, err)
		assert.Zero(t, ocr.calls)
	})
}

func TestProcessor_ExtractMetadata(t *testing.T) {
	p := NewProcessor(logger.NewTestLogger())

	meta, err := p.ExtractMetadata(context.Background(), bytes.NewReader(testutil.BuildPDF("a", "b")))
	require.NoError(t, err)
	assert.Equal(t, 2, meta.Pages)
	assert.Equal(t, models.PDF, meta.FileType)
	assert.Len(t, meta.Hash, 64)

	_, err = p.ExtractMetadata(context.Background(), strings.NewReader("nope"))
	assert.ErrorIs(t, err, models.ErrParse)
}
