package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestExtractPlainText(t *testing.T) {
	t.Parallel()

	resume := strings.Repeat("Jane Doe, senior React developer with TypeScript experience.\n", 5)

	p := New(zap.NewNop())
	text, conf, err := p.Extract(context.Background(), []byte(resume), "jane_doe.txt")
	require.NoError(t, err)

	assert.Contains(t, text, "senior React developer")
	assert.InDelta(t, 1.0, conf, 0.01)
}

func TestExtractEmptyDocument(t *testing.T) {
	t.Parallel()

	p := New(zap.NewNop())
	_, _, err := p.Extract(context.Background(), nil, "jane_doe.txt")
	assert.Error(t, err)
}

func TestExtractLegacyDocIsUnsupported(t *testing.T) {
	t.Parallel()

	p := New(zap.NewNop())
	_, _, err := p.Extract(context.Background(), []byte("old binary format"), "jane_doe.doc")
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))
}

func TestExtractUnknownExtensionSniffsContent(t *testing.T) {
	t.Parallel()

	resume := strings.Repeat("Plain text resume content without a useful extension.\n", 5)

	p := New(zap.NewNop())
	text, _, err := p.Extract(context.Background(), []byte(resume), "resume.dat")
	require.NoError(t, err)

	assert.Contains(t, text, "Plain text resume content")
}

func TestExtractUnknownBinaryIsUnsupported(t *testing.T) {
	t.Parallel()

	p := New(zap.NewNop())
	_, _, err := p.Extract(context.Background(), []byte{0x00, 0x01, 0x02, 0x03, 0xff, 0xfe}, "resume.bin")
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))
}

func TestExtractDocx(t *testing.T) {
	t.Parallel()

	document := `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>Jane Doe</w:t></w:r></w:p>
    <w:p><w:r><w:t>React &amp; TypeScript developer</w:t></w:r></w:p>
  </w:body>
</w:document>`

	rels := `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"></Relationships>`

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range map[string]string{
		"word/document.xml":            document,
		"word/_rels/document.xml.rels": rels,
	} {
		f, err := zw.Create(name)
		require.NoError(t, err)
		_, err = f.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())

	p := New(zap.NewNop())
	text, _, err := p.Extract(context.Background(), buf.Bytes(), "jane_doe.docx")
	require.NoError(t, err)

	assert.Contains(t, text, "Jane Doe")
	assert.Contains(t, text, "React & TypeScript developer")
	assert.NotContains(t, text, "<w:")
}

func TestExtractCancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := New(zap.NewNop())
	_, _, err := p.Extract(ctx, []byte("resume"), "jane_doe.txt")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestConfidence(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("Readable resume text with words and numbers 123.\n", 10)
	garbled := strings.Repeat("�", 300)

	assert.Equal(t, 0.0, Confidence(""))
	assert.Equal(t, 0.0, Confidence("   \n\t "))
	assert.InDelta(t, 1.0, Confidence(long), 0.01)

	short := Confidence("Jane Doe")
	assert.Greater(t, short, 0.0)
	assert.Less(t, short, 0.2, "short fragments score low")

	assert.Less(t, Confidence(garbled), 0.2, "replacement characters score low")
}

func TestNormalizeCollapsesBlankLines(t *testing.T) {
	t.Parallel()

	got := normalize("a\r\nb\n\n\n\n\nc\n")
	assert.Equal(t, "a\nb\n\nc", got)
}
