package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html"
	"io"
	"math"
	"path/filepath"
	"regexp"
	"strings"
	"unicode"

	"github.com/dslipak/pdf"
	"github.com/gabriel-vasile/mimetype"
	"github.com/nguyenthenguyen/docx"
	"go.uber.org/zap"
)

// ErrUnsupportedFormat marks a document the pipeline cannot read. Callers
// record such documents as skipped instead of failing the session.
var ErrUnsupportedFormat = errors.New("unsupported document format")

// Extractor turns a raw candidate document into plain text along with a
// confidence value in [0, 1] describing how readable the result is.
type Extractor interface {
	Extract(ctx context.Context, data []byte, filename string) (string, float64, error)
}

// Parser extracts text from PDF, DOCX and plain text documents.
type Parser struct {
	logger *zap.Logger
}

func New(logger *zap.Logger) *Parser {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Parser{logger: logger}
}

func (p *Parser) Extract(ctx context.Context, data []byte, filename string) (string, float64, error) {
	if err := ctx.Err(); err != nil {
		return "", 0, err
	}
	if len(data) == 0 {
		return "", 0, fmt.Errorf("document %q is empty", filename)
	}

	var (
		text string
		err  error
	)

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		text, err = extractPDF(data)
	case ".docx":
		text, err = extractDocx(data)
	case ".txt":
		text, err = extractText(data)
	case ".doc":
		// Legacy binary Word documents have no reader in the toolchain.
		return "", 0, fmt.Errorf("%w: legacy .doc file %q", ErrUnsupportedFormat, filename)
	default:
		text, err = p.extractDetected(data, filename)
	}

	if err != nil {
		return "", 0, err
	}

	text = normalize(text)
	conf := Confidence(text)

	p.logger.Debug("extracted document text",
		zap.String("file", filename),
		zap.Int("chars", len(text)),
		zap.Float64("confidence", conf),
	)

	return text, conf, nil
}

// extractDetected handles files with an unknown extension by sniffing the
// content type instead.
func (p *Parser) extractDetected(data []byte, filename string) (string, error) {
	mime := mimetype.Detect(data)

	switch {
	case mime.Is("application/pdf"):
		return extractPDF(data)
	case mime.Is("application/vnd.openxmlformats-officedocument.wordprocessingml.document"):
		return extractDocx(data)
	case mime.Is("text/plain"):
		return extractText(data)
	}

	return "", fmt.Errorf("%w: %q detected as %s", ErrUnsupportedFormat, filename, mime.String())
}

func extractPDF(data []byte) (text string, err error) {
	// The pdf library panics on some malformed files.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("read pdf: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("read pdf: %w", err)
	}

	if reader.NumPage() == 0 {
		return "", fmt.Errorf("read pdf: document has no pages")
	}

	plain, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("read pdf text: %w", err)
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", fmt.Errorf("read pdf text: %w", err)
	}

	return buf.String(), nil
}

var (
	docxParagraph = regexp.MustCompile(`</w:p>`)
	docxTag       = regexp.MustCompile(`<[^>]+>`)
)

func extractDocx(data []byte) (string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("read docx: %w", err)
	}
	defer doc.Close()

	content := doc.Editable().GetContent()

	content = docxParagraph.ReplaceAllString(content, "\n")
	content = docxTag.ReplaceAllString(content, "")

	return html.UnescapeString(content), nil
}

func extractText(data []byte) (string, error) {
	return strings.ToValidUTF8(string(data), ""), nil
}

var blankLines = regexp.MustCompile(`\n{3,}`)

func normalize(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = blankLines.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

// minReadableLength is the text length at which the size factor of the
// confidence value saturates. Resumes shorter than this are likely partial
// extractions.
const minReadableLength = 200

// Confidence estimates how usable extracted text is. It combines the share
// of readable characters with a length factor, so that both garbled output
// and near-empty output score low.
func Confidence(text string) float64 {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return 0
	}

	readable, total := 0, 0
	for _, r := range trimmed {
		total++
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) || unicode.IsPunct(r) {
			readable++
		}
	}

	ratio := float64(readable) / float64(total)
	size := math.Min(1, float64(len(trimmed))/minReadableLength)

	return ratio * size
}
