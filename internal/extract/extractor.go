package extract

import (
	"bytes"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"jobmatcher/internal/errors"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
)

// Format identifies the binary layout of an uploaded document. It is decided
// from the filename extension or declared content type, never sniffed from
// the bytes.
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatDOCX Format = "docx"
	FormatText Format = "text"
)

// Extractor converts document binaries into plain text.
type Extractor struct {
	logger *errors.Logger
}

// NewExtractor creates a document text extractor.
func NewExtractor(logger *errors.Logger) *Extractor {
	return &Extractor{logger: logger}
}

// DetectFormat resolves the document format from a filename and an optional
// declared content type. The content type wins when both are present.
func DetectFormat(filename, contentType string) (Format, error) {
	switch contentType {
	case "application/pdf":
		return FormatPDF, nil
	case "application/vnd.openxmlformats-officedocument.wordprocessingml.document":
		return FormatDOCX, nil
	case "text/plain", "application/json":
		return FormatText, nil
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return FormatPDF, nil
	case ".docx":
		return FormatDOCX, nil
	case ".txt", ".text", ".md", ".json":
		return FormatText, nil
	}

	return "", errors.NewExtractionError(errors.ErrCodeUnsupportedDoc,
		fmt.Sprintf("Unsupported document type for %q (content type %q)", filename, contentType), nil)
}

// Text extracts the visible text of a document in the given format.
// Malformed input fails outright; no partial text is returned.
func (e *Extractor) Text(format Format, data []byte) (string, error) {
	switch format {
	case FormatPDF:
		return e.pdfText(data)
	case FormatDOCX:
		return e.docxText(data)
	case FormatText:
		return DecodeText(data)
	default:
		return "", errors.NewExtractionError(errors.ErrCodeUnsupportedDoc,
			fmt.Sprintf("Unsupported document format: %s", format), nil)
	}
}

// pdfText concatenates per-page plain text. Every page contributes a
// trailing newline, including pages with no extractable text.
func (e *Extractor) pdfText(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", errors.NewExtractionError(errors.ErrCodeExtractionFailed,
			"Failed to open PDF document", err)
	}

	var text strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			text.WriteString("\n")
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			if e.logger != nil {
				e.logger.Warn("Page yielded no extractable text", "page", i, "error", err)
			}
			pageText = ""
		}
		text.WriteString(pageText)
		text.WriteString("\n")
	}

	return text.String(), nil
}

var (
	docxParagraphRe = regexp.MustCompile(`(?s)<w:p[ >].*?</w:p>|<w:p/>`)
	docxTagRe       = regexp.MustCompile(`<[^>]+>`)
	docxEntities    = strings.NewReplacer(
		"&amp;", "&",
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", `"`,
		"&apos;", "'",
	)
)

// docxText extracts paragraph texts, one per line. Empty paragraphs
// contribute empty lines.
func (e *Extractor) docxText(data []byte) (string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", errors.NewExtractionError(errors.ErrCodeExtractionFailed,
			"Failed to open DOCX document", err)
	}
	defer func() {
		if closeErr := doc.Close(); closeErr != nil && e.logger != nil {
			e.logger.Warn("Failed to close DOCX document", "error", closeErr)
		}
	}()

	content := doc.Editable().GetContent()
	paragraphs := docxParagraphRe.FindAllString(content, -1)

	lines := make([]string, 0, len(paragraphs))
	for _, p := range paragraphs {
		lines = append(lines, docxEntities.Replace(docxTagRe.ReplaceAllString(p, "")))
	}

	return strings.Join(lines, "\n"), nil
}
