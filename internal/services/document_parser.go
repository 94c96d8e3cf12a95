package services

import (
	"bytes"
	"fmt"
	"html"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
	"go.uber.org/zap"
)

const (
	docxContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

	minDocumentTextChars = 10
)

// UploadedDocument is a resume file received with the request.
type UploadedDocument struct {
	Filename    string
	ContentType string
	Data        []byte
}

// DocumentTextExtractor turns an uploaded resume into plain text. Failures come back as
// explanatory text so they flow into validation like any other short input.
type DocumentTextExtractor interface {
	ExtractText(doc UploadedDocument) string
}

type DocumentParser struct {
	maxSize int64
	logger  *zap.Logger
}

func NewDocumentParser(maxSize int64, logger *zap.Logger) *DocumentParser {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DocumentParser{maxSize: maxSize, logger: logger}
}

type documentKind int

const (
	kindUnsupported documentKind = iota
	kindPDF
	kindDOCX
	kindText
)

func detectDocumentKind(doc UploadedDocument) documentKind {
	ext := strings.ToLower(filepath.Ext(doc.Filename))
	contentType := strings.ToLower(doc.ContentType)

	switch {
	case ext == ".pdf" || strings.HasPrefix(contentType, "application/pdf"):
		return kindPDF
	case ext == ".docx" || strings.HasPrefix(contentType, docxContentType):
		return kindDOCX
	case ext == ".txt" || strings.HasPrefix(contentType, "text/plain"):
		return kindText
	default:
		return kindUnsupported
	}
}

func (p *DocumentParser) ExtractText(doc UploadedDocument) string {
	kind := detectDocumentKind(doc)
	if kind == kindUnsupported {
		return "Error: Please upload a PDF, DOCX or TXT file."
	}

	if p.maxSize > 0 && int64(len(doc.Data)) > p.maxSize {
		return fmt.Sprintf("Error: File too large. Please use a file smaller than %dMB.", p.maxSize/(1024*1024))
	}

	var (
		text string
		err  error
	)
	switch kind {
	case kindPDF:
		text, err = extractPDFText(doc.Data)
	case kindDOCX:
		text, err = extractDOCXText(doc.Data)
	case kindText:
		text = string(doc.Data)
	}

	if err != nil {
		p.logger.Warn("resume parse failed",
			zap.String("filename", doc.Filename),
			zap.Int("size", len(doc.Data)),
			zap.Error(err),
		)
		return describeParseError(err)
	}

	text = CleanText(text)
	if RuneLen(text) < minDocumentTextChars {
		return "Error: Could not extract readable text from the document. It might be image-based or corrupted."
	}

	p.logger.Debug("resume parsed",
		zap.String("filename", doc.Filename),
		zap.Int("text_length", RuneLen(text)),
	)
	return text
}

func describeParseError(err error) string {
	msg := err.Error()
	lower := strings.ToLower(msg)

	switch {
	case strings.Contains(lower, "password") || strings.Contains(lower, "encrypt"):
		return "Error: Password-protected PDFs are not supported."
	case strings.Contains(lower, "not a pdf") || strings.Contains(lower, "malformed"):
		return "Error: Invalid PDF file. Please ensure the file is not corrupted."
	default:
		return fmt.Sprintf("Error parsing document: %s. Please try a different file or use a resume URL.", msg)
	}
}

func extractPDFText(data []byte) (text string, err error) {
	// the pdf package panics on some malformed cross-reference tables
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed PDF: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}

	var textBuilder strings.Builder
	totalPage := r.NumPage()

	for pageIndex := 1; pageIndex <= totalPage; pageIndex++ {
		page := r.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}

		pageText, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}

		textBuilder.WriteString(pageText)
		textBuilder.WriteString("\n\n")
	}

	return textBuilder.String(), nil
}

var (
	docxParagraphEndRe = regexp.MustCompile(`</w:p>|<w:br[^>]*/>|<w:tab[^>]*/>`)
	docxTagRe          = regexp.MustCompile(`<[^>]+>`)
)

func extractDOCXText(data []byte) (string, error) {
	r, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open DOCX: %w", err)
	}
	defer r.Close()

	content := r.Editable().GetContent()
	content = docxParagraphEndRe.ReplaceAllString(content, "\n")
	content = docxTagRe.ReplaceAllString(content, "")
	return html.UnescapeString(content), nil
}

// CleanText trims every line and drops the empty ones.
func CleanText(text string) string {
	text = strings.TrimSpace(text)

	lines := strings.Split(text, "\n")
	var cleanedLines []string

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			cleanedLines = append(cleanedLines, line)
		}
	}

	return strings.Join(cleanedLines, "\n")
}
