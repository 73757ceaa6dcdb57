package extract

import (
	"bytes"
	"fmt"
	"net/mail"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/charmap"
)

// Extractor turns uploaded documents into plain text
type Extractor struct {
	logger *zap.Logger
}

// NewExtractor creates a new document extractor
func NewExtractor(logger *zap.Logger) *Extractor {
	return &Extractor{logger: logger}
}

// Extract returns the text of an uploaded file. It never fails: a document
// that cannot be parsed is decoded as text instead.
func (e *Extractor) Extract(data []byte, filename string) string {
	switch strings.ToLower(filepath.Ext(strings.TrimSpace(filename))) {
	case ".pdf":
		text, err := pdfText(data)
		if err == nil {
			return text
		}
		e.logger.Warn("Failed to read PDF, decoding as text",
			zap.String("filename", filename),
			zap.Error(err))
	case ".eml":
		text, err := emlText(data)
		if err == nil {
			return text
		}
		e.logger.Debug("Failed to parse message, decoding as text",
			zap.String("filename", filename),
			zap.Error(err))
	}

	return decodeBytes(data)
}

func emlText(data []byte) (string, error) {
	msg, err := mail.ReadMessage(bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	return MessageText(msg)
}

// pdfText joins the plain text of every page
func pdfText(data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf parser panic: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}

	parts := make([]string, 0, reader.NumPage())
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			parts = append(parts, "")
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("failed to read page %d: %w", i, err)
		}
		parts = append(parts, pageText)
	}

	return strings.TrimSpace(strings.Join(parts, "\n")), nil
}

// decodeBytes keeps valid UTF-8 and reads anything else as Latin-1
func decodeBytes(data []byte) string {
	if utf8.Valid(data) {
		return string(data)
	}
	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
	if err != nil {
		return strings.ToValidUTF8(string(data), "")
	}
	return string(decoded)
}
