package extract

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// ErrUnreadableDocument is returned when no text can be extracted from the
// uploaded bytes. The analysis pipeline treats it as a terminal failure.
var ErrUnreadableDocument = errors.New("document is unreadable")

// Media type tags carried on the contract record.
const (
	MediaTypePDF   = "pdf"
	MediaTypeDocx  = "docx"
	MediaTypeText  = "txt"
	MediaTypeImage = "image"
)

// TextExtractor converts uploaded document bytes into UTF-8 text.
// Binary formats (PDF, DOCX, image OCR) are an external collaborator concern;
// implementations for them plug in behind this interface.
type TextExtractor interface {
	Extract(data []byte, mediaType string) (string, error)
}

// DetectMediaType maps an upload's content type and filename onto the stored
// media type tag, defaulting to plain text.
func DetectMediaType(contentType, filename string) string {
	switch {
	case contentType == "application/pdf" || strings.HasSuffix(strings.ToLower(filename), ".pdf"):
		return MediaTypePDF
	case strings.Contains(contentType, "wordprocessingml") || strings.HasSuffix(strings.ToLower(filename), ".docx"):
		return MediaTypeDocx
	case strings.HasPrefix(contentType, "image/"):
		return MediaTypeImage
	default:
		return MediaTypeText
	}
}

// PlainTextExtractor handles UTF-8 text uploads. Every other media type needs
// a format-specific extractor and is rejected as unreadable here.
type PlainTextExtractor struct{}

func NewPlainTextExtractor() *PlainTextExtractor {
	return &PlainTextExtractor{}
}

var _ TextExtractor = &PlainTextExtractor{}

func (e *PlainTextExtractor) Extract(data []byte, mediaType string) (string, error) {
	if mediaType != MediaTypeText {
		return "", fmt.Errorf("%w: no extractor registered for media type %q", ErrUnreadableDocument, mediaType)
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("%w: not valid UTF-8 text", ErrUnreadableDocument)
	}
	return string(data), nil
}
