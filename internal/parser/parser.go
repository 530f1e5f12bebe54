package parser

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/shersomas/manualbot/internal/manual"
)

// Parser extracts the text of a manual file as a sequence of pages.
type Parser interface {
	Parse(r io.Reader, filename string) ([]manual.Page, error)
}

// SupportedExtensions lists file extensions the loader will pick up.
// PDF is the primary format manuals ship in; the rest cover converted copies.
var SupportedExtensions = map[string]bool{
	".pdf":  true,
	".txt":  true,
	".md":   true,
	".html": true,
	".htm":  true,
	".docx": true,
	".csv":  true,
}

// ForFile returns the appropriate parser for a filename.
func ForFile(filename string) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".pdf":
		return &PDFParser{}, nil
	case ".txt":
		return &TextParser{}, nil
	case ".md", ".markdown":
		return &MarkdownParser{}, nil
	case ".html", ".htm":
		return &HTMLParser{}, nil
	case ".docx":
		return &DOCXParser{}, nil
	case ".csv":
		return &CSVParser{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}
