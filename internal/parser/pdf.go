package parser

import (
	"fmt"
	"io"
	"os"
	"strings"

	pdflib "github.com/ledongthuc/pdf"

	"github.com/shersomas/manualbot/internal/manual"
)

// PDFParser extracts per-page text from PDF manuals. Images are ignored;
// only the text layer is read.
type PDFParser struct{}

func (p *PDFParser) Parse(r io.Reader, filename string) ([]manual.Page, error) {
	// ledongthuc/pdf requires a ReadSeeker+size, so we write to a temp file.
	tmp, err := os.CreateTemp("", "manualbot-pdf-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	tmp.Close()

	f, reader, err := pdflib.Open(tmpPath)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	var pages []manual.Page
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			// A single unreadable page should not lose the rest of the manual.
			continue
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		pages = append(pages, manual.Page{
			Text:   text,
			Source: filename,
			Index:  i,
		})
	}

	return pages, nil
}
