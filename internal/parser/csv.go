package parser

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/shersomas/manualbot/internal/manual"
)

// CSVParser handles CSV files (spec sheets and option tables that sometimes
// accompany manuals). Rows are grouped into batches, one page per batch, so
// a huge table does not become a single oversized page.
type CSVParser struct{}

const csvBatchSize = 20

func (p *CSVParser) Parse(r io.Reader, filename string) ([]manual.Page, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	// First row is headers.
	headers := records[0]
	dataRows := records[1:]

	var pages []manual.Page
	for i := 0; i < len(dataRows); i += csvBatchSize {
		end := min(i+csvBatchSize, len(dataRows))
		batch := dataRows[i:end]

		var text strings.Builder
		text.WriteString("Headers: " + strings.Join(headers, ", ") + "\n\n")
		for _, row := range batch {
			for j, cell := range row {
				if j < len(headers) {
					text.WriteString(headers[j] + ": " + cell)
				} else {
					text.WriteString(cell)
				}
				if j < len(row)-1 {
					text.WriteString(", ")
				}
			}
			text.WriteString("\n")
		}

		pages = append(pages, manual.Page{
			Text:   strings.TrimSpace(text.String()),
			Source: filename,
			Index:  len(pages) + 1,
		})
	}

	return pages, nil
}
