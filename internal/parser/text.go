package parser

import (
	"bufio"
	"io"
	"strings"

	"github.com/shersomas/manualbot/internal/manual"
)

// TextParser handles plain text files. The whole file becomes one page,
// with paragraphs separated by blank lines preserved as double newlines
// so the chunker can split on them.
type TextParser struct{}

func (p *TextParser) Parse(r io.Reader, filename string) ([]manual.Page, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var paragraphs []string
	var current strings.Builder

	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			if current.Len() > 0 {
				paragraphs = append(paragraphs, current.String())
				current.Reset()
			}
		} else {
			if current.Len() > 0 {
				current.WriteString("\n")
			}
			current.WriteString(line)
		}
	}
	if current.Len() > 0 {
		paragraphs = append(paragraphs, current.String())
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if len(paragraphs) == 0 {
		return nil, nil
	}

	return []manual.Page{{
		Text:   strings.Join(paragraphs, "\n\n"),
		Source: filename,
		Index:  1,
	}}, nil
}
