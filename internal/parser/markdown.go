package parser

import (
	"bytes"
	"io"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/shersomas/manualbot/internal/manual"
)

// MarkdownParser handles Markdown files using goldmark. Headings are kept
// inline as paragraph separators; the file becomes a single page.
type MarkdownParser struct{}

func (p *MarkdownParser) Parse(r io.Reader, filename string) ([]manual.Page, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	md := goldmark.New()
	reader := text.NewReader(src)
	doc := md.Parser().Parse(reader)

	var blocks []string
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		switch node := n.(type) {
		case *ast.Heading:
			if title := string(node.Text(src)); title != "" {
				blocks = append(blocks, title)
			}
		default:
			if t := markdownText(n, src); t != "" {
				blocks = append(blocks, t)
			}
		}
	}

	if len(blocks) == 0 {
		return nil, nil
	}

	return []manual.Page{{
		Text:   strings.Join(blocks, "\n\n"),
		Source: filename,
		Index:  1,
	}}, nil
}

// markdownText gets the text content of a goldmark AST node.
func markdownText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	if n.Type() == ast.TypeBlock {
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			line := lines.At(i)
			buf.Write(line.Value(src))
		}
	}
	// Also handle inline children.
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			buf.Write(t.Value(src))
			if t.HardLineBreak() || t.SoftLineBreak() {
				buf.WriteByte('\n')
			}
		} else {
			buf.WriteString(markdownText(c, src))
		}
	}
	return strings.TrimSpace(buf.String())
}
