package parser

import (
	"strings"
	"testing"
)

func TestHTMLParser_ExtractsContentBlocks(t *testing.T) {
	input := `<html><head><title>Model S</title><style>p{color:red}</style></head>
<body>
<nav>skip me</nav>
<h1>Driving</h1>
<p>Press the brake pedal to shift.</p>
<p>Ludicrous Mode increases acceleration.</p>
<footer>skip me too</footer>
</body></html>`

	p := &HTMLParser{}
	pages, err := p.Parse(strings.NewReader(input), "models.html")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pages) != 1 {
		t.Fatalf("expected 1 page, got %d", len(pages))
	}
	text := pages[0].Text
	for _, want := range []string{"Driving", "Press the brake pedal", "Ludicrous Mode"} {
		if !strings.Contains(text, want) {
			t.Errorf("expected page to contain %q, got %q", want, text)
		}
	}
	if strings.Contains(text, "skip me") {
		t.Errorf("nav/footer content leaked into page: %q", text)
	}
}

func TestMarkdownParser_HeadingsAndParagraphs(t *testing.T) {
	input := "# Charging\n\nPlug in the connector.\n\n## Supercharging\n\nUse a Supercharger station."
	p := &MarkdownParser{}
	pages, err := p.Parse(strings.NewReader(input), "charging.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pages) != 1 {
		t.Fatalf("expected 1 page, got %d", len(pages))
	}
	text := pages[0].Text
	for _, want := range []string{"Charging", "Plug in the connector.", "Supercharging", "Use a Supercharger station."} {
		if !strings.Contains(text, want) {
			t.Errorf("expected page to contain %q, got %q", want, text)
		}
	}
}

func TestCSVParser_BatchesRowsIntoPages(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("model,range\n")
	for i := 0; i < 25; i++ {
		sb.WriteString("Model 3,272\n")
	}
	p := &CSVParser{}
	pages, err := p.Parse(strings.NewReader(sb.String()), "specs.csv")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 25 data rows at 20 per batch -> 2 pages.
	if len(pages) != 2 {
		t.Fatalf("expected 2 pages, got %d", len(pages))
	}
	if !strings.Contains(pages[0].Text, "Headers: model, range") {
		t.Errorf("expected headers line, got %q", pages[0].Text)
	}
	if pages[1].Index != 2 {
		t.Errorf("expected second page index 2, got %d", pages[1].Index)
	}
}
