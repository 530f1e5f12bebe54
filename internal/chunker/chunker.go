// Package chunker splits manual pages into bounded, overlapping passages
// suitable for embedding.
package chunker

import (
	"github.com/shersomas/manualbot/internal/manual"
)

// Config controls chunking behavior. Sizes are measured in runes.
type Config struct {
	Size    int // Maximum chunk length.
	Overlap int // Runes shared between consecutive chunks from the same page.
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Size:    800,
		Overlap: 200,
	}
}

// ChunkPages splits each page into chunks of at most cfg.Size runes, with
// consecutive chunks from the same page sharing exactly cfg.Overlap runes.
// Chunks never cross a page boundary and output order follows page order.
func ChunkPages(pages []manual.Page, cfg Config) []manual.Chunk {
	if cfg.Size <= 0 {
		cfg.Size = 800
	}
	if cfg.Overlap < 0 {
		cfg.Overlap = 200
	}
	if cfg.Overlap >= cfg.Size {
		cfg.Overlap = cfg.Size / 4
	}

	var chunks []manual.Chunk
	for _, page := range pages {
		for _, text := range splitPage(page.Text, cfg.Size, cfg.Overlap) {
			chunks = append(chunks, manual.Chunk{
				Text:   text,
				Source: page.Source,
				Page:   page.Index,
			})
		}
	}
	return chunks
}

// splitPage cuts text into pieces of at most size runes. Each piece after
// the first starts exactly overlap runes before the previous cut, so
// concatenating the pieces with the overlap removed reconstructs the text.
func splitPage(text string, size, overlap int) []string {
	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}
	if len(runes) <= size {
		return []string{text}
	}

	var out []string
	start := 0
	for {
		if len(runes)-start <= size {
			out = append(out, string(runes[start:]))
			return out
		}
		cut := bestCut(runes, start+overlap+1, start+size)
		out = append(out, string(runes[start:cut]))
		start = cut - overlap
	}
}

// bestCut picks a cut position in (floor, limit], preferring in order:
// after a paragraph break, after a line break, after sentence-ending
// punctuation. Falls back to a hard cut at limit.
func bestCut(runes []rune, floor, limit int) int {
	if floor < 1 {
		floor = 1
	}

	// Paragraph breaks first.
	for j := limit; j >= floor; j-- {
		if j >= 2 && runes[j-1] == '\n' && runes[j-2] == '\n' {
			return j
		}
	}
	// Then single line breaks.
	for j := limit; j >= floor; j-- {
		if runes[j-1] == '\n' {
			return j
		}
	}
	// Then sentence-ending punctuation followed by whitespace.
	for j := limit; j >= floor; j-- {
		if isSentenceEnd(runes[j-1]) && (j == len(runes) || runes[j] == ' ' || runes[j] == '\n') {
			return j
		}
	}
	return limit
}

func isSentenceEnd(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}
