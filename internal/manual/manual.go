// Package manual holds the domain types shared by the ingestion and
// query pipelines.
package manual

// Document is one source file with its extracted pages.
type Document struct {
	Path  string
	Pages []Page
}

// Page is one unit of loaded text. Pages are produced by the loader and
// discarded after chunking.
type Page struct {
	Text   string
	Source string // Originating file path.
	Index  int    // Page number within the file, 1-based.
}

// Chunk is a contiguous slice of page text sized for embedding.
type Chunk struct {
	Text   string
	Source string // Originating file path.
	Page   int    // Page the chunk was cut from.
}

// ScoredChunk is a retrieved passage with its similarity score.
// It exists only for the duration of one query.
type ScoredChunk struct {
	Text  string
	Score float32
}
