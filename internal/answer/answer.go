// Package answer implements retrieval-augmented question answering: embed
// the question, retrieve the nearest manual passages, and ask the chat
// model to answer from them.
package answer

import (
	"context"
	"log/slog"
	"strings"

	"github.com/shersomas/manualbot/internal/vectorstore"
)

// DefaultTopK is the number of passages retrieved per question.
const DefaultTopK = 4

// Embedder converts a question into a query vector. It must use the same
// model the ingestion pipeline embedded chunks with.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Retriever is the read side of the vector store.
type Retriever interface {
	Query(ctx context.Context, namespace string, vector []float32, topK int, includeMetadata bool) ([]vectorstore.Match, error)
}

// Generator produces text from a composed prompt.
type Generator interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Config tunes the answerer.
type Config struct {
	Namespace string
	TopK      int
	Template  Template // Zero value falls back to DefaultTemplate.
}

// Answerer holds no per-query state; concurrent questions each run an
// independent embed -> retrieve -> generate chain.
type Answerer struct {
	embedder  Embedder
	retriever Retriever
	generator Generator
	tmpl      Template
	namespace string
	topK      int
	log       *slog.Logger
}

func New(embedder Embedder, retriever Retriever, generator Generator, cfg Config, log *slog.Logger) *Answerer {
	tmpl := cfg.Template
	if tmpl == (Template{}) {
		tmpl = DefaultTemplate()
	}
	topK := cfg.TopK
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &Answerer{
		embedder:  embedder,
		retriever: retriever,
		generator: generator,
		tmpl:      tmpl,
		namespace: cfg.Namespace,
		topK:      topK,
		log:       log,
	}
}

// Answer runs one question through the full chain and returns the plain
// generated text. Errors from any stage propagate to the caller untouched;
// the HTTP boundary decides how to present them.
func (a *Answerer) Answer(ctx context.Context, question string) (string, error) {
	vec, err := a.embedder.Embed(ctx, question)
	if err != nil {
		return "", err
	}

	matches, err := a.retriever.Query(ctx, a.namespace, vec, a.topK, true)
	if err != nil {
		return "", err
	}
	a.log.Info("retrieved passages", "question_len", len(question), "matches", len(matches))

	// An empty namespace yields an empty context block; the persona then
	// answers with its "I don't know" framing instead of fabricating.
	var passages []string
	for _, m := range matches {
		if text := m.Metadata[vectorstore.MetadataKeyChunk]; text != "" {
			passages = append(passages, text)
		}
	}

	prompt := a.tmpl.Render(strings.Join(passages, "\n\n"), question)
	text, err := a.generator.Complete(ctx, prompt)
	if err != nil {
		return "", err
	}
	return text, nil
}
