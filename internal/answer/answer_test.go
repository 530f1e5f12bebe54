package answer

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shersomas/manualbot/internal/vectorstore"
	"github.com/shersomas/manualbot/internal/vectorstore/memory"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// mapEmbedder returns canned vectors per input text.
type mapEmbedder struct {
	vectors map[string][]float32
	err     error
}

func (m *mapEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if m.err != nil {
		return nil, m.err
	}
	if v, ok := m.vectors[text]; ok {
		return v, nil
	}
	return []float32{0, 0, 1}, nil
}

// scriptedGenerator records the prompt it received and answers from the
// context block alone, saying "I don't know" when the block is empty.
type scriptedGenerator struct {
	prompt string
	err    error
}

func (g *scriptedGenerator) Complete(ctx context.Context, prompt string) (string, error) {
	g.prompt = prompt
	if g.err != nil {
		return "", g.err
	}
	// Everything between the persona header and the "Question:" line is
	// retrieved context.
	body := prompt
	if i := strings.Index(body, "say I don't know.\n\n"); i >= 0 {
		body = body[i+len("say I don't know.\n\n"):]
	}
	if i := strings.Index(body, "\nQuestion:"); i >= 0 {
		body = body[:i]
	}
	if strings.TrimSpace(body) == "" {
		return "I don't know.", nil
	}
	return strings.SplitN(strings.TrimSpace(body), "\n", 2)[0], nil
}

func populatedStore(t *testing.T) *memory.Store {
	t.Helper()
	store := memory.NewStore()
	ctx := context.Background()
	require.NoError(t, store.EnsureIndex(ctx, "tesla-manuals", 3))
	require.NoError(t, store.Upsert(ctx, "manual", []vectorstore.Entry{
		{
			ID:       "chunk-0",
			Values:   []float32{1, 0, 0},
			Metadata: map[string]string{vectorstore.MetadataKeyChunk: "Ludicrous Mode increases acceleration."},
		},
		{
			ID:       "chunk-1",
			Values:   []float32{0, 1, 0},
			Metadata: map[string]string{vectorstore.MetadataKeyChunk: "The frunk opens from the touchscreen."},
		},
	}))
	return store
}

func TestAnswer_UsesOnlyRetrievedContext(t *testing.T) {
	store := populatedStore(t)
	embedder := &mapEmbedder{vectors: map[string][]float32{
		"what is ludicrous mode": {0.9, 0.1, 0},
	}}
	gen := &scriptedGenerator{}

	a := New(embedder, store, gen, Config{Namespace: "manual"}, discardLogger())
	out, err := a.Answer(context.Background(), "what is ludicrous mode")
	require.NoError(t, err)

	assert.Equal(t, "Ludicrous Mode increases acceleration.", out,
		"answer must be derived from the retrieved passage")
	assert.Contains(t, gen.prompt, "Ludicrous Mode increases acceleration.")
	assert.Contains(t, gen.prompt, "Question: what is ludicrous mode")
	assert.Contains(t, gen.prompt, "Tesla car manual bot")
}

func TestAnswer_EmptyNamespaceFallsBackToIDontKnow(t *testing.T) {
	store := memory.NewStore()
	require.NoError(t, store.EnsureIndex(context.Background(), "tesla-manuals", 3))
	gen := &scriptedGenerator{}

	a := New(&mapEmbedder{}, store, gen, Config{Namespace: "manual"}, discardLogger())
	out, err := a.Answer(context.Background(), "what is ludicrous mode")
	require.NoError(t, err)
	assert.Equal(t, "I don't know.", out)
}

func TestAnswer_EmbeddingErrorPropagates(t *testing.T) {
	embErr := errors.New("embedding quota exceeded")
	a := New(&mapEmbedder{err: embErr}, populatedStore(t), &scriptedGenerator{},
		Config{Namespace: "manual"}, discardLogger())

	_, err := a.Answer(context.Background(), "anything")
	require.ErrorIs(t, err, embErr)
}

func TestAnswer_GenerationErrorPropagates(t *testing.T) {
	genErr := errors.New("model overloaded")
	a := New(&mapEmbedder{}, populatedStore(t), &scriptedGenerator{err: genErr},
		Config{Namespace: "manual"}, discardLogger())

	_, err := a.Answer(context.Background(), "anything")
	require.ErrorIs(t, err, genErr)
}

func TestNewTemplate_RequiresBothSlots(t *testing.T) {
	_, err := NewTemplate("no slots at all")
	require.Error(t, err)

	_, err = NewTemplate("has {context} only")
	require.Error(t, err)

	_, err = NewTemplate("has {question} only")
	require.Error(t, err)

	tmpl, err := NewTemplate("ctx: {context} q: {question}")
	require.NoError(t, err)
	assert.Equal(t, "ctx: A q: B", tmpl.Render("A", "B"))
}
