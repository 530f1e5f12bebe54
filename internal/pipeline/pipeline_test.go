package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shersomas/manualbot/internal/chunker"
	"github.com/shersomas/manualbot/internal/loader"
	"github.com/shersomas/manualbot/internal/vectorstore"
	"github.com/shersomas/manualbot/internal/vectorstore/memory"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// countingEmbedder returns a fixed-dimension vector and can fail after a
// set number of calls.
type countingEmbedder struct {
	mu        sync.Mutex
	calls     int
	failAfter int // 0 means never fail
}

func (e *countingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls++
	if e.failAfter > 0 && e.calls > e.failAfter {
		return nil, errors.New("embedding service down")
	}
	return []float32{float32(len(text)), 1, 0}, nil
}

type recordingObserver struct {
	mu     sync.Mutex
	stages []string
	chunks int
}

func (o *recordingObserver) Stage(name string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.stages = append(o.stages, name)
}
func (o *recordingObserver) Loaded(files, pages int) {}
func (o *recordingObserver) Chunked(n int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.chunks = n
}
func (o *recordingObserver) Uploaded(done, total int) {}

func writeManuals(t *testing.T, texts ...string) string {
	t.Helper()
	dir := t.TempDir()
	for i, text := range texts {
		name := fmt.Sprintf("manual-%d.txt", i)
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(text), 0o644))
	}
	return dir
}

func newPipeline(store vectorstore.Store, embedder Embedder, obs Observer, concurrency int) *Pipeline {
	return New(
		loader.New(discardLogger()),
		embedder,
		store,
		obs,
		Config{
			IndexName:   "tesla-manuals",
			Namespace:   "manual",
			Dimension:   3,
			Chunking:    chunker.Config{Size: 100, Overlap: 20},
			Concurrency: concurrency,
		},
		discardLogger(),
	)
}

func TestRun_PopulatesStoreWithSequentialIDs(t *testing.T) {
	dir := writeManuals(t, "Ludicrous Mode increases acceleration.", "The frunk opens from the touchscreen.")
	store := memory.NewStore()
	obs := &recordingObserver{}

	stats, err := newPipeline(store, &countingEmbedder{}, obs, 1).Run(context.Background(), dir)
	require.NoError(t, err)

	assert.Equal(t, 2, stats.Files)
	assert.Equal(t, 2, stats.Chunks)
	assert.Equal(t, 2, stats.Uploaded)
	assert.NotEmpty(t, stats.RunID)
	assert.Equal(t, 2, store.Len("manual"))

	// Entries carry the chunk text under the metadata key and chunk-<i> IDs.
	matches, err := store.Query(context.Background(), "manual", []float32{38, 1, 0}, 2, true)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	for _, m := range matches {
		assert.Regexp(t, `^chunk-\d+$`, m.ID)
		assert.NotEmpty(t, m.Metadata[vectorstore.MetadataKeyChunk])
	}

	assert.Equal(t, []string{"loading manuals", "creating chunks", "uploading chunks"}, obs.stages)
	assert.Equal(t, 2, obs.chunks)
}

func TestRun_HaltsOnEmbeddingFailureLeavingPartialIndex(t *testing.T) {
	dir := writeManuals(t, "First manual text.", "Second manual text.", "Third manual text.")
	store := memory.NewStore()
	embedder := &countingEmbedder{failAfter: 1}

	stats, err := newPipeline(store, embedder, nil, 1).Run(context.Background(), dir)
	require.Error(t, err)
	assert.Equal(t, 1, stats.Uploaded, "run is non-transactional: earlier uploads remain")
	assert.Equal(t, 1, store.Len("manual"))
}

func TestRun_ConcurrentUploadsAllArrive(t *testing.T) {
	texts := make([]string, 12)
	for i := range texts {
		texts[i] = fmt.Sprintf("Manual number %d says something useful about charging.", i)
	}
	dir := writeManuals(t, texts...)
	store := memory.NewStore()

	stats, err := newPipeline(store, &countingEmbedder{}, nil, 4).Run(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, 12, stats.Uploaded)
	assert.Equal(t, 12, store.Len("manual"))
}

func TestRun_ReRunOverwritesSameIDs(t *testing.T) {
	dir := writeManuals(t, "Stable content.")
	store := memory.NewStore()

	_, err := newPipeline(store, &countingEmbedder{}, nil, 1).Run(context.Background(), dir)
	require.NoError(t, err)
	_, err = newPipeline(store, &countingEmbedder{}, nil, 1).Run(context.Background(), dir)
	require.NoError(t, err)

	assert.Equal(t, 1, store.Len("manual"), "re-ingestion overwrites chunk-<i> entries, not appends")
}

func TestRun_LoadFailureAborts(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.pdf"), []byte("not a pdf"), 0o644))
	store := memory.NewStore()

	_, err := newPipeline(store, &countingEmbedder{}, nil, 1).Run(context.Background(), dir)
	var loadErr *loader.LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, 0, store.Len("manual"))
}
