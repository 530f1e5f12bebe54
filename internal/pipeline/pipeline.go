// Package pipeline orchestrates ingestion: load manuals, chunk pages, embed
// each chunk and upsert it into the vector index.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/shersomas/manualbot/internal/chunker"
	"github.com/shersomas/manualbot/internal/loader"
	"github.com/shersomas/manualbot/internal/manual"
	"github.com/shersomas/manualbot/internal/vectorstore"
)

// Embedder converts chunk text into vectors. Ingestion and query time must
// share the same model.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Config tunes one ingestion run.
type Config struct {
	IndexName   string
	Namespace   string
	Dimension   int
	Chunking    chunker.Config
	Concurrency int // Chunks embedded/uploaded in flight; <=1 means sequential.
}

// Pipeline wires loader -> chunker -> embedder -> vector store.
type Pipeline struct {
	loader   *loader.Loader
	embedder Embedder
	store    vectorstore.Store
	obs      Observer
	log      *slog.Logger
	cfg      Config
}

func New(l *loader.Loader, embedder Embedder, store vectorstore.Store, obs Observer, cfg Config, log *slog.Logger) *Pipeline {
	if obs == nil {
		obs = NopObserver{}
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	return &Pipeline{
		loader:   l,
		embedder: embedder,
		store:    store,
		obs:      obs,
		log:      log,
		cfg:      cfg,
	}
}

// Run ingests every supported file under dir. The run is non-transactional:
// the first embedding or upload failure halts it and the error is returned,
// leaving entries uploaded so far in place. Chunk IDs are sequential
// chunk-<i> per run, so re-running over the same folder overwrites prior
// entries at the same indices.
func (p *Pipeline) Run(ctx context.Context, dir string) (Stats, error) {
	stats := Stats{RunID: uuid.NewString()}
	log := p.log.With("run_id", stats.RunID, "dir", dir)

	p.obs.Stage("loading manuals")
	docs, err := p.loader.LoadDir(ctx, dir)
	if err != nil {
		return stats, err
	}
	var pages []manual.Page
	for _, doc := range docs {
		pages = append(pages, doc.Pages...)
	}
	stats.Files = len(docs)
	stats.Pages = len(pages)
	p.obs.Loaded(stats.Files, stats.Pages)
	log.Info("loaded manuals", "files", stats.Files, "pages", stats.Pages)

	p.obs.Stage("creating chunks")
	chunks := chunker.ChunkPages(pages, p.cfg.Chunking)
	stats.Chunks = len(chunks)
	p.obs.Chunked(stats.Chunks)
	log.Info("chunked pages", "chunks", stats.Chunks)

	p.obs.Stage("uploading chunks")
	if err := p.store.EnsureIndex(ctx, p.cfg.IndexName, p.cfg.Dimension); err != nil {
		return stats, fmt.Errorf("ensure index %s: %w", p.cfg.IndexName, err)
	}

	uploaded, err := p.uploadChunks(ctx, chunks)
	stats.Uploaded = uploaded
	if err != nil {
		return stats, err
	}

	log.Info("ingestion complete", "uploaded", stats.Uploaded)
	return stats, nil
}

// uploadChunks embeds and upserts each chunk, at most cfg.Concurrency in
// flight. The first failure cancels the remaining work.
func (p *Pipeline) uploadChunks(ctx context.Context, chunks []manual.Chunk) (int, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		mu       sync.Mutex
		uploaded int
		firstErr error
	)
	sem := make(chan struct{}, p.cfg.Concurrency)
	var wg sync.WaitGroup

	for i, chunk := range chunks {
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			wg.Wait()
			if firstErr == nil {
				firstErr = ctx.Err()
			}
			return uploaded, firstErr
		}

		wg.Add(1)
		go func(i int, chunk manual.Chunk) {
			defer wg.Done()
			defer func() { <-sem }()

			if err := p.uploadOne(ctx, i, chunk); err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
				cancel()
				return
			}

			mu.Lock()
			uploaded++
			done := uploaded
			mu.Unlock()
			p.obs.Uploaded(done, len(chunks))
		}(i, chunk)
	}

	wg.Wait()
	mu.Lock()
	defer mu.Unlock()
	if firstErr == nil {
		firstErr = ctx.Err()
	}
	return uploaded, firstErr
}

func (p *Pipeline) uploadOne(ctx context.Context, i int, chunk manual.Chunk) error {
	vec, err := p.embedder.Embed(ctx, chunk.Text)
	if err != nil {
		return err
	}
	entry := vectorstore.Entry{
		ID:     fmt.Sprintf("chunk-%d", i),
		Values: vec,
		Metadata: map[string]string{
			vectorstore.MetadataKeyChunk: chunk.Text,
		},
	}
	return p.store.Upsert(ctx, p.cfg.Namespace, []vectorstore.Entry{entry})
}
