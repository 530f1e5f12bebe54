// Command ingest loads the manuals in a folder into the vector index and
// optionally runs a sample question against the result.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fatih/color"

	"github.com/shersomas/manualbot/internal/answer"
	"github.com/shersomas/manualbot/internal/chat"
	"github.com/shersomas/manualbot/internal/chunker"
	"github.com/shersomas/manualbot/internal/config"
	"github.com/shersomas/manualbot/internal/embed"
	"github.com/shersomas/manualbot/internal/loader"
	"github.com/shersomas/manualbot/internal/pipeline"
	"github.com/shersomas/manualbot/internal/vectorstore"
	"github.com/shersomas/manualbot/internal/vectorstore/pinecone"
)

func main() {
	cfg := config.Load()

	folder := flag.String("folder", "manuals", "folder containing manual files")
	indexName := flag.String("index", cfg.IndexName, "vector index name")
	namespace := flag.String("namespace", cfg.Namespace, "vector index namespace")
	query := flag.String("query", "explain ludicrous mode", "sample question to run after ingestion; empty disables")
	concurrency := flag.Int("concurrency", cfg.IngestConcurrency, "chunks embedded and uploaded in flight")
	flag.Parse()

	log := slog.New(slog.NewJSONHandler(os.Stderr, nil))

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	embedder := embed.NewClient(embed.Config{
		BaseURL: cfg.OpenAIBaseURL,
		APIKey:  cfg.OpenAIAPIKey,
		Model:   cfg.EmbedModel,
		Timeout: cfg.EmbedTimeout,
	})
	defer embedder.Close()
	store := pinecone.NewStore(pinecone.Config{
		APIKey: cfg.PineconeAPIKey,
		Cloud:  cfg.IndexCloud,
		Region: cfg.IndexRegion,
	})
	defer store.Close()

	pipe := pipeline.New(loader.New(log), embedder, store, consoleObserver{}, pipeline.Config{
		IndexName: *indexName,
		Namespace: *namespace,
		Dimension: cfg.EmbedDim,
		Chunking: chunker.Config{
			Size:    cfg.ChunkSize,
			Overlap: cfg.ChunkOverlap,
		},
		Concurrency: *concurrency,
	}, log)

	stats, err := pipe.Run(ctx, *folder)
	if err != nil {
		log.Error("ingestion failed", "run_id", stats.RunID, "uploaded", stats.Uploaded, "error", err)
		os.Exit(1)
	}

	color.Green("successfully uploaded %d chunks from %d files", stats.Uploaded, stats.Files)

	if *query != "" {
		if err := runSampleQuery(ctx, cfg, embedder, store, *namespace, *query, log); err != nil {
			log.Error("sample query failed", "error", err)
			os.Exit(1)
		}
	}
}

// runSampleQuery answers one question against the freshly built index so a
// broken ingestion run is visible immediately.
func runSampleQuery(ctx context.Context, cfg config.Config, embedder *embed.Client, store *pinecone.Store, namespace, query string, log *slog.Logger) error {
	banner("sample query")
	fmt.Println("Q:", query)

	vec, err := embedder.Embed(ctx, query)
	if err != nil {
		return err
	}
	matches, err := store.Query(ctx, namespace, vec, cfg.TopK, true)
	if err != nil {
		return err
	}
	for _, m := range matches {
		fmt.Printf("  %s score=%.4f %s\n", m.ID, m.Score, snippet(m.Metadata[vectorstore.MetadataKeyChunk], 80))
	}

	generator := chat.NewClient(chat.Config{
		BaseURL: cfg.TogetherBaseURL,
		APIKey:  cfg.TogetherAPIKey,
		Model:   cfg.ChatModel,
		Timeout: cfg.ChatTimeout,
	})
	defer generator.Close()

	answerer := answer.New(embedder, store, generator, answer.Config{
		Namespace: namespace,
		TopK:      cfg.TopK,
	}, log)

	text, err := answerer.Answer(ctx, query)
	if err != nil {
		return err
	}
	fmt.Println("A:", text)
	return nil
}

// consoleObserver renders the stage banners on stdout.
type consoleObserver struct{}

func (consoleObserver) Stage(name string) { banner(name) }

func (consoleObserver) Loaded(files, pages int) {
	fmt.Printf("loaded %d files (%d pages)\n", files, pages)
}

func (consoleObserver) Chunked(chunks int) {
	fmt.Printf("created %d chunks\n", chunks)
}

func (consoleObserver) Uploaded(done, total int) {
	if done == total || done%50 == 0 {
		fmt.Printf("uploaded %d/%d chunks\n", done, total)
	}
}

func snippet(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

func banner(name string) {
	color.Cyan("%s\n%s\n%s", strings.Repeat("-", 30), name, strings.Repeat("-", 30))
}
