package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shersomas/manualbot/internal/answer"
	"github.com/shersomas/manualbot/internal/api"
	"github.com/shersomas/manualbot/internal/chat"
	"github.com/shersomas/manualbot/internal/config"
	"github.com/shersomas/manualbot/internal/embed"
	"github.com/shersomas/manualbot/internal/vectorstore/pinecone"
	"github.com/shersomas/manualbot/internal/whatsapp"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	if err := cfg.ValidateMessaging(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize clients.
	embedder := embed.NewClient(embed.Config{
		BaseURL: cfg.OpenAIBaseURL,
		APIKey:  cfg.OpenAIAPIKey,
		Model:   cfg.EmbedModel,
		Timeout: cfg.EmbedTimeout,
	})
	store := pinecone.NewStore(pinecone.Config{
		APIKey: cfg.PineconeAPIKey,
		Cloud:  cfg.IndexCloud,
		Region: cfg.IndexRegion,
	})
	generator := chat.NewClient(chat.Config{
		BaseURL: cfg.TogetherBaseURL,
		APIKey:  cfg.TogetherAPIKey,
		Model:   cfg.ChatModel,
		Timeout: cfg.ChatTimeout,
	})
	sender := whatsapp.NewClient(whatsapp.Config{
		AccountSID: cfg.TwilioAccountSID,
		AuthToken:  cfg.TwilioAuthToken,
		From:       cfg.WhatsAppFrom,
		To:         cfg.WhatsAppTo,
	})

	// Resolve the index host up front so the first question does not pay
	// for it.
	if err := store.EnsureIndex(ctx, cfg.IndexName, cfg.EmbedDim); err != nil {
		log.Error("vector index unavailable", "index", cfg.IndexName, "error", err)
		os.Exit(1)
	}

	answerer := answer.New(embedder, store, generator, answer.Config{
		Namespace: cfg.Namespace,
		TopK:      cfg.TopK,
	}, log)

	srv := api.NewServer(answerer, sender, log)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 180 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		embedder.Close()
		generator.Close()
		sender.Close()
		store.Close()
	}()

	log.Info("starting manualbot", "port", cfg.Port, "index", cfg.IndexName, "namespace", cfg.Namespace)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
