// cmd/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/codemind-go/internal/api"
	"github.com/codemind-go/internal/chat"
	"github.com/codemind-go/internal/config"
	"github.com/codemind-go/internal/data"
	"github.com/codemind-go/internal/models"
	"github.com/codemind-go/internal/pkg/logger"
	"github.com/codemind-go/internal/rag"
)

type serveOptions struct {
	ConfigPath string
	DatasetDir string
}

var serveOpts = &serveOptions{}

var rootCmd = &cobra.Command{
	Use:           "codemind",
	Short:         "Chat with a codebase, papers or support tickets.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the chat API server.",
	Long: `Start the chat API server.

Example: codemind serve --config config.yaml --dataset-dir ./my-repo`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context(), serveOpts)
	},
}

func init() {
	serveCmd.Flags().StringVarP(&serveOpts.ConfigPath, "config", "c", "config.yaml", "Path to the YAML config file")
	serveCmd.Flags().StringVarP(&serveOpts.DatasetDir, "dataset-dir", "d", "", "Load this directory as the codebase dataset")

	rootCmd.AddCommand(serveCmd, diffCmd)
	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: no .env file found, using process environment")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func runServe(ctx context.Context, opts *serveOptions) error {
	cfg, err := config.LoadConfig(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	appLogger := logger.NewZapLogger(cfg.Logging.FilePath, cfg.IsProduction(), cfg.Logging.Level)
	defer appLogger.Sync()

	kv, err := data.NewKVStore(ctx, cfg.Session)
	if err != nil {
		return fmt.Errorf("open session store: %w", err)
	}
	defer kv.Close()

	catalog := data.NewCatalog(data.SearchOptions{
		MinKeywordLength: cfg.Retriever.MinKeywordLength,
		TopK:             cfg.Retriever.TopK,
	}, appLogger)

	if opts.DatasetDir != "" {
		docs, err := data.NewRepositoryLoader(cfg, appLogger).LoadDataset(opts.DatasetDir, "codebase-")
		if err != nil {
			return fmt.Errorf("load dataset dir: %w", err)
		}
		catalog.Replace(models.ModeCodebase, docs)
		appLogger.Info("main", "Loaded codebase dataset from directory", map[string]interface{}{
			"dir":   opts.DatasetDir,
			"files": len(docs),
		})
	}

	registry, closeModels, err := buildModels(ctx, cfg, appLogger)
	if err != nil {
		return err
	}
	defer closeModels()

	session, err := chat.NewSession(ctx, chat.Deps{
		Catalog:    catalog,
		Models:     registry,
		KV:         kv,
		HistoryKey: cfg.Session.HistoryKey,
		Upload: data.UploadOptions{
			MaxFileBytes:   cfg.Upload.MaxFileBytes,
			TextExtensions: cfg.Upload.TextExtensions,
		},
		Logger: appLogger,
	})
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}

	server := api.NewServer(cfg, session, appLogger)
	errCh := make(chan error, 1)
	go func() { errCh <- server.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	appLogger.Info("main", "Shutting down", nil)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return nil
}

// buildModels registers one Gemini model per configured definition; the
// first one is the default.
func buildModels(ctx context.Context, cfg *config.Config, log logger.ILogger) (*rag.Registry, func(), error) {
	client, err := rag.NewGeminiClient(ctx, cfg.Google)
	if err != nil {
		return nil, nil, fmt.Errorf("create vertex ai client: %w", err)
	}

	registry := rag.NewRegistry()
	for _, def := range cfg.Google.Models {
		if err := registry.Register(rag.NewGeminiModel(client, def, log)); err != nil {
			client.Close()
			return nil, nil, err
		}
	}
	return registry, func() { client.Close() }, nil
}
