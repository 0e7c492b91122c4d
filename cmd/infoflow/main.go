package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/bbbfishhh/InfoFlow4Venture/internal/ai"
	"github.com/bbbfishhh/InfoFlow4Venture/internal/config"
	"github.com/bbbfishhh/InfoFlow4Venture/internal/digest"
	"github.com/bbbfishhh/InfoFlow4Venture/internal/extract"
	"github.com/bbbfishhh/InfoFlow4Venture/internal/fetcher"
	"github.com/bbbfishhh/InfoFlow4Venture/internal/ingest"
	"github.com/bbbfishhh/InfoFlow4Venture/internal/storage"
	"github.com/bbbfishhh/InfoFlow4Venture/internal/translate"
)

var (
	cfgFile string
	verbose bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "infoflow",
		Short: "InfoFlow — LLM-powered tech news aggregation pipeline",
		Long: `InfoFlow crawls tech-news listing pages on a schedule, extracts article
metadata and summaries with an LLM, stores them in MongoDB with a 7-day
retention window, and mails a translated daily digest.`,
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(crawlCmd())
	rootCmd.AddCommand(digestCmd())
	rootCmd.AddCommand(schedulerCmd())
	rootCmd.AddCommand(configCmd())
	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// crawlCmd creates the "crawl" subcommand: one full ingestion pass.
func crawlCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "crawl",
		Short: "Run one ingestion pass over the configured sources",
		Long:  "Extract article stubs from every configured listing page, then backfill each incomplete document from its detail page.",
		RunE:  runCrawl,
	}
}

func runCrawl(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	if err := config.ValidateSecrets(cfg); err != nil {
		return err
	}
	if len(cfg.Sources) == 0 {
		return fmt.Errorf("no sources configured")
	}

	ctx, cancel := signalContext()
	defer cancel()

	store, err := storage.NewMongoStore(ctx, cfg.Store, logger)
	if err != nil {
		return fmt.Errorf("connect store: %w", err)
	}
	defer store.Close(context.Background())

	httpFetcher := fetcher.NewHTTPFetcher(&cfg.Fetcher, logger)
	defer httpFetcher.Close()
	llm := ai.NewLLMClient(cfg.LLM, logger)

	list := extract.NewListExtractor(httpFetcher, llm, store, cfg.Ingest.MaxListItems, logger)
	detail := extract.NewDetailExtractor(httpFetcher, llm, logger)
	pipeline := ingest.New(list, detail, store, cfg.Sources, cfg.Ingest, logger)

	logger.Info("ingestion started", "sources", len(cfg.Sources))
	if err := pipeline.Run(ctx); err != nil {
		return fmt.Errorf("ingestion: %w", err)
	}
	logger.Info("ingestion complete")
	return nil
}

// digestCmd creates the "digest" subcommand: build and send one digest.
func digestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "digest",
		Short: "Build the daily digest and mail it to the configured recipients",
		RunE:  runDigest,
	}
}

func runDigest(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	if err := config.ValidateMailSecrets(cfg); err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	store, err := storage.NewMongoStore(ctx, cfg.Store, logger)
	if err != nil {
		return fmt.Errorf("connect store: %w", err)
	}
	defer store.Close(context.Background())

	translator, err := buildTranslator(cfg, logger)
	if err != nil {
		return err
	}

	mailer := digest.NewMailer(cfg.Mail, logger)
	builder := digest.NewBuilder(store, translator, mailer, logger)
	if err := builder.BuildAndSend(ctx, cfg.Mail.Recipients); err != nil {
		return fmt.Errorf("digest: %w", err)
	}
	return nil
}

// buildTranslator wires the configured translation mode.
func buildTranslator(cfg *config.Config, logger *slog.Logger) (translate.Translator, error) {
	switch cfg.Translate.Mode {
	case "none":
		return translate.NopTranslator{}, nil
	case "baidu":
		if err := config.ValidateTranslateSecrets(cfg); err != nil {
			return nil, err
		}
		return translate.NewBaiduTranslator(cfg.Translate, logger), nil
	case "llm":
		if err := config.ValidateTranslateSecrets(cfg); err != nil {
			return nil, err
		}
		llmCfg := config.LLMConfig{
			Provider:    "openai",
			Endpoint:    cfg.Translate.Endpoint,
			Model:       cfg.Translate.Model,
			APIKey:      cfg.Translate.APIKey,
			MaxTokens:   cfg.LLM.MaxTokens,
			Temperature: cfg.LLM.Temperature,
		}
		return translate.NewLLMTranslator(ai.NewLLMClient(llmCfg, logger), logger), nil
	default:
		return nil, fmt.Errorf("unknown translate mode %q", cfg.Translate.Mode)
	}
}

// versionCmd creates the "version" subcommand.
func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("InfoFlow %s\n", config.Version)
		},
	}
}

// configCmd creates the "config" subcommand for inspecting configuration.
func configCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			fmt.Printf("Sources:             %d configured\n", len(cfg.Sources))
			fmt.Printf("\nLLM:\n")
			fmt.Printf("  Provider:          %s\n", cfg.LLM.Provider)
			fmt.Printf("  Model:             %s\n", cfg.LLM.Model)
			fmt.Printf("  API key set:       %v\n", cfg.LLM.APIKey != "")
			fmt.Printf("\nTranslate:\n")
			fmt.Printf("  Mode:              %s\n", cfg.Translate.Mode)
			fmt.Printf("  Model:             %s\n", cfg.Translate.Model)
			fmt.Printf("\nStore:\n")
			fmt.Printf("  URI:               %s\n", cfg.Store.URI)
			fmt.Printf("  Database:          %s/%s\n", cfg.Store.Database, cfg.Store.Collection)
			fmt.Printf("  Retention:         %s\n", cfg.Store.Retention)
			fmt.Printf("\nIngest:\n")
			fmt.Printf("  Rate limit wait:   %s\n", cfg.Ingest.RateLimitWait)
			fmt.Printf("  Rate limit cap:    %d retries\n", cfg.Ingest.RateLimitMaxRetries)
			fmt.Printf("  Max list items:    %d\n", cfg.Ingest.MaxListItems)
			fmt.Printf("\nMail:\n")
			fmt.Printf("  Server:            %s:%d\n", cfg.Mail.Host, cfg.Mail.Port)
			fmt.Printf("  Recipients:        %d configured\n", len(cfg.Mail.Recipients))
			fmt.Printf("  Retry count:       %d\n", cfg.Mail.RetryCount)
			fmt.Printf("\nScheduler:\n")
			fmt.Printf("  Config path:       %s\n", cfg.Scheduler.ConfigPath)
			fmt.Printf("  Timezone:          %s\n", cfg.Scheduler.Timezone)
			return nil
		},
	}
}

// setup loads and validates config and builds the root logger.
func setup() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	if err := config.Validate(cfg); err != nil {
		return nil, nil, fmt.Errorf("invalid config: %w", err)
	}
	logger, err := setupLogger(&cfg.Logging)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

// setupLogger creates the structured root logger, optionally teeing to a
// log file.
func setupLogger(cfg *config.LoggingConfig) (*slog.Logger, error) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	} else {
		switch strings.ToLower(cfg.Level) {
		case "debug":
			level = slog.LevelDebug
		case "warn":
			level = slog.LevelWarn
		case "error":
			level = slog.LevelError
		}
	}

	var out io.Writer = os.Stderr
	if cfg.File != "" {
		f, err := os.OpenFile(cfg.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		out = io.MultiWriter(os.Stderr, f)
	}

	handler := slog.NewTextHandler(out, &slog.HandlerOptions{Level: level})
	return slog.New(handler), nil
}

// signalContext returns a context cancelled on SIGINT/SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
