// Package main is the villagerag CLI entry point.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/hyperjump/villagerag/internal/cli"
	"github.com/hyperjump/villagerag/internal/config"
	"github.com/hyperjump/villagerag/internal/embedding"
	"github.com/hyperjump/villagerag/internal/extract"
	"github.com/hyperjump/villagerag/internal/indexer"
	"github.com/hyperjump/villagerag/internal/llm"
	"github.com/hyperjump/villagerag/internal/models"
	"github.com/hyperjump/villagerag/internal/provider"
	"github.com/hyperjump/villagerag/internal/rag"
	"github.com/hyperjump/villagerag/internal/server"
	"github.com/hyperjump/villagerag/internal/vector"
	"github.com/hyperjump/villagerag/pkg/utils"
	"go.uber.org/zap"
)

var version = "dev"

const (
	defaultConfigPath = "/usr/local/etc/villagerag/config.yaml"
	defaultServerURL  = "http://localhost:8000"
	probeTimeout      = 30 * time.Second
	shutdownTimeout   = 10 * time.Second
)

// loadConfig loads config from path. When path is the default, it first looks for
// config.yaml in the current directory (for development). When neither file exists the
// config comes from .env, the environment and defaults alone.
// Returns the config and the path that was actually loaded ("" when none was).
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
		if _, statErr := os.Stat(path); errors.Is(statErr, os.ErrNotExist) {
			cfg, err := config.Default()
			if err != nil {
				return nil, "", err
			}
			return cfg, "", nil
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "server":
		runServer()
	case "ask":
		runAsk()
	case "diagnose":
		runDiagnose()
	case "index":
		runIndex()
	case "status":
		runStatus()
	case "version", "--version", "-v":
		fmt.Printf("villagerag version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

// setup loads and validates config and builds the logger. It exits on failure.
func setup(configPath string, debugFlag bool) (*config.Config, *zap.Logger) {
	cfg, resolved, err := loadConfig(configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Printf("Invalid config:\n%v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || debugFlag
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	logger.Info("config loaded",
		zap.String("config_path", resolved),
		zap.Bool("debug", debugMode),
		zap.String("vector_store", cfg.VectorStore.Type),
		zap.String("collection", cfg.VectorStore.Collection),
	)
	return cfg, logger
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	cfg, logger := setup(*configPath, *debug)
	defer logger.Sync()

	components, err := initializeComponents(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	probeCtx, probeCancel := context.WithTimeout(context.Background(), probeTimeout)
	err = embedding.Probe(probeCtx, components.Embedder, logger)
	probeCancel()
	if err != nil {
		logger.Fatal("Embedding provider unavailable", zap.Error(err))
	}

	// Warm the index in the background; requests build it lazily if this fails.
	go func() {
		idx, err := components.Manager.GetOrBuild(context.Background())
		if err != nil {
			logger.Warn("initial index build failed, will retry on first request", zap.Error(err))
			return
		}
		logger.Info("index ready", zap.String("collection", idx.Collection()), zap.Int("points", idx.Points()))
	}()

	srv := server.NewServer(components.Service, &cfg.Server, logger)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	_ = srv.Stop(ctx)
}

// buildQuery joins all positional args with spaces so multi-word questions
// work the same with or without shell quoting.
func buildQuery(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

// argsReorder moves any flags (and their values) that appear after the question
// to the front of the slice so that flag.Parse() sees them. Go's flag package
// stops at the first non-flag argument.
func argsReorder(args []string) []string {
	for i, a := range args {
		if len(a) > 0 && a[0] == '-' {
			if i == 0 {
				return args
			}
			reordered := make([]string, 0, len(args))
			reordered = append(reordered, args[i:]...)
			reordered = append(reordered, args[:i]...)
			return reordered
		}
	}
	return args
}

// questionCommand holds the flags shared by ask and diagnose.
type questionCommand struct {
	fs         *flag.FlagSet
	configPath *string
	serverURL  *string
	output     *string
	debug      *bool
}

func newQuestionCommand(name, summary string) *questionCommand {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	c := &questionCommand{
		fs:         fs,
		configPath: fs.String("config", defaultConfigPath, "config file path"),
		serverURL:  fs.String("server", defaultServerURL, "server URL (empty = run the pipeline in this process)"),
		output:     fs.String("output", "text", "output format: text or json"),
		debug:      fs.Bool("debug", false, "enable debug logging (direct mode)"),
	}
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: villagerag %s [flags] <question>\n\n%s\n\n", name, summary)
		fs.PrintDefaults()
	}
	return c
}

// parse returns the question and output format, exiting with usage on bad input.
func (c *questionCommand) parse(args []string) (string, cli.OutputFormat) {
	_ = c.fs.Parse(argsReorder(args))
	question := buildQuery(c.fs.Args())
	if question == "" {
		c.fs.Usage()
		os.Exit(1)
	}
	format, err := cli.ParseOutputFormat(*c.output)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	return question, format
}

func runAsk() {
	cmd := newQuestionCommand("ask", "Answers a question about La Roca Village.")
	question, format := cmd.parse(os.Args[2:])

	var answer models.ChatResponse
	if *cmd.serverURL != "" {
		if err := apiClient(*cmd.serverURL).DoJSON(context.Background(), http.MethodPost, "/api/chat", models.Query{Query: question}, &answer); err != nil {
			fmt.Printf("Ask failed: %v\n", err)
			os.Exit(1)
		}
	} else {
		withDirectService(*cmd.configPath, *cmd.debug, func(ctx context.Context, svc *rag.Service) error {
			text, err := svc.Answer(ctx, question)
			answer.Response = text
			return err
		})
	}
	if err := cli.WriteAnswer(os.Stdout, answer, format); err != nil {
		fmt.Printf("Failed to write answer: %v\n", err)
		os.Exit(1)
	}
}

func runDiagnose() {
	cmd := newQuestionCommand("diagnose", "Shows the passages retrieved for a question without calling the language model.")
	question, format := cmd.parse(os.Args[2:])

	var resp models.DiagnosticResponse
	if *cmd.serverURL != "" {
		if err := apiClient(*cmd.serverURL).DoJSON(context.Background(), http.MethodPost, "/api/diagnose", models.Query{Query: question}, &resp); err != nil {
			fmt.Printf("Diagnose failed: %v\n", err)
			os.Exit(1)
		}
	} else {
		withDirectService(*cmd.configPath, *cmd.debug, func(ctx context.Context, svc *rag.Service) error {
			docs, err := svc.Diagnose(ctx, question)
			resp = models.DiagnosticResponse{Query: question, RetrievedDocuments: docs, TotalDocuments: len(docs)}
			return err
		})
	}
	if err := cli.WriteDiagnostics(os.Stdout, resp, format); err != nil {
		fmt.Printf("Failed to write diagnostics: %v\n", err)
		os.Exit(1)
	}
}

// withDirectService runs fn against a pipeline built in this process.
func withDirectService(configPath string, debug bool, fn func(context.Context, *rag.Service) error) {
	cfg, logger := setup(configPath, debug)
	defer logger.Sync()
	components, err := initializeComponents(cfg, logger)
	if err != nil {
		fmt.Printf("Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	defer components.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := fn(ctx, components.Service); err != nil {
		fmt.Printf("Failed: %v\n", err)
		components.Close()
		os.Exit(1)
	}
}

// apiClient talks to a running server. No retries: a CLI user sees failures at once.
func apiClient(serverURL string) *provider.Client {
	return provider.NewClient(provider.Options{
		Name:    "villagerag",
		BaseURL: serverURL,
		Timeout: 5 * time.Minute,
	})
}

func runIndex() {
	fs := flag.NewFlagSet("index", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	cfg, logger := setup(*configPath, *debug)
	defer logger.Sync()
	components, err := initializeComponents(cfg, logger)
	if err != nil {
		fmt.Printf("Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	defer components.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	start := time.Now()
	idx, err := components.Manager.GetOrBuild(ctx)
	if err != nil {
		fmt.Printf("Indexing failed: %v\n", err)
		components.Close()
		os.Exit(1)
	}
	action := "Reused existing"
	if idx.Built() {
		action = "Built"
	}
	points := "unknown"
	if idx.Points() >= 0 {
		points = fmt.Sprint(idx.Points())
	}
	fmt.Printf("%s collection %q (%s points) in %s\n", action, idx.Collection(), points, time.Since(start).Round(time.Millisecond))
}

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", defaultServerURL, "server URL (empty = inspect the vector store directly)")
	output := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	format, err := cli.ParseOutputFormat(*output)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	if *serverURL != "" {
		var health models.HealthResponse
		if err := apiClient(*serverURL).DoJSON(context.Background(), http.MethodGet, "/api/health", nil, &health); err != nil {
			fmt.Printf("Status failed: %v\n", err)
			os.Exit(1)
		}
		if err := cli.WriteHealth(os.Stdout, health, format); err != nil {
			fmt.Printf("Failed to write status: %v\n", err)
			os.Exit(1)
		}
		return
	}

	cfg, logger := setup(*configPath, false)
	defer logger.Sync()
	store, err := vector.NewStore(cfg.VectorStore, cfg.OpenAI.MaxRetries, logger)
	if err != nil {
		fmt.Printf("Failed to open vector store: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()
	info, err := store.CollectionInfo(context.Background(), cfg.VectorStore.Collection)
	if err != nil {
		fmt.Printf("Status failed: %v\n", err)
		store.Close()
		os.Exit(1)
	}
	health := models.HealthResponse{Status: "not_ready", DocumentsLoaded: info.Exists && info.PointCount > 0}
	if health.DocumentsLoaded {
		health.Status = "healthy"
	}
	if err := cli.WriteHealth(os.Stdout, health, format); err != nil {
		fmt.Printf("Failed to write status: %v\n", err)
		os.Exit(1)
	}
	if format == cli.OutputText {
		fmt.Printf("Vector store: %s\nCollection: %s (exists: %t", cfg.VectorStore.Type, cfg.VectorStore.Collection, info.Exists)
		if info.CountKnown {
			fmt.Printf(", points: %d", info.PointCount)
		}
		fmt.Println(")")
	}
}

// Components holds initialized components.
type Components struct {
	Store    vector.Store
	Embedder embedding.Embedder
	Manager  *indexer.Manager
	Service  *rag.Service
}

// Close releases all resources.
func (c *Components) Close() {
	if c.Embedder != nil {
		_ = c.Embedder.Close()
	}
	if c.Store != nil {
		_ = c.Store.Close()
	}
}

func initializeComponents(cfg *config.Config, logger *zap.Logger) (*Components, error) {
	openai := provider.NewClient(provider.Options{
		Name:              "openai",
		BaseURL:           cfg.OpenAI.BaseURL,
		Headers:           map[string]string{"Authorization": "Bearer " + cfg.OpenAI.APIKey},
		Timeout:           cfg.OpenAI.Timeout(),
		MaxRetries:        cfg.OpenAI.MaxRetries,
		RequestsPerSecond: cfg.OpenAI.RequestsPerSecond,
		Logger:            logger,
	})

	embedder, err := newEmbedder(cfg, openai)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedder: %w", err)
	}

	store, err := vector.NewStore(cfg.VectorStore, cfg.OpenAI.MaxRetries, logger)
	if err != nil {
		_ = embedder.Close()
		return nil, fmt.Errorf("failed to create vector store: %w", err)
	}

	loader := indexer.NewLoader(cfg.Documents.Directory, cfg.Documents.Glob, extract.NewExtractor(), logger)
	chunker := indexer.NewChunker(cfg.Documents.ChunkSize, cfg.Documents.ChunkOverlap)
	manager := indexer.NewManager(store, embedder, indexer.NewPipeline(loader, chunker, logger), cfg.VectorStore.Collection,
		indexer.WithLogger(logger),
		indexer.WithEmbedBatch(cfg.Embedding.BatchSize),
		indexer.WithSmokeQuery(cfg.Retrieval.SmokeQuery),
		indexer.WithBuildTimeout(cfg.VectorStore.BuildTimeout()),
	)

	chat, err := llm.NewChatClient(openai, llm.ChatConfig{
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		MaxTokens:   cfg.LLM.MaxTokens,
	})
	if err != nil {
		_ = embedder.Close()
		_ = store.Close()
		return nil, fmt.Errorf("failed to create chat client: %w", err)
	}

	svc := rag.NewService(manager, chat, rag.Options{
		AnswerK:       cfg.Retrieval.AnswerK,
		DiagnoseK:     cfg.Retrieval.DiagnoseK,
		PreviewLength: cfg.Retrieval.PreviewLength,
		Logger:        logger,
	})
	return &Components{Store: store, Embedder: embedder, Manager: manager, Service: svc}, nil
}

// newEmbedder creates the configured embedder, wrapped in an LRU cache when enabled.
func newEmbedder(cfg *config.Config, client *provider.Client) (embedding.Embedder, error) {
	var e embedding.Embedder
	switch cfg.Embedding.Provider {
	case "mock":
		e = embedding.NewMockEmbedder(cfg.Embedding.Dimensions)
	default:
		oe, err := embedding.NewOpenAIEmbedder(client, embedding.OpenAIConfig{
			Model:      cfg.Embedding.Model,
			Dimensions: cfg.Embedding.Dimensions,
			BatchSize:  cfg.Embedding.BatchSize,
		})
		if err != nil {
			return nil, err
		}
		e = oe
	}
	if cfg.Embedding.CacheSize > 0 {
		e = embedding.NewCachedEmbedder(e, cfg.Embedding.CacheSize)
	}
	return e, nil
}

func printUsage() {
	fmt.Println(`villagerag - question answering over La Roca Village documents

Usage:
  villagerag <command> [flags]

Commands:
  server    Start the HTTP API (POST /api/chat, POST /api/diagnose, GET /api/health)
  ask       Answer a question
  diagnose  Show the passages retrieved for a question
  index     Build the vector collection, or confirm the existing one is usable
  status    Show whether documents are loaded
  version   Print version
  help      Show this help

Examples:
  villagerag server --config ./config.yaml
  villagerag ask ¿a qué hora abren?
  villagerag ask --server "" --output json "¿hay parking?"
  villagerag diagnose horarios de apertura
  villagerag index --debug`)
}
