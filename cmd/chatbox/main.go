// Package main is the chatbox CLI entry point.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/vuongthuydung/employee-support-chatbot/internal/cli"
	"github.com/vuongthuydung/employee-support-chatbot/internal/config"
	"github.com/vuongthuydung/employee-support-chatbot/internal/embedding"
	"github.com/vuongthuydung/employee-support-chatbot/internal/extract"
	"github.com/vuongthuydung/employee-support-chatbot/internal/generation"
	"github.com/vuongthuydung/employee-support-chatbot/internal/ingest"
	"github.com/vuongthuydung/employee-support-chatbot/internal/lang"
	"github.com/vuongthuydung/employee-support-chatbot/internal/models"
	"github.com/vuongthuydung/employee-support-chatbot/internal/query"
	"github.com/vuongthuydung/employee-support-chatbot/internal/server"
	"github.com/vuongthuydung/employee-support-chatbot/internal/vector"
	"github.com/vuongthuydung/employee-support-chatbot/internal/warehouse"
	"github.com/vuongthuydung/employee-support-chatbot/pkg/utils"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/chatbox/config.yaml"

// loadConfig loads config from path. When path is the default, it first looks for
// config.yaml in the current directory (for development); if that exists it is used,
// so that "chatbox server" from the project dir uses the project's config.
// Returns the config and the path that was actually loaded.
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
	case "upload":
		runUpload()
	case "ask":
		runAsk()
	case "status":
		runStatus()
	case "version", "--version", "-v":
		fmt.Printf("chatbox version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging (uploads, questions, index updates)")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || *debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.Bool("debug", debugMode),
	)

	components, err := initializeComponents(cfg, logger, debugMode)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	srv := server.NewServer(
		components.Ingest,
		components.Query,
		components.Warehouse,
		components.Index,
		cfg,
		logger,
	)
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(ctx)
}

func runUpload() {
	fs := flag.NewFlagSet("upload", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "http://localhost:8000", "server URL (empty = ingest directly without a running server)")
	_ = fs.Parse(os.Args[2:])

	if fs.NArg() < 1 {
		fmt.Println("Usage: chatbox upload [flags] <file.pdf|file.docx>")
		os.Exit(1)
	}
	path := fs.Arg(0)

	if *serverURL != "" {
		if err := uploadViaHTTP(*serverURL, path); err != nil {
			fmt.Fprintf(os.Stderr, "Upload failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Uploaded and indexed: %s\n", filepath.Base(path))
		return
	}

	// Direct ingestion (when server is not running).
	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	components, err := initializeComponents(cfg, logger, cfg.Debug)
	if err != nil {
		logger.Fatal("Failed to initialize", zap.Error(err))
	}
	defer components.Close()

	content, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to read file: %v\n", err)
		os.Exit(1)
	}
	if err := components.Ingest.Ingest(context.Background(), filepath.Base(path), content); err != nil {
		fmt.Fprintf(os.Stderr, "Upload failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Uploaded and indexed: %s\n", filepath.Base(path))
}

func uploadViaHTTP(serverURL, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, f); err != nil {
		return err
	}
	if err := mw.Close(); err != nil {
		return err
	}

	resp, err := http.Post(serverURL+"/api/upload", mw.FormDataContentType(), &body)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	return nil
}

// buildQuestion joins all positional args with spaces so multi-word questions
// work the same with or without shell quoting.
func buildQuestion(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

// askArgsReorder moves any flags (and their values) that appear after the
// question to the front of the slice so that flag.Parse() sees them. Go's flag
// package stops at the first non-flag argument.
func askArgsReorder(args []string) []string {
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

func runAsk() {
	askArgs := askArgsReorder(os.Args[2:])

	fs := flag.NewFlagSet("ask", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "http://localhost:8000", "server URL (empty = answer directly without a running server)")
	outputFormat := fs.String("output", "text", "output format: text (human-readable) or json (parseable)")
	_ = fs.Parse(askArgs)

	if fs.NArg() < 1 {
		fmt.Println("Usage: chatbox ask [flags] <question>")
		os.Exit(1)
	}
	question := buildQuestion(fs.Args())
	if question == "" {
		fmt.Println("Usage: chatbox ask [flags] <question>")
		os.Exit(1)
	}

	format, err := cli.ParseOutputFormat(*outputFormat)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	if *serverURL != "" {
		answer, err := askViaHTTP(*serverURL, question)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Ask failed: %v\n", err)
			os.Exit(1)
		}
		if err := cli.WriteAnswer(os.Stdout, answer, format); err != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
			os.Exit(1)
		}
		return
	}

	// Direct mode (when server is not running).
	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	components, err := initializeComponents(cfg, logger, cfg.Debug)
	if err != nil {
		logger.Fatal("Failed to initialize", zap.Error(err))
	}
	defer components.Close()

	answer, err := components.Query.Answer(context.Background(), question)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Ask failed: %v\n", err)
		os.Exit(1)
	}
	if err := cli.WriteAnswer(os.Stdout, answer, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func askViaHTTP(serverURL, question string) (*models.Answer, error) {
	body, err := json.Marshal(models.Question{Question: question})
	if err != nil {
		return nil, err
	}
	resp, err := http.Post(serverURL+"/api/ask", "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	var out struct {
		ClosestDocument string `json:"closest_document"`
		Answer          string `json:"answer"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &models.Answer{Source: out.ClosestDocument, Text: out.Answer}, nil
}

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "http://localhost:8000", "server URL (empty = read storage directly)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	format, err := cli.ParseOutputFormat(*outputFormat)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	if *serverURL != "" {
		status, err := statusViaHTTP(*serverURL)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Status failed: %v\n", err)
			os.Exit(1)
		}
		if err := cli.WriteStatus(os.Stdout, status, format); err != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
			os.Exit(1)
		}
		return
	}

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	components, err := initializeComponents(cfg, logger, cfg.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	defer components.Close()

	docCount, err := components.Warehouse.Count()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Count documents failed: %v\n", err)
		os.Exit(1)
	}
	status := &cli.StatusResponse{
		Documents: docCount,
		IndexSize: components.Index.Size(),
		Config: &cli.StatusConfig{
			ChunkSize:        cfg.Chat.ChunkSize,
			ChunkOverlap:     cfg.Chat.ChunkOverlap,
			TopK:             cfg.Chat.TopK,
			PrimaryLanguage:  cfg.Chat.PrimaryLanguage,
			FallbackLanguage: cfg.Chat.FallbackLanguage,
			WarehouseDir:     cfg.Storage.WarehouseDir,
			IndexPath:        cfg.Storage.IndexPath,
		},
	}
	if err := cli.WriteStatus(os.Stdout, status, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func statusViaHTTP(serverURL string) (*cli.StatusResponse, error) {
	resp, err := http.Get(serverURL + "/api/status")
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	var s cli.StatusResponse
	if err := json.NewDecoder(resp.Body).Decode(&s); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &s, nil
}

// Components holds initialized services.
type Components struct {
	Warehouse *warehouse.Warehouse
	Index     vector.Index
	Embedder  embedding.Embedder
	Generator generation.Generator
	Ingest    *ingest.Pipeline
	Query     *query.Pipeline
}

func (c *Components) Close() {
	if c.Index != nil {
		_ = c.Index.Close()
	}
	if c.Embedder != nil {
		_ = c.Embedder.Close()
	}
	if c.Generator != nil {
		_ = c.Generator.Close()
	}
}

func initializeComponents(cfg *config.Config, logger *zap.Logger, debug bool) (*Components, error) {
	wh, err := warehouse.New(cfg.Storage.WarehouseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize warehouse: %w", err)
	}

	index, err := vector.NewSQLiteIndex(cfg.Storage.IndexPath, cfg.Embedding.Dimensions)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize vector index: %w", err)
	}

	var embedder embedding.Embedder
	client, err := embedding.NewClient(embedding.ClientConfig{
		BaseURL:    cfg.Embedding.BaseURL,
		APIKeyEnv:  cfg.Embedding.APIKeyEnv,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
	})
	if err != nil {
		// Mock embeddings keep local development usable without an API key.
		logger.Warn("embedding client unavailable, using mock embeddings", zap.Error(err))
		embedder = embedding.NewMockEmbedder(cfg.Embedding.Dimensions)
	} else {
		embedder = client
	}
	embedder = embedding.NewCachingEmbedder(embedder, cfg.Embedding.CacheSize)

	generator, err := generation.NewClient(generation.ClientConfig{
		BaseURL:   cfg.Generation.BaseURL,
		APIKeyEnv: cfg.Generation.APIKeyEnv,
		Model:     cfg.Generation.Model,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize generation client: %w", err)
	}

	detector := lang.NewBinaryDetector(cfg.Chat.PrimaryLanguage, cfg.Chat.FallbackLanguage)
	chunker := ingest.NewChunker(cfg.Chat.ChunkSize, cfg.Chat.ChunkOverlap)

	ingestOpts := []ingest.PipelineOption{}
	if debug && logger != nil {
		ingestOpts = append(ingestOpts, ingest.WithLogger(logger))
	}
	ingestPipeline := ingest.NewPipeline(wh, extract.NewExtractor(), chunker, embedder, index, ingestOpts...)

	queryOpts := []query.PipelineOption{query.WithTopK(cfg.Chat.TopK)}
	if debug && logger != nil {
		queryOpts = append(queryOpts, query.WithLogger(logger))
	}
	queryPipeline := query.NewPipeline(detector, embedder, index, generator, queryOpts...)

	return &Components{
		Warehouse: wh,
		Index:     index,
		Embedder:  embedder,
		Generator: generator,
		Ingest:    ingestPipeline,
		Query:     queryPipeline,
	}, nil
}

func printUsage() {
	fmt.Println(`chatbox - Self-service document Q&A for employees

Usage:
  chatbox server [flags]            Start the HTTP server
  chatbox upload [flags] <file>     Upload and index a PDF or DOCX document
  chatbox ask [flags] <question>    Ask a question against indexed documents
  chatbox status [flags]            Show warehouse and index status
  chatbox version                   Show version
  chatbox help                      Show this help

Server Flags:
  --config string    Config file path (default: /usr/local/etc/chatbox/config.yaml)
  --debug            Enable debug logging (uploads, questions, index updates)

Upload Flags:
  --config string    Config file path (for direct mode)
  --server string    Server URL (default: http://localhost:8000). Use empty (--server "") to ingest directly when server is not running.

Ask Flags:
  --config string    Config file path (for direct mode)
  --server string    Server URL (default: http://localhost:8000). Use empty (--server "") for direct mode.
  --output string    Output format: text or json (default: text)

Status Flags:
  --config string    Config file path (for direct mode)
  --server string    Server URL (default: http://localhost:8000). Use empty (--server "") for direct mode.
  --output string    Output format: text or json (default: text)

Examples:
  chatbox server
  chatbox upload handbook.pdf
  chatbox ask "how do I request leave?"
  chatbox ask --output json "benefits policy"
  chatbox status
  chatbox status --output json`)
}
