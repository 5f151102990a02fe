// Package main is the SIH CLI entry point.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/Asim-Shah-2004/SIH/internal/cli"
	"github.com/Asim-Shah-2004/SIH/internal/config"
	"github.com/Asim-Shah-2004/SIH/internal/embedding"
	"github.com/Asim-Shah-2004/SIH/internal/interaction"
	"github.com/Asim-Shah-2004/SIH/internal/keyword"
	"github.com/Asim-Shah-2004/SIH/internal/models"
	"github.com/Asim-Shah-2004/SIH/internal/recommend"
	"github.com/Asim-Shah-2004/SIH/internal/search"
	"github.com/Asim-Shah-2004/SIH/internal/server"
	"github.com/Asim-Shah-2004/SIH/internal/storage"
	"github.com/Asim-Shah-2004/SIH/internal/vector"
	"github.com/Asim-Shah-2004/SIH/pkg/utils"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/sih/config.yaml"

// loadConfig loads config from path. When path is the default, it first looks for
// config.yaml in the current directory (for development); if that exists it is used,
// so that "sih server" from the project dir uses the project's config (including debug).
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
	case "recommend":
		runRecommend()
	case "search":
		runSearch()
	case "rebuild-index":
		runRebuildIndex()
	case "interaction":
		runInteraction()
	case "status":
		runStatus()
	case "version", "--version", "-v":
		fmt.Printf("sih version %s\n", version)
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
	debug := fs.Bool("debug", false, "enable debug logging (ranking decisions, index rebuilds, etc.)")
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

	components, err := initializeComponents(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	// Warm the vector index before serving. A failure is not fatal: the first
	// recommendation request triggers a rebuild through the same path.
	warmCtx, warmCancel := context.WithTimeout(context.Background(), 5*time.Minute)
	if err := components.Index.EnsureFresh(warmCtx); err != nil {
		logger.Warn("vector index warmup failed", zap.Error(err))
	}
	warmCancel()

	srv := server.NewServer(
		components.Recommender,
		components.Calculator,
		components.SearchEngine,
		components.Index,
		components.KeywordIndex,
		components.Storage,
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

func runRecommend() {
	fs := flag.NewFlagSet("recommend", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "http://localhost:8080", "server URL (empty = use direct storage when server is not running)")
	limit := fs.Int("limit", 0, "number of recommendations (0 = server default)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	if fs.NArg() < 1 {
		fmt.Println("Usage: sih recommend [flags] <email>")
		os.Exit(1)
	}
	email := fs.Arg(0)

	format, err := cli.ParseOutputFormat(*outputFormat)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	var response *models.RecommendationResponse
	if *serverURL != "" {
		// Use HTTP API when server is running (avoids Bleve/SQLite lock conflict).
		response, err = recommendViaHTTP(*serverURL, email, *limit)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Recommend failed: %v\n", err)
			os.Exit(1)
		}
	} else {
		components, cleanup := mustInitialize(*configPath)
		defer cleanup()
		response, err = components.Recommender.Recommend(context.Background(), email, *limit)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Recommend failed: %v\n", err)
			os.Exit(1)
		}
	}

	if err := cli.WriteRecommendations(os.Stdout, response, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func recommendViaHTTP(serverURL, email string, limit int) (*models.RecommendationResponse, error) {
	query := url.Values{}
	query.Set("email", email)
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
	resp, err := http.Get(serverURL + "/api/v1/recommendations?" + query.Encode())
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	var response models.RecommendationResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &response, nil
}

func runSearch() {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "http://localhost:8080", "server URL (empty = use direct storage when server is not running)")
	limit := fs.Int("limit", 0, "number of results (0 = server default)")
	keywordWeight := fs.Float64("keyword-weight", 0, "weight for keyword scores (0 with semantic-weight 0 = server defaults)")
	semanticWeight := fs.Float64("semantic-weight", 0, "weight for semantic scores")
	minScore := fs.Float64("min-score", 0, "minimum fused score")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	if fs.NArg() < 1 {
		fmt.Println("Usage: sih search [flags] <query>")
		os.Exit(1)
	}
	queryStr := fs.Arg(0)

	format, err := cli.ParseOutputFormat(*outputFormat)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	searchQuery := &models.SearchQuery{
		Query:          queryStr,
		Limit:          *limit,
		KeywordWeight:  *keywordWeight,
		SemanticWeight: *semanticWeight,
		MinScore:       *minScore,
	}

	var response *models.SearchResponse
	if *serverURL != "" {
		response, err = searchViaHTTP(*serverURL, searchQuery)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Search failed: %v\n", err)
			os.Exit(1)
		}
	} else {
		components, cleanup := mustInitialize(*configPath)
		defer cleanup()
		response, err = components.SearchEngine.Search(context.Background(), searchQuery)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Search failed: %v\n", err)
			os.Exit(1)
		}
	}

	if err := cli.WriteSearchResults(os.Stdout, response, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func searchViaHTTP(serverURL string, query *models.SearchQuery) (*models.SearchResponse, error) {
	body, err := json.Marshal(query)
	if err != nil {
		return nil, err
	}
	resp, err := http.Post(serverURL+"/api/v1/posts/search", "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	var response models.SearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &response, nil
}

func runRebuildIndex() {
	fs := flag.NewFlagSet("rebuild-index", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "http://localhost:8080", "server URL (empty = use direct storage)")
	incremental := fs.Bool("incremental", false, "append only posts newer than the current snapshot (direct mode only)")
	_ = fs.Parse(os.Args[2:])

	if *serverURL != "" {
		resp, err := http.Post(*serverURL+"/api/v1/index/rebuild", "application/json", nil)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Rebuild failed: %v\n", err)
			os.Exit(1)
		}
		defer resp.Body.Close()
		b, _ := io.ReadAll(resp.Body)
		if resp.StatusCode != http.StatusOK {
			fmt.Fprintf(os.Stderr, "Rebuild failed (%d): %s\n", resp.StatusCode, string(b))
			os.Exit(1)
		}
		fmt.Println(string(bytes.TrimSpace(b)))
		return
	}

	components, cleanup := mustInitialize(*configPath)
	defer cleanup()
	ctx := context.Background()
	if *incremental {
		added, status, err := components.Index.RebuildIncremental(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Incremental rebuild failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Index %s: %d post(s) added, %d total\n", status, added, components.Index.Size())
		return
	}
	count, err := components.Index.RebuildFull(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Rebuild failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Index rebuilt: %d post(s) indexed\n", count)
}

func runInteraction() {
	fs := flag.NewFlagSet("interaction", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "http://localhost:8080", "server URL (empty = use direct storage)")
	_ = fs.Parse(os.Args[2:])

	if fs.NArg() < 2 {
		fmt.Println("Usage: sih interaction [flags] <source-user-id> <target-user-id>")
		os.Exit(1)
	}
	sourceID, targetID := fs.Arg(0), fs.Arg(1)

	if *serverURL != "" {
		body, _ := json.Marshal(map[string]string{"source_id": sourceID, "target_id": targetID})
		resp, err := http.Post(*serverURL+"/api/v1/interactions", "application/json", bytes.NewReader(body))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Interaction failed: %v\n", err)
			os.Exit(1)
		}
		defer resp.Body.Close()
		b, _ := io.ReadAll(resp.Body)
		if resp.StatusCode != http.StatusOK {
			fmt.Fprintf(os.Stderr, "Interaction failed (%d): %s\n", resp.StatusCode, string(b))
			os.Exit(1)
		}
		fmt.Println(string(bytes.TrimSpace(b)))
		return
	}

	components, cleanup := mustInitialize(*configPath)
	defer cleanup()
	breakdown, err := components.Calculator.Calculate(context.Background(), sourceID, targetID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Interaction failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("interaction strength %s -> %s: %.2f\n", sourceID, targetID, breakdown.Score)
	fmt.Printf("  professional: %.4f\n", breakdown.Professional)
	fmt.Printf("  skill:        %.4f\n", breakdown.Skill)
	fmt.Printf("  social:       %.4f\n", breakdown.Social)
	fmt.Printf("  content:      %.4f\n", breakdown.Content)
	fmt.Printf("  geographic:   %.4f\n", breakdown.Geographic)
	fmt.Printf("  temporal:     %.4f\n", breakdown.Temporal)
	fmt.Printf("  serendipity:  %.4f\n", breakdown.Serendipity)
}

// statusResponse is the shape of GET /api/v1/status response.
type statusResponse struct {
	Users               int64                  `json:"users"`
	Posts               int64                  `json:"posts"`
	VectorIndexSize     int                    `json:"vector_index_size"`
	VectorIndexAgeHours float64                `json:"vector_index_age_hours,omitempty"`
	KeywordIndexSize    uint64                 `json:"keyword_index_size,omitempty"`
	DiskUsageBytes      *int64                 `json:"disk_usage_bytes,omitempty"`
	Config              map[string]interface{} `json:"config,omitempty"`
}

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "http://localhost:8080", "server URL (empty = use direct storage)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	var status statusResponse
	if *serverURL != "" {
		res, err := statusViaHTTP(*serverURL)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Status failed: %v\n", err)
			os.Exit(1)
		}
		status = *res
	} else {
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
		components, err := initializeComponents(cfg, logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
			os.Exit(1)
		}
		defer components.Close()
		ctx := context.Background()
		userCount, err := components.Storage.CountUsers(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Count users failed: %v\n", err)
			os.Exit(1)
		}
		postCount, err := components.Storage.CountPosts(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Count posts failed: %v\n", err)
			os.Exit(1)
		}
		status = statusResponse{
			Users:           userCount,
			Posts:           postCount,
			VectorIndexSize: components.Index.Size(),
			Config: map[string]interface{}{
				"embedding_dimensions": cfg.Embedding.Dimensions,
				"index_staleness_days": cfg.Index.StalenessDays,
				"index_max_posts":      cfg.Index.MaxPosts,
				"database_path":        cfg.Storage.DatabasePath,
				"bleve_index_path":     cfg.Storage.BleveIndexPath,
			},
		}
		if created := components.Index.CreatedAt(); !created.IsZero() {
			status.VectorIndexAgeHours = time.Since(created).Hours()
		}
		if count, err := components.KeywordIndex.DocCount(); err == nil {
			status.KeywordIndexSize = count
		}
		diskBytes, err := storage.DiskUsageBytes(cfg.Storage.DatabasePath, cfg.Storage.BleveIndexPath)
		if err == nil {
			status.DiskUsageBytes = &diskBytes
		}
	}

	switch *outputFormat {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(status); err != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
			os.Exit(1)
		}
	case "text":
		fmt.Printf("users:              %d\n", status.Users)
		fmt.Printf("posts:              %d\n", status.Posts)
		fmt.Printf("vector_index_size:  %d\n", status.VectorIndexSize)
		if status.VectorIndexAgeHours > 0 {
			fmt.Printf("vector_index_age:   %.1fh\n", status.VectorIndexAgeHours)
		}
		if status.KeywordIndexSize > 0 {
			fmt.Printf("keyword_index_size: %d\n", status.KeywordIndexSize)
		}
		if status.DiskUsageBytes != nil {
			fmt.Printf("disk_usage_bytes:   %d\n", *status.DiskUsageBytes)
		}
		if status.Config != nil {
			fmt.Println()
			fmt.Println("# configuration")
			for _, key := range []string{
				"embedding_dimensions", "index_staleness_days", "index_max_posts",
				"database_path", "bleve_index_path",
			} {
				if val, ok := status.Config[key]; ok {
					fmt.Printf("%-21s %v\n", key+":", val)
				}
			}
		}
	default:
		fmt.Fprintf(os.Stderr, "Unknown output format %q; use text or json\n", *outputFormat)
		os.Exit(1)
	}
}

func statusViaHTTP(serverURL string) (*statusResponse, error) {
	resp, err := http.Get(serverURL + "/api/v1/status")
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	var s statusResponse
	if err := json.NewDecoder(resp.Body).Decode(&s); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &s, nil
}

// Components holds initialized services.
type Components struct {
	Storage      storage.Storage
	Embedder     embedding.Embedder
	Index        *vector.Manager
	KeywordIndex keyword.KeywordIndex
	Recommender  *recommend.Engine
	Calculator   *interaction.Calculator
	SearchEngine *search.Engine
}

func (c *Components) Close() {
	if c.Storage != nil {
		_ = c.Storage.Close()
	}
	if c.Embedder != nil {
		_ = c.Embedder.Close()
	}
	if c.KeywordIndex != nil {
		_ = c.KeywordIndex.Close()
	}
}

func initializeComponents(cfg *config.Config, logger *zap.Logger) (*Components, error) {
	store, err := storage.NewSQLiteStorage(cfg.Storage.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	var embedder embedding.Embedder
	onnxEmbedder, err := embedding.NewONNXEmbedder(
		cfg.Embedding.ModelPath,
		cfg.Embedding.Dimensions,
		cfg.Embedding.MaxTokens,
		cfg.Embedding.CacheSize,
	)
	if err != nil {
		if logger != nil {
			logger.Warn("ONNX embedder unavailable, using mock embedder", zap.Error(err))
		}
		embedder = embedding.NewMockEmbedder(cfg.Embedding.Dimensions)
	} else {
		embedder = onnxEmbedder
	}

	keywordIndex, err := keyword.NewBleveIndex(cfg.Storage.BleveIndexPath)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to initialize keyword index: %w", err)
	}

	index := vector.NewManager(store, embedder, logger, cfg.Index)
	recommender := recommend.NewEngine(store, index, logger, cfg.Recommend)
	calculator := interaction.NewCalculator(store, logger, cfg.Interaction)
	searchEngine := search.NewEngine(store, index, keywordIndex, cfg.Search)

	return &Components{
		Storage:      store,
		Embedder:     embedder,
		Index:        index,
		KeywordIndex: keywordIndex,
		Recommender:  recommender,
		Calculator:   calculator,
		SearchEngine: searchEngine,
	}, nil
}

// mustInitialize loads config and components for direct-storage subcommands,
// exiting on failure. Returns the components and a cleanup func.
func mustInitialize(configPath string) (*Components, func()) {
	cfg, _, err := loadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	components, err := initializeComponents(cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	return components, func() {
		components.Close()
		_ = logger.Sync()
	}
}

func printUsage() {
	fmt.Println(`sih - social feed recommendation engine

Usage:
  sih server [flags]                        Start the HTTP server
  sih recommend [flags] <email>             Fetch ranked feed for a user
  sih search [flags] <query>                Hybrid search over posts
  sih rebuild-index [flags]                 Rebuild the semantic vector index
  sih interaction [flags] <source> <target> Compute interaction strength between users
  sih status [flags]                        Show engine/storage/index status
  sih version                               Show version
  sih help                                  Show this help

Server Flags:
  --config string    Config file path (default: /usr/local/etc/sih/config.yaml)
  --debug            Enable debug logging (ranking decisions, index rebuilds, etc.)

Recommend Flags:
  --config string    Config file path (for direct storage mode)
  --server string    Server URL (default: http://localhost:8080). Use empty (--server "") for direct storage.
  --limit int        Number of recommendations (0 = server default)
  --output string    Output format: text or json (default: text)

Search Flags:
  --config string          Config file path (for direct storage mode)
  --server string          Server URL (default: http://localhost:8080). Use empty (--server "") for direct storage.
  --limit int              Number of results (0 = server default)
  --keyword-weight float   Keyword score weight (both weights 0 = server defaults)
  --semantic-weight float  Semantic score weight
  --min-score float        Minimum fused score
  --output string          Output format: text or json (default: text)

Rebuild-index Flags:
  --config string    Config file path (for direct storage mode)
  --server string    Server URL (default: http://localhost:8080). Use empty (--server "") for direct storage.
  --incremental      Append only posts newer than the current snapshot (direct mode only)

Interaction Flags:
  --config string    Config file path (for direct storage mode)
  --server string    Server URL (default: http://localhost:8080). Use empty (--server "") for direct storage.

Status Flags:
  --config string    Config file path (for direct storage mode)
  --server string    Server URL (default: http://localhost:8080). Use empty (--server "") for direct storage.
  --output string    Output format: text or json (default: text)

Examples:
  sih server
  sih recommend alice@example.com
  sih recommend --limit 5 --output json alice@example.com
  sih search "machine learning"
  sih rebuild-index
  sih rebuild-index --server "" --incremental
  sih interaction user-1 user-2
  sih status --output json`)
}
