package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

const maxConfigFileSize = 1 << 20

type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Log       LogConfig       `koanf:"log"`
	Chunker   ChunkerConfig   `koanf:"chunker"`
	Retrieval RetrievalConfig `koanf:"retrieval"`
	Catalog   CatalogConfig   `koanf:"catalog"`
	Embedder  EmbedderConfig  `koanf:"embedder"`
	Cache     CacheConfig     `koanf:"cache"`
	Redis     RedisConfig     `koanf:"redis"`
	Qdrant    QdrantConfig    `koanf:"qdrant"`
	Index     IndexConfig     `koanf:"index"`
	Worker    WorkerConfig    `koanf:"worker"`
	Upload    UploadConfig    `koanf:"upload"`
	MCP       MCPConfig       `koanf:"mcp"`
}

type ServerConfig struct {
	ListenAddr         string        `koanf:"listen_addr"`
	ReadTimeout        time.Duration `koanf:"read_timeout"`
	WriteTimeout       time.Duration `koanf:"write_timeout"`
	IdleTimeout        time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout    time.Duration `koanf:"shutdown_timeout"`
	RateLimitPerSecond float64       `koanf:"rate_limit_per_second"`
	RateLimitBurst     int           `koanf:"rate_limit_burst"`
}

type LogConfig struct {
	Level string `koanf:"level"`
	JSON  bool   `koanf:"json"`
}

type ChunkerConfig struct {
	ChunkSizeChars int `koanf:"chunk_size_chars"`
	OverlapChars   int `koanf:"overlap_chars"`
}

type RetrievalConfig struct {
	DefaultLimit          int     `koanf:"default_limit"`
	DefaultScoreThreshold float32 `koanf:"default_score_threshold"`
}

// CatalogConfig bounds the scan behind document listing. With Paginate set the
// catalog follows scroll offsets in pages of ScanLimit until the index is exhausted.
type CatalogConfig struct {
	ScanLimit int  `koanf:"scan_limit"`
	Paginate  bool `koanf:"paginate"`
}

type EmbedderConfig struct {
	Provider  string        `koanf:"provider"`
	Model     string        `koanf:"model"`
	Dimension int           `koanf:"dimension"`
	BatchSize int           `koanf:"batch_size"`
	APIKey    string        `koanf:"api_key"`
	BaseURL   string        `koanf:"base_url"`
	CacheDir  string        `koanf:"cache_dir"`
	MaxLength int           `koanf:"max_length"`
	Timeout   time.Duration `koanf:"timeout"`
}

type CacheConfig struct {
	Enabled bool          `koanf:"enabled"`
	TTL     time.Duration `koanf:"ttl"`
}

type RedisConfig struct {
	Addr     string `koanf:"addr"`
	Password string `koanf:"password"`
	DB       int    `koanf:"db"`
}

type QdrantConfig struct {
	Host       string        `koanf:"host"`
	Port       int           `koanf:"port"`
	APIKey     string        `koanf:"api_key"`
	UseTLS     bool          `koanf:"use_tls"`
	PoolSize   int           `koanf:"pool_size"`
	Collection string        `koanf:"collection"`
	Timeout    time.Duration `koanf:"timeout"`
}

type IndexConfig struct {
	Backend string `koanf:"backend"`
}

type WorkerConfig struct {
	Min         int           `koanf:"min"`
	Max         int           `koanf:"max"`
	IdleTimeout time.Duration `koanf:"idle_timeout"`
	QueueSize   int           `koanf:"queue_size"`
}

type UploadConfig struct {
	MaxBytes int64 `koanf:"max_bytes"`
}

type MCPConfig struct {
	Enabled bool `koanf:"enabled"`
}

func Default() *Config {
	return &Config{
		Server: ServerConfig{
			ListenAddr:         ServerListenAddr,
			ReadTimeout:        ReadTimeout,
			WriteTimeout:       WriteTimeout,
			IdleTimeout:        IdleTimeout,
			ShutdownTimeout:    ShutdownContextTimeout,
			RateLimitPerSecond: RATE_LIMIT_PER_SECOND,
			RateLimitBurst:     BURST_RATE_LIMIT_PER_SECOND,
		},
		Log: LogConfig{Level: "info"},
		Chunker: ChunkerConfig{
			ChunkSizeChars: DefaultChunkSizeChars,
			OverlapChars:   DefaultOverlapChars,
		},
		Retrieval: RetrievalConfig{
			DefaultLimit:          DefaultSearchLimit,
			DefaultScoreThreshold: DefaultScoreThreshold,
		},
		Catalog: CatalogConfig{ScanLimit: DefaultCatalogScanLimit},
		Embedder: EmbedderConfig{
			Provider:  DefaultEmbeddingProvider,
			Model:     DefaultLocalEmbeddingModel,
			Dimension: DefaultEmbeddingDimension,
			BatchSize: DefaultEmbeddingBatchSize,
			MaxLength: 512,
			Timeout:   EmbeddingRequestTimeout,
		},
		Cache: CacheConfig{Enabled: true, TTL: EmbeddingCacheTTL},
		Redis: RedisConfig{Addr: RedisAddr, DB: RedisEmbeddingCacheDB},
		Qdrant: QdrantConfig{
			Host:       QdrantHost,
			Port:       QdrantGrpcPort,
			UseTLS:     QdrantUseTLS,
			PoolSize:   QdrantPoolSize,
			Collection: QdrantCollectionName,
			Timeout:    QdrantRequestTimeout,
		},
		Index: IndexConfig{Backend: IndexBackendQdrant},
		Worker: WorkerConfig{
			Min:         MinWorkerCount,
			Max:         MaxWorkerCount,
			IdleTimeout: IdleWorkerTimeout,
			QueueSize:   WorkerQueueSize,
		},
		Upload: UploadConfig{MaxBytes: MaxUploadBytes},
		MCP:    MCPConfig{Enabled: true},
	}
}

// Load layers configuration: defaults, then the optional YAML file at path,
// then a .env file in the working directory, then DOCVEC_* environment variables.
//
//	DOCVEC_QDRANT_HOST              -> qdrant.host
//	DOCVEC_CHUNKER_CHUNK_SIZE_CHARS -> chunker.chunk_size_chars
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		content, err := readConfigFile(path)
		if err != nil {
			return nil, err
		}
		if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}

	if err := k.Load(env.Provider(ENV_PREFIX, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := Default()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	applyLegacyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func envKey(s string) string {
	lower := strings.ToLower(strings.TrimPrefix(s, ENV_PREFIX))
	parts := strings.SplitN(lower, "_", 2)
	if len(parts) == 1 {
		return lower
	}
	return parts[0] + "." + parts[1]
}

func readConfigFile(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if info.Size() > maxConfigFileSize {
		return nil, fmt.Errorf("config file %s exceeds %d bytes", path, maxConfigFileSize)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return content, nil
}

func loadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// applyLegacyEnv honours the unprefixed variables older deployments set.
func applyLegacyEnv(cfg *Config) {
	if host := os.Getenv("QDRANT_HOST"); host != "" && os.Getenv(ENV_PREFIX+"QDRANT_HOST") == "" {
		cfg.Qdrant.Host = host
	}
	if port, err := strconv.Atoi(os.Getenv("QDRANT_PORT")); err == nil && os.Getenv(ENV_PREFIX+"QDRANT_PORT") == "" {
		cfg.Qdrant.Port = port
	}
	if addr := os.Getenv("REDIS_ADDR"); addr != "" && os.Getenv(ENV_PREFIX+"REDIS_ADDR") == "" {
		cfg.Redis.Addr = addr
	}
	if cfg.Embedder.APIKey == "" {
		switch cfg.Embedder.Provider {
		case EmbeddingProviderGoogle:
			cfg.Embedder.APIKey = os.Getenv("GEMINI_API_KEY")
		case EmbeddingProviderOpenAI:
			cfg.Embedder.APIKey = os.Getenv("OPENAI_API_KEY")
		}
	}
}

func (c *Config) Validate() error {
	var errs []error
	if c.Chunker.ChunkSizeChars <= 0 {
		errs = append(errs, fmt.Errorf("chunker.chunk_size_chars must be positive, got %d", c.Chunker.ChunkSizeChars))
	}
	if c.Chunker.OverlapChars < 0 {
		errs = append(errs, fmt.Errorf("chunker.overlap_chars must not be negative, got %d", c.Chunker.OverlapChars))
	}
	if c.Chunker.ChunkSizeChars > 0 && c.Chunker.OverlapChars >= c.Chunker.ChunkSizeChars {
		// carried overlap alone would fill a chunk, leaving room for one new word each
		errs = append(errs, fmt.Errorf("chunker.overlap_chars must be below chunk_size_chars, got %d >= %d",
			c.Chunker.OverlapChars, c.Chunker.ChunkSizeChars))
	}
	if c.Retrieval.DefaultLimit < MinSearchLimit || c.Retrieval.DefaultLimit > MaxSearchLimit {
		errs = append(errs, fmt.Errorf("retrieval.default_limit must be within [%d,%d], got %d", MinSearchLimit, MaxSearchLimit, c.Retrieval.DefaultLimit))
	}
	if c.Retrieval.DefaultScoreThreshold < 0 || c.Retrieval.DefaultScoreThreshold > 1 {
		errs = append(errs, fmt.Errorf("retrieval.default_score_threshold must be within [0,1], got %v", c.Retrieval.DefaultScoreThreshold))
	}
	if c.Catalog.ScanLimit <= 0 {
		errs = append(errs, fmt.Errorf("catalog.scan_limit must be positive, got %d", c.Catalog.ScanLimit))
	}
	if c.Embedder.Dimension <= 0 {
		errs = append(errs, fmt.Errorf("embedder.dimension must be positive, got %d", c.Embedder.Dimension))
	}
	if c.Embedder.BatchSize <= 0 {
		errs = append(errs, fmt.Errorf("embedder.batch_size must be positive, got %d", c.Embedder.BatchSize))
	}
	switch c.Embedder.Provider {
	case EmbeddingProviderLocal, EmbeddingProviderGoogle, EmbeddingProviderOpenAI:
	default:
		errs = append(errs, fmt.Errorf("embedder.provider %q is not one of local, google, openai", c.Embedder.Provider))
	}
	switch c.Index.Backend {
	case IndexBackendQdrant, IndexBackendMemory:
	default:
		errs = append(errs, fmt.Errorf("index.backend %q is not one of qdrant, memory", c.Index.Backend))
	}
	if c.Qdrant.Collection == "" {
		errs = append(errs, errors.New("qdrant.collection must not be empty"))
	}
	if c.Worker.Min < 1 || c.Worker.Max < c.Worker.Min {
		errs = append(errs, fmt.Errorf("worker pool bounds invalid: min=%d max=%d", c.Worker.Min, c.Worker.Max))
	}
	if c.Upload.MaxBytes <= 0 {
		errs = append(errs, fmt.Errorf("upload.max_bytes must be positive, got %d", c.Upload.MaxBytes))
	}
	return errors.Join(errs...)
}
