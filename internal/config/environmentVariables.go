package config

import (
	"time"
)

const (
	TRACE_ID_KEY                = "traceId"
	TRACE_ID_HEADER             = "X-Trace-Id"
	ENV_PREFIX                  = "DOCVEC_"
	RATE_LIMIT_PER_SECOND       = 20
	BURST_RATE_LIMIT_PER_SECOND = 40

	ServiceName    = "docvector"
	ServiceVersion = "1.0.0"

	//chunker
	DefaultChunkSizeChars = 1000
	DefaultOverlapChars   = 200

	//retrieval
	DefaultSearchLimit    = 10
	MinSearchLimit        = 1
	MaxSearchLimit        = 100
	DefaultScoreThreshold = 0.7

	//catalog
	DefaultCatalogScanLimit = 1000

	//embeddings
	EmbeddingProviderLocal  = "local"
	EmbeddingProviderGoogle = "google"
	EmbeddingProviderOpenAI = "openai"

	DefaultEmbeddingProvider   = EmbeddingProviderLocal
	DefaultLocalEmbeddingModel = "sentence-transformers/all-MiniLM-L6-v2"
	DefaultEmbeddingDimension  = 384
	DefaultEmbeddingBatchSize  = 64
	GoogleEmbeddingModel       = "gemini-embedding-001"
	OpenAIEmbeddingModel       = "text-embedding-3-small"
	EmbeddingRequestTimeout    = 60 * time.Second

	//embedding cache
	EmbeddingCacheTTL = 24 * time.Hour

	//worker pool
	MinWorkerCount    = 1
	MaxWorkerCount    = 8
	IdleWorkerTimeout = 1 * time.Minute
	WorkerQueueSize   = 100

	//serverTimeouts
	ReadTimeout            = 15 * time.Second
	WriteTimeout           = 120 * time.Second
	IdleTimeout            = 120 * time.Second
	ShutdownContextTimeout = 10 * time.Second

	//server listening port
	ServerListenAddr = ":8000"

	//upload
	MaxUploadBytes = 10 << 20 //10mb
	PDFPageTimeout = 10 * time.Second

	//vectorDB
	IndexBackendQdrant   = "qdrant"
	IndexBackendMemory   = "memory"
	QdrantCollectionName = "documents"
	QdrantHost           = "localhost"
	QdrantGrpcPort       = 6334
	QdrantUseTLS         = false //set for https
	QdrantPoolSize       = 1     //2-5 is preferred for prod according to documentation
	QdrantRequestTimeout = 30 * time.Second

	//http pooling for embedding providers
	MaxIdleConns        = 50
	MaxIdleConnsPerHost = 25
	IdleConnTimeout     = 60 * time.Second

	//redis
	redisHost = "127.0.0.1"
	redisPort = "6379"
	RedisAddr = redisHost + ":" + redisPort

	//redis has 16 DB we can use
	RedisEmbeddingCacheDB = 2
)
