package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type serverConfig struct {
	Port        int    `koanf:"port" validate:"required"`
	Mode        string `koanf:"mode" validate:"required"`
	Concurrency int    `koanf:"concurrency" validate:"gte=0"`
	BodyLimit   int    `koanf:"body_limit" validate:"gte=0"`
	AppName     string `koanf:"app_name" validate:"required"`
}

type logLevel string

const (
	Debug logLevel = "debug"
	Info  logLevel = "info"
	Warn  logLevel = "warn"
	Error logLevel = "error"
	Fatal logLevel = "fatal"
	Panic logLevel = "panic"
)

type Module string

const (
	ModuleMilvus    Module = "milvus"
	ModuleIngest    Module = "ingest"
	ModuleDatabase  Module = "database"
	ModuleOpenAI    Module = "openai"
	ModuleS3        Module = "s3"
	ModuleCors      Module = "cors"
	ModuleServer    Module = "server"
	ModuleSetting   Module = "setting"
	ModuleUpload    Module = "upload"
	ModuleRetriever Module = "retriever"
	ModuleConvert   Module = "convert"
	ModuleChunking  Module = "chunking"
)

type databaseConfig struct {
	Host         string   `koanf:"host" validate:"required"`
	Port         int      `koanf:"port" validate:"required"`
	User         string   `koanf:"user" validate:"required"`
	Password     string   `koanf:"password"`
	Name         string   `koanf:"name" validate:"required"`
	MaxIdleConns int      `koanf:"max_idle_conns" validate:"gte=0"`
	MaxOpenConns int      `koanf:"max_open_conns" validate:"gte=0"`
	MaxLifetime  int      `koanf:"max_lifetime" validate:"gte=0"`
	Replicas     []string `koanf:"replicas"`
}

type openaiConfig struct {
	Key            string `koanf:"key"`
	EmbeddingModel string `koanf:"embedding_model" validate:"required"`
}

type corsConfig struct {
	AllowOrigins []string `koanf:"allow_origins"`
	AllowMethods []string `koanf:"allow_methods"`
	AllowHeaders []string `koanf:"allow_headers"`
}

type milvusConfig struct {
	Address         string          `koanf:"address" validate:"required"`
	Collection      string          `koanf:"collection" validate:"required"`
	IndexHNSWConfig indexHNSWConfig `koanf:"index_hnsw_config"`
}

type indexHNSWConfig struct {
	MetricType     string `koanf:"metric_type" validate:"required"`
	M              int    `koanf:"m" validate:"required"`
	EfConstruction int    `koanf:"ef_construction" validate:"required"`
	SearchEf       int    `koanf:"search_ef" validate:"gt=0"`
}

type s3Config struct {
	Endpoint  string `koanf:"endpoint"`
	AccessKey string `koanf:"access_key"`
	SecretKey string `koanf:"secret_key"`
	Region    string `koanf:"region" validate:"required"`
	UseSSL    bool   `koanf:"use_ssl"`
	Bucket    string `koanf:"bucket"`
}

// chunkingConfig mirrors chunker.Config; the cross-field tags reject a config
// that the chunk builder would refuse anyway.
type chunkingConfig struct {
	MinChunkSize         int `koanf:"min_chunk_size" validate:"gt=0,ltefield=MaxChunkSize"`
	MaxChunkSize         int `koanf:"max_chunk_size" validate:"gt=0"`
	MinSentencesPerChunk int `koanf:"min_sentences_per_chunk" validate:"gt=0"`
	OverlapSentences     int `koanf:"overlap_sentences" validate:"gte=0,ltfield=MinSentencesPerChunk"`
}

type ingestConfig struct {
	EmbedBatchSize int    `koanf:"embed_batch_size" validate:"gt=0,lte=2048"`
	ArtifactPrefix string `koanf:"artifact_prefix" validate:"required"`
}

type config struct {
	Server   serverConfig   `koanf:"server"`
	Database databaseConfig `koanf:"database"`
	OpenAI   openaiConfig   `koanf:"openai"`
	LogLevel logLevel       `koanf:"log_level" validate:"oneof=debug info warn error fatal panic"`
	Dns      string         `koanf:"dns"`
	S3       s3Config       `koanf:"s3"`
	Cors     corsConfig     `koanf:"cors"`
	Milvus   milvusConfig   `koanf:"milvus"`
	Chunking chunkingConfig `koanf:"chunking"`
	Ingest   ingestConfig   `koanf:"ingest"`
}

func buildMySQLDSN(cfg databaseConfig) string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.Name,
	)
}

var defaultConfig = config{
	Server: serverConfig{
		Port:        8000,
		Mode:        "release",
		Concurrency: 256,
		BodyLimit:   50 * 1024 * 1024,
		AppName:     "pdf2tsv",
	},
	Database: databaseConfig{
		Host:         "127.0.0.1",
		Port:         3306,
		User:         "root",
		Password:     "",
		Name:         "pdf2tsv",
		MaxIdleConns: 5,
		MaxOpenConns: 20,
		MaxLifetime:  30,
	},
	OpenAI: openaiConfig{
		Key:            "",
		EmbeddingModel: "text-embedding-3-small",
	},
	LogLevel: Info,
	S3: s3Config{
		Endpoint:  "http://localhost:9000",
		AccessKey: "minioadmin",
		SecretKey: "minioadmin",
		Region:    "us-east-1",
		UseSSL:    false,
		Bucket:    "",
	},
	Cors: corsConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "X-Request-ID"},
	},
	Milvus: milvusConfig{
		Address:    "localhost:19530",
		Collection: "chunks",
		IndexHNSWConfig: indexHNSWConfig{
			MetricType:     "COSINE",
			M:              16,
			EfConstruction: 200,
			SearchEf:       64,
		},
	},
	Chunking: chunkingConfig{
		MinChunkSize:         100,
		MaxChunkSize:         1000,
		MinSentencesPerChunk: 2,
		OverlapSentences:     1,
	},
	Ingest: ingestConfig{
		EmbedBatchSize: 100,
		ArtifactPrefix: "outputs",
	},
}

var Cfg = defaultConfig

// Default returns a copy of the built-in configuration.
func Default() config {
	return defaultConfig
}

// ChunkingOverride carries chunking values set outside the config sources,
// such as command-line flags. Nil fields leave the loaded value alone.
type ChunkingOverride struct {
	MinChunkSize         *int
	MaxChunkSize         *int
	MinSentencesPerChunk *int
	OverlapSentences     *int
}

func (o ChunkingOverride) apply(c *chunkingConfig) {
	set := func(dst *int, v *int) {
		if v != nil {
			*dst = *v
		}
	}
	set(&c.MinChunkSize, o.MinChunkSize)
	set(&c.MaxChunkSize, o.MaxChunkSize)
	set(&c.MinSentencesPerChunk, o.MinSentencesPerChunk)
	set(&c.OverlapSentences, o.OverlapSentences)
}

// Load reads defaults, then the yaml file at path (if present), then APP_*
// environment variables, then overrides in order, and validates the result
// once all of them are merged.
//
// Nested keys use a double underscore in env names:
// APP_CHUNKING__MAX_CHUNK_SIZE=800 sets chunking.max_chunk_size.
func Load(path string, overrides ...ChunkingOverride) (config, error) {
	k := koanf.New(".")
	cfg := defaultConfig

	// file
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return cfg, fmt.Errorf("%v: load %s: %w", ModuleSetting, path, err)
		}
	}

	// env
	if err := k.Load(env.Provider("APP_", ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, "APP_"))
		return strings.ReplaceAll(key, "__", ".")
	}), nil); err != nil {
		return cfg, fmt.Errorf("%v: load env: %w", ModuleSetting, err)
	}

	// bind
	if err := k.Unmarshal("", &cfg); err != nil {
		return cfg, fmt.Errorf("%v: unmarshal: %w", ModuleSetting, err)
	}

	if cfg.Dns == "" {
		cfg.Dns = buildMySQLDSN(cfg.Database)
	}
	for _, o := range overrides {
		o.apply(&cfg.Chunking)
	}

	if err := validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Init loads the configuration at path into Cfg.
func Init(path string, overrides ...ChunkingOverride) error {
	cfg, err := Load(path, overrides...)
	if err != nil {
		return err
	}
	Cfg = cfg
	return nil
}

func validate(cfg config) error {
	err := validator.New().Struct(cfg)
	if err == nil {
		return nil
	}
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return fmt.Errorf("%v: config validation failed: %w", ModuleSetting, err)
	}
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%v: config validation failed:", ModuleSetting))
	for _, e := range errs {
		sb.WriteString(fmt.Sprintf("\n  • %s: failed '%s' (value: %v)", e.Namespace(), e.Tag(), e.Value()))
	}
	return errors.New(sb.String())
}
