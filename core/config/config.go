// Package config loads RecipePipe settings from defaults, an optional
// recipepipe.yaml, a .env file and RECIPEPIPE_* environment variables, in
// increasing order of precedence. Command-line flags bound with
// BindPFlag win over all of them.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/gaurav-prasanna/recipepipe/core/logger"
)

// EnvPrefix prefixes every environment override, e.g. RECIPEPIPE_DATABASE_PATH.
const EnvPrefix = "RECIPEPIPE"

// Config is the full application configuration.
type Config struct {
	Log        logger.Config    `mapstructure:"log"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Fetch      FetchConfig      `mapstructure:"fetch"`
	Import     ImportConfig     `mapstructure:"import"`
	Server     ServerConfig     `mapstructure:"server"`
	Embeddings EmbeddingsConfig `mapstructure:"embeddings"`
	Owner      OwnerConfig      `mapstructure:"owner"`
}

// DatabaseConfig locates the SQLite database.
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// FetchConfig tunes the HTTP fetcher.
type FetchConfig struct {
	Timeout      time.Duration `mapstructure:"timeout"`
	Retries      int           `mapstructure:"retries"`
	UserAgent    string        `mapstructure:"user_agent"`
	MaxBodyBytes int64         `mapstructure:"max_body_bytes"`
}

// ImportConfig tunes batch imports and site discovery.
type ImportConfig struct {
	Concurrency   int     `mapstructure:"concurrency"`
	RatePerSecond float64 `mapstructure:"rate_per_second"`
	MaxPages      int     `mapstructure:"max_pages"`
	PathFilter    string  `mapstructure:"path_filter"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Address      string        `mapstructure:"address"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	CORSOrigins  []string      `mapstructure:"cors_origins"`
}

// EmbeddingsConfig points at an Ollama-compatible embeddings endpoint.
type EmbeddingsConfig struct {
	URL       string `mapstructure:"url"`
	Model     string `mapstructure:"model"`
	ChunkSize int    `mapstructure:"chunk_size"`
}

// OwnerConfig names the single local user that owns every recipe.
type OwnerConfig struct {
	ID string `mapstructure:"id"`
}

// SetDefaults registers the default for every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)
	v.SetDefault("log.output_paths", []string{"stderr"})

	v.SetDefault("database.path", "recipepipe.db")

	v.SetDefault("fetch.timeout", 30*time.Second)
	v.SetDefault("fetch.retries", 3)
	v.SetDefault("fetch.user_agent", "")
	v.SetDefault("fetch.max_body_bytes", 10<<20)

	v.SetDefault("import.concurrency", 4)
	v.SetDefault("import.rate_per_second", 2.0)
	v.SetDefault("import.max_pages", 100)
	v.SetDefault("import.path_filter", "recipe")

	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 60*time.Second)
	v.SetDefault("server.cors_origins", []string{"http://localhost:3000"})

	v.SetDefault("embeddings.url", "http://localhost:11434/api/embeddings")
	v.SetDefault("embeddings.model", "nomic-embed-text")
	v.SetDefault("embeddings.chunk_size", 512)

	v.SetDefault("owner.id", "local")
}

// Setup prepares v: loads .env, enables RECIPEPIPE_* overrides, sets
// defaults and reads the config file. A missing file is not an error; an
// explicit cfgFile that cannot be read is.
func Setup(v *viper.Viper, cfgFile string) error {
	// .env is optional.
	_ = godotenv.Load()

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	SetDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("recipepipe")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("reading config file: %w", err)
	}
	return nil
}

// Load decodes v into a Config and validates it.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the pipeline cannot run with.
func (c *Config) Validate() error {
	switch {
	case c.Database.Path == "":
		return errors.New("database.path must be set")
	case c.Fetch.Retries < 0:
		return fmt.Errorf("fetch.retries must not be negative, got %d", c.Fetch.Retries)
	case c.Import.Concurrency < 1:
		return fmt.Errorf("import.concurrency must be at least 1, got %d", c.Import.Concurrency)
	case c.Import.RatePerSecond < 0:
		return fmt.Errorf("import.rate_per_second must not be negative, got %g", c.Import.RatePerSecond)
	case c.Owner.ID == "":
		return errors.New("owner.id must be set")
	}
	return nil
}
