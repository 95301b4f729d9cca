package config

import (
	"fmt"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// envPrefix is the environment variable prefix used by all platform settings.
const envPrefix = "CGI"

// newViper builds a pre-configured Viper instance with the platform's standard
// settings: YAML file type, CGI_ env prefix, automatic env binding, and a key
// replacer that maps "." → "_" so nested keys like "neo4j.uri" resolve to
// "CGI_NEO4J_URI".
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	bindEnvKeys(v)
	return v
}

// envKeys lists the configuration keys that may be overridden through the
// environment.  Viper's AutomaticEnv does not surface unknown keys to
// Unmarshal, so each overridable key is bound explicitly.
var envKeys = []string{
	"server.port", "server.mode",
	"neo4j.uri", "neo4j.user", "neo4j.password", "neo4j.database",
	"redis.addr", "redis.password", "redis.db", "redis.key_prefix",
	"milvus.addr", "milvus.db_name", "milvus.collection", "milvus.embedding_dim",
	"openai.api_key", "openai.base_url", "openai.embedding_model", "openai.chat_model",
	"worker.concurrency", "worker.batch_size",
	"log.level", "log.format",
	"resolution.min_confidence", "resolution.enable_fuzzy_matcher",
	"resolution.fuzzy_min_similarity",
	"decision.use_tier1", "decision.use_tier2", "decision.use_tier3", "decision.use_tier4",
	"decision.tier3_cost", "decision.tier4_cost",
}

func bindEnvKeys(v *viper.Viper) {
	for _, key := range envKeys {
		_ = v.BindEnv(key)
	}
}

// Load reads the YAML file at configPath, merges any CGI_* environment
// variable overrides, applies platform defaults for unset fields, and
// validates the result.
func Load(configPath string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: failed to read config file %q: %w", configPath, err)
	}

	return unmarshalAndFinalize(v)
}

// LoadFromEnv builds a Config entirely from CGI_* environment variables with
// no config file required — the preferred strategy for containerised
// deployments.
func LoadFromEnv() (*Config, error) {
	v := newViper()
	return unmarshalAndFinalize(v)
}

func unmarshalAndFinalize(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to unmarshal configuration: %w", err)
	}

	ApplyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validation failed: %w", err)
	}

	return cfg, nil
}

// Watch monitors configPath for changes and invokes onChange with the newly
// parsed Config whenever the file changes on disk.  It is intended for
// hot-reloading non-critical settings such as log level and blocklists;
// callers are responsible for applying only the safe subset at runtime.
// If the changed file fails to parse or validate, onChange is not called.
func Watch(configPath string, onChange func(*Config)) {
	v := newViper()
	v.SetConfigFile(configPath)

	// Initial read — errors ignored here; callers should call Load first.
	_ = v.ReadInConfig()

	v.WatchConfig()
	v.OnConfigChange(func(_ fsnotify.Event) {
		cfg, err := unmarshalAndFinalize(v)
		if err != nil {
			return
		}
		onChange(cfg)
	})
}

// MustLoad is a convenience wrapper around Load that panics on any error.
// Intended for main() where a config-load failure is always fatal.
func MustLoad(configPath string) *Config {
	cfg, err := Load(configPath)
	if err != nil {
		panic(fmt.Sprintf("config: MustLoad failed: %v", err))
	}
	return cfg
}
