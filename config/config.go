package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the search engine.
type Config struct {
	Preprocess PreprocessConfig `yaml:"preprocess"`
	Intent     IntentConfig     `yaml:"intent"`
	Context    ContextConfig    `yaml:"context"`
	Scoring    ScoringConfig    `yaml:"scoring"`
	Search     SearchConfig     `yaml:"search"`
	Retrieval  RetrievalConfig  `yaml:"retrieval"`
	Response   ResponseConfig   `yaml:"response"`
	Storage    StorageConfig    `yaml:"storage"`
	Server     ServerConfig     `yaml:"server"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// PreprocessConfig holds the normalization and expansion tables.
type PreprocessConfig struct {
	Language       string      `yaml:"language"`   // "id" or "en"
	Dictionary     string      `yaml:"dictionary"` // optional root-word list for the stemmer
	Phonetic       Table       `yaml:"phonetic"` // canonical -> misspellings, order matters
	Synonyms       Table       `yaml:"synonyms"`
	Entities       Table       `yaml:"entities"`
	StopWords      []string    `yaml:"stop_words"` // replaces the provider list unless MergeStopWords
	MergeStopWords bool        `yaml:"merge_stop_words"`
	Extractors     []Extractor `yaml:"extractors"`
	FeaturePattern string      `yaml:"feature_pattern"`
	Positive       []string    `yaml:"positive_words"`
	Negative       []string    `yaml:"negative_words"`
}

// Extractor is a named attribute pattern with exactly one capture group.
type Extractor struct {
	Name    string `yaml:"name"`
	Pattern string `yaml:"pattern"`
}

// IntentConfig holds classifier thresholds, rule tables and training data.
type IntentConfig struct {
	HighThreshold        float64           `yaml:"high_threshold"`
	LowThreshold         float64           `yaml:"low_threshold"`
	ContactTriggers      []string          `yaml:"contact_triggers"`
	Rules                []IntentRule      `yaml:"rules"`
	Conversational       Table             `yaml:"conversational"`
	Sales                Table             `yaml:"sales"`
	Training             []TrainingExample `yaml:"training"`
	ContactLabel         string            `yaml:"contact_label"`
	ConversationalPrefix string            `yaml:"conversational_prefix"`
	SalesPrefix          string            `yaml:"sales_prefix"`
	FallbackLabel        string            `yaml:"fallback_label"`
}

// IntentRule is a custom intent matched by entity presence and/or tokens.
type IntentRule struct {
	Label    string   `yaml:"label"`
	Entities []string `yaml:"entities"`
	Tokens   []string `yaml:"tokens"`
}

// TrainingExample is one labelled phrase for the statistical classifier.
type TrainingExample struct {
	Text  string `yaml:"text"`
	Label string `yaml:"label"`
}

// ContextConfig holds conversation memory settings.
type ContextConfig struct {
	TTL               time.Duration `yaml:"ttl"`
	MaxInteractions   int           `yaml:"max_interactions"`
	LockAbove         float64       `yaml:"lock_above"`
	UnlockBelow       float64       `yaml:"unlock_below"`
	MaxAnaphoraLength int           `yaml:"max_anaphora_length"`
	ReferenceTriggers []string      `yaml:"reference_triggers"` // "-nya" matches as a word suffix
}

// ScoringConfig holds the relevance function's tunables.
type ScoringConfig struct {
	Weights         Weights     `yaml:"weights"`
	StockPattern    string      `yaml:"stock_pattern"`
	ProductPattern  string      `yaml:"product_pattern"`
	CrawlerCategory string      `yaml:"crawler_category"`
	BoostRules      []BoostRule `yaml:"boost_rules"`
}

// Weights are the magnitudes of every named scoring contribution.
type Weights struct {
	Retrieval           float64 `yaml:"retrieval"`
	TokenMatch          float64 `yaml:"token_match"`
	Sequence            float64 `yaml:"sequence"`
	TitleSimilarity     float64 `yaml:"title_similarity"`
	SimilarityThreshold float64 `yaml:"similarity_threshold"`
	TitleHit            float64 `yaml:"title_hit"`
	CategoryHit         float64 `yaml:"category_hit"`
	ContextCategory     float64 `yaml:"context_category"`
	ContextItem         float64 `yaml:"context_item"`
	Recommended         float64 `yaml:"recommended"`
	Urgent              float64 `yaml:"urgent"`
	UrgentStock         float64 `yaml:"urgent_stock"`
	SalesPrice          float64 `yaml:"sales_price"`
	SalesProduct        float64 `yaml:"sales_product"`
	CrawlerPenalty      float64 `yaml:"crawler_penalty"`
}

// BoostRule adds Boost to items matching every non-empty condition list.
// Each list is OR-matched internally.
type BoostRule struct {
	Name       string   `yaml:"name"`
	Entities   []string `yaml:"entities"`
	Tokens     []string `yaml:"tokens"`
	Categories []string `yaml:"categories"`
	Intents    []string `yaml:"intents"` // label prefixes
	Boost      float64  `yaml:"boost"`
}

// SearchConfig holds orchestration settings.
type SearchConfig struct {
	Limit                  int      `yaml:"limit"`
	MinScore               float64  `yaml:"min_score"`
	MinScoreConversational float64  `yaml:"min_score_conversational"`
	SplitPunctuation       string   `yaml:"split_punctuation"`
	Connectors             []string `yaml:"connectors"`
	TriggerCategories      Table    `yaml:"trigger_categories"`
	AnswerJoiner           string   `yaml:"answer_joiner"`
	MaxQueryLength         int      `yaml:"max_query_length"`
	ContextInjectScore     float64  `yaml:"context_inject_score"`
	ComparisonTriggers     []string `yaml:"comparison_triggers"`
	CompareMaxItems        int      `yaml:"compare_max_items"`
}

// RetrievalConfig holds local index and remote endpoint settings.
type RetrievalConfig struct {
	Index        bool             `yaml:"index"` // false runs without a local index
	Threshold    float64          `yaml:"threshold"`
	FieldWeights FieldWeights     `yaml:"field_weights"`
	CacheSize    int              `yaml:"cache_size"`
	CacheTTL     time.Duration    `yaml:"cache_ttl"`
	Remote       []RemoteEndpoint `yaml:"remote"`
	Timeout      time.Duration    `yaml:"timeout"`
}

// FieldWeights weigh where a term matched inside an item.
type FieldWeights struct {
	Title       float64 `yaml:"title"`
	Keywords    float64 `yaml:"keywords"`
	Description float64 `yaml:"description"`
	Content     float64 `yaml:"content"`
}

// RemoteEndpoint is a remote retrieval URL queried with `?q=`.
type RemoteEndpoint struct {
	URL     string            `yaml:"url"`
	Headers map[string]string `yaml:"headers"`
}

// ResponseConfig holds the default composer's templates.
type ResponseConfig struct {
	Templates   map[string]string `yaml:"templates"`
	Contact     string            `yaml:"contact"`
	Apology     string            `yaml:"apology"` // prefixed when the customer sounds unhappy
	Currency    string            `yaml:"currency"`
	Locale      string            `yaml:"locale"`
	MaxFeatures int               `yaml:"max_features"`
}

// StorageConfig selects where sessions and the catalog are kept.
type StorageConfig struct {
	Backend string      `yaml:"backend"` // "memory", "bolt", "redis"
	Redis   RedisConfig `yaml:"redis"`
}

// RedisConfig holds Redis connection settings for the session store.
type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	Prefix   string        `yaml:"prefix"`
	TTL      time.Duration `yaml:"ttl"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr           string        `yaml:"addr"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "console" or "json"
}

// Load loads configuration from a YAML file. Ordered tables in the file are
// merged onto the defaults by key; everything else replaces the default.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil // Return defaults if no config file
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	cfg.mergeTables(DefaultConfig())

	return cfg, nil
}

// LoadFromDir loads configuration from a directory (looks for chatsearch.yaml).
func LoadFromDir(dir string) (*Config, error) {
	path := filepath.Join(dir, "chatsearch.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	path = filepath.Join(dir, ".chatsearch", "config.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	return DefaultConfig(), nil
}

// mergeTables re-applies the file's tables on top of the defaults so a file
// that overrides one synonym does not drop the rest.
func (c *Config) mergeTables(def *Config) {
	c.Preprocess.Phonetic = def.Preprocess.Phonetic.Merge(c.Preprocess.Phonetic)
	c.Preprocess.Synonyms = def.Preprocess.Synonyms.Merge(c.Preprocess.Synonyms)
	c.Preprocess.Entities = def.Preprocess.Entities.Merge(c.Preprocess.Entities)
	c.Intent.Conversational = def.Intent.Conversational.Merge(c.Intent.Conversational)
	c.Intent.Sales = def.Intent.Sales.Merge(c.Intent.Sales)
	c.Search.TriggerCategories = def.Search.TriggerCategories.Merge(c.Search.TriggerCategories)

	templates := make(map[string]string, len(def.Response.Templates))
	for k, v := range def.Response.Templates {
		templates[k] = v
	}
	for k, v := range c.Response.Templates {
		templates[k] = v
	}
	c.Response.Templates = templates
}

type envOverrides struct {
	LogLevel       string `envconfig:"LOG_LEVEL"`
	LogFormat      string `envconfig:"LOG_FORMAT"`
	ServerAddr     string `envconfig:"SERVER_ADDR"`
	StorageBackend string `envconfig:"STORAGE_BACKEND"`
	RedisAddr      string `envconfig:"REDIS_ADDR"`
	RedisPassword  string `envconfig:"REDIS_PASSWORD"`
	RemoteToken    string `envconfig:"REMOTE_TOKEN"`
}

// ApplyEnv overlays CHATSEARCH_* environment variables (and a .env file, if
// present) onto the configuration.
func (c *Config) ApplyEnv() error {
	_ = godotenv.Load()

	var env envOverrides
	if err := envconfig.Process("CHATSEARCH", &env); err != nil {
		return fmt.Errorf("failed to process env: %w", err)
	}

	if env.LogLevel != "" {
		c.Logging.Level = env.LogLevel
	}
	if env.LogFormat != "" {
		c.Logging.Format = env.LogFormat
	}
	if env.ServerAddr != "" {
		c.Server.Addr = env.ServerAddr
	}
	if env.StorageBackend != "" {
		c.Storage.Backend = env.StorageBackend
	}
	if env.RedisAddr != "" {
		c.Storage.Redis.Addr = env.RedisAddr
	}
	if env.RedisPassword != "" {
		c.Storage.Redis.Password = env.RedisPassword
	}
	if env.RemoteToken != "" {
		for i := range c.Retrieval.Remote {
			if c.Retrieval.Remote[i].Headers == nil {
				c.Retrieval.Remote[i].Headers = map[string]string{}
			}
			if _, ok := c.Retrieval.Remote[i].Headers["Authorization"]; !ok {
				c.Retrieval.Remote[i].Headers["Authorization"] = "Bearer " + env.RemoteToken
			}
		}
	}
	return nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// CatalogDBPath returns the path to the catalog database.
func CatalogDBPath(dir string) string {
	return filepath.Join(dir, ".chatsearch", "catalog.db")
}

// EnsureDataDir ensures the .chatsearch directory exists.
func EnsureDataDir(dir string) error {
	return os.MkdirAll(filepath.Join(dir, ".chatsearch"), 0755)
}
