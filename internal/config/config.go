// Package config loads the screener configuration from a file, the environment and flags.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/jonathan/resume-screener/internal/experience"
	"github.com/jonathan/resume-screener/internal/fetch"
	"github.com/jonathan/resume-screener/internal/ingestion"
	"github.com/jonathan/resume-screener/internal/llm"
	"github.com/jonathan/resume-screener/internal/ranking"
	"github.com/jonathan/resume-screener/internal/schemas"
	"github.com/jonathan/resume-screener/internal/similarity"
	"github.com/jonathan/resume-screener/internal/skills"
	embedded "github.com/jonathan/resume-screener/schemas"
)

const (
	// EnvPrefix prefixes every environment override, e.g. SCREENER_SCORING_STRATEGY.
	EnvPrefix = "SCREENER"
	// DefaultConfigName is looked up in the working directory when no --config is given.
	DefaultConfigName = "resume_screener"
	// DefaultSQLitePath is the CLI database when no Postgres URL is configured.
	DefaultSQLitePath = "data/resume_screener.db"
)

// Server defaults
const (
	DefaultPort           = 8080
	DefaultMaxUploadBytes = 10 << 20
	DefaultMaxFileBytes   = 5 << 20
	DefaultMaxFiles       = 50
)

// Config is the full screener configuration.
type Config struct {
	Debug       bool            `mapstructure:"debug" json:"debug"`
	LogJSON     bool            `mapstructure:"log_json" json:"log_json"`
	DatabaseURL string          `mapstructure:"database_url" json:"-"`
	SQLitePath  string          `mapstructure:"sqlite_path" json:"sqlite_path"`
	Server      ServerConfig    `mapstructure:"server" json:"server"`
	Auth        AuthConfig      `mapstructure:"auth" json:"-"`
	Scoring     ScoringConfig   `mapstructure:"scoring" json:"scoring"`
	Embedding   EmbeddingConfig `mapstructure:"embedding" json:"embedding"`
	Fetch       FetchConfig     `mapstructure:"fetch" json:"fetch"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port           int   `mapstructure:"port" json:"port"`
	MaxUploadBytes int64 `mapstructure:"max_upload_bytes" json:"max_upload_bytes"`
	MaxFileBytes   int64 `mapstructure:"max_file_bytes" json:"max_file_bytes"`
	MaxFiles       int   `mapstructure:"max_files" json:"max_files"`
}

// AuthConfig holds credential and session secrets.
type AuthConfig struct {
	JWTSecret          string `mapstructure:"jwt_secret"`
	JWTExpirationHours int    `mapstructure:"jwt_expiration_hours"`
	BcryptCost         int    `mapstructure:"bcrypt_cost"`
	PasswordPepper     string `mapstructure:"password_pepper"`
}

// ScoringConfig selects the similarity strategy, the weighting scheme and the extractors.
type ScoringConfig struct {
	Strategy   string        `mapstructure:"strategy" json:"strategy"`
	Scheme     string        `mapstructure:"scheme" json:"scheme"`
	Weights    WeightsConfig `mapstructure:"weights" json:"weights"`
	Skills     []string      `mapstructure:"skills" json:"skills,omitempty"`
	SkillsFile string        `mapstructure:"skills_file" json:"skills_file,omitempty"`
	YearUnits  []string      `mapstructure:"year_units" json:"year_units,omitempty"`
	Stopwords  []string      `mapstructure:"stopwords" json:"stopwords,omitempty"`
}

// StopwordsEnglish in scoring.stopwords stands for the built-in English list.
const StopwordsEnglish = "english"

// WeightsConfig overrides individual weights. Unset fields take the scheme default.
type WeightsConfig struct {
	Similarity    *float64 `mapstructure:"similarity" json:"similarity,omitempty"`
	Skills        *float64 `mapstructure:"skills" json:"skills,omitempty"`
	Experience    *float64 `mapstructure:"experience" json:"experience,omitempty"`
	ExperienceCap *int     `mapstructure:"experience_cap" json:"experience_cap,omitempty"`
}

// EmbeddingConfig configures the embedding provider used by the embedding strategy.
type EmbeddingConfig struct {
	Provider  string        `mapstructure:"provider" json:"provider"`
	Model     string        `mapstructure:"model" json:"model"`
	BaseURL   string        `mapstructure:"base_url" json:"base_url,omitempty"`
	APIKeyEnv string        `mapstructure:"api_key_env" json:"api_key_env,omitempty"`
	Timeout   time.Duration `mapstructure:"timeout" json:"timeout"`
}

// FetchConfig configures job description retrieval from a URL.
type FetchConfig struct {
	UseBrowser     bool          `mapstructure:"use_browser" json:"use_browser"`
	Timeout        time.Duration `mapstructure:"timeout" json:"timeout"`
	BrowserTimeout time.Duration `mapstructure:"browser_timeout" json:"browser_timeout"`
}

// legacyEnv maps keys to the unprefixed variables used by deployments.
var legacyEnv = map[string]string{
	"database_url":              "DATABASE_URL",
	"auth.jwt_secret":           "JWT_SECRET",
	"auth.jwt_expiration_hours": "JWT_EXPIRATION_HOURS",
	"auth.bcrypt_cost":          "BCRYPT_COST",
	"auth.password_pepper":      "PASSWORD_PEPPER",
}

// optionalKeys have no default; they are only set by a file, the environment or a flag.
var optionalKeys = []string{
	"scoring.weights.similarity",
	"scoring.weights.skills",
	"scoring.weights.experience",
	"scoring.weights.experience_cap",
}

// FlagKeys maps CLI flag names to configuration keys. BindFlags binds the ones present.
var FlagKeys = map[string]string{
	"debug":              "debug",
	"log-json":           "log_json",
	"database-url":       "database_url",
	"sqlite":             "sqlite_path",
	"port":               "server.port",
	"strategy":           "scoring.strategy",
	"scheme":             "scoring.scheme",
	"skills-file":        "scoring.skills_file",
	"embedding-provider": "embedding.provider",
	"embedding-model":    "embedding.model",
	"jd-browser":         "fetch.use_browser",
}

// NewViper returns a viper instance with defaults and environment bindings applied.
func NewViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range legacyEnv {
		_ = v.BindEnv(key, envName(key), env)
	}
	for _, key := range optionalKeys {
		_ = v.BindEnv(key, envName(key))
	}
	return v
}

func envName(key string) string {
	return EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("debug", false)
	v.SetDefault("log_json", false)
	v.SetDefault("database_url", "")
	v.SetDefault("sqlite_path", DefaultSQLitePath)

	v.SetDefault("server.port", DefaultPort)
	v.SetDefault("server.max_upload_bytes", DefaultMaxUploadBytes)
	v.SetDefault("server.max_file_bytes", DefaultMaxFileBytes)
	v.SetDefault("server.max_files", DefaultMaxFiles)

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.jwt_expiration_hours", DefaultJWTExpirationHours)
	v.SetDefault("auth.bcrypt_cost", DefaultBcryptCost)
	v.SetDefault("auth.password_pepper", "")

	v.SetDefault("scoring.strategy", similarity.NameTFIDF)
	v.SetDefault("scoring.scheme", string(ranking.SchemeAdditive))
	v.SetDefault("scoring.skills", []string{})
	v.SetDefault("scoring.skills_file", "")
	v.SetDefault("scoring.year_units", []string{})
	v.SetDefault("scoring.stopwords", []string{})

	// Empty embedding fields take the provider's defaults.
	v.SetDefault("embedding.provider", string(llm.ProviderGemini))
	v.SetDefault("embedding.model", "")
	v.SetDefault("embedding.base_url", "")
	v.SetDefault("embedding.api_key_env", "")
	v.SetDefault("embedding.timeout", time.Duration(0))

	v.SetDefault("fetch.use_browser", false)
	v.SetDefault("fetch.timeout", 30*time.Second)
	v.SetDefault("fetch.browser_timeout", 60*time.Second)
}

// BindFlags binds every flag in fs that has an entry in FlagKeys.
func BindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	for name, key := range FlagKeys {
		flag := fs.Lookup(name)
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("failed to bind flag --%s: %w", name, err)
		}
	}
	return nil
}

// Load reads the config file at path (or resume_screener.yaml in the working
// directory when path is empty, if it exists), unmarshals and validates it.
func Load(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName(DefaultConfigName)
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the scoring section against its schema and the remaining
// settings for consistency.
func (c *Config) Validate() error {
	if err := schemas.Validate(embedded.ScoringConfig, c.Scoring); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if _, err := c.Scoring.RankingWeights(); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if c.Scoring.Strategy == similarity.NameEmbedding {
		if err := c.Embedding.LLMConfig().Validate(); err != nil {
			return fmt.Errorf("config error: %w", err)
		}
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("config error: 'server.port' out of range: %d", c.Server.Port)
	}
	if c.Server.MaxUploadBytes <= 0 {
		return fmt.Errorf("config error: 'server.max_upload_bytes' must be positive")
	}
	if c.Server.MaxFileBytes <= 0 || c.Server.MaxFileBytes > c.Server.MaxUploadBytes {
		return fmt.Errorf("config error: 'server.max_file_bytes' must be positive and at most 'server.max_upload_bytes'")
	}
	if c.Server.MaxFiles <= 0 {
		return fmt.Errorf("config error: 'server.max_files' must be positive")
	}
	return nil
}

// RankingWeights returns the scheme defaults with any configured overrides applied.
func (s ScoringConfig) RankingWeights() (ranking.Weights, error) {
	w, err := ranking.DefaultWeightsFor(ranking.Scheme(s.Scheme))
	if err != nil {
		return ranking.Weights{}, err
	}
	if s.Weights.Similarity != nil {
		w.Similarity = *s.Weights.Similarity
	}
	if s.Weights.Skills != nil {
		w.Skills = *s.Weights.Skills
	}
	if s.Weights.Experience != nil {
		w.Experience = *s.Weights.Experience
	}
	if s.Weights.ExperienceCap != nil {
		w.ExperienceCap = *s.Weights.ExperienceCap
	}
	return w, w.Validate()
}

// Vocabulary returns the skill vocabulary: the skills file, else the inline
// list, else the built-in default.
func (s ScoringConfig) Vocabulary() (*skills.Vocabulary, error) {
	switch {
	case s.SkillsFile != "":
		return skills.LoadVocabularyFile(s.SkillsFile)
	case len(s.Skills) > 0:
		return skills.NewVocabulary(s.Skills)
	default:
		return skills.Default(), nil
	}
}

// Extractor returns the experience extractor for the configured year units.
func (s ScoringConfig) Extractor() (*experience.Extractor, error) {
	return experience.NewExtractor(s.YearUnits)
}

// TFIDFOptions returns the TF-IDF options for scoring.stopwords. The entry
// "english" adds the built-in English list; any other entry is a literal token.
func (s ScoringConfig) TFIDFOptions() []similarity.TFIDFOption {
	var opts []similarity.TFIDFOption
	words := make([]string, 0, len(s.Stopwords))
	for _, w := range s.Stopwords {
		if strings.EqualFold(w, StopwordsEnglish) {
			opts = append(opts, similarity.WithEnglishStopwords())
			continue
		}
		words = append(words, w)
	}
	if len(words) > 0 {
		opts = append(opts, similarity.WithStopwords(words))
	}
	return opts
}

// LLMConfig converts the section to the embedding client config.
func (e EmbeddingConfig) LLMConfig() *llm.Config {
	base := llm.DefaultGeminiConfig()
	if llm.Provider(e.Provider) == llm.ProviderOpenAI {
		base = llm.DefaultOpenAIConfig()
	}
	cfg := *base
	cfg.Provider = llm.Provider(e.Provider)
	if e.Model != "" {
		cfg.Model = e.Model
	}
	if e.BaseURL != "" {
		cfg.BaseURL = e.BaseURL
	}
	if e.APIKeyEnv != "" {
		cfg.APIKeyEnv = e.APIKeyEnv
	}
	if e.Timeout > 0 {
		cfg.Timeout = e.Timeout
	}
	return &cfg
}

// URLOptions returns the options for fetching a job description from a URL.
func (f FetchConfig) URLOptions(log *zap.Logger) ingestion.URLOptions {
	opts := fetch.DefaultOptions()
	if f.Timeout > 0 {
		opts.Timeout = f.Timeout
	}
	return ingestion.URLOptions{
		Fetch:          opts,
		UseBrowser:     f.UseBrowser,
		BrowserTimeout: f.BrowserTimeout,
		Logger:         log,
	}
}
