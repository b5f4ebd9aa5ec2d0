package config

import (
	"errors"
	"log"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/codemind-go/internal/models"
)

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `yaml:"port"`
	Environment    string   `yaml:"environment"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// GoogleConfig holds Vertex AI configuration
type GoogleConfig struct {
	APIKey    string                   `yaml:"api_key"`
	ProjectID string                   `yaml:"project_id"`
	Location  string                   `yaml:"location"`
	Models    []models.ModelDefinition `yaml:"models"`
}

// RetrieverConfig holds keyword search configuration
type RetrieverConfig struct {
	TopK             int `yaml:"top_k"`              // 0 returns every match
	MinKeywordLength int `yaml:"min_keyword_length"` // query words shorter than this are ignored
}

// SessionConfig selects where the conversation blob is persisted
type SessionConfig struct {
	Backend       string        `yaml:"backend"` // memory, redis or file
	HistoryKey    string        `yaml:"history_key"`
	TTL           time.Duration `yaml:"ttl"`
	RedisAddr     string        `yaml:"redis_addr,omitempty"`
	RedisPassword string        `yaml:"redis_password,omitempty"`
	RedisDB       int           `yaml:"redis_db,omitempty"`
	FilePath      string        `yaml:"file_path,omitempty"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level"`
	FilePath string `yaml:"file_path"`
}

// UploadConfig limits custom dataset uploads
type UploadConfig struct {
	MaxFileBytes   int64    `yaml:"max_file_bytes"`
	TextExtensions []string `yaml:"text_extensions"`
}

// FileFiltersConfig holds directory import filters
type FileFiltersConfig struct {
	ExcludedDirs  []string `yaml:"excluded_dirs"`
	ExcludedFiles []string `yaml:"excluded_files"`
}

// Config holds the overall application configuration
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Google      GoogleConfig      `yaml:"google"`
	Retriever   RetrieverConfig   `yaml:"retriever"`
	Session     SessionConfig     `yaml:"session"`
	Logging     LoggingConfig     `yaml:"logging"`
	Upload      UploadConfig      `yaml:"upload"`
	FileFilters FileFiltersConfig `yaml:"file_filters"`
}

// DefaultTextExtensions are accepted as text regardless of the declared MIME type.
var DefaultTextExtensions = []string{
	".ts", ".js", ".tsx", ".jsx", ".json", ".md", ".txt", ".py", ".java", ".html",
	".css", ".scss", ".yml", ".yaml", ".sh", ".sample", ".xml", ".csv", ".go",
}

// Default returns a configuration usable without any file.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           "8001",
			Environment:    "development",
			AllowedOrigins: []string{"*"},
		},
		Google: GoogleConfig{
			Location: "us-central1",
			Models:   append([]models.ModelDefinition(nil), models.DefaultModels...),
		},
		Retriever: RetrieverConfig{MinKeywordLength: 3},
		Session: SessionConfig{
			Backend:    "memory",
			HistoryKey: "codemind-history",
			RedisAddr:  "localhost:6379",
			FilePath:   ".codemind/session.json",
		},
		Logging: LoggingConfig{Level: "info", FilePath: "codemind.log"},
		Upload: UploadConfig{
			MaxFileBytes:   5 << 20,
			TextExtensions: append([]string(nil), DefaultTextExtensions...),
		},
		FileFilters: FileFiltersConfig{
			ExcludedDirs:  []string{".git", "node_modules", "vendor", "dist", "build"},
			ExcludedFiles: []string{".DS_Store", "package-lock.json", "go.sum"},
		},
	}
}

// LoadConfig loads configuration from a YAML file on top of Default.
// A missing file is not an error; the defaults plus environment overrides are used.
func LoadConfig(configPath string) (*Config, error) {
	config := Default()

	if configPath == "" {
		configPath = "config.yaml"
	}

	yamlFile, err := os.ReadFile(configPath)
	switch {
	case errors.Is(err, os.ErrNotExist):
		log.Printf("Config file %s not found, using defaults", configPath)
	case err != nil:
		return nil, err
	default:
		if err := yaml.Unmarshal(yamlFile, config); err != nil {
			return nil, err
		}
	}

	applyEnv(config)
	config.fillZeroValues()
	return config, nil
}

func applyEnv(config *Config) {
	if v := os.Getenv("SERVER_PORT"); v != "" {
		config.Server.Port = v
	}
	if v := os.Getenv("GO_ENV"); v != "" {
		config.Server.Environment = v
	}
	if v := os.Getenv("GOOGLE_API_KEY"); v != "" {
		config.Google.APIKey = v
	}
	if v := os.Getenv("GOOGLE_PROJECT_ID"); v != "" {
		config.Google.ProjectID = v
	}
	if v := os.Getenv("GOOGLE_LOCATION"); v != "" {
		config.Google.Location = v
	}
	if v := os.Getenv("SESSION_BACKEND"); v != "" {
		config.Session.Backend = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		config.Session.RedisAddr = v
	}
	if v := os.Getenv("REDIS_DB"); v != "" {
		if db, err := strconv.Atoi(v); err == nil {
			config.Session.RedisDB = db
		}
	}
	if v := os.Getenv("LOG_FILE_PATH"); v != "" {
		config.Logging.FilePath = v
	}
}

// fillZeroValues restores defaults a YAML file explicitly blanked out.
func (c *Config) fillZeroValues() {
	def := Default()
	if c.Server.Port == "" {
		c.Server.Port = def.Server.Port
	}
	if len(c.Google.Models) == 0 {
		c.Google.Models = def.Google.Models
	}
	if c.Retriever.MinKeywordLength <= 0 {
		c.Retriever.MinKeywordLength = def.Retriever.MinKeywordLength
	}
	if c.Session.Backend == "" {
		c.Session.Backend = def.Session.Backend
	}
	if c.Session.HistoryKey == "" {
		c.Session.HistoryKey = def.Session.HistoryKey
	}
	if c.Upload.MaxFileBytes <= 0 {
		c.Upload.MaxFileBytes = def.Upload.MaxFileBytes
	}
	if len(c.Upload.TextExtensions) == 0 {
		c.Upload.TextExtensions = def.Upload.TextExtensions
	}
}

// IsProduction reports whether the service runs in production mode
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}
