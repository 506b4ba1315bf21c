package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Render backends.
const (
	BackendPandoc = "pandoc"
	BackendChrome = "chrome"
)

// Rasterizers and recognizers used by the OCR service.
const (
	RasterizerPdftoppm = "pdftoppm"
	RasterizerMuPDF    = "mupdf"

	RecognizerGosseract = "gosseract"
	RecognizerCLI       = "cli"
)

// PostgresConfig describes the token database. Host may also carry a full
// postgres:// URL, in which case the other fields are ignored.
type PostgresConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Database string `yaml:"database"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
}

// Config is the configuration shared by the render and OCR services.
// Each binary only reads the sections it needs.
type Config struct {
	Server struct {
		Host    string `yaml:"host"`
		Port    string `yaml:"port"`
		Prefork bool   `yaml:"prefork"`
	} `yaml:"server"`

	Logger struct {
		File       string `yaml:"file"`
		Level      string `yaml:"level"`
		MaxSizeMB  int    `yaml:"max_size_mb"`
		MaxBackups int    `yaml:"max_backups"`
		MaxAgeDays int    `yaml:"max_age_days"`
		Compress   bool   `yaml:"compress"`
	} `yaml:"logger"`

	Auth struct {
		Enabled        bool           `yaml:"enabled"`
		Postgres       PostgresConfig `yaml:"postgres"`
		ReloadInterval time.Duration  `yaml:"reload_interval"`
	} `yaml:"auth"`

	RateLimiter struct {
		Interval          time.Duration `yaml:"interval"`
		EnableUserLimiter bool          `yaml:"enable_user_limiter"`
		UserLimit         int           `yaml:"user_limit"`
	} `yaml:"rate_limiter"`

	Cache struct {
		RedisHost          string        `yaml:"redis_host"`
		RateLimitDB        int           `yaml:"redis_rate_db"`
		RenderCacheDB      int           `yaml:"redis_render_db"`
		RenderCacheEnabled bool          `yaml:"render_cache_enabled"`
		RenderCacheTTL     time.Duration `yaml:"render_cache_ttl"`
	} `yaml:"cache"`

	Render struct {
		Backend          string `yaml:"backend"`
		PandocPath       string `yaml:"pandoc_path"`
		PDFEngine        string `yaml:"pdf_engine"`
		ChromePath       string `yaml:"chrome_path"`
		ChromeNoSandbox  bool   `yaml:"chrome_no_sandbox"`
		TempDir          string `yaml:"temp_dir"`
		TimeoutSecs      int    `yaml:"timeout_secs"`
		MaxMarkdownBytes int    `yaml:"max_markdown_bytes"`
	} `yaml:"render"`

	OCR struct {
		Rasterizer           string   `yaml:"rasterizer"`
		PdftoppmPath         string   `yaml:"pdftoppm_path"`
		Recognizer           string   `yaml:"recognizer"`
		TesseractPath        string   `yaml:"tesseract_path"`
		Languages            []string `yaml:"languages"`
		DPI                  int      `yaml:"dpi"`
		TempDir              string   `yaml:"temp_dir"`
		TimeoutSecs          int      `yaml:"timeout_secs"`
		MaxUploadBytes       int      `yaml:"max_upload_bytes"`
		AcceptedContentTypes []string `yaml:"accepted_content_types"`
	} `yaml:"ocr"`
}

// Load reads the config file named by CONFIG_PATH (default config.yaml).
func Load() Config {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "config.yaml"
	}
	return LoadFrom(path)
}

// LoadFrom reads, defaults and validates the YAML config at path.
// It panics when the file is unreadable or a value is invalid; startup
// should not continue with a half-configured service.
func LoadFrom(path string) Config {
	data, err := os.ReadFile(path)
	if err != nil {
		panic(fmt.Sprintf("failed to read config %s: %v", path, err))
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		panic(fmt.Sprintf("failed to parse config %s: %v", path, err))
	}

	applyEnv(&cfg)
	ApplyDefaults(&cfg)
	if err := Validate(cfg); err != nil {
		panic(fmt.Sprintf("invalid config %s: %v", path, err))
	}
	return cfg
}

// Default returns a config with every default applied. Used by tests and
// as the zero-file fallback for local runs.
func Default() Config {
	var cfg Config
	ApplyDefaults(&cfg)
	return cfg
}

// ApplyDefaults fills zero values with their defaults.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Port == "" {
		cfg.Server.Port = ":8080"
	}
	if cfg.Logger.Level == "" {
		cfg.Logger.Level = "info"
	}
	if cfg.Auth.ReloadInterval == 0 {
		cfg.Auth.ReloadInterval = time.Minute
	}
	if cfg.RateLimiter.Interval == 0 {
		cfg.RateLimiter.Interval = time.Minute
	}
	if cfg.Cache.RenderCacheTTL == 0 {
		cfg.Cache.RenderCacheTTL = 24 * time.Hour
	}

	if cfg.Render.Backend == "" {
		cfg.Render.Backend = BackendPandoc
	}
	if cfg.Render.PandocPath == "" {
		cfg.Render.PandocPath = "pandoc"
	}
	if cfg.Render.PDFEngine == "" {
		cfg.Render.PDFEngine = "xelatex"
	}

	if cfg.OCR.Rasterizer == "" {
		cfg.OCR.Rasterizer = RasterizerPdftoppm
	}
	if cfg.OCR.PdftoppmPath == "" {
		cfg.OCR.PdftoppmPath = "pdftoppm"
	}
	if cfg.OCR.Recognizer == "" {
		cfg.OCR.Recognizer = RecognizerGosseract
	}
	if cfg.OCR.TesseractPath == "" {
		cfg.OCR.TesseractPath = "tesseract"
	}
	if len(cfg.OCR.Languages) == 0 {
		cfg.OCR.Languages = []string{"eng"}
	}
	if cfg.OCR.DPI == 0 {
		cfg.OCR.DPI = 300
	}
	if cfg.OCR.MaxUploadBytes == 0 {
		cfg.OCR.MaxUploadBytes = 50 * 1024 * 1024
	}
	if len(cfg.OCR.AcceptedContentTypes) == 0 {
		cfg.OCR.AcceptedContentTypes = []string{"application/pdf", "application/octet-stream", "pdf"}
	}
}

// Validate reports the first invalid value in cfg.
func Validate(cfg Config) error {
	switch cfg.Render.Backend {
	case BackendPandoc, BackendChrome:
	default:
		return fmt.Errorf("render.backend must be %q or %q, got %q", BackendPandoc, BackendChrome, cfg.Render.Backend)
	}
	switch cfg.OCR.Rasterizer {
	case RasterizerPdftoppm, RasterizerMuPDF:
	default:
		return fmt.Errorf("ocr.rasterizer must be %q or %q, got %q", RasterizerPdftoppm, RasterizerMuPDF, cfg.OCR.Rasterizer)
	}
	switch cfg.OCR.Recognizer {
	case RecognizerGosseract, RecognizerCLI:
	default:
		return fmt.Errorf("ocr.recognizer must be %q or %q, got %q", RecognizerGosseract, RecognizerCLI, cfg.OCR.Recognizer)
	}
	if cfg.Render.TimeoutSecs < 0 || cfg.OCR.TimeoutSecs < 0 {
		return fmt.Errorf("timeout_secs must not be negative")
	}
	if cfg.Render.MaxMarkdownBytes < 0 {
		return fmt.Errorf("render.max_markdown_bytes must not be negative")
	}
	if cfg.OCR.DPI < 0 {
		return fmt.Errorf("ocr.dpi must be positive")
	}
	if cfg.OCR.MaxUploadBytes < 0 {
		return fmt.Errorf("ocr.max_upload_bytes must not be negative")
	}
	if cfg.RateLimiter.UserLimit < 0 {
		return fmt.Errorf("rate_limiter.user_limit must not be negative")
	}
	if cfg.RateLimiter.Interval < 0 {
		return fmt.Errorf("rate_limiter.interval must be positive")
	}
	if cfg.Auth.Enabled {
		if strings.TrimSpace(cfg.Auth.Postgres.Host) == "" {
			return fmt.Errorf("auth.postgres.host is required when auth is enabled")
		}
		if cfg.Auth.ReloadInterval < 0 {
			return fmt.Errorf("auth.reload_interval must be positive")
		}
	}
	if cfg.Cache.RenderCacheEnabled && cfg.Cache.RedisHost == "" {
		return fmt.Errorf("cache.redis_host is required when the render cache is enabled")
	}
	return nil
}

// applyEnv lets the usual container variables point at engine binaries.
func applyEnv(cfg *Config) {
	if v := os.Getenv("PANDOC_BIN"); v != "" && cfg.Render.PandocPath == "" {
		cfg.Render.PandocPath = v
	}
	if v := os.Getenv("CHROME_BIN"); v != "" && cfg.Render.ChromePath == "" {
		cfg.Render.ChromePath = v
	}
	if v := os.Getenv("TESSERACT_BIN"); v != "" && cfg.OCR.TesseractPath == "" {
		cfg.OCR.TesseractPath = v
	}
	if v := os.Getenv("PDFTOPPM_BIN"); v != "" && cfg.OCR.PdftoppmPath == "" {
		cfg.OCR.PdftoppmPath = v
	}
}

// RenderTimeout returns the engine timeout for renders; zero means none.
func (c Config) RenderTimeout() time.Duration {
	return time.Duration(c.Render.TimeoutSecs) * time.Second
}

// OCRTimeout returns the engine timeout for OCR work; zero means none.
func (c Config) OCRTimeout() time.Duration {
	return time.Duration(c.OCR.TimeoutSecs) * time.Second
}
