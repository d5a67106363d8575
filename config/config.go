package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

type Config struct {
	// Server settings
	ServerPort   string        `json:"server_port"`
	ReadTimeout  time.Duration `json:"read_timeout"`
	WriteTimeout time.Duration `json:"write_timeout"`
	IdleTimeout  time.Duration `json:"idle_timeout"`
	Debug        bool          `json:"debug"`

	// Application paths
	LogDir        string `json:"log_dir"`
	DownloadDir   string `json:"download_dir"`
	CompressedDir string `json:"compressed_dir"`
	UploadTmpDir  string `json:"upload_tmp_dir"`
	StaticDir     string `json:"static_dir"`

	// Middleware settings
	Middleware MiddlewareConfig `json:"middleware"`

	// CORS Configuration
	CORS CORSConfig `json:"cors"`

	// Rate Limiting
	RateLimit RateLimitConfig `json:"rate_limit"`

	// External tool settings
	Tools ToolsConfig `json:"tools"`

	// Application version
	Version string `json:"version"`

	// Upload, request and shutdown limits
	MaxUploadBytes  int           `json:"max_upload_bytes"`
	RequestTimeout  time.Duration `json:"request_timeout"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout"`
}

type MiddlewareConfig struct {
	EnableRecover   bool `json:"enable_recover"`
	EnableRequestID bool `json:"enable_request_id"`
	EnableLogger    bool `json:"enable_logger"`
	EnableTimeout   bool `json:"enable_timeout"`
	EnableCORS      bool `json:"enable_cors"`
	EnableRateLimit bool `json:"enable_rate_limit"`
	EnableCompress  bool `json:"enable_compress"`
	EnableETag      bool `json:"enable_etag"`
}

type CORSConfig struct {
	Enabled          bool     `json:"enabled"`
	AllowedOrigins   []string `json:"allowed_origins"`
	AllowedMethods   []string `json:"allowed_methods"`
	AllowedHeaders   []string `json:"allowed_headers"`
	ExposedHeaders   []string `json:"exposed_headers"`
	AllowCredentials bool     `json:"allow_credentials"`
	MaxAge           int      `json:"max_age"`
}

type RateLimitConfig struct {
	Enabled           bool `json:"enabled"`
	RequestsPerMinute int  `json:"requests_per_minute"`
}

type ToolsConfig struct {
	FFmpegPath      string        `json:"ffmpeg_path"`
	FFprobePath     string        `json:"ffprobe_path"`
	YtdlpRetries    int           `json:"ytdlp_retries"`
	SocketTimeout   time.Duration `json:"socket_timeout"`
	AutoInstall     bool          `json:"auto_install"`
	ProcessTimeout  time.Duration `json:"process_timeout"`
	ProgressEventHz time.Duration `json:"progress_event_interval"`
}

func defaultDevMiddleware() MiddlewareConfig {
	return MiddlewareConfig{
		EnableRecover:   true,
		EnableRequestID: true,
		EnableLogger:    true,
		EnableTimeout:   false, // disabled for easier debugging
		EnableCORS:      true,
		EnableRateLimit: false,
		EnableCompress:  false,
		EnableETag:      false,
	}
}

func defaultProdMiddleware() MiddlewareConfig {
	return MiddlewareConfig{
		EnableRecover:   true,
		EnableRequestID: true,
		EnableLogger:    true,
		EnableTimeout:   true,
		EnableCORS:      true,
		EnableRateLimit: true,
		EnableCompress:  true,
		EnableETag:      true,
	}
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		ServerPort:   getEnv("SERVER_PORT", "8080"),
		ReadTimeout:  getEnvAsDuration("READ_TIMEOUT", 15*time.Second),
		WriteTimeout: getEnvAsDuration("WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:  getEnvAsDuration("IDLE_TIMEOUT", 60*time.Second),
		Debug:        getEnvAsBool("DEBUG", false),

		LogDir:        getEnv("LOG_DIR", "./logs"),
		DownloadDir:   getEnv("DOWNLOAD_DIR", "./downloads"),
		CompressedDir: getEnv("COMPRESSED_DIR", "./compressed"),
		UploadTmpDir:  getEnv("UPLOAD_TMP_DIR", "./uploads"),
		StaticDir:     getEnv("STATIC_DIR", "./static"),

		Version: getEnv("VERSION", "1.0.0"),

		MaxUploadBytes:  getEnvAsInt("MAX_UPLOAD_BYTES", 1000*1024*1024), // 1GB
		RequestTimeout:  getEnvAsDuration("REQUEST_TIMEOUT", 60*time.Minute),
		ShutdownTimeout: getEnvAsDuration("SHUTDOWN_TIMEOUT", 30*time.Second),

		CORS: CORSConfig{
			Enabled:        getEnvAsBool("CORS_ENABLED", true),
			AllowedOrigins: getEnvAsStringSlice("CORS_ALLOWED_ORIGINS", []string{"*"}),
			AllowedMethods: getEnvAsStringSlice(
				"CORS_ALLOWED_METHODS",
				[]string{"GET", "POST", "DELETE", "OPTIONS"},
			),
			AllowedHeaders:   getEnvAsStringSlice("CORS_ALLOWED_HEADERS", []string{"Content-Type"}),
			ExposedHeaders:   getEnvAsStringSlice("CORS_EXPOSED_HEADERS", []string{}),
			AllowCredentials: getEnvAsBool("CORS_ALLOW_CREDENTIALS", false),
			MaxAge:           getEnvAsInt("CORS_MAX_AGE", 86400),
		},

		RateLimit: RateLimitConfig{
			Enabled:           getEnvAsBool("RATE_LIMIT_ENABLED", true),
			RequestsPerMinute: getEnvAsInt("RATE_LIMIT_RPM", 60),
		},

		Tools: ToolsConfig{
			FFmpegPath:      getEnv("FFMPEG_PATH", "ffmpeg"),
			FFprobePath:     getEnv("FFPROBE_PATH", "ffprobe"),
			YtdlpRetries:    getEnvAsInt("YTDLP_RETRIES", 5),
			SocketTimeout:   getEnvAsDuration("YTDLP_SOCKET_TIMEOUT", 30*time.Second),
			AutoInstall:     getEnvAsBool("YTDLP_AUTO_INSTALL", false),
			ProcessTimeout:  getEnvAsDuration("TOOL_PROCESS_TIMEOUT", 30*time.Minute),
			ProgressEventHz: getEnvAsDuration("PROGRESS_EVENT_INTERVAL", 500*time.Millisecond),
		},

		Middleware: defaultDevMiddleware(),
	}

	if os.Getenv("ENV") == "production" {
		cfg.Middleware = defaultProdMiddleware()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if err := validatePaths(c); err != nil {
		return err
	}
	if err := validateTimeouts(c); err != nil {
		return err
	}
	return nil
}

func validatePaths(c *Config) error {
	paths := []struct {
		path string
		name string
	}{
		{c.LogDir, "log directory"},
		{c.DownloadDir, "download directory"},
		{c.CompressedDir, "compressed directory"},
		{c.UploadTmpDir, "upload temp directory"},
	}

	for _, p := range paths {
		if err := os.MkdirAll(p.path, 0755); err != nil {
			return errors.Wrapf(err, "failed to create %s", p.name)
		}
	}

	return nil
}

func validateTimeouts(c *Config) error {
	if c.ReadTimeout <= 0 {
		return errors.New("read timeout must be positive")
	}
	if c.WriteTimeout <= 0 {
		return errors.New("write timeout must be positive")
	}
	if c.Tools.ProcessTimeout <= 0 {
		return errors.New("tool process timeout must be positive")
	}
	return nil
}

// Helper functions for reading environment variables
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvAsStringSlice(key string, defaultValue []string) []string {
	if value, exists := os.LookupEnv(key); exists {
		if value = strings.TrimSpace(value); value != "" {
			return strings.Split(value, ",")
		}
	}
	return defaultValue
}
