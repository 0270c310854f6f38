// Package config provides application configuration loaded from environment
// variables with defaults and validation. It centralizes application settings
// such as server timeouts, logging, database connections, rate limiting,
// observability, outbound integrations and the marketplace quotas.
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

// CORSConfig defines Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string
}

// SecurityConfig defines security-related settings such as HSTS.
type SecurityConfig struct {
	EnableHSTS bool
	HSTSMaxAge time.Duration
}

// OTELConfig defines OpenTelemetry observability settings.
type OTELConfig struct {
	Enabled     bool    // OTEL_ENABLED
	Endpoint    string  // OTEL_EXPORTER_OTLP_ENDPOINT (e.g. "otel:4317")
	Insecure    bool    // OTEL_EXPORTER_OTLP_INSECURE (true if no TLS)
	ServiceName string  // OTEL_SERVICE_NAME (e.g. "caerus-backend")
	SampleRatio float64 // OTEL_TRACES_SAMPLER_ARG in [0..1]
}

// AuthConfig defines session token and identity provider settings.
type AuthConfig struct {
	JWTSecret         string        // JWT_SECRET (HS256 signing key)
	JWTExpiration     time.Duration // JWT_EXPIRATION
	FirebaseProjectID string        // FIREBASE_PROJECT_ID
	FirebaseJWKSURL   string        // FIREBASE_JWKS_URL
}

// StorageConfig defines the S3-compatible bucket used for pitch videos.
type StorageConfig struct {
	Bucket      string        // STORAGE_BUCKET
	Endpoint    string        // STORAGE_ENDPOINT (empty means AWS S3)
	AccessKeyID string        // STORAGE_ACCESS_KEY_ID
	SecretKey   string        // STORAGE_SECRET_ACCESS_KEY
	Region      string        // STORAGE_REGION
	UploadTTL   time.Duration // STORAGE_UPLOAD_TTL
	DownloadTTL time.Duration // STORAGE_DOWNLOAD_TTL
}

// Enabled reports whether enough settings are present to sign URLs.
func (s StorageConfig) Enabled() bool {
	return s.Bucket != "" && s.AccessKeyID != "" && s.SecretKey != ""
}

// AppleConfig defines App Store receipt verification settings.
type AppleConfig struct {
	SharedSecret  string // APPLE_SHARED_SECRET
	ProductionURL string // APPLE_PRODUCTION_URL
	SandboxURL    string // APPLE_SANDBOX_URL
}

// NotifyConfig defines push delivery settings.
type NotifyConfig struct {
	ExpoURL   string        // EXPO_PUSH_URL
	Workers   int           // NOTIFY_WORKERS
	QueueSize int           // NOTIFY_QUEUE_SIZE
	RedisURL  string        // REDIS_URL (optional, enables dedup)
	DedupTTL  time.Duration // NOTIFY_DEDUP_TTL
}

// SupportConfig defines the support assistant settings.
type SupportConfig struct {
	GeminiAPIKey string  // GEMINI_API_KEY (empty disables the model)
	GeminiModel  string  // GEMINI_MODEL
	FAQPath      string  // SUPPORT_FAQ_PATH (empty uses the embedded FAQ)
	Threshold    float64 // SUPPORT_FAQ_THRESHOLD in [0,1]
}

// LimitsConfig defines the marketplace quotas and thread policy.
type LimitsConfig struct {
	FreePitchViews       int  // FREE_PITCH_VIEWS
	TalentDailyViewLimit int  // TALENT_DAILY_VIEW_LIMIT
	TalentMonthlyDMLimit int  // TALENT_MONTHLY_DM_LIMIT
	ThreadStatusLocked   bool // THREAD_STATUS_LOCKED
}

// Config holds all configuration values for the application.
type Config struct {
	// Server
	Port              string        // just the number
	ReadTimeout       time.Duration // e.g. 15s
	ReadHeaderTimeout time.Duration // e.g. 10s
	WriteTimeout      time.Duration // e.g. 20s
	IdleTimeout       time.Duration // e.g. 60s
	MaxHeaderBytes    int           // bytes
	GinMode           string        // debug|release|test

	// Logging / Docs
	LogLevel       string // debug|info|warn|error|fatal|panic
	LogPretty      bool   // pretty console logs in dev
	SwaggerEnabled bool   // enable Swagger UI route
	APIBasePath    string // base path for API routes

	// App
	Environment string // development|staging|production
	DBDriver    string // sqlite|postgres
	DBPath      string // SQLite path
	DatabaseURL string // Postgres DSN

	// Integrations
	Auth            AuthConfig
	Storage         StorageConfig
	Apple           AppleConfig
	Notify          NotifyConfig
	Support         SupportConfig
	OutboundTimeout time.Duration // timeout for every outbound HTTP call

	// Marketplace
	Limits LimitsConfig

	// Rate limiting
	RateRPS   float64 // tokens per second (>= 0)
	RateBurst int     // bucket size (>= 1)

	// Web protection
	CORS     CORSConfig
	Security SecurityConfig

	// Idempotency
	IdempotencyTTL time.Duration // how long a given Idempotency-Key is valid

	// Observability
	OTEL OTELConfig
}

// MustLoad loads the configuration and panics if validation fails.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads configuration from environment variables,
// applies defaults, normalizes values, and validates the result.
func Load() (Config, error) {
	cfg := Config{
		// Server
		Port:              getenv("PORT", "8080"),
		ReadTimeout:       getdur("READ_TIMEOUT", 15*time.Second),
		ReadHeaderTimeout: getdur("READ_HEADER_TIMEOUT", 10*time.Second),
		WriteTimeout:      getdur("WRITE_TIMEOUT", 20*time.Second),
		IdleTimeout:       getdur("IDLE_TIMEOUT", 60*time.Second),
		MaxHeaderBytes:    getint("MAX_HEADER_BYTES", 1<<20),
		GinMode:           strings.ToLower(getenv("GIN_MODE", "release")),

		// Logging / Docs
		LogLevel:       strings.ToLower(getenv("LOG_LEVEL", "info")),
		LogPretty:      getbool("LOG_PRETTY", false),
		SwaggerEnabled: getbool("SWAGGER_ENABLED", false),
		APIBasePath:    normalizeBasePath(getenv("API_BASE_PATH", "/api/v1")),

		// App
		Environment: strings.ToLower(getenv("ENVIRONMENT", "development")),
		DBDriver:    strings.ToLower(getenv("DB_DRIVER", "sqlite")),
		DBPath:      getenv("DB_PATH", "caerus.db"),
		DatabaseURL: getenv("DATABASE_URL", ""),

		// Integrations
		Auth: AuthConfig{
			JWTSecret:         getenv("JWT_SECRET", ""),
			JWTExpiration:     getdur("JWT_EXPIRATION", 168*time.Hour),
			FirebaseProjectID: getenv("FIREBASE_PROJECT_ID", ""),
			FirebaseJWKSURL:   getenv("FIREBASE_JWKS_URL", "https://www.googleapis.com/service_accounts/v1/jwk/securetoken@system.gserviceaccount.com"),
		},
		Storage: StorageConfig{
			Bucket:      getenv("STORAGE_BUCKET", ""),
			Endpoint:    getenv("STORAGE_ENDPOINT", ""),
			AccessKeyID: getenv("STORAGE_ACCESS_KEY_ID", ""),
			SecretKey:   getenv("STORAGE_SECRET_ACCESS_KEY", ""),
			Region:      getenv("STORAGE_REGION", "auto"),
			UploadTTL:   getdur("STORAGE_UPLOAD_TTL", 15*time.Minute),
			DownloadTTL: getdur("STORAGE_DOWNLOAD_TTL", 60*time.Minute),
		},
		Apple: AppleConfig{
			SharedSecret:  getenv("APPLE_SHARED_SECRET", ""),
			ProductionURL: getenv("APPLE_PRODUCTION_URL", "https://buy.itunes.apple.com/verifyReceipt"),
			SandboxURL:    getenv("APPLE_SANDBOX_URL", "https://sandbox.itunes.apple.com/verifyReceipt"),
		},
		Notify: NotifyConfig{
			ExpoURL:   getenv("EXPO_PUSH_URL", "https://exp.host/--/api/v2/push/send"),
			Workers:   getint("NOTIFY_WORKERS", 4),
			QueueSize: getint("NOTIFY_QUEUE_SIZE", 256),
			RedisURL:  getenv("REDIS_URL", ""),
			DedupTTL:  getdur("NOTIFY_DEDUP_TTL", time.Hour),
		},
		Support: SupportConfig{
			GeminiAPIKey: getenv("GEMINI_API_KEY", ""),
			GeminiModel:  getenv("GEMINI_MODEL", "gemini-2.0-flash"),
			FAQPath:      getenv("SUPPORT_FAQ_PATH", ""),
			Threshold:    getfloat("SUPPORT_FAQ_THRESHOLD", 0.2),
		},
		OutboundTimeout: getdur("OUTBOUND_TIMEOUT", 5*time.Second),

		// Marketplace
		Limits: LimitsConfig{
			FreePitchViews:       getint("FREE_PITCH_VIEWS", 15),
			TalentDailyViewLimit: getint("TALENT_DAILY_VIEW_LIMIT", 5),
			TalentMonthlyDMLimit: getint("TALENT_MONTHLY_DM_LIMIT", 5),
			ThreadStatusLocked:   getbool("THREAD_STATUS_LOCKED", false),
		},

		// Rate limiting
		RateRPS:   getfloat("RATE_RPS", 5.0),
		RateBurst: getint("RATE_BURST", 10),

		// Web protection
		CORS: CORSConfig{
			AllowedOrigins: splitCSV(getenv("CORS_ALLOWED_ORIGINS", "")),
		},
		Security: SecurityConfig{
			EnableHSTS: getbool("ENABLE_HSTS", false),
			HSTSMaxAge: getdur("HSTS_MAX_AGE", 180*24*time.Hour),
		},

		// Idempotency
		IdempotencyTTL: getdur("IDEMPOTENCY_TTL", 24*time.Hour),

		// Observability (OpenTelemetry)
		OTEL: OTELConfig{
			Enabled:     getbool("OTEL_ENABLED", false),
			Endpoint:    getenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			Insecure:    getbool("OTEL_EXPORTER_OTLP_INSECURE", true),
			ServiceName: getenv("OTEL_SERVICE_NAME", "caerus-backend"),
			SampleRatio: getfloat("OTEL_TRACES_SAMPLER_ARG", 1.0),
		},
	}

	// --- normalization ---
	if cfg.LogLevel == "warning" {
		cfg.LogLevel = "warn"
	}
	switch cfg.GinMode {
	case "debug", "release", "test":
	default:
		cfg.GinMode = "release"
	}

	// --- validation ---
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error", "fatal", "panic":
	default:
		return cfg, errors.New("LOG_LEVEL must be one of: debug, info, warn, error, fatal, panic")
	}
	if strings.TrimSpace(cfg.Port) == "" {
		return cfg, errors.New("PORT must not be empty")
	}
	if cfg.ReadTimeout <= 0 || cfg.ReadHeaderTimeout <= 0 || cfg.WriteTimeout <= 0 || cfg.IdleTimeout <= 0 {
		return cfg, errors.New("timeouts must be positive durations")
	}
	if cfg.MaxHeaderBytes <= 0 {
		return cfg, errors.New("MAX_HEADER_BYTES must be > 0")
	}
	switch cfg.DBDriver {
	case "sqlite":
		if strings.TrimSpace(cfg.DBPath) == "" {
			return cfg, errors.New("DB_PATH must not be empty")
		}
	case "postgres":
		if strings.TrimSpace(cfg.DatabaseURL) == "" {
			return cfg, errors.New("DATABASE_URL must be set when DB_DRIVER=postgres")
		}
	default:
		return cfg, errors.New("DB_DRIVER must be one of: sqlite, postgres")
	}
	if cfg.Auth.JWTSecret == "" {
		if !cfg.IsDevelopment() {
			return cfg, errors.New("JWT_SECRET must be set outside development")
		}
		cfg.Auth.JWTSecret = "dev-insecure-secret"
	}
	if cfg.Auth.JWTExpiration <= 0 {
		return cfg, errors.New("JWT_EXPIRATION must be > 0")
	}
	if cfg.Storage.UploadTTL <= 0 || cfg.Storage.DownloadTTL <= 0 {
		return cfg, errors.New("STORAGE_UPLOAD_TTL and STORAGE_DOWNLOAD_TTL must be > 0")
	}
	if cfg.OutboundTimeout <= 0 {
		return cfg, errors.New("OUTBOUND_TIMEOUT must be > 0")
	}
	if cfg.Notify.Workers < 1 || cfg.Notify.QueueSize < 1 {
		return cfg, errors.New("NOTIFY_WORKERS and NOTIFY_QUEUE_SIZE must be >= 1")
	}
	if cfg.Support.Threshold < 0 || cfg.Support.Threshold > 1 {
		return cfg, errors.New("SUPPORT_FAQ_THRESHOLD must be between 0 and 1")
	}
	if cfg.Limits.FreePitchViews < 0 || cfg.Limits.TalentDailyViewLimit < 0 || cfg.Limits.TalentMonthlyDMLimit < 0 {
		return cfg, errors.New("quota limits must be >= 0")
	}
	if cfg.RateRPS < 0 {
		return cfg, errors.New("RATE_RPS must be >= 0")
	}
	if cfg.RateBurst < 1 {
		return cfg, errors.New("RATE_BURST must be >= 1")
	}
	if cfg.Security.HSTSMaxAge < 0 {
		return cfg, errors.New("HSTS_MAX_AGE must be >= 0")
	}
	if cfg.IdempotencyTTL <= 0 {
		return cfg, errors.New("IDEMPOTENCY_TTL must be > 0")
	}
	if cfg.OTEL.SampleRatio < 0 || cfg.OTEL.SampleRatio > 1 {
		return cfg, errors.New("OTEL_TRACES_SAMPLER_ARG must be in [0,1]")
	}
	return cfg, nil
}

// IsDevelopment reports whether ENVIRONMENT is development.
func (c Config) IsDevelopment() bool { return c.Environment == "development" }

// ---- helpers (no external deps) ----

func getenv(k, def string) string {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		return v
	}
	return def
}

func getfloat(k string, def float64) float64 {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getint(k string, def int) int {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getbool(k string, def bool) bool {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "yes", "y", "on":
			return true
		case "0", "false", "no", "n", "off":
			return false
		}
	}
	return def
}

func getdur(k string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		t := strings.TrimSpace(p)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

// normalizeBasePath ensures leading '/' and strips trailing '/' (except root).
func normalizeBasePath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if len(p) > 1 && strings.HasSuffix(p, "/") {
		p = strings.TrimRight(p, "/")
	}
	return p
}
