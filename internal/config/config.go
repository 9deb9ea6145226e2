package config

import "time"

// Config is the root application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Recall    RecallConfig    `yaml:"recall"`
	AI        AIConfig        `yaml:"ai"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Lifecycle LifecycleConfig `yaml:"lifecycle"`
	Log       LogConfig       `yaml:"log"`
	CORS      CORSConfig      `yaml:"cors"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `yaml:"host"             env:"SERVER_HOST"             env-default:"0.0.0.0"`
	Port            int           `yaml:"port"             env:"SERVER_PORT"             env-default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"SERVER_READ_TIMEOUT"     env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"SERVER_WRITE_TIMEOUT"    env-default:"30s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"     env:"SERVER_IDLE_TIMEOUT"     env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	DSN             string        `yaml:"dsn"                env:"DATABASE_DSN"                env-required:"true"`
	MaxConns        int32         `yaml:"max_conns"          env:"DATABASE_MAX_CONNS"          env-default:"25"`
	MinConns        int32         `yaml:"min_conns"          env:"DATABASE_MIN_CONNS"          env-default:"5"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"  env:"DATABASE_MAX_CONN_LIFETIME"  env-default:"1h"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env:"DATABASE_MAX_CONN_IDLE_TIME" env-default:"30m"`
	Migrate         bool          `yaml:"migrate"            env:"DATABASE_MIGRATE"            env-default:"true"`
}

// RecallConfig holds recording-service API settings.
type RecallConfig struct {
	APIKey          string        `yaml:"api_key"          env:"RECALL_API_KEY"          env-required:"true"`
	BaseURL         string        `yaml:"base_url"         env:"RECALL_BASE_URL"         env-default:"https://us-west-2.recall.ai/api/v1"`
	RequestTimeout  time.Duration `yaml:"request_timeout"  env:"RECALL_REQUEST_TIMEOUT"  env-default:"30s"`
	DownloadTimeout time.Duration `yaml:"download_timeout" env:"RECALL_DOWNLOAD_TIMEOUT" env-default:"60s"`
}

// AIConfig holds text-generation settings.
type AIConfig struct {
	APIKey         string        `yaml:"api_key"         env:"AI_API_KEY"         env-required:"true"`
	Model          string        `yaml:"model"           env:"AI_MODEL"           env-default:"claude-sonnet-4-20250514"`
	MaxTokens      int64         `yaml:"max_tokens"      env:"AI_MAX_TOKENS"      env-default:"1024"`
	RequestTimeout time.Duration `yaml:"request_timeout" env:"AI_REQUEST_TIMEOUT" env-default:"60s"`
}

// SchedulerConfig holds bot deployment timing settings.
type SchedulerConfig struct {
	DefaultLeadTimeMinutes int           `yaml:"default_lead_time_minutes" env:"SCHEDULER_DEFAULT_LEAD_TIME_MINUTES" env-default:"5"`
	TickInterval           time.Duration `yaml:"tick_interval"             env:"SCHEDULER_TICK_INTERVAL"             env-default:"1m"`
	MaxDeployAttempts      int           `yaml:"max_deploy_attempts"       env:"SCHEDULER_MAX_DEPLOY_ATTEMPTS"       env-default:"4"`
}

// LifecycleConfig holds status reconciliation and watchdog settings.
type LifecycleConfig struct {
	ReconcileInterval    time.Duration `yaml:"reconcile_interval"    env:"LIFECYCLE_RECONCILE_INTERVAL"    env-default:"2m"`
	ReconcileConcurrency int           `yaml:"reconcile_concurrency" env:"LIFECYCLE_RECONCILE_CONCURRENCY" env-default:"8"`
	WatchdogInterval     time.Duration `yaml:"watchdog_interval"     env:"LIFECYCLE_WATCHDOG_INTERVAL"     env-default:"5m"`
	WatchdogTimeout      time.Duration `yaml:"watchdog_timeout"      env:"LIFECYCLE_WATCHDOG_TIMEOUT"      env-default:"30m"`
	IngestMaxAttempts    int           `yaml:"ingest_max_attempts"   env:"LIFECYCLE_INGEST_MAX_ATTEMPTS"   env-default:"4"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins   string `yaml:"allowed_origins"   env:"CORS_ALLOWED_ORIGINS"   env-default:"*"`
	AllowedMethods   string `yaml:"allowed_methods"   env:"CORS_ALLOWED_METHODS"   env-default:"GET,POST,PUT,OPTIONS"`
	AllowedHeaders   string `yaml:"allowed_headers"   env:"CORS_ALLOWED_HEADERS"   env-default:"Authorization,Content-Type,X-Account-Id"`
	AllowCredentials bool   `yaml:"allow_credentials" env:"CORS_ALLOW_CREDENTIALS" env-default:"true"`
	MaxAge           int    `yaml:"max_age"           env:"CORS_MAX_AGE"           env-default:"86400"`
}
