// Package config 提供配置加载和管理功能
package config

import (
	"time"
)

// Config 应用配置根结构
type Config struct {
	App           AppConfig           `yaml:"app" mapstructure:"app"`
	Server        ServerConfig        `yaml:"server" mapstructure:"server"`
	Database      DatabaseConfig      `yaml:"database" mapstructure:"database"`
	Cache         CacheConfig         `yaml:"cache" mapstructure:"cache"`
	Storage       StorageConfig       `yaml:"storage" mapstructure:"storage"`
	Generation    GenerationConfig    `yaml:"generation" mapstructure:"generation"`
	Pacing        PacingConfig        `yaml:"pacing" mapstructure:"pacing"`
	Imaging       ImagingConfig       `yaml:"imaging" mapstructure:"imaging"`
	LLM           LLMConfig           `yaml:"llm" mapstructure:"llm"`
	Messaging     MessagingConfig     `yaml:"messaging" mapstructure:"messaging"`
	Observability ObservabilityConfig `yaml:"observability" mapstructure:"observability"`
	Security      SecurityConfig      `yaml:"security" mapstructure:"security"`
}

// AppConfig 应用基础配置
type AppConfig struct {
	Name    string `yaml:"name" mapstructure:"name"`
	Version string `yaml:"version" mapstructure:"version"`
	Env     string `yaml:"env" mapstructure:"env"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	HTTP HTTPServerConfig `yaml:"http" mapstructure:"http"`
}

// HTTPServerConfig HTTP 服务器配置
type HTTPServerConfig struct {
	Host         string        `yaml:"host" mapstructure:"host"`
	Port         int           `yaml:"port" mapstructure:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout" mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout" mapstructure:"idle_timeout"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Postgres PostgresConfig `yaml:"postgres" mapstructure:"postgres"`
}

// PostgresConfig PostgreSQL 配置
type PostgresConfig struct {
	Host            string        `yaml:"host" mapstructure:"host"`
	Port            int           `yaml:"port" mapstructure:"port"`
	User            string        `yaml:"user" mapstructure:"user"`
	Password        string        `yaml:"password" mapstructure:"password"`
	Database        string        `yaml:"database" mapstructure:"database"`
	SSLMode         string        `yaml:"ssl_mode" mapstructure:"ssl_mode"`
	MaxOpenConns    int           `yaml:"max_open_conns" mapstructure:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns" mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `yaml:"conn_max_idle_time" mapstructure:"conn_max_idle_time"`
	AutoMigrate     bool          `yaml:"auto_migrate" mapstructure:"auto_migrate"`
}

// CacheConfig 缓存配置
type CacheConfig struct {
	Redis RedisConfig `yaml:"redis" mapstructure:"redis"`
}

// RedisConfig Redis 配置
type RedisConfig struct {
	Host         string        `yaml:"host" mapstructure:"host"`
	Port         int           `yaml:"port" mapstructure:"port"`
	Password     string        `yaml:"password" mapstructure:"password"`
	DB           int           `yaml:"db" mapstructure:"db"`
	PoolSize     int           `yaml:"pool_size" mapstructure:"pool_size"`
	MinIdleConns int           `yaml:"min_idle_conns" mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `yaml:"dial_timeout" mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `yaml:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout" mapstructure:"write_timeout"`
}

// StorageConfig 资产二进制存储配置
type StorageConfig struct {
	// Backend 存储后端：local | gcs
	Backend string             `yaml:"backend" mapstructure:"backend"`
	Local   LocalStorageConfig `yaml:"local" mapstructure:"local"`
	GCS     GCSStorageConfig   `yaml:"gcs" mapstructure:"gcs"`
}

// LocalStorageConfig 本地文件系统存储
type LocalStorageConfig struct {
	Root string `yaml:"root" mapstructure:"root"`
}

// GCSStorageConfig Google Cloud Storage 存储
type GCSStorageConfig struct {
	Bucket        string `yaml:"bucket" mapstructure:"bucket"`
	PublicBaseURL string `yaml:"public_base_url" mapstructure:"public_base_url"`
	// EmulatorHost 非空时使用无认证模式连接模拟器
	EmulatorHost    string `yaml:"emulator_host" mapstructure:"emulator_host"`
	CredentialsFile string `yaml:"credentials_file" mapstructure:"credentials_file"`
}

// GenerationConfig 图像/语音生成配置
type GenerationConfig struct {
	ImageProvider string                              `yaml:"image_provider" mapstructure:"image_provider"`
	AudioProvider string                              `yaml:"audio_provider" mapstructure:"audio_provider"`
	Providers     map[string]GenerationProviderConfig `yaml:"providers" mapstructure:"providers"`
	ImageSize     string                              `yaml:"image_size" mapstructure:"image_size"`
	Voice         string                              `yaml:"voice" mapstructure:"voice"`
	AudioFormat   string                              `yaml:"audio_format" mapstructure:"audio_format"`
}

// GenerationProviderConfig 生成服务提供商配置
type GenerationProviderConfig struct {
	// Kind 适配器类型：openai | runware
	Kind       string        `yaml:"kind" mapstructure:"kind"`
	APIKey     string        `yaml:"api_key" mapstructure:"api_key"`
	BaseURL    string        `yaml:"base_url" mapstructure:"base_url"`
	ImageModel string        `yaml:"image_model" mapstructure:"image_model"`
	AudioModel string        `yaml:"audio_model" mapstructure:"audio_model"`
	Timeout    time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// PacingConfig 批处理调用节流配置
type PacingConfig struct {
	Interval time.Duration `yaml:"interval" mapstructure:"interval"`
	// Backend 节流后端：local | redis
	Backend  string `yaml:"backend" mapstructure:"backend"`
	RedisKey string `yaml:"redis_key" mapstructure:"redis_key"`
}

// ImagingConfig 生成图像后处理配置
type ImagingConfig struct {
	Enabled   bool   `yaml:"enabled" mapstructure:"enabled"`
	MaxWidth  int    `yaml:"max_width" mapstructure:"max_width"`
	MaxHeight int    `yaml:"max_height" mapstructure:"max_height"`
	Format    string `yaml:"format" mapstructure:"format"`
	Quality   int    `yaml:"quality" mapstructure:"quality"`
}

// LLMConfig 提示词精炼用 LLM 配置
type LLMConfig struct {
	RefinePrompts   bool                      `yaml:"refine_prompts" mapstructure:"refine_prompts"`
	DefaultProvider string                    `yaml:"default_provider" mapstructure:"default_provider"`
	Providers       map[string]ProviderConfig `yaml:"providers" mapstructure:"providers"`
	CacheTTL        time.Duration             `yaml:"cache_ttl" mapstructure:"cache_ttl"`
}

// ProviderConfig LLM 提供商配置
type ProviderConfig struct {
	APIKey      string        `yaml:"api_key" mapstructure:"api_key"`
	BaseURL     string        `yaml:"base_url" mapstructure:"base_url"`
	Model       string        `yaml:"model" mapstructure:"model"`
	MaxTokens   int           `yaml:"max_tokens" mapstructure:"max_tokens"`
	Temperature float64       `yaml:"temperature" mapstructure:"temperature"`
	Timeout     time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// MessagingConfig 消息队列配置
type MessagingConfig struct {
	RedisStream RedisStreamConfig `yaml:"redis_stream" mapstructure:"redis_stream"`
}

// RedisStreamConfig Redis Stream 配置
type RedisStreamConfig struct {
	Enabled bool  `yaml:"enabled" mapstructure:"enabled"`
	MaxLen  int64 `yaml:"max_len" mapstructure:"max_len"`
}

// ObservabilityConfig 可观测性配置
type ObservabilityConfig struct {
	Logging LoggingConfig `yaml:"logging" mapstructure:"logging"`
	Tracing TracingConfig `yaml:"tracing" mapstructure:"tracing"`
	Metrics MetricsConfig `yaml:"metrics" mapstructure:"metrics"`
}

// LoggingConfig 日志配置
type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
	Output string `yaml:"output" mapstructure:"output"`
}

// TracingConfig 追踪配置
type TracingConfig struct {
	Enabled    bool    `yaml:"enabled" mapstructure:"enabled"`
	Exporter   string  `yaml:"exporter" mapstructure:"exporter"`
	Endpoint   string  `yaml:"endpoint" mapstructure:"endpoint"`
	SampleRate float64 `yaml:"sample_rate" mapstructure:"sample_rate"`
}

// MetricsConfig 指标配置
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
	Path    string `yaml:"path" mapstructure:"path"`
}

// SecurityConfig 安全配置
type SecurityConfig struct {
	RateLimit RateLimitConfig `yaml:"rate_limit" mapstructure:"rate_limit"`
	CORS      CORSConfig      `yaml:"cors" mapstructure:"cors"`
}

// RateLimitConfig 限流配置
type RateLimitConfig struct {
	Enabled bool          `yaml:"enabled" mapstructure:"enabled"`
	Limit   int           `yaml:"limit" mapstructure:"limit"`
	Window  time.Duration `yaml:"window" mapstructure:"window"`
}

// CORSConfig CORS 配置
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
	AllowedMethods []string `yaml:"allowed_methods" mapstructure:"allowed_methods"`
	AllowedHeaders []string `yaml:"allowed_headers" mapstructure:"allowed_headers"`
}
