package config

import (
	"time"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Config is the root configuration for InfoFlow.
type Config struct {
	Sources   []string        `mapstructure:"sources"   yaml:"sources"`
	Fetcher   FetcherConfig   `mapstructure:"fetcher"   yaml:"fetcher"`
	LLM       LLMConfig       `mapstructure:"llm"       yaml:"llm"`
	Translate TranslateConfig `mapstructure:"translate" yaml:"translate"`
	Store     StoreConfig     `mapstructure:"store"     yaml:"store"`
	Ingest    IngestConfig    `mapstructure:"ingest"    yaml:"ingest"`
	Mail      MailConfig      `mapstructure:"mail"      yaml:"mail"`
	Scheduler SchedulerConfig `mapstructure:"scheduler" yaml:"scheduler"`
	Logging   LoggingConfig   `mapstructure:"logging"   yaml:"logging"`
}

// FetcherConfig controls the page fetcher.
type FetcherConfig struct {
	Timeout     time.Duration `mapstructure:"timeout"       yaml:"timeout"`
	MaxBodySize int64         `mapstructure:"max_body_size" yaml:"max_body_size"`
	UserAgent   string        `mapstructure:"user_agent"    yaml:"user_agent"`
}

// LLMConfig controls the extraction model integration.
type LLMConfig struct {
	Provider    string  `mapstructure:"provider"    yaml:"provider"` // openai, ollama, custom
	Endpoint    string  `mapstructure:"endpoint"    yaml:"endpoint"`
	Model       string  `mapstructure:"model"       yaml:"model"`
	APIKey      string  `mapstructure:"api_key"     yaml:"api_key"` // INFOFLOW_LLM_API_KEY
	MaxTokens   int     `mapstructure:"max_tokens"  yaml:"max_tokens"`
	Temperature float64 `mapstructure:"temperature" yaml:"temperature"`
}

// TranslateConfig controls digest translation.
type TranslateConfig struct {
	Mode        string `mapstructure:"mode"         yaml:"mode"` // llm, baidu, none
	Endpoint    string `mapstructure:"endpoint"     yaml:"endpoint"`
	Model       string `mapstructure:"model"        yaml:"model"`
	APIKey      string `mapstructure:"api_key"      yaml:"api_key"` // INFOFLOW_TRANSLATE_API_KEY
	BaiduAppID  string `mapstructure:"baidu_app_id" yaml:"baidu_app_id"`
	BaiduSecret string `mapstructure:"baidu_secret" yaml:"baidu_secret"`
	TargetLang  string `mapstructure:"target_lang"  yaml:"target_lang"`
}

// StoreConfig controls the document store.
type StoreConfig struct {
	URI        string        `mapstructure:"uri"        yaml:"uri"`
	Database   string        `mapstructure:"database"   yaml:"database"`
	Collection string        `mapstructure:"collection" yaml:"collection"`
	Retention  time.Duration `mapstructure:"retention"  yaml:"retention"`
}

// IngestConfig controls detail backfill.
type IngestConfig struct {
	RateLimitWait       time.Duration `mapstructure:"rate_limit_wait"        yaml:"rate_limit_wait"`
	RateLimitMaxRetries int           `mapstructure:"rate_limit_max_retries" yaml:"rate_limit_max_retries"`
	MaxListItems        int           `mapstructure:"max_list_items"         yaml:"max_list_items"`
}

// MailConfig controls digest delivery.
type MailConfig struct {
	Host       string        `mapstructure:"host"        yaml:"host"`
	Port       int           `mapstructure:"port"        yaml:"port"`
	Username   string        `mapstructure:"username"    yaml:"username"` // INFOFLOW_MAIL_USERNAME
	Password   string        `mapstructure:"password"    yaml:"password"` // INFOFLOW_MAIL_PASSWORD
	From       string        `mapstructure:"from"        yaml:"from"`
	Recipients []string      `mapstructure:"recipients"  yaml:"recipients"`
	RetryCount int           `mapstructure:"retry_count" yaml:"retry_count"`
	RetryDelay time.Duration `mapstructure:"retry_delay" yaml:"retry_delay"`
	SendDelay  time.Duration `mapstructure:"send_delay"  yaml:"send_delay"`
}

// SchedulerConfig controls the daemonized scheduler.
type SchedulerConfig struct {
	ConfigPath string `mapstructure:"config_path" yaml:"config_path"`
	LogDir     string `mapstructure:"log_dir"     yaml:"log_dir"`
	PidFile    string `mapstructure:"pid_file"    yaml:"pid_file"`
	Timezone   string `mapstructure:"timezone"    yaml:"timezone"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
	File  string `mapstructure:"file"  yaml:"file"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Fetcher: FetcherConfig{
			Timeout:     30 * time.Second,
			MaxBodySize: 10 * 1024 * 1024, // 10MB
			UserAgent:   "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		},
		LLM: LLMConfig{
			Provider:    "openai",
			Model:       "gpt-4o-mini",
			MaxTokens:   2048,
			Temperature: 0.1,
		},
		Translate: TranslateConfig{
			Mode:       "llm",
			Endpoint:   "https://open.bigmodel.cn/api/paas/v4",
			Model:      "glm-4-flash",
			TargetLang: "zh",
		},
		Store: StoreConfig{
			URI:        "mongodb://localhost:27017/",
			Database:   "InfoFlow",
			Collection: "news",
			Retention:  7 * 24 * time.Hour,
		},
		Ingest: IngestConfig{
			RateLimitWait:       30 * time.Second,
			RateLimitMaxRetries: 10,
			MaxListItems:        10,
		},
		Mail: MailConfig{
			Host:       "smtp.163.com",
			Port:       465,
			RetryCount: 1,
			RetryDelay: 5 * time.Second,
			SendDelay:  2 * time.Second,
		},
		Scheduler: SchedulerConfig{
			ConfigPath: "./logs/scheduler_config.json",
			LogDir:     "./logs",
			PidFile:    "./logs/scheduler.pid",
			Timezone:   "Asia/Shanghai",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}
