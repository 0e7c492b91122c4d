package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Load reads configuration from file and environment.
// Priority (highest to lowest): env vars > config file > defaults.
func Load(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	v := viper.New()
	v.SetConfigType("yaml")

	setDefaults(v, cfg)

	// Environment variable support, e.g. INFOFLOW_LLM_API_KEY, INFOFLOW_MAIL_PASSWORD
	v.SetEnvPrefix("INFOFLOW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("infoflow")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		home, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(filepath.Join(home, ".infoflow"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && configPath != "" {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found is okay if not explicitly specified
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}

// setDefaults registers default values in viper. Viper only unmarshals keys
// it knows about, so every default must be registered here.
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("sources", cfg.Sources)

	v.SetDefault("fetcher.timeout", cfg.Fetcher.Timeout)
	v.SetDefault("fetcher.max_body_size", cfg.Fetcher.MaxBodySize)
	v.SetDefault("fetcher.user_agent", cfg.Fetcher.UserAgent)

	v.SetDefault("llm.provider", cfg.LLM.Provider)
	v.SetDefault("llm.endpoint", cfg.LLM.Endpoint)
	v.SetDefault("llm.model", cfg.LLM.Model)
	v.SetDefault("llm.api_key", cfg.LLM.APIKey)
	v.SetDefault("llm.max_tokens", cfg.LLM.MaxTokens)
	v.SetDefault("llm.temperature", cfg.LLM.Temperature)

	v.SetDefault("translate.mode", cfg.Translate.Mode)
	v.SetDefault("translate.endpoint", cfg.Translate.Endpoint)
	v.SetDefault("translate.model", cfg.Translate.Model)
	v.SetDefault("translate.api_key", cfg.Translate.APIKey)
	v.SetDefault("translate.baidu_app_id", cfg.Translate.BaiduAppID)
	v.SetDefault("translate.baidu_secret", cfg.Translate.BaiduSecret)
	v.SetDefault("translate.target_lang", cfg.Translate.TargetLang)

	v.SetDefault("store.uri", cfg.Store.URI)
	v.SetDefault("store.database", cfg.Store.Database)
	v.SetDefault("store.collection", cfg.Store.Collection)
	v.SetDefault("store.retention", cfg.Store.Retention)

	v.SetDefault("ingest.rate_limit_wait", cfg.Ingest.RateLimitWait)
	v.SetDefault("ingest.rate_limit_max_retries", cfg.Ingest.RateLimitMaxRetries)
	v.SetDefault("ingest.max_list_items", cfg.Ingest.MaxListItems)

	v.SetDefault("mail.host", cfg.Mail.Host)
	v.SetDefault("mail.port", cfg.Mail.Port)
	v.SetDefault("mail.username", cfg.Mail.Username)
	v.SetDefault("mail.password", cfg.Mail.Password)
	v.SetDefault("mail.from", cfg.Mail.From)
	v.SetDefault("mail.recipients", cfg.Mail.Recipients)
	v.SetDefault("mail.retry_count", cfg.Mail.RetryCount)
	v.SetDefault("mail.retry_delay", cfg.Mail.RetryDelay)
	v.SetDefault("mail.send_delay", cfg.Mail.SendDelay)

	v.SetDefault("scheduler.config_path", cfg.Scheduler.ConfigPath)
	v.SetDefault("scheduler.log_dir", cfg.Scheduler.LogDir)
	v.SetDefault("scheduler.pid_file", cfg.Scheduler.PidFile)
	v.SetDefault("scheduler.timezone", cfg.Scheduler.Timezone)

	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("logging.file", cfg.Logging.File)
}
