package config

import (
	"fmt"
	"net/url"
	"time"
)

// Validate checks the configuration for invalid values.
func Validate(cfg *Config) error {
	for _, src := range cfg.Sources {
		if err := ValidateURL(src); err != nil {
			return fmt.Errorf("invalid source URL %q: %w", src, err)
		}
	}

	if cfg.Fetcher.Timeout <= 0 {
		return fmt.Errorf("fetcher.timeout must be > 0")
	}
	if cfg.Fetcher.MaxBodySize <= 0 {
		return fmt.Errorf("fetcher.max_body_size must be > 0")
	}

	switch cfg.LLM.Provider {
	case "openai", "ollama", "custom":
	default:
		return fmt.Errorf("llm.provider must be 'openai', 'ollama' or 'custom', got %q", cfg.LLM.Provider)
	}

	switch cfg.Translate.Mode {
	case "llm", "baidu", "none":
	default:
		return fmt.Errorf("translate.mode must be 'llm', 'baidu' or 'none', got %q", cfg.Translate.Mode)
	}

	if cfg.Store.URI == "" {
		return fmt.Errorf("store.uri must not be empty")
	}
	if cfg.Store.Retention <= 0 {
		return fmt.Errorf("store.retention must be > 0")
	}

	if cfg.Ingest.RateLimitWait <= 0 {
		return fmt.Errorf("ingest.rate_limit_wait must be > 0")
	}
	if cfg.Ingest.RateLimitMaxRetries < 0 {
		return fmt.Errorf("ingest.rate_limit_max_retries must be >= 0")
	}
	if cfg.Ingest.MaxListItems < 1 {
		return fmt.Errorf("ingest.max_list_items must be >= 1")
	}

	if cfg.Mail.RetryCount < 1 {
		return fmt.Errorf("mail.retry_count must be >= 1")
	}
	if cfg.Mail.RetryDelay < 0 || cfg.Mail.SendDelay < 0 {
		return fmt.Errorf("mail delays must be >= 0")
	}

	if _, err := time.LoadLocation(cfg.Scheduler.Timezone); err != nil {
		return fmt.Errorf("scheduler.timezone %q: %w", cfg.Scheduler.Timezone, err)
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[cfg.Logging.Level] {
		return fmt.Errorf("logging.level %q is not supported (valid: debug, info, warn, error)", cfg.Logging.Level)
	}

	return nil
}

// ValidateSecrets checks that every secret required by the enabled
// collaborators is present. Missing secrets are a hard startup failure.
func ValidateSecrets(cfg *Config) error {
	if cfg.LLM.Provider == "openai" && cfg.LLM.APIKey == "" {
		return fmt.Errorf("llm.api_key is required for provider %q (set INFOFLOW_LLM_API_KEY)", cfg.LLM.Provider)
	}
	return ValidateTranslateSecrets(cfg)
}

// ValidateTranslateSecrets checks the credentials for the enabled translation
// mode. Kept separate so digest-only runs do not demand the extraction key.
func ValidateTranslateSecrets(cfg *Config) error {
	switch cfg.Translate.Mode {
	case "llm":
		if cfg.Translate.APIKey == "" {
			return fmt.Errorf("translate.api_key is required for mode 'llm' (set INFOFLOW_TRANSLATE_API_KEY)")
		}
	case "baidu":
		if cfg.Translate.BaiduAppID == "" || cfg.Translate.BaiduSecret == "" {
			return fmt.Errorf("translate.baidu_app_id and translate.baidu_secret are required for mode 'baidu'")
		}
	}
	return nil
}

// ValidateMailSecrets checks the credentials needed for digest delivery.
// Kept separate so ingestion-only runs do not demand mail credentials.
func ValidateMailSecrets(cfg *Config) error {
	if cfg.Mail.Username == "" || cfg.Mail.Password == "" {
		return fmt.Errorf("mail.username and mail.password are required (set INFOFLOW_MAIL_USERNAME / INFOFLOW_MAIL_PASSWORD)")
	}
	return nil
}

// ValidateURL checks that a raw URL is absolute http(s).
func ValidateURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("missing host")
	}
	return nil
}
