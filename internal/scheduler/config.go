package scheduler

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Config is the persisted scheduler configuration: which daily times fire
// which command.
type Config struct {
	CrawlerTimes  []string `json:"crawler_times"`
	EmailTimes    []string `json:"email_times"`
	CrawlerScript string   `json:"crawler_script"`
	EmailScript   string   `json:"email_script"`
}

// DefaultConfig returns the configuration written on first run.
func DefaultConfig() Config {
	return Config{
		CrawlerTimes:  []string{"08:00"},
		EmailTimes:    []string{"16:25"},
		CrawlerScript: "infoflow crawl",
		EmailScript:   "infoflow digest",
	}
}

// LoadConfig reads the scheduler config, writing the defaults if the file
// does not exist yet.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		cfg := DefaultConfig()
		if err := SaveConfig(path, cfg); err != nil {
			return Config{}, err
		}
		return cfg, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("read scheduler config: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse scheduler config: %w", err)
	}
	return cfg, nil
}

// SaveConfig writes the config atomically (temp file + rename).
func SaveConfig(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(cfg, "", "    ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".scheduler_config-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// SetTimes replaces one kind's trigger times, leaving the other untouched.
// kind is "crawler" or "email".
func (c *Config) SetTimes(kind string, times []string) error {
	for _, t := range times {
		if err := ValidateTimeOfDay(t); err != nil {
			return err
		}
	}
	switch kind {
	case "crawler":
		c.CrawlerTimes = times
	case "email":
		c.EmailTimes = times
	default:
		return fmt.Errorf("unknown task kind %q", kind)
	}
	return nil
}

// ValidateTimeOfDay checks an HH:MM trigger time.
func ValidateTimeOfDay(s string) error {
	if _, err := time.Parse("15:04", s); err != nil {
		return fmt.Errorf("invalid time %q, want HH:MM: %w", s, err)
	}
	return nil
}
