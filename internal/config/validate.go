package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateRateLimit(); err != nil {
		return err
	}
	if err := c.validateGemini(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if c.Paths.DataDir == "" {
		return errors.New("paths.data_dir must be set")
	}
	if c.Paths.CacheDir == "" {
		return errors.New("paths.cache_dir must be set")
	}
	if c.Paths.Bind == "" {
		return errors.New("paths.bind must be set")
	}
	return nil
}

func (c *Config) validateRateLimit() error {
	if c.RateLimit.WindowSeconds <= 0 {
		return errors.New("ratelimit.window_seconds must be positive")
	}
	if c.RateLimit.MaxRequests <= 0 {
		return errors.New("ratelimit.max_requests must be positive")
	}
	return nil
}

// validateGemini checks shape only. A missing API key is allowed: the server
// still serves seeded names and fails generation requests with a clear error.
func (c *Config) validateGemini() error {
	if c.Gemini.BaseURL == "" {
		return errors.New("gemini.base_url must be set")
	}
	if c.Gemini.Model == "" {
		return errors.New("gemini.model must be set")
	}
	if c.Gemini.TimeoutSeconds <= 0 {
		return errors.New("gemini.timeout_seconds must be positive")
	}
	if c.Gemini.MaxAttempts <= 0 {
		return errors.New("gemini.max_attempts must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "", "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	return nil
}
