package config

const (
	defaultDataDir           = "~/.local/share/namearchive"
	defaultLogDir            = "~/.local/share/namearchive/logs"
	defaultCacheDir          = "~/.cache/namearchive"
	defaultBind              = "127.0.0.1:8480"
	defaultRateLimitWindow   = 60
	defaultRateLimitMax      = 30
	defaultGeminiBaseURL     = "https://generativelanguage.googleapis.com/v1beta"
	defaultGeminiModel       = "gemini-2.5-flash-lite"
	defaultGeminiTimeoutSecs = 15
	defaultGeminiMaxAttempts = 3
	defaultLogLevel          = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:  defaultDataDir,
			LogDir:   defaultLogDir,
			CacheDir: defaultCacheDir,
			Bind:     defaultBind,
		},
		RateLimit: RateLimit{
			WindowSeconds: defaultRateLimitWindow,
			MaxRequests:   defaultRateLimitMax,
		},
		Gemini: Gemini{
			BaseURL:        defaultGeminiBaseURL,
			Model:          defaultGeminiModel,
			TimeoutSeconds: defaultGeminiTimeoutSecs,
			MaxAttempts:    defaultGeminiMaxAttempts,
		},
		Logging: Logging{
			Level: defaultLogLevel,
		},
	}
}
