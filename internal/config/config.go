package config

import (
	"os"
	"strconv"
)

// Config holds the run configuration assembled from environment variables
// and the embedded model presets. It is built once per run and passed down
// explicitly; there is no module-level state.
type Config struct {
	Extractor ExtractorConfig
	Matcher   MatcherConfig
	Logging   LoggingConfig
	Models    ModelsConfig
}

type MatcherConfig struct {
	DedupeThreshold int // Hamming distance threshold for --dedupe
}

type ExtractorConfig struct {
	URL       string // embedding server base URL
	Device    string // device preference forwarded to the embedding server
	ModelsDir string // directory with the dlib model files
}

type LoggingConfig struct {
	Level string // logrus level name (debug, info, warn, error)
	File  string // log file path; empty disables the file writer
}

// envStr reads an environment variable with a default.
func envStr(key, defaultVal string) string {
	if s := os.Getenv(key); s != "" {
		return s
	}
	return defaultVal
}

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

func Load() *Config {
	return &Config{
		Extractor: ExtractorConfig{
			URL:       os.Getenv("EMBEDDING_URL"),
			Device:    envStr("EMBEDDING_DEVICE", "auto"),
			ModelsDir: envStr("DLIB_MODELS_DIR", "models"),
		},
		Matcher: MatcherConfig{
			DedupeThreshold: envInt("DEDUPE_THRESHOLD", 10),
		},
		Logging: LoggingConfig{
			Level: envStr("LOG_LEVEL", "info"),
			File:  envStr("LOG_FILE", "face-sieve.log"),
		},
		Models: loadModelPresets(),
	}
}
