// internal/workers/ai-conversation/fetch-benchmarks/config.go
package fetchbenchmarks

import "time"

type Config struct {
	BenchmarksAPIBaseURL string
	APIKey               string
	Timeout              time.Duration
	MaxRetries           int
	MaxBenchmarks        int
}

func LoadConfig() *Config {
	return &Config{
		Timeout:       15 * time.Second,
		MaxRetries:    2,
		MaxBenchmarks: 24,
	}
}
