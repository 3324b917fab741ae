// internal/workers/analytics/rank-insights/config.go
package rankinsights

import "time"

type Config struct {
	MaxItems int
	Timeout  time.Duration
}

func LoadConfig() *Config {
	return &Config{
		MaxItems: 10,
		Timeout:  10 * time.Second,
	}
}
