// internal/workers/ai-conversation/save-conversation/config.go
package saveconversation

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 10 * time.Second,
	}
}
