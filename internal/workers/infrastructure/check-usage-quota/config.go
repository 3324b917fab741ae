// internal/workers/infrastructure/check-usage-quota/config.go
package checkusagequota

import "time"

type Config struct {
	Timeout time.Duration

	// MessageLimit is the per-window allowance for the free tier; paid
	// tiers scale it by their multiplier.
	MessageLimit int
	WindowHours  int
	CacheTTL     time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout:      10 * time.Second,
		MessageLimit: 200,
		WindowHours:  24,
		CacheTTL:     5 * time.Minute,
	}
}
