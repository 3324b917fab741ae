// internal/workers/ai-conversation/query-campaign-data/config.go
package querycampaigndata

import "time"

type Config struct {
	Timeout    time.Duration
	CacheTTL   time.Duration
	MaxResults int
}

func LoadConfig() *Config {
	return &Config{
		Timeout:    30 * time.Second,
		CacheTTL:   5 * time.Minute,
		MaxResults: 25,
	}
}
