// internal/workers/data-access/query-elasticsearch/config.go
package queryelasticsearch

import "time"

type Config struct {
	// Timeout caps the whole search job.
	Timeout time.Duration
	// MaxPageSize clamps the requested page size. Hits ride back to the
	// process engine as job variables, so page size is a record size
	// control as much as a latency one. Zero keeps the built-in clamp.
	MaxPageSize int
}

// DefaultConfig applies the fleet defaults around the configured
// timeout. A non-positive timeout falls back to 10 seconds.
func DefaultConfig(timeout time.Duration) *Config {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Config{
		Timeout:     timeout,
		MaxPageSize: 100,
	}
}
