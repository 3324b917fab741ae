// internal/workers/data-access/query-postgresql/config.go
package querypostgresql

import "time"

type Config struct {
	// Timeout caps the whole job, queue wait and query included.
	Timeout time.Duration
	// MaxRows caps list query results. Query output travels back to the
	// process engine as job variables, and Zeebe rejects oversized
	// records, so unbounded result sets would poison the process.
	// Zero disables the cap.
	MaxRows int
}

// DefaultConfig applies the fleet defaults around the configured
// timeout. A non-positive timeout falls back to 10 seconds.
func DefaultConfig(timeout time.Duration) *Config {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Config{
		Timeout: timeout,
		MaxRows: 500,
	}
}
