// internal/workers/ai-conversation/fetch-benchmarks/models.go
package fetchbenchmarks

type Input struct {
	Platform string   `json:"platform"`
	Vertical string   `json:"vertical"`
	Metrics  []string `json:"metrics"`
}

type Output struct {
	Benchmarks  []Benchmark `json:"benchmarks"`
	RetrievedAt string      `json:"retrievedAt"`
}

// Benchmark is the wire shape synthesize-analysis consumes downstream.
type Benchmark struct {
	Platform string  `json:"platform"`
	Vertical string  `json:"vertical"`
	Metric   string  `json:"metric"`
	Median   float64 `json:"median"`
	P25      float64 `json:"p25"`
	P75      float64 `json:"p75"`
}
