package convert

import "runtime"

// WorkerConfig controls the row-normalization worker pool.
type WorkerConfig struct {
	MaxWorkers int // maximum concurrent row-normalization workers
	BatchSize  int // rows per batch handed to a single worker
}

// DefaultWorkerConfig uses all available CPU cores, 100 rows per batch.
func DefaultWorkerConfig() *WorkerConfig {
	return &WorkerConfig{
		MaxWorkers: runtime.NumCPU(),
		BatchSize:  100,
	}
}

func (c *WorkerConfig) normalize() *WorkerConfig {
	if c == nil {
		return DefaultWorkerConfig()
	}
	cfg := *c
	if cfg.MaxWorkers <= 0 {
		cfg.MaxWorkers = 1
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 10
	}
	return &cfg
}
