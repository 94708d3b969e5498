// internal/workers/matching/generate-supplier-matches/config.go
package generatesuppliermatches

import (
	"time"

	"supplier-matching/internal/common/config"
)

type Config struct {
	Timeout time.Duration
	// TopSuppliers caps topSupplierIds in the job output.
	TopSuppliers int
}

func NewConfig(wcfg config.WorkerConfig) *Config {
	cfg := &Config{
		Timeout:      config.GetDuration(wcfg.Timeout),
		TopSuppliers: 5,
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return cfg
}
