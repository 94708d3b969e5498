// internal/workers/matching/notify-matched-suppliers/config.go
package notifymatchedsuppliers

import (
	"time"

	"supplier-matching/internal/common/config"
)

type Config struct {
	Timeout time.Duration
}

func NewConfig(wcfg config.WorkerConfig) *Config {
	timeout := config.GetDuration(wcfg.Timeout)
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Config{Timeout: timeout}
}
