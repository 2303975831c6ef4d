// internal/workers/application/submit-case-application/config.go
package submitcaseapplication

import (
	"time"

	"caab-workers/internal/common/config"
)

type Config struct {
	Timeout time.Duration
}

func LoadConfig(cfg *config.Config) *Config {
	c := &Config{Timeout: 30 * time.Second}
	if cfg == nil {
		return c
	}
	if w := config.GetWorkerConfig(cfg, TaskType); w.Timeout > 0 {
		c.Timeout = config.GetDuration(w.Timeout)
	}
	return c
}
