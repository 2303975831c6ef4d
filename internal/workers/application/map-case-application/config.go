// internal/workers/application/map-case-application/config.go
package mapcaseapplication

import (
	"time"

	"caab-workers/internal/common/config"
)

type Config struct {
	Timeout time.Duration
	// IndexIssues sends recovered mapping issues to the data-quality index.
	IndexIssues bool
}

func LoadConfig(cfg *config.Config) *Config {
	c := &Config{Timeout: 30 * time.Second}
	if cfg == nil {
		return c
	}
	if w := config.GetWorkerConfig(cfg, TaskType); w.Timeout > 0 {
		c.Timeout = config.GetDuration(w.Timeout)
	}
	c.IndexIssues = cfg.DataQuality.IndexIssues
	return c
}
