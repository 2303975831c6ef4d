// internal/common/config/config.go
package config

import (
	"fmt"
	"time"
)

// Config is the root configuration for the case workers.
type Config struct {
	App         AppConfig               `mapstructure:"app"`
	Camunda     CamundaConfig           `mapstructure:"camunda"`
	Database    DatabaseConfig          `mapstructure:"database"`
	Lookup      LookupConfig            `mapstructure:"lookup"`
	AWS         AWSConfig               `mapstructure:"aws"`
	Workers     map[string]WorkerConfig `mapstructure:"workers"`
	Logging     LoggingConfig           `mapstructure:"logging"`
	Tracing     TracingConfig           `mapstructure:"tracing"`
	Server      ServerConfig            `mapstructure:"server"`
	Registry    RegistryConfig          `mapstructure:"registry"`
	DataQuality DataQualityConfig       `mapstructure:"data_quality"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type CamundaConfig struct {
	BrokerAddress  string `mapstructure:"broker_address"`
	MaxJobsActive  int    `mapstructure:"max_jobs_active"`
	Timeout        int    `mapstructure:"timeout"`         // milliseconds
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
	Insecure       bool   `mapstructure:"insecure"`
}

type DatabaseConfig struct {
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Redis         RedisConfig         `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the lib/pq connection string.
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type ElasticsearchConfig struct {
	Addresses []string `mapstructure:"addresses"`
	Username  string   `mapstructure:"username"`
	Password  string   `mapstructure:"password"`
	Index     string   `mapstructure:"index"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// LookupConfig points at the reference-data service and its cache.
type LookupConfig struct {
	BaseURL    string `mapstructure:"base_url"`
	StaticFile string `mapstructure:"static_file"` // seeds a static resolver instead of the HTTP service
	Timeout    int    `mapstructure:"timeout"`     // milliseconds
	CacheTTL   int    `mapstructure:"cache_ttl"`   // seconds, 0 disables caching
}

type AWSConfig struct {
	Region string `mapstructure:"region"`
	SNS    struct {
		Enabled          bool   `mapstructure:"enabled"`
		SubmissionsTopic string `mapstructure:"submissions_topic_arn"`
	} `mapstructure:"sns"`
}

// WorkerConfig holds the settings every worker shares.
type WorkerConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxJobsActive int  `mapstructure:"max_jobs_active"`
	Timeout       int  `mapstructure:"timeout"` // milliseconds
	MaxRetries    int  `mapstructure:"max_retries"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

type TracingConfig struct {
	Enabled        bool    `mapstructure:"enabled"`
	JaegerEndpoint string  `mapstructure:"jaeger_endpoint"`
	SampleRatio    float64 `mapstructure:"sample_ratio"`
}

type ServerConfig struct {
	Address string `mapstructure:"address"`
}

type RegistryConfig struct {
	Path string `mapstructure:"path"`
}

type DataQualityConfig struct {
	// IndexIssues sends recovered mapping issues to Elasticsearch.
	IndexIssues bool `mapstructure:"index_issues"`
}

// LookupTimeout is the per-request deadline for the reference-data service.
func (l LookupConfig) LookupTimeout() time.Duration {
	return GetDuration(l.Timeout)
}

// TTL is the redis expiry for cached lookups.
func (l LookupConfig) TTL() time.Duration {
	return time.Duration(l.CacheTTL) * time.Second
}
