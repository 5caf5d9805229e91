package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ErrConfigNotFound is returned when the config file does not exist.
// Callers can check for this with errors.Is(err, config.ErrConfigNotFound).
var ErrConfigNotFound = errors.New("config file not found")

type ConnectionConfig struct {
	Host           string `yaml:"host"`
	Port           int    `yaml:"port"`
	Username       string `yaml:"username"`
	Database       string `yaml:"database"`
	SSLMode        string `yaml:"sslmode"`
	AuthMethod     string `yaml:"auth_method,omitempty"`
	AzureTenantID  string `yaml:"azure_tenant_id,omitempty"`
	AzureClientID  string `yaml:"azure_client_id,omitempty"`
	AWSRegion      string `yaml:"aws_region,omitempty"`
	GoogleInstance string `yaml:"google_instance,omitempty"`
	ConnectRetries int    `yaml:"connect_retries,omitempty"`
}

type SourceConfig struct {
	Path     string `yaml:"path"`
	Encoding string `yaml:"encoding"`
}

type BenchmarkConfig struct {
	Table         string `yaml:"table"`
	Strategy      string `yaml:"strategy"`
	Pagination    string `yaml:"pagination"`
	InsertMethod  string `yaml:"insert_method"`
	PageSize      int    `yaml:"page_size"`
	BatchSentinel string `yaml:"batch_sentinel"`
	BulkSentinel  string `yaml:"bulk_sentinel"`
}

type ProjectConfig struct {
	Connection ConnectionConfig `yaml:"connection"`
	Source     SourceConfig     `yaml:"source"`
	Benchmark  BenchmarkConfig  `yaml:"benchmark"`
	Timeout    string           `yaml:"timeout"`
}

const ConfigFileName = "reviewbench.yaml"

// Load reads ConfigFileName from dir.
func Load(dir string) (*ProjectConfig, error) {
	return LoadFile(filepath.Join(dir, ConfigFileName))
}

// LoadFile reads a project config from an explicit path.
func LoadFile(path string) (*ProjectConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cfg ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
