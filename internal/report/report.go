// Package report records the outcome of a benchmark run and writes it as YAML.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/vvka-141/reviewbench/pkg/reviewbench"
)

// RunReport describes one run from CSV load to final row count.
type RunReport struct {
	RunID     string    `yaml:"run_id"`
	StartedAt time.Time `yaml:"started_at"`

	CSVPath      string                   `yaml:"csv_path"`
	Table        string                   `yaml:"table"`
	InsertMethod reviewbench.InsertMethod `yaml:"insert_method"`

	RecordsLoaded int   `yaml:"records_loaded"`
	TableCreated  bool  `yaml:"table_created"`
	Cleared       bool  `yaml:"cleared"`
	RowsCleared   int64 `yaml:"rows_cleared"`

	Insert        reviewbench.InsertOutcome `yaml:"insert"`
	Update        reviewbench.UpdateResult  `yaml:"update"`
	FinalRowCount int64                     `yaml:"final_row_count"`

	Elapsed time.Duration `yaml:"elapsed"`
}

// New starts a report for cfg with a fresh random run ID.
func New(cfg reviewbench.RunConfig, now time.Time) *RunReport {
	return &RunReport{
		RunID:        uuid.NewString(),
		StartedAt:    now.UTC(),
		CSVPath:      cfg.CSVPath,
		Table:        cfg.TableName,
		InsertMethod: cfg.InsertMethod,
	}
}

// Marshal renders the report as YAML.
func (r *RunReport) Marshal() ([]byte, error) {
	return yaml.Marshal(r)
}

// WriteFile writes the report to path, creating parent directories.
func (r *RunReport) WriteFile(path string) error {
	data, err := r.Marshal()
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create report directory: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write report %s: %w", path, err)
	}
	return nil
}

// ReadFile loads a report previously written by WriteFile.
func ReadFile(path string) (*RunReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var r RunReport
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to decode report %s: %w", path, err)
	}
	return &r, nil
}
