package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/vvka-141/reviewbench/internal/config"
	"github.com/vvka-141/reviewbench/pkg/reviewbench"
)

type runFlagValues struct {
	conn connectionFlags

	cleanTable   bool
	force        bool
	csvPath      string
	encoding     string
	table        string
	pageSize     int
	strategy     string
	pagination   string
	insertMethod string
	reportPath   string
	metricsPath  string
	timeout      time.Duration
	envFile      string
	configPath   string
}

func bindRunFlags(cmd *cobra.Command) *runFlagValues {
	f := &runFlagValues{}
	flags := cmd.Flags()

	flags.BoolVar(&f.cleanTable, "clean_table", false,
		"Delete all rows of the table before inserting\n"+
			"On a terminal you confirm by typing the table name (--force skips this);\n"+
			"non-interactive runs delete without prompting")
	flags.BoolVar(&f.force, "force", false,
		"Skip the interactive confirmation for --clean_table")

	flags.StringVar(&f.csvPath, "csv", reviewbench.DefaultCSVPath,
		"Review CSV file to load")
	flags.StringVar(&f.encoding, "encoding", reviewbench.DefaultEncoding,
		"Character set of the CSV file (latin1, windows-1252, utf-8 or any IANA name)")
	flags.StringVar(&f.table, "table", reviewbench.DefaultTableName,
		"Target table name")

	flags.IntVar(&f.pageSize, "page-size", reviewbench.DefaultPageSize,
		"Rows per page for the batch strategy")
	flags.StringVar(&f.strategy, "strategy", string(reviewbench.StrategyBatch),
		"Update strategy: batch (one UPDATE per row, commit per page) | bulk (single UPDATE)")
	flags.StringVar(&f.pagination, "pagination", string(reviewbench.PaginationOffset),
		"Batch pagination: offset (LIMIT/OFFSET) | keyset (id > last id)")
	flags.StringVar(&f.insertMethod, "insert-method", string(reviewbench.InsertBatch),
		"Insert method: batch (parameterised INSERTs) | copy (COPY protocol)")

	flags.StringVar(&f.reportPath, "report", "",
		"Write the run report as YAML to this file")
	flags.StringVar(&f.metricsPath, "metrics-file", "",
		"Write run metrics in Prometheus text format to this file\n"+
			"(for the node_exporter textfile collector)")
	flags.DurationVar(&f.timeout, "timeout", 0,
		"Bound the whole run (default: no timeout)\n"+
			"Examples: 30s, 5m, 1h30m")

	flags.StringVar(&f.envFile, "env-file", "",
		"Load environment variables from this file before .env")
	flags.StringVar(&f.configPath, "config", "",
		"Project config file (default: ./"+config.ConfigFileName+" if present)")

	bindConnectionFlags(cmd, &f.conn)
	return f
}

// loadProjectConfig loads .env files and the project configuration.
// Returns nil config if the implicit reviewbench.yaml does not exist (not an error).
// godotenv never overrides variables that are already set, so --env-file wins over .env.
func loadProjectConfig(envFile, configPath string) (*config.ProjectConfig, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("failed to load env file %s: %v: %w", envFile, err, reviewbench.ErrInvalidConfig)
		}
	}
	_ = godotenv.Load()

	if configPath != "" {
		projectCfg, err := config.LoadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %v: %w", configPath, err, reviewbench.ErrInvalidConfig)
		}
		return projectCfg, nil
	}

	projectCfg, err := config.Load(".")
	if err != nil {
		if errors.Is(err, config.ErrConfigNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load %s: %v: %w", config.ConfigFileName, err, reviewbench.ErrInvalidConfig)
	}
	return projectCfg, nil
}

// buildRunConfig builds a RunConfig from CLI flags, environment and reviewbench.yaml.
// An explicitly set flag always wins; otherwise a non-empty reviewbench.yaml value
// replaces the flag default.
func buildRunConfig(cmd *cobra.Command, f *runFlagValues, verbose bool) (reviewbench.RunConfig, error) {
	projectCfg, err := loadProjectConfig(f.envFile, f.configPath)
	if err != nil {
		return reviewbench.RunConfig{}, err
	}
	if projectCfg == nil {
		projectCfg = &config.ProjectConfig{}
	}

	connConfig, err := resolveConnectionFromFlags(cmd, f.conn, projectCfg)
	if err != nil {
		return reviewbench.RunConfig{}, err
	}

	src, bench := projectCfg.Source, projectCfg.Benchmark

	strategy, err := reviewbench.ParseUpdateStrategy(stringSetting(cmd, "strategy", f.strategy, bench.Strategy))
	if err != nil {
		return reviewbench.RunConfig{}, err
	}
	pagination, err := reviewbench.ParsePaginationMode(stringSetting(cmd, "pagination", f.pagination, bench.Pagination))
	if err != nil {
		return reviewbench.RunConfig{}, err
	}
	insertMethod, err := reviewbench.ParseInsertMethod(stringSetting(cmd, "insert-method", f.insertMethod, bench.InsertMethod))
	if err != nil {
		return reviewbench.RunConfig{}, err
	}

	timeout, err := resolveEffectiveTimeout(cmd, projectCfg, f.timeout)
	if err != nil {
		return reviewbench.RunConfig{}, err
	}

	pageSize := f.pageSize
	if !cmd.Flags().Changed("page-size") && bench.PageSize != 0 {
		pageSize = bench.PageSize
	}

	return reviewbench.RunConfig{
		CSVPath:       stringSetting(cmd, "csv", f.csvPath, src.Path),
		Encoding:      stringSetting(cmd, "encoding", f.encoding, src.Encoding),
		TableName:     stringSetting(cmd, "table", f.table, bench.Table),
		Connection:    connConfig,
		CleanTable:    f.cleanTable,
		Strategy:      strategy,
		Pagination:    pagination,
		InsertMethod:  insertMethod,
		PageSize:      pageSize,
		BatchSentinel: firstSet(bench.BatchSentinel, reviewbench.BatchSentinel),
		BulkSentinel:  firstSet(bench.BulkSentinel, reviewbench.BulkSentinel),
		Timeout:       timeout,
		Verbose:       verbose,
	}, nil
}

// stringSetting returns the flag value when it was set on the command line,
// else the project file value when present, else the flag default.
func stringSetting(cmd *cobra.Command, name, flagValue, fileValue string) string {
	if !cmd.Flags().Changed(name) && fileValue != "" {
		return fileValue
	}
	return flagValue
}

// resolveEffectiveTimeout returns the effective timeout, preferring reviewbench.yaml if flag wasn't set.
func resolveEffectiveTimeout(
	cmd *cobra.Command,
	projectCfg *config.ProjectConfig,
	flagTimeout time.Duration,
) (time.Duration, error) {
	if projectCfg != nil && projectCfg.Timeout != "" && !cmd.Flags().Changed("timeout") {
		parsed, err := time.ParseDuration(projectCfg.Timeout)
		if err != nil {
			return 0, fmt.Errorf("invalid timeout in %s: %v: %w", config.ConfigFileName, err, reviewbench.ErrInvalidConfig)
		}
		return parsed, nil
	}
	return flagTimeout, nil
}

func firstSet(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
