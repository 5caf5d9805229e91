package services

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vvka-141/reviewbench/internal/db"
	"github.com/vvka-141/reviewbench/internal/report"
	"github.com/vvka-141/reviewbench/internal/store"
	"github.com/vvka-141/reviewbench/pkg/reviewbench"
)

// TableFactory binds a ReviewTable to the session connection.
type TableFactory func(conn *pgxpool.Conn, name string, logger reviewbench.Logger) (reviewbench.ReviewTable, error)

// NewStoreTable is the default TableFactory.
func NewStoreTable(conn *pgxpool.Conn, name string, logger reviewbench.Logger) (reviewbench.ReviewTable, error) {
	return store.NewTable(conn, name, logger)
}

// BenchmarkService runs load, clear, insert and update against one table.
// Thread-Safety: NOT safe for concurrent Run() calls on the same instance.
type BenchmarkService struct {
	connectorFactory db.ConnectorFactory
	tableFactory     TableFactory
	source           reviewbench.RecordSource
	approver         reviewbench.Approver
	logger           reviewbench.Logger
	stdout           io.Writer
	progress         ProgressFunc
	now              func() time.Time
}

// NewBenchmarkService creates a BenchmarkService.
// Panics on nil dependencies.
func NewBenchmarkService(
	connectorFactory db.ConnectorFactory,
	source reviewbench.RecordSource,
	approver reviewbench.Approver,
	logger reviewbench.Logger,
) *BenchmarkService {
	if connectorFactory == nil {
		panic("connectorFactory cannot be nil")
	}
	if source == nil {
		panic("source cannot be nil")
	}
	if approver == nil {
		panic("approver cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}

	return &BenchmarkService{
		connectorFactory: connectorFactory,
		tableFactory:     NewStoreTable,
		source:           source,
		approver:         approver,
		logger:           logger,
		stdout:           os.Stdout,
		now:              time.Now,
	}
}

// WithProgress returns a copy of s that reports batch pages to fn.
func (s *BenchmarkService) WithProgress(fn ProgressFunc) *BenchmarkService {
	clone := *s
	clone.progress = fn
	return &clone
}

// WithStdout returns a copy of s that prints timing results to w.
func (s *BenchmarkService) WithStdout(w io.Writer) *BenchmarkService {
	clone := *s
	clone.stdout = w
	return &clone
}

// Run executes one benchmark run. The database connection is released on every path.
func (s *BenchmarkService) Run(ctx context.Context, cfg reviewbench.RunConfig) (*report.RunReport, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	started := s.now()
	rep := report.New(cfg, started)
	s.logger.Verbose("Run %s started", rep.RunID)

	records, err := s.source.Load(cfg.CSVPath, cfg.Encoding)
	if err != nil {
		return nil, err
	}
	rep.RecordsLoaded = len(records)
	s.logger.Info("Loaded %d records from %s", len(records), cfg.CSVPath)

	session, err := s.openSession(ctx, cfg.Connection)
	if err != nil {
		return nil, err
	}
	defer session.Close()

	table, err := s.tableFactory(session.Conn(), cfg.TableName, s.logger)
	if err != nil {
		return nil, err
	}

	if err := s.execute(ctx, table, cfg, records, rep); err != nil {
		return nil, err
	}

	rep.Elapsed = s.now().Sub(started)
	return rep, nil
}

// openSession connects and acquires the single connection used by the run.
func (s *BenchmarkService) openSession(ctx context.Context, config *reviewbench.ConnectionConfig) (*reviewbench.Session, error) {
	connector, err := s.connectorFactory(config, s.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create connector: %w", err)
	}

	var cleanup func()
	if closer, ok := connector.(io.Closer); ok {
		cleanup = func() { closer.Close() } //nolint:errcheck
	}

	pool, err := connector.Connect(ctx)
	if err != nil {
		if cleanup != nil {
			cleanup()
		}
		return nil, fmt.Errorf("%w: %w", reviewbench.ErrConnectionFailed, err)
	}

	conn, err := pool.Acquire(ctx)
	if err != nil {
		pool.Close()
		if cleanup != nil {
			cleanup()
		}
		return nil, fmt.Errorf("failed to acquire connection: %w: %w", reviewbench.ErrConnectionFailed, err)
	}

	s.logger.Verbose("Connected to %s:%d/%s as %s", config.Host, config.Port, config.Database, config.Username)
	return reviewbench.NewSession(pool, conn, cleanup), nil
}

// execute runs the table steps: ensure, optional clear, insert-or-skip, update, count.
// The table is ensured before clearing so --clean_table works on a first run.
func (s *BenchmarkService) execute(ctx context.Context, table reviewbench.ReviewTable, cfg reviewbench.RunConfig, records []reviewbench.ReviewRecord, rep *report.RunReport) error {
	created, err := table.EnsureTable(ctx)
	if err != nil {
		return err
	}
	rep.TableCreated = created
	if created {
		s.logger.Info("Created table %s", table.Name())
	}

	if cfg.CleanTable {
		approved, err := s.approver.RequestApproval(ctx, table.Name())
		if err != nil {
			return fmt.Errorf("approval failed: %w", err)
		}
		if !approved {
			return fmt.Errorf("clearing table %s was not approved: %w", table.Name(), reviewbench.ErrApprovalDenied)
		}

		deleted, err := table.DeleteAll(ctx)
		if err != nil {
			return err
		}
		rep.Cleared = true
		rep.RowsCleared = deleted
		s.logger.Info("Deleted %d rows from %s", deleted, table.Name())
	}

	outcome, err := InsertIfEmpty(ctx, table, records, cfg.InsertMethod, s.stdout, s.logger)
	if err != nil {
		return err
	}
	rep.Insert = *outcome

	result, err := s.updater(table, cfg).Update(ctx)
	if err != nil {
		return err
	}
	rep.Update = *result
	fmt.Fprintf(s.stdout, "Elapsed time: %.2f seconds\n", result.Elapsed.Seconds())

	count, err := table.CountRows(ctx)
	if err != nil {
		return err
	}
	rep.FinalRowCount = count
	return nil
}

func (s *BenchmarkService) updater(table reviewbench.ReviewTable, cfg reviewbench.RunConfig) Updater {
	if cfg.Strategy == reviewbench.StrategyBulk {
		return NewBulkUpdater(table, cfg.Sentinel())
	}
	return NewBatchUpdater(table, s.logger, cfg.PageSize, cfg.Pagination, cfg.Sentinel()).WithProgress(s.progress)
}
