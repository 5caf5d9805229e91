package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vvka-141/reviewbench/pkg/reviewbench"
)

type mockConnector struct {
	pool *pgxpool.Pool
	err  error
}

func (m *mockConnector) Connect(_ context.Context) (*pgxpool.Pool, error) {
	return m.pool, m.err
}

type mockApprover struct {
	approved bool
	err      error
	calls    int
}

func (m *mockApprover) RequestApproval(_ context.Context, _ string) (bool, error) {
	m.calls++
	return m.approved, m.err
}

type mockSource struct {
	records []reviewbench.ReviewRecord
	err     error
}

func (m *mockSource) Load(_, _ string) ([]reviewbench.ReviewRecord, error) {
	return m.records, m.err
}

type fakeRow struct {
	id  int64
	rec reviewbench.ReviewRecord
}

// fakeTable is an in-memory ReviewTable. Page updates become visible on commit.
type fakeTable struct {
	mu      sync.Mutex
	name    string
	exists  bool
	rows    []fakeRow
	nextID  int64

	fetches    int
	setTypes   int
	commits    int
	rollbacks  int
	requests   []reviewbench.PageRequest
	setTypeAll int

	beginErr     error
	fetchErrAt   int // 1-based fetch number that fails; 0 disables
	setTypeErrID int64
	insertErr    error
	countErr     error
	deleteErr    error
}

func newFakeTable(rowCount int) *fakeTable {
	ft := &fakeTable{name: "reviews", exists: true}
	for i := 0; i < rowCount; i++ {
		ft.add(reviewbench.ReviewRecord{RowNumber: fmt.Sprint(i), Type: "test"})
	}
	return ft
}

func (f *fakeTable) add(rec reviewbench.ReviewRecord) {
	f.nextID++
	f.rows = append(f.rows, fakeRow{id: f.nextID, rec: rec})
}

func (f *fakeTable) types() map[string]int {
	f.mu.Lock()
	defer f.mu.Unlock()
	counts := map[string]int{}
	for _, r := range f.rows {
		counts[r.rec.Type]++
	}
	return counts
}

func (f *fakeTable) Name() string { return f.name }

func (f *fakeTable) EnsureTable(context.Context) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.exists {
		return false, nil
	}
	f.exists = true
	return true, nil
}

func (f *fakeTable) CountRows(context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.countErr != nil {
		return 0, f.countErr
	}
	return int64(len(f.rows)), nil
}

func (f *fakeTable) Insert(_ context.Context, records []reviewbench.ReviewRecord, _ reviewbench.InsertMethod) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertErr != nil {
		return 0, f.insertErr
	}
	for _, r := range records {
		f.add(r)
	}
	return int64(len(records)), nil
}

func (f *fakeTable) DeleteAll(context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return 0, f.deleteErr
	}
	n := int64(len(f.rows))
	f.rows = nil
	return n, nil
}

func (f *fakeTable) SetTypeAll(_ context.Context, value string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.setTypeAll++
	for i := range f.rows {
		f.rows[i].rec.Type = value
	}
	return int64(len(f.rows)), nil
}

func (f *fakeTable) BeginPage(context.Context) (reviewbench.PageTx, error) {
	if f.beginErr != nil {
		return nil, f.beginErr
	}
	return &fakePageTx{table: f, pending: map[int64]string{}}, nil
}

type fakePageTx struct {
	table   *fakeTable
	pending map[int64]string
	done    bool
}

func (p *fakePageTx) FetchIDs(_ context.Context, req reviewbench.PageRequest) ([]int64, error) {
	f := p.table
	f.mu.Lock()
	defer f.mu.Unlock()

	f.fetches++
	f.requests = append(f.requests, req)
	if f.fetchErrAt == f.fetches {
		return nil, errors.New("fetch failed")
	}

	ids := make([]int64, 0, len(f.rows))
	for _, r := range f.rows {
		ids = append(ids, r.id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var page []int64
	switch req.Mode {
	case reviewbench.PaginationKeyset:
		for _, id := range ids {
			if id > req.AfterID && len(page) < req.Limit {
				page = append(page, id)
			}
		}
	default:
		for i := req.Offset; i < int64(len(ids)) && len(page) < req.Limit; i++ {
			page = append(page, ids[i])
		}
	}
	return page, nil
}

func (p *fakePageTx) SetType(_ context.Context, id int64, value string) error {
	f := p.table
	f.mu.Lock()
	defer f.mu.Unlock()
	f.setTypes++
	if f.setTypeErrID != 0 && id == f.setTypeErrID {
		return errors.New("update failed")
	}
	p.pending[id] = value
	return nil
}

func (p *fakePageTx) Commit(context.Context) error {
	f := p.table
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.rows {
		if v, ok := p.pending[f.rows[i].id]; ok {
			f.rows[i].rec.Type = v
		}
	}
	f.commits++
	p.done = true
	return nil
}

func (p *fakePageTx) Rollback(context.Context) error {
	if p.done {
		return nil
	}
	p.table.mu.Lock()
	p.table.rollbacks++
	p.table.mu.Unlock()
	p.done = true
	return nil
}
