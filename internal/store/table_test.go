package store

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vvka-141/reviewbench/internal/logging"
	"github.com/vvka-141/reviewbench/pkg/reviewbench"
)

// nilDBTX satisfies DBTX for tests that never touch the database.
type nilDBTX struct{ DBTX }

func TestNewTable_RejectsInvalidNames(t *testing.T) {
	for _, name := range []string{"", "1reviews", "reviews; DROP TABLE x", `re"views`, strings.Repeat("a", 64)} {
		_, err := NewTable(nilDBTX{}, name, logging.NewNullLogger())
		require.Error(t, err, name)
		assert.True(t, errors.Is(err, reviewbench.ErrInvalidConfig), name)
	}
}

func TestNewTable_RequiresConnection(t *testing.T) {
	_, err := NewTable(nil, "reviews", logging.NewNullLogger())
	assert.True(t, errors.Is(err, reviewbench.ErrInvalidConfig))
}

func TestTable_RendersQuotedIdentifier(t *testing.T) {
	table, err := NewTable(nilDBTX{}, "Reviews_2", logging.NewNullLogger())
	require.NoError(t, err)

	assert.Equal(t, "Reviews_2", table.Name())
	assert.Equal(t, `SELECT COUNT(row_number) FROM "Reviews_2"`, table.sql(queryCountRows))
	assert.Equal(t, `UPDATE "Reviews_2" SET type = $1 WHERE id = $2`, table.sql(querySetTypeByID))
	assert.Contains(t, table.sql(queryInsertRow), `INSERT INTO "Reviews_2"`)
}

func TestExecError_WrapsBoth(t *testing.T) {
	cause := errors.New("boom")
	err := execError("failed to do it", cause)

	assert.True(t, errors.Is(err, reviewbench.ErrExecutionFailed))
	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, "failed to do it: execution failed: boom", err.Error())
}
