package reviewbench_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vvka-141/reviewbench/pkg/reviewbench"
)

func validRunConfig() reviewbench.RunConfig {
	return reviewbench.RunConfig{
		CSVPath:       "imdb_master.csv",
		Encoding:      reviewbench.DefaultEncoding,
		TableName:     reviewbench.DefaultTableName,
		Connection:    &reviewbench.ConnectionConfig{Database: reviewbench.DefaultDatabaseName},
		Strategy:      reviewbench.StrategyBatch,
		Pagination:    reviewbench.PaginationOffset,
		InsertMethod:  reviewbench.InsertBatch,
		PageSize:      reviewbench.DefaultPageSize,
		BatchSentinel: reviewbench.BatchSentinel,
		BulkSentinel:  reviewbench.BulkSentinel,
	}
}

func TestRunConfig_Validate_Valid(t *testing.T) {
	cfg := validRunConfig()
	assert.NoError(t, cfg.Validate())
}

func TestRunConfig_Validate_CollectsAllErrors(t *testing.T) {
	cfg := validRunConfig()
	cfg.CSVPath = ""
	cfg.TableName = "reviews; DROP TABLE users"
	cfg.PageSize = 0
	cfg.Timeout = -1

	err := cfg.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, reviewbench.ErrInvalidConfig))
	assert.Contains(t, err.Error(), "CSVPath is required")
	assert.Contains(t, err.Error(), "TableName")
	assert.Contains(t, err.Error(), "page size must be positive")
	assert.Contains(t, err.Error(), "timeout cannot be negative")
}

func TestRunConfig_Validate_MissingDatabase(t *testing.T) {
	cfg := validRunConfig()
	cfg.Connection = &reviewbench.ConnectionConfig{}
	assert.ErrorIs(t, cfg.Validate(), reviewbench.ErrInvalidConfig)

	cfg.Connection = nil
	assert.ErrorIs(t, cfg.Validate(), reviewbench.ErrInvalidConfig)
}

func TestRunConfig_Sentinel(t *testing.T) {
	cfg := validRunConfig()
	assert.Equal(t, "test1", cfg.Sentinel())

	cfg.Strategy = reviewbench.StrategyBulk
	assert.Equal(t, "test2", cfg.Sentinel())

	cfg.BulkSentinel = ""
	assert.Error(t, cfg.Validate())
}

func TestValidateIdentifier(t *testing.T) {
	valid := []string{"reviews", "_tmp", "Reviews2024", "a"}
	for _, name := range valid {
		assert.NoError(t, reviewbench.ValidateIdentifier(name), name)
	}

	invalid := []string{"", "1reviews", "reviews-2", `re"views`, "public.reviews", "reviews; DROP TABLE x",
		"a234567890123456789012345678901234567890123456789012345678901234"}
	for _, name := range invalid {
		assert.ErrorIs(t, reviewbench.ValidateIdentifier(name), reviewbench.ErrInvalidConfig, name)
	}
}

func TestParseEnums(t *testing.T) {
	s, err := reviewbench.ParseUpdateStrategy(" Bulk ")
	require.NoError(t, err)
	assert.Equal(t, reviewbench.StrategyBulk, s)

	_, err = reviewbench.ParseUpdateStrategy("parallel")
	assert.ErrorIs(t, err, reviewbench.ErrInvalidConfig)

	p, err := reviewbench.ParsePaginationMode("KEYSET")
	require.NoError(t, err)
	assert.Equal(t, reviewbench.PaginationKeyset, p)

	_, err = reviewbench.ParsePaginationMode("cursor")
	assert.ErrorIs(t, err, reviewbench.ErrInvalidConfig)

	m, err := reviewbench.ParseInsertMethod("copy")
	require.NoError(t, err)
	assert.Equal(t, reviewbench.InsertCopy, m)

	_, err = reviewbench.ParseInsertMethod("upsert")
	assert.ErrorIs(t, err, reviewbench.ErrInvalidConfig)
}

func TestAuthMethod_String(t *testing.T) {
	tests := []struct {
		method reviewbench.AuthMethod
		want   string
	}{
		{reviewbench.AuthMethodStandard, "Standard"},
		{reviewbench.AuthMethodAWSIAM, "AWS IAM"},
		{reviewbench.AuthMethodGoogleIAM, "Google IAM"},
		{reviewbench.AuthMethodAzureEntraID, "Azure Entra ID"},
		{reviewbench.AuthMethod(42), "Unknown(42)"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.method.String())
	}
	assert.False(t, reviewbench.AuthMethod(42).IsValid())
	assert.True(t, reviewbench.AuthMethodAzureEntraID.IsValid())
}
