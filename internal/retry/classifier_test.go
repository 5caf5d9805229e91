package retry

import (
	"context"
	"errors"
	"fmt"
	"net"
	"syscall"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestConnectionClassifier_IsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"connection failure 08006", &pgconn.PgError{Code: "08006"}, true},
		{"too many connections 53300", &pgconn.PgError{Code: "53300"}, true},
		{"cannot connect now 57P03", &pgconn.PgError{Code: "57P03"}, true},
		{"auth failed 28P01", &pgconn.PgError{Code: "28P01"}, false},
		{"database missing 3D000", &pgconn.PgError{Code: "3D000"}, false},
		{"serialization failure is not a connect error", &pgconn.PgError{Code: "40001"}, false},
		{"wrapped pg error", fmt.Errorf("connect: %w", &pgconn.PgError{Code: "08001"}), true},
		{"econnrefused", &net.OpError{Op: "dial", Err: syscall.ECONNREFUSED}, true},
		{"temporary dns", &net.DNSError{Err: "server misbehaving", IsTemporary: true}, true},
		{"permanent dns", &net.DNSError{Err: "no such host", Name: "db.invalid"}, false},
		{"message pattern", errors.New("read: connection reset by peer"), true},
		{"context canceled", context.Canceled, false},
		{"plain error", errors.New("syntax error"), false},
	}

	c := NewConnectionClassifier()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.IsTransient(tt.err))
		})
	}
}
