package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgconn"
)

func TestIsUniqueViolation(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "unrelated", err: errors.New("connection refused"), want: false},
		{
			name: "pg unique code",
			err:  &pgconn.PgError{Code: "23505", ConstraintName: "distributions_startup_id_month_key"},
			want: true,
		},
		{name: "pg other code", err: &pgconn.PgError{Code: "40001"}, want: false},
		{
			name: "wrapped pg error",
			err:  fmt.Errorf("creating distribution: %w", &pgconn.PgError{Code: "23505"}),
			want: true,
		},
		{
			name: "postgres message",
			err:  errors.New(`duplicate key value violates unique constraint "revenue_reports_startup_id_month_key"`),
			want: true,
		},
		{
			name: "sqlite message",
			err:  errors.New("UNIQUE constraint failed: revenue_reports.startup_id"),
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsUniqueViolation(tt.err); got != tt.want {
				t.Fatalf("IsUniqueViolation(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
