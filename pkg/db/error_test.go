package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestIsDuplicateKeyErr(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "gorm translated", err: fmt.Errorf("insert: %w", gorm.ErrDuplicatedKey), want: true},
		{name: "pgx unique", err: &pgconn.PgError{Code: "23505"}, want: true},
		{name: "pgx other", err: &pgconn.PgError{Code: "23503"}, want: false},
		{name: "pq unique", err: &pq.Error{Code: "23505"}, want: true},
		{name: "mysql duplicate", err: &mysql.MySQLError{Number: 1062}, want: true},
		{name: "mysql other", err: &mysql.MySQLError{Number: 1045}, want: false},
		{name: "sqlite message", err: errors.New("UNIQUE constraint failed: documents.org_id, documents.invoice_number"), want: true},
		{name: "unrelated", err: errors.New("connection refused"), want: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, IsDuplicateKeyErr(tc.err))
		})
	}
}

func TestViolatedConstraint(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{name: "nil", err: nil, want: ""},
		{name: "pgx", err: fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505", ConstraintName: "ux_documents_org_number"}), want: "ux_documents_org_number"},
		{name: "pgx not unique", err: &pgconn.PgError{Code: "23503", ConstraintName: "fk_documents_customer"}, want: ""},
		{name: "pq", err: &pq.Error{Code: "23505", Constraint: "ux_documents_ulid"}, want: "ux_documents_ulid"},
		{name: "mysql", err: &mysql.MySQLError{Number: 1062, Message: "Duplicate entry '1-INV-2026-10-0001' for key 'documents.ux_documents_org_number'"}, want: "ux_documents_org_number"},
		{name: "mysql without table", err: &mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'x' for key 'PRIMARY'"}, want: "PRIMARY"},
		{name: "gorm translated", err: gorm.ErrDuplicatedKey, want: ""},
		{name: "sqlite", err: errors.New("UNIQUE constraint failed: documents.ulid"), want: ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ViolatedConstraint(tc.err))
		})
	}
}

func TestSqlitePath(t *testing.T) {
	assert.Equal(t, "invoicer.db", sqlitePath(""))
	assert.Equal(t, "local.db", sqlitePath("local"))
	assert.Equal(t, "file::memory:?cache=shared", sqlitePath("file::memory:?cache=shared"))
}
