package db

import (
	"context"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCopyFrom_EmptyRows(t *testing.T) {
	n, err := CopyFrom(context.TODO(), nil, "audit_keywords", []string{"a", "b"}, nil)
	assert.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestCopyFrom_Success(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectCopyFrom(pgx.Identifier{"audit_keywords"}, []string{"a", "b"}).WillReturnResult(3)

	rows := [][]any{{1, "x"}, {2, "y"}, {3, "z"}}
	n, err := CopyFrom(context.Background(), mock, "audit_keywords", []string{"a", "b"}, rows)
	assert.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCopyFrom_SchemaQualified(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectCopyFrom(pgx.Identifier{"gap", "audit_keywords"}, []string{"a"}).WillReturnResult(1)

	n, err := CopyFrom(context.Background(), mock, "gap.audit_keywords", []string{"a"}, [][]any{{1}})
	assert.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCopyFrom_Error(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectCopyFrom(pgx.Identifier{"audit_keywords"}, []string{"a", "b"}).WillReturnError(fmt.Errorf("copy failed"))

	_, err = CopyFrom(context.Background(), mock, "audit_keywords", []string{"a", "b"}, [][]any{{1, "x"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "COPY INTO audit_keywords")
	assert.NoError(t, mock.ExpectationsWereMet())
}

var replaceCfg = ReplaceConfig{
	Table:   "audit_keywords",
	KeyCols: []string{"id", "user_id"},
	Columns: []string{"id", "user_id", "keyword"},
}

var replaceKey = []any{"a1", "u1"}

func TestReplaceRows_Success(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "audit_keywords" WHERE "id" = \$1 AND "user_id" = \$2`).
		WithArgs("a1", "u1").
		WillReturnResult(pgxmock.NewResult("DELETE", 4))
	mock.ExpectCopyFrom(pgx.Identifier{"audit_keywords"}, []string{"id", "user_id", "keyword"}).WillReturnResult(2)
	mock.ExpectCommit()

	rows := [][]any{{"a1", "u1", "seo"}, {"a1", "u1", "ppc"}}
	n, err := ReplaceRows(context.Background(), mock, replaceCfg, replaceKey, rows)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReplaceRows_EmptyClears(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM`).WithArgs("a1", "u1").WillReturnResult(pgxmock.NewResult("DELETE", 2))
	mock.ExpectCommit()

	n, err := ReplaceRows(context.Background(), mock, replaceCfg, replaceKey, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReplaceRows_CopyErrorRollsBack(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM`).WithArgs("a1", "u1").WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectCopyFrom(pgx.Identifier{"audit_keywords"}, []string{"id", "user_id", "keyword"}).
		WillReturnError(fmt.Errorf("disk full"))
	mock.ExpectRollback()

	_, err = ReplaceRows(context.Background(), mock, replaceCfg, replaceKey, [][]any{{"a1", "u1", "seo"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "COPY INTO audit_keywords")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReplaceRows_BeginError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin().WillReturnError(fmt.Errorf("conn refused"))

	_, err = ReplaceRows(context.Background(), mock, replaceCfg, replaceKey, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "begin tx")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReplaceRows_InvalidConfig(t *testing.T) {
	_, err := ReplaceRows(context.Background(), nil, ReplaceConfig{Table: "t"}, replaceKey, nil)
	require.Error(t, err)

	_, err = ReplaceRows(context.Background(), nil, ReplaceConfig{Table: "t", KeyCols: []string{"k"}}, []any{"a1"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no columns")

	_, err = ReplaceRows(context.Background(), nil, replaceCfg, []any{"a1"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 key values for 2 key columns")
}

func TestDeleteSQL(t *testing.T) {
	assert.Equal(t, `DELETE FROM "gap"."audit_keywords" WHERE "id" = $1 AND "user_id" = $2`,
		deleteSQL(ReplaceConfig{Table: "gap.audit_keywords", KeyCols: []string{"id", "user_id"}}))
}

func TestIdentifier(t *testing.T) {
	assert.Equal(t, `"audits"`, identifier("audits").Sanitize())
	assert.Equal(t, `"gap"."audits"`, identifier("gap.audits").Sanitize())
}
