package database

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

// The schema holds seven tables; every one must be applied even when the
// statement is preceded by comment lines.
func TestMigrateAppliesAllStatements(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	for i := 0; i < 7; i++ {
		mock.ExpectExec("CREATE TABLE IF NOT EXISTS").WillReturnResult(sqlmock.NewResult(0, 0))
	}

	require.NoError(t, Migrate(context.Background(), db))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStripComments(t *testing.T) {
	in := "-- leading comment\nCREATE TABLE IF NOT EXISTS t (\n  id INT -- not stripped, not at line start\n)"
	out := stripComments(in)
	require.Equal(t, "CREATE TABLE IF NOT EXISTS t (\n  id INT -- not stripped, not at line start\n)", out)
	require.Equal(t, "", stripComments("  -- only a comment\n"))
}
