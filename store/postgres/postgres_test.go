package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smallnest/langlab/store"
)

func newMockStore(t *testing.T) (*Store, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewWithPool(mock, "history"), mock
}

func TestPostgresStore_InitSchema(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS history")).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	require.NoError(t, s.InitSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Append(t *testing.T) {
	s, mock := newMockStore(t)
	fixed := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	insert := regexp.QuoteMeta("INSERT INTO history (session_id, role, content, created_at) VALUES ($1, $2, $3, $4)")
	mock.ExpectBegin()
	mock.ExpectExec(insert).WithArgs("s1", store.RoleHuman, "hi", fixed).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(insert).WithArgs("s1", store.RoleAI, "hello", fixed).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()
	mock.ExpectRollback()

	err := s.Append(context.Background(), "s1",
		store.Turn{Role: store.RoleHuman, Text: "hi"},
		store.Turn{Role: store.RoleAI, Text: "hello", At: fixed},
	)
	require.NoError(t, err)
	require.NoError(t, s.Append(context.Background(), "s1"))
}

func TestPostgresStore_AppendFailure(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO history").WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err := s.Append(context.Background(), "s1", store.Turn{Role: store.RoleHuman, Text: "hi", At: time.Now()})
	assert.ErrorContains(t, err, "failed to append turn: disk full")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Load(t *testing.T) {
	s, mock := newMockStore(t)
	at := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	rows := pgxmock.NewRows([]string{"role", "content", "created_at"}).
		AddRow(store.RoleHuman, "hi", at).
		AddRow(store.RoleAI, "hello", at)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT role, content, created_at FROM history WHERE session_id = $1 ORDER BY id ASC")).
		WithArgs("s1").
		WillReturnRows(rows)

	turns, err := s.Load(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, []store.Turn{
		{Role: store.RoleHuman, Text: "hi", At: at},
		{Role: store.RoleAI, Text: "hello", At: at},
	}, turns)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ClearAndSessions(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM history WHERE session_id = $1")).
		WithArgs("s1").
		WillReturnResult(pgxmock.NewResult("DELETE", 2))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT DISTINCT session_id FROM history")).
		WillReturnRows(pgxmock.NewRows([]string{"session_id"}).AddRow("a").AddRow("b"))

	require.NoError(t, s.Clear(context.Background(), "s1"))
	ids, err := s.Sessions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_QueryError(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectQuery("SELECT role").WillReturnError(errors.New("connection reset"))

	_, err := s.Load(context.Background(), "s1")
	assert.ErrorContains(t, err, "failed to load history: connection reset")
}
