package messagestore

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockRepo(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewRepository(sqlx.NewDb(db, "sqlmock")), mock
}

var messageColumns = []string{"id", "user_id", "role", "content", "platform", "created_at"}

func TestRepository_InsertMessage(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO chat_messages")).
		WithArgs(sqlmock.AnyArg(), "u1", "user", "I feel stressed", "web").
		WillReturnRows(sqlmock.NewRows(messageColumns).
			AddRow("m1", "u1", "user", "I feel stressed", "web", now))

	msg, err := repo.InsertMessage(context.Background(), "u1", "user", "I feel stressed", "web")
	require.NoError(t, err)
	assert.Equal(t, "m1", msg.ID)
	assert.Equal(t, now, msg.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_GetRecentMessagesOldestFirst(t *testing.T) {
	repo, mock := newMockRepo(t)
	t0 := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("FROM chat_messages")).
		WithArgs("u1", 50).
		WillReturnRows(sqlmock.NewRows(messageColumns).
			AddRow("m1", "u1", "user", "hi", "web", t0).
			AddRow("m2", "u1", "assistant", "hello", "web", t0.Add(time.Second)))

	svc := NewService(repo)
	msgs, err := svc.GetMessageHistory(context.Background(), "u1", 0)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "user", msgs[0].Role)
	assert.Equal(t, "assistant", msgs[1].Role)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_CountMessages(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM chat_messages")).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

	n, err := repo.CountMessages(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 7, n)
}
