package store

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"minisocial/internal/social"
)

func setupMockDB(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return New(db), mock
}

func TestCreateUser_UniqueViolation(t *testing.T) {
	s, mock := setupMockDB(t)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO users`)).
		WillReturnError(sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintUnique})

	err := s.CreateUser(context.Background(), &social.User{Username: "alice", CreatedAt: time.Now()})
	assert.ErrorIs(t, err, social.ErrDuplicateUsername)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStoreUnavailable(t *testing.T) {
	s, mock := setupMockDB(t)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM users WHERE id = ?`)).
		WithArgs(int64(1)).
		WillReturnError(errors.New("disk I/O error"))

	_, err := s.UserByID(context.Background(), 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, social.ErrStoreUnavailable)

	var se *social.StoreError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "user by id", se.Op)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostByID_NoRows(t *testing.T) {
	s, mock := setupMockDB(t)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM posts WHERE id = ?`)).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "content", "media_filename", "created_at"}))

	_, err := s.PostByID(context.Background(), 7)
	assert.ErrorIs(t, err, social.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestToggle_LostInsertRace(t *testing.T) {
	s, mock := setupMockDB(t)

	// Nothing to delete, and the insert is swallowed by ON CONFLICT because a
	// concurrent toggle got there first: existence is read back.
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM likes WHERE post_id = ? AND user_id = ?`)).
		WithArgs(int64(1), int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO likes`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT EXISTS`)).
		WithArgs(int64(1), int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(1))
	mock.ExpectCommit()

	present, err := s.ToggleLike(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.True(t, present)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestToggle_RollbackOnFailure(t *testing.T) {
	s, mock := setupMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM saved_posts`)).
		WillReturnError(errors.New("database is locked"))
	mock.ExpectRollback()

	_, err := s.ToggleSave(context.Background(), 1, 2)
	assert.ErrorIs(t, err, social.ErrStoreUnavailable)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestToggle_PostDeletedMidway(t *testing.T) {
	s, mock := setupMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM likes WHERE post_id = ? AND user_id = ?`)).
		WithArgs(int64(1), int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO likes`)).
		WillReturnError(sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintForeignKey})
	mock.ExpectRollback()

	_, err := s.ToggleLike(context.Background(), 1, 2)
	assert.ErrorIs(t, err, social.ErrNotFound)
	assert.NotErrorIs(t, err, social.ErrStoreUnavailable)
	assert.NoError(t, mock.ExpectationsWereMet())
}
