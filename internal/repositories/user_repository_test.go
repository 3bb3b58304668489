package repositories

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"
)

func newUserRepo(t *testing.T) (UserRepository, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })
	return NewUserRepository(sqlx.NewDb(mockDB, "sqlmock"), nil), mock
}

func userRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "email", "password_hash", "full_name", "bio", "profile_pic",
		"native_language", "learning_language", "location", "is_onboarded", "created_at",
	})
}

func TestCreateMapsDuplicateEmail(t *testing.T) {
	repo, mock := newUserRepo(t)

	mock.ExpectQuery("INSERT INTO users").
		WithArgs("amelie@example.com", "hash", "Amelie", "pic.png").
		WillReturnError(&pq.Error{Code: "23505"})

	_, err := repo.Create(context.Background(), "amelie@example.com", "hash", "Amelie", "pic.png")
	require.ErrorIs(t, err, ErrEmailTaken)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateReturnsStoredUser(t *testing.T) {
	repo, mock := newUserRepo(t)

	mock.ExpectQuery("INSERT INTO users").
		WithArgs("amelie@example.com", "hash", "Amelie", "pic.png").
		WillReturnRows(userRows().AddRow(1, "amelie@example.com", "hash", "Amelie", "", "pic.png", "", "", "", false, time.Now()))

	user, err := repo.Create(context.Background(), "amelie@example.com", "hash", "Amelie", "pic.png")
	require.NoError(t, err)
	require.Equal(t, int64(1), user.ID)
	require.False(t, user.IsOnboarded)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSearchExcludesActor(t *testing.T) {
	repo, mock := newUserRepo(t)

	mock.ExpectQuery("WHERE id <> (.+) AND full_name ILIKE").
		WithArgs(int64(1), "ame").
		WillReturnRows(userRows().AddRow(2, "amelie@example.com", "hash", "Amelie", "", "", "French", "English", "", true, time.Now()))

	users, err := repo.Search(context.Background(), 1, "ame")
	require.NoError(t, err)
	require.Len(t, users, 1)
	require.Equal(t, int64(2), users[0].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

// A query of bare pattern metacharacters must not turn the search into a
// full user-table listing.
func TestSearchEscapesPatternMetacharacters(t *testing.T) {
	repo, mock := newUserRepo(t)

	mock.ExpectQuery(`full_name ILIKE '%' \|\| (.+) \|\| '%' ESCAPE`).
		WithArgs(int64(1), `100\%`).
		WillReturnRows(userRows())

	users, err := repo.Search(context.Background(), 1, "100%")
	require.NoError(t, err)
	require.Empty(t, users)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSearchEscapesBackslashAndUnderscore(t *testing.T) {
	repo, mock := newUserRepo(t)

	mock.ExpectQuery("full_name ILIKE").
		WithArgs(int64(1), `a\\b\_c`).
		WillReturnRows(userRows())

	_, err := repo.Search(context.Background(), 1, `a\b_c`)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRecommendExcludesFriendsAndNotOnboarded(t *testing.T) {
	repo, mock := newUserRepo(t)

	mock.ExpectQuery("u.is_onboarded = TRUE AND NOT EXISTS").
		WithArgs(int64(1)).
		WillReturnRows(userRows().
			AddRow(3, "diego@example.com", "hash", "Diego", "", "", "Spanish", "French", "", true, time.Now()).
			AddRow(5, "yuki@example.com", "hash", "Yuki", "", "", "Japanese", "English", "", true, time.Now()))

	users, err := repo.Recommend(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, users, 2)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestOnboardSetsFlag(t *testing.T) {
	repo, mock := newUserRepo(t)

	mock.ExpectQuery("UPDATE users SET full_name=(.+) is_onboarded=TRUE").
		WithArgs(int64(1), "Amelie", "bonjour", "French", "English", "Paris").
		WillReturnRows(userRows().AddRow(1, "amelie@example.com", "hash", "Amelie", "bonjour", "", "French", "English", "Paris", true, time.Now()))

	user, err := repo.Onboard(context.Background(), 1, "Amelie", "bonjour", "French", "English", "Paris")
	require.NoError(t, err)
	require.True(t, user.IsOnboarded)
	require.NoError(t, mock.ExpectationsWereMet())
}

// Deletion touches only the user row; the referencing friendship and
// request rows go with it through the schema's cascading foreign keys, so
// no separate statements exist whose visibility could race an accept.
func TestDeleteIssuesSingleUserRowDelete(t *testing.T) {
	repo, mock := newUserRepo(t)

	mock.ExpectExec("DELETE FROM users WHERE id=(.+)").
		WithArgs(int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Delete(context.Background(), 1))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteUnknownUser(t *testing.T) {
	repo, mock := newUserRepo(t)

	mock.ExpectExec("DELETE FROM users WHERE id=(.+)").
		WithArgs(int64(9)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), 9)
	require.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}
