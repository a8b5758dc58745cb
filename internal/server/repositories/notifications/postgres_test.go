package notifications

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/proposals/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	insertQuery = `(?s)^INSERT\s+INTO\s+notifications\s*\(id,\s*user_id,\s*proposal_id,\s*message,\s*created_at\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4,\s*\$5\)\s*$`
	listQuery   = `(?s)^SELECT\s+id,\s*user_id,\s*proposal_id,\s*message,\s*created_at\s+FROM\s+notifications\s+WHERE\s+user_id\s*=\s*\$1\s+ORDER\s+BY\s+created_at\s+DESC,\s*id\s+DESC\s*$`
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func TestCreate(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	at := time.Date(2026, 2, 14, 10, 0, 0, 0, time.UTC)
	n := &models.Notification{ID: "01J0000000000000000000000A", UserID: "u1", ProposalID: "p1", Message: "hi", CreatedAt: at}

	mock.ExpectExec(insertQuery).
		WithArgs(n.ID, n.UserID, n.ProposalID, n.Message, at).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(insertQuery).WillReturnError(errors.New("fk violation"))

	require.NoError(t, repo.Create(context.Background(), n))

	err := repo.Create(context.Background(), n)
	if err == nil || !regexp.MustCompile(`db error: .*fk violation`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestListByUser(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	t1 := time.Date(2026, 2, 14, 10, 0, 0, 0, time.UTC)
	t0 := t1.Add(-time.Hour)
	mock.ExpectQuery(listQuery).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "proposal_id", "message", "created_at"}).
			AddRow("n2", "u1", "p1", "second", t1).
			AddRow("n1", "u1", "p1", "first", t0))

	got, err := repo.ListByUser(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "n2", got[0].ID)
	assert.Equal(t, "first", got[1].Message)
}

func TestListByUser_EmptyIsNotNil(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(listQuery).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "proposal_id", "message", "created_at"}))

	got, err := repo.ListByUser(context.Background(), "u1")
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestListByUser_Errors(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(listQuery).WillReturnError(errors.New("db err"))
	mock.ExpectQuery(listQuery).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "proposal_id", "message", "created_at"}).
			AddRow("n1", "u1", "p1", "m", time.Now()).
			RowError(0, errors.New("row broke")))

	_, err := repo.ListByUser(context.Background(), "u1")
	assert.ErrorContains(t, err, "db err")

	_, err = repo.ListByUser(context.Background(), "u1")
	assert.ErrorContains(t, err, "row broke")
}
