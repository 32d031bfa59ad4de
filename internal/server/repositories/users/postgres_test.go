package users

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/sparkbytes/internal/common"
	"github.com/dmitrijs2005/sparkbytes/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
)

var userColumns = []string{"user_id", "password_hash", "created_at", "is_vegan", "is_halal", "is_vegetarian", "is_gluten_free"}

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

const insertQuery = `(?s)^INSERT\s+INTO\s+users\s*\(user_id,\s*password_hash,\s*created_at,.*\)\s*VALUES\s*\(\$1,.*\$7\)\s*$`

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(insertQuery).
		WithArgs("alice", []byte("hash"), int64(10), true, false, false, false).
		WillReturnResult(sqlmock.NewResult(0, 1))

	u := &models.User{UserID: "alice", PasswordHash: []byte("hash"), CreatedAt: 10, Preferences: models.Preferences{IsVegan: true}}
	if err := repo.Create(context.Background(), u); err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreate_Duplicate(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(insertQuery).WillReturnError(&pgconn.PgError{Code: "23505"})

	err := repo.Create(context.Background(), &models.User{UserID: "alice"})
	if !errors.Is(err, common.ErrAlreadyExists) {
		t.Fatalf("want common.ErrAlreadyExists, got %v", err)
	}
}

func TestCreate_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(insertQuery).WillReturnError(errors.New("db down"))

	err := repo.Create(context.Background(), &models.User{UserID: "alice"})
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

const selectQuery = `(?s)^SELECT\s+user_id,\s*password_hash,.*FROM\s+users\s+WHERE\s+user_id\s*=\s*\$1\s*$`

func TestGetByID_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rows := sqlmock.NewRows(userColumns).AddRow("alice", []byte("hash"), int64(7), false, true, false, true)
	mock.ExpectQuery(selectQuery).WithArgs("alice").WillReturnRows(rows)

	got, err := repo.GetByID(context.Background(), "alice")
	if err != nil {
		t.Fatalf("GetByID error: %v", err)
	}
	want := models.Preferences{IsHalal: true, IsGlutenFree: true}
	if got.UserID != "alice" || got.CreatedAt != 7 || got.Preferences != want {
		t.Fatalf("unexpected user: %+v", got)
	}
}

func TestGetByID_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(selectQuery).WithArgs("ghost").WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "ghost")
	if !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("want common.ErrNotFound, got %v", err)
	}
}

func TestGetByID_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(selectQuery).WithArgs("alice").WillReturnError(errors.New("db err"))

	_, err := repo.GetByID(context.Background(), "alice")
	if err == nil || !regexp.MustCompile(`db error: .*db err`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

const updateQuery = `(?s)^UPDATE\s+users\s+SET\s+is_vegan\s*=\s*\$2,.*WHERE\s+user_id\s*=\s*\$1\s+RETURNING\s+user_id,.*$`

func TestUpdatePreferences_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rows := sqlmock.NewRows(userColumns).AddRow("alice", []byte("hash"), int64(7), true, false, true, false)
	mock.ExpectQuery(updateQuery).WithArgs("alice", true, false, true, false).WillReturnRows(rows)

	got, err := repo.UpdatePreferences(context.Background(), "alice", models.Preferences{IsVegan: true, IsVegetarian: true})
	if err != nil {
		t.Fatalf("UpdatePreferences error: %v", err)
	}
	if !got.IsVegan || !got.IsVegetarian || got.IsHalal {
		t.Fatalf("unexpected user: %+v", got)
	}
}

func TestUpdatePreferences_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(updateQuery).WillReturnError(sql.ErrNoRows)

	_, err := repo.UpdatePreferences(context.Background(), "ghost", models.Preferences{})
	if !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("want common.ErrNotFound, got %v", err)
	}
}
