package docstore

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func setupMock(t *testing.T) (*Postgres, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock database: %v", err)
	}
	store := NewPostgres(db)
	cleanup := func() {
		db.Close()
	}
	return store, mock, cleanup
}

func TestPostgresPutKeyed(t *testing.T) {
	store, mock, cleanup := setupMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO documents (collection, key, fields)`)).
		WithArgs("account-records", "admin_1", []byte(`{"id":"1"}`)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := store.PutKeyed(context.Background(), "account-records", "admin_1", Fields{"id": "1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestPostgresGetKeyed(t *testing.T) {
	store, mock, cleanup := setupMock(t)
	defer cleanup()

	rows := sqlmock.NewRows([]string{"fields"}).
		AddRow([]byte(`{"id":"1","emailAddress":"a@b.c"}`))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT fields FROM documents WHERE collection = $1 AND key = $2`)).
		WithArgs("account-records", "admin_1").
		WillReturnRows(rows)

	fields, err := store.GetKeyed(context.Background(), "account-records", "admin_1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fields["emailAddress"] != "a@b.c" {
		t.Errorf("unexpected fields: %+v", fields)
	}
}

func TestPostgresGetKeyed_NotFound(t *testing.T) {
	store, mock, cleanup := setupMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT fields FROM documents`)).
		WithArgs("users", "nobody").
		WillReturnRows(sqlmock.NewRows([]string{"fields"}))

	_, err := store.GetKeyed(context.Background(), "users", "nobody")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestPostgresListAll(t *testing.T) {
	store, mock, cleanup := setupMock(t)
	defer cleanup()

	rows := sqlmock.NewRows([]string{"key", "fields"}).
		AddRow("admin_1", []byte(`{"id":"1"}`)).
		AddRow("other_2", []byte(`{"id":"2"}`))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT key, fields FROM documents WHERE collection = $1 ORDER BY key`)).
		WithArgs("account-records").
		WillReturnRows(rows)

	docs, err := store.ListAll(context.Background(), "account-records")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(docs) != 2 || docs[0].Key != "admin_1" || docs[1].Fields["id"] != "2" {
		t.Errorf("unexpected documents: %+v", docs)
	}
}

func TestPostgresListAll_Error(t *testing.T) {
	store, mock, cleanup := setupMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT key, fields FROM documents`)).
		WithArgs("account-records").
		WillReturnError(errors.New("boom"))

	if _, err := store.ListAll(context.Background(), "account-records"); err == nil {
		t.Error("expected error, got nil")
	}
}

func TestPostgresDeleteKeyed(t *testing.T) {
	store, mock, cleanup := setupMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM documents WHERE collection = $1 AND key = $2`)).
		WithArgs("users", "admin").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := store.DeleteKeyed(context.Background(), "users", "admin"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}
