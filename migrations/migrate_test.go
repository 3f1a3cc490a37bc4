package migrations

import (
	"errors"
	"io/fs"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestMigrate_DBError(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectExec(".*").WillReturnError(errors.New("connection refused"))
	mock.MatchExpectationsInOrder(false)

	err = Migrate(db)
	if err == nil {
		t.Fatal("expected error from Migrate, got nil")
	}
	if !strings.Contains(err.Error(), "migration error") {
		t.Errorf("expected wrapped migration error, got: %v", err)
	}
}

func TestMigrate_NilDB(t *testing.T) {
	if err := Migrate(nil); err == nil {
		t.Fatal("expected error for nil db")
	}
}

func TestEmbeddedMigrations(t *testing.T) {
	data, err := fs.ReadFile(embedMigrations, "00001_create_users.sql")
	if err != nil {
		t.Fatalf("migration not embedded: %v", err)
	}
	sql := string(data)
	for _, want := range []string{"-- +goose Up", "-- +goose Down", "UNIQUE INDEX", "user_type"} {
		if !strings.Contains(sql, want) {
			t.Errorf("migration is missing %q", want)
		}
	}
}
