package migrations

import (
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestAll_Order(t *testing.T) {
	migrations := All()
	if len(migrations) == 0 {
		t.Fatal("All() returned no migrations")
	}
	if migrations[0].Name != "001_initial_schema" {
		t.Errorf("first migration = %q, want 001_initial_schema", migrations[0].Name)
	}
	for _, m := range migrations {
		if m.UpSQL == "" || m.DownSQL == "" {
			t.Errorf("migration %s is missing SQL", m.Name)
		}
	}
}

func TestMigrator_Initialize(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to create mock DB: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS migrations").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := New(db).Initialize(); err != nil {
		t.Errorf("Initialize() failed: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unmet expectations: %v", err)
	}
}

func TestMigrator_Migrate_AppliesPending(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to create mock DB: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS migrations").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT name FROM migrations").
		WillReturnRows(sqlmock.NewRows([]string{"name"}))
	mock.ExpectBegin()
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS airlines").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO migrations").
		WithArgs("001_initial_schema").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	if err := New(db).Migrate([]*Migration{InitialSchema}); err != nil {
		t.Errorf("Migrate() failed: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unmet expectations: %v", err)
	}
}

func TestMigrator_Migrate_SkipsApplied(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to create mock DB: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS migrations").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT name FROM migrations").
		WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("001_initial_schema"))

	if err := New(db).Migrate([]*Migration{InitialSchema}); err != nil {
		t.Errorf("Migrate() failed: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unmet expectations: %v", err)
	}
}

func TestMigrator_Migrate_FailureRollsBack(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to create mock DB: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS migrations").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT name FROM migrations").
		WillReturnRows(sqlmock.NewRows([]string{"name"}))
	mock.ExpectBegin()
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS airlines").
		WillReturnError(errors.New("permission denied"))
	mock.ExpectRollback()

	if err := New(db).Migrate([]*Migration{InitialSchema}); err == nil {
		t.Error("Migrate() expected error but got none")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unmet expectations: %v", err)
	}
}

func TestMigrator_Rollback(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to create mock DB: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("SELECT name FROM migrations").
		WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("001_initial_schema"))
	mock.ExpectBegin()
	mock.ExpectExec("DROP TABLE IF EXISTS ingestion_stats").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM migrations").
		WithArgs("001_initial_schema").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	if err := New(db).Rollback([]*Migration{InitialSchema}); err != nil {
		t.Errorf("Rollback() failed: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unmet expectations: %v", err)
	}
}

func TestMigrator_Rollback_NothingApplied(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to create mock DB: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("SELECT name FROM migrations").
		WillReturnRows(sqlmock.NewRows([]string{"name"}))

	if err := New(db).Rollback([]*Migration{InitialSchema}); err == nil {
		t.Error("Rollback() expected error when nothing is applied")
	}
}
