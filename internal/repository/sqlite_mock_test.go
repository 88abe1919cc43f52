package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/mattn/go-sqlite3"

	"github.com/abrezinsky/heatroll/internal/models"
)

func newMockRepo(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return newWithDB(db), mock
}

// TestListPlatforms_ScanError tests row scanning error
func TestListPlatforms_ScanError(t *testing.T) {
	repo, mock := newMockRepo(t)

	rows := sqlmock.NewRows([]string{"id", "name", "abbreviation"}).
		AddRow("not-a-number", "NES", "NES")
	mock.ExpectQuery("SELECT (.+) FROM platforms").WillReturnRows(rows)

	if _, err := repo.ListPlatforms(context.Background()); err == nil {
		t.Error("expected error from scan failure, got nil")
	}
}

// TestGetHeat_PlatformQueryError tests failure while loading the platform set
func TestGetHeat_PlatformQueryError(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("SELECT (.+) FROM heats WHERE id").
		WillReturnRows(sqlmock.NewRows([]string{"id", "series_id", "position", "name", "start_date", "end_date", "pool_size"}).
			AddRow(1, 1, 1, "Heat", "2026-03-10", "2026-03-20", 5))
	mock.ExpectQuery("SELECT (.+) FROM heat_platforms").WillReturnError(errors.New("connection reset"))

	if _, err := repo.GetHeat(context.Background(), 1); err == nil {
		t.Error("expected error, got nil")
	}
}

// TestInsertRoll_DriverUniqueError tests mapping of the driver's constraint code
func TestInsertRoll_DriverUniqueError(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec("INSERT INTO rolls").
		WillReturnError(sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintUnique})

	_, err := repo.InsertRoll(context.Background(), models.Roll{SignupID: 1, Seq: 1, PlatformID: 1, GameID: 1})
	if err != ErrDuplicate {
		t.Errorf("expected ErrDuplicate, got %v", err)
	}
}

// TestInsertRoll_OtherDriverError tests that non-unique constraint errors pass through
func TestInsertRoll_OtherDriverError(t *testing.T) {
	repo, mock := newMockRepo(t)

	fkErr := sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintForeignKey}
	mock.ExpectExec("INSERT INTO rolls").WillReturnError(fkErr)

	_, err := repo.InsertRoll(context.Background(), models.Roll{SignupID: 1, Seq: 1, PlatformID: 1, GameID: 1})
	if err == nil || err == ErrDuplicate {
		t.Errorf("expected the foreign key error, got %v", err)
	}
}

// TestUpdateSignup_RowsAffectedError tests the rows affected failure path
func TestUpdateSignup_RowsAffectedError(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec("UPDATE signups SET").
		WillReturnResult(sqlmock.NewErrorResult(errors.New("rows affected unavailable")))

	if err := repo.SetPick(context.Background(), 1, nil); err == nil {
		t.Error("expected error, got nil")
	}
}

// TestGetSignup_BadQuotasJSON tests corrupt quota storage
func TestGetSignup_BadQuotasJSON(t *testing.T) {
	repo, mock := newMockRepo(t)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "heat_id", "participant_id", "quotas", "western_required", "pick_game_id", "status", "created_at", "updated_at"}).
		AddRow(1, 1, "alice", "{not json", nil, nil, "unresolved", now, now)
	mock.ExpectQuery("SELECT (.+) FROM signups").WillReturnRows(rows)

	if _, err := repo.GetSignup(context.Background(), 1, "alice"); err == nil {
		t.Error("expected JSON error, got nil")
	}
}

// TestWithTx_BeginError tests failure to start a transaction
func TestWithTx_BeginError(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin().WillReturnError(errors.New("database is locked"))

	called := false
	err := repo.WithTx(context.Background(), func(FullRepository) error {
		called = true
		return nil
	})
	if err == nil {
		t.Error("expected error, got nil")
	}
	if called {
		t.Error("expected callback not to run")
	}
}

// TestWithTx_CommitError tests failure at commit
func TestWithTx_CommitError(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM rolls").WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit().WillReturnError(errors.New("disk full"))

	err := repo.WithTx(context.Background(), func(tx FullRepository) error {
		return tx.DeleteRolls(context.Background(), 1)
	})
	if err == nil {
		t.Error("expected commit error, got nil")
	}
}

// TestWithTx_RollbackOnError tests that a callback error rolls back
func TestWithTx_RollbackOnError(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectRollback()

	boom := errors.New("boom")
	if err := repo.WithTx(context.Background(), func(FullRepository) error { return boom }); err != boom {
		t.Errorf("expected boom, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

// TestGetHeatStats_QueryErrors tests each stats query failing
func TestGetHeatStats_QueryErrors(t *testing.T) {
	t.Run("signup counts", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectQuery("SELECT COUNT").WillReturnError(errors.New("fail"))
		if _, err := repo.GetHeatStats(context.Background(), 1); err == nil {
			t.Error("expected error")
		}
	})

	t.Run("roll count", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectQuery("SELECT COUNT").
			WillReturnRows(sqlmock.NewRows([]string{"a", "b", "c", "d"}).AddRow(1, 0, 0, 0))
		mock.ExpectQuery("SELECT COUNT").WillReturnError(errors.New("fail"))
		if _, err := repo.GetHeatStats(context.Background(), 1); err == nil {
			t.Error("expected error")
		}
	})
}
