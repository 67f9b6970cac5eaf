package postgres

import (
	"context"
	"testing"
	"time"

	"pet-adoption-api/internal/domain/adoptions"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) (*AdoptionsRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewAdoptionsRepo(db), mock
}

func pendingAdoption() adoptions.Adoption {
	now := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	reviewer := "admin-1"
	return adoptions.Adoption{
		ID:           "ad1",
		AnimalID:     "a1",
		ApplicantID:  "user-2",
		Status:       adoptions.StatusApproved,
		ReviewedByID: &reviewer,
		ReviewDate:   &now,
		UpdatedAt:    now,
	}
}

func TestAdoptionsRepo_Approve_DualWriteInOneTx(t *testing.T) {
	repo, mock := newMock(t)
	ad := pendingAdoption()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT status FROM adoptions").
		WithArgs(ad.ID).
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("pending"))
	mock.ExpectQuery("SELECT adoption_status FROM animals").
		WithArgs(ad.AnimalID).
		WillReturnRows(sqlmock.NewRows([]string{"adoption_status"}).AddRow("available"))
	mock.ExpectExec("UPDATE adoptions SET").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE animals SET").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Approve(context.Background(), ad))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAdoptionsRepo_Approve_StaleAdoptionRollsBack(t *testing.T) {
	repo, mock := newMock(t)
	ad := pendingAdoption()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT status FROM adoptions").
		WithArgs(ad.ID).
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("rejected"))
	mock.ExpectRollback()

	err := repo.Approve(context.Background(), ad)
	require.ErrorIs(t, err, adoptions.ErrStaleState)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAdoptionsRepo_Approve_AdoptedAnimalRollsBack(t *testing.T) {
	repo, mock := newMock(t)
	ad := pendingAdoption()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT status FROM adoptions").
		WithArgs(ad.ID).
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("pending"))
	mock.ExpectQuery("SELECT adoption_status FROM animals").
		WithArgs(ad.AnimalID).
		WillReturnRows(sqlmock.NewRows([]string{"adoption_status"}).AddRow("adopted"))
	mock.ExpectRollback()

	err := repo.Approve(context.Background(), ad)
	require.ErrorIs(t, err, adoptions.ErrStaleState)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAdoptionsRepo_Approve_AnimalUpdateFailureRollsBack(t *testing.T) {
	repo, mock := newMock(t)
	ad := pendingAdoption()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT status FROM adoptions").
		WithArgs(ad.ID).
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("pending"))
	mock.ExpectQuery("SELECT adoption_status FROM animals").
		WithArgs(ad.AnimalID).
		WillReturnRows(sqlmock.NewRows([]string{"adoption_status"}).AddRow("available"))
	mock.ExpectExec("UPDATE adoptions SET").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE animals SET").
		WillReturnError(context.DeadlineExceeded)
	mock.ExpectRollback()

	err := repo.Approve(context.Background(), ad)
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAdoptionsRepo_Create_UniqueViolationIsDuplicate(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectExec("INSERT INTO adoptions").
		WillReturnError(&pgconn.PgError{Code: pgUniqueViolation})

	err := repo.Create(context.Background(), adoptions.Adoption{
		ID: "ad1", AnimalID: "a1", ApplicantID: "user-2", Status: adoptions.StatusPending,
	})
	require.ErrorIs(t, err, adoptions.ErrDuplicateApplication)
	require.NoError(t, mock.ExpectationsWereMet())
}
