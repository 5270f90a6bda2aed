package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"ministry/internal/model"
	"ministry/internal/repository"
)

func newMockRepo(t *testing.T) (*repository.DatabaseRepository, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB, DriverName: "postgres"}), &gorm.Config{
		SkipDefaultTransaction: true,
		DisableAutomaticPing:   true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return repository.NewDatabaseRepository(db), mock
}

func TestDatabaseRepository_CountAdmins_SQL(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "admin_users"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	count, err := repo.CountAdmins(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 3, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDatabaseRepository_CountAdmins_Error(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "admin_users"`).
		WillReturnError(errors.New("connection reset"))

	_, err := repo.CountAdmins(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to count admins")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDatabaseRepository_CreateFirstAdmin_LocksBeforeCounting(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec(`SELECT pg_advisory_xact_lock\(\$1\)`).
		WithArgs(sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "admin_users"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectRollback()

	admin := model.AdminUser{Name: "Late", Email: "late@parish.ph", Role: model.RoleAdmin, IsActive: true}
	err := repo.CreateFirstAdmin(context.Background(), &admin)
	assert.ErrorIs(t, err, repository.ErrAdminsExist)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDatabaseRepository_CreateFirstAdmin_LockFails(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec(`SELECT pg_advisory_xact_lock`).
		WillReturnError(errors.New("lock timeout"))
	mock.ExpectRollback()

	admin := model.AdminUser{Name: "Late", Email: "late@parish.ph", Role: model.RoleAdmin, IsActive: true}
	err := repo.CreateFirstAdmin(context.Background(), &admin)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to lock admin registration")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDatabaseRepository_MarkOverdueDues_SQL(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(`UPDATE "financial_records" SET "status"=\$1,"updated_at"=\$2 WHERE .*status = \$3 AND due_date IS NOT NULL AND due_date < \$4`).
		WithArgs(model.PaymentStatusOverdue, sqlmock.AnyArg(), model.PaymentStatusPending, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 4))

	n, err := repo.MarkOverdueDues(context.Background(), model.NewDate(2026, time.March, 15))
	require.NoError(t, err)
	assert.EqualValues(t, 4, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDatabaseRepository_HealthCheck_PingFails(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectPing().WillReturnError(errors.New("database is down"))

	err := repo.HealthCheck(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database ping failed")
	assert.NoError(t, mock.ExpectationsWereMet())
}
