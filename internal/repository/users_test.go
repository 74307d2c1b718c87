package repository

import (
	"context"
	"database/sql"
	"math"
	"testing"
	"time"

	"aahaara-data/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

var userRowColumns = []string{
	"user_id", "username", "email", "password_hash", "first_name", "last_name",
	"role", "is_active", "last_login", "created_at", "updated_at",
}

func TestGetUserByLogin_Success(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostgresUsersRepository(db)
	now := time.Now()

	mock.ExpectQuery(`SELECT .* FROM users WHERE username = \$1 OR lower\(email\) = lower\(\$1\)`).
		WithArgs("Asha@Example.com").
		WillReturnRows(sqlmock.NewRows(userRowColumns).AddRow(
			"u-1", "asha", "asha@example.com", "hash", "Asha", "Rao",
			"doctor", true, nil, now, now,
		))

	u, err := repo.GetUserByLogin(context.Background(), "Asha@Example.com")

	require.NoError(t, err)
	assert.Equal(t, "u-1", u.UserID)
	assert.Equal(t, domain.RoleDoctor, u.Role)
	assert.False(t, u.LastLogin.Valid)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetUser_NotFound(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostgresUsersRepository(db)

	mock.ExpectQuery(`SELECT`).WithArgs("missing").WillReturnError(sql.ErrNoRows)

	u, err := repo.GetUser(context.Background(), "missing")

	assert.Nil(t, u)
	var nf *domain.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "user", nf.Entity)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRegisterPatient_SingleTransaction(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostgresUsersRepository(db)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs("ravi", "ravi@example.com", "hash", "Ravi", "K", "patient", true).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "created_at", "updated_at"}).AddRow("u-9", now, now))
	mock.ExpectQuery(`INSERT INTO patient_profiles`).
		WillReturnRows(sqlmock.NewRows([]string{"profile_id", "created_at", "updated_at"}).AddRow("pp-9", now, now))
	mock.ExpectQuery(`INSERT INTO patients`).
		WithArgs("u-9", sqlmock.AnyArg(), nil, domain.PatientStatusActive).
		WillReturnRows(sqlmock.NewRows([]string{"patient_id", "registration_date", "created_at", "updated_at"}).
			AddRow("p-9", now, now, now))
	mock.ExpectCommit()

	user := &domain.User{Username: "ravi", Email: "ravi@example.com", PasswordHash: "hash",
		FirstName: "Ravi", LastName: "K", Role: domain.RolePatient, IsActive: true}
	profile := &domain.PatientProfile{Gender: sql.NullString{String: "male", Valid: true}}
	patient := &domain.Patient{}

	err := repo.RegisterPatient(context.Background(), user, profile, patient)

	require.NoError(t, err)
	assert.Equal(t, "u-9", user.UserID)
	assert.Equal(t, "u-9", profile.UserID)
	assert.Equal(t, "pp-9", profile.ProfileID)
	assert.Equal(t, "p-9", patient.PatientID)
	assert.Regexp(t, `^PAT-[0-9A-F]{8}$`, patient.PatientCode)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRegisterDoctor_DuplicateLicenseRollsBack(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostgresUsersRepository(db)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO users`).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "created_at", "updated_at"}).AddRow("u-2", now, now))
	mock.ExpectQuery(`INSERT INTO doctor_profiles`).
		WillReturnError(pqUnique("doctor_profiles_license_number_key"))
	mock.ExpectRollback()

	err := repo.RegisterDoctor(context.Background(),
		&domain.User{Username: "dr", Email: "dr@example.com", Role: domain.RoleDoctor},
		&domain.DoctorProfile{Qualification: "BAMS", LicenseNumber: "L-1"})

	var conflict *domain.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "license_number", conflict.Field)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWriteErr_ForeignKey(t *testing.T) {
	err := writeErr(&pq.Error{Code: "23503", Constraint: "patients_assigned_doctor_id_fkey"}, "update patient")

	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "assigned_doctor_id")
}

func TestPageBounds(t *testing.T) {
	limit, offset := pageBounds(0, 0)
	assert.Equal(t, 20, limit)
	assert.Equal(t, 0, offset)

	limit, offset = pageBounds(3, 500)
	assert.Equal(t, 200, limit)
	assert.Equal(t, 400, offset)

	limit, offset = pageBounds(math.MaxInt, math.MaxInt)
	assert.Equal(t, MaxPageSize, limit)
	assert.Equal(t, (MaxPage-1)*MaxPageSize, offset)
	assert.Positive(t, offset)
}

func TestNormalizePage(t *testing.T) {
	page, size := NormalizePage(-4, 1000)
	assert.Equal(t, 1, page)
	assert.Equal(t, MaxPageSize, size)

	page, size = NormalizePage(MaxPage+1, 0)
	assert.Equal(t, MaxPage, page)
	assert.Equal(t, DefaultPageSize, size)

	page, size = NormalizePage(7, 50)
	assert.Equal(t, 7, page)
	assert.Equal(t, 50, size)
}

func TestContainsPattern_EscapesWildcards(t *testing.T) {
	assert.Equal(t, `%rao%`, containsPattern("rao"))
	assert.Equal(t, `%50\%%`, containsPattern("50%"))
	assert.Equal(t, `%a\_b%`, containsPattern("a_b"))
	assert.Equal(t, `%c:\\tmp%`, containsPattern(`c:\tmp`))
}

func TestWhereBuilder_RepeatedArg(t *testing.T) {
	var w whereBuilder
	w.add("a = $%d", 1)
	w.add("(b ILIKE $%[1]d OR c ILIKE $%[1]d)", "%x%")
	w.raw("d IS NOT NULL")

	assert.Equal(t, "WHERE a = $1 AND (b ILIKE $2 OR c ILIKE $2) AND d IS NOT NULL", w.sql())
	assert.Equal(t, 3, w.next())
}

func pqUnique(constraint string) error {
	return &pq.Error{Code: "23505", Constraint: constraint}
}
