package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/school-fees-api/internal/database"
	"github.com/noah-isme/school-fees-api/internal/models"
	"github.com/noah-isme/school-fees-api/internal/repository"
)

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

func testValidator() *validator.Validate {
	return validator.New(validator.WithRequiredStructEnabled())
}

func fixedClock(ts time.Time) func() time.Time {
	return func() time.Time { return ts }
}

func setupServiceDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:svc_%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func createTestStudent(t *testing.T, db *gorm.DB, enrollment, class, roll string) models.Student {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(enrollment), bcrypt.MinCost)
	require.NoError(t, err)

	user := models.User{
		Name:              "Student " + enrollment,
		Email:             enrollment + "@school.com",
		PasswordHash:      string(hash),
		IsDefaultPassword: true,
		Role:              models.RoleStudent,
		StudentID:         enrollment,
		Phone:             "98" + enrollment,
	}
	student := models.Student{
		StudentName:      "Student " + enrollment,
		FathersName:      "Father",
		MothersName:      "Mother",
		Address:          "Main Street",
		Class:            class,
		RollNumber:       roll,
		EnrollmentNumber: enrollment,
		MobileNumber:     "98" + enrollment,
		StudentType:      models.StudentTypeDayScholar,
	}
	require.NoError(t, repository.NewStudentRepository(db).CreateWithUser(context.Background(), &user, &student))
	student.User = &user
	return student
}

func createTestUser(t *testing.T, db *gorm.DB, email string, role models.Role) models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	require.NoError(t, err)
	user := models.User{Name: email, Email: email, PasswordHash: string(hash), Role: role}
	require.NoError(t, db.Create(&user).Error)
	return user
}
