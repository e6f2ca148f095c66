package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/school-fees-api/internal/database"
	"github.com/noah-isme/school-fees-api/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
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

func seedStudent(t *testing.T, db *gorm.DB, enrollment, class, roll string) models.Student {
	t.Helper()
	user := models.User{
		Name:         "Student " + enrollment,
		Email:        enrollment + "@school.com",
		PasswordHash: "hash",
		Role:         models.RoleStudent,
		StudentID:    enrollment,
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
	require.NoError(t, NewStudentRepository(db).CreateWithUser(context.Background(), &user, &student))
	student.User = &user
	return student
}

func seedFee(t *testing.T, db *gorm.DB, student models.Student, amount float64, due time.Time, status models.PaymentStatus) models.Fee {
	t.Helper()
	fee := models.Fee{
		StudentID:   student.ID,
		UserID:      student.UserID,
		Amount:      amount,
		FeesType:    models.FeeTypeMonthly,
		FeeCategory: models.FeeCategoryRegular,
		Month:       "March",
		DueDate:     due,
		Status:      status,
	}
	require.NoError(t, NewFeeRepository(db).Create(context.Background(), &fee))
	return fee
}
