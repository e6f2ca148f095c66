package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-fees-api/internal/models"
)

func TestUserRepositoryLookups(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	student := seedStudent(t, db, "5001", "3", "1")
	ctx := context.Background()

	byEnrollment, err := repo.GetStudentByEnrollment(ctx, " 5001 ")
	require.NoError(t, err)
	require.Equal(t, student.UserID, byEnrollment.ID)

	byEmail, err := repo.GetByEmail(ctx, "5001@SCHOOL.com")
	require.NoError(t, err)
	require.Equal(t, student.UserID, byEmail.ID)

	hasAdmin, err := repo.ExistsWithRole(ctx, models.RoleAdmin)
	require.NoError(t, err)
	require.False(t, hasAdmin)

	admin := models.User{Name: "Admin", Email: "admin@school.com", PasswordHash: "hash", Role: models.RoleAdmin, Phone: "12345"}
	require.NoError(t, repo.Create(ctx, &admin))

	hasAdmin, err = repo.ExistsWithRole(ctx, models.RoleAdmin)
	require.NoError(t, err)
	require.True(t, hasAdmin)

	byPhone, err := repo.GetByPhone(ctx, "12345")
	require.NoError(t, err)
	require.Equal(t, admin.ID, byPhone.ID)

	_, err = repo.GetStudentByEnrollment(ctx, "admin@school.com")
	require.Error(t, err)
}
