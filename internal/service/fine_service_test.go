package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/noah-isme/school-fees-api/internal/dto"
	"github.com/noah-isme/school-fees-api/internal/models"
	"github.com/noah-isme/school-fees-api/internal/repository"
)

func newTestFineService(t *testing.T) (*fineService, *gorm.DB, *memoryActivityRepo) {
	t.Helper()
	db := setupServiceDB(t)
	activityRepo := &memoryActivityRepo{}
	svc := NewFineService(
		repository.NewFineRepository(db),
		repository.NewStudentRepository(db),
		NewActivityService(activityRepo, testLogger()),
		testValidator(),
		testLogger(),
	).(*fineService)
	svc.now = fixedClock(time.Date(2024, time.June, 10, 11, 0, 0, 0, time.Local))
	return svc, db, activityRepo
}

func TestFineServiceCreateDefaultsToOther(t *testing.T) {
	svc, db, activity := newTestFineService(t)
	student := createTestStudent(t, db, "3001", "7", "1")

	fine, err := svc.Create(context.Background(), adminActor(), dto.FineCreateRequest{
		StudentID: student.ID,
		Amount:    75,
		Reason:    "Library book <i>lost</i>",
		DueDate:   "2024-06-01",
	})
	require.NoError(t, err)
	require.Equal(t, "other", fine.FineType)
	require.Equal(t, "pending", fine.Status)
	require.Equal(t, "Library book lost", fine.Reason)
	require.Equal(t, student.UserID, fine.UserID)
	require.True(t, fine.IsOverdue)
	require.NotNil(t, fine.Student)
	require.Equal(t, "3001", fine.Student.EnrollmentNumber)

	require.Len(t, activity.entries, 1)
	require.Equal(t, "fine.created", activity.entries[0].Action)
}

func TestFineServiceCreateUnknownStudent(t *testing.T) {
	svc, _, _ := newTestFineService(t)

	_, err := svc.Create(context.Background(), adminActor(), dto.FineCreateRequest{
		StudentID: 77,
		Amount:    10,
		Reason:    "Damage",
		DueDate:   "2024-06-01",
	})
	require.ErrorIs(t, err, ErrStudentNotFound)
}

func TestFineServicePayOpenToAnyCaller(t *testing.T) {
	svc, db, _ := newTestFineService(t)
	owner := createTestStudent(t, db, "3002", "7", "2")
	other := createTestStudent(t, db, "3003", "7", "3")

	fine, err := svc.Create(context.Background(), adminActor(), dto.FineCreateRequest{
		StudentID: owner.ID,
		Amount:    40,
		Reason:    "Uniform",
		DueDate:   "2024-06-20",
	})
	require.NoError(t, err)

	paid, err := svc.Pay(context.Background(), Actor{ID: other.UserID, Role: models.RoleStudent}, fine.ID, dto.PaymentRequest{PaymentMethod: "Cash"})
	require.NoError(t, err)
	require.Equal(t, "paid", paid.Status)
	require.Equal(t, "Cash", paid.PaymentMethod)
	require.NotNil(t, paid.PaidDate)

	_, err = svc.Pay(context.Background(), adminActor(), fine.ID, dto.PaymentRequest{})
	require.ErrorIs(t, err, ErrAlreadyPaid)

	_, err = svc.Pay(context.Background(), adminActor(), 999, dto.PaymentRequest{})
	require.ErrorIs(t, err, ErrFineNotFound)
}

func TestFineServiceListForStudent(t *testing.T) {
	svc, db, _ := newTestFineService(t)
	owner := createTestStudent(t, db, "3004", "7", "4")
	other := createTestStudent(t, db, "3005", "7", "5")

	_, err := svc.Create(context.Background(), adminActor(), dto.FineCreateRequest{StudentID: owner.ID, Amount: 20, Reason: "Late return", DueDate: "2024-07-01"})
	require.NoError(t, err)

	fines, err := svc.ListForStudent(context.Background(), Actor{ID: owner.UserID, Role: models.RoleStudent}, owner.UserID)
	require.NoError(t, err)
	require.Len(t, fines, 1)
	require.False(t, fines[0].IsOverdue)

	_, err = svc.ListForStudent(context.Background(), Actor{ID: other.UserID, Role: models.RoleStudent}, owner.UserID)
	require.ErrorIs(t, err, ErrForbidden)

	_, err = svc.ListForStudent(context.Background(), adminActor(), 4242)
	require.ErrorIs(t, err, ErrStudentNotFound)

	all, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 1)
}

func TestFineServiceUpdateAndDelete(t *testing.T) {
	svc, db, activity := newTestFineService(t)
	student := createTestStudent(t, db, "3006", "7", "6")

	fine, err := svc.Create(context.Background(), adminActor(), dto.FineCreateRequest{StudentID: student.ID, Amount: 20, Reason: "Lab", DueDate: "2024-07-01"})
	require.NoError(t, err)

	status := "paid"
	reason := "Lab breakage"
	updated, err := svc.Update(context.Background(), adminActor(), fine.ID, dto.FineUpdateRequest{Status: &status, Reason: &reason})
	require.NoError(t, err)
	require.Equal(t, "paid", updated.Status)
	require.Equal(t, "Lab breakage", updated.Reason)
	require.NotNil(t, updated.PaidDate)

	badDate := "tomorrow"
	_, err = svc.Update(context.Background(), adminActor(), fine.ID, dto.FineUpdateRequest{DueDate: &badDate})
	require.ErrorIs(t, err, ErrInvalidDate)

	_, err = svc.Update(context.Background(), adminActor(), 999, dto.FineUpdateRequest{Reason: &reason})
	require.ErrorIs(t, err, ErrFineNotFound)

	require.NoError(t, svc.Delete(context.Background(), adminActor(), fine.ID))
	require.ErrorIs(t, svc.Delete(context.Background(), adminActor(), fine.ID), ErrFineNotFound)
	require.Equal(t, "fine.deleted", activity.entries[len(activity.entries)-1].Action)
}

func TestFineServiceRejectsSecondOpenLateFine(t *testing.T) {
	svc, db, _ := newTestFineService(t)
	student := createTestStudent(t, db, "3007", "7", "7")
	req := dto.FineCreateRequest{
		StudentID: student.ID,
		Amount:    50,
		Reason:    "Late Fee Payment - monthly June",
		FineType:  "late",
		DueDate:   "2024-06-17",
	}

	first, err := svc.Create(context.Background(), adminActor(), req)
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), adminActor(), req)
	require.ErrorIs(t, err, ErrOpenLateFineExists)

	req.FineType = "other"
	_, err = svc.Create(context.Background(), adminActor(), req)
	require.NoError(t, err, "manual fines are not limited by reason")

	_, err = svc.Pay(context.Background(), adminActor(), first.ID, dto.PaymentRequest{PaymentMethod: "Cash"})
	require.NoError(t, err)

	req.FineType = "late"
	second, err := svc.Create(context.Background(), adminActor(), req)
	require.NoError(t, err)

	reopened := "pending"
	_, err = svc.Update(context.Background(), adminActor(), first.ID, dto.FineUpdateRequest{Status: &reopened})
	require.ErrorIs(t, err, ErrOpenLateFineExists)

	reason := "Late Fee Payment - monthly May"
	updated, err := svc.Update(context.Background(), adminActor(), first.ID, dto.FineUpdateRequest{Status: &reopened, Reason: &reason})
	require.NoError(t, err)
	require.Equal(t, "pending", updated.Status)
	require.NotEqual(t, second.ID, updated.ID)
}

func TestFineServiceReasonKeepsPlainText(t *testing.T) {
	svc, db, _ := newTestFineService(t)
	student := createTestStudent(t, db, "3008", "7", "8")

	fine, err := svc.Create(context.Background(), adminActor(), dto.FineCreateRequest{
		StudentID: student.ID,
		Amount:    120,
		Reason:    "Broke window & door",
		DueDate:   "2024-06-20",
	})
	require.NoError(t, err)
	require.Equal(t, "Broke window & door", fine.Reason)

	reason := "Glass <script>alert(1)</script>& frame"
	updated, err := svc.Update(context.Background(), adminActor(), fine.ID, dto.FineUpdateRequest{Reason: &reason})
	require.NoError(t, err)
	require.Equal(t, "Glass & frame", updated.Reason)
}
