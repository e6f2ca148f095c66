package router_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/school-fees-api/internal/config"
	"github.com/noah-isme/school-fees-api/internal/database"
	"github.com/noah-isme/school-fees-api/internal/handler"
	"github.com/noah-isme/school-fees-api/internal/middleware"
	"github.com/noah-isme/school-fees-api/internal/models"
	"github.com/noah-isme/school-fees-api/internal/repository"
	"github.com/noah-isme/school-fees-api/internal/router"
	"github.com/noah-isme/school-fees-api/internal/service"
)

const testSecret = "router-test-secret"

type testServer struct {
	app    *fiber.App
	db     *gorm.DB
	tokens *service.TokenIssuer
}

type apiResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:router_%s?mode=memory&cache=shared", t.Name())), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	cfg := config.Config{AppName: "School Fees API", AppEnv: "test", JWTSecret: testSecret, LateFine: config.DefaultLateFinePolicy()}
	logger := zerolog.New(io.Discard)
	validate := validator.New(validator.WithRequiredStructEnabled())
	tokens := service.NewTokenIssuer(testSecret, time.Hour)

	users := repository.NewUserRepository(db)
	students := repository.NewStudentRepository(db)
	classes := repository.NewClassTeacherRepository(db)
	fees := repository.NewFeeRepository(db)
	fines := repository.NewFineRepository(db)

	activity := service.NewActivityService(repository.NewActivityLogRepository(db), logger)
	notifications := service.NewNotificationService(repository.NewNotificationRepository(db), nil, "", nil, validate, logger)
	lateFines := service.NewLateFineService(fees, fines, activity, notifications, cfg.LateFine, logger)
	studentService := service.NewStudentService(students, users, classes, validate, logger)

	app := fiber.New()
	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		AuthHandler:         handler.NewAuthHandler(service.NewAuthService(users, tokens, validate, logger), logger),
		StudentHandler:      handler.NewStudentHandler(studentService, logger),
		ClassTeacherHandler: handler.NewClassTeacherHandler(service.NewClassTeacherService(classes, users, validate, logger), logger),
		FeeHandler:          handler.NewFeeHandler(service.NewFeeService(fees, students, lateFines, activity, validate, logger, service.FeeServiceConfig{SweepOnRead: true}), studentService, logger),
		FineHandler:         handler.NewFineHandler(service.NewFineService(fines, students, activity, validate, logger), logger),
		NotificationHandler: handler.NewNotificationHandler(notifications, logger, time.Second),
		ActivityHandler:     handler.NewActivityHandler(activity, logger),
		JWTMiddleware:       middleware.JWTProtected(testSecret),
	})

	return &testServer{app: app, db: db, tokens: tokens}
}

func (s *testServer) user(t *testing.T, email string, role models.Role) (models.User, string) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	require.NoError(t, err)
	user := models.User{Name: email, Email: email, PasswordHash: string(hash), Role: role}
	require.NoError(t, s.db.Create(&user).Error)
	return user, s.token(t, user)
}

func (s *testServer) token(t *testing.T, user models.User) string {
	t.Helper()
	token, _, err := s.tokens.Issue(user)
	require.NoError(t, err)
	return token
}

func (s *testServer) student(t *testing.T, enrollment, class, roll string) (models.Student, string) {
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
		Phone:             "97" + enrollment,
	}
	student := models.Student{
		StudentName:      "Student " + enrollment,
		FathersName:      "Father",
		MothersName:      "Mother",
		Address:          "Hill Road",
		Class:            class,
		RollNumber:       roll,
		EnrollmentNumber: enrollment,
		MobileNumber:     "97" + enrollment,
		StudentType:      models.StudentTypeHosteler,
	}
	require.NoError(t, repository.NewStudentRepository(s.db).CreateWithUser(context.Background(), &user, &student))
	return student, s.token(t, user)
}

func (s *testServer) fee(t *testing.T, student models.Student, amount float64, month string, due time.Time) models.Fee {
	t.Helper()
	fee := models.Fee{
		StudentID:   student.ID,
		UserID:      student.UserID,
		Amount:      amount,
		FeesType:    models.FeeTypeMonthly,
		FeeCategory: models.FeeCategoryRegular,
		Month:       month,
		DueDate:     due,
		Status:      models.PaymentStatusPending,
	}
	require.NoError(t, repository.NewFeeRepository(s.db).Create(context.Background(), &fee))
	return fee
}

func (s *testServer) do(t *testing.T, method, target, token string, payload interface{}) (int, apiResponse) {
	t.Helper()
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var decoded apiResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp.StatusCode, decoded
}

type fineView struct {
	ID        uint      `json:"id"`
	StudentID uint      `json:"studentId"`
	Amount    float64   `json:"amount"`
	Reason    string    `json:"reason"`
	FineType  string    `json:"fineType"`
	DueDate   time.Time `json:"dueDate"`
	Status    string    `json:"status"`
	Remarks   string    `json:"remarks"`
}

type feeView struct {
	ID            uint   `json:"id"`
	Status        string `json:"status"`
	PaymentMethod string `json:"paymentMethod"`
	IsOverdue     bool   `json:"isOverdue"`
}

func today() time.Time {
	now := time.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local)
}

func dateOf(ts time.Time) string {
	return ts.In(time.Local).Format("2006-01-02")
}

func (s *testServer) lateFines(t *testing.T, token string) []fineView {
	t.Helper()
	status, resp := s.do(t, http.MethodGet, "/api/fines", token, nil)
	require.Equal(t, http.StatusOK, status)
	var fines []fineView
	require.NoError(t, json.Unmarshal(resp.Data, &fines))
	return fines
}

func TestHealthAndMetrics(t *testing.T) {
	srv := newTestServer(t)

	status, resp := srv.do(t, http.MethodGet, "/api/health", "", nil)
	require.Equal(t, http.StatusOK, status)
	require.True(t, resp.Success)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	metrics, err := srv.app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, metrics.StatusCode)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	srv := newTestServer(t)

	status, resp := srv.do(t, http.MethodGet, "/api/fees", "", nil)
	require.Equal(t, http.StatusUnauthorized, status)
	require.False(t, resp.Success)
	require.NotEmpty(t, resp.Message)
}

func TestListingFeesGeneratesLateFineOnce(t *testing.T) {
	srv := newTestServer(t)
	_, adminToken := srv.user(t, "admin@school.com", models.RoleAdmin)
	student, _ := srv.student(t, "6001", "5", "1")
	srv.fee(t, student, 1000, "March", today().AddDate(0, 0, -1))

	for i := 0; i < 2; i++ {
		status, resp := srv.do(t, http.MethodGet, "/api/fees", adminToken, nil)
		require.Equal(t, http.StatusOK, status)

		var fees []feeView
		require.NoError(t, json.Unmarshal(resp.Data, &fees))
		require.Len(t, fees, 1)
		require.True(t, fees[0].IsOverdue)
		require.Equal(t, "pending", fees[0].Status)
	}

	fines := srv.lateFines(t, adminToken)
	require.Len(t, fines, 1)
	require.Equal(t, student.ID, fines[0].StudentID)
	require.Equal(t, "late", fines[0].FineType)
	require.Equal(t, 50.0, fines[0].Amount)
	require.Equal(t, "Late Fee Payment - monthly March", fines[0].Reason)
	require.Equal(t, dateOf(today().AddDate(0, 0, 7)), dateOf(fines[0].DueDate))
	require.Equal(t, "Auto-generated late fine for overdue fee: ₹1000", fines[0].Remarks)
}

func TestLateFineScalesWithAmount(t *testing.T) {
	srv := newTestServer(t)
	_, adminToken := srv.user(t, "admin@school.com", models.RoleAdmin)
	student, studentToken := srv.student(t, "6002", "5", "2")
	srv.fee(t, student, 5000, "", today().AddDate(0, 0, -3))

	status, _ := srv.do(t, http.MethodGet, fmt.Sprintf("/api/fees/student/%d", student.UserID), studentToken, nil)
	require.Equal(t, http.StatusOK, status)

	fines := srv.lateFines(t, adminToken)
	require.Len(t, fines, 1)
	require.Equal(t, 250.0, fines[0].Amount)
	require.Equal(t, "Late Fee Payment - monthly ", fines[0].Reason)

	status, resp := srv.do(t, http.MethodGet, "/api/notifications", studentToken, nil)
	require.Equal(t, http.StatusOK, status)
	require.Contains(t, string(resp.Data), "Late fine added")
}

func TestStudentPaysOwnFee(t *testing.T) {
	srv := newTestServer(t)
	_, accountantToken := srv.user(t, "accounts@school.com", models.RoleAccountant)
	student, studentToken := srv.student(t, "6003", "5", "3")
	fee := srv.fee(t, student, 1200, "April", today().AddDate(0, 0, 10))

	status, resp := srv.do(t, http.MethodPut, fmt.Sprintf("/api/fees/%d/pay", fee.ID), studentToken, map[string]string{"paymentMethod": "Online"})
	require.Equal(t, http.StatusOK, status)
	require.True(t, resp.Success)

	status, resp = srv.do(t, http.MethodGet, fmt.Sprintf("/api/fees/student/%d", student.UserID), accountantToken, nil)
	require.Equal(t, http.StatusOK, status)
	var fees []feeView
	require.NoError(t, json.Unmarshal(resp.Data, &fees))
	require.Len(t, fees, 1)
	require.Equal(t, "paid", fees[0].Status)
	require.Equal(t, "Online", fees[0].PaymentMethod)

	status, resp = srv.do(t, http.MethodPut, fmt.Sprintf("/api/fees/%d/pay", fee.ID), studentToken, nil)
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, "Fee already paid", resp.Message)
}

func TestStudentCannotReadAnotherStudentsFees(t *testing.T) {
	srv := newTestServer(t)
	owner, _ := srv.student(t, "6004", "5", "4")
	_, otherToken := srv.student(t, "6005", "5", "5")

	status, resp := srv.do(t, http.MethodGet, fmt.Sprintf("/api/fees/student/%d", owner.UserID), otherToken, nil)
	require.Equal(t, http.StatusForbidden, status)
	require.Equal(t, "Access denied", resp.Message)

	status, _ = srv.do(t, http.MethodGet, fmt.Sprintf("/api/fines/student/%d", owner.UserID), otherToken, nil)
	require.Equal(t, http.StatusForbidden, status)
}

func TestCreateFeeForUnknownStudent(t *testing.T) {
	srv := newTestServer(t)
	_, adminToken := srv.user(t, "admin@school.com", models.RoleAdmin)

	status, resp := srv.do(t, http.MethodPost, "/api/fees", adminToken, map[string]interface{}{
		"studentId": 987,
		"amount":    500,
		"dueDate":   "2030-01-10",
	})
	require.Equal(t, http.StatusNotFound, status)
	require.Equal(t, "Student not found", resp.Message)
}

func TestLoginWithEnrollmentNumber(t *testing.T) {
	srv := newTestServer(t)
	student, _ := srv.student(t, "6006", "5", "6")

	status, resp := srv.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"enrollmentNumber": "6006", "password": "6006"})
	require.Equal(t, http.StatusOK, status)

	var login struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &login))
	require.NotEmpty(t, login.Token)

	status, resp = srv.do(t, http.MethodGet, fmt.Sprintf("/api/students/%d", student.UserID), login.Token, nil)
	require.Equal(t, http.StatusOK, status)
	require.Contains(t, string(resp.Data), `"enrollmentNumber":"6006"`)

	status, resp = srv.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"password": "6006"})
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, "Email, mobile number, or enrollment number is required", resp.Message)
}

func TestTeacherManagesOnlyAssignedClass(t *testing.T) {
	srv := newTestServer(t)
	_, adminToken := srv.user(t, "admin@school.com", models.RoleAdmin)
	teacher, teacherToken := srv.user(t, "teacher@school.com", models.RoleTeacher)

	status, resp := srv.do(t, http.MethodGet, "/api/students", teacherToken, nil)
	require.Equal(t, http.StatusForbidden, status)
	require.Equal(t, "No class assigned", resp.Message)

	status, _ = srv.do(t, http.MethodPost, "/api/class-teachers", adminToken, map[string]interface{}{"teacherId": teacher.ID, "className": "7"})
	require.Equal(t, http.StatusCreated, status)

	newStudent := map[string]interface{}{
		"studentName":      "Kiran",
		"fathersName":      "Mohan",
		"mothersName":      "Lata",
		"address":          "Market Street",
		"class":            "7",
		"rollNumber":       "1",
		"enrollmentNumber": "7001",
		"mobileNumber":     "9000007001",
	}
	status, _ = srv.do(t, http.MethodPost, "/api/students", teacherToken, newStudent)
	require.Equal(t, http.StatusCreated, status)

	newStudent["enrollmentNumber"] = "7002"
	newStudent["mobileNumber"] = "9000007002"
	status, resp = srv.do(t, http.MethodPost, "/api/students", teacherToken, newStudent)
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, "Roll number 1 already exists in class 7", resp.Message)

	newStudent["class"] = "8"
	status, _ = srv.do(t, http.MethodPost, "/api/students", teacherToken, newStudent)
	require.Equal(t, http.StatusForbidden, status)

	status, resp = srv.do(t, http.MethodGet, "/api/fees/class/7", adminToken, nil)
	require.Equal(t, http.StatusOK, status)
	require.Contains(t, string(resp.Data), "Kiran")
}

func TestManualSweepAndActivityTrail(t *testing.T) {
	srv := newTestServer(t)
	_, adminToken := srv.user(t, "admin@school.com", models.RoleAdmin)
	student, _ := srv.student(t, "6007", "5", "7")
	srv.fee(t, student, 800, "January", today().AddDate(0, -1, 0))

	status, resp := srv.do(t, http.MethodPost, "/api/fees/sweep", adminToken, nil)
	require.Equal(t, http.StatusOK, status)
	var result struct {
		Scanned int `json:"scanned"`
		Created int `json:"created"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &result))
	require.Equal(t, 1, result.Scanned)
	require.Equal(t, 1, result.Created)

	status, resp = srv.do(t, http.MethodGet, "/api/activity?action=late_fine.generated", adminToken, nil)
	require.Equal(t, http.StatusOK, status)
	require.Contains(t, string(resp.Data), `"actorRole":"system"`)
}
