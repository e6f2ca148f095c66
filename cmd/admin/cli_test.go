package main

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-fees-api/internal/dto"
	"github.com/noah-isme/school-fees-api/internal/service"
)

type stubAuth struct {
	service.AuthService
	ensureEmail string
	ensureReset bool
	created     bool
	staff       dto.UserCreateRequest
}

func (s *stubAuth) EnsureAdmin(_ context.Context, email, _ string, reset bool) (dto.AuthUserResponse, bool, error) {
	s.ensureEmail = email
	s.ensureReset = reset
	return dto.AuthUserResponse{ID: 1, Email: email, Role: "admin"}, s.created, nil
}

func (s *stubAuth) CreateStaff(_ context.Context, req dto.UserCreateRequest) (dto.AuthUserResponse, error) {
	s.staff = req
	return dto.AuthUserResponse{ID: 7, Email: req.Email, Role: req.Role}, nil
}

type stubGenerator struct {
	trigger service.SweepTrigger
}

func (s *stubGenerator) Generate(_ context.Context, trigger service.SweepTrigger) (service.SweepResult, error) {
	s.trigger = trigger
	return service.SweepResult{Scanned: 3, Created: 2}, nil
}

func newTestCLI(auth *stubAuth, fines *stubGenerator) (*commandLine, *bytes.Buffer) {
	out := &bytes.Buffer{}
	return &commandLine{auth: auth, fines: fines, out: out, adminEml: "admin@school.com", adminPwd: "Admin@123"}, out
}

func TestRunWithoutCommandPrintsUsage(t *testing.T) {
	cli, out := newTestCLI(&stubAuth{}, &stubGenerator{})

	err := cli.run(context.Background(), []string{"admin"})
	require.ErrorIs(t, err, errHelp)
	require.Contains(t, out.String(), "Usage:")

	err = cli.run(context.Background(), []string{"admin", "unknown"})
	require.ErrorIs(t, err, errHelp)
}

func TestCreateAdminUsesConfiguredEmail(t *testing.T) {
	auth := &stubAuth{created: true}
	cli, out := newTestCLI(auth, &stubGenerator{})

	require.NoError(t, cli.run(context.Background(), []string{"admin", "createadmin"}))
	require.Equal(t, "admin@school.com", auth.ensureEmail)
	require.False(t, auth.ensureReset)
	require.Contains(t, out.String(), "admin admin@school.com created")

	auth.created = false
	require.NoError(t, cli.run(context.Background(), []string{"admin", "createadmin", "-email", "root@school.com", "-reset"}))
	require.Equal(t, "root@school.com", auth.ensureEmail)
	require.True(t, auth.ensureReset)
	require.Contains(t, out.String(), "password reset")
}

func TestAddUserPromptsForPassword(t *testing.T) {
	original := readPasswordFunc
	t.Cleanup(func() { readPasswordFunc = original })
	readPasswordFunc = func(int) ([]byte, error) { return []byte("secret123"), nil }

	auth := &stubAuth{}
	cli, out := newTestCLI(auth, &stubGenerator{})

	err := cli.run(context.Background(), []string{"admin", "adduser", "-name", "Asha", "-email", "asha@school.com", "-role", "Accountant"})
	require.NoError(t, err)
	require.Equal(t, "secret123", auth.staff.Password)
	require.Equal(t, "accountant", auth.staff.Role)
	require.Contains(t, out.String(), "accountant asha@school.com created with id 7")
}

func TestAddUserAcceptsPasswordFlag(t *testing.T) {
	original := readPasswordFunc
	t.Cleanup(func() { readPasswordFunc = original })
	readPasswordFunc = func(int) ([]byte, error) {
		t.Fatal("password should not be prompted")
		return nil, nil
	}

	auth := &stubAuth{}
	cli, _ := newTestCLI(auth, &stubGenerator{})

	err := cli.run(context.Background(), []string{"admin", "adduser", "-name", "Ravi", "-email", "ravi@school.com", "-role", "teacher", "-password", "teach123", "-phone", "9800000001"})
	require.NoError(t, err)
	require.Equal(t, "teach123", auth.staff.Password)
	require.Equal(t, "9800000001", auth.staff.Phone)
}

func TestAddUserRequiresFlagsAndPassword(t *testing.T) {
	original := readPasswordFunc
	t.Cleanup(func() { readPasswordFunc = original })

	cli, _ := newTestCLI(&stubAuth{}, &stubGenerator{})

	err := cli.run(context.Background(), []string{"admin", "adduser", "-name", "Asha"})
	require.ErrorIs(t, err, errHelp)

	readPasswordFunc = func(int) ([]byte, error) { return nil, nil }
	err = cli.run(context.Background(), []string{"admin", "adduser", "-name", "Asha", "-email", "a@school.com", "-role", "teacher"})
	require.ErrorIs(t, err, errHelp)

	readPasswordFunc = func(int) ([]byte, error) { return nil, errors.New("no tty") }
	err = cli.run(context.Background(), []string{"admin", "adduser", "-name", "Asha", "-email", "a@school.com", "-role", "teacher"})
	require.EqualError(t, err, "no tty")
}

func TestSweepRunsManualTrigger(t *testing.T) {
	fines := &stubGenerator{}
	cli, out := newTestCLI(&stubAuth{}, fines)

	require.NoError(t, cli.run(context.Background(), []string{"admin", "sweep"}))
	require.Equal(t, service.SweepTriggerManual, fines.trigger)
	require.Contains(t, out.String(), "scanned 3 overdue fees, created 2 fines")
}
