package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"syscall"

	"golang.org/x/term"

	"github.com/noah-isme/school-fees-api/internal/dto"
	"github.com/noah-isme/school-fees-api/internal/service"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	auth     service.AuthService
	fines    service.LateFineGenerator
	out      io.Writer
	adminEml string
	adminPwd string
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  createadmin [-email EMAIL] [-reset] - create or promote the administrator account")
	fmt.Fprintln(cli.out, "  adduser -name NAME -email EMAIL -role admin|teacher|accountant [-phone PHONE] [-password PASSWORD] - create a staff account, password is prompted when omitted")
	fmt.Fprintln(cli.out, "  sweep - generate late fines for overdue fees now")
}

func (cli *commandLine) run(ctx context.Context, args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	createAdminCmd := flag.NewFlagSet("createadmin", flag.ContinueOnError)
	createAdminEmail := createAdminCmd.String("email", cli.adminEml, "Administrator email.")
	createAdminReset := createAdminCmd.Bool("reset", false, "Reset the password when the account already exists.")

	addUserCmd := flag.NewFlagSet("adduser", flag.ContinueOnError)
	addUserName := addUserCmd.String("name", "", "Full name.")
	addUserEmail := addUserCmd.String("email", "", "Login email.")
	addUserRole := addUserCmd.String("role", "", "One of admin, teacher or accountant.")
	addUserPhone := addUserCmd.String("phone", "", "Mobile number.")
	addUserPassword := addUserCmd.String("password", "", "Initial password. Prompted when omitted.")

	switch args[1] {
	case "createadmin":
		if err := createAdminCmd.Parse(args[2:]); err != nil {
			return err
		}
		return cli.createAdmin(ctx, *createAdminEmail, *createAdminReset)
	case "adduser":
		if err := addUserCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *addUserName == "" || *addUserEmail == "" || *addUserRole == "" {
			addUserCmd.Usage()
			return errHelp
		}
		pwd := *addUserPassword
		if pwd == "" {
			var err error
			if pwd, err = cli.promptPassword(); err != nil {
				return err
			}
		}
		if pwd == "" {
			addUserCmd.Usage()
			return errHelp
		}
		return cli.addUser(ctx, dto.UserCreateRequest{
			Name:     *addUserName,
			Email:    *addUserEmail,
			Password: pwd,
			Role:     strings.ToLower(*addUserRole),
			Phone:    *addUserPhone,
		})
	case "sweep":
		return cli.sweep(ctx)
	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) promptPassword() (string, error) {
	fmt.Fprint(cli.out, "Enter password:")
	pwd, err := readPasswordFunc(int(syscall.Stdin))
	fmt.Fprintln(cli.out)
	if err != nil {
		return "", err
	}
	return string(pwd), nil
}

func (cli *commandLine) createAdmin(ctx context.Context, email string, reset bool) error {
	user, created, err := cli.auth.EnsureAdmin(ctx, email, cli.adminPwd, reset)
	if err != nil {
		return err
	}
	switch {
	case created:
		fmt.Fprintf(cli.out, "admin %s created\n", user.Email)
	case reset:
		fmt.Fprintf(cli.out, "admin %s password reset\n", user.Email)
	default:
		fmt.Fprintf(cli.out, "admin %s already exists\n", user.Email)
	}
	return nil
}

func (cli *commandLine) addUser(ctx context.Context, req dto.UserCreateRequest) error {
	user, err := cli.auth.CreateStaff(ctx, req)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "%s %s created with id %d\n", user.Role, user.Email, user.ID)
	return nil
}

func (cli *commandLine) sweep(ctx context.Context) error {
	result, err := cli.fines.Generate(ctx, service.SweepTriggerManual)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "scanned %d overdue fees, created %d fines\n", result.Scanned, result.Created)
	return nil
}
