// Command adduser registers a user from the terminal, applying the same
// rules as the signup endpoint.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/isdelr/expense-tracker-be/internal/database"
	"github.com/isdelr/expense-tracker-be/internal/repository"
	"github.com/isdelr/expense-tracker-be/internal/services"
	"golang.org/x/term"
)

const defaultDatabaseURL = "./expenses.db"

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("adduser", flag.ContinueOnError)
	fs.SetOutput(stderr)

	email := fs.String("email", "", "Email address (login key)")
	firstName := fs.String("first", "", "First name")
	lastName := fs.String("last", "", "Last name")
	passwordFlag := fs.String("password", "", "Password (optional, will prompt if omitted)")
	driver := fs.String("driver", database.DriverSQLite, "Database driver: sqlite or postgres")
	dsn := fs.String("db", defaultDatabaseURL, "Database path or connection URL")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if *email == "" {
		fmt.Fprintln(stdout, "Usage: adduser -email <email> -first <name> -last <name> [-password <password>] [-driver <driver>] [-db <url>]")
		fs.PrintDefaults()
		return fmt.Errorf("missing required flags: email")
	}

	password := *passwordFlag
	if password == "" {
		fmt.Fprint(stdout, "Password: ")
		var err error
		password, err = readPassword(stdin)
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
		fmt.Fprintln(stdout) // Print newline after password input
	}

	// The environment applies when the flag keeps its default.
	if url := os.Getenv("DATABASE_URL"); url != "" && *dsn == defaultDatabaseURL {
		*dsn = url
	}
	if d := os.Getenv("DATABASE_DRIVER"); d != "" && *driver == database.DriverSQLite {
		*driver = strings.ToLower(d)
	}

	db, err := database.New(*driver, *dsn)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	service := services.NewAuthService(repository.NewUserRepository(db), nil, nil)
	user, err := service.Signup(context.Background(), services.SignupInput{
		FirstName: *firstName,
		LastName:  *lastName,
		Email:     *email,
		Password:  password,
	})

	var validationErr *services.ValidationError
	var conflictErr *services.ConflictError
	switch {
	case errors.As(err, &validationErr):
		return fmt.Errorf("invalid user:\n  - %s", strings.Join(validationErr.Messages, "\n  - "))
	case errors.As(err, &conflictErr):
		return fmt.Errorf("user %s already exists", services.NormalizeEmail(*email))
	case err != nil:
		return fmt.Errorf("failed to create user: %w", err)
	}

	fmt.Fprintf(stdout, "User %s created successfully with ID %s\n", user.Email, user.ID)
	return nil
}

func readPassword(stdin io.Reader) (string, error) {
	// Check if stdin is a terminal
	if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		bytePassword, err := term.ReadPassword(int(f.Fd()))
		if err != nil {
			return "", err
		}
		return string(bytePassword), nil
	}

	// Fallback for non-terminal (e.g. tests, pipes)
	scanner := bufio.NewScanner(stdin)
	if scanner.Scan() {
		return scanner.Text(), nil
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}
