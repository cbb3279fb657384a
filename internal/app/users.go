package app

import (
	"errors"
	"flag"
	"fmt"
	"net/mail"
	"os"
	"strings"
	"time"

	"askverba.app/server/internal/auth"
	"askverba.app/server/internal/cli"
	"askverba.app/server/internal/db"
	"askverba.app/server/internal/globaltime"
)

// createUserPasswordVar is read when --password is omitted, keeping the
// secret out of shell history.
const createUserPasswordVar = "ASKVERBA_USER_PASSWORD"

func runCreateUser(args []string) int {
	fs := flag.NewFlagSet("create-user", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	timeout := fs.Duration("timeout", 30*time.Second, "Command timeout")
	email := fs.String("email", "", "Account email")
	name := fs.String("name", "", "Display name")
	password := fs.String("password", "", "Account password (defaults to $"+createUserPasswordVar+")")
	format := fs.String("format", outputFormatTable, "Output format: table or json")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	normalizedEmail, secret, err := validateNewUser(*email, *password, os.Getenv(createUserPasswordVar))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	outputFormat, err := parseOutputFormat(*format, outputFormatTable)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	ctx, cancel, pool, err := connectReadPool(*timeout, envLoader)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer cancel()
	defer pool.Close()

	passwordHash, err := auth.HashPassword(secret)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to hash password: %v\n", err)
		return 1
	}

	user, err := pool.CreateUser(ctx, normalizedEmail, strings.TrimSpace(*name), passwordHash)
	if err != nil {
		if errors.Is(err, db.ErrDuplicate) {
			fmt.Fprintf(os.Stderr, "A user with email %s already exists\n", normalizedEmail)
			return 1
		}
		fmt.Fprintf(os.Stderr, "Failed to create user: %v\n", err)
		return 1
	}

	if outputFormat == outputFormatJSON {
		if err := printJSON(map[string]any{
			"id":        user.ID,
			"email":     user.Email,
			"name":      user.Name,
			"createdAt": user.CreatedAt.UTC(),
		}); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write output: %v\n", err)
			return 1
		}
		return 0
	}
	if err := writeTable([]string{"ID", "EMAIL", "NAME", "CREATED_AT"}, [][]string{{
		user.ID,
		user.Email,
		truncateForTable(user.Name, 40),
		formatUTCTimestamp(user.CreatedAt),
	}}); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write output: %v\n", err)
		return 1
	}
	return 0
}

// validateNewUser applies the same rules as the register endpoint.
func validateNewUser(email, password, passwordFromEnv string) (string, string, error) {
	normalized := db.NormalizeEmail(email)
	if normalized == "" {
		return "", "", fmt.Errorf("--email is required")
	}
	if _, err := mail.ParseAddress(normalized); err != nil {
		return "", "", fmt.Errorf("--email must be a valid email address")
	}

	secret := password
	if secret == "" {
		secret = passwordFromEnv
	}
	switch {
	case secret == "":
		return "", "", fmt.Errorf("--password or $%s is required", createUserPasswordVar)
	case len(secret) < 8:
		return "", "", fmt.Errorf("password must be at least 8 characters")
	case len(secret) > 72:
		return "", "", fmt.Errorf("password must be at most 72 characters")
	}
	return normalized, secret, nil
}

func runCleanupSessions(args []string) int {
	fs := flag.NewFlagSet("cleanup-sessions", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	timeout := fs.Duration("timeout", 30*time.Second, "Command timeout")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	ctx, cancel, pool, err := connectReadPool(*timeout, envLoader)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer cancel()
	defer pool.Close()

	deleted, err := pool.DeleteExpiredSessions(ctx, globaltime.UTC())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to delete expired sessions: %v\n", err)
		return 1
	}
	fmt.Printf("ok: deleted %d expired sessions\n", deleted)
	return 0
}
