package app

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// Run executes the CLI command and returns a process exit code.
func Run(args []string) int {
	if len(args) == 0 {
		printUsage(os.Stderr)
		return 2
	}

	switch strings.ToLower(strings.TrimSpace(args[0])) {
	case "help", "--help", "-h":
		printUsage(os.Stderr)
		return 0
	case "serve":
		return runServe(args[1:])
	case "migrate":
		return runMigrate(args[1:])
	case "health":
		return runHealth(args[1:])
	case "translate":
		return runTranslate(args[1:])
	case "create-user":
		return runCreateUser(args[1:])
	case "cleanup-sessions":
		return runCleanupSessions(args[1:])
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", args[0])
		printUsage(os.Stderr)
		return 2
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "askverba CLI")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  askverba <command> [flags]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  serve             Start the HTTP API and page server")
	fmt.Fprintln(w, "  migrate           Apply the schema and seed the achievement catalog")
	fmt.Fprintln(w, "  health            Verify database and Redis connectivity")
	fmt.Fprintln(w, "  translate         Translate one text from the terminal")
	fmt.Fprintln(w, "  create-user       Create a user account")
	fmt.Fprintln(w, "  cleanup-sessions  Delete expired login sessions")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Use \"askverba <command> -h\" for command-specific flags.")
}
