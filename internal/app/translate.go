package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"askverba.app/server/internal/cli"
	"askverba.app/server/internal/logging"
	"askverba.app/server/internal/translation"
)

func runTranslate(args []string) int {
	fs := flag.NewFlagSet("translate", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	timeout := fs.Duration("timeout", 2*time.Minute, "Command timeout")
	mode := fs.String("mode", string(translation.ModeSimple), "Translation mode: simple or detailed")
	format := fs.String("format", outputFormatTable, "Output format: table or json")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	text := strings.TrimSpace(strings.Join(fs.Args(), " "))
	if text == "" {
		fmt.Fprintln(os.Stderr, "translate requires text to translate")
		return 2
	}
	parsedMode, err := translation.ParseMode(*mode)
	if err != nil {
		fmt.Fprintln(os.Stderr, "--mode must be simple or detailed")
		return 2
	}
	outputFormat, err := parseOutputFormat(*format, outputFormatTable)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	cfg, err := loadConfig(envLoader)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	logger, err := logging.New(cfg.Environment, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		return 1
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	backend, err := openCache(ctx, cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect to redis: %v\n", err)
		return 1
	}
	defer backend.Close()

	translator, err := newTranslator(cfg, logger, backend.store, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to configure translator: %v\n", err)
		return 1
	}

	resp, err := translator.Translate(ctx, translation.Request{Text: text, Mode: parsedMode})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Translate failed: %v\n", err)
		return 1
	}

	if outputFormat == outputFormatJSON {
		if err := printJSON(resp); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write output: %v\n", err)
			return 1
		}
		return 0
	}

	if err := writeTable([]string{"DIRECTION", "MODE", "CACHED", "MS", "TRANSLATION"}, [][]string{{
		resp.SourceLang + "->" + resp.TargetLang,
		string(resp.Result.Mode),
		fmt.Sprintf("%t", resp.FromCache),
		fmt.Sprintf("%d", resp.ProcessingTime),
		truncateForTable(summarizeResult(resp.Result), 80),
	}}); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write output: %v\n", err)
		return 1
	}
	return 0
}

// summarizeResult picks the single line a table row can show.
func summarizeResult(result translation.Result) string {
	switch {
	case result.Detailed == nil:
		return result.Translation
	case result.Detailed.SingleTerm != nil:
		return result.Detailed.SingleTerm.MainTranslation
	case result.Detailed.Paragraph != nil:
		return result.Detailed.Paragraph.FullTranslation
	default:
		return ""
	}
}
