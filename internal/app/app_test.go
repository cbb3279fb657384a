package app

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"askverba.app/server/internal/cache"
	"askverba.app/server/internal/config"
	"askverba.app/server/internal/translation"
)

func TestRunRejectsUnknownCommand(t *testing.T) {
	t.Parallel()

	if code := Run(nil); code != 2 {
		t.Fatalf("no args: got %d want 2", code)
	}
	if code := Run([]string{"frobnicate"}); code != 2 {
		t.Fatalf("unknown command: got %d want 2", code)
	}
	if code := Run([]string{"help"}); code != 0 {
		t.Fatalf("help: got %d want 0", code)
	}
}

func TestTranslateRequiresText(t *testing.T) {
	t.Parallel()

	if code := runTranslate([]string{"--mode", "simple"}); code != 2 {
		t.Fatalf("missing text: got %d want 2", code)
	}
	if code := runTranslate([]string{"--mode", "verbose", "hello"}); code != 2 {
		t.Fatalf("bad mode: got %d want 2", code)
	}
}

func TestValidateNewUser(t *testing.T) {
	t.Parallel()

	email, secret, err := validateNewUser(" Ann@Example.com ", "", "from-environment")
	if err != nil {
		t.Fatalf("validateNewUser failed: %v", err)
	}
	if email != "ann@example.com" || secret != "from-environment" {
		t.Fatalf("unexpected result: %q %q", email, secret)
	}

	cases := []struct {
		name     string
		email    string
		password string
	}{
		{name: "missing email", password: "correct-horse"},
		{name: "invalid email", email: "not-an-email", password: "correct-horse"},
		{name: "missing password", email: "ann@example.com"},
		{name: "short password", email: "ann@example.com", password: "short"},
	}
	for _, tc := range cases {
		if _, _, err := validateNewUser(tc.email, tc.password, ""); err == nil {
			t.Fatalf("%s: expected error", tc.name)
		}
	}
}

func TestParseOutputFormat(t *testing.T) {
	t.Parallel()

	if got, err := parseOutputFormat("", outputFormatTable); err != nil || got != outputFormatTable {
		t.Fatalf("default format: got %q %v", got, err)
	}
	if got, err := parseOutputFormat(" JSON ", outputFormatTable); err != nil || got != outputFormatJSON {
		t.Fatalf("json format: got %q %v", got, err)
	}
	if _, err := parseOutputFormat("yaml", outputFormatTable); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestTruncateForTable(t *testing.T) {
	t.Parallel()

	if got := truncateForTable("xin chào thế giới", 8); got != "xin c..." {
		t.Fatalf("unexpected truncation: %q", got)
	}
	if got := truncateForTable("short", 10); got != "short" {
		t.Fatalf("unexpected value: %q", got)
	}
}

func TestSummarizeResult(t *testing.T) {
	t.Parallel()

	simple := translation.Result{Mode: translation.ModeSimple, Translation: "xin chào"}
	if got := summarizeResult(simple); got != "xin chào" {
		t.Fatalf("simple: got %q", got)
	}

	detailed := translation.Result{Mode: translation.ModeDetailed, Detailed: &translation.DetailedResult{
		Type:       translation.DetailedSingleTerm,
		SingleTerm: &translation.SingleTermAnalysis{MainTranslation: "chạy"},
	}}
	if got := summarizeResult(detailed); got != "chạy" {
		t.Fatalf("detailed: got %q", got)
	}
}

func TestOpenCacheFallsBackToMemory(t *testing.T) {
	t.Parallel()

	backend, err := openCache(context.Background(), &config.Config{}, zerolog.Nop())
	if err != nil {
		t.Fatalf("openCache failed: %v", err)
	}
	defer backend.Close()

	if backend.redis != nil {
		t.Fatal("expected no redis client")
	}
	if _, ok := backend.store.(*cache.MemoryStore); !ok {
		t.Fatalf("expected memory store, got %T", backend.store)
	}
	if _, ok := backend.limiter.(*cache.MemoryLimiter); !ok {
		t.Fatalf("expected memory limiter, got %T", backend.limiter)
	}
}

func TestServerOptionsFromConfig(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{
		AuthCookieSecure:            true,
		CORSAllowedOrigins:          "https://app.example.com, https://app.example.com",
		TranslateRateLimitPerMinute: 12,
	}
	opts := serverOptions(cfg, "127.0.0.1", 9000, time.Second, 2*time.Second, 3*time.Second)
	if !opts.CookieSecure || opts.TranslateRateLimit != 12 || opts.Port != 9000 {
		t.Fatalf("unexpected options: %#v", opts)
	}
	if len(opts.AllowedOrigins) != 1 || opts.AllowedOrigins[0] != "https://app.example.com" {
		t.Fatalf("unexpected origins: %#v", opts.AllowedOrigins)
	}
}
