package cli

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

// EnvFileVar overrides the --env flag when set.
const EnvFileVar = "ASKVERBA_ENV_FILE"

// EnvLoader loads .env files with a predictable override order:
// $ASKVERBA_ENV_FILE, the --env flag value, its basename, then the default path.
type EnvLoader struct {
	value       *string
	defaultPath string
}

// AddEnvFlag registers an --env flag and returns an EnvLoader.
func AddEnvFlag(fs *flag.FlagSet, defaultPath, description string) *EnvLoader {
	if fs == nil {
		fs = flag.CommandLine
	}
	if defaultPath == "" {
		defaultPath = ".env"
	}
	if description == "" {
		description = "Path to the .env file"
	}

	return &EnvLoader{
		value:       fs.String("env", defaultPath, description),
		defaultPath: defaultPath,
	}
}

// Load applies the first env file that can be read and returns its path.
func (l *EnvLoader) Load() (string, error) {
	if l == nil {
		return "", fmt.Errorf("env loader is nil")
	}

	candidates := l.candidates()
	for _, path := range candidates {
		if err := godotenv.Overload(path); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("failed to load env file from %s", strings.Join(candidates, ", "))
}

func (l *EnvLoader) candidates() []string {
	requested := ""
	if l.value != nil {
		requested = strings.TrimSpace(*l.value)
	}
	if requested == "" {
		requested = l.defaultPath
	}

	ordered := []string{
		strings.TrimSpace(os.Getenv(EnvFileVar)),
		requested,
		filepath.Base(requested),
		l.defaultPath,
	}

	seen := make(map[string]struct{}, len(ordered))
	out := make([]string, 0, len(ordered))
	for _, path := range ordered {
		if path == "" || path == "." {
			continue
		}
		if _, dup := seen[path]; dup {
			continue
		}
		seen[path] = struct{}{}
		out = append(out, path)
	}
	return out
}
