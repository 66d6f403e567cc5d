package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/joho/godotenv"
)

// envVarPattern matches ${VAR_NAME} patterns in TOML values
var envVarPattern = regexp.MustCompile(`^\$\{([A-Za-z_][A-Za-z0-9_]*)\}$`)

// DetectEnvVar checks if a raw TOML value is a simple ${VAR_NAME} reference.
// Returns the variable name and true if the value is a pure env var reference.
func DetectEnvVar(rawValue string) (string, bool) {
	matches := envVarPattern.FindStringSubmatch(rawValue)
	if len(matches) == 2 {
		return matches[1], true
	}
	return "", false
}

// expandValue resolves a TOML string against the environment. A pure ${VAR} reference must be set;
// references embedded in a longer value follow os.ExpandEnv.
func expandValue(field, raw string) (string, error) {
	if name, ok := DetectEnvVar(raw); ok {
		value, set := os.LookupEnv(name)
		if !set {
			return "", fmt.Errorf("%s references ${%s}, which is not set", field, name)
		}
		return value, nil
	}
	return os.ExpandEnv(raw), nil
}

// loadDotEnv loads .env files from the project root. Variables already in the environment win.
func loadDotEnv(projectRoot string) error {
	envFiles := []string{
		filepath.Join(projectRoot, ".env"),
		filepath.Join(projectRoot, ".env.local"),
	}

	for _, envFile := range envFiles {
		if _, err := os.Stat(envFile); err != nil {
			continue
		}
		if err := godotenv.Load(envFile); err != nil {
			return fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}
	return nil
}
