package config

import (
	"os"
	"regexp"

	"github.com/joho/godotenv"
)

var (
	envWithDefaultPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*):-([^}]*)\}`)
	envBracedPattern      = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)
	envSimplePattern      = regexp.MustCompile(`\$([A-Za-z_][A-Za-z0-9_]*)`)
)

// LoadDotEnv loads a .env file if present, populating process environment
// variables referenced by config files (API keys in particular). A missing
// file is not an error — dotenv files are optional in every deployment.
func LoadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	return godotenv.Load(path)
}

// expandEnvVars rewrites ${VAR}, ${VAR:-default}, and $VAR references in raw
// config text against the process environment, applied before YAML parsing.
func expandEnvVars(raw string) string {
	raw = envWithDefaultPattern.ReplaceAllStringFunc(raw, func(m string) string {
		groups := envWithDefaultPattern.FindStringSubmatch(m)
		name, def := groups[1], groups[2]
		if v, ok := os.LookupEnv(name); ok && v != "" {
			return v
		}
		return def
	})
	raw = envBracedPattern.ReplaceAllStringFunc(raw, func(m string) string {
		name := envBracedPattern.FindStringSubmatch(m)[1]
		return os.Getenv(name)
	})
	raw = envSimplePattern.ReplaceAllStringFunc(raw, func(m string) string {
		name := envSimplePattern.FindStringSubmatch(m)[1]
		if v, ok := os.LookupEnv(name); ok {
			return v
		}
		return m
	})
	return raw
}
