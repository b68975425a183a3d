package env

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
)

// FilePath returns the project env file, <root>/.sym/.env.
func FilePath(root string) string {
	return filepath.Join(root, ".sym", ".env")
}

// Get retrieves a value from the environment or the project .sym/.env.
// It checks system environment variable first, then the file.
func Get(root, key string) string {
	// 1. Check system environment variable first
	if v := os.Getenv(key); v != "" {
		return v
	}

	// 2. Check .sym/.env file
	return LoadKeyFromEnvFile(FilePath(root), key)
}

// LoadKeyFromEnvFile reads a specific key from .env file
func LoadKeyFromEnvFile(envPath, key string) string {
	return readEnvFile(envPath)[key]
}

// Apply exports every key of the env file that is not already set in the
// process environment. A missing file is not an error. It returns the keys
// that were applied.
func Apply(envPath string) ([]string, error) {
	values := readEnvFile(envPath)

	var applied []string
	for key, value := range values {
		if _, set := os.LookupEnv(key); set {
			continue
		}
		if err := os.Setenv(key, value); err != nil {
			return applied, err
		}
		applied = append(applied, key)
	}
	return applied, nil
}

// readEnvFile parses KEY=value lines, skipping comments and blank lines.
// Surrounding quotes are removed from values.
func readEnvFile(envPath string) map[string]string {
	values := make(map[string]string)

	file, err := os.Open(envPath)
	if err != nil {
		return values
	}
	defer func() {
		_ = file.Close()
	}()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		// Skip comments and empty lines
		if len(line) == 0 || line[0] == '#' {
			continue
		}
		line = strings.TrimPrefix(line, "export ")

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		if len(value) >= 2 && (value[0] == '"' || value[0] == '\'') && value[len(value)-1] == value[0] {
			value = value[1 : len(value)-1]
		}
		if key != "" {
			values[key] = value
		}
	}

	return values
}
