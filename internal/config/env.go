package config

import (
	"bufio"
	"os"
	"strings"
)

// loadEnvFile parses a KEY=VALUE env file. A missing file is not an error;
// blank lines, comments, and lines without '=' are skipped.
func loadEnvFile(path string) (map[string]string, error) {
	env := make(map[string]string)

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return env, nil
		}
		return nil, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, found := strings.Cut(line, "=")
		if !found {
			continue
		}
		env[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return env, nil
}
