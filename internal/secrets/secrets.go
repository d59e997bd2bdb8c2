// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads API keys and credentials from a directory of plain-text files
// and from a .env file. In the directory each file represents one secret: the filename
// is the key name and the file contents (trimmed) are the value.
//
// Supported key files: gemini-api-key.
package secrets

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// GeminiAPIKey names the oracle API key secret.
const GeminiAPIKey = "gemini-api-key"

// envAliases maps environment variable names found in .env files to secret
// names. Earlier entries win.
var envAliases = []struct{ env, key string }{
	{"GEMINI_API_KEY", GeminiAPIKey},
	{"GOOGLE_API_KEY", GeminiAPIKey},
	{"NEXT_PUBLIC_GEMINI_API", GeminiAPIKey},
}

// Load reads all files in dir and returns a map of filename to trimmed contents.
// A missing directory or missing files are not errors; Load returns an empty map.
// Unreadable files are logged as warnings but do not abort.
func Load(dir string, logger *zap.Logger) (map[string]string, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			logger.Warn("could not read secret", zap.String("name", name), zap.Error(err))
			continue
		}

		value := strings.TrimSpace(string(data))
		if value != "" {
			secrets[name] = value
		}
	}

	return secrets, nil
}

// LoadEnv reads a .env file into the process environment without
// overriding variables that are already set, and returns the secrets it
// names. A missing file is not an error.
func LoadEnv(path string) (map[string]string, error) {
	vars, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading env file %s: %w", path, err)
	}
	if err := godotenv.Load(path); err != nil {
		return nil, fmt.Errorf("loading env file %s: %w", path, err)
	}

	secrets := make(map[string]string)
	for _, a := range envAliases {
		if _, set := secrets[a.key]; set {
			continue
		}
		if v := strings.TrimSpace(vars[a.env]); v != "" {
			secrets[a.key] = v
		}
	}
	return secrets, nil
}

// FromEnviron returns the secrets named by process environment variables.
func FromEnviron() map[string]string {
	secrets := make(map[string]string)
	for _, a := range envAliases {
		if _, set := secrets[a.key]; set {
			continue
		}
		if v := strings.TrimSpace(os.Getenv(a.env)); v != "" {
			secrets[a.key] = v
		}
	}
	return secrets
}

// Lookup returns configured when it is set, else the first non-empty value
// of key across sources.
func Lookup(key, configured string, sources ...map[string]string) string {
	if configured != "" {
		return configured
	}
	for _, s := range sources {
		if v, ok := s[key]; ok && v != "" {
			return v
		}
	}
	return ""
}
