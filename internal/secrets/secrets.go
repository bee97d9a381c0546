// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads API credentials from a directory of plain-text files.
// Each file in the directory represents one secret: the filename is the key name and the
// file contents (trimmed) are the value.
//
// Supported key files: elsevier-api-key, elsevier-inst-token. When a key file
// is absent the loader falls back to the environment, reading a .env file
// first if one exists.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

// Secret file and environment variable names.
const (
	APIKeyFile    = "elsevier-api-key"
	InstTokenFile = "elsevier-inst-token"

	apiKeyEnv    = "ELSEVIER_API_KEY"
	instTokenEnv = "ELSEVIER_INST_TOKEN"
)

// Credentials holds the two provider secrets. The institutional token is
// optional.
type Credentials struct {
	APIKey    string
	InstToken string
}

// Load reads all files in dir and returns a map of filename to trimmed contents.
// A missing directory or missing files are not errors; Load returns an empty map.
// Unreadable files produce a warning on stderr but do not abort.
func Load(dir string) (map[string]string, error) {
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
			fmt.Fprintf(os.Stderr, "warning: could not read secret %s: %v\n", name, err)
			continue
		}

		value := strings.TrimSpace(string(data))
		if value != "" {
			secrets[name] = value
		}
	}

	return secrets, nil
}

// Resolve returns the provider credentials, preferring the secrets
// directory and falling back to the environment (loading .env if present).
func Resolve(dir string) (Credentials, error) {
	loaded, err := Load(dir)
	if err != nil {
		return Credentials{}, err
	}

	creds := Credentials{
		APIKey:    loaded[APIKeyFile],
		InstToken: loaded[InstTokenFile],
	}

	if creds.APIKey == "" || creds.InstToken == "" {
		// A missing .env file is fine; the variables may already be set.
		godotenv.Load()
		if creds.APIKey == "" {
			creds.APIKey = strings.TrimSpace(os.Getenv(apiKeyEnv))
		}
		if creds.InstToken == "" {
			creds.InstToken = strings.TrimSpace(os.Getenv(instTokenEnv))
		}
	}

	return creds, nil
}
