package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// APIKeyEnv names the secret used for both embeddings and chat requests.
const APIKeyEnv = "OPENAI_API_KEY"

// DotEnvPath returns the absolute path to minirag's dotenv file (~/.minirag/.env).
func DotEnvPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ".env"), nil
}

// LoadDotEnv reads ~/.minirag/.env and then ./.env, returning the merged
// key/value pairs. Keys in ./.env win. Missing files are skipped.
func LoadDotEnv() (map[string]string, error) {
	home, err := DotEnvPath()
	if err != nil {
		return nil, err
	}

	out := make(map[string]string)
	for _, p := range []string{home, ".env"} {
		if _, err := os.Stat(p); err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("cannot stat dotenv file %s: %w", p, err)
		}
		m, err := godotenv.Read(p)
		if err != nil {
			return nil, fmt.Errorf("cannot read dotenv file %s: %w", p, err)
		}
		for k, v := range m {
			out[k] = v
		}
	}
	return out, nil
}

// GetConfigValue returns the effective value for key, using process environment variables
// first and falling back to the dotenv files.
func GetConfigValue(key string) (string, error) {
	if v := os.Getenv(key); v != "" {
		return v, nil
	}
	dotenv, err := LoadDotEnv()
	if err != nil {
		return "", err
	}
	return dotenv[key], nil
}

// APIKey returns the OpenAI API key or an error naming where to set it.
func APIKey() (string, error) {
	key, err := GetConfigValue(APIKeyEnv)
	if err != nil {
		return "", err
	}
	if key == "" {
		p, _ := DotEnvPath()
		return "", fmt.Errorf("%s is not set (export it or add it to %s)", APIKeyEnv, p)
	}
	return key, nil
}

// EnsureDotEnvTemplate creates ~/.minirag/.env if it does not already exist.
func EnsureDotEnvTemplate() error {
	p, err := DotEnvPath()
	if err != nil {
		return err
	}

	if _, err := os.Stat(p); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("cannot stat dotenv file %s: %w", p, err)
	}

	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("cannot create %s: %w", filepath.Dir(p), err)
	}
	body := "# OpenAI credentials used for embeddings and chat completions.\n" +
		APIKeyEnv + "=\n"
	if err := os.WriteFile(p, []byte(body), 0o600); err != nil {
		return fmt.Errorf("cannot write dotenv template %s: %w", p, err)
	}
	return nil
}
