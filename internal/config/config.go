package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// LoadEnv loads variables from the first existing .env file among candidates (".env"
// when none are given). Variables already set in the environment win. It returns the
// file loaded, or "" when none exists.
func LoadEnv(candidates ...string) (string, error) {
	if len(candidates) == 0 {
		candidates = []string{".env"}
	}
	for _, envFile := range candidates {
		if _, err := os.Stat(envFile); err != nil {
			continue
		}
		if err := godotenv.Load(envFile); err != nil {
			return "", fmt.Errorf("error loading %s: %w", envFile, err)
		}
		return envFile, nil
	}
	return "", nil
}

