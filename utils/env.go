package utils

import (
	"errors"
	"fmt"
	"io/fs"
	"log"

	"github.com/joho/godotenv"
)

// envLocations are tried in order; the first file that exists wins.
var envLocations = []string{
	".env",
	".env.local",
	"config/.env",
}

// LoadEnv loads variables from a .env file without overriding variables
// already set in the process environment. A missing file is not an error.
func LoadEnv(filename string) (bool, error) {
	if err := godotenv.Load(filename); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("error loading %s: %w", filename, err)
	}
	log.Printf("[config] loaded environment from %s", filename)
	return true, nil
}

// LoadEnvWithFallback loads the first .env file found in the standard
// locations.
func LoadEnvWithFallback() error {
	return loadFirst(envLocations)
}

func loadFirst(locations []string) error {
	for _, location := range locations {
		loaded, err := LoadEnv(location)
		if err != nil {
			return err
		}
		if loaded {
			return nil
		}
	}

	log.Printf("[config] no .env file found, using process environment only")
	return nil
}
