package config

import (
	"fmt"
	"os"
	"sync"

	"github.com/joho/godotenv"
)

// Settings is a read-only view of named application settings.
type Settings interface {
	Lookup(name string) (string, bool)
}

// Env reads settings from the process environment.
type Env struct{}

// Lookup implements Settings.
func (Env) Lookup(name string) (string, bool) {
	return os.LookupEnv(name)
}

// Map is a fixed set of settings, handy in tests.
type Map map[string]string

// Lookup implements Settings.
func (m Map) Lookup(name string) (string, bool) {
	v, ok := m[name]
	return v, ok
}

// Chain consults each source in order and returns the first hit.
type Chain []Settings

// Lookup implements Settings.
func (c Chain) Lookup(name string) (string, bool) {
	for _, s := range c {
		if s == nil {
			continue
		}
		if v, ok := s.Lookup(name); ok {
			return v, true
		}
	}
	return "", false
}

// File holds the settings read from a dotenv file without touching the process environment.
type File struct {
	values map[string]string
}

// ReadFile parses a dotenv file into a File.
func ReadFile(path string) (*File, error) {
	values, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrReadingEnvFile, path, err)
	}
	return &File{values: values}, nil
}

// Lookup implements Settings.
func (f *File) Lookup(name string) (string, bool) {
	v, ok := f.values[name]
	return v, ok
}

var defaultEnvLoaded sync.Once

// LoadDotEnv loads the given dotenv files (default ".env") into the process environment
// once per process. Missing files are not an error.
func LoadDotEnv(paths ...string) {
	defaultEnvLoaded.Do(func() {
		// Ignore errors - the .env file might not exist and that's ok
		_ = godotenv.Load(paths...)
	})
}
