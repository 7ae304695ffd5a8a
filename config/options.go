package config

import (
	"errors"

	"github.com/caarlos0/env/v11"
)

// DefaultConnectionSettingName is the ambient setting consulted when a binding names no connection.
const DefaultConnectionSettingName = "DocumentDBConnectionString"

// Options configures the document binding extension.
type Options struct {
	// ConnectionString is used when a binding names no setting of its own.
	ConnectionString string `env:"ENTITYBIND_CONNECTION_STRING"`

	// ConnectionSetting is the ambient default setting name.
	ConnectionSetting string `env:"ENTITYBIND_CONNECTION_SETTING" envDefault:"DocumentDBConnectionString"`

	// QueryBufferSize is the channel buffer used while streaming query pages.
	QueryBufferSize int `env:"ENTITYBIND_QUERY_BUFFER_SIZE" envDefault:"100"`
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		ConnectionSetting: DefaultConnectionSettingName,
		QueryBufferSize:   100,
	}
}

// Load parses environment variables into v based on its `env` field tags.
//
// Example:
//
//	var opts config.Options
//	if err := config.Load(&opts); err != nil {
//		// Handle error
//	}
func Load[T any](v *T) error {
	if v == nil {
		return ErrNilPointer
	}
	if err := env.Parse(v); err != nil {
		return errors.Join(ErrParsingConfig, err)
	}
	return nil
}

// LoadFrom is like Load but reads from values instead of the process environment.
func LoadFrom[T any](v *T, values map[string]string) error {
	if v == nil {
		return ErrNilPointer
	}
	if err := env.ParseWithOptions(v, env.Options{Environment: values}); err != nil {
		return errors.Join(ErrParsingConfig, err)
	}
	return nil
}

// LoadOptions loads the extension options from the environment, after loading .env once.
func LoadOptions() (Options, error) {
	LoadDotEnv()
	var opts Options
	if err := Load(&opts); err != nil {
		return Options{}, err
	}
	return opts, nil
}
