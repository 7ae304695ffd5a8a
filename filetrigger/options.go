/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package filetrigger

import (
	"time"

	"github.com/suparena/entitybind/config"
)

// Options configures a Listener.
type Options struct {
	// RootPath is the directory trigger paths are relative to.
	RootPath string `env:"ENTITYBIND_FILES_ROOT" envDefault:"."`

	// Debounce is how long a file must stay quiet before its change is dispatched.
	Debounce time.Duration `env:"ENTITYBIND_FILES_DEBOUNCE" envDefault:"500ms"`

	// MaxConcurrency bounds concurrent invocations.
	MaxConcurrency int `env:"ENTITYBIND_FILES_MAX_CONCURRENCY" envDefault:"4"`
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		RootPath:       ".",
		Debounce:       500 * time.Millisecond,
		MaxConcurrency: 4,
	}
}

// LoadOptions reads Options from the environment.
func LoadOptions() (Options, error) {
	config.LoadDotEnv()
	var opts Options
	if err := config.Load(&opts); err != nil {
		return Options{}, err
	}
	return opts, nil
}
