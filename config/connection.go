package config

import (
	"github.com/suparena/entitybind/errors"
)

// ResolveConnectionString picks the connection string for one binding:
//
//  1. explicitSetting, when the binding names a setting; it must resolve
//  2. configDefault, the connection string configured for the extension
//  3. the ambient default setting ambientName
//
// Nothing resolving is a ConfigurationError.
func ResolveConnectionString(settings Settings, explicitSetting, configDefault, ambientName string) (string, error) {
	if explicitSetting != "" {
		if v, ok := lookup(settings, explicitSetting); ok {
			return v, nil
		}
		return "", errors.NewConfigurationError(explicitSetting, "missing connection string")
	}

	if configDefault != "" {
		return configDefault, nil
	}

	if ambientName != "" {
		if v, ok := lookup(settings, ambientName); ok {
			return v, nil
		}
	}
	return "", errors.NewConfigurationError(ambientName, "missing connection string")
}

func lookup(settings Settings, name string) (string, bool) {
	if settings == nil {
		return "", false
	}
	v, ok := settings.Lookup(name)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}
