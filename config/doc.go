// Package config provides application settings and extension options for the binding providers.
//
// Settings are looked up by name from the process environment, dotenv files or
// plain maps, optionally chained:
//
//	settings := config.Chain{config.Map{"Query": "ResolvedQuery"}, config.Env{}}
//
// Extension options are parsed from environment variables with struct tags:
//
//	opts, err := config.LoadOptions()
//
// # Connection strings
//
// ResolveConnectionString applies the binding precedence: the setting named by the
// binding, then the extension's configured connection string, then the ambient
// default setting (DocumentDBConnectionString unless overridden). When nothing
// resolves the result is a ConfigurationError, which the host reports while
// indexing the function rather than when it runs.
package config
