// Package logging builds the zap loggers used by entitybind binaries from
// ENTITYBIND_LOG_LEVEL (debug, info, warn, error) and ENTITYBIND_LOG_FORMAT (json, console).
// Library packages accept a *zap.Logger and default to zap.NewNop().
package logging
