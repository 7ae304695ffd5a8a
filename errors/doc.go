/*
Package errors provides semantic error types for the entitybind binding providers.

Every failure a binding can produce belongs to one of a few categories, each with a
sentinel that can be checked with the standard errors.Is() function or with the
provided helpers:

	var (
	    ErrNotFound          = errors.New("document not found")
	    ErrInvalidInput      = errors.New("invalid input")
	    ErrConfiguration     = errors.New("configuration error")
	    ErrBindingResolution = errors.New("binding resolution failed")
	    ErrTransport         = errors.New("transport error")
	    ErrIndexing          = errors.New("function indexing failed")
	)

Indexing-time failures (ValidationError, ConfigurationError) are wrapped in an
IndexingError by the host; the inner cause keeps the exact rule text:

	err := host.Register(fn)
	if errors.IsIndexing(err) && errors.IsValidationError(err) {
	    // err's inner message is e.g.
	    // "'Id' cannot be specified when binding to an IEnumerable property."
	}

Invocation-time failures (DocumentNotFoundError, BindingResolutionError,
TransportError) fail only the invocation that produced them.
*/
package errors
