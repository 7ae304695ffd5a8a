/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package mongo

import "errors"

var (
	ErrFailedToConnect = errors.New("failed to connect to mongo")
	ErrNotFilterQuery  = errors.New("mongo queries must be JSON filter documents")
	ErrBadContinuation = errors.New("invalid continuation token")
)
