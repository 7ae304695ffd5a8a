/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package binding

import (
	"fmt"

	"github.com/suparena/entitybind/errors"
)

// Classification is the operation a parameter binding performs.
type Classification int

const (
	SingleRead Classification = iota
	SingleWriteOut
	EnumerableQuery
	RawClient
)

func (c Classification) String() string {
	switch c {
	case SingleRead:
		return "SingleRead"
	case SingleWriteOut:
		return "SingleWriteOut"
	case EnumerableQuery:
		return "EnumerableQuery"
	case RawClient:
		return "RawClient"
	}
	return fmt.Sprintf("Classification(%d)", int(c))
}

// Validation messages. Callers match on the exact text.
const (
	MsgIDOnEnumerable         = "'Id' cannot be specified when binding to an IEnumerable property."
	MsgIDRequiredForRecord    = "'Id' is required when binding to a JObject property."
	MsgQueryRequired          = "'SqlQuery' is required when binding to an IEnumerable property."
	MsgIDAndQuery             = "'Id' and 'SqlQuery' cannot both be specified when binding to a single item."
	MsgQueryOnSingle          = "'SqlQuery' cannot be specified when binding to a single item."
	MsgIDRequired             = "'Id' is required when binding to a single item."
	MsgDatabaseNameRequired   = "'DatabaseName' is required."
	MsgCollectionNameRequired = "'CollectionName' is required."
)

// Classify validates attr against the parameter shape and direction and returns the
// operation the binding performs.
func Classify(attr Attribute, shape Shape, dir Direction) (Classification, error) {
	switch shape.Kind {
	case ShapeRawClient:
		if dir == Out {
			return 0, errors.NewValidationError("Type", fmt.Sprintf("'%s' can only be bound as an input.", shape.Type))
		}
		return RawClient, nil
	case ShapeCollector, ShapeAsyncCollector:
		if dir == In {
			return 0, errors.NewValidationError("Type", fmt.Sprintf("'%s' can only be bound as an output.", shape.Type))
		}
	}

	if attr.DatabaseName == "" {
		return 0, errors.NewValidationError("DatabaseName", MsgDatabaseNameRequired)
	}
	if attr.CollectionName == "" {
		return 0, errors.NewValidationError("CollectionName", MsgCollectionNameRequired)
	}

	if dir == Out {
		return SingleWriteOut, nil
	}

	hasID, hasQuery := attr.ID != "", attr.SQLQuery != ""
	if shape.Kind == ShapeEnumerable {
		if hasID {
			return 0, errors.NewValidationError("Id", MsgIDOnEnumerable)
		}
		if !hasQuery {
			return 0, errors.NewValidationError("SqlQuery", MsgQueryRequired)
		}
		return EnumerableQuery, nil
	}

	switch {
	case hasID && hasQuery:
		return 0, errors.NewValidationError("SqlQuery", MsgIDAndQuery)
	case hasQuery:
		return 0, errors.NewValidationError("SqlQuery", MsgQueryOnSingle)
	case !hasID && shape.Kind == ShapeRecord:
		return 0, errors.NewValidationError("Id", MsgIDRequiredForRecord)
	case !hasID:
		return 0, errors.NewValidationError("Id", MsgIDRequired)
	}
	return SingleRead, nil
}
