/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package datastore

import (
	"fmt"
	"strings"
)

// Address is the canonical resource address of a database, collection or document,
// e.g. "dbs/ItemDb/colls/ItemCollection/docs/docid1".
type Address struct {
	Database   string
	Collection string
	ID         string
}

// DatabaseAddress returns the address of a database.
func DatabaseAddress(database string) Address {
	return Address{Database: database}
}

// CollectionAddress returns the address of a collection.
func CollectionAddress(database, collection string) Address {
	return Address{Database: database, Collection: collection}
}

// DocumentAddress returns the address of a document.
func DocumentAddress(database, collection, id string) Address {
	return Address{Database: database, Collection: collection, ID: id}
}

// CollectionOf drops the document part of a.
func (a Address) CollectionOf() Address {
	return Address{Database: a.Database, Collection: a.Collection}
}

// IsDocument reports whether a names a single document.
func (a Address) IsDocument() bool {
	return a.ID != ""
}

func (a Address) String() string {
	var b strings.Builder
	b.WriteString("dbs/")
	b.WriteString(a.Database)
	if a.Collection != "" {
		b.WriteString("/colls/")
		b.WriteString(a.Collection)
	}
	if a.ID != "" {
		b.WriteString("/docs/")
		b.WriteString(a.ID)
	}
	return b.String()
}

// ParseAddress parses the canonical string form.
func ParseAddress(s string) (Address, error) {
	parts := strings.Split(strings.Trim(s, "/"), "/")
	if len(parts) < 2 || len(parts)%2 != 0 || parts[0] != "dbs" || parts[1] == "" {
		return Address{}, fmt.Errorf("invalid resource address %q", s)
	}
	a := Address{Database: parts[1]}
	if len(parts) >= 4 {
		if parts[2] != "colls" || parts[3] == "" {
			return Address{}, fmt.Errorf("invalid resource address %q", s)
		}
		a.Collection = parts[3]
	}
	if len(parts) == 6 {
		if parts[4] != "docs" || parts[5] == "" {
			return Address{}, fmt.Errorf("invalid resource address %q", s)
		}
		a.ID = parts[5]
	}
	if len(parts) > 6 {
		return Address{}, fmt.Errorf("invalid resource address %q", s)
	}
	return a, nil
}
