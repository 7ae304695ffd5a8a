/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package mongo

import (
	"encoding/json"
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/v2/bson"

	entityerrors "github.com/suparena/entitybind/errors"
	"github.com/suparena/entitybind/storagemodels"
)

const idKey = "_id"

var parameterRef = regexp.MustCompile(`^@[A-Za-z_][A-Za-z0-9_]*$`)

// fieldPath converts a document path such as "/customer/region" to "customer.region".
func fieldPath(path string) string {
	return strings.ReplaceAll(strings.Trim(path, "/"), "/", ".")
}

// toFilter parses a relaxed extended JSON filter such as
//
//	{"status": "@status", "total": {"$gt": 10}}
//
// Any string value that is exactly a parameter reference is replaced by the bound value,
// and a top-level "id" key addresses the stored _id.
func toFilter(query storagemodels.QuerySpec) (bson.D, error) {
	text := strings.TrimSpace(query.Text)
	if text == "" {
		return bson.D{}, nil
	}
	if !strings.HasPrefix(text, "{") {
		return nil, fmt.Errorf("%w: %q", ErrNotFilterQuery, query.Text)
	}

	var filter bson.D
	if err := bson.UnmarshalExtJSON([]byte(text), false, &filter); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotFilterQuery, err)
	}

	var unbound []string
	out := substitute(filter, query, &unbound).(bson.D)
	if len(unbound) > 0 {
		return nil, entityerrors.NewValidationError("sqlQuery", fmt.Sprintf("parameter %s is not bound", unbound[0]))
	}
	for i := range out {
		if out[i].Key == storagemodels.IDField {
			out[i].Key = idKey
		}
	}
	return out, nil
}

func substitute(v any, query storagemodels.QuerySpec, unbound *[]string) any {
	switch t := v.(type) {
	case bson.D:
		out := make(bson.D, len(t))
		for i, e := range t {
			out[i] = bson.E{Key: e.Key, Value: substitute(e.Value, query, unbound)}
		}
		return out
	case bson.M:
		out := make(bson.M, len(t))
		for k, e := range t {
			out[k] = substitute(e, query, unbound)
		}
		return out
	case bson.A:
		out := make(bson.A, len(t))
		for i, e := range t {
			out[i] = substitute(e, query, unbound)
		}
		return out
	case string:
		if !parameterRef.MatchString(t) {
			return t
		}
		if value, ok := query.Lookup(t); ok {
			return value
		}
		*unbound = append(*unbound, t)
	}
	return v
}

// parseContinuation decodes a continuation token into a skip offset.
func parseContinuation(token string) (int64, error) {
	if token == "" {
		return 0, nil
	}
	skip, err := strconv.ParseInt(token, 10, 64)
	if err != nil || skip < 0 {
		return 0, fmt.Errorf("%w: %q", ErrBadContinuation, token)
	}
	return skip, nil
}

// toStored converts a document to its stored form: _id first, then the remaining
// properties in key order.
func toStored(doc storagemodels.Document) bson.D {
	stored := bson.D{{Key: idKey, Value: doc.ID()}}
	for _, k := range slices.Sorted(maps.Keys(doc)) {
		if k == storagemodels.IDField {
			continue
		}
		stored = append(stored, bson.E{Key: k, Value: doc[k]})
	}
	return stored
}

// fromStored converts a stored document back, moving _id to id. Values without a JSON
// equivalent keep their relaxed extended JSON form, e.g. {"$date": "..."}.
func fromStored(raw bson.Raw) (storagemodels.Document, error) {
	data, err := bson.MarshalExtJSON(raw, false, false)
	if err != nil {
		return nil, fmt.Errorf("failed to convert stored document: %w", err)
	}
	doc, err := storagemodels.ParseDocument(data)
	if err != nil {
		return nil, err
	}
	if id, ok := doc[idKey]; ok {
		delete(doc, idKey)
		doc.SetID(idString(id))
	}
	return doc, nil
}

func idString(id any) string {
	switch v := id.(type) {
	case string:
		return v
	case map[string]any:
		if oid, ok := v["$oid"].(string); ok {
			return oid
		}
	}
	b, err := json.Marshal(id)
	if err != nil {
		return fmt.Sprint(id)
	}
	return string(b)
}
