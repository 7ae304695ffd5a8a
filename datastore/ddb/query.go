/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	entityerrors "github.com/suparena/entitybind/errors"
	"github.com/suparena/entitybind/storagemodels"
)

var (
	fromAlias    = regexp.MustCompile(`(?i)\bFROM\s+([A-Za-z_][A-Za-z0-9_]*)`)
	parameterRef = regexp.MustCompile(`@[A-Za-z_][A-Za-z0-9_]*`)
	quotedRef    = regexp.MustCompile(`^'(@[A-Za-z_][A-Za-z0-9_]*)'$`)
)

// segment is a run of statement text; quoted segments keep their surrounding quotes.
type segment struct {
	text   string
	quoted bool
}

// splitQuoted separates single-quoted string literals from the rest of the statement.
// A doubled quote inside a literal is an escaped quote.
func splitQuoted(text string) []segment {
	var (
		out   []segment
		start int
	)
	for i := 0; i < len(text); i++ {
		if text[i] != '\'' {
			continue
		}
		if i > start {
			out = append(out, segment{text: text[start:i]})
		}
		j := i + 1
		for j < len(text) {
			if text[j] == '\'' {
				if j+1 < len(text) && text[j+1] == '\'' {
					j += 2
					continue
				}
				break
			}
			j++
		}
		end := min(j+1, len(text))
		out = append(out, segment{text: text[i:end], quoted: true})
		start = end
		i = end - 1
	}
	if start < len(text) {
		out = append(out, segment{text: text[start:]})
	}
	return out
}

// toPartiQL turns a document query such as
//
//	SELECT * FROM c WHERE c.status = @status
//
// into a statement on the service table with positional parameters:
//
//	SELECT * FROM "table" WHERE status = ?
//
// String literals are left alone, except a literal holding only a parameter
// reference ('@id'), which becomes a positional parameter.
// Every reference must be bound; parameters are emitted in order of appearance.
func (s *Service) toPartiQL(query storagemodels.QuerySpec) (string, []types.AttributeValue, error) {
	segments := splitQuoted(query.Text)

	var qualified *regexp.Regexp
	for i, seg := range segments {
		if seg.quoted {
			continue
		}
		if m := fromAlias.FindStringSubmatchIndex(seg.text); m != nil {
			alias := seg.text[m[2]:m[3]]
			segments[i].text = seg.text[:m[0]] + "FROM " + strconv.Quote(s.tableName) + seg.text[m[1]:]
			qualified = regexp.MustCompile(`\b` + regexp.QuoteMeta(alias) + `\.`)
			break
		}
	}
	if qualified == nil {
		return "", nil, entityerrors.NewValidationError("sqlQuery", fmt.Sprintf("query %q has no FROM clause", query.Text))
	}

	var (
		params  []types.AttributeValue
		unbound string
		sb      strings.Builder
	)
	bind := func(ref string) (string, bool) {
		v, ok := query.Lookup(ref)
		if !ok {
			return ref, false
		}
		av, err := attributevalue.Marshal(v)
		if err != nil {
			av = &types.AttributeValueMemberS{Value: fmt.Sprint(v)}
		}
		params = append(params, av)
		return "?", true
	}
	for _, seg := range segments {
		if seg.quoted {
			if m := quotedRef.FindStringSubmatch(seg.text); m != nil {
				if repl, ok := bind(m[1]); ok {
					sb.WriteString(repl)
					continue
				}
			}
			sb.WriteString(seg.text)
			continue
		}
		text := qualified.ReplaceAllString(seg.text, "")
		text = parameterRef.ReplaceAllStringFunc(text, func(ref string) string {
			repl, ok := bind(ref)
			if !ok && unbound == "" {
				unbound = ref
			}
			return repl
		})
		sb.WriteString(text)
	}
	if unbound != "" {
		return "", nil, entityerrors.NewValidationError("sqlQuery", fmt.Sprintf("parameter %s is not bound", unbound))
	}
	return sb.String(), params, nil
}
