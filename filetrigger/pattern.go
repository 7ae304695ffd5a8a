/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package filetrigger

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

var captureName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Pattern matches file names against a filename pattern such as "{name}.{ext}" or "*.csv".
type Pattern struct {
	text  string
	re    *regexp.Regexp
	names []string
}

// CompilePattern compiles a filename pattern.
func CompilePattern(text string) (*Pattern, error) {
	if text == "" {
		return nil, fmt.Errorf("filename pattern is empty")
	}
	var (
		b     strings.Builder
		names []string
		seen  = map[string]bool{}
	)
	b.WriteString("^")
	for i := 0; i < len(text); {
		switch c := text[i]; c {
		case '{':
			end := strings.IndexByte(text[i:], '}')
			if end < 0 {
				return nil, fmt.Errorf("filename pattern '%s' has an unclosed '{'", text)
			}
			name := text[i+1 : i+end]
			if !captureName.MatchString(name) {
				return nil, fmt.Errorf("filename pattern '%s' has an invalid capture '{%s}'", text, name)
			}
			if seen[name] {
				return nil, fmt.Errorf("filename pattern '%s' captures '%s' twice", text, name)
			}
			seen[name] = true
			names = append(names, name)
			b.WriteString(`(?P<` + name + `>.+?)`)
			i += end + 1
		case '}':
			return nil, fmt.Errorf("filename pattern '%s' has an unmatched '}'", text)
		case '*':
			b.WriteString(`.*?`)
			i++
		case '/', '\\':
			return nil, fmt.Errorf("filename pattern '%s' may not contain path separators", text)
		default:
			r, size := utf8.DecodeRuneInString(text[i:])
			b.WriteString(regexp.QuoteMeta(string(r)))
			i += size
		}
	}
	b.WriteString("$")
	re, err := regexp.Compile(b.String())
	if err != nil {
		return nil, fmt.Errorf("filename pattern '%s': %w", text, err)
	}
	return &Pattern{text: text, re: re, names: names}, nil
}

// Match reports whether name matches and returns the captured values.
func (p *Pattern) Match(name string) (map[string]string, bool) {
	m := p.re.FindStringSubmatch(name)
	if m == nil {
		return nil, false
	}
	captures := make(map[string]string, len(p.names))
	for _, n := range p.names {
		captures[n] = m[p.re.SubexpIndex(n)]
	}
	return captures, true
}

// Names returns the capture names in order of appearance.
func (p *Pattern) Names() []string {
	return p.names
}

func (p *Pattern) String() string {
	return p.text
}
