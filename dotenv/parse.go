package dotenv

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/joho/godotenv"
)

// Syntax selects how .env text is read.
type Syntax string

const (
	// SyntaxStrict accepts KEY=VALUE and bare KEY lines, blank lines and
	// '#' comment lines, and rejects anything else.
	SyntaxStrict Syntax = "strict"
	// SyntaxCompat hands the text to godotenv, which understands quoting,
	// "export" prefixes, inline comments and ${VAR} expansion. Bare KEY
	// lines are still placeholders.
	SyntaxCompat Syntax = "compat"
)

// ParseSyntax converts a configuration string into a Syntax. The empty
// string selects SyntaxStrict.
func ParseSyntax(s string) (Syntax, error) {
	switch Syntax(strings.ToLower(strings.TrimSpace(s))) {
	case "", SyntaxStrict:
		return SyntaxStrict, nil
	case SyntaxCompat:
		return SyntaxCompat, nil
	}
	return "", fmt.Errorf("unknown dotenv syntax %q (want %q or %q)", s, SyntaxStrict, SyntaxCompat)
}

// Parse reads text with SyntaxStrict.
//
//	KEY=value   Some("value")
//	KEY=        placeholder
//	KEY         placeholder
//
// Keys and values are trimmed; only the first '=' splits. The first line
// with an empty key or a key containing whitespace aborts parsing with a
// *ParseError, as does a line that is not valid UTF-8. A repeated key
// keeps its first position and its last value.
func Parse(text string) (*Mapping, error) {
	return ParseWithSyntax(text, SyntaxStrict)
}

// ParseWithSyntax reads text with the given syntax.
// Text that is not valid UTF-8 is rejected under either syntax.
func ParseWithSyntax(text string, syntax Syntax) (*Mapping, error) {
	switch syntax {
	case "", SyntaxStrict:
		if err := checkUTF8(text); err != nil {
			return nil, err
		}
		return parseStrict(strings.NewReader(text))
	case SyntaxCompat:
		if err := checkUTF8(text); err != nil {
			return nil, err
		}
		return parseCompat(strings.NewReader(declareBareKeys(text)))
	}
	return nil, fmt.Errorf("unknown dotenv syntax %q", syntax)
}

func parseStrict(r io.Reader) (*Mapping, error) {
	m := NewMapping()

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		raw := strings.TrimSuffix(scanner.Text(), "\r")
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		k, v, _ := strings.Cut(line, "=")
		key := strings.TrimSpace(k)
		if key == "" {
			return nil, &ParseError{Line: lineNum, Text: raw, Reason: "empty key"}
		}
		if strings.ContainsAny(key, " \t\v\f") {
			return nil, &ParseError{Line: lineNum, Text: raw, Reason: "key contains whitespace"}
		}

		value := Placeholder()
		if v = strings.TrimSpace(v); v != "" {
			value = Some(v)
		}
		m.put(Entry{Key: key, Value: value, Line: lineNum})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read dotenv text: %w", err)
	}
	return m, nil
}

// checkUTF8 reports the first line holding invalid UTF-8.
func checkUTF8(text string) error {
	if utf8.ValidString(text) {
		return nil
	}
	for i, line := range strings.Split(text, "\n") {
		if !utf8.ValidString(line) {
			return &ParseError{Line: i + 1, Text: strings.TrimSuffix(line, "\r"), Reason: "invalid UTF-8"}
		}
	}
	return nil
}

var bareKeyLine = regexp.MustCompile(`^\s*(export\s+)?[\p{L}\p{N}_.]+\s*$`)

// declareBareKeys rewrites bare KEY lines as KEY= so godotenv reads them as
// empty values, which become placeholders. Lines inside a multi-line quoted
// value are left alone.
func declareBareKeys(text string) string {
	lines := strings.Split(text, "\n")
	var open byte
	for i, line := range lines {
		if open == 0 {
			if bareKeyLine.MatchString(strings.TrimSuffix(line, "\r")) {
				lines[i] = strings.TrimRight(line, " \t\r") + "="
				continue
			}
			open = openQuoteAfterValue(line)
			continue
		}
		if closingQuote(line, open) >= 0 {
			open = 0
		}
	}
	return strings.Join(lines, "\n")
}

// openQuoteAfterValue returns the quote a KEY=VALUE line leaves open, or 0.
func openQuoteAfterValue(line string) byte {
	t := strings.TrimSpace(line)
	if t == "" || t[0] == '#' {
		return 0
	}
	i := strings.IndexAny(t, "=:")
	if i < 0 {
		return 0
	}
	v := strings.TrimLeft(t[i+1:], " \t")
	if v == "" || (v[0] != '"' && v[0] != '\'') {
		return 0
	}
	if closingQuote(v[1:], v[0]) >= 0 {
		return 0
	}
	return v[0]
}

// closingQuote finds q in s not preceded by a backslash.
func closingQuote(s string, q byte) int {
	for i := 0; i < len(s); i++ {
		if s[i] == q && (i == 0 || s[i-1] != '\\') {
			return i
		}
	}
	return -1
}

// parseCompat does not know line numbers, so entries are ordered by key.
func parseCompat(r io.Reader) (*Mapping, error) {
	vars, err := godotenv.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedLine, err)
	}

	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	m := NewMapping()
	for _, k := range keys {
		value := Placeholder()
		if v := vars[k]; v != "" {
			value = Some(v)
		}
		m.put(Entry{Key: k, Value: value})
	}
	return m, nil
}
