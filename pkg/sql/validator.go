package sql

import (
	"errors"
	"strings"
)

// ErrMultipleStatements indicates the query contains more than one SQL
// statement. The analytics store only ever receives single read statements.
var ErrMultipleStatements = errors.New("multiple SQL statements not allowed; only single statements are permitted")

// ValidateSingleStatement normalizes generated SQL (trims whitespace, strips a
// trailing semicolon) and rejects anything that still contains a semicolon
// outside string literals. The query builder emits single statements by
// construction; this is the last check before execution.
func ValidateSingleStatement(query string) (string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return "", nil
	}

	normalized := stripTrailingSemicolon(query)
	if hasSemicolonOutsideStrings(normalized) {
		return "", ErrMultipleStatements
	}
	return normalized, nil
}

// hasSemicolonOutsideStrings walks the query tracking single/double quote
// state. Both backslash escapes (\') and SQL standard doubled quotes ('') are
// handled: a doubled quote exits and immediately re-enters the string state,
// which is equivalent to staying inside it.
func hasSemicolonOutsideStrings(query string) bool {
	const (
		stateNormal = iota
		stateSingleQuote
		stateDoubleQuote
	)

	state := stateNormal
	prev := rune(0)

	for _, char := range query {
		switch state {
		case stateNormal:
			switch char {
			case ';':
				return true
			case '\'':
				state = stateSingleQuote
			case '"':
				state = stateDoubleQuote
			}
		case stateSingleQuote:
			if char == '\'' && prev != '\\' {
				state = stateNormal
			}
		case stateDoubleQuote:
			if char == '"' && prev != '\\' {
				state = stateNormal
			}
		}
		prev = char
	}

	return false
}

func stripTrailingSemicolon(query string) string {
	query = strings.TrimRight(query, " \t\n\r")
	if strings.HasSuffix(query, ";") {
		query = strings.TrimRight(strings.TrimSuffix(query, ";"), " \t\n\r")
	}
	return query
}
