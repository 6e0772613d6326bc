// Package license canonicalizes SPDX license expressions written in
// manifests.
package license

import (
	"errors"
	"fmt"
	"strings"

	"github.com/github/go-spdx/v2/spdxexp"
)

// ErrNotSPDX reports an expression that is not a valid SPDX expression.
var ErrNotSPDX = errors.New("not a valid SPDX license expression")

var operators = map[string]string{
	"and":  "AND",
	"or":   "OR",
	"with": "WITH",
}

// Canonicalize rewrites expr into canonical SPDX form: operators upper-cased,
// "/" read as OR, license identifiers in their registered case, and single
// spaces between tokens. The input is not modified on error.
func Canonicalize(expr string) (string, error) {
	tokens := tokenize(strings.ReplaceAll(expr, "/", " or "))
	if len(tokens) == 0 {
		return "", fmt.Errorf("%w: empty expression", ErrNotSPDX)
	}

	afterWith := false
	for i, tok := range tokens {
		switch {
		case tok == "(" || tok == ")":
			continue
		case operators[strings.ToLower(tok)] != "":
			tokens[i] = operators[strings.ToLower(tok)]
			afterWith = tokens[i] == "WITH"
			continue
		case afterWith:
			// Exception identifiers are validated with the whole expression.
			afterWith = false
			continue
		}
		tokens[i] = canonicalID(tok)
	}

	out := join(tokens)
	valid, invalid := spdxexp.ValidateLicenses([]string{out})
	if !valid {
		return "", fmt.Errorf("%w: %q (%s)", ErrNotSPDX, expr, strings.Join(invalid, ", "))
	}
	return out, nil
}

// IsCanonical reports whether expr is already in canonical form.
func IsCanonical(expr string) bool {
	canonical, err := Canonicalize(expr)
	return err == nil && canonical == expr
}

// canonicalID maps one license identifier onto its registered spelling,
// keeping a trailing "+" (or-later). Unknown identifiers are returned as-is.
func canonicalID(tok string) string {
	base, plus := strings.CutSuffix(tok, "+")
	ids, err := spdxexp.ExtractLicenses(base)
	if err != nil || len(ids) != 1 || !strings.EqualFold(ids[0], base) {
		return tok
	}
	if plus {
		return ids[0] + "+"
	}
	return ids[0]
}

func tokenize(expr string) []string {
	var tokens []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			tokens = append(tokens, cur.String())
			cur.Reset()
		}
	}
	for _, r := range expr {
		switch {
		case r == '(' || r == ')':
			flush()
			tokens = append(tokens, string(r))
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			flush()
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return tokens
}

func join(tokens []string) string {
	var b strings.Builder
	for i, tok := range tokens {
		if i > 0 && tok != ")" && tokens[i-1] != "(" {
			b.WriteByte(' ')
		}
		b.WriteString(tok)
	}
	return b.String()
}
