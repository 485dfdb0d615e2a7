package rules

import (
	"strings"

	apperrors "towquote/internal/errors"
)

// Parse builds a condition from an infix trigger expression such as
// "winch & (dollies | gojak)". "|" binds looser than "&"; a bare code is a SINGLE node.
func Parse(expr string) (Condition, error) {
	return parse(expr, 0)
}

func parse(expr string, depth int) (Condition, error) {
	if depth >= MaxDepth {
		return Condition{}, apperrors.Structural("expression nested deeper than %d levels", MaxDepth)
	}
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return Condition{}, apperrors.Structural("empty trigger expression")
	}
	if err := checkBalanced(expr); err != nil {
		return Condition{}, err
	}
	if wrapped(expr) {
		return parse(expr[1:len(expr)-1], depth+1)
	}

	for _, op := range []struct {
		sep  byte
		kind Kind
	}{{'|', KindOr}, {'&', KindAnd}} {
		parts, err := splitTopLevel(expr, op.sep)
		if err != nil {
			return Condition{}, err
		}
		if len(parts) == 1 {
			continue
		}
		children := make([]Condition, 0, len(parts))
		for _, p := range parts {
			child, err := parse(p, depth+1)
			if err != nil {
				return Condition{}, err
			}
			children = append(children, child)
		}
		return Condition{Kind: op.kind, Children: children}, nil
	}

	if strings.ContainsAny(expr, "()&| \t") {
		return Condition{}, apperrors.Structural("malformed trigger %q", expr)
	}
	return Single(expr), nil
}

// wrapped reports whether the outer parentheses enclose the whole expression.
func wrapped(expr string) bool {
	if len(expr) < 2 || expr[0] != '(' || expr[len(expr)-1] != ')' {
		return false
	}
	depth := 0
	for i := 0; i < len(expr)-1; i++ {
		switch expr[i] {
		case '(':
			depth++
		case ')':
			depth--
		}
		if depth == 0 {
			return false
		}
	}
	return true
}

func splitTopLevel(expr string, sep byte) ([]string, error) {
	var parts []string
	depth, start := 0, 0
	for i := 0; i < len(expr); i++ {
		switch expr[i] {
		case '(':
			depth++
		case ')':
			depth--
		case sep:
			if depth == 0 {
				parts = append(parts, expr[start:i])
				start = i + 1
			}
		}
	}
	parts = append(parts, expr[start:])
	if len(parts) > 1 {
		for _, p := range parts {
			if strings.TrimSpace(p) == "" {
				return nil, apperrors.Structural("missing operand around %q in %q", string(sep), expr)
			}
		}
	}
	return parts, nil
}

func checkBalanced(expr string) error {
	depth := 0
	for _, ch := range expr {
		switch ch {
		case '(':
			depth++
		case ')':
			depth--
			if depth < 0 {
				return apperrors.Structural("unbalanced parentheses in %q", expr)
			}
		}
	}
	if depth != 0 {
		return apperrors.Structural("unbalanced parentheses in %q", expr)
	}
	return nil
}
