// README: Trigger conditions for addon rules, evaluated against the set of requested services.
package rules

import (
	"bytes"
	"encoding/json"
	"fmt"

	apperrors "towquote/internal/errors"
)

type Kind string

const (
	KindSingle Kind = "SINGLE"
	KindAnd    Kind = "AND"
	KindOr     Kind = "OR"
)

// MaxDepth bounds condition nesting.
const MaxDepth = 32

// Condition is a node of a trigger tree. Single nodes carry Tokens, And/Or nodes carry Children.
type Condition struct {
	Kind     Kind
	Tokens   []string
	Children []Condition
}

func Single(tokens ...string) Condition {
	return Condition{Kind: KindSingle, Tokens: tokens}
}

func And(children ...Condition) Condition {
	return Condition{Kind: KindAnd, Children: children}
}

func Or(children ...Condition) Condition {
	return Condition{Kind: KindOr, Children: children}
}

// Selection is the set of service codes on a request.
type Selection map[string]struct{}

func Select(codes ...string) Selection {
	s := make(Selection, len(codes))
	for _, c := range codes {
		s[c] = struct{}{}
	}
	return s
}

func (s Selection) Has(code string) bool {
	_, ok := s[code]
	return ok
}

// Evaluate reports whether the condition holds for the selection.
func (c Condition) Evaluate(selected Selection) (bool, error) {
	return c.eval(selected, 0)
}

// Validate checks the tree shape without evaluating it.
func (c Condition) Validate() error {
	_, err := c.eval(nil, 0)
	return err
}

func (c Condition) eval(selected Selection, depth int) (bool, error) {
	if depth >= MaxDepth {
		return false, apperrors.Structural("condition nested deeper than %d levels", MaxDepth)
	}
	switch c.Kind {
	case KindSingle:
		if len(c.Tokens) == 0 {
			return false, apperrors.Structural("SINGLE condition has no triggers")
		}
		for _, tok := range c.Tokens {
			if selected.Has(tok) {
				return true, nil
			}
		}
		return false, nil
	case KindAnd, KindOr:
		if len(c.Children) == 0 {
			return false, apperrors.Structural("%s condition has no triggers", c.Kind)
		}
		// no short-circuit: a malformed branch fails even once the result is known
		result := c.Kind == KindAnd
		for _, child := range c.Children {
			ok, err := child.eval(selected, depth+1)
			if err != nil {
				return false, err
			}
			if c.Kind == KindAnd {
				result = result && ok
			} else {
				result = result || ok
			}
		}
		return result, nil
	default:
		return false, apperrors.Structural("unknown condition type %q", c.Kind)
	}
}

type conditionJSON struct {
	Type     Kind              `json:"type"`
	Triggers []json.RawMessage `json:"triggers"`
}

// UnmarshalJSON accepts either a {type, triggers} object or an infix expression string.
func (c *Condition) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var expr string
		if err := json.Unmarshal(data, &expr); err != nil {
			return err
		}
		parsed, err := Parse(expr)
		if err != nil {
			return err
		}
		*c = parsed
		return nil
	}

	var raw conditionJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch raw.Type {
	case KindSingle:
		tokens := make([]string, 0, len(raw.Triggers))
		for _, t := range raw.Triggers {
			var tok string
			if err := json.Unmarshal(t, &tok); err != nil {
				return apperrors.Structural("SINGLE trigger must be a service code, got %s", t)
			}
			tokens = append(tokens, tok)
		}
		*c = Single(tokens...)
	case KindAnd, KindOr:
		children := make([]Condition, 0, len(raw.Triggers))
		for _, t := range raw.Triggers {
			var child Condition
			if err := json.Unmarshal(t, &child); err != nil {
				return err
			}
			children = append(children, child)
		}
		*c = Condition{Kind: raw.Type, Children: children}
	default:
		return apperrors.Structural("unknown condition type %q", raw.Type)
	}
	return nil
}

func (c Condition) MarshalJSON() ([]byte, error) {
	out := struct {
		Type     Kind  `json:"type"`
		Triggers []any `json:"triggers"`
	}{Type: c.Kind, Triggers: []any{}}
	if c.Kind == KindSingle {
		for _, t := range c.Tokens {
			out.Triggers = append(out.Triggers, t)
		}
	} else {
		for _, ch := range c.Children {
			out.Triggers = append(out.Triggers, ch)
		}
	}
	return json.Marshal(out)
}

func (c Condition) String() string {
	switch c.Kind {
	case KindSingle:
		if len(c.Tokens) == 1 {
			return c.Tokens[0]
		}
		return fmt.Sprintf("any%v", c.Tokens)
	case KindAnd, KindOr:
		op := " & "
		if c.Kind == KindOr {
			op = " | "
		}
		var buf bytes.Buffer
		buf.WriteByte('(')
		for i, ch := range c.Children {
			if i > 0 {
				buf.WriteString(op)
			}
			buf.WriteString(ch.String())
		}
		buf.WriteByte(')')
		return buf.String()
	}
	return string(c.Kind)
}
