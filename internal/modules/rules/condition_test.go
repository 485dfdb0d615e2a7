package rules

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"

	apperrors "towquote/internal/errors"
)

func TestEvaluate(t *testing.T) {
	winchAndDollies := And(Single("winch"), Or(Single("dollies"), Single("gojak")))

	tests := []struct {
		name     string
		cond     Condition
		selected Selection
		want     bool
	}{
		{"single hit", Single("winch"), Select("tow", "winch"), true},
		{"single miss", Single("winch"), Select("tow"), false},
		{"single any token", Single("dollies", "gojak"), Select("gojak"), true},
		{"and all present", winchAndDollies, Select("winch", "gojak"), true},
		{"and one missing", winchAndDollies, Select("winch"), false},
		{"or none present", Or(Single("a"), Single("b")), Select("c"), false},
		{"or one present", Or(Single("a"), Single("b")), Select("b"), true},
		{"empty selection", winchAndDollies, Select(), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.cond.Evaluate(tt.selected)
			if err != nil {
				t.Fatalf("Evaluate() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Evaluate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEvaluate_Structural(t *testing.T) {
	deep := Single("x")
	for i := 0; i < MaxDepth+1; i++ {
		deep = And(deep)
	}

	tests := []struct {
		name string
		cond Condition
	}{
		{"unknown type", Condition{Kind: "XOR", Children: []Condition{Single("a")}}},
		{"single without triggers", Single()},
		{"and without children", And()},
		{"malformed branch after decided result", Or(Single("a"), Condition{Kind: "NOT"})},
		{"too deep", deep},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.cond.Evaluate(Select("a"))
			if !errors.Is(err, apperrors.ErrStructural) {
				t.Fatalf("Evaluate() error = %v, want structural", err)
			}
			if !errors.Is(err, apperrors.ErrConfiguration) {
				t.Fatalf("structural error should also be a configuration error")
			}
		})
	}
}

func TestCondition_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Condition
	}{
		{
			name: "object form",
			in:   `{"type":"AND","triggers":[{"type":"SINGLE","triggers":["winch"]},{"type":"OR","triggers":[{"type":"SINGLE","triggers":["dollies"]},{"type":"SINGLE","triggers":["gojak"]}]}]}`,
			want: And(Single("winch"), Or(Single("dollies"), Single("gojak"))),
		},
		{
			name: "expression form",
			in:   `"winch & (dollies | gojak)"`,
			want: And(Single("winch"), Or(Single("dollies"), Single("gojak"))),
		},
		{
			name: "expression nested in object",
			in:   `{"type":"OR","triggers":["a & b", {"type":"SINGLE","triggers":["c"]}]}`,
			want: Or(And(Single("a"), Single("b")), Single("c")),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got Condition
			if err := json.Unmarshal([]byte(tt.in), &got); err != nil {
				t.Fatalf("Unmarshal() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCondition_UnmarshalJSON_UnknownType(t *testing.T) {
	var c Condition
	err := json.Unmarshal([]byte(`{"type":"NAND","triggers":["a"]}`), &c)
	if !errors.Is(err, apperrors.ErrStructural) {
		t.Fatalf("error = %v, want structural", err)
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		expr string
		want Condition
	}{
		{"winch", Single("winch")},
		{"  (winch) ", Single("winch")},
		{"a | b & c", Or(Single("a"), And(Single("b"), Single("c")))},
		{"(a | b) & c", And(Or(Single("a"), Single("b")), Single("c"))},
		{"((a | b))", Or(Single("a"), Single("b"))},
		{"(a) & (b)", And(Single("a"), Single("b"))},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got, err := Parse(tt.expr)
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Parse() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParse_Malformed(t *testing.T) {
	for _, expr := range []string{"", "a &", "| b", "(a | b", "a) & (b", "a b", "a & () "} {
		t.Run(expr, func(t *testing.T) {
			if _, err := Parse(expr); !errors.Is(err, apperrors.ErrStructural) {
				t.Fatalf("Parse(%q) error = %v, want structural", expr, err)
			}
		})
	}
}
