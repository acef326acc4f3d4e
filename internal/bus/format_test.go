package bus

import (
	"testing"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		args     []any
		expected string
	}{
		{"no args unescapes braces", "a {{b}}", nil, "a {b}"},
		{"no args keeps placeholders", "keep {} and {name}", nil, "keep {} and {name}"},
		{"sequential", "{} hit {}", []any{"gun", "hull"}, "gun hit hull"},
		{"indexed", "{1} before {0}", []any{"a", "b"}, "b before a"},
		{"named", "Oh, hi {name}!", []any{Kwargs{"name": "Mark"}}, "Oh, hi Mark!"},
		{"mixed", "{} has {count} rounds", []any{"gun", Kwargs{"count": 32}}, "gun has 32 rounds"},
		{"escaped braces", "{{literal}} {}", []any{1}, "{literal} 1"},
		{"zero padded", "Gun-{:03}", []any{7}, "Gun-007"},
		{"verb", "{:.2f}", []any{3.14159}, "3.14"},
		{"hex", "{:x}", []any{255}, "ff"},
		{"missing positional", "{} and {}", []any{"one"}, "one and {}"},
		{"missing named", "{who}", []any{"x"}, "{who}"},
		{"index out of range", "{5}", []any{"x"}, "{5}"},
		{"unterminated", "open {", []any{"x"}, "open {"},
		{"unsupported spec", "{:>10}", []any{"x"}, "x"},
		{"stringer", "{}", []any{New("ship")}, "Bus(ship)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Format(tt.text, tt.args...); got != tt.expected {
				t.Errorf("Format(%q) = %q, want %q", tt.text, got, tt.expected)
			}
		})
	}
}
