package bus

import (
	"fmt"
	"maps"
	"strconv"
	"strings"
)

// Kwargs supplies named values to Format. Pass it among the args.
type Kwargs map[string]any

// Format substitutes args into text using brace placeholders:
//
//	{}        the next positional argument
//	{2}       positional argument 2
//	{name}    the value for name from a Kwargs argument
//	{{ }}     literal braces
//
// A placeholder may carry a verb after a colon, such as {:03d} or {:.2f},
// which is applied as the matching fmt verb. Placeholders that cannot be
// resolved are left as written. Doubled braces are unescaped even when no
// args are given.
func Format(text string, args ...any) string {
	var positional []any
	kwargs := Kwargs{}
	for _, arg := range args {
		if kw, ok := arg.(Kwargs); ok {
			maps.Copy(kwargs, kw)
			continue
		}
		positional = append(positional, arg)
	}

	var b strings.Builder
	b.Grow(len(text))
	next := 0

	for i := 0; i < len(text); {
		c := text[i]
		switch {
		case c == '{' && strings.HasPrefix(text[i:], "{{"):
			b.WriteByte('{')
			i += 2
		case c == '}' && strings.HasPrefix(text[i:], "}}"):
			b.WriteByte('}')
			i += 2
		case c == '{':
			end := strings.IndexByte(text[i:], '}')
			if end < 0 {
				b.WriteString(text[i:])
				i = len(text)
				continue
			}
			placeholder := text[i : i+end+1]
			field, spec, _ := strings.Cut(placeholder[1:end], ":")

			var (
				value any
				ok    bool
			)
			switch {
			case field == "":
				if next < len(positional) {
					value, ok = positional[next], true
					next++
				}
			case isIndex(field):
				idx, _ := strconv.Atoi(field)
				if idx < len(positional) {
					value, ok = positional[idx], true
				}
			default:
				value, ok = kwargs[field]
			}

			if ok {
				b.WriteString(render(value, spec))
			} else {
				b.WriteString(placeholder)
			}
			i += end + 1
		default:
			b.WriteByte(c)
			i++
		}
	}

	return b.String()
}

func isIndex(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

// render applies a format spec such as "03d", ".2f" or "x" to value.
func render(value any, spec string) string {
	if spec == "" {
		return fmt.Sprint(value)
	}
	verb := byte('v')
	if last := spec[len(spec)-1]; strings.IndexByte("dsfxXeEgGob", last) >= 0 {
		verb = last
		spec = spec[:len(spec)-1]
	}
	for _, r := range spec {
		if !strings.ContainsRune("-+ 0#.0123456789", r) {
			return fmt.Sprint(value)
		}
	}
	return fmt.Sprintf("%"+spec+string(verb), value)
}
