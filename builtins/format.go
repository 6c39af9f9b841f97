// Formatting helpers shared by every built-in type's __repr__/__str__
// installation. Grounded on hive/printer's shape: one function per
// target representation (printKeyText/printKeyJSON), dispatching on a
// type tag rather than a single do-everything formatter.
package builtins

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/embedpy/pycore/dispatch"
	"github.com/embedpy/pycore/heap"
	"github.com/embedpy/pycore/namepool"
	"github.com/embedpy/pycore/pkg/kind"
	"github.com/embedpy/pycore/vm"
)

// Repr computes repr(c), preferring the type's own __repr__ magic (set
// by the type's install function below) and falling back to a bare
// Go-level rendering only for cells no built-in or user type claimed.
func Repr(v *vm.VM, c heap.Cell) (string, error) {
	t := v.TypeOf(c)
	if t != nil {
		if magic, ok := t.FindMagic(namepool.MagicRepr); ok {
			result, err := dispatch.Call(v, magic, []heap.Cell{c}, nil)
			if err != nil {
				return "", err
			}
			return cellText(result), nil
		}
	}
	return fallbackRepr(c), nil
}

// Str computes str(c): __str__ if defined, else falls back to repr(c)
// (Python's own default for str()).
func Str(v *vm.VM, c heap.Cell) (string, error) {
	t := v.TypeOf(c)
	if t != nil {
		if magic, ok := t.FindMagic(namepool.MagicStr); ok {
			result, err := dispatch.Call(v, magic, []heap.Cell{c}, nil)
			if err != nil {
				return "", err
			}
			return cellText(result), nil
		}
	}
	return Repr(v, c)
}

// cellText extracts the Go string a __repr__/__str__ magic is expected
// to have returned as a `str` cell's payload.
func cellText(c heap.Cell) string {
	if c.IsPointer() {
		if s, ok := c.Obj.UserData.(string); ok {
			return s
		}
	}
	return fallbackRepr(c)
}

// typeName reports the registered type name of c for use in error
// messages, falling back to the raw Kind tag for any cell whose type
// isn't registered.
func typeName(v *vm.VM, c heap.Cell) string {
	if t := v.TypeOf(c); t != nil {
		return t.Name
	}
	return c.Kind.String()
}

// fallbackRepr renders kinds that have no installed __repr__ (should
// only be reached before Install runs, or for a host-defined kind that
// chose not to define one).
func fallbackRepr(c heap.Cell) string {
	switch c.Kind {
	case kind.KindNil:
		return "<nil>"
	case kind.KindNone:
		return "None"
	case kind.KindNotImplemented:
		return "NotImplemented"
	case kind.KindEllipsis:
		return "Ellipsis"
	case kind.KindBool:
		if c.I != 0 {
			return "True"
		}
		return "False"
	case kind.KindInt:
		return strconv.FormatInt(c.I, 10)
	case kind.KindFloat:
		return formatFloat(c.F)
	default:
		return fmt.Sprintf("<%s object>", c.Kind)
	}
}

// formatFloat matches Python's float repr closely enough for this
// core's purposes: shortest round-tripping decimal, always showing a
// fractional part for finite values so int and float reprs stay
// visually distinct (repr(1.0) == "1.0", not "1").
func formatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") && !strings.Contains(s, "Inf") && !strings.Contains(s, "NaN") {
		s += ".0"
	}
	return s
}

// quoteStr renders s the way Python's repr(str) does: single-quoted
// unless the content itself contains a single quote and no double
// quote, escaping backslash, the chosen quote, and the common control
// characters.
func quoteStr(s string) string {
	quote := byte('\'')
	if strings.ContainsRune(s, '\'') && !strings.ContainsRune(s, '"') {
		quote = '"'
	}
	var b strings.Builder
	b.WriteByte(quote)
	for _, r := range s {
		switch r {
		case rune(quote):
			b.WriteByte('\\')
			b.WriteRune(r)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case '\r':
			b.WriteString(`\r`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte(quote)
	return b.String()
}
