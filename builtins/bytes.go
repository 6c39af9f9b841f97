package builtins

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/embedpy/pycore/heap"
	"github.com/embedpy/pycore/namepool"
	"github.com/embedpy/pycore/pkg/kind"
	"github.com/embedpy/pycore/vm"
)

// newBytes allocates a bytes cell. Unlike str, indexing and length are
// byte-indexed, not code-point-indexed (spec.md §4.7 distinguishes the
// two deliberately).
func newBytes(v *vm.VM, b []byte) heap.Cell {
	t := v.Types.ByKind(kind.KindBytes)
	obj, _ := v.Heap.Alloc(&t.TypeInfo, 0)
	obj.UserData = b
	heap.Populate(obj)
	return heap.Cell{Kind: kind.KindBytes, Obj: obj}
}

func bytesOf(c heap.Cell) []byte {
	if !c.IsPointer() {
		return nil
	}
	b, _ := c.Obj.UserData.([]byte)
	return b
}

func installBytes(v *vm.VM) {
	t := v.Types.ByKind(kind.KindBytes)

	*t.GetMagic(namepool.MagicRepr) = nativeCell(func(f heap.Frame) (heap.Cell, error) {
		return newStr(v, reprBytes(bytesOf(f.Arg(0)))), nil
	})
	*t.GetMagic(namepool.MagicStr) = nativeCell(func(f heap.Frame) (heap.Cell, error) {
		return newStr(v, reprBytes(bytesOf(f.Arg(0)))), nil
	})
	*t.GetMagic(namepool.MagicLen) = nativeCell(func(f heap.Frame) (heap.Cell, error) {
		return heap.Int(int64(len(bytesOf(f.Arg(0))))), nil
	})
	*t.GetMagic(namepool.MagicBool) = nativeCell(func(f heap.Frame) (heap.Cell, error) {
		return heap.Bool(len(bytesOf(f.Arg(0))) != 0), nil
	})
	*t.GetMagic(namepool.MagicHash) = nativeCell(func(f heap.Frame) (heap.Cell, error) {
		return heap.Int(int64(fnv1a(string(bytesOf(f.Arg(0)))))), nil
	})
	*t.GetMagic(namepool.MagicEq) = nativeCell(func(f heap.Frame) (heap.Cell, error) {
		rhs := f.Arg(1)
		if rhs.Kind != kind.KindBytes {
			return heap.NotImplemented, nil
		}
		return heap.Bool(bytes.Equal(bytesOf(f.Arg(0)), bytesOf(rhs))), nil
	})
	*t.GetMagic(namepool.MagicAdd) = nativeCell(func(f heap.Frame) (heap.Cell, error) {
		rhs := f.Arg(1)
		if rhs.Kind != kind.KindBytes {
			return heap.NotImplemented, nil
		}
		out := append(append([]byte{}, bytesOf(f.Arg(0))...), bytesOf(rhs)...)
		return newBytes(v, out), nil
	})
	*t.GetMagic(namepool.MagicMul) = nativeCell(func(f heap.Frame) (heap.Cell, error) {
		rhs := f.Arg(1)
		if rhs.Kind != kind.KindInt {
			return heap.NotImplemented, nil
		}
		if rhs.I <= 0 {
			return newBytes(v, nil), nil
		}
		return newBytes(v, bytes.Repeat(bytesOf(f.Arg(0)), int(rhs.I))), nil
	})
	*t.GetMagic(namepool.MagicContains) = nativeCell(func(f heap.Frame) (heap.Cell, error) {
		needle := f.Arg(1)
		if needle.Kind != kind.KindBytes {
			return raiseTypeError(v, "a bytes-like object is required, not %q", typeName(v, needle))
		}
		return heap.Bool(bytes.Contains(bytesOf(f.Arg(0)), bytesOf(needle))), nil
	})
	*t.GetMagic(namepool.MagicGetItem) = nativeCell(func(f heap.Frame) (heap.Cell, error) {
		return bytesGetItem(v, f.Arg(0), f.Arg(1))
	})
	*t.GetMagic(namepool.MagicIter) = nativeCell(func(f heap.Frame) (heap.Cell, error) {
		return newSeqIterator(v, f.Arg(0)), nil
	})
	*t.GetMagic(namepool.MagicNew) = nativeCell(func(f heap.Frame) (heap.Cell, error) {
		if f.Argc() < 2 {
			return newBytes(v, nil), nil
		}
		arg := f.Arg(1)
		switch arg.Kind {
		case kind.KindInt:
			if arg.I < 0 {
				return raiseValueError(v, "negative count")
			}
			return newBytes(v, make([]byte, arg.I)), nil
		case kind.KindBytes:
			return newBytes(v, append([]byte{}, bytesOf(arg)...)), nil
		default:
			elems, err := collectIterable(v, arg)
			if err != nil {
				return heap.Cell{}, err
			}
			out := make([]byte, len(elems))
			for i, e := range elems {
				if e.Kind != kind.KindInt || e.I < 0 || e.I > 255 {
					return raiseValueError(v, "bytes must be in range(0, 256)")
				}
				out[i] = byte(e.I)
			}
			return newBytes(v, out), nil
		}
	})
}

func bytesGetItem(v *vm.VM, self, key heap.Cell) (heap.Cell, error) {
	b := bytesOf(self)
	if key.Kind == kind.KindInt {
		i := int(key.I)
		if i < 0 {
			i += len(b)
		}
		if i < 0 || i >= len(b) {
			return raiseIndexError(v, "index out of range")
		}
		return heap.Int(int64(b[i])), nil
	}
	if key.Kind == kind.KindSlice {
		start, stop, step := sliceIndices(key, len(b))
		out := make([]byte, 0, sliceLen(start, stop, step))
		if step > 0 {
			for i := start; i < stop; i += step {
				out = append(out, b[i])
			}
		} else {
			for i := start; i > stop; i += step {
				out = append(out, b[i])
			}
		}
		return newBytes(v, out), nil
	}
	return raiseTypeError(v, "byte indices must be integers or slices")
}

func reprBytes(b []byte) string {
	var sb strings.Builder
	sb.WriteString("b'")
	for _, c := range b {
		switch c {
		case '\'':
			sb.WriteString(`\'`)
		case '\\':
			sb.WriteString(`\\`)
		case '\n':
			sb.WriteString(`\n`)
		case '\t':
			sb.WriteString(`\t`)
		case '\r':
			sb.WriteString(`\r`)
		default:
			if c >= 0x20 && c < 0x7f {
				sb.WriteByte(c)
			} else {
				sb.WriteString(`\x`)
				s := strconv.FormatInt(int64(c), 16)
				if len(s) < 2 {
					s = "0" + s
				}
				sb.WriteString(s)
			}
		}
	}
	sb.WriteByte('\'')
	return sb.String()
}
