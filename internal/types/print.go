package types

import (
	"fmt"
	"strings"

	"keel/internal/source"
)

// Format renders a type in the textual IR syntax. Nominal types render by
// name (resolved through strings), the rest structurally.
func (in *Interner) Format(id TypeID, strings_ *source.Interner) string {
	var b strings.Builder
	in.formatInto(&b, id, strings_)
	return b.String()
}

func (in *Interner) formatInto(b *strings.Builder, id TypeID, strs *source.Interner) {
	tt, ok := in.Lookup(id)
	if !ok {
		b.WriteString("<invalid>")
		return
	}
	switch tt.Kind {
	case KindBool:
		b.WriteString("Bool")
	case KindInt:
		fmt.Fprintf(b, "Int%d", tt.Width)
	case KindUint:
		fmt.Fprintf(b, "Uint%d", tt.Width)
	case KindFloat:
		fmt.Fprintf(b, "Float%d", tt.Width)
	case KindRawPointer:
		b.WriteString("RawPointer")
	case KindClass:
		b.WriteString(in.nominalName(in.classes[tt.Payload].Name, strs))
	case KindStruct:
		b.WriteString(in.nominalName(in.structs[tt.Payload].Name, strs))
	case KindEnum:
		b.WriteString(in.nominalName(in.enums[tt.Payload].Name, strs))
	case KindTuple:
		b.WriteByte('(')
		for i, e := range in.tuples[tt.Payload].Elems {
			if i > 0 {
				b.WriteString(", ")
			}
			in.formatInto(b, e, strs)
		}
		b.WriteByte(')')
	case KindAddress:
		b.WriteByte('*')
		in.formatInto(b, tt.Elem, strs)
	case KindBox:
		b.WriteString("box ")
		in.formatInto(b, tt.Elem, strs)
	case KindUnowned:
		b.WriteString("unowned ")
		in.formatInto(b, tt.Elem, strs)
	case KindMetatype:
		b.WriteString("metatype ")
		in.formatInto(b, tt.Elem, strs)
	case KindFn:
		in.formatFn(b, &in.fns[tt.Payload], strs)
	default:
		b.WriteString("<invalid>")
	}
}

func (in *Interner) formatFn(b *strings.Builder, fi *FnInfo, strs *source.Interner) {
	b.WriteByte('$')
	var attrs []string
	if fi.NoEscape {
		attrs = append(attrs, "noescape")
	}
	if !fi.Thick {
		attrs = append(attrs, "thin")
	}
	if fi.CalleeConv == ConvDirectOwned {
		attrs = append(attrs, "callee_owned")
	}
	for _, a := range attrs {
		fmt.Fprintf(b, "[%s]", a)
	}
	b.WriteByte('(')
	for i, p := range fi.Params {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(p.Conv.String())
		b.WriteByte(' ')
		in.formatInto(b, p.Type, strs)
	}
	b.WriteByte(')')
	if len(fi.Yields) > 0 {
		b.WriteString(" yields (")
		for i, y := range fi.Yields {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(y.Conv.String())
			b.WriteByte(' ')
			in.formatInto(b, y.Type, strs)
		}
		b.WriteByte(')')
	}
	b.WriteString(" -> ")
	if fi.Throws {
		b.WriteString("throws ")
		if fi.ErrorType != NoTypeID {
			in.formatInto(b, fi.ErrorType, strs)
			b.WriteByte(' ')
		}
	}
	switch len(fi.Results) {
	case 0:
		b.WriteString("()")
	case 1:
		b.WriteString(fi.Results[0].Conv.String())
		b.WriteByte(' ')
		in.formatInto(b, fi.Results[0].Type, strs)
	default:
		b.WriteByte('(')
		for i, r := range fi.Results {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(r.Conv.String())
			b.WriteByte(' ')
			in.formatInto(b, r.Type, strs)
		}
		b.WriteByte(')')
	}
}

func (in *Interner) nominalName(name source.StringID, strs *source.Interner) string {
	if strs == nil {
		return fmt.Sprintf("<nominal %d>", name)
	}
	if s, ok := strs.Lookup(name); ok && s != "" {
		return s
	}
	return fmt.Sprintf("<nominal %d>", name)
}
