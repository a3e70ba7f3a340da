package types

// IsTrivial reports whether values of the type carry no ownership: copying
// and discarding them is free. Addresses are trivial as values (the memory
// they point at is managed separately). The walk is cycle-safe: recursion
// through nominal types is cut with a visited set, and a type currently on
// the stack is optimistically treated as trivial (a cycle through only
// trivial kinds stays trivial; any non-trivial leaf poisons the result).
func (in *Interner) IsTrivial(id TypeID) bool {
	return in.isTrivial(id, make(map[TypeID]bool))
}

func (in *Interner) isTrivial(id TypeID, visiting map[TypeID]bool) bool {
	tt, ok := in.Lookup(id)
	if !ok {
		return true
	}
	if visiting[id] {
		return true
	}
	visiting[id] = true
	defer delete(visiting, id)

	switch tt.Kind {
	case KindBool, KindInt, KindUint, KindFloat, KindRawPointer, KindAddress, KindMetatype:
		return true
	case KindClass, KindBox, KindUnowned:
		return false
	case KindFn:
		// Thin functions carry no context. Noescape closures live on the
		// stack and are not managed either.
		info := &in.fns[tt.Payload]
		return !info.Thick || info.NoEscape
	case KindStruct:
		info := &in.structs[tt.Payload]
		for _, f := range info.Fields {
			if !in.isTrivial(f, visiting) {
				return false
			}
		}
		return true
	case KindTuple:
		info := &in.tuples[tt.Payload]
		for _, e := range info.Elems {
			if !in.isTrivial(e, visiting) {
				return false
			}
		}
		return true
	case KindEnum:
		info := &in.enums[tt.Payload]
		for _, c := range info.Cases {
			if c.Payload != NoTypeID && !in.isTrivial(c.Payload, visiting) {
				return false
			}
		}
		return true
	default:
		return true
	}
}
