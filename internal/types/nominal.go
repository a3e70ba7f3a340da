package types

import (
	"keel/internal/source"
)

// ClassInfo stores metadata for a class type. Classes are reference types
// and never trivial.
type ClassInfo struct {
	namedInfo
}

// StructInfo stores metadata for a struct type.
type StructInfo struct {
	namedInfo
	Fields []TypeID
}

// TupleInfo stores element types of a tuple.
type TupleInfo struct {
	Elems []TypeID
}

// RegisterClass allocates a nominal class type and returns its TypeID.
func (in *Interner) RegisterClass(name source.StringID, decl source.Span) TypeID {
	in.classes = append(in.classes, ClassInfo{namedInfo{Name: name, Decl: decl}})
	slot := in.appendSlot("class", len(in.classes)-1)
	return in.internRaw(Type{Kind: KindClass, Payload: slot})
}

// RegisterStruct allocates a nominal struct type. Fields may be filled in
// later via SetStructFields to allow recursive references through boxes.
func (in *Interner) RegisterStruct(name source.StringID, decl source.Span) TypeID {
	in.structs = append(in.structs, StructInfo{namedInfo: namedInfo{Name: name, Decl: decl}})
	slot := in.appendSlot("struct", len(in.structs)-1)
	return in.internRaw(Type{Kind: KindStruct, Payload: slot})
}

// SetStructFields stores the resolved field types for a struct.
func (in *Interner) SetStructFields(id TypeID, fields []TypeID) {
	info := in.structInfo(id)
	if info == nil {
		return
	}
	info.Fields = cloneIDs(fields)
}

// StructInfo returns metadata for the provided struct TypeID.
func (in *Interner) StructInfo(id TypeID) (*StructInfo, bool) {
	info := in.structInfo(id)
	if info == nil {
		return nil, false
	}
	return info, true
}

// ClassInfo returns metadata for the provided class TypeID.
func (in *Interner) ClassInfo(id TypeID) (*ClassInfo, bool) {
	tt, ok := in.Lookup(id)
	if !ok || tt.Kind != KindClass || tt.Payload == 0 || int(tt.Payload) >= len(in.classes) {
		return nil, false
	}
	return &in.classes[tt.Payload], true
}

// Tuple interns a tuple of the given element types. Tuples are structural:
// equal element lists produce the same TypeID.
func (in *Interner) Tuple(elems []TypeID) TypeID {
	for id := TypeID(1); int(id) < len(in.types); id++ {
		tt := in.types[id]
		if tt.Kind != KindTuple {
			continue
		}
		if equalIDs(in.tuples[tt.Payload].Elems, elems) {
			return id
		}
	}
	in.tuples = append(in.tuples, TupleInfo{Elems: cloneIDs(elems)})
	slot := in.appendSlot("tuple", len(in.tuples)-1)
	return in.internRaw(Type{Kind: KindTuple, Payload: slot})
}

// TupleInfo returns element types for the provided tuple TypeID.
func (in *Interner) TupleInfo(id TypeID) (*TupleInfo, bool) {
	tt, ok := in.Lookup(id)
	if !ok || tt.Kind != KindTuple || int(tt.Payload) >= len(in.tuples) {
		return nil, false
	}
	return &in.tuples[tt.Payload], true
}

func (in *Interner) structInfo(id TypeID) *StructInfo {
	tt, ok := in.Lookup(id)
	if !ok || tt.Kind != KindStruct || tt.Payload == 0 || int(tt.Payload) >= len(in.structs) {
		return nil
	}
	return &in.structs[tt.Payload]
}

func cloneIDs(ids []TypeID) []TypeID {
	if len(ids) == 0 {
		return nil
	}
	out := make([]TypeID, len(ids))
	copy(out, ids)
	return out
}

func equalIDs(a, b []TypeID) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
