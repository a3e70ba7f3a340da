package types

import (
	"fmt"

	"fortio.org/safecast"

	"keel/internal/source"
)

// Builtins stores TypeIDs for common primitive types.
type Builtins struct {
	Invalid    TypeID
	Bool       TypeID
	Int64      TypeID
	Uint64     TypeID
	Float64    TypeID
	RawPointer TypeID
}

// Interner provides stable TypeIDs by hashing structural descriptors.
// Nominal kinds (class, struct, enum) are registered, not structurally
// deduplicated; two classes with the same name stay distinct types.
type Interner struct {
	types    []Type
	index    map[typeKey]TypeID
	builtins Builtins

	classes []ClassInfo
	structs []StructInfo
	tuples  []TupleInfo
	enums   []EnumInfo
	fns     []FnInfo
}

// NewInterner constructs an interner seeded with built-in primitives.
func NewInterner() *Interner {
	in := &Interner{
		index: make(map[typeKey]TypeID, 64),
	}
	// Reserve slot 0 of every side table as an invalid sentinel.
	in.classes = append(in.classes, ClassInfo{})
	in.structs = append(in.structs, StructInfo{})
	in.tuples = append(in.tuples, TupleInfo{})
	in.enums = append(in.enums, EnumInfo{})
	in.fns = append(in.fns, FnInfo{})

	in.builtins.Invalid = in.internRaw(Type{Kind: KindInvalid})
	in.builtins.Bool = in.Intern(Type{Kind: KindBool})
	in.builtins.Int64 = in.Intern(MakeInt(Width64))
	in.builtins.Uint64 = in.Intern(MakeUint(Width64))
	in.builtins.Float64 = in.Intern(MakeFloat(Width64))
	in.builtins.RawPointer = in.Intern(Type{Kind: KindRawPointer})
	return in
}

// Builtins returns TypeIDs for primitive types.
func (in *Interner) Builtins() Builtins {
	return in.builtins
}

// Intern ensures the provided descriptor has a stable TypeID.
func (in *Interner) Intern(t Type) TypeID {
	if t.Kind == KindInvalid {
		return NoTypeID
	}
	key := typeKey(t)
	if id, ok := in.index[key]; ok {
		return id
	}
	return in.internRaw(t)
}

// internRaw adds the descriptor to the storage without consulting the map.
func (in *Interner) internRaw(t Type) TypeID {
	lenTypes, err := safecast.Conv[uint32](len(in.types))
	if err != nil {
		panic(fmt.Errorf("len(types) overflow: %w", err))
	}
	id := TypeID(lenTypes)
	in.types = append(in.types, t)
	in.index[typeKey(t)] = id
	return id
}

// Lookup returns the descriptor for a TypeID.
func (in *Interner) Lookup(id TypeID) (Type, bool) {
	if id == NoTypeID || int(id) >= len(in.types) {
		return Type{}, false
	}
	return in.types[id], true
}

// MustLookup panics when id is invalid.
func (in *Interner) MustLookup(id TypeID) Type {
	tt, ok := in.Lookup(id)
	if !ok {
		panic("types: invalid TypeID")
	}
	return tt
}

// Address interns *elem.
func (in *Interner) Address(elem TypeID) TypeID {
	return in.Intern(MakeAddress(elem))
}

// IsAddress reports whether id is an address type.
func (in *Interner) IsAddress(id TypeID) bool {
	tt, ok := in.Lookup(id)
	return ok && tt.Kind == KindAddress
}

// IsEnum reports whether id is an enum type.
func (in *Interner) IsEnum(id TypeID) bool {
	tt, ok := in.Lookup(id)
	return ok && tt.Kind == KindEnum
}

func (in *Interner) appendSlot(table string, n int) uint32 {
	slot, err := safecast.Conv[uint32](n)
	if err != nil {
		panic(fmt.Errorf("%s info overflow: %w", table, err))
	}
	return slot
}

type typeKey struct {
	Kind    Kind
	Elem    TypeID
	Width   Width
	Payload uint32
}

// namedInfo is shared by nominal kinds.
type namedInfo struct {
	Name source.StringID
	Decl source.Span
}
