package types

import "fmt"

// TypeID uniquely identifies a type inside the interner.
type TypeID uint32

// NoTypeID marks the absence of a type.
const NoTypeID TypeID = 0

// Kind enumerates all supported kinds of types.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindBool
	KindInt
	KindUint
	KindFloat
	KindRawPointer
	KindClass
	KindStruct
	KindTuple
	KindEnum
	KindFn
	KindAddress
	KindBox
	KindUnowned
	KindMetatype
)

func (k Kind) String() string {
	switch k {
	case KindInvalid:
		return "invalid"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindUint:
		return "uint"
	case KindFloat:
		return "float"
	case KindRawPointer:
		return "rawpointer"
	case KindClass:
		return "class"
	case KindStruct:
		return "struct"
	case KindTuple:
		return "tuple"
	case KindEnum:
		return "enum"
	case KindFn:
		return "fn"
	case KindAddress:
		return "address"
	case KindBox:
		return "box"
	case KindUnowned:
		return "unowned"
	case KindMetatype:
		return "metatype"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// Width captures the precision of integers/floats.
type Width uint8

const (
	WidthAny Width = 0
	Width8   Width = 8
	Width16  Width = 16
	Width32  Width = 32
	Width64  Width = 64
)

// Type is a compact descriptor for any supported type. Nominal and
// aggregate kinds keep their detail in a side table addressed by Payload.
type Type struct {
	Kind    Kind
	Elem    TypeID // for Address/Box/Unowned/Metatype
	Width   Width  // for numeric primitives
	Payload uint32 // side-table slot for Class/Struct/Tuple/Enum/Fn
}

// Descriptor helpers.

// MakeInt describes a signed integer of the given width.
func MakeInt(width Width) Type {
	return Type{Kind: KindInt, Width: width}
}

// MakeUint describes an unsigned integer type.
func MakeUint(width Width) Type {
	return Type{Kind: KindUint, Width: width}
}

// MakeFloat describes a floating-point type.
func MakeFloat(width Width) Type {
	return Type{Kind: KindFloat, Width: width}
}

// MakeAddress describes *T, the address of an element type.
func MakeAddress(elem TypeID) Type {
	return Type{Kind: KindAddress, Elem: elem}
}

// MakeBox describes a heap box holding elem.
func MakeBox(elem TypeID) Type {
	return Type{Kind: KindBox, Elem: elem}
}

// MakeUnowned describes the unowned storage form of elem.
func MakeUnowned(elem TypeID) Type {
	return Type{Kind: KindUnowned, Elem: elem}
}

// MakeMetatype describes the metatype of elem.
func MakeMetatype(elem TypeID) Type {
	return Type{Kind: KindMetatype, Elem: elem}
}
