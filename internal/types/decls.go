package types

import (
	"keel/internal/source"
)

// NominalDecl is a flattened view of one registered nominal type, in
// registration order.
type NominalDecl struct {
	ID   TypeID
	Kind Kind
	Name source.StringID
}

// NominalDecls lists every class, struct, and enum in the order they were
// registered. TypeIDs grow monotonically, so interner order is declaration
// order.
func (in *Interner) NominalDecls() []NominalDecl {
	var out []NominalDecl
	for id := TypeID(1); int(id) < len(in.types); id++ {
		tt := in.types[id]
		switch tt.Kind {
		case KindClass:
			out = append(out, NominalDecl{ID: id, Kind: KindClass, Name: in.classes[tt.Payload].Name})
		case KindStruct:
			out = append(out, NominalDecl{ID: id, Kind: KindStruct, Name: in.structs[tt.Payload].Name})
		case KindEnum:
			out = append(out, NominalDecl{ID: id, Kind: KindEnum, Name: in.enums[tt.Payload].Name})
		}
	}
	return out
}
