package types

import (
	"keel/internal/source"
)

// EnumCase stores metadata for a single enum case. Payload is NoTypeID for
// cases without one.
type EnumCase struct {
	Name    source.StringID
	Payload TypeID
}

// EnumInfo stores metadata for an enum type.
type EnumInfo struct {
	namedInfo
	Cases []EnumCase
}

// RegisterEnum allocates a nominal enum type slot and returns its TypeID.
// Cases are attached via SetEnumCases once their payload types resolve.
func (in *Interner) RegisterEnum(name source.StringID, decl source.Span) TypeID {
	in.enums = append(in.enums, EnumInfo{namedInfo: namedInfo{Name: name, Decl: decl}})
	slot := in.appendSlot("enum", len(in.enums)-1)
	return in.internRaw(Type{Kind: KindEnum, Payload: slot})
}

// SetEnumCases stores the resolved cases for the enum type.
func (in *Interner) SetEnumCases(id TypeID, cases []EnumCase) {
	info := in.enumInfo(id)
	if info == nil {
		return
	}
	out := make([]EnumCase, len(cases))
	copy(out, cases)
	info.Cases = out
}

// EnumInfo returns metadata for the provided enum TypeID.
func (in *Interner) EnumInfo(id TypeID) (*EnumInfo, bool) {
	info := in.enumInfo(id)
	if info == nil {
		return nil, false
	}
	return info, true
}

// EnumCasePayload returns the payload type of case idx, or NoTypeID when the
// case carries none or idx is out of range.
func (in *Interner) EnumCasePayload(id TypeID, idx uint32) TypeID {
	info := in.enumInfo(id)
	if info == nil || int(idx) >= len(info.Cases) {
		return NoTypeID
	}
	return info.Cases[idx].Payload
}

func (in *Interner) enumInfo(id TypeID) *EnumInfo {
	tt, ok := in.Lookup(id)
	if !ok || tt.Kind != KindEnum || tt.Payload == 0 || int(tt.Payload) >= len(in.enums) {
		return nil
	}
	return &in.enums[tt.Payload]
}
