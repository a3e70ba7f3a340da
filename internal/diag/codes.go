package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// Textual IR parsing (scanner + parser).
	ParInfo               Code = 1000
	ParUnknownChar        Code = 1001
	ParUnterminatedString Code = 1002
	ParBadNumber          Code = 1003
	ParUnexpectedToken    Code = 1004
	ParExpectType         Code = 1005
	ParUnknownType        Code = 1006
	ParUnknownInstruction Code = 1007
	ParUnknownValue       Code = 1008
	ParUnknownBlock       Code = 1009
	ParDuplicateValue     Code = 1010
	ParDuplicateBlock     Code = 1011
	ParDuplicateType      Code = 1012
	ParExpectConvention   Code = 1013
	ParExpectOwnership    Code = 1014
	ParBadAttribute       Code = 1015
	ParUnknownEnumCase    Code = 1016

	// Structural IR validation.
	ValInfo              Code = 2000
	ValUnterminatedBlock Code = 2001
	ValDanglingSuccessor Code = 2002
	ValOperandOutOfRange Code = 2003
	ValArgCountMismatch  Code = 2004
	ValTrivialOwnership  Code = 2005
	ValEntryArgMismatch  Code = 2006

	// Ownership verification.
	VerInfo           Code = 3000
	VerIllegalOperand Code = 3001
	VerNoLegalKind    Code = 3002

	// Driver and tooling.
	IOLoadFile Code = 4001
	ObsTimings Code = 4002
)

// String returns a short stable identifier like "VER3001" for golden files
// and machine output.
func (c Code) String() string {
	return c.ID()
}

// ID renders the family prefix plus the numeric code.
func (c Code) ID() string {
	switch {
	case c >= 3000 && c < 4000:
		return fmt.Sprintf("VER%04d", uint16(c))
	case c >= 2000 && c < 3000:
		return fmt.Sprintf("VAL%04d", uint16(c))
	case c >= 1000 && c < 2000:
		return fmt.Sprintf("PAR%04d", uint16(c))
	default:
		return fmt.Sprintf("KEL%04d", uint16(c))
	}
}
