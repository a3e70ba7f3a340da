package verify

import (
	"fmt"
	"strings"

	"keel/internal/ossa"
)

// builtinClass is the secondary dispatch over builtin identifiers.
type builtinClass uint8

const (
	// builtinAllLive: no ownership contract on any operand.
	builtinAllLive builtinClass = iota
	// builtinConsume: the one builtin that ends a lifetime.
	builtinConsume
	// builtinLowered: must have been rewritten to a first-class
	// instruction before verification; reaching one here is a bug in an
	// earlier pass.
	builtinLowered
)

// unsafeGuaranteedEnd closes an unsafe-guaranteed scope and consumes the
// token. It is the single consuming builtin.
const unsafeGuaranteedEnd = "unsafe_guaranteed_end"

var builtinRegistry = map[string]builtinClass{
	// Integer arithmetic and bit manipulation.
	"add": builtinAllLive, "sub": builtinAllLive, "mul": builtinAllLive,
	"sdiv": builtinAllLive, "udiv": builtinAllLive,
	"srem": builtinAllLive, "urem": builtinAllLive,
	"and": builtinAllLive, "or": builtinAllLive, "xor": builtinAllLive,
	"shl": builtinAllLive, "lshr": builtinAllLive, "ashr": builtinAllLive,

	// Floating point.
	"fadd": builtinAllLive, "fsub": builtinAllLive,
	"fmul": builtinAllLive, "fdiv": builtinAllLive, "frem": builtinAllLive,

	// Comparisons.
	"icmp_eq": builtinAllLive, "icmp_ne": builtinAllLive,
	"icmp_slt": builtinAllLive, "icmp_sle": builtinAllLive,
	"icmp_sgt": builtinAllLive, "icmp_sge": builtinAllLive,
	"icmp_ult": builtinAllLive, "icmp_ule": builtinAllLive,
	"icmp_ugt": builtinAllLive, "icmp_uge": builtinAllLive,
	"fcmp_oeq": builtinAllLive, "fcmp_one": builtinAllLive,
	"fcmp_olt": builtinAllLive, "fcmp_ole": builtinAllLive,
	"fcmp_ogt": builtinAllLive, "fcmp_oge": builtinAllLive,

	// Conversions and reinterpretation.
	"trunc": builtinAllLive, "zext": builtinAllLive, "sext": builtinAllLive,
	"fptosi": builtinAllLive, "fptoui": builtinAllLive,
	"sitofp": builtinAllLive, "uitofp": builtinAllLive,
	"bitcast": builtinAllLive, "ptrtoint": builtinAllLive, "inttoptr": builtinAllLive,

	// Atomics and fences.
	"atomicload": builtinAllLive, "atomicstore": builtinAllLive,
	"atomicrmw": builtinAllLive, "cmpxchg": builtinAllLive,
	"fence": builtinAllLive,

	// Trap and assumption intrinsics.
	"trap": builtinAllLive, "condfail": builtinAllLive,
	"assume": builtinAllLive, "expect": builtinAllLive,
	"assert_configuration": builtinAllLive,

	// Bulk array intrinsics operating on addresses.
	"copy_array":                   builtinAllLive,
	"take_array_front_to_back":     builtinAllLive,
	"take_array_back_to_front":     builtinAllLive,
	"assign_copy_array_no_alias":   builtinAllLive,
	"assign_take_array":            builtinAllLive,
	"destroy_array":                builtinAllLive,
	"is_pod":                       builtinAllLive,

	unsafeGuaranteedEnd: builtinConsume,

	// Ownership-bearing builtins an earlier pass must have lowered to
	// first-class instructions.
	"retain": builtinLowered, "release": builtinLowered,
	"copy": builtinLowered, "destroy": builtinLowered,
	"load": builtinLowered, "store": builtinLowered,
	"move": builtinLowered,
}

// classifyBuiltin is the secondary dispatch keyed by the builtin
// identifier. Raw LLVM intrinsics pass through under the "llvm." prefix.
func classifyBuiltin(mod *ossa.Module, inst *ossa.Inst) Classification {
	name, ok := mod.Strings.Lookup(inst.Sym)
	if !ok || name == "" {
		return fatal(fmt.Errorf("builtin without an identifier"))
	}
	if strings.HasPrefix(name, "llvm.") {
		return legal(ossa.AllLive())
	}
	switch cls, known := builtinRegistry[name]; {
	case !known:
		return fatal(fmt.Errorf("unknown builtin %q", name))
	case cls == builtinLowered:
		return fatal(fmt.Errorf("builtin %q must be lowered before ownership verification", name))
	case cls == builtinConsume:
		return legal(ossa.CompatibilityMap(ossa.OwnershipOwned, ossa.MustBeInvalidated))
	default:
		return legal(ossa.AllLive())
	}
}
