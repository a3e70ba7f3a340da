package ossa

import (
	"fmt"
	"io"
	"strings"

	"keel/internal/types"
)

// Printer renders a module in the textual IR format. The output is
// canonical: printing a parsed module and reparsing it is a fixed point.
type Printer struct {
	mod *Module
	w   io.Writer

	// per-function renumbering: arena ValueID -> printed %N
	number map[ValueID]int
	next   int
}

// NewPrinter creates a printer for mod writing to w.
func NewPrinter(mod *Module, w io.Writer) *Printer {
	return &Printer{mod: mod, w: w}
}

// PrintModule renders type declarations followed by every function.
func (p *Printer) PrintModule() {
	p.printTypeDecls()
	for i, fn := range p.mod.Funcs {
		if i > 0 {
			fmt.Fprintln(p.w)
		}
		p.PrintFunc(fn)
	}
}

// PrintFunc renders a single function.
func (p *Printer) PrintFunc(fn *Func) {
	p.number = make(map[ValueID]int, len(fn.Values))
	p.next = 0

	name := p.mod.Strings.MustLookup(fn.Name)
	fmt.Fprintf(p.w, "fn @%s : %s {\n", name, p.mod.Types.Format(fn.Type, p.mod.Strings))

	// Number values in print order: block by block, args then results.
	for bi := range fn.Blocks {
		block := &fn.Blocks[bi]
		for _, arg := range block.Args {
			p.assign(arg)
		}
		for _, instID := range block.Instrs {
			for _, r := range fn.Insts[instID].Results {
				p.assign(r)
			}
		}
	}

	for bi := range fn.Blocks {
		block := &fn.Blocks[bi]
		p.printBlockHeader(fn, block)
		for _, instID := range block.Instrs {
			fmt.Fprintf(p.w, "  %s\n", p.formatInst(fn, &fn.Insts[instID]))
		}
	}
	fmt.Fprintln(p.w, "}")
}

func (p *Printer) printTypeDecls() {
	// Fresh modules have every nominal declared before use, so walking the
	// interner order reproduces the declaration order.
	ts := p.mod.Types
	printed := false
	for _, decl := range ts.NominalDecls() {
		printed = true
		switch decl.Kind {
		case types.KindClass:
			fmt.Fprintf(p.w, "class %s\n", p.mod.Strings.MustLookup(decl.Name))
		case types.KindStruct:
			info, _ := ts.StructInfo(decl.ID)
			fmt.Fprintf(p.w, "struct %s {", p.mod.Strings.MustLookup(decl.Name))
			for i, f := range info.Fields {
				if i > 0 {
					fmt.Fprint(p.w, ",")
				}
				fmt.Fprintf(p.w, " %s", ts.Format(f, p.mod.Strings))
			}
			fmt.Fprintln(p.w, " }")
		case types.KindEnum:
			info, _ := ts.EnumInfo(decl.ID)
			fmt.Fprintf(p.w, "enum %s {", p.mod.Strings.MustLookup(decl.Name))
			for i, c := range info.Cases {
				if i > 0 {
					fmt.Fprint(p.w, ",")
				}
				fmt.Fprintf(p.w, " %s", p.mod.Strings.MustLookup(c.Name))
				if c.Payload != types.NoTypeID {
					fmt.Fprintf(p.w, "(%s)", ts.Format(c.Payload, p.mod.Strings))
				}
			}
			fmt.Fprintln(p.w, " }")
		}
	}
	if printed {
		fmt.Fprintln(p.w)
	}
}

func (p *Printer) printBlockHeader(fn *Func, block *Block) {
	fmt.Fprintf(p.w, "bb%d", block.ID)
	if len(block.Args) > 0 {
		fmt.Fprint(p.w, "(")
		for i, arg := range block.Args {
			if i > 0 {
				fmt.Fprint(p.w, ", ")
			}
			v := fn.Value(arg)
			fmt.Fprintf(p.w, "%s: %s %s", p.ref(arg), v.Ownership, p.mod.Types.Format(v.Type, p.mod.Strings))
		}
		fmt.Fprint(p.w, ")")
	}
	fmt.Fprintln(p.w, ":")
}

func (p *Printer) assign(v ValueID) {
	if _, ok := p.number[v]; !ok {
		p.number[v] = p.next
		p.next++
	}
}

func (p *Printer) ref(v ValueID) string {
	return fmt.Sprintf("%%%d", p.number[v])
}

func (p *Printer) formatInst(fn *Func, inst *Inst) string {
	var b strings.Builder

	switch len(inst.Results) {
	case 0:
	case 1:
		fmt.Fprintf(&b, "%s = ", p.ref(inst.Results[0]))
	default:
		b.WriteByte('(')
		for i, r := range inst.Results {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(p.ref(r))
		}
		b.WriteString(") = ")
	}

	b.WriteString(inst.Op.String())

	switch inst.Op {
	case OpIntLiteral, OpFloatLiteral:
		fmt.Fprintf(&b, " %s", p.mod.Strings.MustLookup(inst.Lit))
	case OpStringLiteral:
		fmt.Fprintf(&b, " %q", p.mod.Strings.MustLookup(inst.Lit))
	case OpFunctionRef, OpGlobalAddr:
		fmt.Fprintf(&b, " @%s", p.mod.Strings.MustLookup(inst.Sym))
	case OpBuiltin:
		fmt.Fprintf(&b, " %q", p.mod.Strings.MustLookup(inst.Sym))
		p.formatCallOperands(&b, inst.Operands)
	case OpApply, OpBeginApply:
		fmt.Fprintf(&b, " %s", p.ref(inst.Operands[0].Value))
		p.formatCallOperands(&b, inst.Operands[1:])
	case OpTryApply:
		fmt.Fprintf(&b, " %s", p.ref(inst.Operands[0].Value))
		p.formatCallOperands(&b, inst.Operands[1:])
		fmt.Fprintf(&b, ", normal bb%d, error bb%d", inst.Succs[0], inst.Succs[1])
	case OpPartialApply:
		if inst.OnStack {
			b.WriteString(" [stack]")
		}
		fmt.Fprintf(&b, " %s", p.ref(inst.Operands[0].Value))
		p.formatCallOperands(&b, inst.Operands[1:])
	case OpStructExtract, OpTupleExtract, OpStructElementAddr, OpTupleElementAddr,
		OpUncheckedEnumData, OpRefElementAddr:
		fmt.Fprintf(&b, " %s, %d", p.ref(inst.Operands[0].Value), inst.Field)
	case OpEnum:
		fmt.Fprintf(&b, " %s, %d", p.mod.Types.Format(inst.Type, p.mod.Strings), inst.Field)
		if len(inst.Operands) > 0 {
			fmt.Fprintf(&b, ", %s", p.ref(inst.Operands[0].Value))
		}
	case OpUpcast, OpRefCast, OpAddrCast, OpBitwiseCast, OpConvertFunction:
		fmt.Fprintf(&b, " %s, %s", p.ref(inst.Operands[0].Value), p.mod.Types.Format(inst.Type, p.mod.Strings))
	case OpCheckedCastBranch:
		fmt.Fprintf(&b, " %s, %s, bb%d, bb%d",
			p.ref(inst.Operands[0].Value),
			p.mod.Types.Format(inst.Type, p.mod.Strings),
			inst.Succs[0], inst.Succs[1])
	case OpBranch:
		fmt.Fprintf(&b, " bb%d", inst.Succs[0])
		p.formatBranchArgs(&b, inst.Operands)
	case OpCondBranch:
		fmt.Fprintf(&b, " %s, bb%d", p.ref(inst.Operands[0].Value), inst.Succs[0])
		p.formatBranchArgs(&b, inst.Operands[1:1+inst.NumTrueArgs])
		fmt.Fprintf(&b, ", bb%d", inst.Succs[1])
		p.formatBranchArgs(&b, inst.Operands[1+inst.NumTrueArgs:])
	case OpSwitchEnum:
		fmt.Fprintf(&b, " %s", p.ref(inst.Operands[0].Value))
		for i, succ := range inst.Succs {
			if inst.SuccCases[i] == SwitchDefault {
				fmt.Fprintf(&b, ", default: bb%d", succ)
			} else {
				fmt.Fprintf(&b, ", case %d: bb%d", inst.SuccCases[i], succ)
			}
		}
	case OpYield:
		for i, op := range inst.Operands {
			if i > 0 {
				b.WriteByte(',')
			}
			fmt.Fprintf(&b, " %s", p.ref(op.Value))
		}
		fmt.Fprintf(&b, ", resume bb%d, unwind bb%d", inst.Succs[0], inst.Succs[1])
	case OpAllocStack, OpAllocBox, OpAllocRef, OpMetatype:
		fmt.Fprintf(&b, " %s", p.mod.Types.Format(inst.Type, p.mod.Strings))
	default:
		for i, op := range inst.Operands {
			if i > 0 {
				b.WriteByte(',')
			}
			fmt.Fprintf(&b, " %s", p.ref(op.Value))
		}
	}

	p.formatResultTypes(&b, fn, inst)
	return b.String()
}

func (p *Printer) formatCallOperands(b *strings.Builder, operands []Operand) {
	b.WriteByte('(')
	for i, op := range operands {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(p.ref(op.Value))
	}
	b.WriteByte(')')
}

func (p *Printer) formatBranchArgs(b *strings.Builder, operands []Operand) {
	if len(operands) == 0 {
		return
	}
	p.formatCallOperands(b, operands)
}

func (p *Printer) formatResultTypes(b *strings.Builder, fn *Func, inst *Inst) {
	if len(inst.Results) == 0 {
		return
	}
	b.WriteString(" : ")
	if len(inst.Results) == 1 {
		b.WriteString(p.mod.Types.Format(fn.Value(inst.Results[0]).Type, p.mod.Strings))
		return
	}
	b.WriteByte('(')
	for i, r := range inst.Results {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(p.mod.Types.Format(fn.Value(r).Type, p.mod.Strings))
	}
	b.WriteByte(')')
}
