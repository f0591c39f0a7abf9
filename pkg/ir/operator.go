package ir

import "fmt"

// Opcode identifies the operation a node performs.
type Opcode uint8

// All opcodes understood by the engine and the standard rules.
const (
	OpStart Opcode = iota
	OpEnd
	OpMerge
	OpLoop
	OpBranch
	OpIfTrue
	OpIfFalse
	OpIfSuccess
	OpIfException
	OpPhi
	OpEffectPhi
	OpParameter
	OpInt64Constant
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMod
	OpShl
	OpShr
	OpCall
	OpReturn
	OpThrow
	OpDead
	OpPlaceholder
)

var opcodeNames = [...]string{
	OpStart:         "Start",
	OpEnd:           "End",
	OpMerge:         "Merge",
	OpLoop:          "Loop",
	OpBranch:        "Branch",
	OpIfTrue:        "IfTrue",
	OpIfFalse:       "IfFalse",
	OpIfSuccess:     "IfSuccess",
	OpIfException:   "IfException",
	OpPhi:           "Phi",
	OpEffectPhi:     "EffectPhi",
	OpParameter:     "Parameter",
	OpInt64Constant: "Int64Constant",
	OpAdd:           "Add",
	OpSub:           "Sub",
	OpMul:           "Mul",
	OpDiv:           "Div",
	OpMod:           "Mod",
	OpShl:           "Shl",
	OpShr:           "Shr",
	OpCall:          "Call",
	OpReturn:        "Return",
	OpThrow:         "Throw",
	OpDead:          "Dead",
	OpPlaceholder:   "Placeholder",
}

// String returns the opcode name (e.g. "Int64Constant").
func (o Opcode) String() string {
	if int(o) < len(opcodeNames) {
		return opcodeNames[o]
	}
	return fmt.Sprintf("Opcode(%d)", uint8(o))
}

// Operator describes what a node does and how many inputs and outputs of
// each kind it has. Operators with a parametric arity or payload (Phi,
// Merge, Int64Constant, ...) get a fresh Operator per node; the engine
// additionally mutates a node's operator in place when it dissolves the
// node into a placeholder.
type Operator struct {
	Opcode Opcode

	ValueIn   int
	EffectIn  int
	ControlIn int

	ValueOut   int
	EffectOut  int
	ControlOut int

	// Value carries the payload for Int64Constant (the constant) and
	// Parameter (the parameter index). Zero otherwise.
	Value int64
}

// InputCount returns the total declared input arity across all kinds.
func (op *Operator) InputCount() int {
	return op.ValueIn + op.EffectIn + op.ControlIn
}

// String returns the opcode name, with the payload for constants and
// parameters (e.g. "Int64Constant[42]").
func (op *Operator) String() string {
	switch op.Opcode {
	case OpInt64Constant, OpParameter:
		return fmt.Sprintf("%s[%d]", op.Opcode, op.Value)
	}
	return op.Opcode.String()
}
