package ir

// Operator constructors. Inputs are ordered value inputs first, then
// effect inputs, then control inputs; the arities declared here define
// how Edge.Kind classifies each position.

// Start returns the graph entry operator. It has no inputs and produces
// the initial value (parameter linkage), effect, and control tokens.
func Start() *Operator {
	return &Operator{Opcode: OpStart, ValueOut: 1, EffectOut: 1, ControlOut: 1}
}

// End returns the graph exit operator merging the given number of
// terminating control edges.
func End(controls int) *Operator {
	return &Operator{Opcode: OpEnd, ControlIn: controls}
}

// Merge returns a control-flow join of the given number of predecessors.
func Merge(controls int) *Operator {
	return &Operator{Opcode: OpMerge, ControlIn: controls, ControlOut: 1}
}

// Loop returns a loop header joining the given number of control
// predecessors (entry plus back edges).
func Loop(controls int) *Operator {
	return &Operator{Opcode: OpLoop, ControlIn: controls, ControlOut: 1}
}

// Branch returns a two-way branch on a value condition.
func Branch() *Operator {
	return &Operator{Opcode: OpBranch, ValueIn: 1, ControlIn: 1, ControlOut: 1}
}

// IfTrue returns the taken projection of a Branch.
func IfTrue() *Operator {
	return &Operator{Opcode: OpIfTrue, ControlIn: 1, ControlOut: 1}
}

// IfFalse returns the not-taken projection of a Branch.
func IfFalse() *Operator {
	return &Operator{Opcode: OpIfFalse, ControlIn: 1, ControlOut: 1}
}

// IfSuccess returns the regular continuation of a throwing node.
func IfSuccess() *Operator {
	return &Operator{Opcode: OpIfSuccess, ControlIn: 1, ControlOut: 1}
}

// IfException returns the exceptional continuation of a throwing node.
// It produces the caught value in addition to control.
func IfException() *Operator {
	return &Operator{Opcode: OpIfException, ControlIn: 1, ValueOut: 1, ControlOut: 1}
}

// Phi returns a value selection over the given number of predecessors.
// Inputs are the values followed by the controlling Merge or Loop.
func Phi(values int) *Operator {
	return &Operator{Opcode: OpPhi, ValueIn: values, ControlIn: 1, ValueOut: 1}
}

// EffectPhi returns an effect merge over the given number of predecessors.
// Inputs are the effects followed by the controlling Merge or Loop.
func EffectPhi(effects int) *Operator {
	return &Operator{Opcode: OpEffectPhi, EffectIn: effects, ControlIn: 1, EffectOut: 1}
}

// Parameter returns the function parameter at the given index. Its single
// value input is the Start node.
func Parameter(index int) *Operator {
	return &Operator{Opcode: OpParameter, ValueIn: 1, ValueOut: 1, Value: int64(index)}
}

// Int64Constant returns a pure 64-bit integer constant.
func Int64Constant(value int64) *Operator {
	return &Operator{Opcode: OpInt64Constant, ValueOut: 1, Value: value}
}

func binop(opcode Opcode) *Operator {
	return &Operator{Opcode: opcode, ValueIn: 2, ValueOut: 1}
}

// Add returns integer addition.
func Add() *Operator { return binop(OpAdd) }

// Sub returns integer subtraction.
func Sub() *Operator { return binop(OpSub) }

// Mul returns integer multiplication.
func Mul() *Operator { return binop(OpMul) }

// Div returns integer division.
func Div() *Operator { return binop(OpDiv) }

// Mod returns integer remainder.
func Mod() *Operator { return binop(OpMod) }

// Shl returns a left shift.
func Shl() *Operator { return binop(OpShl) }

// Shr returns a logical right shift.
func Shr() *Operator { return binop(OpShr) }

// Call returns a call with the given number of arguments. Inputs are the
// callee, the arguments, the incoming effect, and the incoming control.
// Calls can throw, so they also produce control for IfSuccess/IfException
// projections.
func Call(args int) *Operator {
	return &Operator{
		Opcode:  OpCall,
		ValueIn: 1 + args, EffectIn: 1, ControlIn: 1,
		ValueOut: 1, EffectOut: 1, ControlOut: 1,
	}
}

// Return returns the function return. Inputs are the returned value, the
// final effect, and the incoming control.
func Return() *Operator {
	return &Operator{Opcode: OpReturn, ValueIn: 1, EffectIn: 1, ControlIn: 1, ControlOut: 1}
}

// Throw returns an unconditional throw terminating a control path.
func Throw() *Operator {
	return &Operator{Opcode: OpThrow, ValueIn: 1, EffectIn: 1, ControlIn: 1, ControlOut: 1}
}

// Dead returns the sentinel operator for unreachable code. It produces
// all three output kinds so a dead node can stand in for any producer.
func Dead() *Operator {
	return &Operator{Opcode: OpDead, ValueOut: 1, EffectOut: 1, ControlOut: 1}
}

// Placeholder returns a transient aliasing operator created by the lazy
// replacement protocol. It carries one input per output kind it aliases,
// all pointing at the redirect target; readers are rewired to that target
// the next time the traversal observes the placeholder as an input.
func Placeholder(value, effect, control bool) *Operator {
	op := &Operator{Opcode: OpPlaceholder}
	if value {
		op.ValueOut = 1
	}
	if effect {
		op.EffectOut = 1
	}
	if control {
		op.ControlOut = 1
	}
	op.ValueIn = op.ValueOut + op.EffectOut + op.ControlOut
	return op
}
