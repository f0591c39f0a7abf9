package ir

// ValueInput returns the i-th value input of n.
// It panics if n's operator declares no value input at that position.
func ValueInput(n *Node, i int) *Node {
	if i >= n.op.ValueIn {
		panic("ir: node has no value input " + n.String())
	}
	return n.InputAt(i)
}

// EffectInput returns the first effect input of n.
// It panics if n's operator declares no effect inputs.
func EffectInput(n *Node) *Node {
	if n.op.EffectIn == 0 {
		panic("ir: node has no effect input " + n.String())
	}
	return n.InputAt(n.op.ValueIn)
}

// ControlInput returns the first control input of n.
// It panics if n's operator declares no control inputs.
func ControlInput(n *Node) *Node {
	if n.op.ControlIn == 0 {
		panic("ir: node has no control input " + n.String())
	}
	return n.InputAt(n.op.ValueIn + n.op.EffectIn)
}
