package graphio

import (
	"encoding/json"
	"io"
	"os"

	"github.com/perivale/flywheel/pkg/errors"
	"github.com/perivale/flywheel/pkg/ir"
)

type graphJSON struct {
	Nodes []nodeJSON `json:"nodes"`
	Start *uint32    `json:"start"`
	End   *uint32    `json:"end"`
}

type nodeJSON struct {
	ID     uint32   `json:"id"`
	Op     string   `json:"op"`
	Value  *int64   `json:"value,omitempty"`
	Inputs []uint32 `json:"inputs,omitempty"`
}

// operatorFromName builds the operator for an op name, deriving parametric
// arities from the declared input count and payloads from value.
func operatorFromName(name string, value int64, inputs int) (*ir.Operator, error) {
	switch name {
	case "Start":
		return ir.Start(), nil
	case "End":
		return ir.End(inputs), nil
	case "Merge":
		return ir.Merge(inputs), nil
	case "Loop":
		return ir.Loop(inputs), nil
	case "Branch":
		return ir.Branch(), nil
	case "IfTrue":
		return ir.IfTrue(), nil
	case "IfFalse":
		return ir.IfFalse(), nil
	case "IfSuccess":
		return ir.IfSuccess(), nil
	case "IfException":
		return ir.IfException(), nil
	case "Phi":
		if inputs < 1 {
			return nil, errors.New(errors.ErrCodeInvalidNode, "Phi needs at least a control input")
		}
		return ir.Phi(inputs - 1), nil
	case "EffectPhi":
		if inputs < 1 {
			return nil, errors.New(errors.ErrCodeInvalidNode, "EffectPhi needs at least a control input")
		}
		return ir.EffectPhi(inputs - 1), nil
	case "Parameter":
		return ir.Parameter(int(value)), nil
	case "Int64Constant":
		return ir.Int64Constant(value), nil
	case "Add":
		return ir.Add(), nil
	case "Sub":
		return ir.Sub(), nil
	case "Mul":
		return ir.Mul(), nil
	case "Div":
		return ir.Div(), nil
	case "Mod":
		return ir.Mod(), nil
	case "Shl":
		return ir.Shl(), nil
	case "Shr":
		return ir.Shr(), nil
	case "Call":
		if inputs < 3 {
			return nil, errors.New(errors.ErrCodeInvalidNode, "Call needs callee, effect and control inputs")
		}
		return ir.Call(inputs - 3), nil
	case "Return":
		return ir.Return(), nil
	case "Throw":
		return ir.Throw(), nil
	case "Dead":
		return ir.Dead(), nil
	}
	return nil, errors.New(errors.ErrCodeInvalidOperator, "unknown operator %q", name)
}

// Read decodes a JSON graph from r.
//
// Nodes are created in file order, then inputs are wired in a second pass
// so cyclic references (loop headers, loop phis) resolve. Read returns a
// coded error if the JSON is malformed, a node ID is duplicated, an
// operator name is unknown, an input references an undeclared node, an
// input list does not match the operator's arity, or the end reference is
// missing. Read does not close r.
func Read(r io.Reader) (*ir.Graph, error) {
	var data graphJSON
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode graph")
	}
	if data.End == nil {
		return nil, errors.New(errors.ErrCodeInvalidGraph, "missing end node reference")
	}

	g := ir.New()
	byID := make(map[uint32]*ir.Node, len(data.Nodes))
	for _, n := range data.Nodes {
		if _, ok := byID[n.ID]; ok {
			return nil, errors.New(errors.ErrCodeInvalidGraph, "duplicate node id %d", n.ID)
		}
		var value int64
		if n.Value != nil {
			value = *n.Value
		}
		op, err := operatorFromName(n.Op, value, len(n.Inputs))
		if err != nil {
			return nil, errors.Wrap(errors.GetCode(err), err, "node %d", n.ID)
		}
		if op.InputCount() != len(n.Inputs) {
			return nil, errors.New(errors.ErrCodeInvalidNode,
				"node %d: %s wants %d inputs, got %d", n.ID, n.Op, op.InputCount(), len(n.Inputs))
		}
		byID[n.ID] = g.NewNode(op)
	}

	for _, n := range data.Nodes {
		node := byID[n.ID]
		for _, ref := range n.Inputs {
			input, ok := byID[ref]
			if !ok {
				return nil, errors.New(errors.ErrCodeInvalidGraph,
					"node %d: input references unknown node %d", n.ID, ref)
			}
			node.AppendInput(input)
		}
	}

	end, ok := byID[*data.End]
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidGraph, "end references unknown node %d", *data.End)
	}
	g.SetEnd(end)
	if data.Start != nil {
		start, ok := byID[*data.Start]
		if !ok {
			return nil, errors.New(errors.ErrCodeInvalidGraph, "start references unknown node %d", *data.Start)
		}
		g.SetStart(start)
	}
	return g, nil
}

// Import reads a JSON graph file at path. It returns the same validation
// errors as [Read], plus a FILE_NOT_FOUND error if the file cannot be
// opened.
func Import(path string) (*ir.Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
	}
	defer f.Close()
	return Read(f)
}
