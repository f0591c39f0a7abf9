package rules_test

import (
	"fmt"

	"github.com/perivale/flywheel/pkg/ir"
	"github.com/perivale/flywheel/pkg/reduce"
	"github.com/perivale/flywheel/pkg/reduce/rules"
)

func ExampleConstantFolding() {
	g := ir.New()
	start := g.NewNode(ir.Start())
	g.SetStart(start)
	sum := g.NewNode(ir.Add(),
		g.NewNode(ir.Int64Constant(2)),
		g.NewNode(ir.Int64Constant(3)))
	ret := g.NewNode(ir.Return(), sum, start, start)
	g.SetEnd(g.NewNode(ir.End(1), ret))

	r := reduce.NewGraphReducer(g, reduce.Options{})
	r.Add(rules.NewConstantFolding(g))
	r.ReduceGraph()

	fmt.Println("returned:", ir.ValueInput(ret, 0).Op())
	// Output:
	// returned: Int64Constant[5]
}

func ExampleStrengthReduction() {
	g := ir.New()
	start := g.NewNode(ir.Start())
	g.SetStart(start)
	x := g.NewNode(ir.Parameter(0), start)
	mul := g.NewNode(ir.Mul(), x, g.NewNode(ir.Int64Constant(16)))
	ret := g.NewNode(ir.Return(), mul, start, start)
	g.SetEnd(g.NewNode(ir.End(1), ret))

	r := reduce.NewGraphReducer(g, reduce.Options{})
	r.Add(rules.NewStrengthReduction(g))
	r.ReduceGraph()

	fmt.Println("returned:", ir.ValueInput(ret, 0).Op())
	fmt.Println("shift by:", ir.ValueInput(ret, 0).InputAt(1).Op())
	// Output:
	// returned: Shl
	// shift by: Int64Constant[4]
}
