package ir

import "testing"

func TestNewNodeIDsAreCreationOrdered(t *testing.T) {
	g := New()
	a := g.NewNode(Int64Constant(1))
	b := g.NewNode(Int64Constant(2))
	c := g.NewNode(Add(), a, b)

	if a.ID() >= b.ID() || b.ID() >= c.ID() {
		t.Errorf("IDs not strictly increasing: %d, %d, %d", a.ID(), b.ID(), c.ID())
	}
	if got := g.NodeCount(); got != 3 {
		t.Errorf("NodeCount() = %d, want 3", got)
	}
}

func TestUseListsMirrorInputs(t *testing.T) {
	g := New()
	a := g.NewNode(Int64Constant(1))
	b := g.NewNode(Int64Constant(2))
	add := g.NewNode(Add(), a, b)

	if got := a.UseCount(); got != 1 {
		t.Fatalf("a.UseCount() = %d, want 1", got)
	}
	if got := a.Uses()[0]; got != add {
		t.Errorf("a.Uses()[0] = %v, want %v", got, add)
	}

	// Redirect the first input and check both use lists.
	add.ReplaceInput(0, b)
	if got := a.UseCount(); got != 0 {
		t.Errorf("a.UseCount() after redirect = %d, want 0", got)
	}
	if got := b.UseCount(); got != 2 {
		t.Errorf("b.UseCount() after redirect = %d, want 2", got)
	}
}

func TestReplaceInputSelfIsNoop(t *testing.T) {
	g := New()
	a := g.NewNode(Int64Constant(1))
	add := g.NewNode(Add(), a, a)

	add.ReplaceInput(0, a)
	if got := a.UseCount(); got != 2 {
		t.Errorf("a.UseCount() = %d, want 2", got)
	}
}

func TestTrimInputs(t *testing.T) {
	g := New()
	a := g.NewNode(Int64Constant(1))
	b := g.NewNode(Int64Constant(2))
	add := g.NewNode(Add(), a, b)

	add.TrimInputs(0)
	if got := add.InputCount(); got != 0 {
		t.Errorf("InputCount() = %d, want 0", got)
	}
	if a.UseCount() != 0 || b.UseCount() != 0 {
		t.Errorf("producers still have uses: a=%d b=%d", a.UseCount(), b.UseCount())
	}
}

func TestKillIsIdempotent(t *testing.T) {
	g := New()
	a := g.NewNode(Int64Constant(1))
	b := g.NewNode(Int64Constant(2))
	add := g.NewNode(Add(), a, b)

	add.Kill()
	if !add.IsDead() {
		t.Fatal("IsDead() = false after Kill")
	}
	if got := add.InputCount(); got != 0 {
		t.Errorf("InputCount() = %d, want 0", got)
	}
	if a.UseCount() != 0 || b.UseCount() != 0 {
		t.Errorf("dead node still registered as user: a=%d b=%d", a.UseCount(), b.UseCount())
	}

	add.Kill() // second kill must be a no-op
	if !add.IsDead() {
		t.Error("IsDead() = false after second Kill")
	}
}

func TestEdgeKindsFollowOperatorArity(t *testing.T) {
	g := New()
	start := g.NewNode(Start())
	callee := g.NewNode(Int64Constant(0))
	arg := g.NewNode(Int64Constant(1))
	call := g.NewNode(Call(1), callee, arg, start, start)

	want := []Kind{KindValue, KindValue, KindEffect, KindControl}
	for _, e := range start.UseEdges() {
		if e.From() != call {
			continue
		}
		if got := e.Kind(); got != want[e.Index()] {
			t.Errorf("edge %d kind = %v, want %v", e.Index(), got, want[e.Index()])
		}
	}
}

func TestUseEdgesSnapshotSurvivesRedirect(t *testing.T) {
	g := New()
	a := g.NewNode(Int64Constant(1))
	b := g.NewNode(Int64Constant(2))
	u1 := g.NewNode(Add(), a, a)
	u2 := g.NewNode(Sub(), a, a)

	for _, e := range a.UseEdges() {
		e.UpdateTo(b)
	}
	if got := a.UseCount(); got != 0 {
		t.Errorf("a.UseCount() = %d, want 0", got)
	}
	for _, u := range []*Node{u1, u2} {
		for i := 0; i < u.InputCount(); i++ {
			if got := u.InputAt(i); got != b {
				t.Errorf("%v input %d = %v, want %v", u, i, got, b)
			}
		}
	}
}

func TestReachableSkipsDetachedNodes(t *testing.T) {
	g := New()
	start := g.NewNode(Start())
	g.SetStart(start)
	v := g.NewNode(Int64Constant(7))
	orphan := g.NewNode(Int64Constant(9))
	ret := g.NewNode(Return(), v, start, start)
	end := g.NewNode(End(1), ret)
	g.SetEnd(end)

	live := g.Reachable()
	for _, n := range live {
		if n == orphan {
			t.Fatalf("Reachable() includes detached node %v", orphan)
		}
	}
	if got, want := len(live), 4; got != want {
		t.Errorf("len(Reachable()) = %d, want %d", got, want)
	}
}

func TestInputAccessors(t *testing.T) {
	g := New()
	start := g.NewNode(Start())
	v := g.NewNode(Int64Constant(7))
	ret := g.NewNode(Return(), v, start, start)

	if got := ValueInput(ret, 0); got != v {
		t.Errorf("ValueInput = %v, want %v", got, v)
	}
	if got := EffectInput(ret); got != start {
		t.Errorf("EffectInput = %v, want %v", got, start)
	}
	if got := ControlInput(ret); got != start {
		t.Errorf("ControlInput = %v, want %v", got, start)
	}
}
