package cli

import (
	"reflect"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/perivale/flywheel/pkg/ir"
)

func TestSplitList(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty", "", nil},
		{"single", "fold", []string{"fold"}},
		{"multiple", "fold,strength,phi", []string{"fold", "strength", "phi"}},
		{"spaces", " fold , strength ", []string{"fold", "strength"}},
		{"empty entries", "fold,,strength,", []string{"fold", "strength"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := splitList(tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("splitList(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestBasePath(t *testing.T) {
	tests := []struct {
		name   string
		output string
		input  string
		want   string
	}{
		{"default from input", "", "graphs/prog.json", "graphs/prog"},
		{"explicit without extension", "out/result", "prog.json", "out/result"},
		{"strips format extension", "out/result.svg", "prog.json", "out/result"},
		{"keeps unknown extension", "out/result.txt", "prog.json", "out/result.txt"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := basePath(tt.output, tt.input); got != tt.want {
				t.Errorf("basePath(%q, %q) = %q, want %q", tt.output, tt.input, got, tt.want)
			}
		})
	}
}

func TestCollectStats(t *testing.T) {
	g := ir.New()
	start := g.NewNode(ir.Start())
	g.SetStart(start)
	two := g.NewNode(ir.Int64Constant(2))
	three := g.NewNode(ir.Int64Constant(3))
	sum := g.NewNode(ir.Add(), two, three)
	ret := g.NewNode(ir.Return(), sum, start, start)
	g.SetEnd(g.NewNode(ir.End(1), ret))

	stats := collectStats(g)

	if stats.nodes != 6 {
		t.Errorf("nodes = %d, want 6", stats.nodes)
	}
	// Add has 2 value inputs, Return has value+effect+control, End one control.
	if stats.edges != 6 {
		t.Errorf("edges = %d, want 6", stats.edges)
	}
	if got := stats.byKind[ir.KindValue]; got != 3 {
		t.Errorf("value edges = %d, want 3", got)
	}
	if got := stats.byKind[ir.KindEffect]; got != 1 {
		t.Errorf("effect edges = %d, want 1", got)
	}
	if got := stats.byKind[ir.KindControl]; got != 2 {
		t.Errorf("control edges = %d, want 2", got)
	}
	if got := stats.byOpcode["Int64Constant"]; got != 2 {
		t.Errorf("Int64Constant count = %d, want 2", got)
	}
	if stats.maxUses != 2 {
		t.Errorf("maxUses = %d, want 2 (start feeds effect and control)", stats.maxUses)
	}
	// end -> return -> add -> constant.
	if stats.depth != 4 {
		t.Errorf("depth = %d, want 4", stats.depth)
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{1024, "1.0 KiB"},
		{1536, "1.5 KiB"},
		{1048576, "1.0 MiB"},
	}
	for _, tt := range tests {
		if got := formatBytes(tt.n); got != tt.want {
			t.Errorf("formatBytes(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestTraceRecorderFormatsEvents(t *testing.T) {
	rec := &traceRecorder{}
	rec.OnRunStart(10)
	rec.OnNodeChanged(3, "Add", true)
	rec.OnReplace(3, 7)
	rec.OnRevisit(5)
	rec.OnResweep(1)

	if len(rec.events) != 5 {
		t.Fatalf("recorded %d events, want 5", len(rec.events))
	}
	wantKinds := []string{"start", "change", "replace", "revisit", "resweep"}
	for i, want := range wantKinds {
		if rec.events[i].kind != want {
			t.Errorf("event %d kind = %q, want %q", i, rec.events[i].kind, want)
		}
	}
	if got := rec.events[1].text; got != "node 3 (Add) changed in place" {
		t.Errorf("change event text = %q", got)
	}
	if got := rec.events[2].text; got != "node 3 -> node 7" {
		t.Errorf("replace event text = %q", got)
	}
}

func TestTraceModelNavigation(t *testing.T) {
	events := make([]traceEvent, 30)
	for i := range events {
		events[i] = traceEvent{kind: "revisit", text: "x"}
	}
	m := newTraceModel("test.json", events)

	down := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}}
	var model tea.Model = m
	for i := 0; i < 25; i++ {
		model, _ = model.Update(down)
	}
	got := model.(traceModel)
	if got.cursor != 25 {
		t.Errorf("cursor = %d, want 25", got.cursor)
	}
	if got.offset != 25-got.height+1 {
		t.Errorf("offset = %d, want %d", got.offset, 25-got.height+1)
	}

	model, _ = model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'g'}})
	got = model.(traceModel)
	if got.cursor != 0 || got.offset != 0 {
		t.Errorf("after g: cursor = %d, offset = %d, want 0, 0", got.cursor, got.offset)
	}

	_, cmd := model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Error("q should quit")
	}
}
