package cli

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/perivale/flywheel/pkg/observability"
	"github.com/perivale/flywheel/pkg/pipeline"
)

// traceEvent is one recorded engine event.
type traceEvent struct {
	kind string // "start", "change", "replace", "revisit", "resweep", "finish"
	text string
}

// traceRecorder implements observability.ReduceHooks by appending every
// event to an in-memory list for later replay. The engine is
// single-threaded, so no locking is needed.
type traceRecorder struct {
	events []traceEvent
}

func (r *traceRecorder) OnRunStart(nodeCount int) {
	r.events = append(r.events, traceEvent{"start", fmt.Sprintf("run started over %d nodes", nodeCount)})
}

func (r *traceRecorder) OnRunFinish(visited int, duration time.Duration) {
	r.events = append(r.events, traceEvent{"finish",
		fmt.Sprintf("run finished: %d visits in %s", visited, duration.Round(time.Microsecond))})
}

func (r *traceRecorder) OnNodeChanged(id uint32, op string, inPlace bool) {
	how := "replaced"
	if inPlace {
		how = "changed in place"
	}
	r.events = append(r.events, traceEvent{"change", fmt.Sprintf("node %d (%s) %s", id, op, how)})
}

func (r *traceRecorder) OnReplace(node, replacement uint32) {
	r.events = append(r.events, traceEvent{"replace", fmt.Sprintf("node %d -> node %d", node, replacement)})
}

func (r *traceRecorder) OnRevisit(node uint32) {
	r.events = append(r.events, traceEvent{"revisit", fmt.Sprintf("node %d queued for revisit", node)})
}

func (r *traceRecorder) OnResweep(sweep int) {
	r.events = append(r.events, traceEvent{"resweep", fmt.Sprintf("full re-traversal #%d", sweep)})
}

// newTraceCmd creates the trace command: record a reduction run and replay
// it in an interactive viewer.
func newTraceCmd() *cobra.Command {
	var rulesStr string
	var plain bool

	cmd := &cobra.Command{
		Use:   "trace [file]",
		Short: "Replay a reduction run event by event",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			recorder := &traceRecorder{}
			observability.SetReduceHooks(recorder)
			defer observability.Reset()

			runner := pipeline.NewRunner(nil, logger)
			defer runner.Close()

			g, err := runner.Load(args[0])
			if err != nil {
				return err
			}
			if _, err := runner.Reduce(ctx, g, pipeline.Options{Rules: splitList(rulesStr)}); err != nil {
				return err
			}

			if plain {
				for i, ev := range recorder.events {
					fmt.Printf("%4d  %-8s %s\n", i+1, ev.kind, ev.text)
				}
				return nil
			}

			model := newTraceModel(args[0], recorder.events)
			_, err = tea.NewProgram(model).Run()
			return err
		},
	}

	cmd.Flags().StringVarP(&rulesStr, "rules", "r", "", "rules to apply (comma-separated, default all)")
	cmd.Flags().BoolVar(&plain, "plain", false, "print events without the interactive viewer")

	return cmd
}

// traceModel is the bubbletea model for scrolling through a recorded run.
type traceModel struct {
	input  string
	events []traceEvent
	cursor int
	offset int
	height int
}

func newTraceModel(input string, events []traceEvent) traceModel {
	return traceModel{input: input, events: events, height: 20}
}

func (m traceModel) Init() tea.Cmd {
	return nil
}

func (m traceModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
				if m.cursor < m.offset {
					m.offset = m.cursor
				}
			}
		case "down", "j":
			if m.cursor < len(m.events)-1 {
				m.cursor++
				if m.cursor >= m.offset+m.height {
					m.offset = m.cursor - m.height + 1
				}
			}
		case "g", "home":
			m.cursor, m.offset = 0, 0
		case "G", "end":
			m.cursor = len(m.events) - 1
			if m.cursor >= m.height {
				m.offset = m.cursor - m.height + 1
			}
		}
	case tea.WindowSizeMsg:
		m.height = msg.Height - 6
		if m.height < 5 {
			m.height = 5
		}
	}
	return m, nil
}

var traceKindStyles = map[string]func(string) string{
	"start":   func(s string) string { return StyleTitle.Render(s) },
	"finish":  func(s string) string { return StyleSuccess.Render(s) },
	"change":  func(s string) string { return StyleHighlight.Render(s) },
	"replace": func(s string) string { return StyleValue.Render(s) },
	"revisit": func(s string) string { return StyleDim.Render(s) },
	"resweep": func(s string) string { return StyleWarning.Render(s) },
}

func (m traceModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Reduction Trace"))
	b.WriteString(StyleDim.Render("  " + m.input))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("up/down navigate  g/G jump  q quit"))
	b.WriteString("\n\n")

	end := m.offset + m.height
	if end > len(m.events) {
		end = len(m.events)
	}
	for i := m.offset; i < end; i++ {
		ev := m.events[i]
		cursor := "  "
		if i == m.cursor {
			cursor = "> "
		}
		line := fmt.Sprintf("%s%4d  %-8s %s", cursor, i+1, ev.kind, ev.text)
		if style, ok := traceKindStyles[ev.kind]; ok && i == m.cursor {
			b.WriteString(style(line))
		} else if i == m.cursor {
			b.WriteString(StyleHighlight.Render(line))
		} else {
			b.WriteString(StyleDim.Render(line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(StyleDim.Render(fmt.Sprintf("  [%d/%d]", m.cursor+1, len(m.events))))
	return b.String()
}
