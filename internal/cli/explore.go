package cli

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	"github.com/perivale/flywheel/pkg/dot"
	"github.com/perivale/flywheel/pkg/ir"
	"github.com/perivale/flywheel/pkg/pipeline"
)

const explorePage = `<!DOCTYPE html>
<html>
<head>
<title>flywheel explore</title>
<style>
  body { font-family: sans-serif; margin: 2rem; background: #1a1a1a; color: #e0e0e0; }
  h1 { font-size: 1.3rem; }
  .panes { display: flex; gap: 2rem; }
  .pane { flex: 1; background: #fff; border-radius: 6px; padding: 1rem; }
  .pane h2 { color: #333; font-size: 1rem; margin-top: 0; }
  img { max-width: 100%%; }
  pre { background: #222; padding: 1rem; border-radius: 6px; overflow-x: auto; }
</style>
</head>
<body>
<h1>flywheel &middot; %s</h1>
<div class="panes">
  <div class="pane"><h2>before</h2><img src="/before.svg"></div>
  <div class="pane"><h2>after</h2><img src="/after.svg"></div>
</div>
<h2>stats</h2>
<pre id="stats"></pre>
<script>
fetch("/stats.json").then(r => r.json()).then(s => {
  document.getElementById("stats").textContent = JSON.stringify(s, null, 2);
});
</script>
</body>
</html>`

// exploreStats is the JSON payload served at /stats.json.
type exploreStats struct {
	Input       string       `json:"input"`
	NodesBefore int          `json:"nodes_before"`
	NodesAfter  int          `json:"nodes_after"`
	Engine      reduceStats  `json:"engine"`
	Duration    string       `json:"duration"`
}

// reduceStats mirrors the engine counters with stable JSON names.
type reduceStats struct {
	NodesVisited   int `json:"nodes_visited"`
	UsesTraversed  int `json:"uses_traversed"`
	InPlaceChanges int `json:"in_place_changes"`
	Replacements   int `json:"replacements"`
	Resweeps       int `json:"resweeps"`
}

// newExploreCmd creates the explore command: serve an interactive
// before/after view of a reduction in the browser.
func newExploreCmd() *cobra.Command {
	var addr, rulesStr string
	var detailed bool

	cmd := &cobra.Command{
		Use:   "explore [file]",
		Short: "Serve a before/after view of a reduction in the browser",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			runner := pipeline.NewRunner(nil, logger)
			defer runner.Close()

			input := args[0]
			g, err := runner.Load(input)
			if err != nil {
				return err
			}
			nodesBefore := len(g.Reachable())
			beforeSVG, err := renderSVG(g, detailed)
			if err != nil {
				return err
			}

			start := time.Now()
			engineStats, err := runner.Reduce(ctx, g, pipeline.Options{Rules: splitList(rulesStr)})
			if err != nil {
				return err
			}
			afterSVG, err := renderSVG(g, detailed)
			if err != nil {
				return err
			}

			stats := exploreStats{
				Input:       input,
				NodesBefore: nodesBefore,
				NodesAfter:  len(g.Reachable()),
				Engine: reduceStats{
					NodesVisited:   engineStats.Engine.NodesVisited,
					UsesTraversed:  engineStats.Engine.UsesTraversed,
					InPlaceChanges: engineStats.Engine.InPlaceChanges,
					Replacements:   engineStats.Engine.Replacements,
					Resweeps:       engineStats.Engine.Resweeps,
				},
				Duration: time.Since(start).Round(time.Microsecond).String(),
			}

			r := chi.NewRouter()
			r.Use(middleware.Recoverer)
			r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "text/html; charset=utf-8")
				fmt.Fprintf(w, explorePage, input)
			})
			r.Get("/before.svg", serveSVG(beforeSVG))
			r.Get("/after.svg", serveSVG(afterSVG))
			r.Get("/stats.json", func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_ = json.NewEncoder(w).Encode(stats)
			})

			printInfo("Serving on %s", StyleLink.Render("http://"+addr))
			printDetail("press ctrl+c to stop")

			server := &http.Server{Addr: addr, Handler: r}
			go func() {
				<-ctx.Done()
				_ = server.Close()
			}()
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "localhost:8745", "address to listen on")
	cmd.Flags().StringVarP(&rulesStr, "rules", "r", "", "rules to apply (comma-separated, default all)")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "show node IDs and arities in renderings")

	return cmd
}

func renderSVG(g *ir.Graph, detailed bool) ([]byte, error) {
	return dot.RenderSVG(dot.ToDOT(g, dot.Options{Detailed: detailed}))
}

func serveSVG(data []byte) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "image/svg+xml")
		_, _ = w.Write(data)
	}
}
