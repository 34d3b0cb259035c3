// Command mazegen generates a maze from a seed and prints it as ASCII together
// with a short summary: dimensions, endpoints, hazard/chute/portal counts and
// the length of the shortest start-goal route next to the Manhattan distance.
// The same seed always prints the same maze, which makes it handy for
// reproducing a player's session.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"
	"github.com/wricardo/mcp-training/hazardmaze/game/engine"
)

// MazeStats summarizes a generated layout
type MazeStats struct {
	Width        int
	Height       int
	Seed         int64
	PathCells    int
	Hazards      int
	Chutes       int
	Portals      int
	Reachable    bool
	ShortestPath int
	Manhattan    int
}

func main() {
	if err := newCommand().Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:  "mazegen",
		Usage: "Generate a maze and print it as ASCII",
		Flags: []cli.Flag{
			&cli.Int64Flag{
				Name:  "seed",
				Usage: "Random seed (0 picks a time-based seed)",
			},
			&cli.IntFlag{
				Name:  "width",
				Usage: "Maze width (defaults to the preset's)",
			},
			&cli.IntFlag{
				Name:  "height",
				Usage: "Maze height (defaults to the preset's)",
			},
			&cli.IntFlag{
				Name:  "chutes",
				Value: -1,
				Usage: "Chute placement attempts (defaults to the preset's)",
			},
			&cli.StringFlag{
				Name:  "preset",
				Usage: "Path to a preset JSON file",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			preset := engine.DefaultMazeConfig()
			if path := cmd.String("preset"); path != "" {
				loaded, err := engine.LoadMazeConfig(path)
				if err != nil {
					return fmt.Errorf("loading preset: %w", err)
				}
				preset = loaded
			}

			width, height := preset.Width, preset.Height
			if w := cmd.Int("width"); w != 0 {
				width = w
			}
			if h := cmd.Int("height"); h != 0 {
				height = h
			}
			chutes := preset.Chutes
			if c := cmd.Int("chutes"); c >= 0 {
				chutes = c
			}

			layout, seed, err := generate(cmd.Int64("seed"), width, height, chutes)
			if err != nil {
				return err
			}

			printLayout(cmd.Writer, layout, analyze(layout, seed))
			return nil
		},
	}
}

func generate(seed int64, width, height, chutes int) (*engine.Layout, int64, error) {
	rng, seed := engine.NewSeededRand(seed)
	layout, err := engine.NewGenerator(rng, engine.Options{Chutes: chutes}).Generate(width, height)
	if err != nil {
		return nil, seed, err
	}
	return layout, seed, nil
}

func analyze(l *engine.Layout, seed int64) MazeStats {
	stats := MazeStats{
		Width:        l.Width,
		Height:       l.Height,
		Seed:         seed,
		PathCells:    engine.CountCellKind(l.Grid, engine.Path),
		Hazards:      engine.CountCellKind(l.Grid, engine.Hazard),
		Chutes:       engine.CountCellKind(l.Grid, engine.Chute),
		Reachable:    engine.Reachable(l.Grid, l.Start, l.Goal),
		ShortestPath: engine.ShortestPath(l.Grid, l.Start, l.Goal),
		Manhattan:    engine.ManhattanDistance(l.Start, l.Goal),
	}
	if l.PortalA != nil {
		stats.Portals++
	}
	if l.PortalB != nil {
		stats.Portals++
	}
	return stats
}

// render draws the grid with S and G over the endpoints
func render(l *engine.Layout) string {
	var b strings.Builder
	for y, row := range l.Grid {
		for x, cell := range row {
			switch (engine.Position{X: x, Y: y}) {
			case l.Start:
				b.WriteString("S")
			case l.Goal:
				b.WriteString("G")
			default:
				b.WriteString(engine.CellChar(cell))
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}

func printLayout(w io.Writer, l *engine.Layout, stats MazeStats) {
	fmt.Fprint(w, render(l))
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Seed: %d\n", stats.Seed)
	fmt.Fprintf(w, "Size: %d x %d\n", stats.Width, stats.Height)
	fmt.Fprintf(w, "Start: (%d, %d)  Goal: (%d, %d)\n", l.Start.X, l.Start.Y, l.Goal.X, l.Goal.Y)
	fmt.Fprintf(w, "Path cells: %d  Hazards: %d  Chutes: %d  Portals: %d\n",
		stats.PathCells, stats.Hazards, stats.Chutes, stats.Portals)
	if stats.Portals == 1 {
		fmt.Fprintln(w, "⚠️  Stranded portal: only one portal could be placed")
	}
	if stats.Reachable {
		fmt.Fprintf(w, "✅ Goal reachable, shortest path %d steps (Manhattan distance %d)\n", stats.ShortestPath, stats.Manhattan)
	} else {
		fmt.Fprintln(w, "⚠️  Goal NOT reachable from start")
	}
}
