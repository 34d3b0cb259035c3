// Command validate checks the maze preset JSON files in a directory
// (../configs by default). For each file it checks:
//   - JSON structure, rejecting unknown fields so misspelled keys are caught
//   - The preset rules enforced by the server (name, description, size and chute bounds)
//   - That the preset name is usable as a file name
//   - That a sample maze generated from the preset keeps the goal reachable
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"
	"github.com/wricardo/mcp-training/hazardmaze/game/engine"
)

// sampleSeeds are used to generate the sample mazes for a preset
var sampleSeeds = []int64{1, 2, 3}

// ValidationResult captures the outcome of validating a single file.
// If Valid is true, Errors contains informational messages; otherwise it
// accumulates the validation errors that were found.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
}

func (r *ValidationResult) fail(format string, args ...interface{}) {
	r.Valid = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *ValidationResult) info(format string, args ...interface{}) {
	r.Errors = append(r.Errors, "✓ "+fmt.Sprintf(format, args...))
}

// validateConfig loads and validates a single preset file
func validateConfig(filePath string) ValidationResult {
	result := ValidationResult{
		File:   filepath.Base(filePath),
		Valid:  true,
		Errors: []string{},
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		result.fail("Failed to read file: %v", err)
		return result
	}

	var config engine.MazeConfig
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&config); err != nil {
		result.fail("Invalid JSON: %v", err)
		return result
	}

	if err := engine.ValidateMazeConfig(&config); err != nil {
		result.fail("%v", err)
		return result
	}

	if strings.ContainsAny(config.Name, `/\`) || strings.Contains(config.Name, "..") {
		result.fail("name %q cannot be used as a preset id", config.Name)
	}

	width := engine.NormalizeSize(config.Width)
	height := engine.NormalizeSize(config.Height)
	if width != config.Width || height != config.Height {
		result.info("size %dx%d is normalized to %dx%d", config.Width, config.Height, width, height)
	}

	for _, seed := range sampleSeeds {
		rng, _ := engine.NewSeededRand(seed)
		layout, err := engine.NewGenerator(rng, engine.Options{Chutes: config.Chutes}).Generate(width, height)
		if err != nil {
			result.fail("seed %d: generation failed: %v", seed, err)
			continue
		}
		if !engine.Reachable(layout.Grid, layout.Start, layout.Goal) {
			result.fail("seed %d: goal not reachable from start", seed)
			continue
		}
		result.info("seed %d: %dx%d, %d hazards, %d chutes, shortest path %d",
			seed, layout.Width, layout.Height,
			engine.CountCellKind(layout.Grid, engine.Hazard),
			engine.CountCellKind(layout.Grid, engine.Chute),
			engine.ShortestPath(layout.Grid, layout.Start, layout.Goal))
	}

	return result
}

// validateDir validates every *.json file in dir and writes a report to w.
// It reports whether all files were valid.
func validateDir(w io.Writer, dir string) (bool, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return false, fmt.Errorf("finding config files: %w", err)
	}
	if len(files) == 0 {
		return false, fmt.Errorf("no presets found in %s", dir)
	}

	allValid := true
	for _, file := range files {
		result := validateConfig(file)

		fmt.Fprintf(w, "\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Fprintln(w, "✅ VALID")
			for _, info := range result.Errors {
				fmt.Fprintln(w, "  "+info)
			}
			continue
		}

		fmt.Fprintln(w, "❌ INVALID")
		allValid = false
		for _, err := range result.Errors {
			if !strings.HasPrefix(err, "✓") {
				fmt.Fprintln(w, "  ❌ "+err)
			}
		}
	}

	fmt.Fprintf(w, "\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Fprintln(w, "✅ All presets are valid!")
	} else {
		fmt.Fprintln(w, "❌ Some presets have errors")
	}
	return allValid, nil
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:  "validate",
		Usage: "Validate maze preset files",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "dir",
				Value:   "../configs",
				Usage:   "Directory containing preset JSON files",
				Sources: cli.EnvVars("CONFIG_DIR"),
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			ok, err := validateDir(cmd.Writer, cmd.String("dir"))
			if err != nil {
				return err
			}
			if !ok {
				return cli.Exit("some presets are invalid", 1)
			}
			return nil
		},
	}
}

// main exits with non-zero status if any preset is invalid
func main() {
	if err := newCommand().Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
