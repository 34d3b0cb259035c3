// Package engine provides the core maze logic for the Hazard Maze server.
//
// The engine package implements:
//   - Maze generation by randomized depth-first carving on the odd lattice
//   - Hazard, chute and portal injection that keeps the goal reachable
//   - A breadth-first reachability check used while generating
//   - The move rules for every tile kind (path, hazard, chute, portals)
//   - Maze presets (MazeConfig) and their validation
//
// Core Types:
//
// Generator builds a Layout from an injected Rand. GameState is the per-player
// session payload (grid, start, goal, portals, player position). Move is the
// stateless transition function; GameEngine wraps a GameState with a preset so
// outcomes carry configured messages and are recorded in history.
//
// Usage:
//
//	rng, seed := engine.NewSeededRand(42)
//	layout, err := engine.NewGenerator(rng, engine.Options{}).Generate(15, 15)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	state := engine.NewGameState(layout)
//	outcome, err := engine.Move(state, engine.Position{X: 2, Y: 1})
//
// Move Rules:
//
// The player may step onto any of the eight neighbouring cells (or stay put).
// Walls block. Hazards send the player back to the start. A chute can only be
// entered from the side opposite its facing and drops the player one cell past
// it. Portals teleport to their partner. Reaching the goal is reported as a flag
// and does not end the game.
package engine
