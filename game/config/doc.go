// Package config provides maze preset management for the Hazard Maze server.
//
// The config package handles:
//   - Loading presets from JSON files in a config directory
//   - Preset validation through engine.ValidateMazeConfig
//   - Default preset selection with a built-in fallback
//   - Preset discovery and listing
//
// Preset Format:
//
//	{
//	  "name": "classic",
//	  "description": "15x15 maze with hazards and a pair of portals",
//	  "width": 15,
//	  "height": 15,
//	  "chutes": 0,
//	  "messages": {"goal_reached": "You made it!"}
//	}
//
// Width and height must lie in [7, 51]; even values are rounded up when the
// maze is generated. Missing messages take the engine defaults.
//
// Usage:
//
//	manager, err := config.NewManager("configs")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	small, err := manager.LoadConfig("small")
//	presets, err := manager.ListConfigs()
package config
