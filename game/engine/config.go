package engine

import (
	"encoding/json"
	"fmt"
	"os"
)

// Messages holds the text reported for each move outcome and rejection
type Messages struct {
	Welcome              string `json:"welcome"`
	Moved                string `json:"moved"`
	GoalReached          string `json:"goal_reached"`
	HazardDeath          string `json:"hazard_death"`
	ChuteRide            string `json:"chute_ride"`
	Teleported           string `json:"teleported"`
	HitWall              string `json:"hit_wall"`
	OutOfBounds          string `json:"out_of_bounds"`
	NotAdjacent          string `json:"not_adjacent"`
	ChuteWrongSide       string `json:"chute_wrong_side"`
	ChuteExitBlocked     string `json:"chute_exit_blocked"`
	MissingPortalPartner string `json:"missing_portal_partner"`
}

// MazeConfig is a named maze preset loaded from JSON
type MazeConfig struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Width       int      `json:"width"`
	Height      int      `json:"height"`
	Chutes      int      `json:"chutes"`
	Messages    Messages `json:"messages"`
}

// DefaultMessages returns the built-in outcome messages
func DefaultMessages() Messages {
	return Messages{
		Welcome:              "Maze ready. Find your way to the goal!",
		Moved:                "Move made",
		GoalReached:          "You reached the goal! Congratulations!",
		HazardDeath:          "You stepped on a hazard and were sent back to the start!",
		ChuteRide:            "Whoosh! The chute carried you through",
		Teleported:           "The portal teleported you",
		HitWall:              "You can't walk through walls!",
		OutOfBounds:          "Position is outside the maze",
		NotAdjacent:          "You can only move to a neighbouring cell",
		ChuteWrongSide:       "That chute can't be entered from this side",
		ChuteExitBlocked:     "The chute exit is blocked",
		MissingPortalPartner: "This portal has no partner and leads nowhere",
	}
}

// DefaultMazeConfig returns the preset used when none is configured
func DefaultMazeConfig() *MazeConfig {
	return &MazeConfig{
		Name:        "classic",
		Description: "15x15 maze with hazards and a pair of portals",
		Width:       DefaultMazeSize,
		Height:      DefaultMazeSize,
		Messages:    DefaultMessages(),
	}
}

// ValidateMazeConfig validates a preset for correctness
func ValidateMazeConfig(config *MazeConfig) error {
	if config == nil {
		return fmt.Errorf("config validation: config is nil")
	}
	if config.Name == "" {
		return fmt.Errorf("config validation: name is required")
	}
	if config.Description == "" {
		return fmt.Errorf("config validation: description is required")
	}
	if config.Width < MinMazeSize || config.Width > MaxMazeSize {
		return fmt.Errorf("config validation: width must be between %d and %d, got %d", MinMazeSize, MaxMazeSize, config.Width)
	}
	if config.Height < MinMazeSize || config.Height > MaxMazeSize {
		return fmt.Errorf("config validation: height must be between %d and %d, got %d", MinMazeSize, MaxMazeSize, config.Height)
	}
	if config.Chutes < 0 || config.Chutes > MaxChutes {
		return fmt.Errorf("config validation: chutes must be between 0 and %d, got %d", MaxChutes, config.Chutes)
	}
	return nil
}

// WithDefaults fills empty messages from DefaultMessages
func (c *MazeConfig) WithDefaults() *MazeConfig {
	out := *c
	d := DefaultMessages()
	m := &out.Messages
	fill := func(dst *string, def string) {
		if *dst == "" {
			*dst = def
		}
	}
	fill(&m.Welcome, d.Welcome)
	fill(&m.Moved, d.Moved)
	fill(&m.GoalReached, d.GoalReached)
	fill(&m.HazardDeath, d.HazardDeath)
	fill(&m.ChuteRide, d.ChuteRide)
	fill(&m.Teleported, d.Teleported)
	fill(&m.HitWall, d.HitWall)
	fill(&m.OutOfBounds, d.OutOfBounds)
	fill(&m.NotAdjacent, d.NotAdjacent)
	fill(&m.ChuteWrongSide, d.ChuteWrongSide)
	fill(&m.ChuteExitBlocked, d.ChuteExitBlocked)
	fill(&m.MissingPortalPartner, d.MissingPortalPartner)
	return &out
}

// LoadMazeConfig loads and validates a preset from a JSON file
func LoadMazeConfig(filename string) (*MazeConfig, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	var config MazeConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file '%s': %w", filename, err)
	}

	if err := ValidateMazeConfig(&config); err != nil {
		return nil, err
	}

	return config.WithDefaults(), nil
}
