package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/wricardo/mcp-training/hazardmaze/game/engine"
	"github.com/wricardo/mcp-training/hazardmaze/game/service"
)

var (
	ErrConfigNotFound = errors.New("configuration not found")
	ErrInvalidConfig  = errors.New("invalid configuration")
)

const defaultPresetID = "classic"

var _ service.ConfigManager = (*Manager)(nil)

// Manager serves maze presets stored as <id>.json files in one directory.
// Parsed presets are kept in memory after the first load.
type Manager struct {
	dir      string
	fallback *engine.MazeConfig

	mu      sync.RWMutex
	presets map[string]*engine.MazeConfig
}

// NewManager opens dir and picks the default preset: classic.json, else the
// first valid preset by id, else the built-in default.
func NewManager(dir string) (*Manager, error) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil, fmt.Errorf("config directory does not exist: %s", dir)
	}

	m := &Manager{
		dir:     dir,
		presets: make(map[string]*engine.MazeConfig),
	}
	m.fallback = m.pickDefault()
	return m, nil
}

// presetID strips an optional .json suffix and rejects ids that could leave dir
func presetID(name string) (string, bool) {
	id := strings.TrimSuffix(name, ".json")
	if id == "" || strings.ContainsAny(id, `/\`) || strings.Contains(id, "..") {
		return "", false
	}
	return id, true
}

// LoadConfig returns the preset with the given id, with default messages filled in
func (m *Manager) LoadConfig(name string) (*engine.MazeConfig, error) {
	id, ok := presetID(name)
	if !ok {
		return nil, ErrConfigNotFound
	}

	m.mu.RLock()
	preset, cached := m.presets[id]
	m.mu.RUnlock()
	if cached {
		return preset, nil
	}

	preset, err := m.read(id)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, cached := m.presets[id]; cached {
		return existing, nil
	}
	m.presets[id] = preset
	return preset, nil
}

func (m *Manager) read(id string) (*engine.MazeConfig, error) {
	data, err := os.ReadFile(filepath.Join(m.dir, id+".json"))
	if os.IsNotExist(err) {
		return nil, ErrConfigNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading preset %s: %w", id, err)
	}

	var preset engine.MazeConfig
	if err := json.Unmarshal(data, &preset); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, id, err)
	}
	if err := engine.ValidateMazeConfig(&preset); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return preset.WithDefaults(), nil
}

// ListConfigs describes every preset in the directory that loads cleanly, ordered by id.
// Broken files are left out.
func (m *Manager) ListConfigs() ([]*service.PresetInfo, error) {
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		return nil, fmt.Errorf("listing presets: %w", err)
	}

	presets := []*service.PresetInfo{}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		id := strings.TrimSuffix(entry.Name(), ".json")
		preset, err := m.LoadConfig(id)
		if err != nil {
			continue
		}
		presets = append(presets, &service.PresetInfo{
			Filename:    entry.Name(),
			PresetID:    id,
			Name:        preset.Name,
			Description: preset.Description,
			Width:       preset.Width,
			Height:      preset.Height,
			Chutes:      preset.Chutes,
		})
	}

	sort.Slice(presets, func(i, j int) bool { return presets[i].PresetID < presets[j].PresetID })
	return presets, nil
}

// GetDefault returns the preset used when InitMaze names none
func (m *Manager) GetDefault() *engine.MazeConfig {
	return m.fallback
}

func (m *Manager) pickDefault() *engine.MazeConfig {
	if preset, err := m.LoadConfig(defaultPresetID); err == nil {
		return preset
	}
	if presets, err := m.ListConfigs(); err == nil && len(presets) > 0 {
		if preset, err := m.LoadConfig(presets[0].PresetID); err == nil {
			return preset
		}
	}
	return engine.DefaultMazeConfig()
}

// SaveConfig validates preset and writes it as <name>.json, replacing any cached copy
func (m *Manager) SaveConfig(name string, preset *engine.MazeConfig) error {
	if err := engine.ValidateMazeConfig(preset); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	id, ok := presetID(name)
	if !ok {
		return fmt.Errorf("%w: invalid preset name %q", ErrInvalidConfig, name)
	}

	data, err := json.MarshalIndent(preset, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding preset %s: %w", id, err)
	}
	if err := os.WriteFile(filepath.Join(m.dir, id+".json"), data, 0644); err != nil {
		return fmt.Errorf("writing preset %s: %w", id, err)
	}

	m.mu.Lock()
	m.presets[id] = preset.WithDefaults()
	m.mu.Unlock()
	return nil
}
