package config

import (
	"os"
	"sync"

	"gopkg.in/yaml.v2"
)

// SessionOverrides holds a map of per-session config overrides, keyed by
// session_id. A local multiplayer-free game still benefits from this: a
// developer replaying a captured session with a different activation radius
// or checkpoint cadence does not want to edit the global config.yaml.
type SessionOverrides struct {
	Sessions map[string]Config `yaml:"sessions"`
}

// Manager resolves the effective Config for a given session, merging any
// session-specific override on top of the global config.
type Manager struct {
	globalConfig *Config
	overrides    map[string]Config
	mu           sync.RWMutex
}

// NewManager loads the master config and an optional session-overrides file.
// A missing overrides file is not an error — sessions simply run with the
// global config.
func NewManager(masterPath, overridesPath string) (*Manager, error) {
	master, err := LoadConfig(masterPath)
	if err != nil {
		return nil, err
	}
	master.applyEnvOverrides()
	master.applyDefaults()

	f, err := os.Open(overridesPath)
	if err != nil {
		if os.IsNotExist(err) {
			return &Manager{globalConfig: master, overrides: make(map[string]Config)}, nil
		}
		return nil, err
	}
	defer f.Close()

	var so SessionOverrides
	if err := yaml.NewDecoder(f).Decode(&so); err != nil {
		return nil, err
	}

	return &Manager{globalConfig: master, overrides: so.Sessions}, nil
}

// Get returns the effective config for a session_id, applying the
// non-zero-valued simulation (seed, activation radius, hook-chain depth),
// session (checkpoint cadence, bus capacity) and prover (backend, docker
// image) fields from that session's override on top of the global config.
// Any other field set in an override is ignored.
func (m *Manager) Get(sessionID string) *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()

	effective := *m.globalConfig

	override, ok := m.overrides[sessionID]
	if !ok {
		return &effective
	}

	if override.Simulation.Seed != 0 {
		effective.Simulation.Seed = override.Simulation.Seed
	}
	if override.Simulation.ActivationRadius != 0 {
		effective.Simulation.ActivationRadius = override.Simulation.ActivationRadius
	}
	if override.Simulation.HookChainMaxDep != 0 {
		effective.Simulation.HookChainMaxDep = override.Simulation.HookChainMaxDep
	}
	if override.Session.CheckpointEveryN != 0 {
		effective.Session.CheckpointEveryN = override.Session.CheckpointEveryN
	}
	if override.Session.BusCapacity != 0 {
		effective.Session.BusCapacity = override.Session.BusCapacity
	}
	if override.Prover.Backend != "" {
		effective.Prover.Backend = override.Prover.Backend
	}
	if override.Prover.DockerImage != "" {
		effective.Prover.DockerImage = override.Prover.DockerImage
	}

	return &effective
}
