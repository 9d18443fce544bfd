package config

import "sort"

type Preset struct {
	Description string
	Model       ModelConfig
	Grid        GridConfig
}

var Presets = map[string]Preset{
	"hubei": {
		Description: "Hubei 2020 fit, population and infected in thousands",
		Model: ModelConfig{
			GrowthRate: 0.2587, RecoveryRate: 0.045, Population: 58500, InitialInfected: 1.619,
		},
		Grid: GridConfig{FinalTime: 90, Increment: 1},
	},
	"die-out": {
		Description: "recovery outpaces infection (R0 < 1), infection decays to zero",
		Model: ModelConfig{
			GrowthRate: 0.04, RecoveryRate: 0.1, Population: 1000, InitialInfected: 50,
		},
		Grid: GridConfig{FinalTime: 120, Increment: 1},
	},
	"threshold": {
		Description: "R0 = 1 exactly, the closed form degenerates and errors are undefined",
		Model: ModelConfig{
			GrowthRate: 0.1, RecoveryRate: 0.1, Population: 1000, InitialInfected: 10,
		},
		Grid: GridConfig{FinalTime: 60, Increment: 1},
	},
	"fast": {
		Description: "fast outbreak in a small town, half-day resolution",
		Model: ModelConfig{
			GrowthRate: 0.6, RecoveryRate: 0.1, Population: 10000, InitialInfected: 1,
		},
		Grid: GridConfig{FinalTime: 60, Increment: 0.5},
	},
}

// GetPreset returns the default configuration with the named preset applied,
// or nil when no such preset exists.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	cfg.Model = p.Model
	cfg.Grid = p.Grid
	return cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
