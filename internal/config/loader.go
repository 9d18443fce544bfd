package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const EnvPrefix = "SISSIM"

// FlagKeys maps command-line flag names to configuration keys.
var FlagKeys = map[string]string{
	"growth-rate":      "model.growth_rate",
	"recovery-rate":    "model.recovery_rate",
	"population":       "model.population",
	"initial-infected": "model.initial_infected",
	"final-time":       "grid.final_time",
	"increment":        "grid.increment",
	"integrator":       "solver.integrator",
	"dt":               "solver.dt",
	"tol":              "solver.tolerance",
	"max-steps":        "solver.max_steps",
	"width":            "output.width",
	"height":           "output.height",
	"png":              "output.png",
	"svg":              "output.svg",
	"save":             "output.save",
	"summary":          "output.summary",
	"color":            "output.color",
	"data":             "output.data_dir",
}

// Resolve layers, lowest precedence first: built-in defaults, the named
// preset, the config file, SISSIM_* environment variables and flags the user
// explicitly set. Empty preset or path skip that layer; flags may be nil.
func Resolve(path, preset string, flags *pflag.FlagSet) (*Config, error) {
	base := DefaultConfig()
	if preset != "" {
		base = GetPreset(preset)
		if base == nil {
			return nil, fmt.Errorf("%w: unknown preset %q (available: %v)", ErrInvalidConfig, preset, ListPresets())
		}
	}

	v := viper.New()
	if err := setDefaults(v, base); err != nil {
		return nil, err
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if filepath.Ext(path) == "" {
			v.SetConfigType("yaml")
		}
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	if flags != nil {
		for name, key := range FlagKeys {
			f := flags.Lookup(name)
			if f == nil {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("binding flag %s: %w", name, err)
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setDefaults registers every leaf of cfg as a viper default so that
// environment variables are picked up for all keys.
func setDefaults(v *viper.Viper, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	var tree map[string]any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return err
	}
	for key, val := range flatten("", tree) {
		v.SetDefault(key, val)
	}
	return nil
}

func flatten(prefix string, tree map[string]any) map[string]any {
	out := make(map[string]any)
	for k, val := range tree {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if sub, ok := val.(map[string]any); ok {
			for sk, sv := range flatten(key, sub) {
				out[sk] = sv
			}
			continue
		}
		out[key] = val
	}
	return out
}

// Dump renders cfg as YAML.
func Dump(cfg *Config) (string, error) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
