package sim

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"cargonav/internal/opt"
)

// Scenario bundles harness and engine knobs. Scenarios load from YAML or
// come from the built-in presets.
type Scenario struct {
	Name          string  `yaml:"name" json:"name"`
	Days          int     `yaml:"days" json:"days"`
	CancelProb    float64 `yaml:"cancelProb" json:"cancelProb"`
	Seed          int64   `yaml:"seed" json:"seed"`
	MaxIterations int     `yaml:"maxIterations" json:"maxIterations"`
	Patience      int     `yaml:"patience" json:"patience"`
	TabuTenure    int     `yaml:"tabuTenure" json:"tabuTenure"`

	Score opt.ScoreWeights `yaml:"scoreWeights" json:"scoreWeights"`
}

// DailyScenario is a single day with mild disruption.
func DailyScenario() Scenario {
	return Scenario{Name: "daily", Days: 1, CancelProb: 0.05, Seed: 1}
}

// WeeklyScenario is the standard 7-day run.
func WeeklyScenario() Scenario {
	return Scenario{Name: "weekly", Days: 7, CancelProb: 0.10, Seed: 1}
}

// CollapseScenario stresses the network with heavy cancellations.
func CollapseScenario() Scenario {
	return Scenario{Name: "collapse", Days: 7, CancelProb: 0.35, Seed: 1, MaxIterations: 400}
}

// Preset resolves a named preset.
func Preset(name string) (Scenario, error) {
	switch name {
	case "", "weekly":
		return WeeklyScenario(), nil
	case "daily":
		return DailyScenario(), nil
	case "collapse":
		return CollapseScenario(), nil
	}
	return Scenario{}, fmt.Errorf("unknown scenario: %s", name)
}

// LoadScenario reads a YAML scenario file.
func LoadScenario(path string) (Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Scenario{}, err
	}
	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Scenario{}, fmt.Errorf("parse scenario %s: %w", path, err)
	}
	return s, nil
}

// Harness builds a configured harness from the scenario.
func (s Scenario) Harness() *Harness {
	cfg := opt.DefaultConfig()
	if s.MaxIterations > 0 {
		cfg.MaxIterations = s.MaxIterations
	}
	if s.Patience > 0 {
		cfg.Patience = s.Patience
	}
	if s.TabuTenure > 0 {
		cfg.TabuTenure = s.TabuTenure
	}
	if s.Score != (opt.ScoreWeights{}) {
		cfg.Score = s.Score
	}
	h := NewHarness(cfg, s.CancelProb, s.Seed)
	if s.Days > 0 {
		h.Days = s.Days
	}
	return h
}
