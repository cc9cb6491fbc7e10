// Package config loads and saves solve configurations as YAML.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/JP-Ellis/desir/internal/ode"
)

const (
	DefaultMethod   = "dopri5"
	DefaultModel    = "pendulum"
	DefaultDuration = 10.0
)

type Config struct {
	Model     string             `yaml:"model"`
	Method    string             `yaml:"method"`
	Adaptive  bool               `yaml:"adaptive"`
	Start     float64            `yaml:"start"`
	Duration  float64            `yaml:"duration"`
	InitState []float64          `yaml:"init_state,omitempty"`
	Params    map[string]float64 `yaml:"params,omitempty"`
	Solver    SolverConfig       `yaml:"solver"`
}

type SolverConfig struct {
	AbsTol      float64 `yaml:"abs_tol"`
	RelTol      float64 `yaml:"rel_tol"`
	InitialStep float64 `yaml:"initial_step"`
	MinStep     float64 `yaml:"min_step"`
	MaxStep     float64 `yaml:"max_step"`
	Safety      float64 `yaml:"safety"`
	MaxGrowth   float64 `yaml:"max_growth"`
	MinShrink   float64 `yaml:"min_shrink"`

	ImplicitMode    string  `yaml:"implicit_mode"`
	ImplicitMaxIter int     `yaml:"implicit_max_iter"`
	ImplicitTol     float64 `yaml:"implicit_tol"`
	StallLimit      int     `yaml:"stall_limit"`
}

func DefaultConfig() *Config {
	return &Config{
		Model:    DefaultModel,
		Method:   DefaultMethod,
		Adaptive: true,
		Duration: DefaultDuration,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ToSolverConfig maps the YAML fields onto solver settings, filling
// unset knobs from the solver defaults so partial files stay valid.
func (c *Config) ToSolverConfig() (ode.Config, error) {
	out := ode.DefaultConfig()
	s := c.Solver

	if s.AbsTol > 0 {
		out.AbsTol = s.AbsTol
	}
	if s.RelTol > 0 {
		out.RelTol = s.RelTol
	}
	if s.InitialStep > 0 {
		out.InitialStep = s.InitialStep
	}
	if s.MinStep > 0 {
		out.MinStep = s.MinStep
	}
	if s.MaxStep > 0 {
		out.MaxStep = s.MaxStep
	}
	if s.Safety > 0 {
		out.Safety = s.Safety
	}
	if s.MaxGrowth > 0 {
		out.MaxGrowth = s.MaxGrowth
	}
	if s.MinShrink > 0 {
		out.MinShrink = s.MinShrink
	}
	if s.ImplicitMaxIter > 0 {
		out.ImplicitMaxIter = s.ImplicitMaxIter
	}
	if s.ImplicitTol > 0 {
		out.ImplicitTol = s.ImplicitTol
	}
	if s.StallLimit > 0 {
		out.StallLimit = s.StallLimit
	}

	switch s.ImplicitMode {
	case "", "fixed-point", "fixed_point":
		out.ImplicitMode = ode.FixedPoint
	case "newton":
		out.ImplicitMode = ode.Newton
	default:
		return out, fmt.Errorf("%w: unknown implicit mode %q", ode.ErrInvalidConfig, s.ImplicitMode)
	}

	return out, out.Validate()
}
