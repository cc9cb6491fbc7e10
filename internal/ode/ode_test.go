package ode

import (
	"errors"
	"math"
	"testing"
)

func TestStateClone(t *testing.T) {
	s := State{1, 2, 3}
	c := s.Clone()
	c[0] = 99
	if s[0] != 1 {
		t.Error("clone shares memory with original")
	}
}

func TestStateIsValid(t *testing.T) {
	tests := []struct {
		name string
		s    State
		want bool
	}{
		{"finite", State{1, -2, 0}, true},
		{"empty", State{}, true},
		{"nan", State{1, math.NaN()}, false},
		{"positive inf", State{math.Inf(1)}, false},
		{"negative inf", State{math.Inf(-1)}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.s.IsValid(); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestStateArithmetic(t *testing.T) {
	a := State{1, 2}
	b := State{3, -1}

	if got := a.Add(b); got[0] != 4 || got[1] != 1 {
		t.Errorf("add: got %v", got)
	}
	if got := a.Sub(b); got[0] != -2 || got[1] != 3 {
		t.Errorf("sub: got %v", got)
	}
	if got := a.Scale(2); got[0] != 2 || got[1] != 4 {
		t.Errorf("scale: got %v", got)
	}

	c := a.Clone()
	c.AddScaled(0.5, b)
	if c[0] != 2.5 || c[1] != 1.5 {
		t.Errorf("addscaled: got %v", c)
	}
	if a[0] != 1 {
		t.Error("addscaled mutated a different state")
	}

	if got := (State{3, 4}).Norm(); math.Abs(got-5) > 1e-15 {
		t.Errorf("norm: got %g", got)
	}
	if got := (State{-3, 2}).AbsMax(); got != 3 {
		t.Errorf("absmax: got %g", got)
	}
}

func TestConfigValidate(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config must validate: %v", err)
	}

	mutate := func(fn func(*Config)) Config {
		c := DefaultConfig()
		fn(&c)
		return c
	}

	tests := []struct {
		name string
		cfg  Config
	}{
		{"zero atol", mutate(func(c *Config) { c.AbsTol = 0 })},
		{"negative rtol", mutate(func(c *Config) { c.RelTol = -1 })},
		{"zero initial step", mutate(func(c *Config) { c.InitialStep = 0 })},
		{"zero min step", mutate(func(c *Config) { c.MinStep = 0 })},
		{"max below min", mutate(func(c *Config) { c.MaxStep = c.MinStep / 2 })},
		{"safety one", mutate(func(c *Config) { c.Safety = 1 })},
		{"growth below one", mutate(func(c *Config) { c.MaxGrowth = 0.9 })},
		{"shrink one", mutate(func(c *Config) { c.MinShrink = 1 })},
		{"zero iter cap", mutate(func(c *Config) { c.ImplicitMaxIter = 0 })},
		{"zero implicit tol", mutate(func(c *Config) { c.ImplicitTol = 0 })},
		{"zero stall limit", mutate(func(c *Config) { c.StallLimit = 0 })},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestErrorWrapping(t *testing.T) {
	inner := errors.New("boom")

	fe := &FieldError{T: 1.5, Wrapped: inner}
	if !errors.Is(fe, inner) {
		t.Error("field error does not unwrap")
	}

	se := &StepError{Step: 3, Time: 1.5, Wrapped: ErrStalled}
	if !errors.Is(se, ErrStalled) {
		t.Error("step error does not unwrap")
	}
}

func TestImplicitModeString(t *testing.T) {
	if FixedPoint.String() != "fixed-point" || Newton.String() != "newton" {
		t.Error("unexpected mode names")
	}
}
