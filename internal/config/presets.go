package config

// Presets are named starting points keyed by model, then scenario.
var Presets = map[string]map[string]*Config{
	"pendulum": {
		"small": {
			Model: "pendulum", Method: "dopri5", Adaptive: true, Duration: 20.0,
			InitState: []float64{0.2, 0.0},
		},
		"large": {
			Model: "pendulum", Method: "dopri5", Adaptive: true, Duration: 20.0,
			InitState: []float64{2.5, 0.0},
		},
		"spinning": {
			Model: "pendulum", Method: "tsit5", Adaptive: true, Duration: 30.0,
			InitState: []float64{0.1, 8.0},
		},
	},
	"double_pendulum": {
		"chaos": {
			Model: "double_pendulum", Method: "dopri5", Adaptive: true, Duration: 60.0,
			InitState: []float64{3.0, 3.0, 0.0, 0.0},
			Solver:    SolverConfig{AbsTol: 1e-9, RelTol: 1e-7},
		},
		"gentle": {
			Model: "double_pendulum", Method: "rk4", Duration: 30.0,
			InitState: []float64{0.3, 0.3, 0.0, 0.0},
			Solver:    SolverConfig{InitialStep: 0.005},
		},
	},
	"harmonic": {
		"default": {
			Model: "harmonic", Method: "implicit_midpoint", Duration: 50.0,
			InitState: []float64{1.0, 0.0},
			Solver:    SolverConfig{InitialStep: 0.05},
		},
	},
	"vanderpol": {
		"limit_cycle": {
			Model: "vanderpol", Method: "dopri5", Adaptive: true, Duration: 30.0,
			InitState: []float64{2.0, 0.0},
		},
		"stiff": {
			Model: "vanderpol", Method: "gauss4", Duration: 300.0,
			InitState: []float64{2.0, 0.0},
			Params:    map[string]float64{"mu": 100.0},
			Solver: SolverConfig{
				InitialStep:  0.001,
				ImplicitMode: "newton",
			},
		},
	},
	"lorenz": {
		"butterfly": {
			Model: "lorenz", Method: "tsit5", Adaptive: true, Duration: 40.0,
			InitState: []float64{1.0, 1.0, 1.0},
			Solver:    SolverConfig{AbsTol: 1e-9, RelTol: 1e-6},
		},
	},
	"robertson": {
		"kinetics": {
			Model: "robertson", Method: "backward_euler", Duration: 100.0,
			InitState: []float64{1.0, 0.0, 0.0},
			Solver: SolverConfig{
				InitialStep:  1e-4,
				ImplicitMode: "newton",
			},
		},
	},
}

func GetPreset(model, preset string) *Config {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	cfg, ok := modelPresets[preset]
	if !ok {
		return nil
	}
	return cfg
}

func ListPresets(model string) []string {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(modelPresets))
	for name := range modelPresets {
		names = append(names, name)
	}
	return names
}
