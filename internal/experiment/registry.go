package experiment

import (
	"fmt"
	"sort"

	"github.com/JP-Ellis/desir/internal/metrics"
	"github.com/JP-Ellis/desir/internal/models"
	"github.com/JP-Ellis/desir/internal/ode"
	"github.com/JP-Ellis/desir/internal/tableau"
)

// Registry maps names from configs and CLI flags onto models and
// methods.
type Registry struct {
	models  map[string]func() ode.Field
	methods map[string]func() *tableau.Tableau
}

func NewRegistry() *Registry {
	r := &Registry{
		models:  make(map[string]func() ode.Field),
		methods: make(map[string]func() *tableau.Tableau),
	}

	r.models["decay"] = func() ode.Field { return models.NewDecay() }
	r.models["harmonic"] = func() ode.Field { return models.NewHarmonic() }
	r.models["pendulum"] = func() ode.Field { return models.NewPendulum() }
	r.models["double_pendulum"] = func() ode.Field { return models.NewDoublePendulum() }
	r.models["vanderpol"] = func() ode.Field { return models.NewVanDerPol() }
	r.models["lorenz"] = func() ode.Field { return models.NewLorenz() }
	r.models["robertson"] = func() ode.Field { return models.NewRobertson() }

	r.methods["euler"] = tableau.Euler
	r.methods["heun"] = tableau.Heun
	r.methods["midpoint"] = tableau.Midpoint
	r.methods["rk4"] = tableau.RK4
	r.methods["bs32"] = tableau.BS32
	r.methods["dopri5"] = tableau.DormandPrince
	r.methods["tsit5"] = tableau.Tsit5
	r.methods["backward_euler"] = tableau.BackwardEuler
	r.methods["implicit_midpoint"] = tableau.ImplicitMidpoint
	r.methods["trapezoidal"] = tableau.Trapezoidal
	r.methods["gauss4"] = tableau.GaussLegendre4

	return r
}

func (r *Registry) GetModel(name string) (ode.Field, error) {
	fn, ok := r.models[name]
	if !ok {
		return nil, fmt.Errorf("unknown model: %s", name)
	}
	return fn(), nil
}

func (r *Registry) GetMethod(name string) (*tableau.Tableau, error) {
	fn, ok := r.methods[name]
	if !ok {
		return nil, fmt.Errorf("unknown method: %s", name)
	}
	return fn(), nil
}

func (r *Registry) ListModels() []string {
	names := make([]string, 0, len(r.models))
	for name := range r.models {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) ListMethods() []string {
	names := make([]string, 0, len(r.methods))
	for name := range r.methods {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultMetrics returns the standard metric set for a field: energy
// drift when the field is conservative, plus escape detection.
func (r *Registry) DefaultMetrics(field ode.Field) []ode.Metric {
	return []ode.Metric{
		metrics.NewEnergyDrift(field),
		metrics.NewStability(1e6),
		metrics.NewAmplitude(),
	}
}
