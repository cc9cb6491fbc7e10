package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/JP-Ellis/desir/internal/config"
	"github.com/JP-Ellis/desir/internal/experiment"
	"github.com/JP-Ellis/desir/internal/solve"
	"github.com/JP-Ellis/desir/internal/storage"
	"github.com/JP-Ellis/desir/internal/viz"
)

var (
	dataDir    string
	method     string
	adaptive   bool
	start      float64
	duration   float64
	initState  []float64
	absTol     float64
	relTol     float64
	step       float64
	implMode   string
	configFile string
	preset     string
	xAxis      int
	yAxis      int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "desir",
		Short: "Runge-Kutta initial value problem solver",
		Long:  "desir integrates initial value problems with explicit and implicit Runge-Kutta methods.",
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".desir", "data directory")

	solveCmd := &cobra.Command{
		Use:   "solve [model]",
		Short: "solve an initial value problem",
		Args:  cobra.ExactArgs(1),
		RunE:  runSolve,
	}
	addSolveFlags(solveCmd)

	methodsCmd := &cobra.Command{
		Use:   "methods",
		Short: "list available Runge-Kutta methods",
		RunE:  listMethods,
	}

	modelsCmd := &cobra.Command{
		Use:   "models",
		Short: "list built-in models",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range experiment.NewRegistry().ListModels() {
				fmt.Println(name)
			}
			return nil
		},
	}

	presetsCmd := &cobra.Command{
		Use:   "presets [model]",
		Short: "list available presets for a model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			presets := config.ListPresets(args[0])
			if len(presets) == 0 {
				fmt.Printf("no presets for model: %s\n", args[0])
				return nil
			}
			fmt.Printf("presets for %s:\n", args[0])
			for _, p := range presets {
				fmt.Printf("  %s\n", p)
			}
			return nil
		},
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot run results",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	phaseCmd := &cobra.Command{
		Use:   "phase [run_id]",
		Short: "phase space plot",
		Args:  cobra.ExactArgs(1),
		RunE:  phasePlot,
	}
	phaseCmd.Flags().IntVar(&xAxis, "x-axis", 0, "state index for x-axis")
	phaseCmd.Flags().IntVar(&yAxis, "y-axis", 1, "state index for y-axis")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run samples to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run metadata to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	compareCmd := &cobra.Command{
		Use:   "compare [model] [method1] [method2] ...",
		Short: "compare methods on the same problem",
		Args:  cobra.MinimumNArgs(2),
		RunE:  compareMethods,
	}
	compareCmd.Flags().Float64Var(&duration, "time", 10.0, "duration")
	compareCmd.Flags().Float64Var(&step, "step", 0.01, "initial step size")
	compareCmd.Flags().BoolVar(&adaptive, "adaptive", false, "adaptive stepping")

	liveCmd := &cobra.Command{
		Use:   "live [model]",
		Short: "solve with a live terminal view",
		Args:  cobra.ExactArgs(1),
		RunE:  runLive,
	}
	addSolveFlags(liveCmd)

	rootCmd.AddCommand(solveCmd, methodsCmd, modelsCmd, presetsCmd, listCmd,
		plotCmd, phaseCmd, exportCSVCmd, exportJSONCmd, compareCmd, liveCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addSolveFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&method, "method", "dopri5", "integration method")
	cmd.Flags().BoolVar(&adaptive, "adaptive", true, "adaptive stepping")
	cmd.Flags().Float64Var(&start, "start", 0, "initial time")
	cmd.Flags().Float64Var(&duration, "time", 10.0, "duration")
	cmd.Flags().Float64SliceVar(&initState, "init", nil, "initial state (default: model's)")
	cmd.Flags().Float64Var(&absTol, "atol", 0, "absolute tolerance")
	cmd.Flags().Float64Var(&relTol, "rtol", 0, "relative tolerance")
	cmd.Flags().Float64Var(&step, "step", 0, "initial step size")
	cmd.Flags().StringVar(&implMode, "implicit-mode", "", "implicit stage solver: fixed-point or newton")
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
}

// buildConfig resolves preset, config file, and flags, in increasing
// precedence.
func buildConfig(cmd *cobra.Command, model string) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		p := config.GetPreset(model, preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(model))
		}
		*cfg = *p
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	cfg.Model = model
	if cmd.Flags().Changed("method") || cfg.Method == "" {
		cfg.Method = method
	}
	if cmd.Flags().Changed("adaptive") {
		cfg.Adaptive = adaptive
	}
	if cmd.Flags().Changed("start") {
		cfg.Start = start
	}
	if cmd.Flags().Changed("time") || cfg.Duration == 0 {
		cfg.Duration = duration
	}
	if cmd.Flags().Changed("init") {
		cfg.InitState = initState
	}
	if cmd.Flags().Changed("atol") {
		cfg.Solver.AbsTol = absTol
	}
	if cmd.Flags().Changed("rtol") {
		cfg.Solver.RelTol = relTol
	}
	if cmd.Flags().Changed("step") {
		cfg.Solver.InitialStep = step
	}
	if cmd.Flags().Changed("implicit-mode") {
		cfg.Solver.ImplicitMode = implMode
	}
	return cfg, nil
}

func runSolve(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args[0])
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	exp, err := experiment.New(cfg, experiment.NewRegistry())
	if err != nil {
		return err
	}

	fmt.Printf("solving %s with %s...\n", cfg.Model, cfg.Method)
	begin := time.Now()

	result, err := exp.Run(context.Background())
	if err != nil {
		return err
	}
	elapsed := time.Since(begin)

	solverCfg, err := cfg.ToSolverConfig()
	if err != nil {
		return err
	}
	runID, err := st.Save(cfg.Model, cfg.Method, cfg.Adaptive, solverCfg, cfg.Start, cfg.Duration, result)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("accepted steps: %d, rejected: %d, field evals: %d\n",
		result.Stats.Steps, result.Stats.Rejected, result.Stats.FieldEvals)
	if len(result.Metrics) > 0 {
		fmt.Println("\nmetrics:")
		for name, val := range result.Metrics {
			fmt.Printf("  %s: %.6g\n", name, val)
		}
	}
	return nil
}

func listMethods(cmd *cobra.Command, args []string) error {
	reg := experiment.NewRegistry()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tORDER\tSTAGES\tSTRUCTURE\tEMBEDDED")
	for _, name := range reg.ListMethods() {
		tab, err := reg.GetMethod(name)
		if err != nil {
			continue
		}
		embedded := "no"
		if tab.HasEmbedded() {
			embedded = "yes"
		}
		fmt.Fprintf(w, "%s\t%d\t%d\t%s\t%s\n",
			name, tab.Order(), tab.Stages(), tab.Structure(), embedded)
	}
	return w.Flush()
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tMODEL\tMETHOD\tTIME\tDURATION\tSTEPS\tREJECTED")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.2fs\t%d\t%d\n",
			run.ID,
			run.Model,
			run.Method,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Duration,
			run.Steps,
			run.Rejected,
		)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	_, states, err := st.LoadSamples(args[0])
	if err != nil {
		return err
	}
	if len(states) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("model: %s (%s)\n", meta.Model, meta.Method)
	fmt.Printf("samples: %d\n\n", len(states))

	numVars := len(states[0])
	if numVars > 6 {
		numVars = 6
	}
	for c := 0; c < numVars; c++ {
		data := make([]float64, len(states))
		for i := range states {
			if c < len(states[i]) {
				data[i] = states[i][c]
			}
		}
		fmt.Println(asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(fmt.Sprintf("y%d vs sample", c)),
		))
		fmt.Println()
	}
	return nil
}

func phasePlot(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	_, states, err := st.LoadSamples(args[0])
	if err != nil {
		return err
	}
	if len(states) == 0 {
		return fmt.Errorf("no data to plot")
	}
	if len(states[0]) <= xAxis || len(states[0]) <= yAxis {
		return fmt.Errorf("state dimension too small for selected axes")
	}

	fmt.Printf("phase space plot: %s\n", meta.ID)
	fmt.Printf("model: %s, x-axis: y%d, y-axis: y%d\n\n", meta.Model, xAxis, yAxis)
	fmt.Println(viz.PhasePortrait(states, xAxis, yAxis, 70, 22))
	return nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	times, states, err := st.LoadSamples(args[0])
	if err != nil {
		return err
	}
	if len(states) == 0 {
		return fmt.Errorf("no data to export")
	}

	w := csv.NewWriter(os.Stdout)
	defer w.Flush()

	header := []string{"time"}
	for i := range states[0] {
		header = append(header, fmt.Sprintf("y%d", i))
	}
	if err := w.Write(header); err != nil {
		return err
	}
	for i := range states {
		row := []string{strconv.FormatFloat(times[i], 'g', -1, 64)}
		for _, val := range states[i] {
			row = append(row, strconv.FormatFloat(val, 'g', -1, 64))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func compareMethods(cmd *cobra.Command, args []string) error {
	model := args[0]
	methods := args[1:]
	reg := experiment.NewRegistry()

	fmt.Printf("comparing methods for %s (duration=%.1fs)\n\n", model, duration)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "METHOD\tFINAL_Y0\tSTEPS\tREJECTED\tEVALS\tENERGY_DRIFT\tTIME")

	for _, name := range methods {
		cfg := config.DefaultConfig()
		cfg.Model = model
		cfg.Method = name
		cfg.Adaptive = adaptive
		cfg.Duration = duration
		if step > 0 {
			cfg.Solver.InitialStep = step
		}

		exp, err := experiment.New(cfg, reg)
		if err != nil {
			fmt.Fprintf(w, "%s\terror: %v\n", name, err)
			continue
		}

		begin := time.Now()
		result, err := exp.Run(context.Background())
		elapsed := time.Since(begin)
		if err != nil {
			fmt.Fprintf(w, "%s\terror: %v\n", name, err)
			continue
		}

		finalY0 := 0.0
		if final, ok := result.Final(); ok && len(final.Y) > 0 {
			finalY0 = final.Y[0]
		}
		fmt.Fprintf(w, "%s\t%.6f\t%d\t%d\t%d\t%.2e\t%v\n",
			name, finalY0,
			result.Stats.Steps, result.Stats.Rejected, result.Stats.FieldEvals,
			result.Metrics["energy_drift"], elapsed)
	}
	return w.Flush()
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args[0])
	if err != nil {
		return err
	}

	reg := experiment.NewRegistry()
	startSession := func() (*solve.Session, error) {
		exp, err := experiment.New(cfg, reg)
		if err != nil {
			return nil, err
		}
		return exp.Start()
	}

	m, err := viz.NewMonitor(fmt.Sprintf("%s / %s", cfg.Model, cfg.Method), startSession)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(m).Run()
	return err
}
