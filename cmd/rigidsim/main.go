package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/rigidsim/internal/compute"
	"github.com/san-kum/rigidsim/internal/config"
	"github.com/san-kum/rigidsim/internal/export"
	"github.com/san-kum/rigidsim/internal/metrics"
	"github.com/san-kum/rigidsim/internal/sim"
	"github.com/san-kum/rigidsim/internal/storage"
	"github.com/san-kum/rigidsim/internal/tui"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	dataDir     string
	verbose     bool
	configFile  string
	backendName string
	modeName    string
	steps       int
	dt          float64
	recordEvery int
	noSave      bool
	plotAfter   bool
	column      string
	outPath     string
	tolerance   float64
	svgBodies   []int
	svgSize     int
)

var log = logrus.New()

func main() {
	rootCmd := &cobra.Command{
		Use:   "rigidsim",
		Short: "rigid body simulation over pluggable compute backends",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			log.Formatter = &logrus.TextFormatter{ForceColors: true}
			if verbose {
				log.Level = logrus.DebugLevel
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return tui.RunWatch(config.ListPresets(), tui.PresetBuilder(sim.WithLogger(log)), "")
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".rigidsim", "data directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	runCmd := &cobra.Command{
		Use:   "run [scene]",
		Short: "run a preset or config scene and save the trajectory",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runScene,
	}
	sceneFlags(runCmd)
	runCmd.Flags().IntVar(&recordEvery, "record-every", 1, "record every n steps")
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")
	runCmd.Flags().BoolVar(&plotAfter, "plot", false, "plot body heights when done")

	parityCmd := &cobra.Command{
		Use:   "parity [scene]",
		Short: "compare reference and device stepping",
		Args:  cobra.MaximumNArgs(1),
		RunE:  parityScene,
	}
	sceneFlags(parityCmd)
	parityCmd.Flags().Float64Var(&tolerance, "tol", 1e-3, "max position difference")

	kernelsCmd := &cobra.Command{
		Use:   "kernels",
		Short: "list compute kernels",
		RunE:  listKernels,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list preset scenes",
		RunE:  listPresets,
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a recorded trajectory",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&column, "column", "", "column to plot (default: height of each body)")

	exportCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export a run as json",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportCmd.Flags().StringVarP(&outPath, "output", "o", "", "output file (default stdout)")

	svgCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "draw body paths of a run as svg",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	svgCmd.Flags().StringVarP(&outPath, "output", "o", "", "output file (default stdout)")
	svgCmd.Flags().IntSliceVar(&svgBodies, "bodies", nil, "body indices (default: all)")
	svgCmd.Flags().IntVar(&svgSize, "size", 600, "image size in pixels")

	benchCmd := &cobra.Command{
		Use:   "bench [scene]",
		Short: "benchmark every backend on a scene",
		Args:  cobra.MaximumNArgs(1),
		RunE:  benchScene,
	}
	sceneFlags(benchCmd)

	watchCmd := &cobra.Command{
		Use:   "watch [scene]",
		Short: "watch a scene in the terminal",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			scene := ""
			if len(args) > 0 {
				scene = args[0]
			}
			return tui.RunWatch(config.ListPresets(), tui.PresetBuilder(), scene)
		},
	}

	rootCmd.AddCommand(runCmd, parityCmd, kernelsCmd, presetsCmd, listCmd, plotCmd, exportCmd, svgCmd, benchCmd, watchCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func sceneFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "scene config file (yaml)")
	cmd.Flags().StringVar(&backendName, "backend", "", "compute backend ("+strings.Join(compute.Names(), ", ")+")")
	cmd.Flags().StringVar(&modeName, "mode", "", "stepping mode (device, reference)")
	cmd.Flags().IntVar(&steps, "steps", 0, "number of steps")
	cmd.Flags().Float64Var(&dt, "dt", 0, "timestep")
}

// loadScene resolves the scene from --config or a preset name, then applies
// flag overrides.
func loadScene(args []string) (*config.Config, error) {
	var cfg *config.Config
	switch {
	case configFile != "":
		c, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = c
	case len(args) > 0:
		cfg = config.GetPreset(args[0])
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", args[0], config.ListPresets())
		}
	default:
		cfg = config.GetPreset("drop")
	}

	if cfg.Name == "" {
		cfg.Name = "scene"
	}
	if backendName != "" {
		cfg.Backend = backendName
	}
	if modeName != "" {
		cfg.Mode = modeName
	}
	if steps > 0 {
		cfg.Steps = steps
	}
	if dt > 0 {
		cfg.Params.Dt = dt
	}
	return cfg, nil
}

func runScene(cmd *cobra.Command, args []string) error {
	cfg, err := loadScene(args)
	if err != nil {
		return err
	}
	w, err := config.Build(cfg, sim.WithLogger(log))
	if err != nil {
		return err
	}
	for _, m := range metrics.Standard() {
		w.AddMetric(m)
	}
	rec := storage.NewRecorder(recordEvery)
	rec.Record(w)
	w.AddObserver(rec)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	log.WithFields(logrus.Fields{
		"scene":   cfg.Name,
		"backend": w.Backend().Name(),
		"mode":    w.Mode(),
		"bodies":  w.NumBodies(),
		"joints":  w.NumJoints(),
	}).Info("running")
	start := time.Now()

	result, err := w.Run(ctx, cfg.Steps)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	fmt.Printf("completed in %v\n", elapsed)
	if !noSave {
		st := storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		runID, err := st.Save(storage.RunMetadata{
			Scene:   cfg.Name,
			Backend: w.Backend().Name(),
			Mode:    w.Mode().String(),
			Dt:      w.Params().Dt,
			Steps:   result.StepsTaken,
			Bodies:  w.NumBodies(),
			Joints:  w.NumJoints(),
			Digest:  storage.FormatDigest(result.Digest),
			Metrics: result.Metrics,
		}, rec.Trajectory())
		if err != nil {
			return err
		}
		fmt.Printf("run id: %s\n", runID)
	}
	fmt.Printf("steps: %d\n", result.StepsTaken)
	fmt.Printf("digest: %s\n", storage.FormatDigest(result.Digest))
	fmt.Println("\nmetrics:")
	for name, val := range result.Metrics {
		fmt.Printf("  %s: %.6f\n", name, val)
	}

	if plotAfter {
		fmt.Println()
		return plotColumns(rec.Trajectory(), heightColumns(w.NumBodies()))
	}
	return nil
}

func heightColumns(bodies int) []string {
	cols := make([]string, 0, 6)
	for i := 0; i < bodies && len(cols) < 6; i++ {
		cols = append(cols, fmt.Sprintf("b%d_y", i))
	}
	return cols
}

func plotColumns(traj *storage.Trajectory, cols []string) error {
	for _, name := range cols {
		data := traj.Column(name)
		if data == nil {
			return fmt.Errorf("no column %q", name)
		}
		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(name+" vs step"),
		)
		fmt.Println(graph)
		fmt.Println()
	}
	return nil
}

func parityScene(cmd *cobra.Command, args []string) error {
	cfg, err := loadScene(args)
	if err != nil {
		return err
	}
	ref, err := config.Build(cfg, sim.WithLogger(log), sim.WithMode(sim.ModeReference))
	if err != nil {
		return err
	}
	dev, err := config.Build(cfg, sim.WithLogger(log), sim.WithMode(sim.ModeDevice))
	if err != nil {
		return err
	}

	worst, worstStep, worstBody := 0.0, 0, -1
	for s := 1; s <= cfg.Steps; s++ {
		if err := ref.Step(); err != nil {
			return err
		}
		if err := dev.Step(); err != nil {
			return err
		}
		a, b := ref.Bodies(), dev.Bodies()
		for i := range a {
			if d := a[i].Position.Sub(b[i].Position).Len(); d > worst {
				worst, worstStep, worstBody = d, s, i
			}
		}
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "MODE\tBACKEND\tSTEPS\tDIGEST")
	fmt.Fprintf(w, "reference\t-\t%d\t%s\n", ref.Steps(), storage.FormatDigest(ref.Digest()))
	fmt.Fprintf(w, "device\t%s\t%d\t%s\n", dev.Backend().Name(), dev.Steps(), storage.FormatDigest(dev.Digest()))
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Printf("\nmax position difference: %.3g (body %d, step %d)\n", worst, worstBody, worstStep)
	if worst > tolerance || math.IsNaN(worst) {
		return fmt.Errorf("parity exceeded tolerance %.3g", tolerance)
	}
	return nil
}

func listKernels(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tCLASS\tINPUTS\tOUTPUTS")
	for _, k := range compute.Kernels() {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", k.ID, k.Name, k.Class, bindingNames(k.Inputs), bindingNames(k.Outputs))
	}
	return w.Flush()
}

func bindingNames(bs []compute.Binding) string {
	names := make([]string, len(bs))
	for i, b := range bs {
		names[i] = b.Name
	}
	return strings.Join(names, ",")
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tBODIES\tJOINTS\tSTEPS\tDT\tBROAD PHASE")
	for _, name := range config.ListPresets() {
		cfg := config.GetPreset(name)
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%.4fs\t%s\n",
			name, len(cfg.Bodies), len(cfg.Joints), cfg.Steps, cfg.Params.Dt, cfg.Params.BroadPhase)
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
	fmt.Fprintln(w, "ID\tSCENE\tTIME\tSTEPS\tDT\tBACKEND\tMODE\tDIGEST")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%.4fs\t%s\t%s\t%s\n",
			run.ID,
			run.Scene,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Steps,
			run.Dt,
			run.Backend,
			run.Mode,
			run.Digest,
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	traj, err := st.LoadTrajectory(runID)
	if err != nil {
		return err
	}

	if len(traj.States) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("scene: %s\n", meta.Scene)
	fmt.Printf("samples: %d\n\n", len(traj.States))

	cols := []string{column}
	if column == "" {
		cols = heightColumns(meta.Bodies)
	}
	return plotColumns(traj, cols)
}

func exportJSON(cmd *cobra.Command, args []string) error {
	runID := args[0]
	st := storage.New(dataDir)

	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	traj, err := st.LoadTrajectory(runID)
	if err != nil {
		return err
	}

	if outPath == "" {
		return storage.ExportJSONTo(os.Stdout, *meta, traj)
	}
	if err := storage.ExportJSON(outPath, *meta, traj); err != nil {
		return err
	}
	fmt.Printf("exported to %s\n", outPath)
	return nil
}

func exportSVG(cmd *cobra.Command, args []string) error {
	runID := args[0]
	st := storage.New(dataDir)

	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	traj, err := st.LoadTrajectory(runID)
	if err != nil {
		return err
	}

	bodies := svgBodies
	if len(bodies) == 0 {
		for i := 0; i < meta.Bodies; i++ {
			bodies = append(bodies, i)
		}
	}
	svg, err := export.TrajectorySVG(traj, bodies, svgSize, svgSize)
	if err != nil {
		return err
	}

	if outPath == "" {
		fmt.Println(svg)
		return nil
	}
	if err := os.WriteFile(outPath, []byte(svg), 0644); err != nil {
		return err
	}
	fmt.Printf("exported to %s\n", outPath)
	return nil
}

func benchScene(cmd *cobra.Command, args []string) error {
	cfg, err := loadScene(args)
	if err != nil {
		return err
	}

	fmt.Printf("benchmarking %s (%d steps)\n\n", cfg.Name, cfg.Steps)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "BACKEND\tMODE\tSTEPS\tTIME\tSTEPS/SEC\tDIGEST")

	for _, name := range compute.Names() {
		for _, mode := range []sim.Mode{sim.ModeDevice, sim.ModeReference} {
			be, err := compute.New(name)
			if err != nil {
				return err
			}
			world, err := config.Build(cfg, sim.WithLogger(log), sim.WithBackend(be), sim.WithMode(mode))
			if err != nil {
				return err
			}

			start := time.Now()
			result, err := world.Run(context.Background(), cfg.Steps)
			if err != nil {
				return err
			}
			elapsed := time.Since(start)
			be.Cleanup()

			fmt.Fprintf(w, "%s\t%s\t%d\t%v\t%.0f\t%s\n",
				name, mode, result.StepsTaken, elapsed,
				float64(result.StepsTaken)/elapsed.Seconds(), storage.FormatDigest(result.Digest))
		}
	}

	return w.Flush()
}
