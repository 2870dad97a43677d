package main

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/seaglass/internal/analysis"
	"github.com/san-kum/seaglass/internal/automation"
	"github.com/san-kum/seaglass/internal/export"
	"github.com/san-kum/seaglass/internal/metrics"
	"github.com/san-kum/seaglass/internal/scene"
	"github.com/san-kum/seaglass/internal/storage"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	steps        int
	scenarioPath string
	sweepMin     float64
	sweepMax     float64
	sweepCount   int
	sweepWorkers int
	outPath      string
)

func runHeadless(cmd *cobra.Command, args []string) error {
	cfg, err := loadProfile()
	if err != nil {
		return err
	}
	w, h := width, height
	var scen *automation.Scenario
	if scenarioPath != "" {
		scen, err = automation.LoadScenario(scenarioPath)
		if err != nil {
			return err
		}
		if cfg, err = scen.Config(cfg); err != nil {
			return err
		}
		if scen.Width > 0 && scen.Height > 0 {
			w, h = scen.Width, scen.Height
		}
	}

	log, err := newLogger(false)
	if err != nil {
		return err
	}
	defer log.Sync()

	sc, err := scene.New(scene.Options{Config: cfg, Logger: log, Width: w, Height: h})
	if err != nil {
		return err
	}
	defer sc.Close()
	if err := sc.Load(cmd.Context()); err != nil {
		return err
	}

	ms := metrics.Standard(cfg.Field)
	var trace []storage.Sample
	record := func(frame int, sc *scene.Scene) {
		states := sc.States()
		for _, m := range ms {
			m.Observe(states)
		}
		trace = append(trace, storage.Sample{Step: frame, States: states})
	}

	fmt.Printf("running %s profile...\n", cfg.Profile)
	start := time.Now()
	name := ""
	if scen != nil {
		name = scen.Name
		rep, err := automation.Run(cmd.Context(), sc, scen, record, log)
		if err != nil {
			return err
		}
		log.Info("scenario done", zap.String("scenario", scen.Name), zap.Int("taps", rep.Taps), zap.Int("pushes", rep.Pushes))
	} else {
		for i := 1; i <= steps; i++ {
			if err := cmd.Context().Err(); err != nil {
				return err
			}
			sc.Advance(1)
			record(i, sc)
		}
	}
	elapsed := time.Since(start)

	values := make(map[string]float64, len(ms))
	for _, m := range ms {
		values[m.Name()] = m.Value()
	}
	meta := storage.RunMetadata{
		Profile:   cfg.Profile,
		Timestamp: time.Now(),
		Seed:      cfg.Seed,
		Steps:     len(trace),
		StepHz:    cfg.Timing.StepHz,
		Bodies:    len(sc.States()),
		Width:     w,
		Height:    h,
		Scenario:  name,
		Metrics:   values,
	}
	dir, err := dataDir()
	if err != nil {
		return err
	}
	st := storage.New(dir)
	if err := st.Init(); err != nil {
		return err
	}
	runID, err := st.Save(meta, trace)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps: %d\n", len(trace))
	fmt.Println("\nmetrics:")
	names := make([]string, 0, len(values))
	for k := range values {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, k := range names {
		fmt.Printf("  %s: %.6f\n", k, values[k])
	}
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	dir, err := dataDir()
	if err != nil {
		return err
	}
	st := storage.New(dir)
	runs, err := st.List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPROFILE\tTIME\tSTEPS\tSHARDS\tMEAN SPEED\tSCENARIO")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%.3f\t%s\n",
			run.ID,
			run.Profile,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Steps,
			run.Bodies,
			run.Metrics["mean_speed"],
			run.Scenario,
		)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	dir, err := dataDir()
	if err != nil {
		return err
	}
	st := storage.New(dir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	trace, err := st.LoadTrace(args[0])
	if err != nil {
		return err
	}
	if len(trace) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("profile: %s\n", meta.Profile)
	fmt.Printf("samples: %d\n\n", len(trace))

	kinetic := make([]float64, len(trace))
	for i, s := range trace {
		kinetic[i] = metrics.Measure(s.States).Kinetic
	}
	for _, series := range []struct {
		caption string
		data    []float64
	}{
		{"mean speed", storage.MeanSpeeds(trace)},
		{"kinetic energy", kinetic},
	} {
		fmt.Println(asciigraph.Plot(series.data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(series.caption),
		))
		fmt.Println()
	}
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	dir, err := dataDir()
	if err != nil {
		return err
	}
	st := storage.New(dir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	trace, err := st.LoadTrace(args[0])
	if err != nil {
		return err
	}
	if len(trace) < 4 {
		return fmt.Errorf("not enough samples to analyze")
	}

	fmt.Printf("drift spectrum: %s\n", meta.ID)
	fmt.Printf("profile: %s\n\n", meta.Profile)

	ps := analysis.Spectrum(storage.MeanSpeeds(trace), meta.StepHz)
	plot := ps.Power[1:max(len(ps.Power)/4, 2)]
	fmt.Println(asciigraph.Plot(plot,
		asciigraph.Height(15),
		asciigraph.Width(80),
		asciigraph.Caption("power spectrum (mean speed)"),
	))
	fmt.Println()

	freq, power := ps.Dominant()
	fmt.Printf("dominant frequency: %.3f hz (power %.4g)\n", freq, power)
	if freq > 0 {
		fmt.Printf("period: %.3f s\n", 1.0/freq)
	}
	fmt.Printf("spectral flatness: %.3f\n", ps.Flatness())
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	dir, err := dataDir()
	if err != nil {
		return err
	}
	st := storage.New(dir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	trace, err := st.LoadTrace(args[0])
	if err != nil {
		return err
	}

	if outPath == "" {
		return storage.ExportJSON(os.Stdout, *meta, trace)
	}
	f, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := storage.ExportJSON(f, *meta, trace); err != nil {
		return err
	}
	fmt.Printf("exported %s to %s\n", meta.ID, outPath)
	return nil
}

func snapshot(cmd *cobra.Command, args []string) error {
	cfg, err := loadProfile()
	if err != nil {
		return err
	}
	log, err := newLogger(false)
	if err != nil {
		return err
	}
	defer log.Sync()
	store, release, err := openStore(log)
	if err != nil {
		return err
	}
	defer release()

	proj := export.NewSVGProjector()
	sc, err := scene.New(scene.Options{
		Config:    cfg,
		Owner:     settings.GetString("owner"),
		Store:     store,
		Projector: proj,
		Logger:    log,
		Width:     width,
		Height:    height,
	})
	if err != nil {
		return err
	}
	defer sc.Close()
	if err := sc.Load(cmd.Context()); err != nil {
		return err
	}
	sc.Advance(steps)

	shards := make(map[string]export.Shard)
	radius := make(map[string]float64)
	for _, s := range sc.States() {
		radius[s.ID] = s.Radius
	}
	for _, n := range sc.Notes() {
		shards[n.ID] = export.Shard{Radius: radius[n.ID], Color: n.Color, Label: n.Text}
	}

	f, err := os.Create(args[0])
	if err != nil {
		return err
	}
	defer f.Close()
	err = proj.WriteSVG(f, export.Snapshot{
		Width:   width,
		Height:  height,
		Area:    sc.Area(),
		Walls:   sc.Walls(),
		Shards:  shards,
		Ripples: sc.Ripples(),
	})
	if err != nil {
		return err
	}
	fmt.Printf("wrote %s (%d shards after %d steps)\n", args[0], len(shards), steps)
	return nil
}

func sweep(cmd *cobra.Command, args []string) error {
	cfg, err := loadProfile()
	if err != nil {
		return err
	}
	log, err := newLogger(false)
	if err != nil {
		return err
	}
	defer log.Sync()

	results, err := automation.RunSweep(cmd.Context(), cfg, automation.Sweep{
		Param:   args[0],
		Min:     sweepMin,
		Max:     sweepMax,
		Count:   sweepCount,
		Frames:  steps,
		Workers: sweepWorkers,
	}, log)
	if err != nil {
		return fmt.Errorf("%w (known: %v)", err, automation.SweepParams())
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "VALUE\tMEAN SPEED\tKINETIC\tIN BAND")
	for _, r := range results {
		fmt.Fprintf(w, "%.4g\t%.3f\t%.4f\t%.0f%%\n", r.Value, r.MeanSpeed, r.Kinetic, r.InBand*100)
	}
	return w.Flush()
}

func listScenarios(cmd *cobra.Command, args []string) error {
	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}
	paths, err := automation.FindScenarios(dir)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		fmt.Println("no scenarios found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "FILE\tNAME\tPROFILE\tSTEPS\tDESCRIPTION")
	for _, p := range paths {
		scen, err := automation.LoadScenario(p)
		if err != nil {
			fmt.Fprintf(w, "%s\t-\t-\t-\t%v\n", p, err)
			continue
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n", p, scen.Name, scen.Profile, len(scen.Steps), scen.Description)
	}
	return w.Flush()
}
