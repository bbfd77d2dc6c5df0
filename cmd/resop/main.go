// Command resop searches for Pareto-optimal weekly release schedules for a
// single water-supply reservoir using NSGA-II, and writes the resulting front
// as CSV plus HTML charts.
package main

import (
	goflag "flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/gocarina/gocsv"
	"github.com/spf13/pflag"
	"k8s.io/klog/v2"

	"resop/pkg/config"
	"resop/pkg/multiobjective/algorithms"
	"resop/pkg/multiobjective/util"
	"resop/pkg/reservoir"
)

type frontRow struct {
	ID       int     `csv:"id"`
	F1       float64 `csv:"f1"`
	F2       float64 `csv:"f2"`
	Releases string  `csv:"releases"`
}

type trajectoryRow struct {
	Week    int     `csv:"week"`
	Release float64 `csv:"release"`
	Supply  float64 `csv:"supply"`
	Storage float64 `csv:"storage"`
	EnvFlow float64 `csv:"env_flow"`
	Spill   float64 `csv:"spill"`
}

func main() {
	configPath := pflag.String("config", "", "Path to the YAML run configuration (required)")
	outputDir := pflag.String("output", "out", "Directory for result files")
	seed := pflag.Uint64("seed", 0, "Override the configured random seed (0 = keep config value)")

	klog.InitFlags(nil)
	pflag.CommandLine.AddGoFlagSet(goflag.CommandLine)
	pflag.Parse()

	if err := run(*configPath, *outputDir, *seed); err != nil {
		klog.ErrorS(err, "run failed")
		os.Exit(1)
	}
}

func run(configPath, outputDir string, seed uint64) error {
	if configPath == "" {
		return fmt.Errorf("--config is required")
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if seed != 0 {
		cfg.Optimizer.Seed = seed
	}

	sys, err := cfg.BuildSystem()
	if err != nil {
		return err
	}
	problem, err := reservoir.NewProblem(sys, cfg.Reservoir.ReleaseMax, cfg.Objectives)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	nsga := algorithms.NewNSGAII(algorithms.NSGA2Config{
		PopulationSize:       cfg.Optimizer.PopulationSize,
		MaxGenerations:       cfg.Optimizer.Generations,
		CrossoverProbability: cfg.Optimizer.CrossoverProbability,
		MutationProbability:  cfg.Optimizer.MutationProbability,
		TournamentSize:       cfg.Optimizer.TournamentSize,
		ParallelEval:         cfg.Optimizer.ParallelEval,
		Seed:                 cfg.Optimizer.Seed,
	}, problem)

	finalPop, err := nsga.Run()
	if err != nil {
		return err
	}

	front := algorithms.FirstFront(finalPop)
	klog.InfoS("approximate Pareto set found",
		"frontSize", len(front),
		"objectives", strings.Join(cfg.Objectives, ","))

	if err := writeFrontCSV(front, filepath.Join(outputDir, "pareto.csv")); err != nil {
		return err
	}

	points := algorithms.ParetoFront(finalPop)
	if err := util.PlotResults(points, problem, algorithms.Name, filepath.Join(outputDir, "pareto.html")); err != nil {
		return fmt.Errorf("rendering Pareto chart: %w", err)
	}

	best := pickCompromise(front)
	tr := sys.Simulate(best.Solution.(*reservoir.Schedule).Releases)
	if err := writeTrajectoryCSV(best, tr, filepath.Join(outputDir, "best_trajectory.csv")); err != nil {
		return err
	}
	if err := plotTrajectory(sys, best.Solution.(*reservoir.Schedule), tr, filepath.Join(outputDir, "best_trajectory.html")); err != nil {
		return fmt.Errorf("rendering trajectory chart: %w", err)
	}

	klog.InfoS("results written", "dir", outputDir)
	return nil
}

// pickCompromise returns the front member with the smallest normalized
// objective sum, a simple balanced trade-off choice for the detail charts.
func pickCompromise(front []*algorithms.NSGAIISolution) *algorithms.NSGAIISolution {
	norm := algorithms.NormalizerForFront(front)
	best := front[0]
	bestScore := sum(norm.Normalize(front[0].Value))
	for _, sol := range front[1:] {
		if score := sum(norm.Normalize(sol.Value)); score < bestScore {
			best, bestScore = sol, score
		}
	}
	return best
}

func sum(values []float64) float64 {
	total := 0.0
	for _, v := range values {
		total += v
	}
	return total
}

func writeFrontCSV(front []*algorithms.NSGAIISolution, path string) error {
	rows := make([]frontRow, len(front))
	for i, sol := range front {
		schedule := sol.Solution.(*reservoir.Schedule)
		releases := make([]string, len(schedule.Releases))
		for t, r := range schedule.Releases {
			releases[t] = strconv.FormatFloat(r, 'f', 3, 64)
		}
		rows[i] = frontRow{
			ID:       i,
			F1:       sol.Value[0],
			F2:       sol.Value[1],
			Releases: strings.Join(releases, ";"),
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	if err := gocsv.Marshal(rows, f); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func writeTrajectoryCSV(sol *algorithms.NSGAIISolution, tr reservoir.Trajectory, path string) error {
	schedule := sol.Solution.(*reservoir.Schedule)
	rows := make([]trajectoryRow, len(schedule.Releases))
	for t := range rows {
		rows[t] = trajectoryRow{
			Week:    t,
			Release: schedule.Releases[t],
			Supply:  tr.Supply[t],
			Storage: tr.Storage[t+1],
			EnvFlow: tr.EnvFlow[t],
			Spill:   tr.Spill[t],
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	if err := gocsv.Marshal(rows, f); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// plotTrajectory renders supply vs demand and the storage path of one
// schedule as a line chart.
func plotTrajectory(sys *reservoir.System, schedule *reservoir.Schedule, tr reservoir.Trajectory, path string) error {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Best compromise schedule"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "week"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "volume"}),
	)

	weeks := make([]string, len(schedule.Releases))
	for t := range weeks {
		weeks[t] = strconv.Itoa(t)
	}

	line.SetXAxis(weeks).
		AddSeries("demand", lineData(sys.Demand)).
		AddSeries("supply", lineData(tr.Supply)).
		AddSeries("storage", lineData(tr.Storage[1:])).
		AddSeries("spill", lineData(tr.Spill))

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return line.Render(f)
}

func lineData(values []float64) []opts.LineData {
	data := make([]opts.LineData, len(values))
	for i, v := range values {
		data[i] = opts.LineData{Value: v}
	}
	return data
}
