package main

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/thalesfsp/gbtune"
	"github.com/thalesfsp/gbtune/boost"
	"github.com/thalesfsp/gbtune/config"
	"github.com/thalesfsp/gbtune/cv"
	"github.com/thalesfsp/gbtune/dataset"
	"github.com/thalesfsp/gbtune/plot"
	"github.com/thalesfsp/gbtune/store"
	"github.com/thalesfsp/gbtune/tui"
)

var (
	dataDir string
	// Config file
	configFile string
	// Dataset selection
	csvPath  string
	labelCol int
	samples  int
	features int
	classes  int
	dataSeed int64
	// Optimizer settings
	iterations  int
	initSamples int
	candidates  int
	acquisition string
	beta        float64
	xi          float64
	seed        int64
	// Cross-validation settings
	folds      int
	workers    int
	stratified bool
	// Live view
	live bool
)

var (
	titleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true)
	paramStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(20)
	valueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "gbtune",
		Short: "bayesian hyperparameter tuning for gradient boosting",
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".gbtune", "data directory")

	tuneCmd := &cobra.Command{
		Use:   "tune",
		Short: "run a tuning session",
		RunE:  runTune,
	}
	tuneCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	tuneCmd.Flags().StringVar(&csvPath, "csv", "", "dataset CSV path (default: synthetic)")
	tuneCmd.Flags().IntVar(&labelCol, "label-col", -1, "label column index (-1 for last)")
	tuneCmd.Flags().IntVar(&samples, "samples", config.DefaultSamples, "synthetic dataset size")
	tuneCmd.Flags().IntVar(&features, "features", config.DefaultFeatures, "synthetic feature count")
	tuneCmd.Flags().IntVar(&classes, "classes", config.DefaultClasses, "synthetic class count")
	tuneCmd.Flags().Int64Var(&dataSeed, "data-seed", 1, "synthetic dataset seed")
	tuneCmd.Flags().IntVar(&iterations, "iterations", config.DefaultIterations, "model-guided evaluations")
	tuneCmd.Flags().IntVar(&initSamples, "initial-samples", config.DefaultInitialSamples, "random warmup evaluations")
	tuneCmd.Flags().IntVar(&candidates, "candidates", config.DefaultNumCandidates, "acquisition candidates per iteration")
	tuneCmd.Flags().StringVar(&acquisition, "acquisition", "ucb", "acquisition function: ucb, ei, pi, thompson")
	tuneCmd.Flags().Float64Var(&beta, "beta", 2.0, "ucb exploration weight")
	tuneCmd.Flags().Float64Var(&xi, "xi", 0.01, "ei/pi improvement margin")
	tuneCmd.Flags().Int64Var(&seed, "seed", 0, "optimizer seed (0 for clock)")
	tuneCmd.Flags().IntVar(&folds, "folds", config.DefaultFolds, "cross-validation folds")
	tuneCmd.Flags().IntVar(&workers, "workers", 2, "concurrent folds")
	tuneCmd.Flags().BoolVar(&stratified, "stratified", true, "stratify folds by class")
	tuneCmd.Flags().BoolVar(&live, "live", false, "show live progress view")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot run convergence",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	initConfigCmd := &cobra.Command{
		Use:   "init-config [path]",
		Short: "write a default config file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "gbtune.yaml"
			if len(args) > 0 {
				path = args[0]
			}
			if err := config.Save(path, config.Default()); err != nil {
				return err
			}
			fmt.Printf("wrote %s\n", path)
			return nil
		},
	}

	rootCmd.AddCommand(tuneCmd, listCmd, plotCmd, exportCmd, initConfigCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runTune(cmd *cobra.Command, args []string) error {
	cfg := config.Default()

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	// CLI flags override config file values.
	if cmd.Flags().Changed("csv") {
		cfg.Dataset.Path = csvPath
	}
	if cmd.Flags().Changed("label-col") {
		cfg.Dataset.LabelCol = labelCol
	}
	if cmd.Flags().Changed("samples") {
		cfg.Dataset.Samples = samples
	}
	if cmd.Flags().Changed("features") {
		cfg.Dataset.Features = features
	}
	if cmd.Flags().Changed("classes") {
		cfg.Dataset.Classes = classes
	}
	if cmd.Flags().Changed("data-seed") {
		cfg.Dataset.Seed = dataSeed
	}
	if cmd.Flags().Changed("iterations") {
		cfg.Optimizer.Iterations = iterations
	}
	if cmd.Flags().Changed("initial-samples") {
		cfg.Optimizer.InitialSamples = initSamples
	}
	if cmd.Flags().Changed("candidates") {
		cfg.Optimizer.NumCandidates = candidates
	}
	if cmd.Flags().Changed("acquisition") {
		cfg.Optimizer.Acquisition = acquisition
	}
	if cmd.Flags().Changed("beta") {
		cfg.Optimizer.Beta = beta
	}
	if cmd.Flags().Changed("xi") {
		cfg.Optimizer.Xi = xi
	}
	if cmd.Flags().Changed("seed") {
		cfg.Optimizer.Seed = seed
	}
	if cmd.Flags().Changed("folds") {
		cfg.CV.Folds = folds
	}
	if cmd.Flags().Changed("workers") {
		cfg.CV.Workers = workers
	}
	if cmd.Flags().Changed("stratified") {
		cfg.CV.Stratified = stratified
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	table, name, err := loadDataset(cfg)
	if err != nil {
		return err
	}

	fmt.Printf("dataset: %s (%d samples, %d features, %d classes)\n",
		name, table.Len(), table.NumFeatures(), len(table.Classes()))

	cvFolds, err := makeFolds(cfg, table)
	if err != nil {
		return err
	}

	space := buildSpace(cfg)
	objective := buildObjective(cfg, table, cvFolds)

	optCfg, err := buildOptimizerConfig(cfg)
	if err != nil {
		return err
	}

	st := store.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	fmt.Printf("tuning with %s acquisition, %d+%d evaluations, %d-fold cv...\n",
		cfg.Optimizer.Acquisition, cfg.Optimizer.InitialSamples, cfg.Optimizer.Iterations, cfg.CV.Folds)
	start := time.Now()

	var result *gbtune.Result

	if live {
		result, err = runWithLiveView(optCfg, objective, space)
	} else {
		result, err = gbtune.Minimize(context.Background(), optCfg, objective, space)
	}
	if err != nil {
		return err
	}

	elapsed := time.Since(start)

	runID, err := st.Save(store.RunMetadata{
		Dataset:        name,
		Seed:           cfg.Optimizer.Seed,
		Acquisition:    cfg.Optimizer.Acquisition,
		Iterations:     cfg.Optimizer.Iterations,
		InitialSamples: cfg.Optimizer.InitialSamples,
		Folds:          cfg.CV.Folds,
	}, space, result)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Println(titleStyle.Render(fmt.Sprintf("cv accuracy: %.4f", -result.Fun)))

	fmt.Println("\nbest hyperparameters:")
	best := result.X.Map()
	for _, dim := range space {
		fmt.Println("  " + paramStyle.Render(dim.Name()) + valueStyle.Render(fmt.Sprintf("%.4g", best[dim.Name()])))
	}
	fmt.Println()
	fmt.Println(plot.Convergence(result.FunHistory))

	return nil
}

func loadDataset(cfg *config.Config) (*dataset.Table, string, error) {
	if cfg.Dataset.Path != "" {
		table, err := dataset.LoadCSV(cfg.Dataset.Path, cfg.Dataset.LabelCol)
		if err != nil {
			return nil, "", err
		}

		name := filepath.Base(cfg.Dataset.Path)
		if ext := filepath.Ext(name); ext != "" {
			name = name[:len(name)-len(ext)]
		}

		return table, name, nil
	}

	table := dataset.MakeClassification(
		cfg.Dataset.Samples,
		cfg.Dataset.Features,
		cfg.Dataset.Classes,
		cfg.Dataset.Seed,
	)

	return table, "synthetic", nil
}

func makeFolds(cfg *config.Config, table *dataset.Table) ([]cv.Fold, error) {
	if cfg.CV.Stratified {
		return cv.StratifiedKFold{
			NSplits: cfg.CV.Folds,
			Shuffle: true,
			Seed:    cfg.CV.Seed,
		}.Split(table.Labels)
	}

	return cv.KFold{
		NSplits: cfg.CV.Folds,
		Shuffle: true,
		Seed:    cfg.CV.Seed,
	}.Split(table.Len())
}

func buildSpace(cfg *config.Config) gbtune.Space {
	return gbtune.Space{
		gbtune.NewLogReal("learning_rate", cfg.Space.LearningRateMin, cfg.Space.LearningRateMax),
		gbtune.NewInteger("max_depth", cfg.Space.MaxDepthMin, cfg.Space.MaxDepthMax),
		gbtune.NewInteger("n_estimators", cfg.Space.NEstimatorsMin, cfg.Space.NEstimatorsMax),
		gbtune.NewReal("subsample", cfg.Space.SubsampleMin, cfg.Space.SubsampleMax),
		gbtune.NewInteger("min_samples_split", cfg.Space.MinSamplesSplitMin, cfg.Space.MinSamplesSplitMax),
	}
}

// buildObjective returns the negated mean cross-validated accuracy of a
// classifier built from the candidate hyperparameters. Negated because the
// optimizer minimizes.
func buildObjective(cfg *config.Config, table *dataset.Table, folds []cv.Fold) gbtune.ObjectiveFunc {
	return func(p gbtune.Params) (float64, error) {
		factory := func() cv.Estimator {
			return boost.New(
				boost.WithLearningRate(p.Float("learning_rate")),
				boost.WithMaxDepth(p.Int("max_depth")),
				boost.WithNEstimators(p.Int("n_estimators")),
				boost.WithSubsample(p.Float("subsample")),
				boost.WithMinSamplesSplit(p.Int("min_samples_split")),
				boost.WithRandomState(cfg.CV.Seed),
			)
		}

		mean, err := cv.MeanScore(context.Background(), factory, table.Features, table.Labels, folds, cfg.CV.Workers)
		if err != nil {
			return 0, err
		}

		return -mean, nil
	}
}

func buildOptimizerConfig(cfg *config.Config) (gbtune.Config, error) {
	optCfg := gbtune.DefaultConfig()
	optCfg.Iterations = cfg.Optimizer.Iterations
	optCfg.InitialSamples = cfg.Optimizer.InitialSamples
	optCfg.NumCandidates = cfg.Optimizer.NumCandidates
	optCfg.Seed = cfg.Optimizer.Seed
	optCfg.AcqParams.Beta = cfg.Optimizer.Beta
	optCfg.AcqParams.Xi = cfg.Optimizer.Xi

	if cfg.Optimizer.Seed != 0 {
		optCfg.AcqParams.RandomState = rand.New(rand.NewSource(cfg.Optimizer.Seed))
	}

	switch cfg.Optimizer.Acquisition {
	case "ucb":
		optCfg.AcquisitionFunc = gbtune.UCB
	case "ei":
		optCfg.AcquisitionFunc = gbtune.ExpectedImprovement
	case "pi":
		optCfg.AcquisitionFunc = gbtune.ProbabilityOfImprovement
	case "thompson":
		optCfg.AcquisitionFunc = gbtune.ThompsonSampling
	default:
		return gbtune.Config{}, fmt.Errorf("unknown acquisition: %s", cfg.Optimizer.Acquisition)
	}

	return optCfg, nil
}

// runWithLiveView runs the optimization in a goroutine and blocks on the
// terminal view until both finish.
func runWithLiveView(optCfg gbtune.Config, objective gbtune.ObjectiveFunc, space gbtune.Space) (*gbtune.Result, error) {
	updates := make(chan gbtune.ProgressUpdate, 64)
	optCfg.ProgressChan = updates

	names := make([]string, len(space))
	for i, dim := range space {
		names[i] = dim.Name()
	}

	type outcome struct {
		result *gbtune.Result
		err    error
	}

	done := make(chan outcome, 1)

	go func() {
		result, err := gbtune.Minimize(context.Background(), optCfg, objective, space)
		close(updates)
		done <- outcome{result, err}
	}()

	if err := tui.Run(names, optCfg.InitialSamples+optCfg.Iterations, updates); err != nil {
		return nil, err
	}

	out := <-done

	return out.result, out.err
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := store.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tDATASET\tTIME\tACQ\tEVALS\tFOLDS\tACCURACY")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d\t%.4f\n",
			run.ID,
			run.Dataset,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Acquisition,
			run.InitialSamples+run.Iterations,
			run.Folds,
			run.BestScore,
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := store.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	funs, _, err := st.LoadHistory(runID)
	if err != nil {
		return err
	}

	if len(funs) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("dataset: %s\n", meta.Dataset)
	fmt.Printf("evaluations: %d\n\n", len(funs))

	fmt.Println(plot.Convergence(funs))
	fmt.Println()
	fmt.Println(plot.Trace(funs))

	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := store.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}
