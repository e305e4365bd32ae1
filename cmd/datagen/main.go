// Command datagen produces the synthetic training corpus for the incident
// prediction model: scenario rows from all four generators, a stratified
// train/test split, and the ordered feature-schema file the serving side
// reloads verbatim.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/miradorstack/mirador-predict/internal/dataset"
	"github.com/miradorstack/mirador-predict/internal/generator"
	"github.com/miradorstack/mirador-predict/internal/topology"
	"github.com/miradorstack/mirador-predict/internal/utils"
)

func main() {
	var (
		outDir       string
		seed         int64
		testFraction float64
		normalCount  int
		degradedCnt  int
		cascadeCount int
		nearCount    int
		logLevel     string
	)
	flag.StringVar(&outDir, "out", "models", "Output directory for dataset and schema files")
	flag.Int64Var(&seed, "seed", 42, "Random seed")
	flag.Float64Var(&testFraction, "test-fraction", 0.2, "Fraction of rows held out for the test split")
	flag.IntVar(&normalCount, "normal", 3000, "Normal-operations rows")
	flag.IntVar(&degradedCnt, "degraded", 2000, "Degraded-scenario rows")
	flag.IntVar(&cascadeCount, "cascade", 2500, "Cascade-failure rows")
	flag.IntVar(&nearCount, "near-failure", 2000, "Near-failure rows")
	flag.StringVar(&logLevel, "log-level", "info", "Log verbosity")
	flag.Parse()

	logger := utils.NewLogger(logLevel, false)

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		logger.Error("create output directory", slog.String("dir", outDir), slog.Any("error", err))
		os.Exit(1)
	}

	topo := topology.Default()
	specs := []dataset.Spec{
		{Generator: generator.NewNormal(topo), Count: normalCount},
		{Generator: generator.NewDegraded(topo), Count: degradedCnt},
		{Generator: generator.NewCascade(topo, "database"), Count: cascadeCount},
		{Generator: generator.NewNearFailure(topo, "database"), Count: nearCount},
	}

	logger.Info("generating scenarios",
		slog.Int("normal", normalCount),
		slog.Int("degraded", degradedCnt),
		slog.Int("cascade", cascadeCount),
		slog.Int("near_failure", nearCount))

	ds, err := dataset.Assemble(context.Background(), topo, specs, seed)
	if err != nil {
		logger.Error("assemble dataset", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("dataset assembled",
		slog.Int("rows", len(ds.Rows)),
		slog.Float64("incident_rate", ds.PositiveRate()))

	train, test := ds.StratifiedSplit(testFraction, seed)
	logger.Info("stratified split",
		slog.Int("train", len(train)),
		slog.Int("test", len(test)))

	trainPath := filepath.Join(outDir, "train.csv")
	if err := dataset.WriteCSV(trainPath, ds.Schema, train); err != nil {
		logger.Error("write train set", slog.Any("error", err))
		os.Exit(1)
	}
	testPath := filepath.Join(outDir, "test.csv")
	if err := dataset.WriteCSV(testPath, ds.Schema, test); err != nil {
		logger.Error("write test set", slog.Any("error", err))
		os.Exit(1)
	}

	schemaPath := filepath.Join(outDir, "features.txt")
	if err := ds.Schema.Save(schemaPath); err != nil {
		logger.Error("write feature schema", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("done",
		slog.String("train", trainPath),
		slog.String("test", testPath),
		slog.String("schema", schemaPath))
}
