package main

import (
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/LdDl/roadnet"
)

var (
	configPath string
	cfg        = roadnet.DefaultConfig()
)

var extractCmd = &cobra.Command{
	Use:   "extract <input.osm.pbf> <output_folder>",
	Short: "Extract road network from OSM file into SQLite database",
	Long: `Read ways of an OSM file (.osm.pbf, .osm or .xml) and build directed edge sets
for walking, cycling and driving. The result is stored in <output_folder>/network.db:

  - nodes(id, lat, lon)
  - walk_edges, bicycle_edges, car_edges (from_id, to_id)
  - collapse_nodes(id_to_prune, id_to_use)

When --collapse-distance is positive, nodes of the same way closer than the distance
are merged into the one with the lower ID.`,
	Args: cobra.ExactArgs(2),
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().StringVar(&configPath, "config", "", "YAML file with extraction parameters (flags take precedence)")
	extractCmd.Flags().BoolVar(&cfg.EnableWalk, "walk", cfg.EnableWalk, "Build walk edges")
	extractCmd.Flags().BoolVar(&cfg.EnableBicycle, "bicycle", cfg.EnableBicycle, "Build bicycle edges")
	extractCmd.Flags().BoolVar(&cfg.EnableCar, "car", cfg.EnableCar, "Build car edges")
	extractCmd.Flags().Float64Var(&cfg.CollapseDistance, "collapse-distance", cfg.CollapseDistance, "Distance in meters between points under which they are collapsed")
	extractCmd.Flags().IntVar(&cfg.FlushThreshold, "flush-threshold", cfg.FlushThreshold, "Number of nodes kept in memory before flushing to the database")
	extractCmd.Flags().IntVar(&cfg.EdgeFlushThreshold, "edge-flush-threshold", cfg.EdgeFlushThreshold, "Number of edges kept in memory before flushing (0 means 4 x flush-threshold)")
	extractCmd.Flags().IntVar(&cfg.CollapseWindow, "collapse-window", cfg.CollapseWindow, "Max index span of way nodes compared for collapsing")
}

// resolveConfig applies YAML file first and explicitly set flags on top of it
func resolveConfig(cmd *cobra.Command) (roadnet.Config, error) {
	if configPath == "" {
		return cfg, nil
	}
	fileCfg, err := roadnet.LoadConfig(configPath)
	if err != nil {
		return cfg, err
	}
	flags := cmd.Flags()
	if flags.Changed("walk") {
		fileCfg.EnableWalk = cfg.EnableWalk
	}
	if flags.Changed("bicycle") {
		fileCfg.EnableBicycle = cfg.EnableBicycle
	}
	if flags.Changed("car") {
		fileCfg.EnableCar = cfg.EnableCar
	}
	if flags.Changed("collapse-distance") {
		fileCfg.CollapseDistance = cfg.CollapseDistance
	}
	if flags.Changed("flush-threshold") {
		fileCfg.FlushThreshold = cfg.FlushThreshold
	}
	if flags.Changed("edge-flush-threshold") {
		fileCfg.EdgeFlushThreshold = cfg.EdgeFlushThreshold
	}
	if flags.Changed("collapse-window") {
		fileCfg.CollapseWindow = cfg.CollapseWindow
	}
	return fileCfg, nil
}

func runExtract(cmd *cobra.Command, args []string) error {
	inputFile, outputFolder := args[0], args[1]
	log, err := newLogger()
	if err != nil {
		return err
	}
	defer log.Sync()

	runCfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	if err := runCfg.Validate(); err != nil {
		return err
	}

	if err := os.MkdirAll(outputFolder, 0o755); err != nil {
		return errors.Wrap(err, "Can't create output folder")
	}
	ctx := cmd.Context()
	storage, err := openStorage(ctx, outputFolder)
	if err != nil {
		return err
	}
	defer storage.Close()

	log.Info("Scanning OSM file", zap.String("input", inputFile))
	st := time.Now()
	scanner, err := roadnet.OpenWayReader(ctx, inputFile)
	if err != nil {
		return errors.Wrap(err, "Can't open OSM file")
	}
	defer scanner.Close()
	log.Info("Node coordinates resolved", zap.Duration("took", time.Since(st)))

	extractor := roadnet.NewExtractor(storage, append(runCfg.Options(), roadnet.WithLogger(log))...)
	log.Debug(extractor.String())
	stats, err := extractor.Run(ctx, scanner)
	if err != nil {
		log.Error("Extraction failed", zap.Error(err))
		return err
	}
	if missing, ok := scanner.(interface{ MissingNodes() int }); ok && missing.MissingNodes() > 0 {
		log.Warn("Way node references without coordinates were skipped", zap.Int("missing", missing.MissingNodes()))
	}

	modes := runCfg.Modes()
	stored, err := storage.Stats(ctx, modes)
	if err != nil {
		return errors.Wrap(err, "Can't count stored rows")
	}
	fields := []zap.Field{
		zap.Duration("duration", stats.Duration.Round(time.Millisecond)),
		zap.Int("ways_scanned", stats.WaysScanned),
		zap.Int("ways_processed", stats.WaysProcessed),
		zap.Int("flushes", stats.Flushes),
		zap.Int64("nodes", stored.Nodes),
		zap.Int64("collapse_mappings", stored.CollapseMappings),
	}
	for _, mode := range modes {
		fields = append(fields, zap.Int64(mode.EdgeTable(), stored.Edges[mode]))
	}
	log.Info("Extraction complete", fields...)
	return nil
}
