package main

import (
	"context"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/LdDl/roadnet"
	"github.com/LdDl/roadnet/sqlite"
)

const databaseName = "network.db"

var (
	verbose  bool
	modeStrs []string
)

var rootCmd = &cobra.Command{
	Use:          "roadnet",
	Short:        "Extract mode-aware road network graph from OSM data",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

func newLogger() (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func openStorage(ctx context.Context, folder string) (roadnet.Storage, error) {
	storage, err := sqlite.Open(ctx, filepath.Join(folder, databaseName))
	if err != nil {
		return nil, errors.Wrap(err, "Can't open network database")
	}
	return storage, nil
}

// addModesFlag registers --modes for commands reading an already extracted network
func addModesFlag(cmd *cobra.Command) {
	cmd.Flags().StringSliceVar(&modeStrs, "modes", []string{"walk", "bicycle", "car"}, "Travel modes to read (separated by commas)")
}

func parseModes(names []string) ([]roadnet.Mode, error) {
	modes := make([]roadnet.Mode, 0, len(names))
	for _, name := range names {
		mode, err := roadnet.ParseMode(name)
		if err != nil {
			return nil, err
		}
		modes = append(modes, mode)
	}
	if len(modes) == 0 {
		return nil, roadnet.ErrNoModes
	}
	return modes, nil
}
