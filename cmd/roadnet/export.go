package main

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/LdDl/roadnet"
)

var (
	csvOut     string
	geomFormat string
)

var geojsonCmd = &cobra.Command{
	Use:   "geojson <target_folder>",
	Short: "Export extracted network as GeoJSON (edges.json and nodes_only.json)",
	Args:  cobra.ExactArgs(1),
	RunE:  runGeoJSON,
}

var csvCmd = &cobra.Command{
	Use:   "csv <target_folder>",
	Short: "Export extracted network as ';' separated CSV files",
	Args:  cobra.ExactArgs(1),
	RunE:  runCSV,
}

func init() {
	rootCmd.AddCommand(geojsonCmd)
	rootCmd.AddCommand(csvCmd)
	addModesFlag(geojsonCmd)
	addModesFlag(csvCmd)
	csvCmd.Flags().StringVar(&csvOut, "out", "network.csv", "Base filename of CSV files. E.g.: 'map.csv' produces 'map_nodes.csv' and 'map_<mode>_edges.csv'")
	csvCmd.Flags().StringVar(&geomFormat, "geomf", "wkt", "Format of output geometry. Expected values: wkt / geojson")
}

func runGeoJSON(cmd *cobra.Command, args []string) error {
	targetFolder := args[0]
	log, err := newLogger()
	if err != nil {
		return err
	}
	defer log.Sync()

	modes, err := parseModes(modeStrs)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	storage, err := openStorage(ctx, targetFolder)
	if err != nil {
		return err
	}
	defer storage.Close()

	edgesFile, err := os.Create(filepath.Join(targetFolder, "edges.json"))
	if err != nil {
		return errors.Wrap(err, "Can't create edges file")
	}
	defer edgesFile.Close()
	nodesFile, err := os.Create(filepath.Join(targetFolder, "nodes_only.json"))
	if err != nil {
		return errors.Wrap(err, "Can't create nodes file")
	}
	defer nodesFile.Close()

	err = roadnet.ExportGeoJSON(ctx, storage, modes, edgesFile, nodesFile)
	if err != nil {
		return err
	}
	log.Info("GeoJSON exported", zap.String("edges", edgesFile.Name()), zap.String("nodes", nodesFile.Name()))
	return nil
}

func runCSV(cmd *cobra.Command, args []string) error {
	targetFolder := args[0]
	log, err := newLogger()
	if err != nil {
		return err
	}
	defer log.Sync()

	modes, err := parseModes(modeStrs)
	if err != nil {
		return err
	}
	format, err := roadnet.ParseGeomFormat(geomFormat)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	storage, err := openStorage(ctx, targetFolder)
	if err != nil {
		return err
	}
	defer storage.Close()

	out := csvOut
	if !filepath.IsAbs(out) {
		out = filepath.Join(targetFolder, out)
	}
	written, err := roadnet.ExportCSV(ctx, storage, modes, out, format)
	if err != nil {
		return err
	}
	log.Info("CSV exported", zap.Strings("files", written))
	return nil
}
