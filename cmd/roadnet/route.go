package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/LdDl/roadnet"
)

var (
	routeMode string
	routeFrom int64
	routeTo   int64
)

var routeCmd = &cobra.Command{
	Use:   "route <target_folder>",
	Short: "Find shortest path between two nodes of an extracted network",
	Args:  cobra.ExactArgs(1),
	RunE:  runRoute,
}

func init() {
	rootCmd.AddCommand(routeCmd)
	routeCmd.Flags().StringVar(&routeMode, "mode", "car", "Travel mode: walk / bicycle / car")
	routeCmd.Flags().Int64Var(&routeFrom, "from", 0, "Source node ID")
	routeCmd.Flags().Int64Var(&routeTo, "to", 0, "Target node ID")
	routeCmd.MarkFlagRequired("from")
	routeCmd.MarkFlagRequired("to")
}

func runRoute(cmd *cobra.Command, args []string) error {
	log, err := newLogger()
	if err != nil {
		return err
	}
	defer log.Sync()

	mode, err := roadnet.ParseMode(routeMode)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	storage, err := openStorage(ctx, args[0])
	if err != nil {
		return err
	}
	defer storage.Close()

	router, err := roadnet.NewRouter(ctx, storage, mode, log)
	if err != nil {
		return err
	}
	meters, path, err := router.ShortestPath(routeFrom, routeTo)
	if err != nil {
		return err
	}
	log.Info("Shortest path found", zap.Float64("meters", meters), zap.Int("nodes", len(path)))
	fmt.Fprintln(cmd.OutOrStdout(), meters, path)
	return nil
}
