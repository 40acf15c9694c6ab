package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"setram.dev/tram"
	"setram.dev/tram/downloader"
	"setram.dev/tram/model"
)

var routeCmd = &cobra.Command{
	Use:   "route <departure> <arrival>",
	Short: "Computes travel time between two stations",
	Args:  cobra.ExactArgs(2),
	RunE:  route,
}

var cacheDir string

func init() {
	routeCmd.Flags().StringVarP(&cacheDir, "cache-dir", "", ".", "Directory holding the travel time cache")
	rootCmd.AddCommand(routeCmd)
}

func route(cmd *cobra.Command, args []string) error {
	client := NewClient()

	// Travel times rarely change, so lookups are cached across runs.
	fs, err := downloader.NewFilesystem(filepath.Join(cacheDir, "tram-travel-cache.json"))
	if err != nil {
		return fmt.Errorf("creating travel time cache: %w", err)
	}
	client.Downloader = fs

	flow := tram.NewTravelFlow(client)
	tt, err := flow.Calculate(cmd.Context(), model.Station(args[0]), model.Station(args[1]))
	if err != nil {
		return fmt.Errorf("%s (%w)", tram.Message(err), err)
	}

	for _, line := range tram.RenderTravelTime(tt) {
		cmd.Println(line)
	}

	return nil
}
