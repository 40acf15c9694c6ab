package main

import (
	"github.com/rodaine/table"
	"github.com/spf13/cobra"

	"setram.dev/tram/model"
	"setram.dev/tram/stations"
)

var stationsCmd = &cobra.Command{
	Use:   "stations",
	Short: "Lists the stations of the line",
	Args:  cobra.NoArgs,
	RunE:  listStations,
}

func init() {
	rootCmd.AddCommand(stationsCmd)
}

func listStations(cmd *cobra.Command, args []string) error {
	network := stations.Default()

	for _, d := range model.Directions {
		from, to := network.Termini(d)
		cmd.Printf("%s (%s): %s → %s\n", d.Label(), d.Code(), from, to)
	}
	cmd.Println()

	tbl := table.New("#", "Station")
	tbl.WithWriter(cmd.OutOrStdout())
	for _, name := range network.Names() {
		tbl.AddRow(network.Ordinal(name), name)
	}
	tbl.Print()

	return nil
}
