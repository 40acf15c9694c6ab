package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/rodaine/table"
	"github.com/spf13/cobra"

	"setram.dev/tram"
	"setram.dev/tram/model"
	"setram.dev/tram/stations"
	"setram.dev/tram/storage"
)

var delayCmd = &cobra.Command{
	Use:   "delay <station> <direction> <minutes>",
	Short: "Delays the line at a station",
	Args:  cobra.ExactArgs(3),
	RunE:  delay,
}

var delaysCmd = &cobra.Command{
	Use:   "delays",
	Short: "Lists delays applied so far",
	Args:  cobra.NoArgs,
	RunE:  delays,
}

var (
	delaysStation string
	delaysSince   time.Duration
	delaysLimit   int
)

func init() {
	delaysCmd.Flags().StringVarP(&delaysStation, "station", "s", "", "Restrict to a station")
	delaysCmd.Flags().DurationVarP(&delaysSince, "since", "S", 0, "Restrict to delays applied within this window")
	delaysCmd.Flags().IntVarP(&delaysLimit, "limit", "l", 0, "Limit the number of delays listed")
	rootCmd.AddCommand(delayCmd)
	rootCmd.AddCommand(delaysCmd)
}

func delay(cmd *cobra.Command, args []string) error {
	direction, err := model.ParseDirection(args[1])
	if err != nil {
		return err
	}
	minutes, err := strconv.Atoi(args[2])
	if err != nil {
		return fmt.Errorf("invalid minutes: %w", err)
	}

	journal, err := OpenJournal()
	if err != nil {
		return fmt.Errorf("opening delay journal: %w", err)
	}
	defer journal.Close()

	flow := tram.NewDelayFlow(NewClient(), stations.Default())
	flow.Journal = journal

	result, err := flow.Apply(cmd.Context(), model.Station(args[0]), direction, minutes)
	if err != nil {
		return fmt.Errorf("%s", tram.Message(err))
	}

	for _, line := range tram.RenderDelayResult(result) {
		cmd.Println(line)
	}
	if !result.Success {
		return fmt.Errorf("delay not applied")
	}

	return nil
}

func delays(cmd *cobra.Command, args []string) error {
	journal, err := OpenJournal()
	if err != nil {
		return fmt.Errorf("opening delay journal: %w", err)
	}
	defer journal.Close()

	filter := storage.ListDelaysFilter{
		Station: delaysStation,
		Limit:   delaysLimit,
	}
	if delaysSince > 0 {
		filter.Since = time.Now().Add(-delaysSince)
	}

	records, err := journal.ListDelays(filter)
	if err != nil {
		return err
	}

	tbl := table.New("Applied", "Station", "Direction", "Minutes", "OK", "Message", "Next")
	tbl.WithWriter(cmd.OutOrStdout())
	for _, r := range records {
		next := ""
		if len(r.Arrivals) > 0 {
			next = fmt.Sprintf("%s (%d min)", r.Arrivals[0].Time, r.Arrivals[0].Remaining)
		}
		tbl.AddRow(
			r.AppliedAt.Local().Format("2006-01-02 15:04:05"),
			r.Station,
			model.Direction(r.Direction).Code(),
			r.Minutes,
			r.Success,
			r.Message,
			next,
		)
	}
	tbl.Print()

	return nil
}
