package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"setram.dev/tram"
	"setram.dev/tram/model"
	"setram.dev/tram/stations"
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule [station] [direction]",
	Short: "Shows time left until the next trams at a station",
	Long: `Shows time left until the next trams at a station.

Direction is outbound (v1) or inbound (v2). With --watch, countdowns
are refreshed until interrupted. With --interactive, station and
direction are read from stdin as commands:

  station <name>
  direction <outbound|inbound|v1|v2>
  retry
  quit`,
	Args: cobra.RangeArgs(0, 2),
	RunE: schedule,
}

var (
	watch       bool
	interactive bool
)

func init() {
	scheduleCmd.Flags().BoolVarP(&watch, "watch", "w", false, "Keep refreshing countdowns")
	scheduleCmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "Read selections from stdin")
	rootCmd.AddCommand(scheduleCmd)
}

func schedule(cmd *cobra.Command, args []string) error {
	if !interactive && len(args) != 2 {
		return fmt.Errorf("station and direction are required")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	engine := tram.NewEngine(NewClient(), stations.Default())
	engine.PollInterval = millis(cfg.Polling.RemainingIntervalMS)
	engine.FetchTimeout = millis(cfg.Polling.FetchTimeoutMS)
	defer engine.Close()

	settled := make(chan tram.View, 1)
	engine.OnUpdate = func(v tram.View) {
		if watch || interactive {
			printView(cmd, v)
		}
		if v.State == tram.DirectionChosen && (v.Fetch == tram.FetchSuccess || v.Fetch == tram.FetchError) {
			select {
			case settled <- v:
			default:
			}
		}
	}

	if len(args) > 0 {
		if err := engine.SelectStation(model.Station(args[0])); err != nil {
			return fmt.Errorf("%s", tram.Message(err))
		}
	}
	if len(args) > 1 {
		direction, err := model.ParseDirection(args[1])
		if err != nil {
			return err
		}
		if err := engine.SelectDirection(direction); err != nil {
			return fmt.Errorf("%s", tram.Message(err))
		}
	}

	if interactive {
		return runInteractive(ctx, cmd, engine)
	}

	var v tram.View
	select {
	case v = <-settled:
	case <-ctx.Done():
		return nil
	}

	if !watch {
		printView(cmd, v)
		if v.Fetch == tram.FetchError {
			return fmt.Errorf("fetching schedule failed")
		}
		return nil
	}

	<-ctx.Done()
	return nil
}

func printView(cmd *cobra.Command, v tram.View) {
	if v.Selection.Complete() {
		cmd.Printf("%s - %s\n", v.Selection.Station, v.Selection.Direction.Label())
	}
	for _, line := range tram.RenderView(v) {
		cmd.Println(line)
	}
	cmd.Println()
}

func runInteractive(ctx context.Context, cmd *cobra.Command, engine *tram.Engine) error {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(cmd.InOrStdin())
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		var line string
		var ok bool
		select {
		case <-ctx.Done():
			return nil
		case line, ok = <-lines:
			if !ok {
				return nil
			}
		}

		verb, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
		arg = strings.TrimSpace(arg)

		var err error
		switch verb {
		case "":
			continue
		case "station", "s":
			err = engine.SelectStation(model.Station(arg))
		case "direction", "d":
			var direction model.Direction
			direction, err = model.ParseDirection(arg)
			if err == nil {
				err = engine.SelectDirection(direction)
			}
		case "retry", "r":
			err = engine.Retry()
		case "quit", "q":
			return nil
		default:
			err = fmt.Errorf("unknown command '%s'", verb)
		}
		if err != nil {
			cmd.PrintErrln(tram.Message(err))
		}
	}
}
