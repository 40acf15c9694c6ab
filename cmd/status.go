package main

import (
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"setram.dev/tram"
	"setram.dev/tram/model"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Shows the current status of the network",
	Args:  cobra.NoArgs,
	RunE:  status,
}

var watchStatus bool

func init() {
	statusCmd.Flags().BoolVarP(&watchStatus, "watch", "w", false, "Keep polling the status")
	rootCmd.AddCommand(statusCmd)
}

func printStatus(cmd *cobra.Command, s model.Status) {
	cmd.Println(s.Statut)
	if s.ImagePath != "" {
		cmd.Println(s.ImagePath)
	}
}

func status(cmd *cobra.Command, args []string) error {
	watcher := tram.NewStatusWatcher(NewClient())
	watcher.Interval = millis(cfg.Polling.StatusIntervalMS)

	if !watchStatus {
		printStatus(cmd, watcher.Refresh(cmd.Context()))
		return nil
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	watcher.OnUpdate = func(s model.Status) { printStatus(cmd, s) }
	watcher.Start()
	defer watcher.Stop()

	<-ctx.Done()
	return nil
}
