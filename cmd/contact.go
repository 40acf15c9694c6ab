package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"setram.dev/tram"
)

var contactCmd = &cobra.Command{
	Use:   "contact <email> <message...>",
	Short: "Sends a message to the operator",
	Args:  cobra.MinimumNArgs(2),
	RunE:  contact,
}

func init() {
	rootCmd.AddCommand(contactCmd)
}

func contact(cmd *cobra.Command, args []string) error {
	flow := tram.NewContactFlow(NewClient())
	flow.OnStatus = func(s string) { cmd.Println(s) }

	_, err := flow.Send(cmd.Context(), args[0], strings.Join(args[1:], " "))
	if err != nil {
		return fmt.Errorf("%s", tram.Message(err))
	}

	return nil
}
