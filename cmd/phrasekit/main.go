// Command phrasekit is the command-line entrypoint for the sequencing
// engine: it can print Euclidean rhythms, run the built-in demo
// phrase, play a session config file out over OSC, or watch one in a
// live terminal monitor.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var debugLog string

	root := &cobra.Command{
		Use:           "phrasekit",
		Short:         "sample-accurate musical event sequencing engine",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if debugLog == "" {
				log.SetOutput(os.Stderr)
				return
			}
			f, err := os.OpenFile(debugLog, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
			if err != nil {
				log.Printf("phrasekit: could not open debug log %s: %v", debugLog, err)
				return
			}
			log.SetOutput(f)
			log.SetFlags(log.LstdFlags | log.Lshortfile)
		},
	}
	root.PersistentFlags().StringVar(&debugLog, "debug", "", "write debug logs to this file; empty logs to stderr")

	root.AddCommand(euclidCmd())
	root.AddCommand(demoCmd())
	root.AddCommand(playCmd())
	root.AddCommand(monitorCmd())
	return root
}
